package repair

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/simonhull/firebird-suite/magpie/pkg/filesystem"
	"github.com/simonhull/firebird-suite/magpie/pkg/generator"
	"github.com/simonhull/firebird-suite/magpie/pkg/logger"
)

var (
	// ErrNoProgress means a build reported the same errors as the one
	// before it, so another round of fixes would change nothing.
	ErrNoProgress = errors.New("same errors as the previous build")
	// ErrMaxIterations means errors remained after the last allowed build.
	ErrMaxIterations = errors.New("errors remain after the maximum number of iterations")
)

// Options configures a Repairer.
type Options struct {
	// DryRun prints diffs to Out instead of writing files.
	DryRun bool
	Out    io.Writer
	// Base resolves relative paths in compiler output. Defaults to the
	// working directory.
	Base string
}

// Result summarises one repair pass.
type Result struct {
	Files int            // files examined
	Fixed []string       // files changed (or that would change)
	Rules map[string]int // rule name → number of files it changed
	Diags int            // diagnostics read, in the error modes
}

func (r *Result) add(path string, rules []string) {
	r.Fixed = append(r.Fixed, path)
	if r.Rules == nil {
		r.Rules = make(map[string]int)
	}
	for _, rule := range rules {
		r.Rules[rule]++
	}
}

// Repairer rewrites Kotlin files on disk.
type Repairer struct {
	fixer  *Fixer
	opts   Options
	diff   *generator.DiffGenerator
	logger logger.Logger
}

// New returns a Repairer using fixer.
func New(fixer *Fixer, opts Options) *Repairer {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	return &Repairer{
		fixer:  fixer,
		opts:   opts,
		diff:   generator.NewDiffGenerator(),
		logger: logger.Default(),
	}
}

// WithLogger returns a copy of the Repairer logging to log.
func (r *Repairer) WithLogger(log logger.Logger) *Repairer {
	c := *r
	c.logger = log
	return &c
}

// FixDir applies the content rules to every .kt file below dir.
func (r *Repairer) FixDir(ctx context.Context, dir string) (Result, error) {
	if !filesystem.IsDir(dir) {
		return Result{}, fmt.Errorf("%s: %w", dir, os.ErrNotExist)
	}
	paths, err := filesystem.FindFiles(dir, filesystem.WalkOptions{Extensions: []string{".kt"}})
	if err != nil {
		return Result{}, err
	}
	r.logger.Info("Repairing Kotlin files", logger.F("dir", dir), logger.F("files", len(paths)))

	var res Result
	tx := generator.NewTransaction()
	defer tx.Rollback()
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Files++
		if err := r.fixFile(tx, &res, p, func(s string) (string, []string) { return r.fixer.FixContent(s) }); err != nil {
			return res, err
		}
	}
	return res, r.commit(tx)
}

// FixErrors applies the diagnostic rules for compiler output text.
func (r *Repairer) FixErrors(ctx context.Context, text string) (Result, error) {
	diags := ParseDiagnostics(text)
	res := Result{Diags: count(diags)}
	if len(diags) == 0 {
		r.logger.Warn("No compiler errors found in input")
		return res, nil
	}

	files := make([]string, 0, len(diags))
	for f := range diags {
		files = append(files, f)
	}
	slices.Sort(files)

	tx := generator.NewTransaction()
	defer tx.Rollback()
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		path := r.resolve(f)
		if !filesystem.Exists(path) {
			r.logger.Warn("File from compiler output not found", logger.F("file", f))
			continue
		}
		res.Files++
		ds := diags[f]
		if err := r.fixFile(tx, &res, path, func(s string) (string, []string) { return r.fixer.FixDiagnostics(s, ds) }); err != nil {
			return res, err
		}
	}
	return res, r.commit(tx)
}

// FixErrorFile reads compiler output from a file, e.g. a saved build log.
func (r *Repairer) FixErrorFile(ctx context.Context, path string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("reading error log: %w", err)
	}
	return r.FixErrors(ctx, string(data))
}

// FixReader reads compiler output from in, e.g. a pipe from gradle.
func (r *Repairer) FixReader(ctx context.Context, in io.Reader) (Result, error) {
	data, err := io.ReadAll(in)
	if err != nil {
		return Result{}, fmt.Errorf("reading compiler output: %w", err)
	}
	return r.FixErrors(ctx, string(data))
}

func (r *Repairer) resolve(path string) string {
	if filepath.IsAbs(path) || r.opts.Base == "" {
		return path
	}
	return filepath.Join(r.opts.Base, path)
}

// fixFile stages the fixed content of path, or prints its diff in a dry
// run.
func (r *Repairer) fixFile(tx *generator.Transaction, res *Result, path string, fix func(string) (string, []string)) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	fixed, rules := fix(string(data))
	if fixed == string(data) {
		r.logger.Debug("No changes", logger.F("file", path))
		return nil
	}
	res.add(path, rules)
	r.logger.Info("Fixed file", logger.F("file", path), logger.F("rules", rules))

	if r.opts.DryRun {
		fmt.Fprint(r.opts.Out, r.diff.Unified(path, path, data, []byte(fixed)))
		return nil
	}
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	tx.Stage(path, []byte(fixed), mode)
	return nil
}

func (r *Repairer) commit(tx *generator.Transaction) error {
	if r.opts.DryRun || tx.Len() == 0 {
		return nil
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("writing fixes: %w", err)
	}
	return nil
}
