// Package convert runs a whole conversion: output structure, project
// analysis, one stage per Swift role, then the generated scaffolding that
// wires the converted classes together.
//
// Stages are independent. A failing stage is logged and recorded in the
// Report and the run goes on; only setup problems (missing source
// directory, failed analysis, cancellation) abort it.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/simonhull/firebird-suite/magpie/internal/analyzer"
	"github.com/simonhull/firebird-suite/magpie/internal/scaffold"
	"github.com/simonhull/firebird-suite/magpie/internal/swift"
	"github.com/simonhull/firebird-suite/magpie/internal/tables"
	"github.com/simonhull/firebird-suite/magpie/pkg/filesystem"
	"github.com/simonhull/firebird-suite/magpie/pkg/generator"
	"github.com/simonhull/firebird-suite/magpie/pkg/logger"
)

// ErrSourceNotFound is returned when the Swift project directory does not
// exist.
var ErrSourceNotFound = errors.New("source directory not found")

// Options mirror the command line.
type Options struct {
	FromDir        string
	TemplateIOS    string // files identical to their counterpart here are skipped
	TemplateKotlin string // Android project copied into the output first
	OutputDir      string
	PackageName    string
	AppName        string

	Clean  bool
	DryRun bool

	// Resolver decides about files that already exist. Nil overwrites.
	Resolver *generator.Resolver
	// Tables are the heuristic tables. The zero value means tables.Default().
	Tables tables.Tables
	// Confirm is asked before Clean removes the output directory. Nil
	// means yes.
	Confirm func(message string) bool
	// Out receives one line per operation. Defaults to os.Stdout.
	Out io.Writer
}

// Converter converts one Swift project.
type Converter struct {
	opts     Options
	logger   logger.Logger
	cache    *swift.Cache
	analyzer *analyzer.Analyzer
	scaffold *scaffold.Generator
}

// New validates opts and returns a Converter.
func New(opts Options) (*Converter, error) {
	if opts.FromDir == "" {
		return nil, fmt.Errorf("from directory is required")
	}
	if opts.OutputDir == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	if opts.PackageName == "" {
		return nil, fmt.Errorf("package name is required")
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Tables.Types == nil {
		opts.Tables = tables.Default()
	}

	cache, err := swift.NewCache(0)
	if err != nil {
		return nil, err
	}
	a, err := analyzer.NewAnalyzer(cache)
	if err != nil {
		return nil, err
	}
	c := &Converter{
		opts:   opts,
		cache:  cache,
		logger: logger.Default(),
		scaffold: scaffold.New(scaffold.Options{
			OutputDir:      opts.OutputDir,
			FromDir:        opts.FromDir,
			TemplateKotlin: opts.TemplateKotlin,
			PackageName:    opts.PackageName,
			AppName:        opts.AppName,
		}),
	}
	c.analyzer = a.WithTemplate(opts.TemplateIOS)
	return c.WithLogger(c.logger), nil
}

// WithLogger returns a copy of the Converter logging to log.
func (c *Converter) WithLogger(log logger.Logger) *Converter {
	cp := *c
	cp.logger = log
	cp.analyzer = c.analyzer.WithLogger(log)
	cp.scaffold = c.scaffold.WithLogger(log)
	return &cp
}

// StageResult is the outcome of one stage.
type StageResult struct {
	Name    string
	Files   int // files written, or planned in a dry run
	Skipped int // Swift files that produced no output
	Err     error
}

// Report describes a finished run.
type Report struct {
	Project  *analyzer.ProjectInfo
	Stages   []StageResult
	Summary  generator.Summary
	Duration time.Duration
}

// Failed returns the stages that ended with an error.
func (r *Report) Failed() []StageResult {
	var out []StageResult
	for _, s := range r.Stages {
		if s.Err != nil {
			out = append(out, s)
		}
	}
	return out
}

// Run converts the project. The returned error is fatal; stage failures
// are only in the Report.
func (c *Converter) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	report := &Report{}
	defer func() { report.Duration = time.Since(start) }()

	if !filesystem.IsDir(c.opts.FromDir) {
		return report, fmt.Errorf("%w: %s", ErrSourceNotFound, c.opts.FromDir)
	}
	c.logger.Info("Starting conversion",
		logger.F("from", c.opts.FromDir),
		logger.F("output", c.opts.OutputDir),
		logger.F("package", c.opts.PackageName),
		logger.F("dry_run", c.opts.DryRun))

	if err := c.prepare(ctx, report); err != nil {
		return report, err
	}

	info, err := c.analyzer.Analyze(ctx, c.opts.FromDir)
	if err != nil {
		return report, fmt.Errorf("analyzing %s: %w", c.opts.FromDir, err)
	}
	report.Project = info

	r := newRun(c, info, report)
	for _, s := range r.stages() {
		if err := r.runStage(ctx, s); err != nil {
			return report, err
		}
	}

	c.logger.Info("Conversion complete",
		logger.F("files", report.Summary.Files()),
		logger.F("failed_stages", len(report.Failed())),
		logger.F("duration", time.Since(start).Round(time.Millisecond).String()))
	return report, nil
}

// prepare cleans the output directory when asked and lays out the
// project structure.
func (c *Converter) prepare(ctx context.Context, report *Report) error {
	var ops []generator.Operation
	if c.opts.Clean && filesystem.Exists(c.opts.OutputDir) {
		msg := fmt.Sprintf("Remove everything in %s?", c.opts.OutputDir)
		if c.opts.Confirm == nil || c.opts.Confirm(msg) {
			ops = append(ops, c.scaffold.Clean()...)
		} else {
			c.logger.Warn("Keeping existing output directory", logger.F("path", c.opts.OutputDir))
		}
	}
	structure, err := c.scaffold.Structure()
	if err != nil {
		return fmt.Errorf("preparing output structure: %w", err)
	}
	ops = append(ops, structure...)

	summary, err := c.execute(ctx, ops)
	report.Summary.Add(summary)
	report.Stages = append(report.Stages, StageResult{Name: "structure", Files: summary.Files()})
	if err != nil {
		return fmt.Errorf("creating %s: %w", c.opts.OutputDir, err)
	}
	return nil
}

func (c *Converter) execute(ctx context.Context, ops []generator.Operation) (generator.Summary, error) {
	return generator.Execute(ctx, ops, generator.ExecuteOptions{
		DryRun:   c.opts.DryRun,
		Resolver: c.opts.Resolver,
		Writer:   c.opts.Out,
	})
}

// fatal reports errors that end the run instead of a single stage.
func fatal(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, generator.ErrCancelled)
}

func rel(root, path string) string {
	if r, err := filepath.Rel(root, path); err == nil {
		return r
	}
	return path
}
