package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/simonhull/firebird-suite/magpie/internal/repair"
	"github.com/simonhull/firebird-suite/magpie/pkg/exec"
	"github.com/simonhull/firebird-suite/magpie/pkg/filesystem"
	"github.com/simonhull/firebird-suite/magpie/pkg/input"
	"github.com/simonhull/firebird-suite/magpie/pkg/logger"
	"github.com/simonhull/firebird-suite/magpie/pkg/output"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

type fixOptions struct {
	errorText  string
	continuous bool
	watch      bool
	projectDir string
}

// FixCmd creates the 'fix' command, which repairs generated Kotlin.
func FixCmd(g *globalOptions) *cobra.Command {
	o := &fixOptions{}

	cmd := &cobra.Command{
		Use:   "fix [dir | errors.txt]",
		Short: "Repair common compiler errors in generated Kotlin",
		Long: `Fix rewrites generated Kotlin files with text rules.

Modes:
  magpie fix [dir]               clean up every .kt file below dir
                                 (default: the configured output directory)
  magpie fix build_errors.txt    fix the errors listed in a saved build log
  magpie fix --error "e: ..."    fix the errors given on the command line
  ./gradlew build 2>&1 | magpie fix
                                 fix the errors piped on stdin
  magpie fix --continuous        build, fix, rebuild until the build passes
  magpie fix --watch             fix the error log every time it changes

Compiler paths that are not absolute are resolved against --project-dir.
--dry-run prints diffs instead of writing.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFix(cmd, g, o, args)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.errorText, "error", "e", "", "Compiler output to fix")
	f.BoolVar(&o.continuous, "continuous", false, "Run the build command and fix until it passes")
	f.BoolVarP(&o.watch, "watch", "w", false, "Watch the error log and fix on every change")
	f.StringVar(&o.projectDir, "project-dir", "", "Android project root (default: the configured output directory)")
	f.Bool("dry-run", false, "Print diffs instead of writing")
	f.String("build-cmd", "", "Build command for --continuous (default from config)")
	f.Int("max-iterations", 0, "Build attempts for --continuous (default from config)")
	f.String("error-log", "", "Error log for --watch (default from config)")

	return cmd
}

func runFix(cmd *cobra.Command, g *globalOptions, o *fixOptions, args []string) error {
	if o.continuous && o.watch {
		return errors.New("--continuous and --watch are mutually exclusive")
	}
	cfg, err := loadConfig(cmd, g)
	if err != nil {
		return err
	}
	t, err := loadTables(cfg)
	if err != nil {
		return err
	}
	if o.projectDir == "" {
		o.projectDir = cfg.Paths.OutputDir
	}

	r := repair.New(repair.NewFixer(t), repair.Options{
		DryRun: cfg.Generation.DryRun,
		Out:    cmd.OutOrStdout(),
		Base:   o.projectDir,
	}).WithLogger(logger.Default())
	ctx := cmd.Context()

	switch {
	case o.continuous:
		output.Stage("Building with " + cfg.Repair.BuildCommand)
		builder := repair.CommandBuilder{
			Executor: exec.NewExecutor(exec.Options{
				Stderr:  cmd.ErrOrStderr(),
				Dir:     o.projectDir,
				Spinner: isTerminal(),
			}),
			Command: cfg.Repair.BuildCommand,
		}
		history, err := r.Continuous(ctx, builder, cfg.Repair.MaxIterations)
		for _, it := range history {
			output.Step(fmt.Sprintf("build %d: %d errors, %d files fixed", it.N, it.Errors, len(it.Result.Fixed)))
		}
		if err != nil {
			return err
		}
		output.Success(fmt.Sprintf("Build passes after %d fix rounds", len(history)))
		return nil

	case o.watch:
		logPath := cfg.Repair.ErrorLog
		if !filepath.IsAbs(logPath) {
			logPath = filepath.Join(o.projectDir, logPath)
		}
		output.Info("Watching " + logPath + " (Ctrl+C to stop)")
		return r.Watch(ctx, logPath, repair.DefaultDebounce, func(res repair.Result, err error) {
			if err == nil {
				printRepair(res, cfg.Generation.DryRun)
			}
		})

	case o.errorText != "":
		res, err := r.FixErrors(ctx, o.errorText)
		if err != nil {
			return err
		}
		printRepair(res, cfg.Generation.DryRun)
		return nil

	case len(args) == 1 && !filesystem.IsDir(args[0]):
		res, err := r.FixErrorFile(ctx, args[0])
		if err != nil {
			return err
		}
		printRepair(res, cfg.Generation.DryRun)
		return nil

	case len(args) == 0 && !input.Interactive():
		res, err := r.FixReader(ctx, cmd.InOrStdin())
		if err != nil {
			return err
		}
		printRepair(res, cfg.Generation.DryRun)
		return nil
	}

	dir := o.projectDir
	if len(args) == 1 {
		dir = args[0]
	}
	res, err := r.FixDir(ctx, dir)
	if err != nil {
		return err
	}
	printRepair(res, cfg.Generation.DryRun)
	return nil
}

func printRepair(res repair.Result, dryRun bool) {
	rules := make([]string, 0, len(res.Rules))
	for name := range res.Rules {
		rules = append(rules, name)
	}
	sort.Strings(rules)
	rows := make([][2]string, 0, len(rules))
	for _, name := range rules {
		rows = append(rows, [2]string{name, fmt.Sprintf("%d files", res.Rules[name])})
	}
	output.Table(rows)

	verb := "Fixed"
	if dryRun {
		verb = "Would fix"
	}
	msg := fmt.Sprintf("%s %d of %d files", verb, len(res.Fixed), res.Files)
	if res.Diags > 0 {
		msg += fmt.Sprintf(" (%d compiler errors)", res.Diags)
	}
	if len(res.Fixed) == 0 {
		output.Info(msg)
		return
	}
	output.Success(msg)
	for _, p := range res.Fixed {
		output.Verbose(p)
	}
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stderr.Fd())) && !strings.EqualFold(os.Getenv("CI"), "true")
}
