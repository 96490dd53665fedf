package commands

import (
	"fmt"
	"time"

	"github.com/simonhull/firebird-suite/magpie/internal/convert"
	"github.com/simonhull/firebird-suite/magpie/pkg/config"
	"github.com/simonhull/firebird-suite/magpie/pkg/generator"
	"github.com/simonhull/firebird-suite/magpie/pkg/input"
	"github.com/simonhull/firebird-suite/magpie/pkg/logger"
	"github.com/simonhull/firebird-suite/magpie/pkg/output"
	"github.com/spf13/cobra"
)

// addConvertFlags registers the conversion flags. Defaults come from
// config.Default so --help shows what an empty magpie.yml means.
func addConvertFlags(cmd *cobra.Command) {
	d := config.Default()
	f := cmd.Flags()
	f.String("from-dir", d.Paths.FromDir, "Swift project to convert")
	f.String("template-ios", d.Paths.TemplateIOS, "iOS template project; identical files are not converted")
	f.String("template-kotlin", d.Paths.TemplateKotlin, "Android template project copied into the output")
	f.String("output-dir", d.Paths.OutputDir, "Where the Android project is written")
	f.String("package-name", d.Project.PackageName, "Kotlin package of the generated app")
	f.String("app-name", d.Project.AppName, "Display name of the generated app")
	f.Bool("clean", false, "Remove the output directory before converting")
	f.Bool("dry-run", false, "Show what would be written without writing")
	f.String("conflict", d.Generation.Conflict, "What to do with existing files: overwrite, skip, diff or ask")
}

func runConvert(cmd *cobra.Command, g *globalOptions) error {
	cfg, err := loadConfig(cmd, g)
	if err != nil {
		return err
	}
	t, err := loadTables(cfg)
	if err != nil {
		return err
	}
	resolver, err := generator.NewResolver(cfg.Generation.Conflict, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	conv, err := convert.New(convert.Options{
		FromDir:        cfg.Paths.FromDir,
		TemplateIOS:    cfg.Paths.TemplateIOS,
		TemplateKotlin: cfg.Paths.TemplateKotlin,
		OutputDir:      cfg.Paths.OutputDir,
		PackageName:    cfg.Project.PackageName,
		AppName:        cfg.Project.AppName,
		Clean:          cfg.Generation.Clean,
		DryRun:         cfg.Generation.DryRun,
		Resolver:       resolver,
		Tables:         t,
		Confirm:        confirmer(cmd, g),
		Out:            cmd.OutOrStdout(),
	})
	if err != nil {
		return err
	}

	output.Stage(fmt.Sprintf("Converting %s → %s", cfg.Paths.FromDir, cfg.Paths.OutputDir))
	report, err := conv.WithLogger(logger.Default()).Run(cmd.Context())
	if err != nil {
		return err
	}
	printReport(report, cfg.Generation.DryRun)
	return nil
}

// confirmer asks on the terminal. Without a terminal the answer is no
// unless --yes was given.
func confirmer(cmd *cobra.Command, g *globalOptions) func(string) bool {
	return func(msg string) bool {
		if g.yes {
			return true
		}
		if !input.Interactive() {
			output.Warn("Not a terminal, declining: " + msg + " (pass --yes to confirm)")
			return false
		}
		p := input.Stdio()
		p.Out = cmd.OutOrStdout()
		return p.Confirm(msg, false)
	}
}

func printReport(r *convert.Report, dryRun bool) {
	rows := make([][2]string, 0, len(r.Stages))
	for _, s := range r.Stages {
		status := fmt.Sprintf("%d files", s.Files)
		if s.Skipped > 0 {
			status += fmt.Sprintf(", %d skipped", s.Skipped)
		}
		if s.Err != nil {
			status += " ✗ " + s.Err.Error()
		}
		rows = append(rows, [2]string{s.Name, status})
	}
	output.Stage("Report")
	output.Table(rows)

	if r.Project != nil {
		output.Verbose(fmt.Sprintf("%d Swift files, %d screens, %d tabs",
			r.Project.SourceCount(), len(r.Project.AppStructure.Screens), len(r.Project.AppStructure.Tabs)))
	}

	s := r.Summary
	msg := fmt.Sprintf("%d created, %d overwritten, %d unchanged, %d skipped in %s",
		s.Created, s.Overwritten, s.Unchanged, s.Skipped, r.Duration.Round(time.Millisecond))
	if dryRun {
		msg = "Dry run: " + msg
	}
	if failed := r.Failed(); len(failed) > 0 {
		output.Warn(fmt.Sprintf("%s; %d stages failed", msg, len(failed)))
		return
	}
	output.Success(msg)
}
