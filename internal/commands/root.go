package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/simonhull/firebird-suite/magpie"
	"github.com/simonhull/firebird-suite/magpie/internal/tables"
	"github.com/simonhull/firebird-suite/magpie/pkg/config"
	"github.com/simonhull/firebird-suite/magpie/pkg/logger"
	"github.com/simonhull/firebird-suite/magpie/pkg/output"
	"github.com/spf13/cobra"
)

// globalOptions are the persistent flags every command shares.
type globalOptions struct {
	configPath string
	verbose    bool
	yes        bool
}

// RootCmd creates the magpie command. Run without a sub-command it converts
// a project.
func RootCmd() *cobra.Command {
	g := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "magpie",
		Short: "Convert SwiftUI projects to Jetpack Compose",
		Long: `Magpie converts a SwiftUI iOS project into a Kotlin/Jetpack Compose
Android project.

Conversion is heuristic: Swift sources are scanned and rewritten line by
line, not compiled. Expect the output to need manual work. "magpie fix"
cleans up the most common compiler errors afterwards.

Examples:
  magpie --from-dir ../from --output-dir ../to --package-name com.acme.notes
  magpie --clean --yes
  magpie --dry-run --conflict diff
  magpie fix ../to/app/src/main/java --dry-run`,
		Version:       magpie.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			output.SetVerbose(g.verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, g)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&g.configPath, "config", "c", "", "Path to configuration file (default ./"+config.FileName+")")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "Enable verbose output for debugging")
	pf.BoolVarP(&g.yes, "yes", "y", false, "Answer yes to every confirmation")
	pf.String("log-level", "", "Log level: debug, info, warn, error or silent")
	pf.Bool("log-json", false, "Write logs as JSON")

	addConvertFlags(cmd)

	cmd.AddCommand(FixCmd(g))
	cmd.AddCommand(InitCmd(g))
	cmd.AddCommand(VersionCmd())

	return cmd
}

// Execute runs the CLI until it finishes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := RootCmd().ExecuteContext(ctx); err != nil {
		output.Error(err.Error())
		return err
	}
	return nil
}

// loadConfig reads the configuration with the command's flags applied and
// installs the configured logger as the default.
func loadConfig(cmd *cobra.Command, g *globalOptions) (*config.Config, error) {
	cfg, err := config.Load(g.configPath, cmd.Flags())
	if err != nil {
		return nil, err
	}

	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	if g.verbose {
		level = logger.LevelDebug
	}
	logger.SetDefault(logger.New(logger.Options{
		Level:  level,
		Output: cmd.ErrOrStderr(),
		JSON:   cfg.Log.JSON,
	}))
	return cfg, nil
}

// loadTables merges the `tables:` overrides of cfg into the defaults.
func loadTables(cfg *config.Config) (tables.Tables, error) {
	t := tables.Default()
	data, err := cfg.TablesYAML()
	if err != nil {
		return t, fmt.Errorf("reading tables: %w", err)
	}
	if data == nil {
		return t, nil
	}
	overrides, err := tables.Parse(data)
	if err != nil {
		return t, err
	}
	return t.Merge(overrides), nil
}
