package commands

import (
	"fmt"
	"path/filepath"

	"github.com/simonhull/firebird-suite/magpie/pkg/config"
	"github.com/simonhull/firebird-suite/magpie/pkg/filesystem"
	"github.com/simonhull/firebird-suite/magpie/pkg/input"
	"github.com/simonhull/firebird-suite/magpie/pkg/output"
	"github.com/spf13/cobra"
)

// InitCmd creates the 'init' command, which writes a starter magpie.yml.
func InitCmd(g *globalOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a magpie.yml with the default settings",
		Long: `Init writes magpie.yml into dir (default: the current directory).

On a terminal it asks for the package name, app name and directories;
with --yes, or without a terminal, the defaults are written as they are.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			path := filepath.Join(dir, config.FileName)
			if filesystem.Exists(path) && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			cfg := config.Default()
			if !g.yes && input.Interactive() {
				p := input.Stdio()
				p.Out = cmd.OutOrStdout()
				cfg.Project.PackageName = p.Prompt("Package name", cfg.Project.PackageName)
				cfg.Project.AppName = p.Prompt("App name", cfg.Project.AppName)
				cfg.Paths.FromDir = p.Prompt("Swift project", cfg.Paths.FromDir)
				cfg.Paths.OutputDir = p.Prompt("Output directory", cfg.Paths.OutputDir)
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			if err := config.Save(path, cfg); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			output.Success("Created " + path)
			output.Step("Heuristic tables can be extended under a `tables:` key")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing magpie.yml")
	return cmd
}
