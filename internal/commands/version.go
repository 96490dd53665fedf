package commands

import (
	"fmt"
	"runtime"

	"github.com/simonhull/firebird-suite/magpie"
	"github.com/spf13/cobra"
)

// VersionCmd prints the magpie version.
func VersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the magpie version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "magpie %s (%s %s/%s)\n", magpie.Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}
