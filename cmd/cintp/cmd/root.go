package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags).
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "cintp",
	Short: "A tree-walking interpreter for a small C subset",
	Long: `cintp interprets a single C source file: integers, pointers,
fixed-size arrays, if/while/for, and the four built-ins get, print,
malloc and free. It has no preprocessor and no standard library beyond
those four names.`,
	Version: Version,

	// Diagnostics are already written to stderr by the run subcommand
	// itself (§6's driver contract specifies the exact text); cobra's own
	// "Error: ..." plus usage banner would just add noise on top of it.
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))
}
