package cmd

import (
	"os"

	"github.com/lucidc/cintp/internal/interp/runner"
	"github.com/spf13/cobra"
)

var (
	dumpAST      bool
	trace        bool
	maxCallDepth int
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a C source file",
	Long: `Run interprets a single .c file: lexes and parses it, resolves
every name reference, then evaluates its main function.

Examples:
  # Run a program
  cintp run fact.c

  # Run with an AST dump (for debugging)
  cintp run --dump-ast fact.c

  # Run with a call/print execution trace
  cintp run --trace fact.c`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFile,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&dumpAST, "dump-ast", false, "dump the parsed AST before evaluating")
	runCmd.Flags().BoolVar(&trace, "trace", false, "echo function calls and print() calls to stderr")
	runCmd.Flags().IntVar(&maxCallDepth, "max-call-depth", 0, "recursion guard (default 100000)")
}

func runFile(_ *cobra.Command, args []string) error {
	var filename string
	if len(args) == 1 {
		filename = args[0]
	}

	opts := runner.Options{
		DumpAST:      dumpAST,
		Trace:        trace,
		MaxCallDepth: maxCallDepth,
		Stdin:        os.Stdin,
		Stderr:       os.Stderr,
		Prompt:       os.Stderr,
	}
	return runner.RunFile(filename, opts)
}
