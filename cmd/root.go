package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/ingo/debtmap-go/pkg/model"
	"github.com/ingo/debtmap-go/pkg/version"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:     "debtmap",
	Short:   "Analyze a codebase for technical debt and prioritize what to fix first",
	Long:    "debtmap walks a repository, builds a call graph, cross-references test\ncoverage, and scores every function's technical debt so you can see where\nfixing tests or paying down complexity yields the most risk reduction.",
	Version: version.Version,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.SilenceErrors = true
}

// Execute runs the root command and exits with code 1 on error.
// ExitError is handled specially: its Code is used as the exit code.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *model.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
