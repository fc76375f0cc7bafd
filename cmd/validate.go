package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ingo/debtmap-go/pkg/model"
)

var (
	validateConfigPath   string
	validateCoverageFile string
)

// validateCmd runs the same pipeline as analyze but renders only a
// pass/fail summary, matching the original Rust implementation's
// standalone validate command (src/commands/validate/{output,thresholds}.rs,
// see SPEC_FULL.md "Supplemented features" #1) rather than the full
// ranked report — intended for CI gates where the exit code is what
// matters.
var validateCmd = &cobra.Command{
	Use:          "validate <directory>",
	Short:        "Run the debt pipeline and report pass/fail against the configured max debt density",
	Long:         "validate runs the same analysis as 'analyze' but prints only a pass/fail\nsummary and exits non-zero when the configured debt-density threshold is exceeded.",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateConfigPath, "config", "", "path to .debtmap.yml project config file")
	validateCmd.Flags().StringVar(&validateCoverageFile, "coverage", "", "path to an LCOV coverage tracefile")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	analysis, metricsCount, maxDensity, err := runPipeline(args[0], validateConfigPath, validateCoverageFile)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	density := debtDensity(analysis, metricsCount)

	if maxDensity <= 0 {
		fmt.Fprintf(out, "PASS: %d debt items found, no max-debt-density configured\n", len(analysis.Items))
		return nil
	}

	if density > maxDensity {
		fmt.Fprintf(out, "FAIL: debt density %.3f exceeds max %.3f (%d debt items)\n", density, maxDensity, len(analysis.Items))
		return &model.ExitError{Code: 1, Message: fmt.Sprintf("debt density %.3f exceeds max %.3f", density, maxDensity)}
	}

	fmt.Fprintf(out, "PASS: debt density %.3f within max %.3f (%d debt items)\n", density, maxDensity, len(analysis.Items))
	return nil
}
