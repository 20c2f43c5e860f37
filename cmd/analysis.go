package cmd

import (
	"github.com/huangsam/drawbias/core"
	"github.com/huangsam/drawbias/internal/contract"
	"github.com/spf13/cobra"
)

// runExecutor runs a read-only pass and exits on failure.
func runExecutor(executeFunc core.ExecutorFunc, failure string) {
	if err := executeFunc(rootCtx, cfg, storeManager); err != nil {
		contract.LogFatal(failure, err)
	}
}

// predictCmd runs the full pass and prints the final selection.
var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Pick the final numbers for the next slot.",
	Long: `Run the full bias pass over the draw ledger and print the final selection.

The pass combines:
- Number profiles (frequency, recency, gaps, hypothesis record)
- Pattern findings over the timeline (gap cycles, weekday repeats, transitions)
- Tier classification over the trailing window
- Target slot projection from the latest draw

The selection holds a main pick, two alternates and the numbers to watch.

Examples:
  # Predict with the defaults
  drawbias predict

  # Focus the pass on one country and weekday
  drawbias predict --context "country=cr,weekday=vie"

  # Replay the pass as of a past date
  drawbias predict --now 2024-06-01 --output json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runExecutor(core.ExecuteAnalysis, "Cannot run prediction")
	},
}

// baselineCmd ranks numbers from their profiles alone.
var baselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "Rank numbers by their profile scores alone.",
	Long: `Rank numbers by the weighted blend of their profile scores.

Skips the pattern detectors and tier classifier. Useful as a sanity check
against the full prediction.

Examples:
  drawbias baseline --limit 15`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runExecutor(core.ExecuteBaseline, "Cannot run baseline")
	},
}

// patternsCmd prints the detector findings.
var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "Show recurring patterns in the draw history.",
	Long: `Run every pattern detector over the filtered timeline.

Detectors:
- Recurring gaps per number
- Weekday and slot bias
- Repetitions within a few days
- Number transitions between draws
- Double weekday hits
- Symbol family clusters from the guide

Examples:
  # Patterns for one year
  drawbias patterns --context year=2024

  # Use a custom symbol guide
  drawbias patterns --guide guide.yaml`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runExecutor(core.ExecutePatterns, "Cannot detect patterns")
	},
}

// tiersCmd prints every tier list of a full pass.
var tiersCmd = &cobra.Command{
	Use:   "tiers",
	Short: "Show the bias tiers of the trailing window.",
	Long: `Classify numbers into bias tiers over the trailing window.

Each number lands in at most one tier, from strongest to weakest evidence.

Examples:
  drawbias tiers --window-days 90`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runExecutor(core.ExecuteTiers, "Cannot classify tiers")
	},
}

// insightsCmd prints standout numbers per slot, weekday and country.
var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Show standout numbers per slot, weekday and country.",
	Long: `Summarize the profiles into the best number per slot, per weekday
and per country by hypothesis win rate.

Examples:
  drawbias insights --output csv --output-file insights.csv`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runExecutor(core.ExecuteInsights, "Cannot generate insights")
	},
}
