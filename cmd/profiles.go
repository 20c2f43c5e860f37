package cmd

import (
	"errors"

	"github.com/huangsam/drawbias/core"
	"github.com/huangsam/drawbias/internal/contract"
	"github.com/huangsam/drawbias/schema"
	"github.com/spf13/cobra"
)

// profilesCmd lists every number profile.
var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List number profiles from the knowledge cache.",
	Long: `List the profile of every number that has been drawn.

Profiles are read from the knowledge cache and rebuilt from the ledger when
the cache is missing or stale.

Subcommands:
  show   - Print the profile of one number
  export - Write every profile to a Parquet file

Examples:
  drawbias profiles
  drawbias profiles --output json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runExecutor(core.ExecuteProfiles, "Cannot list profiles")
	},
}

// profilesShowCmd prints one profile.
var profilesShowCmd = &cobra.Command{
	Use:   "show <number>",
	Short: "Print the profile of one number.",
	Long: `Print the profile of one number with a one-line summary.

Examples:
  drawbias profiles show 07`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		number, err := parseNumber("number", args[0])
		if err != nil {
			contract.LogFatal("Cannot show profile", err)
		}
		if err := core.ExecuteProfile(rootCtx, cfg, storeManager, number); err != nil {
			contract.LogFatal("Cannot show profile", err)
		}
	},
}

// profilesExportCmd writes profiles to Parquet.
var profilesExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export number profiles to Parquet for analytics tools.",
	Long: `Export every number profile to a Parquet file.

Requires: --output-file parameter

Examples:
  drawbias profiles export --output-file profiles.parquet
  duckdb -c "SELECT numero, frecuencia FROM read_parquet('profiles.parquet')"`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runExport(core.ExecuteProfiles, "Cannot export profiles")
	},
}

// runExport forces parquet output for the export subcommands.
func runExport(executeFunc core.ExecutorFunc, failure string) {
	if cfg.OutputFile == "" {
		contract.LogFatal(failure, errors.New("--output-file is required"))
	}
	exportCfg := cfg.Clone()
	exportCfg.Output = schema.ParquetOut
	if err := executeFunc(rootCtx, exportCfg, storeManager); err != nil {
		contract.LogFatal(failure, err)
	}
}
