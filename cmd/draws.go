package cmd

import (
	"errors"
	"fmt"

	"github.com/huangsam/drawbias/core"
	"github.com/huangsam/drawbias/internal/contract"
	"github.com/huangsam/drawbias/schema"
	"github.com/spf13/cobra"
)

// saveOptionsFromFlags reads the shared --test/--force/--dry-run flags.
func saveOptionsFromFlags(cmd *cobra.Command) schema.SaveOptions {
	isTest, _ := cmd.Flags().GetBool("test")
	force, _ := cmd.Flags().GetBool("force")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	opts := schema.SaveOptions{DryRun: dryRun, Force: force}
	if isTest {
		opts.Source = schema.TestSource
	}
	return opts
}

// drawsCmd focused on the draw ledger.
var drawsCmd = &cobra.Command{
	Use:   "draws",
	Short: "Manage the draw ledger",
	Long: `Record, import and inspect the draws every analysis reads from.

Draws are deduplicated on (date, country, slot, number). Test rows are kept
apart from real draws and skipped by the analysis unless --include-test is set.

Subcommands:
  add        - Record one draw
  import     - Load draws from CSV, JSON or Parquet
  list       - Show the most recent draws
  export     - Write every draw to Parquet
  delete     - Remove one draw
  clear      - Remove every draw
  duplicates - Show draws sharing a dedup key
  mark-test  - Flag draws as test rows

Examples:
  drawbias draws add --date 2024-03-01 --slot 3PM --country cr --number 07
  drawbias draws import history.csv`,
}

// drawsAddCmd records one draw.
var drawsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record one draw",
	Long: `Validate and store one draw.

Real draws open and resolve trigger events and refresh the knowledge cache.
With --resolve the draw also settles every pending hypothesis.

Examples:
  # Record a draw and settle pending hypotheses
  drawbias draws add --date 2024-03-01 --slot 3PM --country cr --number 07 --resolve

  # Check whether a draw is already stored
  drawbias draws add --date 2024-03-01 --slot 3PM --country cr --number 07 --dry-run`,
	PreRunE: sharedSetupWrapper,
	Run: func(cmd *cobra.Command, _ []string) {
		dateStr, _ := cmd.Flags().GetString("date")
		slot, _ := cmd.Flags().GetString("slot")
		country, _ := cmd.Flags().GetString("country")
		number, _ := cmd.Flags().GetString("number")
		resolve, _ := cmd.Flags().GetBool("resolve")
		opts := saveOptionsFromFlags(cmd)

		raw := schema.RawDraw{Date: dateStr, Slot: slot, Country: country, Number: number, IsTest: opts.Source == schema.TestSource}
		res, err := core.RecordDraw(rootCtx, storeManager, raw, core.RecordOptions{Save: opts, Resolve: resolve}, cfg.Now)
		if err != nil {
			contract.LogFatal("Cannot record draw", err)
		}

		var text string
		switch {
		case res.Save.ID == "" && res.Save.Duplicate:
			text = "Draw already recorded. Use --force to insert it anyway."
		case res.Save.ID == "":
			text = "Draw is valid and not yet recorded."
		default:
			text = fmt.Sprintf("Recorded draw %s (%d events opened, %d resolved, %d hypotheses settled).",
				res.Save.ID, res.Opened, res.Resolved, len(res.Outcomes))
		}
		if err := report(res, text); err != nil {
			contract.LogFatal("Cannot print result", err)
		}
	},
}

// drawsImportCmd loads a draw file.
var drawsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Load draws from a CSV, JSON or Parquet file",
	Long: `Import draws from a file chosen by extension.

CSV files need a fecha,horario,pais,numero header with an optional is_test
column. JSON files hold an array of draws with the same keys. Parquet files
use the layout written by 'draws export'.

Invalid rows are counted and skipped. Imports never settle hypotheses.

Examples:
  drawbias draws import history.csv
  drawbias draws import backup.parquet --dry-run`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(cmd *cobra.Command, args []string) {
		summary, err := core.ImportDraws(rootCtx, storeManager, args[0], saveOptionsFromFlags(cmd), cfg.Now)
		if err != nil {
			contract.LogFatal("Cannot import draws", err)
		}
		text := fmt.Sprintf("Read %d rows: %d inserted, %d duplicates, %d rejected.",
			summary.Read, summary.Inserted, summary.Duplicates, summary.Rejected)
		if err := report(summary, text); err != nil {
			contract.LogFatal("Cannot print result", err)
		}
	},
}

// drawsListCmd shows the most recent draws.
var drawsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the most recent draws",
	Long: `Show the most recent draws, oldest first. The --context filters apply.

Examples:
  drawbias draws list --limit 30
  drawbias draws list --context country=cr --output csv --output-file draws.csv`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runExecutor(core.ExecuteDrawList, "Cannot list draws")
	},
}

// drawsExportCmd writes every draw to Parquet.
var drawsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every draw to Parquet",
	Long: `Export the draw ledger to a Parquet file that 'draws import' can read back.

Requires: --output-file parameter

Examples:
  drawbias draws export --output-file draws.parquet`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runExport(core.ExecuteDrawList, "Cannot export draws")
	},
}

// drawsDeleteCmd removes one draw.
var drawsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove one draw",
	Args:  cobra.ExactArgs(1),
	Long: `Delete one draw by id and refresh the knowledge cache.

Examples:
  drawbias draws delete 3f0c1a52-8e1b-4f7e-9b59-8d6c4e0f5a21`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.DeleteDraw(rootCtx, storeManager, args[0], cfg.Now); err != nil {
			contract.LogFatal("Cannot delete draw", err)
		}
		fmt.Printf("Deleted draw %s.\n", args[0])
	},
}

// drawsClearCmd removes every draw.
var drawsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every draw",
	Long: `Delete every draw and the cached profiles.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  drawbias draws export --output-file backup.parquet
  drawbias draws clear --yes`,
	PreRunE: sharedSetupWrapper,
	Run: func(cmd *cobra.Command, _ []string) {
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			contract.LogFatal("Cannot clear draws", errors.New("pass --yes to confirm"))
		}
		if err := core.ClearDraws(rootCtx, storeManager); err != nil {
			contract.LogFatal("Cannot clear draws", err)
		}
		fmt.Println("Draws cleared successfully.")
	},
}

// drawsDuplicatesCmd lists draws sharing a dedup key.
var drawsDuplicatesCmd = &cobra.Command{
	Use:   "duplicates",
	Short: "Show draws sharing a dedup key",
	Long: `List groups of draws with the same date, country, slot and number.

Duplicates only appear when draws were forced in with --force.

Examples:
  drawbias draws duplicates`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runExecutor(core.ExecuteDrawDuplicates, "Cannot find duplicates")
	},
}

// drawsMarkTestCmd flags draws as test rows.
var drawsMarkTestCmd = &cobra.Command{
	Use:   "mark-test <id>...",
	Short: "Flag draws as test rows",
	Long: `Flag draws as test rows so the analysis skips them, or clear the flag with --unset.

Examples:
  drawbias draws mark-test 3f0c1a52-8e1b-4f7e-9b59-8d6c4e0f5a21
  drawbias draws mark-test 3f0c1a52-8e1b-4f7e-9b59-8d6c4e0f5a21 --unset`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(cmd *cobra.Command, args []string) {
		unset, _ := cmd.Flags().GetBool("unset")
		n, err := core.MarkTestDraws(rootCtx, storeManager, args, !unset, cfg.Now)
		if err != nil {
			contract.LogFatal("Cannot mark test draws", err)
		}
		fmt.Printf("Updated %d of %d draws.\n", n, len(args))
	},
}
