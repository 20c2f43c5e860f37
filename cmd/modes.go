package cmd

import (
	"fmt"

	"github.com/huangsam/drawbias/core"
	"github.com/huangsam/drawbias/internal/contract"
	"github.com/huangsam/drawbias/schema"
	"github.com/spf13/cobra"
)

// modesCmd focused on user-defined game modes.
var modesCmd = &cobra.Command{
	Use:   "modes",
	Short: "Manage game modes and evaluate them on the history",
	Long: `Manage game modes: named rules that turn one drawn number into another.

A mode is either a built-in operation (mirror, digit-sum, add, sub, neighbor,
digit-map) or a list of literal examples such as 12 -> 21. Evaluation checks
how often each rule held in the following draws, and suggestions project
the strongest rules from the latest draws.

Subcommands:
  list           - Show stored modes
  add            - Store a new mode
  example        - Attach a literal example to a mode
  example-delete - Remove an example from a mode
  evaluate       - Score every mode against the timeline
  suggest        - Project numbers from the best rules
  delete         - Remove a mode

Examples:
  drawbias modes add --name espejo --operation mirror --offset 1
  drawbias modes evaluate`,
}

// modesListCmd shows stored modes.
var modesListCmd = &cobra.Command{
	Use:     "list",
	Short:   "Show stored modes",
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runExecutor(core.ExecuteModeList, "Cannot list modes")
	},
}

// modesAddCmd stores a new mode.
var modesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Store a new mode",
	Long: `Store a new game mode. Without --operation the mode only holds literal
examples added later with 'modes example'.

Examples:
  drawbias modes add --name espejo --operation mirror
  drawbias modes add --name "suma tres" --operation add --param n=3 --offset 2`,
	PreRunE: sharedSetupWrapper,
	Run: func(cmd *cobra.Command, _ []string) {
		name, _ := cmd.Flags().GetString("name")
		kind, _ := cmd.Flags().GetString("kind")
		description, _ := cmd.Flags().GetString("description")
		operation, _ := cmd.Flags().GetString("operation")
		params, _ := cmd.Flags().GetStringToInt("param")

		m, err := core.AddMode(rootCtx, storeManager.GetLedgerStore(), schema.GameMode{
			Name:        name,
			Kind:        kind,
			Description: description,
			Operation:   schema.Operation(operation),
			Params:      params,
			Offset:      changedInt(cmd, "offset"),
		})
		if err != nil {
			contract.LogFatal("Cannot add mode", err)
		}
		if err := report(m, fmt.Sprintf("Stored mode %s (%s).", m.Name, m.ID)); err != nil {
			contract.LogFatal("Cannot print result", err)
		}
	},
}

// modesExampleCmd attaches an example to a mode.
var modesExampleCmd = &cobra.Command{
	Use:   "example <mode-id>",
	Short: "Attach a literal example to a mode",
	Long: `Attach an original -> result example to a stored mode.

Examples:
  drawbias modes example 3f0c1a52-8e1b-4f7e-9b59-8d6c4e0f5a21 --original 12 --result 21`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(cmd *cobra.Command, args []string) {
		originalStr, _ := cmd.Flags().GetString("original")
		original, err := parseNumber("--original", originalStr)
		if err != nil {
			contract.LogFatal("Cannot add example", err)
		}
		resultStr, _ := cmd.Flags().GetString("result")
		result, err := parseNumber("--result", resultStr)
		if err != nil {
			contract.LogFatal("Cannot add example", err)
		}
		note, _ := cmd.Flags().GetString("note")

		ex, err := core.AddModeExample(rootCtx, storeManager.GetLedgerStore(), args[0], schema.ModeExample{
			Original: original,
			Result:   result,
			Note:     note,
		})
		if err != nil {
			contract.LogFatal("Cannot add example", err)
		}
		if err := report(ex, fmt.Sprintf("Added example %02d -> %02d (%s).", ex.Original, ex.Result, ex.ID)); err != nil {
			contract.LogFatal("Cannot print result", err)
		}
	},
}

// modesExampleDeleteCmd removes an example.
var modesExampleDeleteCmd = &cobra.Command{
	Use:     "example-delete <mode-id> <example-id>",
	Short:   "Remove an example from a mode",
	Args:    cobra.ExactArgs(2),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := storeManager.GetLedgerStore().DeleteExample(rootCtx, args[0], args[1]); err != nil {
			contract.LogFatal("Cannot delete example", err)
		}
		fmt.Printf("Deleted example %s.\n", args[1])
	},
}

// modesEvaluateCmd scores every mode.
var modesEvaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score every mode against the timeline",
	Long: `Check each rule of every mode against the draws that followed its origin.

Examples:
  drawbias modes evaluate --context country=cr`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runExecutor(core.ExecuteModeEvaluate, "Cannot evaluate modes")
	},
}

// modesSuggestCmd projects numbers from the best rules.
var modesSuggestCmd = &cobra.Command{
	Use:     "suggest",
	Short:   "Project numbers from the best rules",
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runExecutor(core.ExecuteModeSuggest, "Cannot suggest from modes")
	},
}

// modesDeleteCmd removes a mode.
var modesDeleteCmd = &cobra.Command{
	Use:     "delete <mode-id>",
	Short:   "Remove a mode and its examples",
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := storeManager.GetLedgerStore().DeleteMode(rootCtx, args[0]); err != nil {
			contract.LogFatal("Cannot delete mode", err)
		}
		fmt.Printf("Deleted mode %s.\n", args[0])
	},
}
