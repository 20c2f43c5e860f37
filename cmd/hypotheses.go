package cmd

import (
	"fmt"
	"strings"

	"github.com/huangsam/drawbias/core"
	"github.com/huangsam/drawbias/internal/contract"
	"github.com/huangsam/drawbias/schema"
	"github.com/spf13/cobra"
)

// hypothesesCmd focused on user hypotheses and their outcomes.
var hypothesesCmd = &cobra.Command{
	Use:   "hypotheses",
	Short: "Track hypotheses about upcoming numbers",
	Long: `Record claims that a number will show up and settle them against real draws.

Every hypothesis starts pending. Resolving an outcome confirms the pending
hypotheses that named the drawn number and refutes the rest. The win rate
feeds the hypothesis score of each profile.

Subcommands:
  list     - Show every hypothesis
  add      - Record a new pending hypothesis
  update   - Change fields of a hypothesis
  resolve  - Settle pending hypotheses against an observed draw
  outcomes - Show the outcome log

Examples:
  drawbias hypotheses add --number 07 --reason "dreamt of a boat"
  drawbias hypotheses resolve --number 07 --country cr --slot 3PM`,
}

// hypothesesListCmd shows every hypothesis.
var hypothesesListCmd = &cobra.Command{
	Use:     "list",
	Short:   "Show every hypothesis",
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runExecutor(core.ExecuteHypothesisList, "Cannot list hypotheses")
	},
}

// hypothesesAddCmd records a pending hypothesis.
var hypothesesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a new pending hypothesis",
	Long: `Record a new pending hypothesis. The date defaults to the date of --now.

Examples:
  drawbias hypotheses add --number 07 --slot 9PM --reason "mirror of 70" --reason "due by gap"`,
	PreRunE: sharedSetupWrapper,
	Run: func(cmd *cobra.Command, _ []string) {
		numberStr, _ := cmd.Flags().GetString("number")
		number, err := parseNumber("--number", numberStr)
		if err != nil {
			contract.LogFatal("Cannot add hypothesis", err)
		}
		symbol, _ := cmd.Flags().GetString("symbol")
		dateStr, _ := cmd.Flags().GetString("date")
		slotStr, _ := cmd.Flags().GetString("slot")
		reasons, _ := cmd.Flags().GetStringSlice("reason")

		h, err := core.AddHypothesis(rootCtx, storeManager, schema.Hypothesis{
			Number:  number,
			Symbol:  symbol,
			Date:    dateStr,
			Slot:    schema.Slot(slotStr),
			Reasons: reasons,
		}, cfg.Now)
		if err != nil {
			contract.LogFatal("Cannot add hypothesis", err)
		}
		if err := report(h, fmt.Sprintf("Recorded hypothesis %s for %02d on %s.", h.ID, h.Number, h.Date)); err != nil {
			contract.LogFatal("Cannot print result", err)
		}
	},
}

// hypothesesUpdateCmd patches a hypothesis.
var hypothesesUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change fields of a hypothesis",
	Long: `Change the symbol, state, date, slot or reasons of a hypothesis.
Only the flags that are set are applied.

Examples:
  drawbias hypotheses update 3f0c1a52-8e1b-4f7e-9b59-8d6c4e0f5a21 --state refutada`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(cmd *cobra.Command, args []string) {
		patch := schema.HypothesisPatch{
			Symbol: changedString(cmd, "symbol"),
			Date:   changedString(cmd, "date"),
		}
		if state := changedString(cmd, "state"); state != nil {
			s := schema.HypothesisState(strings.ToLower(strings.TrimSpace(*state)))
			patch.State = &s
		}
		if slot := changedString(cmd, "slot"); slot != nil {
			s := schema.Slot(*slot)
			patch.Slot = &s
		}
		if cmd.Flags().Changed("reason") {
			patch.Reasons, _ = cmd.Flags().GetStringSlice("reason")
		}

		h, err := core.EditHypothesis(rootCtx, storeManager, args[0], patch, cfg.Now)
		if err != nil {
			contract.LogFatal("Cannot update hypothesis", err)
		}
		if err := report(h, fmt.Sprintf("Updated hypothesis %s (%s).", h.ID, h.State)); err != nil {
			contract.LogFatal("Cannot print result", err)
		}
	},
}

// hypothesesResolveCmd settles pending hypotheses.
var hypothesesResolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Settle pending hypotheses against an observed draw",
	Long: `Confirm pending hypotheses naming the observed number and refute the rest.
One outcome record is logged per settled hypothesis.

Examples:
  drawbias hypotheses resolve --number 07 --date 2024-03-01 --country cr --slot 3PM`,
	PreRunE: sharedSetupWrapper,
	Run: func(cmd *cobra.Command, _ []string) {
		numberStr, _ := cmd.Flags().GetString("number")
		number, err := parseNumber("--number", numberStr)
		if err != nil {
			contract.LogFatal("Cannot resolve hypotheses", err)
		}
		slotStr, _ := cmd.Flags().GetString("slot")
		slot, err := parseSlot(slotStr)
		if err != nil {
			contract.LogFatal("Cannot resolve hypotheses", err)
		}
		dateStr, _ := cmd.Flags().GetString("date")
		if strings.TrimSpace(dateStr) == "" {
			dateStr = cfg.Now.Format(schema.DateLayout)
		}
		country, _ := cmd.Flags().GetString("country")

		records, err := core.ResolveHypotheses(rootCtx, storeManager, schema.Outcome{
			Number:  number,
			Date:    dateStr,
			Country: strings.TrimSpace(country),
			Slot:    slot,
		}, cfg.Now)
		if err != nil {
			contract.LogFatal("Cannot resolve hypotheses", err)
		}
		confirmed := 0
		for _, r := range records {
			if r.State == schema.ConfirmedState {
				confirmed++
			}
		}
		text := fmt.Sprintf("Settled %d hypotheses: %d confirmed, %d refuted.", len(records), confirmed, len(records)-confirmed)
		if err := report(records, text); err != nil {
			contract.LogFatal("Cannot print result", err)
		}
	},
}

// hypothesesOutcomesCmd shows the outcome log.
var hypothesesOutcomesCmd = &cobra.Command{
	Use:     "outcomes",
	Short:   "Show the outcome log",
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runExecutor(core.ExecuteOutcomeList, "Cannot list outcomes")
	},
}
