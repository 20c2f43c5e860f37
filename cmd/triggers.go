package cmd

import (
	"fmt"
	"strings"

	"github.com/huangsam/drawbias/core"
	"github.com/huangsam/drawbias/internal/contract"
	"github.com/huangsam/drawbias/internal/iocache"
	"github.com/huangsam/drawbias/schema"
	"github.com/spf13/cobra"
)

// triggersCmd focused on trigger relations and their events.
var triggersCmd = &cobra.Command{
	Use:   "triggers",
	Short: "Track trigger relations between numbers",
	Long: `Track claims that one number drawn today pulls another within a few days.

Each active relation opens an event when its origin is drawn. The event is
a HIT when the target follows inside the window, a LATE_HIT when it follows
after the window, and a MISS when the window expires first.

Subcommands:
  list   - Show relations
  add    - Store a new relation
  seed   - Install the sample relations
  events - Show trigger events
  stats  - Show hit rates and lags per relation
  delete - Remove a relation and its events

Examples:
  drawbias triggers add --origin 15 --target 51 --window-max 3
  drawbias triggers stats`,
}

// triggersListCmd shows relations.
var triggersListCmd = &cobra.Command{
	Use:     "list",
	Short:   "Show relations",
	PreRunE: sharedSetupWrapper,
	Run: func(cmd *cobra.Command, _ []string) {
		activeOnly, _ := cmd.Flags().GetBool("active")
		if err := core.ExecuteRelationList(rootCtx, cfg, storeManager, activeOnly); err != nil {
			contract.LogFatal("Cannot list relations", err)
		}
	},
}

// triggersAddCmd stores a relation.
var triggersAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Store a new relation",
	Long: `Store a new trigger relation. The window defaults to 0..5 days.

Examples:
  drawbias triggers add --origin 15 --target 51 --type AVISA --window-min 1 --window-max 3`,
	PreRunE: sharedSetupWrapper,
	Run: func(cmd *cobra.Command, _ []string) {
		originStr, _ := cmd.Flags().GetString("origin")
		origin, err := parseNumber("--origin", originStr)
		if err != nil {
			contract.LogFatal("Cannot add relation", err)
		}
		targetStr, _ := cmd.Flags().GetString("target")
		target, err := parseNumber("--target", targetStr)
		if err != nil {
			contract.LogFatal("Cannot add relation", err)
		}
		relType, _ := cmd.Flags().GetString("type")
		notes, _ := cmd.Flags().GetString("notes")
		inactive, _ := cmd.Flags().GetBool("inactive")
		active := !inactive

		r, err := core.AddRelation(rootCtx, storeManager.GetLedgerStore(), schema.RelationInput{
			Origin:        origin,
			Target:        target,
			Type:          schema.RelationType(relType),
			WindowMinDays: changedInt(cmd, "window-min"),
			WindowMaxDays: changedInt(cmd, "window-max"),
			Notes:         notes,
			IsActive:      &active,
		}, cfg.Now)
		if err != nil {
			contract.LogFatal("Cannot add relation", err)
		}
		text := fmt.Sprintf("Stored relation %02d -> %02d %s [%d..%d days] (%s).",
			r.Origin, r.Target, r.Type, r.WindowMinDays, r.WindowMaxDays, r.ID)
		if err := report(r, text); err != nil {
			contract.LogFatal("Cannot print result", err)
		}
	},
}

// triggersSeedCmd installs the sample relations.
var triggersSeedCmd = &cobra.Command{
	Use:     "seed",
	Short:   "Install the sample relations that are missing",
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		n, err := core.SeedRelations(rootCtx, storeManager.GetLedgerStore(), cfg.Now)
		if err != nil {
			contract.LogFatal("Cannot seed relations", err)
		}
		fmt.Printf("Seeded %d relations.\n", n)
	},
}

// triggersEventsCmd shows trigger events.
var triggersEventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show trigger events",
	Long: `Show trigger events, optionally filtered by status.

Examples:
  drawbias triggers events --status OPEN`,
	PreRunE: sharedSetupWrapper,
	Run: func(cmd *cobra.Command, _ []string) {
		statusStr, _ := cmd.Flags().GetString("status")
		status := schema.EventStatus(strings.ToUpper(strings.TrimSpace(statusStr)))
		switch status {
		case "", schema.OpenStatus, schema.HitStatus, schema.LateHitStatus, schema.MissStatus:
		default:
			contract.LogFatal("Cannot list events", fmt.Errorf("%w: unknown status %q", iocache.ErrInvalidInput, statusStr))
		}
		if err := core.ExecuteEventList(rootCtx, cfg, storeManager, status); err != nil {
			contract.LogFatal("Cannot list events", err)
		}
	},
}

// triggersStatsCmd shows per-relation statistics.
var triggersStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show hit rates and lags per relation",
	Long: `Close expired events as misses, then show per relation:
- Total, hit, late and miss counts and rates
- Average, median and p80 lag in days

Examples:
  drawbias triggers stats --output json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runExecutor(core.ExecuteRelationStats, "Cannot compute relation stats")
	},
}

// triggersDeleteCmd removes a relation.
var triggersDeleteCmd = &cobra.Command{
	Use:     "delete <relation-id>",
	Short:   "Remove a relation and its events",
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := storeManager.GetLedgerStore().DeleteRelation(rootCtx, args[0]); err != nil {
			contract.LogFatal("Cannot delete relation", err)
		}
		fmt.Printf("Deleted relation %s.\n", args[0])
	},
}
