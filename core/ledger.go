package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/huangsam/drawbias/internal/contract"
	"github.com/huangsam/drawbias/internal/outwriter"
	"github.com/huangsam/drawbias/schema"
)

// AddMode validates a mode, assigns ids and stores it.
func AddMode(ctx context.Context, store contract.ModeStore, m schema.GameMode) (schema.GameMode, error) {
	m = NormalizeMode(m)
	if err := ValidateMode(m); err != nil {
		return schema.GameMode{}, err
	}
	m.ID = uuid.NewString()
	if m.Examples == nil {
		m.Examples = []schema.ModeExample{}
	}
	for i := range m.Examples {
		m.Examples[i].ID = uuid.NewString()
	}
	if err := store.SaveMode(ctx, m); err != nil {
		return schema.GameMode{}, fmt.Errorf("save mode: %w", err)
	}
	return m, nil
}

// AddModeExample attaches a literal example to an existing mode.
func AddModeExample(ctx context.Context, store contract.ModeStore, modeID string, ex schema.ModeExample) (schema.ModeExample, error) {
	if err := ValidateExample(ex); err != nil {
		return schema.ModeExample{}, err
	}
	if _, err := store.GetMode(ctx, modeID); err != nil {
		return schema.ModeExample{}, fmt.Errorf("get mode %s: %w", modeID, err)
	}
	ex.ID = uuid.NewString()
	if err := store.AddExample(ctx, modeID, ex); err != nil {
		return schema.ModeExample{}, fmt.Errorf("add example: %w", err)
	}
	return ex, nil
}

// loadModesAndTimeline reads what mode evaluation needs.
func loadModesAndTimeline(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) ([]schema.GameMode, schema.Timeline, error) {
	ledger := mgr.GetLedgerStore()
	modes, err := ledger.ListModes(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list modes: %w", err)
	}
	timeline, err := LoadTimeline(ctx, ledger, cfg.IncludeTest)
	if err != nil {
		return nil, nil, err
	}
	return modes, FilterTimeline(timeline, cfg.Context), nil
}

// GetModeSuggestions evaluates every stored mode and derives suggestions from
// the latest draws.
func GetModeSuggestions(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) ([]schema.ModeSuggestion, error) {
	modes, timeline, err := loadModesAndTimeline(ctx, cfg, mgr)
	if err != nil {
		return nil, err
	}
	return SuggestFromModes(EvaluateModes(modes, timeline), timeline, SuggestionOrigins), nil
}

// ExecuteModeList prints the stored modes.
func ExecuteModeList(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	modes, err := mgr.GetLedgerStore().ListModes(ctx)
	if err != nil {
		return fmt.Errorf("list modes: %w", err)
	}
	return outwriter.NewOutWriter().WriteModes(modes, cfg)
}

// ExecuteModeEvaluate prints the per-rule statistics of every mode.
func ExecuteModeEvaluate(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	modes, timeline, err := loadModesAndTimeline(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	printHeader(ctx, cfg, "🧪", fmt.Sprintf("Evaluating %d modes over %d draws", len(modes), len(timeline)))
	return outwriter.NewOutWriter().WriteModeReports(EvaluateModes(modes, timeline), cfg)
}

// ExecuteModeSuggest prints suggestions from confident mode rules.
func ExecuteModeSuggest(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	suggestions, err := GetModeSuggestions(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteModeSuggestions(suggestions, cfg)
}

// ExecuteHypothesisList prints every hypothesis.
func ExecuteHypothesisList(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	hyps, err := mgr.GetLedgerStore().ListHypotheses(ctx)
	if err != nil {
		return fmt.Errorf("list hypotheses: %w", err)
	}
	return outwriter.NewOutWriter().WriteHypotheses(hyps, cfg)
}

// ExecuteOutcomeList prints the outcome log.
func ExecuteOutcomeList(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	records, err := mgr.GetLedgerStore().ListOutcomes(ctx)
	if err != nil {
		return fmt.Errorf("list outcomes: %w", err)
	}
	return outwriter.NewOutWriter().WriteOutcomes(records, cfg)
}

// ResolveHypotheses resolves pending hypotheses against an outcome and
// refreshes the knowledge cache, since profiles carry hypothesis summaries.
func ResolveHypotheses(ctx context.Context, mgr contract.StoreManager, outcome schema.Outcome, now time.Time) ([]schema.OutcomeRecord, error) {
	ledger := mgr.GetLedgerStore()
	records, err := RegisterOutcome(ctx, ledger, outcome, now)
	if err != nil {
		return records, err
	}
	if len(records) > 0 {
		if _, err := RebuildKnowledge(ctx, ledger, mgr.GetKnowledgeStore(), now); err != nil {
			return records, err
		}
	}
	return records, nil
}

// AddHypothesis stores a new hypothesis and refreshes the knowledge cache.
func AddHypothesis(ctx context.Context, mgr contract.StoreManager, h schema.Hypothesis, now time.Time) (schema.Hypothesis, error) {
	ledger := mgr.GetLedgerStore()
	h, err := CreateHypothesis(ctx, ledger, h, now)
	if err != nil {
		return h, err
	}
	if _, err := RebuildKnowledge(ctx, ledger, mgr.GetKnowledgeStore(), now); err != nil {
		return h, err
	}
	return h, nil
}

// EditHypothesis patches a hypothesis and refreshes the knowledge cache.
func EditHypothesis(ctx context.Context, mgr contract.StoreManager, id string, patch schema.HypothesisPatch, now time.Time) (schema.Hypothesis, error) {
	ledger := mgr.GetLedgerStore()
	h, err := UpdateHypothesis(ctx, ledger, id, patch)
	if err != nil {
		return h, err
	}
	if _, err := RebuildKnowledge(ctx, ledger, mgr.GetKnowledgeStore(), now); err != nil {
		return h, err
	}
	return h, nil
}

// AddRelation validates and stores a trigger relation.
func AddRelation(ctx context.Context, store contract.TriggerStore, in schema.RelationInput, now time.Time) (schema.Relation, error) {
	r, err := NewRelation(in, now)
	if err != nil {
		return schema.Relation{}, err
	}
	if err := store.SaveRelation(ctx, r); err != nil {
		return schema.Relation{}, fmt.Errorf("save relation: %w", err)
	}
	return r, nil
}

// ExecuteRelationList prints trigger relations.
func ExecuteRelationList(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, activeOnly bool) error {
	relations, err := mgr.GetLedgerStore().ListRelations(ctx, activeOnly)
	if err != nil {
		return fmt.Errorf("list relations: %w", err)
	}
	return outwriter.NewOutWriter().WriteRelations(relations, cfg)
}

// ExecuteEventList prints trigger events, optionally filtered by status.
func ExecuteEventList(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, status schema.EventStatus) error {
	events, err := mgr.GetLedgerStore().ListEvents(ctx, status)
	if err != nil {
		return fmt.Errorf("list events: %w", err)
	}
	return outwriter.NewOutWriter().WriteTriggerEvents(events, cfg)
}

// GetRelationStats closes expired events first so misses are counted.
func GetRelationStats(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) ([]schema.RelationStats, []schema.Relation, error) {
	ledger := mgr.GetLedgerStore()
	if _, err := CloseExpired(ctx, ledger, cfg.Now); err != nil {
		return nil, nil, err
	}
	relations, err := ledger.ListRelations(ctx, false)
	if err != nil {
		return nil, nil, fmt.Errorf("list relations: %w", err)
	}
	events, err := ledger.ListEvents(ctx, "")
	if err != nil {
		return nil, nil, fmt.Errorf("list events: %w", err)
	}
	return ComputeRelationStats(relations, events), relations, nil
}

// ExecuteRelationStats prints per-relation statistics.
func ExecuteRelationStats(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	stats, relations, err := GetRelationStats(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteRelationStats(stats, relations, cfg)
}
