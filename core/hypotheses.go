package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/huangsam/drawbias/core/agg"
	"github.com/huangsam/drawbias/internal/contract"
	"github.com/huangsam/drawbias/internal/iocache"
	"github.com/huangsam/drawbias/schema"
)

// CreateHypothesis stores a new pending hypothesis. An empty date defaults to
// the date of now.
func CreateHypothesis(ctx context.Context, store contract.HypothesisStore, h schema.Hypothesis, now time.Time) (schema.Hypothesis, error) {
	h.ID = uuid.NewString()
	h.State = schema.PendingState
	h.CreatedAt = now.UTC()
	if strings.TrimSpace(h.Date) == "" {
		h.Date = now.Format(schema.DateLayout)
	}
	h, err := cleanHypothesis(h)
	if err != nil {
		return schema.Hypothesis{}, err
	}
	if err := store.CreateHypothesis(ctx, h); err != nil {
		return schema.Hypothesis{}, fmt.Errorf("create hypothesis: %w", err)
	}
	return h, nil
}

// UpdateHypothesis applies a patch to a stored hypothesis.
func UpdateHypothesis(ctx context.Context, store contract.HypothesisStore, id string, patch schema.HypothesisPatch) (schema.Hypothesis, error) {
	h, err := store.GetHypothesis(ctx, id)
	if err != nil {
		return schema.Hypothesis{}, fmt.Errorf("get hypothesis %s: %w", id, err)
	}
	if patch.Symbol != nil {
		h.Symbol = *patch.Symbol
	}
	if patch.State != nil {
		h.State = *patch.State
	}
	if patch.Date != nil {
		h.Date = *patch.Date
	}
	if patch.Slot != nil {
		h.Slot = *patch.Slot
	}
	if patch.Reasons != nil {
		h.Reasons = patch.Reasons
	}
	h, err = cleanHypothesis(h)
	if err != nil {
		return schema.Hypothesis{}, err
	}
	if err := store.UpdateHypothesis(ctx, h); err != nil {
		return schema.Hypothesis{}, fmt.Errorf("update hypothesis %s: %w", id, err)
	}
	return h, nil
}

func cleanHypothesis(h schema.Hypothesis) (schema.Hypothesis, error) {
	if h.Number < 0 || h.Number > 99 {
		return h, fmt.Errorf("%w: number %d out of range", iocache.ErrInvalidInput, h.Number)
	}
	date, ok := agg.ParseDrawDate(h.Date)
	if !ok {
		return h, fmt.Errorf("%w: invalid date %q", iocache.ErrInvalidInput, h.Date)
	}
	h.Date = agg.FormatDate(date)
	if h.Slot != "" {
		slot, ok := agg.ParseSlot(string(h.Slot))
		if !ok {
			return h, fmt.Errorf("%w: invalid slot %q", iocache.ErrInvalidInput, h.Slot)
		}
		h.Slot = slot
	}
	switch h.State {
	case schema.PendingState, schema.ConfirmedState, schema.RefutedState:
	default:
		return h, fmt.Errorf("%w: invalid state %q", iocache.ErrInvalidInput, h.State)
	}
	h.Symbol = strings.TrimSpace(h.Symbol)
	reasons := make([]string, 0, len(h.Reasons))
	for _, r := range h.Reasons {
		if r = strings.TrimSpace(r); r != "" {
			reasons = append(reasons, r)
		}
	}
	h.Reasons = reasons
	return h, nil
}

// RegisterOutcome resolves every pending hypothesis against an observed draw:
// a matching number confirms it, anything else refutes it. One outcome record
// is logged per resolved hypothesis.
func RegisterOutcome(ctx context.Context, store contract.HypothesisStore, outcome schema.Outcome, now time.Time) ([]schema.OutcomeRecord, error) {
	if outcome.Number < 0 || outcome.Number > 99 {
		return nil, fmt.Errorf("%w: outcome number %d out of range", iocache.ErrInvalidInput, outcome.Number)
	}
	hyps, err := store.ListHypotheses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list hypotheses: %w", err)
	}

	records := []schema.OutcomeRecord{}
	for _, h := range hyps {
		if h.State != schema.PendingState {
			continue
		}
		state := schema.RefutedState
		if h.Number == outcome.Number {
			state = schema.ConfirmedState
		}
		h.State = state
		if err := store.UpdateHypothesis(ctx, h); err != nil {
			return records, fmt.Errorf("resolve hypothesis %s: %w", h.ID, err)
		}
		rec := schema.OutcomeRecord{
			ID:             uuid.NewString(),
			HypothesisID:   h.ID,
			Number:         h.Number,
			State:          state,
			ResultDate:     outcome.Date,
			ResultCountry:  outcome.Country,
			ResultSlot:     outcome.Slot,
			HypothesisDate: h.Date,
			HypothesisSlot: h.Slot,
			CreatedAt:      now.UTC(),
		}
		if err := store.LogOutcome(ctx, rec); err != nil {
			return records, fmt.Errorf("log outcome for %s: %w", h.ID, err)
		}
		records = append(records, rec)
	}
	return records, nil
}
