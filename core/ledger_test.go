package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/drawbias/internal/contract"
	"github.com/huangsam/drawbias/internal/iocache"
	"github.com/huangsam/drawbias/schema"
)

func TestAddMode(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns ids", func(t *testing.T) {
		store := &iocache.MockLedgerStore{}
		store.On("SaveMode", ctx, mock.AnythingOfType("schema.GameMode")).Return(nil)

		m, err := AddMode(ctx, store, schema.GameMode{Name: " Espejo ", Examples: []schema.ModeExample{{Original: 12, Result: 21}}})
		require.NoError(t, err)
		assert.NotEmpty(t, m.ID)
		assert.Equal(t, "Espejo", m.Name)
		assert.Equal(t, "manual", m.Kind)
		require.Len(t, m.Examples, 1)
		assert.NotEmpty(t, m.Examples[0].ID)
		store.AssertExpectations(t)
	})

	t.Run("rejects invalid modes", func(t *testing.T) {
		store := &iocache.MockLedgerStore{}
		_, err := AddMode(ctx, store, schema.GameMode{Name: "x", Operation: "teleport"})
		assert.ErrorIs(t, err, iocache.ErrInvalidMode)
		store.AssertNotCalled(t, "SaveMode", mock.Anything, mock.Anything)
	})
}

func TestAddModeExample(t *testing.T) {
	ctx := context.Background()
	store := &iocache.MockLedgerStore{}
	store.On("GetMode", ctx, "m1").Return(schema.GameMode{ID: "m1"}, nil)
	store.On("GetMode", ctx, "nope").Return(schema.GameMode{}, iocache.ErrNotFound)
	store.On("AddExample", ctx, "m1", mock.AnythingOfType("schema.ModeExample")).Return(nil)

	ex, err := AddModeExample(ctx, store, "m1", schema.ModeExample{Original: 5, Result: 50})
	require.NoError(t, err)
	assert.NotEmpty(t, ex.ID)

	_, err = AddModeExample(ctx, store, "nope", schema.ModeExample{Original: 5, Result: 50})
	assert.ErrorIs(t, err, iocache.ErrNotFound)

	_, err = AddModeExample(ctx, store, "m1", schema.ModeExample{Original: 5, Result: 500})
	assert.ErrorIs(t, err, iocache.ErrInvalidMode)
}

func TestGetModeSuggestions(t *testing.T) {
	ctx := context.Background()
	scenarios := []drawScenario{
		{"2024-03-01", schema.Slot11AM, "", 12},
		{"2024-03-01", schema.Slot3PM, "", 21},
		{"2024-03-02", schema.Slot11AM, "", 12},
		{"2024-03-02", schema.Slot9PM, "", 21},
		{"2024-03-04", schema.Slot11AM, "", 12},
	}
	ledger := &iocache.MockLedgerStore{}
	ledger.On("ListModes", ctx).Return([]schema.GameMode{
		{ID: "m1", Name: "Espejo", Examples: []schema.ModeExample{{ID: "e1", Original: 12, Result: 21}}},
	}, nil)
	ledger.On("ListDraws", ctx, true).Return(rawDraws(scenarios), nil)

	cfg := &contract.Config{Now: at("2024-03-04", 12)}
	suggestions, err := GetModeSuggestions(ctx, cfg, newTestManager(ledger))
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, 21, suggestions[0].Number)
	assert.Equal(t, 12, suggestions[0].BaseNumber)
	assert.Equal(t, "2024-03-02", suggestions[0].BaseDate)
}

func TestResolveHypotheses(t *testing.T) {
	ctx := context.Background()
	now := at("2024-03-10", 22)

	t.Run("nothing pending skips the rebuild", func(t *testing.T) {
		ledger := &iocache.MockLedgerStore{}
		ledger.On("ListHypotheses", ctx).Return([]schema.Hypothesis{{ID: "h1", State: schema.RefutedState}}, nil)

		records, err := ResolveHypotheses(ctx, newTestManager(ledger), schema.Outcome{Number: 5}, now)
		require.NoError(t, err)
		assert.Empty(t, records)
		ledger.AssertNotCalled(t, "ListDraws", mock.Anything, mock.Anything)
	})

	t.Run("resolves and rebuilds", func(t *testing.T) {
		ledger := &iocache.MockLedgerStore{}
		ledger.On("ListHypotheses", ctx).Return([]schema.Hypothesis{
			{ID: "h1", Number: 5, State: schema.PendingState},
			{ID: "h2", Number: 6, State: schema.PendingState},
		}, nil)
		ledger.On("UpdateHypothesis", ctx, mock.Anything).Return(nil)
		ledger.On("LogOutcome", ctx, mock.Anything).Return(nil)
		ledger.On("ListDraws", ctx, true).Return([]schema.RawDraw{}, nil)

		records, err := ResolveHypotheses(ctx, newTestManager(ledger), schema.Outcome{Number: 5, Date: "2024-03-10", Slot: schema.Slot9PM}, now)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, schema.ConfirmedState, records[0].State)
		assert.Equal(t, schema.RefutedState, records[1].State)
		ledger.AssertCalled(t, "ListDraws", ctx, true)
	})
}

func TestAddRelation(t *testing.T) {
	ctx := context.Background()
	store := &iocache.MockLedgerStore{}
	store.On("SaveRelation", ctx, mock.AnythingOfType("schema.Relation")).Return(nil)

	r, err := AddRelation(ctx, store, schema.RelationInput{Origin: 37, Target: 47, Type: schema.TriggersRelation}, at("2024-03-10", 9))
	require.NoError(t, err)
	assert.Equal(t, 5, r.WindowMaxDays)
	assert.True(t, r.IsActive)

	_, err = AddRelation(ctx, store, schema.RelationInput{Origin: 1, Target: 2, Type: "EMPUJA"}, at("2024-03-10", 9))
	assert.ErrorIs(t, err, iocache.ErrInvalidRelation)
	store.AssertNumberOfCalls(t, "SaveRelation", 1)
}

func TestGetRelationStats(t *testing.T) {
	ctx := context.Background()
	now := at("2024-03-20", 12)
	lag := 2
	relations := []schema.Relation{{ID: "r1", Origin: 37, Target: 47, Type: schema.TriggersRelation, WindowMaxDays: 5, IsActive: true}}
	expired := schema.TriggerEvent{ID: "e2", RelationID: "r1", Status: schema.OpenStatus, Deadline: at("2024-03-15", 21)}

	ledger := &iocache.MockLedgerStore{}
	ledger.On("ListEvents", ctx, schema.OpenStatus).Return([]schema.TriggerEvent{expired}, nil)
	ledger.On("SaveEvent", ctx, mock.MatchedBy(func(e schema.TriggerEvent) bool {
		return e.ID == "e2" && e.Status == schema.MissStatus
	})).Return(nil)
	ledger.On("ListRelations", ctx, false).Return(relations, nil)
	ledger.On("ListEvents", ctx, schema.EventStatus("")).Return([]schema.TriggerEvent{
		{ID: "e1", RelationID: "r1", Status: schema.HitStatus, Lag: &lag},
		{ID: "e2", RelationID: "r1", Status: schema.MissStatus},
	}, nil)

	stats, rels, err := GetRelationStats(ctx, &contract.Config{Now: now}, newTestManager(ledger))
	require.NoError(t, err)
	assert.Equal(t, relations, rels)
	require.Len(t, stats, 1)
	assert.Equal(t, 2, stats[0].Total)
	assert.InDelta(t, 0.5, stats[0].HitRate, 1e-9)
	assert.InDelta(t, 0.5, stats[0].MissRate, 1e-9)
	ledger.AssertExpectations(t)
}
