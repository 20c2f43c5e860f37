package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/drawbias/internal/iocache"
	"github.com/huangsam/drawbias/schema"
)

func TestEvaluateRule_ExampleFullConfidence(t *testing.T) {
	timeline := buildTimeline([]drawScenario{
		{"2024-03-01", schema.Slot11AM, "", 12},
		{"2024-03-01", schema.Slot3PM, "", 5},
		{"2024-03-01", schema.Slot9PM, "", 21},
		{"2024-03-05", schema.Slot11AM, "", 12},
		{"2024-03-05", schema.Slot3PM, "", 21},
		{"2024-03-09", schema.Slot9PM, "", 12},
		{"2024-03-10", schema.Slot11AM, "", 21},
	})

	stats, ok := EvaluateRule(timeline, 12, 21, nil)
	require.True(t, ok)
	assert.Equal(t, 3, stats.Attempts)
	assert.Equal(t, 3, stats.Hits)
	assert.InDelta(t, 1.0, stats.Confidence, 1e-9)
	assert.InDelta(t, 0.6, stats.Support, 1e-9)
	assert.InDelta(t, 0.6, stats.Score, 1e-9)
	require.Len(t, stats.Evidence, 3)
	assert.Equal(t, 2, stats.Evidence[0].Hops)
	assert.Equal(t, "2024-03-10", stats.Evidence[2].ResultDate)
}

func TestEvaluateRule_SpanAndLookahead(t *testing.T) {
	timeline := buildTimeline([]drawScenario{
		{"2024-03-01", schema.Slot11AM, "", 12},
		{"2024-03-06", schema.Slot11AM, "", 21}, // beyond the 3-day span
		{"2024-03-07", schema.Slot11AM, "", 12},
		{"2024-03-07", schema.Slot3PM, "", 1},
		{"2024-03-07", schema.Slot9PM, "", 2},
		{"2024-03-08", schema.Slot11AM, "", 21}, // third hop
	})

	stats, ok := EvaluateRule(timeline, 12, 21, nil)
	require.True(t, ok)
	assert.Equal(t, 2, stats.Attempts)
	assert.Equal(t, 0, stats.Hits)
	assert.Zero(t, stats.Score)
	assert.Empty(t, stats.Evidence)

	_, ok = EvaluateRule(timeline, 77, 21, nil)
	assert.False(t, ok)
}

func TestEvaluateRule_Offset(t *testing.T) {
	timeline := buildTimeline([]drawScenario{
		{"2024-03-01", schema.Slot11AM, "", 12},
		{"2024-03-01", schema.Slot3PM, "", 3},
		{"2024-03-01", schema.Slot9PM, "", 21},
		{"2024-03-02", schema.Slot11AM, "", 12},
		{"2024-03-02", schema.Slot3PM, "", 21},
		{"2024-03-02", schema.Slot9PM, "", 4},
	})

	stats, ok := EvaluateRule(timeline, 12, 21, intPtr(2))
	require.True(t, ok)
	assert.Equal(t, 2, stats.Attempts)
	assert.Equal(t, 1, stats.Hits)
	assert.InDelta(t, 0.5, stats.Confidence, 1e-9)
	require.Len(t, stats.Evidence, 1)
	assert.Equal(t, 2, stats.Evidence[0].Hops)
}

func TestEvaluateMode_Operation(t *testing.T) {
	timeline := buildTimeline([]drawScenario{
		{"2024-03-01", schema.Slot11AM, "", 12},
		{"2024-03-01", schema.Slot3PM, "", 21},
		{"2024-03-01", schema.Slot9PM, "", 40},
	})
	mode := schema.GameMode{ID: "m1", Name: "Espejo", Operation: schema.MirrorOp}

	report := EvaluateMode(mode, timeline)
	assert.Equal(t, "m1", report.ModeID)
	require.Len(t, report.Rules, 3)

	// sorted by original then result
	assert.Equal(t, 12, report.Rules[0].Original)
	assert.Equal(t, 21, report.Rules[0].Result)
	assert.Equal(t, 1, report.Rules[0].Hits)
	assert.InDelta(t, 0.2, report.ScoreByValue[21], 1e-9)
	assert.Zero(t, report.ScoreByValue[12])
	assert.Len(t, report.DetailByValue[4], 1)
}

func TestEvaluateMode_ExamplesKeepBestScore(t *testing.T) {
	timeline := buildTimeline([]drawScenario{
		{"2024-03-01", schema.Slot11AM, "", 12},
		{"2024-03-01", schema.Slot3PM, "", 21},
		{"2024-03-02", schema.Slot11AM, "", 30},
		{"2024-03-02", schema.Slot3PM, "", 8},
	})
	mode := schema.GameMode{
		ID:          "m2",
		Name:        "Pares",
		Description: "pares conocidos",
		Examples: []schema.ModeExample{
			{Original: 12, Result: 21, Note: "espejo"},
			{Original: 30, Result: 21},
			{Original: 55, Result: 21},
		},
	}

	report := EvaluateMode(mode, timeline)
	require.Len(t, report.Rules, 2)
	assert.Equal(t, "espejo", report.Rules[0].Note)
	assert.Equal(t, "pares conocidos", report.Rules[1].Note)
	assert.InDelta(t, 0.2, report.ScoreByValue[21], 1e-9)
	assert.Len(t, report.DetailByValue[21], 2)
}

func TestSuggestFromModes(t *testing.T) {
	timeline := buildTimeline([]drawScenario{
		{"2024-03-01", schema.Slot11AM, "", 12},
		{"2024-03-01", schema.Slot3PM, "", 21},
		{"2024-03-02", schema.Slot11AM, "", 12},
		{"2024-03-02", schema.Slot3PM, "", 21},
		{"2024-03-03", schema.Slot11AM, "", 12},
		{"2024-03-03", schema.Slot3PM, "", 7},
	})
	modes := []schema.GameMode{
		{ID: "m1", Name: "Espejo", Examples: []schema.ModeExample{{Original: 12, Result: 21}, {Original: 7, Result: 99}}},
		{ID: "m2", Name: "Otro", Examples: []schema.ModeExample{{Original: 12, Result: 21, Note: "dup"}}},
	}

	suggestions := SuggestFromModes(EvaluateModes(modes, timeline), timeline, 0)
	require.Len(t, suggestions, 2)

	first := suggestions[0]
	assert.Equal(t, "m1", first.ModeID)
	assert.Equal(t, 21, first.Number)
	assert.Equal(t, 12, first.BaseNumber)
	assert.Equal(t, "2024-03-03", first.BaseDate)
	assert.Equal(t, schema.Slot11AM, first.BaseSlot)
	assert.InDelta(t, 2.0/3.0, first.Confidence, 1e-9)
	assert.Equal(t, 3, first.Support)
	assert.Equal(t, "m2", suggestions[1].ModeID)
	assert.Equal(t, "dup", suggestions[1].Note)

	assert.Empty(t, SuggestFromModes(EvaluateModes(modes, nil), nil, 3))
}

func TestValidateMode(t *testing.T) {
	tests := []struct {
		name    string
		mode    schema.GameMode
		wantErr bool
	}{
		{"valid operation", schema.GameMode{Name: "Vecinos", Operation: schema.NeighborOp, Params: map[string]int{"k": 2}}, false},
		{"valid examples", schema.GameMode{Name: "Manual", Examples: []schema.ModeExample{{Original: 1, Result: 2}}}, false},
		{"missing name", schema.GameMode{Name: "  "}, true},
		{"unknown operation", schema.GameMode{Name: "x", Operation: "rotate"}, true},
		{"bad offset", schema.GameMode{Name: "x", Offset: intPtr(0)}, true},
		{"example out of range", schema.GameMode{Name: "x", Examples: []schema.ModeExample{{Original: 100, Result: 2}}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMode(tt.mode)
			if tt.wantErr {
				assert.ErrorIs(t, err, iocache.ErrInvalidMode)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNormalizeMode(t *testing.T) {
	m := NormalizeMode(schema.GameMode{Name: "  Espejo ", Operation: " Mirror ", Examples: []schema.ModeExample{{Note: " n "}}})
	assert.Equal(t, "Espejo", m.Name)
	assert.Equal(t, "manual", m.Kind)
	assert.Equal(t, schema.MirrorOp, m.Operation)
	assert.NotNil(t, m.Params)
	assert.Equal(t, "n", m.Examples[0].Note)

	plain := NormalizeMode(schema.GameMode{Name: "x", Params: map[string]int{"k": 1}})
	assert.Nil(t, plain.Params)
}
