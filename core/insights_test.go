package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/drawbias/schema"
)

func TestBaselinePredictions(t *testing.T) {
	profiles := []schema.NumberProfile{
		{Number: 3, FrequencyScore: 0.2, RecencyScore: 0.2},
		{Number: 8, FrequencyScore: 1, RecencyScore: 1, HypothesisScore: 1, ContextScore: 1},
		{Number: 1, FrequencyScore: 0.2, RecencyScore: 0.2},
		{Number: 9, FrequencyScore: math.NaN()},
	}

	all := BaselinePredictions(profiles, 0)
	require.Len(t, all, 3, "NaN scores are dropped")
	assert.Equal(t, 8, all[0].Number)
	assert.InDelta(t, 1.0, all[0].Score, 1e-9)
	assert.Equal(t, []int{1, 3}, []int{all[1].Number, all[2].Number}, "ties break on the smaller number")
	assert.InDelta(t, 0.14, all[1].Score, 1e-9)

	assert.Len(t, BaselinePredictions(profiles, 1), 1)
	assert.Empty(t, BaselinePredictions(nil, DisplayPredictionLimit))
}

func TestGenerateInsights(t *testing.T) {
	assert.Equal(t, []schema.Insight{}, GenerateInsights(nil))

	profiles := []schema.NumberProfile{
		{
			Number:           4,
			TotalOccurrences: 4,
			CountsBySlot:     map[schema.Slot]int{schema.Slot11AM: 3, schema.Slot9PM: 1},
			CountsByWeekday:  map[int]int{1: 4},
			Learning: schema.LearningSummary{
				ByCountry: map[string]schema.OutcomeBucket{"cr": {Hits: 1, Total: 2}},
			},
		},
		{
			Number:           9,
			TotalOccurrences: 2,
			CountsBySlot:     map[schema.Slot]int{schema.Slot9PM: 2},
			CountsByWeekday:  map[int]int{1: 1, 5: 1},
			Learning: schema.LearningSummary{
				ByCountry: map[string]schema.OutcomeBucket{"cr": {Hits: 2, Total: 2}, "ni": {Misses: 1, Total: 1}},
			},
		},
	}
	insights := GenerateInsights(profiles)

	byTitle := make(map[string]schema.Insight)
	for _, in := range insights {
		byTitle[in.Title] = in
	}
	assert.Equal(t, 4, byTitle["Turno 11AM"].Number)
	assert.InDelta(t, 0.75, byTitle["Turno 11AM"].Ratio, 1e-9)
	assert.Equal(t, 9, byTitle["Turno 9PM"].Number)
	assert.NotContains(t, byTitle, "Turno 3PM")
	assert.Equal(t, 4, byTitle["Día Lun"].Number)
	assert.Equal(t, 9, byTitle["Día Vie"].Number)
	assert.Equal(t, 9, byTitle["País cr"].Number)
	assert.Equal(t, "pais", byTitle["País ni"].Kind)
}

func TestDescribeProfile(t *testing.T) {
	last := 7
	avg := 6.5
	p := schema.NumberProfile{
		Number:          21,
		LastSeen:        &schema.Occurrence{Date: "2024-03-09", Slot: schema.Slot3PM, Country: "cr"},
		Gaps:            schema.GapStats{Last: &last, Average: &avg},
		CountsByCountry: map[string]int{"cr": 5, "ni": 2},
		CountsBySlot:    map[schema.Slot]int{schema.Slot3PM: 4},
		CountsByWeekday: map[int]int{6: 3},
	}
	got := DescribeProfile(p)
	assert.Contains(t, got, "Última vez: 2024-03-09 3PM (cr)")
	assert.Contains(t, got, "Gap previo: 7 días (promedio 6.5)")
	assert.Contains(t, got, "País dominante: cr (5 veces)")
	assert.Contains(t, got, "Día típico: Sáb (3x)")
	assert.NotContains(t, got, "Hipótesis")

	assert.Empty(t, DescribeProfile(schema.NumberProfile{Number: 1}))
}
