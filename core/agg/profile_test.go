package agg

import (
	"math"
	"testing"

	"github.com/huangsam/drawbias/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findProfile(t *testing.T, set schema.ProfileSet, number int) schema.NumberProfile {
	t.Helper()
	for _, p := range set.Profiles {
		if p.Number == number {
			return p
		}
	}
	require.Failf(t, "profile not found", "number %d", number)
	return schema.NumberProfile{}
}

func TestBuildProfilesGaps(t *testing.T) {
	tl := buildTimeline([]drawScenario{
		{"2024-01-01", schema.Slot11AM, "ni", 7},
		{"2024-01-11", schema.Slot3PM, "ni", 7},
		{"2024-01-21", schema.Slot9PM, "sv", 7},
		{"2024-01-31", schema.Slot11AM, "ni", 7},
		{"2024-01-31", schema.Slot3PM, "ni", 12},
	})
	now := day("2024-02-05")

	set := BuildProfiles(tl, nil, nil, now)

	assert.Equal(t, 5, set.TotalDraws)
	require.NotNil(t, set.LatestTimestamp)
	assert.Equal(t, day("2024-01-31").UnixMilli(), *set.LatestTimestamp)

	p := findProfile(t, set, 7)
	assert.Equal(t, 4, p.TotalOccurrences)
	assert.Equal(t, 3, p.Gaps.Count)
	assert.Equal(t, 30, p.Gaps.Total)
	require.NotNil(t, p.Gaps.Average)
	assert.InDelta(t, 10.0, *p.Gaps.Average, 1e-9)
	assert.Equal(t, 10, *p.Gaps.Min)
	assert.Equal(t, 10, *p.Gaps.Max)
	assert.Equal(t, 10, *p.Gaps.Last)
	assert.Len(t, p.Gaps.History, 3)
	require.NotNil(t, p.Gaps.DaysSince)
	assert.InDelta(t, 5.0, *p.Gaps.DaysSince, 1e-9)
	assert.InDelta(t, math.Exp(-0.5), p.RecencyScore, 1e-9)
	assert.InDelta(t, 0.8, p.FrequencyScore, 1e-9)
	assert.Equal(t, 3, p.CountsByCountry["ni"])
	assert.Equal(t, 1, p.CountsByCountry["sv"])
	assert.Equal(t, 2, p.CountsBySlot[schema.Slot11AM])
	assert.Equal(t, 4, p.CountsBySlotByYear[2024].Total)
	assert.Equal(t, "2024-01-31", p.LastSeen.Date)

	// Profiles come out sorted by number.
	assert.Equal(t, 7, set.Profiles[0].Number)
	assert.Equal(t, 12, set.Profiles[1].Number)
}

func TestBuildProfilesRingBufferAndHistoryCaps(t *testing.T) {
	var scenarios []drawScenario
	start := day("2023-01-01")
	for i := range 40 {
		scenarios = append(scenarios, drawScenario{FormatDate(start.AddDate(0, 0, i*2)), schema.Slot11AM, "ni", 33})
	}
	set := BuildProfiles(buildTimeline(scenarios), nil, nil, start.AddDate(0, 0, 100))

	p := findProfile(t, set, 33)
	assert.Len(t, p.RecentOccurrences, 6)
	assert.Len(t, p.Gaps.History, 30)
	assert.Equal(t, 39, p.Gaps.Count)
	assert.Equal(t, FormatDate(start.AddDate(0, 0, 78)), p.RecentOccurrences[5].Date)
}

func TestBuildProfilesFutureLastSeenClampsToZero(t *testing.T) {
	tl := buildTimeline([]drawScenario{{"2024-05-10", schema.Slot11AM, "ni", 1}})
	set := BuildProfiles(tl, nil, nil, day("2024-05-01"))
	p := findProfile(t, set, 1)
	assert.Equal(t, 0.0, *p.Gaps.DaysSince)
	assert.Equal(t, 1.0, p.RecencyScore)
}

func TestBuildProfilesEmpty(t *testing.T) {
	set := BuildProfiles(nil, nil, nil, day("2024-01-01"))
	assert.Equal(t, 0, set.TotalDraws)
	assert.Empty(t, set.Profiles)
	assert.Nil(t, set.LatestTimestamp)
}

func TestHypothesisScore(t *testing.T) {
	tests := []struct {
		name    string
		summary schema.HypothesisSummary
		want    float64
	}{
		{"none", schema.HypothesisSummary{}, 0},
		{"only pending", schema.HypothesisSummary{Pending: 2}, 0.5},
		{"mixed", schema.HypothesisSummary{Confirmed: 1, Refuted: 3, Pending: 4}, 0.25},
		{"all confirmed", schema.HypothesisSummary{Confirmed: 2}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, HypothesisScore(tt.summary), 1e-9)
		})
	}
}

func TestBuildProfilesHypothesesAndOutcomes(t *testing.T) {
	tl := buildTimeline([]drawScenario{{"2024-03-01", schema.Slot9PM, "ni", 44}})
	hyps := []schema.Hypothesis{
		{ID: "h1", Number: 44, State: schema.ConfirmedState, Date: "2024-02-01", Reasons: []string{"sueño", "casa"}},
		{ID: "h2", Number: 44, State: schema.RefutedState, Date: "2024-02-02"},
		{ID: "h3", Number: 44, State: schema.PendingState, Date: "2024-02-03"},
		{ID: "h4", Number: 90, State: schema.PendingState, Date: "2024-02-03"},
	}
	outcomes := []schema.OutcomeRecord{
		{Number: 44, State: schema.ConfirmedState, ResultDate: "2024-02-01", ResultCountry: "ni", ResultSlot: schema.Slot9PM},
		{Number: 44, State: schema.RefutedState, ResultDate: "2024-02-02", ResultCountry: "ni", ResultSlot: schema.Slot11AM},
		{Number: 44, State: schema.RefutedState, ResultDate: "2024-02-03", ResultCountry: "sv", ResultSlot: schema.Slot11AM},
	}

	set := BuildProfiles(tl, hyps, outcomes, day("2024-03-02"))
	p := findProfile(t, set, 44)

	assert.Equal(t, 1, p.Hypotheses.Confirmed)
	assert.Equal(t, 1, p.Hypotheses.Refuted)
	assert.Equal(t, 1, p.Hypotheses.Pending)
	assert.Equal(t, "sueño · casa", p.Hypotheses.Details[0].Text)
	assert.InDelta(t, 0.5, p.HypothesisScore, 1e-9)

	assert.Equal(t, 3, p.Learning.Total)
	assert.Equal(t, 1, p.Learning.Hits)
	assert.Equal(t, 2, p.Learning.Misses)
	assert.Equal(t, schema.OutcomeBucket{Hits: 1, Misses: 1, Total: 2}, p.Learning.ByCountry["ni"])
	// 9PM bucket is 1/1 and wins over everything else.
	assert.InDelta(t, 1.0, p.ContextScore, 1e-9)
	require.NotNil(t, p.Learning.LastOutcome)
	assert.Equal(t, "sv", p.Learning.LastOutcome.Country)

	assert.Len(t, set.Profiles, 1, "hypotheses alone do not create profiles")
}

func TestContextScoreEmpty(t *testing.T) {
	assert.Equal(t, 0.0, ContextScore(schema.LearningSummary{}))
}
