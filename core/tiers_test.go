package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/drawbias/core/agg"
	"github.com/huangsam/drawbias/schema"
)

func syntheticTierInput(now time.Time, hyps ...schema.Hypothesis) TierInput {
	timeline := syntheticTimeline()
	set := agg.BuildProfiles(timeline, hyps, nil, now)
	return TierInput{
		Timeline:    timeline,
		Profiles:    set.Profiles,
		Predictions: BaselinePredictions(set.Profiles, 0),
		Patterns:    DetectPatterns(timeline, nil, now),
		Context:     schema.AnalysisContext{TargetSlot: schema.Slot9PM},
		WindowDays:  60,
	}
}

func TestClassifyTiers_Empty(t *testing.T) {
	report := ClassifyTiers(TierInput{})
	assert.NotNil(t, report.Strong)
	assert.NotNil(t, report.Moderate)
	assert.NotNil(t, report.Weak)
	assert.NotNil(t, report.Historic)
	assert.Empty(t, report.WindowStart)
}

func TestClassifyTiers_Disjoint(t *testing.T) {
	report := ClassifyTiers(syntheticTierInput(at("2024-06-30", 12)))

	seen := make(map[int]schema.Tier)
	for _, list := range [][]schema.TierCandidate{report.Strong, report.Moderate, report.Weak} {
		for _, c := range list {
			prev, dup := seen[c.Number]
			assert.False(t, dup, "number %d in %s and %s", c.Number, prev, c.Tier)
			seen[c.Number] = c.Tier
		}
	}
	strong := numberSet(report.Strong)
	for _, c := range report.Historic {
		assert.False(t, strong[c.Number], "strong number %d also historic", c.Number)
	}
}

// confirmedTwelve backs the Saturday-night 12 with a recent confirmed hypothesis.
var confirmedTwelve = schema.Hypothesis{ID: "h12", Number: 12, State: schema.ConfirmedState, Date: "2024-06-22", Slot: schema.Slot9PM}

func TestClassifyTiers_StrongGate(t *testing.T) {
	now := at("2024-07-06", 12)
	report := ClassifyTiers(syntheticTierInput(now, confirmedTwelve))

	require.Len(t, report.Strong, 1)
	strong := report.Strong[0]
	assert.Equal(t, 12, strong.Number)
	assert.Equal(t, schema.StrongTier, strong.Tier)
	require.NotNil(t, strong.Narrative)
	assert.True(t, strong.Narrative.Active)
	require.NotNil(t, strong.Gap)
	assert.True(t, strong.Gap.IsActive)
	assert.InDelta(t, 1.0, strong.Hypothesis, 1e-9)
	assert.GreaterOrEqual(t, strong.WindowFreq, 0.02)
	assert.Greater(t, strong.Recency, 0.25)
	assert.Greater(t, strong.SlotRatio, 0.4)
	assert.Len(t, report.Moderate, MaxModerate)
	assert.Len(t, report.Weak, MaxWeak)

	tiers := map[int]schema.Tier{}
	for _, list := range [][]schema.TierCandidate{report.Strong, report.Moderate, report.Weak} {
		for _, c := range list {
			prev, dup := tiers[c.Number]
			assert.False(t, dup, "number %d in %s and %s", c.Number, prev, c.Tier)
			tiers[c.Number] = c.Tier
		}
	}
	assert.Equal(t, schema.StrongTier, tiers[12])

	// the same timeline without the hypothesis has no narrative for 12
	assert.Empty(t, ClassifyTiers(syntheticTierInput(now)).Strong)

	sel := SelectFinal(report, syntheticTimeline(), now)
	require.Len(t, sel.TopPicks, 5)
	assert.Equal(t, 12, sel.TopPicks[0].Number)
	if sel.Wildcard != nil {
		assert.NotContains(t, entryNumbers(sel.TopPicks), *sel.Wildcard)
	}
}

func TestClassifyTiers_BoundsAndOrder(t *testing.T) {
	report := ClassifyTiers(syntheticTierInput(at("2024-06-30", 12)))
	assert.Equal(t, "2024-06-29", report.WindowEnd)
	assert.Equal(t, "2024-04-30", report.WindowStart)

	lists := map[schema.Tier][]schema.TierCandidate{
		schema.StrongTier:   report.Strong,
		schema.ModerateTier: report.Moderate,
		schema.WeakTier:     report.Weak,
		schema.HistoricTier: report.Historic,
	}
	limits := map[schema.Tier]int{
		schema.StrongTier:   MaxStrong,
		schema.ModerateTier: MaxModerate,
		schema.WeakTier:     MaxWeak,
		schema.HistoricTier: MaxStrong,
	}
	for tier, list := range lists {
		assert.LessOrEqual(t, len(list), limits[tier])
		for i, c := range list {
			assert.Equal(t, tier, c.Tier)
			assert.GreaterOrEqual(t, c.Score, 0.0)
			assert.LessOrEqual(t, c.Score, 1.0)
			if i > 0 {
				assert.GreaterOrEqual(t, list[i-1].Score, c.Score)
			}
		}
	}
}

func TestClassifyTiers_InvalidSlotFallsBackToNight(t *testing.T) {
	in := syntheticTierInput(at("2024-06-30", 12))
	want := ClassifyTiers(in)

	in.Context.TargetSlot = ""
	assert.Equal(t, want, ClassifyTiers(in))
}

func TestFindNarrative(t *testing.T) {
	ref := day("2024-03-10")
	p := schema.NumberProfile{
		Number: 7,
		Hypotheses: schema.HypothesisSummary{
			Details: []schema.HypothesisDetail{{State: schema.ConfirmedState, Date: "2024-03-01"}},
		},
	}
	assert.True(t, FindNarrative(p, ref, 30).Active)
	assert.False(t, FindNarrative(p, ref, 5).Active)
	assert.False(t, FindNarrative(schema.NumberProfile{Number: 8}, ref, 30).Active)
}
