package agg

import (
	"testing"
	"time"

	"github.com/huangsam/drawbias/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildWindowStats(t *testing.T) {
	tl := buildTimeline([]drawScenario{
		{"2024-01-01", schema.Slot11AM, "ni", 5},
		{"2024-01-02", schema.Slot9PM, "ni", 5},
		{"2024-01-08", schema.Slot9PM, "ni", 5},
		{"2024-01-08", schema.Slot3PM, "ni", 9},
	})

	stats := BuildWindowStats(tl)

	s := stats[5]
	require.NotNil(t, s)
	assert.Equal(t, 3, s.Count)
	assert.InDelta(t, 0.75, s.Freq, 1e-9)
	assert.InDelta(t, 2.0/3.0, s.SlotRatio(schema.Slot9PM), 1e-9)
	assert.InDelta(t, 2.0/3.0, s.WeekdayRatio(time.Monday), 1e-9)
	assert.Equal(t, "2024-01-08", s.Last.DateString())

	var missing *WindowStats
	assert.Equal(t, 0.0, missing.SlotRatio(schema.Slot11AM))
}

func TestTrailingWindow(t *testing.T) {
	tl := buildTimeline([]drawScenario{
		{"2024-01-01", schema.Slot11AM, "ni", 1},
		{"2024-03-01", schema.Slot11AM, "ni", 2},
		{"2024-04-01", schema.Slot11AM, "ni", 3},
	})
	window, before := TrailingWindow(tl, day("2024-04-01"), 60)
	assert.Len(t, window, 2)
	assert.Len(t, before, 1)
	assert.Equal(t, 1, before[0].Number)
}

func TestDrawsOn(t *testing.T) {
	tl := buildTimeline([]drawScenario{
		{"2024-01-01", schema.Slot11AM, "ni", 1},
		{"2024-01-02", schema.Slot11AM, "ni", 2},
		{"2024-01-02", schema.Slot3PM, "ni", 3},
	})
	got := DrawsOn(tl, time.Date(2024, 1, 2, 18, 30, 0, 0, time.UTC))
	assert.Len(t, got, 2)
}
