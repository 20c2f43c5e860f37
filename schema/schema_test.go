package schema

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(DateLayout, s)
	require.NoError(t, err)
	return d
}

func TestSlotRank(t *testing.T) {
	tests := []struct {
		slot  Slot
		rank  int
		hour  int
		valid bool
	}{
		{Slot11AM, 0, 11, true},
		{Slot3PM, 1, 15, true},
		{Slot9PM, 2, 21, true},
		{Slot("7PM"), -1, 11, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.slot), func(t *testing.T) {
			assert.Equal(t, tt.rank, tt.slot.Rank())
			assert.Equal(t, tt.hour, tt.slot.Hour())
			assert.Equal(t, tt.valid, tt.slot.Valid())
		})
	}
}

func TestDrawEventKey(t *testing.T) {
	d := DrawEvent{Number: 5, Date: mustDate(t, "2024-03-05"), Slot: Slot9PM}
	assert.Equal(t, mustDate(t, "2024-03-05").Add(12*time.Hour), d.Key())
	assert.Equal(t, "2024-03-05", d.DateString())
	assert.Equal(t, time.Tuesday, d.Weekday())
}

func TestDrawEventJSON(t *testing.T) {
	d := DrawEvent{ID: "x", Number: 42, Date: mustDate(t, "2024-01-31"), Slot: Slot3PM, Country: "ni"}
	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"fecha":"2024-01-31"`)

	var back DrawEvent
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, d, back)
}

func TestTimelineWindows(t *testing.T) {
	tl := Timeline{
		{Number: 1, Date: mustDate(t, "2024-01-01"), Slot: Slot11AM},
		{Number: 2, Date: mustDate(t, "2024-01-02"), Slot: Slot3PM},
		{Number: 3, Date: mustDate(t, "2024-01-03"), Slot: Slot9PM},
	}
	cutoff := mustDate(t, "2024-01-02")

	assert.Len(t, tl.Since(cutoff), 2)
	assert.Len(t, tl.Before(cutoff), 1)
	assert.Empty(t, tl.Since(mustDate(t, "2025-01-01")))
	assert.Len(t, tl.Before(mustDate(t, "2025-01-01")), 3)

	last, ok := tl.Last()
	assert.True(t, ok)
	assert.Equal(t, 3, last.Number)

	_, ok = Timeline{}.Last()
	assert.False(t, ok)
}

func TestOutcomeBucketRate(t *testing.T) {
	assert.Equal(t, 0.0, OutcomeBucket{}.Rate())
	assert.Equal(t, 0.25, OutcomeBucket{Hits: 1, Misses: 3, Total: 4}.Rate())
}

func TestScoreComponentsSum(t *testing.T) {
	c := ScoreComponents{Strong: 0.6, Moderate: 0.25, Weak: 0.1, Recent: 0.05}
	assert.InDelta(t, 1.0, c.Sum(), 1e-9)
}
