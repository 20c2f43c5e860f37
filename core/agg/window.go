package agg

import (
	"time"

	"github.com/huangsam/drawbias/schema"
)

// WindowStats counts one number's appearances inside a trailing window.
type WindowStats struct {
	Count         int
	Freq          float64
	SlotCounts    map[schema.Slot]int
	WeekdayCounts map[time.Weekday]int
	Last          schema.DrawEvent
}

// SlotRatio is the share of window appearances on the given slot.
func (w *WindowStats) SlotRatio(slot schema.Slot) float64 {
	if w == nil || w.Count == 0 {
		return 0
	}
	return float64(w.SlotCounts[slot]) / float64(w.Count)
}

// WeekdayRatio is the share of window appearances on the given weekday.
func (w *WindowStats) WeekdayRatio(wd time.Weekday) float64 {
	if w == nil || w.Count == 0 {
		return 0
	}
	return float64(w.WeekdayCounts[wd]) / float64(w.Count)
}

// BuildWindowStats aggregates per-number stats over a window of draws.
func BuildWindowStats(window schema.Timeline) map[int]*WindowStats {
	stats := make(map[int]*WindowStats)
	for _, d := range window {
		s, ok := stats[d.Number]
		if !ok {
			s = &WindowStats{
				SlotCounts:    make(map[schema.Slot]int),
				WeekdayCounts: make(map[time.Weekday]int),
			}
			stats[d.Number] = s
		}
		s.Count++
		s.SlotCounts[d.Slot]++
		s.WeekdayCounts[d.Weekday()]++
		s.Last = d
	}
	total := float64(max(len(window), 1))
	for _, s := range stats {
		s.Freq = float64(s.Count) / total
	}
	return stats
}

// TrailingWindow returns the draws whose key is within days of ref, together
// with the draws before that cutoff.
func TrailingWindow(timeline schema.Timeline, ref time.Time, days int) (window, before schema.Timeline) {
	cutoff := ref.Add(-time.Duration(days) * schema.Day)
	return timeline.Since(cutoff), timeline.Before(cutoff)
}

// DrawsOn returns the draws on the calendar date of ref.
func DrawsOn(timeline schema.Timeline, ref time.Time) schema.Timeline {
	day := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)
	var out schema.Timeline
	for _, d := range timeline {
		if d.Date.Equal(day) {
			out = append(out, d)
		}
	}
	return out
}
