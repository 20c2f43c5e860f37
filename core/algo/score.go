// Package algo has the scoring, ranking and number transformation primitives.
package algo

import (
	"math"

	"github.com/huangsam/drawbias/schema"
)

// Baseline prediction weights.
const (
	FrequencyWeight  = 0.35
	RecencyWeight    = 0.35
	HypothesisWeight = 0.2
	ContextWeight    = 0.1
)

// Clamp01 clamps a score into [0, 1]. NaN becomes 0.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// BaselineScore blends the four profile scores.
func BaselineScore(p schema.NumberProfile) float64 {
	return FrequencyWeight*p.FrequencyScore +
		RecencyWeight*p.RecencyScore +
		HypothesisWeight*p.HypothesisScore +
		ContextWeight*p.ContextScore
}

// GapInfo derives the modal gap of a profile and whether the current
// days-since falls within tolerance of it. Ties keep the first gap reaching
// the highest count in history order.
func GapInfo(p schema.NumberProfile, tolerance float64) schema.GapInfo {
	info := schema.GapInfo{DaysSince: p.Gaps.DaysSince}
	counts := make(map[int]int)
	best := 0
	for _, s := range p.Gaps.History {
		counts[s.Gap]++
		if counts[s.Gap] > best {
			best = counts[s.Gap]
		}
	}
	if best == 0 {
		return info
	}
	for _, s := range p.Gaps.History {
		if counts[s.Gap] == best {
			mode := s.Gap
			info.Mode = &mode
			break
		}
	}
	info.Matches = best
	if info.DaysSince != nil {
		info.IsActive = math.Abs(*info.DaysSince-float64(*info.Mode)) <= tolerance
	}
	return info
}

// GapProximity scores how close days-since is to the modal gap, plus a small bonus per match.
func GapProximity(g schema.GapInfo) (float64, bool) {
	if g.Mode == nil || g.DaysSince == nil {
		return 0, false
	}
	return 1/(1+math.Abs(*g.DaysSince-float64(*g.Mode))) + 0.05*float64(g.Matches), true
}
