package algo

import (
	"sort"

	"github.com/huangsam/drawbias/schema"
)

// RankPredictions sorts predictions by score in descending order and returns
// the top 'limit' entries. A non-positive limit keeps everything.
// Ties are broken by number so results are deterministic.
func RankPredictions(preds []schema.Prediction, limit int) []schema.Prediction {
	sort.SliceStable(preds, func(i, j int) bool {
		if preds[i].Score != preds[j].Score {
			return preds[i].Score > preds[j].Score
		}
		return preds[i].Number < preds[j].Number
	})
	if limit > 0 && len(preds) > limit {
		return preds[:limit]
	}
	return preds
}

// RankCandidates sorts tier candidates by score in descending order and
// returns the top 'limit' entries.
func RankCandidates(candidates []schema.TierCandidate, limit int) []schema.TierCandidate {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Number < candidates[j].Number
	})
	if limit > 0 && len(candidates) > limit {
		return candidates[:limit]
	}
	return candidates
}

// RankEntries sorts final entries by clamped total in descending order.
func RankEntries(entries []schema.ScoredEntry) []schema.ScoredEntry {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := Clamp01(entries[i].Total), Clamp01(entries[j].Total)
		if a != b {
			return a > b
		}
		return entries[i].Number < entries[j].Number
	})
	return entries
}
