package core

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/huangsam/drawbias/core/agg"
	"github.com/huangsam/drawbias/core/algo"
	"github.com/huangsam/drawbias/schema"
)

// DisplayPredictionLimit is the number of baseline predictions shown to users.
const DisplayPredictionLimit = 9

// WeekdayLabels are short Spanish day names indexed by time.Weekday.
var WeekdayLabels = [7]string{"Dom", "Lun", "Mar", "Mié", "Jue", "Vie", "Sáb"}

// BaselinePredictions scores every profile and returns them in descending
// order. A non-positive limit keeps every prediction.
func BaselinePredictions(profiles []schema.NumberProfile, limit int) []schema.Prediction {
	preds := make([]schema.Prediction, 0, len(profiles))
	for _, p := range profiles {
		score := algo.BaselineScore(p)
		if math.IsNaN(score) || math.IsInf(score, 0) {
			continue
		}
		preds = append(preds, schema.Prediction{
			Number:     p.Number,
			Score:      score,
			Frequency:  p.FrequencyScore,
			Recency:    p.RecencyScore,
			Hypothesis: p.HypothesisScore,
			Context:    p.ContextScore,
			LastSeen:   p.LastSeen,
			Gaps:       p.Gaps,
		})
	}
	return algo.RankPredictions(preds, limit)
}

// GenerateInsights picks the standout number per slot, per weekday and per country.
func GenerateInsights(profiles []schema.NumberProfile) []schema.Insight {
	if len(profiles) == 0 {
		return []schema.Insight{}
	}
	var insights []schema.Insight

	for _, slot := range schema.AllSlots {
		best, ratio, ok := bestRatio(profiles, func(p schema.NumberProfile) int { return p.CountsBySlot[slot] })
		if !ok {
			continue
		}
		insights = append(insights, schema.Insight{
			Kind:        "turno",
			Title:       "Turno " + string(slot),
			Description: fmt.Sprintf("El %s aparece en %d%% de sus registros durante %s.", agg.PadNumber(best), percent(ratio), slot),
			Number:      best,
			Ratio:       ratio,
		})
	}

	for wd := range 7 {
		best, ratio, ok := bestRatio(profiles, func(p schema.NumberProfile) int { return p.CountsByWeekday[wd] })
		if !ok {
			continue
		}
		label := WeekdayLabels[wd]
		insights = append(insights, schema.Insight{
			Kind:        "dia",
			Title:       "Día " + label,
			Description: fmt.Sprintf("El %s domina los %s (%d%% de sus apariciones).", agg.PadNumber(best), label, percent(ratio)),
			Number:      best,
			Ratio:       ratio,
		})
	}

	type countryBest struct {
		number int
		ratio  float64
	}
	byCountry := make(map[string]countryBest)
	for _, p := range profiles {
		for country, bucket := range p.Learning.ByCountry {
			if bucket.Total == 0 {
				continue
			}
			rate := bucket.Rate()
			if cur, ok := byCountry[country]; !ok || rate > cur.ratio || (rate == cur.ratio && p.Number < cur.number) {
				byCountry[country] = countryBest{number: p.Number, ratio: rate}
			}
		}
	}
	countries := make([]string, 0, len(byCountry))
	for c := range byCountry {
		countries = append(countries, c)
	}
	sort.Strings(countries)
	for _, c := range countries {
		info := byCountry[c]
		insights = append(insights, schema.Insight{
			Kind:        "pais",
			Title:       "País " + c,
			Description: fmt.Sprintf("El %s acertó %d%% de las hipótesis en %s.", agg.PadNumber(info.number), percent(info.ratio), c),
			Number:      info.number,
			Ratio:       info.ratio,
		})
	}
	return insights
}

// bestRatio returns the profile with the highest count/total. Profiles are
// visited in order so the first one wins ties.
func bestRatio(profiles []schema.NumberProfile, count func(schema.NumberProfile) int) (int, float64, bool) {
	best, bestRatio, found := 0, 0.0, false
	for _, p := range profiles {
		c := count(p)
		if c == 0 || p.TotalOccurrences == 0 {
			continue
		}
		ratio := float64(c) / float64(p.TotalOccurrences)
		if !found || ratio > bestRatio {
			best, bestRatio, found = p.Number, ratio, true
		}
	}
	return best, bestRatio, found
}

func percent(ratio float64) int {
	return int(math.Round(ratio * 100))
}

// DescribeProfile renders a one-line summary of a profile.
func DescribeProfile(p schema.NumberProfile) string {
	var parts []string
	if p.LastSeen != nil {
		parts = append(parts, fmt.Sprintf("Última vez: %s %s (%s)", p.LastSeen.Date, p.LastSeen.Slot, p.LastSeen.Country))
	}
	if p.Gaps.Last != nil {
		avg := "?"
		if p.Gaps.Average != nil {
			avg = fmt.Sprintf("%.1f", *p.Gaps.Average)
		}
		parts = append(parts, fmt.Sprintf("Gap previo: %d días (promedio %s)", *p.Gaps.Last, avg))
	}
	if country, n, ok := topKey(p.CountsByCountry); ok {
		parts = append(parts, fmt.Sprintf("País dominante: %s (%d veces)", country, n))
	}
	if slot, n, ok := topKey(p.CountsBySlot); ok {
		parts = append(parts, fmt.Sprintf("Turno frecuente: %s (%dx)", slot, n))
	}
	if wd, n, ok := topKey(p.CountsByWeekday); ok && wd >= 0 && wd < 7 {
		parts = append(parts, fmt.Sprintf("Día típico: %s (%dx)", WeekdayLabels[wd], n))
	}
	if p.Learning.Total > 0 {
		parts = append(parts, fmt.Sprintf("Hipótesis: %d/%d acertadas (%d%%)", p.Learning.Hits, p.Learning.Total, percent(p.HypothesisScore)))
		if last := p.Learning.LastOutcome; last != nil {
			date := last.Date
			if date == "" {
				date = "?"
			}
			parts = append(parts, fmt.Sprintf("Último aprendizaje: %s %s (%s)", date, last.Slot, last.State))
		}
	}
	return strings.Join(parts, " · ")
}

// topKey returns the key with the highest count; ties go to the smallest key.
func topKey[K interface{ ~string | ~int }](m map[K]int) (K, int, bool) {
	var bestKey K
	bestCount, found := 0, false
	for k, c := range m {
		if !found || c > bestCount || (c == bestCount && k < bestKey) {
			bestKey, bestCount, found = k, c, true
		}
	}
	return bestKey, bestCount, found
}
