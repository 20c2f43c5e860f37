package core

import (
	"strings"
	"time"

	"github.com/huangsam/drawbias/core/agg"
	"github.com/huangsam/drawbias/core/algo"
	"github.com/huangsam/drawbias/schema"
)

// Tier defaults.
const (
	DefaultTierWindowDays = 120
	MaxStrong             = 12
	MaxModerate           = 20
	MaxWeak               = 36

	strongNarrativeDays   = 30
	moderateNarrativeDays = 45
	turnRepeatDays        = 30
	recentAppearanceDays  = 10
)

// regionalCountries are matched case-insensitively.
var regionalCountries = map[string]bool{"ni": true, "nicaragua": true, "sv": true, "el salvador": true}

// TierInput gathers everything the classifier reads.
type TierInput struct {
	Timeline    schema.Timeline
	Profiles    []schema.NumberProfile
	Predictions []schema.Prediction
	Patterns    schema.PatternReport
	Guide       schema.Guide
	Context     schema.AnalysisContext
	WindowDays  int
}

// tierSignals are the per-number metrics shared by every tier gate.
type tierSignals struct {
	profile   schema.NumberProfile
	pred      *schema.Prediction
	stats     *agg.WindowStats
	recency   float64
	slotRatio float64
	dowRatio  float64
	hasDow    bool
}

// ClassifyTiers sorts every profiled number into at most one tier.
// Windows are anchored on the latest draw, not on the wall clock.
func ClassifyTiers(in TierInput) schema.TierReport {
	report := schema.TierReport{
		Strong:   []schema.TierCandidate{},
		Moderate: []schema.TierCandidate{},
		Weak:     []schema.TierCandidate{},
		Historic: []schema.TierCandidate{},
	}
	latest, ok := in.Timeline.Last()
	if !ok || len(in.Profiles) == 0 {
		return report
	}
	windowDays := in.WindowDays
	if windowDays <= 0 {
		windowDays = DefaultTierWindowDays
	}
	window, historic := agg.TrailingWindow(in.Timeline, latest.Date, windowDays)
	if len(window) == 0 {
		return report
	}
	report.WindowStart = window[0].DateString()
	report.WindowEnd = latest.DateString()

	windowStats := agg.BuildWindowStats(window)
	historicStats := agg.BuildWindowStats(historic)
	predMap := make(map[int]*schema.Prediction, len(in.Predictions))
	for i := range in.Predictions {
		predMap[in.Predictions[i].Number] = &in.Predictions[i]
	}
	slot := in.Context.TargetSlot
	if !slot.Valid() {
		slot = schema.Slot9PM
	}

	signalsFor := func(p schema.NumberProfile, stats map[int]*agg.WindowStats) tierSignals {
		s := tierSignals{profile: p, pred: predMap[p.Number], stats: stats[p.Number], recency: p.RecencyScore}
		if s.pred != nil {
			s.recency = s.pred.Recency
		}
		s.slotRatio = s.stats.SlotRatio(slot)
		if in.Context.Weekday != nil {
			s.hasDow = true
			s.dowRatio = s.stats.WeekdayRatio(*in.Context.Weekday)
		}
		return s
	}

	ref := latest.Date
	for _, p := range in.Profiles {
		if c, ok := strongCandidate(signalsFor(p, windowStats), ref); ok {
			report.Strong = append(report.Strong, c)
		}
	}
	report.Strong = algo.RankCandidates(report.Strong, MaxStrong)
	strongSet := numberSet(report.Strong)

	if len(historic) > 0 {
		for _, p := range in.Profiles {
			if strongSet[p.Number] {
				continue
			}
			if c, ok := historicCandidate(signalsFor(p, historicStats)); ok {
				report.Historic = append(report.Historic, c)
			}
		}
		report.Historic = algo.RankCandidates(report.Historic, MaxStrong)
	}

	turnRepeats := turnRepeatCounts(window, latest.Date)
	transitions := transitionTargets(in.Patterns)
	families := familyActiveSet(in.Patterns.DominantFamily, in.Guide)
	regional := regionalSet(in.Timeline, latest.Date)

	for _, p := range in.Profiles {
		if strongSet[p.Number] {
			continue
		}
		s := signalsFor(p, windowStats)
		if c, ok := moderateCandidate(s, ref, turnRepeats[p.Number], transitions[p.Number]); ok {
			report.Moderate = append(report.Moderate, c)
			continue
		}
		if c, ok := weakCandidate(s, families[p.Number], regional[p.Number]); ok {
			report.Weak = append(report.Weak, c)
		}
	}
	report.Moderate = algo.RankCandidates(report.Moderate, MaxModerate)
	report.Weak = algo.RankCandidates(report.Weak, MaxWeak)
	return report
}

func strongCandidate(s tierSignals, ref time.Time) (schema.TierCandidate, bool) {
	if s.pred == nil || s.stats == nil || s.stats.Count == 0 {
		return schema.TierCandidate{}, false
	}
	if s.stats.Freq < 0.02 || s.recency <= 0.25 || s.slotRatio <= 0.4 {
		return schema.TierCandidate{}, false
	}
	if s.hasDow && s.dowRatio <= 0.4 {
		return schema.TierCandidate{}, false
	}
	gap := algo.GapInfo(s.profile, 1)
	if !gap.IsActive {
		return schema.TierCandidate{}, false
	}
	narrative := FindNarrative(s.profile, ref, strongNarrativeDays)
	if !narrative.Active {
		return schema.TierCandidate{}, false
	}
	c := baseCandidate(s, schema.StrongTier)
	c.Score = s.pred.Score
	c.Gap = &gap
	c.Narrative = &narrative
	c.Triggers = []string{"frecuencia ≥ 2%", "recencia > 25%", "ratio horario > 40%", "gap dominante ±1", "narrativa ≤ 30d"}
	if s.hasDow {
		c.Triggers = append(c.Triggers, "sesgo semanal > 40%")
	}
	return c, true
}

func historicCandidate(s tierSignals) (schema.TierCandidate, bool) {
	if s.pred == nil || s.stats == nil || s.stats.Count == 0 {
		return schema.TierCandidate{}, false
	}
	if s.stats.Freq <= 0.01 || s.slotRatio <= 0.3 || (s.hasDow && s.dowRatio <= 0.3) {
		return schema.TierCandidate{}, false
	}
	c := baseCandidate(s, schema.HistoricTier)
	c.Score = s.pred.Score
	c.Triggers = []string{"frecuencia histórica > 1%", "ratio horario > 30%"}
	return c, true
}

func moderateCandidate(s tierSignals, ref time.Time, repeatCount int, transitionHit bool) (schema.TierCandidate, bool) {
	freq := windowFreq(s)
	gap := algo.GapInfo(s.profile, 2)
	narrative := FindNarrative(s.profile, ref, moderateNarrativeDays)

	var triggers []string
	if s.slotRatio >= 0.25 {
		triggers = append(triggers, "ratio horario ≥ 25%")
	}
	if s.hasDow && s.dowRatio >= 0.25 {
		triggers = append(triggers, "sesgo semanal ≥ 25%")
	}
	if freq >= 0.015 {
		triggers = append(triggers, "frecuencia ≥ 1.5%")
	}
	if s.recency >= 0.15 {
		triggers = append(triggers, "recencia ≥ 15%")
	}
	if gap.IsActive {
		triggers = append(triggers, "gap dominante activo")
	}
	if repeatCount >= 2 {
		triggers = append(triggers, "turno repetido 2×/30d")
	}
	if narrative.Active {
		triggers = append(triggers, "narrativa ≤ 45d")
	}
	if transitionHit {
		triggers = append(triggers, "transición histórica")
	}
	if len(triggers) < 3 {
		return schema.TierCandidate{}, false
	}

	c := baseCandidate(s, schema.ModerateTier)
	c.Score = algo.Clamp01(baseScore(s))
	c.Gap = &gap
	c.Narrative = &narrative
	c.Triggers = triggers
	return c, true
}

func weakCandidate(s tierSignals, familyHit, regionalHit bool) (schema.TierCandidate, bool) {
	freq := windowFreq(s)
	gap := algo.GapInfo(s.profile, 3)
	daysSince := s.profile.Gaps.DaysSince

	var triggers []string
	if s.slotRatio >= 0.15 {
		triggers = append(triggers, "ratio horario ≥ 15%")
	}
	if s.hasDow && s.dowRatio >= 0.15 {
		triggers = append(triggers, "sesgo semanal ≥ 15%")
	}
	if freq > 0.01 {
		triggers = append(triggers, "frecuencia > 1%")
	}
	if daysSince != nil && *daysSince <= recentAppearanceDays {
		triggers = append(triggers, "aparición ≤ 10d")
	}
	if gap.IsActive {
		triggers = append(triggers, "gap dentro ±3")
	}
	if familyHit {
		triggers = append(triggers, "familia dominante activa")
	}
	if regionalHit {
		triggers = append(triggers, "influencia regional")
	}
	if len(triggers) == 0 {
		return schema.TierCandidate{}, false
	}

	base := algo.Clamp01(baseScore(s))
	c := baseCandidate(s, schema.WeakTier)
	c.Score = algo.Clamp01(0.4*base + 0.3*5*freq + 0.3*float64(len(triggers))/7)
	c.Gap = &gap
	c.Triggers = triggers
	return c, true
}

func baseScore(s tierSignals) float64 {
	if s.pred != nil {
		return s.pred.Score
	}
	return s.profile.FrequencyScore
}

func windowFreq(s tierSignals) float64 {
	if s.stats == nil {
		return 0
	}
	return s.stats.Freq
}

func baseCandidate(s tierSignals, tier schema.Tier) schema.TierCandidate {
	c := schema.TierCandidate{
		Number:       s.profile.Number,
		Tier:         tier,
		Frequency:    s.profile.FrequencyScore,
		Recency:      s.recency,
		Hypothesis:   s.profile.HypothesisScore,
		Context:      s.profile.ContextScore,
		SlotRatio:    s.slotRatio,
		WeekdayRatio: s.dowRatio,
		Last:         s.profile.LastSeen,
	}
	if s.pred != nil {
		c.Frequency = s.pred.Frequency
		c.Hypothesis = s.pred.Hypothesis
		c.Context = s.pred.Context
	}
	if s.stats != nil {
		c.WindowFreq = s.stats.Freq
		c.WindowCount = s.stats.Count
		last := s.stats.Last
		c.Last = &schema.Occurrence{Date: last.DateString(), Slot: last.Slot, Country: last.Country, Weekday: int(last.Weekday())}
	}
	return c
}

// FindNarrative looks for a confirmed hypothesis, newest first, or a confirmed
// last outcome dated within days of ref.
func FindNarrative(p schema.NumberProfile, ref time.Time, days int) schema.Narrative {
	limit := time.Duration(days) * schema.Day
	details := p.Hypotheses.Details
	for i := len(details) - 1; i >= 0; i-- {
		d := details[i]
		if d.State != schema.ConfirmedState {
			continue
		}
		date, ok := agg.ParseDrawDate(d.Date)
		if !ok {
			continue
		}
		if ref.Sub(date) <= limit {
			return schema.Narrative{Active: true, Date: d.Date, Source: d.Text, Kind: "hipotesis", WindowDays: days}
		}
	}
	if last := p.Learning.LastOutcome; last != nil && last.State == schema.ConfirmedState {
		if date, ok := agg.ParseDrawDate(last.Date); ok && ref.Sub(date) <= limit {
			return schema.Narrative{Active: true, Date: last.Date, Source: string(last.Slot), Kind: "aprendizaje", WindowDays: days}
		}
	}
	return schema.Narrative{WindowDays: days}
}

// turnRepeatCounts returns, per number, the highest same-slot count over the
// draws of the trailing turnRepeatDays before latest.
func turnRepeatCounts(window schema.Timeline, latest time.Time) map[int]int {
	cutoff := latest.Add(-turnRepeatDays * schema.Day)
	counts := make(map[int]map[schema.Slot]int)
	out := make(map[int]int)
	for _, d := range window.Since(cutoff) {
		if counts[d.Number] == nil {
			counts[d.Number] = make(map[schema.Slot]int)
		}
		counts[d.Number][d.Slot]++
		out[d.Number] = max(out[d.Number], counts[d.Number][d.Slot])
	}
	return out
}

// transitionTargets collects destinations of transition findings with history.
func transitionTargets(report schema.PatternReport) map[int]bool {
	out := make(map[int]bool)
	for _, f := range report.Findings {
		if t := f.Data.Transition; t != nil && t.History > 0 {
			out[t.Destination] = true
		}
	}
	return out
}

// familyActiveSet returns every guide number in the dominant family.
func familyActiveSet(family string, guide schema.Guide) map[int]bool {
	out := make(map[int]bool)
	target := strings.ToLower(strings.TrimSpace(family))
	if target == "" || target == noFamily {
		return out
	}
	for n, info := range guide {
		if strings.ToLower(strings.TrimSpace(info.Family)) == target {
			out[n] = true
		}
	}
	return out
}

// regionalSet returns numbers drawn in regional countries on the given date.
func regionalSet(timeline schema.Timeline, date time.Time) map[int]bool {
	out := make(map[int]bool)
	for _, d := range agg.DrawsOn(timeline, date) {
		if regionalCountries[strings.ToLower(strings.TrimSpace(d.Country))] {
			out[d.Number] = true
		}
	}
	return out
}

func numberSet(candidates []schema.TierCandidate) map[int]bool {
	out := make(map[int]bool, len(candidates))
	for _, c := range candidates {
		out[c.Number] = true
	}
	return out
}
