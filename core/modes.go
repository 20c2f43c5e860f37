package core

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/huangsam/drawbias/core/algo"
	"github.com/huangsam/drawbias/internal/iocache"
	"github.com/huangsam/drawbias/schema"
)

// Mode evaluation defaults.
const (
	ModeLookahead           = 2
	SuggestionOrigins       = 3
	MinSuggestionConfidence = 0.3

	modeSpanDays        = 3
	fullSupportAttempts = 5
	maxModeEvidence     = 4
	defaultModeKind     = "manual"
)

// NormalizeMode trims user input and fills defaults.
func NormalizeMode(m schema.GameMode) schema.GameMode {
	m.Name = strings.TrimSpace(m.Name)
	m.Description = strings.TrimSpace(m.Description)
	m.Kind = strings.TrimSpace(m.Kind)
	if m.Kind == "" {
		m.Kind = defaultModeKind
	}
	m.Operation = schema.Operation(strings.ToLower(strings.TrimSpace(string(m.Operation))))
	if m.Operation == "" {
		m.Params = nil
	} else if m.Params == nil {
		m.Params = map[string]int{}
	}
	for i := range m.Examples {
		m.Examples[i].Note = strings.TrimSpace(m.Examples[i].Note)
	}
	return m
}

// ValidateMode rejects modes that cannot be evaluated.
func ValidateMode(m schema.GameMode) error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("%w: name is required", iocache.ErrInvalidMode)
	}
	if m.Operation != "" {
		if _, ok := schema.ValidOperations[m.Operation]; !ok {
			return fmt.Errorf("%w: unknown operation %q", iocache.ErrInvalidMode, m.Operation)
		}
	}
	if m.Offset != nil && *m.Offset < 1 {
		return fmt.Errorf("%w: offset must be at least 1, got %d", iocache.ErrInvalidMode, *m.Offset)
	}
	for _, ex := range m.Examples {
		if err := ValidateExample(ex); err != nil {
			return err
		}
	}
	return nil
}

// ValidateExample checks that both sides of an example are valid numbers.
func ValidateExample(ex schema.ModeExample) error {
	if ex.Original < 0 || ex.Original > 99 || ex.Result < 0 || ex.Result > 99 {
		return fmt.Errorf("%w: example %d -> %d out of range", iocache.ErrInvalidMode, ex.Original, ex.Result)
	}
	return nil
}

// ruleAccumulator collects attempts and hits of one (original, result) pair.
type ruleAccumulator struct {
	stats    schema.RuleStats
	evidence []schema.ModeEvidence
}

func (a *ruleAccumulator) hit(base, next schema.DrawEvent, hops int) {
	a.stats.Hits++
	a.evidence = append(a.evidence, schema.ModeEvidence{
		BaseDate:   base.DateString(),
		BaseSlot:   base.Slot,
		ResultDate: next.DateString(),
		ResultSlot: next.Slot,
		Hops:       hops,
	})
}

func (a *ruleAccumulator) finish() schema.RuleStats {
	s := a.stats
	s.Confidence = float64(s.Hits) / float64(s.Attempts)
	s.Support = min(1, float64(s.Attempts)/fullSupportAttempts)
	s.Score = s.Confidence * s.Support
	if len(a.evidence) > maxModeEvidence {
		a.evidence = a.evidence[len(a.evidence)-maxModeEvidence:]
	}
	s.Evidence = append([]schema.ModeEvidence{}, a.evidence...)
	return s
}

// searchForward looks for result in the draws after index i. With an offset
// only timeline[i+offset] is checked; otherwise up to ModeLookahead draws
// within the span are scanned.
func searchForward(timeline schema.Timeline, i, result int, offset *int) (schema.DrawEvent, int, bool) {
	base := timeline[i]
	if offset != nil {
		j := i + *offset
		if j < len(timeline) && timeline[j].Number == result {
			return timeline[j], *offset, true
		}
		return schema.DrawEvent{}, 0, false
	}
	for hop := 1; hop <= ModeLookahead; hop++ {
		j := i + hop
		if j >= len(timeline) {
			break
		}
		next := timeline[j]
		if next.Date.Sub(base.Date) > modeSpanDays*schema.Day {
			break
		}
		if next.Number == result {
			return next, hop, true
		}
	}
	return schema.DrawEvent{}, 0, false
}

// EvaluateRule back-tests one literal (original, result) pair. It returns
// false when original never occurs.
func EvaluateRule(timeline schema.Timeline, original, result int, offset *int) (schema.RuleStats, bool) {
	acc := ruleAccumulator{stats: schema.RuleStats{Original: original, Result: result}}
	for i, d := range timeline {
		if d.Number != original {
			continue
		}
		acc.stats.Attempts++
		if next, hops, ok := searchForward(timeline, i, result, offset); ok {
			acc.hit(d, next, hops)
		}
	}
	if acc.stats.Attempts == 0 {
		return schema.RuleStats{}, false
	}
	return acc.finish(), true
}

// evaluateOperation applies a built-in operation to every draw and
// accumulates each (input, output) pair separately.
func evaluateOperation(timeline schema.Timeline, m schema.GameMode) []schema.RuleStats {
	type pair struct{ original, result int }
	accs := make(map[pair]*ruleAccumulator)
	for i, d := range timeline {
		outputs, err := algo.Apply(m.Operation, d.Number, m.Params)
		if err != nil {
			return nil
		}
		for _, out := range outputs {
			key := pair{d.Number, out}
			acc, ok := accs[key]
			if !ok {
				acc = &ruleAccumulator{stats: schema.RuleStats{Original: d.Number, Result: out, Note: operationNote(m)}}
				accs[key] = acc
			}
			acc.stats.Attempts++
			if next, hops, ok := searchForward(timeline, i, out, m.Offset); ok {
				acc.hit(d, next, hops)
			}
		}
	}
	rules := make([]schema.RuleStats, 0, len(accs))
	for _, acc := range accs {
		rules = append(rules, acc.finish())
	}
	slices.SortFunc(rules, func(a, b schema.RuleStats) int {
		if c := cmp.Compare(a.Original, b.Original); c != 0 {
			return c
		}
		return cmp.Compare(a.Result, b.Result)
	})
	return rules
}

func operationNote(m schema.GameMode) string {
	if m.Description != "" {
		return m.Description
	}
	if m.Operation == schema.DigitMapOp {
		return algo.ConversionNote
	}
	if k, ok := m.Params["k"]; ok {
		return fmt.Sprintf("%s k=%d", m.Operation, k)
	}
	return string(m.Operation)
}

// EvaluateMode back-tests the examples and the operation of a mode.
func EvaluateMode(m schema.GameMode, timeline schema.Timeline) schema.ModeReport {
	report := schema.ModeReport{
		ModeID:        m.ID,
		ModeName:      m.Name,
		Rules:         []schema.RuleStats{},
		ScoreByValue:  map[int]float64{},
		DetailByValue: map[int][]schema.RuleStats{},
	}
	for _, ex := range m.Examples {
		stats, ok := EvaluateRule(timeline, ex.Original, ex.Result, m.Offset)
		if !ok {
			continue
		}
		stats.Note = ex.Note
		if stats.Note == "" {
			stats.Note = m.Description
		}
		report.Rules = append(report.Rules, stats)
	}
	if m.Operation != "" {
		report.Rules = append(report.Rules, evaluateOperation(timeline, m)...)
	}
	for _, r := range report.Rules {
		report.ScoreByValue[r.Result] = max(report.ScoreByValue[r.Result], r.Score)
		report.DetailByValue[r.Result] = append(report.DetailByValue[r.Result], r)
	}
	return report
}

// EvaluateModes runs EvaluateMode for every mode in order.
func EvaluateModes(modes []schema.GameMode, timeline schema.Timeline) []schema.ModeReport {
	reports := make([]schema.ModeReport, 0, len(modes))
	for _, m := range modes {
		reports = append(reports, EvaluateMode(m, timeline))
	}
	return reports
}

// SuggestFromModes emits a suggestion for every confident rule whose
// original number matches one of the last origins draws.
func SuggestFromModes(reports []schema.ModeReport, timeline schema.Timeline, origins int) []schema.ModeSuggestion {
	suggestions := []schema.ModeSuggestion{}
	if len(timeline) == 0 {
		return suggestions
	}
	if origins <= 0 {
		origins = SuggestionOrigins
	}
	recent := timeline[max(0, len(timeline)-origins):]
	seen := make(map[string]bool)
	for _, report := range reports {
		for _, rule := range report.Rules {
			if rule.Confidence < MinSuggestionConfidence {
				continue
			}
			for _, d := range recent {
				if d.Number != rule.Original {
					continue
				}
				key := fmt.Sprintf("%s|%d|%d", report.ModeID, rule.Original, rule.Result)
				if seen[key] {
					continue
				}
				seen[key] = true
				suggestions = append(suggestions, schema.ModeSuggestion{
					ModeID:     report.ModeID,
					ModeName:   report.ModeName,
					Number:     rule.Result,
					BaseNumber: rule.Original,
					BaseDate:   d.DateString(),
					BaseSlot:   d.Slot,
					Confidence: rule.Confidence,
					Support:    rule.Attempts,
					Note:       rule.Note,
				})
			}
		}
	}
	return suggestions
}
