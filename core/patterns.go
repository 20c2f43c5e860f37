package core

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/huangsam/drawbias/core/agg"
	"github.com/huangsam/drawbias/core/algo"
	"github.com/huangsam/drawbias/schema"
)

const (
	activeWindowDays  = 120
	minWindowSamples  = 30
	maxEvidence       = 4
	headerWindowDraws = 9
	maxTransitionHops = 2
	noFamily          = "sin datos"
)

// detectorInput is shared by every detector of a pass.
type detectorInput struct {
	window schema.Timeline
	full   schema.Timeline
	now    time.Time
	guide  schema.Guide
}

type detector func(in detectorInput) []schema.PatternFinding

// detectors run in catalogue order.
var detectors = []detector{
	detectRecurringGaps,
	detectTemporalBias,
	detectRepetitions,
	detectTransitions,
	detectDoubleWeekday,
	detectFamilyClusters,
}

// DetectPatterns runs every detector over the active window and builds the report header.
func DetectPatterns(timeline schema.Timeline, guide schema.Guide, now time.Time) schema.PatternReport {
	report := schema.PatternReport{
		Recent:         []schema.DrawEvent{},
		Families:       map[string]int{},
		DominantFamily: noFamily,
		Energy:         "neutral",
		Findings:       []schema.PatternFinding{},
	}
	if len(timeline) == 0 {
		report.Message = "No hay sorteos suficientes."
		return report
	}

	fillHeader(&report, timeline, guide)

	in := detectorInput{window: activeWindow(timeline, now), full: timeline, now: now, guide: guide}
	report.WindowSize = len(in.window)
	for _, d := range detectors {
		report.Findings = append(report.Findings, d(in)...)
	}
	return report
}

// activeWindow returns the trailing window before now, or the full history
// when the window is too thin.
func activeWindow(timeline schema.Timeline, now time.Time) schema.Timeline {
	window, _ := agg.TrailingWindow(timeline, now, activeWindowDays)
	if len(window) < minWindowSamples {
		return timeline
	}
	return window
}

func fillHeader(report *schema.PatternReport, timeline schema.Timeline, guide schema.Guide) {
	recent := timeline
	if len(recent) > headerWindowDraws {
		recent = recent[len(recent)-headerWindowDraws:]
	}
	report.Recent = append(report.Recent, recent...)

	var order []string
	for _, d := range recent {
		info, ok := guide[d.Number]
		if !ok {
			continue
		}
		if _, seen := report.Families[info.Family]; !seen {
			order = append(order, info.Family)
		}
		report.Families[info.Family]++
		switch info.Polarity {
		case schema.PositivePolarity:
			report.Polarities.Positive++
		case schema.NegativePolarity:
			report.Polarities.Negative++
		case schema.NeutralPolarity:
			report.Polarities.Neutral++
		}
	}

	best := 0
	for _, f := range order {
		if report.Families[f] > best {
			best = report.Families[f]
			report.DominantFamily = f
		}
	}

	p := report.Polarities
	if total := p.Positive + p.Neutral + p.Negative; total > 0 {
		report.Score = float64(p.Positive-p.Negative) / float64(total)
	}
	tone := "neutralidad o transición."
	switch {
	case report.Score > 0.4:
		report.Energy = "positiva"
		tone = "energía ascendente y favorable."
	case report.Score < -0.4:
		report.Energy = "negativa"
		tone = "tendencia de contracción o bloqueo."
	}
	report.Message = fmt.Sprintf("En los últimos %d sorteos predomina la familia %q con %s Polaridad: %d positivas, %d neutras y %d negativas.",
		len(recent), report.DominantFamily, tone, p.Positive, p.Neutral, p.Negative)
}

// byNumber groups a timeline per number, keeping order.
func byNumber(tl schema.Timeline) map[int]schema.Timeline {
	out := make(map[int]schema.Timeline)
	for _, d := range tl {
		out[d.Number] = append(out[d.Number], d)
	}
	return out
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func dayIndex(t time.Time) int {
	return int(t.Unix() / 86400)
}

func evidenceOf(draws schema.Timeline, note func(schema.DrawEvent) string) []schema.Evidence {
	if len(draws) > maxEvidence {
		draws = draws[len(draws)-maxEvidence:]
	}
	out := make([]schema.Evidence, 0, len(draws))
	for _, d := range draws {
		out = append(out, schema.Evidence{Date: d.DateString(), Slot: d.Slot, Country: d.Country, Number: d.Number, Note: note(d)})
	}
	return out
}

func sortFindings(findings []schema.PatternFinding) []schema.PatternFinding {
	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].Confidence != findings[j].Confidence {
			return findings[i].Confidence > findings[j].Confidence
		}
		return findings[i].ID < findings[j].ID
	})
	return findings
}

// detectRecurringGaps finds numbers that keep coming back after the same number of days.
func detectRecurringGaps(in detectorInput) []schema.PatternFinding {
	var findings []schema.PatternFinding
	groups := byNumber(in.window)
	for _, n := range sortedKeys(groups) {
		draws := groups[n]
		if len(draws) < 3 {
			continue
		}
		// same-day recurrences count as 0-day gaps
		gaps := make([]int, 0, len(draws)-1)
		for i := 1; i < len(draws); i++ {
			gaps = append(gaps, dayIndex(draws[i].Date)-dayIndex(draws[i-1].Date))
		}
		mode, modeCount := modalGap(gaps)
		ratio := float64(modeCount) / float64(len(gaps))
		if modeCount < 2 || (ratio < 0.55 && modeCount < 3) {
			continue
		}
		last := draws[len(draws)-1]
		f := schema.PatternFinding{
			ID:         "gap-" + agg.PadNumber(n),
			Title:      fmt.Sprintf("Ciclo de %d días para el %s", mode, agg.PadNumber(n)),
			Confidence: algo.Clamp01(ratio),
			Summary:    fmt.Sprintf("El %s repitió un intervalo de %d días en %d de %d saltos.", agg.PadNumber(n), mode, modeCount, len(gaps)),
			Evidence:   gapEvidence(draws),
			Data: schema.FindingData{Gap: &schema.GapData{
				Number:        n,
				Gap:           mode,
				MatchedCycles: modeCount,
				TotalGaps:     len(gaps),
				Ratio:         ratio,
			}},
		}
		if next := last.Date.AddDate(0, 0, mode); next.After(in.now) {
			f.NextExpectedDate = next.Format(schema.DateLayout)
		}
		findings = append(findings, f)
	}
	return sortFindings(findings)
}

// gapEvidence describes the last occurrences with the gap that led to each one.
func gapEvidence(draws schema.Timeline) []schema.Evidence {
	start := max(len(draws)-maxEvidence, 0)
	out := make([]schema.Evidence, 0, len(draws)-start)
	for i := start; i < len(draws); i++ {
		d := draws[i]
		note := "inicio"
		if i > 0 {
			note = fmt.Sprintf("gap %d días", dayIndex(d.Date)-dayIndex(draws[i-1].Date))
		}
		out = append(out, schema.Evidence{Date: d.DateString(), Slot: d.Slot, Country: d.Country, Number: d.Number, Note: note})
	}
	return out
}

// modalGap returns the most frequent gap; ties go to the smallest gap.
func modalGap(gaps []int) (int, int) {
	counts := make(map[int]int)
	for _, g := range gaps {
		counts[g]++
	}
	mode, best := 0, 0
	for _, g := range sortedKeys(counts) {
		if counts[g] > best {
			mode, best = g, counts[g]
		}
	}
	return mode, best
}

// detectTemporalBias finds numbers concentrated on one weekday or one slot.
func detectTemporalBias(in detectorInput) []schema.PatternFinding {
	var findings []schema.PatternFinding
	window := byNumber(in.window)
	full := byNumber(in.full)
	for _, n := range sortedKeys(window) {
		draws := window[n]
		if len(draws) < 4 {
			continue
		}

		wdCounts := make(map[int]int)
		slotCounts := make(map[int]int)
		for _, d := range draws {
			wdCounts[int(d.Weekday())]++
			slotCounts[d.Slot.Rank()]++
		}
		wd, wdCount := dominant(wdCounts)
		histWd := 0
		for _, d := range full[n] {
			if int(d.Weekday()) == wd {
				histWd++
			}
		}
		if f, ok := temporalFinding(n, draws, wdCount, histWd, len(full[n]), schema.WeekdayBias, WeekdayLabels[wd], func(d schema.DrawEvent) bool { return int(d.Weekday()) == wd }); ok {
			findings = append(findings, f)
		}

		rank, slotCount := dominant(slotCounts)
		if rank < 0 || rank >= len(schema.AllSlots) {
			continue
		}
		slot := schema.AllSlots[rank]
		histSlot := 0
		for _, d := range full[n] {
			if d.Slot == slot {
				histSlot++
			}
		}
		if f, ok := temporalFinding(n, draws, slotCount, histSlot, len(full[n]), schema.SlotBias, string(slot), func(d schema.DrawEvent) bool { return d.Slot == slot }); ok {
			findings = append(findings, f)
		}
	}
	return sortFindings(findings)
}

func temporalFinding(n int, draws schema.Timeline, count, histCount, histTotal int, kind schema.TemporalKind, label string, match func(schema.DrawEvent) bool) (schema.PatternFinding, bool) {
	wr := float64(count) / float64(len(draws))
	hr := 0.0
	if histTotal > 0 {
		hr = float64(histCount) / float64(histTotal)
	}
	if wr < 0.7 && (count < 2 || hr < 0.35) {
		return schema.PatternFinding{}, false
	}
	var matched schema.Timeline
	for _, d := range draws {
		if match(d) {
			matched = append(matched, d)
		}
	}
	title := fmt.Sprintf("El %s se inclina por %s", agg.PadNumber(n), label)
	return schema.PatternFinding{
		ID:         string(kind) + "-" + agg.PadNumber(n),
		Title:      title,
		Confidence: algo.Clamp01(0.7*wr + 0.3*hr),
		Summary:    fmt.Sprintf("%d de %d apariciones recientes en %s (%d%% histórico).", count, len(draws), label, percent(hr)),
		Evidence:   evidenceOf(matched, func(schema.DrawEvent) string { return label }),
		Data: schema.FindingData{Temporal: &schema.TemporalData{
			Number:          n,
			Kind:            kind,
			Label:           label,
			Count:           count,
			WindowRatio:     wr,
			HistoricalRatio: hr,
		}},
	}, true
}

// dominant returns the key with the highest count; ties go to the smallest key.
func dominant(counts map[int]int) (int, int) {
	key, best := -1, 0
	for _, k := range sortedKeys(counts) {
		if counts[k] > best {
			key, best = k, counts[k]
		}
	}
	return key, best
}

// isRepeat reports whether b follows a on the same day at a later slot or on the next day.
func isRepeat(a, b schema.DrawEvent) bool {
	diff := dayIndex(b.Date) - dayIndex(a.Date)
	return (diff == 0 && b.Slot.Rank() > a.Slot.Rank()) || diff == 1
}

func countRepeats(draws schema.Timeline) (matches int, lastMatch *schema.DrawEvent) {
	for i := 1; i < len(draws); i++ {
		if isRepeat(draws[i-1], draws[i]) {
			matches++
			d := draws[i]
			lastMatch = &d
		}
	}
	return matches, lastMatch
}

// detectRepetitions finds numbers that tend to come back on the next draw day.
func detectRepetitions(in detectorInput) []schema.PatternFinding {
	var findings []schema.PatternFinding
	window := byNumber(in.window)
	full := byNumber(in.full)
	for _, n := range sortedKeys(window) {
		draws := window[n]
		if len(draws) < 3 {
			continue
		}
		matches, lastMatch := countRepeats(draws)
		ratio := float64(matches) / float64(len(draws))
		histMatches, _ := countRepeats(full[n])
		histRatio := float64(histMatches) / float64(max(len(full[n]), 1))
		recent := lastMatch != nil && in.now.Sub(lastMatch.Date) <= 14*schema.Day

		if ratio < 0.6 && !(histMatches >= 2 && histRatio >= 0.3 && recent && ratio >= 0.35) {
			continue
		}

		var evidence schema.Timeline
		for i := 1; i < len(draws); i++ {
			if isRepeat(draws[i-1], draws[i]) {
				evidence = append(evidence, draws[i])
			}
		}
		findings = append(findings, schema.PatternFinding{
			ID:         "repeat-" + agg.PadNumber(n),
			Title:      fmt.Sprintf("Repetición consecutiva del %s", agg.PadNumber(n)),
			Confidence: algo.Clamp01(ratio),
			Summary:    fmt.Sprintf("El %s se repitió en el siguiente turno o día %d de %d veces.", agg.PadNumber(n), matches, len(draws)),
			Evidence:   evidenceOf(evidence, func(schema.DrawEvent) string { return "repetición" }),
			Data: schema.FindingData{Repeat: &schema.RepeatData{
				Number:  n,
				Matches: matches,
				Total:   len(draws),
				History: histMatches,
				Ratio:   ratio,
			}},
		})
	}
	return sortFindings(findings)
}

type transitionStats struct {
	attempts map[int]int
	pairs    map[int]map[int]int
	last     map[int]map[int]schema.DrawEvent
}

// slotPosition maps a draw onto the continuous slot sequence, three positions per day.
func slotPosition(d schema.DrawEvent) int {
	return dayIndex(d.Date)*len(schema.AllSlots) + d.Slot.Rank()
}

// collectTransitions counts A -> B where B lands at most two slot positions
// after A in the same country. Missing draws leave holes in the sequence
// instead of pulling later draws closer.
func collectTransitions(tl schema.Timeline) transitionStats {
	st := transitionStats{attempts: map[int]int{}, pairs: map[int]map[int]int{}, last: map[int]map[int]schema.DrawEvent{}}
	byCountry := make(map[string]schema.Timeline)
	for _, d := range tl {
		key := strings.ToLower(d.Country)
		byCountry[key] = append(byCountry[key], d)
	}
	for _, sub := range byCountry {
		for i, a := range sub {
			seen := make(map[int]bool)
			followed := false
			for j := i + 1; j < len(sub); j++ {
				hops := slotPosition(sub[j]) - slotPosition(a)
				if hops > maxTransitionHops {
					break
				}
				if hops <= 0 {
					continue
				}
				b := sub[j]
				followed = true
				if b.Number == a.Number || seen[b.Number] {
					continue
				}
				seen[b.Number] = true
				if st.pairs[a.Number] == nil {
					st.pairs[a.Number] = map[int]int{}
					st.last[a.Number] = map[int]schema.DrawEvent{}
				}
				st.pairs[a.Number][b.Number]++
				if prev, ok := st.last[a.Number][b.Number]; !ok || prev.Key().Before(b.Key()) {
					st.last[a.Number][b.Number] = b
				}
			}
			if followed {
				st.attempts[a.Number]++
			}
		}
	}
	return st
}

// detectTransitions finds origins that are usually followed by the same destination.
func detectTransitions(in detectorInput) []schema.PatternFinding {
	var findings []schema.PatternFinding
	window := collectTransitions(in.window)
	full := collectTransitions(in.full)
	for _, a := range sortedKeys(window.pairs) {
		total := window.attempts[a]
		if total < 3 {
			continue
		}
		b, count := dominant(window.pairs[a])
		share := float64(count) / float64(total)
		hist := full.pairs[a][b]
		last := window.last[a][b]
		recent := in.now.Sub(last.Date) <= 21*schema.Day
		if share < 0.5 || (hist < 3 && !recent) {
			continue
		}
		findings = append(findings, schema.PatternFinding{
			ID:         fmt.Sprintf("transition-%s-%s", agg.PadNumber(a), agg.PadNumber(b)),
			Title:      fmt.Sprintf("%s suele llamar al %s", agg.PadNumber(a), agg.PadNumber(b)),
			Confidence: algo.Clamp01(share),
			Summary:    fmt.Sprintf("Tras el %s salió el %s en %d de %d casos (mismo país, hasta 2 turnos).", agg.PadNumber(a), agg.PadNumber(b), count, total),
			Evidence:   evidenceOf(schema.Timeline{last}, func(schema.DrawEvent) string { return "destino tras " + agg.PadNumber(a) }),
			Data: schema.FindingData{Transition: &schema.TransitionData{
				Origin:      a,
				Destination: b,
				Count:       count,
				Total:       total,
				History:     hist,
				Share:       share,
			}},
		})
	}
	return sortFindings(findings)
}

func isDouble(n int) bool {
	return n%11 == 0
}

// detectDoubleWeekday finds a weekday where doubles (00, 11, ..., 99) cluster.
func detectDoubleWeekday(in detectorInput) []schema.PatternFinding {
	var doubles schema.Timeline
	counts := make(map[int]int)
	for _, d := range in.window {
		if isDouble(d.Number) {
			doubles = append(doubles, d)
			counts[int(d.Weekday())]++
		}
	}
	if len(doubles) < 3 {
		return nil
	}
	wd, count := dominant(counts)
	ratio := float64(count) / float64(len(doubles))

	histTotal, histCount := 0, 0
	for _, d := range in.full {
		if !isDouble(d.Number) {
			continue
		}
		histTotal++
		if int(d.Weekday()) == wd {
			histCount++
		}
	}
	histRatio := float64(histCount) / float64(max(histTotal, 1))
	if ratio < 0.45 || !((histCount >= 3 && histRatio >= 0.3) || ratio >= 0.6) {
		return nil
	}

	var matched schema.Timeline
	for _, d := range doubles {
		if int(d.Weekday()) == wd {
			matched = append(matched, d)
		}
	}
	label := WeekdayLabels[wd]
	return []schema.PatternFinding{{
		ID:         "double-weekday",
		Title:      "Dobles los " + label,
		Confidence: algo.Clamp01(0.7*ratio + 0.3*histRatio),
		Summary:    fmt.Sprintf("%d de %d dobles recientes cayeron en %s.", count, len(doubles), label),
		Evidence:   evidenceOf(matched, func(schema.DrawEvent) string { return "doble" }),
		Data: schema.FindingData{Double: &schema.DoubleData{
			Weekday: label,
			Count:   count,
			Total:   len(doubles),
			History: histCount,
			Ratio:   ratio,
		}},
	}}
}

type familyDays struct {
	clusterDays map[string]int
	totalDays   int
	draws       map[string]schema.Timeline
}

// collectFamilyDays counts days on which two or more draws of the same family landed.
func collectFamilyDays(tl schema.Timeline, guide schema.Guide) familyDays {
	fd := familyDays{clusterDays: map[string]int{}, draws: map[string]schema.Timeline{}}
	perDay := make(map[int]map[string]schema.Timeline)
	for _, d := range tl {
		idx := dayIndex(d.Date)
		if perDay[idx] == nil {
			perDay[idx] = map[string]schema.Timeline{}
		}
		info, ok := guide[d.Number]
		if !ok || info.Family == "" {
			continue
		}
		perDay[idx][info.Family] = append(perDay[idx][info.Family], d)
	}
	fd.totalDays = len(perDay)
	for _, idx := range sortedKeys(perDay) {
		for family, draws := range perDay[idx] {
			if len(draws) >= 2 {
				fd.clusterDays[family]++
				fd.draws[family] = append(fd.draws[family], draws...)
			}
		}
	}
	return fd
}

// detectFamilyClusters finds guide families that co-occur on the same day.
func detectFamilyClusters(in detectorInput) []schema.PatternFinding {
	if len(in.guide) == 0 {
		return nil
	}
	window := collectFamilyDays(in.window, in.guide)
	full := collectFamilyDays(in.full, in.guide)

	families := make([]string, 0, len(window.clusterDays))
	for f := range window.clusterDays {
		families = append(families, f)
	}
	sort.Strings(families)

	var findings []schema.PatternFinding
	for _, family := range families {
		days := window.clusterDays[family]
		if days < 2 {
			continue
		}
		dayRatio := float64(days) / float64(max(window.totalDays, 1))
		histRatio := float64(full.clusterDays[family]) / float64(max(full.totalDays, 1))
		findings = append(findings, schema.PatternFinding{
			ID:         "family-" + slugify(family),
			Title:      "Racimo de la familia " + family,
			Confidence: algo.Clamp01(0.35 + 0.45*dayRatio + 0.2*histRatio),
			Summary:    fmt.Sprintf("La familia %q coincidió en el mismo día %d veces.", family, days),
			Evidence:   evidenceOf(window.draws[family], func(schema.DrawEvent) string { return family }),
			Data: schema.FindingData{Family: &schema.FamilyData{
				Family:  family,
				Days:    days,
				History: full.clusterDays[family],
				Ratio:   dayRatio,
			}},
		})
	}
	return sortFindings(findings)
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.Fields(s), "-")
}
