package core

import (
	"strings"
	"time"

	"github.com/huangsam/drawbias/core/algo"
	"github.com/huangsam/drawbias/schema"
)

// Final selection weights.
const (
	StrongWeight   = 0.6
	ModerateWeight = 0.25
	WeakWeight     = 0.1
	RecentWeight   = 0.05

	topPickCount       = 5
	secondaryMinScore  = 0.3
	maxSecondary       = 3
	recentActivityDays = 10
)

// SelectFinal merges tier candidates into top picks, secondary picks, one
// wildcard and the next target slot.
func SelectFinal(tiers schema.TierReport, timeline schema.Timeline, now time.Time) schema.Selection {
	scores := make(map[int]*schema.ScoredEntry)
	var order []int
	entry := func(n int) *schema.ScoredEntry {
		e, ok := scores[n]
		if !ok {
			e = &schema.ScoredEntry{Number: n}
			scores[n] = e
			order = append(order, n)
		}
		return e
	}

	addTier := func(candidates []schema.TierCandidate, weight float64, pick func(*schema.ScoreComponents) *float64) {
		for _, c := range candidates {
			weighted := algo.Clamp01(c.Score) * weight
			if weighted <= 0 {
				continue
			}
			comp := pick(&entry(c.Number).Components)
			*comp = max(*comp, weighted)
		}
	}
	addTier(tiers.Strong, StrongWeight, func(c *schema.ScoreComponents) *float64 { return &c.Strong })
	addTier(tiers.Moderate, ModerateWeight, func(c *schema.ScoreComponents) *float64 { return &c.Moderate })
	addTier(tiers.Weak, WeakWeight, func(c *schema.ScoreComponents) *float64 { return &c.Weak })

	for n, ratio := range recentActivityRatios(timeline, now) {
		e, ok := scores[n]
		if !ok {
			continue
		}
		e.Components.Recent = max(e.Components.Recent, algo.Clamp01(ratio)*RecentWeight)
	}

	ranked := make([]schema.ScoredEntry, 0, len(order))
	for _, n := range order {
		e := scores[n]
		e.Total = algo.Clamp01(e.Components.Sum())
		e.Percent = e.Total * 100
		ranked = append(ranked, *e)
	}
	ranked = algo.RankEntries(ranked)

	sel := schema.Selection{
		TopPicks:   []schema.ScoredEntry{},
		Secondary:  []schema.ScoredEntry{},
		TargetSlot: ComputeTargetSlot(timeline, now),
	}
	topCount := min(topPickCount, len(ranked))
	sel.TopPicks = append(sel.TopPicks, ranked[:topCount]...)
	for _, e := range ranked[topCount:] {
		if len(sel.Secondary) == maxSecondary {
			break
		}
		if e.Total >= secondaryMinScore {
			sel.Secondary = append(sel.Secondary, e)
		}
	}

	candidates := make([]schema.TierCandidate, 0, len(tiers.Strong)+len(tiers.Moderate)+len(tiers.Weak))
	candidates = append(candidates, tiers.Strong...)
	candidates = append(candidates, tiers.Moderate...)
	candidates = append(candidates, tiers.Weak...)
	sel.Wildcard = selectWildcard(timeline, candidates, ranked, now)
	return sel
}

// recentActivityRatios is each number's share of the draws in the trailing days before now.
func recentActivityRatios(timeline schema.Timeline, now time.Time) map[int]float64 {
	cutoff := now.Add(-recentActivityDays * schema.Day)
	counts := make(map[int]int)
	total := 0
	for _, d := range timeline.Since(cutoff) {
		counts[d.Number]++
		total++
	}
	ratios := make(map[int]float64, len(counts))
	for n, c := range counts {
		ratios[n] = float64(c) / float64(total)
	}
	return ratios
}

// ComputeTargetSlot maps how many distinct slots were already recorded on
// now's date onto the next slot to aim for.
func ComputeTargetSlot(timeline schema.Timeline, now time.Time) schema.TargetSlot {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	seen := make(map[schema.Slot]bool)
	for _, d := range timeline {
		if d.Date.Equal(today) && d.Slot.Valid() {
			seen[d.Slot] = true
		}
	}
	switch len(seen) {
	case 0:
		return schema.TargetSlot{Slot: schema.Slot11AM, Label: "próximo 11AM", Recorded: 0}
	case 1:
		return schema.TargetSlot{Slot: schema.Slot3PM, Label: "próximo 3PM", Recorded: 1}
	case 2:
		return schema.TargetSlot{Slot: schema.Slot9PM, Label: "próximo 9PM", Recorded: 2}
	default:
		return schema.TargetSlot{Slot: schema.Slot11AM, Label: "mañana 11AM", Recorded: len(seen)}
	}
}

// selectWildcard walks regional, gap and inversion candidates in order and
// falls back to the lowest-ranked top pick.
func selectWildcard(timeline schema.Timeline, candidates []schema.TierCandidate, ranked []schema.ScoredEntry, now time.Time) *int {
	exclude := make(map[int]bool)
	topCount := min(topPickCount, len(ranked))
	for _, e := range ranked[:topCount] {
		exclude[e.Number] = true
	}

	if n, ok := regionalWildcard(timeline, exclude, now); ok {
		return &n
	}
	if n, ok := gapWildcard(candidates, exclude); ok {
		return &n
	}
	if n, ok := inversionWildcard(ranked, exclude); ok {
		return &n
	}
	if topCount > 0 {
		n := ranked[topCount-1].Number
		return &n
	}
	return nil
}

// pickPreferred keeps the best candidate outside exclude, or the best excluded one.
type pickPreferred struct {
	preferred, fallback int
	hasPref, hasFall    bool
}

func (p *pickPreferred) offer(n int, excluded bool, better func(cur int) bool) {
	if !excluded {
		if !p.hasPref || better(p.preferred) {
			p.preferred, p.hasPref = n, true
		}
		return
	}
	if !p.hasFall || better(p.fallback) {
		p.fallback, p.hasFall = n, true
	}
}

func (p *pickPreferred) result() (int, bool) {
	if p.hasPref {
		return p.preferred, true
	}
	return p.fallback, p.hasFall
}

func regionalWildcard(timeline schema.Timeline, exclude map[int]bool, now time.Time) (int, bool) {
	type activity struct {
		count int
		last  time.Time
	}
	cutoff := now.Add(-schema.Day)
	seen := make(map[int]*activity)
	var order []int
	for _, d := range timeline.Since(cutoff) {
		if !regionalCountries[strings.ToLower(strings.TrimSpace(d.Country))] {
			continue
		}
		a, ok := seen[d.Number]
		if !ok {
			a = &activity{}
			seen[d.Number] = a
			order = append(order, d.Number)
		}
		a.count++
		if d.Key().After(a.last) {
			a.last = d.Key()
		}
	}

	var pick pickPreferred
	for _, n := range order {
		a := seen[n]
		pick.offer(n, exclude[n], func(cur int) bool {
			c := seen[cur]
			return a.count > c.count || (a.count == c.count && a.last.After(c.last))
		})
	}
	return pick.result()
}

func gapWildcard(candidates []schema.TierCandidate, exclude map[int]bool) (int, bool) {
	scores := make(map[int]float64)
	var pick pickPreferred
	for _, c := range candidates {
		if c.Gap == nil {
			continue
		}
		score, ok := algo.GapProximity(*c.Gap)
		if !ok {
			continue
		}
		pick.offer(c.Number, exclude[c.Number], func(cur int) bool { return score > scores[cur] })
		if prev, seen := scores[c.Number]; !seen || score > prev {
			scores[c.Number] = score
		}
	}
	return pick.result()
}

func inversionWildcard(ranked []schema.ScoredEntry, exclude map[int]bool) (int, bool) {
	available := make(map[int]bool, len(ranked))
	totals := make(map[int]float64, len(ranked))
	for _, e := range ranked {
		available[e.Number] = true
		totals[e.Number] = e.Total
	}
	var pick pickPreferred
	for _, e := range ranked {
		comp, mirror := algo.Complement(e.Number), algo.Mirror(e.Number)
		hasPair := (comp != e.Number && available[comp]) || (mirror != e.Number && available[mirror])
		if !hasPair {
			continue
		}
		total := e.Total
		pick.offer(e.Number, exclude[e.Number], func(cur int) bool { return total > totals[cur] })
	}
	return pick.result()
}
