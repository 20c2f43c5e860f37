package agg

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/huangsam/drawbias/schema"
)

const (
	recentOccurrenceCap = 6
	gapHistoryCap       = 30
	hypothesisDetailCap = 5
	recencyDecayDays    = 10.0
)

// BuildProfiles folds a timeline into one profile per distinct number.
// Hypotheses and outcome records feed the hypothesis and context scores.
func BuildProfiles(timeline schema.Timeline, hyps []schema.Hypothesis, outcomes []schema.OutcomeRecord, now time.Time) schema.ProfileSet {
	profiles := make(map[int]*schema.NumberProfile)
	lastDate := make(map[int]time.Time)

	for _, d := range timeline {
		p, ok := profiles[d.Number]
		if !ok {
			p = newProfile(d.Number)
			profiles[d.Number] = p
		}
		prev, seen := lastDate[d.Number]
		registerOccurrence(p, d, prev, seen)
		lastDate[d.Number] = d.Date
	}

	for _, p := range profiles {
		p.FrequencyScore = float64(p.TotalOccurrences) / float64(max(len(timeline), 1))
		RefreshRecency(p, now)
	}

	attachHypotheses(profiles, hyps)
	attachOutcomes(profiles, outcomes)

	set := schema.ProfileSet{
		TotalDraws: len(timeline),
		Profiles:   make([]schema.NumberProfile, 0, len(profiles)),
	}
	for _, p := range profiles {
		set.Profiles = append(set.Profiles, *p)
	}
	sort.Slice(set.Profiles, func(i, j int) bool {
		return set.Profiles[i].Number < set.Profiles[j].Number
	})
	if last, ok := timeline.Last(); ok {
		ts := last.Date.UnixMilli()
		set.LatestTimestamp = &ts
	}
	return set
}

// RefreshRecency recomputes daysSince and the recency score against now.
func RefreshRecency(p *schema.NumberProfile, now time.Time) {
	if p.LastSeenUnixMilli == nil {
		p.RecencyScore = 0
		p.Gaps.DaysSince = nil
		return
	}
	lastSeen := time.UnixMilli(*p.LastSeenUnixMilli)
	days := math.Max(0, DaysBetween(lastSeen, now))
	p.RecencyScore = math.Exp(-days / recencyDecayDays)
	p.Gaps.DaysSince = &days
}

func newProfile(number int) *schema.NumberProfile {
	return &schema.NumberProfile{
		Number:             number,
		CountsByCountry:    make(map[string]int),
		CountsBySlot:       make(map[schema.Slot]int),
		CountsByWeekday:    make(map[int]int),
		CountsBySlotByYear: make(map[int]schema.YearSlotCounts),
		RecentOccurrences:  []schema.Occurrence{},
		Gaps:               schema.GapStats{History: []schema.GapSample{}},
		Hypotheses:         schema.HypothesisSummary{Details: []schema.HypothesisDetail{}},
		Learning: schema.LearningSummary{
			ByCountry: make(map[string]schema.OutcomeBucket),
			BySlot:    make(map[schema.Slot]schema.OutcomeBucket),
			ByWeekday: make(map[int]schema.OutcomeBucket),
		},
	}
}

// registerOccurrence adds one draw to a profile. prev is the date of the
// previous occurrence of the same number when seen is true.
func registerOccurrence(p *schema.NumberProfile, d schema.DrawEvent, prev time.Time, seen bool) {
	p.TotalOccurrences++
	weekday := int(d.Weekday())

	if d.Country != "" {
		p.CountsByCountry[d.Country]++
	}
	p.CountsBySlot[d.Slot]++
	p.CountsByWeekday[weekday]++

	year := p.CountsBySlotByYear[d.Date.Year()]
	if year.BySlot == nil {
		year.BySlot = make(map[schema.Slot]int)
	}
	year.BySlot[d.Slot]++
	year.Total++
	p.CountsBySlotByYear[d.Date.Year()] = year

	occ := schema.Occurrence{Date: d.DateString(), Slot: d.Slot, Country: d.Country, Weekday: weekday}
	p.RecentOccurrences = append(p.RecentOccurrences, occ)
	if len(p.RecentOccurrences) > recentOccurrenceCap {
		p.RecentOccurrences = p.RecentOccurrences[len(p.RecentOccurrences)-recentOccurrenceCap:]
	}

	if seen {
		gap := int(math.Round(DaysBetween(prev, d.Date)))
		g := &p.Gaps
		g.Total += gap
		g.Count++
		g.Last = &gap
		if g.Min == nil || gap < *g.Min {
			lo := gap
			g.Min = &lo
		}
		if g.Max == nil || gap > *g.Max {
			hi := gap
			g.Max = &hi
		}
		avg := float64(g.Total) / float64(g.Count)
		g.Average = &avg
		g.History = append(g.History, schema.GapSample{Date: d.DateString(), Gap: gap})
		if len(g.History) > gapHistoryCap {
			g.History = g.History[len(g.History)-gapHistoryCap:]
		}
	}

	ts := d.Date.UnixMilli()
	p.LastSeenUnixMilli = &ts
	p.LastSeen = &occ
}

func attachHypotheses(profiles map[int]*schema.NumberProfile, hyps []schema.Hypothesis) {
	for _, h := range hyps {
		p, ok := profiles[h.Number]
		if !ok {
			continue
		}
		s := &p.Hypotheses
		switch h.State {
		case schema.ConfirmedState:
			s.Confirmed++
		case schema.RefutedState:
			s.Refuted++
		default:
			s.Pending++
		}
		text := strings.Join(h.Reasons, " · ")
		if text == "" {
			text = h.Symbol
		}
		state := h.State
		if state == "" {
			state = schema.PendingState
		}
		s.Details = append(s.Details, schema.HypothesisDetail{ID: h.ID, State: state, Date: h.Date, Slot: h.Slot, Text: text})
		if len(s.Details) > hypothesisDetailCap {
			s.Details = s.Details[len(s.Details)-hypothesisDetailCap:]
		}
	}

	for _, p := range profiles {
		p.HypothesisScore = HypothesisScore(p.Hypotheses)
	}
}

// HypothesisScore is confirmed/(confirmed+refuted), 0.5 with only pending claims, else 0.
func HypothesisScore(s schema.HypothesisSummary) float64 {
	if evaluated := s.Confirmed + s.Refuted; evaluated > 0 {
		return float64(s.Confirmed) / float64(evaluated)
	}
	if s.Pending > 0 {
		return 0.5
	}
	return 0
}

func attachOutcomes(profiles map[int]*schema.NumberProfile, outcomes []schema.OutcomeRecord) {
	for _, o := range outcomes {
		p, ok := profiles[o.Number]
		if !ok {
			continue
		}
		hit := o.State == schema.ConfirmedState
		l := &p.Learning
		l.Total++
		if hit {
			l.Hits++
		} else {
			l.Misses++
		}
		if o.ResultCountry != "" {
			l.ByCountry[o.ResultCountry] = bump(l.ByCountry[o.ResultCountry], hit)
		}
		if o.ResultSlot != "" {
			l.BySlot[o.ResultSlot] = bump(l.BySlot[o.ResultSlot], hit)
		}
		if date, ok := ParseDrawDate(o.ResultDate); ok {
			wd := int(date.Weekday())
			l.ByWeekday[wd] = bump(l.ByWeekday[wd], hit)
		}
		l.LastOutcome = &schema.LastOutcome{Date: o.ResultDate, Country: o.ResultCountry, Slot: o.ResultSlot, State: o.State}
	}

	for _, p := range profiles {
		p.ContextScore = ContextScore(p.Learning)
	}
}

func bump(b schema.OutcomeBucket, hit bool) schema.OutcomeBucket {
	b.Total++
	if hit {
		b.Hits++
	} else {
		b.Misses++
	}
	return b
}

// ContextScore is the best win-rate across every country, slot and weekday bucket.
func ContextScore(l schema.LearningSummary) float64 {
	best := 0.0
	for _, b := range l.ByCountry {
		best = math.Max(best, b.Rate())
	}
	for _, b := range l.BySlot {
		best = math.Max(best, b.Rate())
	}
	for _, b := range l.ByWeekday {
		best = math.Max(best, b.Rate())
	}
	return best
}
