package core

import (
	"time"

	"github.com/huangsam/drawbias/core/agg"
	"github.com/huangsam/drawbias/schema"
)

// drawScenario is a compact description of a single draw used to build fixtures.
type drawScenario struct {
	date    string
	slot    schema.Slot
	country string
	number  int
}

// buildTimeline normalizes scenarios into a sorted timeline. Country defaults to "cr".
func buildTimeline(scenarios []drawScenario) schema.Timeline {
	raws := make([]schema.RawDraw, 0, len(scenarios))
	for _, s := range scenarios {
		country := s.country
		if country == "" {
			country = "cr"
		}
		raws = append(raws, schema.RawDraw{Date: s.date, Slot: string(s.slot), Country: country, Number: agg.PadNumber(s.number)})
	}
	return agg.Normalize(raws)
}

// rawDraws renders scenarios as store rows.
func rawDraws(scenarios []drawScenario) []schema.RawDraw {
	out := make([]schema.RawDraw, 0, len(scenarios))
	for i, s := range scenarios {
		country := s.country
		if country == "" {
			country = "cr"
		}
		out = append(out, schema.RawDraw{
			ID:      agg.PadNumber(i),
			Date:    s.date,
			Slot:    string(s.slot),
			Country: country,
			Number:  agg.PadNumber(s.number),
		})
	}
	return out
}

func day(s string) time.Time {
	t, _ := time.Parse(schema.DateLayout, s)
	return t
}

func at(s string, hour int) time.Time {
	return day(s).Add(time.Duration(hour) * time.Hour)
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func candidate(n int, score float64) schema.TierCandidate {
	return schema.TierCandidate{Number: n, Score: score}
}

func entryNumbers(entries []schema.ScoredEntry) []int {
	out := make([]int, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Number)
	}
	return out
}

// syntheticTimeline spans the first half of 2024 with three draws a day.
// Number 12 closes every Saturday and the rest follow a fixed scramble.
func syntheticTimeline() schema.Timeline {
	start := day("2024-01-01")
	var scenarios []drawScenario
	for d := 0; d < 181; d++ {
		date := start.AddDate(0, 0, d)
		country := "cr"
		if d%3 == 0 {
			country = "ni"
		}
		for s, slot := range schema.AllSlots {
			n := (d*7 + s*31 + (d*d)%13) % 100
			if slot == schema.Slot9PM && date.Weekday() == time.Saturday {
				n = 12
			}
			scenarios = append(scenarios, drawScenario{date.Format(schema.DateLayout), slot, country, n})
		}
	}
	return buildTimeline(scenarios)
}
