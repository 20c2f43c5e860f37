package agg

import (
	"time"

	"github.com/huangsam/drawbias/schema"
)

// drawScenario is a compact description of a single draw used to build fixtures.
type drawScenario struct {
	date    string
	slot    schema.Slot
	country string
	number  int
}

// buildTimeline creates a sorted timeline from scenarios.
func buildTimeline(scenarios []drawScenario) schema.Timeline {
	raws := make([]schema.RawDraw, 0, len(scenarios))
	for _, s := range scenarios {
		country := s.country
		if country == "" {
			country = "ni"
		}
		raws = append(raws, schema.RawDraw{Date: s.date, Slot: string(s.slot), Country: country, Number: PadNumber(s.number)})
	}
	return Normalize(raws)
}

func day(s string) time.Time {
	t, _ := time.Parse(schema.DateLayout, s)
	return t
}
