// Package schema holds the data types shared across drawbias.
package schema

import (
	"encoding/json"
	"time"
)

// DateLayout is the canonical calendar date format used in every output.
const DateLayout = "2006-01-02"

// SlotOffset separates same-day slots inside the composite sort key.
const SlotOffset = 6 * time.Hour

// Day is the length of a calendar day.
const Day = 24 * time.Hour

// RawDraw is an unvalidated draw row as read from a store or an import file.
type RawDraw struct {
	ID      string `json:"id,omitempty"`
	Date    string `json:"fecha"`
	Slot    string `json:"horario"`
	Country string `json:"pais"`
	Number  string `json:"numero"`
	IsTest  bool   `json:"isTest,omitempty"`
}

// DrawEvent is a normalized, immutable draw.
type DrawEvent struct {
	ID      string
	Number  int
	Date    time.Time // UTC midnight
	Slot    Slot
	Country string
	IsTest  bool
}

// Timeline is an ascending slice of draws ordered by composite key.
type Timeline []DrawEvent

// Key returns the composite ordering timestamp: date plus slot rank times SlotOffset.
func (d DrawEvent) Key() time.Time {
	rank := d.Slot.Rank()
	if rank < 0 {
		rank = 0
	}
	return d.Date.Add(time.Duration(rank) * SlotOffset)
}

// DateString returns the draw date as YYYY-MM-DD.
func (d DrawEvent) DateString() string {
	return d.Date.Format(DateLayout)
}

// Weekday returns the day of week of the draw.
func (d DrawEvent) Weekday() time.Weekday {
	return d.Date.Weekday()
}

// drawEventJSON is the wire shape of a DrawEvent.
type drawEventJSON struct {
	ID      string `json:"id,omitempty"`
	Number  int    `json:"numero"`
	Date    string `json:"fecha"`
	Slot    Slot   `json:"horario"`
	Country string `json:"pais"`
	IsTest  bool   `json:"isTest,omitempty"`
}

// MarshalJSON renders the date as YYYY-MM-DD.
func (d DrawEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(drawEventJSON{
		ID:      d.ID,
		Number:  d.Number,
		Date:    d.DateString(),
		Slot:    d.Slot,
		Country: d.Country,
		IsTest:  d.IsTest,
	})
}

// UnmarshalJSON parses the YYYY-MM-DD date back.
func (d *DrawEvent) UnmarshalJSON(data []byte) error {
	var raw drawEventJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	date, err := time.Parse(DateLayout, raw.Date)
	if err != nil {
		return err
	}
	*d = DrawEvent{
		ID:      raw.ID,
		Number:  raw.Number,
		Date:    date,
		Slot:    raw.Slot,
		Country: raw.Country,
		IsTest:  raw.IsTest,
	}
	return nil
}

// Last returns the most recent draw and false when the timeline is empty.
func (t Timeline) Last() (DrawEvent, bool) {
	if len(t) == 0 {
		return DrawEvent{}, false
	}
	return t[len(t)-1], true
}

// Since returns the suffix of draws whose composite key is at or after cutoff.
func (t Timeline) Since(cutoff time.Time) Timeline {
	for i, d := range t {
		if !d.Key().Before(cutoff) {
			return t[i:]
		}
	}
	return Timeline{}
}

// Before returns the prefix of draws whose composite key is strictly before cutoff.
func (t Timeline) Before(cutoff time.Time) Timeline {
	for i, d := range t {
		if !d.Key().Before(cutoff) {
			return t[:i]
		}
	}
	return t
}

// TestSource is the SaveOptions source marking a draw as a test row.
const TestSource = "test"

// Tail returns the last n draws, or the whole timeline when it is shorter.
func (t Timeline) Tail(n int) Timeline {
	if n <= 0 || n >= len(t) {
		return t
	}
	return t[len(t)-n:]
}

// SaveOptions controls how a draw is written to the draw store.
type SaveOptions struct {
	DryRun bool   // only report whether the draw is a duplicate
	Force  bool   // insert even if a duplicate exists
	Source string // "test" marks the draw as a test row
}

// SaveResult reports the outcome of a draw write.
type SaveResult struct {
	ID        string `json:"id,omitempty"`
	Duplicate bool   `json:"duplicate"`
}

// DuplicateGroup lists draws sharing the same dedup key.
type DuplicateGroup struct {
	Key   string      `json:"key"`
	Draws []DrawEvent `json:"draws"`
}
