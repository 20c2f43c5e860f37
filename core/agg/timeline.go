// Package agg folds draw records into timelines, profiles and window statistics.
package agg

import (
	"log/slog"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/drawbias/schema"
)

var (
	yearFirstPattern = regexp.MustCompile(`^(\d{4})[-/](\d{1,2})[-/](\d{1,2})$`)
	dayFirstPattern  = regexp.MustCompile(`^(\d{1,2})[-/](\d{1,2})[-/](\d{4})$`)

	// fallbackLayouts are tried in order when neither calendar pattern matches.
	fallbackLayouts = []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
	}
)

// Normalize parses raw rows into a sorted Timeline. Malformed rows are dropped.
// The sort is stable so equal keys keep their input order.
func Normalize(raws []schema.RawDraw) schema.Timeline {
	timeline := make(schema.Timeline, 0, len(raws))
	for _, raw := range raws {
		event, reason := normalizeOne(raw)
		if reason != "" {
			slog.Debug("dropping malformed draw", "id", raw.ID, "fecha", raw.Date, "horario", raw.Slot, "numero", raw.Number, "reason", reason)
			continue
		}
		timeline = append(timeline, event)
	}
	sort.SliceStable(timeline, func(i, j int) bool {
		return timeline[i].Key().Before(timeline[j].Key())
	})
	return timeline
}

// normalizeOne returns the parsed event or a non-empty reason for rejecting it.
func normalizeOne(raw schema.RawDraw) (schema.DrawEvent, string) {
	date, ok := ParseDrawDate(raw.Date)
	if !ok {
		return schema.DrawEvent{}, "invalid date"
	}
	number, ok := ParseNumber(raw.Number)
	if !ok {
		return schema.DrawEvent{}, "invalid number"
	}
	slot, ok := ParseSlot(raw.Slot)
	if !ok {
		return schema.DrawEvent{}, "invalid slot"
	}
	return schema.DrawEvent{
		ID:      raw.ID,
		Number:  number,
		Date:    date,
		Slot:    slot,
		Country: strings.TrimSpace(raw.Country),
		IsTest:  raw.IsTest,
	}, ""
}

// ParseDrawDate parses a calendar date into UTC midnight.
// It tries year-first, then day-first, then a handful of timestamp layouts.
func ParseDrawDate(value string) (time.Time, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, false
	}

	if m := yearFirstPattern.FindStringSubmatch(trimmed); m != nil {
		return calendarDate(m[1], m[2], m[3])
	}
	if m := dayFirstPattern.FindStringSubmatch(trimmed); m != nil {
		return calendarDate(m[3], m[2], m[1])
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// calendarDate builds a date and rejects values that time.Date would normalize (e.g. Feb 30).
func calendarDate(yStr, mStr, dStr string) (time.Time, bool) {
	year, _ := strconv.Atoi(yStr)
	month, _ := strconv.Atoi(mStr)
	day, _ := strconv.Atoi(dStr)
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// FormatDate renders a date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(schema.DateLayout)
}

// ParseNumber converts a draw number to an integer in [0, 99].
func ParseNumber(value string) (int, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	n := int(f)
	if n < 0 || n > 99 {
		return 0, false
	}
	return n, true
}

// ParseSlot maps common spellings of a slot onto the canonical values.
func ParseSlot(value string) (schema.Slot, bool) {
	s := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(value), " ", ""))
	s = strings.ReplaceAll(s, ":00", "")
	switch s {
	case "11AM", "T0", "11":
		return schema.Slot11AM, true
	case "3PM", "03PM", "T1", "15":
		return schema.Slot3PM, true
	case "9PM", "09PM", "T2", "21":
		return schema.Slot9PM, true
	}
	return "", false
}

// PadNumber renders a number with two digits.
func PadNumber(n int) string {
	return strconv.Itoa(n/10) + strconv.Itoa(n%10)
}

// DaysBetween returns the fractional number of days from a to b.
func DaysBetween(a, b time.Time) float64 {
	return b.Sub(a).Hours() / 24
}
