package agg

import (
	"testing"

	"github.com/huangsam/drawbias/schema"
	"github.com/stretchr/testify/assert"
)

func TestParseDrawDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"iso dash", "2024-03-05", "2024-03-05", true},
		{"iso slash", "2024/3/5", "2024-03-05", true},
		{"day first", "05-03-2024", "2024-03-05", true},
		{"day first slash", "5/3/2024", "2024-03-05", true},
		{"rfc3339", "2024-03-05T21:00:00Z", "2024-03-05", true},
		{"invalid calendar", "2024-02-30", "", false},
		{"invalid day first", "31-04-2024", "", false},
		{"garbage", "ayer", "", false},
		{"empty", "   ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDrawDate(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, FormatDate(got))
			}
		})
	}
}

func TestFormatDateRoundTrip(t *testing.T) {
	got, ok := ParseDrawDate("2024-03-05")
	assert.True(t, ok)
	assert.Equal(t, "2024-03-05", FormatDate(got))
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		input string
		want  int
		ok    bool
	}{
		{"07", 7, true},
		{"0", 0, true},
		{"99", 99, true},
		{" 42 ", 42, true},
		{"100", 0, false},
		{"-1", 0, false},
		{"4.5", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"x", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseNumber(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSlot(t *testing.T) {
	tests := []struct {
		input string
		want  schema.Slot
		ok    bool
	}{
		{"11AM", schema.Slot11AM, true},
		{"11 am", schema.Slot11AM, true},
		{"3:00 PM", schema.Slot3PM, true},
		{"9pm", schema.Slot9PM, true},
		{"T2", schema.Slot9PM, true},
		{"6PM", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseSlot(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeOrdersAndDrops(t *testing.T) {
	raws := []schema.RawDraw{
		{ID: "c", Date: "2024-01-02", Slot: "11AM", Country: "ni", Number: "5"},
		{ID: "b", Date: "2024-01-01", Slot: "9PM", Country: "ni", Number: "4"},
		{ID: "bad-date", Date: "2024-13-01", Slot: "11AM", Country: "ni", Number: "1"},
		{ID: "a", Date: "01-01-2024", Slot: "11AM", Country: "ni", Number: "3"},
		{ID: "bad-number", Date: "2024-01-01", Slot: "3PM", Country: "ni", Number: "120"},
		{ID: "m", Date: "2024-01-01", Slot: "3PM", Country: "sv", Number: "8"},
	}

	tl := Normalize(raws)

	ids := make([]string, 0, len(tl))
	for _, d := range tl {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"a", "m", "b", "c"}, ids)

	for i := 1; i < len(tl); i++ {
		assert.False(t, tl[i].Key().Before(tl[i-1].Key()), "timeline must be non-decreasing")
	}
}

func TestNormalizeIsStable(t *testing.T) {
	raws := []schema.RawDraw{
		{ID: "first", Date: "2024-01-01", Slot: "11AM", Country: "ni", Number: "1"},
		{ID: "second", Date: "2024-01-01", Slot: "11AM", Country: "sv", Number: "2"},
	}
	tl := Normalize(raws)
	assert.Equal(t, "first", tl[0].ID)
	assert.Equal(t, "second", tl[1].ID)
}

func TestNormalizeEmpty(t *testing.T) {
	assert.Empty(t, Normalize(nil))
}

func TestPadNumber(t *testing.T) {
	assert.Equal(t, "07", PadNumber(7))
	assert.Equal(t, "00", PadNumber(0))
	assert.Equal(t, "42", PadNumber(42))
}
