// Package parquet provides data structures and functions for exporting draws
// and number profiles to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/drawbias/schema"
	"github.com/parquet-go/parquet-go"
)

// DrawRow is a single normalized draw.
type DrawRow struct {
	// ID is the store identifier of the draw (empty for imported rows)
	ID string `parquet:"id,snappy"`

	// Date is the draw date at UTC midnight
	Date time.Time `parquet:"fecha,snappy"`

	// Slot is one of 11AM, 3PM or 9PM
	Slot string `parquet:"horario,snappy,dict"`

	// Country is the free-form country label of the draw
	Country string `parquet:"pais,snappy,dict"`

	// Number is the drawn number in [0, 99]
	Number int32 `parquet:"numero,snappy"`

	// IsTest marks rows saved with source=test
	IsTest bool `parquet:"is_test,snappy"`
}

// ProfileRow is the flattened view of a NumberProfile.
type ProfileRow struct {
	Number           int32   `parquet:"numero,snappy"`
	TotalOccurrences int32   `parquet:"total,snappy"`
	FrequencyScore   float64 `parquet:"score_frecuencia,snappy"`
	RecencyScore     float64 `parquet:"score_recencia,snappy"`
	HypothesisScore  float64 `parquet:"score_hipotesis,snappy"`
	ContextScore     float64 `parquet:"score_contexto,snappy"`

	// Gap fields are null until a number has been seen twice
	GapAverage *float64 `parquet:"gap_promedio,optional,snappy"`
	GapLast    *int32   `parquet:"gap_ultimo,optional,snappy"`
	GapMin     *int32   `parquet:"gap_min,optional,snappy"`
	GapMax     *int32   `parquet:"gap_max,optional,snappy"`

	DaysSince    *float64 `parquet:"days_since,optional,snappy"`
	LastSeenDate *string  `parquet:"last_seen_fecha,optional,snappy"`
	LastSeenSlot *string  `parquet:"last_seen_horario,optional,snappy"`

	Confirmed int32 `parquet:"hipotesis_confirmadas,snappy"`
	Refuted   int32 `parquet:"hipotesis_refutadas,snappy"`
	Pending   int32 `parquet:"hipotesis_pendientes,snappy"`

	// ExportedAt is when the snapshot was written
	ExportedAt time.Time `parquet:"exported_at,snappy"`
}

// WriteDrawsParquet writes a slice of DrawRow structs to a Parquet file.
func WriteDrawsParquet(data []DrawRow, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteProfilesParquet writes a slice of ProfileRow structs to a Parquet file.
func WriteProfilesParquet(data []ProfileRow, outputPath string) error {
	return writeRows(data, outputPath)
}

// ReadDrawsParquet reads every DrawRow back from a Parquet file.
func ReadDrawsParquet(inputPath string) ([]DrawRow, error) {
	file, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[DrawRow](file)
	defer func() { _ = reader.Close() }()

	rows := make([]DrawRow, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read parquet rows: %w", err)
	}
	return rows[:n], nil
}

func writeRows[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// The schema is derived from the struct tags of T
	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}

// ConvertTimeline converts normalized draws to DrawRow for Parquet export.
func ConvertTimeline(timeline schema.Timeline) []DrawRow {
	result := make([]DrawRow, len(timeline))
	for i, d := range timeline {
		result[i] = DrawRow{
			ID:      d.ID,
			Date:    d.Date,
			Slot:    string(d.Slot),
			Country: d.Country,
			Number:  int32(d.Number),
			IsTest:  d.IsTest,
		}
	}
	return result
}

// ToRawDraws converts rows read from a Parquet file back into raw draws.
func ToRawDraws(rows []DrawRow) []schema.RawDraw {
	result := make([]schema.RawDraw, len(rows))
	for i, r := range rows {
		result[i] = schema.RawDraw{
			ID:      r.ID,
			Date:    r.Date.UTC().Format(schema.DateLayout),
			Slot:    r.Slot,
			Country: r.Country,
			Number:  fmt.Sprintf("%02d", r.Number),
			IsTest:  r.IsTest,
		}
	}
	return result
}

// ConvertProfiles converts number profiles to ProfileRow for Parquet export.
func ConvertProfiles(profiles []schema.NumberProfile, exportedAt time.Time) []ProfileRow {
	result := make([]ProfileRow, len(profiles))
	for i, p := range profiles {
		row := ProfileRow{
			Number:           int32(p.Number),
			TotalOccurrences: int32(p.TotalOccurrences),
			FrequencyScore:   p.FrequencyScore,
			RecencyScore:     p.RecencyScore,
			HypothesisScore:  p.HypothesisScore,
			ContextScore:     p.ContextScore,
			GapAverage:       p.Gaps.Average,
			GapLast:          int32Ptr(p.Gaps.Last),
			GapMin:           int32Ptr(p.Gaps.Min),
			GapMax:           int32Ptr(p.Gaps.Max),
			DaysSince:        p.Gaps.DaysSince,
			Confirmed:        int32(p.Hypotheses.Confirmed),
			Refuted:          int32(p.Hypotheses.Refuted),
			Pending:          int32(p.Hypotheses.Pending),
			ExportedAt:       exportedAt,
		}
		if p.LastSeen != nil {
			date, slot := p.LastSeen.Date, string(p.LastSeen.Slot)
			row.LastSeenDate = &date
			row.LastSeenSlot = &slot
		}
		result[i] = row
	}
	return result
}

func int32Ptr(v *int) *int32 {
	if v == nil {
		return nil
	}
	out := int32(*v)
	return &out
}
