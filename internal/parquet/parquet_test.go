package parquet

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/drawbias/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTimeline() schema.Timeline {
	return schema.Timeline{
		{ID: "a", Number: 7, Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Slot: schema.Slot11AM, Country: "cr"},
		{ID: "b", Number: 42, Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Slot: schema.Slot9PM, Country: "ni", IsTest: true},
	}
}

func TestDrawRowStructTags(t *testing.T) {
	s := parquet.SchemaOf(new(DrawRow))
	require.NotNil(t, s)

	for _, colName := range []string{"id", "fecha", "horario", "pais", "numero", "is_test"} {
		col, ok := s.Lookup(colName)
		require.True(t, ok, "Column %s should exist in schema", colName)
		require.NotNil(t, col)
	}
}

func TestProfileRowStructTags(t *testing.T) {
	s := parquet.SchemaOf(new(ProfileRow))
	require.NotNil(t, s)

	expectedColumns := []string{
		"numero", "total", "score_frecuencia", "score_recencia", "score_hipotesis", "score_contexto",
		"gap_promedio", "gap_ultimo", "gap_min", "gap_max", "days_since", "last_seen_fecha",
		"last_seen_horario", "hipotesis_confirmadas", "hipotesis_refutadas", "hipotesis_pendientes", "exported_at",
	}
	for _, colName := range expectedColumns {
		_, ok := s.Lookup(colName)
		assert.True(t, ok, "Column %s should exist in schema", colName)
	}
}

func TestWriteAndReadDrawsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "draws.parquet")
	data := ConvertTimeline(sampleTimeline())

	require.NoError(t, WriteDrawsParquet(data, outputPath))

	info, err := os.Stat(outputPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	rows, err := ReadDrawsParquet(outputPath)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int32(42), rows[1].Number)
	assert.Equal(t, "9PM", rows[1].Slot)
	assert.True(t, rows[1].IsTest)

	raws := ToRawDraws(rows)
	assert.Equal(t, schema.RawDraw{ID: "a", Date: "2024-03-01", Slot: "11AM", Country: "cr", Number: "07"}, raws[0])
}

func TestWriteProfilesParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "profiles.parquet")
	avg, last, since := 7.5, 7, 2.0
	exported := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	profiles := []schema.NumberProfile{
		{
			Number:           12,
			TotalOccurrences: 4,
			FrequencyScore:   0.2,
			RecencyScore:     0.8,
			Gaps:             schema.GapStats{Average: &avg, Last: &last, Min: &last, Max: &last, DaysSince: &since},
			LastSeen:         &schema.Occurrence{Date: "2024-03-08", Slot: schema.Slot3PM},
		},
		{Number: 99, TotalOccurrences: 1},
	}

	require.NoError(t, WriteProfilesParquet(ConvertProfiles(profiles, exported), outputPath))

	file, err := os.Open(outputPath)
	require.NoError(t, err)
	defer file.Close()

	reader := parquet.NewGenericReader[ProfileRow](file)
	defer reader.Close()

	rows := make([]ProfileRow, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	require.Equal(t, 2, n)

	require.NotNil(t, rows[0].GapLast)
	assert.Equal(t, int32(7), *rows[0].GapLast)
	require.NotNil(t, rows[0].LastSeenSlot)
	assert.Equal(t, "3PM", *rows[0].LastSeenSlot)
	assert.InDelta(t, 0.8, rows[0].RecencyScore, 1e-9)

	assert.Nil(t, rows[1].GapAverage)
	assert.Nil(t, rows[1].LastSeenDate)
	assert.WithinDuration(t, exported, rows[1].ExportedAt, time.Millisecond)
}

func TestWriteDrawsParquet_EmptyData(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WriteDrawsParquet([]DrawRow{}, outputPath))

	rows, err := ReadDrawsParquet(outputPath)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestWriteDrawsParquet_BadPath(t *testing.T) {
	err := WriteDrawsParquet(nil, filepath.Join(t.TempDir(), "missing", "draws.parquet"))
	assert.Error(t, err)
}
