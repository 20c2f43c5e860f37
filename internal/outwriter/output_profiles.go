package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/drawbias/internal/contract"
	"github.com/huangsam/drawbias/internal/parquet"
	"github.com/huangsam/drawbias/schema"
)

// WriteProfileSet outputs number profiles. Parquet is supported.
func WriteProfileSet(set schema.ProfileSet, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)
	rows := make([][]string, 0, len(set.Profiles))
	for _, p := range set.Profiles {
		rows = append(rows, []string{
			padNumber(p.Number),
			strconv.Itoa(p.TotalOccurrences),
			fmtFloat(p.FrequencyScore),
			fmtFloat(p.RecencyScore),
			fmtFloat(p.HypothesisScore),
			fmtFloat(p.ContextScore),
			optionalFloat(p.Gaps.Average, fmtFloat),
			optionalInt(p.Gaps.Last),
			optionalFloat(p.Gaps.DaysSince, fmtFloat),
			occurrenceText(p.LastSeen),
		})
	}
	return resultWriter{
		jsonData: set,
		csv: func(w *csv.Writer) error {
			return writeCSVWithHeader(w, []string{"numero", "total", "frecuencia", "recencia", "hipotesis", "contexto", "gapPromedio", "gapUltimo", "daysSince", "ultimo"}, rows)
		},
		table: func(w io.Writer) error {
			if len(rows) == 0 {
				return writeLines(w, "Insufficient data: no draws recorded.")
			}
			if err := writeTable(w, []string{"Number", "Total", "Freq", "Recency", "Hyp", "Ctx", "Avg Gap", "Last Gap", "Days Since", "Last Seen"}, rows); err != nil {
				return err
			}
			return writeLines(w, fmt.Sprintf("Showing %d profiles over %d draws", len(rows), set.TotalDraws))
		},
		parquet: func(path string) error {
			return parquet.WriteProfilesParquet(parquet.ConvertProfiles(set.Profiles, cfg.Now), path)
		},
	}.write(cfg)
}

// WriteInsightList outputs profile insights.
func WriteInsightList(insights []schema.Insight, cfg *contract.Config) error {
	_, fmtPercent := createFormatters(cfg.Precision)
	rows := make([][]string, 0, len(insights))
	for _, in := range insights {
		rows = append(rows, []string{in.Kind, in.Title, padNumber(in.Number), fmtPercent(in.Ratio), in.Description})
	}
	return resultWriter{
		jsonData: insights,
		csv: func(w *csv.Writer) error {
			return writeCSVWithHeader(w, []string{"tipo", "titulo", "numero", "ratio", "descripcion"}, rows)
		},
		table: func(w io.Writer) error {
			if len(rows) == 0 {
				return writeLines(w, "Insufficient data: no profiles to summarize.")
			}
			noteWidth := GetMaxNoteWidth(cfg, 40)
			for i := range rows {
				rows[i][4] = truncateText(rows[i][4], noteWidth)
			}
			return writeTable(w, []string{"Kind", "Title", "Number", "Ratio", "Description"}, rows)
		},
	}.write(cfg)
}
