package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/huangsam/drawbias/internal/contract"
	"github.com/huangsam/drawbias/schema"
)

// WritePatternReport outputs the findings of a detector pass.
func WritePatternReport(report schema.PatternReport, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)
	return resultWriter{
		jsonData: report,
		csv: func(w *csv.Writer) error {
			rows := make([][]string, 0, len(report.Findings))
			for _, f := range report.Findings {
				rows = append(rows, []string{f.ID, f.Title, fmtFloat(f.Confidence), f.Summary, f.NextExpectedDate, strconv.Itoa(len(f.Evidence))})
			}
			return writeCSVWithHeader(w, []string{"id", "titulo", "confianza", "resumen", "siguienteFechaEsperada", "evidencia"}, rows)
		},
		table: func(w io.Writer) error {
			return writePatternTable(w, report, cfg, fmtFloat)
		},
	}.write(cfg)
}

func writePatternTable(w io.Writer, report schema.PatternReport, cfg *contract.Config, fmtFloat func(float64) string) error {
	recent := make([]string, 0, len(report.Recent))
	for _, d := range report.Recent {
		recent = append(recent, padNumber(d.Number))
	}
	if err := writeLines(w,
		heading(cfg, "🔮", fmt.Sprintf("Energy %s (score %s), dominant family: %s", report.Energy, fmtFloat(report.Score), report.DominantFamily)),
		fmt.Sprintf("Recent: %s", strings.Join(recent, " ")),
		report.Message,
	); err != nil {
		return err
	}

	if len(report.Findings) == 0 {
		return writeLines(w, "Insufficient data: no pattern found in the active window.")
	}

	// ID + Confidence + Next columns
	noteWidth := GetMaxNoteWidth(cfg, 45)
	rows := make([][]string, 0, len(report.Findings))
	for _, f := range report.Findings {
		next := f.NextExpectedDate
		if next == "" {
			next = "-"
		}
		rows = append(rows, []string{f.ID, fmtFloat(f.Confidence), truncateText(f.Summary, noteWidth), next})
	}
	if err := writeTable(w, []string{"ID", "Confidence", "Summary", "Next"}, rows); err != nil {
		return err
	}
	return writeLines(w, fmt.Sprintf("Showing %d findings over %d draws in the active window", len(rows), report.WindowSize))
}
