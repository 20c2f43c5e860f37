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

// WriteModeList outputs stored game modes.
func WriteModeList(modes []schema.GameMode, cfg *contract.Config) error {
	rows := make([][]string, 0, len(modes))
	for _, m := range modes {
		rule := string(m.Operation)
		if rule == "" {
			pairs := make([]string, 0, len(m.Examples))
			for _, ex := range m.Examples {
				pairs = append(pairs, padNumber(ex.Original)+"→"+padNumber(ex.Result))
			}
			rule = strings.Join(pairs, " ")
		}
		rows = append(rows, []string{m.ID, m.Name, m.Kind, rule, optionalInt(m.Offset), strconv.Itoa(len(m.Examples))})
	}
	return resultWriter{
		jsonData: modes,
		csv: func(w *csv.Writer) error {
			return writeCSVWithHeader(w, []string{"id", "nombre", "tipo", "regla", "offset", "ejemplos"}, rows)
		},
		table: func(w io.Writer) error {
			if len(rows) == 0 {
				return writeLines(w, "No modes defined.")
			}
			noteWidth := GetMaxNoteWidth(cfg, 70)
			for i := range rows {
				rows[i][3] = truncateText(rows[i][3], noteWidth)
			}
			return writeTable(w, []string{"ID", "Name", "Kind", "Rule", "Offset", "Examples"}, rows)
		},
	}.write(cfg)
}

// WriteModeReportList outputs every evaluated rule of every mode.
func WriteModeReportList(reports []schema.ModeReport, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)
	var rows [][]string
	for _, r := range reports {
		for _, rule := range r.Rules {
			rows = append(rows, []string{
				r.ModeName,
				padNumber(rule.Original),
				padNumber(rule.Result),
				strconv.Itoa(rule.Attempts),
				strconv.Itoa(rule.Hits),
				fmtFloat(rule.Confidence),
				fmtFloat(rule.Support),
				fmtFloat(rule.Score),
				rule.Note,
			})
		}
	}
	return resultWriter{
		jsonData: reports,
		csv: func(w *csv.Writer) error {
			return writeCSVWithHeader(w, []string{"modo", "original", "resultado", "intentos", "aciertos", "confianza", "soporte", "score", "nota"}, rows)
		},
		table: func(w io.Writer) error {
			if len(rows) == 0 {
				return writeLines(w, "Insufficient data: no rule has been attempted yet.")
			}
			noteWidth := GetMaxNoteWidth(cfg, 85)
			for i := range rows {
				rows[i][8] = truncateText(rows[i][8], noteWidth)
			}
			if err := writeTable(w, []string{"Mode", "From", "To", "Attempts", "Hits", "Confidence", "Support", "Score", "Note"}, rows); err != nil {
				return err
			}
			return writeLines(w, fmt.Sprintf("Evaluated %d rules across %d modes", len(rows), len(reports)))
		},
	}.write(cfg)
}

// WriteModeSuggestionList outputs suggestions derived from the latest draws.
func WriteModeSuggestionList(suggestions []schema.ModeSuggestion, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)
	rows := make([][]string, 0, len(suggestions))
	for _, s := range suggestions {
		rows = append(rows, []string{
			padNumber(s.Number),
			s.ModeName,
			padNumber(s.BaseNumber),
			s.BaseDate + " " + string(s.BaseSlot),
			fmtFloat(s.Confidence),
			strconv.Itoa(s.Support),
			s.Note,
		})
	}
	return resultWriter{
		jsonData: suggestions,
		csv: func(w *csv.Writer) error {
			return writeCSVWithHeader(w, []string{"numero", "modo", "baseNumero", "base", "confianza", "soporte", "nota"}, rows)
		},
		table: func(w io.Writer) error {
			if len(rows) == 0 {
				return writeLines(w, "Insufficient data: no confident rule applies to the latest draws.")
			}
			if err := writeLines(w, heading(cfg, "🧭", "Mode suggestions")); err != nil {
				return err
			}
			noteWidth := GetMaxNoteWidth(cfg, 70)
			for i := range rows {
				rows[i][6] = truncateText(rows[i][6], noteWidth)
			}
			return writeTable(w, []string{"Number", "Mode", "From", "Base Draw", "Confidence", "Support", "Note"}, rows)
		},
	}.write(cfg)
}
