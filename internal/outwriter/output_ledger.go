package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/drawbias/internal/contract"
	"github.com/huangsam/drawbias/internal/parquet"
	"github.com/huangsam/drawbias/schema"
)

// WriteDrawTimeline outputs normalized draws. Parquet is supported.
func WriteDrawTimeline(timeline schema.Timeline, cfg *contract.Config) error {
	rows := make([][]string, 0, len(timeline))
	for _, d := range timeline {
		rows = append(rows, []string{d.ID, d.DateString(), string(d.Slot), d.Country, padNumber(d.Number), strconv.FormatBool(d.IsTest)})
	}
	return resultWriter{
		jsonData: timeline,
		csv: func(w *csv.Writer) error {
			return writeCSVWithHeader(w, []string{"id", "fecha", "horario", "pais", "numero", "isTest"}, rows)
		},
		table: func(w io.Writer) error {
			if len(rows) == 0 {
				return writeLines(w, "No draws recorded.")
			}
			if err := writeTable(w, []string{"ID", "Date", "Slot", "Country", "Number", "Test"}, rows); err != nil {
				return err
			}
			return writeLines(w, fmt.Sprintf("Showing %d draws", len(rows)))
		},
		parquet: func(path string) error {
			return parquet.WriteDrawsParquet(parquet.ConvertTimeline(timeline), path)
		},
	}.write(cfg)
}

// WriteDuplicateGroups outputs draws sharing a dedup key.
func WriteDuplicateGroups(groups []schema.DuplicateGroup, cfg *contract.Config) error {
	var rows [][]string
	for _, g := range groups {
		for _, d := range g.Draws {
			rows = append(rows, []string{g.Key, d.ID, strconv.FormatBool(d.IsTest)})
		}
	}
	return resultWriter{
		jsonData: groups,
		csv: func(w *csv.Writer) error {
			return writeCSVWithHeader(w, []string{"key", "id", "isTest"}, rows)
		},
		table: func(w io.Writer) error {
			if len(rows) == 0 {
				return writeLines(w, "No duplicate draws found.")
			}
			return writeTable(w, []string{"Key", "ID", "Test"}, rows)
		},
	}.write(cfg)
}

// WriteHypothesisList outputs hypotheses.
func WriteHypothesisList(hyps []schema.Hypothesis, cfg *contract.Config) error {
	rows := make([][]string, 0, len(hyps))
	for _, h := range hyps {
		rows = append(rows, []string{h.ID, padNumber(h.Number), h.Symbol, string(h.State), h.Date, string(h.Slot), strings.Join(h.Reasons, "; ")})
	}
	return resultWriter{
		jsonData: hyps,
		csv: func(w *csv.Writer) error {
			return writeCSVWithHeader(w, []string{"id", "numero", "simbolo", "estado", "fecha", "turno", "razones"}, rows)
		},
		table: func(w io.Writer) error {
			if len(rows) == 0 {
				return writeLines(w, "No hypotheses recorded.")
			}
			noteWidth := GetMaxNoteWidth(cfg, 90)
			for i := range rows {
				rows[i][6] = truncateText(rows[i][6], noteWidth)
			}
			return writeTable(w, []string{"ID", "Number", "Symbol", "State", "Date", "Slot", "Reasons"}, rows)
		},
	}.write(cfg)
}

// WriteOutcomeList outputs outcome records.
func WriteOutcomeList(records []schema.OutcomeRecord, cfg *contract.Config) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.HypothesisID,
			padNumber(r.Number),
			string(r.State),
			r.HypothesisDate,
			r.ResultDate + " " + string(r.ResultSlot),
			r.ResultCountry,
		})
	}
	return resultWriter{
		jsonData: records,
		csv: func(w *csv.Writer) error {
			return writeCSVWithHeader(w, []string{"hypothesisId", "numero", "estado", "fechaHipotesis", "resultado", "paisResultado"}, rows)
		},
		table: func(w io.Writer) error {
			if len(rows) == 0 {
				return writeLines(w, "No pending hypotheses were resolved.")
			}
			return writeTable(w, []string{"Hypothesis", "Number", "State", "Expected", "Result", "Country"}, rows)
		},
	}.write(cfg)
}

// WriteRelationList outputs trigger relations.
func WriteRelationList(relations []schema.Relation, cfg *contract.Config) error {
	rows := make([][]string, 0, len(relations))
	for _, r := range relations {
		rows = append(rows, []string{
			r.ID,
			padNumber(r.Origin),
			padNumber(r.Target),
			string(r.Type),
			fmt.Sprintf("%d-%d", r.WindowMinDays, r.WindowMaxDays),
			strconv.FormatBool(r.IsActive),
			r.Notes,
		})
	}
	return resultWriter{
		jsonData: relations,
		csv: func(w *csv.Writer) error {
			return writeCSVWithHeader(w, []string{"id", "origen", "destino", "tipo", "ventana", "activa", "notas"}, rows)
		},
		table: func(w io.Writer) error {
			if len(rows) == 0 {
				return writeLines(w, "No trigger relations defined.")
			}
			return writeTable(w, []string{"ID", "Origin", "Target", "Type", "Window", "Active", "Notes"}, rows)
		},
	}.write(cfg)
}

// WriteRelationStatsList outputs per-relation statistics next to the relation pair.
func WriteRelationStatsList(stats []schema.RelationStats, relations []schema.Relation, cfg *contract.Config) error {
	fmtFloat, fmtPercent := createFormatters(cfg.Precision)
	byID := make(map[string]schema.Relation, len(relations))
	for _, r := range relations {
		byID[r.ID] = r
	}
	rows := make([][]string, 0, len(stats))
	for _, s := range stats {
		pair := s.RelationID
		if r, ok := byID[s.RelationID]; ok {
			pair = fmt.Sprintf("%s→%s %s", padNumber(r.Origin), padNumber(r.Target), r.Type)
		}
		rows = append(rows, []string{
			pair,
			strconv.Itoa(s.Total),
			strconv.Itoa(s.Open),
			fmtPercent(s.HitRate),
			fmtPercent(s.LateRate),
			fmtPercent(s.MissRate),
			fmtFloat(s.AvgLag),
			fmtFloat(s.MedianLag),
			fmtFloat(s.P80Lag),
		})
	}
	return resultWriter{
		jsonData: stats,
		csv: func(w *csv.Writer) error {
			return writeCSVWithHeader(w, []string{"relation", "total", "open", "hitRate", "lateRate", "missRate", "avgLag", "medianLag", "p80Lag"}, rows)
		},
		table: func(w io.Writer) error {
			if len(rows) == 0 {
				return writeLines(w, "Insufficient data: no trigger events recorded.")
			}
			return writeTable(w, []string{"Relation", "Total", "Open", "Hit", "Late", "Miss", "Avg Lag", "Median", "P80"}, rows)
		},
	}.write(cfg)
}

// WriteTriggerEventList outputs trigger events.
func WriteTriggerEventList(events []schema.TriggerEvent, cfg *contract.Config) error {
	rows := make([][]string, 0, len(events))
	for _, e := range events {
		rows = append(rows, []string{
			e.ID,
			padNumber(e.Origin) + "→" + padNumber(e.Target),
			string(e.Status),
			e.OriginTime.Format(contract.DateTimeFormat),
			e.Deadline.Format(contract.DateTimeFormat),
			optionalInt(e.Lag),
			optionalTime(e.HitTime),
		})
	}
	return resultWriter{
		jsonData: events,
		csv: func(w *csv.Writer) error {
			return writeCSVWithHeader(w, []string{"id", "par", "status", "originTs", "deadline", "lagDias", "hitTs"}, rows)
		},
		table: func(w io.Writer) error {
			if len(rows) == 0 {
				return writeLines(w, "No trigger events recorded.")
			}
			return writeTable(w, []string{"ID", "Pair", "Status", "Origin", "Deadline", "Lag", "Hit"}, rows)
		},
	}.write(cfg)
}

func optionalTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(contract.DateTimeFormat)
}
