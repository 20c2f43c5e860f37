package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/drawbias/internal/contract"
	"github.com/huangsam/drawbias/schema"
)

var selectionHeader = []string{"rank", "numero", "total", "percent", "fuerte", "moderado", "debil", "reciente", "group"}

// WriteAnalysisResult outputs the final selection of an analysis pass,
// dispatching based on the output format configured.
func WriteAnalysisResult(result schema.AnalysisResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)
	return resultWriter{
		jsonData: result,
		csv: func(w *csv.Writer) error {
			return writeCSVWithHeader(w, selectionHeader, selectionRows(result.Selection, fmtFloat))
		},
		table: func(w io.Writer) error {
			return writeAnalysisTable(w, result, cfg, fmtFloat, duration)
		},
	}.write(cfg)
}

// selectionRows flattens top picks and secondary picks into one ranked list.
func selectionRows(sel schema.Selection, fmtFloat func(float64) string) [][]string {
	rows := make([][]string, 0, len(sel.TopPicks)+len(sel.Secondary))
	add := func(entries []schema.ScoredEntry, group string) {
		for _, e := range entries {
			rows = append(rows, []string{
				strconv.Itoa(len(rows) + 1),
				padNumber(e.Number),
				fmtFloat(e.Total),
				fmtFloat(e.Percent),
				fmtFloat(e.Components.Strong),
				fmtFloat(e.Components.Moderate),
				fmtFloat(e.Components.Weak),
				fmtFloat(e.Components.Recent),
				group,
			})
		}
	}
	add(sel.TopPicks, "top")
	add(sel.Secondary, "secundario")
	return rows
}

func writeAnalysisTable(w io.Writer, result schema.AnalysisResult, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	sel := result.Selection
	target := fmt.Sprintf("Target slot: %s (%d recorded today)", sel.TargetSlot.Label, sel.TargetSlot.Recorded)
	if err := writeLines(w, heading(cfg, "🎯", target)); err != nil {
		return err
	}

	if len(sel.TopPicks) == 0 {
		if err := writeLines(w, "Insufficient data: no tier candidates for this context."); err != nil {
			return err
		}
	} else {
		rows := selectionRows(sel, fmtFloat)
		// drop the group column for the table and mark secondary picks in the rank
		for i := range rows {
			if rows[i][8] == "secundario" {
				rows[i][0] += "*"
			}
			rows[i] = rows[i][:8]
		}
		if err := writeTable(w, []string{"Rank", "Number", "Total", "%", "Strong", "Moderate", "Weak", "Recent"}, rows); err != nil {
			return err
		}
	}

	wildcard := "none"
	if sel.Wildcard != nil {
		wildcard = padNumber(*sel.Wildcard)
	}
	tiers := result.Tiers
	return writeLines(w,
		heading(cfg, "🃏", "Wildcard: "+wildcard),
		fmt.Sprintf("Tiers: %d %s, %d %s, %d %s, %d %s",
			len(tiers.Strong), tierLabel(cfg, schema.StrongTier),
			len(tiers.Moderate), tierLabel(cfg, schema.ModerateTier),
			len(tiers.Weak), tierLabel(cfg, schema.WeakTier),
			len(tiers.Historic), tierLabel(cfg, schema.HistoricTier)),
		fmt.Sprintf("Analyzed %d draws with %d findings in %v. Store backend: %s", result.TotalDraws, len(result.Patterns.Findings), duration, cfg.StoreBackend),
	)
}

// WritePredictionResults outputs baseline predictions.
func WritePredictionResults(preds []schema.Prediction, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)
	rows := make([][]string, 0, len(preds))
	for i, p := range preds {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			padNumber(p.Number),
			fmtFloat(p.Score),
			schema.GetPlainLabel(p.Score),
			fmtFloat(p.Frequency),
			fmtFloat(p.Recency),
			fmtFloat(p.Hypothesis),
			fmtFloat(p.Context),
			occurrenceText(p.LastSeen),
		})
	}
	return resultWriter{
		jsonData: schema.EnrichPredictions(preds),
		csv: func(w *csv.Writer) error {
			return writeCSVWithHeader(w, []string{"rank", "numero", "score", "label", "frecuencia", "recencia", "hipotesis", "contexto", "ultimo"}, rows)
		},
		table: func(w io.Writer) error {
			if len(rows) == 0 {
				return writeLines(w, "Insufficient data: no draws recorded.")
			}
			if err := writeTable(w, []string{"Rank", "Number", "Score", "Label", "Freq", "Recency", "Hyp", "Ctx", "Last Seen"}, rows); err != nil {
				return err
			}
			return writeLines(w, fmt.Sprintf("Showing top %d predictions in %v. Store backend: %s", len(rows), duration, cfg.StoreBackend))
		},
	}.write(cfg)
}

// tierSections pairs each tier with its list in display order.
func tierSections(report schema.TierReport) []struct {
	tier       schema.Tier
	candidates []schema.TierCandidate
} {
	return []struct {
		tier       schema.Tier
		candidates []schema.TierCandidate
	}{
		{schema.StrongTier, report.Strong},
		{schema.ModerateTier, report.Moderate},
		{schema.WeakTier, report.Weak},
		{schema.HistoricTier, report.Historic},
	}
}

func candidateRow(rank int, c schema.TierCandidate, label string, fmtFloat func(float64) string) []string {
	gap := "-"
	if c.Gap != nil && c.Gap.Mode != nil {
		gap = strconv.Itoa(*c.Gap.Mode)
		if c.Gap.IsActive {
			gap += " (active)"
		}
	}
	return []string{
		strconv.Itoa(rank),
		padNumber(c.Number),
		label,
		fmtFloat(c.Score),
		fmtFloat(c.WindowFreq),
		fmtFloat(c.Recency),
		fmtFloat(c.SlotRatio),
		fmtFloat(c.WeekdayRatio),
		gap,
		occurrenceText(c.Last),
	}
}

// WriteTierReport outputs every tier list.
func WriteTierReport(report schema.TierReport, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)
	headers := []string{"Rank", "Number", "Tier", "Score", "Window Freq", "Recency", "Slot", "Weekday", "Gap", "Last"}
	return resultWriter{
		jsonData: report,
		csv: func(w *csv.Writer) error {
			var rows [][]string
			for _, s := range tierSections(report) {
				for i, c := range s.candidates {
					rows = append(rows, candidateRow(i+1, c, string(s.tier), fmtFloat))
				}
			}
			return writeCSVWithHeader(w, []string{"rank", "numero", "level", "score", "windowFreq", "recencia", "turnRatio", "dowRatio", "gap", "ultimo"}, rows)
		},
		table: func(w io.Writer) error {
			if report.WindowStart != "" {
				if err := writeLines(w, heading(cfg, "📅", fmt.Sprintf("Window %s .. %s", report.WindowStart, report.WindowEnd))); err != nil {
					return err
				}
			}
			var rows [][]string
			for _, s := range tierSections(report) {
				for i, c := range s.candidates {
					rows = append(rows, candidateRow(i+1, c, tierLabel(cfg, s.tier), fmtFloat))
				}
			}
			if len(rows) == 0 {
				return writeLines(w, "Insufficient data: no number qualifies for any tier.")
			}
			return writeTable(w, headers, rows)
		},
	}.write(cfg)
}
