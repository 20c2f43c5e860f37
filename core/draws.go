package core

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/huangsam/drawbias/core/agg"
	"github.com/huangsam/drawbias/internal/contract"
	"github.com/huangsam/drawbias/internal/iocache"
	"github.com/huangsam/drawbias/internal/outwriter"
	"github.com/huangsam/drawbias/internal/parquet"
	"github.com/huangsam/drawbias/schema"
)

// RecordOptions controls what happens after a draw is stored.
type RecordOptions struct {
	Save    schema.SaveOptions
	Resolve bool // resolve pending hypotheses against the draw
}

// RecordResult reports the side effects of recording one draw.
type RecordResult struct {
	Save     schema.SaveResult      `json:"guardado"`
	Opened   int                    `json:"eventosAbiertos"`
	Resolved int                    `json:"eventosResueltos"`
	Outcomes []schema.OutcomeRecord `json:"resultados"`
}

// ImportSummary counts what an import did with each row.
type ImportSummary struct {
	Read       int `json:"leidos"`
	Inserted   int `json:"insertados"`
	Duplicates int `json:"duplicados"`
	Rejected   int `json:"rechazados"`
}

// canonicalDraw validates a raw row and rewrites it in its canonical form.
func canonicalDraw(raw schema.RawDraw) (schema.RawDraw, schema.DrawEvent, error) {
	events := agg.Normalize([]schema.RawDraw{raw})
	if len(events) == 0 {
		return raw, schema.DrawEvent{}, fmt.Errorf("%w: %q %q %q %q", iocache.ErrIncompleteDraw, raw.Date, raw.Slot, raw.Country, raw.Number)
	}
	ev := events[0]
	raw.Date = ev.DateString()
	raw.Slot = string(ev.Slot)
	raw.Country = ev.Country
	raw.Number = agg.PadNumber(ev.Number)
	return raw, ev, nil
}

// RecordDraw validates and stores a draw. Real draws then feed the trigger
// relations, optionally resolve pending hypotheses and refresh the knowledge cache.
func RecordDraw(ctx context.Context, mgr contract.StoreManager, raw schema.RawDraw, opts RecordOptions, now time.Time) (RecordResult, error) {
	raw, ev, err := canonicalDraw(raw)
	if err != nil {
		return RecordResult{}, err
	}
	ledger := mgr.GetLedgerStore()
	res, err := ledger.SaveDraw(ctx, raw, opts.Save)
	if err != nil {
		return RecordResult{}, fmt.Errorf("save draw: %w", err)
	}
	out := RecordResult{Save: res, Outcomes: []schema.OutcomeRecord{}}
	if opts.Save.DryRun || res.ID == "" || raw.IsTest || opts.Save.Source == schema.TestSource {
		return out, nil
	}

	ev.ID = res.ID
	if out.Opened, out.Resolved, err = ProcessDraw(ctx, ledger, ev, now); err != nil {
		return out, err
	}
	if opts.Resolve {
		out.Outcomes, err = RegisterOutcome(ctx, ledger, schema.Outcome{
			Number:  ev.Number,
			Date:    ev.DateString(),
			Country: ev.Country,
			Slot:    ev.Slot,
		}, now)
		if err != nil {
			return out, err
		}
	}
	if _, err := RebuildKnowledge(ctx, ledger, mgr.GetKnowledgeStore(), now); err != nil {
		return out, err
	}
	return out, nil
}

// ImportDraws loads draws from a CSV, JSON or Parquet file. Invalid rows are
// counted and skipped; the knowledge cache is rebuilt once at the end. A dry
// run reports the rows that would be inserted without writing them.
func ImportDraws(ctx context.Context, mgr contract.StoreManager, path string, opts schema.SaveOptions, now time.Time) (ImportSummary, error) {
	raws, err := ReadDrawFile(path)
	if err != nil {
		return ImportSummary{}, err
	}
	ledger := mgr.GetLedgerStore()
	summary := ImportSummary{Read: len(raws)}
	// a dry run writes nothing, so repeats inside the file are tracked here
	planned := make(map[string]bool)
	for _, raw := range raws {
		canon, ev, err := canonicalDraw(raw)
		if err != nil {
			slog.Debug("skipping draw", "error", err)
			summary.Rejected++
			continue
		}
		res, err := ledger.SaveDraw(ctx, canon, opts)
		if err != nil {
			return summary, fmt.Errorf("save draw: %w", err)
		}
		if opts.DryRun {
			key := strings.Join([]string{canon.Date, canon.Country, canon.Slot, canon.Number}, "|")
			if (res.Duplicate || planned[key]) && !opts.Force {
				summary.Duplicates++
				continue
			}
			planned[key] = true
			summary.Inserted++
			continue
		}
		if res.Duplicate && res.ID == "" {
			summary.Duplicates++
			continue
		}
		if res.ID == "" {
			continue
		}
		summary.Inserted++
		if canon.IsTest || opts.Source == schema.TestSource {
			continue
		}
		ev.ID = res.ID
		if _, _, err := ProcessDraw(ctx, ledger, ev, now); err != nil {
			return summary, err
		}
	}
	if summary.Inserted > 0 && !opts.DryRun {
		if _, err := RebuildKnowledge(ctx, ledger, mgr.GetKnowledgeStore(), now); err != nil {
			return summary, err
		}
	}
	return summary, nil
}

// ReadDrawFile decodes raw draws by file extension.
func ReadDrawFile(path string) ([]schema.RawDraw, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		rows, err := parquet.ReadDrawsParquet(path)
		if err != nil {
			return nil, err
		}
		return parquet.ToRawDraws(rows), nil
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		var raws []schema.RawDraw
		if err := json.Unmarshal(data, &raws); err != nil {
			return nil, fmt.Errorf("%w: decode %s: %v", iocache.ErrInvalidInput, path, err)
		}
		return raws, nil
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer func() { _ = f.Close() }()
		return readDrawCSV(f)
	default:
		return nil, fmt.Errorf("%w: unsupported draw file %q", iocache.ErrInvalidInput, path)
	}
}

// readDrawCSV reads rows with a fecha,horario,pais,numero[,is_test] header.
// Column order follows the header.
func readDrawCSV(r io.Reader) ([]schema.RawDraw, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []schema.RawDraw{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"fecha", "horario", "pais", "numero"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: csv header misses %q", iocache.ErrInvalidInput, required)
		}
	}
	field := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	raws := []schema.RawDraw{}
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		isTest, _ := contract.ParseBoolString(field(rec, "is_test"))
		raws = append(raws, schema.RawDraw{
			ID:      field(rec, "id"),
			Date:    field(rec, "fecha"),
			Slot:    field(rec, "horario"),
			Country: field(rec, "pais"),
			Number:  field(rec, "numero"),
			IsTest:  isTest,
		})
	}
	return raws, nil
}

// ListTimeline returns the stored draws, most recent last.
func ListTimeline(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (schema.Timeline, error) {
	timeline, err := LoadTimeline(ctx, mgr.GetLedgerStore(), cfg.IncludeTest)
	if err != nil {
		return nil, err
	}
	return FilterTimeline(timeline, cfg.Context), nil
}

// ExecuteDrawList prints the stored draws, limited to the most recent ResultLimit
// rows unless the output is a file export.
func ExecuteDrawList(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	timeline, err := ListTimeline(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	if cfg.OutputFile == "" && cfg.ResultLimit > 0 {
		timeline = timeline.Tail(cfg.ResultLimit)
	}
	return outwriter.NewOutWriter().WriteDraws(timeline, cfg)
}

// ExecuteDrawDuplicates prints the groups of draws sharing a dedup key.
func ExecuteDrawDuplicates(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	groups, err := mgr.GetLedgerStore().FindDuplicates(ctx)
	if err != nil {
		return fmt.Errorf("find duplicates: %w", err)
	}
	return outwriter.NewOutWriter().WriteDuplicates(groups, cfg)
}

// DeleteDraw removes one draw and refreshes the knowledge cache.
func DeleteDraw(ctx context.Context, mgr contract.StoreManager, id string, now time.Time) error {
	ledger := mgr.GetLedgerStore()
	if err := ledger.DeleteDraw(ctx, id); err != nil {
		return fmt.Errorf("delete draw %s: %w", id, err)
	}
	_, err := RebuildKnowledge(ctx, ledger, mgr.GetKnowledgeStore(), now)
	return err
}

// ClearDraws empties the ledger and the profile scope of the knowledge cache.
func ClearDraws(ctx context.Context, mgr contract.StoreManager) error {
	if err := mgr.GetLedgerStore().ClearDraws(ctx); err != nil {
		return fmt.Errorf("clear draws: %w", err)
	}
	if ks := mgr.GetKnowledgeStore(); ks != nil {
		if err := ks.ClearScope(ctx, ProfileScope); err != nil {
			return fmt.Errorf("clear knowledge scope: %w", err)
		}
	}
	return nil
}

// MarkTestDraws flags or unflags draws as test rows and refreshes the cache.
func MarkTestDraws(ctx context.Context, mgr contract.StoreManager, ids []string, isTest bool, now time.Time) (int, error) {
	ledger := mgr.GetLedgerStore()
	n, err := ledger.MarkTest(ctx, ids, isTest)
	if err != nil {
		return 0, fmt.Errorf("mark test draws: %w", err)
	}
	if n > 0 {
		if _, err := RebuildKnowledge(ctx, ledger, mgr.GetKnowledgeStore(), now); err != nil {
			return n, err
		}
	}
	return n, nil
}
