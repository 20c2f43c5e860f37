package core

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/drawbias/internal/iocache"
	"github.com/huangsam/drawbias/internal/parquet"
	"github.com/huangsam/drawbias/schema"
)

func TestCanonicalDraw(t *testing.T) {
	raw, ev, err := canonicalDraw(schema.RawDraw{Date: "9/3/2024", Slot: "3pm", Country: " CR ", Number: "7"})
	require.NoError(t, err)
	assert.Equal(t, schema.RawDraw{Date: "2024-03-09", Slot: "3PM", Country: ev.Country, Number: "07"}, raw)
	assert.Equal(t, 7, ev.Number)

	_, _, err = canonicalDraw(schema.RawDraw{Date: "2024-03-09", Slot: "3PM", Country: "cr", Number: "100"})
	assert.ErrorIs(t, err, iocache.ErrIncompleteDraw)
}

func TestReadDrawCSV(t *testing.T) {
	data := "numero,fecha,pais,horario,is_test\n07,2024-03-01,cr,11AM,false\n12, 2024-03-01 ,ni,9PM,1\n"
	raws, err := readDrawCSV(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, raws, 2)
	assert.Equal(t, schema.RawDraw{Date: "2024-03-01", Slot: "11AM", Country: "cr", Number: "07"}, raws[0])
	assert.True(t, raws[1].IsTest)
	assert.Equal(t, "2024-03-01", raws[1].Date)

	_, err = readDrawCSV(strings.NewReader("fecha,numero\n2024-03-01,07\n"))
	assert.ErrorIs(t, err, iocache.ErrInvalidInput)

	raws, err = readDrawCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, raws)
}

func TestReadDrawFile(t *testing.T) {
	dir := t.TempDir()
	want := []schema.RawDraw{{Date: "2024-03-01", Slot: "11AM", Country: "cr", Number: "07"}}

	jsonPath := filepath.Join(dir, "draws.json")
	data, err := json.Marshal(want)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(jsonPath, data, 0o600))
	got, err := ReadDrawFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	parquetPath := filepath.Join(dir, "draws.parquet")
	require.NoError(t, parquet.WriteDrawsParquet(parquet.ConvertTimeline(buildTimeline([]drawScenario{{"2024-03-01", schema.Slot11AM, "cr", 7}})), parquetPath))
	got, err = ReadDrawFile(parquetPath)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "07", got[0].Number)
	assert.Equal(t, "2024-03-01", got[0].Date)

	_, err = ReadDrawFile(filepath.Join(dir, "draws.xml"))
	assert.ErrorIs(t, err, iocache.ErrInvalidInput)
}

func TestRecordDraw(t *testing.T) {
	ctx := context.Background()
	now := at("2024-03-10", 22)
	raw := schema.RawDraw{Date: "2024-03-10", Slot: "9PM", Country: "cr", Number: "37"}

	t.Run("dry run stops after the store", func(t *testing.T) {
		ledger := &iocache.MockLedgerStore{}
		ledger.On("SaveDraw", ctx, mock.Anything, schema.SaveOptions{DryRun: true}).Return(schema.SaveResult{Duplicate: true}, nil)

		res, err := RecordDraw(ctx, newTestManager(ledger), raw, RecordOptions{Save: schema.SaveOptions{DryRun: true}}, now)
		require.NoError(t, err)
		assert.True(t, res.Save.Duplicate)
		ledger.AssertNotCalled(t, "ListRelations", mock.Anything, mock.Anything)
	})

	t.Run("real draw opens events and resolves hypotheses", func(t *testing.T) {
		ledger := &iocache.MockLedgerStore{}
		ledger.On("SaveDraw", ctx, raw, schema.SaveOptions{}).Return(schema.SaveResult{ID: "d1"}, nil)
		ledger.On("ListRelations", ctx, false).Return([]schema.Relation{
			{ID: "r1", Origin: 37, Target: 47, Type: schema.TriggersRelation, WindowMaxDays: 5, IsActive: true},
		}, nil)
		ledger.On("SaveEvent", ctx, mock.AnythingOfType("schema.TriggerEvent")).Return(nil)
		ledger.On("ListEvents", ctx, schema.OpenStatus).Return([]schema.TriggerEvent{}, nil)
		ledger.On("ListHypotheses", ctx).Return([]schema.Hypothesis{
			{ID: "h1", Number: 37, State: schema.PendingState, Date: "2024-03-10"},
		}, nil)
		ledger.On("UpdateHypothesis", ctx, mock.Anything).Return(nil)
		ledger.On("LogOutcome", ctx, mock.Anything).Return(nil)
		ledger.On("ListDraws", ctx, true).Return([]schema.RawDraw{raw}, nil)
		ledger.On("ListOutcomes", ctx).Return([]schema.OutcomeRecord{}, nil)

		res, err := RecordDraw(ctx, newTestManager(ledger), raw, RecordOptions{Resolve: true}, now)
		require.NoError(t, err)
		assert.Equal(t, "d1", res.Save.ID)
		assert.Equal(t, 1, res.Opened)
		require.Len(t, res.Outcomes, 1)
		assert.Equal(t, schema.ConfirmedState, res.Outcomes[0].State)
		ledger.AssertExpectations(t)
	})

	t.Run("test draws skip side effects", func(t *testing.T) {
		ledger := &iocache.MockLedgerStore{}
		opts := schema.SaveOptions{Source: schema.TestSource}
		ledger.On("SaveDraw", ctx, raw, opts).Return(schema.SaveResult{ID: "d2"}, nil)

		res, err := RecordDraw(ctx, newTestManager(ledger), raw, RecordOptions{Save: opts, Resolve: true}, now)
		require.NoError(t, err)
		assert.Equal(t, "d2", res.Save.ID)
		ledger.AssertNotCalled(t, "ListHypotheses", mock.Anything)
	})

	t.Run("invalid draw never reaches the store", func(t *testing.T) {
		ledger := &iocache.MockLedgerStore{}
		_, err := RecordDraw(ctx, newTestManager(ledger), schema.RawDraw{Date: "nope"}, RecordOptions{}, now)
		assert.ErrorIs(t, err, iocache.ErrIncompleteDraw)
		ledger.AssertNotCalled(t, "SaveDraw", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestImportDraws(t *testing.T) {
	ctx := context.Background()
	now := at("2024-03-10", 22)
	path := filepath.Join(t.TempDir(), "draws.csv")
	data := "fecha,horario,pais,numero\n2024-03-01,11AM,cr,07\n2024-03-01,11AM,cr,07\nbad,11AM,cr,07\n2024-03-02,9PM,ni,12\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	ledger := &iocache.MockLedgerStore{}
	first := schema.RawDraw{Date: "2024-03-01", Slot: "11AM", Country: "cr", Number: "07"}
	ledger.On("SaveDraw", ctx, first, schema.SaveOptions{}).Return(schema.SaveResult{ID: "a"}, nil).Once()
	ledger.On("SaveDraw", ctx, first, schema.SaveOptions{}).Return(schema.SaveResult{Duplicate: true}, nil).Once()
	ledger.On("SaveDraw", ctx, mock.MatchedBy(func(r schema.RawDraw) bool { return r.Number == "12" }), schema.SaveOptions{}).Return(schema.SaveResult{ID: "b"}, nil)
	ledger.On("ListRelations", ctx, false).Return([]schema.Relation{}, nil)
	ledger.On("ListEvents", ctx, schema.OpenStatus).Return([]schema.TriggerEvent{}, nil)
	ledger.On("ListDraws", ctx, true).Return([]schema.RawDraw{first}, nil)
	ledger.On("ListHypotheses", ctx).Return([]schema.Hypothesis{}, nil)
	ledger.On("ListOutcomes", ctx).Return([]schema.OutcomeRecord{}, nil)

	summary, err := ImportDraws(ctx, newTestManager(ledger), path, schema.SaveOptions{}, now)
	require.NoError(t, err)
	assert.Equal(t, ImportSummary{Read: 4, Inserted: 2, Duplicates: 1, Rejected: 1}, summary)
	ledger.AssertNumberOfCalls(t, "ListRelations", 2)
}

func TestImportDraws_DryRunCountsPlannedInserts(t *testing.T) {
	ctx := context.Background()
	now := at("2024-03-10", 22)
	path := filepath.Join(t.TempDir(), "draws.csv")
	data := "fecha,horario,pais,numero\n2024-03-01,11AM,cr,07\n2024-03-01,11AM,cr,07\n2024-03-02,9PM,ni,12\n2024-03-03,3PM,cr,40\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	tests := []struct {
		name string
		opts schema.SaveOptions
		want ImportSummary
	}{
		{"dedups stored and repeated rows", schema.SaveOptions{DryRun: true}, ImportSummary{Read: 4, Inserted: 2, Duplicates: 2}},
		{"force counts every row", schema.SaveOptions{DryRun: true, Force: true}, ImportSummary{Read: 4, Inserted: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := &iocache.MockLedgerStore{}
			ledger.On("SaveDraw", ctx, mock.MatchedBy(func(r schema.RawDraw) bool { return r.Number == "12" }), tt.opts).
				Return(schema.SaveResult{Duplicate: true}, nil)
			ledger.On("SaveDraw", ctx, mock.Anything, tt.opts).Return(schema.SaveResult{}, nil)

			summary, err := ImportDraws(ctx, newTestManager(ledger), path, tt.opts, now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, summary)
			ledger.AssertNotCalled(t, "ListRelations", mock.Anything, mock.Anything)
			ledger.AssertNotCalled(t, "ListDraws", mock.Anything, mock.Anything)
		})
	}
}

func TestMarkTestDraws(t *testing.T) {
	ctx := context.Background()
	ledger := &iocache.MockLedgerStore{}
	ledger.On("MarkTest", ctx, []string{"missing"}, true).Return(0, nil)

	n, err := MarkTestDraws(ctx, newTestManager(ledger), []string{"missing"}, true, at("2024-03-10", 9))
	require.NoError(t, err)
	assert.Zero(t, n)
	ledger.AssertNotCalled(t, "ListDraws", mock.Anything, mock.Anything)
}

func TestClearDraws(t *testing.T) {
	ctx := context.Background()
	ledger := &iocache.MockLedgerStore{}
	ledger.On("ClearDraws", ctx).Return(nil)
	ks := &iocache.MockKnowledgeStore{}
	ks.On("ClearScope", ctx, ProfileScope).Return(nil)
	mgr := &iocache.MockStoreManager{}
	mgr.On("GetLedgerStore").Return(ledger)
	mgr.On("GetKnowledgeStore").Return(ks)

	require.NoError(t, ClearDraws(ctx, mgr))
	ledger.AssertExpectations(t)
	ks.AssertExpectations(t)
}
