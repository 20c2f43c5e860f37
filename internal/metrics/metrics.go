// Package metrics exposes ledger and cache state as Prometheus metrics.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/huangsam/drawbias/core"
	"github.com/huangsam/drawbias/internal/contract"
)

var (
	drawsDesc = prometheus.NewDesc(
		"drawbias_draws",
		"Stored draws split by test flag",
		[]string{"test"},
		nil,
	)
	recordsDesc = prometheus.NewDesc(
		"drawbias_ledger_rows",
		"Row count of each ledger table",
		[]string{"table"},
		nil,
	)
	openEventsDesc = prometheus.NewDesc(
		"drawbias_trigger_events_open",
		"Trigger events still waiting for their target",
		nil,
		nil,
	)
	relationRateDesc = prometheus.NewDesc(
		"drawbias_relation_rate",
		"Resolved event rate of a trigger relation by outcome",
		[]string{"relation", "origin", "target", "outcome"},
		nil,
	)
	relationLagDesc = prometheus.NewDesc(
		"drawbias_relation_median_lag_days",
		"Median lag in days between origin and hit",
		[]string{"relation"},
		nil,
	)
	cacheEntriesDesc = prometheus.NewDesc(
		"drawbias_knowledge_entries",
		"Entries held by the knowledge cache",
		nil,
		nil,
	)
	cacheUpdatedDesc = prometheus.NewDesc(
		"drawbias_knowledge_last_update_seconds",
		"Unix time of the newest knowledge cache entry",
		nil,
		nil,
	)
)

// StoreCollector is a custom Prometheus collector that reads the ledger and
// the knowledge cache on each scrape.
type StoreCollector struct {
	mgr contract.StoreManager
}

// NewStoreCollector returns a collector over the manager's stores.
func NewStoreCollector(mgr contract.StoreManager) *StoreCollector {
	return &StoreCollector{mgr: mgr}
}

// Describe sends the metric descriptors to the channel.
func (c *StoreCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- drawsDesc
	ch <- recordsDesc
	ch <- openEventsDesc
	ch <- relationRateDesc
	ch <- relationLagDesc
	ch <- cacheEntriesDesc
	ch <- cacheUpdatedDesc
}

// Collect queries the stores and emits gauges.
func (c *StoreCollector) Collect(ch chan<- prometheus.Metric) {
	ctx := context.Background()
	ledger := c.mgr.GetLedgerStore()
	if ledger != nil {
		c.collectLedger(ctx, ch, ledger)
	}
	if ks := c.mgr.GetKnowledgeStore(); ks != nil {
		status, err := ks.GetStatus()
		if err != nil {
			slog.Error("failed to collect knowledge cache metrics", "error", err)
			return
		}
		ch <- prometheus.MustNewConstMetric(cacheEntriesDesc, prometheus.GaugeValue, float64(status.TotalEntries))
		if status.TotalEntries > 0 {
			ch <- prometheus.MustNewConstMetric(cacheUpdatedDesc, prometheus.GaugeValue, float64(status.LastEntryTime.Unix()))
		}
	}
}

func (c *StoreCollector) collectLedger(ctx context.Context, ch chan<- prometheus.Metric, ledger contract.LedgerStore) {
	status, err := ledger.GetStatus(ctx)
	if err != nil {
		slog.Error("failed to collect ledger metrics", "error", err)
		return
	}
	ch <- prometheus.MustNewConstMetric(drawsDesc, prometheus.GaugeValue, float64(status.TotalDraws-status.TestDraws), "false")
	ch <- prometheus.MustNewConstMetric(drawsDesc, prometheus.GaugeValue, float64(status.TestDraws), "true")
	for table, rows := range status.TableSizes {
		ch <- prometheus.MustNewConstMetric(recordsDesc, prometheus.GaugeValue, float64(rows), table)
	}
	ch <- prometheus.MustNewConstMetric(openEventsDesc, prometheus.GaugeValue, float64(status.OpenEvents))

	relations, err := ledger.ListRelations(ctx, false)
	if err != nil {
		slog.Error("failed to list relations", "error", err)
		return
	}
	events, err := ledger.ListEvents(ctx, "")
	if err != nil {
		slog.Error("failed to list trigger events", "error", err)
		return
	}
	byID := make(map[string][2]string, len(relations))
	for _, r := range relations {
		byID[r.ID] = [2]string{strconv.Itoa(r.Origin), strconv.Itoa(r.Target)}
	}
	for _, s := range core.ComputeRelationStats(relations, events) {
		ends := byID[s.RelationID]
		for outcome, rate := range map[string]float64{"hit": s.HitRate, "late": s.LateRate, "miss": s.MissRate} {
			ch <- prometheus.MustNewConstMetric(relationRateDesc, prometheus.GaugeValue, rate, s.RelationID, ends[0], ends[1], outcome)
		}
		ch <- prometheus.MustNewConstMetric(relationLagDesc, prometheus.GaugeValue, s.MedianLag, s.RelationID)
	}
}

// NewHandler returns an HTTP handler serving a registry that holds the store
// collector plus the Go runtime collectors.
func NewHandler(mgr contract.StoreManager) http.Handler {
	registry := prometheus.NewRegistry()
	registry.MustRegister(NewStoreCollector(mgr))
	registry.MustRegister(collectors.NewGoCollector())
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, mgr contract.StoreManager) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", NewHandler(mgr))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("serving metrics", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
