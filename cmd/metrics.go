package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/huangsam/drawbias/internal/contract"
	"github.com/huangsam/drawbias/internal/metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// metricsCmd groups the Prometheus exposition commands.
var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Expose ledger and cache state as Prometheus metrics",
	Long: `Expose the state of the ledger store and knowledge cache to Prometheus.

Metrics are computed from the stores on every scrape:
- Draw counts split by test flag
- Row counts per ledger table
- Open trigger events
- Hit, late and miss rates plus median lag per relation
- Knowledge cache size and last update

Subcommands:
  serve - Serve /metrics over HTTP`,
}

// metricsServeCmd serves /metrics until interrupted.
var metricsServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve /metrics over HTTP",
	Long: `Serve the Prometheus endpoint until interrupted.

Examples:
  drawbias metrics serve --addr :9090
  curl -s localhost:9090/metrics | grep drawbias_`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		addr := viper.GetString("addr")
		fmt.Fprintf(os.Stderr, "Serving metrics on %s/metrics\n", addr)
		if err := metrics.Serve(ctx, addr, storeManager); err != nil && ctx.Err() == nil {
			contract.LogFatal("Metrics server failed", err)
		}
	},
}
