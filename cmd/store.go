package cmd

import (
	"fmt"
	"strings"

	"github.com/huangsam/drawbias/internal/contract"
	"github.com/huangsam/drawbias/internal/iocache"
	"github.com/huangsam/drawbias/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// storeMigrateSetup loads minimal configuration needed for migrate operations.
// This is a specialized setup that does NOT initialize stores,
// allowing migrations to run on a fresh database or roll one back.
func storeMigrateSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(strings.ToLower(viper.GetString("store-backend")))
	connStr := viper.GetString("store-db-connect")
	if backend == schema.NoneBackend {
		return fmt.Errorf("store backend cannot be none. must be sqlite, mysql, postgresql")
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql", backend)
	}

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetStoreDBFilePath()
	}

	cfg.StoreBackend = backend
	cfg.StoreDBConnect = connStr

	return nil
}

// storeMigrateSetupWrapper wraps storeMigrateSetup to provide PreRunE for the migrate command.
func storeMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	return storeMigrateSetup()
}

// storeCmd focused on the ledger store.
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Inspect and migrate the ledger store",
	Long: `Inspect and migrate the ledger store that holds draws, hypotheses,
outcomes, modes, relations and trigger events.

Supported backends: SQLite (default), MySQL, PostgreSQL

Subcommands:
  status  - Show row counts, draw range and schema version
  migrate - Run database schema migrations

Examples:
  drawbias store status
  DRAWBIAS_STORE_BACKEND=postgresql DRAWBIAS_STORE_DB_CONNECT="..." drawbias store migrate`,
}

// storeStatusCmd shows store status.
var storeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display ledger statistics and connection details",
	Long: `Show detailed information about the ledger store.

Displays:
- Backend type and connection status
- Draw, hypothesis, outcome, mode and relation counts
- Open trigger events
- Oldest and latest draw dates
- Schema version and table sizes

Examples:
  drawbias store status`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := storeManager.GetLedgerStore().GetStatus(rootCtx)
		if err != nil {
			contract.LogFatal("Failed to get store status", err)
		}
		iocache.PrintStoreStatus(status)
	},
}

// storeMigrateCmd runs database migrations for the ledger store.
var storeMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the ledger store.

Every command migrates the ledger to the latest version on startup. Use this
command to inspect the result explicitly or to roll back.

Examples:
  # Migrate to latest version (default)
  drawbias store migrate

  # Migrate to specific version
  drawbias store migrate --target-version 1

  # Rollback to the initial state
  drawbias store migrate --target-version 0`,
	PreRunE: storeMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateLedger(cfg.StoreBackend, cfg.StoreDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
