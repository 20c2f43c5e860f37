package cmd

import (
	"errors"
	"fmt"

	"github.com/huangsam/drawbias/core"
	"github.com/huangsam/drawbias/internal/contract"
	"github.com/huangsam/drawbias/internal/iocache"
	"github.com/huangsam/drawbias/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cacheSetup loads minimal configuration needed to clear the cache.
// It never opens the stores, so a corrupted cache file can still be removed.
func cacheSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get cache-related config values
	backend := schema.DatabaseBackend(viper.GetString("cache-backend"))
	connStr := viper.GetString("cache-db-connect")

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	cfg.CacheBackend = backend
	cfg.CacheDBConnect = connStr

	return nil
}

// cacheSetupWrapper wraps cacheSetup to provide PreRunE for cache commands.
func cacheSetupWrapper(_ *cobra.Command, _ []string) error {
	return cacheSetup()
}

// cacheCmd focused on knowledge cache management.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the knowledge cache (number profiles)",
	Long: `Manage the knowledge cache that holds precomputed number profiles.

Every write to the ledger refreshes the cache. Reads rebuild it when it is
missing or older than the ledger, so clearing it is always safe.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (recompute every time)

Subcommands:
  status  - Show cache statistics and connection info
  clear   - Remove all cached data
  rebuild - Recompute every profile from the ledger

Examples:
  # Check cache status
  drawbias cache status

  # Rebuild after importing draws with another tool
  drawbias cache rebuild`,
}

// cacheClearCmd clears the cache.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached profiles",
	Long: `Delete all cached profiles from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the cache table

Examples:
  # Clear SQLite cache (default)
  drawbias cache clear

  # Clear MySQL cache (set connection string via env variable)
  DRAWBIAS_CACHE_BACKEND=mysql DRAWBIAS_CACHE_DB_CONNECT="..." drawbias cache clear`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearCache(cfg.CacheBackend, cfg.CacheDBConnect, cfg.CacheDBConnect); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		fmt.Println("Cache cleared successfully.")
	},
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display cache statistics and connection details",
	Long: `Show detailed information about the knowledge cache.

Displays:
- Backend type and connection status
- Total number of cached entries
- Last and oldest cache entry timestamps
- Cache database size

Examples:
  # Check cache status
  drawbias cache status`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		ks := storeManager.GetKnowledgeStore()
		if ks == nil {
			iocache.PrintCacheStatus(schema.CacheStatus{Backend: string(schema.NoneBackend)})
			return
		}
		status, err := ks.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get cache status", err)
		}
		iocache.PrintCacheStatus(status)
	},
}

// cacheRebuildCmd recomputes every profile.
var cacheRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Recompute every profile from the ledger",
	Long: `Recompute every number profile from the draw ledger and replace the cache.

Examples:
  drawbias cache rebuild`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if storeManager.GetKnowledgeStore() == nil {
			contract.LogWarn("Nothing to rebuild", errors.New("cache backend is none"))
			return
		}
		runExecutor(core.ExecuteRebuildKnowledge, "Failed to rebuild cache")
	},
}
