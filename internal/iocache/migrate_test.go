package iocache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/drawbias/schema"
)

func TestMigrateLedger_NoneBackend(t *testing.T) {
	err := MigrateLedger(schema.NoneBackend, "", -1)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "migrations are not supported for NoneBackend")
}

func TestMigrateLedger_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test_migration.db")

	require.NoError(t, MigrateLedger(schema.SQLiteBackend, dbPath, -1))
	_, err := os.Stat(dbPath)
	assert.NoError(t, err)

	// Running again is a no-op
	assert.NoError(t, MigrateLedger(schema.SQLiteBackend, dbPath, -1))
	assert.NoError(t, MigrateLedger(schema.SQLiteBackend, dbPath, 1))

	// Roll back and re-apply
	assert.NoError(t, MigrateLedger(schema.SQLiteBackend, dbPath, 0))
	assert.NoError(t, MigrateLedger(schema.SQLiteBackend, dbPath, 1))

	store, err := NewLedgerStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	assert.Equal(t, 1, schemaVersion(store.db))
}

func TestMigrateLedger_UnknownVersion(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test_migration.db")
	assert.Error(t, MigrateLedger(schema.SQLiteBackend, dbPath, 99))
}
