package iocache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/drawbias/internal/contract"
	"github.com/huangsam/drawbias/schema"
)

// knowledgeTable is the name of the table backing the knowledge cache.
const knowledgeTable = "drawbias_knowledge"

// KnowledgeStoreImpl implements the KnowledgeStore interface.
type KnowledgeStoreImpl struct {
	db        *sql.DB
	tableName string
	backend   schema.DatabaseBackend
	connStr   string
}

var _ contract.KnowledgeStore = &KnowledgeStoreImpl{} // Compile-time check

// NewKnowledgeStore opens the knowledge cache on the given backend and
// creates its table when missing.
func NewKnowledgeStore(tableName string, backend schema.DatabaseBackend, connStr string) (*KnowledgeStoreImpl, error) {
	if err := validateTableName(tableName); err != nil {
		return nil, err
	}
	if backend == schema.NoneBackend {
		return &KnowledgeStoreImpl{tableName: tableName, backend: backend}, nil
	}

	db, err := openDB(backend, connStr, contract.GetCacheDBFilePath())
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(getCreateKnowledgeQuery(tableName, backend)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", tableName, err)
	}

	return &KnowledgeStoreImpl{
		db:        db,
		tableName: tableName,
		backend:   backend,
		connStr:   connStr,
	}, nil
}

// getCreateKnowledgeQuery returns the CREATE TABLE query for the backend.
func getCreateKnowledgeQuery(tableName string, backend schema.DatabaseBackend) string {
	quoted := quoteTableName(tableName, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				scope VARCHAR(64) NOT NULL,
				entry_key VARCHAR(128) NOT NULL,
				entry_value LONGBLOB NOT NULL,
				entry_version INT NOT NULL,
				updated_at BIGINT NOT NULL,
				PRIMARY KEY (scope, entry_key)
			);
		`, quoted)
	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				scope VARCHAR(64) NOT NULL,
				entry_key VARCHAR(128) NOT NULL,
				entry_value BYTEA NOT NULL,
				entry_version INTEGER NOT NULL,
				updated_at BIGINT NOT NULL,
				PRIMARY KEY (scope, entry_key)
			);
		`, quoted)
	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				scope TEXT NOT NULL,
				entry_key TEXT NOT NULL,
				entry_value BLOB NOT NULL,
				entry_version INTEGER NOT NULL,
				updated_at INTEGER NOT NULL,
				PRIMARY KEY (scope, entry_key)
			);
		`, quoted)
	}
}

// Get returns one entry, or ErrNotFound.
func (ks *KnowledgeStoreImpl) Get(ctx context.Context, scope, key string) (schema.KnowledgeEntry, error) {
	if ks.db == nil {
		return schema.KnowledgeEntry{}, ErrNotFound
	}
	query := rebind(ks.backend, fmt.Sprintf(
		"SELECT scope, entry_key, entry_value, entry_version, updated_at FROM %s WHERE scope = ? AND entry_key = ?",
		quoteTableName(ks.tableName, ks.backend)))

	var e schema.KnowledgeEntry
	err := ks.db.QueryRowContext(ctx, query, scope, key).Scan(&e.Scope, &e.Key, &e.Value, &e.Version, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return schema.KnowledgeEntry{}, ErrNotFound
	}
	if err != nil {
		return schema.KnowledgeEntry{}, fmt.Errorf("get %s/%s: %w", scope, key, err)
	}
	return e, nil
}

// ListByScope returns every entry of a scope ordered by key.
func (ks *KnowledgeStoreImpl) ListByScope(ctx context.Context, scope string) ([]schema.KnowledgeEntry, error) {
	if ks.db == nil {
		return []schema.KnowledgeEntry{}, nil
	}
	query := rebind(ks.backend, fmt.Sprintf(
		"SELECT scope, entry_key, entry_value, entry_version, updated_at FROM %s WHERE scope = ? ORDER BY entry_key",
		quoteTableName(ks.tableName, ks.backend)))

	rows, err := ks.db.QueryContext(ctx, query, scope)
	if err != nil {
		return nil, fmt.Errorf("list scope %s: %w", scope, err)
	}
	defer func() { _ = rows.Close() }()

	entries := []schema.KnowledgeEntry{}
	for rows.Next() {
		var e schema.KnowledgeEntry
		if err := rows.Scan(&e.Scope, &e.Key, &e.Value, &e.Version, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan scope %s: %w", scope, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ReplaceScope swaps the whole scope for entries in one transaction.
func (ks *KnowledgeStoreImpl) ReplaceScope(ctx context.Context, scope string, entries []schema.KnowledgeEntry) error {
	if ks.db == nil {
		return nil
	}
	quoted := quoteTableName(ks.tableName, ks.backend)

	tx, err := ks.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace %s: %w", scope, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, rebind(ks.backend, fmt.Sprintf("DELETE FROM %s WHERE scope = ?", quoted)), scope); err != nil {
		return fmt.Errorf("clear scope %s: %w", scope, err)
	}

	insert := rebind(ks.backend, fmt.Sprintf(
		"INSERT INTO %s (scope, entry_key, entry_value, entry_version, updated_at) VALUES (?, ?, ?, ?, ?)", quoted))
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, scope, e.Key, e.Value, e.Version, e.UpdatedAt); err != nil {
			return fmt.Errorf("insert %s/%s: %w", scope, e.Key, err)
		}
	}
	return tx.Commit()
}

// ClearScope deletes every entry of a scope.
func (ks *KnowledgeStoreImpl) ClearScope(ctx context.Context, scope string) error {
	if ks.db == nil {
		return nil
	}
	query := rebind(ks.backend, fmt.Sprintf("DELETE FROM %s WHERE scope = ?", quoteTableName(ks.tableName, ks.backend)))
	if _, err := ks.db.ExecContext(ctx, query, scope); err != nil {
		return fmt.Errorf("clear scope %s: %w", scope, err)
	}
	return nil
}

// Close closes the underlying DB connection.
func (ks *KnowledgeStoreImpl) Close() error {
	if ks.db != nil {
		return ks.db.Close()
	}
	return nil
}

// GetStatus returns status information about the knowledge cache.
func (ks *KnowledgeStoreImpl) GetStatus() (schema.CacheStatus, error) {
	status := schema.CacheStatus{
		Backend:   string(ks.backend),
		Connected: ks.db != nil,
	}
	if ks.backend == schema.NoneBackend || ks.db == nil {
		return status, nil
	}

	quoted := quoteTableName(ks.tableName, ks.backend)
	if err := ks.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoted)).Scan(&status.TotalEntries); err != nil {
		return status, fmt.Errorf("failed to get total entries: %w", err)
	}
	if status.TotalEntries == 0 {
		return status, nil
	}

	var lastTs, oldestTs int64
	row := ks.db.QueryRow(fmt.Sprintf("SELECT MAX(updated_at), MIN(updated_at) FROM %s", quoted))
	if err := row.Scan(&lastTs, &oldestTs); err != nil {
		return status, fmt.Errorf("failed to get entry times: %w", err)
	}
	status.LastEntryTime = time.Unix(lastTs, 0)
	status.OldestEntryTime = time.Unix(oldestTs, 0)
	status.TableSizeBytes = tableSize(ks.db, ks.backend, ks.connStr, ks.tableName, status.TotalEntries)

	return status, nil
}
