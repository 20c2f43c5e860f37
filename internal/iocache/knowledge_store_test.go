package iocache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/drawbias/schema"
)

func newTestKnowledgeStore(t *testing.T) *KnowledgeStoreImpl {
	t.Helper()
	ks, err := NewKnowledgeStore(knowledgeTable, schema.SQLiteBackend, filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = ks.Close() })
	return ks
}

func entry(scope, key, value string, ts int64) schema.KnowledgeEntry {
	return schema.KnowledgeEntry{Scope: scope, Key: key, Value: []byte(value), Version: 1, UpdatedAt: ts}
}

func TestKnowledgeStore_SQLite(t *testing.T) {
	ctx := context.Background()

	t.Run("replace and read back a scope", func(t *testing.T) {
		ks := newTestKnowledgeStore(t)
		require.NoError(t, ks.ReplaceScope(ctx, "profiles", []schema.KnowledgeEntry{
			entry("profiles", "n07", `{"numero":7}`, 1000),
			entry("profiles", "n12", `{"numero":12}`, 1000),
		}))

		got, err := ks.Get(ctx, "profiles", "n07")
		require.NoError(t, err)
		assert.Equal(t, `{"numero":7}`, string(got.Value))
		assert.Equal(t, int64(1000), got.UpdatedAt)

		rows, err := ks.ListByScope(ctx, "profiles")
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "n07", rows[0].Key)
		assert.Equal(t, "n12", rows[1].Key)
	})

	t.Run("replace drops stale keys", func(t *testing.T) {
		ks := newTestKnowledgeStore(t)
		require.NoError(t, ks.ReplaceScope(ctx, "profiles", []schema.KnowledgeEntry{entry("profiles", "n01", "a", 1)}))
		require.NoError(t, ks.ReplaceScope(ctx, "profiles", []schema.KnowledgeEntry{entry("profiles", "n02", "b", 2)}))

		_, err := ks.Get(ctx, "profiles", "n01")
		assert.ErrorIs(t, err, ErrNotFound)
		rows, err := ks.ListByScope(ctx, "profiles")
		require.NoError(t, err)
		assert.Len(t, rows, 1)
	})

	t.Run("scopes are independent", func(t *testing.T) {
		ks := newTestKnowledgeStore(t)
		require.NoError(t, ks.ReplaceScope(ctx, "profiles", []schema.KnowledgeEntry{entry("profiles", "k", "a", 1)}))
		require.NoError(t, ks.ReplaceScope(ctx, "other", []schema.KnowledgeEntry{entry("other", "k", "b", 1)}))
		require.NoError(t, ks.ClearScope(ctx, "profiles"))

		rows, err := ks.ListByScope(ctx, "profiles")
		require.NoError(t, err)
		assert.Empty(t, rows)
		got, err := ks.Get(ctx, "other", "k")
		require.NoError(t, err)
		assert.Equal(t, "b", string(got.Value))
	})

	t.Run("status", func(t *testing.T) {
		ks := newTestKnowledgeStore(t)
		status, err := ks.GetStatus()
		require.NoError(t, err)
		assert.True(t, status.Connected)
		assert.Zero(t, status.TotalEntries)

		require.NoError(t, ks.ReplaceScope(ctx, "profiles", []schema.KnowledgeEntry{
			entry("profiles", "a", "x", 100),
			entry("profiles", "b", "y", 300),
		}))
		status, err = ks.GetStatus()
		require.NoError(t, err)
		assert.Equal(t, "sqlite", status.Backend)
		assert.Equal(t, 2, status.TotalEntries)
		assert.Equal(t, int64(300), status.LastEntryTime.Unix())
		assert.Equal(t, int64(100), status.OldestEntryTime.Unix())
		assert.Positive(t, status.TableSizeBytes)
	})
}

func TestKnowledgeStore_NoneBackend(t *testing.T) {
	ctx := context.Background()
	ks, err := NewKnowledgeStore(knowledgeTable, schema.NoneBackend, "")
	require.NoError(t, err)

	assert.NoError(t, ks.ReplaceScope(ctx, "profiles", []schema.KnowledgeEntry{entry("profiles", "a", "x", 1)}))
	rows, err := ks.ListByScope(ctx, "profiles")
	require.NoError(t, err)
	assert.Empty(t, rows)
	_, err = ks.Get(ctx, "profiles", "a")
	assert.ErrorIs(t, err, ErrNotFound)

	status, err := ks.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.NoError(t, ks.Close())
}

func TestNewKnowledgeStoreErrors(t *testing.T) {
	_, err := NewKnowledgeStore("bad-name", schema.SQLiteBackend, "")
	assert.Error(t, err)

	_, err = NewKnowledgeStore(knowledgeTable, schema.DatabaseBackend("oracle"), "")
	assert.Error(t, err)
}
