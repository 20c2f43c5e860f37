//go:build database

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/huangsam/drawbias/internal/iocache"
	"github.com/huangsam/drawbias/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startMySQL starts a MySQL container and returns its DSN.
func startMySQL(t *testing.T, ctx context.Context) string {
	t.Helper()
	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "drawbias",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = mysqlC.Terminate(ctx) })

	// Get connection details
	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	return fmt.Sprintf("root:secret123@tcp(%s:%s)/drawbias", host, port.Port())
}

// startPostgres starts a PostgreSQL container and returns its DSN.
func startPostgres(t *testing.T, ctx context.Context) string {
	t.Helper()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	// Get connection details
	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres sslmode=disable", host, port.Port())
}

// TestDrawbiasWithMySQL tests the drawbias CLI and stores with a MySQL backend.
func TestDrawbiasWithMySQL(t *testing.T) {
	ctx := context.Background()
	connStr := startMySQL(t, ctx)

	t.Run("cli", func(t *testing.T) {
		runBackendScenario(t, schema.MySQLBackend, connStr)
	})
	t.Run("stores", func(t *testing.T) {
		exerciseStores(t, ctx, schema.MySQLBackend, connStr)
	})
}

// TestDrawbiasWithPostgres tests the drawbias CLI and stores with a PostgreSQL backend.
func TestDrawbiasWithPostgres(t *testing.T) {
	ctx := context.Background()
	connStr := startPostgres(t, ctx)

	t.Run("cli", func(t *testing.T) {
		runBackendScenario(t, schema.PostgreSQLBackend, connStr)
	})
	t.Run("stores", func(t *testing.T) {
		exerciseStores(t, ctx, schema.PostgreSQLBackend, connStr)
	})
}

// runBackendScenario drives the binary against one database for both stores.
func runBackendScenario(t *testing.T, backend schema.DatabaseBackend, connStr string) {
	env := []string{
		"DRAWBIAS_STORE_BACKEND=" + string(backend),
		"DRAWBIAS_STORE_DB_CONNECT=" + connStr,
		"DRAWBIAS_CACHE_BACKEND=" + string(backend),
		"DRAWBIAS_CACHE_DB_CONNECT=" + connStr,
		"DRAWBIAS_NOW=2024-03-05",
	}

	_, err := runDrawbias(t, env, "store", "migrate")
	require.NoError(t, err)

	_, err = runDrawbias(t, env, "cache", "clear")
	require.NoError(t, err)

	out, err := runDrawbias(t, env, "draws", "import", writeFixture(t, t.TempDir()), "--output", "json")
	require.NoError(t, err)
	var summary struct {
		Inserted int `json:"insertados"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, 10, summary.Inserted)

	for _, args := range [][]string{
		{"triggers", "seed"},
		{"predict", "--output", "json"},
		{"patterns"},
		{"profiles", "show", "07"},
		{"store", "status"},
		{"cache", "status"},
	} {
		_, err := runDrawbias(t, env, args...)
		assert.NoError(t, err, args)
	}

	// Rolling back drops every ledger table
	_, err = runDrawbias(t, env, "store", "migrate", "--target-version", "0")
	require.NoError(t, err)
}

// exerciseStores runs the store implementations directly against the container.
func exerciseStores(t *testing.T, ctx context.Context, backend schema.DatabaseBackend, connStr string) {
	ledger, err := iocache.NewLedgerStore(backend, connStr)
	require.NoError(t, err)
	defer func() { _ = ledger.Close() }()
	require.NoError(t, ledger.ClearDraws(ctx))

	draw := schema.RawDraw{Date: "2024-05-01", Slot: "3PM", Country: "cr", Number: "07"}
	res, err := ledger.SaveDraw(ctx, draw, schema.SaveOptions{})
	require.NoError(t, err)
	assert.NotEmpty(t, res.ID)

	res, err = ledger.SaveDraw(ctx, draw, schema.SaveOptions{})
	require.NoError(t, err)
	assert.True(t, res.Duplicate)
	assert.Empty(t, res.ID)

	_, err = ledger.SaveDraw(ctx, draw, schema.SaveOptions{Force: true})
	require.NoError(t, err)
	groups, err := ledger.FindDuplicates(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Draws, 2)

	status, err := ledger.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalDraws)
	assert.Equal(t, 1, status.SchemaVersion)

	ks, err := iocache.NewKnowledgeStore("drawbias_knowledge_it", backend, connStr)
	require.NoError(t, err)
	defer func() { _ = ks.Close() }()

	entries := []schema.KnowledgeEntry{
		{Key: "07", Value: []byte(`{"numero":7}`), Version: 1, UpdatedAt: 1},
		{Key: "15", Value: []byte(`{"numero":15}`), Version: 1, UpdatedAt: 2},
	}
	require.NoError(t, ks.ReplaceScope(ctx, "profile", entries))
	got, err := ks.Get(ctx, "profile", "15")
	require.NoError(t, err)
	assert.JSONEq(t, `{"numero":15}`, string(got.Value))

	listed, err := ks.ListByScope(ctx, "profile")
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	require.NoError(t, ks.ClearScope(ctx, "profile"))
	_, err = ks.Get(ctx, "profile", "07")
	assert.ErrorIs(t, err, iocache.ErrNotFound)
}
