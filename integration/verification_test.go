//go:build basic

// Package integration contains integration tests for drawbias.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags basic ./integration
// Or with database containers: go test -tags database ./integration
package integration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sqliteEnv points both stores at files under dir.
func sqliteEnv(dir string) []string {
	return []string{
		"DRAWBIAS_STORE_BACKEND=sqlite",
		"DRAWBIAS_STORE_DB_CONNECT=" + filepath.Join(dir, "ledger.db"),
		"DRAWBIAS_CACHE_BACKEND=sqlite",
		"DRAWBIAS_CACHE_DB_CONNECT=" + filepath.Join(dir, "cache.db"),
		"DRAWBIAS_NOW=2024-03-05",
	}
}

// TestImportVerification imports the fixture and checks the ledger against it.
func TestImportVerification(t *testing.T) {
	dir := t.TempDir()
	env := sqliteEnv(dir)
	fixture := writeFixture(t, dir)

	out, err := runDrawbias(t, env, "draws", "import", fixture, "--output", "json")
	require.NoError(t, err)
	var summary struct {
		Read       int `json:"leidos"`
		Inserted   int `json:"insertados"`
		Duplicates int `json:"duplicados"`
		Rejected   int `json:"rechazados"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, 12, summary.Read)
	assert.Equal(t, 10, summary.Inserted)
	assert.Equal(t, 1, summary.Duplicates)
	assert.Equal(t, 1, summary.Rejected)

	out, err = runDrawbias(t, env, "draws", "list", "--output", "json", "--limit", "100")
	require.NoError(t, err)
	var draws []struct {
		Number int    `json:"numero"`
		Date   string `json:"fecha"`
		Slot   string `json:"horario"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &draws))
	require.Len(t, draws, 10)
	assert.Equal(t, "2024-03-01", draws[0].Date)
	assert.Equal(t, "11AM", draws[0].Slot)
	assert.Equal(t, "2024-03-04", draws[len(draws)-1].Date)

	// Re-importing the same file only finds duplicates
	out, err = runDrawbias(t, env, "draws", "import", fixture, "--output", "json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, 0, summary.Inserted)
	assert.Equal(t, 11, summary.Duplicates)
}

// TestProfileVerification checks that a profile counts what the ledger holds.
func TestProfileVerification(t *testing.T) {
	dir := t.TempDir()
	env := sqliteEnv(dir)
	_, err := runDrawbias(t, env, "draws", "import", writeFixture(t, dir))
	require.NoError(t, err)

	out, err := runDrawbias(t, env, "profiles", "show", "07", "--output", "json")
	require.NoError(t, err)
	var set struct {
		Profiles []struct {
			Number int            `json:"numero"`
			Total  int            `json:"total"`
			BySlot map[string]int `json:"porHorario"`
		} `json:"perfiles"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &set))
	require.Len(t, set.Profiles, 1)
	assert.Equal(t, 7, set.Profiles[0].Number)
	assert.Equal(t, 3, set.Profiles[0].Total)
	assert.Equal(t, map[string]int{"11AM": 1, "3PM": 1, "9PM": 1}, set.Profiles[0].BySlot)

	// A number that never came up is an error
	_, err = runDrawbias(t, env, "profiles", "show", "99")
	assert.Error(t, err)
}

// TestLedgerCommands walks through the ledger subcommands end to end.
func TestLedgerCommands(t *testing.T) {
	dir := t.TempDir()
	env := sqliteEnv(dir)
	_, err := runDrawbias(t, env, "draws", "import", writeFixture(t, dir))
	require.NoError(t, err)

	_, err = runDrawbias(t, env, "hypotheses", "add", "--number", "42", "--reason", "integration")
	require.NoError(t, err)
	_, err = runDrawbias(t, env, "triggers", "add", "--origin", "42", "--target", "24", "--window-max", "3")
	require.NoError(t, err)

	out, err := runDrawbias(t, env, "draws", "add", "--date", "2024-03-05", "--slot", "11AM",
		"--country", "cr", "--number", "42", "--resolve", "--output", "json")
	require.NoError(t, err)
	var rec struct {
		Opened   int `json:"eventosAbiertos"`
		Outcomes []struct {
			State string `json:"estado"`
		} `json:"resultados"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.Equal(t, 1, rec.Opened)
	require.Len(t, rec.Outcomes, 1)
	assert.Equal(t, "confirmada", rec.Outcomes[0].State)

	_, err = runDrawbias(t, env, "modes", "add", "--name", "espejo", "--operation", "mirror")
	require.NoError(t, err)

	for _, args := range [][]string{
		{"predict", "--output", "json"},
		{"baseline"},
		{"patterns"},
		{"tiers"},
		{"insights"},
		{"modes", "evaluate"},
		{"modes", "suggest"},
		{"triggers", "stats"},
		{"triggers", "events", "--status", "open"},
		{"hypotheses", "outcomes"},
		{"draws", "duplicates"},
		{"store", "status"},
		{"cache", "status"},
		{"cache", "rebuild"},
	} {
		_, err := runDrawbias(t, env, args...)
		assert.NoError(t, err, args)
	}

	out, err = runDrawbias(t, env, "predict", "--output", "json")
	require.NoError(t, err)
	var result map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.NotEmpty(t, result)
}

// TestParquetRoundTrip exports the ledger and imports it into a fresh one.
func TestParquetRoundTrip(t *testing.T) {
	dir := t.TempDir()
	env := sqliteEnv(dir)
	_, err := runDrawbias(t, env, "draws", "import", writeFixture(t, dir))
	require.NoError(t, err)

	exported := filepath.Join(dir, "draws.parquet")
	_, err = runDrawbias(t, env, "draws", "export", "--output-file", exported)
	require.NoError(t, err)

	other := sqliteEnv(filepath.Join(dir, "copy"))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "copy"), 0o755))
	out, err := runDrawbias(t, other, "draws", "import", exported, "--output", "json")
	require.NoError(t, err)
	var summary struct {
		Inserted int `json:"insertados"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, 10, summary.Inserted)
}
