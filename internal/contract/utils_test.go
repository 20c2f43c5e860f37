package contract

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/drawbias/schema"
)

func TestGetTierLabel(t *testing.T) {
	tests := []struct {
		tier  schema.Tier
		label string
	}{
		{schema.StrongTier, "Fuerte"},
		{schema.ModerateTier, "Moderado"},
		{schema.WeakTier, "Débil"},
		{schema.HistoricTier, "Histórico"},
		{schema.Tier("otro"), "otro"},
	}

	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			assert.Equal(t, tt.label, GetTierLabel(tt.tier))
			// Should contain the plain label
			assert.Contains(t, GetColorTierLabel(tt.tier), tt.label)
		})
	}
}

func TestSelectOutputFile(t *testing.T) {
	t.Run("empty path returns stdout", func(t *testing.T) {
		file, err := SelectOutputFile("")
		require.NoError(t, err)
		assert.Equal(t, os.Stdout, file)
	})

	t.Run("valid path creates file", func(t *testing.T) {
		tempFile := filepath.Join(t.TempDir(), "test_output.txt")

		file, err := SelectOutputFile(tempFile)
		require.NoError(t, err)
		assert.NotNil(t, file)
		_ = file.Close()

		_, err = os.Stat(tempFile)
		assert.NoError(t, err)
	})
}

func TestDBFilePaths(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)

	store := GetStoreDBFilePath()
	cache := GetCacheDBFilePath()
	assert.Contains(t, store, ".drawbias.db")
	assert.Contains(t, cache, ".drawbias_cache.db")
	assert.NotEqual(t, store, cache)
	assert.True(t, strings.HasPrefix(store, homeDir), "path %s should start with home dir %s", store, homeDir)
}

func TestInitLogger(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	InitLogger(&buf, slog.LevelInfo)
	slog.Debug("hidden")
	slog.Info("shown", "key", "value")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown")
	assert.Contains(t, out, "key=value")
}

func TestParseBoolString(t *testing.T) {
	tests := []struct {
		input   string
		want    bool
		wantErr bool
	}{
		{"yes", true, false},
		{"TRUE", true, false},
		{"1", true, false},
		{"no", false, false},
		{"False", false, false},
		{"0", false, false},
		{"maybe", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseBoolString(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
