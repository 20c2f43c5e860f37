package contract

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/huangsam/drawbias/schema"
)

// Color variables for console output.
var (
	StrongColor   = color.New(color.FgRed, color.Bold) // StrongColor marks fuerte candidates.
	ModerateColor = color.New(color.FgYellow)          // ModerateColor marks moderado candidates.
	WeakColor     = color.New(color.FgCyan)            // WeakColor marks debil candidates.
	HistoricColor = color.New(color.FgHiBlack)         // HistoricColor marks historico candidates.
)

// GetTierLabel returns the display text of a tier.
func GetTierLabel(tier schema.Tier) string {
	switch tier {
	case schema.StrongTier:
		return "Fuerte"
	case schema.ModerateTier:
		return "Moderado"
	case schema.WeakTier:
		return "Débil"
	case schema.HistoricTier:
		return "Histórico"
	default:
		return string(tier)
	}
}

// GetColorTierLabel returns a colored tier label for console output (table).
func GetColorTierLabel(tier schema.Tier) string {
	text := GetTierLabel(tier)
	switch tier {
	case schema.StrongTier:
		return StrongColor.Sprint(text)
	case schema.ModerateTier:
		return ModerateColor.Sprint(text)
	case schema.WeakTier:
		return WeakColor.Sprint(text)
	default:
		return HistoricColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It falls back to os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// InitLogger installs a text slog handler on w as the default logger.
func InitLogger(w io.Writer, level slog.Level) {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// GetStoreDBFilePath returns the path to the SQLite DB file for the ledger store.
func GetStoreDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".drawbias.db"
	}
	return filepath.Join(homeDir, ".drawbias.db")
}

// GetCacheDBFilePath returns the path to the SQLite DB file for the knowledge cache.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".drawbias_cache.db"
	}
	return filepath.Join(homeDir, ".drawbias_cache.db")
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
