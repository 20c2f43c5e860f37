package outwriter

import (
	"os"

	"github.com/huangsam/drawbias/internal/contract"
	"golang.org/x/term"
)

const (
	minNoteWidth = 20
	maxNoteWidth = 80
)

// GetMaxNoteWidth calculates the maximum width of the free-text column of a
// table (summaries, notes, descriptions) given the width already taken by
// the fixed columns.
func GetMaxNoteWidth(cfg *contract.Config, fixedWidth int) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 {
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // CI and pipes
		} else {
			termWidth = detectedWidth
		}
	}

	// Borders, separators and padding
	available := termWidth - fixedWidth - 10
	if available < minNoteWidth {
		return minNoteWidth
	}
	if available > maxNoteWidth {
		return maxNoteWidth
	}
	return available
}

// truncateText shortens s to at most width runes, marking the cut with "...".
func truncateText(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
