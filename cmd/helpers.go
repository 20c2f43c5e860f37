package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/huangsam/drawbias/core/agg"
	"github.com/huangsam/drawbias/internal/iocache"
	"github.com/huangsam/drawbias/schema"
	"github.com/spf13/cobra"
)

// parseNumber reads a two-digit draw number from a flag or argument.
func parseNumber(name, value string) (int, error) {
	n, ok := agg.ParseNumber(value)
	if !ok {
		return 0, fmt.Errorf("%w: %s must be a number between 00 and 99 (received %q)", iocache.ErrInvalidInput, name, value)
	}
	return n, nil
}

// parseSlot reads an optional slot. Empty input yields an empty slot.
func parseSlot(value string) (schema.Slot, error) {
	if strings.TrimSpace(value) == "" {
		return "", nil
	}
	slot, ok := agg.ParseSlot(value)
	if !ok {
		return "", fmt.Errorf("%w: invalid slot %q. must be 11AM, 3PM or 9PM", iocache.ErrInvalidInput, value)
	}
	return slot, nil
}

// changedString returns a pointer to the flag value when the user set it.
func changedString(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

// changedInt returns a pointer to the flag value when the user set it.
func changedInt(cmd *cobra.Command, name string) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetInt(name)
	return &v
}

// report prints v as JSON for --output json and the text line otherwise.
func report(v any, text string) error {
	if cfg.Output == schema.JSONOut {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)
	}
	_, err := fmt.Println(text)
	return err
}
