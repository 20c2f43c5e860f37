package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/huangsam/drawbias/internal/contract"
	"github.com/huangsam/drawbias/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// ErrParquetUnsupported is returned when a result set has no parquet layout.
var ErrParquetUnsupported = errors.New("parquet output is only available for draws and profiles")

// ErrParquetNeedsFile is returned when parquet output is requested without --output-file.
var ErrParquetNeedsFile = errors.New("parquet output requires --output-file")

// resultWriter bundles the per-format renderers of one result set.
// A nil renderer falls back to the table (csv) or fails (parquet).
type resultWriter struct {
	jsonData any
	csv      func(w *csv.Writer) error
	table    func(w io.Writer) error
	parquet  func(path string) error
}

// write dispatches to the renderer matching the configured output mode.
func (r resultWriter) write(cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, r.jsonData)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
		return nil
	case schema.CSVOut:
		if r.csv == nil {
			break
		}
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			csvWriter := csv.NewWriter(w)
			defer csvWriter.Flush()
			return r.csv(csvWriter)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
		return nil
	case schema.ParquetOut:
		if r.parquet == nil {
			return ErrParquetUnsupported
		}
		if cfg.OutputFile == "" {
			return ErrParquetNeedsFile
		}
		if err := r.parquet(cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing parquet output: %w", err)
		}
		fmt.Fprintf(os.Stderr, "💾 Wrote parquet to %s\n", cfg.OutputFile)
		return nil
	}
	// Default to human-readable table
	return writeWithFile(cfg.OutputFile, r.table, "Wrote table")
}

// writeWithFile handles the common pattern of opening a file, writing to it, and cleaning up.
// It accepts a writer function that takes an io.Writer and returns an error.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
	}
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSVWithHeader writes a header followed by the given rows.
func writeCSVWithHeader(w *csv.Writer, header []string, rows [][]string) error {
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// writeTable renders rows right-aligned under the given headers.
func writeTable(w io.Writer, headers []string, rows [][]string) error {
	table := tablewriter.NewWriter(w)
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

// writeLines prints each line followed by a newline and stops at the first error.
func writeLines(w io.Writer, lines ...string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// createFormatters creates the common formatter closures used across multiple output types.
func createFormatters(precision int) (fmtFloat func(float64) string, fmtPercent func(float64) string) {
	fmtFloat = func(v float64) string {
		return fmt.Sprintf("%.*f", precision, v)
	}
	fmtPercent = func(ratio float64) string {
		return fmt.Sprintf("%.*f%%", max(precision-1, 0), ratio*100)
	}
	return fmtFloat, fmtPercent
}

// padNumber renders a draw number with two digits.
func padNumber(n int) string {
	if n < 10 && n >= 0 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// optionalInt renders nil as "-".
func optionalInt(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

// optionalFloat renders nil as "-".
func optionalFloat(v *float64, fmtFloat func(float64) string) string {
	if v == nil {
		return "-"
	}
	return fmtFloat(*v)
}

// occurrenceText renders the date and slot of an occurrence.
func occurrenceText(o *schema.Occurrence) string {
	if o == nil {
		return "-"
	}
	return o.Date + " " + string(o.Slot)
}
