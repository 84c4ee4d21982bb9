package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"scorenorm/domain/scorecard"
)

// renderView is the JSON shape that lands on disk. Run timing is
// deliberately absent so normalizing the same file twice writes
// byte-identical output.
type renderView struct {
	Path         string                `json:"path"`
	Layout       scorecard.Layout      `json:"layout"`
	HeaderRow    int                   `json:"header_row"`
	Records      []scorecard.Record    `json:"records"`
	RowsSkipped  int                   `json:"rows_skipped"`
	RowsFiltered int                   `json:"rows_filtered"`
	CellErrors   []scorecard.CellError `json:"cell_errors,omitempty"`
	Fingerprint  string                `json:"fingerprint"`
}

// JSONSink writes the full normalized result as indented JSON
type JSONSink struct{}

// NewJSONSink creates a JSON sink
func NewJSONSink() *JSONSink {
	return &JSONSink{}
}

// Format returns the sink's output format name
func (s *JSONSink) Format() string {
	return "json"
}

// Write renders the result to path
func (s *JSONSink) Write(ctx context.Context, result *scorecard.NormalizeResult, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	view := renderView{
		Path:         result.Path,
		Layout:       result.Layout,
		HeaderRow:    result.HeaderRow,
		Records:      result.Records,
		RowsSkipped:  result.RowsSkipped,
		RowsFiltered: result.RowsFiltered,
		CellErrors:   result.CellErrors,
		Fingerprint:  result.Fingerprint.String(),
	}

	data, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}

	log.Printf("[JSONSink] Wrote %d records to %s", len(result.Records), path)
	return nil
}
