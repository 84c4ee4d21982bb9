package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"

	"scorenorm/domain/scorecard"
)

// CSVSink writes normalized records as a flat CSV with a canonical
// header row
type CSVSink struct{}

// NewCSVSink creates a CSV sink
func NewCSVSink() *CSVSink {
	return &CSVSink{}
}

// Format returns the sink's output format name
func (s *CSVSink) Format() string {
	return "csv"
}

// Write renders the result's records to path
func (s *CSVSink) Write(ctx context.Context, result *scorecard.NormalizeResult, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(headerRow()); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, record := range result.Records {
		if err := writer.Write(recordCells(record)); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV file: %w", err)
	}

	log.Printf("[CSVSink] Wrote %d records to %s", len(result.Records), path)
	return nil
}
