package export

import (
	"context"
	"fmt"
	"log"

	"github.com/xuri/excelize/v2"

	"scorenorm/domain/scorecard"
)

const sheetName = "Normalized"

// XLSXSink writes normalized records as a styled workbook
type XLSXSink struct{}

// NewXLSXSink creates a workbook sink
func NewXLSXSink() *XLSXSink {
	return &XLSXSink{}
}

// Format returns the sink's output format name
func (s *XLSXSink) Format() string {
	return "xlsx"
}

// Write renders the result's records to a single-sheet workbook at path
func (s *XLSXSink) Write(ctx context.Context, result *scorecard.NormalizeResult, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName("Sheet1", sheetName)

	for i, h := range headerRow() {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("failed to name header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return fmt.Errorf("failed to write header cell: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err == nil {
		f.SetRowStyle(sheetName, 1, 1, headerStyle)
	}

	for i, record := range result.Records {
		values := recordValues(record)
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to name record cell: %w", err)
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("failed to write record row: %w", err)
		}
	}

	f.SetColWidth(sheetName, "A", "D", 24)
	f.SetColWidth(sheetName, "E", "G", 10)
	f.SetColWidth(sheetName, "H", "H", 16)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	log.Printf("[XLSXSink] Wrote %d records to %s", len(result.Records), path)
	return nil
}
