package tabular

import (
	"context"
	"encoding/csv"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"scorenorm/domain/core"
	"scorenorm/domain/scorecard"

	"github.com/xuri/excelize/v2"
)

// GridReader loads CSV and Excel files into raw cell grids. Cells are
// kept exactly as read; trimming and typing happen during
// normalization, not acquisition.
type GridReader struct{}

// NewGridReader creates a reader handling both flat and workbook formats
func NewGridReader() *GridReader {
	return &GridReader{}
}

// Supports reports whether the file extension is a known tabular format
func (r *GridReader) Supports(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".xlsx":
		return true
	}
	return false
}

// Read loads the grid at path. For workbooks the sheet name selects a
// sheet, defaulting to the first one; it is ignored for CSV.
func (r *GridReader) Read(ctx context.Context, path string, sheet string) (*scorecard.Grid, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(path))
	log.Printf("[GridReader] Starting to read %s file: %s", strings.TrimPrefix(ext, "."), path)

	if _, err := os.Stat(path); err != nil {
		return nil, core.NewFileUnreadableError(path, err)
	}

	var rows [][]string
	var err error
	switch ext {
	case ".csv":
		rows, err = r.readCSV(path)
	case ".xlsx":
		rows, sheet, err = r.readExcel(path, sheet)
	default:
		return nil, core.NewUnsupportedFormatError(path, ext)
	}
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, core.NewFileUnreadableError(path, core.ErrEmptyGrid)
	}

	return &scorecard.Grid{
		Source: core.NewSourceID(path),
		Path:   path,
		Sheet:  sheet,
		Rows:   rows,
	}, nil
}

func (r *GridReader) readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, core.NewFileUnreadableError(path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // scorecard exports are ragged

	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, core.NewFileUnreadableError(path, err)
	}
	readTime := time.Since(readStart)
	log.Printf("[GridReader] CSV file read in %.2fms (%d rows)", float64(readTime.Nanoseconds())/1e6, len(rows))

	return rows, nil
}

func (r *GridReader) readExcel(path string, sheet string) ([][]string, string, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, "", core.NewFileUnreadableError(path, err)
	}
	defer f.Close()
	fileOpenTime := time.Since(startTime)
	log.Printf("[GridReader] Excel file opened in %.2fms", float64(fileOpenTime.Nanoseconds())/1e6)

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, "", core.NewFileUnreadableError(path, core.ErrSheetNotFound)
		}
		sheet = sheets[0]
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx == -1 {
		return nil, "", core.NewFileUnreadableError(path, core.ErrSheetNotFound)
	}

	readStart := time.Now()
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, "", core.NewFileUnreadableError(path, err)
	}
	readTime := time.Since(readStart)
	log.Printf("[GridReader] Sheet %q read in %.2fms (%d rows)", sheet, float64(readTime.Nanoseconds())/1e6, len(rows))

	return rows, sheet, nil
}
