package overrides

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cast"

	"scorenorm/domain/core"
	"scorenorm/domain/scorecard"
)

// Sidecar column spellings, lowercased. The metric column is the only
// required one.
var (
	metricAliases   = []string{"metric", "measure display name", "measure", "name"}
	retailerAliases = []string{"retailer", "account"}
	targetAliases   = []string{"target"}
	weightAliases   = []string{"weight", "weighting"}
)

// Loader reads per-metric override entries from a sidecar CSV. The
// first row is a header naming the columns; rows below it become
// override entries keyed by metric and optional retailer.
type Loader struct{}

// NewLoader creates a sidecar override loader
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses the sidecar at path into an override table. Malformed
// entries (blank metric, unparseable numbers) are counted and skipped;
// only an unreadable file or a header without a metric column is fatal.
func (l *Loader) Load(ctx context.Context, path string) (*scorecard.OverrideTable, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if ext := strings.ToLower(filepath.Ext(path)); ext != ".csv" {
		return nil, core.NewUnsupportedFormatError(path, ext)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, core.NewFileUnreadableError(path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, core.NewFileUnreadableError(path, err)
	}
	if len(rows) == 0 {
		return nil, core.NewFileUnreadableError(path, core.ErrEmptyGrid)
	}

	fields := fieldMap(rows[0])
	metricCol, ok := findColumn(fields, metricAliases)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no metric column", core.ErrOverrideMalformed, path)
	}
	retailerCol, hasRetailer := findColumn(fields, retailerAliases)
	targetCol, hasTarget := findColumn(fields, targetAliases)
	weightCol, hasWeight := findColumn(fields, weightAliases)

	table := scorecard.NewOverrideTable()
	malformed := 0
	for _, row := range rows[1:] {
		entry := scorecard.Override{Metric: strings.TrimSpace(cellAt(row, metricCol))}
		if entry.Metric == "" {
			malformed++
			continue
		}
		if hasRetailer {
			entry.Retailer = strings.TrimSpace(cellAt(row, retailerCol))
		}

		target, okTarget := numericCell(row, targetCol, hasTarget)
		weight, okWeight := numericCell(row, weightCol, hasWeight)
		if !okTarget || !okWeight {
			malformed++
			continue
		}
		entry.Target = target
		entry.Weight = weight

		table.Put(entry)
	}

	log.Printf("[OverrideLoader] Loaded %d overrides from %s in %.2fms (%d malformed rows skipped)",
		table.Len(), filepath.Base(path), float64(time.Since(start).Nanoseconds())/1e6, malformed)
	return table, nil
}

// fieldMap indexes header cells by their lowercased trimmed text
func fieldMap(header []string) map[string]int {
	fm := make(map[string]int, len(header))
	for i, cell := range header {
		key := strings.ToLower(strings.TrimSpace(cell))
		if key == "" {
			continue
		}
		if _, exists := fm[key]; !exists {
			fm[key] = i
		}
	}
	return fm
}

// findColumn returns the first alias present in the field map
func findColumn(fields map[string]int, aliases []string) (int, bool) {
	for _, alias := range aliases {
		if col, ok := fields[alias]; ok {
			return col, true
		}
	}
	return 0, false
}

// numericCell parses an optional numeric cell. A blank or unmapped cell
// is a nil value, not an error; a non-blank cell that will not parse
// marks the entry malformed.
func numericCell(row []string, col int, mapped bool) (*float64, bool) {
	if !mapped {
		return nil, true
	}
	raw := strings.TrimSpace(cellAt(row, col))
	if raw == "" {
		return nil, true
	}
	v, err := cast.ToFloat64E(raw)
	if err != nil {
		return nil, false
	}
	return &v, true
}

func cellAt(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}
