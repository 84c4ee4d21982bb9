package scorecard

import (
	"strings"

	"scorenorm/domain/core"
)

// Business defaults filled into blank weight/target cells after
// overrides have been resolved. An explicit zero is not blank and
// must survive the fill.
const (
	DefaultWeight = 1.0
	DefaultTarget = 50.0
)

// Record is the normalized output unit, produced by projecting one
// data row through the column map. Immutable once emitted.
type Record struct {
	MeasureGroup       string   `json:"measure_group"`
	StandardKPIs       string   `json:"standard_kpis"`
	MeasureDisplayName string   `json:"measure_display_name"`
	Definition         string   `json:"definition"`
	Order              *int     `json:"order,omitempty"`
	Target             *float64 `json:"target,omitempty"`
	Weight             *float64 `json:"weight,omitempty"`
	Retailer           string   `json:"retailer,omitempty"`
}

// HasGroupingKey reports whether the record carries a non-blank
// primary grouping field. Rows failing this are dropped, never
// emitted partially populated.
func (r Record) HasGroupingKey() bool {
	return strings.TrimSpace(r.MeasureGroup) != ""
}

// FillDefaultWeight fills a blank weight with the business default.
// Callers must resolve overrides first; a pointer already set, even
// to zero, is left alone.
func (r *Record) FillDefaultWeight() {
	if r.Weight == nil {
		w := DefaultWeight
		r.Weight = &w
	}
}

// FillDefaultTarget fills a blank target with the business default
func (r *Record) FillDefaultTarget() {
	if r.Target == nil {
		t := DefaultTarget
		r.Target = &t
	}
}

// FillDefaults fills both blank weight and blank target
func (r *Record) FillDefaults() {
	r.FillDefaultWeight()
	r.FillDefaultTarget()
}

// CellError records one recovered cell-level parse failure. The cell
// falls back to missing and the default-fill rule applies; the file
// keeps processing.
type CellError struct {
	RowIndex int    `json:"row_index"`
	Field    Field  `json:"field"`
	Value    string `json:"value"`
	Message  string `json:"message"`
}

// NormalizeResult contains the outcome of normalizing one file
type NormalizeResult struct {
	Source       core.SourceID      `json:"source"`
	Path         string             `json:"path"`
	Layout       Layout             `json:"layout"`
	HeaderRow    int                `json:"header_row"`
	Records      []Record           `json:"records"`
	RowsSkipped  int                `json:"rows_skipped"`
	RowsFiltered int                `json:"rows_filtered"`
	CellErrors   []CellError        `json:"cell_errors,omitempty"`
	Fingerprint  core.RecordSetHash `json:"fingerprint"`
	DurationMs   int64              `json:"duration_ms"`
}

// Fingerprintable renders records as ordered field maps so equal
// record sets always produce equal fingerprints.
func Fingerprintable(records []Record) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(records))
	for _, r := range records {
		m := map[string]interface{}{
			string(FieldMeasureGroup):       r.MeasureGroup,
			string(FieldStandardKPIs):       r.StandardKPIs,
			string(FieldMeasureDisplayName): r.MeasureDisplayName,
			string(FieldDefinition):         r.Definition,
		}
		if r.Order != nil {
			m[string(FieldOrder)] = *r.Order
		}
		if r.Target != nil {
			m[string(FieldTarget)] = *r.Target
		}
		if r.Weight != nil {
			m[string(FieldWeight)] = *r.Weight
		}
		if r.Retailer != "" {
			m[string(FieldRetailer)] = r.Retailer
		}
		out = append(out, m)
	}
	return out
}
