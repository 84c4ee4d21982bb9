package scorecard

import (
	"sort"

	"scorenorm/domain/core"
)

// Field identifies one of the canonical output keys every supported
// input layout is mapped onto
type Field string

const (
	FieldMeasureGroup       Field = "measure_group"
	FieldStandardKPIs       Field = "standard_kpis"
	FieldMeasureDisplayName Field = "measure_display_name"
	FieldMetricName         Field = "metric_name"
	FieldDefinition         Field = "definition"
	FieldOrder              Field = "order"
	FieldSelection          Field = "selection"
	FieldTarget             Field = "target"
	FieldWeight             Field = "weight"
	FieldRetailer           Field = "retailer"
	FieldRetailerTarget     Field = "retailer_target"
	FieldRetailerWeight     Field = "retailer_weight"
)

// String returns the canonical field name
func (f Field) String() string {
	return string(f)
}

// Layout identifies which of the known input file shapes a grid follows.
// Decided once by schema inspection, then dispatched via switch.
type Layout string

const (
	// LayoutSelectionFlag carries a boolean include/exclude column;
	// only rows whose flag normalizes to true are kept
	LayoutSelectionFlag Layout = "selection_flag"

	// LayoutGrouping has no flag column; every row with a non-blank
	// grouping key is kept and carries an explicit order field
	LayoutGrouping Layout = "grouping"

	// LayoutPlain is the fixed positional fallback for files whose
	// headers are missing or corrupted
	LayoutPlain Layout = "plain"
)

// String returns the layout name
func (l Layout) String() string {
	return string(l)
}

// IsValid checks whether the layout is one of the known shapes
func (l Layout) IsValid() bool {
	switch l {
	case LayoutSelectionFlag, LayoutGrouping, LayoutPlain:
		return true
	}
	return false
}

// Grid is the raw cell matrix read from one tabular file. Source of
// truth is the input file; the grid is never mutated after load.
type Grid struct {
	Source core.SourceID `json:"source"`
	Path   string        `json:"path"`
	Sheet  string        `json:"sheet,omitempty"`
	Rows   [][]string    `json:"rows"`
}

// RowCount returns the number of rows in the grid
func (g *Grid) RowCount() int {
	return len(g.Rows)
}

// Row returns the row at index i, or nil if out of range
func (g *Grid) Row(i int) []string {
	if i < 0 || i >= len(g.Rows) {
		return nil
	}
	return g.Rows[i]
}

// Prefix returns the first n rows, or all rows if the grid is shorter
func (g *Grid) Prefix(n int) [][]string {
	if n > len(g.Rows) {
		n = len(g.Rows)
	}
	return g.Rows[:n]
}

// Fingerprint hashes the grid contents for change detection
func (g *Grid) Fingerprint() core.GridHash {
	return core.ComputeGridHash(g.Rows)
}

// HeaderCandidate scores one row as a potential header during
// detection. Discarded after selection.
type HeaderCandidate struct {
	RowIndex int `json:"row_index"`
	Score    int `json:"score"`
}

// ColumnMap maps canonical fields to column positions in the grid.
// Fields with no match are simply absent, never an error.
type ColumnMap map[Field]int

// Has reports whether the field was located in the header
func (m ColumnMap) Has(f Field) bool {
	_, ok := m[f]
	return ok
}

// Col returns the column index for a field
func (m ColumnMap) Col(f Field) (int, bool) {
	idx, ok := m[f]
	return idx, ok
}

// Fields returns the mapped fields in deterministic sorted order
func (m ColumnMap) Fields() []Field {
	fields := make([]Field, 0, len(m))
	for f := range m {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })
	return fields
}

// Schema is the outcome of header detection plus column mapping:
// everything the projector needs to turn data rows into records.
type Schema struct {
	HeaderRow int       `json:"header_row"`
	Layout    Layout    `json:"layout"`
	Columns   ColumnMap `json:"columns"`
	Labels    []string  `json:"labels"` // raw header cells as found, for diagnostics
}

// DataStart returns the index of the first data row
func (s Schema) DataStart() int {
	return s.HeaderRow + 1
}
