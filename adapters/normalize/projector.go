package normalize

import (
	"log"
	"strings"

	"scorenorm/domain/scorecard"
)

// ProjectionStats counts what happened to the rows that did not
// become records
type ProjectionStats struct {
	RowsSkipped  int                   `json:"rows_skipped"`  // blank grouping key
	RowsFiltered int                   `json:"rows_filtered"` // selection flag not true
	CellErrors   []scorecard.CellError `json:"cell_errors,omitempty"`
}

// Projector turns data rows into normalized records using a resolved
// schema. Pure per-row work: the only shared state is the schema and
// the override table, both read-only here.
type Projector struct {
	coercer   *CellCoercer
	overrides *scorecard.OverrideTable
}

// NewProjector creates a projector. A nil override table means no
// overrides.
func NewProjector(overrides *scorecard.OverrideTable) *Projector {
	if overrides == nil {
		overrides = scorecard.NewOverrideTable()
	}
	return &Projector{
		coercer:   NewCellCoercer(),
		overrides: overrides,
	}
}

// Project emits records for every data row the layout keeps. Malformed
// rows are counted and dropped, never fatal.
func (p *Projector) Project(grid *scorecard.Grid, schema scorecard.Schema) ([]scorecard.Record, ProjectionStats) {
	records := make([]scorecard.Record, 0, grid.RowCount())
	stats := ProjectionStats{}

	plainShift := 0
	if schema.Layout == scorecard.LayoutPlain {
		plainShift = PlainShift(grid.Row(schema.HeaderRow))
	}

	for rowIdx := schema.DataStart(); rowIdx < grid.RowCount(); rowIdx++ {
		row := grid.Row(rowIdx)
		position := rowIdx - schema.HeaderRow // 1-based among data rows

		var record scorecard.Record
		var keep bool
		switch schema.Layout {
		case scorecard.LayoutSelectionFlag:
			record, keep = p.projectSelectionRow(row, rowIdx, schema, &stats)
		case scorecard.LayoutGrouping:
			record, keep = p.projectGroupingRow(row, rowIdx, position, schema, &stats)
		case scorecard.LayoutPlain:
			record, keep = p.projectPlainRow(row, plainShift, &stats)
		default:
			keep = false
		}
		if !keep {
			continue
		}

		p.applyOverrides(&record, schema)
		records = append(records, record)
	}

	log.Printf("[Projector] %s layout: %d records, %d skipped, %d filtered, %d cell errors",
		schema.Layout, len(records), stats.RowsSkipped, stats.RowsFiltered, len(stats.CellErrors))
	return records, stats
}

// projectSelectionRow keeps only rows whose flag cell normalizes to
// true, then reads the canonical fields by mapped column.
func (p *Projector) projectSelectionRow(row []string, rowIdx int, schema scorecard.Schema, stats *ProjectionStats) (scorecard.Record, bool) {
	flagCol, _ := schema.Columns.Col(scorecard.FieldSelection)
	if !p.coercer.IsTrueFlag(cellAt(row, flagCol)) {
		stats.RowsFiltered++
		return scorecard.Record{}, false
	}

	record := p.readNamedFields(row, rowIdx, schema, stats)
	if !record.HasGroupingKey() {
		stats.RowsSkipped++
		return scorecard.Record{}, false
	}

	if orderCol, ok := schema.Columns.Col(scorecard.FieldOrder); ok {
		if n, parsed := p.coercer.CoerceOrder(cellAt(row, orderCol)); parsed {
			record.Order = &n
		}
	}

	return record, true
}

// projectGroupingRow keeps every row with a grouping key and always
// carries an order, defaulting to the 1-based row position when the
// order cell is absent or unparseable.
func (p *Projector) projectGroupingRow(row []string, rowIdx, position int, schema scorecard.Schema, stats *ProjectionStats) (scorecard.Record, bool) {
	record := p.readNamedFields(row, rowIdx, schema, stats)
	if !record.HasGroupingKey() {
		stats.RowsSkipped++
		return scorecard.Record{}, false
	}

	order := position
	if orderCol, ok := schema.Columns.Col(scorecard.FieldOrder); ok {
		if n, parsed := p.coercer.CoerceOrder(cellAt(row, orderCol)); parsed {
			order = n
		}
	}
	record.Order = &order

	return record, true
}

// projectPlainRow reads the fixed four-column shape, shifted right by
// one when the first header cell is an artifact.
func (p *Projector) projectPlainRow(row []string, shift int, stats *ProjectionStats) (scorecard.Record, bool) {
	record := scorecard.Record{
		MeasureGroup:       strings.TrimSpace(cellAt(row, shift)),
		StandardKPIs:       strings.TrimSpace(cellAt(row, shift+1)),
		MeasureDisplayName: strings.TrimSpace(cellAt(row, shift+2)),
		Definition:         strings.TrimSpace(cellAt(row, shift+3)),
	}
	if !record.HasGroupingKey() {
		stats.RowsSkipped++
		return scorecard.Record{}, false
	}
	return record, true
}

// readNamedFields projects the string and numeric fields present in
// the column map. The display name falls back to the internal metric
// name when blank.
func (p *Projector) readNamedFields(row []string, rowIdx int, schema scorecard.Schema, stats *ProjectionStats) scorecard.Record {
	record := scorecard.Record{}

	if col, ok := schema.Columns.Col(scorecard.FieldMeasureGroup); ok {
		record.MeasureGroup = strings.TrimSpace(cellAt(row, col))
	}
	if col, ok := schema.Columns.Col(scorecard.FieldStandardKPIs); ok {
		record.StandardKPIs = strings.TrimSpace(cellAt(row, col))
	}
	if col, ok := schema.Columns.Col(scorecard.FieldMeasureDisplayName); ok {
		record.MeasureDisplayName = strings.TrimSpace(cellAt(row, col))
	}
	if record.MeasureDisplayName == "" {
		if col, ok := schema.Columns.Col(scorecard.FieldMetricName); ok {
			record.MeasureDisplayName = strings.TrimSpace(cellAt(row, col))
		}
	}
	if col, ok := schema.Columns.Col(scorecard.FieldDefinition); ok {
		record.Definition = strings.TrimSpace(cellAt(row, col))
	}
	if col, ok := schema.Columns.Col(scorecard.FieldRetailer); ok {
		record.Retailer = strings.TrimSpace(cellAt(row, col))
	}

	record.Target = p.readNumeric(row, rowIdx, schema, scorecard.FieldTarget, scorecard.FieldRetailerTarget, stats)
	record.Weight = p.readNumeric(row, rowIdx, schema, scorecard.FieldWeight, scorecard.FieldRetailerWeight, stats)

	return record
}

// readNumeric reads a numeric field, preferring the retailer-specific
// column over the generic one when both are mapped. A cell that fails
// to parse is recorded and treated as missing so the default-fill rule
// applies.
func (p *Projector) readNumeric(row []string, rowIdx int, schema scorecard.Schema, generic, specific scorecard.Field, stats *ProjectionStats) *float64 {
	for _, field := range []scorecard.Field{specific, generic} {
		col, ok := schema.Columns.Col(field)
		if !ok {
			continue
		}
		raw := cellAt(row, col)
		if strings.TrimSpace(raw) == "" {
			continue
		}
		value, parsed := p.coercer.CoerceNumber(raw)
		if !parsed {
			stats.CellErrors = append(stats.CellErrors, scorecard.CellError{
				RowIndex: rowIdx,
				Field:    field,
				Value:    raw,
				Message:  "not a number",
			})
			continue
		}
		v := value.AsFloat64()
		return &v
	}
	return nil
}

// applyOverrides is the two-pass finish: specific override values
// first, then defaults for whatever is still blank. Defaults only
// apply to fields the schema actually carries, so files without
// weight or target columns do not grow them.
func (p *Projector) applyOverrides(record *scorecard.Record, schema scorecard.Schema) {
	if o, ok := p.overrides.Resolve(record.MeasureDisplayName, record.Retailer); ok {
		if o.Target != nil {
			record.Target = o.Target
		}
		if o.Weight != nil {
			record.Weight = o.Weight
		}
	}

	if schema.Columns.Has(scorecard.FieldWeight) || schema.Columns.Has(scorecard.FieldRetailerWeight) {
		record.FillDefaultWeight()
	}
	if schema.Columns.Has(scorecard.FieldTarget) || schema.Columns.Has(scorecard.FieldRetailerTarget) {
		record.FillDefaultTarget()
	}
}

// PlainShift returns 1 when the first header cell is an artifact and
// positional reads must move right by one column
func PlainShift(header []string) int {
	if len(header) == 0 {
		return 0
	}
	if isHeaderArtifact(NormalizeLabel(header[0])) {
		return 1
	}
	return 0
}

// cellAt returns the cell at col, or "" when the row is too short
func cellAt(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}
