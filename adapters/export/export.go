package export

import (
	"fmt"
	"strconv"

	"scorenorm/domain/scorecard"
	"scorenorm/ports"
)

// CanonicalFieldOrder is the column order every sink emits. Keeping
// it fixed means the same result renders identically regardless of
// destination format.
var CanonicalFieldOrder = []scorecard.Field{
	scorecard.FieldMeasureGroup,
	scorecard.FieldStandardKPIs,
	scorecard.FieldMeasureDisplayName,
	scorecard.FieldDefinition,
	scorecard.FieldOrder,
	scorecard.FieldTarget,
	scorecard.FieldWeight,
	scorecard.FieldRetailer,
}

// ForFormat returns the sink for a format name
func ForFormat(format string) (ports.RecordSinkPort, error) {
	switch format {
	case "csv":
		return NewCSVSink(), nil
	case "json":
		return NewJSONSink(), nil
	case "xlsx":
		return NewXLSXSink(), nil
	}
	return nil, fmt.Errorf("unsupported export format %q", format)
}

// headerRow renders the canonical field names as column headers
func headerRow() []string {
	header := make([]string, len(CanonicalFieldOrder))
	for i, field := range CanonicalFieldOrder {
		header[i] = string(field)
	}
	return header
}

// recordCells renders one record as text cells in canonical order.
// Unset optional fields render as empty cells.
func recordCells(r scorecard.Record) []string {
	cells := make([]string, 0, len(CanonicalFieldOrder))
	cells = append(cells,
		r.MeasureGroup,
		r.StandardKPIs,
		r.MeasureDisplayName,
		r.Definition,
	)

	if r.Order != nil {
		cells = append(cells, strconv.Itoa(*r.Order))
	} else {
		cells = append(cells, "")
	}
	if r.Target != nil {
		cells = append(cells, strconv.FormatFloat(*r.Target, 'f', -1, 64))
	} else {
		cells = append(cells, "")
	}
	if r.Weight != nil {
		cells = append(cells, strconv.FormatFloat(*r.Weight, 'f', -1, 64))
	} else {
		cells = append(cells, "")
	}
	cells = append(cells, r.Retailer)

	return cells
}

// recordValues renders one record as typed cells for workbook sinks,
// so numbers land as numbers rather than text
func recordValues(r scorecard.Record) []interface{} {
	values := make([]interface{}, 0, len(CanonicalFieldOrder))
	values = append(values,
		r.MeasureGroup,
		r.StandardKPIs,
		r.MeasureDisplayName,
		r.Definition,
	)

	if r.Order != nil {
		values = append(values, *r.Order)
	} else {
		values = append(values, nil)
	}
	if r.Target != nil {
		values = append(values, *r.Target)
	} else {
		values = append(values, nil)
	}
	if r.Weight != nil {
		values = append(values, *r.Weight)
	} else {
		values = append(values, nil)
	}
	values = append(values, r.Retailer)

	return values
}
