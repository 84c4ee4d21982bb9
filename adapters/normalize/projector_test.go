package normalize

import (
	"testing"

	"scorenorm/domain/core"
	"scorenorm/domain/scorecard"
)

func resolveOrFail(t *testing.T, grid *scorecard.Grid) scorecard.Schema {
	t.Helper()

	schema, err := NewSchemaResolver(DefaultDetectorConfig()).Resolve(grid)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	return schema
}

// TestProjectEndToEndScenario tests the full pipeline on a five-row
// grid with the header in the second row: exactly one record survives
func TestProjectEndToEndScenario(t *testing.T) {
	grid := gridOf(
		[]string{"Scorecard export", "", "", ""},
		[]string{"Measure Group", "Standard KPIs", "Measure Display Name", "Definition"},
		[]string{"Availability", "kpi_1", "In Stock %", "defn text"},
		[]string{},
		[]string{"", "", "", ""},
	)

	schema := resolveOrFail(t, grid)
	records, stats := NewProjector(nil).Project(grid, schema)

	if len(records) != 1 {
		t.Fatalf("Expected exactly one record, got %d", len(records))
	}

	r := records[0]
	if r.MeasureGroup != "Availability" {
		t.Errorf("Expected measure_group Availability, got %q", r.MeasureGroup)
	}
	if r.StandardKPIs != "kpi_1" {
		t.Errorf("Expected standard_kpis kpi_1, got %q", r.StandardKPIs)
	}
	if r.MeasureDisplayName != "In Stock %" {
		t.Errorf("Expected measure_display_name In Stock %%, got %q", r.MeasureDisplayName)
	}
	if r.Definition != "defn text" {
		t.Errorf("Expected definition text, got %q", r.Definition)
	}
	if stats.RowsSkipped != 2 {
		t.Errorf("Expected 2 skipped rows, got %d", stats.RowsSkipped)
	}

	// No weight or target columns exist, so none may be invented
	if r.Target != nil || r.Weight != nil {
		t.Errorf("Expected no target/weight on a grid without those columns, got %v/%v", r.Target, r.Weight)
	}
}

// TestProjectSelectionFlagFiltering tests flag normalization: trimmed
// case-insensitive true includes, everything else excludes
func TestProjectSelectionFlagFiltering(t *testing.T) {
	grid := gridOf(
		[]string{"Scorecard Measure Selection", "Measure Group", "Standard KPIs", "Measure Display Name", "Definition"},
		[]string{"true", "Availability", "kpi_1", "In Stock %", "a"},
		[]string{"False", "Availability", "kpi_2", "On Shelf %", "b"},
		[]string{"", "Availability", "kpi_3", "Fill Rate", "c"},
		[]string{"true ", "Promotions", "kpi_4", "Promo Lift", "d"},
		[]string{"TRUE", "Promotions", "kpi_5", "Display Share", "e"},
		[]string{"selected", "Promotions", "kpi_6", "Feature Share", "f"},
	)

	schema := resolveOrFail(t, grid)
	if schema.Layout != scorecard.LayoutSelectionFlag {
		t.Fatalf("Expected selection_flag layout, got %s", schema.Layout)
	}

	records, stats := NewProjector(nil).Project(grid, schema)

	if len(records) != 3 {
		t.Fatalf("Expected 3 selected records, got %d", len(records))
	}
	expected := []string{"In Stock %", "Promo Lift", "Display Share"}
	for i, want := range expected {
		if records[i].MeasureDisplayName != want {
			t.Errorf("Expected record %d to be %q, got %q", i, want, records[i].MeasureDisplayName)
		}
	}
	if stats.RowsFiltered != 3 {
		t.Errorf("Expected 3 filtered rows, got %d", stats.RowsFiltered)
	}
	if stats.RowsSkipped != 0 {
		t.Errorf("Expected no skipped rows, got %d", stats.RowsSkipped)
	}
}

// TestProjectSelectionDisplayNameFallback tests falling back to the
// internal name when the display cell is blank
func TestProjectSelectionDisplayNameFallback(t *testing.T) {
	grid := gridOf(
		[]string{"Scorecard Measure Selection", "Measure Group", "Metric Name", "Measure Display Name", "Definition"},
		[]string{"true", "Availability", "in_stock_pct", "", "defn"},
		[]string{"true", "Availability", "fill_rate", "Fill Rate %", "defn"},
	)

	schema := resolveOrFail(t, grid)
	records, _ := NewProjector(nil).Project(grid, schema)

	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[0].MeasureDisplayName != "in_stock_pct" {
		t.Errorf("Expected fallback to internal name, got %q", records[0].MeasureDisplayName)
	}
	if records[1].MeasureDisplayName != "Fill Rate %" {
		t.Errorf("Expected display name to win when present, got %q", records[1].MeasureDisplayName)
	}
}

// TestProjectGroupingOrderDefaults tests the order rule: explicit
// numeric order wins, anything else defaults to 1-based row position
func TestProjectGroupingOrderDefaults(t *testing.T) {
	grid := gridOf(
		[]string{"Grouping Name", "Metric Name", "Order"},
		[]string{"Availability", "In Stock %", "7"},
		[]string{"Availability", "On Shelf %", "oops"},
		[]string{"Promotions", "Promo Lift", ""},
	)

	schema := resolveOrFail(t, grid)
	records, _ := NewProjector(nil).Project(grid, schema)

	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(records))
	}

	tests := []struct {
		idx      int
		expected int
	}{
		{0, 7}, // explicit
		{1, 2}, // unparseable, falls back to position
		{2, 3}, // absent, falls back to position
	}
	for _, test := range tests {
		if records[test.idx].Order == nil {
			t.Errorf("Expected record %d to carry an order", test.idx)
			continue
		}
		if *records[test.idx].Order != test.expected {
			t.Errorf("Expected record %d order %d, got %d", test.idx, test.expected, *records[test.idx].Order)
		}
	}
}

// TestProjectGroupingSkipsBlankKeys tests the grouping key invariant
func TestProjectGroupingSkipsBlankKeys(t *testing.T) {
	grid := gridOf(
		[]string{"Grouping Name", "Metric Name", "Order"},
		[]string{"Availability", "In Stock %", "1"},
		[]string{"   ", "Orphan", "2"},
		[]string{"", "", ""},
		[]string{"Promotions", "Promo Lift", ""},
	)

	schema := resolveOrFail(t, grid)
	records, stats := NewProjector(nil).Project(grid, schema)

	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if stats.RowsSkipped != 2 {
		t.Errorf("Expected 2 skipped rows, got %d", stats.RowsSkipped)
	}
	// Positional order still counts skipped rows as occupied positions
	if *records[1].Order != 4 {
		t.Errorf("Expected positional order 4, got %d", *records[1].Order)
	}
}

// TestProjectPercentAndDecimalTargets tests the asymmetric numeric
// rule through full projection
func TestProjectPercentAndDecimalTargets(t *testing.T) {
	grid := gridOf(
		[]string{"Grouping Name", "Metric Name", "Target", "Weight"},
		[]string{"Availability", "In Stock %", "85%", "0.5"},
		[]string{"Availability", "On Shelf %", "0.5", "2"},
	)

	schema := resolveOrFail(t, grid)
	records, stats := NewProjector(nil).Project(grid, schema)

	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if *records[0].Target != 85 {
		t.Errorf("Expected \"85%%\" to project as 85, got %v", *records[0].Target)
	}
	if *records[0].Weight != 0.5 {
		t.Errorf("Expected decimal weight 0.5 unchanged, got %v", *records[0].Weight)
	}
	if *records[1].Target != 0.5 {
		t.Errorf("Expected decimal target 0.5 unchanged, got %v", *records[1].Target)
	}
	if len(stats.CellErrors) != 0 {
		t.Errorf("Expected no cell errors, got %v", stats.CellErrors)
	}
}

// TestProjectDefaultFillBoundary tests the two-pass rule: overrides
// first, then defaults for blanks only, and an explicit zero survives
func TestProjectDefaultFillBoundary(t *testing.T) {
	grid := gridOf(
		[]string{"Grouping Name", "Metric Name", "Target", "Weight"},
		[]string{"Availability", "In Stock %", "", ""},
		[]string{"Availability", "On Shelf %", "", ""},
	)

	overrides := scorecard.NewOverrideTable()
	zero := 0.0
	overrides.Put(scorecard.Override{Metric: "In Stock %", Target: &zero, Weight: &zero})

	schema := resolveOrFail(t, grid)
	records, _ := NewProjector(overrides).Project(grid, schema)

	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}

	// Overridden metric: explicit zeros survive the default fill
	if *records[0].Target != 0 || *records[0].Weight != 0 {
		t.Errorf("Expected zero override to survive, got target %v weight %v",
			*records[0].Target, *records[0].Weight)
	}

	// Untouched metric: blanks fill with the business defaults
	if *records[1].Weight != scorecard.DefaultWeight {
		t.Errorf("Expected blank weight to default to %v, got %v", scorecard.DefaultWeight, *records[1].Weight)
	}
	if *records[1].Target != scorecard.DefaultTarget {
		t.Errorf("Expected blank target to default to %v, got %v", scorecard.DefaultTarget, *records[1].Target)
	}
}

// TestProjectRetailerOverridePrecedence tests exact-retailer override
// beating the wildcard
func TestProjectRetailerOverridePrecedence(t *testing.T) {
	grid := gridOf(
		[]string{"Grouping Name", "Metric Name", "Retailer", "Target"},
		[]string{"Availability", "In Stock %", "Walmart", ""},
		[]string{"Availability", "In Stock %", "Kroger", ""},
	)

	overrides := scorecard.NewOverrideTable()
	ninety, eighty := 90.0, 80.0
	overrides.Put(scorecard.Override{Metric: "In Stock %", Retailer: "Walmart", Target: &ninety})
	overrides.Put(scorecard.Override{Metric: "In Stock %", Retailer: scorecard.AllRetailers, Target: &eighty})

	schema := resolveOrFail(t, grid)
	records, _ := NewProjector(overrides).Project(grid, schema)

	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if *records[0].Target != 90 {
		t.Errorf("Expected Walmart-specific target 90, got %v", *records[0].Target)
	}
	if *records[1].Target != 80 {
		t.Errorf("Expected wildcard target 80, got %v", *records[1].Target)
	}
}

// TestProjectCellErrorRecovered tests that an unparseable numeric cell
// is recorded, treated as missing, and never aborts the row
func TestProjectCellErrorRecovered(t *testing.T) {
	grid := gridOf(
		[]string{"Grouping Name", "Metric Name", "Target", "Weight"},
		[]string{"Availability", "In Stock %", "n/a", "2"},
	)

	schema := resolveOrFail(t, grid)
	records, stats := NewProjector(nil).Project(grid, schema)

	if len(records) != 1 {
		t.Fatalf("Expected the row to survive its bad cell, got %d records", len(records))
	}
	if len(stats.CellErrors) != 1 {
		t.Fatalf("Expected 1 cell error, got %d", len(stats.CellErrors))
	}
	if stats.CellErrors[0].Field != scorecard.FieldTarget {
		t.Errorf("Expected the target cell to be flagged, got %s", stats.CellErrors[0].Field)
	}
	// Unparseable target falls back to missing, then the default
	if *records[0].Target != scorecard.DefaultTarget {
		t.Errorf("Expected defaulted target %v, got %v", scorecard.DefaultTarget, *records[0].Target)
	}
	if *records[0].Weight != 2 {
		t.Errorf("Expected weight 2, got %v", *records[0].Weight)
	}
}

// TestProjectRetailerColumnsPreferred tests the retailer-specific
// numeric columns beating the generic ones per row
func TestProjectRetailerColumnsPreferred(t *testing.T) {
	grid := gridOf(
		[]string{"Grouping Name", "Metric Name", "Target", "Retailer Target"},
		[]string{"Availability", "In Stock %", "50", "90"},
		[]string{"Availability", "On Shelf %", "50", ""},
	)

	schema := resolveOrFail(t, grid)
	records, _ := NewProjector(nil).Project(grid, schema)

	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if *records[0].Target != 90 {
		t.Errorf("Expected retailer-specific target 90, got %v", *records[0].Target)
	}
	if *records[1].Target != 50 {
		t.Errorf("Expected generic target 50 when the specific cell is blank, got %v", *records[1].Target)
	}
}

// TestProjectPlainLayout tests fixed positional reads
func TestProjectPlainLayout(t *testing.T) {
	grid := gridOf(
		[]string{"", "", "", ""},
		[]string{"Availability", "kpi_1", "In Stock %", "defn text"},
		[]string{"", "kpi_2", "Orphan", "defn"},
	)

	schema := resolveOrFail(t, grid)
	if schema.Layout != scorecard.LayoutPlain {
		t.Fatalf("Expected plain layout, got %s", schema.Layout)
	}

	records, stats := NewProjector(nil).Project(grid, schema)

	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if records[0].MeasureGroup != "Availability" || records[0].StandardKPIs != "kpi_1" {
		t.Errorf("Expected positional projection, got %+v", records[0])
	}
	if stats.RowsSkipped != 1 {
		t.Errorf("Expected blank-key row to be skipped, got %d", stats.RowsSkipped)
	}
}

// TestProjectPlainLayoutShifted tests the one-column shift when the
// first header cell is an artifact
func TestProjectPlainLayoutShifted(t *testing.T) {
	grid := gridOf(
		[]string{"#REF!", "Unnamed: 1", "Unnamed: 2", "Unnamed: 3", "Unnamed: 4"},
		[]string{"0", "Availability", "kpi_1", "In Stock %", "defn text"},
		[]string{"1", "Promotions", "kpi_2", "Promo Lift", "defn"},
	)

	schema := resolveOrFail(t, grid)
	if schema.Layout != scorecard.LayoutPlain {
		t.Fatalf("Expected plain layout, got %s", schema.Layout)
	}

	records, _ := NewProjector(nil).Project(grid, schema)

	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[0].MeasureGroup != "Availability" {
		t.Errorf("Expected shifted read to land on Availability, got %q", records[0].MeasureGroup)
	}
	if records[1].MeasureDisplayName != "Promo Lift" {
		t.Errorf("Expected shifted display name Promo Lift, got %q", records[1].MeasureDisplayName)
	}
}

// TestProjectIdempotence tests that projecting the same grid twice
// yields identical output
func TestProjectIdempotence(t *testing.T) {
	grid := gridOf(
		[]string{"Grouping Name", "Metric Name", "Target", "Weight"},
		[]string{"Availability", "In Stock %", "85%", ""},
		[]string{"Promotions", "Promo Lift", "", "3"},
	)

	schema := resolveOrFail(t, grid)
	projector := NewProjector(nil)

	first, _ := projector.Project(grid, schema)
	second, _ := projector.Project(grid, schema)

	a := core.ComputeRecordSetHash(scorecard.Fingerprintable(first))
	b := core.ComputeRecordSetHash(scorecard.Fingerprintable(second))
	if a != b {
		t.Errorf("Expected identical fingerprints across runs, got %s vs %s", a, b)
	}
}
