package normalize

import (
	"log"
	"strings"

	"scorenorm/domain/core"
	"scorenorm/domain/scorecard"
)

// SchemaResolver runs header detection and column mapping, then
// decides the layout once. Everything downstream dispatches on the
// resulting tag instead of re-testing column presence.
type SchemaResolver struct {
	detector *HeaderDetector
	mapper   *ColumnMapper
}

// NewSchemaResolver creates a resolver with the given detection config
func NewSchemaResolver(config DetectorConfig) *SchemaResolver {
	return &SchemaResolver{
		detector: NewHeaderDetector(config),
		mapper:   NewColumnMapper(),
	}
}

// Resolve inspects the grid and produces its schema. A grid no layout
// can claim fails with the set of labels that were found, so a human
// can fix the source file instead of guessing.
func (r *SchemaResolver) Resolve(grid *scorecard.Grid) (scorecard.Schema, error) {
	candidate := r.detector.Detect(grid)
	header := grid.Row(candidate.RowIndex)
	columns := r.mapper.Map(header)

	layout, ok := selectLayout(columns, header)
	if !ok {
		return scorecard.Schema{}, core.NewSchemaNotFoundError(grid.Path, foundLabels(header))
	}

	log.Printf("[SchemaResolver] %s: header row %d, layout %s, %d columns mapped",
		grid.Path, candidate.RowIndex, layout, len(columns))

	return scorecard.Schema{
		HeaderRow: candidate.RowIndex,
		Layout:    layout,
		Columns:   columns,
		Labels:    foundLabels(header),
	}, nil
}

// selectLayout picks the layout tag from the mapped columns. A flag
// column alone claims the selection shape: rows without a grouping
// key still drop row by row, which beats failing the whole file; a
// grouping column without a flag is the grouping shape; corrupted or
// missing headers fall back to positional reads.
func selectLayout(columns scorecard.ColumnMap, header []string) (scorecard.Layout, bool) {
	if columns.Has(scorecard.FieldSelection) {
		return scorecard.LayoutSelectionFlag, true
	}
	if columns.Has(scorecard.FieldMeasureGroup) {
		return scorecard.LayoutGrouping, true
	}
	if headerLooksCorrupted(header) {
		return scorecard.LayoutPlain, true
	}
	return "", false
}

// headerLooksCorrupted reports positive artifact evidence: spreadsheet
// error placeholders, auto-generated column names, or an entirely
// blank header row. Mere absence of known columns is not corruption.
func headerLooksCorrupted(header []string) bool {
	allBlank := true
	for _, cell := range header {
		label := NormalizeLabel(cell)
		if label == "" {
			continue
		}
		allBlank = false
		if isHeaderArtifact(label) {
			return true
		}
	}
	return allBlank
}

// isHeaderArtifact recognizes placeholder labels left behind by broken
// formulas or frame exports
func isHeaderArtifact(label string) bool {
	if strings.Contains(label, "#ref") || strings.Contains(label, "#value") || strings.Contains(label, "#name") {
		return true
	}
	if strings.HasPrefix(label, "unnamed") {
		return true
	}
	if strings.HasPrefix(label, "column") {
		return true
	}
	return false
}

// foundLabels collects the non-empty header cells for diagnostics
func foundLabels(header []string) []string {
	labels := make([]string, 0, len(header))
	for _, cell := range header {
		trimmed := strings.TrimSpace(cell)
		if trimmed != "" {
			labels = append(labels, trimmed)
		}
	}
	return labels
}
