package app

import (
	"context"
	"fmt"
	"time"

	"scorenorm/adapters/normalize"
	"scorenorm/domain/core"
	"scorenorm/domain/run"
	"scorenorm/domain/scorecard"
	"scorenorm/ports"
)

// NormalizerService runs the acquire, recognize, project pipeline for
// one scorecard file at a time
type NormalizerService struct {
	gridSource     ports.GridSourcePort
	overrideSource ports.OverrideSourcePort
	detector       *normalize.HeaderDetector
	resolver       *normalize.SchemaResolver
}

// NormalizeRequest defines one file normalization
type NormalizeRequest struct {
	Path          string
	Sheet         string // workbook sheet; empty selects the first
	OverridesPath string // optional sidecar CSV
}

// NewNormalizerService creates a normalizer service
func NewNormalizerService(gridSource ports.GridSourcePort, overrideSource ports.OverrideSourcePort, detection normalize.DetectorConfig) *NormalizerService {
	return &NormalizerService{
		gridSource:     gridSource,
		overrideSource: overrideSource,
		detector:       normalize.NewHeaderDetector(detection),
		resolver:       normalize.NewSchemaResolver(detection),
	}
}

// Normalize turns one tabular file into normalized records. The run
// context is returned even on failure so callers can see how far the
// run got.
func (s *NormalizerService) Normalize(ctx context.Context, req NormalizeRequest) (*scorecard.NormalizeResult, *run.Context, error) {
	rctx := run.NewContext(req.Path)
	start := time.Now()

	// Step 1: load the override sidecar when one is given
	overrides := scorecard.NewOverrideTable()
	if req.OverridesPath != "" {
		loaded, err := s.overrideSource.Load(ctx, req.OverridesPath)
		if err != nil {
			rctx.Fail(err)
			return nil, rctx, fmt.Errorf("override load failed: %w", err)
		}
		overrides = loaded
		rctx.LogStep("overrides", "%d entries from %s", overrides.Len(), req.OverridesPath)
	}

	// Step 2: acquire the raw grid
	grid, err := s.gridSource.Read(ctx, req.Path, req.Sheet)
	if err != nil {
		rctx.Fail(err)
		return nil, rctx, fmt.Errorf("grid acquisition failed: %w", err)
	}
	rctx.LogStep("acquire", "%d rows from %s", grid.RowCount(), grid.Path)

	// Step 3: resolve the schema once; everything downstream dispatches
	// on its layout tag
	schema, err := s.resolver.Resolve(grid)
	if err != nil {
		rctx.Fail(err)
		return nil, rctx, fmt.Errorf("schema resolution failed: %w", err)
	}
	rctx.LogStep("schema", "layout %s, header row %d, %d columns mapped",
		schema.Layout, schema.HeaderRow, len(schema.Columns))

	// Step 4: project data rows into records
	records, stats := normalize.NewProjector(overrides).Project(grid, schema)
	rctx.RowsSkipped = stats.RowsSkipped
	rctx.CellErrors = len(stats.CellErrors)
	for _, cellErr := range stats.CellErrors {
		rctx.RecordError(core.NewValueUnparseableError(string(cellErr.Field), cellErr.Value))
	}
	rctx.LogStep("project", "%d records, %d skipped, %d filtered, %d cell errors",
		len(records), stats.RowsSkipped, stats.RowsFiltered, len(stats.CellErrors))

	// Step 5: fingerprint the normalized output
	fingerprint := core.ComputeRecordSetHash(scorecard.Fingerprintable(records))

	result := &scorecard.NormalizeResult{
		Source:       grid.Source,
		Path:         grid.Path,
		Layout:       schema.Layout,
		HeaderRow:    schema.HeaderRow,
		Records:      records,
		RowsSkipped:  stats.RowsSkipped,
		RowsFiltered: stats.RowsFiltered,
		CellErrors:   stats.CellErrors,
		Fingerprint:  fingerprint,
		DurationMs:   time.Since(start).Milliseconds(),
	}

	rctx.Complete()
	return result, rctx, nil
}

// InspectReport shows how a file's schema was resolved, so a human can
// fix source files that fail recognition
type InspectReport struct {
	Path        string              `json:"path"`
	Sheet       string              `json:"sheet,omitempty"`
	RowCount    int                 `json:"row_count"`
	HeaderRow   int                 `json:"header_row"`
	HeaderScore int                 `json:"header_score"`
	Layout      scorecard.Layout    `json:"layout,omitempty"`
	Columns     scorecard.ColumnMap `json:"columns,omitempty"`
	Labels      []string            `json:"labels,omitempty"`
	Problem     string              `json:"problem,omitempty"`
}

// Inspect resolves a file's schema and reports what was found. A grid
// that yields no usable schema is a finding here, not a failure.
func (s *NormalizerService) Inspect(ctx context.Context, path, sheet string) (*InspectReport, error) {
	grid, err := s.gridSource.Read(ctx, path, sheet)
	if err != nil {
		return nil, fmt.Errorf("grid acquisition failed: %w", err)
	}

	report := &InspectReport{
		Path:     grid.Path,
		Sheet:    grid.Sheet,
		RowCount: grid.RowCount(),
	}

	candidate := s.detector.Detect(grid)
	report.HeaderRow = candidate.RowIndex
	report.HeaderScore = candidate.Score

	schema, err := s.resolver.Resolve(grid)
	if err != nil {
		if core.IsSchemaNotFound(err) {
			report.Problem = err.Error()
			return report, nil
		}
		return nil, err
	}

	report.Layout = schema.Layout
	report.Columns = schema.Columns
	report.Labels = schema.Labels
	return report, nil
}
