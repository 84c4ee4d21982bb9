package ports

import (
	"context"

	"scorenorm/domain/scorecard"
)

// GridSourcePort loads a raw cell grid from a tabular file. The file
// handle is held only for the duration of the read and released on
// every exit path.
type GridSourcePort interface {
	// Read loads the grid at path. The sheet name selects a workbook
	// sheet and is ignored for flat formats.
	Read(ctx context.Context, path string, sheet string) (*scorecard.Grid, error)

	// Supports reports whether this source handles the file format
	Supports(path string) bool
}
