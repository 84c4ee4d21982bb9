package ports

import (
	"context"

	"scorenorm/domain/scorecard"
)

// OverrideSourcePort loads per-metric override values applied before
// the default-fill pass
type OverrideSourcePort interface {
	Load(ctx context.Context, path string) (*scorecard.OverrideTable, error)
}
