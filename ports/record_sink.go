package ports

import (
	"context"

	"scorenorm/domain/scorecard"
)

// RecordSinkPort renders a normalized result to a destination. Sinks
// must write records in their original order and emit columns in the
// canonical field order so identical results serialize identically.
type RecordSinkPort interface {
	Write(ctx context.Context, result *scorecard.NormalizeResult, path string) error

	// Format returns the sink's output format name
	Format() string
}
