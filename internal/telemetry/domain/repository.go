package telemetry

import "context"

// ReadingRepository stores readings append-only.
type ReadingRepository interface {
	Append(ctx context.Context, reading Reading) (Reading, error)
	QueryByRange(ctx context.Context, variant Variant, filter Filter) ([]Reading, error)
	LatestFor(ctx context.Context, variant Variant, key Key) (Reading, bool, error)
}
