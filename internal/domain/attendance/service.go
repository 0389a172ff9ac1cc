package attendance

import (
	"context"
)

// IngestService accepts raw clock events into the engine.
type IngestService interface {
	// Ingest validates, persists and applies one raw event, then publishes it to live subscribers.
	Ingest(ctx context.Context, req IngestRequest) (IngestResponse, error)
}
