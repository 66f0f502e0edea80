package domain

import (
	"context"
	"io"
	"time"
)

// OpportunityStore persists the opportunities emitted by detection cycles.
// The engine itself never persists anything; storage is a poller sink.
type OpportunityStore interface {
	// InsertCycle stores all opportunities of one cycle.
	InsertCycle(ctx context.Context, result CycleResult) error
	// ListRecent returns the most recently detected opportunities, newest first.
	ListRecent(ctx context.Context, limit int) ([]Opportunity, error)
}

// ResultCache holds the latest published result set for cheap read access.
// The poller is the only writer; readers get a point-in-time copy.
type ResultCache interface {
	SetLatest(ctx context.Context, result CycleResult) error
	GetLatest(ctx context.Context) (CycleResult, error)
}

// SignalBus carries cycle results to live consumers (WebSocket hub, external
// subscribers) as serialized JSON payloads.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}

// BlobWriter uploads serialized payloads to object storage.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
}

// RateLimiter enforces request-rate limits for a keyed caller.
type RateLimiter interface {
	// Allow reports whether one more request for key fits inside the window,
	// counting the request when it does.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
