package app

import (
	"context"
	"encoding/json"
	"fmt"

	s3blob "github.com/alphanest/arbscan/internal/blob/s3"
	"github.com/alphanest/arbscan/internal/domain"
	"github.com/alphanest/arbscan/internal/notify"
	"github.com/alphanest/arbscan/internal/poller"
	"github.com/alphanest/arbscan/internal/server/ws"
)

// storeSink adapts domain.OpportunityStore to the poller sink interface.
type storeSink struct {
	store domain.OpportunityStore
}

func (s storeSink) Name() string { return "postgres" }

func (s storeSink) HandleCycle(ctx context.Context, res domain.CycleResult) error {
	return s.store.InsertCycle(ctx, res)
}

// cacheSink publishes each cycle result to the shared result cache so API
// replicas without a local engine can still serve the latest view.
type cacheSink struct {
	cache domain.ResultCache
}

func (s cacheSink) Name() string { return "result-cache" }

func (s cacheSink) HandleCycle(ctx context.Context, res domain.CycleResult) error {
	return s.cache.SetLatest(ctx, res)
}

// busSink broadcasts the cycle result as JSON on the opportunities channel
// consumed by the WebSocket hub.
type busSink struct {
	bus domain.SignalBus
}

func (s busSink) Name() string { return "signal-bus" }

func (s busSink) HandleCycle(ctx context.Context, res domain.CycleResult) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal cycle %s: %w", res.ID, err)
	}
	return s.bus.Publish(ctx, ws.OpportunitiesChannel, payload)
}

// buildSinks assembles the poller sink chain from whichever backends were
// wired. Sink order is delivery order within a cycle; metrics go first so a
// failing external backend cannot delay them.
func (a *App) buildSinks(deps *Dependencies) []poller.Sink {
	sinks := []poller.Sink{deps.Metrics}

	if deps.OpportunityStore != nil {
		sinks = append(sinks, storeSink{store: deps.OpportunityStore})
	}
	if deps.ResultCache != nil {
		sinks = append(sinks, cacheSink{cache: deps.ResultCache})
	}
	if deps.SignalBus != nil {
		sinks = append(sinks, busSink{bus: deps.SignalBus})
	}
	if deps.BlobWriter != nil {
		sinks = append(sinks, s3blob.NewArchiver(deps.BlobWriter))
	}
	if deps.Publisher != nil {
		sinks = append(sinks, deps.Publisher)
	}
	if deps.Notifier != nil && deps.Notifier.HasSenders() {
		sinks = append(sinks, notify.NewAlertSink(deps.Notifier, a.cfg.Notify.Cooldown.Duration))
	}

	return sinks
}
