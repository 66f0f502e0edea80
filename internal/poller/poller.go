// Package poller drives the detection engine on a fixed interval and fans
// each cycle result out to the configured sinks.
package poller

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alphanest/arbscan/internal/domain"
)

const (
	// DefaultInterval is the cadence between detection cycles.
	DefaultInterval = 10 * time.Second

	// topLogged is how many of each cycle's best opportunities are logged.
	topLogged = 5
)

// Sink receives completed cycle results. Sinks must tolerate empty
// opportunity lists; a cycle with nothing found is still a cycle.
type Sink interface {
	// Name identifies the sink in logs.
	Name() string
	// HandleCycle processes one cycle result.
	HandleCycle(ctx context.Context, res domain.CycleResult) error
}

// Detector is the slice of the engine the poller depends on.
type Detector interface {
	Detect(ctx context.Context) domain.CycleResult
}

// Purger is implemented by caches that can evict expired entries.
type Purger interface {
	Purge(now time.Time) int
}

// Poller runs detection cycles on a timer. It never stops on a cycle error:
// sink failures and degraded cycles are logged and the loop continues until
// the context is cancelled.
type Poller struct {
	detector Detector
	sinks    []Sink
	purger   Purger
	interval time.Duration
	logger   *slog.Logger

	mu     sync.RWMutex
	latest *domain.CycleResult
}

// New creates a Poller. interval <= 0 selects DefaultInterval; purger may be
// nil when no cache eviction is needed.
func New(detector Detector, sinks []Sink, purger Purger, interval time.Duration, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		detector: detector,
		sinks:    sinks,
		purger:   purger,
		interval: interval,
		logger:   logger.With(slog.String("component", "poller")),
	}
}

// Latest returns the most recent cycle result, or false before the first
// cycle completes.
func (p *Poller) Latest() (domain.CycleResult, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.latest == nil {
		return domain.CycleResult{}, false
	}
	return *p.latest, true
}

// Run executes cycles until ctx is cancelled. The first cycle runs
// immediately rather than waiting a full interval.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("poller started", slog.Duration("interval", p.interval))

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.runCycle(ctx)
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("poller stopped")
			return ctx.Err()
		case <-ticker.C:
			p.runCycle(ctx)
		}
	}
}

func (p *Poller) runCycle(ctx context.Context) {
	res := p.detector.Detect(ctx)

	p.mu.Lock()
	p.latest = &res
	p.mu.Unlock()

	p.logger.Info("cycle complete",
		slog.String("cycle_id", res.ID),
		slog.Int("opportunities", len(res.Opportunities)),
		slog.Duration("duration", res.Duration),
		slog.Any("venues_failed", res.VenuesFailed),
	)
	for i, opp := range res.Opportunities {
		if i >= topLogged {
			break
		}
		p.logger.Info(fmt.Sprintf("%s: Buy %s @ $%.4f, Sell %s @ $%.4f, Net: %.2f%%",
			opp.Symbol, opp.BuyExchange, opp.BuyPrice, opp.SellExchange, opp.SellPrice, opp.NetProfitPct))
	}

	for _, sink := range p.sinks {
		if err := sink.HandleCycle(ctx, res); err != nil {
			p.logger.Error("sink failed",
				slog.String("sink", sink.Name()),
				slog.String("cycle_id", res.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	if p.purger != nil {
		if evicted := p.purger.Purge(time.Now()); evicted > 0 {
			p.logger.Debug("cache purged", slog.Int("evicted", evicted))
		}
	}
}
