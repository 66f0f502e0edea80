package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alphanest/arbscan/internal/domain"
	"github.com/alphanest/arbscan/internal/poller"
	"github.com/alphanest/arbscan/internal/server"
	"github.com/alphanest/arbscan/internal/server/handler"
	"github.com/alphanest/arbscan/internal/server/ws"
)

// pollerDetector serves HTTP reads from the poller's latest published cycle,
// falling back to an on-demand detection pass before the first cycle lands.
type pollerDetector struct {
	poller *poller.Poller
	deps   *Dependencies
}

func (d pollerDetector) FindOpportunities(ctx context.Context) []domain.Opportunity {
	if res, ok := d.poller.Latest(); ok {
		return res.Opportunities
	}
	return d.deps.Engine.FindOpportunities(ctx)
}

func (d pollerDetector) Statistics() domain.Statistics {
	return d.deps.Engine.Statistics()
}

// PollMode runs the background scan loop: detect, rank, and deliver each
// cycle to the configured sinks. No HTTP surface is exposed.
func (a *App) PollMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting poll mode")

	g, ctx := errgroup.WithContext(ctx)
	a.startPoller(ctx, g, deps)
	return g.Wait()
}

// ServeMode runs the HTTP and WebSocket API only. Detection happens on
// demand per request; no background scan loop is started.
func (a *App) ServeMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting serve mode")

	g, ctx := errgroup.WithContext(ctx)
	a.startHTTPServer(ctx, g, deps, deps.Engine)
	return g.Wait()
}

// FullMode runs the scan loop and the API server together. This is the
// default operating mode.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode")

	g, ctx := errgroup.WithContext(ctx)

	if !a.cfg.Poller.Enabled {
		a.logger.WarnContext(ctx, "poller.enabled is false, but full mode always runs the scan loop")
	}
	p := a.startPoller(ctx, g, deps)

	if a.cfg.Server.Enabled {
		a.startHTTPServer(ctx, g, deps, pollerDetector{poller: p, deps: deps})
	}

	return g.Wait()
}

// startPoller adds the scan loop goroutine to the given errgroup.
func (a *App) startPoller(ctx context.Context, g *errgroup.Group, deps *Dependencies) *poller.Poller {
	p := poller.New(
		deps.Engine,
		a.buildSinks(deps),
		deps.Tickers,
		a.cfg.Poller.Interval.Duration,
		a.logger,
	)
	g.Go(func() error {
		return p.Run(ctx)
	})
	return p
}

// startHTTPServer adds the API server (and, when a signal bus is wired, the
// WebSocket hub) to the given errgroup. The server is shut down gracefully
// when the context is cancelled.
func (a *App) startHTTPServer(ctx context.Context, g *errgroup.Group, deps *Dependencies, det handler.Detector) {
	arb := handler.NewArbitrageHandler(det, a.logger)
	if deps.OpportunityStore != nil {
		arb = arb.WithHistoryStore(deps.OpportunityStore)
	}

	var hub *ws.Hub
	if deps.SignalBus != nil {
		hub = ws.NewHub(deps.SignalBus, a.logger)
		g.Go(func() error {
			return hub.Run(ctx)
		})
	}

	srv := server.NewServer(server.Config{
		Port:            a.cfg.Server.Port,
		CORSOrigins:     a.cfg.Server.CORSOrigins,
		APIKey:          a.cfg.Server.APIKey,
		RateLimiter:     deps.RateLimiter,
		RateLimit:       a.cfg.Server.RateLimit,
		RateLimitWindow: a.cfg.Server.RateLimitWindow.Duration,
	}, server.Handlers{
		Health:    handler.NewHealthHandler(a.logger),
		Arbitrage: arb,
	}, hub, a.logger)

	g.Go(func() error {
		if err := srv.Start(); err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutCtx); err != nil {
			return err
		}
		return ctx.Err()
	})
}
