// Package engine implements the opportunity detection core: it maintains a
// bounded-staleness price view per symbol and exchange, computes fee-adjusted
// spreads between exchange pairs, and emits ranked arbitrage opportunities.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/alphanest/arbscan/internal/cache"
	"github.com/alphanest/arbscan/internal/domain"
	"github.com/alphanest/arbscan/internal/exchange"
)

const (
	// DefaultNotionalUSD is the assumed position size used to scale
	// net profit into an estimated dollar figure.
	DefaultNotionalUSD = 10_000.0

	// DefaultFetchTimeout bounds each per-venue ticker fetch so one
	// unresponsive exchange cannot stall a whole cycle.
	DefaultFetchTimeout = 5 * time.Second

	// DefaultMinNetProfitPct is the minimum net profit gate applied to every
	// candidate opportunity.
	DefaultMinNetProfitPct = 0.5
)

// Config holds the engine's construction-time parameters. The watch list and
// threshold are immutable for the engine's lifetime; reconfiguration requires
// a new engine instance.
type Config struct {
	// WatchList is the ordered set of canonical symbols evaluated each cycle.
	WatchList []string
	// MinNetProfitPct gates each candidate by net profit after fees, in percent.
	MinNetProfitPct float64
	// DemoMode short-circuits detection to a fixed example dataset.
	DemoMode bool
	// Bidirectional also evaluates the reverse direction of every exchange
	// pair. Off by default to match the one-directional i<j scan.
	Bidirectional bool
	// NotionalUSD is the assumed position size; 0 selects DefaultNotionalUSD.
	NotionalUSD float64
	// FetchTimeout bounds each venue fetch; 0 selects DefaultFetchTimeout.
	FetchTimeout time.Duration
}

// Engine detects cross-exchange arbitrage opportunities for a fixed watch
// list. It owns its ticker cache and connector set exclusively; no mutable
// state is shared between engine instances.
type Engine struct {
	cfg        Config
	connectors []exchange.Connector
	tickers    *cache.TickerCache
	logger     *slog.Logger
}

// New creates an Engine. Configuration problems are fatal here: an empty
// watch list outside demo mode or a senseless threshold means the process
// was misconfigured and must not start.
func New(cfg Config, connectors []exchange.Connector, tickers *cache.TickerCache, logger *slog.Logger) (*Engine, error) {
	if !cfg.DemoMode && len(cfg.WatchList) == 0 {
		return nil, errors.New("engine: watch list must not be empty")
	}
	if len(connectors) < 2 && !cfg.DemoMode {
		return nil, fmt.Errorf("engine: need at least 2 connectors, got %d", len(connectors))
	}
	if cfg.MinNetProfitPct < 0 {
		return nil, fmt.Errorf("engine: min net profit must not be negative, got %v", cfg.MinNetProfitPct)
	}
	if cfg.NotionalUSD == 0 {
		cfg.NotionalUSD = DefaultNotionalUSD
	}
	if cfg.NotionalUSD < 0 {
		return nil, fmt.Errorf("engine: notional must be positive, got %v", cfg.NotionalUSD)
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}
	if tickers == nil {
		tickers = cache.NewTickerCache(cache.DefaultTTL)
	}
	return &Engine{
		cfg:        cfg,
		connectors: connectors,
		tickers:    tickers,
		logger:     logger.With(slog.String("component", "engine")),
	}, nil
}

// Statistics returns the engine's monitoring footprint.
func (e *Engine) Statistics() domain.Statistics {
	return domain.Statistics{
		ExchangesMonitored: len(e.connectors),
		SymbolsWatched:     len(e.cfg.WatchList),
		MinSpreadThreshold: e.cfg.MinNetProfitPct,
		DemoMode:           e.cfg.DemoMode,
	}
}

// FindOpportunities runs one detection pass and returns the ranked
// opportunity list. A degraded pass (venues down, symbols skipped) still
// returns whatever could be computed; it never fails.
func (e *Engine) FindOpportunities(ctx context.Context) []domain.Opportunity {
	return e.Detect(ctx).Opportunities
}

// Detect runs one detection cycle and returns the full cycle result,
// including the cycle ID and the set of venues that failed at least once.
func (e *Engine) Detect(ctx context.Context) domain.CycleResult {
	started := time.Now().UTC()
	result := domain.CycleResult{
		ID:        uuid.NewString(),
		StartedAt: started,
	}

	if e.cfg.DemoMode {
		result.Opportunities = DemoOpportunities(started)
		result.Duration = time.Since(started)
		return result
	}

	failed := make(map[string]bool)
	var opps []domain.Opportunity
	for _, symbol := range e.cfg.WatchList {
		quotes := e.fetchSymbol(ctx, symbol, failed)
		opps = append(opps, e.evaluateSymbol(symbol, quotes, started)...)
	}

	// Rank by net profit, best first. The sort is stable so ties keep their
	// discovery order, which makes cycle output deterministic.
	sort.SliceStable(opps, func(i, j int) bool {
		return opps[i].NetProfitPct > opps[j].NetProfitPct
	})

	result.Opportunities = opps
	result.Duration = time.Since(started)
	for _, c := range e.connectors {
		if failed[c.Name()] {
			result.VenuesFailed = append(result.VenuesFailed, c.Name())
		}
	}
	return result
}

// venueQuote pairs a usable ticker with its venue's fee schedule. The slice
// returned by fetchSymbol is ordered by connector index so pair enumeration
// stays deterministic.
type venueQuote struct {
	venue  string
	ticker domain.Ticker
	fees   domain.FeeSchedule
}

// fetchSymbol collects a fresh or cached ticker from every connector for one
// symbol. Fetches run in parallel, each under its own timeout; a failing
// venue is logged, recorded in failed, and excluded for this symbol only.
func (e *Engine) fetchSymbol(ctx context.Context, symbol string, failed map[string]bool) []venueQuote {
	now := time.Now()
	results := make([]*venueQuote, len(e.connectors))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for i, conn := range e.connectors {
		g.Go(func() error {
			ticker, ok := e.tickers.Get(symbol, conn.Name())
			if !ok || e.tickers.IsStale(ticker, now) {
				fetchCtx, cancel := context.WithTimeout(gctx, e.cfg.FetchTimeout)
				fresh, err := conn.FetchTicker(fetchCtx, symbol)
				cancel()
				if err != nil {
					e.logger.Warn("ticker fetch failed",
						slog.String("exchange", conn.Name()),
						slog.String("symbol", symbol),
						slog.String("error", err.Error()),
					)
					mu.Lock()
					failed[conn.Name()] = true
					mu.Unlock()
					return nil
				}
				e.tickers.Put(fresh)
				ticker = fresh
			}

			if ticker.Crossed() {
				// Crossed quote: bad data, treated like a missing quote.
				e.logger.Warn("crossed quote dropped",
					slog.String("exchange", conn.Name()),
					slog.String("symbol", symbol),
					slog.Float64("bid", ticker.Bid),
					slog.Float64("ask", ticker.Ask),
				)
				return nil
			}

			mu.Lock()
			results[i] = &venueQuote{venue: conn.Name(), ticker: ticker, fees: conn.Fees()}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; failures are per-venue soft

	quotes := make([]venueQuote, 0, len(results))
	for _, r := range results {
		if r != nil {
			quotes = append(quotes, *r)
		}
	}
	return quotes
}

// evaluateSymbol enumerates exchange pairs for one symbol and emits every
// qualifying opportunity. With fewer than two usable venues there is nothing
// to compare and the symbol is skipped.
func (e *Engine) evaluateSymbol(symbol string, quotes []venueQuote, ts time.Time) []domain.Opportunity {
	if len(quotes) < 2 {
		return nil
	}

	var opps []domain.Opportunity
	for i := 0; i < len(quotes); i++ {
		for j := i + 1; j < len(quotes); j++ {
			if opp, ok := e.evaluatePair(symbol, quotes[i], quotes[j], ts); ok {
				opps = append(opps, opp)
			}
			if e.cfg.Bidirectional {
				if opp, ok := e.evaluatePair(symbol, quotes[j], quotes[i], ts); ok {
					opps = append(opps, opp)
				}
			}
		}
	}
	return opps
}

// evaluatePair prices one buy/sell direction: buy at the buy venue's ask,
// sell at the sell venue's bid, taker fees on both legs.
func (e *Engine) evaluatePair(symbol string, buy, sell venueQuote, ts time.Time) (domain.Opportunity, bool) {
	buyPrice := buy.ticker.Ask
	sellPrice := sell.ticker.Bid
	// Zero means "no data", not a free asset.
	if buyPrice == 0 || sellPrice == 0 {
		return domain.Opportunity{}, false
	}

	spreadPct := (sellPrice - buyPrice) / buyPrice * 100
	netProfitPct := spreadPct - (buy.fees.Taker+sell.fees.Taker)*100
	if netProfitPct < e.cfg.MinNetProfitPct {
		return domain.Opportunity{}, false
	}

	return domain.Opportunity{
		Symbol:             symbol,
		BuyExchange:        buy.venue,
		SellExchange:       sell.venue,
		BuyPrice:           buyPrice,
		SellPrice:          sellPrice,
		SpreadPct:          spreadPct,
		NetProfitPct:       netProfitPct,
		EstimatedProfitUSD: netProfitPct / 100 * e.cfg.NotionalUSD,
		Volume24h:          sell.ticker.Volume24h,
		Timestamp:          ts,
	}, true
}
