package engine

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alphanest/arbscan/internal/cache"
	"github.com/alphanest/arbscan/internal/domain"
	"github.com/alphanest/arbscan/internal/exchange"
)

type fakeConnector struct {
	name    string
	fees    domain.FeeSchedule
	tickers map[string]domain.Ticker
	err     error
	calls   atomic.Int64
}

func (f *fakeConnector) Name() string             { return f.name }
func (f *fakeConnector) Fees() domain.FeeSchedule { return f.fees }
func (f *fakeConnector) NormalizeSymbol(native string) string {
	return native
}

func (f *fakeConnector) FetchTicker(_ context.Context, symbol string) (domain.Ticker, error) {
	f.calls.Add(1)
	if f.err != nil {
		return domain.Ticker{}, f.err
	}
	t, ok := f.tickers[symbol]
	if !ok {
		return domain.Ticker{}, domain.ErrSymbolNotSupported
	}
	t.Symbol = symbol
	t.Exchange = f.name
	t.FetchedAt = time.Now()
	return t, nil
}

var _ exchange.Connector = (*fakeConnector)(nil)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func venue(name string, taker float64, tickers map[string]domain.Ticker) *fakeConnector {
	return &fakeConnector{
		name:    name,
		fees:    domain.FeeSchedule{Maker: taker, Taker: taker},
		tickers: tickers,
	}
}

func newEngine(t *testing.T, cfg Config, conns ...exchange.Connector) *Engine {
	t.Helper()
	e, err := New(cfg, conns, cache.NewTickerCache(cache.DefaultTTL), testLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func approx(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func TestDetectProfitMath(t *testing.T) {
	a := venue("A", 0.001, map[string]domain.Ticker{
		"BTC/USDT": {Bid: 99.5, Ask: 100},
	})
	b := venue("B", 0.001, map[string]domain.Ticker{
		"BTC/USDT": {Bid: 101, Ask: 101.5},
	})
	e := newEngine(t, Config{WatchList: []string{"BTC/USDT"}, MinNetProfitPct: 0.5}, a, b)

	opps := e.FindOpportunities(context.Background())
	if len(opps) != 1 {
		t.Fatalf("got %d opportunities, want 1", len(opps))
	}
	opp := opps[0]
	if opp.BuyExchange != "A" || opp.SellExchange != "B" {
		t.Fatalf("direction %s->%s, want A->B", opp.BuyExchange, opp.SellExchange)
	}
	approx(t, "BuyPrice", opp.BuyPrice, 100)
	approx(t, "SellPrice", opp.SellPrice, 101)
	approx(t, "SpreadPct", opp.SpreadPct, 1.0)
	approx(t, "NetProfitPct", opp.NetProfitPct, 0.8)
	approx(t, "EstimatedProfitUSD", opp.EstimatedProfitUSD, 80)
}

func TestDetectFeesEraseSpread(t *testing.T) {
	// A 0.46% gross spread does not survive Binance taker (0.1%) plus
	// Coinbase taker (0.6%).
	binance := venue("Binance", 0.001, map[string]domain.Ticker{
		"BTC/USDT": {Bid: 43240, Ask: 43250},
	})
	coinbase := venue("Coinbase", 0.006, map[string]domain.Ticker{
		"BTC/USDT": {Bid: 43450, Ask: 43460},
	})
	e := newEngine(t, Config{WatchList: []string{"BTC/USDT"}, MinNetProfitPct: 0.5}, binance, coinbase)

	if opps := e.FindOpportunities(context.Background()); len(opps) != 0 {
		t.Fatalf("got %d opportunities, want 0 (net %.4f%% is below threshold)", len(opps), opps[0].NetProfitPct)
	}
}

func TestDetectThresholdInclusive(t *testing.T) {
	// Net profit exactly at the threshold qualifies.
	a := venue("A", 0, map[string]domain.Ticker{"X/USDT": {Bid: 99, Ask: 100}})
	b := venue("B", 0, map[string]domain.Ticker{"X/USDT": {Bid: 100.5, Ask: 101}})
	e := newEngine(t, Config{WatchList: []string{"X/USDT"}, MinNetProfitPct: 0.5}, a, b)

	opps := e.FindOpportunities(context.Background())
	if len(opps) != 1 {
		t.Fatalf("got %d opportunities, want 1", len(opps))
	}
	approx(t, "NetProfitPct", opps[0].NetProfitPct, 0.5)
}

func TestDetectZeroPriceExcluded(t *testing.T) {
	a := venue("A", 0, map[string]domain.Ticker{"X/USDT": {Bid: 0, Ask: 0}})
	b := venue("B", 0, map[string]domain.Ticker{"X/USDT": {Bid: 110, Ask: 111}})
	e := newEngine(t, Config{WatchList: []string{"X/USDT"}, MinNetProfitPct: 0.5}, a, b)

	if opps := e.FindOpportunities(context.Background()); len(opps) != 0 {
		t.Fatalf("got %d opportunities from a zero-priced venue, want 0", len(opps))
	}
}

func TestDetectCrossedQuoteDropped(t *testing.T) {
	// Bid above ask is broken data; the venue is skipped, leaving only one
	// usable venue and therefore no pairs.
	a := venue("A", 0, map[string]domain.Ticker{"X/USDT": {Bid: 120, Ask: 100}})
	b := venue("B", 0, map[string]domain.Ticker{"X/USDT": {Bid: 110, Ask: 111}})
	e := newEngine(t, Config{WatchList: []string{"X/USDT"}, MinNetProfitPct: 0.5}, a, b)

	if opps := e.FindOpportunities(context.Background()); len(opps) != 0 {
		t.Fatalf("got %d opportunities despite crossed book, want 0", len(opps))
	}
}

func TestDetectSingleVenueSkipped(t *testing.T) {
	a := venue("A", 0, map[string]domain.Ticker{"X/USDT": {Bid: 99, Ask: 100}})
	b := venue("B", 0, map[string]domain.Ticker{})
	e := newEngine(t, Config{WatchList: []string{"X/USDT"}, MinNetProfitPct: 0.5}, a, b)

	res := e.Detect(context.Background())
	if len(res.Opportunities) != 0 {
		t.Fatalf("got %d opportunities with a single usable venue, want 0", len(res.Opportunities))
	}
	if len(res.VenuesFailed) != 1 || res.VenuesFailed[0] != "B" {
		t.Fatalf("VenuesFailed = %v, want [B]", res.VenuesFailed)
	}
}

func TestDetectAllVenuesDown(t *testing.T) {
	down := errors.New("dial tcp: connection refused")
	a := venue("A", 0, nil)
	a.err = down
	b := venue("B", 0, nil)
	b.err = down
	e := newEngine(t, Config{WatchList: []string{"X/USDT"}, MinNetProfitPct: 0.5}, a, b)

	res := e.Detect(context.Background())
	if len(res.Opportunities) != 0 {
		t.Fatalf("got %d opportunities with every venue down, want 0", len(res.Opportunities))
	}
	if len(res.VenuesFailed) != 2 {
		t.Fatalf("VenuesFailed = %v, want both venues", res.VenuesFailed)
	}
	if res.ID == "" {
		t.Fatal("cycle ID must be set even for a failed cycle")
	}
}

func TestDetectSortedByNetProfitDesc(t *testing.T) {
	tick := func(bid, ask float64) domain.Ticker { return domain.Ticker{Bid: bid, Ask: ask} }
	a := venue("A", 0, map[string]domain.Ticker{
		"X/USDT": tick(99, 100),
		"Y/USDT": tick(49, 50),
	})
	b := venue("B", 0, map[string]domain.Ticker{
		"X/USDT": tick(101, 102), // 1.0% gross
		"Y/USDT": tick(51, 52),   // 2.0% gross
	})
	e := newEngine(t, Config{WatchList: []string{"X/USDT", "Y/USDT"}, MinNetProfitPct: 0.5}, a, b)

	opps := e.FindOpportunities(context.Background())
	if len(opps) != 2 {
		t.Fatalf("got %d opportunities, want 2", len(opps))
	}
	if opps[0].Symbol != "Y/USDT" || opps[1].Symbol != "X/USDT" {
		t.Fatalf("order = [%s %s], want best spread first", opps[0].Symbol, opps[1].Symbol)
	}
	if opps[0].NetProfitPct < opps[1].NetProfitPct {
		t.Fatal("opportunities not sorted by net profit descending")
	}
}

func TestDetectBidirectional(t *testing.T) {
	// With fee-free venues and a wide two-way spread, both directions can
	// clear the threshold; the default one-directional scan reports only the
	// i<j direction.
	a := venue("A", 0, map[string]domain.Ticker{"X/USDT": {Bid: 102, Ask: 102.5}})
	b := venue("B", 0, map[string]domain.Ticker{"X/USDT": {Bid: 100, Ask: 100.5}})

	oneWay := newEngine(t, Config{WatchList: []string{"X/USDT"}, MinNetProfitPct: 0.5}, a, b)
	if opps := oneWay.FindOpportunities(context.Background()); len(opps) != 0 {
		t.Fatalf("one-way scan got %d opportunities, want 0 (profitable direction is B->A)", len(opps))
	}

	a2 := venue("A", 0, map[string]domain.Ticker{"X/USDT": {Bid: 102, Ask: 102.5}})
	b2 := venue("B", 0, map[string]domain.Ticker{"X/USDT": {Bid: 100, Ask: 100.5}})
	both := newEngine(t, Config{WatchList: []string{"X/USDT"}, MinNetProfitPct: 0.5, Bidirectional: true}, a2, b2)
	opps := both.FindOpportunities(context.Background())
	if len(opps) != 1 {
		t.Fatalf("bidirectional scan got %d opportunities, want 1", len(opps))
	}
	if opps[0].BuyExchange != "B" || opps[0].SellExchange != "A" {
		t.Fatalf("direction %s->%s, want B->A", opps[0].BuyExchange, opps[0].SellExchange)
	}
}

func TestDetectUsesCacheWithinTTL(t *testing.T) {
	a := venue("A", 0, map[string]domain.Ticker{"X/USDT": {Bid: 99, Ask: 100}})
	b := venue("B", 0, map[string]domain.Ticker{"X/USDT": {Bid: 101, Ask: 102}})
	e := newEngine(t, Config{WatchList: []string{"X/USDT"}, MinNetProfitPct: 0.5}, a, b)

	ctx := context.Background()
	e.Detect(ctx)
	e.Detect(ctx)

	if got := a.calls.Load(); got != 1 {
		t.Fatalf("connector A fetched %d times across two cycles, want 1 (cache hit)", got)
	}
}

func TestDemoModeFixedDataset(t *testing.T) {
	e, err := New(Config{DemoMode: true}, nil, nil, testLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res := e.Detect(context.Background())
	if len(res.Opportunities) != 5 {
		t.Fatalf("demo mode returned %d opportunities, want 5", len(res.Opportunities))
	}
	first := res.Opportunities[0]
	if first.Symbol != "BTC/USDT" || first.BuyExchange != "Binance" || first.SellExchange != "Coinbase" {
		t.Fatalf("unexpected first demo entry: %+v", first)
	}
	approx(t, "BuyPrice", first.BuyPrice, 43250.00)
	approx(t, "SellPrice", first.SellPrice, 43450.00)
	approx(t, "NetProfitPct", first.NetProfitPct, 0.25)
	approx(t, "EstimatedProfitUSD", first.EstimatedProfitUSD, 108.12)

	again := e.Detect(context.Background())
	for i := range res.Opportunities {
		if res.Opportunities[i].Symbol != again.Opportunities[i].Symbol {
			t.Fatal("demo dataset must be stable across cycles")
		}
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	conns := []exchange.Connector{
		venue("A", 0, nil),
		venue("B", 0, nil),
	}
	cases := []struct {
		name string
		cfg  Config
	}{
		{"empty watch list", Config{MinNetProfitPct: 0.5}},
		{"negative threshold", Config{WatchList: []string{"X/USDT"}, MinNetProfitPct: -1}},
		{"negative notional", Config{WatchList: []string{"X/USDT"}, NotionalUSD: -5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.cfg, conns, nil, testLogger()); err == nil {
				t.Fatal("expected config error")
			}
		})
	}
}

func TestStatistics(t *testing.T) {
	a := venue("A", 0, nil)
	b := venue("B", 0, nil)
	e := newEngine(t, Config{WatchList: []string{"BTC/USDT", "ETH/USDT"}, MinNetProfitPct: 0.5}, a, b)

	stats := e.Statistics()
	if stats.ExchangesMonitored != 2 || stats.SymbolsWatched != 2 {
		t.Fatalf("stats = %+v", stats)
	}
	approx(t, "MinSpreadThreshold", stats.MinSpreadThreshold, 0.5)
	if stats.DemoMode {
		t.Fatal("DemoMode should be false")
	}
}
