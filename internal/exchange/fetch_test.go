package exchange

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alphanest/arbscan/internal/domain"
)

func TestBinanceFetchTicker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("symbol"); got != "BTCUSDT" {
			t.Errorf("symbol query = %q, want BTCUSDT", got)
		}
		w.Write([]byte(`{"symbol":"BTCUSDT","bidPrice":"43249.50","askPrice":"43250.00","lastPrice":"43249.90","quoteVolume":"125000000.0"}`))
	}))
	defer srv.Close()

	b := NewBinance(Config{BaseURL: srv.URL})
	tick, err := b.FetchTicker(context.Background(), "BTC/USDT")
	if err != nil {
		t.Fatalf("FetchTicker: %v", err)
	}
	if tick.Bid != 43249.50 || tick.Ask != 43250.00 {
		t.Errorf("bid/ask = %v/%v", tick.Bid, tick.Ask)
	}
	if tick.Exchange != "Binance" || tick.Symbol != "BTC/USDT" {
		t.Errorf("identity = %s %s", tick.Exchange, tick.Symbol)
	}
	if tick.FetchedAt.IsZero() {
		t.Error("FetchedAt not set")
	}
}

func TestBinanceFetchTickerUnknownSymbol(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":-1121,"msg":"Invalid symbol."}`))
	}))
	defer srv.Close()

	b := NewBinance(Config{BaseURL: srv.URL})
	_, err := b.FetchTicker(context.Background(), "NOPE/USDT")
	if !errors.Is(err, domain.ErrSymbolNotSupported) {
		t.Errorf("err = %v, want ErrSymbolNotSupported", err)
	}
}

func TestFetchTickerServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	b := NewBinance(Config{BaseURL: srv.URL})
	_, err := b.FetchTicker(context.Background(), "BTC/USDT")
	if !errors.Is(err, domain.ErrExchangeUnavailable) {
		t.Errorf("err = %v, want ErrExchangeUnavailable", err)
	}
}

func TestFetchTickerUnreachableHost(t *testing.T) {
	// Closed server: the connector must signal a typed failure, not panic.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewCoinbase(Config{BaseURL: srv.URL})
	_, err := c.FetchTicker(context.Background(), "BTC/USD")
	if !errors.Is(err, domain.ErrExchangeUnavailable) {
		t.Errorf("err = %v, want ErrExchangeUnavailable", err)
	}
}

func TestCoinbaseFetchTickerNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"NotFound"}`))
	}))
	defer srv.Close()

	c := NewCoinbase(Config{BaseURL: srv.URL})
	_, err := c.FetchTicker(context.Background(), "NOPE/USD")
	if !errors.Is(err, domain.ErrSymbolNotSupported) {
		t.Errorf("err = %v, want ErrSymbolNotSupported", err)
	}
}

func TestKucoinFetchTicker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("symbol"); got != "BTC-USDT" {
			t.Errorf("symbol query = %q, want BTC-USDT", got)
		}
		w.Write([]byte(`{"code":"200000","data":{"price":"43250.1","bestBid":"43250.0","bestAsk":"43250.2"}}`))
	}))
	defer srv.Close()

	k := NewKucoin(Config{BaseURL: srv.URL})
	tick, err := k.FetchTicker(context.Background(), "BTC/USDT")
	if err != nil {
		t.Fatalf("FetchTicker: %v", err)
	}
	if tick.Bid != 43250.0 || tick.Ask != 43250.2 || tick.Last != 43250.1 {
		t.Errorf("unexpected ticker %+v", tick)
	}
}

func TestKucoinFetchTickerNullData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":"200000","data":null}`))
	}))
	defer srv.Close()

	k := NewKucoin(Config{BaseURL: srv.URL})
	_, err := k.FetchTicker(context.Background(), "NOPE/USDT")
	if !errors.Is(err, domain.ErrSymbolNotSupported) {
		t.Errorf("err = %v, want ErrSymbolNotSupported", err)
	}
}

func TestKrakenFetchTicker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("pair"); got != "XBTUSDT" {
			t.Errorf("pair query = %q, want XBTUSDT", got)
		}
		w.Write([]byte(`{"error":[],"result":{"XBTUSDT":{"a":["43260.0","1","1.0"],"b":["43240.0","2","2.0"],"c":["43251.5","0.05"],"v":["120.5","340.2"]}}}`))
	}))
	defer srv.Close()

	k := NewKraken(Config{BaseURL: srv.URL})
	tick, err := k.FetchTicker(context.Background(), "BTC/USDT")
	if err != nil {
		t.Fatalf("FetchTicker: %v", err)
	}
	if tick.Ask != 43260.0 || tick.Bid != 43240.0 || tick.Last != 43251.5 {
		t.Errorf("unexpected ticker %+v", tick)
	}
	if tick.Volume24h != 340.2 {
		t.Errorf("Volume24h = %v, want 340.2", tick.Volume24h)
	}
}

func TestKrakenFetchTickerUnknownPair(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":["EQuery:Unknown asset pair"],"result":{}}`))
	}))
	defer srv.Close()

	k := NewKraken(Config{BaseURL: srv.URL})
	_, err := k.FetchTicker(context.Background(), "NOPE/USD")
	if !errors.Is(err, domain.ErrSymbolNotSupported) {
		t.Errorf("err = %v, want ErrSymbolNotSupported", err)
	}
}

func TestBybitFetchTicker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("category") != "spot" || q.Get("symbol") != "SOLUSDT" {
			t.Errorf("unexpected query %v", q)
		}
		w.Write([]byte(`{"retCode":0,"retMsg":"OK","result":{"list":[{"symbol":"SOLUSDT","bid1Price":"98.45","ask1Price":"98.50","lastPrice":"98.47","turnover24h":"42000000"}]}}`))
	}))
	defer srv.Close()

	b := NewBybit(Config{BaseURL: srv.URL})
	tick, err := b.FetchTicker(context.Background(), "SOL/USDT")
	if err != nil {
		t.Fatalf("FetchTicker: %v", err)
	}
	if tick.Bid != 98.45 || tick.Ask != 98.50 {
		t.Errorf("bid/ask = %v/%v", tick.Bid, tick.Ask)
	}
}

func TestBybitFetchTickerUnknownSymbol(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"retCode":10001,"retMsg":"params error: Symbol Is Invalid","result":{}}`))
	}))
	defer srv.Close()

	b := NewBybit(Config{BaseURL: srv.URL})
	_, err := b.FetchTicker(context.Background(), "NOPE/USDT")
	if !errors.Is(err, domain.ErrSymbolNotSupported) {
		t.Errorf("err = %v, want ErrSymbolNotSupported", err)
	}
}
