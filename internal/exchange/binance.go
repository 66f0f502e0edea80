package exchange

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alphanest/arbscan/internal/domain"
)

// binanceQuotes are the quote currencies tried, in priority order, when
// splitting a concatenated Binance pair.
var binanceQuotes = []string{"USDT", "USDC", "BUSD", "BTC", "ETH"}

// Binance is the connector for the Binance spot exchange.
type Binance struct {
	baseURL string
	client  *http.Client
}

// NewBinance creates a Binance connector. An empty BaseURL selects the
// production API host.
func NewBinance(cfg Config) *Binance {
	base := cfg.BaseURL
	if base == "" {
		base = "https://api.binance.com"
	}
	return &Binance{
		baseURL: strings.TrimRight(base, "/"),
		client:  newHTTPClient(cfg.Timeout),
	}
}

// Name returns the venue name.
func (b *Binance) Name() string { return "Binance" }

// Fees returns Binance's standard spot fee schedule.
func (b *Binance) Fees() domain.FeeSchedule {
	return domain.FeeSchedule{Maker: 0.001, Taker: 0.001}
}

// WithdrawalFees returns per-currency withdrawal costs.
func (b *Binance) WithdrawalFees() map[string]float64 {
	return map[string]float64{
		"BTC":  0.0005,
		"ETH":  0.005,
		"USDT": 1.0,
		"USDC": 1.0,
	}
}

// NormalizeSymbol converts a concatenated pair like "BTCUSDT" to "BTC/USDT".
func (b *Binance) NormalizeSymbol(native string) string {
	return splitQuoteSuffix(native, binanceQuotes)
}

// binanceTicker is the /api/v3/ticker/24hr response shape (relevant fields).
type binanceTicker struct {
	Symbol      string `json:"symbol"`
	BidPrice    string `json:"bidPrice"`
	AskPrice    string `json:"askPrice"`
	LastPrice   string `json:"lastPrice"`
	QuoteVolume string `json:"quoteVolume"`
	Code        int    `json:"code"`
	Msg         string `json:"msg"`
}

// FetchTicker returns the current best bid/ask for a canonical symbol.
func (b *Binance) FetchTicker(ctx context.Context, symbol string) (domain.Ticker, error) {
	native := strings.ReplaceAll(symbol, "/", "")
	u := fmt.Sprintf("%s/api/v3/ticker/24hr?symbol=%s", b.baseURL, url.QueryEscape(native))

	var t binanceTicker
	if err := getJSON(ctx, b.client, u, &t); err != nil {
		// Binance answers 400 with code -1121 for unknown symbols.
		if strings.Contains(err.Error(), "-1121") {
			return domain.Ticker{}, domain.ErrSymbolNotSupported
		}
		return domain.Ticker{}, fmt.Errorf("binance: ticker %s: %w", symbol, err)
	}
	if t.Code != 0 {
		return domain.Ticker{}, fmt.Errorf("binance: ticker %s: code %d: %s", symbol, t.Code, t.Msg)
	}

	return domain.Ticker{
		Symbol:    symbol,
		Exchange:  b.Name(),
		Bid:       parsePrice(t.BidPrice),
		Ask:       parsePrice(t.AskPrice),
		Last:      parsePrice(t.LastPrice),
		Volume24h: parsePrice(t.QuoteVolume),
		FetchedAt: time.Now().UTC(),
	}, nil
}

var _ Connector = (*Binance)(nil)
