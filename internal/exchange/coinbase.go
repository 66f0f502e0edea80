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

// Coinbase is the connector for Coinbase Exchange (Advanced Trade market data).
type Coinbase struct {
	baseURL string
	client  *http.Client
}

// NewCoinbase creates a Coinbase connector.
func NewCoinbase(cfg Config) *Coinbase {
	base := cfg.BaseURL
	if base == "" {
		base = "https://api.exchange.coinbase.com"
	}
	return &Coinbase{
		baseURL: strings.TrimRight(base, "/"),
		client:  newHTTPClient(cfg.Timeout),
	}
}

// Name returns the venue name.
func (c *Coinbase) Name() string { return "Coinbase" }

// Fees returns Coinbase's standard taker/maker schedule.
func (c *Coinbase) Fees() domain.FeeSchedule {
	return domain.FeeSchedule{Maker: 0.004, Taker: 0.006}
}

// WithdrawalFees returns per-currency withdrawal costs. Coinbase covers
// network fees for on-chain sends.
func (c *Coinbase) WithdrawalFees() map[string]float64 {
	return map[string]float64{
		"BTC":  0.0,
		"ETH":  0.0,
		"USDT": 0.0,
		"USDC": 0.0,
	}
}

// NormalizeSymbol converts a hyphenated product ID like "BTC-USD" to "BTC/USD".
func (c *Coinbase) NormalizeSymbol(native string) string {
	return strings.ReplaceAll(native, "-", "/")
}

// coinbaseTicker is the /products/{id}/ticker response shape.
type coinbaseTicker struct {
	Bid    string `json:"bid"`
	Ask    string `json:"ask"`
	Price  string `json:"price"`
	Volume string `json:"volume"`
}

// FetchTicker returns the current best bid/ask for a canonical symbol.
func (c *Coinbase) FetchTicker(ctx context.Context, symbol string) (domain.Ticker, error) {
	native := strings.ReplaceAll(symbol, "/", "-")
	u := fmt.Sprintf("%s/products/%s/ticker", c.baseURL, url.PathEscape(native))

	var t coinbaseTicker
	if err := getJSON(ctx, c.client, u, &t); err != nil {
		return domain.Ticker{}, fmt.Errorf("coinbase: ticker %s: %w", symbol, err)
	}

	return domain.Ticker{
		Symbol:    symbol,
		Exchange:  c.Name(),
		Bid:       parsePrice(t.Bid),
		Ask:       parsePrice(t.Ask),
		Last:      parsePrice(t.Price),
		Volume24h: parsePrice(t.Volume),
		FetchedAt: time.Now().UTC(),
	}, nil
}

var _ Connector = (*Coinbase)(nil)
