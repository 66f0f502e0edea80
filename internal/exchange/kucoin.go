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

var kucoinQuotes = []string{"USDT", "USDC", "BTC", "ETH"}

// Kucoin is the connector for the KuCoin spot exchange.
type Kucoin struct {
	baseURL string
	client  *http.Client
}

// NewKucoin creates a KuCoin connector.
func NewKucoin(cfg Config) *Kucoin {
	base := cfg.BaseURL
	if base == "" {
		base = "https://api.kucoin.com"
	}
	return &Kucoin{
		baseURL: strings.TrimRight(base, "/"),
		client:  newHTTPClient(cfg.Timeout),
	}
}

// Name returns the venue name.
func (k *Kucoin) Name() string { return "KuCoin" }

// Fees returns KuCoin's base spot fee schedule.
func (k *Kucoin) Fees() domain.FeeSchedule {
	return domain.FeeSchedule{Maker: 0.001, Taker: 0.001}
}

// WithdrawalFees returns per-currency withdrawal costs.
func (k *Kucoin) WithdrawalFees() map[string]float64 {
	return map[string]float64{
		"BTC":  0.0005,
		"ETH":  0.005,
		"USDT": 1.0,
		"USDC": 1.0,
	}
}

// NormalizeSymbol converts a hyphenated pair like "BTC-USDT" to "BTC/USDT".
// Concatenated input is split on known quote suffixes as a fallback.
func (k *Kucoin) NormalizeSymbol(native string) string {
	if strings.Contains(native, "-") {
		return strings.ReplaceAll(native, "-", "/")
	}
	return splitQuoteSuffix(native, kucoinQuotes)
}

// kucoinLevel1 is the /api/v1/market/orderbook/level1 response envelope.
type kucoinLevel1 struct {
	Code string `json:"code"`
	Data *struct {
		Price   string `json:"price"`
		BestBid string `json:"bestBid"`
		BestAsk string `json:"bestAsk"`
	} `json:"data"`
}

// FetchTicker returns the current best bid/ask for a canonical symbol.
func (k *Kucoin) FetchTicker(ctx context.Context, symbol string) (domain.Ticker, error) {
	native := strings.ReplaceAll(symbol, "/", "-")
	u := fmt.Sprintf("%s/api/v1/market/orderbook/level1?symbol=%s", k.baseURL, url.QueryEscape(native))

	var resp kucoinLevel1
	if err := getJSON(ctx, k.client, u, &resp); err != nil {
		return domain.Ticker{}, fmt.Errorf("kucoin: ticker %s: %w", symbol, err)
	}
	// KuCoin answers 200 with a null data field for unlisted pairs.
	if resp.Code != "200000" || resp.Data == nil {
		return domain.Ticker{}, domain.ErrSymbolNotSupported
	}

	return domain.Ticker{
		Symbol:    symbol,
		Exchange:  k.Name(),
		Bid:       parsePrice(resp.Data.BestBid),
		Ask:       parsePrice(resp.Data.BestAsk),
		Last:      parsePrice(resp.Data.Price),
		FetchedAt: time.Now().UTC(),
	}, nil
}

var _ Connector = (*Kucoin)(nil)
