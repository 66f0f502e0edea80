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

var bybitQuotes = []string{"USDT", "USDC", "USD", "BTC", "ETH"}

// Bybit is the connector for the Bybit spot exchange.
type Bybit struct {
	baseURL string
	client  *http.Client
}

// NewBybit creates a Bybit connector.
func NewBybit(cfg Config) *Bybit {
	base := cfg.BaseURL
	if base == "" {
		base = "https://api.bybit.com"
	}
	return &Bybit{
		baseURL: strings.TrimRight(base, "/"),
		client:  newHTTPClient(cfg.Timeout),
	}
}

// Name returns the venue name.
func (b *Bybit) Name() string { return "Bybit" }

// Fees returns Bybit's standard spot fee schedule.
func (b *Bybit) Fees() domain.FeeSchedule {
	return domain.FeeSchedule{Maker: 0.001, Taker: 0.001}
}

// WithdrawalFees returns per-currency withdrawal costs.
func (b *Bybit) WithdrawalFees() map[string]float64 {
	return map[string]float64{
		"BTC":  0.0005,
		"ETH":  0.0005,
		"USDT": 1.0,
		"USDC": 1.0,
	}
}

// NormalizeSymbol converts a concatenated pair like "BTCUSDT" to "BTC/USDT".
func (b *Bybit) NormalizeSymbol(native string) string {
	return splitQuoteSuffix(native, bybitQuotes)
}

// bybitTickers is the /v5/market/tickers response envelope.
type bybitTickers struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
	Result  struct {
		List []struct {
			Symbol     string `json:"symbol"`
			Bid1Price  string `json:"bid1Price"`
			Ask1Price  string `json:"ask1Price"`
			LastPrice  string `json:"lastPrice"`
			Turnover24 string `json:"turnover24h"`
		} `json:"list"`
	} `json:"result"`
}

// FetchTicker returns the current best bid/ask for a canonical symbol.
func (b *Bybit) FetchTicker(ctx context.Context, symbol string) (domain.Ticker, error) {
	native := strings.ReplaceAll(symbol, "/", "")
	u := fmt.Sprintf("%s/v5/market/tickers?category=spot&symbol=%s", b.baseURL, url.QueryEscape(native))

	var resp bybitTickers
	if err := getJSON(ctx, b.client, u, &resp); err != nil {
		return domain.Ticker{}, fmt.Errorf("bybit: ticker %s: %w", symbol, err)
	}
	if resp.RetCode != 0 {
		// 10001 is Bybit's parameter error, returned for unknown symbols.
		if resp.RetCode == 10001 {
			return domain.Ticker{}, domain.ErrSymbolNotSupported
		}
		return domain.Ticker{}, fmt.Errorf("bybit: ticker %s: code %d: %s", symbol, resp.RetCode, resp.RetMsg)
	}
	if len(resp.Result.List) == 0 {
		return domain.Ticker{}, domain.ErrSymbolNotSupported
	}

	entry := resp.Result.List[0]
	return domain.Ticker{
		Symbol:    symbol,
		Exchange:  b.Name(),
		Bid:       parsePrice(entry.Bid1Price),
		Ask:       parsePrice(entry.Ask1Price),
		Last:      parsePrice(entry.LastPrice),
		Volume24h: parsePrice(entry.Turnover24),
		FetchedAt: time.Now().UTC(),
	}, nil
}

var _ Connector = (*Bybit)(nil)
