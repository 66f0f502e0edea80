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

// krakenAssetMap translates Kraken's legacy asset codes to standard ones.
// Longer codes must be replaced before their prefixes (ZUSDT before ZUSD
// would be wrong the other way around), so replacement order is fixed.
var krakenAssetMap = []struct{ from, to string }{
	{"XXBT", "BTC"},
	{"XETH", "ETH"},
	{"ZUSDT", "USDT"},
	{"ZUSD", "USD"},
}

var krakenQuotes = []string{"USDT", "USDC", "USD", "EUR"}

// Kraken is the connector for the Kraken spot exchange.
type Kraken struct {
	baseURL string
	client  *http.Client
}

// NewKraken creates a Kraken connector.
func NewKraken(cfg Config) *Kraken {
	base := cfg.BaseURL
	if base == "" {
		base = "https://api.kraken.com"
	}
	return &Kraken{
		baseURL: strings.TrimRight(base, "/"),
		client:  newHTTPClient(cfg.Timeout),
	}
}

// Name returns the venue name.
func (k *Kraken) Name() string { return "Kraken" }

// Fees returns Kraken's standard spot fee schedule.
func (k *Kraken) Fees() domain.FeeSchedule {
	return domain.FeeSchedule{Maker: 0.0016, Taker: 0.0026}
}

// WithdrawalFees returns per-currency withdrawal costs.
func (k *Kraken) WithdrawalFees() map[string]float64 {
	return map[string]float64{
		"BTC":  0.00015,
		"ETH":  0.005,
		"USDT": 5.0,
		"USDC": 5.0,
	}
}

// NormalizeSymbol converts a Kraken pair like "XXBTZUSD" to "BTC/USD":
// legacy asset codes are remapped first, then the result is split on known
// quote suffixes.
func (k *Kraken) NormalizeSymbol(native string) string {
	s := native
	for _, m := range krakenAssetMap {
		s = strings.ReplaceAll(s, m.from, m.to)
	}
	return splitQuoteSuffix(s, krakenQuotes)
}

// nativeSymbol converts canonical BASE/QUOTE to the spelling Kraken's public
// Ticker endpoint accepts ("BTC/USDT" -> "XBTUSDT").
func (k *Kraken) nativeSymbol(symbol string) string {
	s := strings.ReplaceAll(symbol, "/", "")
	return strings.Replace(s, "BTC", "XBT", 1)
}

// krakenTicker is the /0/public/Ticker response envelope. The result map is
// keyed by Kraken's own pair spelling, which differs from the query spelling,
// so the first entry is taken.
type krakenTicker struct {
	Error  []string `json:"error"`
	Result map[string]struct {
		Ask    []string `json:"a"` // [price, whole lot volume, lot volume]
		Bid    []string `json:"b"`
		Last   []string `json:"c"`
		Volume []string `json:"v"` // [today, last 24h]
	} `json:"result"`
}

// FetchTicker returns the current best bid/ask for a canonical symbol.
func (k *Kraken) FetchTicker(ctx context.Context, symbol string) (domain.Ticker, error) {
	u := fmt.Sprintf("%s/0/public/Ticker?pair=%s", k.baseURL, url.QueryEscape(k.nativeSymbol(symbol)))

	var resp krakenTicker
	if err := getJSON(ctx, k.client, u, &resp); err != nil {
		return domain.Ticker{}, fmt.Errorf("kraken: ticker %s: %w", symbol, err)
	}
	if len(resp.Error) > 0 {
		if strings.Contains(resp.Error[0], "Unknown asset pair") {
			return domain.Ticker{}, domain.ErrSymbolNotSupported
		}
		return domain.Ticker{}, fmt.Errorf("kraken: ticker %s: %s", symbol, strings.Join(resp.Error, "; "))
	}

	for _, pair := range resp.Result {
		t := domain.Ticker{
			Symbol:    symbol,
			Exchange:  k.Name(),
			FetchedAt: time.Now().UTC(),
		}
		if len(pair.Ask) > 0 {
			t.Ask = parsePrice(pair.Ask[0])
		}
		if len(pair.Bid) > 0 {
			t.Bid = parsePrice(pair.Bid[0])
		}
		if len(pair.Last) > 0 {
			t.Last = parsePrice(pair.Last[0])
		}
		if len(pair.Volume) > 1 {
			t.Volume24h = parsePrice(pair.Volume[1])
		}
		return t, nil
	}

	return domain.Ticker{}, domain.ErrSymbolNotSupported
}

var _ Connector = (*Kraken)(nil)
