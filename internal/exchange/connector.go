// Package exchange provides REST connectors for the centralized exchanges the
// scanner monitors. Each connector normalizes the venue's native symbol
// spelling to the canonical BASE/QUOTE form, fetches best-bid/best-ask
// tickers from the venue's public API, and reports the venue's fee schedule.
package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/alphanest/arbscan/internal/domain"
)

// Connector is the capability set shared by all venue implementations.
// FetchTicker must fail with domain.ErrExchangeUnavailable for transient
// network problems and domain.ErrSymbolNotSupported when the venue does not
// list the pair, so the detector can continue without the venue.
type Connector interface {
	// Name returns the venue name, e.g. "Binance".
	Name() string
	// FetchTicker returns the current best bid/ask for a canonical symbol.
	FetchTicker(ctx context.Context, symbol string) (domain.Ticker, error)
	// Fees returns the venue's static trading fee schedule.
	Fees() domain.FeeSchedule
	// NormalizeSymbol converts a venue-native spelling to canonical
	// BASE/QUOTE form. Best-effort: unrecognized input is returned unchanged.
	NormalizeSymbol(native string) string
}

// Config holds per-venue connection parameters. Credentials are unused for
// the public ticker endpoints and reserved for future authenticated calls.
type Config struct {
	BaseURL   string
	APIKey    string
	APISecret string
	Timeout   time.Duration
}

const defaultTimeout = 10 * time.Second

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// All constructs the full connector set in a fixed order. The order is
// significant: the detector enumerates ordered exchange pairs by connector
// index, so a stable order keeps cycle output deterministic.
func All(cfgs map[string]Config) []Connector {
	cfg := func(name string) Config { return cfgs[name] }
	return []Connector{
		NewBinance(cfg("binance")),
		NewCoinbase(cfg("coinbase")),
		NewKucoin(cfg("kucoin")),
		NewKraken(cfg("kraken")),
		NewBybit(cfg("bybit")),
	}
}

// splitQuoteSuffix splits a concatenated pair like "BTCUSDT" into canonical
// BASE/QUOTE form by trying each known quote currency suffix in priority
// order. If no suffix matches (or the base would be empty) the input is
// returned unchanged: a normalization miss is a soft failure the caller
// logs but does not act on.
func splitQuoteSuffix(symbol string, quotes []string) string {
	for _, quote := range quotes {
		if strings.HasSuffix(symbol, quote) && len(symbol) > len(quote) {
			base := symbol[:len(symbol)-len(quote)]
			return base + "/" + quote
		}
	}
	return symbol
}

// getJSON performs a GET request and decodes the response body into v. It
// maps transport failures and 5xx responses to domain.ErrExchangeUnavailable
// and 404 to domain.ErrSymbolNotSupported; venue-specific error envelopes
// are handled by the callers.
func getJSON(ctx context.Context, client *http.Client, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %v", domain.ErrExchangeUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.ErrSymbolNotSupported
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", domain.ErrExchangeUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// parsePrice converts a venue's string-encoded price to a float. Empty
// strings become 0, which the detector treats as "no data".
func parsePrice(s string) float64 {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
