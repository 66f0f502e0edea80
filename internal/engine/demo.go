package engine

import (
	"time"

	"github.com/alphanest/arbscan/internal/domain"
)

// DemoOpportunities returns the fixed example dataset served in demo mode.
// The values are intentionally static so clients exercising the API without
// exchange connectivity see stable, plausible output.
func DemoOpportunities(ts time.Time) []domain.Opportunity {
	return []domain.Opportunity{
		{
			Symbol:             "BTC/USDT",
			BuyExchange:        "Binance",
			SellExchange:       "Coinbase",
			BuyPrice:           43250.00,
			SellPrice:          43450.00,
			SpreadPct:          0.46,
			NetProfitPct:       0.25,
			EstimatedProfitUSD: 108.12,
			Volume24h:          125_000_000,
			Timestamp:          ts,
		},
		{
			Symbol:             "ETH/USDT",
			BuyExchange:        "KuCoin",
			SellExchange:       "Kraken",
			BuyPrice:           2280.50,
			SellPrice:          2295.75,
			SpreadPct:          0.67,
			NetProfitPct:       0.42,
			EstimatedProfitUSD: 95.85,
			Volume24h:          85_000_000,
			Timestamp:          ts,
		},
		{
			Symbol:             "SOL/USDT",
			BuyExchange:        "Bybit",
			SellExchange:       "Binance",
			BuyPrice:           98.45,
			SellPrice:          98.95,
			SpreadPct:          0.51,
			NetProfitPct:       0.30,
			EstimatedProfitUSD: 29.40,
			Volume24h:          42_000_000,
			Timestamp:          ts,
		},
		{
			Symbol:             "BNB/USDT",
			BuyExchange:        "Binance",
			SellExchange:       "KuCoin",
			BuyPrice:           315.20,
			SellPrice:          316.85,
			SpreadPct:          0.52,
			NetProfitPct:       0.31,
			EstimatedProfitUSD: 48.75,
			Volume24h:          28_000_000,
			Timestamp:          ts,
		},
		{
			Symbol:             "XRP/USDT",
			BuyExchange:        "Coinbase",
			SellExchange:       "Bybit",
			BuyPrice:           0.6125,
			SellPrice:          0.6155,
			SpreadPct:          0.49,
			NetProfitPct:       0.20,
			EstimatedProfitUSD: 12.25,
			Volume24h:          65_000_000,
			Timestamp:          ts,
		},
	}
}
