package domain

import "time"

// Opportunity is a fee-adjusted price discrepancy between two exchanges for
// one symbol. Opportunities are derived, ephemeral values: each detection
// cycle produces a fresh set that fully replaces the previous one, and an
// opportunity has no identity beyond its field values.
type Opportunity struct {
	Symbol             string    `json:"symbol"`
	BuyExchange        string    `json:"buy_exchange"`
	SellExchange       string    `json:"sell_exchange"`
	BuyPrice           float64   `json:"buy_price"`  // buy-side ask
	SellPrice          float64   `json:"sell_price"` // sell-side bid
	SpreadPct          float64   `json:"spread_pct"`
	NetProfitPct       float64   `json:"net_profit_pct"`
	EstimatedProfitUSD float64   `json:"estimated_profit_usd"`
	Volume24h          float64   `json:"volume_24h"`
	Timestamp          time.Time `json:"timestamp"`
}

// CycleResult is the outcome of one detection cycle. The ID identifies the
// cycle (not the opportunities) for logging, publishing, and storage.
type CycleResult struct {
	ID            string        `json:"id"`
	Opportunities []Opportunity `json:"opportunities"`
	StartedAt     time.Time     `json:"started_at"`
	Duration      time.Duration `json:"duration"`
	VenuesFailed  []string      `json:"venues_failed,omitempty"`
}

// Statistics describes the engine's monitoring footprint, exposed on the
// statistics endpoint.
type Statistics struct {
	ExchangesMonitored int     `json:"exchanges_monitored"`
	SymbolsWatched     int     `json:"symbols_watched"`
	MinSpreadThreshold float64 `json:"min_spread_threshold"`
	DemoMode           bool    `json:"demo_mode"`
}
