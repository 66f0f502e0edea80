package domain

import "time"

// Ticker is an immutable best-bid/best-ask snapshot for one symbol on one
// exchange. A zero Bid or Ask means the venue returned no quote on that side.
type Ticker struct {
	Symbol    string    // canonical BASE/QUOTE spelling
	Exchange  string    // venue name, e.g. "Binance"
	Bid       float64   // best bid price
	Ask       float64   // best ask price
	Last      float64   // last trade price
	Volume24h float64   // 24h quote volume; 0 when the venue does not report it
	FetchedAt time.Time // when the connector fetched this snapshot
}

// Age returns how old the snapshot is relative to now.
func (t Ticker) Age(now time.Time) time.Duration {
	return now.Sub(t.FetchedAt)
}

// Crossed reports whether the quote is crossed (bid above ask). Crossed
// quotes are treated as bad data and dropped by the detector, the same way a
// zero price is.
func (t Ticker) Crossed() bool {
	return t.Bid > 0 && t.Ask > 0 && t.Bid > t.Ask
}

// FeeSchedule holds a venue's trading fees as fractions (0.001 = 0.1%).
// Static per connector; the detector uses the taker rate on both legs as the
// worst-case execution cost.
type FeeSchedule struct {
	Maker float64
	Taker float64
}
