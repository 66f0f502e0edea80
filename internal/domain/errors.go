package domain

import "errors"

var (
	// ErrExchangeUnavailable signals a network failure or timeout talking to a
	// venue. The detector excludes the venue for the current symbol and cycle.
	ErrExchangeUnavailable = errors.New("exchange unavailable")

	// ErrSymbolNotSupported signals that a venue does not list the requested
	// pair. Recovered the same way as ErrExchangeUnavailable.
	ErrSymbolNotSupported = errors.New("symbol not supported")

	ErrNotFound = errors.New("not found")
)
