package market

import (
	"context"

	"forex_pilot/internal/models"
)

// PriceProvider is the contract for the price source. An interface here
// lets the driver swap the live Twelve Data client for the synthetic
// generator, or a stub in tests, without changing the code that uses it.
type PriceProvider interface {
	// LatestPrice returns the current price for a symbol like "EUR/USD".
	LatestPrice(ctx context.Context, symbol string) (float64, error)

	// Series returns recent candles, oldest first. Implementations must
	// tolerate upstream failure by degrading to a synthetic series
	// rather than returning an error, so the driver loop never stalls;
	// the result says whether that happened.
	Series(ctx context.Context, symbol string, count int) SeriesResult
}

// SeriesResult carries a candle series plus the fallback marker, so the
// degradation policy is visible at the call site instead of hidden in a
// handler.
type SeriesResult struct {
	Candles   []models.Candle
	Synthetic bool   // true when the upstream failed and the series is generated
	Reason    string // why the fallback happened, empty for live data
}
