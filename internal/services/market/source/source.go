// Package source provides market candle providers. Each provider fetches
// OHLCV candles for an instrument over a UTC time range; the rest of the
// watcher only ever sees the CandleSource interface.
package source

import (
	"context"
	"time"

	"github.com/vadiminshakov/volspike/internal/domain"
)

// CandleSource fetches candles for a provider-specific instrument code
// over the half-open UTC range [from, to). Providers never serve future
// candles: ranges extending past the current time are clipped to now.
type CandleSource interface {
	Candles(ctx context.Context, code string, from, to time.Time) ([]domain.Candle, error)
}

// clipToNow caps both range ends at the current UTC time.
func clipToNow(from, to time.Time) (time.Time, time.Time) {
	now := time.Now().UTC()
	if from.After(now) {
		from = now
	}
	if to.After(now) {
		to = now
	}
	return from, to
}
