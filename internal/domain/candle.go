// Package domain defines core data structures used throughout the volume watcher.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sentiment qualitative direction of a single candle.
type Sentiment string

const (
	SentimentBullish Sentiment = "bullish"
	SentimentBearish Sentiment = "bearish"
	SentimentNeutral Sentiment = "neutral"
)

// Marker returns the chat marker used in alert messages.
func (s Sentiment) Marker() string {
	switch s {
	case SentimentBullish:
		return "🟩"
	case SentimentBearish:
		return "🟥"
	default:
		return "▪️"
	}
}

// Candle single OHLCV candlestick as delivered by a market data provider.
// OpenTime is always UTC. Incomplete (still forming) candles never take
// part in baseline accumulation or spike detection.
type Candle struct {
	OpenTime time.Time
	Open     decimal.Decimal
	High     decimal.Decimal
	Low      decimal.Decimal
	Close    decimal.Decimal
	Volume   int64
	Complete bool
}

// Sentiment classifies the candle by close relative to open.
func (c Candle) Sentiment() Sentiment {
	switch {
	case c.Close.GreaterThan(c.Open):
		return SentimentBullish
	case c.Close.LessThan(c.Open):
		return SentimentBearish
	default:
		return SentimentNeutral
	}
}
