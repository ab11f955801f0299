package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SpikeRecord describes a single candle whose volume breached the
// baseline threshold. This is a value object created by the detector
// and consumed by the alert formatter; it lives for one detection run.
type SpikeRecord struct {
	// Instrument is the display name of the instrument.
	Instrument string
	// Bucket is the time-of-day bucket label the candle fell into.
	Bucket string
	// Time is the candle open time in the display time zone.
	Time time.Time
	// Volume is the candle volume.
	Volume int64
	// Average is the historical mean volume for the bucket.
	Average decimal.Decimal
	// Threshold is Average scaled by the configured multiplier.
	Threshold decimal.Decimal
	// Multiplier is Volume divided by Threshold (how far past the bar).
	Multiplier decimal.Decimal
	// Excess is Volume minus the threshold floor.
	Excess int64
	// Sentiment is the candle direction (close vs open).
	Sentiment Sentiment
}

// NewSpikeRecord builds a SpikeRecord for a breaching candle. The caller
// guarantees threshold > 0; the ratio and excess math lives here so every
// record carries consistent derived values.
func NewSpikeRecord(instrument, bucket string, localTime time.Time, c Candle, average, threshold decimal.Decimal) SpikeRecord {
	volume := decimal.NewFromInt(c.Volume)

	return SpikeRecord{
		Instrument: instrument,
		Bucket:     bucket,
		Time:       localTime,
		Volume:     c.Volume,
		Average:    average,
		Threshold:  threshold,
		Multiplier: volume.Div(threshold),
		Excess:     c.Volume - threshold.Floor().IntPart(),
		Sentiment:  c.Sentiment(),
	}
}
