// Package detector compares recent candle volume against the per-bucket
// baseline and emits spike records for breaches.
package detector

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/volspike/internal/domain"
	"github.com/vadiminshakov/volspike/internal/services/baseline"
	"github.com/vadiminshakov/volspike/internal/services/bucket"
	"github.com/vadiminshakov/volspike/internal/services/market/source"
	"go.uber.org/zap"
)

// Detector scans a trailing window of candles for volume spikes.
type Detector struct {
	source     source.CandleSource
	bucketer   *bucket.Bucketer
	multiplier decimal.Decimal
	window     time.Duration
	logger     *zap.Logger
}

// New creates a Detector. multiplier scales the bucket average into the
// spike threshold; window is how far back from now the detector looks.
func New(src source.CandleSource, bucketer *bucket.Bucketer, multiplier decimal.Decimal,
	window time.Duration, logger *zap.Logger) (*Detector, error) {
	if multiplier.IsNegative() {
		return nil, errors.Errorf("multiplier must be non-negative, got %s", multiplier)
	}
	if window <= 0 {
		return nil, errors.Errorf("detection window must be positive, got %s", window)
	}

	return &Detector{
		source:     src,
		bucketer:   bucketer,
		multiplier: multiplier,
		window:     window,
		logger:     logger,
	}, nil
}

// Detect fetches the trailing window of candles and returns a record for
// every complete candle whose volume strictly exceeds its bucket
// threshold. A provider outage yields an empty result, not an error.
func (d *Detector) Detect(ctx context.Context, inst domain.Instrument, averages baseline.Map) []domain.SpikeRecord {
	now := time.Now().UTC()

	candles, err := d.source.Candles(ctx, inst.Code, now.Add(-d.window), now)
	if err != nil {
		d.logger.Warn("detection window fetch failed",
			zap.String("instrument", inst.Code), zap.Error(err))
		return nil
	}

	d.logger.Info("fetched detection window",
		zap.String("instrument", inst.Name), zap.Int("candles", len(candles)))

	var spikes []domain.SpikeRecord

	for _, c := range candles {
		if !c.Complete {
			continue
		}

		label := d.bucketer.Label(c.OpenTime)

		average, ok := averages[label]
		if !ok {
			// no historical samples, no detection for this bucket
			continue
		}

		threshold := average.Mul(d.multiplier)
		volume := decimal.NewFromInt(c.Volume)

		d.logger.Debug("candle checked",
			zap.String("instrument", inst.Name),
			zap.String("bucket", label),
			zap.Int64("volume", c.Volume),
			zap.String("average", average.String()),
			zap.String("threshold", threshold.String()))

		if !threshold.IsPositive() || !volume.GreaterThan(threshold) {
			continue
		}

		spikes = append(spikes, domain.NewSpikeRecord(
			inst.Name, label, d.bucketer.Localize(c.OpenTime), c, average, threshold))
	}

	return spikes
}
