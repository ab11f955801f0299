package internal

import (
	"context"

	"github.com/vadiminshakov/volspike/internal/domain"
	"github.com/vadiminshakov/volspike/internal/services/baseline"
	"github.com/vadiminshakov/volspike/internal/services/notifier"
	"go.uber.org/zap"
)

// BaselineEstimator builds the per-bucket volume baseline for an instrument.
type BaselineEstimator interface {
	Compute(ctx context.Context, inst domain.Instrument) (baseline.Map, baseline.Report)
}

// SpikeDetector scans the trailing window for volume spikes.
type SpikeDetector interface {
	Detect(ctx context.Context, inst domain.Instrument, averages baseline.Map) []domain.SpikeRecord
}

// SpikeWatcher runs one detection pass over all configured instruments
// and dispatches a single aggregated alert when spikes were found. It
// owns no long-lived state: every Run is an independent tick.
type SpikeWatcher struct {
	estimator     BaselineEstimator
	detector      SpikeDetector
	notifier      notifier.Notifier
	instruments   []domain.Instrument
	alertsEnabled bool
	logger        *zap.Logger
}

// NewSpikeWatcher wires the watcher together. notif may be nil when
// alerts are disabled.
func NewSpikeWatcher(estimator BaselineEstimator, detector SpikeDetector, notif notifier.Notifier,
	instruments []domain.Instrument, alertsEnabled bool, logger *zap.Logger) *SpikeWatcher {
	return &SpikeWatcher{
		estimator:     estimator,
		detector:      detector,
		notifier:      notif,
		instruments:   instruments,
		alertsEnabled: alertsEnabled,
		logger:        logger,
	}
}

// Run processes each instrument sequentially: baseline, then detection.
// The collected spike records are the authoritative result of the run;
// alert delivery failure is logged and swallowed, never propagated.
func (w *SpikeWatcher) Run(ctx context.Context) ([]domain.SpikeRecord, error) {
	var all []domain.SpikeRecord

	for _, inst := range w.instruments {
		if err := ctx.Err(); err != nil {
			return all, err
		}

		logger := w.logger.With(zap.String("instrument", inst.Name))
		logger.Info("checking volume spikes")

		averages, report := w.estimator.Compute(ctx, inst)
		logger.Info("baseline ready",
			zap.Int("trading_days", report.Collected),
			zap.Int("days_scanned", report.Scanned),
			zap.Int("buckets", len(averages)))

		spikes := w.detector.Detect(ctx, inst, averages)
		for _, s := range spikes {
			logger.Info("volume spike",
				zap.String("bucket", s.Bucket),
				zap.Int64("volume", s.Volume),
				zap.String("multiplier", s.Multiplier.StringFixed(2)))
		}

		all = append(all, spikes...)
	}

	w.logger.Info("volume check finished", zap.Int("spikes", len(all)))

	if len(all) > 0 && w.alertsEnabled && w.notifier != nil {
		if err := w.notifier.Send(ctx, notifier.Format(all)); err != nil {
			w.logger.Error("failed to deliver spike alert", zap.Error(err))
		} else {
			w.logger.Info("spike alert delivered")
		}
	}

	return all, nil
}
