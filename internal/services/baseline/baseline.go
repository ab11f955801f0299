// Package baseline builds per-bucket historical volume averages by
// walking back over past trading days.
package baseline

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/volspike/internal/domain"
	"github.com/vadiminshakov/volspike/internal/services/bucket"
	"github.com/vadiminshakov/volspike/internal/services/market/source"
	"github.com/vadiminshakov/volspike/internal/services/tradingday"
	"go.uber.org/zap"
)

// Map holds the mean historical volume per bucket label. Buckets with no
// samples are absent; an absent bucket disables detection for it.
type Map map[string]decimal.Decimal

// DayOutcome says what happened to one scanned calendar day.
type DayOutcome string

const (
	// DayCollected counts toward the trading-day quota.
	DayCollected DayOutcome = "collected"
	// DayNonTrading was excluded by the trading-day policy.
	DayNonTrading DayOutcome = "non_trading"
	// DayNoData got an empty (but successful) provider response.
	DayNoData DayOutcome = "no_data"
	// DayFetchError got a provider error; the walk continued.
	DayFetchError DayOutcome = "fetch_error"
)

// DayReport records the outcome for one scanned day so callers and tests
// can see why a day did or did not contribute samples.
type DayReport struct {
	Date    time.Time
	Outcome DayOutcome
	Err     error
}

// Report summarizes one baseline computation.
type Report struct {
	Days      []DayReport
	Collected int
	Scanned   int
}

// Estimator walks back over trading days and accumulates per-bucket
// volume samples into a Map.
type Estimator struct {
	source          source.CandleSource
	bucketer        *bucket.Bucketer
	policy          *tradingday.Policy
	lookbackDays    int
	maxCalendarDays int
	logger          *zap.Logger
}

// NewEstimator creates an Estimator. lookbackDays is the number of
// trading days wanted in the baseline; maxCalendarDays hard-caps the
// walk so a silent provider can never hang the run.
func NewEstimator(src source.CandleSource, bucketer *bucket.Bucketer, policy *tradingday.Policy,
	lookbackDays, maxCalendarDays int, logger *zap.Logger) (*Estimator, error) {
	if lookbackDays <= 0 {
		return nil, errors.Errorf("lookback days must be positive, got %d", lookbackDays)
	}
	if maxCalendarDays < lookbackDays {
		return nil, errors.Errorf("calendar-day cap %d is below lookback %d", maxCalendarDays, lookbackDays)
	}

	return &Estimator{
		source:          src,
		bucketer:        bucketer,
		policy:          policy,
		lookbackDays:    lookbackDays,
		maxCalendarDays: maxCalendarDays,
		logger:          logger,
	}, nil
}

type bucketSamples struct {
	sum   int64
	count int64
}

// Compute builds the baseline for one instrument. The walk starts at
// yesterday in the display zone so today's partial session never
// contaminates the baseline it is checked against. Provider errors and
// empty days are non-fatal: they are recorded in the report and the walk
// moves on. Compute always terminates within the calendar-day cap and
// returns whatever partial baseline was accumulated.
func (e *Estimator) Compute(ctx context.Context, inst domain.Instrument) (Map, Report) {
	samples := make(map[string]*bucketSamples)
	report := Report{}

	today := e.bucketer.Today()

	for daysBack := 1; report.Collected < e.lookbackDays && daysBack <= e.maxCalendarDays; daysBack++ {
		day := today.AddDate(0, 0, -daysBack)
		report.Scanned++

		if !e.policy.IsTradingDay(day) {
			report.Days = append(report.Days, DayReport{Date: day, Outcome: DayNonTrading})
			continue
		}

		fromUTC, toUTC := e.bucketer.DayWindowUTC(day)

		candles, err := e.source.Candles(ctx, inst.Code, fromUTC, toUTC)
		if err != nil {
			e.logger.Warn("baseline day fetch failed",
				zap.String("instrument", inst.Code),
				zap.Time("day", day),
				zap.Error(err))
			report.Days = append(report.Days, DayReport{Date: day, Outcome: DayFetchError, Err: err})
			continue
		}

		if len(candles) == 0 {
			report.Days = append(report.Days, DayReport{Date: day, Outcome: DayNoData})
			continue
		}

		// any non-empty response counts as one collected trading day,
		// even if every candle in it is still incomplete
		report.Collected++
		report.Days = append(report.Days, DayReport{Date: day, Outcome: DayCollected})

		for _, c := range candles {
			if !c.Complete {
				continue
			}

			label := e.bucketer.Label(c.OpenTime)
			s, ok := samples[label]
			if !ok {
				s = &bucketSamples{}
				samples[label] = s
			}
			s.sum += c.Volume
			s.count++
		}
	}

	averages := make(Map, len(samples))
	for label, s := range samples {
		if s.count == 0 {
			continue
		}
		averages[label] = decimal.NewFromInt(s.sum).Div(decimal.NewFromInt(s.count))
	}

	e.logger.Debug("baseline computed",
		zap.String("instrument", inst.Code),
		zap.Int("trading_days", report.Collected),
		zap.Int("days_scanned", report.Scanned),
		zap.Int("buckets", len(averages)))

	return averages, report
}
