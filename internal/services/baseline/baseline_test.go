package baseline

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/volspike/internal/domain"
	"github.com/vadiminshakov/volspike/internal/services/bucket"
	"github.com/vadiminshakov/volspike/internal/services/tradingday"
	"go.uber.org/zap"
)

type sourceFunc func(ctx context.Context, code string, from, to time.Time) ([]domain.Candle, error)

func (f sourceFunc) Candles(ctx context.Context, code string, from, to time.Time) ([]domain.Candle, error) {
	return f(ctx, code, from, to)
}

func newBucketer(t *testing.T) *bucket.Bucketer {
	t.Helper()
	b, err := bucket.New(60, "UTC")
	require.NoError(t, err)
	return b
}

func candleAt(ts time.Time, volume int64, complete bool) domain.Candle {
	one := decimal.NewFromInt(1)
	return domain.Candle{
		OpenTime: ts,
		Open:     one,
		High:     one,
		Low:      one,
		Close:    one,
		Volume:   volume,
		Complete: complete,
	}
}

var gold = domain.Instrument{Name: "XAUUSD", Code: "XAU_USD"}

func TestComputeTerminatesWhenProviderIsEmpty(t *testing.T) {
	calls := 0
	src := sourceFunc(func(ctx context.Context, code string, from, to time.Time) ([]domain.Candle, error) {
		calls++
		return nil, nil
	})

	est, err := NewEstimator(src, newBucketer(t), tradingday.New(false, "", zap.NewNop()), 21, 60, zap.NewNop())
	require.NoError(t, err)

	averages, report := est.Compute(context.Background(), gold)

	require.Empty(t, averages)
	require.Equal(t, 60, report.Scanned)
	require.Equal(t, 60, calls)
	require.Zero(t, report.Collected)
	for _, day := range report.Days {
		require.Equal(t, DayNoData, day.Outcome)
	}
}

func TestComputeNeverRequestsToday(t *testing.T) {
	b := newBucketer(t)
	todayStart, _ := b.DayWindowUTC(b.Today())

	src := sourceFunc(func(ctx context.Context, code string, from, to time.Time) ([]domain.Candle, error) {
		require.False(t, to.After(todayStart),
			"baseline requested data past the start of today: %s", to)
		return []domain.Candle{candleAt(from.Add(time.Hour), 100, true)}, nil
	})

	est, err := NewEstimator(src, b, tradingday.New(false, "", zap.NewNop()), 5, 60, zap.NewNop())
	require.NoError(t, err)

	_, report := est.Compute(context.Background(), gold)
	require.Equal(t, 5, report.Collected)
}

func TestComputeAveragesPerBucket(t *testing.T) {
	// two collected days with 09:xx candles of 1000 and 2000 → mean 1500;
	// the incomplete candle contributes nothing
	src := sourceFunc(func(ctx context.Context, code string, from, to time.Time) ([]domain.Candle, error) {
		day := from
		return []domain.Candle{
			candleAt(day.Add(9*time.Hour), 1000, true),
			candleAt(day.Add(9*time.Hour+15*time.Minute), 2000, true),
			candleAt(day.Add(9*time.Hour+30*time.Minute), 99999, false),
			candleAt(day.Add(14*time.Hour), 500, true),
		}, nil
	})

	est, err := NewEstimator(src, newBucketer(t), tradingday.New(false, "", zap.NewNop()), 2, 60, zap.NewNop())
	require.NoError(t, err)

	averages, report := est.Compute(context.Background(), gold)
	require.Equal(t, 2, report.Collected)

	nine, ok := averages["09:00 AM–10:00 AM"]
	require.True(t, ok)
	require.True(t, nine.Equal(decimal.NewFromInt(1500)), "got %s", nine)

	two, ok := averages["02:00 PM–03:00 PM"]
	require.True(t, ok)
	require.True(t, two.Equal(decimal.NewFromInt(500)), "got %s", two)

	_, ok = averages["09:30 AM–10:30 AM"]
	require.False(t, ok)
}

func TestComputeSkipsWeekends(t *testing.T) {
	var fetched []time.Time
	src := sourceFunc(func(ctx context.Context, code string, from, to time.Time) ([]domain.Candle, error) {
		fetched = append(fetched, from)
		return []domain.Candle{candleAt(from.Add(time.Hour), 100, true)}, nil
	})

	est, err := NewEstimator(src, newBucketer(t), tradingday.New(true, "", zap.NewNop()), 10, 60, zap.NewNop())
	require.NoError(t, err)

	_, report := est.Compute(context.Background(), gold)
	require.Equal(t, 10, report.Collected)

	for _, from := range fetched {
		wd := from.Weekday()
		require.NotEqual(t, time.Saturday, wd)
		require.NotEqual(t, time.Sunday, wd)
	}

	skipped := 0
	for _, day := range report.Days {
		if day.Outcome == DayNonTrading {
			skipped++
		}
	}
	require.NotZero(t, skipped, "a 10-trading-day walk must cross at least one weekend")
}

func TestComputeFetchErrorDoesNotCountTowardQuota(t *testing.T) {
	calls := 0
	src := sourceFunc(func(ctx context.Context, code string, from, to time.Time) ([]domain.Candle, error) {
		calls++
		if calls <= 2 {
			return nil, errors.New("provider down")
		}
		return []domain.Candle{candleAt(from.Add(time.Hour), 100, true)}, nil
	})

	est, err := NewEstimator(src, newBucketer(t), tradingday.New(false, "", zap.NewNop()), 3, 60, zap.NewNop())
	require.NoError(t, err)

	averages, report := est.Compute(context.Background(), gold)

	require.Equal(t, 3, report.Collected)
	require.Equal(t, 5, report.Scanned)
	require.Equal(t, DayFetchError, report.Days[0].Outcome)
	require.Error(t, report.Days[0].Err)
	require.Len(t, averages, 1)
}

func TestNewEstimatorValidation(t *testing.T) {
	src := sourceFunc(func(ctx context.Context, code string, from, to time.Time) ([]domain.Candle, error) {
		return nil, nil
	})
	policy := tradingday.New(true, "", zap.NewNop())

	_, err := NewEstimator(src, newBucketer(t), policy, 0, 60, zap.NewNop())
	require.Error(t, err)

	_, err = NewEstimator(src, newBucketer(t), policy, 21, 10, zap.NewNop())
	require.Error(t, err)
}
