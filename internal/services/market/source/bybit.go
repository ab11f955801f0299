package source

import (
	"context"
	"strconv"
	"time"

	bybit "github.com/hirokisan/bybit/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/volspike/internal/domain"
)

const bybitKlineLimit = 200

// BybitSource fetches klines from the Bybit V5 spot market API.
type BybitSource struct {
	client      *bybit.Client
	interval    bybit.Interval
	intervalDur time.Duration
}

// NewBybitSource creates a Bybit candle source.
func NewBybitSource(client *bybit.Client, granularity string) (*BybitSource, error) {
	interval, dur, err := intervalForBybit(granularity)
	if err != nil {
		return nil, err
	}

	return &BybitSource{client: client, interval: interval, intervalDur: dur}, nil
}

// Candles fetches klines for the symbol over [from, to). Bybit does not
// flag completeness, so a candle is complete once its interval has elapsed.
func (s *BybitSource) Candles(ctx context.Context, code string, from, to time.Time) ([]domain.Candle, error) {
	from, to = clipToNow(from, to)

	start := from.UnixMilli()
	end := to.UnixMilli()
	limit := bybitKlineLimit

	result, err := s.client.V5().Market().GetKline(bybit.V5GetKlineParam{
		Category: bybit.CategoryV5Spot,
		Symbol:   bybit.SymbolV5(code),
		Interval: s.interval,
		Start:    &start,
		End:      &end,
		Limit:    &limit,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch klines from Bybit for %s", code)
	}
	if result == nil {
		return nil, errors.Errorf("empty result from Bybit API for %s", code)
	}

	now := time.Now().UTC()

	candles := make([]domain.Candle, 0, len(result.Result.List))
	for i, k := range result.Result.List {
		openTime, err := parseBybitTimestamp(k.StartTime)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse start time at index %d", i)
		}

		open, err := decimal.NewFromString(k.Open)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse open price at index %d", i)
		}
		high, err := decimal.NewFromString(k.High)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse high price at index %d", i)
		}
		low, err := decimal.NewFromString(k.Low)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse low price at index %d", i)
		}
		closePrice, err := decimal.NewFromString(k.Close)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse close price at index %d", i)
		}
		volume, err := decimal.NewFromString(k.Volume)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse volume at index %d", i)
		}

		candles = append(candles, domain.Candle{
			OpenTime: openTime,
			Open:     open,
			High:     high,
			Low:      low,
			Close:    closePrice,
			Volume:   volume.IntPart(),
			Complete: !openTime.Add(s.intervalDur).After(now),
		})
	}

	return candles, nil
}

// parseBybitTimestamp converts a millisecond epoch string to UTC time.
func parseBybitTimestamp(ts string) (time.Time, error) {
	if ts == "" {
		return time.Time{}, errors.New("empty timestamp")
	}

	ms, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "invalid timestamp %q", ts)
	}

	return time.Unix(0, ms*int64(time.Millisecond)).UTC(), nil
}

func intervalForBybit(granularity string) (bybit.Interval, time.Duration, error) {
	switch granularity {
	case "M1":
		return bybit.Interval("1"), time.Minute, nil
	case "M5":
		return bybit.Interval("5"), 5 * time.Minute, nil
	case "M15":
		return bybit.Interval("15"), 15 * time.Minute, nil
	case "M30":
		return bybit.Interval("30"), 30 * time.Minute, nil
	case "H1":
		return bybit.Interval("60"), time.Hour, nil
	case "H4":
		return bybit.Interval("240"), 4 * time.Hour, nil
	case "D":
		return bybit.Interval("D"), 24 * time.Hour, nil
	default:
		return "", 0, errors.Errorf("unsupported granularity for Bybit: %q", granularity)
	}
}
