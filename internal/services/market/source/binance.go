package source

import (
	"context"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/volspike/internal/domain"
)

const binanceKlineLimit = 1000

// BinanceSource fetches klines from Binance spot. Useful when the watched
// instruments are crypto pairs rather than OANDA CFDs.
type BinanceSource struct {
	client   *binance.Client
	interval string
}

// NewBinanceSource creates a Binance candle source. granularity uses the
// same codes as the OANDA source (M1, M5, M15, M30, H1, H4, D).
func NewBinanceSource(client *binance.Client, granularity string) (*BinanceSource, error) {
	interval, err := intervalForBinance(granularity)
	if err != nil {
		return nil, err
	}

	return &BinanceSource{client: client, interval: interval}, nil
}

// Candles fetches klines for the symbol over [from, to). Binance reports
// the still-forming kline too, so completeness is derived from CloseTime.
func (s *BinanceSource) Candles(ctx context.Context, code string, from, to time.Time) ([]domain.Candle, error) {
	from, to = clipToNow(from, to)

	klines, err := s.client.NewKlinesService().
		Symbol(code).
		Interval(s.interval).
		StartTime(from.UnixMilli()).
		EndTime(to.UnixMilli()).
		Limit(binanceKlineLimit).
		Do(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch klines from Binance for %s", code)
	}

	now := time.Now().UTC()

	result := make([]domain.Candle, 0, len(klines))
	for i, k := range klines {
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

		closeTime := time.Unix(0, k.CloseTime*int64(time.Millisecond)).UTC()

		result = append(result, domain.Candle{
			OpenTime: time.Unix(0, k.OpenTime*int64(time.Millisecond)).UTC(),
			Open:     open,
			High:     high,
			Low:      low,
			Close:    closePrice,
			Volume:   volume.IntPart(),
			Complete: closeTime.Before(now),
		})
	}

	return result, nil
}

func intervalForBinance(granularity string) (string, error) {
	switch granularity {
	case "M1":
		return "1m", nil
	case "M5":
		return "5m", nil
	case "M15":
		return "15m", nil
	case "M30":
		return "30m", nil
	case "H1":
		return "1h", nil
	case "H4":
		return "4h", nil
	case "D":
		return "1d", nil
	default:
		return "", errors.Errorf("unsupported granularity for Binance: %q", granularity)
	}
}
