package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/volspike/internal/domain"
	"github.com/vadiminshakov/volspike/pkg/retrier"
	"go.uber.org/zap"
)

const oandaTimeout = 20 * time.Second

// candleTimeLayouts are the timestamp encodings OANDA has been observed to
// emit. A candle whose timestamp matches none of them is skipped, not fatal.
var candleTimeLayouts = []string{
	"2006-01-02T15:04:05.000000000Z",
	"2006-01-02T15:04:05.000Z",
	time.RFC3339,
}

// OandaSource fetches mid-price candles from the OANDA v3 REST API.
type OandaSource struct {
	baseURL     string
	accountID   string
	apiKey      string
	granularity string
	httpClient  *http.Client
	retrier     *retrier.Retrier
	logger      *zap.Logger
}

// oandaCandle mirrors one element of the candles array in the API response.
type oandaCandle struct {
	Complete bool      `json:"complete"`
	Volume   int64     `json:"volume"`
	Time     string    `json:"time"`
	Mid      oandaMids `json:"mid"`
}

type oandaMids struct {
	O string `json:"o"`
	H string `json:"h"`
	L string `json:"l"`
	C string `json:"c"`
}

type oandaCandlesResponse struct {
	Candles []oandaCandle `json:"candles"`
}

// NewOandaSource creates an OANDA candle source. granularity is the OANDA
// granularity code, e.g. M15.
func NewOandaSource(baseURL, accountID, apiKey, granularity string, logger *zap.Logger) *OandaSource {
	return &OandaSource{
		baseURL:     baseURL,
		accountID:   accountID,
		apiKey:      apiKey,
		granularity: granularity,
		httpClient:  &http.Client{Timeout: oandaTimeout},
		retrier: retrier.New(
			retrier.WithMaxRetries(2),
			retrier.WithInitialInterval(500*time.Millisecond),
		),
		logger: logger,
	}
}

// Candles fetches candles for the instrument code over [from, to), both
// clipped to the current UTC time.
func (s *OandaSource) Candles(ctx context.Context, code string, from, to time.Time) ([]domain.Candle, error) {
	from, to = clipToNow(from, to)

	body, err := retrier.DoWithData(s.retrier, ctx, func(ctx context.Context) (*oandaCandlesResponse, error) {
		return s.fetch(ctx, code, from, to)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch candles from OANDA for %s", code)
	}

	candles := make([]domain.Candle, 0, len(body.Candles))
	for _, c := range body.Candles {
		openTime, err := parseCandleTime(c.Time)
		if err != nil {
			s.logger.Warn("skipping candle with unparseable timestamp",
				zap.String("instrument", code), zap.String("time", c.Time))
			continue
		}

		open, err := decimal.NewFromString(c.Mid.O)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse open price %q", c.Mid.O)
		}
		high, err := decimal.NewFromString(c.Mid.H)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse high price %q", c.Mid.H)
		}
		low, err := decimal.NewFromString(c.Mid.L)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse low price %q", c.Mid.L)
		}
		closePrice, err := decimal.NewFromString(c.Mid.C)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse close price %q", c.Mid.C)
		}

		candles = append(candles, domain.Candle{
			OpenTime: openTime,
			Open:     open,
			High:     high,
			Low:      low,
			Close:    closePrice,
			Volume:   c.Volume,
			Complete: c.Complete,
		})
	}

	return candles, nil
}

func (s *OandaSource) fetch(ctx context.Context, code string, from, to time.Time) (*oandaCandlesResponse, error) {
	q := url.Values{}
	q.Set("granularity", s.granularity)
	q.Set("price", "M")
	q.Set("from", from.Format(time.RFC3339))
	q.Set("to", to.Format(time.RFC3339))

	u := fmt.Sprintf("%s/accounts/%s/instruments/%s/candles?%s", s.baseURL, s.accountID, code, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.Errorf("oanda returned status %d: %s", resp.StatusCode, payload)
	}

	var body oandaCandlesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errors.Wrap(err, "failed to decode candles response")
	}

	return &body, nil
}

// parseCandleTime tries each known timestamp layout in turn.
func parseCandleTime(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range candleTimeLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, errors.Wrapf(lastErr, "unrecognized candle timestamp %q", value)
}
