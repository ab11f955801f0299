package internal

import (
	"time"

	binance "github.com/adshao/go-binance/v2"
	bybit "github.com/hirokisan/bybit/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vadiminshakov/volspike/config"
	"github.com/vadiminshakov/volspike/internal/services/baseline"
	"github.com/vadiminshakov/volspike/internal/services/bucket"
	"github.com/vadiminshakov/volspike/internal/services/detector"
	"github.com/vadiminshakov/volspike/internal/services/market/source"
	"github.com/vadiminshakov/volspike/internal/services/notifier"
	"github.com/vadiminshakov/volspike/internal/services/tradingday"
)

// NewSpikeWatcherFromConfig builds the full watcher from configuration.
// Missing credentials for the selected provider or for enabled alerts
// fail here, before any network call is made.
func NewSpikeWatcherFromConfig(conf config.Config, logger *zap.Logger) (*SpikeWatcher, error) {
	bucketer, err := bucket.New(conf.BucketMinutes, conf.Timezone)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create bucketer")
	}

	src, err := newCandleSource(conf, logger)
	if err != nil {
		return nil, err
	}

	policy := tradingday.New(conf.SkipWeekends, conf.CalendarMIC, logger)

	estimator, err := baseline.NewEstimator(src, bucketer, policy,
		conf.LookbackDays, conf.MaxCalendarDays, logger)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create baseline estimator")
	}

	det, err := detector.New(src, bucketer, conf.Multiplier,
		time.Duration(conf.WindowMinutes)*time.Minute, logger)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create detector")
	}

	var notif notifier.Notifier
	if conf.EnableAlerts {
		telegram, err := notifier.NewTelegram(conf.TelegramToken, conf.TelegramChatID)
		if err != nil {
			return nil, errors.Wrap(err, "alerts are enabled but telegram is not configured")
		}
		notif = telegram
	}

	return NewSpikeWatcher(estimator, det, notif, conf.Instruments, conf.EnableAlerts, logger), nil
}

func newCandleSource(conf config.Config, logger *zap.Logger) (source.CandleSource, error) {
	switch conf.Provider {
	case "oanda":
		if conf.OandaAPIKey == "" || conf.OandaAccountID == "" {
			return nil, errors.New("OANDA_API_KEY and OANDA_ACCOUNT_ID environment variables must be set")
		}
		return source.NewOandaSource(conf.OandaURL, conf.OandaAccountID, conf.OandaAPIKey,
			conf.Granularity, logger), nil
	case "binance":
		return source.NewBinanceSource(binance.NewClient(conf.BinanceAPIKey, conf.BinanceAPISecret),
			conf.Granularity)
	case "bybit":
		return source.NewBybitSource(bybit.NewClient().WithAuth(conf.BybitAPIKey, conf.BybitAPISecret),
			conf.Granularity)
	default:
		return nil, errors.Errorf("unsupported provider %q", conf.Provider)
	}
}
