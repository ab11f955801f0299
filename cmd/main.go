// Command volspike scans configured instruments for intraday volume
// spikes against a per-bucket historical baseline and sends a single
// aggregated Telegram alert when spikes are found.
//
// Usage:
//
//	volspike --config config.yaml
//	volspike --setup (interactive configuration wizard)
//	volspike --instruments Gold:XAU_USD --multiplier 2.5
//
// Required environment variables:
//
//	For OANDA: OANDA_API_KEY, OANDA_ACCOUNT_ID
//	For Binance: BINANCE_API_KEY, BINANCE_API_SECRET
//	For Bybit: BYBIT_API_KEY, BYBIT_API_SECRET
//	For alerts: TELEGRAM_BOT_TOKEN, TELEGRAM_CHAT_ID
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/vadiminshakov/volspike/config"
	"github.com/vadiminshakov/volspike/internal"
	"github.com/vadiminshakov/volspike/internal/setup"
)

func main() {
	// .env is optional; real environments set variables directly
	_ = godotenv.Load()

	conf, err := config.Get()
	if err != nil {
		log.Fatal(err)
	}

	if conf.Setup {
		if err := setup.RunTUI(); err != nil {
			log.Fatal(err)
		}
		conf, err = config.FromFile("config.gen.yaml")
		if err != nil {
			log.Fatal(err)
		}
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	watcher, err := internal.NewSpikeWatcherFromConfig(conf, logger)
	if err != nil {
		logger.Fatal("failed to build spike watcher", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	spikes, err := watcher.Run(ctx)
	if err != nil {
		logger.Fatal("volume check failed", zap.Error(err))
	}

	if len(spikes) == 0 {
		logger.Info("no volume spikes detected")
	}
}
