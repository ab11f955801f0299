// Package config loads watcher configuration from a YAML file with
// CLI-flag fallbacks, and credentials from the process environment.
package config

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/volspike/internal/domain"
	"gopkg.in/yaml.v3"
)

// Defaults match a conservative production setup; the multiplier in
// particular should only be lowered for testing.
const (
	defaultProvider        = "oanda"
	defaultGranularity     = "M15"
	defaultBucketMinutes   = 60
	defaultLookbackDays    = 21
	defaultMaxCalendarDays = 60
	defaultWindowMinutes   = 45
	defaultMultiplier      = "2.0"
	defaultTimezone        = "Asia/Kolkata"
	defaultOandaURL        = "https://api-fxpractice.oanda.com/v3"
)

// Config is the full, explicit configuration for one run. It is built
// once at startup and passed into components; nothing reads globals
// after this point.
type Config struct {
	// Provider selects the candle source: oanda, binance or bybit.
	Provider string
	// Instruments are the watched instruments in detection order.
	Instruments []domain.Instrument
	// Granularity is the candle granularity code (M1..H4, D).
	Granularity string
	// BucketMinutes is the time-bucket width.
	BucketMinutes int
	// LookbackDays is how many trading days feed the baseline.
	LookbackDays int
	// MaxCalendarDays hard-caps the baseline walk.
	MaxCalendarDays int
	// WindowMinutes is the trailing detection window.
	WindowMinutes int
	// Multiplier scales a bucket average into the spike threshold.
	Multiplier decimal.Decimal
	// SkipWeekends excludes Saturdays and Sundays from the baseline.
	SkipWeekends bool
	// CalendarMIC optionally names an exchange calendar (ISO 10383)
	// for holiday-aware trading-day detection.
	CalendarMIC string
	// EnableAlerts gates Telegram delivery.
	EnableAlerts bool
	// Timezone is the IANA display zone for bucketing and alerts.
	Timezone string
	// OandaURL is the OANDA REST base URL.
	OandaURL string
	// Setup requests the interactive config wizard instead of a run.
	Setup bool

	// credentials, read from the environment
	OandaAPIKey      string
	OandaAccountID   string
	BinanceAPIKey    string
	BinanceAPISecret string
	BybitAPIKey      string
	BybitAPISecret   string
	TelegramToken    string
	TelegramChatID   string
}

// ConfigTmp is the YAML representation before parsing and validation.
type ConfigTmp struct {
	Provider        string          `yaml:"provider,omitempty"`
	Instruments     []InstrumentTmp `yaml:"instruments"`
	Granularity     string          `yaml:"granularity,omitempty"`
	BucketMinutes   int             `yaml:"bucket_minutes,omitempty"`
	LookbackDays    int             `yaml:"lookback_days,omitempty"`
	MaxCalendarDays int             `yaml:"max_calendar_days,omitempty"`
	WindowMinutes   int             `yaml:"window_minutes,omitempty"`
	MultiplierStr   string          `yaml:"multiplier,omitempty"`
	SkipWeekends    *bool           `yaml:"skip_weekends,omitempty"`
	CalendarMIC     string          `yaml:"calendar,omitempty"`
	EnableAlerts    *bool           `yaml:"enable_alerts,omitempty"`
	Timezone        string          `yaml:"timezone,omitempty"`
	OandaURL        string          `yaml:"oanda_url,omitempty"`
}

// InstrumentTmp is one instrument entry in the YAML config.
type InstrumentTmp struct {
	Name string `yaml:"name"`
	Code string `yaml:"code"`
}

// Get reads flags, then either the YAML config or the CLI fallbacks, and
// finishes with credentials from the environment.
func Get() (Config, error) {
	configPath := flag.String("config", "", "path to yaml config")
	setup := flag.Bool("setup", false, "run the interactive configuration wizard")
	instrumentsFlag := flag.String("instruments", "", "instrument list, example: XAUUSD:XAU_USD,NAS100:NAS100_USD")
	multiplierFlag := flag.String("multiplier", defaultMultiplier, "spike threshold multiplier")
	lookbackFlag := flag.Int("lookback", defaultLookbackDays, "trading days used for the baseline")
	flag.Parse()

	if *setup {
		return Config{Setup: true}, nil
	}

	var (
		conf Config
		err  error
	)

	if *configPath != "" {
		conf, err = getYaml(*configPath)
	} else {
		conf, err = getFromCLI(*instrumentsFlag, *multiplierFlag, *lookbackFlag)
	}
	if err != nil {
		return Config{}, err
	}

	readCredentials(&conf)

	return conf, nil
}

func getFromCLI(instruments, multiplier string, lookback int) (Config, error) {
	conf := defaults()

	parsed, err := parseInstruments(instruments)
	if err != nil {
		return Config{}, fmt.Errorf("invalid --instruments provided, --instruments=%s: %w", instruments, err)
	}
	conf.Instruments = parsed

	conf.Multiplier, err = decimal.NewFromString(multiplier)
	if err != nil {
		return Config{}, fmt.Errorf("invalid --multiplier provided, --multiplier=%s", multiplier)
	}
	conf.LookbackDays = lookback

	return conf, validate(conf)
}

// FromFile loads a YAML config directly, bypassing flag parsing. Used
// after the setup wizard generates config.gen.yaml.
func FromFile(path string) (Config, error) {
	conf, err := getYaml(path)
	if err != nil {
		return Config{}, err
	}
	readCredentials(&conf)
	return conf, nil
}

func getYaml(path string) (Config, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var tmp ConfigTmp
	if err := yaml.Unmarshal(f, &tmp); err != nil {
		return Config{}, err
	}

	conf := defaults()

	if tmp.Provider != "" {
		conf.Provider = tmp.Provider
	}
	if tmp.Granularity != "" {
		conf.Granularity = tmp.Granularity
	}
	if tmp.BucketMinutes != 0 {
		conf.BucketMinutes = tmp.BucketMinutes
	}
	if tmp.LookbackDays != 0 {
		conf.LookbackDays = tmp.LookbackDays
	}
	if tmp.MaxCalendarDays != 0 {
		conf.MaxCalendarDays = tmp.MaxCalendarDays
	}
	if tmp.WindowMinutes != 0 {
		conf.WindowMinutes = tmp.WindowMinutes
	}
	if tmp.SkipWeekends != nil {
		conf.SkipWeekends = *tmp.SkipWeekends
	}
	if tmp.EnableAlerts != nil {
		conf.EnableAlerts = *tmp.EnableAlerts
	}
	if tmp.Timezone != "" {
		conf.Timezone = tmp.Timezone
	}
	if tmp.OandaURL != "" {
		conf.OandaURL = tmp.OandaURL
	}
	conf.CalendarMIC = tmp.CalendarMIC

	if tmp.MultiplierStr != "" {
		multiplier, err := decimal.NewFromString(tmp.MultiplierStr)
		if err != nil {
			return Config{}, fmt.Errorf("incorrect 'multiplier' param in yaml config (must be a decimal), error: %w", err)
		}
		conf.Multiplier = multiplier
	}

	for _, inst := range tmp.Instruments {
		if inst.Name == "" || inst.Code == "" {
			return Config{}, fmt.Errorf("incorrect instrument entry in yaml config: name=%q code=%q", inst.Name, inst.Code)
		}
		conf.Instruments = append(conf.Instruments, domain.Instrument{Name: inst.Name, Code: inst.Code})
	}

	return conf, validate(conf)
}

func defaults() Config {
	multiplier, _ := decimal.NewFromString(defaultMultiplier)

	return Config{
		Provider:        defaultProvider,
		Granularity:     defaultGranularity,
		BucketMinutes:   defaultBucketMinutes,
		LookbackDays:    defaultLookbackDays,
		MaxCalendarDays: defaultMaxCalendarDays,
		WindowMinutes:   defaultWindowMinutes,
		Multiplier:      multiplier,
		SkipWeekends:    true,
		EnableAlerts:    true,
		Timezone:        defaultTimezone,
		OandaURL:        defaultOandaURL,
	}
}

func validate(conf Config) error {
	if len(conf.Instruments) == 0 {
		return fmt.Errorf("no instruments configured")
	}
	if conf.Multiplier.IsNegative() {
		return fmt.Errorf("multiplier must be non-negative, got %s", conf.Multiplier)
	}
	if conf.LookbackDays <= 0 {
		return fmt.Errorf("lookback_days must be positive, got %d", conf.LookbackDays)
	}
	if conf.MaxCalendarDays < conf.LookbackDays {
		return fmt.Errorf("max_calendar_days %d is below lookback_days %d", conf.MaxCalendarDays, conf.LookbackDays)
	}
	if conf.WindowMinutes <= 0 {
		return fmt.Errorf("window_minutes must be positive, got %d", conf.WindowMinutes)
	}

	switch conf.Provider {
	case "oanda", "binance", "bybit":
	default:
		return fmt.Errorf("unsupported provider %q", conf.Provider)
	}

	return nil
}

// parseInstruments parses "NAME:CODE,NAME:CODE"; a bare code is allowed
// and doubles as the display name.
func parseInstruments(s string) ([]domain.Instrument, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("empty instrument list")
	}

	var result []domain.Instrument
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		parts := strings.SplitN(entry, ":", 2)
		if len(parts) == 1 {
			result = append(result, domain.Instrument{Name: parts[0], Code: parts[0]})
			continue
		}
		if parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("invalid instrument entry %q", entry)
		}
		result = append(result, domain.Instrument{Name: parts[0], Code: parts[1]})
	}

	return result, nil
}

func readCredentials(conf *Config) {
	conf.OandaAPIKey = os.Getenv("OANDA_API_KEY")
	conf.OandaAccountID = os.Getenv("OANDA_ACCOUNT_ID")
	conf.BinanceAPIKey = os.Getenv("BINANCE_API_KEY")
	conf.BinanceAPISecret = os.Getenv("BINANCE_API_SECRET")
	conf.BybitAPIKey = os.Getenv("BYBIT_API_KEY")
	conf.BybitAPISecret = os.Getenv("BYBIT_API_SECRET")
	conf.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	conf.TelegramChatID = os.Getenv("TELEGRAM_CHAT_ID")
}
