package setup

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/volspike/config"
	"gopkg.in/yaml.v3"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

// RunTUI launches the terminal configuration wizard.
func RunTUI() error {
	var (
		provider       string
		instrumentsStr string
		granularity    string
		bucketStr      string
		multiplierStr  string
		lookbackStr    string
		windowStr      string
		timezone       string
		calendarMIC    string
		skipWeekends   bool
		enableAlerts   bool
		confirm        bool
	)

	// defaults
	granularity = "M15"
	bucketStr = "60"
	multiplierStr = "2.0"
	lookbackStr = "21"
	windowStr = "45"
	timezone = "Asia/Kolkata"
	skipWeekends = true
	enableAlerts = true

	// step 1: welcome + provider
	fmt.Print("\033[H\033[2J") // Clear screen
	fmt.Println(headerStyle.Render("VOLSPIKE CONFIG WIZARD"))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Let's get your volume watcher set up.\n"))

	fmt.Println(stepStyle.Render("STEP 1: DATA PROVIDER"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Choose your candle data provider").
				Options(
					huh.NewOption("OANDA", "oanda"),
					huh.NewOption("Binance", "binance"),
					huh.NewOption("Bybit", "bybit"),
				).
				Value(&provider),
		),
	).Run()
	if err != nil {
		return err
	}

	// instruments
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("VOLSPIKE CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 2: INSTRUMENTS"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Instruments to watch").
				Description("Comma-separated NAME:CODE pairs (e.g. Gold:XAU_USD,EUR/USD:EUR_USD)").
				Value(&instrumentsStr).
				Validate(validateInstruments),
		),
	).Run()
	if err != nil {
		return err
	}

	// candles and buckets
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("VOLSPIKE CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 3: CANDLES"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Candle Granularity").
				Options(
					huh.NewOption("1 minute", "M1"),
					huh.NewOption("5 minutes", "M5"),
					huh.NewOption("15 minutes", "M15"),
					huh.NewOption("30 minutes", "M30"),
					huh.NewOption("1 hour", "H1"),
				).
				Value(&granularity),
			huh.NewInput().
				Title("Bucket Width (minutes)").
				Description("Must divide 60 evenly (e.g. 15, 30, 60)").
				Value(&bucketStr).
				Validate(validateBucket),
			huh.NewInput().
				Title("Display Timezone").
				Description("IANA name (e.g. Asia/Kolkata, America/New_York)").
				Value(&timezone).
				Validate(func(s string) error {
					_, err := time.LoadLocation(s)
					return err
				}),
		),
	).Run()
	if err != nil {
		return err
	}

	// detection settings
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("VOLSPIKE CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 4: DETECTION"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Spike Multiplier").
				Description("Alert when volume exceeds average x multiplier (e.g. 2.0)").
				Value(&multiplierStr).
				Validate(validateMultiplier),
			huh.NewInput().
				Title("Baseline Lookback (trading days)").
				Value(&lookbackStr).
				Validate(validatePositiveInt),
			huh.NewInput().
				Title("Detection Window (minutes)").
				Value(&windowStr).
				Validate(validatePositiveInt),
			huh.NewConfirm().
				Title("Skip weekends when building the baseline?").
				Value(&skipWeekends),
			huh.NewInput().
				Title("Exchange Calendar MIC").
				Description("Optional holiday calendar (e.g. XNYS, XNSE); empty for weekends only").
				Value(&calendarMIC),
		),
	).Run()
	if err != nil {
		return err
	}

	// alerts
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("VOLSPIKE CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 5: ALERTS"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Send Telegram alerts?").
				Description("Requires TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID in the environment").
				Value(&enableAlerts),
		),
	).Run()
	if err != nil {
		return err
	}

	// confirmation
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("VOLSPIKE CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("FINAL CONFIRMATION"))

	summary := fmt.Sprintf(
		"Provider: %s\nInstruments: %s\nGranularity: %s\nBucket: %s min\nMultiplier: x%s\nLookback: %s days\nWindow: %s min\nTimezone: %s\nAlerts: %t\n",
		provider, instrumentsStr, granularity, bucketStr, multiplierStr, lookbackStr, windowStr, timezone, enableAlerts,
	)
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(summary))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save Configuration?").
				Affirmative("Yes, save and start").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}

	if !confirm {
		return fmt.Errorf("setup cancelled by user")
	}

	bucketMinutes, _ := strconv.Atoi(bucketStr)
	lookbackDays, _ := strconv.Atoi(lookbackStr)
	windowMinutes, _ := strconv.Atoi(windowStr)

	cfgTmp := config.ConfigTmp{
		Provider:      provider,
		Instruments:   parseInstrumentsTmp(instrumentsStr),
		Granularity:   granularity,
		BucketMinutes: bucketMinutes,
		LookbackDays:  lookbackDays,
		WindowMinutes: windowMinutes,
		MultiplierStr: multiplierStr,
		SkipWeekends:  &skipWeekends,
		CalendarMIC:   strings.ToLower(strings.TrimSpace(calendarMIC)),
		EnableAlerts:  &enableAlerts,
		Timezone:      timezone,
	}

	data, err := yaml.Marshal(cfgTmp)
	if err != nil {
		return fmt.Errorf("failed to generate yaml: %w", err)
	}

	// write to config.gen.yaml
	filename := "config.gen.yaml"
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to save config file: %w", err)
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render(fmt.Sprintf("\n✓ Configuration saved to %s\nStarting watcher...", filename)))
	time.Sleep(1500 * time.Millisecond) // small pause to read success message
	return nil
}

func parseInstrumentsTmp(s string) []config.InstrumentTmp {
	var out []config.InstrumentTmp
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, code, found := strings.Cut(part, ":")
		if !found {
			code = name
		}
		out = append(out, config.InstrumentTmp{
			Name: strings.TrimSpace(name),
			Code: strings.TrimSpace(code),
		})
	}
	return out
}

func validateInstruments(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("at least one instrument is required")
	}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if _, code, found := strings.Cut(part, ":"); found && strings.TrimSpace(code) == "" {
			return fmt.Errorf("instrument %q has an empty code", part)
		}
	}
	return nil
}

func validateBucket(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("must be a whole number")
	}
	if n <= 0 || 60%n != 0 {
		return fmt.Errorf("must divide 60 evenly")
	}
	return nil
}

func validateMultiplier(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("must be a valid number")
	}
	if d.IsNegative() {
		return fmt.Errorf("must not be negative")
	}
	return nil
}

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("must be a whole number")
	}
	if n <= 0 {
		return fmt.Errorf("must be greater than zero")
	}
	return nil
}
