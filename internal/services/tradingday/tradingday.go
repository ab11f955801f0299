// Package tradingday decides which calendar days count as trading days
// for the baseline walk.
package tradingday

import (
	"time"

	"github.com/scmhub/calendar"
	"go.uber.org/zap"
)

// Policy answers whether a given date is a trading day. With a configured
// exchange calendar (ISO 10383 MIC code, e.g. "xnys") it also excludes
// exchange holidays; otherwise it falls back to plain weekend skipping.
type Policy struct {
	skipWeekends bool
	cal          *calendar.Calendar
}

// New creates a Policy. mic may be empty, in which case only the weekend
// rule applies. An unknown MIC degrades to the weekend rule with a warning
// rather than failing the run.
func New(skipWeekends bool, mic string, logger *zap.Logger) *Policy {
	p := &Policy{skipWeekends: skipWeekends}

	if mic == "" {
		return p
	}

	cal := calendar.GetCalendar(mic)
	if cal == nil {
		logger.Warn("unknown exchange calendar, falling back to weekend rule", zap.String("mic", mic))
		return p
	}

	p.cal = cal
	return p
}

// IsTradingDay reports whether date falls on a trading day under this policy.
func (p *Policy) IsTradingDay(date time.Time) bool {
	if p.cal != nil {
		return p.cal.IsBusinessDay(date)
	}

	if !p.skipWeekends {
		return true
	}

	wd := date.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}
