// Package bucket maps timestamps to fixed-width time-of-day buckets in a
// display time zone. All UTC/display-zone conversions in the watcher go
// through this package so zone handling lives in one place.
package bucket

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

const labelLayout = "03:04 PM"

// Bucketer assigns timestamps to recurring daily time buckets.
// Bucket identity is time-of-day only: two timestamps on different
// calendar dates that share a bucket produce identical labels, which is
// what lets one day's volume be compared against another day's.
type Bucketer struct {
	width time.Duration
	loc   *time.Location
}

// New creates a Bucketer with the given bucket width in minutes and IANA
// display zone name. The width must divide an hour evenly so that
// flooring the minute never crosses an hour boundary.
func New(widthMinutes int, zone string) (*Bucketer, error) {
	if widthMinutes <= 0 || widthMinutes > 60 || 60%widthMinutes != 0 {
		return nil, errors.Errorf("bucket width must divide 60 minutes, got %d", widthMinutes)
	}

	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, errors.Wrapf(err, "unknown display time zone %q", zone)
	}

	return &Bucketer{
		width: time.Duration(widthMinutes) * time.Minute,
		loc:   loc,
	}, nil
}

// Label returns the bucket label for t, rendered as a 12-hour clock
// "start–end" range in the display zone.
func (b *Bucketer) Label(t time.Time) string {
	lt := t.In(b.loc)

	widthMinutes := int(b.width / time.Minute)
	startMinute := (lt.Minute() / widthMinutes) * widthMinutes

	start := time.Date(lt.Year(), lt.Month(), lt.Day(), lt.Hour(), startMinute, 0, 0, b.loc)
	end := start.Add(b.width)

	return fmt.Sprintf("%s–%s", start.Format(labelLayout), end.Format(labelLayout))
}

// Localize converts t into the display zone.
func (b *Bucketer) Localize(t time.Time) time.Time {
	return t.In(b.loc)
}

// Today returns midnight of the current date in the display zone.
func (b *Bucketer) Today() time.Time {
	now := time.Now().In(b.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, b.loc)
}

// DayWindowUTC returns the UTC window covering the full display-zone
// calendar day that contains day. Day boundaries are computed in the
// display zone first so DST transitions cannot shift the window.
func (b *Bucketer) DayWindowUTC(day time.Time) (time.Time, time.Time) {
	ld := day.In(b.loc)
	start := time.Date(ld.Year(), ld.Month(), ld.Day(), 0, 0, 0, 0, b.loc)
	end := time.Date(ld.Year(), ld.Month(), ld.Day()+1, 0, 0, 0, 0, b.loc)
	return start.UTC(), end.UTC()
}
