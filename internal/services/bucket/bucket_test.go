package bucket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewRejectsInvalidWidth(t *testing.T) {
	tests := []struct {
		name      string
		width     int
		shouldErr bool
	}{
		{name: "60 minutes", width: 60, shouldErr: false},
		{name: "30 minutes", width: 30, shouldErr: false},
		{name: "15 minutes", width: 15, shouldErr: false},
		{name: "5 minutes", width: 5, shouldErr: false},
		{name: "zero width", width: 0, shouldErr: true},
		{name: "negative width", width: -15, shouldErr: true},
		{name: "does not divide the hour", width: 45, shouldErr: true},
		{name: "wider than an hour", width: 90, shouldErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.width, "Asia/Kolkata")
			if tt.shouldErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestNewRejectsUnknownZone(t *testing.T) {
	_, err := New(60, "Nowhere/Nowhere")
	require.Error(t, err)
}

func TestLabelIgnoresCalendarDate(t *testing.T) {
	b, err := New(60, "Asia/Kolkata")
	require.NoError(t, err)

	// 04:05 UTC is 09:35 IST; same time of day two weeks apart must land
	// in the same bucket.
	t1 := time.Date(2026, 3, 2, 4, 5, 0, 0, time.UTC)
	t2 := time.Date(2026, 3, 16, 4, 5, 0, 0, time.UTC)

	require.Equal(t, b.Label(t1), b.Label(t2))
	require.Equal(t, "09:00 AM–10:00 AM", b.Label(t1))
}

func TestLabelStableWithinWindow(t *testing.T) {
	b, err := New(15, "Asia/Kolkata")
	require.NoError(t, err)

	// 09:30:00 and 09:44:59 IST share the 09:30–09:45 bucket.
	t1 := time.Date(2026, 3, 2, 4, 0, 0, 0, time.UTC)
	t2 := time.Date(2026, 3, 2, 4, 14, 59, 0, time.UTC)
	next := time.Date(2026, 3, 2, 4, 15, 0, 0, time.UTC)

	require.Equal(t, b.Label(t1), b.Label(t2))
	require.NotEqual(t, b.Label(t1), b.Label(next))
	require.Equal(t, "09:30 AM–09:45 AM", b.Label(t1))
	require.Equal(t, "09:45 AM–10:00 AM", b.Label(next))
}

func TestLabelBucketStartsAreWidthMultiples(t *testing.T) {
	widths := []int{5, 10, 15, 20, 30, 60}

	for _, w := range widths {
		b, err := New(w, "UTC")
		require.NoError(t, err)

		for minute := 0; minute < 60; minute++ {
			ts := time.Date(2026, 3, 2, 13, minute, 30, 0, time.UTC)
			label := b.Label(ts)

			start, err := time.Parse("03:04 PM", label[:8])
			require.NoError(t, err)
			require.Zero(t, start.Minute()%w,
				"width %d minute %d produced label %q", w, minute, label)
			// the bucket start never spills into another hour
			require.Equal(t, 13, start.Hour(), label)
		}
	}
}

func TestLabelCrossesMidnight(t *testing.T) {
	b, err := New(60, "Asia/Kolkata")
	require.NoError(t, err)

	// 18:30 UTC is 00:00 IST, start of the first bucket of the day.
	ts := time.Date(2026, 3, 2, 18, 30, 0, 0, time.UTC)
	require.Equal(t, "12:00 AM–01:00 AM", b.Label(ts))
}

func TestDayWindowUTC(t *testing.T) {
	b, err := New(60, "Asia/Kolkata")
	require.NoError(t, err)

	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	start, end := b.DayWindowUTC(day)

	// IST is UTC+5:30, so the IST day starts at 18:30 UTC the day before.
	require.Equal(t, time.Date(2026, 3, 1, 18, 30, 0, 0, time.UTC), start)
	require.Equal(t, time.Date(2026, 3, 2, 18, 30, 0, 0, time.UTC), end)
	require.Equal(t, 24*time.Hour, end.Sub(start))
}
