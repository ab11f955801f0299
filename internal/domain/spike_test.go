package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestCandleSentiment(t *testing.T) {
	tests := []struct {
		name     string
		open     string
		close    string
		expected Sentiment
	}{
		{
			name:     "close above open is bullish",
			open:     "100",
			close:    "105",
			expected: SentimentBullish,
		},
		{
			name:     "close below open is bearish",
			open:     "100",
			close:    "95",
			expected: SentimentBearish,
		},
		{
			name:     "close equal to open is neutral",
			open:     "100",
			close:    "100",
			expected: SentimentNeutral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			open, err := decimal.NewFromString(tt.open)
			require.NoError(t, err)
			closePrice, err := decimal.NewFromString(tt.close)
			require.NoError(t, err)

			c := Candle{Open: open, Close: closePrice}
			require.Equal(t, tt.expected, c.Sentiment())
		})
	}
}

func TestNewSpikeRecord(t *testing.T) {
	// baseline avg 1000 with multiplier 2.0 gives threshold 2000;
	// a 2500-volume candle is 1.25x the bar with 500 excess.
	average := decimal.NewFromInt(1000)
	threshold := decimal.NewFromInt(2000)

	candle := Candle{
		OpenTime: time.Date(2026, 3, 2, 4, 15, 0, 0, time.UTC),
		Open:     decimal.NewFromInt(10),
		Close:    decimal.NewFromInt(12),
		Volume:   2500,
		Complete: true,
	}

	record := NewSpikeRecord("XAUUSD", "09:00 AM–10:00 AM", candle.OpenTime, candle, average, threshold)

	require.Equal(t, "XAUUSD", record.Instrument)
	require.Equal(t, int64(2500), record.Volume)
	require.True(t, record.Multiplier.Equal(decimal.NewFromFloat(1.25)),
		"expected multiplier 1.25, got %s", record.Multiplier)
	require.Equal(t, int64(500), record.Excess)
	require.Equal(t, SentimentBullish, record.Sentiment)
}

func TestNewSpikeRecordFractionalThreshold(t *testing.T) {
	// excess uses the threshold floor, matching volume - int(threshold)
	average, err := decimal.NewFromString("333.4")
	require.NoError(t, err)
	threshold, err := decimal.NewFromString("666.8")
	require.NoError(t, err)

	candle := Candle{Volume: 700, Open: decimal.NewFromInt(5), Close: decimal.NewFromInt(4)}

	record := NewSpikeRecord("US30", "10:00 AM–11:00 AM", time.Now(), candle, average, threshold)

	require.Equal(t, int64(700-666), record.Excess)
	require.Equal(t, SentimentBearish, record.Sentiment)
}
