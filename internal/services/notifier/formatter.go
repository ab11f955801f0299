package notifier

import (
	"fmt"
	"strings"

	"github.com/vadiminshakov/volspike/internal/domain"
)

const alertHeader = "⚡ *VOLUME SPIKE ALERT* ⚡"

// Format renders all spike records of a run into one aggregated Markdown
// message, one block per record.
func Format(records []domain.SpikeRecord) string {
	if len(records) == 0 {
		return ""
	}

	blocks := make([]string, 0, len(records)+1)
	blocks = append(blocks, alertHeader)

	for _, r := range records {
		blocks = append(blocks, fmt.Sprintf(
			"🔍 *%s*\n"+
				"🕒 Time: %s\n"+
				"📅 Date: %s\n"+
				"📊 Volume: %s (+%s)\n"+
				"📈 Multiplier: ×%s\n"+
				"💹 Sentiment: %s\n"+
				"⏰ Bucket: %s",
			r.Instrument,
			r.Time.Format("03:04 PM"),
			r.Time.Format("2006-01-02"),
			groupDigits(r.Volume),
			groupDigits(r.Excess),
			r.Multiplier.StringFixed(2),
			r.Sentiment.Marker(),
			r.Bucket,
		))
	}

	return strings.Join(blocks, "\n\n")
}

// groupDigits renders n with thousands separators, e.g. 1234567 → 1,234,567.
func groupDigits(n int64) string {
	s := fmt.Sprintf("%d", n)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign = "-"
		s = s[1:]
	}

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}

	return sign + b.String()
}
