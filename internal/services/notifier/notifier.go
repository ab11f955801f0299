// Package notifier renders spike records into operator-readable messages
// and delivers them over a chat channel.
package notifier

import "context"

// Notifier delivers an alert message. Delivery is best effort: callers
// log failures and keep their detection results.
type Notifier interface {
	Send(ctx context.Context, text string) error
}
