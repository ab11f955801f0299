package notifier

import (
	"context"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/pkg/errors"
)

const sendTimeout = 10 * time.Second

// Telegram delivers alerts to a single chat via the Telegram Bot API.
type Telegram struct {
	bot    *bot.Bot
	chatID string
}

// NewTelegram creates a Telegram notifier. Options are passed through to
// the underlying bot, which lets tests point it at a fake API server.
func NewTelegram(token, chatID string, opts ...bot.Option) (*Telegram, error) {
	if token == "" || chatID == "" {
		return nil, errors.New("telegram token and chat id must be set")
	}

	// getMe is skipped so construction stays offline; a bad token
	// surfaces on the first send instead.
	b, err := bot.New(token, append(opts, bot.WithSkipGetMe())...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create telegram bot")
	}

	return &Telegram{bot: b, chatID: chatID}, nil
}

// Send posts the message with Markdown formatting.
func (t *Telegram) Send(ctx context.Context, text string) error {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	_, err := t.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    t.chatID,
		Text:      text,
		ParseMode: models.ParseModeMarkdown,
	})
	if err != nil {
		return errors.Wrap(err, "failed to send telegram message")
	}

	return nil
}
