package error_notificator

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const maxMessageLen = 4000

type TelegramInfra struct {
	bot    *tgbotapi.BotAPI
	admins []int64
}

func NewTelegramInfra(token string, admins []int64) (*TelegramInfra, error) {
	return NewTelegramInfraWithEndpoint(token, tgbotapi.APIEndpoint, admins)
}

// NewTelegramInfraWithEndpoint lets tests and self-hosted Bot API servers
// override the endpoint format.
func NewTelegramInfraWithEndpoint(token, endpoint string, admins []int64) (*TelegramInfra, error) {
	if len(admins) == 0 {
		return nil, errors.New("no admin chats configured")
	}
	bot, err := tgbotapi.NewBotAPIWithAPIEndpoint(token, endpoint)
	if err != nil {
		return nil, fmt.Errorf("init telegram bot: %w", err)
	}
	return &TelegramInfra{bot: bot, admins: admins}, nil
}

func (i *TelegramInfra) Notify(ctx context.Context, err error, details string) error {
	text := fmt.Sprintf("❗ quickcare error\n\nError: %v\n\nDetails: %s", err, details)
	text = truncate(text, maxMessageLen)

	var errs []error
	for _, chatID := range i.admins {
		if _, sendErr := i.bot.Send(tgbotapi.NewMessage(chatID, text)); sendErr != nil {
			errs = append(errs, fmt.Errorf("chat %d: %w", chatID, sendErr))
		}
	}
	return errors.Join(errs...)
}

// truncate cuts s to at most n bytes on a rune boundary.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// Nop is used when no bot is configured.
type Nop struct{}

func (Nop) Notify(context.Context, error, string) error { return nil }
