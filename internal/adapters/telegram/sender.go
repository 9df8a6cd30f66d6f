package telegram

import (
	"context"
	"fmt"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender implements ports.ChatSender over the Telegram Bot API. Channel
// handles are numeric chat IDs as stored on the account.
type Sender struct {
	bot     *tgbotapi.BotAPI
	timeout time.Duration
}

// NewSender wraps an authorized bot client.
func NewSender(bot *tgbotapi.BotAPI, timeout time.Duration) *Sender {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Sender{bot: bot, timeout: timeout}
}

func (s *Sender) Send(ctx context.Context, channelHandle, text string) error {
	chatID, err := strconv.ParseInt(channelHandle, 10, 64)
	if err != nil {
		return fmt.Errorf("parse chat id %q: %w", channelHandle, err)
	}

	done := make(chan error, 1)
	go func() {
		_, sendErr := s.bot.Send(tgbotapi.NewMessage(chatID, text))
		done <- sendErr
	}()

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send telegram message: %w", err)
		}
		return nil
	case <-timer.C:
		return fmt.Errorf("send telegram message: timeout after %s", s.timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}
