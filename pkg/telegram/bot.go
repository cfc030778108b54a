package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

type messageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot sends notifications; without a token it only logs them.
type Bot struct {
	api messageSender
}

func NewBot(token string) (*Bot, error) {
	if token == "" {
		logrus.Warn("Telegram bot token is empty, notifications disabled")
		return &Bot{}, nil
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	logrus.WithField("bot", api.Self.UserName).Info("Telegram bot initialized")
	return &Bot{api: api}, nil
}

func (b *Bot) Enabled() bool {
	return b.api != nil
}

func (b *Bot) Send(ctx context.Context, chatID int64, text string) error {
	if b.api == nil {
		logrus.WithField("chat_id", chatID).Debug("Notification skipped (bot disabled)")
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("telegram API error: %w", err)
	}
	return nil
}
