package telegram

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAPI struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (s *stubAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		s.sent = append(s.sent, msg)
	}
	return tgbotapi.Message{}, s.err
}

func TestBot_DisabledWithoutToken(t *testing.T) {
	bot, err := NewBot("")
	require.NoError(t, err)

	assert.False(t, bot.Enabled())
	assert.NoError(t, bot.Send(context.Background(), 1, "hello"))
}

func TestBot_SendsMarkdownMessage(t *testing.T) {
	api := &stubAPI{}
	bot := &Bot{api: api}

	require.NoError(t, bot.Send(context.Background(), 77, "*hi*"))

	require.Len(t, api.sent, 1)
	assert.Equal(t, int64(77), api.sent[0].ChatID)
	assert.Equal(t, "*hi*", api.sent[0].Text)
	assert.Equal(t, tgbotapi.ModeMarkdown, api.sent[0].ParseMode)
}

func TestBot_SendError(t *testing.T) {
	bot := &Bot{api: &stubAPI{err: errors.New("chat not found")}}

	err := bot.Send(context.Background(), 77, "hi")

	assert.ErrorContains(t, err, "chat not found")
}
