package telegram

import (
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camuig/alphaminr/internal/config"
	"github.com/camuig/alphaminr/internal/logger"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, f.err
}

func TestDisabledNotifierIsNoop(t *testing.T) {
	n := NewNotifier(&config.Config{}, logger.Discard())
	assert.False(t, n.Enabled())

	n.NotifyGenerated("id", "excerpt")
	n.NotifyError("ctx", errors.New("boom"))
}

func TestNotifyGenerated(t *testing.T) {
	bot := &fakeSender{}
	n := NewNotifierWithSender(bot, 42, "https://alphaminr.example/", logger.Discard())

	n.NotifyGenerated("abc-123", "Markets <wobble> & sigh")

	require.Len(t, bot.sent, 1)
	msg := bot.sent[0]
	assert.Equal(t, int64(42), msg.ChatID)
	assert.Equal(t, tgbotapi.ModeHTML, msg.ParseMode)
	assert.Contains(t, msg.Text, "<code>abc-123</code>")
	assert.Contains(t, msg.Text, "https://alphaminr.example/newsletter/abc-123")
	assert.Contains(t, msg.Text, "Markets &lt;wobble&gt; &amp; sigh")
}

func TestNotifyError_SendFailureIsLogged(t *testing.T) {
	bot := &fakeSender{err: errors.New("network down")}
	n := NewNotifierWithSender(bot, 1, "", logger.Discard())

	n.NotifyError("generation", errors.New("generator returned no text"))

	require.Len(t, bot.sent, 1)
	assert.Contains(t, bot.sent[0].Text, "[generation]")
	assert.Contains(t, bot.sent[0].Text, "generator returned no text")
}
