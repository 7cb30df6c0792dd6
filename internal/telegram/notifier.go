package telegram

import (
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/camuig/alphaminr/internal/config"
	"github.com/camuig/alphaminr/internal/logger"
)

// Sender is the part of the bot API the notifier needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Notifier struct {
	bot       Sender
	chatID    int64
	enabled   bool
	publicURL string
	logger    *logger.Logger
}

func NewNotifier(cfg *config.Config, log *logger.Logger) *Notifier {
	if !cfg.Telegram.Enabled {
		return &Notifier{enabled: false, logger: log}
	}

	if err := tgbotapi.SetLogger(log); err != nil {
		log.Warn("set telegram logger", "error", err)
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		log.Error("failed to create telegram bot", "error", err)
		return &Notifier{enabled: false, logger: log}
	}

	log.Info("telegram bot connected", "username", bot.Self.UserName)

	return NewNotifierWithSender(bot, cfg.Telegram.ChatID, cfg.Web.PublicURL, log)
}

// NewNotifierWithSender builds an enabled notifier on top of an existing sender.
func NewNotifierWithSender(bot Sender, chatID int64, publicURL string, log *logger.Logger) *Notifier {
	return &Notifier{
		bot:       bot,
		chatID:    chatID,
		enabled:   true,
		publicURL: strings.TrimRight(publicURL, "/"),
		logger:    log,
	}
}

func (n *Notifier) Enabled() bool {
	return n.enabled
}

// NotifyGenerated announces a freshly stored newsletter with a short excerpt.
func (n *Notifier) NotifyGenerated(id, excerpt string) {
	var sb strings.Builder
	sb.WriteString("📰 <b>New Alphaminr issue</b>\n")
	fmt.Fprintf(&sb, "ID: <code>%s</code>\n", html.EscapeString(id))
	if n.publicURL != "" {
		fmt.Fprintf(&sb, "%s/newsletter/%s\n", html.EscapeString(n.publicURL), html.EscapeString(id))
	}
	if excerpt != "" {
		sb.WriteString("\n")
		sb.WriteString(html.EscapeString(excerpt))
	}
	n.send(sb.String())
}

func (n *Notifier) NotifyError(context string, err error) {
	msg := fmt.Sprintf("⚠️ <b>Error</b> [%s]\n%s", html.EscapeString(context), html.EscapeString(err.Error()))
	n.send(msg)
}

func (n *Notifier) NotifyStatus(message string) {
	n.send(html.EscapeString(message))
}

func (n *Notifier) send(text string) {
	if !n.enabled {
		return
	}

	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Error("send telegram message", "error", err)
	}
}
