package notifier

import (
	"context"
	"fmt"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/ubuntu/decorate"
)

// TelegramConfig holds the bot token and the chat notified.
type TelegramConfig struct {
	Token  string `mapstructure:"token" yaml:"token"`
	ChatID int64  `mapstructure:"chat-id" yaml:"chat-id"`
}

// Enabled reports whether the telegram channel is configured.
func (c TelegramConfig) Enabled() bool {
	return c.Token != "" && c.ChatID != 0
}

// Telegram sends notifications as a bot message.
type Telegram struct {
	cfg        TelegramConfig
	endpoint   string
	httpClient tgbotapi.HTTPClient
}

// NewTelegram returns the telegram channel.
func NewTelegram(cfg TelegramConfig) Telegram {
	return Telegram{
		cfg:        cfg,
		endpoint:   tgbotapi.APIEndpoint,
		httpClient: &http.Client{},
	}
}

// Name implements Channel.
func (Telegram) Name() string {
	return "telegram"
}

// Send implements Channel. The bot is only authenticated when a message has to be sent.
func (t Telegram) Send(_ context.Context, subject, body string) (err error) {
	if !t.cfg.Enabled() {
		return fmt.Errorf("%w: token and chat id are required", ErrIncompleteConfig)
	}
	defer decorate.OnError(&err, "could not send telegram message to chat %d", t.cfg.ChatID)

	bot, err := tgbotapi.NewBotAPIWithClient(t.cfg.Token, t.endpoint, t.httpClient)
	if err != nil {
		return fmt.Errorf("failed to authenticate bot: %w", err)
	}

	msg := tgbotapi.NewMessage(t.cfg.ChatID, subject+"\n\n"+body)
	msg.DisableWebPagePreview = true
	if _, err := bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}
