// Package bot delivers messages through the Telegram Bot API.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot sends HTML-formatted messages to a single Telegram chat.
type Bot struct {
	api    telegramAPI
	chatID int64
	// channel is set instead of chatID for "@username" destinations.
	channel string
	log     *slog.Logger
}

// New creates a Bot for the given token and destination. The destination is
// a numeric chat ID or a public channel username such as "@deals".
func New(token, destination string, log *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	log.Info("authorized on telegram", "account", api.Self.UserName)
	return newBot(api, destination, log)
}

func newBot(api telegramAPI, destination string, log *slog.Logger) (*Bot, error) {
	b := &Bot{api: api, log: log}

	destination = strings.TrimSpace(destination)
	switch {
	case destination == "":
		return nil, fmt.Errorf("empty destination chat")
	case strings.HasPrefix(destination, "@"):
		b.channel = destination
	default:
		id, err := strconv.ParseInt(destination, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid chat id %q: %w", destination, err)
		}
		b.chatID = id
	}
	return b, nil
}

// Send delivers text to the configured chat with HTML parse mode and link
// previews disabled. A non-success API response is returned as an error.
func (b *Bot) Send(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var msg tgbotapi.MessageConfig
	if b.channel != "" {
		msg = tgbotapi.NewMessageToChannel(b.channel, text)
	} else {
		msg = tgbotapi.NewMessage(b.chatID, text)
	}
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	b.log.Debug("message delivered", "chat_id", b.chatID, "channel", b.channel, "bytes", len(text))
	return nil
}
