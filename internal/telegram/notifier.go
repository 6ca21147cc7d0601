// internal/telegram/notifier.go

// Package telegram posts completion notices to Telegram chats.
package telegram

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const maxTelegramMessage = 4096

// Notifier sends messages to Telegram chats addressed as
// "telegram:<chat-id>".
type Notifier struct {
	bot *tgbotapi.BotAPI
}

// New creates a Telegram notifier.
func New(token string) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}
	return &Notifier{bot: bot}, nil
}

// Send delivers a message to the chat encoded in the target address.
// Implements delivery.Handler.
func (n *Notifier) Send(target, message string) error {
	chatID, err := parseTarget(target)
	if err != nil {
		return err
	}

	if len(message) > maxTelegramMessage {
		message = message[:maxTelegramMessage]
	}

	msg := tgbotapi.NewMessage(chatID, message)
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// parseTarget extracts the chat ID from a "telegram:<chat-id>" address.
func parseTarget(target string) (int64, error) {
	raw, ok := strings.CutPrefix(target, "telegram:")
	if !ok {
		return 0, fmt.Errorf("not a telegram target: %s", target)
	}
	chatID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid chat id in target %q: %w", target, err)
	}
	return chatID, nil
}
