// Package alert forwards server-side errors to a Telegram ops channel.
// Disabled when no bot token is configured; all methods are nil-safe.
package alert

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
)

const maxMessageLen = 4096

type Notifier struct {
	bot    *bot.Bot
	chatID int64
}

func NewNotifier(token string, chatID int64) (*Notifier, error) {
	if token == "" || chatID == 0 {
		return nil, nil
	}
	b, err := bot.New(token)
	if err != nil {
		return nil, fmt.Errorf("create alert bot: %w", err)
	}
	return &Notifier{bot: b, chatID: chatID}, nil
}

// Error reports a server-side error with its context. Failures to deliver
// the alert are logged, never propagated.
func (n *Notifier) Error(errCtx string, err error) {
	if n == nil {
		return
	}

	msg := fmt.Sprintf("❌ *Error*\n\n*Context:* %s\n*Error:* `%s`\n*Time:* %s",
		errCtx, err.Error(), time.Now().Format("2006-01-02 15:04:05"))
	if len([]rune(msg)) > maxMessageLen {
		msg = string([]rune(msg)[:maxMessageLen-20]) + "\n\n... (truncated)"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, sendErr := n.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    n.chatID,
		Text:      msg,
		ParseMode: "Markdown",
	}); sendErr != nil {
		slog.Error("failed to send alert", "context", errCtx, "error", sendErr)
	}
}
