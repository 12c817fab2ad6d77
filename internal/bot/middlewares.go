package bot

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"

	"gopkg.in/telebot.v4"
)

// ErrHandlerPanic is returned for an update whose handler panicked.
var ErrHandlerPanic = errors.New("handler panicked")

// AdminMiddleware lets only the salon's admin chat through.
func (b *Bot) AdminMiddleware(next telebot.HandlerFunc) telebot.HandlerFunc {
	return func(ctx telebot.Context) error {
		chatID := ctx.Chat().ID

		if b.adminChatID == 0 || chatID != b.adminChatID {
			b.log.Info("Access denied", "username", ctx.Sender().Username, "chat", chatID)
			return ctx.Send(b.t("report.forbidden"))
		}

		b.log.Debug("Access granted", "username", ctx.Sender().Username, "chat", chatID)
		return next(ctx)
	}
}

// MetricsMiddleware counts incoming updates by kind.
func (b *Bot) MetricsMiddleware(next telebot.HandlerFunc) telebot.HandlerFunc {
	return func(ctx telebot.Context) error {
		kind := "text"
		switch {
		case ctx.Callback() != nil:
			kind = "callback"
		case strings.HasPrefix(ctx.Text(), "/"):
			kind = "command"
		}
		b.metrics.UpdatesReceived.WithLabelValues(kind).Inc()

		return next(ctx)
	}
}

// RecoverMiddleware turns a handler panic into an error so the poller keeps running.
func (b *Bot) RecoverMiddleware(next telebot.HandlerFunc) telebot.HandlerFunc {
	return func(ctx telebot.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				b.log.With(
					slog.String("op", "Bot.RecoverMiddleware"),
				).Error("Recovered from handler panic", "panic", r, "stack", string(debug.Stack()))
				err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
			}
		}()

		return next(ctx)
	}
}
