package bot

import (
	"context"
	"time"

	"github.com/Houeta/stylebook-bot/internal/conversation"
	"github.com/Houeta/stylebook-bot/internal/models"
	"gopkg.in/telebot.v4"
)

const (
	handleTimeout = 30 * time.Second
	reportTimeout = 30 * time.Second
)

// startHandler process command /start.
func (b *Bot) startHandler(ctx telebot.Context) error {
	b.log.Info("User started the bot", "id", ctx.Sender().ID, "username", ctx.Sender().Username)
	return b.dispatch(ctx, conversation.Started{})
}

// textHandler passes free text and reply keyboard labels to the conversation.
func (b *Bot) textHandler(ctx telebot.Context) error {
	return b.dispatch(ctx, conversation.TextInput{Text: ctx.Text()})
}

// quickReplyHandler handles quick replies shown next to an inline picker as if they were typed.
func (b *Bot) quickReplyHandler(ctx telebot.Context) error {
	_ = ctx.Respond()
	return b.dispatch(ctx, conversation.TextInput{Text: ctx.Callback().Data})
}

func (b *Bot) styleHandler(ctx telebot.Context) error {
	_ = ctx.Respond()
	return b.dispatch(ctx, conversation.StyleSelected{Name: ctx.Callback().Data})
}

func (b *Bot) dateHandler(ctx telebot.Context) error {
	date, err := time.ParseInLocation(models.DateKeyLayout, ctx.Callback().Data, b.location)
	if err != nil {
		b.log.Warn("Malformed date callback", "data", ctx.Callback().Data, "error", err)
		return ctx.Respond(&telebot.CallbackResponse{Text: b.t("selection.expired")})
	}

	_ = ctx.Respond()
	return b.dispatch(ctx, conversation.DatePicked{Date: date})
}

func (b *Bot) slotHandler(ctx telebot.Context) error {
	_ = ctx.Respond()
	return b.dispatch(ctx, conversation.TimePicked{Time: ctx.Callback().Data})
}

// bookedSlotHandler only tells the user that the slot is taken, the conversation does not move.
func (b *Bot) bookedSlotHandler(ctx telebot.Context) error {
	return ctx.Respond(&telebot.CallbackResponse{Text: b.t("selection.booked")})
}

// reportHandler sends the daily report on demand. It takes an optional YYYY-MM-DD date
// and defaults to today in the salon's timezone.
func (b *Bot) reportHandler(ctx telebot.Context) error {
	date := b.now().In(b.location)

	switch args := ctx.Args(); len(args) {
	case 0:
	case 1:
		parsed, err := time.ParseInLocation(models.DateKeyLayout, args[0], b.location)
		if err != nil {
			return ctx.Send(b.t("report.usage"))
		}
		date = parsed
	default:
		return ctx.Send(b.t("report.usage"))
	}

	timeoutCtx, cancel := context.WithTimeout(context.Background(), reportTimeout)
	defer cancel()

	dateKey := conversation.DateKey(date)
	b.log.InfoContext(timeoutCtx, "Report requested", "chat", ctx.Chat().ID, "date", dateKey)

	if err := b.reports.SendDailyReport(timeoutCtx, dateKey); err != nil {
		b.log.WarnContext(timeoutCtx, "Failed to send requested report", "date", dateKey, "error", err)
		b.metrics.SentMessages.WithLabelValues("error").Inc()
		return ctx.Send(b.tWithData("report.failed", map[string]interface{}{"date": dateKey, "error": err.Error()}))
	}

	b.metrics.SentMessages.WithLabelValues("text").Inc()
	return ctx.Send(b.tWithData("report.delivered", map[string]interface{}{"date": dateKey}))
}

// dispatch feeds an event into the chat's conversation. Replies are delivered by the sender,
// only a failure is answered here.
func (b *Bot) dispatch(ctx telebot.Context, ev conversation.Event) error {
	timeoutCtx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	chatID := ctx.Chat().ID
	if err := b.conv.Handle(timeoutCtx, chatID, ev); err != nil {
		b.log.ErrorContext(timeoutCtx, "Failed to handle conversation event", "chat", chatID, "error", err)
		b.metrics.SentMessages.WithLabelValues("error").Inc()
		return ctx.Send(b.t("error.internal"))
	}
	return nil
}
