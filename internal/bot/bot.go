package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Houeta/stylebook-bot/internal/conversation"
	"github.com/Houeta/stylebook-bot/internal/gateway"
	"github.com/Houeta/stylebook-bot/internal/metrics"
	"gopkg.in/telebot.v4"
)

// Conversation handles events of one chat.
type Conversation interface {
	Handle(ctx context.Context, sessionID int64, ev conversation.Event) error
}

// ReportTrigger builds and sends the daily report of a date.
type ReportTrigger interface {
	SendDailyReport(ctx context.Context, dateKey string) error
}

// Settings configures the Telegram bot.
type Settings struct {
	Token       string
	Poller      time.Duration
	Lang        string
	AdminChatID int64
	Hours       gateway.Hours
}

// Bot contains the bot API instance and other information.
type Bot struct {
	bot         *telebot.Bot
	log         *slog.Logger
	metrics     *metrics.Metrics
	translator  conversation.Translator
	lang        string
	adminChatID int64
	location    *time.Location
	now         func() time.Time
	sender      *Sender
	conv        Conversation
	reports     ReportTrigger
}

// NewBot creates a new bot with the given token.
func NewBot(
	log *slog.Logger,
	metrics *metrics.Metrics,
	translator conversation.Translator,
	settings Settings,
) (*Bot, error) {
	bot, err := telebot.NewBot(telebot.Settings{
		Token:  settings.Token,
		Poller: &telebot.LongPoller{Timeout: settings.Poller},
		OnError: func(err error, _ telebot.Context) {
			log.Error("Telegram update failed", "error", err)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}
	log.Info("Authorized on account", "account", bot.Me.Username)

	renderer := NewRenderer(translator, settings.Lang)
	keyboards := NewKeyboards(settings.Hours, translator.GetWithData(settings.Lang, "picker.booked_suffix", nil))

	return &Bot{
		bot:         bot,
		log:         log,
		metrics:     metrics,
		translator:  translator,
		lang:        settings.Lang,
		adminChatID: settings.AdminChatID,
		location:    settings.Hours.Location,
		now:         time.Now,
		sender:      NewSender(bot, log, metrics, renderer, keyboards, settings.AdminChatID),
	}, nil
}

// Sender returns the deliverer of conversation replies and reports.
func (b *Bot) Sender() *Sender {
	return b.sender
}

// Start registers the routes and launches the bot to listen for updates.
// It blocks until Stop is called.
func (b *Bot) Start(conv Conversation, reports ReportTrigger) {
	b.conv = conv
	b.reports = reports
	b.registerRoutes()

	b.log.Info("Telegram bot is starting...")
	b.bot.Start()
}

// Stop gracefully stops the Telegram bot and waits for pending replies.
func (b *Bot) Stop() {
	b.log.Info("Telegram bot is stopped...")
	b.bot.Stop()
	b.sender.Wait()
}

// Ping checks that the Telegram API is reachable.
func (b *Bot) Ping(_ context.Context) error {
	if _, err := b.bot.Raw("getMe", nil); err != nil {
		return fmt.Errorf("telegram getMe failed: %w", err)
	}
	return nil
}

// registerRoutes configures all routes (commands).
func (b *Bot) registerRoutes() {
	b.bot.Use(b.RecoverMiddleware, b.MetricsMiddleware)

	b.bot.Handle("/start", b.startHandler)
	b.bot.Handle(telebot.OnText, b.textHandler)
	b.bot.Handle("/report", b.reportHandler, b.AdminMiddleware)

	// Inline button callbacks
	b.bot.Handle(&btnStyle, b.styleHandler)
	b.bot.Handle(&btnDate, b.dateHandler)
	b.bot.Handle(&btnSlot, b.slotHandler)
	b.bot.Handle(&btnBookedSlot, b.bookedSlotHandler)
	b.bot.Handle(&btnQuick, b.quickReplyHandler)
}

// t is a shorthand method for getting translations.
func (b *Bot) t(key string) string {
	return b.translator.GetWithData(b.lang, key, nil)
}

// tWithData is a shorthand method for getting translations with placeholder data.
func (b *Bot) tWithData(key string, data map[string]interface{}) string {
	return b.translator.GetWithData(b.lang, key, data)
}
