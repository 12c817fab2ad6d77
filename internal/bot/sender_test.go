package bot_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Houeta/stylebook-bot/internal/bot"
	"github.com/Houeta/stylebook-bot/internal/conversation"
	"github.com/Houeta/stylebook-bot/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v4"
)

type sentMessage struct {
	to   string
	what interface{}
	opts []interface{}
	at   time.Time
}

type fakeMessenger struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (m *fakeMessenger) Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.sent = append(m.sent, sentMessage{to: to.Recipient(), what: what, opts: opts, at: time.Now()})
	return &telebot.Message{}, nil
}

func newTestSender(t *testing.T, adminChat int64) (*bot.Sender, *fakeMessenger, *metrics.Metrics) {
	t.Helper()
	api := &fakeMessenger{}
	appMetrics := metrics.NewMetrics(prometheus.NewRegistry())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sender := bot.NewSender(api, logger, appMetrics, newRenderer(t), newKeyboards(t), adminChat)
	return sender, api, appMetrics
}

func replyMarkup(opts []interface{}) *telebot.ReplyMarkup {
	for _, opt := range opts {
		if markup, ok := opt.(*telebot.ReplyMarkup); ok {
			return markup
		}
	}
	return nil
}

func TestSender_DeliverPacesBatch(t *testing.T) {
	sender, api, appMetrics := newTestSender(t, 0)
	start := time.Now()

	sender.Deliver(context.Background(), 1001, []conversation.Outgoing{
		{Message: conversation.Message{Text: "first"}, Delay: 0},
		{Message: conversation.Message{Text: "second"}, Delay: 40 * time.Millisecond},
		{Message: conversation.Message{Text: "third", QuickReplies: []string{"Yes", "No"}}, Delay: 80 * time.Millisecond},
	})
	sender.Wait()

	require.Len(t, api.sent, 3)
	assert.Equal(t, "1001", api.sent[0].to)
	assert.Equal(t, "first", api.sent[0].what)
	assert.Equal(t, "second", api.sent[1].what)
	assert.Equal(t, "third", api.sent[2].what)
	assert.GreaterOrEqual(t, api.sent[1].at.Sub(start), 40*time.Millisecond)
	assert.GreaterOrEqual(t, api.sent[2].at.Sub(start), 80*time.Millisecond)

	assert.Nil(t, replyMarkup(api.sent[0].opts), "only the last message clears the keyboard")
	markup := replyMarkup(api.sent[2].opts)
	require.NotNil(t, markup)
	assert.Len(t, markup.ReplyKeyboard, 1)
	assert.InDelta(t, 3.0, testutil.ToFloat64(appMetrics.SentMessages.WithLabelValues("text")), 0.001)
}

func TestSender_DeliverRemovesStaleKeyboard(t *testing.T) {
	sender, api, _ := newTestSender(t, 0)

	sender.Deliver(context.Background(), 1001, []conversation.Outgoing{
		{Message: conversation.Message{Text: "What's your name?"}},
	})
	sender.Wait()

	require.Len(t, api.sent, 1)
	markup := replyMarkup(api.sent[0].opts)
	require.NotNil(t, markup)
	assert.True(t, markup.RemoveKeyboard)
}

func TestSender_DeliverOutlivesCanceledContext(t *testing.T) {
	sender, api, _ := newTestSender(t, 0)
	ctx, cancel := context.WithCancel(context.Background())

	sender.Deliver(ctx, 1001, []conversation.Outgoing{
		{Message: conversation.Message{Text: "later"}, Delay: 20 * time.Millisecond},
	})
	cancel()
	sender.Wait()

	require.Len(t, api.sent, 1)
}

func TestSender_ConfirmationSendsQRCode(t *testing.T) {
	sender, api, appMetrics := newTestSender(t, 0)

	sender.Deliver(context.Background(), 1001, []conversation.Outgoing{{Message: conversation.Message{
		Text:       "🎉 BOOKING CONFIRMED! 🎉",
		Attachment: conversation.Confirmation{Booking: friendBooking(), QRPayload: "loyalty:0821234567:1"},
	}}})
	sender.Wait()

	require.Len(t, api.sent, 2)
	photo, ok := api.sent[1].what.(*telebot.Photo)
	require.True(t, ok)
	assert.Equal(t, bot.QRCodeURL("loyalty:0821234567:1"), photo.FileURL)
	assert.Equal(t, "Show this QR code at the salon to collect loyalty points 🎁", photo.Caption)
	assert.InDelta(t, 1.0, testutil.ToFloat64(appMetrics.SentMessages.WithLabelValues("photo")), 0.001)
}

func TestSender_DeliverFailureIsCounted(t *testing.T) {
	sender, api, appMetrics := newTestSender(t, 0)
	api.err = errors.New("bot was blocked by the user")

	sender.Deliver(context.Background(), 1001, []conversation.Outgoing{
		{Message: conversation.Message{Text: "one"}},
		{Message: conversation.Message{Text: "two"}},
	})
	sender.Wait()

	assert.InDelta(t, 2.0, testutil.ToFloat64(appMetrics.SentMessages.WithLabelValues("error")), 0.001)
}

func TestSender_SendReport(t *testing.T) {
	date := time.Date(2026, time.October, 21, 0, 0, 0, 0, time.UTC)

	t.Run("sends the document to the admin chat", func(t *testing.T) {
		sender, api, _ := newTestSender(t, 42)

		err := sender.SendReport(context.Background(), date, "bookings_2026-10-21.xlsx", bytes.NewBufferString("xlsx"))

		require.NoError(t, err)
		require.Len(t, api.sent, 1)
		assert.Equal(t, "42", api.sent[0].to)
		doc, ok := api.sent[0].what.(*telebot.Document)
		require.True(t, ok)
		assert.Equal(t, "bookings_2026-10-21.xlsx", doc.FileName)
		assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", doc.MIME)
		assert.Equal(t, "📊 StyleBook bookings for 2026-10-21", doc.Caption)
	})

	t.Run("no admin chat", func(t *testing.T) {
		sender, api, _ := newTestSender(t, 0)

		err := sender.SendReport(context.Background(), date, "bookings_2026-10-21.xlsx", bytes.NewBufferString("xlsx"))

		require.ErrorIs(t, err, bot.ErrNoAdminChat)
		assert.Empty(t, api.sent)
	})

	t.Run("telegram error", func(t *testing.T) {
		sender, api, _ := newTestSender(t, 42)
		api.err = errors.New("file is too big")

		err := sender.SendReport(context.Background(), date, "bookings_2026-10-21.xlsx", bytes.NewBufferString("xlsx"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to send report document")
	})
}
