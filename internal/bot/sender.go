package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Houeta/stylebook-bot/internal/conversation"
	"github.com/Houeta/stylebook-bot/internal/metrics"
	"github.com/Houeta/stylebook-bot/internal/models"
	"gopkg.in/telebot.v4"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ErrNoAdminChat is returned when a report is sent but no admin chat is configured.
var ErrNoAdminChat = errors.New("admin chat is not configured")

// Messenger is the part of the Telegram API the sender needs.
type Messenger interface {
	Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error)
}

// Sender delivers paced conversation batches and reports to Telegram.
type Sender struct {
	api         Messenger
	log         *slog.Logger
	metrics     *metrics.Metrics
	renderer    *Renderer
	keyboards   *Keyboards
	adminChatID int64
	wg          sync.WaitGroup
}

// NewSender creates a sender. Reports go to adminChatID.
func NewSender(
	api Messenger,
	log *slog.Logger,
	metrics *metrics.Metrics,
	renderer *Renderer,
	keyboards *Keyboards,
	adminChatID int64,
) *Sender {
	return &Sender{
		api:         api,
		log:         log,
		metrics:     metrics,
		renderer:    renderer,
		keyboards:   keyboards,
		adminChatID: adminChatID,
	}
}

// Deliver sends the batch in the background, each message once its delay since the call has passed.
// Delivery outlives the context of the update that produced the batch.
func (s *Sender) Deliver(ctx context.Context, sessionID int64, batch []conversation.Outgoing) {
	start := time.Now()
	ctx = context.WithoutCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for i, out := range batch {
			if wait := time.Until(start.Add(out.Delay)); wait > 0 {
				time.Sleep(wait)
			}
			s.send(ctx, sessionID, out.Message, i == len(batch)-1)
		}
	}()
}

// Wait blocks until every pending batch has been sent.
func (s *Sender) Wait() {
	s.wg.Wait()
}

func (s *Sender) send(ctx context.Context, chatID int64, msg conversation.Message, last bool) {
	chat := telebot.ChatID(chatID)

	var opts []interface{}
	if markup := s.keyboards.Markup(msg); markup != nil {
		opts = append(opts, markup)
	} else if last {
		opts = append(opts, &telebot.ReplyMarkup{RemoveKeyboard: true})
	}

	if _, err := s.api.Send(chat, s.renderer.Text(msg), opts...); err != nil {
		s.metrics.SentMessages.WithLabelValues("error").Inc()
		s.log.ErrorContext(ctx, "Failed to send message", "chat", chatID, "message", msg.ID, "error", err)
		return
	}
	s.metrics.SentMessages.WithLabelValues(messageType(msg)).Inc()

	confirmation, ok := msg.Attachment.(conversation.Confirmation)
	if !ok {
		return
	}
	photo := &telebot.Photo{
		File:    telebot.FromURL(QRCodeURL(confirmation.QRPayload)),
		Caption: s.renderer.t("summary.qr", nil),
	}
	if _, err := s.api.Send(chat, photo); err != nil {
		s.metrics.SentMessages.WithLabelValues("error").Inc()
		s.log.WarnContext(ctx, "Failed to send loyalty QR code", "chat", chatID, "error", err)
		return
	}
	s.metrics.SentMessages.WithLabelValues("photo").Inc()
}

// SendReport sends the report workbook to the admin chat.
func (s *Sender) SendReport(ctx context.Context, date time.Time, fileName string, content *bytes.Buffer) error {
	if s.adminChatID == 0 {
		return ErrNoAdminChat
	}

	caption := s.renderer.t("report.caption", map[string]interface{}{"date": date.Format(models.DateKeyLayout)})
	reportFile := &telebot.Document{
		File:     telebot.FromReader(content),
		FileName: fileName,
		MIME:     xlsxMIME,
		Caption:  caption,
	}

	if _, err := s.api.Send(telebot.ChatID(s.adminChatID), reportFile); err != nil {
		s.metrics.SentMessages.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to send report document: %w", err)
	}

	s.metrics.SentMessages.WithLabelValues("document").Inc()
	s.log.InfoContext(ctx, "Report document sent", "chat", s.adminChatID, "file", fileName)
	return nil
}

func messageType(msg conversation.Message) string {
	switch msg.Attachment.(type) {
	case conversation.HairstylePicker, conversation.CalendarPicker, conversation.TimeSlotPicker:
		return "picker"
	default:
		return "text"
	}
}
