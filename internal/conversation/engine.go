package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/Houeta/stylebook-bot/internal/catalog"
	"github.com/Houeta/stylebook-bot/internal/metrics"
	"github.com/Houeta/stylebook-bot/internal/models"
	"github.com/google/uuid"
)

// Gateway supplies time slots and persists finished bookings.
type Gateway interface {
	GetAvailableSlots(ctx context.Context, dateKey string) (models.Slots, error)
	CreateBooking(ctx context.Context, req models.BookingRequest) (string, error)
	SendDailyReport(ctx context.Context, dateKey string) error
}

// Translator turns message catalog keys into text.
type Translator interface {
	GetWithData(lang, key string, data map[string]interface{}) string
}

// Sink delivers bot messages to the user. It owns the pacing: each message
// must be shown Delay after the batch was handed over.
type Sink interface {
	Deliver(ctx context.Context, sessionID int64, batch []Outgoing)
}

// Pacer staggers the replies of one action so they read like typing.
type Pacer struct {
	Base time.Duration
	Step time.Duration
}

// Delay returns the delay of the i-th message of a batch.
func (p Pacer) Delay(i int) time.Duration {
	return p.Base + time.Duration(i)*p.Step
}

// EngineConfig holds the engine's tunables.
type EngineConfig struct {
	Lang          string           // Lang is the message catalog language
	Vars          map[string]any   // Vars are placeholders available to every message, e.g. salon_phone
	Pacer         Pacer            // Pacer staggers delivered replies
	Clock         func() time.Time // Clock returns the current time in the salon's time zone
	LookupTimeout time.Duration    // LookupTimeout bounds slot lookups and booking creation
	ReportTimeout time.Duration    // ReportTimeout bounds the background daily report
}

// Engine interprets the effects of the state machine for many concurrent conversations.
type Engine struct {
	log        *slog.Logger
	gateway    Gateway
	translator Translator
	sink       Sink
	metrics    *metrics.Metrics
	sessions   *Store
	cfg        EngineConfig
	background sync.WaitGroup
}

// NewEngine creates an engine. Zero config values fall back to English, no pacing,
// the local wall clock and five/thirty second timeouts.
func NewEngine(
	log *slog.Logger,
	gateway Gateway,
	translator Translator,
	sink Sink,
	metrics *metrics.Metrics,
	sessions *Store,
	cfg EngineConfig,
) *Engine {
	const (
		defaultLookupTimeout = 5 * time.Second
		defaultReportTimeout = 30 * time.Second
	)

	if cfg.Lang == "" {
		cfg.Lang = "en"
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.LookupTimeout == 0 {
		cfg.LookupTimeout = defaultLookupTimeout
	}
	if cfg.ReportTimeout == 0 {
		cfg.ReportTimeout = defaultReportTimeout
	}

	return &Engine{
		log:        log,
		gateway:    gateway,
		translator: translator,
		sink:       sink,
		metrics:    metrics,
		sessions:   sessions,
		cfg:        cfg,
	}
}

// Wait blocks until background daily reports have finished.
func (e *Engine) Wait() {
	e.background.Wait()
}

// Handle runs one user action to completion: it records the user's message, drives the
// state machine, performs gateway calls the machine asks for and delivers the replies.
func (e *Engine) Handle(ctx context.Context, sessionID int64, ev Event) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("conversation %d: %w", sessionID, err)
	}

	sess := e.sessions.acquire(sessionID)
	defer sess.mu.Unlock()
	e.metrics.ActiveSessions.Set(float64(e.sessions.Len()))

	now := e.cfg.Clock()
	sess.updatedAt = now
	e.metrics.InputsReceived.WithLabelValues(string(sess.state.Step)).Inc()

	if text, ok := userEcho(ev); ok {
		sess.append(Message{ID: uuid.NewString(), Author: AuthorUser, Text: text, Timestamp: now})
	}

	var replies []Message
	queue := []Event{ev}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		next, effects := Transition(sess.state, current, now)
		if next.Step != sess.state.Step {
			e.log.DebugContext(ctx, "Conversation advanced",
				"session", sessionID, "from", sess.state.Step, "to", next.Step)
		}
		sess.state = next

		for _, eff := range effects {
			switch eff := eff.(type) {
			case Reply:
				msg := e.render(eff, now)
				sess.append(msg)
				replies = append(replies, msg)
			case LookupSlots:
				queue = append(queue, e.lookupSlots(ctx, sessionID, eff.Date))
			case SubmitBooking:
				queue = append(queue, e.submitBooking(ctx, sessionID, eff.Request))
			case SendDailyReport:
				e.sendDailyReport(sess, eff.DateKey, e.cfg.Pacer.Delay(len(replies)+1))
			}
		}
	}

	e.deliver(ctx, sessionID, replies)
	return nil
}

func (e *Engine) deliver(ctx context.Context, sessionID int64, replies []Message) {
	if len(replies) == 0 {
		return
	}

	batch := make([]Outgoing, 0, len(replies))
	for i, msg := range replies {
		batch = append(batch, Outgoing{Message: msg, Delay: e.cfg.Pacer.Delay(i)})
	}
	e.sink.Deliver(ctx, sessionID, batch)
}

func (e *Engine) lookupSlots(ctx context.Context, sessionID int64, date time.Time) Event {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.LookupTimeout)
	defer cancel()

	key := DateKey(date)
	startTime := time.Now()
	slots, err := e.gateway.GetAvailableSlots(ctx, key)
	e.metrics.GatewayDuration.WithLabelValues("get_slots").Observe(time.Since(startTime).Seconds())
	if err != nil {
		e.log.ErrorContext(ctx, "Failed to look up slots", "session", sessionID, "date", key, "error", err)
		return SlotsFailed{Date: date, Err: err}
	}

	e.log.InfoContext(ctx, "Slots looked up",
		"session", sessionID, "date", key, "available", len(slots.Available), "booked", len(slots.Booked))
	return SlotsLoaded{Date: date, Slots: slots}
}

func (e *Engine) submitBooking(ctx context.Context, sessionID int64, req models.BookingRequest) Event {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.LookupTimeout)
	defer cancel()

	startTime := time.Now()
	orderID, err := e.gateway.CreateBooking(ctx, req)
	e.metrics.GatewayDuration.WithLabelValues("create_booking").Observe(time.Since(startTime).Seconds())
	if err != nil {
		reason := "gateway"
		if errors.Is(err, models.ErrSlotTaken) {
			reason = "slot_taken"
		}
		e.metrics.BookingFailures.WithLabelValues(reason).Inc()
		e.log.ErrorContext(ctx, "Failed to create booking",
			"session", sessionID, "date", req.DateKey, "time", req.Time, "error", err)
		return BookingFailed{Err: err}
	}

	e.metrics.BookingsCreated.Inc()
	e.log.InfoContext(ctx, "Booking created",
		"session", sessionID, "order", orderID, "date", req.DateKey, "time", req.Time, "clients", len(req.Clients))
	return BookingCreated{OrderID: orderID}
}

// sendDailyReport triggers the report in the background. Failures are only logged;
// on success a notice is delivered once the replies of the current batch are out.
func (e *Engine) sendDailyReport(sess *Session, dateKey string, after time.Duration) {
	e.background.Add(1)
	dispatched := time.Now()

	go func() {
		defer e.background.Done()

		ctx, cancel := context.WithTimeout(context.Background(), e.cfg.ReportTimeout)
		defer cancel()

		startTime := time.Now()
		err := e.gateway.SendDailyReport(ctx, dateKey)
		e.metrics.GatewayDuration.WithLabelValues("daily_report").Observe(time.Since(startTime).Seconds())
		if err != nil {
			e.log.ErrorContext(ctx, "Daily report failed", "session", sess.id, "date", dateKey, "error", err)
			return
		}

		sess.mu.Lock()
		msg := e.render(Reply{Key: "report.sent"}, e.cfg.Clock())
		sess.append(msg)
		sess.mu.Unlock()

		delay := max(after-time.Since(dispatched), 0)
		e.sink.Deliver(ctx, sess.id, []Outgoing{{Message: msg, Delay: delay}})
	}()
}

func (e *Engine) render(reply Reply, now time.Time) Message {
	data := make(map[string]any, len(e.cfg.Vars)+len(reply.Data))
	maps.Copy(data, e.cfg.Vars)
	maps.Copy(data, reply.Data)

	var quick []string
	for _, key := range reply.QuickReplies {
		quick = append(quick, e.translator.GetWithData(e.cfg.Lang, key, data))
	}

	return Message{
		ID:           uuid.NewString(),
		Author:       AuthorBot,
		Text:         e.translator.GetWithData(e.cfg.Lang, reply.Key, data),
		Timestamp:    now,
		Attachment:   reply.Attachment,
		QuickReplies: quick,
	}
}

// userEcho returns the transcript text of a user action, if it has one.
func userEcho(ev Event) (string, bool) {
	switch ev := ev.(type) {
	case TextInput:
		return ev.Text, true
	case StyleSelected:
		if svc, ok := catalog.Find(ev.Name); ok {
			return svc.Label(), true
		}
		return ev.Name, true
	case DatePicked:
		return DateLabel(ev.Date), true
	case TimePicked:
		return ev.Time, true
	default:
		return "", false
	}
}
