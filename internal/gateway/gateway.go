// Package gateway implements slot lookup, booking creation and daily reporting
// on top of the booking repository.
package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Houeta/stylebook-bot/internal/metrics"
	"github.com/Houeta/stylebook-bot/internal/models"
	"github.com/Houeta/stylebook-bot/internal/pricing"
	"github.com/Houeta/stylebook-bot/internal/report"
	"github.com/Houeta/stylebook-bot/internal/repository"
	"github.com/google/uuid"
)

const maxClients = 2

var (
	// ErrInvalidDate is returned when a date key is not an ISO calendar date.
	ErrInvalidDate = errors.New("invalid booking date")
	// ErrOutsideOpeningHours is returned when a requested slot is not one the salon offers.
	ErrOutsideOpeningHours = errors.New("time slot is outside opening hours")
)

// ReportSender delivers a generated report to the salon management.
type ReportSender interface {
	SendReport(ctx context.Context, date time.Time, fileName string, content *bytes.Buffer) error
}

// Gateway serves slots and bookings from the repository.
type Gateway struct {
	log        *slog.Logger
	repo       repository.Interface
	sender     ReportSender
	metrics    *metrics.Metrics
	hours      Hours
	now        func() time.Time
	newOrderID func() string
}

// New creates a gateway. The clock is used to hide slots of today that already started.
func New(
	log *slog.Logger,
	repo repository.Interface,
	sender ReportSender,
	metrics *metrics.Metrics,
	hours Hours,
	now func() time.Time,
) *Gateway {
	return &Gateway{
		log:        log,
		repo:       repo,
		sender:     sender,
		metrics:    metrics,
		hours:      hours,
		now:        now,
		newOrderID: NewOrderID,
	}
}

// NewOrderID returns a short order identifier such as "SB-1A2B3C4D".
func NewOrderID() string {
	const idLength = 8
	return "SB-" + strings.ToUpper(uuid.NewString()[:idLength])
}

// GetAvailableSlots returns the free and taken slots of the day. Closed days have no slots;
// on the current day slots that already started are left out of both lists.
func (g *Gateway) GetAvailableSlots(ctx context.Context, dateKey string) (models.Slots, error) {
	date, err := g.parseDate(dateKey)
	if err != nil {
		return models.Slots{}, err
	}

	candidates := g.hours.Slots(date)
	if len(candidates) == 0 {
		return models.Slots{}, nil
	}

	startTime := time.Now()
	booked, err := g.repo.BookedSlots(ctx, date)
	g.metrics.DBQueryDuration.WithLabelValues("booked_slots").Observe(time.Since(startTime).Seconds())
	if err != nil {
		return models.Slots{}, fmt.Errorf("failed to load booked slots for %s: %w", dateKey, err)
	}

	taken := make(map[string]bool, len(booked))
	for _, slot := range booked {
		taken[slot] = true
	}

	now := g.now().In(g.hours.Location)
	var slots models.Slots
	for _, slot := range candidates {
		if !g.hours.At(date, slot).After(now) {
			continue
		}
		if taken[slot] {
			slots.Booked = append(slots.Booked, slot)
		} else {
			slots.Available = append(slots.Available, slot)
		}
	}

	return slots, nil
}

// CreateBooking validates and persists the booking and returns its order id.
// Totals are recomputed from the client prices rather than trusted from the request.
func (g *Gateway) CreateBooking(ctx context.Context, req models.BookingRequest) (string, error) {
	date, err := g.validate(req)
	if err != nil {
		return "", err
	}

	req.PaymentMethod = models.PaymentCash
	req.Totals = pricing.ComputeTotals(req.Clients, req.HasFriendDiscount)
	orderID := g.newOrderID()

	startTime := time.Now()
	err = g.repo.CreateBooking(ctx, orderID, date, req)
	g.metrics.DBQueryDuration.WithLabelValues("insert_booking").Observe(time.Since(startTime).Seconds())
	if err != nil {
		return "", fmt.Errorf("failed to create booking for %s %s: %w", req.DateKey, req.Time, err)
	}

	g.log.InfoContext(ctx, "Booking stored", "order", orderID, "date", req.DateKey, "time", req.Time)
	return orderID, nil
}

// SendDailyReport builds the workbook of the day's bookings and hands it to the report sender.
func (g *Gateway) SendDailyReport(ctx context.Context, dateKey string) error {
	date, err := g.parseDate(dateKey)
	if err != nil {
		return err
	}

	startTime := time.Now()
	bookings, err := g.repo.BookingsByDate(ctx, date)
	g.metrics.DBQueryDuration.WithLabelValues("bookings_by_date").Observe(time.Since(startTime).Seconds())
	if err != nil {
		return fmt.Errorf("failed to load bookings for %s: %w", dateKey, err)
	}

	startTime = time.Now()
	buffer, err := report.GenerateDailyReport(date, bookings)
	g.metrics.ReportGeneration.Observe(time.Since(startTime).Seconds())
	if err != nil {
		return fmt.Errorf("failed to generate report for %s: %w", dateKey, err)
	}

	if err = g.sender.SendReport(ctx, date, report.FileName(date), buffer); err != nil {
		return fmt.Errorf("failed to send report for %s: %w", dateKey, err)
	}

	g.log.InfoContext(ctx, "Daily report sent", "date", dateKey, "bookings", len(bookings))
	return nil
}

func (g *Gateway) parseDate(dateKey string) (time.Time, error) {
	date, err := time.ParseInLocation(models.DateKeyLayout, dateKey, g.hours.Location)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: %w", ErrInvalidDate, dateKey, err)
	}
	return date, nil
}

func (g *Gateway) validate(req models.BookingRequest) (time.Time, error) {
	if len(req.Clients) == 0 || len(req.Clients) > maxClients {
		return time.Time{}, fmt.Errorf("%w: %d clients", models.ErrIncompleteBooking, len(req.Clients))
	}
	if req.HasFriendDiscount != (len(req.Clients) == maxClients) {
		return time.Time{}, fmt.Errorf("%w: friend discount does not match %d clients",
			models.ErrIncompleteBooking, len(req.Clients))
	}
	for i, client := range req.Clients {
		if client.Name == "" || client.Phone == "" || client.Hairstyle == "" {
			return time.Time{}, fmt.Errorf("%w: client %d is missing details", models.ErrIncompleteBooking, i+1)
		}
	}
	if req.DateKey == "" || req.Time == "" {
		return time.Time{}, fmt.Errorf("%w: date and time are required", models.ErrIncompleteBooking)
	}

	date, err := g.parseDate(req.DateKey)
	if err != nil {
		return time.Time{}, err
	}

	for _, slot := range g.hours.Slots(date) {
		if slot == req.Time {
			return date, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %s %s", ErrOutsideOpeningHours, req.DateKey, req.Time)
}
