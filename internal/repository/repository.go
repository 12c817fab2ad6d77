package repository

import (
	"context"
	"time"

	"github.com/Houeta/stylebook-bot/internal/models"
)

type Repository struct {
	db Database
}

// Interface defines the repository operations used by the booking gateway: reading the
// booked time slots of a day, persisting a booking together with its clients, and loading
// every booking of a day for the daily report.
type Interface interface {
	BookedSlots(ctx context.Context, date time.Time) ([]string, error)
	CreateBooking(ctx context.Context, orderID string, date time.Time, req models.BookingRequest) error
	BookingsByDate(ctx context.Context, date time.Time) ([]models.BookingRecord, error)
}

// NewRepository creates a new instance of Repository with the provided Database.
// It returns a pointer to the newly created Repository.
func NewRepository(db Database) *Repository {
	return &Repository{db: db}
}
