package models

import (
	"errors"
	"time"
)

var (
	// ErrSlotTaken is returned when the requested time slot was booked by someone else first.
	ErrSlotTaken = errors.New("time slot is already booked")
	// ErrIncompleteBooking is returned when a booking request misses its date, time or clients.
	ErrIncompleteBooking = errors.New("booking request is incomplete")
)

// PaymentCash is the only payment method the salon accepts.
const PaymentCash = "cash"

// DateKeyLayout is the ISO calendar date format used to key slots and reports.
const DateKeyLayout = "2006-01-02"

// TimeLayout is the 24-hour time-of-day format of slot labels.
const TimeLayout = "15:04"

// ClientBooking holds the details collected for one person in a booking.
type ClientBooking struct {
	Name      string  `json:"name"`      // Name is how the client introduced themselves
	Phone     string  `json:"phone"`     // Phone is the normalized 10-digit number
	Hairstyle string  `json:"hairstyle"` // Hairstyle is the catalog service name
	Price     float64 `json:"price"`     // Price is the catalog price in rand
}

// Totals is the pricing breakdown of a booking.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Discount float64 `json:"discount"`
	Total    float64 `json:"total"`
}

// BookingSession is the booking being assembled by one conversation.
type BookingSession struct {
	Clients           []ClientBooking
	SelectedDate      *time.Time
	SelectedTime      string
	PaymentMethod     string
	HasFriendDiscount bool
	Totals
	OrderID string
}

// NewBookingSession returns a session in its initial empty form.
func NewBookingSession() BookingSession {
	return BookingSession{Clients: []ClientBooking{{}}}
}

// Clone returns a deep copy so callers can mutate it freely.
func (s BookingSession) Clone() BookingSession {
	clone := s
	clone.Clients = append([]ClientBooking(nil), s.Clients...)
	if s.SelectedDate != nil {
		date := *s.SelectedDate
		clone.SelectedDate = &date
	}
	return clone
}

// Slots is the result of a slot lookup for one date.
type Slots struct {
	Available []string `json:"available"` // Available holds free HH:MM labels in ascending order
	Booked    []string `json:"booked"`    // Booked holds taken HH:MM labels in ascending order
}

// IsAvailable reports whether label is one of the available slots.
func (s Slots) IsAvailable(label string) bool {
	for _, slot := range s.Available {
		if slot == label {
			return true
		}
	}
	return false
}

// BookingRequest is the payload submitted to the booking gateway.
type BookingRequest struct {
	Clients           []ClientBooking `json:"clients"`
	DateKey           string          `json:"date"`
	Time              string          `json:"time"`
	PaymentMethod     string          `json:"payment_method"`
	HasFriendDiscount bool            `json:"has_friend_discount"`
	Totals
}

// BookingRecord is a persisted booking as read back for reports.
type BookingRecord struct {
	OrderID           string
	Date              time.Time
	Time              string
	PaymentMethod     string
	HasFriendDiscount bool
	Totals
	Clients   []ClientBooking
	CreatedAt time.Time
}
