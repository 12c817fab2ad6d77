package conversation

import (
	"time"

	"github.com/Houeta/stylebook-bot/internal/models"
)

// Event is an input to the state machine. The set of events is closed.
type Event interface {
	event()
}

// Started restarts the conversation, as the /start command does.
type Started struct{}

// TextInput is free text or a quick-reply label.
type TextInput struct {
	Text string
}

// StyleSelected is a pick from the hairstyle picker.
type StyleSelected struct {
	Name string
}

// DatePicked is a pick from the calendar picker.
type DatePicked struct {
	Date time.Time
}

// SlotsLoaded carries the result of a successful slot lookup.
type SlotsLoaded struct {
	Date  time.Time
	Slots models.Slots
}

// SlotsFailed reports a failed slot lookup.
type SlotsFailed struct {
	Date time.Time
	Err  error
}

// TimePicked is a pick from the time slot picker.
type TimePicked struct {
	Time string
}

// BookingCreated reports that the gateway persisted the booking.
type BookingCreated struct {
	OrderID string
}

// BookingFailed reports that the gateway could not persist the booking.
type BookingFailed struct {
	Err error
}

func (Started) event()        {}
func (TextInput) event()      {}
func (StyleSelected) event()  {}
func (DatePicked) event()     {}
func (SlotsLoaded) event()    {}
func (SlotsFailed) event()    {}
func (TimePicked) event()     {}
func (BookingCreated) event() {}
func (BookingFailed) event()  {}
