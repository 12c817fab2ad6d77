package conversation

import (
	"time"

	"github.com/Houeta/stylebook-bot/internal/catalog"
	"github.com/Houeta/stylebook-bot/internal/models"
)

// Effect is an instruction produced by the state machine for the engine to carry out.
type Effect interface {
	effect()
}

// Reply asks the engine to send a bot message. Key and QuickReplies are message catalog keys.
type Reply struct {
	Key          string
	Data         map[string]any
	QuickReplies []string
	Attachment   Attachment
}

// LookupSlots asks the engine to fetch slots for a date and feed back SlotsLoaded or SlotsFailed.
type LookupSlots struct {
	Date time.Time
}

// SubmitBooking asks the engine to create the booking and feed back BookingCreated or BookingFailed.
type SubmitBooking struct {
	Request models.BookingRequest
}

// SendDailyReport asks the engine to trigger the salon's daily report. Its outcome is not fed back.
type SendDailyReport struct {
	DateKey string
}

func (Reply) effect()           {}
func (LookupSlots) effect()     {}
func (SubmitBooking) effect()   {}
func (SendDailyReport) effect() {}

// Attachment is the structured payload carried by a bot message.
type Attachment interface {
	attachment()
}

// ServiceList shows the service menu with prices.
type ServiceList struct {
	Services []catalog.Service
}

// HairstylePicker asks the user to choose a service for a client.
type HairstylePicker struct {
	Services    []catalog.Service
	ClientIndex int
}

// CalendarPicker asks the user to choose a day starting at From.
type CalendarPicker struct {
	From time.Time
}

// TimeSlotPicker asks the user to choose a time on Date.
type TimeSlotPicker struct {
	Date  time.Time
	Slots models.Slots
}

// PricingBreakdown shows per-client prices and the friend discount.
type PricingBreakdown struct {
	Clients []models.ClientBooking
	Totals  models.Totals
}

// BookingSummary shows the booking before it is submitted.
type BookingSummary struct {
	Booking models.BookingSession
}

// Confirmation shows the confirmed booking and the loyalty QR payload.
type Confirmation struct {
	Booking   models.BookingSession
	QRPayload string
}

// OrderSummary shows arrival instructions for the confirmed booking.
type OrderSummary struct {
	Booking     models.BookingSession
	ArrivalTime string
}

func (ServiceList) attachment()      {}
func (HairstylePicker) attachment()  {}
func (CalendarPicker) attachment()   {}
func (TimeSlotPicker) attachment()   {}
func (PricingBreakdown) attachment() {}
func (BookingSummary) attachment()   {}
func (Confirmation) attachment()     {}
func (OrderSummary) attachment()     {}
