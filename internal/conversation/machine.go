package conversation

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Houeta/stylebook-bot/internal/catalog"
	"github.com/Houeta/stylebook-bot/internal/models"
	"github.com/Houeta/stylebook-bot/internal/pricing"
)

// State is everything the state machine knows about one conversation.
type State struct {
	Step    Step
	Booking models.BookingSession
	Slots   models.Slots // Slots is the last lookup for the date being booked
}

// NewState returns the state of a conversation that has not started yet.
func NewState() State {
	return State{Step: StepWelcome, Booking: models.NewBookingSession()}
}

func (s State) clone() State {
	clone := s
	clone.Booking = s.Booking.Clone()
	clone.Slots = models.Slots{
		Available: append([]string(nil), s.Slots.Available...),
		Booked:    append([]string(nil), s.Slots.Booked...),
	}
	return clone
}

var (
	dateQuickReplies   = []string{"quick.today", "quick.tomorrow", "quick.weekend", "quick.calendar"}
	dayQuickReplies    = []string{"quick.today", "quick.tomorrow", "quick.weekend"}
	friendQuickReplies = []string{"quick.friend_yes", "quick.friend_no"}
	finalQuickReplies  = []string{"quick.book_another", "quick.update", "quick.thanks"}
)

// Transition applies one event to the state and returns the next state plus the effects to run.
// It never performs I/O; now is only used to resolve relative dates and stamp QR payloads.
func Transition(st State, ev Event, now time.Time) (State, []Effect) {
	next := st.clone()

	switch ev := ev.(type) {
	case Started:
		return greet()
	case TextInput:
		return onText(next, strings.TrimSpace(ev.Text), now)
	case StyleSelected:
		return onStyleSelected(next, ev.Name)
	case DatePicked:
		if next.Step != StepDate {
			return st, expired()
		}
		return chooseDate(next, startOfDay(ev.Date), now)
	case SlotsLoaded:
		return onSlotsLoaded(next, ev, now)
	case SlotsFailed:
		if next.Step != StepDate && next.Step != StepTime {
			return st, nil
		}
		return backToDate(next), []Effect{Reply{Key: "date.lookup_failed", QuickReplies: dateQuickReplies}}
	case TimePicked:
		return onTimePicked(st, ev.Time)
	case BookingCreated:
		return onBookingCreated(next, ev.OrderID, now)
	case BookingFailed:
		return onBookingFailed(next, ev.Err)
	}

	return st, nil
}

func onText(st State, text string, now time.Time) (State, []Effect) {
	switch st.Step {
	case StepWelcome:
		switch {
		case containsAny(text, "book", "appointment"):
			st.Step = StepName
			return st, []Effect{Reply{Key: "name.ask_book"}}
		case containsAny(text, "service"):
			return st, showServices()
		default:
			st.Step = StepName
			return st, []Effect{Reply{Key: "name.ask_default"}}
		}

	case StepName, StepFriendName:
		if text == "" {
			return st, []Effect{Reply{Key: "name.ask_again"}}
		}
		st.Booking.Clients[st.Step.clientIndex()].Name = text
		if st.Step == StepName {
			st.Step = StepPhone
			return st, []Effect{Reply{Key: "phone.ask", Data: map[string]any{"name": text}}}
		}
		st.Step = StepFriendPhone
		return st, []Effect{Reply{Key: "friend.ask_phone", Data: map[string]any{"name": text}}}

	case StepPhone, StepFriendPhone:
		return onPhone(st, text)

	case StepFriendOffer:
		if containsAny(text, "yes", "sure", "okay") {
			st.Booking.Clients = append(st.Booking.Clients, models.ClientBooking{})
			st.Booking.HasFriendDiscount = true
			st.Booking.Totals = pricing.ComputeTotals(st.Booking.Clients, true)
			st.Step = StepFriendName
			return st, []Effect{Reply{Key: "friend.ask_name"}}
		}
		st.Step = StepDate
		return st, []Effect{Reply{Key: "date.ask_solo", QuickReplies: dateQuickReplies}}

	case StepConfirmFriend:
		switch {
		case containsAny(text, "yes", "great", "looks"):
			st.Step = StepDate
			return st, []Effect{Reply{Key: "date.ask_both", QuickReplies: dateQuickReplies}}
		case containsAny(text, "change", "back"):
			st.Booking.Clients = st.Booking.Clients[:1]
			st.Booking.HasFriendDiscount = false
			st.Booking.Totals = pricing.ComputeTotals(st.Booking.Clients, false)
			st.Step = StepFriendOffer
			return st, []Effect{Reply{Key: "friend.offer_again", QuickReplies: friendQuickReplies}}
		default:
			return st, []Effect{Reply{Key: "friend.confirm_again"}}
		}

	case StepDate:
		if date, ok := ResolveRelativeDate(text, now); ok {
			return chooseDate(st, date, now)
		}
		return st, []Effect{calendar(now)}

	case StepConfirming:
		if st.Booking.OrderID == "" && containsAny(text, "retry", "try again") {
			return submit(st, st, nil)
		}

	case StepFinal:
		// update/modify is matched first so that "Update my booking" is not read as a new booking.
		switch {
		case containsAny(text, "update", "modify"):
			return st, []Effect{Reply{Key: "final.update"}}
		case containsAny(text, "contact"):
			return st, []Effect{Reply{Key: "final.contact"}}
		case containsAny(text, "book", "appointment"):
			return restart("final.book_again")
		case containsAny(text, "thanks", "bye"):
			return st, []Effect{Reply{Key: "final.farewell"}}
		default:
			return st, []Effect{Reply{
				Key:          "final.menu",
				QuickReplies: []string{"quick.book_another", "quick.update", "quick.contact", "quick.thanks"},
			}}
		}

	case StepHairstyle, StepFriendHairstyle, StepTime:
	}

	return fallback(st, text)
}

// fallback handles text in steps that expect a selection rather than typing.
func fallback(st State, text string) (State, []Effect) {
	switch {
	case containsAny(text, "book", "appointment"):
		return restart("default.book")
	case containsAny(text, "service", "price"):
		return st, showServices()
	case containsAny(text, "contact"):
		return st, []Effect{Reply{Key: "default.contact"}}
	case containsAny(text, "start over"):
		return greet()
	case containsAny(text, "help"):
		return st, []Effect{Reply{
			Key:          "default.help",
			QuickReplies: []string{"quick.book", "quick.view_services", "quick.contact", "quick.start_over"},
		}}
	default:
		return st, []Effect{Reply{
			Key:          "default.menu",
			QuickReplies: []string{"quick.book", "quick.see_services", "quick.get_help"},
		}}
	}
}

func greet() (State, []Effect) {
	return NewState(), []Effect{Reply{
		Key:          "welcome.greeting",
		QuickReplies: []string{"quick.book_appointment", "quick.tell_services"},
	}}
}

func restart(key string) (State, []Effect) {
	st := NewState()
	st.Step = StepName
	return st, []Effect{Reply{Key: key}}
}

func showServices() []Effect {
	return []Effect{
		Reply{Key: "services.list", Attachment: ServiceList{Services: catalog.Services()}},
		Reply{Key: "services.ready", QuickReplies: []string{"quick.lets_book", "quick.more_info"}},
	}
}

func calendar(now time.Time) Reply {
	return Reply{Key: "date.calendar", Attachment: CalendarPicker{From: startOfDay(now)}}
}

// backToDate returns the conversation to the date step with nothing picked, so any
// date choice offered next is accepted.
func backToDate(st State) State {
	st.Step = StepDate
	st.Booking.SelectedDate = nil
	st.Booking.SelectedTime = ""
	st.Booking.PaymentMethod = ""
	st.Slots = models.Slots{}
	return st
}

func expired() []Effect {
	return []Effect{Reply{Key: "selection.expired"}}
}

func onPhone(st State, text string) (State, []Effect) {
	idx := st.Step.clientIndex()
	phone, ok := NormalizePhone(text)
	if !ok {
		if idx == 0 {
			return st, []Effect{Reply{Key: "phone.invalid"}}
		}
		return st, []Effect{Reply{Key: "friend.phone_invalid"}}
	}

	st.Booking.Clients[idx].Phone = phone
	picker := HairstylePicker{Services: catalog.Services(), ClientIndex: idx}
	if idx == 0 {
		st.Step = StepHairstyle
		return st, []Effect{Reply{Key: "hairstyle.ask", Attachment: picker}}
	}

	st.Step = StepFriendHairstyle
	return st, []Effect{Reply{
		Key:        "friend.ask_hairstyle",
		Data:       map[string]any{"name": st.Booking.Clients[idx].Name},
		Attachment: picker,
	}}
}

func onStyleSelected(st State, name string) (State, []Effect) {
	if st.Step != StepHairstyle && st.Step != StepFriendHairstyle {
		return st, expired()
	}

	idx := st.Step.clientIndex()
	svc, ok := catalog.Find(name)
	if !ok {
		return st, []Effect{Reply{
			Key:        "hairstyle.unknown",
			Attachment: HairstylePicker{Services: catalog.Services(), ClientIndex: idx},
		}}
	}

	st.Booking.Clients[idx].Hairstyle = svc.Name
	st.Booking.Clients[idx].Price = svc.Price
	st.Booking.Totals = pricing.ComputeTotals(st.Booking.Clients, st.Booking.HasFriendDiscount)

	if idx == 0 {
		st.Step = StepFriendOffer
		return st, []Effect{
			Reply{Key: "hairstyle.chosen", Data: map[string]any{"emoji": svc.Emoji, "service": svc.Name}},
			Reply{Key: "friend.offer", QuickReplies: friendQuickReplies},
		}
	}

	st.Step = StepConfirmFriend
	return st, []Effect{
		Reply{Key: "friend.pricing", Attachment: PricingBreakdown{
			Clients: append([]models.ClientBooking(nil), st.Booking.Clients...),
			Totals:  st.Booking.Totals,
		}},
		Reply{Key: "friend.confirm", QuickReplies: []string{"quick.looks_great", "quick.change"}},
	}
}

func chooseDate(st State, date, now time.Time) (State, []Effect) {
	if date.Before(startOfDay(now)) {
		return st, []Effect{Reply{
			Key:          "date.past",
			Attachment:   CalendarPicker{From: startOfDay(now)},
			QuickReplies: dayQuickReplies,
		}}
	}
	return st, []Effect{LookupSlots{Date: date}}
}

func onSlotsLoaded(st State, ev SlotsLoaded, now time.Time) (State, []Effect) {
	if st.Step != StepDate && st.Step != StepTime {
		return st, nil
	}

	label := DateLabel(ev.Date)
	if len(ev.Slots.Available) == 0 {
		return backToDate(st), []Effect{Reply{
			Key:          "date.full",
			Data:         map[string]any{"date": label},
			Attachment:   CalendarPicker{From: startOfDay(now)},
			QuickReplies: dayQuickReplies,
		}}
	}

	date := ev.Date
	st.Booking.SelectedDate = &date
	st.Slots = ev.Slots
	picker := Reply{Key: "time.pick", Attachment: TimeSlotPicker{Date: date, Slots: ev.Slots}}

	if st.Step == StepTime {
		return st, []Effect{picker}
	}

	st.Step = StepTime
	return st, []Effect{Reply{Key: "date.chosen", Data: map[string]any{"date": label}}, picker}
}

func onTimePicked(st State, label string) (State, []Effect) {
	if st.Step != StepTime {
		return st, expired()
	}

	if label != "" && !st.Slots.IsAvailable(label) {
		return st, []Effect{Reply{
			Key:        "time.unavailable",
			Data:       map[string]any{"time": label},
			Attachment: TimeSlotPicker{Date: derefDate(st.Booking.SelectedDate), Slots: st.Slots},
		}}
	}

	next := st.clone()
	next.Booking.SelectedTime = label
	next.Booking.PaymentMethod = models.PaymentCash
	next.Step = StepConfirming

	return submit(st, next, []Effect{
		Reply{Key: "time.chosen", Data: map[string]any{"time": label}},
		Reply{Key: "booking.summary", Attachment: BookingSummary{Booking: next.Booking.Clone()}},
	})
}

// submit builds the booking request from next. When the date or time is missing it
// apologizes and keeps prev, so the gateway is never called with an incomplete booking.
func submit(prev, next State, lead []Effect) (State, []Effect) {
	req, err := bookingRequest(next.Booking)
	if err != nil {
		return prev, []Effect{Reply{Key: "booking.incomplete"}}
	}

	effects := append(lead, Reply{Key: "booking.creating"}, SubmitBooking{Request: req})
	return next, effects
}

func bookingRequest(booking models.BookingSession) (models.BookingRequest, error) {
	if booking.SelectedDate == nil || booking.SelectedTime == "" {
		return models.BookingRequest{}, models.ErrIncompleteBooking
	}

	clients := append([]models.ClientBooking(nil), booking.Clients...)
	return models.BookingRequest{
		Clients:           clients,
		DateKey:           DateKey(*booking.SelectedDate),
		Time:              booking.SelectedTime,
		PaymentMethod:     models.PaymentCash,
		HasFriendDiscount: booking.HasFriendDiscount,
		Totals:            pricing.ComputeTotals(clients, booking.HasFriendDiscount),
	}, nil
}

func onBookingCreated(st State, orderID string, now time.Time) (State, []Effect) {
	if st.Step != StepConfirming {
		return st, nil
	}

	st.Booking.OrderID = orderID
	st.Booking.Totals = pricing.ComputeTotals(st.Booking.Clients, st.Booking.HasFriendDiscount)
	st.Step = StepFinal

	arrival, err := ArrivalTime(st.Booking.SelectedTime)
	if err != nil {
		arrival = st.Booking.SelectedTime
	}

	sms := "SMS"
	if len(st.Booking.Clients) > 1 {
		sms = "SMSes"
	}

	booking := st.Booking.Clone()
	return st, []Effect{
		Reply{Key: "booking.confirmed"},
		Reply{
			Key:  "booking.details",
			Data: map[string]any{"order": orderID, "sms": sms},
			Attachment: Confirmation{
				Booking:   booking,
				QRPayload: fmt.Sprintf("loyalty:%s:%d", booking.Clients[0].Phone, now.UnixMilli()),
			},
		},
		Reply{
			Key:        "booking.order_summary",
			Data:       map[string]any{"arrival": arrival},
			Attachment: OrderSummary{Booking: booking, ArrivalTime: arrival},
		},
		SendDailyReport{DateKey: DateKey(derefDate(booking.SelectedDate))},
		Reply{Key: "final.anything_else", QuickReplies: finalQuickReplies},
	}
}

func onBookingFailed(st State, err error) (State, []Effect) {
	if st.Step != StepConfirming {
		return st, nil
	}

	if !errors.Is(err, models.ErrSlotTaken) || st.Booking.SelectedDate == nil {
		return st, []Effect{Reply{Key: "booking.failed", QuickReplies: []string{"quick.retry"}}}
	}

	taken := st.Booking.SelectedTime
	st.Slots = withoutSlot(st.Slots, taken)
	st.Booking.SelectedTime = ""
	st.Booking.PaymentMethod = ""
	st.Step = StepTime

	return st, []Effect{
		Reply{Key: "booking.slot_taken", Data: map[string]any{"time": taken}},
		LookupSlots{Date: *st.Booking.SelectedDate},
	}
}

func withoutSlot(slots models.Slots, label string) models.Slots {
	var result models.Slots
	for _, slot := range slots.Available {
		if slot != label {
			result.Available = append(result.Available, slot)
		}
	}
	result.Booked = append(result.Booked, slots.Booked...)
	if label != "" {
		result.Booked = append(result.Booked, label)
		sort.Strings(result.Booked)
	}
	return result
}

func derefDate(date *time.Time) time.Time {
	if date == nil {
		return time.Time{}
	}
	return *date
}
