package bot

import (
	"sort"
	"time"

	"github.com/Houeta/stylebook-bot/internal/conversation"
	"github.com/Houeta/stylebook-bot/internal/gateway"
	"github.com/Houeta/stylebook-bot/internal/models"
	"gopkg.in/telebot.v4"
)

const (
	calendarDays    = 14
	dateButtonsRow  = 2
	slotButtonsRow  = 3
	quickRepliesRow = 2
)

var (
	// inline buttons of the pickers, the payload travels in Data.
	btnStyle      = telebot.InlineButton{Unique: "style"}
	btnDate       = telebot.InlineButton{Unique: "date"}
	btnSlot       = telebot.InlineButton{Unique: "slot"}
	btnBookedSlot = telebot.InlineButton{Unique: "slot_booked"}
	btnQuick      = telebot.InlineButton{Unique: "quick"}
)

// Keyboards builds reply and inline markups for conversation messages.
type Keyboards struct {
	hours        gateway.Hours
	bookedSuffix string
}

// NewKeyboards creates keyboards that hide the days the salon is closed from the calendar.
// bookedSuffix marks slots that are already taken.
func NewKeyboards(hours gateway.Hours, bookedSuffix string) *Keyboards {
	return &Keyboards{hours: hours, bookedSuffix: bookedSuffix}
}

// Markup returns the keyboard of a message. Pickers become inline keyboards with the
// quick replies appended as extra buttons, plain quick replies become a reply keyboard.
// It returns nil when the message has neither.
func (k *Keyboards) Markup(msg conversation.Message) *telebot.ReplyMarkup {
	menu := &telebot.ReplyMarkup{}

	rows := k.pickerRows(menu, msg.Attachment)
	if rows != nil {
		for _, label := range msg.QuickReplies {
			rows = append(rows, menu.Row(menu.Data(label, btnQuick.Unique, label)))
		}
		menu.Inline(rows...)
		return menu
	}

	if len(msg.QuickReplies) == 0 {
		return nil
	}

	menu.ResizeKeyboard = true
	buttons := make([]telebot.Btn, 0, len(msg.QuickReplies))
	for _, label := range msg.QuickReplies {
		buttons = append(buttons, menu.Text(label))
	}
	menu.Reply(menu.Split(quickRepliesRow, buttons)...)
	return menu
}

func (k *Keyboards) pickerRows(menu *telebot.ReplyMarkup, att conversation.Attachment) []telebot.Row {
	switch att := att.(type) {
	case conversation.HairstylePicker:
		rows := make([]telebot.Row, 0, len(att.Services))
		for _, svc := range att.Services {
			rows = append(rows, menu.Row(menu.Data(svc.Label(), btnStyle.Unique, svc.Name)))
		}
		return rows
	case conversation.CalendarPicker:
		days := k.CalendarDays(att.From)
		buttons := make([]telebot.Btn, 0, len(days))
		for _, day := range days {
			buttons = append(buttons, menu.Data(day.Format("Mon 2 Jan"), btnDate.Unique, conversation.DateKey(day)))
		}
		return menu.Split(dateButtonsRow, buttons)
	case conversation.TimeSlotPicker:
		return menu.Split(slotButtonsRow, k.slotButtons(menu, att.Slots))
	default:
		return nil
	}
}

// CalendarDays lists the next open days starting with from.
func (k *Keyboards) CalendarDays(from time.Time) []time.Time {
	closed := make(map[time.Weekday]bool, len(k.hours.ClosedDays))
	for _, day := range k.hours.ClosedDays {
		closed[day] = true
	}
	if len(closed) == len(weekdays) {
		return nil
	}

	days := make([]time.Time, 0, calendarDays)
	for day := from; len(days) < calendarDays; day = day.AddDate(0, 0, 1) {
		if closed[day.Weekday()] {
			continue
		}
		days = append(days, day)
	}
	return days
}

var weekdays = [...]time.Weekday{
	time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday,
}

// slotButtons merges free and booked slots in time order, booked ones only answer with a notice.
func (k *Keyboards) slotButtons(menu *telebot.ReplyMarkup, slots models.Slots) []telebot.Btn {
	type slot struct {
		label  string
		booked bool
	}
	all := make([]slot, 0, len(slots.Available)+len(slots.Booked))
	for _, label := range slots.Available {
		all = append(all, slot{label: label})
	}
	for _, label := range slots.Booked {
		all = append(all, slot{label: label, booked: true})
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].label < all[j].label })

	buttons := make([]telebot.Btn, 0, len(all))
	for _, s := range all {
		if s.booked {
			buttons = append(buttons, menu.Data(s.label+" "+k.bookedSuffix, btnBookedSlot.Unique, s.label))
			continue
		}
		buttons = append(buttons, menu.Data(s.label, btnSlot.Unique, s.label))
	}
	return buttons
}
