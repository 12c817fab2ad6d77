package bot_test

import (
	"testing"
	"time"

	"github.com/Houeta/stylebook-bot/internal/bot"
	"github.com/Houeta/stylebook-bot/internal/catalog"
	"github.com/Houeta/stylebook-bot/internal/conversation"
	"github.com/Houeta/stylebook-bot/internal/gateway"
	"github.com/Houeta/stylebook-bot/internal/i18n"
	"github.com/Houeta/stylebook-bot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var wednesday = time.Date(2026, time.October, 21, 0, 0, 0, 0, time.UTC)

func newRenderer(t *testing.T) *bot.Renderer {
	t.Helper()
	localizer, err := i18n.NewLocalizer()
	require.NoError(t, err)
	return bot.NewRenderer(localizer, "en")
}

func friendBooking() models.BookingSession {
	date := wednesday
	return models.BookingSession{
		Clients: []models.ClientBooking{
			{Name: "Alex", Phone: "0821234567", Hairstyle: "Basic Cut", Price: 150},
			{Name: "Sam", Phone: "0837654321", Hairstyle: "Fade Cut", Price: 200},
		},
		SelectedDate:      &date,
		SelectedTime:      "09:00",
		PaymentMethod:     models.PaymentCash,
		HasFriendDiscount: true,
		Totals:            models.Totals{Subtotal: 350, Discount: 35, Total: 315},
		OrderID:           "SB-1A2B3C4D",
	}
}

func TestRenderer_Text(t *testing.T) {
	renderer := newRenderer(t)

	tests := []struct {
		name     string
		msg      conversation.Message
		expected string
	}{
		{
			name:     "plain text",
			msg:      conversation.Message{Text: "Hello"},
			expected: "Hello",
		},
		{
			name: "service list",
			msg: conversation.Message{Text: "Our services:", Attachment: conversation.ServiceList{
				Services: catalog.Services()[:2],
			}},
			expected: "Our services:\n\n✂️ Basic Cut - R150\n🔥 Fade Cut - R200",
		},
		{
			name: "friend pricing",
			msg: conversation.Message{Text: "Pricing:", Attachment: conversation.PricingBreakdown{
				Clients: friendBooking().Clients,
				Totals:  friendBooking().Totals,
			}},
			expected: "Pricing:\n\n" +
				"1. Alex (0821234567): Basic Cut - R150\n" +
				"2. Sam (0837654321): Fade Cut - R200\n" +
				"Subtotal: R350\n" +
				"Friend discount (10%): -R35\n" +
				"Total: R315",
		},
		{
			name: "summary without discount",
			msg: conversation.Message{Text: "Details:", Attachment: conversation.BookingSummary{
				Booking: models.BookingSession{
					Clients:      []models.ClientBooking{{Name: "Kim", Phone: "0820000000", Hairstyle: "Kids Cut", Price: 27.5}},
					SelectedDate: &wednesday,
					SelectedTime: "14:00",
					Totals:       models.Totals{Subtotal: 27.5, Total: 27.5},
				},
			}},
			expected: "Details:\n\n" +
				"1. Kim (0820000000): Kids Cut - R27.50\n" +
				"📅 Wednesday, October 21 at 14:00\n" +
				"Subtotal: R27.50\n" +
				"Total: R27.50\n" +
				"💵 Payment: cash at the salon",
		},
		{
			name: "order summary",
			msg: conversation.Message{Text: "Summary", Attachment: conversation.OrderSummary{
				Booking:     friendBooking(),
				ArrivalTime: "08:30",
			}},
			expected: "Summary\n\n" +
				"🧾 Order: SB-1A2B3C4D\n" +
				"📅 Wednesday, October 21 at 09:00\n" +
				"1. Alex (0821234567): Basic Cut - R150\n" +
				"2. Sam (0837654321): Fade Cut - R200\n" +
				"Total: R315\n" +
				"🚶 Arrive by 08:30",
		},
		{
			name: "pickers add no text",
			msg: conversation.Message{Text: "Pick a day", Attachment: conversation.CalendarPicker{
				From: wednesday,
			}},
			expected: "Pick a day",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, renderer.Text(tt.msg))
		})
	}
}

func TestQRCodeURL(t *testing.T) {
	assert.Equal(t,
		"https://api.qrserver.com/v1/create-qr-code/?size=150x150&data=loyalty%3A0821234567%3A1792573200000",
		bot.QRCodeURL("loyalty:0821234567:1792573200000"),
	)
}

func newKeyboards(t *testing.T, closed ...time.Weekday) *bot.Keyboards {
	t.Helper()
	hours, err := gateway.ParseHours(time.UTC, "09:00", "17:00", time.Hour, closed)
	require.NoError(t, err)
	return bot.NewKeyboards(hours, "❌")
}

func TestKeyboards_HairstylePicker(t *testing.T) {
	markup := newKeyboards(t).Markup(conversation.Message{
		Attachment: conversation.HairstylePicker{Services: catalog.Services()},
	})

	require.NotNil(t, markup)
	require.Len(t, markup.InlineKeyboard, len(catalog.Services()))
	first := markup.InlineKeyboard[0][0]
	assert.Equal(t, "style", first.Unique)
	assert.Equal(t, "Basic Cut", first.Data)
	assert.Equal(t, "✂️ Basic Cut - R150", first.Text)
}

func TestKeyboards_CalendarPicker(t *testing.T) {
	keyboards := newKeyboards(t, time.Sunday)

	days := keyboards.CalendarDays(wednesday)
	require.Len(t, days, 14)
	for _, day := range days {
		assert.NotEqual(t, time.Sunday, day.Weekday())
	}
	assert.Equal(t, wednesday, days[0])

	markup := keyboards.Markup(conversation.Message{Attachment: conversation.CalendarPicker{From: wednesday}})
	require.NotNil(t, markup)
	require.Len(t, markup.InlineKeyboard, 7)
	assert.Equal(t, "date", markup.InlineKeyboard[0][0].Unique)
	assert.Equal(t, "2026-10-21", markup.InlineKeyboard[0][0].Data)
	assert.Equal(t, "Wed 21 Oct", markup.InlineKeyboard[0][0].Text)
}

func TestKeyboards_CalendarAlwaysClosed(t *testing.T) {
	keyboards := newKeyboards(t,
		time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday)

	assert.Empty(t, keyboards.CalendarDays(wednesday))
}

func TestKeyboards_TimeSlotPicker(t *testing.T) {
	markup := newKeyboards(t).Markup(conversation.Message{Attachment: conversation.TimeSlotPicker{
		Date:  wednesday,
		Slots: models.Slots{Available: []string{"09:00", "11:00", "13:00"}, Booked: []string{"10:00"}},
	}})

	require.NotNil(t, markup)
	require.Len(t, markup.InlineKeyboard, 2)
	row := markup.InlineKeyboard[0]
	require.Len(t, row, 3)
	assert.Equal(t, "slot", row[0].Unique)
	assert.Equal(t, "09:00", row[0].Data)
	assert.Equal(t, "slot_booked", row[1].Unique)
	assert.Equal(t, "10:00 ❌", row[1].Text)
	assert.Equal(t, "10:00", row[1].Data)
	assert.Equal(t, "11:00", row[2].Data)
	assert.Equal(t, "13:00", markup.InlineKeyboard[1][0].Data)
}

func TestKeyboards_QuickReplies(t *testing.T) {
	keyboards := newKeyboards(t)

	t.Run("reply keyboard", func(t *testing.T) {
		markup := keyboards.Markup(conversation.Message{QuickReplies: []string{"Today", "Tomorrow", "This weekend"}})

		require.NotNil(t, markup)
		assert.True(t, markup.ResizeKeyboard)
		assert.Empty(t, markup.InlineKeyboard)
		require.Len(t, markup.ReplyKeyboard, 2)
		assert.Equal(t, "Today", markup.ReplyKeyboard[0][0].Text)
		assert.Equal(t, "Tomorrow", markup.ReplyKeyboard[0][1].Text)
		assert.Equal(t, "This weekend", markup.ReplyKeyboard[1][0].Text)
	})

	t.Run("next to a picker", func(t *testing.T) {
		markup := keyboards.Markup(conversation.Message{
			Attachment:   conversation.HairstylePicker{Services: catalog.Services()[:1]},
			QuickReplies: []string{"Start over 🔄"},
		})

		require.NotNil(t, markup)
		require.Len(t, markup.InlineKeyboard, 2)
		quick := markup.InlineKeyboard[1][0]
		assert.Equal(t, "quick", quick.Unique)
		assert.Equal(t, "Start over 🔄", quick.Data)
		assert.Empty(t, markup.ReplyKeyboard)
	})

	t.Run("nothing to show", func(t *testing.T) {
		assert.Nil(t, keyboards.Markup(conversation.Message{Text: "What's your name?"}))
	})
}
