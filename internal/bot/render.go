package bot

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/Houeta/stylebook-bot/internal/conversation"
	"github.com/Houeta/stylebook-bot/internal/models"
)

const qrCodeEndpoint = "https://api.qrserver.com/v1/create-qr-code/?size=150x150&data="

// Renderer turns conversation messages into Telegram text.
type Renderer struct {
	tr   conversation.Translator
	lang string
}

// NewRenderer creates a renderer for one language.
func NewRenderer(tr conversation.Translator, lang string) *Renderer {
	return &Renderer{tr: tr, lang: lang}
}

func (r *Renderer) t(key string, data map[string]interface{}) string {
	return r.tr.GetWithData(r.lang, key, data)
}

// Text returns the message text followed by the textual part of its attachment.
func (r *Renderer) Text(msg conversation.Message) string {
	details := r.attachmentLines(msg.Attachment)
	if len(details) == 0 {
		return msg.Text
	}
	return msg.Text + "\n\n" + strings.Join(details, "\n")
}

func (r *Renderer) attachmentLines(att conversation.Attachment) []string {
	switch att := att.(type) {
	case conversation.ServiceList:
		lines := make([]string, 0, len(att.Services))
		for _, svc := range att.Services {
			lines = append(lines, r.t("summary.service_list", map[string]interface{}{
				"emoji": svc.Emoji,
				"name":  svc.Name,
				"price": formatAmount(svc.Price),
			}))
		}
		return lines
	case conversation.PricingBreakdown:
		return append(r.clientLines(att.Clients), r.totalLines(att.Totals)...)
	case conversation.BookingSummary:
		lines := r.clientLines(att.Booking.Clients)
		lines = append(lines, r.dateLine(att.Booking))
		lines = append(lines, r.totalLines(att.Booking.Totals)...)
		return append(lines, r.t("summary.payment", nil))
	case conversation.Confirmation:
		lines := []string{r.dateLine(att.Booking)}
		lines = append(lines, r.clientLines(att.Booking.Clients)...)
		lines = append(lines, r.t("summary.total", map[string]interface{}{"amount": formatAmount(att.Booking.Total)}))
		return append(lines, r.t("summary.payment", nil))
	case conversation.OrderSummary:
		lines := []string{
			r.t("summary.order", map[string]interface{}{"order": att.Booking.OrderID}),
			r.dateLine(att.Booking),
		}
		lines = append(lines, r.clientLines(att.Booking.Clients)...)
		lines = append(lines, r.t("summary.total", map[string]interface{}{"amount": formatAmount(att.Booking.Total)}))
		return append(lines, r.t("summary.arrival", map[string]interface{}{"arrival": att.ArrivalTime}))
	default:
		// pickers are rendered as keyboards
		return nil
	}
}

func (r *Renderer) clientLines(clients []models.ClientBooking) []string {
	lines := make([]string, 0, len(clients))
	for i, client := range clients {
		lines = append(lines, r.t("summary.client", map[string]interface{}{
			"index":   i + 1,
			"name":    client.Name,
			"phone":   client.Phone,
			"service": client.Hairstyle,
			"price":   formatAmount(client.Price),
		}))
	}
	return lines
}

func (r *Renderer) totalLines(totals models.Totals) []string {
	lines := []string{r.t("summary.subtotal", map[string]interface{}{"amount": formatAmount(totals.Subtotal)})}
	if totals.Discount > 0 {
		lines = append(lines, r.t("summary.discount", map[string]interface{}{"amount": formatAmount(totals.Discount)}))
	}
	return append(lines, r.t("summary.total", map[string]interface{}{"amount": formatAmount(totals.Total)}))
}

func (r *Renderer) dateLine(booking models.BookingSession) string {
	var date string
	if booking.SelectedDate != nil {
		date = conversation.DateLabel(*booking.SelectedDate)
	}
	return r.t("summary.date", map[string]interface{}{"date": date, "time": booking.SelectedTime})
}

// QRCodeURL returns the image URL of the loyalty QR code for a payload.
func QRCodeURL(payload string) string {
	return qrCodeEndpoint + url.QueryEscape(payload)
}

// formatAmount prints whole rand without decimals and anything else with cents.
func formatAmount(amount float64) string {
	if amount == float64(int64(amount)) {
		return strconv.FormatInt(int64(amount), 10)
	}
	return strconv.FormatFloat(amount, 'f', 2, 64)
}
