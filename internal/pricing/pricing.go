// Package pricing computes booking totals.
package pricing

import (
	"math"

	"github.com/Houeta/stylebook-bot/internal/models"
)

// FriendDiscountRate is the share taken off the combined price when a friend joins.
const FriendDiscountRate = 0.10

// ComputeTotals sums client prices and applies the friend discount.
// The discount is rounded to cents so that Total is always Subtotal - Discount.
func ComputeTotals(clients []models.ClientBooking, hasFriendDiscount bool) models.Totals {
	var subtotal float64
	for _, client := range clients {
		subtotal += client.Price
	}

	var discount float64
	if hasFriendDiscount {
		discount = roundCents(subtotal * FriendDiscountRate)
	}

	return models.Totals{
		Subtotal: subtotal,
		Discount: discount,
		Total:    subtotal - discount,
	}
}

func roundCents(amount float64) float64 {
	return math.Round(amount*100) / 100 //nolint:mnd // cents
}
