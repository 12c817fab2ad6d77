package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Houeta/stylebook-bot/internal/models"
)

// BookedSlots returns the HH:MM labels already booked on the given date in ascending order.
func (r *Repository) BookedSlots(ctx context.Context, date time.Time) ([]string, error) {
	rows, err := r.db.Query(ctx, BookedSlotsSQL, date)
	if err != nil {
		return nil, fmt.Errorf("error querying booked slots: %w", err)
	}
	defer rows.Close()

	var slots []string
	for rows.Next() {
		var slot string
		if err = rows.Scan(&slot); err != nil {
			return nil, fmt.Errorf("error scanning booked slot row: %w", err)
		}
		slots = append(slots, slot)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate booked slot rows: %w", err)
	}

	return slots, nil
}

// CreateBooking stores the booking and its clients in one transaction.
// If the time slot is already taken the transaction is rolled back and
// models.ErrSlotTaken is returned.
func (r *Repository) CreateBooking(
	ctx context.Context,
	orderID string,
	date time.Time,
	req models.BookingRequest,
) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // omitted because checking for errors will not affect the function

	cmdTag, err := tx.Exec(ctx, InsertBookingSQL,
		orderID,
		date,
		req.Time,
		req.PaymentMethod,
		req.HasFriendDiscount,
		req.Subtotal,
		req.Discount,
		req.Total,
	)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return models.ErrSlotTaken
	}

	for i, client := range req.Clients {
		_, err = tx.Exec(ctx, InsertBookingClientSQL,
			orderID,
			i+1,
			client.Name,
			client.Phone,
			client.Hairstyle,
			client.Price,
		)
		if err != nil {
			return fmt.Errorf("failed to insert client %d of booking %s: %w", i+1, orderID, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit booking: %w", err)
	}

	return nil
}

// BookingsByDate loads every booking of the date with its clients, ordered by time.
func (r *Repository) BookingsByDate(ctx context.Context, date time.Time) ([]models.BookingRecord, error) {
	rows, err := r.db.Query(ctx, BookingsByDateSQL, date)
	if err != nil {
		return nil, fmt.Errorf("error querying bookings: %w", err)
	}
	defer rows.Close()

	var bookings []models.BookingRecord
	for rows.Next() {
		var (
			record models.BookingRecord
			client models.ClientBooking
		)
		err = rows.Scan(
			&record.OrderID,
			&record.Date,
			&record.Time,
			&record.PaymentMethod,
			&record.HasFriendDiscount,
			&record.Subtotal,
			&record.Discount,
			&record.Total,
			&record.CreatedAt,
			&client.Name,
			&client.Phone,
			&client.Hairstyle,
			&client.Price,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning booking row: %w", err)
		}

		// rows of the same booking are adjacent because of the ORDER BY
		if last := len(bookings) - 1; last >= 0 && bookings[last].OrderID == record.OrderID {
			bookings[last].Clients = append(bookings[last].Clients, client)
			continue
		}
		record.Clients = []models.ClientBooking{client}
		bookings = append(bookings, record)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate booking rows: %w", err)
	}

	return bookings, nil
}
