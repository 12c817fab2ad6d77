package repository_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/Houeta/stylebook-bot/internal/models"
	"github.com/Houeta/stylebook-bot/internal/repository"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	bookingDate = time.Date(2026, time.October, 21, 0, 0, 0, 0, time.UTC)
	createdAt   = time.Date(2026, time.October, 20, 14, 3, 0, 0, time.UTC)
)

func friendRequest() models.BookingRequest {
	return models.BookingRequest{
		Clients: []models.ClientBooking{
			{Name: "Alex", Phone: "0821234567", Hairstyle: "Basic Cut", Price: 150},
			{Name: "Sam", Phone: "0837654321", Hairstyle: "Fade Cut", Price: 200},
		},
		DateKey:           "2026-10-21",
		Time:              "10:00",
		PaymentMethod:     models.PaymentCash,
		HasFriendDiscount: true,
		Totals:            models.Totals{Subtotal: 350, Discount: 35, Total: 315},
	}
}

func TestBookedSlots(t *testing.T) {
	t.Parallel()
	ctx := t.Context()

	t.Run("error - query", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock)

		mock.ExpectQuery(regexp.QuoteMeta(repository.BookedSlotsSQL)).
			WithArgs(bookingDate).
			WillReturnError(assert.AnError)

		_, err = repo.BookedSlots(ctx, bookingDate)

		require.ErrorIs(t, err, assert.AnError)
		require.ErrorContains(t, err, "error querying booked slots")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - rows error", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock)

		mock.ExpectQuery(regexp.QuoteMeta(repository.BookedSlotsSQL)).
			WithArgs(bookingDate).
			WillReturnRows(pgxmock.NewRows([]string{"booking_time"}).
				AddRow("09:00").
				AddRow("10:00").
				RowError(1, assert.AnError))

		_, err = repo.BookedSlots(ctx, bookingDate)

		require.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock)

		mock.ExpectQuery(regexp.QuoteMeta(repository.BookedSlotsSQL)).
			WithArgs(bookingDate).
			WillReturnRows(pgxmock.NewRows([]string{"booking_time"}).AddRow("09:00").AddRow("14:00"))

		slots, err := repo.BookedSlots(ctx, bookingDate)

		require.NoError(t, err)
		assert.Equal(t, []string{"09:00", "14:00"}, slots)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success - nothing booked", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock)

		mock.ExpectQuery(regexp.QuoteMeta(repository.BookedSlotsSQL)).
			WithArgs(bookingDate).
			WillReturnRows(pgxmock.NewRows([]string{"booking_time"}))

		slots, err := repo.BookedSlots(ctx, bookingDate)

		require.NoError(t, err)
		assert.Empty(t, slots)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCreateBooking(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	req := friendRequest()
	orderID := "SB-1A2B3C4D"

	expectInsertBooking := func(mock pgxmock.PgxPoolIface) *pgxmock.ExpectedExec {
		return mock.ExpectExec(regexp.QuoteMeta(repository.InsertBookingSQL)).
			WithArgs(orderID, bookingDate, "10:00", models.PaymentCash, true, 350.0, 35.0, 315.0)
	}

	t.Run("error - begin", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock)
		mock.ExpectBegin().WillReturnError(assert.AnError)

		err = repo.CreateBooking(ctx, orderID, bookingDate, req)

		require.ErrorIs(t, err, assert.AnError)
		require.ErrorContains(t, err, "failed to begin transaction")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - insert booking", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock)
		mock.ExpectBegin()
		expectInsertBooking(mock).WillReturnError(assert.AnError)
		mock.ExpectRollback()

		err = repo.CreateBooking(ctx, orderID, bookingDate, req)

		require.ErrorIs(t, err, assert.AnError)
		require.ErrorContains(t, err, "failed to insert booking")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - slot taken", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock)
		mock.ExpectBegin()
		expectInsertBooking(mock).WillReturnResult(pgxmock.NewResult("INSERT", 0))
		mock.ExpectRollback()

		err = repo.CreateBooking(ctx, orderID, bookingDate, req)

		require.ErrorIs(t, err, models.ErrSlotTaken)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - insert client", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock)
		mock.ExpectBegin()
		expectInsertBooking(mock).WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectExec(regexp.QuoteMeta(repository.InsertBookingClientSQL)).
			WithArgs(orderID, 1, "Alex", "0821234567", "Basic Cut", 150.0).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectExec(regexp.QuoteMeta(repository.InsertBookingClientSQL)).
			WithArgs(orderID, 2, "Sam", "0837654321", "Fade Cut", 200.0).
			WillReturnError(assert.AnError)
		mock.ExpectRollback()

		err = repo.CreateBooking(ctx, orderID, bookingDate, req)

		require.ErrorIs(t, err, assert.AnError)
		require.ErrorContains(t, err, "failed to insert client 2 of booking SB-1A2B3C4D")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - commit", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock)
		mock.ExpectBegin()
		expectInsertBooking(mock).WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectExec(regexp.QuoteMeta(repository.InsertBookingClientSQL)).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectExec(regexp.QuoteMeta(repository.InsertBookingClientSQL)).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectCommit().WillReturnError(assert.AnError)

		err = repo.CreateBooking(ctx, orderID, bookingDate, req)

		require.ErrorIs(t, err, assert.AnError)
		require.ErrorContains(t, err, "failed to commit booking")
	})

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock)
		mock.ExpectBegin()
		expectInsertBooking(mock).WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectExec(regexp.QuoteMeta(repository.InsertBookingClientSQL)).
			WithArgs(orderID, 1, "Alex", "0821234567", "Basic Cut", 150.0).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectExec(regexp.QuoteMeta(repository.InsertBookingClientSQL)).
			WithArgs(orderID, 2, "Sam", "0837654321", "Fade Cut", 200.0).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectCommit()

		err = repo.CreateBooking(ctx, orderID, bookingDate, req)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBookingsByDate(t *testing.T) {
	t.Parallel()
	ctx := t.Context()

	columns := []string{
		"order_id", "booking_date", "booking_time", "payment_method", "has_friend_discount",
		"subtotal", "discount", "total", "created_at", "name", "phone", "hairstyle", "price",
	}

	t.Run("error - query", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock)
		mock.ExpectQuery(regexp.QuoteMeta(repository.BookingsByDateSQL)).
			WithArgs(bookingDate).
			WillReturnError(assert.AnError)

		_, err = repo.BookingsByDate(ctx, bookingDate)

		require.ErrorIs(t, err, assert.AnError)
		require.ErrorContains(t, err, "error querying bookings")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - scan", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock)
		mock.ExpectQuery(regexp.QuoteMeta(repository.BookingsByDateSQL)).
			WithArgs(bookingDate).
			WillReturnRows(pgxmock.NewRows(columns).AddRow(
				"SB-1", bookingDate, "09:00", "cash", false,
				"not a number", 0.0, 150.0, createdAt, "Alex", "0821234567", "Basic Cut", 150.0,
			))

		_, err = repo.BookingsByDate(ctx, bookingDate)

		require.Error(t, err)
		require.ErrorContains(t, err, "error scanning booking row")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success - groups clients by booking", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock)
		mock.ExpectQuery(regexp.QuoteMeta(repository.BookingsByDateSQL)).
			WithArgs(bookingDate).
			WillReturnRows(pgxmock.NewRows(columns).
				AddRow("SB-1", bookingDate, "09:00", "cash", false, 150.0, 0.0, 150.0, createdAt,
					"Alex", "0821234567", "Basic Cut", 150.0).
				AddRow("SB-2", bookingDate, "11:00", "cash", true, 350.0, 35.0, 315.0, createdAt,
					"Jo", "0831112222", "Kids Cut", 150.0).
				AddRow("SB-2", bookingDate, "11:00", "cash", true, 350.0, 35.0, 315.0, createdAt,
					"Sam", "0837654321", "Fade Cut", 200.0))

		bookings, err := repo.BookingsByDate(ctx, bookingDate)

		require.NoError(t, err)
		require.Len(t, bookings, 2)

		assert.Equal(t, "SB-1", bookings[0].OrderID)
		assert.Len(t, bookings[0].Clients, 1)

		assert.Equal(t, "SB-2", bookings[1].OrderID)
		assert.Equal(t, "11:00", bookings[1].Time)
		assert.True(t, bookings[1].HasFriendDiscount)
		assert.InDelta(t, 315.0, bookings[1].Total, 0.001)
		assert.Equal(t, createdAt, bookings[1].CreatedAt)
		require.Len(t, bookings[1].Clients, 2)
		assert.Equal(t, "Sam", bookings[1].Clients[1].Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success - empty day", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock)
		mock.ExpectQuery(regexp.QuoteMeta(repository.BookingsByDateSQL)).
			WithArgs(bookingDate).
			WillReturnRows(pgxmock.NewRows(columns))

		bookings, err := repo.BookingsByDate(ctx, bookingDate)

		require.NoError(t, err)
		assert.Empty(t, bookings)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
