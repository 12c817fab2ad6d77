package repository

const BookedSlotsSQL = `
SELECT booking_time
FROM bookings
WHERE booking_date = $1
ORDER BY booking_time;
`

const InsertBookingSQL = `
INSERT INTO bookings (
    order_id, booking_date, booking_time, payment_method,
    has_friend_discount, subtotal, discount, total
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (booking_date, booking_time) DO NOTHING;
`

const InsertBookingClientSQL = `
INSERT INTO booking_clients (order_id, position, name, phone, hairstyle, price)
VALUES ($1, $2, $3, $4, $5, $6);
`

const BookingsByDateSQL = `
SELECT
    b.order_id,
    b.booking_date,
    b.booking_time,
    b.payment_method,
    b.has_friend_discount,
    b.subtotal,
    b.discount,
    b.total,
    b.created_at,
    c.name,
    c.phone,
    c.hairstyle,
    c.price
FROM
    bookings b
JOIN
    booking_clients c ON c.order_id = b.order_id
WHERE
    b.booking_date = $1
ORDER BY
    b.booking_time ASC,
    c.position ASC;
`
