package gateway

import (
	"fmt"
	"time"

	"github.com/Houeta/stylebook-bot/internal/models"
)

// Hours describes when the salon takes appointments.
type Hours struct {
	Location     *time.Location
	Open         time.Duration // offset from midnight of the first slot
	Close        time.Duration // offset from midnight by which the last slot must end
	SlotDuration time.Duration
	ClosedDays   []time.Weekday
}

// ParseHours builds Hours from "HH:MM" opening and closing times.
func ParseHours(
	location *time.Location,
	open, closing string,
	slotDuration time.Duration,
	closedDays []time.Weekday,
) (Hours, error) {
	openAt, err := parseClock(open)
	if err != nil {
		return Hours{}, fmt.Errorf("invalid opening time: %w", err)
	}
	closeAt, err := parseClock(closing)
	if err != nil {
		return Hours{}, fmt.Errorf("invalid closing time: %w", err)
	}
	if closeAt <= openAt {
		return Hours{}, fmt.Errorf("closing time %s is not after opening time %s", closing, open)
	}
	if slotDuration <= 0 {
		return Hours{}, fmt.Errorf("slot duration must be positive, got %s", slotDuration)
	}
	if location == nil {
		location = time.UTC
	}

	return Hours{
		Location:     location,
		Open:         openAt,
		Close:        closeAt,
		SlotDuration: slotDuration,
		ClosedDays:   closedDays,
	}, nil
}

// IsClosed reports whether the salon does not work on the weekday of date.
func (h Hours) IsClosed(date time.Time) bool {
	for _, day := range h.ClosedDays {
		if date.Weekday() == day {
			return true
		}
	}
	return false
}

// Slots lists the HH:MM labels of every appointment slot on date in ascending order.
func (h Hours) Slots(date time.Time) []string {
	if h.IsClosed(date) || h.SlotDuration <= 0 {
		return nil
	}

	var slots []string
	for offset := h.Open; offset+h.SlotDuration <= h.Close; offset += h.SlotDuration {
		slots = append(slots, formatClock(offset))
	}
	return slots
}

// At returns the moment the slot label starts on date in the salon's location.
func (h Hours) At(date time.Time, label string) time.Time {
	offset, _ := parseClock(label)
	year, month, day := date.In(h.Location).Date()
	return time.Date(year, month, day, 0, 0, 0, 0, h.Location).Add(offset)
}

func parseClock(value string) (time.Duration, error) {
	parsed, err := time.Parse(models.TimeLayout, value)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %q as HH:MM: %w", value, err)
	}
	return time.Duration(parsed.Hour())*time.Hour + time.Duration(parsed.Minute())*time.Minute, nil
}

func formatClock(offset time.Duration) string {
	return fmt.Sprintf("%02d:%02d", int(offset.Hours()), int(offset.Minutes())%60) //nolint:mnd // minutes per hour
}
