package conversation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Houeta/stylebook-bot/internal/models"
)

var phonePattern = regexp.MustCompile(`^0\d{9}$`)

// NormalizePhone strips whitespace and reports whether the result is a valid
// regional number: ten digits starting with 0.
func NormalizePhone(input string) (string, bool) {
	phone := strings.Join(strings.Fields(input), "")
	if !phonePattern.MatchString(phone) {
		return "", false
	}
	return phone, true
}

// containsAny reports whether text contains any of the words, ignoring case.
func containsAny(text string, words ...string) bool {
	lower := strings.ToLower(text)
	for _, word := range words {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

// startOfDay truncates t to midnight in its own location.
func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// ResolveRelativeDate turns "today", "tomorrow" and "weekend" phrases into a date.
// The weekend resolves to the coming Saturday, which is today on a Saturday.
func ResolveRelativeDate(text string, now time.Time) (time.Time, bool) {
	today := startOfDay(now)
	switch {
	case containsAny(text, "today"):
		return today, true
	case containsAny(text, "tomorrow"):
		return today.AddDate(0, 0, 1), true
	case containsAny(text, "weekend"):
		return today.AddDate(0, 0, int(time.Saturday-today.Weekday())), true
	default:
		return time.Time{}, false
	}
}

// ArrivalTime returns the time 30 minutes before an HH:MM appointment, wrapping past midnight.
func ArrivalTime(appointment string) (string, error) {
	const earlyBy = 30 * time.Minute

	parsed, err := time.Parse(models.TimeLayout, appointment)
	if err != nil {
		return "", fmt.Errorf("invalid appointment time %q: %w", appointment, err)
	}
	return parsed.Add(-earlyBy).Format(models.TimeLayout), nil
}

// DateKey formats a date as the ISO key used by the gateway.
func DateKey(date time.Time) string {
	return date.Format(models.DateKeyLayout)
}

// DateLabel formats a date for people, e.g. "Monday, October 19".
func DateLabel(date time.Time) string {
	return date.Format("Monday, January 2")
}
