package gateway_test

import (
	"testing"
	"time"

	"github.com/Houeta/stylebook-bot/internal/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHours(t *testing.T) {
	tests := []struct {
		name     string
		open     string
		closing  string
		duration time.Duration
		wantErr  string
	}{
		{name: "valid", open: "09:00", closing: "17:00", duration: time.Hour},
		{name: "bad opening", open: "9am", closing: "17:00", duration: time.Hour, wantErr: "invalid opening time"},
		{name: "bad closing", open: "09:00", closing: "25:00", duration: time.Hour, wantErr: "invalid closing time"},
		{name: "closes before opening", open: "17:00", closing: "09:00", duration: time.Hour, wantErr: "is not after"},
		{name: "zero duration", open: "09:00", closing: "17:00", wantErr: "slot duration must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hours, err := gateway.ParseHours(nil, tt.open, tt.closing, tt.duration, nil)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, time.UTC, hours.Location)
			assert.Equal(t, 9*time.Hour, hours.Open)
		})
	}
}

func TestHours_Slots(t *testing.T) {
	hours, err := gateway.ParseHours(time.UTC, "09:00", "11:15", 30*time.Minute, []time.Weekday{time.Sunday})
	require.NoError(t, err)

	assert.Equal(t, []string{"09:00", "09:30", "10:00", "10:30"}, hours.Slots(day(21)))
	assert.Nil(t, hours.Slots(day(25)), "sunday is closed")
	assert.True(t, hours.IsClosed(day(25)))
	assert.False(t, hours.IsClosed(day(24)))
}

func TestHours_At(t *testing.T) {
	location := time.FixedZone("SAST", 2*60*60)
	hours, err := gateway.ParseHours(location, "09:00", "17:00", time.Hour, nil)
	require.NoError(t, err)

	got := hours.At(time.Date(2026, time.October, 21, 0, 0, 0, 0, location), "14:30")

	assert.Equal(t, time.Date(2026, time.October, 21, 12, 30, 0, 0, time.UTC), got.UTC())
}
