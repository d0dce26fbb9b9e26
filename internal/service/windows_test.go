package service

import (
	"testing"

	"github.com/Freeeeeet/gym_scheduler/internal/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultBookingWindows(t *testing.T) {
	windows := MustParseBookingWindows(DefaultBookingWindows)

	tests := []struct {
		time    string
		allowed bool
	}{
		{"05:59", false},
		{"06:00", true},
		{"09:00", true},
		{"13:59", true},
		{"14:00", false},
		{"15:00", false},
		{"18:29", false},
		{"18:30", true},
		{"22:30", true},
		{"22:31", false},
	}

	for _, tt := range tests {
		t.Run(tt.time, func(t *testing.T) {
			tm, err := civil.ParseTime(tt.time)
			require.NoError(t, err)
			assert.Equal(t, tt.allowed, windows.Allows(tm))
		})
	}

	assert.Equal(t, DefaultBookingWindows, windows.String())
}

func TestParseBookingWindowsErrors(t *testing.T) {
	for _, raw := range []string{
		"",
		"06:00,14:00",
		"[06:00,14:00",
		"[14:00,06:00)",
		"[06:00,25:00)",
		"[06:00;14:00)",
	} {
		t.Run(raw, func(t *testing.T) {
			_, err := ParseBookingWindows(raw)
			assert.Error(t, err)
		})
	}
}

func TestParseBookingHours(t *testing.T) {
	hours, err := ParseBookingHours("09:00, 06:00,09:00,18:30")
	require.NoError(t, err)
	require.Len(t, hours, 3)
	assert.Equal(t, "06:00", hours[0].String())
	assert.Equal(t, "09:00", hours[1].String())
	assert.Equal(t, "18:30", hours[2].String())

	_, err = ParseBookingHours("9am")
	assert.Error(t, err)
}
