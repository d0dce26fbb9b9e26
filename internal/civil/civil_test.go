package civil

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-15")
	require.NoError(t, err)
	assert.Equal(t, Date{Year: 2024, Month: time.January, Day: 15}, d)
	assert.Equal(t, "2024-01-15", d.String())

	_, err = ParseDate("15/01/2024")
	assert.Error(t, err)

	_, err = ParseDate("2024-02-30")
	assert.Error(t, err)
}

func TestParseTime(t *testing.T) {
	tm, err := ParseTime("09:05")
	require.NoError(t, err)
	assert.Equal(t, Time{Hour: 9, Minute: 5}, tm)
	assert.Equal(t, 545, tm.Minutes())

	tm, err = ParseTime("18:30:00")
	require.NoError(t, err)
	assert.Equal(t, "18:30", tm.String())

	_, err = ParseTime("25:00")
	assert.Error(t, err)
}

func TestDateArithmetic(t *testing.T) {
	t.Run("add days across month and year", func(t *testing.T) {
		d := NewDate(2024, time.January, 31)
		assert.Equal(t, "2024-03-01", d.AddDays(30).String())
		assert.Equal(t, "2025-01-01", NewDate(2024, time.December, 31).AddDays(1).String())
		assert.Equal(t, "2024-02-29", NewDate(2024, time.March, 1).AddDays(-1).String())
	})

	t.Run("weekday", func(t *testing.T) {
		assert.Equal(t, time.Monday, NewDate(2024, time.January, 15).Weekday())
		assert.True(t, NewDate(2024, time.January, 13).IsWeekend())
		assert.True(t, NewDate(2024, time.January, 14).IsWeekend())
		assert.False(t, NewDate(2024, time.January, 12).IsWeekend())
	})

	t.Run("compare", func(t *testing.T) {
		a := NewDate(2024, time.January, 15)
		b := NewDate(2024, time.February, 1)
		assert.True(t, a.Before(b))
		assert.True(t, b.After(a))
		assert.Equal(t, 0, a.Compare(NewDate(2024, time.January, 15)))
		assert.Equal(t, b, MaxDate(a, b))
		assert.Equal(t, b, MaxDate(b, a))
	})
}

func TestDateTime(t *testing.T) {
	now := NewDate(2024, time.January, 15).At(Time{Hour: 8, Minute: 30})
	later := NewDate(2024, time.January, 15).At(Time{Hour: 9, Minute: 0})
	nextDay := NewDate(2024, time.January, 16).At(Time{Hour: 6, Minute: 0})

	assert.True(t, now.Before(later))
	assert.True(t, nextDay.After(later))
	assert.Equal(t, 30*time.Minute, later.Sub(now))
	assert.Equal(t, 21*time.Hour, nextDay.Sub(later))
	assert.Equal(t, "2024-01-15T08:30", now.String())
}

func TestZoneClockIgnoresProcessZone(t *testing.T) {
	loc, err := ParseOffset("-03:00")
	require.NoError(t, err)

	clock := NewClock(loc)
	// 02:00 UTC 16 января, а в зале ещё 15 января, 23:00
	clock.now = func() time.Time { return time.Date(2024, time.January, 16, 2, 0, 0, 0, time.UTC) }

	assert.Equal(t, "2024-01-15", clock.Today().String())
	assert.Equal(t, "23:00", clock.Now().Time.String())
}

func TestParseOffset(t *testing.T) {
	loc, err := ParseOffset("+05:30")
	require.NoError(t, err)
	_, offset := time.Date(2024, 1, 1, 0, 0, 0, 0, loc).Zone()
	assert.Equal(t, 5*3600+30*60, offset)

	loc, err = ParseOffset("")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	_, err = ParseOffset("three")
	assert.Error(t, err)
}

func TestJSON(t *testing.T) {
	type payload struct {
		Date Date `json:"date"`
		Time Time `json:"time"`
	}

	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2024-02-01","time":"09:00"}`), &p))
	assert.Equal(t, NewDate(2024, time.February, 1), p.Date)

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2024-02-01","time":"09:00"}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"date":"01.02.2024"}`), &p))
}
