package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Freeeeeet/gym_scheduler/internal/civil"
)

// DefaultBookingWindows окна записи зала: [06:00, 14:00) и [18:30, 22:30]
const DefaultBookingWindows = "[06:00,14:00);[18:30,22:30]"

// DefaultBookingHours часы, которые показываются в расписании доступности
const DefaultBookingHours = "06:00,08:00,09:00,10:00,11:00,12:00,13:00,18:30,19:30,20:30,21:30"

// BookingWindow интервал допустимого времени начала тренировки
type BookingWindow struct {
	Start        civil.Time
	End          civil.Time
	EndInclusive bool
}

func (w BookingWindow) Contains(t civil.Time) bool {
	m := t.Minutes()
	if m < w.Start.Minutes() {
		return false
	}
	if w.EndInclusive {
		return m <= w.End.Minutes()
	}
	return m < w.End.Minutes()
}

func (w BookingWindow) String() string {
	closing := ")"
	if w.EndInclusive {
		closing = "]"
	}
	return "[" + w.Start.String() + "," + w.End.String() + closing
}

// BookingWindows набор окон записи
type BookingWindows []BookingWindow

// Allows попадает ли время хотя бы в одно окно
func (ws BookingWindows) Allows(t civil.Time) bool {
	for _, w := range ws {
		if w.Contains(t) {
			return true
		}
	}
	return false
}

func (ws BookingWindows) String() string {
	parts := make([]string, len(ws))
	for i, w := range ws {
		parts[i] = w.String()
	}
	return strings.Join(parts, ";")
}

// ParseBookingWindows разбирает окна в интервальной записи, разделитель ";".
// Начало всегда включено, конец включён для "]" и исключён для ")".
func ParseBookingWindows(s string) (BookingWindows, error) {
	var windows BookingWindows
	for _, raw := range strings.Split(s, ";") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if len(raw) < 2 || raw[0] != '[' {
			return nil, fmt.Errorf("booking window %q: must start with '['", raw)
		}

		var inclusive bool
		switch raw[len(raw)-1] {
		case ']':
			inclusive = true
		case ')':
			inclusive = false
		default:
			return nil, fmt.Errorf("booking window %q: must end with ']' or ')'", raw)
		}

		bounds := strings.Split(raw[1:len(raw)-1], ",")
		if len(bounds) != 2 {
			return nil, fmt.Errorf("booking window %q: expected two bounds", raw)
		}

		start, err := civil.ParseTime(strings.TrimSpace(bounds[0]))
		if err != nil {
			return nil, fmt.Errorf("booking window %q: %w", raw, err)
		}
		end, err := civil.ParseTime(strings.TrimSpace(bounds[1]))
		if err != nil {
			return nil, fmt.Errorf("booking window %q: %w", raw, err)
		}
		if !start.Before(end) {
			return nil, fmt.Errorf("booking window %q: start must be before end", raw)
		}

		windows = append(windows, BookingWindow{Start: start, End: end, EndInclusive: inclusive})
	}

	if len(windows) == 0 {
		return nil, fmt.Errorf("no booking windows configured")
	}
	return windows, nil
}

// ParseBookingHours разбирает список часов через запятую, сортирует и убирает дубли
func ParseBookingHours(s string) ([]civil.Time, error) {
	seen := make(map[civil.Time]bool)
	var hours []civil.Time
	for _, raw := range strings.Split(s, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		t, err := civil.ParseTime(raw)
		if err != nil {
			return nil, fmt.Errorf("booking hours: %w", err)
		}
		if seen[t] {
			continue
		}
		seen[t] = true
		hours = append(hours, t)
	}
	sort.Slice(hours, func(i, j int) bool { return hours[i].Before(hours[j]) })
	return hours, nil
}

// MustParseBookingWindows для значений по умолчанию и тестов
func MustParseBookingWindows(s string) BookingWindows {
	ws, err := ParseBookingWindows(s)
	if err != nil {
		panic(err)
	}
	return ws
}
