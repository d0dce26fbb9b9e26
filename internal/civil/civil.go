// Package civil содержит календарные дату и время без часового пояса.
//
// Значения сравниваются по полям (год, месяц, день, час, минута), а не как
// моменты времени: строка "2024-01-15" никогда не превращается в полночь UTC,
// поэтому календарный день не «уезжает» относительно зоны зала.
package civil

import (
	"fmt"
	"time"
)

// Date календарная дата без часового пояса
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// Time время суток с точностью до минуты
type Time struct {
	Hour   int
	Minute int
}

// DateTime дата и время суток без часового пояса
type DateTime struct {
	Date Date
	Time Time
}

// NewDate создаёт дату, нормализуя переполнения (31 февраля -> 2 марта)
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf берёт календарную дату из t в его собственной зоне
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// TimeOf берёт время суток из t в его собственной зоне
func TimeOf(t time.Time) Time {
	return Time{Hour: t.Hour(), Minute: t.Minute()}
}

// DateTimeOf берёт дату и время суток из t в его собственной зоне
func DateTimeOf(t time.Time) DateTime {
	return DateTime{Date: DateOf(t), Time: TimeOf(t)}
}

// ParseDate разбирает дату в формате YYYY-MM-DD
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// ParseTime разбирает время в формате HH:MM (HH:MM:SS из БД тоже принимается, секунды отбрасываются)
func ParseTime(s string) (Time, error) {
	layout := "15:04"
	if len(s) == len("15:04:05") {
		layout = time.TimeOnly
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return TimeOf(t), nil
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// IsZero сообщает, что дата не задана
func (d Date) IsZero() bool {
	return d == Date{}
}

// In возвращает полночь даты в зоне loc
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// AddDays сдвигает дату на n календарных дней
func (d Date) AddDays(n int) Date {
	return NewDate(d.Year, d.Month, d.Day+n)
}

// Weekday день недели даты
func (d Date) Weekday() time.Weekday {
	return d.In(time.UTC).Weekday()
}

// IsWeekend суббота или воскресенье
func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// Compare возвращает -1, 0 или 1
func (d Date) Compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return cmpInt(d.Year, other.Year)
	case d.Month != other.Month:
		return cmpInt(int(d.Month), int(other.Month))
	default:
		return cmpInt(d.Day, other.Day)
	}
}

func (d Date) Before(other Date) bool { return d.Compare(other) < 0 }
func (d Date) After(other Date) bool  { return d.Compare(other) > 0 }

// MaxDate возвращает более позднюю из двух дат
func MaxDate(a, b Date) Date {
	if a.Before(b) {
		return b
	}
	return a
}

func (t Time) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Minutes количество минут от начала суток
func (t Time) Minutes() int {
	return t.Hour*60 + t.Minute
}

// IsValid проверяет диапазоны часов и минут
func (t Time) IsValid() bool {
	return t.Hour >= 0 && t.Hour < 24 && t.Minute >= 0 && t.Minute < 60
}

func (t Time) Compare(other Time) int {
	return cmpInt(t.Minutes(), other.Minutes())
}

func (t Time) Before(other Time) bool { return t.Compare(other) < 0 }
func (t Time) After(other Time) bool  { return t.Compare(other) > 0 }

// At собирает DateTime
func (d Date) At(t Time) DateTime {
	return DateTime{Date: d, Time: t}
}

func (dt DateTime) String() string {
	return dt.Date.String() + "T" + dt.Time.String()
}

func (dt DateTime) Compare(other DateTime) int {
	if c := dt.Date.Compare(other.Date); c != 0 {
		return c
	}
	return dt.Time.Compare(other.Time)
}

func (dt DateTime) Before(other DateTime) bool { return dt.Compare(other) < 0 }
func (dt DateTime) After(other DateTime) bool  { return dt.Compare(other) > 0 }

// Sub возвращает разницу dt - other. Обе стороны считаются в одной
// гражданской шкале без переходов на летнее время.
func (dt DateTime) Sub(other DateTime) time.Duration {
	a := time.Date(dt.Date.Year, dt.Date.Month, dt.Date.Day, dt.Time.Hour, dt.Time.Minute, 0, 0, time.UTC)
	b := time.Date(other.Date.Year, other.Date.Month, other.Date.Day, other.Time.Hour, other.Time.Minute, 0, 0, time.UTC)
	return a.Sub(b)
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
