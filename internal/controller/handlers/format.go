package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/gym_scheduler/internal/civil"
	"github.com/Freeeeeet/gym_scheduler/internal/model"
	"github.com/Freeeeeet/gym_scheduler/internal/service"
)

var weekdayNames = [...]string{
	"воскресенье",
	"понедельник",
	"вторник",
	"среда",
	"четверг",
	"пятница",
	"суббота",
}

var weekdayShort = [...]string{"Вс", "Пн", "Вт", "Ср", "Чт", "Пт", "Сб"}

// formatDate 15.01.2024 (понедельник)
func formatDate(d civil.Date) string {
	return fmt.Sprintf("%02d.%02d.%d (%s)", d.Day, int(d.Month), d.Year, weekdayNames[d.Weekday()])
}

// formatDateShort Пн 15.01, для кнопок
func formatDateShort(d civil.Date) string {
	return fmt.Sprintf("%s %02d.%02d", weekdayShort[d.Weekday()], d.Day, int(d.Month))
}

// pluralizeSessions возвращает правильное склонение слова "тренировка"
func pluralizeSessions(count int) string {
	if count%10 == 1 && count%100 != 11 {
		return "тренировка"
	}
	if count%10 >= 2 && count%10 <= 4 && (count%100 < 10 || count%100 >= 20) {
		return "тренировки"
	}
	return "тренировок"
}

// pluralizePlaces возвращает правильное склонение слова "место"
func pluralizePlaces(count int) string {
	if count%10 == 1 && count%100 != 11 {
		return "место"
	}
	if count%10 >= 2 && count%10 <= 4 && (count%100 < 10 || count%100 >= 20) {
		return "места"
	}
	return "мест"
}

func statusLabel(s model.ReservationStatus) string {
	switch s {
	case model.ReservationStatusActive:
		return "🟢 активна"
	case model.ReservationStatusFinished:
		return "✅ проведена"
	case model.ReservationStatusCancelled:
		return "❌ отменена"
	default:
		return string(s)
	}
}

// formatReservation карточка брони для клиента
func formatReservation(r *model.Reservation) string {
	return fmt.Sprintf(
		"📅 %s\n🕐 %s\nСтатус: %s",
		formatDate(r.Date), r.Time, statusLabel(r.Status),
	)
}

// formatPlan карточка абонемента
func formatPlan(p *model.ClientPlan) string {
	var sb strings.Builder
	sb.WriteString("🎫 Ваш абонемент\n\n")
	if p.Plan != nil {
		sb.WriteString(fmt.Sprintf("Тариф: %s\n", p.Plan.Name))
	}
	sb.WriteString(fmt.Sprintf("Период: %s - %s\n", formatDate(p.StartDate), formatDate(p.EndDate)))

	remaining := p.SessionsRemaining()
	sb.WriteString(fmt.Sprintf("Использовано: %d из %d\n", p.SessionsUsed, p.SessionsTotal))
	sb.WriteString(fmt.Sprintf("Осталось: %d %s", remaining, pluralizeSessions(remaining)))
	return sb.String()
}

// formatAvailability список часов с количеством свободных мест
func formatAvailability(date civil.Date, slots []service.SlotAvailability) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🗓 %s\n\n", formatDate(date)))
	for _, s := range slots {
		if s.Full {
			sb.WriteString(fmt.Sprintf("🔴 %s - мест нет\n", s.Time))
			continue
		}
		sb.WriteString(fmt.Sprintf("🟢 %s - %d %s\n", s.Time, s.Available, pluralizePlaces(s.Available)))
	}
	return sb.String()
}

// formatAgendaLine строка брони в расписании тренера
func formatAgendaLine(r *model.Reservation, withDate bool) string {
	name := "клиент"
	if r.Client != nil {
		name = r.Client.FullName()
	}

	prefix := r.Time.String()
	if withDate {
		prefix = formatDateShort(r.Date) + " " + prefix
	}
	return fmt.Sprintf("• %s %s\n  /finish_%s", prefix, name, shortID(r))
}

// shortID полный UUID без дефисов, чтобы Telegram распознал команду целиком
func shortID(r *model.Reservation) string {
	return strings.ReplaceAll(r.ID.String(), "-", "")
}

// parseDateInput понимает 2024-01-15, 15.01.2024 и 15.01 (текущий или следующий год)
func parseDateInput(s string, today civil.Date) (civil.Date, error) {
	s = strings.TrimSpace(s)
	if d, err := civil.ParseDate(s); err == nil {
		return d, nil
	}

	if t, err := time.Parse("02.01.2006", s); err == nil {
		return civil.DateOf(t), nil
	}

	t, err := time.Parse("02.01", s)
	if err != nil {
		return civil.Date{}, fmt.Errorf("unrecognized date %q", s)
	}

	d := civil.NewDate(today.Year, t.Month(), t.Day())
	if d.Before(today) {
		d = civil.NewDate(today.Year+1, t.Month(), t.Day())
	}
	return d, nil
}

// parseTimeInput понимает 18:30 и 18.30
func parseTimeInput(s string) (civil.Time, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ".", ":")
	return civil.ParseTime(s)
}
