package state

import (
	"github.com/Freeeeeet/gym_scheduler/internal/civil"
	"github.com/google/uuid"
)

// UserState шаг диалога пользователя с ботом
type UserState string

const (
	StateNone UserState = "" // Нет активного диалога

	// Запись на тренировку: сначала дата, потом время
	StateBookDate UserState = "book_date"
	StateBookTime UserState = "book_time"

	// Перенос активной брони: новая дата, потом новое время
	StateRescheduleDate UserState = "reschedule_date"
	StateRescheduleTime UserState = "reschedule_time"
)

// Dialog данные незавершённого диалога
type Dialog struct {
	State         UserState
	Date          civil.Date // выбранная дата
	ReservationID uuid.UUID  // переносимая бронь
}

// IsBooking диалог создания брони
func (d Dialog) IsBooking() bool {
	return d.State == StateBookDate || d.State == StateBookTime
}

// IsRescheduling диалог переноса брони
func (d Dialog) IsRescheduling() bool {
	return d.State == StateRescheduleDate || d.State == StateRescheduleTime
}
