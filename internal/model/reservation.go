package model

import (
	"time"

	"github.com/Freeeeeet/gym_scheduler/internal/civil"
	"github.com/google/uuid"
)

type ReservationStatus string

const (
	ReservationStatusActive    ReservationStatus = "active"    // Ожидает тренировки
	ReservationStatusFinished  ReservationStatus = "finished"  // Тренировка проведена, сессия списана
	ReservationStatusCancelled ReservationStatus = "cancelled" // Отменена, сессия не списывается
)

// IsTerminal из finished и cancelled переходов нет
func (s ReservationStatus) IsTerminal() bool {
	return s == ReservationStatusFinished || s == ReservationStatusCancelled
}

type Reservation struct {
	ID        uuid.UUID         `json:"id"`
	ClientID  uuid.UUID         `json:"client_id"`
	Date      civil.Date        `json:"reservation_date"`
	Time      civil.Time        `json:"reservation_time"`
	Status    ReservationStatus `json:"status"`
	Attended  bool              `json:"attended"` // выставляется только при finished
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`

	// Дополнительные поля для удобства (не из таблицы reservations)
	Client *User `json:"client,omitempty"`
}

// Slot пара (дата, время), на которую бронируются места
func (r *Reservation) Slot() Slot {
	return Slot{Date: r.Date, Time: r.Time}
}

// StartsAt дата и время начала тренировки
func (r *Reservation) StartsAt() civil.DateTime {
	return r.Date.At(r.Time)
}

// Slot ячейка расписания с ограниченной вместимостью
type Slot struct {
	Date civil.Date `json:"date"`
	Time civil.Time `json:"time"`
}

// Key стабильный ключ слота для блокировок и кэша
func (s Slot) Key() string {
	return s.Date.String() + "T" + s.Time.String()
}
