// Package queue описывает события жизненного цикла брони и их публикацию в RabbitMQ.
package queue

import "time"

type EventType string

const (
	EventReservationCreated     EventType = "reservation.created"
	EventReservationRescheduled EventType = "reservation.rescheduled"
	EventReservationFinished    EventType = "reservation.finished"
	EventReservationCancelled   EventType = "reservation.cancelled"
)

// ReservationEvent публикуется после коммита операции над бронью.
// Содержит всё нужное потребителям без запроса в основную БД.
type ReservationEvent struct {
	Type            EventType `json:"type"`
	ReservationID   string    `json:"reservation_id"`
	ClientID        string    `json:"client_id"`
	ActorID         string    `json:"actor_id"`
	ActorRole       string    `json:"actor_role"`
	ReservationDate string    `json:"reservation_date"`
	ReservationTime string    `json:"reservation_time"`
	PreviousDate    string    `json:"previous_date,omitempty"`
	PreviousTime    string    `json:"previous_time,omitempty"`
	Status          string    `json:"status"`
	OccurredAt      time.Time `json:"occurred_at"`
}
