package service

import "errors"

// ErrorKind группа ошибки, по которой транспорт выбирает код ответа
type ErrorKind string

const (
	KindForbidden  ErrorKind = "forbidden"
	KindNotFound   ErrorKind = "not_found"
	KindValidation ErrorKind = "validation"
	KindConflict   ErrorKind = "conflict"
	KindInternal   ErrorKind = "internal"
)

// Error доменная ошибка планировщика. Сравнивается через errors.Is по Code.
type Error struct {
	Code    string
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is сравнивает ошибки по коду, чтобы обёрнутые копии тоже совпадали
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

func newError(kind ErrorKind, code, message string) *Error {
	return &Error{Code: code, Kind: kind, Message: message}
}

var (
	ErrForbidden = newError(KindForbidden, "forbidden", "operation not allowed for this user")
	ErrNotFound  = newError(KindNotFound, "not_found", "reservation not found")

	// Нарушения конечного автомата брони
	ErrNotModifiable   = newError(KindConflict, "not_modifiable", "only active reservations can be modified")
	ErrNotCancellable  = newError(KindConflict, "not_cancellable", "this reservation cannot be cancelled")
	ErrAlreadyFinished = newError(KindConflict, "already_finished", "reservation is already finished")

	// Абонемент
	ErrNoActivePlan          = newError(KindConflict, "no_active_plan", "client has no active plan")
	ErrPlanExpired           = newError(KindConflict, "plan_expired", "plan has expired")
	ErrDateOutsidePlanWindow = newError(KindValidation, "date_outside_plan_window", "date is outside the plan period")
	ErrNoSessionsRemaining   = newError(KindConflict, "no_sessions_remaining", "plan has no sessions remaining")
	ErrSessionsExhausted     = newError(KindConflict, "sessions_exhausted", "plan has no sessions available")
	ErrPlanNotFound          = newError(KindNotFound, "plan_not_found", "plan not found")
	ErrInvalidPlanChange     = newError(KindValidation, "invalid_plan_change", "new plan has fewer sessions than already used")
	ErrAlreadyHasActivePlan  = newError(KindConflict, "already_has_active_plan", "client already has another active plan")

	// Время
	ErrPastDate          = newError(KindValidation, "past_date", "cannot book a past date")
	ErrPastTime          = newError(KindValidation, "past_time", "cannot book a time that has already passed")
	ErrInvalidTimeWindow = newError(KindValidation, "invalid_time_window", "time is outside the allowed booking hours")
	ErrWeekendNotAllowed = newError(KindValidation, "weekend_not_allowed", "only Monday to Friday reservations are allowed")
	ErrTooLateToModify   = newError(KindConflict, "too_late_to_modify", "reservation can only be modified up to 1 hour before it starts")

	// Вместимость и уникальность
	ErrAlreadyHasActiveReservation = newError(KindConflict, "already_has_active_reservation", "client already has an active reservation")
	ErrSlotFull                    = newError(KindConflict, "slot_full", "slot is full")

	ErrInvalidInput = newError(KindValidation, "invalid_input", "invalid input")
	ErrUserNotFound = newError(KindNotFound, "user_not_found", "user not found")
	ErrInternal     = newError(KindInternal, "internal", "internal error")
)

// AsError достаёт доменную ошибку из цепочки
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
