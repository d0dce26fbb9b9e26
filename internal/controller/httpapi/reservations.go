package httpapi

import (
	"context"
	"net/http"

	"github.com/Freeeeeet/gym_scheduler/internal/civil"
	"github.com/Freeeeeet/gym_scheduler/internal/model"
	"github.com/Freeeeeet/gym_scheduler/internal/service"
	"github.com/google/uuid"
)

// bind разбирает и валидирует тело запроса; при ошибке ответ уже отправлен
func (h *Handler) bind(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := decodeJSON(w, r, dst); err != nil {
		writeError(w, http.StatusBadRequest, service.ErrInvalidInput.Code, "invalid request body: "+err.Error())
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, service.ErrInvalidInput.Code, err.Error())
		return false
	}
	return true
}

// CreateReservation handles POST /api/v1/create-reservation
func (h *Handler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFrom(r.Context())

	var req CreateReservationRequest
	if !h.bind(w, r, &req) {
		return
	}

	// Формат уже проверен валидатором
	date, _ := civil.ParseDate(req.ReservationDate)
	t, _ := civil.ParseTime(req.ReservationTime)

	reservation, err := h.scheduling.Create(r.Context(), caller, date, t)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.cache.Invalidate(r.Context(), reservation.ClientID)

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "reservation": reservation})
}

// RescheduleReservation handles POST /api/v1/reschedule-reservation
func (h *Handler) RescheduleReservation(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFrom(r.Context())

	var req RescheduleReservationRequest
	if !h.bind(w, r, &req) {
		return
	}

	id, _ := uuid.Parse(req.ReservationID)
	date, _ := civil.ParseDate(req.NewDate)
	t, _ := civil.ParseTime(req.NewTime)

	reservation, err := h.scheduling.Reschedule(r.Context(), caller, id, date, t)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.cache.Invalidate(r.Context(), reservation.ClientID)

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "reservation": reservation})
}

// FinishReservation handles POST /api/v1/finish-reservation
func (h *Handler) FinishReservation(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.scheduling.Finish)
}

// CancelReservation handles POST /api/v1/cancel-reservation
func (h *Handler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.scheduling.Cancel)
}

type transitionFunc func(ctx context.Context, caller service.Caller, id uuid.UUID) (*model.Reservation, error)

// transition общий обработчик finish и cancel
func (h *Handler) transition(w http.ResponseWriter, r *http.Request, op transitionFunc) {
	caller, _ := CallerFrom(r.Context())

	var req ReservationIDRequest
	if !h.bind(w, r, &req) {
		return
	}

	id, _ := uuid.Parse(req.ReservationID)
	reservation, err := op(r.Context(), caller, id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.cache.Invalidate(r.Context(), reservation.ClientID)

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// MyReservations handles GET /api/v1/reservations/mine[?force=true]
func (h *Handler) MyReservations(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFrom(r.Context())
	force := r.URL.Query().Get("force") == "true"

	reservations, err := h.cache.Get(r.Context(), caller.UserID, force, func(ctx context.Context) ([]*model.Reservation, error) {
		return h.scheduling.ClientReservations(ctx, caller)
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	// Пустой массив вместо null
	if reservations == nil {
		reservations = []*model.Reservation{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"reservations": reservations})
}

// Availability handles GET /api/v1/availability?date=YYYY-MM-DD
func (h *Handler) Availability(w http.ResponseWriter, r *http.Request) {
	date, err := civil.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, service.ErrInvalidInput.Code, "date must be YYYY-MM-DD")
		return
	}

	slots, err := h.scheduling.Availability(r.Context(), date)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"date":     date,
		"capacity": h.scheduling.Capacity(),
		"slots":    slots,
	})
}

// Agenda handles GET /api/v1/agenda
func (h *Handler) Agenda(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFrom(r.Context())

	agenda, err := h.scheduling.TrainerAgenda(r.Context(), caller)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	if agenda.Today == nil {
		agenda.Today = []*model.Reservation{}
	}
	if agenda.Upcoming == nil {
		agenda.Upcoming = []*model.Reservation{}
	}

	writeJSON(w, http.StatusOK, agenda)
}
