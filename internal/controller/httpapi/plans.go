package httpapi

import (
	"net/http"

	"github.com/Freeeeeet/gym_scheduler/internal/model"
	"github.com/Freeeeeet/gym_scheduler/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// MyPlan handles GET /api/v1/plans/mine
func (h *Handler) MyPlan(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFrom(r.Context())

	plan, err := h.ledger.GetClientPlan(r.Context(), caller)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"plan": plan})
}

// ListPlans handles GET /api/v1/plans
func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.ledger.Catalog(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	if plans == nil {
		plans = []*model.Plan{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"plans": plans})
}

// RenewPlan handles POST /api/v1/renew-plan
func (h *Handler) RenewPlan(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFrom(r.Context())

	var req RenewPlanRequest
	if !h.bind(w, r, &req) {
		return
	}

	id, _ := uuid.Parse(req.ClientPlanID)
	plan, err := h.ledger.Renew(r.Context(), caller, id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"start_date": plan.StartDate,
		"end_date":   plan.EndDate,
	})
}

// ChangePlan handles POST /api/v1/change-plan
func (h *Handler) ChangePlan(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFrom(r.Context())

	var req ChangePlanRequest
	if !h.bind(w, r, &req) {
		return
	}

	id, _ := uuid.Parse(req.ClientPlanID)
	plan, err := h.ledger.ChangePlan(r.Context(), caller, id, req.NewPlanID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"plan_id":        plan.PlanID,
		"sessions_total": plan.SessionsTotal,
	})
}

// LinkTelegram handles POST /api/v1/admin/users/{id}/telegram
func (h *Handler) LinkTelegram(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFrom(r.Context())

	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, service.ErrInvalidInput.Code, "invalid user id")
		return
	}

	var req LinkTelegramRequest
	if !h.bind(w, r, &req) {
		return
	}

	if err := h.users.LinkTelegram(r.Context(), caller, userID, req.TelegramID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
