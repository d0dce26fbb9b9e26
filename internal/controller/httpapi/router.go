// Package httpapi HTTP API расписания зала на chi
package httpapi

import (
	"net/http"

	"github.com/Freeeeeet/gym_scheduler/internal/cache"
	"github.com/Freeeeeet/gym_scheduler/internal/model"
	"github.com/Freeeeeet/gym_scheduler/internal/service"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Handler HTTP-обработчики поверх сервисов
type Handler struct {
	scheduling *service.SchedulingService
	ledger     *service.PlanLedger
	users      *service.UserService
	cache      *cache.ReservationCache
	validate   *validator.Validate
	logger     *zap.Logger
}

func NewHandler(
	scheduling *service.SchedulingService,
	ledger *service.PlanLedger,
	users *service.UserService,
	reservationCache *cache.ReservationCache,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		scheduling: scheduling,
		ledger:     ledger,
		users:      users,
		cache:      reservationCache,
		validate:   newValidator(),
		logger:     logger,
	}
}

// NewRouter собирает маршруты API
func NewRouter(h *Handler, jwtSecret []byte) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(RequestLogger(h.logger))

	r.Get("/health", HealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(JWTAuth(jwtSecret))

		// Клиент
		r.With(RequireRole(model.RoleClient)).Post("/create-reservation", h.CreateReservation)
		r.With(RequireRole(model.RoleClient)).Post("/reschedule-reservation", h.RescheduleReservation)
		r.With(RequireRole(model.RoleClient, model.RoleTrainer)).Post("/cancel-reservation", h.CancelReservation)
		r.With(RequireRole(model.RoleClient)).Get("/reservations/mine", h.MyReservations)
		r.With(RequireRole(model.RoleClient)).Get("/plans/mine", h.MyPlan)

		// Все роли
		r.Get("/availability", h.Availability)
		r.Get("/plans", h.ListPlans)

		// Персонал
		r.Group(func(r chi.Router) {
			r.Use(RequireRole(model.RoleTrainer, model.RoleAdmin))
			r.Post("/finish-reservation", h.FinishReservation)
			r.Get("/agenda", h.Agenda)
		})

		// Администратор
		r.Group(func(r chi.Router) {
			r.Use(RequireRole(model.RoleAdmin))
			r.Post("/renew-plan", h.RenewPlan)
			r.Post("/change-plan", h.ChangePlan)
			r.Post("/admin/users/{id}/telegram", h.LinkTelegram)
		})
	})

	return r
}

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
