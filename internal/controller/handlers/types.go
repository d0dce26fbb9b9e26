package handlers

import (
	"github.com/Freeeeeet/gym_scheduler/internal/cache"
	"github.com/Freeeeeet/gym_scheduler/internal/civil"
	"github.com/Freeeeeet/gym_scheduler/internal/controller/state"
	"github.com/Freeeeeet/gym_scheduler/internal/service"
	"go.uber.org/zap"
)

// Handlers содержит все зависимости для обработки команд
type Handlers struct {
	userService       *service.UserService
	schedulingService *service.SchedulingService
	planLedger        *service.PlanLedger
	reservationCache  *cache.ReservationCache
	clock             civil.Clock
	stateManager      *state.Manager
	logger            *zap.Logger
}

// NewHandlers создаёт новый обработчик команд
func NewHandlers(
	userService *service.UserService,
	schedulingService *service.SchedulingService,
	planLedger *service.PlanLedger,
	reservationCache *cache.ReservationCache,
	clock civil.Clock,
	stateManager *state.Manager,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		userService:       userService,
		schedulingService: schedulingService,
		planLedger:        planLedger,
		reservationCache:  reservationCache,
		clock:             clock,
		stateManager:      stateManager,
		logger:            logger,
	}
}
