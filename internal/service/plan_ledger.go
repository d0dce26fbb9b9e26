package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Freeeeeet/gym_scheduler/internal/civil"
	"github.com/Freeeeeet/gym_scheduler/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultRenewalDays длительность продления абонемента
const DefaultRenewalDays = 30

// PlanLedger ведёт абонементы клиентов: проверка записи, списание сессий,
// продление и смена тарифа
type PlanLedger struct {
	txm         TxManager
	clock       civil.Clock
	renewalDays int
	logger      *zap.Logger
}

func NewPlanLedger(txm TxManager, clock civil.Clock, renewalDays int, logger *zap.Logger) *PlanLedger {
	if renewalDays <= 0 {
		renewalDays = DefaultRenewalDays
	}
	return &PlanLedger{
		txm:         txm,
		clock:       clock,
		renewalDays: renewalDays,
		logger:      logger,
	}
}

// GetActivePlan активный абонемент клиента. Если активного нет, а последний
// абонемент закрыт фоновой задачей, возвращает ErrPlanExpired, иначе ErrNoActivePlan.
func (l *PlanLedger) GetActivePlan(ctx context.Context, plans PlanStore, clientID uuid.UUID) (*model.ClientPlan, error) {
	plan, err := plans.GetActiveByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("get active plan: %w", err)
	}
	if plan != nil {
		return plan, nil
	}

	latest, err := plans.GetLatestByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("get latest plan: %w", err)
	}
	if latest != nil && latest.Status == model.ClientPlanStatusExpired {
		return nil, ErrPlanExpired
	}
	return nil, ErrNoActivePlan
}

// AuthorizeBooking можно ли записаться на date по этому абонементу
func (l *PlanLedger) AuthorizeBooking(plan *model.ClientPlan, date, today civil.Date) error {
	if today.After(plan.EndDate) {
		return ErrPlanExpired
	}
	if plan.SessionsUsed >= plan.SessionsTotal {
		return ErrNoSessionsRemaining
	}
	if !plan.Covers(date) {
		return ErrDateOutsidePlanWindow
	}
	return nil
}

// ConsumeSession списывает одну сессию. Условие в хранилище повторяет
// проверку на момент коммита.
func (l *PlanLedger) ConsumeSession(ctx context.Context, plans PlanStore, planID uuid.UUID) error {
	ok, err := plans.IncrementSessionsUsed(ctx, planID)
	if err != nil {
		return fmt.Errorf("increment sessions used: %w", err)
	}
	if !ok {
		return ErrSessionsExhausted
	}
	return nil
}

// Catalog тарифы зала
func (l *PlanLedger) Catalog(ctx context.Context) ([]*model.Plan, error) {
	var plans []*model.Plan
	err := l.txm.WithinTx(ctx, func(ctx context.Context, repos Repositories) error {
		var err error
		plans, err = repos.Catalog.ListPlans(ctx)
		if err != nil {
			return fmt.Errorf("list plans: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return plans, nil
}

// GetClientPlan активный абонемент клиента вместе с тарифом
func (l *PlanLedger) GetClientPlan(ctx context.Context, caller Caller) (*model.ClientPlan, error) {
	if caller.Role != model.RoleClient {
		return nil, ErrForbidden
	}

	var plan *model.ClientPlan
	err := l.txm.WithinTx(ctx, func(ctx context.Context, repos Repositories) error {
		var err error
		plan, err = l.GetActivePlan(ctx, repos.Plans, caller.UserID)
		if err != nil {
			return err
		}

		catalogPlan, err := repos.Catalog.GetPlanByID(ctx, plan.PlanID)
		if err != nil {
			return fmt.Errorf("get catalog plan: %w", err)
		}
		plan.Plan = catalogPlan
		return nil
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// Renew продлевает абонемент: сессии обнуляются, новый период
// начинается с max(сегодня, прежний end_date)
func (l *PlanLedger) Renew(ctx context.Context, caller Caller, clientPlanID uuid.UUID) (*model.ClientPlan, error) {
	if caller.Role != model.RoleAdmin {
		return nil, ErrForbidden
	}

	var plan *model.ClientPlan
	err := l.txm.WithinTx(ctx, func(ctx context.Context, repos Repositories) error {
		var err error
		plan, err = repos.Plans.GetByIDForUpdate(ctx, clientPlanID)
		if err != nil {
			return fmt.Errorf("get client plan: %w", err)
		}
		if plan == nil {
			return ErrPlanNotFound
		}

		// У клиента может быть только один активный абонемент
		if plan.Status != model.ClientPlanStatusActive {
			current, err := repos.Plans.GetActiveByClientForUpdate(ctx, plan.ClientID)
			if err != nil {
				return fmt.Errorf("get active plan: %w", err)
			}
			if current != nil && current.ID != plan.ID {
				return ErrAlreadyHasActivePlan
			}
		}

		start := civil.MaxDate(l.clock.Today(), plan.EndDate)
		end := start.AddDays(l.renewalDays)

		if err := repos.Plans.Renew(ctx, plan.ID, start, end); err != nil {
			if errors.Is(err, ErrAlreadyHasActivePlan) {
				return err
			}
			return fmt.Errorf("renew plan: %w", err)
		}

		plan.StartDate = start
		plan.EndDate = end
		plan.SessionsUsed = 0
		plan.Status = model.ClientPlanStatusActive
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("Plan renewed",
		zap.String("client_plan_id", plan.ID.String()),
		zap.String("client_id", plan.ClientID.String()),
		zap.String("start_date", plan.StartDate.String()),
		zap.String("end_date", plan.EndDate.String()),
		zap.String("admin_id", caller.UserID.String()),
	)

	return plan, nil
}

// ChangePlan меняет тариф абонемента. sessions_used и даты не трогаются.
func (l *PlanLedger) ChangePlan(ctx context.Context, caller Caller, clientPlanID uuid.UUID, newPlanID int64) (*model.ClientPlan, error) {
	if caller.Role != model.RoleAdmin {
		return nil, ErrForbidden
	}

	var plan *model.ClientPlan
	err := l.txm.WithinTx(ctx, func(ctx context.Context, repos Repositories) error {
		newPlan, err := repos.Catalog.GetPlanByID(ctx, newPlanID)
		if err != nil {
			return fmt.Errorf("get catalog plan: %w", err)
		}
		if newPlan == nil {
			return ErrPlanNotFound
		}

		plan, err = repos.Plans.GetByIDForUpdate(ctx, clientPlanID)
		if err != nil {
			return fmt.Errorf("get client plan: %w", err)
		}
		if plan == nil {
			return ErrPlanNotFound
		}

		// Активный абонемент не может уйти ниже уже использованных сессий
		if plan.Status == model.ClientPlanStatusActive && newPlan.SessionsTotal < plan.SessionsUsed {
			return ErrInvalidPlanChange
		}

		if err := repos.Plans.ChangePlan(ctx, plan.ID, newPlan.ID, newPlan.SessionsTotal); err != nil {
			return fmt.Errorf("change plan: %w", err)
		}

		plan.PlanID = newPlan.ID
		plan.SessionsTotal = newPlan.SessionsTotal
		plan.Plan = newPlan
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.logger.Info("Plan changed",
		zap.String("client_plan_id", plan.ID.String()),
		zap.Int64("plan_id", plan.PlanID),
		zap.Int("sessions_total", plan.SessionsTotal),
		zap.String("admin_id", caller.UserID.String()),
	)

	return plan, nil
}

// ExpireEnded закрывает активные абонементы, у которых end_date уже прошёл.
// Абонемент клиента с активной бронью не трогается: её ещё нужно провести
// или отменить. Проверка идёт под блокировкой клиента, той же, что берёт Create.
func (l *PlanLedger) ExpireEnded(ctx context.Context) (int64, error) {
	var expired int64
	err := l.txm.WithinTx(ctx, func(ctx context.Context, repos Repositories) error {
		candidates, err := repos.Plans.ListActiveEndedBefore(ctx, l.clock.Today())
		if err != nil {
			return fmt.Errorf("list ended plans: %w", err)
		}

		for _, plan := range candidates {
			if err := repos.Reservations.LockClient(ctx, plan.ClientID); err != nil {
				return fmt.Errorf("lock client: %w", err)
			}

			active, err := repos.Reservations.CountActiveByClient(ctx, plan.ClientID)
			if err != nil {
				return fmt.Errorf("count client active reservations: %w", err)
			}
			if active > 0 {
				continue
			}

			ok, err := repos.Plans.Expire(ctx, plan.ID)
			if err != nil {
				return fmt.Errorf("expire plan: %w", err)
			}
			if ok {
				expired++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return expired, nil
}
