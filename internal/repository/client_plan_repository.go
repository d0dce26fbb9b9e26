package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/gym_scheduler/internal/civil"
	"github.com/Freeeeeet/gym_scheduler/internal/model"
	"github.com/Freeeeeet/gym_scheduler/internal/repository/base"
	"github.com/Freeeeeet/gym_scheduler/internal/service"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Имя частичного уникального индекса "один активный абонемент на клиента"
const oneActivePlanIndex = "client_plans_one_active_per_client"

const clientPlanColumns = `
	id, client_id, plan_id, start_date::text, end_date::text,
	sessions_total, sessions_used, status, created_at, updated_at
`

type ClientPlanRepository struct {
	*base.Repository
}

func NewClientPlanRepository(db base.Querier) *ClientPlanRepository {
	return &ClientPlanRepository{Repository: base.NewRepository(db)}
}

func scanClientPlan(row pgx.Row) (*model.ClientPlan, error) {
	var (
		p          model.ClientPlan
		start, end string
	)
	err := row.Scan(
		&p.ID,
		&p.ClientID,
		&p.PlanID,
		&start,
		&end,
		&p.SessionsTotal,
		&p.SessionsUsed,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if p.StartDate, err = civil.ParseDate(start); err != nil {
		return nil, err
	}
	if p.EndDate, err = civil.ParseDate(end); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ClientPlanRepository) getOne(ctx context.Context, op, query string, args ...any) (*model.ClientPlan, error) {
	plan, err := scanClientPlan(r.QueryRow(ctx, query, args...))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return plan, nil
}

// GetActiveByClient активный абонемент клиента
func (r *ClientPlanRepository) GetActiveByClient(ctx context.Context, clientID uuid.UUID) (*model.ClientPlan, error) {
	query := `SELECT ` + clientPlanColumns + ` FROM client_plans WHERE client_id = $1 AND status = 'active'`
	return r.getOne(ctx, "get active plan by client", query, clientID)
}

// GetActiveByClientForUpdate активный абонемент клиента с блокировкой строки
func (r *ClientPlanRepository) GetActiveByClientForUpdate(ctx context.Context, clientID uuid.UUID) (*model.ClientPlan, error) {
	query := `SELECT ` + clientPlanColumns + ` FROM client_plans WHERE client_id = $1 AND status = 'active' FOR UPDATE`
	return r.getOne(ctx, "get active plan for update", query, clientID)
}

// GetByIDForUpdate абонемент по ID с блокировкой строки
func (r *ClientPlanRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.ClientPlan, error) {
	query := `SELECT ` + clientPlanColumns + ` FROM client_plans WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, "get client plan for update", query, id)
}

// GetLatestByClient абонемент клиента с самым поздним периодом
func (r *ClientPlanRepository) GetLatestByClient(ctx context.Context, clientID uuid.UUID) (*model.ClientPlan, error) {
	query := `SELECT ` + clientPlanColumns + ` FROM client_plans WHERE client_id = $1 ORDER BY end_date DESC, created_at DESC LIMIT 1`
	return r.getOne(ctx, "get latest plan by client", query, clientID)
}

// IncrementSessionsUsed списывает сессию, только пока остаются свободные
func (r *ClientPlanRepository) IncrementSessionsUsed(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE client_plans
		SET sessions_used = sessions_used + 1, updated_at = now()
		WHERE id = $1 AND status = 'active' AND sessions_used < sessions_total
	`

	affected, err := r.ExecAffected(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("increment sessions used: %w", err)
	}

	return affected > 0, nil
}

// Renew выставляет новый период и обнуляет сессии
func (r *ClientPlanRepository) Renew(ctx context.Context, id uuid.UUID, start, end civil.Date) error {
	query := `
		UPDATE client_plans
		SET start_date = $1::date, end_date = $2::date, sessions_used = 0, status = 'active', updated_at = now()
		WHERE id = $3
	`

	affected, err := r.ExecAffected(ctx, query, start.String(), end.String(), id)
	if err != nil {
		if base.IsUniqueViolation(err, oneActivePlanIndex) {
			return service.ErrAlreadyHasActivePlan
		}
		return fmt.Errorf("renew client plan: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("client plan not found")
	}

	return nil
}

// ChangePlan меняет тариф и количество сессий
func (r *ClientPlanRepository) ChangePlan(ctx context.Context, id uuid.UUID, planID int64, sessionsTotal int) error {
	query := `
		UPDATE client_plans
		SET plan_id = $1, sessions_total = $2, updated_at = now()
		WHERE id = $3
	`

	affected, err := r.ExecAffected(ctx, query, planID, sessionsTotal, id)
	if err != nil {
		return fmt.Errorf("change client plan: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("client plan not found")
	}

	return nil
}

// ListActiveEndedBefore активные абонементы с end_date < date
func (r *ClientPlanRepository) ListActiveEndedBefore(ctx context.Context, date civil.Date) ([]*model.ClientPlan, error) {
	query := `SELECT ` + clientPlanColumns + ` FROM client_plans WHERE status = 'active' AND end_date < $1::date ORDER BY end_date`

	rows, err := r.Query(ctx, query, date.String())
	if err != nil {
		return nil, fmt.Errorf("list ended plans: %w", err)
	}
	defer rows.Close()

	var plans []*model.ClientPlan
	for rows.Next() {
		plan, err := scanClientPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client plan: %w", err)
		}
		plans = append(plans, plan)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate client plans: %w", err)
	}

	return plans, nil
}

// Expire переводит абонемент в expired, только если он ещё активен
func (r *ClientPlanRepository) Expire(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE client_plans
		SET status = 'expired', updated_at = now()
		WHERE id = $1 AND status = 'active'
	`

	affected, err := r.ExecAffected(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("expire client plan: %w", err)
	}

	return affected > 0, nil
}
