package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/gym_scheduler/internal/model"
	"github.com/Freeeeeet/gym_scheduler/internal/repository/base"
)

// PlanRepository каталог тарифов
type PlanRepository struct {
	*base.Repository
}

func NewPlanRepository(db base.Querier) *PlanRepository {
	return &PlanRepository{Repository: base.NewRepository(db)}
}

// GetPlanByID получает тариф по ID
func (r *PlanRepository) GetPlanByID(ctx context.Context, id int64) (*model.Plan, error) {
	query := `SELECT id, name, sessions_total, price FROM plans WHERE id = $1`

	var plan model.Plan
	err := r.QueryRow(ctx, query, id).Scan(
		&plan.ID,
		&plan.Name,
		&plan.SessionsTotal,
		&plan.Price,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get plan by id: %w", err)
	}

	return &plan, nil
}

// ListPlans все тарифы каталога
func (r *PlanRepository) ListPlans(ctx context.Context) ([]*model.Plan, error) {
	query := `SELECT id, name, sessions_total, price FROM plans ORDER BY sessions_total, id`

	rows, err := r.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	var plans []*model.Plan
	for rows.Next() {
		var plan model.Plan
		if err := rows.Scan(&plan.ID, &plan.Name, &plan.SessionsTotal, &plan.Price); err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		plans = append(plans, &plan)
	}

	return plans, rows.Err()
}
