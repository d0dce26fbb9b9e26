package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/Freeeeeet/gym_scheduler/internal/civil"
	"github.com/Freeeeeet/gym_scheduler/internal/model"
	"github.com/Freeeeeet/gym_scheduler/internal/service"
	"github.com/google/uuid"
)

type clientPlanRepository struct {
	tx *txState
}

func (r *clientPlanRepository) GetActiveByClient(_ context.Context, clientID uuid.UUID) (*model.ClientPlan, error) {
	for _, stored := range r.tx.state.clientPlans {
		if stored.ClientID == clientID && stored.Status == model.ClientPlanStatusActive {
			p := stored
			return &p, nil
		}
	}
	return nil, nil
}

func (r *clientPlanRepository) GetActiveByClientForUpdate(ctx context.Context, clientID uuid.UUID) (*model.ClientPlan, error) {
	return r.GetActiveByClient(ctx, clientID)
}

func (r *clientPlanRepository) GetByIDForUpdate(_ context.Context, id uuid.UUID) (*model.ClientPlan, error) {
	stored, ok := r.tx.state.clientPlans[id]
	if !ok {
		return nil, nil
	}
	return &stored, nil
}

func (r *clientPlanRepository) GetLatestByClient(_ context.Context, clientID uuid.UUID) (*model.ClientPlan, error) {
	var latest *model.ClientPlan
	for _, stored := range r.tx.state.clientPlans {
		if stored.ClientID != clientID {
			continue
		}
		if latest == nil || stored.EndDate.After(latest.EndDate) ||
			(stored.EndDate == latest.EndDate && stored.CreatedAt.After(latest.CreatedAt)) {
			p := stored
			latest = &p
		}
	}
	return latest, nil
}

func (r *clientPlanRepository) IncrementSessionsUsed(_ context.Context, id uuid.UUID) (bool, error) {
	stored, ok := r.tx.state.clientPlans[id]
	if !ok || stored.Status != model.ClientPlanStatusActive || stored.SessionsUsed >= stored.SessionsTotal {
		return false, nil
	}

	stored.SessionsUsed++
	stored.UpdatedAt = r.tx.now()
	r.tx.state.clientPlans[id] = stored
	return true, nil
}

func (r *clientPlanRepository) Renew(_ context.Context, id uuid.UUID, start, end civil.Date) error {
	stored, ok := r.tx.state.clientPlans[id]
	if !ok {
		return fmt.Errorf("client plan not found")
	}

	// client_plans_one_active_per_client
	for otherID, other := range r.tx.state.clientPlans {
		if otherID != id && other.ClientID == stored.ClientID && other.Status == model.ClientPlanStatusActive {
			return service.ErrAlreadyHasActivePlan
		}
	}

	stored.StartDate = start
	stored.EndDate = end
	stored.SessionsUsed = 0
	stored.Status = model.ClientPlanStatusActive
	stored.UpdatedAt = r.tx.now()
	r.tx.state.clientPlans[id] = stored
	return nil
}

func (r *clientPlanRepository) ChangePlan(_ context.Context, id uuid.UUID, planID int64, sessionsTotal int) error {
	stored, ok := r.tx.state.clientPlans[id]
	if !ok {
		return fmt.Errorf("client plan not found")
	}

	stored.PlanID = planID
	stored.SessionsTotal = sessionsTotal
	stored.UpdatedAt = r.tx.now()
	r.tx.state.clientPlans[id] = stored
	return nil
}

func (r *clientPlanRepository) ListActiveEndedBefore(_ context.Context, date civil.Date) ([]*model.ClientPlan, error) {
	var plans []*model.ClientPlan
	for _, stored := range r.tx.state.clientPlans {
		if stored.Status == model.ClientPlanStatusActive && stored.EndDate.Before(date) {
			p := stored
			plans = append(plans, &p)
		}
	}
	sort.Slice(plans, func(i, j int) bool {
		return plans[i].EndDate.Before(plans[j].EndDate)
	})
	return plans, nil
}

func (r *clientPlanRepository) Expire(_ context.Context, id uuid.UUID) (bool, error) {
	stored, ok := r.tx.state.clientPlans[id]
	if !ok || stored.Status != model.ClientPlanStatusActive {
		return false, nil
	}

	stored.Status = model.ClientPlanStatusExpired
	stored.UpdatedAt = r.tx.now()
	r.tx.state.clientPlans[id] = stored
	return true, nil
}

type catalogRepository struct {
	tx *txState
}

func (r *catalogRepository) GetPlanByID(_ context.Context, id int64) (*model.Plan, error) {
	stored, ok := r.tx.state.plans[id]
	if !ok {
		return nil, nil
	}
	return &stored, nil
}

func (r *catalogRepository) ListPlans(_ context.Context) ([]*model.Plan, error) {
	plans := make([]*model.Plan, 0, len(r.tx.state.plans))
	for _, stored := range r.tx.state.plans {
		p := stored
		plans = append(plans, &p)
	}
	sort.Slice(plans, func(i, j int) bool {
		if plans[i].SessionsTotal != plans[j].SessionsTotal {
			return plans[i].SessionsTotal < plans[j].SessionsTotal
		}
		return plans[i].ID < plans[j].ID
	})
	return plans, nil
}

type userRepository struct {
	tx *txState
}

func (r *userRepository) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	stored, ok := r.tx.state.users[id]
	if !ok {
		return nil, nil
	}
	return &stored, nil
}

func (r *userRepository) GetByTelegramID(_ context.Context, telegramID int64) (*model.User, error) {
	for _, stored := range r.tx.state.users {
		if stored.TelegramID != nil && *stored.TelegramID == telegramID {
			u := stored
			return &u, nil
		}
	}
	return nil, nil
}

func (r *userRepository) SetTelegramID(_ context.Context, id uuid.UUID, telegramID int64) error {
	stored, ok := r.tx.state.users[id]
	if !ok {
		return fmt.Errorf("user not found")
	}

	stored.TelegramID = &telegramID
	r.tx.state.users[id] = stored
	return nil
}

func (r *userRepository) GetByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.User, error) {
	users := make(map[uuid.UUID]*model.User, len(ids))
	for _, id := range ids {
		if stored, ok := r.tx.state.users[id]; ok {
			u := stored
			users[id] = &u
		}
	}
	return users, nil
}
