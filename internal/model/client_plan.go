package model

import (
	"time"

	"github.com/Freeeeeet/gym_scheduler/internal/civil"
	"github.com/google/uuid"
)

type ClientPlanStatus string

const (
	ClientPlanStatusActive  ClientPlanStatus = "active"
	ClientPlanStatusExpired ClientPlanStatus = "expired"
)

// ClientPlan абонемент клиента: период действия и счётчик сессий
type ClientPlan struct {
	ID            uuid.UUID        `json:"id"`
	ClientID      uuid.UUID        `json:"client_id"`
	PlanID        int64            `json:"plan_id"`
	StartDate     civil.Date       `json:"start_date"`
	EndDate       civil.Date       `json:"end_date"`
	SessionsTotal int              `json:"sessions_total"`
	SessionsUsed  int              `json:"sessions_used"`
	Status        ClientPlanStatus `json:"status"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`

	Plan *Plan `json:"plan,omitempty"`
}

// SessionsRemaining сколько сессий ещё можно списать
func (p *ClientPlan) SessionsRemaining() int {
	if p.SessionsUsed >= p.SessionsTotal {
		return 0
	}
	return p.SessionsTotal - p.SessionsUsed
}

// Covers входит ли дата в период действия абонемента
func (p *ClientPlan) Covers(d civil.Date) bool {
	return !d.Before(p.StartDate) && !d.After(p.EndDate)
}
