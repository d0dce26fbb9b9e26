package service

import (
	"github.com/Freeeeeet/gym_scheduler/internal/model"
	"github.com/google/uuid"
)

// Caller аутентифицированный пользователь, от имени которого вызывается операция.
// Идентичность и роль приходят от транспорта (JWT или привязка Telegram).
type Caller struct {
	UserID uuid.UUID
	Role   model.Role
}

func (c Caller) IsStaff() bool {
	return c.Role == model.RoleTrainer || c.Role == model.RoleAdmin
}
