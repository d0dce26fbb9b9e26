package model

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleClient  Role = "client"
	RoleTrainer Role = "trainer"
	RoleAdmin   Role = "admin"
)

// ParseRole возвращает роль и false для неизвестных значений
func ParseRole(s string) (Role, bool) {
	switch r := Role(s); r {
	case RoleClient, RoleTrainer, RoleAdmin:
		return r, true
	default:
		return "", false
	}
}

type User struct {
	ID         uuid.UUID `json:"id"`
	TelegramID *int64    `json:"telegram_id,omitempty"` // указатель - аккаунт может быть не привязан
	Name       string    `json:"name"`
	Lastname   string    `json:"lastname"`
	Phone      string    `json:"phone,omitempty"`
	Role       Role      `json:"role"`
	CreatedAt  time.Time `json:"created_at"`
}

// FullName имя и фамилия через пробел
func (u *User) FullName() string {
	if u.Lastname == "" {
		return u.Name
	}
	return u.Name + " " + u.Lastname
}
