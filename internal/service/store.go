package service

import (
	"context"

	"github.com/Freeeeeet/gym_scheduler/internal/civil"
	"github.com/Freeeeeet/gym_scheduler/internal/model"
	"github.com/google/uuid"
)

// ReservationStore хранилище броней. Бизнес-проверок не делает, только
// охраняет переходы статусов условием status = 'active'.
type ReservationStore interface {
	Insert(ctx context.Context, reservation *model.Reservation) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Reservation, error)
	// GetByIDForUpdate читает бронь и держит её до конца транзакции
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Reservation, error)
	// UpdateDateTime возвращает false, если бронь уже не active
	UpdateDateTime(ctx context.Context, id uuid.UUID, date civil.Date, t civil.Time) (bool, error)
	// SetStatus возвращает false, если бронь уже не active
	SetStatus(ctx context.Context, id uuid.UUID, status model.ReservationStatus, attended bool) (bool, error)

	CountActiveByClient(ctx context.Context, clientID uuid.UUID) (int, error)
	CountActiveByClientAndDate(ctx context.Context, clientID uuid.UUID, date civil.Date) (int, error)
	CountActiveBySlot(ctx context.Context, slot model.Slot) (int, error)
	// CountActiveByDate количество активных броней по каждому времени дня
	CountActiveByDate(ctx context.Context, date civil.Date) (map[civil.Time]int, error)

	ListByClient(ctx context.Context, clientID uuid.UUID) ([]*model.Reservation, error)
	ListActiveByDate(ctx context.Context, date civil.Date) ([]*model.Reservation, error)
	ListActiveAfter(ctx context.Context, date civil.Date, limit int) ([]*model.Reservation, error)

	// LockClient и LockSlot сериализуют конкурентные транзакции до коммита
	LockClient(ctx context.Context, clientID uuid.UUID) error
	LockSlot(ctx context.Context, slot model.Slot) error
}

// PlanStore хранилище абонементов клиентов
type PlanStore interface {
	GetActiveByClient(ctx context.Context, clientID uuid.UUID) (*model.ClientPlan, error)
	GetActiveByClientForUpdate(ctx context.Context, clientID uuid.UUID) (*model.ClientPlan, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.ClientPlan, error)
	// GetLatestByClient абонемент клиента с самым поздним end_date в любом статусе
	GetLatestByClient(ctx context.Context, clientID uuid.UUID) (*model.ClientPlan, error)
	// IncrementSessionsUsed увеличивает счётчик только если sessions_used < sessions_total
	IncrementSessionsUsed(ctx context.Context, id uuid.UUID) (bool, error)
	Renew(ctx context.Context, id uuid.UUID, start, end civil.Date) error
	ChangePlan(ctx context.Context, id uuid.UUID, planID int64, sessionsTotal int) error
	// ListActiveEndedBefore активные абонементы с end_date < date
	ListActiveEndedBefore(ctx context.Context, date civil.Date) ([]*model.ClientPlan, error)
	// Expire переводит активный абонемент в expired, false если он уже не active
	Expire(ctx context.Context, id uuid.UUID) (bool, error)
}

// CatalogStore каталог тарифов
type CatalogStore interface {
	GetPlanByID(ctx context.Context, id int64) (*model.Plan, error)
	ListPlans(ctx context.Context) ([]*model.Plan, error)
}

// UserStore пользователи зала
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	SetTelegramID(ctx context.Context, id uuid.UUID, telegramID int64) error
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*model.User, error)
}

// Repositories набор хранилищ, привязанных к одной транзакции.
// Get-методы возвращают (nil, nil), если строка не найдена.
type Repositories struct {
	Reservations ReservationStore
	Plans        PlanStore
	Catalog      CatalogStore
	Users        UserStore
}

// TxManager выполняет fn в одной транзакции: всё или ничего
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
