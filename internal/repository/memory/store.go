// Package memory хранилище в памяти процесса с теми же гарантиями, что и
// Postgres-репозитории: транзакции сериализуются одним мьютексом, изменения
// пишутся в копию состояния и подменяют его только при коммите.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Freeeeeet/gym_scheduler/internal/model"
	"github.com/Freeeeeet/gym_scheduler/internal/service"
	"github.com/google/uuid"
)

type state struct {
	users        map[uuid.UUID]model.User
	plans        map[int64]model.Plan
	clientPlans  map[uuid.UUID]model.ClientPlan
	reservations map[uuid.UUID]model.Reservation
}

func newState() *state {
	return &state{
		users:        make(map[uuid.UUID]model.User),
		plans:        make(map[int64]model.Plan),
		clientPlans:  make(map[uuid.UUID]model.ClientPlan),
		reservations: make(map[uuid.UUID]model.Reservation),
	}
}

// clone глубокая копия: транзакция не видит чужих незакоммиченных изменений
func (s *state) clone() *state {
	c := newState()
	for id, u := range s.users {
		if u.TelegramID != nil {
			tid := *u.TelegramID
			u.TelegramID = &tid
		}
		c.users[id] = u
	}
	for id, p := range s.plans {
		c.plans[id] = p
	}
	for id, p := range s.clientPlans {
		p.Plan = nil
		c.clientPlans[id] = p
	}
	for id, r := range s.reservations {
		r.Client = nil
		c.reservations[id] = r
	}
	return c
}

// Store транзакционное хранилище в памяти
type Store struct {
	mu    sync.Mutex // Удерживается на всё время транзакции
	state *state
	now   func() time.Time
}

func NewStore() *Store {
	return &Store{
		state: newState(),
		now:   time.Now,
	}
}

// WithinTx выполняет fn над копией состояния и подменяет состояние,
// только если fn вернула nil
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos service.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &txState{state: s.state.clone(), now: s.now}
	if err := fn(ctx, tx.repositories()); err != nil {
		return err // Откат: копия просто выбрасывается
	}

	s.state = tx.state
	return nil
}

// AddUser добавляет пользователя (для тестов и локального запуска)
func (s *Store) AddUser(user model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.CreatedAt.IsZero() {
		user.CreatedAt = s.now()
	}
	s.state.users[user.ID] = user
}

// AddPlan добавляет тариф в каталог
func (s *Store) AddPlan(plan model.Plan) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.plans[plan.ID] = plan
}

// AddClientPlan добавляет абонемент клиента
func (s *Store) AddClientPlan(plan model.ClientPlan) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if plan.Status == "" {
		plan.Status = model.ClientPlanStatusActive
	}
	plan.Plan = nil
	s.state.clientPlans[plan.ID] = plan
}

// AddReservation добавляет бронь в обход проверок движка
func (s *Store) AddReservation(reservation model.Reservation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if reservation.Status == "" {
		reservation.Status = model.ReservationStatusActive
	}
	reservation.Client = nil
	s.state.reservations[reservation.ID] = reservation
}

// Reservation закоммиченная бронь по ID
func (s *Store) Reservation(id uuid.UUID) (model.Reservation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.state.reservations[id]
	return r, ok
}

// ClientPlan закоммиченный абонемент по ID
func (s *Store) ClientPlan(id uuid.UUID) (model.ClientPlan, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.state.clientPlans[id]
	return p, ok
}

// Reservations все закоммиченные брони
func (s *Store) Reservations() []model.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Reservation, 0, len(s.state.reservations))
	for _, r := range s.state.reservations {
		out = append(out, r)
	}
	return out
}

type txState struct {
	state *state
	now   func() time.Time
}

func (t *txState) repositories() service.Repositories {
	return service.Repositories{
		Reservations: &reservationRepository{tx: t},
		Plans:        &clientPlanRepository{tx: t},
		Catalog:      &catalogRepository{tx: t},
		Users:        &userRepository{tx: t},
	}
}
