package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/gym_scheduler/internal/repository/base"
	"github.com/Freeeeeet/gym_scheduler/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store выдаёт репозитории, привязанные к одной транзакции Postgres
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Repositories набор репозиториев поверх пула или транзакции
func Repositories(db base.Querier) service.Repositories {
	return service.Repositories{
		Reservations: NewReservationRepository(db),
		Plans:        NewClientPlanRepository(db),
		Catalog:      NewPlanRepository(db),
		Users:        NewUserRepository(db),
	}
}

// WithinTx выполняет fn в транзакции READ COMMITTED. Гонки закрыты
// блокировками (advisory lock на слот и клиента, FOR UPDATE на строки)
// и условными UPDATE, а не уровнем изоляции.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos service.Repositories) error) error {
	// Начинаем транзакцию
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, Repositories(tx)); err != nil {
		return err
	}

	// Коммитим транзакцию
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
