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

// Имя частичного уникального индекса "одна активная бронь на клиента"
const oneActiveReservationIndex = "reservations_one_active_per_client"

const reservationColumns = `
	id, client_id, reservation_date::text, to_char(reservation_time, 'HH24:MI'),
	status, attended, created_at, updated_at
`

type ReservationRepository struct {
	*base.Repository
}

func NewReservationRepository(db base.Querier) *ReservationRepository {
	return &ReservationRepository{Repository: base.NewRepository(db)}
}

// scanReservation читает строку с колонками reservationColumns
func scanReservation(row pgx.Row) (*model.Reservation, error) {
	var (
		r          model.Reservation
		date, slot string
	)
	err := row.Scan(
		&r.ID,
		&r.ClientID,
		&date,
		&slot,
		&r.Status,
		&r.Attended,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if r.Date, err = civil.ParseDate(date); err != nil {
		return nil, err
	}
	if r.Time, err = civil.ParseTime(slot); err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *ReservationRepository) list(ctx context.Context, op, query string, args ...any) ([]*model.Reservation, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var reservations []*model.Reservation
	for rows.Next() {
		reservation, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		reservations = append(reservations, reservation)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return reservations, nil
}

// Insert создаёт новую бронь
func (r *ReservationRepository) Insert(ctx context.Context, reservation *model.Reservation) error {
	query := `
		INSERT INTO reservations (id, client_id, reservation_date, reservation_time, status, attended)
		VALUES ($1, $2, $3::date, $4::time, $5, $6)
		RETURNING created_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		reservation.ID,
		reservation.ClientID,
		reservation.Date.String(),
		reservation.Time.String(),
		reservation.Status,
		reservation.Attended,
	).Scan(&reservation.CreatedAt, &reservation.UpdatedAt)

	if err != nil {
		if base.IsUniqueViolation(err, oneActiveReservationIndex) {
			return service.ErrAlreadyHasActiveReservation
		}
		return fmt.Errorf("create reservation: %w", err)
	}

	return nil
}

// GetByID получает бронь по ID
func (r *ReservationRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`

	reservation, err := scanReservation(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get reservation by id: %w", err)
	}

	return reservation, nil
}

// GetByIDForUpdate получает бронь и блокирует строку до конца транзакции
func (r *ReservationRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1 FOR UPDATE`

	reservation, err := scanReservation(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get reservation for update: %w", err)
	}

	return reservation, nil
}

// UpdateDateTime переносит активную бронь
func (r *ReservationRepository) UpdateDateTime(ctx context.Context, id uuid.UUID, date civil.Date, t civil.Time) (bool, error) {
	query := `
		UPDATE reservations
		SET reservation_date = $1::date, reservation_time = $2::time, updated_at = now()
		WHERE id = $3 AND status = 'active'
	`

	affected, err := r.ExecAffected(ctx, query, date.String(), t.String(), id)
	if err != nil {
		return false, fmt.Errorf("update reservation date: %w", err)
	}

	return affected > 0, nil
}

// SetStatus завершает или отменяет активную бронь
func (r *ReservationRepository) SetStatus(ctx context.Context, id uuid.UUID, status model.ReservationStatus, attended bool) (bool, error) {
	query := `
		UPDATE reservations
		SET status = $1, attended = $2, updated_at = now()
		WHERE id = $3 AND status = 'active'
	`

	affected, err := r.ExecAffected(ctx, query, status, attended, id)
	if err != nil {
		return false, fmt.Errorf("update reservation status: %w", err)
	}

	return affected > 0, nil
}

// CountActiveByClient количество активных броней клиента
func (r *ReservationRepository) CountActiveByClient(ctx context.Context, clientID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM reservations WHERE client_id = $1 AND status = 'active'`

	var count int
	if err := r.QueryRow(ctx, query, clientID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count active reservations by client: %w", err)
	}
	return count, nil
}

// CountActiveByClientAndDate количество активных броней клиента на дату
func (r *ReservationRepository) CountActiveByClientAndDate(ctx context.Context, clientID uuid.UUID, date civil.Date) (int, error) {
	query := `
		SELECT COUNT(*) FROM reservations
		WHERE client_id = $1 AND reservation_date = $2::date AND status = 'active'
	`

	var count int
	if err := r.QueryRow(ctx, query, clientID, date.String()).Scan(&count); err != nil {
		return 0, fmt.Errorf("count active reservations by client and date: %w", err)
	}
	return count, nil
}

// CountActiveBySlot количество активных броней на слот
func (r *ReservationRepository) CountActiveBySlot(ctx context.Context, slot model.Slot) (int, error) {
	query := `
		SELECT COUNT(*) FROM reservations
		WHERE reservation_date = $1::date AND reservation_time = $2::time AND status = 'active'
	`

	var count int
	if err := r.QueryRow(ctx, query, slot.Date.String(), slot.Time.String()).Scan(&count); err != nil {
		return 0, fmt.Errorf("count active reservations by slot: %w", err)
	}
	return count, nil
}

// CountActiveByDate занятость каждого времени на дату
func (r *ReservationRepository) CountActiveByDate(ctx context.Context, date civil.Date) (map[civil.Time]int, error) {
	query := `
		SELECT to_char(reservation_time, 'HH24:MI'), COUNT(*)
		FROM reservations
		WHERE reservation_date = $1::date AND status = 'active'
		GROUP BY reservation_time
	`

	rows, err := r.Query(ctx, query, date.String())
	if err != nil {
		return nil, fmt.Errorf("count active reservations by date: %w", err)
	}
	defer rows.Close()

	counts := make(map[civil.Time]int)
	for rows.Next() {
		var (
			slot  string
			count int
		)
		if err := rows.Scan(&slot, &count); err != nil {
			return nil, fmt.Errorf("scan slot count: %w", err)
		}
		t, err := civil.ParseTime(slot)
		if err != nil {
			return nil, fmt.Errorf("scan slot count: %w", err)
		}
		counts[t] = count
	}

	return counts, rows.Err()
}

// ListByClient все брони клиента
func (r *ReservationRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]*model.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE client_id = $1
		ORDER BY reservation_date, reservation_time
	`
	return r.list(ctx, "get reservations by client", query, clientID)
}

// ListActiveByDate активные брони на дату
func (r *ReservationRepository) ListActiveByDate(ctx context.Context, date civil.Date) ([]*model.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE reservation_date = $1::date AND status = 'active'
		ORDER BY reservation_time
	`
	return r.list(ctx, "get active reservations by date", query, date.String())
}

// ListActiveAfter ближайшие активные брони после даты
func (r *ReservationRepository) ListActiveAfter(ctx context.Context, date civil.Date, limit int) ([]*model.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE reservation_date > $1::date AND status = 'active'
		ORDER BY reservation_date, reservation_time
		LIMIT $2
	`
	return r.list(ctx, "get upcoming reservations", query, date.String(), limit)
}

// LockClient сериализует транзакции одного клиента
func (r *ReservationRepository) LockClient(ctx context.Context, clientID uuid.UUID) error {
	if err := r.AdvisoryLock(ctx, "client:"+clientID.String()); err != nil {
		return fmt.Errorf("lock client: %w", err)
	}
	return nil
}

// LockSlot сериализует проверку вместимости и запись в один слот
func (r *ReservationRepository) LockSlot(ctx context.Context, slot model.Slot) error {
	if err := r.AdvisoryLock(ctx, "slot:"+slot.Key()); err != nil {
		return fmt.Errorf("lock slot: %w", err)
	}
	return nil
}
