package memory

import (
	"context"
	"sort"

	"github.com/Freeeeeet/gym_scheduler/internal/civil"
	"github.com/Freeeeeet/gym_scheduler/internal/model"
	"github.com/Freeeeeet/gym_scheduler/internal/service"
	"github.com/google/uuid"
)

type reservationRepository struct {
	tx *txState
}

func (r *reservationRepository) Insert(_ context.Context, reservation *model.Reservation) error {
	// Аналог частичного уникального индекса reservations_one_active_per_client
	if reservation.Status == model.ReservationStatusActive {
		for _, existing := range r.tx.state.reservations {
			if existing.ClientID == reservation.ClientID && existing.Status == model.ReservationStatusActive {
				return service.ErrAlreadyHasActiveReservation
			}
		}
	}

	now := r.tx.now()
	reservation.CreatedAt = now
	reservation.UpdatedAt = now

	stored := *reservation
	stored.Client = nil
	r.tx.state.reservations[stored.ID] = stored
	return nil
}

func (r *reservationRepository) GetByID(_ context.Context, id uuid.UUID) (*model.Reservation, error) {
	stored, ok := r.tx.state.reservations[id]
	if !ok {
		return nil, nil
	}
	return &stored, nil
}

func (r *reservationRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	return r.GetByID(ctx, id)
}

func (r *reservationRepository) UpdateDateTime(_ context.Context, id uuid.UUID, date civil.Date, t civil.Time) (bool, error) {
	stored, ok := r.tx.state.reservations[id]
	if !ok || stored.Status != model.ReservationStatusActive {
		return false, nil
	}

	stored.Date = date
	stored.Time = t
	stored.UpdatedAt = r.tx.now()
	r.tx.state.reservations[id] = stored
	return true, nil
}

func (r *reservationRepository) SetStatus(_ context.Context, id uuid.UUID, status model.ReservationStatus, attended bool) (bool, error) {
	stored, ok := r.tx.state.reservations[id]
	if !ok || stored.Status != model.ReservationStatusActive {
		return false, nil
	}

	stored.Status = status
	stored.Attended = attended
	stored.UpdatedAt = r.tx.now()
	r.tx.state.reservations[id] = stored
	return true, nil
}

func (r *reservationRepository) count(match func(model.Reservation) bool) int {
	n := 0
	for _, stored := range r.tx.state.reservations {
		if stored.Status == model.ReservationStatusActive && match(stored) {
			n++
		}
	}
	return n
}

func (r *reservationRepository) CountActiveByClient(_ context.Context, clientID uuid.UUID) (int, error) {
	return r.count(func(res model.Reservation) bool {
		return res.ClientID == clientID
	}), nil
}

func (r *reservationRepository) CountActiveByClientAndDate(_ context.Context, clientID uuid.UUID, date civil.Date) (int, error) {
	return r.count(func(res model.Reservation) bool {
		return res.ClientID == clientID && res.Date == date
	}), nil
}

func (r *reservationRepository) CountActiveBySlot(_ context.Context, slot model.Slot) (int, error) {
	return r.count(func(res model.Reservation) bool {
		return res.Slot() == slot
	}), nil
}

func (r *reservationRepository) CountActiveByDate(_ context.Context, date civil.Date) (map[civil.Time]int, error) {
	counts := make(map[civil.Time]int)
	for _, stored := range r.tx.state.reservations {
		if stored.Status == model.ReservationStatusActive && stored.Date == date {
			counts[stored.Time]++
		}
	}
	return counts, nil
}

// list отбирает брони и сортирует их по дате и времени, как ORDER BY в SQL
func (r *reservationRepository) list(match func(model.Reservation) bool, limit int) []*model.Reservation {
	var out []*model.Reservation
	for _, stored := range r.tx.state.reservations {
		if match(stored) {
			res := stored
			out = append(out, &res)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if c := out[i].StartsAt().Compare(out[j].StartsAt()); c != 0 {
			return c < 0
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (r *reservationRepository) ListByClient(_ context.Context, clientID uuid.UUID) ([]*model.Reservation, error) {
	return r.list(func(res model.Reservation) bool {
		return res.ClientID == clientID
	}, 0), nil
}

func (r *reservationRepository) ListActiveByDate(_ context.Context, date civil.Date) ([]*model.Reservation, error) {
	return r.list(func(res model.Reservation) bool {
		return res.Status == model.ReservationStatusActive && res.Date == date
	}, 0), nil
}

func (r *reservationRepository) ListActiveAfter(_ context.Context, date civil.Date, limit int) ([]*model.Reservation, error) {
	return r.list(func(res model.Reservation) bool {
		return res.Status == model.ReservationStatusActive && res.Date.After(date)
	}, limit), nil
}

// LockClient и LockSlot не нужны: транзакции уже сериализованы мьютексом Store
func (r *reservationRepository) LockClient(context.Context, uuid.UUID) error {
	return nil
}

func (r *reservationRepository) LockSlot(context.Context, model.Slot) error {
	return nil
}
