package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/Freeeeeet/gym_scheduler/internal/civil"
	"github.com/Freeeeeet/gym_scheduler/internal/model"
	"github.com/Freeeeeet/gym_scheduler/internal/service"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
	})
	return mock
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

var clientPlanRowColumns = []string{
	"id", "client_id", "plan_id", "start_date", "end_date",
	"sessions_total", "sessions_used", "status", "created_at", "updated_at",
}

func TestReservationInsertMapsOneActiveIndex(t *testing.T) {
	mock := newMock(t)
	repo := NewReservationRepository(mock)
	ctx := context.Background()

	reservation := &model.Reservation{
		ID:       uuid.New(),
		ClientID: uuid.New(),
		Date:     civil.NewDate(2024, 1, 15),
		Time:     civil.Time{Hour: 9},
		Status:   model.ReservationStatusActive,
	}

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO reservations")).
		WithArgs(reservation.ID, reservation.ClientID, "2024-01-15", "09:00", reservation.Status, false).
		WillReturnError(uniqueViolation(oneActiveReservationIndex))

	err := repo.Insert(ctx, reservation)
	assert.ErrorIs(t, err, service.ErrAlreadyHasActiveReservation)

	// Нарушение другого индекса остаётся внутренней ошибкой
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO reservations")).
		WillReturnError(uniqueViolation("reservations_pkey"))

	err = repo.Insert(ctx, reservation)
	require.Error(t, err)
	assert.NotErrorIs(t, err, service.ErrAlreadyHasActiveReservation)
}

func TestReservationInsertReturnsTimestamps(t *testing.T) {
	mock := newMock(t)
	repo := NewReservationRepository(mock)
	created := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO reservations")).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(created, created))

	reservation := &model.Reservation{ID: uuid.New(), ClientID: uuid.New(), Status: model.ReservationStatusActive}
	require.NoError(t, repo.Insert(context.Background(), reservation))
	assert.Equal(t, created, reservation.CreatedAt)
}

func TestReservationConditionalUpdates(t *testing.T) {
	mock := newMock(t)
	repo := NewReservationRepository(mock)
	ctx := context.Background()
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE reservations")).
		WithArgs(model.ReservationStatusFinished, true, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	ok, err := repo.SetStatus(ctx, id, model.ReservationStatusFinished, true)
	require.NoError(t, err)
	assert.False(t, ok)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE reservations")).
		WithArgs("2024-01-16", "10:30", id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	ok, err = repo.UpdateDateTime(ctx, id, civil.NewDate(2024, 1, 16), civil.Time{Hour: 10, Minute: 30})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLocksUseAdvisoryXactLock(t *testing.T) {
	mock := newMock(t)
	repo := NewReservationRepository(mock)
	ctx := context.Background()
	clientID := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("pg_advisory_xact_lock")).
		WithArgs("client:" + clientID.String()).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectExec(regexp.QuoteMeta("pg_advisory_xact_lock")).
		WithArgs("slot:2024-01-15T09:00").
		WillReturnResult(pgxmock.NewResult("SELECT", 1))

	require.NoError(t, repo.LockClient(ctx, clientID))
	require.NoError(t, repo.LockSlot(ctx, model.Slot{Date: civil.NewDate(2024, 1, 15), Time: civil.Time{Hour: 9}}))
}

func TestCountActiveByDateParsesSlots(t *testing.T) {
	mock := newMock(t)
	repo := NewReservationRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY reservation_time")).
		WithArgs("2024-01-15").
		WillReturnRows(pgxmock.NewRows([]string{"slot", "count"}).
			AddRow("07:00", 3).
			AddRow("19:30", 10))

	counts, err := repo.CountActiveByDate(context.Background(), civil.NewDate(2024, 1, 15))
	require.NoError(t, err)
	assert.Equal(t, map[civil.Time]int{
		{Hour: 7}:              3,
		{Hour: 19, Minute: 30}: 10,
	}, counts)
}

func TestClientPlanRenewMapsOneActiveIndex(t *testing.T) {
	mock := newMock(t)
	repo := NewClientPlanRepository(mock)
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE client_plans")).
		WithArgs("2024-01-10", "2024-02-09", id).
		WillReturnError(uniqueViolation(oneActivePlanIndex))

	err := repo.Renew(context.Background(), id, civil.NewDate(2024, 1, 10), civil.NewDate(2024, 2, 9))
	assert.ErrorIs(t, err, service.ErrAlreadyHasActivePlan)
}

func TestClientPlanNotFoundIsNil(t *testing.T) {
	mock := newMock(t)
	repo := NewClientPlanRepository(mock)
	clientID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY end_date DESC")).
		WithArgs(clientID).
		WillReturnError(pgx.ErrNoRows)

	plan, err := repo.GetLatestByClient(context.Background(), clientID)
	require.NoError(t, err)
	assert.Nil(t, plan)
}

func TestExpireEndedPlans(t *testing.T) {
	mock := newMock(t)
	repo := NewClientPlanRepository(mock)
	ctx := context.Background()
	id, clientID := uuid.New(), uuid.New()
	created := time.Date(2023, 12, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("end_date < $1::date")).
		WithArgs("2024-01-10").
		WillReturnRows(pgxmock.NewRows(clientPlanRowColumns).
			AddRow(id, clientID, int64(1), "2024-01-01", "2024-01-09", 8, 3, model.ClientPlanStatusActive, created, created))

	plans, err := repo.ListActiveEndedBefore(ctx, civil.NewDate(2024, 1, 10))
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, id, plans[0].ID)
	assert.Equal(t, civil.NewDate(2024, 1, 9), plans[0].EndDate)
	assert.Equal(t, 5, plans[0].SessionsRemaining())

	mock.ExpectExec(regexp.QuoteMeta("SET status = 'expired'")).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	ok, err := repo.Expire(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)
}
