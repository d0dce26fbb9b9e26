package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Freeeeeet/gym_scheduler/internal/civil"
	"github.com/Freeeeeet/gym_scheduler/internal/model"
	"github.com/Freeeeeet/gym_scheduler/internal/queue"
	"github.com/Freeeeeet/gym_scheduler/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarios(t *testing.T) {
	ctx := context.Background()
	jan15 := civil.NewDate(2024, 1, 15)
	januaryPlan := planOpts{start: civil.NewDate(2024, 1, 1), end: civil.NewDate(2024, 1, 31), total: 8}

	t.Run("A: create in a partly booked slot", func(t *testing.T) {
		env := newTestEnv(t)
		client, _ := env.addClient(januaryPlan)
		env.fillSlot(jan15, hm(9, 0), 2)

		reservation, err := env.svc.Create(ctx, client, jan15, hm(9, 0))
		require.NoError(t, err)
		assert.Equal(t, model.ReservationStatusActive, reservation.Status)
		assert.Equal(t, client.UserID, reservation.ClientID)
		assert.False(t, reservation.Attended)
		assert.Equal(t, 3, env.activeInSlot(jan15, hm(9, 0)))
	})

	t.Run("B: exhausted plan", func(t *testing.T) {
		env := newTestEnv(t)
		opts := januaryPlan
		opts.used = 8
		client, _ := env.addClient(opts)

		_, err := env.svc.Create(ctx, client, jan15, hm(9, 0))
		assert.ErrorIs(t, err, service.ErrNoSessionsRemaining)
	})

	t.Run("C: time outside booking windows", func(t *testing.T) {
		env := newTestEnv(t)
		client, _ := env.addClient(januaryPlan)

		_, err := env.svc.Create(ctx, client, jan15, hm(15, 0))
		assert.ErrorIs(t, err, service.ErrInvalidTimeWindow)
	})

	t.Run("D: reschedule 30 minutes before start", func(t *testing.T) {
		env := newTestEnv(t)
		client, _ := env.addClient(januaryPlan)
		id := uuid.New()
		env.store.AddReservation(model.Reservation{
			ID:       id,
			ClientID: client.UserID,
			Date:     testNow.Date,
			Time:     hm(12, 30),
		})

		_, err := env.svc.Reschedule(ctx, client, id, civil.NewDate(2024, 1, 11), hm(9, 0))
		assert.ErrorIs(t, err, service.ErrTooLateToModify)
	})

	t.Run("E: two concurrent creates for the last place", func(t *testing.T) {
		env := newTestEnv(t)
		feb1 := civil.NewDate(2024, 2, 1)
		env.fillSlot(feb1, hm(9, 0), 4)

		first, _ := env.addClient(defaultPlan())
		second, _ := env.addClient(defaultPlan())

		errs := createConcurrently(env, []service.Caller{first, second}, feb1, hm(9, 0))

		succeeded, full := countOutcomes(t, errs)
		assert.Equal(t, 1, succeeded)
		assert.Equal(t, 1, full)
		assert.Equal(t, 5, env.activeInSlot(feb1, hm(9, 0)))
	})
}

func createConcurrently(env *testEnv, callers []service.Caller, date civil.Date, t civil.Time) []error {
	errs := make([]error, len(callers))
	var wg sync.WaitGroup
	for i, caller := range callers {
		wg.Add(1)
		go func(i int, caller service.Caller) {
			defer wg.Done()
			_, errs[i] = env.svc.Create(context.Background(), caller, date, t)
		}(i, caller)
	}
	wg.Wait()
	return errs
}

func countOutcomes(t *testing.T, errs []error) (succeeded, full int) {
	t.Helper()
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, service.ErrSlotFull):
			full++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	return succeeded, full
}

func TestConcurrentCreatesNeverExceedCapacity(t *testing.T) {
	env := newTestEnv(t)
	date := civil.NewDate(2024, 1, 16)

	callers := make([]service.Caller, 12)
	for i := range callers {
		callers[i], _ = env.addClient(defaultPlan())
	}

	errs := createConcurrently(env, callers, date, hm(18, 30))

	succeeded, full := countOutcomes(t, errs)
	assert.Equal(t, service.DefaultSlotCapacity, succeeded)
	assert.Equal(t, len(callers)-service.DefaultSlotCapacity, full)
	assert.Equal(t, service.DefaultSlotCapacity, env.activeInSlot(date, hm(18, 30)))
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	jan15 := civil.NewDate(2024, 1, 15)

	t.Run("only clients book", func(t *testing.T) {
		env := newTestEnv(t)
		trainer := env.addStaff(model.RoleTrainer)

		_, err := env.svc.Create(ctx, trainer, jan15, hm(9, 0))
		assert.ErrorIs(t, err, service.ErrForbidden)
	})

	t.Run("no active plan", func(t *testing.T) {
		env := newTestEnv(t)
		client := service.Caller{UserID: uuid.New(), Role: model.RoleClient}

		_, err := env.svc.Create(ctx, client, jan15, hm(9, 0))
		assert.ErrorIs(t, err, service.ErrNoActivePlan)
	})

	t.Run("plan expired", func(t *testing.T) {
		env := newTestEnv(t)
		opts := defaultPlan()
		opts.end = civil.NewDate(2024, 1, 9)
		client, _ := env.addClient(opts)

		_, err := env.svc.Create(ctx, client, jan15, hm(9, 0))
		assert.ErrorIs(t, err, service.ErrPlanExpired)
	})

	t.Run("date after plan end", func(t *testing.T) {
		env := newTestEnv(t)
		opts := defaultPlan()
		opts.end = civil.NewDate(2024, 1, 31)
		client, _ := env.addClient(opts)

		_, err := env.svc.Create(ctx, client, civil.NewDate(2024, 2, 5), hm(9, 0))
		assert.ErrorIs(t, err, service.ErrDateOutsidePlanWindow)
	})

	t.Run("past date", func(t *testing.T) {
		env := newTestEnv(t)
		client, _ := env.addClient(defaultPlan())

		_, err := env.svc.Create(ctx, client, civil.NewDate(2024, 1, 9), hm(9, 0))
		assert.ErrorIs(t, err, service.ErrPastDate)
	})

	t.Run("earlier today", func(t *testing.T) {
		env := newTestEnv(t)
		client, _ := env.addClient(defaultPlan())

		_, err := env.svc.Create(ctx, client, testNow.Date, hm(11, 0))
		assert.ErrorIs(t, err, service.ErrPastTime)
	})

	t.Run("right now is not in the future", func(t *testing.T) {
		env := newTestEnv(t)
		client, _ := env.addClient(defaultPlan())

		_, err := env.svc.Create(ctx, client, testNow.Date, testNow.Time)
		assert.ErrorIs(t, err, service.ErrPastTime)
	})

	t.Run("later today is allowed", func(t *testing.T) {
		env := newTestEnv(t)
		client, _ := env.addClient(defaultPlan())

		_, err := env.svc.Create(ctx, client, testNow.Date, hm(13, 0))
		assert.NoError(t, err)
	})

	t.Run("one active reservation per client", func(t *testing.T) {
		env := newTestEnv(t)
		client, _ := env.addClient(defaultPlan())

		_, err := env.svc.Create(ctx, client, jan15, hm(9, 0))
		require.NoError(t, err)

		_, err = env.svc.Create(ctx, client, civil.NewDate(2024, 1, 16), hm(9, 0))
		assert.ErrorIs(t, err, service.ErrAlreadyHasActiveReservation)
	})

	t.Run("full slot", func(t *testing.T) {
		env := newTestEnv(t)
		client, _ := env.addClient(defaultPlan())
		env.fillSlot(jan15, hm(9, 0), service.DefaultSlotCapacity)

		_, err := env.svc.Create(ctx, client, jan15, hm(9, 0))
		assert.ErrorIs(t, err, service.ErrSlotFull)
	})

	t.Run("weekends are bookable on create", func(t *testing.T) {
		env := newTestEnv(t)
		client, _ := env.addClient(defaultPlan())

		_, err := env.svc.Create(ctx, client, civil.NewDate(2024, 1, 13), hm(9, 0))
		assert.NoError(t, err)
	})

	t.Run("failed create leaves no trace", func(t *testing.T) {
		env := newTestEnv(t)
		client, _ := env.addClient(defaultPlan())

		_, err := env.svc.Create(ctx, client, jan15, hm(15, 0))
		require.Error(t, err)
		assert.Empty(t, env.store.Reservations())
		assert.Empty(t, env.events.Types())
	})
}

func TestReschedule(t *testing.T) {
	ctx := context.Background()
	jan15 := civil.NewDate(2024, 1, 15)
	jan16 := civil.NewDate(2024, 1, 16)

	book := func(t *testing.T, env *testEnv) (service.Caller, *model.Reservation) {
		t.Helper()
		client, _ := env.addClient(defaultPlan())
		reservation, err := env.svc.Create(ctx, client, jan15, hm(9, 0))
		require.NoError(t, err)
		return client, reservation
	}

	t.Run("round trip keeps id and status", func(t *testing.T) {
		env := newTestEnv(t)
		client, created := book(t, env)

		moved, err := env.svc.Reschedule(ctx, client, created.ID, jan16, hm(19, 30))
		require.NoError(t, err)
		assert.Equal(t, created.ID, moved.ID)
		assert.Equal(t, model.ReservationStatusActive, moved.Status)

		stored, ok := env.store.Reservation(created.ID)
		require.True(t, ok)
		assert.Equal(t, jan16, stored.Date)
		assert.Equal(t, hm(19, 30), stored.Time)
		assert.Equal(t, model.ReservationStatusActive, stored.Status)
		assert.Equal(t, 0, env.activeInSlot(jan15, hm(9, 0)))

		assert.Equal(t, []queue.EventType{queue.EventReservationCreated, queue.EventReservationRescheduled}, env.events.Types())
	})

	t.Run("someone else's reservation looks missing", func(t *testing.T) {
		env := newTestEnv(t)
		_, created := book(t, env)
		other, _ := env.addClient(defaultPlan())

		_, err := env.svc.Reschedule(ctx, other, created.ID, jan16, hm(9, 0))
		assert.ErrorIs(t, err, service.ErrNotFound)

		_, err = env.svc.Reschedule(ctx, other, uuid.New(), jan16, hm(9, 0))
		assert.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("only active reservations move", func(t *testing.T) {
		env := newTestEnv(t)
		client, created := book(t, env)
		_, err := env.svc.Cancel(ctx, client, created.ID)
		require.NoError(t, err)

		_, err = env.svc.Reschedule(ctx, client, created.ID, jan16, hm(9, 0))
		assert.ErrorIs(t, err, service.ErrNotModifiable)
	})

	t.Run("exactly one hour before start is too late", func(t *testing.T) {
		env := newTestEnv(t)
		client, created := book(t, env)
		env.clock.Set(jan15.At(hm(8, 0)))

		_, err := env.svc.Reschedule(ctx, client, created.ID, jan16, hm(9, 0))
		assert.ErrorIs(t, err, service.ErrTooLateToModify)
	})

	t.Run("61 minutes before start is allowed", func(t *testing.T) {
		env := newTestEnv(t)
		client, created := book(t, env)
		env.clock.Set(jan15.At(hm(7, 59)))

		_, err := env.svc.Reschedule(ctx, client, created.ID, jan16, hm(9, 0))
		assert.NoError(t, err)
	})

	t.Run("new time in the past", func(t *testing.T) {
		env := newTestEnv(t)
		client, created := book(t, env)

		_, err := env.svc.Reschedule(ctx, client, created.ID, testNow.Date, hm(9, 0))
		assert.ErrorIs(t, err, service.ErrPastTime)
	})

	t.Run("weekend", func(t *testing.T) {
		env := newTestEnv(t)
		client, created := book(t, env)

		_, err := env.svc.Reschedule(ctx, client, created.ID, civil.NewDate(2024, 1, 14), hm(9, 0))
		assert.ErrorIs(t, err, service.ErrWeekendNotAllowed)
	})

	t.Run("outside windows", func(t *testing.T) {
		env := newTestEnv(t)
		client, created := book(t, env)

		_, err := env.svc.Reschedule(ctx, client, created.ID, jan16, hm(22, 45))
		assert.ErrorIs(t, err, service.ErrInvalidTimeWindow)
	})

	t.Run("full target slot", func(t *testing.T) {
		env := newTestEnv(t)
		client, created := book(t, env)
		env.fillSlot(jan16, hm(9, 0), service.DefaultSlotCapacity)

		_, err := env.svc.Reschedule(ctx, client, created.ID, jan16, hm(9, 0))
		assert.ErrorIs(t, err, service.ErrSlotFull)

		stored, _ := env.store.Reservation(created.ID)
		assert.Equal(t, jan15, stored.Date)
	})

	t.Run("same slot does not count itself", func(t *testing.T) {
		env := newTestEnv(t)
		client, created := book(t, env)
		env.fillSlot(jan15, hm(9, 0), service.DefaultSlotCapacity-1)

		_, err := env.svc.Reschedule(ctx, client, created.ID, jan15, hm(9, 0))
		assert.NoError(t, err)
	})

	t.Run("staff cannot reschedule", func(t *testing.T) {
		env := newTestEnv(t)
		_, created := book(t, env)
		trainer := env.addStaff(model.RoleTrainer)

		_, err := env.svc.Reschedule(ctx, trainer, created.ID, jan16, hm(9, 0))
		assert.ErrorIs(t, err, service.ErrForbidden)
	})

	// Перенос не перепроверяет период абонемента и остаток сессий.
	// Поведение сохранено намеренно, пока владелец продукта не решит иначе.
	t.Run("plan window is not re-validated", func(t *testing.T) {
		env := newTestEnv(t)
		opts := defaultPlan()
		opts.end = civil.NewDate(2024, 1, 31)
		opts.used = 7
		client, planID := env.addClient(opts)

		created, err := env.svc.Create(ctx, client, jan15, hm(9, 0))
		require.NoError(t, err)

		// Абонемент исчерпан после записи
		env.store.AddClientPlan(model.ClientPlan{
			ID: planID, ClientID: client.UserID, PlanID: 1,
			StartDate: opts.start, EndDate: opts.end,
			SessionsTotal: 8, SessionsUsed: 8,
		})

		moved, err := env.svc.Reschedule(ctx, client, created.ID, civil.NewDate(2024, 2, 5), hm(9, 0))
		require.NoError(t, err)
		assert.Equal(t, civil.NewDate(2024, 2, 5), moved.Date)
	})
}

func TestFinish(t *testing.T) {
	ctx := context.Background()
	jan15 := civil.NewDate(2024, 1, 15)

	t.Run("consumes one session", func(t *testing.T) {
		env := newTestEnv(t)
		client, planID := env.addClient(defaultPlan())
		trainer := env.addStaff(model.RoleTrainer)

		created, err := env.svc.Create(ctx, client, jan15, hm(9, 0))
		require.NoError(t, err)

		finished, err := env.svc.Finish(ctx, trainer, created.ID)
		require.NoError(t, err)
		assert.Equal(t, model.ReservationStatusFinished, finished.Status)
		assert.True(t, finished.Attended)

		plan, _ := env.store.ClientPlan(planID)
		assert.Equal(t, 1, plan.SessionsUsed)
	})

	t.Run("second finish fails and changes nothing", func(t *testing.T) {
		env := newTestEnv(t)
		client, planID := env.addClient(defaultPlan())
		admin := env.addStaff(model.RoleAdmin)

		created, err := env.svc.Create(ctx, client, jan15, hm(9, 0))
		require.NoError(t, err)
		_, err = env.svc.Finish(ctx, admin, created.ID)
		require.NoError(t, err)

		_, err = env.svc.Finish(ctx, admin, created.ID)
		assert.ErrorIs(t, err, service.ErrAlreadyFinished)

		_, err = env.svc.Cancel(ctx, client, created.ID)
		assert.ErrorIs(t, err, service.ErrNotCancellable)

		plan, _ := env.store.ClientPlan(planID)
		assert.Equal(t, 1, plan.SessionsUsed)
		stored, _ := env.store.Reservation(created.ID)
		assert.Equal(t, model.ReservationStatusFinished, stored.Status)
	})

	t.Run("clients cannot finish", func(t *testing.T) {
		env := newTestEnv(t)
		client, _ := env.addClient(defaultPlan())
		created, err := env.svc.Create(ctx, client, jan15, hm(9, 0))
		require.NoError(t, err)

		_, err = env.svc.Finish(ctx, client, created.ID)
		assert.ErrorIs(t, err, service.ErrForbidden)
	})

	t.Run("unknown reservation", func(t *testing.T) {
		env := newTestEnv(t)
		trainer := env.addStaff(model.RoleTrainer)

		_, err := env.svc.Finish(ctx, trainer, uuid.New())
		assert.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("no active plan", func(t *testing.T) {
		env := newTestEnv(t)
		trainer := env.addStaff(model.RoleTrainer)
		id := uuid.New()
		env.store.AddReservation(model.Reservation{ID: id, ClientID: uuid.New(), Date: jan15, Time: hm(9, 0)})

		_, err := env.svc.Finish(ctx, trainer, id)
		assert.ErrorIs(t, err, service.ErrNoActivePlan)

		stored, _ := env.store.Reservation(id)
		assert.Equal(t, model.ReservationStatusActive, stored.Status)
	})

	t.Run("exhausted plan", func(t *testing.T) {
		env := newTestEnv(t)
		opts := defaultPlan()
		opts.used = opts.total
		client, _ := env.addClient(opts)
		trainer := env.addStaff(model.RoleTrainer)
		id := uuid.New()
		env.store.AddReservation(model.Reservation{ID: id, ClientID: client.UserID, Date: jan15, Time: hm(9, 0)})

		_, err := env.svc.Finish(ctx, trainer, id)
		assert.ErrorIs(t, err, service.ErrSessionsExhausted)

		stored, _ := env.store.Reservation(id)
		assert.Equal(t, model.ReservationStatusActive, stored.Status)
	})
}

func TestConcurrentFinishesConsumeLastSessionOnce(t *testing.T) {
	env := newTestEnv(t)
	opts := defaultPlan()
	opts.used = opts.total - 1
	client, planID := env.addClient(opts)
	trainer := env.addStaff(model.RoleTrainer)

	// Две активные брони одного клиента заведены в обход движка,
	// чтобы оба завершения боролись за последнюю сессию
	ids := []uuid.UUID{uuid.New(), uuid.New()}
	env.store.AddReservation(model.Reservation{ID: ids[0], ClientID: client.UserID, Date: civil.NewDate(2024, 1, 15), Time: hm(9, 0)})
	env.store.AddReservation(model.Reservation{ID: ids[1], ClientID: client.UserID, Date: civil.NewDate(2024, 1, 16), Time: hm(9, 0)})

	errs := make([]error, len(ids))
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			_, errs[i] = env.svc.Finish(context.Background(), trainer, id)
		}(i, id)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, service.ErrSessionsExhausted)
	}
	assert.Equal(t, 1, succeeded)

	plan, _ := env.store.ClientPlan(planID)
	assert.Equal(t, opts.total, plan.SessionsUsed)
}

func TestConcurrentFinishOfSameReservation(t *testing.T) {
	env := newTestEnv(t)
	client, planID := env.addClient(defaultPlan())
	trainer := env.addStaff(model.RoleTrainer)
	created, err := env.svc.Create(context.Background(), client, civil.NewDate(2024, 1, 15), hm(9, 0))
	require.NoError(t, err)

	const attempts = 4
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.svc.Finish(context.Background(), trainer, created.ID)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, service.ErrAlreadyFinished)
	}
	assert.Equal(t, 1, succeeded)

	plan, _ := env.store.ClientPlan(planID)
	assert.Equal(t, 1, plan.SessionsUsed)
}

func TestCancel(t *testing.T) {
	ctx := context.Background()
	jan15 := civil.NewDate(2024, 1, 15)

	t.Run("owner cancels and can book again", func(t *testing.T) {
		env := newTestEnv(t)
		client, planID := env.addClient(defaultPlan())
		created, err := env.svc.Create(ctx, client, jan15, hm(9, 0))
		require.NoError(t, err)

		cancelled, err := env.svc.Cancel(ctx, client, created.ID)
		require.NoError(t, err)
		assert.Equal(t, model.ReservationStatusCancelled, cancelled.Status)
		assert.False(t, cancelled.Attended)

		plan, _ := env.store.ClientPlan(planID)
		assert.Equal(t, 0, plan.SessionsUsed, "cancel does not consume a session")

		_, err = env.svc.Cancel(ctx, client, created.ID)
		assert.ErrorIs(t, err, service.ErrNotCancellable)

		_, err = env.svc.Create(ctx, client, jan15, hm(10, 0))
		assert.NoError(t, err)
	})

	t.Run("trainer cancels any reservation", func(t *testing.T) {
		env := newTestEnv(t)
		client, _ := env.addClient(defaultPlan())
		trainer := env.addStaff(model.RoleTrainer)
		created, err := env.svc.Create(ctx, client, jan15, hm(9, 0))
		require.NoError(t, err)

		_, err = env.svc.Cancel(ctx, trainer, created.ID)
		assert.NoError(t, err)
	})

	t.Run("other clients and admins are forbidden", func(t *testing.T) {
		env := newTestEnv(t)
		client, _ := env.addClient(defaultPlan())
		other, _ := env.addClient(defaultPlan())
		admin := env.addStaff(model.RoleAdmin)
		created, err := env.svc.Create(ctx, client, jan15, hm(9, 0))
		require.NoError(t, err)

		_, err = env.svc.Cancel(ctx, other, created.ID)
		assert.ErrorIs(t, err, service.ErrForbidden)

		_, err = env.svc.Cancel(ctx, admin, created.ID)
		assert.ErrorIs(t, err, service.ErrForbidden)
	})

	t.Run("unknown reservation", func(t *testing.T) {
		env := newTestEnv(t)
		client, _ := env.addClient(defaultPlan())

		_, err := env.svc.Cancel(ctx, client, uuid.New())
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}

func TestTrainerAgenda(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	trainer := env.addStaff(model.RoleTrainer)

	todayClient, _ := env.addClient(defaultPlan())
	_, err := env.svc.Create(ctx, todayClient, testNow.Date, hm(13, 0))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		client, _ := env.addClient(defaultPlan())
		_, err := env.svc.Create(ctx, client, testNow.Date.AddDays(i+1), hm(9, 0))
		require.NoError(t, err)
	}

	agenda, err := env.svc.TrainerAgenda(ctx, trainer)
	require.NoError(t, err)
	assert.Equal(t, testNow.Date, agenda.Date)
	require.Len(t, agenda.Today, 1)
	require.NotNil(t, agenda.Today[0].Client)
	assert.Equal(t, todayClient.UserID, agenda.Today[0].Client.ID)
	require.Len(t, agenda.Upcoming, 3)
	assert.True(t, agenda.Upcoming[0].Date.Before(agenda.Upcoming[1].Date))

	_, err = env.svc.TrainerAgenda(ctx, todayClient)
	assert.ErrorIs(t, err, service.ErrForbidden)
}

func TestAvailability(t *testing.T) {
	env := newTestEnv(t)
	jan15 := civil.NewDate(2024, 1, 15)
	env.fillSlot(jan15, hm(9, 0), service.DefaultSlotCapacity)
	env.fillSlot(jan15, hm(18, 30), 2)

	slots, err := env.svc.Availability(context.Background(), jan15)
	require.NoError(t, err)

	byTime := make(map[civil.Time]service.SlotAvailability)
	for _, s := range slots {
		byTime[s.Time] = s
	}

	assert.True(t, byTime[hm(9, 0)].Full)
	assert.Equal(t, 0, byTime[hm(9, 0)].Available)
	assert.Equal(t, 3, byTime[hm(18, 30)].Available)
	assert.Equal(t, service.DefaultSlotCapacity, byTime[hm(6, 0)].Available)

	_, err = env.svc.Availability(context.Background(), civil.Date{})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestClientReservations(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	client, _ := env.addClient(defaultPlan())

	active, err := env.svc.ActiveReservation(ctx, client)
	require.NoError(t, err)
	assert.Nil(t, active)

	first, err := env.svc.Create(ctx, client, civil.NewDate(2024, 1, 15), hm(9, 0))
	require.NoError(t, err)
	_, err = env.svc.Cancel(ctx, client, first.ID)
	require.NoError(t, err)
	second, err := env.svc.Create(ctx, client, civil.NewDate(2024, 1, 12), hm(9, 0))
	require.NoError(t, err)

	list, err := env.svc.ClientReservations(ctx, client)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "ordered by date")

	active, err = env.svc.ActiveReservation(ctx, client)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, second.ID, active.ID)
}
