package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/Freeeeeet/gym_scheduler/internal/civil"
	"github.com/Freeeeeet/gym_scheduler/internal/model"
	"github.com/Freeeeeet/gym_scheduler/internal/queue"
	"github.com/Freeeeeet/gym_scheduler/internal/repository/memory"
	"github.com/Freeeeeet/gym_scheduler/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Среда, 10 января 2024, 12:00 по времени зала
var testNow = civil.NewDate(2024, 1, 10).At(civil.Time{Hour: 12})

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.ReservationEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event queue.ReservationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Types() []queue.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]queue.EventType, len(p.events))
	for i, e := range p.events {
		types[i] = e.Type
	}
	return types
}

type testEnv struct {
	store  *memory.Store
	clock  *civil.FixedClock
	ledger *service.PlanLedger
	svc    *service.SchedulingService
	users  *service.UserService
	events *recordingPublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewStore()
	clock := civil.NewFixedClock(testNow)
	logger := zap.NewNop()
	events := &recordingPublisher{}

	hours, err := service.ParseBookingHours(service.DefaultBookingHours)
	require.NoError(t, err)

	ledger := service.NewPlanLedger(store, clock, service.DefaultRenewalDays, logger)
	svc := service.NewSchedulingService(
		store,
		clock,
		ledger,
		service.NewSlotCapacityIndex(service.DefaultSlotCapacity),
		events,
		service.SchedulingConfig{
			Windows: service.MustParseBookingWindows(service.DefaultBookingWindows),
			Hours:   hours,
		},
		logger,
	)

	store.AddPlan(model.Plan{ID: 1, Name: "8 sessions", SessionsTotal: 8, Price: 40000})
	store.AddPlan(model.Plan{ID: 2, Name: "4 sessions", SessionsTotal: 4, Price: 25000})
	store.AddPlan(model.Plan{ID: 3, Name: "12 sessions", SessionsTotal: 12, Price: 55000})

	return &testEnv{
		store:  store,
		clock:  clock,
		ledger: ledger,
		svc:    svc,
		users:  service.NewUserService(store, logger),
		events: events,
	}
}

type planOpts struct {
	start, end civil.Date
	total      int
	used       int
}

func defaultPlan() planOpts {
	return planOpts{
		start: civil.NewDate(2024, 1, 1),
		end:   civil.NewDate(2024, 2, 29),
		total: 8,
	}
}

// addClient создаёт клиента с активным абонементом
func (e *testEnv) addClient(opts planOpts) (service.Caller, uuid.UUID) {
	userID := uuid.New()
	e.store.AddUser(model.User{ID: userID, Name: "Client", Lastname: userID.String()[:8], Role: model.RoleClient})

	planID := uuid.New()
	e.store.AddClientPlan(model.ClientPlan{
		ID:            planID,
		ClientID:      userID,
		PlanID:        1,
		StartDate:     opts.start,
		EndDate:       opts.end,
		SessionsTotal: opts.total,
		SessionsUsed:  opts.used,
		Status:        model.ClientPlanStatusActive,
	})

	return service.Caller{UserID: userID, Role: model.RoleClient}, planID
}

func (e *testEnv) addStaff(role model.Role) service.Caller {
	id := uuid.New()
	e.store.AddUser(model.User{ID: id, Name: string(role), Role: role})
	return service.Caller{UserID: id, Role: role}
}

// fillSlot занимает n мест в слоте бронями других клиентов
func (e *testEnv) fillSlot(date civil.Date, t civil.Time, n int) {
	for i := 0; i < n; i++ {
		e.store.AddReservation(model.Reservation{
			ID:       uuid.New(),
			ClientID: uuid.New(),
			Date:     date,
			Time:     t,
			Status:   model.ReservationStatusActive,
		})
	}
}

func (e *testEnv) activeInSlot(date civil.Date, t civil.Time) int {
	n := 0
	for _, r := range e.store.Reservations() {
		if r.Date == date && r.Time == t && r.Status == model.ReservationStatusActive {
			n++
		}
	}
	return n
}

func hm(h, m int) civil.Time {
	return civil.Time{Hour: h, Minute: m}
}
