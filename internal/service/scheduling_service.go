package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/gym_scheduler/internal/civil"
	"github.com/Freeeeeet/gym_scheduler/internal/model"
	"github.com/Freeeeeet/gym_scheduler/internal/queue"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultRescheduleCutoff бронь можно перенести не позже чем за час до начала
	DefaultRescheduleCutoff = 60 * time.Minute
	// DefaultAgendaUpcomingLimit сколько будущих броней показывать тренеру
	DefaultAgendaUpcomingLimit = 15

	eventPublishTimeout = 2 * time.Second
)

// EventPublisher получает события после успешного коммита
type EventPublisher interface {
	Publish(ctx context.Context, event queue.ReservationEvent) error
}

// SchedulingConfig правила расписания зала
type SchedulingConfig struct {
	Windows             BookingWindows
	Hours               []civil.Time
	RescheduleCutoff    time.Duration
	AgendaUpcomingLimit int
}

// SchedulingService движок бронирования: создание, перенос, завершение и
// отмена броней. Состояния не хранит, каждая операция выполняется одной транзакцией.
type SchedulingService struct {
	txm      TxManager
	clock    civil.Clock
	ledger   *PlanLedger
	capacity *SlotCapacityIndex
	events   EventPublisher
	cfg      SchedulingConfig
	logger   *zap.Logger
}

func NewSchedulingService(
	txm TxManager,
	clock civil.Clock,
	ledger *PlanLedger,
	capacity *SlotCapacityIndex,
	events EventPublisher,
	cfg SchedulingConfig,
	logger *zap.Logger,
) *SchedulingService {
	if len(cfg.Windows) == 0 {
		cfg.Windows = MustParseBookingWindows(DefaultBookingWindows)
	}
	if cfg.RescheduleCutoff <= 0 {
		cfg.RescheduleCutoff = DefaultRescheduleCutoff
	}
	if cfg.AgendaUpcomingLimit <= 0 {
		cfg.AgendaUpcomingLimit = DefaultAgendaUpcomingLimit
	}
	if events == nil {
		events = queue.NopPublisher{}
	}

	return &SchedulingService{
		txm:      txm,
		clock:    clock,
		ledger:   ledger,
		capacity: capacity,
		events:   events,
		cfg:      cfg,
		logger:   logger,
	}
}

// Create записывает клиента на слот (date, t)
func (s *SchedulingService) Create(ctx context.Context, caller Caller, date civil.Date, t civil.Time) (*model.Reservation, error) {
	// Записываться могут только клиенты
	if caller.Role != model.RoleClient {
		return nil, ErrForbidden
	}
	if date.IsZero() || !t.IsValid() {
		return nil, ErrInvalidInput
	}

	slot := model.Slot{Date: date, Time: t}
	var reservation *model.Reservation

	err := s.txm.WithinTx(ctx, func(ctx context.Context, repos Repositories) error {
		// Сериализуем параллельные записи одного клиента
		if err := repos.Reservations.LockClient(ctx, caller.UserID); err != nil {
			return fmt.Errorf("lock client: %w", err)
		}

		plan, err := s.ledger.GetActivePlan(ctx, repos.Plans, caller.UserID)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		today := now.Date

		if err := s.ledger.AuthorizeBooking(plan, date, today); err != nil {
			return err
		}

		if date.Before(today) {
			return ErrPastDate
		}

		// Сегодняшняя запись должна быть строго в будущем
		if !date.At(t).After(now) {
			return ErrPastTime
		}

		if !s.cfg.Windows.Allows(t) {
			return ErrInvalidTimeWindow
		}

		active, err := repos.Reservations.CountActiveByClient(ctx, caller.UserID)
		if err != nil {
			return fmt.Errorf("count client active reservations: %w", err)
		}
		if active > 0 {
			return ErrAlreadyHasActiveReservation
		}

		// Вторая проверка на тот же день перекрывается первой, оставлена как страховка
		sameDay, err := repos.Reservations.CountActiveByClientAndDate(ctx, caller.UserID, date)
		if err != nil {
			return fmt.Errorf("count client active reservations by date: %w", err)
		}
		if sameDay > 0 {
			return ErrAlreadyHasActiveReservation
		}

		if err := repos.Reservations.LockSlot(ctx, slot); err != nil {
			return fmt.Errorf("lock slot: %w", err)
		}

		hasCapacity, err := s.capacity.HasCapacity(ctx, repos.Reservations, slot)
		if err != nil {
			return err
		}
		if !hasCapacity {
			return ErrSlotFull
		}

		reservation = &model.Reservation{
			ID:       uuid.New(),
			ClientID: caller.UserID,
			Date:     date,
			Time:     t,
			Status:   model.ReservationStatusActive,
		}

		if err := repos.Reservations.Insert(ctx, reservation); err != nil {
			return fmt.Errorf("insert reservation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Reservation created",
		zap.String("reservation_id", reservation.ID.String()),
		zap.String("client_id", caller.UserID.String()),
		zap.String("slot", slot.Key()),
	)
	s.publish(ctx, queue.EventReservationCreated, caller, reservation, nil)

	return reservation, nil
}

// Reschedule переносит активную бронь клиента на новый слот. Статус и id не меняются.
// Период абонемента и остаток сессий здесь не проверяются.
func (s *SchedulingService) Reschedule(ctx context.Context, caller Caller, reservationID uuid.UUID, newDate civil.Date, newTime civil.Time) (*model.Reservation, error) {
	if caller.Role != model.RoleClient {
		return nil, ErrForbidden
	}
	if newDate.IsZero() || !newTime.IsValid() {
		return nil, ErrInvalidInput
	}

	newSlot := model.Slot{Date: newDate, Time: newTime}
	var (
		reservation *model.Reservation
		previous    model.Slot
	)

	err := s.txm.WithinTx(ctx, func(ctx context.Context, repos Repositories) error {
		current, err := repos.Reservations.GetByIDForUpdate(ctx, reservationID)
		if err != nil {
			return fmt.Errorf("get reservation: %w", err)
		}

		// Чужая бронь выглядит как несуществующая
		if current == nil || current.ClientID != caller.UserID {
			return ErrNotFound
		}

		if current.Status != model.ReservationStatusActive {
			return ErrNotModifiable
		}

		now := s.clock.Now()
		today := now.Date

		if current.StartsAt().Sub(now) <= s.cfg.RescheduleCutoff {
			return ErrTooLateToModify
		}

		if !newDate.At(newTime).After(now) {
			return ErrPastTime
		}

		if newDate.Before(today) {
			return ErrPastDate
		}

		if newDate.IsWeekend() {
			return ErrWeekendNotAllowed
		}

		if !s.cfg.Windows.Allows(newTime) {
			return ErrInvalidTimeWindow
		}

		// Бронь уже занимает место в своём слоте, перенос туда же его не требует
		if newSlot != current.Slot() {
			if err := repos.Reservations.LockSlot(ctx, newSlot); err != nil {
				return fmt.Errorf("lock slot: %w", err)
			}

			hasCapacity, err := s.capacity.HasCapacity(ctx, repos.Reservations, newSlot)
			if err != nil {
				return err
			}
			if !hasCapacity {
				return ErrSlotFull
			}
		}

		updated, err := repos.Reservations.UpdateDateTime(ctx, reservationID, newDate, newTime)
		if err != nil {
			return fmt.Errorf("update reservation date: %w", err)
		}
		if !updated {
			return ErrNotModifiable
		}

		reservation, err = repos.Reservations.GetByID(ctx, reservationID)
		if err != nil {
			return fmt.Errorf("reload reservation: %w", err)
		}
		if reservation == nil {
			return ErrNotFound
		}

		previous = current.Slot()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Reservation rescheduled",
		zap.String("reservation_id", reservationID.String()),
		zap.String("client_id", caller.UserID.String()),
		zap.String("from", previous.Key()),
		zap.String("to", newSlot.Key()),
	)
	s.publish(ctx, queue.EventReservationRescheduled, caller, reservation, &previous)

	return reservation, nil
}

// Finish отмечает посещение и списывает сессию абонемента клиента
func (s *SchedulingService) Finish(ctx context.Context, caller Caller, reservationID uuid.UUID) (*model.Reservation, error) {
	if !caller.IsStaff() {
		return nil, ErrForbidden
	}

	var (
		reservation *model.Reservation
		plan        *model.ClientPlan
	)

	err := s.txm.WithinTx(ctx, func(ctx context.Context, repos Repositories) error {
		var err error
		reservation, err = repos.Reservations.GetByIDForUpdate(ctx, reservationID)
		if err != nil {
			return fmt.Errorf("get reservation: %w", err)
		}
		if reservation == nil {
			return ErrNotFound
		}

		if reservation.Status != model.ReservationStatusActive {
			return ErrAlreadyFinished
		}

		plan, err = repos.Plans.GetActiveByClientForUpdate(ctx, reservation.ClientID)
		if err != nil {
			return fmt.Errorf("get active plan: %w", err)
		}
		if plan == nil {
			return ErrNoActivePlan
		}

		if plan.SessionsUsed >= plan.SessionsTotal {
			return ErrSessionsExhausted
		}

		finished, err := repos.Reservations.SetStatus(ctx, reservationID, model.ReservationStatusFinished, true)
		if err != nil {
			return fmt.Errorf("finish reservation: %w", err)
		}
		if !finished {
			return ErrAlreadyFinished
		}

		// Списание в той же транзакции: при ошибке откатится и статус брони
		return s.ledger.ConsumeSession(ctx, repos.Plans, plan.ID)
	})
	if err != nil {
		return nil, err
	}

	reservation.Status = model.ReservationStatusFinished
	reservation.Attended = true

	s.logger.Info("Reservation finished",
		zap.String("reservation_id", reservationID.String()),
		zap.String("client_id", reservation.ClientID.String()),
		zap.String("client_plan_id", plan.ID.String()),
		zap.Int("sessions_used", plan.SessionsUsed+1),
		zap.Int("sessions_total", plan.SessionsTotal),
		zap.String("staff_id", caller.UserID.String()),
	)
	s.publish(ctx, queue.EventReservationFinished, caller, reservation, nil)

	return reservation, nil
}

// Cancel отменяет активную бронь. Сессия абонемента не списывается.
func (s *SchedulingService) Cancel(ctx context.Context, caller Caller, reservationID uuid.UUID) (*model.Reservation, error) {
	var reservation *model.Reservation

	err := s.txm.WithinTx(ctx, func(ctx context.Context, repos Repositories) error {
		var err error
		reservation, err = repos.Reservations.GetByIDForUpdate(ctx, reservationID)
		if err != nil {
			return fmt.Errorf("get reservation: %w", err)
		}
		if reservation == nil {
			return ErrNotFound
		}

		// Отменить может владелец брони или тренер
		isOwner := caller.Role == model.RoleClient && reservation.ClientID == caller.UserID
		if !isOwner && caller.Role != model.RoleTrainer {
			return ErrForbidden
		}

		if reservation.Status != model.ReservationStatusActive {
			return ErrNotCancellable
		}

		cancelled, err := repos.Reservations.SetStatus(ctx, reservationID, model.ReservationStatusCancelled, false)
		if err != nil {
			return fmt.Errorf("cancel reservation: %w", err)
		}
		if !cancelled {
			return ErrNotCancellable
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	reservation.Status = model.ReservationStatusCancelled

	s.logger.Info("Reservation cancelled",
		zap.String("reservation_id", reservationID.String()),
		zap.String("client_id", reservation.ClientID.String()),
		zap.String("user_id", caller.UserID.String()),
		zap.String("role", string(caller.Role)),
	)
	s.publish(ctx, queue.EventReservationCancelled, caller, reservation, nil)

	return reservation, nil
}

// ClientReservations все брони клиента по дате и времени
func (s *SchedulingService) ClientReservations(ctx context.Context, caller Caller) ([]*model.Reservation, error) {
	if caller.Role != model.RoleClient {
		return nil, ErrForbidden
	}

	var reservations []*model.Reservation
	err := s.txm.WithinTx(ctx, func(ctx context.Context, repos Repositories) error {
		var err error
		reservations, err = repos.Reservations.ListByClient(ctx, caller.UserID)
		if err != nil {
			return fmt.Errorf("list client reservations: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reservations, nil
}

// ActiveReservation текущая активная бронь клиента или nil
func (s *SchedulingService) ActiveReservation(ctx context.Context, caller Caller) (*model.Reservation, error) {
	reservations, err := s.ClientReservations(ctx, caller)
	if err != nil {
		return nil, err
	}
	for _, r := range reservations {
		if r.Status == model.ReservationStatusActive {
			return r, nil
		}
	}
	return nil, nil
}

// Agenda расписание тренера: активные брони на сегодня и ближайшие будущие
type Agenda struct {
	Date     civil.Date           `json:"date"`
	Today    []*model.Reservation `json:"today"`
	Upcoming []*model.Reservation `json:"upcoming"`
}

// TrainerAgenda активные брони на сегодня и следующие дни с данными клиентов
func (s *SchedulingService) TrainerAgenda(ctx context.Context, caller Caller) (*Agenda, error) {
	if !caller.IsStaff() {
		return nil, ErrForbidden
	}

	agenda := &Agenda{Date: s.clock.Today()}
	err := s.txm.WithinTx(ctx, func(ctx context.Context, repos Repositories) error {
		var err error
		agenda.Today, err = repos.Reservations.ListActiveByDate(ctx, agenda.Date)
		if err != nil {
			return fmt.Errorf("list today reservations: %w", err)
		}

		agenda.Upcoming, err = repos.Reservations.ListActiveAfter(ctx, agenda.Date, s.cfg.AgendaUpcomingLimit)
		if err != nil {
			return fmt.Errorf("list upcoming reservations: %w", err)
		}

		return attachClients(ctx, repos.Users, agenda.Today, agenda.Upcoming)
	})
	if err != nil {
		return nil, err
	}
	return agenda, nil
}

// Availability занятость предложенных часов на дату
func (s *SchedulingService) Availability(ctx context.Context, date civil.Date) ([]SlotAvailability, error) {
	if date.IsZero() {
		return nil, ErrInvalidInput
	}

	var slots []SlotAvailability
	err := s.txm.WithinTx(ctx, func(ctx context.Context, repos Repositories) error {
		var err error
		slots, err = s.capacity.Availability(ctx, repos.Reservations, date, s.cfg.Hours)
		return err
	})
	if err != nil {
		return nil, err
	}
	return slots, nil
}

// Capacity потолок слота
func (s *SchedulingService) Capacity() int {
	return s.capacity.Capacity()
}

// attachClients подставляет клиентов в брони одним запросом
func attachClients(ctx context.Context, users UserStore, lists ...[]*model.Reservation) error {
	var ids []uuid.UUID
	seen := make(map[uuid.UUID]bool)
	for _, list := range lists {
		for _, r := range list {
			if !seen[r.ClientID] {
				seen[r.ClientID] = true
				ids = append(ids, r.ClientID)
			}
		}
	}
	if len(ids) == 0 {
		return nil
	}

	clients, err := users.GetByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("get clients: %w", err)
	}

	for _, list := range lists {
		for _, r := range list {
			r.Client = clients[r.ClientID]
		}
	}
	return nil
}

// publish отправляет событие; ошибка брокера не отменяет уже закоммиченную операцию
func (s *SchedulingService) publish(ctx context.Context, eventType queue.EventType, caller Caller, r *model.Reservation, previous *model.Slot) {
	event := queue.ReservationEvent{
		Type:            eventType,
		ReservationID:   r.ID.String(),
		ClientID:        r.ClientID.String(),
		ActorID:         caller.UserID.String(),
		ActorRole:       string(caller.Role),
		ReservationDate: r.Date.String(),
		ReservationTime: r.Time.String(),
		Status:          string(r.Status),
		OccurredAt:      time.Now().UTC(),
	}
	if previous != nil {
		event.PreviousDate = previous.Date.String()
		event.PreviousTime = previous.Time.String()
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), eventPublishTimeout)
	defer cancel()

	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish reservation event",
			zap.String("type", string(eventType)),
			zap.String("reservation_id", event.ReservationID),
			zap.Error(err),
		)
	}
}
