package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Freeeeeet/gym_scheduler/internal/civil"
	"github.com/Freeeeeet/gym_scheduler/internal/controller/state"
	"github.com/Freeeeeet/gym_scheduler/internal/model"
	"github.com/Freeeeeet/gym_scheduler/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

const historyLimit = 10

// HandlePlan показывает активный абонемент клиента
func (h *Handlers) HandlePlan(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	caller, _, ok := h.requireClient(ctx, b, chatID, update.Message.From.ID)
	if !ok {
		return
	}

	plan, err := h.planLedger.GetClientPlan(ctx, caller)
	if err != nil {
		h.replyServiceError(ctx, b, chatID, err)
		return
	}

	h.sendMessage(ctx, b, chatID, formatPlan(plan))
}

// HandleBook начинает диалог записи: дата, потом время
func (h *Handlers) HandleBook(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	telegramID := update.Message.From.ID

	caller, _, ok := h.requireClient(ctx, b, chatID, telegramID)
	if !ok {
		return
	}

	// Сразу отсекаем клиентов с активной бронью, чтобы не гонять их по диалогу
	active, err := h.schedulingService.ActiveReservation(ctx, caller)
	if err != nil {
		h.replyServiceError(ctx, b, chatID, err)
		return
	}
	if active != nil {
		h.sendError(ctx, b, chatID, errorText(service.ErrAlreadyHasActiveReservation))
		return
	}

	h.stateManager.StartBooking(telegramID)
	h.logger.Info("Booking dialog started", zap.Int64("telegram_id", telegramID))

	h.sendWithKeyboard(ctx, b, chatID,
		"📝 Запись на тренировку\n\n"+
			"Шаг 1 из 2: выберите дату или введите её (ДД.ММ)\n\n"+
			"Для отмены используйте /cancel",
		datesKeyboard(h.clock.Today(), false),
	)
}

// HandleReschedule начинает диалог переноса активной брони
func (h *Handlers) HandleReschedule(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	telegramID := update.Message.From.ID

	caller, _, ok := h.requireClient(ctx, b, chatID, telegramID)
	if !ok {
		return
	}

	active, err := h.schedulingService.ActiveReservation(ctx, caller)
	if err != nil {
		h.replyServiceError(ctx, b, chatID, err)
		return
	}
	if active == nil {
		h.sendMessage(ctx, b, chatID, "📭 У вас нет активной брони. Записаться: /book")
		return
	}

	h.stateManager.StartReschedule(telegramID, active.ID)

	h.sendWithKeyboard(ctx, b, chatID,
		"🔄 Перенос брони\n\n"+formatReservation(active)+"\n\n"+
			"Шаг 1 из 2: выберите новую дату (только будни)\n\n"+
			"Для отмены используйте /cancel",
		datesKeyboard(h.clock.Today(), true),
	)
}

// HandleMyReservation показывает активную бронь с кнопкой отмены
func (h *Handlers) HandleMyReservation(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	caller, _, ok := h.requireClient(ctx, b, chatID, update.Message.From.ID)
	if !ok {
		return
	}

	active, err := h.schedulingService.ActiveReservation(ctx, caller)
	if err != nil {
		h.replyServiceError(ctx, b, chatID, err)
		return
	}
	if active == nil {
		h.sendMessage(ctx, b, chatID, "📭 У вас нет активной брони. Записаться: /book")
		return
	}

	h.sendWithKeyboard(ctx, b, chatID,
		"🏋️ Ваша бронь\n\n"+formatReservation(active)+"\n\nПеренести: /reschedule",
		cancelReservationKeyboard(active.ID),
	)
}

// HandleCancelReservation то же, что /myreservation: отмена идёт через кнопку
func (h *Handlers) HandleCancelReservation(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.HandleMyReservation(ctx, b, update)
}

// HandleHistory последние брони клиента, читаются через кэш
func (h *Handlers) HandleHistory(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	caller, _, ok := h.requireClient(ctx, b, chatID, update.Message.From.ID)
	if !ok {
		return
	}

	reservations, err := h.reservationCache.Get(ctx, caller.UserID, false, func(ctx context.Context) ([]*model.Reservation, error) {
		return h.schedulingService.ClientReservations(ctx, caller)
	})
	if err != nil {
		h.replyServiceError(ctx, b, chatID, err)
		return
	}

	if len(reservations) == 0 {
		h.sendMessage(ctx, b, chatID, "📭 У вас пока нет броней. Записаться: /book")
		return
	}

	// Список отсортирован по дате, показываем самые свежие
	if len(reservations) > historyLimit {
		reservations = reservations[len(reservations)-historyLimit:]
	}

	var sb strings.Builder
	sb.WriteString("📖 История тренировок\n\n")
	for _, r := range reservations {
		sb.WriteString(fmt.Sprintf("%s %s - %s\n", formatDateShort(r.Date), r.Time, statusLabel(r.Status)))
	}
	h.sendMessage(ctx, b, chatID, sb.String())
}

// chooseDate шаг выбора даты: показываем занятость и кнопки свободных часов
func (h *Handlers) chooseDate(ctx context.Context, b *bot.Bot, chatID, telegramID int64, date civil.Date) {
	dialog := h.stateManager.Get(telegramID)
	if dialog.State != state.StateBookDate && dialog.State != state.StateRescheduleDate {
		h.sendError(ctx, b, chatID, "❌ Диалог устарел. Начните заново: /book")
		return
	}

	if date.Before(h.clock.Today()) {
		h.sendError(ctx, b, chatID, errorText(service.ErrPastDate))
		return
	}
	if dialog.IsRescheduling() && date.IsWeekend() {
		h.sendError(ctx, b, chatID, errorText(service.ErrWeekendNotAllowed))
		return
	}

	slots, err := h.schedulingService.Availability(ctx, date)
	if err != nil {
		h.replyServiceError(ctx, b, chatID, err)
		return
	}

	kb := timesKeyboard(slots)
	if len(kb.InlineKeyboard) == 0 {
		h.sendError(ctx, b, chatID, fmt.Sprintf("😔 На %s мест нет. Выберите другую дату.", formatDate(date)))
		return
	}

	h.stateManager.ChooseDate(telegramID, date)
	h.sendWithKeyboard(ctx, b, chatID,
		formatAvailability(date, slots)+"\nШаг 2 из 2: выберите время",
		kb,
	)
}

// chooseTime последний шаг диалога: создаём или переносим бронь
func (h *Handlers) chooseTime(ctx context.Context, b *bot.Bot, chatID, telegramID int64, t civil.Time) {
	dialog := h.stateManager.Get(telegramID)
	if dialog.State != state.StateBookTime && dialog.State != state.StateRescheduleTime {
		h.sendError(ctx, b, chatID, "❌ Сначала выберите дату. Начать заново: /book")
		return
	}

	caller, _, ok := h.requireClient(ctx, b, chatID, telegramID)
	if !ok {
		h.stateManager.ClearState(telegramID)
		return
	}

	var (
		reservation *model.Reservation
		err         error
		done        string
	)
	if dialog.IsRescheduling() {
		reservation, err = h.schedulingService.Reschedule(ctx, caller, dialog.ReservationID, dialog.Date, t)
		done = "✅ Бронь перенесена!"
	} else {
		reservation, err = h.schedulingService.Create(ctx, caller, dialog.Date, t)
		done = "✅ Вы записаны!"
	}

	if err != nil {
		// Можно выбрать другое время в рамках того же диалога
		if !retryable(err) {
			h.stateManager.ClearState(telegramID)
		}
		h.replyServiceError(ctx, b, chatID, err)
		return
	}

	h.stateManager.ClearState(telegramID)
	h.reservationCache.Invalidate(ctx, reservation.ClientID)

	h.logger.Info("Reservation saved via bot",
		zap.String("reservation_id", reservation.ID.String()),
		zap.Int64("telegram_id", telegramID),
		zap.String("slot", reservation.Slot().Key()))

	h.sendMessage(ctx, b, chatID, done+"\n\n"+formatReservation(reservation)+
		"\n\nИзменить бронь можно не позже чем за час до начала.")
}

// cancelReservation отмена по кнопке из /myreservation
func (h *Handlers) cancelReservation(ctx context.Context, b *bot.Bot, chatID, telegramID int64, id string) {
	reservationID, err := parseReservationID(id)
	if err != nil {
		h.sendError(ctx, b, chatID, "❌ Неверный формат")
		return
	}

	caller, _, ok := h.requireUser(ctx, b, chatID, telegramID)
	if !ok {
		return
	}

	reservation, err := h.schedulingService.Cancel(ctx, caller, reservationID)
	if err != nil {
		h.replyServiceError(ctx, b, chatID, err)
		return
	}
	h.reservationCache.Invalidate(ctx, reservation.ClientID)

	h.sendMessage(ctx, b, chatID, "🗑 Бронь отменена\n\n"+formatReservation(reservation))
}

// retryable ошибки, после которых диалог остаётся на шаге выбора времени
func retryable(err error) bool {
	return errors.Is(err, service.ErrSlotFull) ||
		errors.Is(err, service.ErrPastTime) ||
		errors.Is(err, service.ErrInvalidTimeWindow)
}
