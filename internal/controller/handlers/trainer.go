package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HandleAgenda расписание тренера: сегодня и ближайшие дни
func (h *Handlers) HandleAgenda(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	caller, _, ok := h.requireStaff(ctx, b, chatID, update.Message.From.ID)
	if !ok {
		return
	}

	agenda, err := h.schedulingService.TrainerAgenda(ctx, caller)
	if err != nil {
		h.replyServiceError(ctx, b, chatID, err)
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🗓 Сегодня, %s\n\n", formatDate(agenda.Date)))
	if len(agenda.Today) == 0 {
		sb.WriteString("Записей нет\n")
	}
	for _, r := range agenda.Today {
		sb.WriteString(formatAgendaLine(r, false) + "\n")
	}

	if len(agenda.Upcoming) > 0 {
		sb.WriteString("\n📆 Ближайшие\n\n")
		for _, r := range agenda.Upcoming {
			sb.WriteString(formatAgendaLine(r, true) + "\n")
		}
	}

	h.sendMessage(ctx, b, chatID, sb.String())
}

// HandleFinish отмечает тренировку проведённой: /finish <id> или /finish_<id>
func (h *Handlers) HandleFinish(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	arg := strings.TrimPrefix(update.Message.Text, "/finish")
	arg = strings.TrimLeft(arg, "_ ")
	// В группах Telegram добавляет @имя_бота к команде
	if at := strings.IndexByte(arg, '@'); at >= 0 {
		arg = arg[:at]
	}

	if arg == "" {
		h.sendError(ctx, b, chatID, "❌ Укажите бронь: /finish <id>\n\nСписок броней: /agenda")
		return
	}

	reservationID, err := parseReservationID(arg)
	if err != nil {
		h.sendError(ctx, b, chatID, "❌ Неверный идентификатор брони")
		return
	}

	h.finishReservation(ctx, b, chatID, update.Message.From.ID, reservationID, true)
}

// finishReservation confirm=true сначала показывает бронь с кнопкой подтверждения
func (h *Handlers) finishReservation(ctx context.Context, b *bot.Bot, chatID, telegramID int64, reservationID uuid.UUID, confirm bool) {
	caller, _, ok := h.requireStaff(ctx, b, chatID, telegramID)
	if !ok {
		return
	}

	if confirm {
		h.sendWithKeyboard(ctx, b, chatID,
			fmt.Sprintf("Отметить тренировку проведённой?\n\nБронь: %s\nС абонемента клиента будет списана одна тренировка.", reservationID),
			finishKeyboard(reservationID),
		)
		return
	}

	reservation, err := h.schedulingService.Finish(ctx, caller, reservationID)
	if err != nil {
		h.replyServiceError(ctx, b, chatID, err)
		return
	}
	h.reservationCache.Invalidate(ctx, reservation.ClientID)

	h.logger.Info("Reservation finished via bot",
		zap.String("reservation_id", reservation.ID.String()),
		zap.String("trainer_id", caller.UserID.String()))

	h.sendMessage(ctx, b, chatID, "✅ Тренировка проведена, сессия списана\n\n"+formatReservation(reservation))
}

// parseReservationID принимает UUID с дефисами и без
func parseReservationID(s string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(s))
}
