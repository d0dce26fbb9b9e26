package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/Freeeeeet/gym_scheduler/internal/model"
	"github.com/Freeeeeet/gym_scheduler/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// requireUser находит пользователя по привязанному Telegram аккаунту.
// Возвращает caller и true если OK, false если аккаунт не привязан
func (h *Handlers) requireUser(ctx context.Context, b *bot.Bot, chatID, telegramID int64) (service.Caller, *model.User, bool) {
	user, err := h.userService.GetByTelegramID(ctx, telegramID)
	if err != nil {
		h.logger.Error("Failed to get user", zap.Int64("telegram_id", telegramID), zap.Error(err))
		h.sendError(ctx, b, chatID, "❌ Произошла ошибка. Попробуйте позже.")
		return service.Caller{}, nil, false
	}

	if user == nil {
		h.sendError(ctx, b, chatID, notLinkedText(telegramID))
		return service.Caller{}, nil, false
	}

	return service.CallerFor(user), user, true
}

// requireClient то же, что requireUser, но только для клиентов зала
func (h *Handlers) requireClient(ctx context.Context, b *bot.Bot, chatID, telegramID int64) (service.Caller, *model.User, bool) {
	caller, user, ok := h.requireUser(ctx, b, chatID, telegramID)
	if !ok {
		return caller, nil, false
	}

	if caller.Role != model.RoleClient {
		h.sendError(ctx, b, chatID, "❌ Эта команда доступна только клиентам зала.")
		return caller, nil, false
	}
	return caller, user, true
}

// requireStaff пускает тренеров и администраторов
func (h *Handlers) requireStaff(ctx context.Context, b *bot.Bot, chatID, telegramID int64) (service.Caller, *model.User, bool) {
	caller, user, ok := h.requireUser(ctx, b, chatID, telegramID)
	if !ok {
		return caller, nil, false
	}

	if !caller.IsStaff() {
		h.sendError(ctx, b, chatID, "❌ Эта команда доступна только тренерам.")
		return caller, nil, false
	}
	return caller, user, true
}

func notLinkedText(telegramID int64) string {
	return fmt.Sprintf(
		"🔒 Ваш Telegram не привязан к аккаунту зала.\n\n"+
			"Передайте администратору ваш ID: %d",
		telegramID,
	)
}

// replyServiceError переводит доменную ошибку в сообщение пользователю
func (h *Handlers) replyServiceError(ctx context.Context, b *bot.Bot, chatID int64, err error) {
	if _, ok := service.AsError(err); !ok && !errors.Is(err, context.Canceled) {
		h.logger.Error("Operation failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
	h.sendError(ctx, b, chatID, errorText(err))
}

// errorText текст для пользователя по коду доменной ошибки
func errorText(err error) string {
	domainErr, ok := service.AsError(err)
	if !ok {
		return "❌ Произошла ошибка. Попробуйте позже."
	}

	switch domainErr.Code {
	case service.ErrNoActivePlan.Code:
		return "❌ У вас нет активного абонемента. Обратитесь к администратору."
	case service.ErrPlanExpired.Code:
		return "❌ Срок действия абонемента истёк."
	case service.ErrDateOutsidePlanWindow.Code:
		return "❌ Дата вне периода действия абонемента."
	case service.ErrNoSessionsRemaining.Code, service.ErrSessionsExhausted.Code:
		return "❌ В абонементе не осталось тренировок."
	case service.ErrPastDate.Code:
		return "❌ Нельзя записаться на прошедшую дату."
	case service.ErrPastTime.Code:
		return "❌ Это время уже прошло."
	case service.ErrInvalidTimeWindow.Code:
		return "❌ Зал не принимает записи на это время."
	case service.ErrWeekendNotAllowed.Code:
		return "❌ Переносить можно только на будни (пн-пт)."
	case service.ErrTooLateToModify.Code:
		return "⏰ Бронь можно изменить не позже чем за час до начала."
	case service.ErrAlreadyHasActiveReservation.Code:
		return "❌ У вас уже есть активная бронь. Посмотреть: /myreservation"
	case service.ErrSlotFull.Code:
		return "😔 На это время мест нет. Выберите другое."
	case service.ErrNotFound.Code:
		return "❌ Бронь не найдена."
	case service.ErrNotModifiable.Code, service.ErrNotCancellable.Code:
		return "❌ Эту бронь уже нельзя изменить."
	case service.ErrAlreadyFinished.Code:
		return "✅ Тренировка уже отмечена как проведённая."
	case service.ErrForbidden.Code:
		return "🔒 Недостаточно прав."
	default:
		return "❌ " + domainErr.Message
	}
}

// sendError отправляет сообщение об ошибке
func (h *Handlers) sendError(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	h.sendMessage(ctx, b, chatID, text)
}

// sendMessage отправляет сообщение и логирует если не удалось
func (h *Handlers) sendMessage(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	h.sendWithKeyboard(ctx, b, chatID, text, nil)
}

// sendWithKeyboard отправляет сообщение с inline клавиатурой
func (h *Handlers) sendWithKeyboard(ctx context.Context, b *bot.Bot, chatID int64, text string, kb *models.InlineKeyboardMarkup) {
	params := &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	}
	if kb != nil {
		params.ReplyMarkup = kb
	}

	if _, err := b.SendMessage(ctx, params); err != nil {
		h.logger.Error("Failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}

// answerCallback убирает "часики" на нажатой кнопке
func (h *Handlers) answerCallback(ctx context.Context, b *bot.Bot, callbackID, text string) {
	_, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
	})
	if err != nil {
		h.logger.Warn("Failed to answer callback", zap.Error(err))
	}
}
