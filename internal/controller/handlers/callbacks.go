package handlers

import (
	"context"
	"strings"

	"github.com/Freeeeeet/gym_scheduler/internal/civil"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleCallbackQuery обрабатывает нажатия на inline кнопки
func (h *Handlers) HandleCallbackQuery(ctx context.Context, b *bot.Bot, update *models.Update) {
	callback := update.CallbackQuery
	if callback == nil {
		return
	}

	// Убираем "часики" сразу, ответ придёт отдельным сообщением
	h.answerCallback(ctx, b, callback.ID, "")

	msg := callback.Message.Message
	if msg == nil {
		return
	}
	chatID := msg.Chat.ID
	telegramID := callback.From.ID
	data := callback.Data

	h.logger.Debug("Callback received",
		zap.Int64("telegram_id", telegramID),
		zap.String("data", data))

	switch {
	case strings.HasPrefix(data, callbackDate):
		date, err := civil.ParseDate(strings.TrimPrefix(data, callbackDate))
		if err != nil {
			h.sendError(ctx, b, chatID, "❌ Неверный формат")
			return
		}
		h.chooseDate(ctx, b, chatID, telegramID, date)

	case strings.HasPrefix(data, callbackTime):
		t, err := civil.ParseTime(strings.TrimPrefix(data, callbackTime))
		if err != nil {
			h.sendError(ctx, b, chatID, "❌ Неверный формат")
			return
		}
		h.chooseTime(ctx, b, chatID, telegramID, t)

	case strings.HasPrefix(data, callbackCancelReserve):
		h.cancelReservation(ctx, b, chatID, telegramID, strings.TrimPrefix(data, callbackCancelReserve))

	case strings.HasPrefix(data, callbackFinish):
		reservationID, err := parseReservationID(strings.TrimPrefix(data, callbackFinish))
		if err != nil {
			h.sendError(ctx, b, chatID, "❌ Неверный формат")
			return
		}
		h.finishReservation(ctx, b, chatID, telegramID, reservationID, false)

	default:
		h.logger.Warn("Unknown callback", zap.String("data", data))
	}
}
