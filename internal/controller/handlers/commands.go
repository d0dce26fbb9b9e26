package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/gym_scheduler/internal/controller/state"
	"github.com/Freeeeeet/gym_scheduler/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

const clientHelp = "Для клиентов:\n" +
	"/plan - Мой абонемент\n" +
	"/book - Записаться на тренировку\n" +
	"/myreservation - Моя бронь\n" +
	"/history - История тренировок\n" +
	"/reschedule - Перенести бронь\n" +
	"/cancelreservation - Отменить бронь\n"

const staffHelp = "Для тренеров:\n" +
	"/agenda - Расписание на сегодня и ближайшие дни\n" +
	"/finish <id> - Отметить тренировку проведённой\n"

// HandleStart обрабатывает команду /start
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	from := update.Message.From
	chatID := update.Message.Chat.ID

	user, err := h.userService.GetByTelegramID(ctx, from.ID)
	if err != nil {
		h.logger.Error("Failed to get user", zap.Int64("telegram_id", from.ID), zap.Error(err))
		h.sendError(ctx, b, chatID, "❌ Произошла ошибка. Попробуйте позже.")
		return
	}

	// Аккаунты создаёт администратор, бот только узнаёт пользователя
	if user == nil {
		h.sendMessage(ctx, b, chatID, fmt.Sprintf("👋 Привет, %s!\n\n%s", from.FirstName, notLinkedText(from.ID)))
		return
	}

	h.sendMessage(ctx, b, chatID, fmt.Sprintf(
		"👋 Привет, %s!\n\nДобро пожаловать в бот записи в зал.\n\n%s\n/help - Справка",
		user.Name, helpFor(user.Role),
	))
}

// HandleHelp обрабатывает команду /help
func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	text := "📚 Справка по командам:\n\n" + clientHelp + "\n" + staffHelp +
		"\n/cancel - Прервать текущий диалог"
	h.sendMessage(ctx, b, update.Message.Chat.ID, text)
}

func helpFor(role model.Role) string {
	if role == model.RoleClient {
		return clientHelp
	}
	return staffHelp
}

// HandleCancel обрабатывает команду /cancel - отмена текущего диалога
func (h *Handlers) HandleCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	telegramID := update.Message.From.ID
	if h.stateManager.GetState(telegramID) == state.StateNone {
		h.sendMessage(ctx, b, update.Message.Chat.ID, "❌ Нет активных операций для отмены.")
		return
	}

	h.stateManager.ClearState(telegramID)
	h.sendMessage(ctx, b, update.Message.Chat.ID, "✅ Операция отменена.\n\nИспользуйте /help для просмотра доступных команд.")
}

// HandleTextMessage обрабатывает текстовые сообщения в зависимости от состояния пользователя
func (h *Handlers) HandleTextMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}

	// Игнорируем команды (они обрабатываются другими handlers)
	if strings.HasPrefix(update.Message.Text, "/") {
		return
	}

	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	dialog := h.stateManager.Get(telegramID)

	switch dialog.State {
	case state.StateNone:
		return
	case state.StateBookDate, state.StateRescheduleDate:
		date, err := parseDateInput(update.Message.Text, h.clock.Today())
		if err != nil {
			h.sendError(ctx, b, chatID, "❌ Не понял дату. Введите в формате ДД.ММ, например 15.01")
			return
		}
		h.chooseDate(ctx, b, chatID, telegramID, date)
	case state.StateBookTime, state.StateRescheduleTime:
		t, err := parseTimeInput(update.Message.Text)
		if err != nil {
			h.sendError(ctx, b, chatID, "❌ Не понял время. Введите в формате ЧЧ:ММ, например 18:30")
			return
		}
		h.chooseTime(ctx, b, chatID, telegramID, t)
	default:
		h.logger.Warn("Unknown state", zap.String("state", string(dialog.State)))
	}
}
