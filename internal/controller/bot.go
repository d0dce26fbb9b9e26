package controller

import (
	"context"

	"github.com/Freeeeeet/gym_scheduler/internal/cache"
	"github.com/Freeeeeet/gym_scheduler/internal/civil"
	"github.com/Freeeeeet/gym_scheduler/internal/controller/handlers"
	"github.com/Freeeeeet/gym_scheduler/internal/controller/state"
	"github.com/Freeeeeet/gym_scheduler/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

type BotController struct {
	bot      *bot.Bot
	handlers *handlers.Handlers
	logger   *zap.Logger
}

func NewBotController(
	botInstance *bot.Bot,
	userService *service.UserService,
	schedulingService *service.SchedulingService,
	planLedger *service.PlanLedger,
	reservationCache *cache.ReservationCache,
	clock civil.Clock,
	logger *zap.Logger,
) *BotController {
	// Создаём менеджер состояний
	stateManager := state.NewManager()

	// Создаём обработчики команд
	cmdHandlers := handlers.NewHandlers(
		userService,
		schedulingService,
		planLedger,
		reservationCache,
		clock,
		stateManager,
		logger,
	)

	return &BotController{
		bot:      botInstance,
		handlers: cmdHandlers,
		logger:   logger,
	}
}

// RegisterHandlers регистрирует все обработчики команд
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, c.handlers.HandleStart)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, c.handlers.HandleHelp)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/cancel", bot.MatchTypeExact, c.handlers.HandleCancel)

	// Команды клиентов
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/plan", bot.MatchTypeExact, c.handlers.HandlePlan)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/book", bot.MatchTypeExact, c.handlers.HandleBook)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/myreservation", bot.MatchTypeExact, c.handlers.HandleMyReservation)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/history", bot.MatchTypeExact, c.handlers.HandleHistory)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/reschedule", bot.MatchTypeExact, c.handlers.HandleReschedule)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/cancelreservation", bot.MatchTypeExact, c.handlers.HandleCancelReservation)

	// Команды тренеров
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/agenda", bot.MatchTypeExact, c.handlers.HandleAgenda)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/finish", bot.MatchTypePrefix, c.handlers.HandleFinish)

	// Обработчик текстовых сообщений (для диалогов с состояниями)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix, c.handlers.HandleTextMessage)

	// Обработчик нажатий на inline кнопки
	c.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, c.handlers.HandleCallbackQuery)

	// Устанавливаем меню команд
	return c.setCommands(ctx)
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "start", Description: "🚀 Начать работу с ботом"},
		{Command: "help", Description: "❓ Справка по командам"},
		{Command: "plan", Description: "🎫 Мой абонемент"},
		{Command: "book", Description: "📝 Записаться на тренировку"},
		{Command: "myreservation", Description: "🏋️ Моя бронь"},
		{Command: "reschedule", Description: "🔄 Перенести бронь"},
		{Command: "cancelreservation", Description: "❌ Отменить бронь"},
		{Command: "history", Description: "📖 История тренировок"},
		{Command: "agenda", Description: "🗓 Расписание (тренер)"},
		{Command: "cancel", Description: "⛔ Прервать диалог"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})

	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("✅ Bot commands menu set")
	return nil
}

// Start запускает бота, блокируется до отмены ctx
func (c *BotController) Start(ctx context.Context) error {
	c.logger.Info("Starting bot...")
	c.bot.Start(ctx)
	return nil
}
