package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Freeeeeet/gym_scheduler/internal/app"
	"github.com/Freeeeeet/gym_scheduler/internal/cache"
	"github.com/Freeeeeet/gym_scheduler/internal/civil"
	"github.com/Freeeeeet/gym_scheduler/internal/config"
	"github.com/Freeeeeet/gym_scheduler/internal/controller"
	"github.com/Freeeeeet/gym_scheduler/internal/controller/httpapi"
	"github.com/Freeeeeet/gym_scheduler/internal/queue"
	"github.com/Freeeeeet/gym_scheduler/internal/repository"
	"github.com/Freeeeeet/gym_scheduler/internal/repository/memory"
	"github.com/Freeeeeet/gym_scheduler/internal/service"
	"github.com/Freeeeeet/gym_scheduler/migrations"
	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := app.NewLogger(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	logger.Sugar().Infow("Starting gym scheduler",
		"environment", cfg.Environment,
		"storage", cfg.Storage,
		"http_addr", cfg.HTTPAddr,
		"bot_enabled", cfg.TelegramToken != "")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("Server stopped with error", zap.Error(err))
	}
	logger.Info("👋 Server stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	clock, err := newClock(cfg)
	if err != nil {
		return err
	}

	windows, err := service.ParseBookingWindows(orDefault(cfg.BookingWindows, service.DefaultBookingWindows))
	if err != nil {
		return fmt.Errorf("BOOKING_WINDOWS: %w", err)
	}
	hours, err := service.ParseBookingHours(orDefault(cfg.BookingHours, service.DefaultBookingHours))
	if err != nil {
		return fmt.Errorf("BOOKING_HOURS: %w", err)
	}

	txm, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	var events service.EventPublisher = queue.NopPublisher{}
	if cfg.RabbitMQURL != "" {
		publisher := queue.NewPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange, logger)
		defer publisher.Close()
		events = publisher
	}

	redisClient := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}
	reservationCache := cache.NewReservationCache(redisClient, cfg.CacheTTL, logger)

	// Сервисы
	ledger := service.NewPlanLedger(txm, clock, cfg.PlanRenewalDays, logger)
	scheduling := service.NewSchedulingService(
		txm,
		clock,
		ledger,
		service.NewSlotCapacityIndex(cfg.SlotCapacity),
		events,
		service.SchedulingConfig{
			Windows:          windows,
			Hours:            hours,
			RescheduleCutoff: cfg.RescheduleCutoff,
		},
		logger,
	)
	users := service.NewUserService(txm, logger)

	handler := httpapi.NewHandler(scheduling, ledger, users, reservationCache, logger)
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(handler, []byte(cfg.JWTSecret)),
		ReadHeaderTimeout: 5 * time.Second,
	}

	scheduler := app.NewScheduler(ledger, cfg.PlanSweepInterval, logger)

	var botController *controller.BotController
	if cfg.TelegramToken != "" {
		b, err := bot.New(cfg.TelegramToken)
		if err != nil {
			return fmt.Errorf("create bot: %w", err)
		}

		botController = controller.NewBotController(b, users, scheduling, ledger, reservationCache, clock, logger)
		if err := botController.RegisterHandlers(ctx); err != nil {
			// Меню команд не критично, бот работает и без него
			logger.Warn("Failed to register bot commands", zap.Error(err))
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("🌐 HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return scheduler.Run(gctx)
	})

	if botController != nil {
		g.Go(func() error {
			return botController.Start(gctx)
		})
	}

	return g.Wait()
}

// openStore подключает Postgres (с миграциями) или хранилище в памяти
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (service.TxManager, func(), error) {
	if cfg.Storage == config.StorageMemory {
		logger.Warn("⚠️  Using in-memory storage, data will be lost on restart")
		return memory.NewStore(), func() {}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.GetDBDSN())
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}
	logger.Info("✅ Connected to database")

	if cfg.Migrate {
		migrator, err := app.NewMigrator(pool, migrations.FS, logger)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		err = migrator.Run(ctx)
		migrator.Close()
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
	}

	return repository.NewStore(pool), pool.Close, nil
}

// newClock часы зала: IANA зона, если задана, иначе фиксированное смещение
func newClock(cfg *config.Config) (civil.Clock, error) {
	if cfg.GymTimezone != "" {
		loc, err := time.LoadLocation(cfg.GymTimezone)
		if err != nil {
			return nil, fmt.Errorf("GYM_TIMEZONE: %w", err)
		}
		return civil.NewClock(loc), nil
	}

	loc, err := civil.ParseOffset(cfg.GymUTCOffset)
	if err != nil {
		return nil, fmt.Errorf("GYM_UTC_OFFSET: %w", err)
	}
	return civil.NewClock(loc), nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
