package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	Environment string
	LogLevel    string
	HTTPAddr    string
	Storage     string
	DBDSN       string
	Migrate     bool

	JWTSecret     string
	TelegramToken string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	RabbitMQURL      string
	RabbitMQExchange string

	// Правила зала
	GymUTCOffset      string
	GymTimezone       string
	BookingWindows    string
	BookingHours      string
	SlotCapacity      int
	RescheduleCutoff  time.Duration
	PlanRenewalDays   int
	PlanSweepInterval time.Duration
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	return FromEnv()
}

// FromEnv читает конфигурацию из переменных окружения
func FromEnv() (*Config, error) {
	cfg := &Config{
		Environment:      getenv("ENV", "development"),
		LogLevel:         os.Getenv("LOG_LEVEL"),
		HTTPAddr:         getenv("HTTP_ADDR", ":8080"),
		Storage:          strings.ToLower(getenv("STORAGE", StoragePostgres)),
		DBDSN:            os.Getenv("DB_DSN"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		TelegramToken:    os.Getenv("TELEGRAM_TOKEN"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		RabbitMQURL:      os.Getenv("RABBITMQ_URL"),
		RabbitMQExchange: os.Getenv("RABBITMQ_EXCHANGE"),
		GymUTCOffset:     getenv("GYM_UTC_OFFSET", "-03:00"),
		GymTimezone:      os.Getenv("GYM_TIMEZONE"),
		BookingWindows:   os.Getenv("BOOKING_WINDOWS"),
		BookingHours:     os.Getenv("BOOKING_HOURS"),
	}

	var err error
	if cfg.Migrate, err = parseBool("MIGRATE", true); err != nil {
		return nil, err
	}
	if cfg.RedisDB, err = parseInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = parseDuration("CACHE_TTL", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.SlotCapacity, err = parseInt("SLOT_CAPACITY", 5); err != nil {
		return nil, err
	}
	if cfg.RescheduleCutoff, err = parseDuration("RESCHEDULE_CUTOFF", 60*time.Minute); err != nil {
		return nil, err
	}
	if cfg.PlanRenewalDays, err = parseInt("PLAN_RENEWAL_DAYS", 30); err != nil {
		return nil, err
	}
	if cfg.PlanSweepInterval, err = parseDuration("PLAN_SWEEP_INTERVAL", time.Hour); err != nil {
		return nil, err
	}

	// Проверяем обязательные поля
	switch cfg.Storage {
	case StoragePostgres:
		if cfg.DBDSN == "" {
			return nil, fmt.Errorf("DB_DSN is required but not set")
		}
	case StorageMemory:
	default:
		return nil, fmt.Errorf("STORAGE must be %q or %q, got %q", StoragePostgres, StorageMemory, cfg.Storage)
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}

	if cfg.SlotCapacity <= 0 {
		return nil, fmt.Errorf("SLOT_CAPACITY must be positive, got %d", cfg.SlotCapacity)
	}

	return cfg, nil
}

func (c *Config) GetDBDSN() string {
	return c.DBDSN
}

// IsProduction включает JSON-логи
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func parseDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}

func parseBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return b, nil
}
