package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewRedisClient подключается к Redis. При пустом адресе или недоступном
// сервере возвращает nil: кэш тогда работает как сквозной.
func NewRedisClient(addr, password string, db int, logger *zap.Logger) *redis.Client {
	if addr == "" {
		logger.Info("Redis is not configured, reservation cache disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// Пингуем с коротким таймаутом
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis is unavailable, reservation cache disabled",
			zap.String("addr", addr),
			zap.Error(err),
		)
		_ = client.Close()
		return nil
	}

	return client
}
