// Package cache кэш броней клиента для вызывающего слоя (HTTP и бот)
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/gym_scheduler/internal/model"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultTTL   = 30 * time.Second
	keyPrefix    = "gym:reservations:"
	genKeyPrefix = "gym:reservations:gen:"
)

// errStaleLoad загрузка началась до последнего Invalidate
var errStaleLoad = errors.New("reservation cache load is stale")

// LoadFunc читает брони клиента из хранилища
type LoadFunc func(ctx context.Context) ([]*model.Reservation, error)

// ReservationCache read-through кэш списка броней клиента. Загружается один
// раз, сбрасывается после каждой успешной мутации и по флагу force.
//
// У каждого клиента есть счётчик поколений: Invalidate его увеличивает, а
// загрузка пишет в кэш, только если поколение не изменилось с её начала.
// Так медленная загрузка не перезапишет кэш устаревшими бронями.
type ReservationCache struct {
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
	logger *zap.Logger
}

// NewReservationCache client может быть nil: тогда каждый Get идёт в хранилище
func NewReservationCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *ReservationCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ReservationCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func key(clientID uuid.UUID) string {
	return keyPrefix + clientID.String()
}

func genKey(clientID uuid.UUID) string {
	return genKeyPrefix + clientID.String()
}

// Get брони клиента из кэша или через load. Ошибки Redis не ломают чтение.
// force всегда идёт в хранилище и не присоединяется к уже идущей загрузке.
func (c *ReservationCache) Get(ctx context.Context, clientID uuid.UUID, force bool, load LoadFunc) ([]*model.Reservation, error) {
	if c.client == nil {
		return load(ctx)
	}

	if force {
		return c.loadAndStore(ctx, clientID, load)
	}

	cached, err := c.read(ctx, clientID)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, redis.Nil) {
		c.logger.Warn("Failed to read reservation cache",
			zap.String("client_id", clientID.String()),
			zap.Error(err),
		)
	}

	// Параллельные промахи по одному клиенту делают один запрос в хранилище
	v, err, _ := c.group.Do(clientID.String(), func() (interface{}, error) {
		return c.loadAndStore(ctx, clientID, load)
	})
	if err != nil {
		return nil, err
	}
	return v.([]*model.Reservation), nil
}

func (c *ReservationCache) loadAndStore(ctx context.Context, clientID uuid.UUID, load LoadFunc) ([]*model.Reservation, error) {
	gen, genErr := c.generation(ctx, clientID)

	reservations, err := load(ctx)
	if err != nil {
		return nil, err
	}

	// Без поколения не знаем, свежая ли загрузка, поэтому не пишем
	if genErr != nil {
		c.logger.Warn("Failed to read reservation cache generation",
			zap.String("client_id", clientID.String()),
			zap.Error(genErr),
		)
		return reservations, nil
	}

	c.write(ctx, clientID, gen, reservations)
	return reservations, nil
}

// Invalidate сбрасывает кэш клиента и начинает новое поколение
func (c *ReservationCache) Invalidate(ctx context.Context, clientID uuid.UUID) {
	if c.client == nil {
		return
	}

	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey(clientID))
		pipe.Del(ctx, key(clientID))
		return nil
	})
	if err != nil {
		c.logger.Warn("Failed to invalidate reservation cache",
			zap.String("client_id", clientID.String()),
			zap.Error(err),
		)
	}
}

func (c *ReservationCache) generation(ctx context.Context, clientID uuid.UUID) (int64, error) {
	gen, err := c.client.Get(ctx, genKey(clientID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *ReservationCache) read(ctx context.Context, clientID uuid.UUID) ([]*model.Reservation, error) {
	data, err := c.client.Get(ctx, key(clientID)).Bytes()
	if err != nil {
		return nil, err
	}

	var reservations []*model.Reservation
	if err := json.Unmarshal(data, &reservations); err != nil {
		return nil, fmt.Errorf("decode cached reservations: %w", err)
	}
	return reservations, nil
}

// write кладёт брони в кэш, если поколение клиента всё ещё gen.
// WATCH отменяет запись, если Invalidate успел между проверкой и SET.
func (c *ReservationCache) write(ctx context.Context, clientID uuid.UUID, gen int64, reservations []*model.Reservation) {
	data, err := json.Marshal(reservations)
	if err != nil {
		c.logger.Warn("Failed to encode reservations for cache", zap.Error(err))
		return
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey(clientID)).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return errStaleLoad
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key(clientID), data, c.ttl)
			return nil
		})
		return err
	}, genKey(clientID))

	switch {
	case err == nil:
	case errors.Is(err, errStaleLoad), errors.Is(err, redis.TxFailedErr):
		c.logger.Debug("Skipped stale reservation cache write",
			zap.String("client_id", clientID.String()),
		)
	default:
		c.logger.Warn("Failed to write reservation cache",
			zap.String("client_id", clientID.String()),
			zap.Error(err),
		)
	}
}
