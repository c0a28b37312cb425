package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/kazwonder/tourbooking/config"
	"github.com/redis/go-redis/v9"
)

// RedisCache хранит собранные JSON-ответы карточек туров. Промах кэша
// возвращается как (nil, nil).
type RedisCache struct {
	client  *redis.Client
	tourTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, tourTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:  redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		tourTTL: tourTTL,
	}
}

func (c *RedisCache) GetTourPayload(ctx context.Context, tourID string) ([]byte, error) {
	data, err := c.client.Get(ctx, tourKey(tourID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

func (c *RedisCache) SetTourPayload(ctx context.Context, tourID string, payload []byte) error {
	return c.client.Set(ctx, tourKey(tourID), payload, c.tourTTL).Err()
}

// InvalidateTour сбрасывает кэш карточки, например после заказа,
// уменьшившего остаток мест.
func (c *RedisCache) InvalidateTour(ctx context.Context, tourID string) error {
	return c.client.Del(ctx, tourKey(tourID)).Err()
}

func tourKey(tourID string) string {
	return fmt.Sprintf("cache:tour:%s", tourID)
}
