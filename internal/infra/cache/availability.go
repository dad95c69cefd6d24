package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noshow-me/NSP-ReservationService/internal/domain"
)

// ErrCacheMiss возвращается, когда значения в кеше нет
var ErrCacheMiss = errors.New("cache: miss")

// AvailabilityCache кеширует посчитанную дневную сетку слотов услуги
// Кеш всегда best-effort: его отказ не должен ронять запрос
type AvailabilityCache interface {
	GetDaySlots(ctx context.Context, serviceID int64, day time.Time) ([]domain.Slot, error)
	SetDaySlots(ctx context.Context, serviceID int64, day time.Time, slots []domain.Slot) error
	InvalidateDay(ctx context.Context, serviceID int64, day time.Time) error
}

// RedisAvailabilityCache реализация кеша доступности поверх Redis
type RedisAvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisAvailabilityCache создает кеш доступности с заданным TTL
func NewRedisAvailabilityCache(client *redis.Client, ttl time.Duration) *RedisAvailabilityCache {
	return &RedisAvailabilityCache{client: client, ttl: ttl}
}

func dayKey(serviceID int64, day time.Time) string {
	// Ключ нормализуется к дате в UTC: запись и инвалидация могут приходить
	// со временем в разных зонах и должны попадать в один и тот же ключ
	return fmt.Sprintf("availability:service:%d:day:%s", serviceID, day.UTC().Format(domain.DateFormat))
}

// GetDaySlots читает дневную сетку из кеша
func (c *RedisAvailabilityCache) GetDaySlots(ctx context.Context, serviceID int64, day time.Time) ([]domain.Slot, error) {
	data, err := c.client.Get(ctx, dayKey(serviceID, day)).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("cache: get day slots: %w", err)
	}

	var slots []domain.Slot
	if err := json.Unmarshal(data, &slots); err != nil {
		// Битое значение трактуем как промах, чтобы оно было перезаписано
		return nil, ErrCacheMiss
	}

	return slots, nil
}

// SetDaySlots записывает дневную сетку в кеш
func (c *RedisAvailabilityCache) SetDaySlots(ctx context.Context, serviceID int64, day time.Time, slots []domain.Slot) error {
	data, err := json.Marshal(slots)
	if err != nil {
		return fmt.Errorf("cache: marshal day slots: %w", err)
	}

	if err := c.client.Set(ctx, dayKey(serviceID, day), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache: set day slots: %w", err)
	}

	return nil
}

// InvalidateDay сбрасывает кеш дня после изменения бронирований
func (c *RedisAvailabilityCache) InvalidateDay(ctx context.Context, serviceID int64, day time.Time) error {
	if err := c.client.Del(ctx, dayKey(serviceID, day)).Err(); err != nil {
		return fmt.Errorf("cache: invalidate day: %w", err)
	}
	return nil
}

// NoopAvailabilityCache заглушка, когда Redis отключен конфигурацией
type NoopAvailabilityCache struct{}

// NewNoopAvailabilityCache создает отключенный кеш
func NewNoopAvailabilityCache() *NoopAvailabilityCache {
	return &NoopAvailabilityCache{}
}

func (c *NoopAvailabilityCache) GetDaySlots(_ context.Context, _ int64, _ time.Time) ([]domain.Slot, error) {
	return nil, ErrCacheMiss
}

func (c *NoopAvailabilityCache) SetDaySlots(_ context.Context, _ int64, _ time.Time, _ []domain.Slot) error {
	return nil
}

func (c *NoopAvailabilityCache) InvalidateDay(_ context.Context, _ int64, _ time.Time) error {
	return nil
}
