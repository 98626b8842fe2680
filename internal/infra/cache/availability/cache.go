// Package availability кэш рассчитанных сеток слотов в Redis.
//
// Кэш строго advisory: показанная пользователю сетка — не доказательство
// доступности, Booking Transaction Manager перепроверяет слот на коммите.
// Поэтому промахи и ошибки Redis деградируют в пересчёт, а не в отказ.
package availability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/avenirbook/scheduling-engine/internal/domain"
)

// ErrCacheMiss возвращается, когда сетки в кэше нет
var ErrCacheMiss = errors.New("availability cache: miss")

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Cache кэш сеток доступности
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	log    Logger
}

// New создает кэш с заданным TTL
func New(client *redis.Client, ttl time.Duration, log Logger) *Cache {
	return &Cache{client: client, ttl: ttl, log: log}
}

// Key ключ сетки: бизнес + дата + селектор ресурса + услуга + длительность
type Key struct {
	BusinessID      int64
	Date            time.Time
	Selector        string // "staff:5", "sp:2", "any:staff", "business"
	ServiceID       int64
	DurationMinutes int
}

func (k Key) redisKey() string {
	return fmt.Sprintf("slots:%d:%s:%s:%d:%d",
		k.BusinessID, k.Date.Format(domain.DateFormat), k.Selector, k.ServiceID, k.DurationMinutes)
}

// dayPattern шаблон всех ключей сеток одного дня бизнеса
func dayPattern(businessID int64, date time.Time) string {
	return fmt.Sprintf("slots:%d:%s:*", businessID, date.Format(domain.DateFormat))
}

// Get возвращает закэшированную сетку или ErrCacheMiss
func (c *Cache) Get(ctx context.Context, key Key) ([]domain.TimeSlot, error) {
	raw, err := c.client.Get(ctx, key.redisKey()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("availability cache: get: %w", err)
	}

	var slots []domain.TimeSlot
	if err := json.Unmarshal(raw, &slots); err != nil {
		// Битый кэш равнозначен промаху
		c.log.Warn("availability cache: corrupted entry %s: %v", key.redisKey(), err)
		return nil, ErrCacheMiss
	}

	return slots, nil
}

// Set сохраняет сетку с TTL (best effort)
func (c *Cache) Set(ctx context.Context, key Key, slots []domain.TimeSlot) error {
	raw, err := json.Marshal(slots)
	if err != nil {
		return fmt.Errorf("availability cache: marshal: %w", err)
	}

	if err := c.client.Set(ctx, key.redisKey(), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("availability cache: set: %w", err)
	}

	return nil
}

// InvalidateDay удаляет все сетки бизнеса на дату.
// Вызывается после каждой закоммиченной мутации этого дня.
func (c *Cache) InvalidateDay(ctx context.Context, businessID int64, date time.Time) error {
	var cursor uint64
	pattern := dayPattern(businessID, date)

	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("availability cache: scan: %w", err)
		}

		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("availability cache: del: %w", err)
			}
		}

		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}
