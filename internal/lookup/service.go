package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// RepositoryPort abstracts the database reads behind the cache.
type RepositoryPort interface {
	PaymentMethod(ctx context.Context, id int64) (PaymentMethod, error)
	PaymentStatus(ctx context.Context, id int64) (PaymentStatus, error)
	SaleStatus(ctx context.Context, id int64) (SaleStatus, error)
}

// Service resolves lookup ids with a Redis read-through cache. Cache
// misses collapse into a single database read per key via singleflight.
// A nil redis client degrades to uncached reads.
type Service struct {
	repo  RepositoryPort
	redis *redis.Client
	ttl   time.Duration
	group singleflight.Group
}

// NewService builds Service. ttl bounds cache staleness after a lookup
// table edit.
func NewService(repo RepositoryPort, rdb *redis.Client, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Service{repo: repo, redis: rdb, ttl: ttl}
}

// PaymentMethod resolves a payment method id.
func (s *Service) PaymentMethod(ctx context.Context, id int64) (PaymentMethod, error) {
	return cached(ctx, s, fmt.Sprintf("lookup:payment_method:%d", id), func(ctx context.Context) (PaymentMethod, error) {
		return s.repo.PaymentMethod(ctx, id)
	})
}

// PaymentStatus resolves a payment status id.
func (s *Service) PaymentStatus(ctx context.Context, id int64) (PaymentStatus, error) {
	return cached(ctx, s, fmt.Sprintf("lookup:payment_status:%d", id), func(ctx context.Context) (PaymentStatus, error) {
		return s.repo.PaymentStatus(ctx, id)
	})
}

// SaleStatus resolves a sale status id.
func (s *Service) SaleStatus(ctx context.Context, id int64) (SaleStatus, error) {
	return cached(ctx, s, fmt.Sprintf("lookup:sale_status:%d", id), func(ctx context.Context) (SaleStatus, error) {
		return s.repo.SaleStatus(ctx, id)
	})
}

func cached[T any](ctx context.Context, s *Service, key string, load func(context.Context) (T, error)) (T, error) {
	var zero T
	if s.redis != nil {
		if raw, err := s.redis.Get(ctx, key).Bytes(); err == nil {
			var value T
			if err := json.Unmarshal(raw, &value); err == nil {
				return value, nil
			}
			// Corrupt entry: drop it and fall through to the loader.
			s.redis.Del(ctx, key)
		}
	}

	result, err, _ := s.group.Do(key, func() (any, error) {
		value, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if s.redis != nil {
			if raw, err := json.Marshal(value); err == nil {
				s.redis.Set(ctx, key, raw, s.ttl)
			}
		}
		return value, nil
	})
	if err != nil {
		return zero, err
	}
	return result.(T), nil
}
