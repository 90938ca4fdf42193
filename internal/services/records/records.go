// Package records читает последнюю синхронизированную запись о подписке:
// сначала из Redis, затем из PostgreSQL. Используется только как запасной
// источник, когда удалённый валидатор недоступен.
package records

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/entitlement-gateway/internal/lib/sl"
	"github.com/magabrotheeeer/entitlement-gateway/internal/models"
	"github.com/magabrotheeeer/entitlement-gateway/internal/storage"
)

// ErrNoRecord - у пользователя нет сохранённой записи.
var ErrNoRecord = errors.New("no subscription record")

// Repository читает запись из основного хранилища.
type Repository interface {
	SubscriptionRecord(ctx context.Context, userUID string) (*models.SubscriptionRecord, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// Service - read-through кэш записей. cache может быть nil.
type Service struct {
	repo  Repository
	cache Cache
	ttl   time.Duration
	log   *slog.Logger
}

// NewService создает Service.
func NewService(repo Repository, cache Cache, ttl time.Duration, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		ttl:   ttl,
		log:   log,
	}
}

func cacheKey(userUID string) string {
	return "subscription_record:" + userUID
}

// Record возвращает запись пользователя. Ошибки кэша только логируются:
// недоступный Redis не должен лишать пользователя запасного пути.
func (s *Service) Record(ctx context.Context, userUID string) (*models.SubscriptionRecord, error) {
	const op = "records.Record"
	log := s.log.With(slog.String("op", op), sl.UID(userUID))
	key := cacheKey(userUID)

	if s.cache != nil {
		var cached models.SubscriptionRecord
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			log.Warn("failed to read record from cache", sl.Err(err))
		}
		if found {
			return &cached, nil
		}
	}

	rec, err := s.repo.SubscriptionRecord(ctx, userUID)
	if errors.Is(err, storage.ErrRecordNotFound) {
		return nil, fmt.Errorf("%s: %w", op, ErrNoRecord)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, rec, s.ttl); err != nil {
			log.Warn("failed to cache record", sl.Err(err))
		}
	}
	return rec, nil
}

// Invalidate удаляет кэшированную запись после изменения подписки.
func (s *Service) Invalidate(ctx context.Context, userUID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, cacheKey(userUID)); err != nil {
		s.log.Warn("failed to invalidate record", slog.String("op", "records.Invalidate"), sl.UID(userUID), sl.Err(err))
	}
}
