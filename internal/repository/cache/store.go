package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/SnapyBara/snapybara-geo/internal/domain/repository"
	"go.uber.org/zap"
)

// Factory вычисляет значение при промахе кеша
type Factory func(ctx context.Context) (interface{}, error)

// Store - обёртка над CacheRepository с JSON-сериализацией.
// Ошибки бекенда глотаются и логируются: Get деградирует в промах,
// Set/Delete - в no-op. Поиск обязан работать и при мёртвом кеше.
type Store struct {
	repo   repository.CacheRepository
	keys   Keys
	logger *zap.Logger
}

func NewStore(repo repository.CacheRepository, logger *zap.Logger) *Store {
	return &Store{
		repo:   repo,
		keys:   NewKeys(),
		logger: logger,
	}
}

// Keys возвращает построитель ключей
func (s *Store) Keys() Keys {
	return s.keys
}

// Get читает значение в dest. false - промах или ошибка бекенда.
func (s *Store) Get(ctx context.Context, key string, dest interface{}) bool {
	data, err := s.repo.Get(ctx, key)
	if err != nil {
		s.logger.Warn("Cache get failed, treating as miss", zap.String("key", key), zap.Error(err))
		return false
	}
	if data == nil {
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		s.logger.Warn("Cache entry corrupted, treating as miss", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// Set сохраняет значение, best-effort
func (s *Store) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("Failed to marshal cache value", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.repo.Set(ctx, key, data, ttl); err != nil {
		s.logger.Warn("Cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// Delete удаляет значение, best-effort
func (s *Store) Delete(ctx context.Context, key string) {
	if err := s.repo.Delete(ctx, key); err != nil {
		s.logger.Warn("Cache delete failed", zap.String("key", key), zap.Error(err))
	}
}

// GetOrSet при промахе вызывает factory, сохраняет результат и пишет его
// в dest. hit=true означает, что factory не вызывалась. Конкурентные промахи
// по одному ключу могут вызвать factory дважды - известная и принятая гонка.
func (s *Store) GetOrSet(ctx context.Context, key string, ttl time.Duration, dest interface{}, factory Factory) (hit bool, err error) {
	if s.Get(ctx, key, dest) {
		return true, nil
	}

	value, err := factory(ctx)
	if err != nil {
		return false, err
	}

	s.Set(ctx, key, value, ttl)

	// Возвращаем свежую копию через JSON, а не разделяемое значение
	data, mErr := json.Marshal(value)
	if mErr != nil {
		return false, mErr
	}
	return false, json.Unmarshal(data, dest)
}

// GetOrSetWithFreshness - как GetOrSet, но при ошибке factory и
// fallbackOnError=true перечитывает кеш и отдаёт устаревшее значение вместо
// ошибки. Если устаревшего значения нет, ошибка уходит наверх - это
// единственный путь, по которому ошибка может покинуть движок.
func (s *Store) GetOrSetWithFreshness(ctx context.Context, key string, ttl time.Duration, dest interface{}, factory Factory, fallbackOnError bool) (hit bool, err error) {
	if s.Get(ctx, key, dest) {
		return true, nil
	}

	value, err := factory(ctx)
	if err != nil {
		if fallbackOnError && s.Get(ctx, key, dest) {
			s.logger.Warn("Live search failed, serving cached value",
				zap.String("key", key),
				zap.Error(err))
			return true, nil
		}
		return false, err
	}

	s.Set(ctx, key, value, ttl)

	data, mErr := json.Marshal(value)
	if mErr != nil {
		return false, mErr
	}
	return false, json.Unmarshal(data, dest)
}

// HasNearbyCache проверяет сетку 3x3 ключей с шагом ~marginKm вокруг точки
// (включая саму точку) и возвращает первый найденный непустой ключ.
// Это дешёвая приближённая проверка пространственной локальности,
// а не настоящий индекс: радиус соседнего ключа может отличаться.
func (s *Store) HasNearbyCache(ctx context.Context, lat, lon, radiusKm, marginKm float64, categories []string) string {
	step := marginKm / 111.0

	// Точный ключ проверяется первым
	exact := s.keys.Search(lat, lon, radiusKm, categories)
	if ok, err := s.repo.Exists(ctx, exact); err == nil && ok {
		return exact
	}

	for di := -1; di <= 1; di++ {
		for dj := -1; dj <= 1; dj++ {
			key := s.keys.Search(lat+float64(di)*step, lon+float64(dj)*step, radiusKm, categories)
			ok, err := s.repo.Exists(ctx, key)
			if err != nil {
				s.logger.Warn("Nearby cache probe failed", zap.String("key", key), zap.Error(err))
				continue
			}
			if ok {
				return key
			}
		}
	}
	return ""
}
