package repository

import (
	"context"
	"time"
)

// CacheRepository определяет методы для работы с кеш-бекендом.
// Реализация может быть Redis или in-memory; движок поиска от неё не зависит.
type CacheRepository interface {
	// Get получает значение по ключу; (nil, nil) означает промах
	Get(ctx context.Context, key string) ([]byte, error)

	// Set сохраняет значение с TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete удаляет значение
	Delete(ctx context.Context, key string) error

	// Exists проверяет существование ключа
	Exists(ctx context.Context, key string) (bool, error)
}
