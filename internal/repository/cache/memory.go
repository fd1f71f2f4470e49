package cache

import (
	"context"
	"sync"
	"time"

	"github.com/SnapyBara/snapybara-geo/internal/domain/repository"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// memoryRepository - in-memory реализация CacheRepository.
// Используется в тестах и как fallback, когда Redis недоступен.
type memoryRepository struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

func NewMemoryRepository() repository.CacheRepository {
	return &memoryRepository{
		entries: make(map[string]memoryEntry),
	}
}

func (r *memoryRepository) Get(ctx context.Context, key string) ([]byte, error) {
	r.mu.RLock()
	entry, ok := r.entries[key]
	r.mu.RUnlock()

	if !ok {
		return nil, nil
	}

	// Истёкшая запись неотличима от отсутствующей
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		r.mu.Lock()
		delete(r.entries, key)
		r.mu.Unlock()
		return nil, nil
	}

	cp := make([]byte, len(entry.data))
	copy(cp, entry.data)
	return cp, nil
}

func (r *memoryRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	cp := make([]byte, len(value))
	copy(cp, value)

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	r.mu.Lock()
	r.entries[key] = memoryEntry{data: cp, expiresAt: expiresAt}
	r.mu.Unlock()
	return nil
}

func (r *memoryRepository) Delete(ctx context.Context, key string) error {
	r.mu.Lock()
	delete(r.entries, key)
	r.mu.Unlock()
	return nil
}

func (r *memoryRepository) Exists(ctx context.Context, key string) (bool, error) {
	data, err := r.Get(ctx, key)
	if err != nil {
		return false, err
	}
	return data != nil, nil
}
