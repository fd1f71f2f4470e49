package repository

import (
	"context"
	"time"

	"github.com/SnapyBara/snapybara-geo/internal/domain"
)

// OverpassRepository определяет методы для поиска POI через Overpass API.
// Реализация сама выбирает стратегию запроса по радиусу, ротирует серверы
// и делает повторные попытки; наружу отдаёт либо результат, либо последнюю ошибку.
type OverpassRepository interface {
	// SearchPOIs ищет фотогеничные POI в радиусе radiusKm от точки
	SearchPOIs(ctx context.Context, lat, lon, radiusKm float64) ([]domain.POI, error)

	// CountPOIs возвращает количество POI в радиусе без самих объектов
	CountPOIs(ctx context.Context, lat, lon, radiusKm float64) (int, error)
}

// NominatimRepository определяет методы для поиска через Nominatim
type NominatimRepository interface {
	// SearchCategory ищет POI одной категории в радиусе от точки
	SearchCategory(ctx context.Context, category string, lat, lon, radiusKm float64) ([]domain.POI, error)
}

// ServerMonitor отслеживает здоровье upstream-серверов и выбирает лучший.
// Инжектируется явно, чтобы тесты могли создавать независимые экземпляры.
type ServerMonitor interface {
	// RecordStart отмечает начало запроса и возвращает токен для замера длительности
	RecordStart(serverURL string) time.Time

	// RecordSuccess отмечает успешный запрос
	RecordSuccess(serverURL string, start time.Time, resultCount int)

	// RecordFailure отмечает неудачный запрос
	RecordFailure(serverURL string, err error, start time.Time, isRateLimit, isTimeout bool)

	// BestServer выбирает сервер с лучшим скором; непроверенные серверы в приоритете
	BestServer(candidates []string) string

	// Snapshot возвращает копию всех метрик
	Snapshot() domain.MonitorSnapshot

	// Reset сбрасывает все счётчики
	Reset()
}
