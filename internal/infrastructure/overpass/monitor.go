package overpass

import (
	"sync"
	"time"

	"github.com/SnapyBara/snapybara-geo/internal/domain"
	"github.com/SnapyBara/snapybara-geo/internal/domain/repository"
)

const (
	// recentErrorWindow - окно, в котором недавняя ошибка штрафует скор сервера
	recentErrorWindow = 5 * time.Minute

	recentErrorPenalty = 200.0
)

// Monitor отслеживает метрики upstream-серверов Overpass.
// Явно инжектируемый экземпляр, не синглтон: тесты создают независимые
// мониторы. Счётчики защищены мьютексом, так как обновляются из
// параллельных запросов.
type Monitor struct {
	mu      sync.Mutex
	servers map[string]*domain.ServerMetrics
	global  domain.ServerMetrics
}

func NewMonitor() *Monitor {
	return &Monitor{
		servers: make(map[string]*domain.ServerMetrics),
	}
}

var _ repository.ServerMonitor = (*Monitor)(nil)

// RecordStart отмечает начало запроса и возвращает момент старта
func (m *Monitor) RecordStart(serverURL string) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()

	metrics := m.metricsFor(serverURL)
	metrics.Total++
	m.global.Total++

	return time.Now()
}

// RecordSuccess отмечает успешный запрос и обновляет скользящее среднее
// времени ответа инкрементальной формулой, без хранения истории замеров
func (m *Monitor) RecordSuccess(serverURL string, start time.Time, resultCount int) {
	durationMs := float64(time.Since(start).Milliseconds())

	m.mu.Lock()
	defer m.mu.Unlock()

	metrics := m.metricsFor(serverURL)
	metrics.Success++
	metrics.AvgResponseMs = incrementalMean(metrics.AvgResponseMs, durationMs, metrics.Success)

	m.global.Success++
	m.global.AvgResponseMs = incrementalMean(m.global.AvgResponseMs, durationMs, m.global.Success)
}

// RecordFailure отмечает неудачный запрос
func (m *Monitor) RecordFailure(serverURL string, err error, start time.Time, isRateLimit, isTimeout bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	metrics := m.metricsFor(serverURL)
	metrics.Failed++
	m.global.Failed++

	if isRateLimit {
		metrics.RateLimited++
		m.global.RateLimited++
	}
	if isTimeout {
		metrics.Timeouts++
		m.global.Timeouts++
	}

	if err != nil {
		metrics.LastError = err.Error()
		metrics.LastErrorAt = time.Now()
		m.global.LastError = err.Error()
		m.global.LastErrorAt = metrics.LastErrorAt
	}
}

// BestServer выбирает сервер с лучшим скором. Сервер без единой попытки
// возвращается сразу - непроверенные серверы надо исследовать.
// При равенстве скоров побеждает первый по порядку кандидатов.
func (m *Monitor) BestServer(candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	best := ""
	bestScore := 0.0

	for _, url := range candidates {
		metrics, ok := m.servers[url]
		if !ok || metrics.Total == 0 {
			return url
		}

		score := m.score(metrics)
		if best == "" || score > bestScore {
			best = url
			bestScore = score
		}
	}

	return best
}

// score = successRate*1000 - avgLatencyMs/10 - штраф за недавнюю ошибку
func (m *Monitor) score(metrics *domain.ServerMetrics) float64 {
	score := metrics.SuccessRate()*1000 - metrics.AvgResponseMs/10

	if !metrics.LastErrorAt.IsZero() && time.Since(metrics.LastErrorAt) < recentErrorWindow {
		score -= recentErrorPenalty
	}

	return score
}

// Snapshot возвращает копию всех метрик
func (m *Monitor) Snapshot() domain.MonitorSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	servers := make(map[string]domain.ServerMetrics, len(m.servers))
	for url, metrics := range m.servers {
		servers[url] = *metrics
	}

	return domain.MonitorSnapshot{
		Servers: servers,
		Global:  m.global,
	}
}

// Reset сбрасывает все счётчики
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.servers = make(map[string]*domain.ServerMetrics)
	m.global = domain.ServerMetrics{}
}

func (m *Monitor) metricsFor(serverURL string) *domain.ServerMetrics {
	metrics, ok := m.servers[serverURL]
	if !ok {
		metrics = &domain.ServerMetrics{}
		m.servers[serverURL] = metrics
	}
	return metrics
}

func incrementalMean(avg, value float64, n int) float64 {
	return (avg*float64(n-1) + value) / float64(n)
}
