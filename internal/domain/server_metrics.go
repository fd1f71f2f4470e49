package domain

import "time"

// ServerMetrics - счётчики одного upstream-сервера.
// Инвариант: Success + Failed <= Total.
type ServerMetrics struct {
	Total         int       `json:"total"`
	Success       int       `json:"success"`
	Failed        int       `json:"failed"`
	RateLimited   int       `json:"rate_limited"`
	Timeouts      int       `json:"timeouts"`
	AvgResponseMs float64   `json:"avg_response_ms"`
	LastError     string    `json:"last_error,omitempty"`
	LastErrorAt   time.Time `json:"last_error_at,omitempty"`
}

// SuccessRate возвращает долю успешных запросов [0..1]
func (m ServerMetrics) SuccessRate() float64 {
	if m.Total == 0 {
		return 0
	}
	return float64(m.Success) / float64(m.Total)
}

// MonitorSnapshot - срез состояния монитора для отдачи наружу
type MonitorSnapshot struct {
	Servers map[string]ServerMetrics `json:"servers"`
	Global  ServerMetrics            `json:"global"`
}
