package dto

import "github.com/SnapyBara/snapybara-geo/internal/domain"

// SearchPOIResponse - результат поиска с разбивкой по источникам
type SearchPOIResponse struct {
	Data            []domain.POI           `json:"data"`
	Sources         domain.SourceBreakdown `json:"sources"`
	ExecutionTimeMs int64                  `json:"execution_time_ms"`
}

// CountPOIResponse - количество POI в области
type CountPOIResponse struct {
	Count           int    `json:"count"`
	Type            string `json:"type"`
	ExecutionTimeMs int64  `json:"execution_time_ms"`
}

// WarmupResponse - итоги прогрева кеша
type WarmupResponse struct {
	Warmed int      `json:"warmed"`
	Failed int      `json:"failed"`
	Points []string `json:"points"`
}
