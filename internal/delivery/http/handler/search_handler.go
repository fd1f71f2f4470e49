package handler

import (
	"strings"

	"github.com/SnapyBara/snapybara-geo/internal/config"
	"github.com/SnapyBara/snapybara-geo/internal/pkg/errors"
	"github.com/SnapyBara/snapybara-geo/internal/pkg/utils"
	"github.com/SnapyBara/snapybara-geo/internal/pkg/validator"
	"github.com/SnapyBara/snapybara-geo/internal/usecase"
	"github.com/SnapyBara/snapybara-geo/internal/usecase/dto"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SearchHandler - обработчик поисковых запросов
type SearchHandler struct {
	searchUC  *usecase.SearchUseCase
	warmupCfg *config.WarmupConfig
	logger    *zap.Logger
}

// NewSearchHandler - создание нового SearchHandler
func NewSearchHandler(searchUC *usecase.SearchUseCase, warmupCfg *config.WarmupConfig, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{
		searchUC:  searchUC,
		warmupCfg: warmupCfg,
		logger:    logger,
	}
}

// Search - поиск POI в радиусе от точки
func (h *SearchHandler) Search(c *fiber.Ctx) error {
	req := dto.SearchPOIRequest{
		Lat:      c.QueryFloat("lat"),
		Lon:      c.QueryFloat("lon"),
		RadiusKm: c.QueryFloat("radius_km"),
	}
	if categories := c.Query("categories"); categories != "" {
		req.Categories = splitCategories(categories)
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"reason": err.Error(),
		}))
	}

	result, err := h.searchUC.SearchPOIs(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result, &utils.Meta{
		Total:    len(result.Data),
		TimeMSec: float64(result.ExecutionTimeMs),
	})
}

// SearchPOST - тот же поиск с телом запроса
func (h *SearchHandler) SearchPOST(c *fiber.Ctx) error {
	var req dto.SearchPOIRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"reason": err.Error(),
		}))
	}

	result, err := h.searchUC.SearchPOIs(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result, &utils.Meta{
		Total:    len(result.Data),
		TimeMSec: float64(result.ExecutionTimeMs),
	})
}

// Count - количество POI в области без самих объектов
func (h *SearchHandler) Count(c *fiber.Ctx) error {
	req := dto.CountPOIRequest{
		Lat:      c.QueryFloat("lat"),
		Lon:      c.QueryFloat("lon"),
		RadiusKm: c.QueryFloat("radius_km"),
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"reason": err.Error(),
		}))
	}

	result, err := h.searchUC.CountPOIs(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result, nil)
}

// Warmup - ручной запуск прогрева кеша
func (h *SearchHandler) Warmup(c *fiber.Ctx) error {
	result := h.searchUC.Warmup(c.Context(), h.warmupCfg.Delay)
	return utils.SendSuccess(c, result, &utils.Meta{
		Total: result.Warmed,
	})
}

func splitCategories(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
