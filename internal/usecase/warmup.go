package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/SnapyBara/snapybara-geo/internal/usecase/dto"
)

// warmupPoint - известная достопримечательность для предзаполнения кеша
type warmupPoint struct {
	Name     string
	Lat      float64
	Lon      float64
	RadiusKm float64
}

var warmupPoints = []warmupPoint{
	{"Tour Eiffel", 48.8584, 2.2945, 2},
	{"Musée du Louvre", 48.8606, 2.3376, 2},
	{"Mont Saint-Michel", 48.6361, -1.5115, 3},
	{"Château de Versailles", 48.8049, 2.1204, 2},
	{"Vieux-Port de Marseille", 43.2951, 5.3740, 2},
	{"Basilique de Fourvière", 45.7623, 4.8220, 2},
	{"Dune du Pilat", 44.5888, -1.2149, 3},
	{"Cité de Carcassonne", 43.2065, 2.3644, 2},
	{"Falaises d'Étretat", 49.7068, 0.1944, 3},
	{"Chamonix-Mont-Blanc", 45.9237, 6.8694, 5},
}

// Warmup прогревает кеш по списку известных точек через тот же поисковый
// конвейер, с паузой между вызовами. Best-effort: ошибки отдельных точек
// логируются и не прерывают обход.
func (uc *SearchUseCase) Warmup(ctx context.Context, delay time.Duration) *dto.WarmupResponse {
	result := &dto.WarmupResponse{}

	for i, point := range warmupPoints {
		if ctx.Err() != nil {
			uc.logger.Info("Warmup cancelled",
				zap.Int("warmed", result.Warmed),
				zap.Int("remaining", len(warmupPoints)-i))
			break
		}

		_, err := uc.SearchPOIs(ctx, dto.SearchPOIRequest{
			Lat:      point.Lat,
			Lon:      point.Lon,
			RadiusKm: point.RadiusKm,
		})
		if err != nil {
			uc.logger.Warn("Warmup point failed",
				zap.String("point", point.Name),
				zap.Error(err))
			result.Failed++
			continue
		}

		result.Warmed++
		result.Points = append(result.Points, point.Name)

		if i < len(warmupPoints)-1 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
			}
		}
	}

	uc.logger.Info("Cache warmup finished",
		zap.Int("warmed", result.Warmed),
		zap.Int("failed", result.Failed))

	return result
}
