package usecase

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/SnapyBara/snapybara-geo/internal/config"
	"github.com/SnapyBara/snapybara-geo/internal/domain"
	"github.com/SnapyBara/snapybara-geo/internal/domain/repository"
	"github.com/SnapyBara/snapybara-geo/internal/pkg/errors"
	"github.com/SnapyBara/snapybara-geo/internal/pkg/utils"
	"github.com/SnapyBara/snapybara-geo/internal/repository/cache"
	"github.com/SnapyBara/snapybara-geo/internal/usecase/dto"
)

// Шаг сетки при проверке соседних ключей кеша
const nearbyCacheMarginKm = 1.0

// Категории Nominatim по умолчанию, когда клиент не передал свои
var defaultNominatimCategories = []string{"monument", "viewpoint", "castle", "park", "fountain"}

// SearchUseCase - движок мультисорсного поиска POI: кеш, Overpass,
// Nominatim, дедупликация и скоринг
type SearchUseCase struct {
	overpassRepo  repository.OverpassRepository
	nominatimRepo repository.NominatimRepository
	store         *cache.Store
	logger        *zap.Logger

	cacheCfg     *config.CacheConfig
	searchCfg    *config.SearchConfig
	overpassCfg  *config.OverpassConfig
	nominatimCfg *config.NominatimConfig
}

// NewSearchUseCase - создание нового SearchUseCase
func NewSearchUseCase(
	overpassRepo repository.OverpassRepository,
	nominatimRepo repository.NominatimRepository,
	store *cache.Store,
	cacheCfg *config.CacheConfig,
	searchCfg *config.SearchConfig,
	overpassCfg *config.OverpassConfig,
	nominatimCfg *config.NominatimConfig,
	logger *zap.Logger,
) *SearchUseCase {
	return &SearchUseCase{
		overpassRepo:  overpassRepo,
		nominatimRepo: nominatimRepo,
		store:         store,
		cacheCfg:      cacheCfg,
		searchCfg:     searchCfg,
		overpassCfg:   overpassCfg,
		nominatimCfg:  nominatimCfg,
		logger:        logger,
	}
}

// SearchPOIs - основная операция поиска.
// Сначала пробуются соседние ключи кеша, затем живой поиск через
// GetOrSetWithFreshness: при ошибке живого поиска отдаётся устаревший кеш.
func (uc *SearchUseCase) SearchPOIs(ctx context.Context, req dto.SearchPOIRequest) (*dto.SearchPOIResponse, error) {
	start := time.Now()

	if !utils.ValidateCoordinates(req.Lat, req.Lon) {
		return nil, errors.ErrInvalidCoordinates
	}
	if !utils.ValidateRadius(req.RadiusKm) {
		return nil, errors.ErrInvalidRadius
	}

	// Проверка пространственной локальности: попадание в соседний ключ
	// экономит весь сетевой путь ценой небольшого смещения результата
	if nearbyKey := uc.store.HasNearbyCache(ctx, req.Lat, req.Lon, req.RadiusKm, nearbyCacheMarginKm, req.Categories); nearbyKey != "" {
		var cached []domain.POI
		if uc.store.Get(ctx, nearbyKey, &cached) {
			uc.logger.Debug("Nearby cache hit",
				zap.String("key", nearbyKey),
				zap.Int("count", len(cached)))

			cached = domain.MarkCached(cached)
			return &dto.SearchPOIResponse{
				Data:            cached,
				Sources:         domain.CountBySource(cached),
				ExecutionTimeMs: time.Since(start).Milliseconds(),
			}, nil
		}
	}

	key := uc.store.Keys().Search(req.Lat, req.Lon, req.RadiusKm, req.Categories)

	var pois []domain.POI
	hit, err := uc.store.GetOrSetWithFreshness(ctx, key, uc.cacheCfg.SearchTTL, &pois,
		func(ctx context.Context) (interface{}, error) {
			return uc.performSearch(ctx, req)
		},
		true,
	)
	if err != nil {
		// Единственный путь, по которому ошибка доходит до вызывающего:
		// живой поиск упал и устаревшего значения в кеше нет
		uc.logger.Error("Search failed with no cached fallback",
			zap.String("key", key),
			zap.Error(err))
		return nil, err
	}

	if hit {
		pois = domain.MarkCached(pois)
	}

	return &dto.SearchPOIResponse{
		Data:            pois,
		Sources:         domain.CountBySource(pois),
		ExecutionTimeMs: time.Since(start).Milliseconds(),
	}, nil
}

// CountPOIs возвращает количество POI в области одним лёгким запросом
func (uc *SearchUseCase) CountPOIs(ctx context.Context, req dto.CountPOIRequest) (*dto.CountPOIResponse, error) {
	start := time.Now()

	if !utils.ValidateCoordinates(req.Lat, req.Lon) {
		return nil, errors.ErrInvalidCoordinates
	}
	if !utils.ValidateRadius(req.RadiusKm) {
		return nil, errors.ErrInvalidRadius
	}

	count, err := uc.overpassRepo.CountPOIs(ctx, req.Lat, req.Lon, min(req.RadiusKm, uc.searchCfg.MaxOverpassRadiusKm))
	if err != nil {
		uc.logger.Warn("Count query failed", zap.Error(err))
		return nil, errors.ErrUpstreamUnavailable
	}

	return &dto.CountPOIResponse{
		Count:           count,
		Type:            domain.TypeCountIndicator,
		ExecutionTimeMs: time.Since(start).Milliseconds(),
	}, nil
}

// performSearch - живой мультисорсный поиск без кеша
func (uc *SearchUseCase) performSearch(ctx context.Context, req dto.SearchPOIRequest) ([]domain.POI, error) {
	// Огромные радиусы не запрашиваются у OSM вообще
	if req.RadiusKm > uc.searchCfg.VirtualRadiusKm {
		uc.logger.Info("Radius exceeds virtual cluster threshold, returning synthetic clusters",
			zap.Float64("radius_km", req.RadiusKm))
		return virtualClusters(req.Lat, req.Lon, req.RadiusKm), nil
	}

	overpassRadius := min(req.RadiusKm, uc.searchCfg.MaxOverpassRadiusKm)
	nominatimRadius := min(req.RadiusKm, uc.nominatimCfg.MaxRadiusKm)

	// Overpass и Nominatim работают одновременно; полный провал одного
	// источника никогда не валит другой
	overpassCh := make(chan []domain.POI, 1)
	go func() {
		overpassCh <- uc.overpassStage(ctx, req.Lat, req.Lon, overpassRadius)
	}()

	nominatimCh := make(chan []domain.POI, 1)
	go func() {
		nominatimCh <- uc.nominatimStage(ctx, req.Categories, req.Lat, req.Lon, nominatimRadius)
	}()

	overpassPOIs := <-overpassCh
	nominatimPOIs := <-nominatimCh

	merged := uc.dedupe(overpassPOIs, nominatimPOIs)

	for i := range merged {
		merged[i].Score = calculateRelevanceScore(merged[i])
	}

	// Сортировка: скор по убыванию, при равенстве ближе к точке запроса
	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Score != merged[j].Score {
			return merged[i].Score > merged[j].Score
		}
		di := utils.HaversineDistance(req.Lat, req.Lon, merged[i].Lat, merged[i].Lon)
		dj := utils.HaversineDistance(req.Lat, req.Lon, merged[j].Lat, merged[j].Lon)
		return di < dj
	})

	if len(merged) > uc.searchCfg.MaxResults {
		merged = merged[:uc.searchCfg.MaxResults]
	}

	uc.logger.Info("Search completed",
		zap.Int("overpass", len(overpassPOIs)),
		zap.Int("nominatim", len(nominatimPOIs)),
		zap.Int("merged", len(merged)))

	return merged, nil
}

// overpassStage гоняет Overpass-этап против глобального таймаута:
// таймаут эквивалентен нулевому результату, не ошибке. Ошибка источника
// тоже деградирует в пустой список.
func (uc *SearchUseCase) overpassStage(ctx context.Context, lat, lon, radiusKm float64) []domain.POI {
	type result struct {
		pois []domain.POI
		err  error
	}

	ch := make(chan result, 1)
	go func() {
		pois, err := uc.overpassRepo.SearchPOIs(ctx, lat, lon, radiusKm)
		ch <- result{pois, err}
	}()

	timer := time.NewTimer(uc.overpassCfg.GlobalTimeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		if res.err != nil {
			uc.logger.Warn("Overpass stage failed, continuing without it", zap.Error(res.err))
			return nil
		}
		return res.pois
	case <-timer.C:
		uc.logger.Warn("Overpass stage hit global timeout",
			zap.Duration("timeout", uc.overpassCfg.GlobalTimeout))
		return nil
	case <-ctx.Done():
		return nil
	}
}

// nominatimStage опрашивает категории последовательно, уважая неявный
// rate limit сервиса; каждая категория кешируется независимо, фиксированная
// пауза вставляется только между живыми вызовами
func (uc *SearchUseCase) nominatimStage(ctx context.Context, categories []string, lat, lon, radiusKm float64) []domain.POI {
	if len(categories) == 0 {
		categories = defaultNominatimCategories
	}

	var all []domain.POI
	for i, category := range categories {
		if ctx.Err() != nil {
			break
		}

		key := uc.store.Keys().Nominatim(category, lat, lon, radiusKm)

		var pois []domain.POI
		hit, err := uc.store.GetOrSet(ctx, key, uc.cacheCfg.NominatimTTL, &pois,
			func(ctx context.Context) (interface{}, error) {
				return uc.nominatimRepo.SearchCategory(ctx, category, lat, lon, radiusKm)
			},
		)
		if err != nil {
			uc.logger.Warn("Nominatim category failed, skipping",
				zap.String("category", category),
				zap.Error(err))
			continue
		}

		all = append(all, pois...)

		if !hit && i < len(categories)-1 {
			select {
			case <-time.After(uc.nominatimCfg.Delay):
			case <-ctx.Done():
				return all
			}
		}
	}

	return all
}

// dedupe отбрасывает POI второго источника, находящиеся ближе порога
// к уже собранным: первый источник (Overpass) всегда побеждает,
// слияния атрибутов нет
func (uc *SearchUseCase) dedupe(primary, secondary []domain.POI) []domain.POI {
	merged := make([]domain.POI, 0, len(primary)+len(secondary))
	merged = append(merged, primary...)

	thresholdM := uc.searchCfg.DedupThresholdM

	for _, candidate := range secondary {
		duplicate := false
		for _, existing := range merged {
			if utils.HaversineDistanceMeters(existing.Lat, existing.Lon, candidate.Lat, candidate.Lon) < thresholdM {
				duplicate = true
				break
			}
		}
		if !duplicate {
			merged = append(merged, candidate)
		}
	}

	return merged
}
