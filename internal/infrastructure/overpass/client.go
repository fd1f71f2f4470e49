package overpass

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/SnapyBara/snapybara-geo/internal/config"
	"github.com/SnapyBara/snapybara-geo/internal/domain"
	"github.com/SnapyBara/snapybara-geo/internal/domain/repository"
	"github.com/SnapyBara/snapybara-geo/internal/pkg/retry"
	"github.com/SnapyBara/snapybara-geo/internal/pkg/utils"
	"go.uber.org/zap"
)

// ErrRateLimited - upstream ответил 429 или текстом о превышении лимита
var ErrRateLimited = errors.New("overpass rate limited")

type client struct {
	httpClient *http.Client
	cfg        *config.OverpassConfig
	search     *config.SearchConfig
	monitor    repository.ServerMonitor
	builder    Builder
	policy     retry.Policy
	logger     *zap.Logger
}

// NewClient создает клиент Overpass с ротацией серверов и повторами.
// Монитор инжектируется снаружи, чтобы его же читал HTTP-хендлер метрик.
func NewClient(
	cfg *config.OverpassConfig,
	searchCfg *config.SearchConfig,
	monitor repository.ServerMonitor,
	logger *zap.Logger,
) repository.OverpassRepository {
	return &client{
		httpClient: &http.Client{
			// Верхняя граница; реальный дедлайн задаёт контекст каждого запроса
			Timeout: 30 * time.Second,
		},
		cfg:     cfg,
		search:  searchCfg,
		monitor: monitor,
		builder: NewBuilder(),
		policy:  retry.NewPolicy(cfg.MaxRetries, cfg.RetryDelay, cfg.BackoffMultiplier, classifyError),
		logger:  logger,
	}
}

// SearchPOIs выбирает стратегию по радиусу: выше порога split области
// запрашиваются по группам категорий параллельно, иначе одним запросом.
// Нулевой результат добирается минимальным fallback-запросом.
func (c *client) SearchPOIs(ctx context.Context, lat, lon, radiusKm float64) ([]domain.POI, error) {
	bbox := utils.ComputeBoundingBox(lat, lon, radiusKm)

	var elements []domain.OverpassElement
	var err error

	if radiusKm > c.search.SplitRadiusKm {
		elements = c.splitSearch(ctx, bbox)
	} else if radiusKm > c.search.MediumRadiusKm {
		elements, err = c.queryWithRetry(ctx, c.builder.Medium(bbox))
	} else {
		elements, err = c.queryWithRetry(ctx, c.builder.Full(bbox))
	}
	if err != nil {
		return nil, err
	}

	pois := c.toPOIs(elements)

	if len(pois) == 0 {
		pois = c.fallbackSearch(ctx, bbox)
	}

	return pois, nil
}

// CountPOIs возвращает количество объектов в радиусе без самих элементов
func (c *client) CountPOIs(ctx context.Context, lat, lon, radiusKm float64) (int, error) {
	bbox := utils.ComputeBoundingBox(lat, lon, radiusKm)

	elements, err := c.queryWithRetry(ctx, c.builder.Count(bbox))
	if err != nil {
		return 0, err
	}

	for _, el := range elements {
		if el.Count != nil {
			total, convErr := strconv.Atoi(el.Count.Total)
			if convErr != nil {
				return 0, fmt.Errorf("invalid count response: %w", convErr)
			}
			return total, nil
		}
	}

	return 0, nil
}

// splitSearch запрашивает каждую группу категорий отдельной горутиной.
// Ошибка одной группы не прерывает остальные: её результат просто пуст.
// Слияние идёт в порядке приоритета групп, а не в порядке завершения,
// поэтому дубликаты подавляются в пользу более приоритетной группы.
func (c *client) splitSearch(ctx context.Context, bbox utils.BBox) []domain.OverpassElement {
	groups := c.builder.Groups()
	results := make([][]domain.OverpassElement, len(groups))

	var wg sync.WaitGroup
	for i, group := range groups {
		wg.Add(1)
		go func(i int, group CategoryGroup) {
			defer wg.Done()

			elements, err := c.queryWithRetry(ctx, c.builder.Category(group, bbox))
			if err != nil {
				c.logger.Warn("Category sub-query failed",
					zap.String("group", group.Name),
					zap.Error(err))
				return
			}
			results[i] = elements
		}(i, group)
	}
	wg.Wait()

	seen := make(map[string]struct{})
	var merged []domain.OverpassElement
	for _, elements := range results {
		for _, el := range elements {
			key := fmt.Sprintf("%s-%d", el.Type, el.ID)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, el)
		}
	}

	return merged
}

// fallbackSearch - одна минимальная попытка, когда основная стратегия
// ничего не нашла. Её ошибка не поднимается: пустой результат валиден.
func (c *client) fallbackSearch(ctx context.Context, bbox utils.BBox) []domain.POI {
	query := c.builder.Limited(bbox)

	server := c.monitor.BestServer(c.cfg.Servers)
	elements, err := c.execute(ctx, server, query)
	if err != nil {
		c.logger.Warn("Fallback query failed", zap.Error(err))
		return nil
	}

	return c.toPOIs(elements)
}

// queryWithRetry выполняет запрос с повторами, на каждой попытке заново
// выбирая лучший сервер. Исчерпав попытки, возвращает последнюю ошибку.
func (c *client) queryWithRetry(ctx context.Context, query Query) ([]domain.OverpassElement, error) {
	var elements []domain.OverpassElement

	err := c.policy.Do(ctx, func(ctx context.Context, attempt int) error {
		server := c.monitor.BestServer(c.cfg.Servers)

		result, err := c.execute(ctx, server, query)
		if err != nil {
			c.logger.Warn("Overpass query attempt failed",
				zap.String("server", server),
				zap.Int("attempt", attempt+1),
				zap.Error(err))
			return err
		}

		elements = result
		return nil
	})
	if err != nil {
		return nil, err
	}

	return elements, nil
}

// execute выполняет один POST к одному серверу и записывает исход в монитор
func (c *client) execute(ctx context.Context, serverURL string, query Query) ([]domain.OverpassElement, error) {
	start := c.monitor.RecordStart(serverURL)

	ctx, cancel := context.WithTimeout(ctx, query.Timeout)
	defer cancel()

	form := url.Values{"data": {query.QL}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, serverURL, strings.NewReader(form.Encode()))
	if err != nil {
		c.monitor.RecordFailure(serverURL, err, start, false, false)
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		timeout := isTimeoutError(err)
		c.monitor.RecordFailure(serverURL, err, start, false, timeout)
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		c.monitor.RecordFailure(serverURL, ErrRateLimited, start, true, false)
		return nil, ErrRateLimited
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		if isRateLimitText(string(body)) {
			c.monitor.RecordFailure(serverURL, ErrRateLimited, start, true, false)
			return nil, ErrRateLimited
		}
		err := fmt.Errorf("overpass error: status %d, body: %s", resp.StatusCode, string(body))
		c.monitor.RecordFailure(serverURL, err, start, false, false)
		return nil, err
	}

	var overpassResp domain.OverpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&overpassResp); err != nil {
		c.monitor.RecordFailure(serverURL, err, start, false, false)
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	c.monitor.RecordSuccess(serverURL, start, len(overpassResp.Elements))
	return overpassResp.Elements, nil
}

func (c *client) toPOIs(elements []domain.OverpassElement) []domain.POI {
	pois := make([]domain.POI, 0, len(elements))
	for _, el := range elements {
		if el.Count != nil {
			continue
		}

		lat, lon, ok := el.Position()
		if !ok || !utils.ValidateCoordinates(lat, lon) {
			continue
		}

		poiType := normalizeType(el.Tags)
		pois = append(pois, domain.POI{
			ID:     fmt.Sprintf("overpass-%s-%d", el.Type, el.ID),
			Name:   poiName(el.Tags, poiType),
			Type:   poiType,
			Lat:    lat,
			Lon:    lon,
			Tags:   el.Tags,
			Source: domain.SourceOverpass,
		})
	}
	return pois
}

func classifyError(err error) retry.Class {
	switch {
	case errors.Is(err, ErrRateLimited):
		return retry.ClassRateLimit
	case isTimeoutError(err):
		return retry.ClassTimeout
	default:
		return retry.ClassOther
	}
}

func isTimeoutError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isRateLimitText(body string) bool {
	lower := strings.ToLower(body)
	return strings.Contains(lower, "rate_limited") ||
		strings.Contains(lower, "too many requests") ||
		strings.Contains(lower, "load too high")
}
