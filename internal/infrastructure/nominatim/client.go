package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/SnapyBara/snapybara-geo/internal/config"
	"github.com/SnapyBara/snapybara-geo/internal/domain"
	"github.com/SnapyBara/snapybara-geo/internal/domain/repository"
	"github.com/SnapyBara/snapybara-geo/internal/pkg/utils"
	"go.uber.org/zap"
)

// User-Agent обязателен по usage policy Nominatim
const userAgent = "snapybara-geo/1.0 (contact@snapybara.app)"

const resultLimit = 20

type client struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
}

// NewClient создает клиент Nominatim для поиска POI по категории
func NewClient(cfg *config.NominatimConfig, logger *zap.Logger) repository.NominatimRepository {
	return &client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		baseURL: cfg.BaseURL,
		logger:  logger,
	}
}

// SearchCategory ищет POI одной категории внутри bounded viewbox вокруг точки
func (c *client) SearchCategory(ctx context.Context, category string, lat, lon, radiusKm float64) ([]domain.POI, error) {
	bbox := utils.ComputeBoundingBox(lat, lon, radiusKm)

	params := url.Values{}
	params.Set("q", category)
	params.Set("format", "jsonv2")
	params.Set("limit", strconv.Itoa(resultLimit))
	params.Set("extratags", "1")
	params.Set("bounded", "1")
	// viewbox: left,top,right,bottom
	params.Set("viewbox", fmt.Sprintf("%.6f,%.6f,%.6f,%.6f", bbox.West, bbox.North, bbox.East, bbox.South))

	reqURL := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())

	c.logger.Debug("Calling Nominatim",
		zap.String("category", category),
		zap.Float64("lat", lat),
		zap.Float64("lon", lon))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("nominatim error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var places []domain.NominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return c.toPOIs(places, category), nil
}

func (c *client) toPOIs(places []domain.NominatimPlace, category string) []domain.POI {
	pois := make([]domain.POI, 0, len(places))

	for _, place := range places {
		lat, latErr := strconv.ParseFloat(place.Lat, 64)
		lon, lonErr := strconv.ParseFloat(place.Lon, 64)
		if latErr != nil || lonErr != nil || !utils.ValidateCoordinates(lat, lon) {
			continue
		}

		tags := make(map[string]string, len(place.ExtraTags)+2)
		for k, v := range place.ExtraTags {
			tags[k] = v
		}
		if place.Category != "" {
			tags[place.Category] = place.Type
		}

		name := place.Name
		if name == "" {
			name = place.DisplayName
		}
		if name == "" {
			name = category
		}

		poiType := place.Type
		if poiType == "" {
			poiType = category
		}

		pois = append(pois, domain.POI{
			ID:     fmt.Sprintf("nominatim-%d", place.PlaceID),
			Name:   name,
			Type:   poiType,
			Lat:    lat,
			Lon:    lon,
			Tags:   tags,
			Source: domain.SourceNominatim,
		})
	}

	return pois
}
