package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SnapyBara/snapybara-geo/internal/domain"
)

func TestCalculateRelevanceScore(t *testing.T) {
	t.Run("richly tagged landmark outranks bare point", func(t *testing.T) {
		landmark := domain.POI{
			Type: "monument",
			Tags: map[string]string{
				"name":      "Arc de Triomphe",
				"wikipedia": "fr:Arc de triomphe",
				"heritage":  "1",
				"tourism":   "attraction",
				"historic":  "monument",
			},
		}
		bare := domain.POI{
			Type: "point_of_interest",
			Tags: map[string]string{"name": "Unknown"},
		}

		assert.Greater(t, calculateRelevanceScore(landmark), calculateRelevanceScore(bare))
	})

	t.Run("adding a positive tag never lowers the score", func(t *testing.T) {
		base := domain.POI{
			Type: "viewpoint",
			Tags: map[string]string{"name": "Belvédère"},
		}
		baseScore := calculateRelevanceScore(base)

		enrichingTags := []string{"wikipedia", "heritage", "tourism", "website",
			"opening_hours", "image", "photo", "historic", "photo_spot", "scenic", "instagram"}

		for _, tag := range enrichingTags {
			enriched := domain.POI{Type: base.Type, Tags: map[string]string{"name": "Belvédère"}}
			enriched.Tags[tag] = "yes"
			assert.GreaterOrEqual(t, calculateRelevanceScore(enriched), baseScore,
				"tag %q lowered the score", tag)
		}
	})

	t.Run("premium type bonus", func(t *testing.T) {
		castle := domain.POI{Type: "castle", Tags: map[string]string{"name": "Château"}}
		generic := domain.POI{Type: "point_of_interest", Tags: map[string]string{"name": "Château"}}

		assert.Greater(t, calculateRelevanceScore(castle), calculateRelevanceScore(generic))
	})

	t.Run("unnamed POI is penalized", func(t *testing.T) {
		named := domain.POI{Type: "point_of_interest", Tags: map[string]string{"name": "X"}}
		unnamed := domain.POI{Type: "point_of_interest", Tags: map[string]string{}}

		assert.Greater(t, calculateRelevanceScore(named), calculateRelevanceScore(unnamed))
	})

	t.Run("unnamed park escapes the penalty", func(t *testing.T) {
		unnamedPark := domain.POI{Type: "park", Tags: map[string]string{}}
		unnamedPoint := domain.POI{Type: "point_of_interest", Tags: map[string]string{}}

		assert.Greater(t, calculateRelevanceScore(unnamedPark), calculateRelevanceScore(unnamedPoint))
	})

	t.Run("named park gets extra bonus", func(t *testing.T) {
		named := domain.POI{Type: "park", Tags: map[string]string{"name": "Jardin du Luxembourg"}}
		unnamed := domain.POI{Type: "park", Tags: map[string]string{}}

		assert.Greater(t, calculateRelevanceScore(named), calculateRelevanceScore(unnamed))
	})

	t.Run("natural feature bonus", func(t *testing.T) {
		waterfall := domain.POI{Type: "waterfall", Tags: map[string]string{"name": "Cascade"}}
		spring := domain.POI{Type: "spring", Tags: map[string]string{"name": "Cascade"}}

		assert.Greater(t, calculateRelevanceScore(waterfall), calculateRelevanceScore(spring))
	})

	t.Run("square bonus via tag or type", func(t *testing.T) {
		byType := domain.POI{Type: "square", Tags: map[string]string{"name": "Place"}}
		byTag := domain.POI{Type: "point_of_interest", Tags: map[string]string{"name": "Place", "place": "square"}}
		plain := domain.POI{Type: "point_of_interest", Tags: map[string]string{"name": "Place"}}

		assert.Greater(t, calculateRelevanceScore(byType), calculateRelevanceScore(plain))
		assert.Greater(t, calculateRelevanceScore(byTag), calculateRelevanceScore(plain))
	})

	t.Run("nil tags do not panic", func(t *testing.T) {
		assert.NotPanics(t, func() {
			calculateRelevanceScore(domain.POI{Type: "monument"})
		})
	})
}

func TestVirtualClusters(t *testing.T) {
	t.Run("known cities inside radius become clusters", func(t *testing.T) {
		// Центр - Париж, радиус захватывает и сам Париж
		clusters := virtualClusters(48.8566, 2.3522, 80.0)

		assert.NotEmpty(t, clusters)
		var names []string
		for _, c := range clusters {
			assert.Equal(t, domain.TypeAreaCluster, c.Type)
			assert.NotEmpty(t, c.Tags["estimated_points"])
			names = append(names, c.ID)
		}
		assert.Contains(t, names, "cluster-paris")
	})

	t.Run("remote location falls back to grid", func(t *testing.T) {
		// Середина Атлантики: ни одного известного города
		clusters := virtualClusters(30.0, -40.0, 80.0)

		assert.Len(t, clusters, 9)
		for _, c := range clusters {
			assert.Equal(t, domain.TypeAreaCluster, c.Type)
			assert.Equal(t, "grid", c.Tags["synthetic"])
		}
	})

	t.Run("grid is centered on the query point", func(t *testing.T) {
		clusters := virtualClusters(30.0, -40.0, 90.0)

		var sumLat, sumLon float64
		for _, c := range clusters {
			sumLat += c.Lat
			sumLon += c.Lon
		}
		assert.InDelta(t, 30.0, sumLat/9.0, 1e-9)
		assert.InDelta(t, -40.0, sumLon/9.0, 1e-9)
	})

	t.Run("cities outside radius are excluded", func(t *testing.T) {
		// Радиус 60 км вокруг Парижа не достаёт до Лиона
		clusters := virtualClusters(48.8566, 2.3522, 60.0)

		for _, c := range clusters {
			assert.NotEqual(t, "cluster-lyon", c.ID)
		}
	})
}
