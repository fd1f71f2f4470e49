package usecase

import "github.com/SnapyBara/snapybara-geo/internal/domain"

// Типы, получающие премиальный бонус: объекты, ради которых фотографы
// едут специально
var premiumTypes = map[string]bool{
	"viewpoint":           true,
	"monument":            true,
	"castle":              true,
	"ruins":               true,
	"lighthouse":          true,
	"fountain":            true,
	"cathedral":           true,
	"palace":              true,
	"archaeological_site": true,
	"memorial":            true,
	"artwork":             true,
	"bridge":              true,
	"waterfall":           true,
	"cliff":               true,
	"park":                true,
	"garden":              true,
}

var naturalFeatureTypes = map[string]bool{
	"peak":      true,
	"cliff":     true,
	"waterfall": true,
	"beach":     true,
}

// calculateRelevanceScore - эвристический аддитивный скоринг по тегам.
// Веса подобраны вручную; важен относительный порядок, а не точные числа:
// добавление любого положительного тега никогда не уменьшает скор.
func calculateRelevanceScore(poi domain.POI) int {
	score := 0
	tags := poi.Tags

	// Теги обогащения: чем больше о месте известно, тем оно интереснее
	if tags["wikipedia"] != "" || tags["wikidata"] != "" {
		score += 10
	}
	if tags["heritage"] != "" {
		score += 15
	}
	if tags["tourism"] != "" {
		score += 8
	}
	if tags["website"] != "" {
		score += 3
	}
	if tags["opening_hours"] != "" {
		score += 2
	}
	if tags["image"] != "" || tags["wikimedia_commons"] != "" {
		score += 10
	}
	if tags["photo"] != "" {
		score += 12
	}

	if premiumTypes[poi.Type] {
		score += 10
	}

	if poi.Type == "park" || poi.Type == "garden" {
		score += 5
		if tags["name"] != "" {
			score += 3
		}
	}

	if tags["historic"] != "" {
		score += 8
	}

	// Явные маркеры фотогеничности
	if tags["photo_spot"] != "" {
		score += 15
	}
	if tags["scenic"] != "" {
		score += 10
	}
	if tags["instagram"] != "" {
		score += 5
	}

	if naturalFeatureTypes[poi.Type] {
		score += 8
	}

	if poi.Type == "square" || tags["place"] == "square" {
		score += 6
	}

	// Безымянные POI малоинтересны, если это не значимая область
	if tags["name"] == "" && !isImportantArea(poi) {
		score -= 10
	}

	return score
}

func isImportantArea(poi domain.POI) bool {
	if poi.Type == "park" || poi.Type == "garden" || poi.Type == "square" {
		return true
	}
	return poi.Tags["natural"] != ""
}
