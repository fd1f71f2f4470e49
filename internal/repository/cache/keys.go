package cache

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Точность округления координат в ключах. Округление намеренно теряет
// точность, чтобы близкие запросы попадали в один ключ:
// 3 знака ~ 111 м, 2 знака ~ 1.1 км.
const (
	searchPrecision = 3
	areaPrecision   = 2
)

// Keys строит детерминированные ключи кеша по параметрам запроса
type Keys struct{}

func NewKeys() Keys {
	return Keys{}
}

// Search - ключ поиска POI: категории сортируются, поэтому ключ
// не зависит от их порядка
func (Keys) Search(lat, lon, radiusKm float64, categories []string) string {
	return fmt.Sprintf("search:%s:%s:%.1f:%s",
		roundCoord(lat, searchPrecision),
		roundCoord(lon, searchPrecision),
		radiusKm,
		normalizeCategories(categories),
	)
}

// Nominatim - ключ для закешированного ответа Nominatim по одной категории
func (Keys) Nominatim(category string, lat, lon, radiusKm float64) string {
	return fmt.Sprintf("nominatim:%s:%s:%s:%.1f",
		normalizeText(category),
		roundCoord(lat, searchPrecision),
		roundCoord(lon, searchPrecision),
		radiusKm,
	)
}

// Area - ключ области с грубым округлением
func (Keys) Area(lat, lon float64) string {
	return fmt.Sprintf("area:%s:%s",
		roundCoord(lat, areaPrecision),
		roundCoord(lon, areaPrecision),
	)
}

// Autocomplete - ключ автодополнения: текст + грубые координаты
func (Keys) Autocomplete(query string, lat, lon float64) string {
	return fmt.Sprintf("autocomplete:%s:%s:%s",
		normalizeText(query),
		roundCoord(lat, areaPrecision),
		roundCoord(lon, areaPrecision),
	)
}

// Details - ключ деталей одного POI
func (Keys) Details(id string) string {
	return fmt.Sprintf("details:%s", id)
}

func roundCoord(v float64, precision int) string {
	factor := math.Pow(10, float64(precision))
	return fmt.Sprintf("%.*f", precision, math.Round(v*factor)/factor)
}

// normalizeText приводит свободный текст к виду ключа:
// нижний регистр, пробелы схлопываются в подчёркивания
func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "_")
}

func normalizeCategories(categories []string) string {
	if len(categories) == 0 {
		return "all"
	}
	normalized := make([]string, 0, len(categories))
	for _, c := range categories {
		normalized = append(normalized, normalizeText(c))
	}
	sort.Strings(normalized)
	return strings.Join(normalized, ",")
}
