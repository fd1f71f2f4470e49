package overpass

import "strings"

// Порядок тегов, из которых берётся нормализованная категория POI
var typeTagOrder = []string{"historic", "tourism", "natural", "leisure", "amenity", "man_made", "place"}

// normalizeType выводит категорию POI из тегов OSM
func normalizeType(tags map[string]string) string {
	for _, tag := range typeTagOrder {
		if v, ok := tags[tag]; ok && v != "" && v != "yes" {
			return v
		}
	}
	if _, ok := tags["photo"]; ok {
		return "photo_spot"
	}
	return "point_of_interest"
}

// poiName возвращает имя из тегов либо синтезирует его из категории:
// имя POI никогда не бывает пустым
func poiName(tags map[string]string, poiType string) string {
	if name := tags["name"]; name != "" {
		return name
	}
	if name := tags["name:en"]; name != "" {
		return name
	}
	return humanizeType(poiType)
}

func humanizeType(poiType string) string {
	words := strings.Split(poiType, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
