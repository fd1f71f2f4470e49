package domain

// Source - источник, из которого получен POI
type Source string

const (
	SourceOverpass  Source = "overpass"
	SourceNominatim Source = "nominatim"
	SourceCached    Source = "cached"
)

// Типы синтетических POI, которые не существуют в OSM
const (
	TypeAreaCluster    = "area_cluster"
	TypeCountIndicator = "count_indicator"
)

// POI представляет точку интереса в унифицированном виде для всех источников
type POI struct {
	ID     string            `json:"id"`
	Name   string            `json:"name"`
	Type   string            `json:"type"`
	Lat    float64           `json:"lat"`
	Lon    float64           `json:"lon"`
	Tags   map[string]string `json:"tags,omitempty"`
	Source Source            `json:"source"`

	// Score - релевантность для сортировки, вычисляется движком поиска
	Score int `json:"score,omitempty"`
}

// SourceBreakdown - количество результатов по каждому источнику
type SourceBreakdown struct {
	Cached    int `json:"cached"`
	Overpass  int `json:"overpass"`
	Nominatim int `json:"nominatim"`
}

// CountBySource считает разбивку результатов по источникам
func CountBySource(pois []POI) SourceBreakdown {
	var b SourceBreakdown
	for _, p := range pois {
		switch p.Source {
		case SourceOverpass:
			b.Overpass++
		case SourceNominatim:
			b.Nominatim++
		case SourceCached:
			b.Cached++
		}
	}
	return b
}

// MarkCached помечает все POI как полученные из кеша
func MarkCached(pois []POI) []POI {
	for i := range pois {
		pois[i].Source = SourceCached
	}
	return pois
}
