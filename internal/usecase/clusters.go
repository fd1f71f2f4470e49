package usecase

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/SnapyBara/snapybara-geo/internal/domain"
	"github.com/SnapyBara/snapybara-geo/internal/pkg/utils"
)

// knownCity - город с высокой плотностью POI, представляемый одним
// виртуальным кластером вместо реального запроса к OSM
type knownCity struct {
	Name          string
	Lat           float64
	Lon           float64
	EstimatedPOIs int
}

var knownCities = []knownCity{
	{"Paris", 48.8566, 2.3522, 15000},
	{"Lyon", 45.7640, 4.8357, 4500},
	{"Marseille", 43.2965, 5.3698, 3800},
	{"Toulouse", 43.6047, 1.4442, 2500},
	{"Nice", 43.7102, 7.2620, 2200},
	{"Bordeaux", 44.8378, -0.5792, 2400},
	{"Nantes", 47.2184, -1.5536, 1800},
	{"Strasbourg", 48.5734, 7.7521, 2000},
	{"Lille", 50.6292, 3.0573, 1700},
	{"Montpellier", 43.6108, 3.8767, 1600},
}

// virtualClusters строит синтетический ответ для слишком больших радиусов,
// когда реальный запрос к OSM обошёлся бы слишком дорого. Известные города
// в радиусе отдаются как кластеры; если ни один не попал - генерируется
// сетка 3x3 безликих кластеров вокруг центра.
func virtualClusters(lat, lon, radiusKm float64) []domain.POI {
	var clusters []domain.POI

	for _, city := range knownCities {
		if utils.HaversineDistance(lat, lon, city.Lat, city.Lon) <= radiusKm {
			clusters = append(clusters, domain.POI{
				ID:   "cluster-" + strings.ToLower(city.Name),
				Name: city.Name,
				Type: domain.TypeAreaCluster,
				Lat:  city.Lat,
				Lon:  city.Lon,
				Tags: map[string]string{
					"estimated_points": strconv.Itoa(city.EstimatedPOIs),
				},
				Source: domain.SourceOverpass,
			})
		}
	}

	if len(clusters) > 0 {
		return clusters
	}

	return gridClusters(lat, lon, radiusKm)
}

// gridClusters - сетка 3x3 вокруг центра с шагом в треть радиуса
func gridClusters(lat, lon, radiusKm float64) []domain.POI {
	stepDeg := radiusKm / 3.0 / 111.0
	clusters := make([]domain.POI, 0, 9)

	n := 0
	for di := -1; di <= 1; di++ {
		for dj := -1; dj <= 1; dj++ {
			n++
			clusters = append(clusters, domain.POI{
				ID:   fmt.Sprintf("cluster-grid-%d", n),
				Name: fmt.Sprintf("Area %d", n),
				Type: domain.TypeAreaCluster,
				Lat:  lat + float64(di)*stepDeg,
				Lon:  lon + float64(dj)*stepDeg,
				Tags: map[string]string{
					"estimated_points": "0",
					"synthetic":        "grid",
				},
				Source: domain.SourceOverpass,
			})
		}
	}

	return clusters
}
