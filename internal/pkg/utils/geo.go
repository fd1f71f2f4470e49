package utils

import "math"

const (
	earthRadiusKm = 6371.0

	// kmPerDegree - километров в одном градусе широты
	kmPerDegree = 111.32

	// minCosLat - нижняя граница cos(lat), чтобы не делить на ноль у полюсов
	minCosLat = 0.01
)

// GeoPoint - точка в градусах WGS84
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// BBox - прямоугольная область вокруг точки
type BBox struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// Cluster - группа точек с центроидом
type Cluster struct {
	CenterLat float64    `json:"center_lat"`
	CenterLon float64    `json:"center_lon"`
	Points    []GeoPoint `json:"points"`
}

// HaversineDistance вычисляет расстояние между двумя точками в километрах
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180.0
	dLon := (lon2 - lon1) * math.Pi / 180.0

	lat1Rad := lat1 * math.Pi / 180.0
	lat2Rad := lat2 * math.Pi / 180.0

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// HaversineDistanceMeters - то же расстояние в метрах, без округления
func HaversineDistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	return HaversineDistance(lat1, lon1, lat2, lon2) * 1000.0
}

// RoundDistance округляет расстояние до 2 знаков после запятой
func RoundDistance(km float64) float64 {
	return math.Round(km*100) / 100
}

// ComputeBoundingBox строит область вокруг точки под заданный радиус.
// Долготная дельта растёт к полюсам; cos(lat) ограничен снизу.
func ComputeBoundingBox(lat, lon, radiusKm float64) BBox {
	latDelta := radiusKm / kmPerDegree

	cosLat := math.Cos(lat * math.Pi / 180.0)
	if math.Abs(cosLat) < minCosLat {
		cosLat = minCosLat
	}
	lonDelta := radiusKm / (kmPerDegree * math.Abs(cosLat))

	return BBox{
		North: lat + latDelta,
		South: lat - latDelta,
		East:  lon + lonDelta,
		West:  lon - lonDelta,
	}
}

// Bearing вычисляет азимут от первой точки ко второй в градусах [0, 360)
func Bearing(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180.0
	lat2Rad := lat2 * math.Pi / 180.0
	dLon := (lon2 - lon1) * math.Pi / 180.0

	y := math.Sin(dLon) * math.Cos(lat2Rad)
	x := math.Cos(lat1Rad)*math.Sin(lat2Rad) -
		math.Sin(lat1Rad)*math.Cos(lat2Rad)*math.Cos(dLon)

	deg := math.Atan2(y, x) * 180.0 / math.Pi
	return math.Mod(deg+360.0, 360.0)
}

// ClusterByDistance группирует точки жадным проходом: каждая непосещённая точка
// поглощает всех непосещённых соседей в пределах maxDistanceKm, центроид -
// среднее арифметическое координат. Не глобально оптимально, достаточно для
// прореживания точек на карте.
func ClusterByDistance(points []GeoPoint, maxDistanceKm float64) []Cluster {
	visited := make([]bool, len(points))
	clusters := make([]Cluster, 0)

	for i, p := range points {
		if visited[i] {
			continue
		}
		visited[i] = true

		members := []GeoPoint{p}
		for j := i + 1; j < len(points); j++ {
			if visited[j] {
				continue
			}
			if HaversineDistance(p.Lat, p.Lon, points[j].Lat, points[j].Lon) <= maxDistanceKm {
				visited[j] = true
				members = append(members, points[j])
			}
		}

		var sumLat, sumLon float64
		for _, m := range members {
			sumLat += m.Lat
			sumLon += m.Lon
		}

		clusters = append(clusters, Cluster{
			CenterLat: sumLat / float64(len(members)),
			CenterLon: sumLon / float64(len(members)),
			Points:    members,
		})
	}

	return clusters
}

// ValidateCoordinates проверяет валидность координат
func ValidateCoordinates(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// ValidateRadius проверяет валидность радиуса (0.1 - 100 км)
func ValidateRadius(radiusKm float64) bool {
	return radiusKm >= 0.1 && radiusKm <= 100
}
