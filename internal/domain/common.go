package domain

// Point - координаты точки
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}
