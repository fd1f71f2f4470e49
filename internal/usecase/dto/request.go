package dto

// SearchPOIRequest - запрос на поиск фотогеничных POI в радиусе
type SearchPOIRequest struct {
	Lat        float64  `json:"lat" validate:"required,min=-90,max=90"`
	Lon        float64  `json:"lon" validate:"required,min=-180,max=180"`
	RadiusKm   float64  `json:"radius_km" validate:"required,min=0.1,max=100"`
	Categories []string `json:"categories,omitempty" validate:"omitempty,max=20"`
}

// CountPOIRequest - запрос количества POI в радиусе без самих объектов
type CountPOIRequest struct {
	Lat      float64 `json:"lat" validate:"required,min=-90,max=90"`
	Lon      float64 `json:"lon" validate:"required,min=-180,max=180"`
	RadiusKm float64 `json:"radius_km" validate:"required,min=0.1,max=100"`
}
