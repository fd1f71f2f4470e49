package domain

// OverpassResponse - ответ Overpass API
type OverpassResponse struct {
	Elements []OverpassElement `json:"elements"`
}

// OverpassElement представляет элемент OSM (node, way или relation)
type OverpassElement struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    float64           `json:"lat,omitempty"`
	Lon    float64           `json:"lon,omitempty"`
	Center *Point            `json:"center,omitempty"`
	Tags   map[string]string `json:"tags,omitempty"`

	// Count заполняется только для запросов out count
	Count *OverpassCount `json:"count,omitempty"`
}

// OverpassCount - счётчики из out count
type OverpassCount struct {
	Total string `json:"total"`
	Nodes string `json:"nodes"`
	Ways  string `json:"ways"`
}

// Position возвращает координаты элемента: узлы несут их напрямую,
// ways и relations - через вычисленный центр
func (e *OverpassElement) Position() (lat, lon float64, ok bool) {
	if e.Lat != 0 || e.Lon != 0 {
		return e.Lat, e.Lon, true
	}
	if e.Center != nil {
		return e.Center.Lat, e.Center.Lon, true
	}
	return 0, 0, false
}

// NominatimPlace - результат поиска Nominatim (формат jsonv2)
type NominatimPlace struct {
	PlaceID     int64             `json:"place_id"`
	OSMType     string            `json:"osm_type"`
	OSMID       int64             `json:"osm_id"`
	Lat         string            `json:"lat"`
	Lon         string            `json:"lon"`
	Category    string            `json:"category"`
	Type        string            `json:"type"`
	Name        string            `json:"name"`
	DisplayName string            `json:"display_name"`
	Importance  float64           `json:"importance"`
	ExtraTags   map[string]string `json:"extratags,omitempty"`
}
