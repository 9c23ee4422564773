package domain

// Spot es un punto turístico normalizado a partir de un elemento de OpenStreetMap.
type Spot struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Lat          float64 `json:"lat"`
	Lon          float64 `json:"lon"`
	Type         string  `json:"type"`
	Address      string  `json:"address"`
	Description  string  `json:"description"`
	Website      string  `json:"website"`
	OpeningHours string  `json:"opening_hours"`
	Phone        string  `json:"phone"`
	Email        string  `json:"email"`
	Facebook     string  `json:"facebook"`
	Instagram    string  `json:"instagram"`
}

// SpotCategory es una categoría de búsqueda expuesta por la API.
type SpotCategory struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}
