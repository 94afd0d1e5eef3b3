package models

import "time"

// DataSource - откуда получены данные окружения
type DataSource string

const (
	SourceLive      DataSource = "live"
	SourceSynthetic DataSource = "synthetic"
)

// Weather - текущие погодные условия в точке
type Weather struct {
	Temperature   float64    `json:"temperature"`
	Humidity      float64    `json:"humidity"`
	Pressure      float64    `json:"pressure"`
	WindSpeed     float64    `json:"wind_speed"`
	Precipitation float64    `json:"precipitation"`
	Condition     string     `json:"condition"`
	Source        DataSource `json:"source"`
	ObservedAt    time.Time  `json:"observed_at"`
}

// Terrain - рельеф и покрытие местности в точке
type Terrain struct {
	Elevation           float64    `json:"elevation"`
	Slope               float64    `json:"slope"`
	SoilType            string     `json:"soil_type"`
	WaterBodyDistanceKm float64    `json:"water_body_distance_km"`
	VegetationPct       float64    `json:"vegetation_pct"`
	UrbanDensityPct     float64    `json:"urban_density_pct"`
	Source              DataSource `json:"source"`
	ObservedAt          time.Time  `json:"observed_at"`
}

// Conditions объединяет погоду и рельеф для одной координаты
type Conditions struct {
	Weather Weather `json:"weather"`
	Terrain Terrain `json:"terrain"`
}
