package models

// HazardType - тип опасности, оцениваемый независимо
type HazardType string

const (
	HazardFlood      HazardType = "FLOOD"
	HazardLandslide  HazardType = "LANDSLIDE"
	HazardWildfire   HazardType = "WILDFIRE"
	HazardEarthquake HazardType = "EARTHQUAKE"
	HazardStorm      HazardType = "STORM"
	HazardDrought    HazardType = "DROUGHT"
)

// RiskLevel - дискретный уровень опасности
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// RiskZone - зона риска по агрегированной оценке
type RiskZone string

const (
	ZoneMinimal  RiskZone = "MINIMAL"
	ZoneLow      RiskZone = "LOW"
	ZoneModerate RiskZone = "MODERATE"
	ZoneHigh     RiskZone = "HIGH"
	ZoneCritical RiskZone = "CRITICAL"
)

// HazardRisk - оценка одного типа опасности
type HazardRisk struct {
	Score      float64            `json:"score"`
	Level      RiskLevel          `json:"level"`
	Factors    map[string]float64 `json:"factors"`
	Confidence float64            `json:"confidence"`
}

// RiskAssessment - оценка риска для координаты, не сохраняется
type RiskAssessment struct {
	Latitude                float64                   `json:"lat"`
	Longitude               float64                   `json:"lng"`
	Hazards                 map[HazardType]HazardRisk `json:"hazards"`
	AggregateScore          int                       `json:"aggregate_score"`
	Zone                    RiskZone                  `json:"zone"`
	RecommendedAction       string                    `json:"recommended_action"`
	HistoricalIncidentCount int                       `json:"historical_incident_count"`
	Conditions              Conditions                `json:"conditions"`
}

// BBox - ограничивающий прямоугольник в градусах
type BBox struct {
	MinLat float64 `json:"min_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLat float64 `json:"max_lat"`
	MaxLng float64 `json:"max_lng"`
}

// Contains проверяет попадание точки в прямоугольник
func (b BBox) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

// GridCell - ячейка сетки риска с её границами
type GridCell struct {
	Row        int            `json:"row"`
	Col        int            `json:"col"`
	Bounds     BBox           `json:"bounds"`
	Assessment RiskAssessment `json:"assessment"`
}
