package risk

import (
	"errors"
	"fmt"
	"time"

	"github.com/shenikar/disaster_alert_system/internal/models"
)

// HazardSpec описывает, как считается один тип опасности
type HazardSpec struct {
	Weight  float64
	Factors []string
	// IncidentTypes - типы сообщений, учитываемые как исторические свидетельства
	IncidentTypes []models.IncidentType
}

// ZoneRule - ступень лестницы зон риска
type ZoneRule struct {
	MinScore int
	Zone     models.RiskZone
	Action   string
}

// Config - весовые таблицы и пороги движка оценки риска.
// Значения подобраны вручную и не откалиброваны по реальным данным
type Config struct {
	Hazards           map[models.HazardType]HazardSpec
	SoilFloodRisk     map[string]float64
	SoilLandslideRisk map[string]float64
	// DefaultSoilRisk используется для неизвестного типа почвы
	DefaultSoilRisk float64

	// Уровень HIGH при score > HighThreshold, MEDIUM при score > MediumThreshold
	HighThreshold   float64
	MediumThreshold float64

	// Zones упорядочены по убыванию MinScore
	Zones []ZoneRule

	// AggregateMaxWeight - вес худшей опасности в агрегированной оценке, остальное приходится на среднее
	AggregateMaxWeight  float64
	ConfidencePerFactor float64

	HistoryRadiusKm    float64
	HistoryWindow      time.Duration
	HistoryPerIncident float64
	MaxGridSize        int
	MaxGridRadiusKm    float64
	GridConcurrency    int
}

// Имена факторов
const (
	FactorPrecipitation    = "precipitation"
	FactorWind             = "wind"
	FactorHeat             = "heat"
	FactorDryness          = "dryness"
	FactorLowPressure      = "low_pressure"
	FactorLowElevation     = "low_elevation"
	FactorSlope            = "slope"
	FactorSoilFlood        = "soil_flood"
	FactorSoilLandslide    = "soil_landslide"
	FactorWaterProximity   = "water_proximity"
	FactorVegetation       = "vegetation"
	FactorSparseVegetation = "sparse_vegetation"
	FactorUrbanDensity     = "urban_density"
	FactorNoPrecipitation  = "no_precipitation"
	FactorHistorical       = "historical"
)

// DefaultConfig возвращает стандартные таблицы
func DefaultConfig() Config {
	return Config{
		Hazards: map[models.HazardType]HazardSpec{
			models.HazardFlood: {
				Weight:        0.25,
				Factors:       []string{FactorPrecipitation, FactorLowElevation, FactorWaterProximity, FactorSoilFlood, FactorUrbanDensity, FactorHistorical},
				IncidentTypes: []models.IncidentType{models.IncidentFlood},
			},
			models.HazardLandslide: {
				Weight:        0.3,
				Factors:       []string{FactorSlope, FactorPrecipitation, FactorSoilLandslide, FactorSparseVegetation, FactorHistorical},
				IncidentTypes: []models.IncidentType{models.IncidentBlockedRoad},
			},
			models.HazardWildfire: {
				Weight:        0.3,
				Factors:       []string{FactorHeat, FactorDryness, FactorWind, FactorVegetation, FactorHistorical},
				IncidentTypes: []models.IncidentType{models.IncidentFireEmergency},
			},
			models.HazardEarthquake: {
				Weight:        0.4,
				Factors:       []string{FactorHistorical, FactorSlope, FactorUrbanDensity},
				IncidentTypes: []models.IncidentType{models.IncidentEarthquake, models.IncidentInfrastructureDamage},
			},
			models.HazardStorm: {
				Weight:        0.35,
				Factors:       []string{FactorWind, FactorLowPressure, FactorPrecipitation, FactorHistorical},
				IncidentTypes: []models.IncidentType{models.IncidentSevereWeather},
			},
			models.HazardDrought: {
				Weight:  0.3,
				Factors: []string{FactorHeat, FactorDryness, FactorNoPrecipitation, FactorHistorical},
			},
		},
		SoilFloodRisk: map[string]float64{
			"clay":  80,
			"silt":  70,
			"loam":  50,
			"sand":  20,
			"rocky": 10,
		},
		SoilLandslideRisk: map[string]float64{
			"clay":  70,
			"silt":  60,
			"loam":  50,
			"sand":  40,
			"rocky": 30,
		},
		DefaultSoilRisk: 50,
		HighThreshold:   70,
		MediumThreshold: 40,
		Zones: []ZoneRule{
			{MinScore: 80, Zone: models.ZoneCritical, Action: "Evacuate the area and follow instructions from emergency services"},
			{MinScore: 60, Zone: models.ZoneHigh, Action: "Prepare for evacuation and avoid non-essential travel"},
			{MinScore: 40, Zone: models.ZoneModerate, Action: "Stay alert and review your emergency plan"},
			{MinScore: 20, Zone: models.ZoneLow, Action: "Monitor local news and weather updates"},
			{MinScore: 0, Zone: models.ZoneMinimal, Action: "No special precautions required"},
		},
		AggregateMaxWeight:  0.6,
		ConfidencePerFactor: 15,
		HistoryRadiusKm:     5,
		HistoryWindow:       365 * 24 * time.Hour,
		HistoryPerIncident:  20,
		MaxGridSize:         20,
		MaxGridRadiusKm:     200,
		GridConcurrency:     4,
	}
}

var knownFactors = map[string]bool{
	FactorPrecipitation: true, FactorWind: true, FactorHeat: true, FactorDryness: true,
	FactorLowPressure: true, FactorLowElevation: true, FactorSlope: true, FactorSoilFlood: true,
	FactorSoilLandslide: true, FactorWaterProximity: true, FactorVegetation: true,
	FactorSparseVegetation: true, FactorUrbanDensity: true, FactorNoPrecipitation: true, FactorHistorical: true,
}

// ValidateConfig проверяет согласованность таблиц
func ValidateConfig(cfg Config) error {
	var errs []error

	if len(cfg.Hazards) == 0 {
		errs = append(errs, errors.New("no hazards configured"))
	}
	for hazard, spec := range cfg.Hazards {
		if spec.Weight <= 0 {
			errs = append(errs, fmt.Errorf("hazard %s: weight must be positive", hazard))
		}
		if len(spec.Factors) == 0 {
			errs = append(errs, fmt.Errorf("hazard %s: no factors", hazard))
		}
		for _, f := range spec.Factors {
			if !knownFactors[f] {
				errs = append(errs, fmt.Errorf("hazard %s: unknown factor %q", hazard, f))
			}
		}
	}
	if cfg.MediumThreshold >= cfg.HighThreshold {
		errs = append(errs, fmt.Errorf("medium threshold %.0f must be below high threshold %.0f", cfg.MediumThreshold, cfg.HighThreshold))
	}
	if len(cfg.Zones) == 0 {
		errs = append(errs, errors.New("no risk zones configured"))
	} else {
		for i := 1; i < len(cfg.Zones); i++ {
			if cfg.Zones[i].MinScore >= cfg.Zones[i-1].MinScore {
				errs = append(errs, fmt.Errorf("risk zones must be ordered by descending score at %s", cfg.Zones[i].Zone))
			}
		}
		if last := cfg.Zones[len(cfg.Zones)-1]; last.MinScore > 0 {
			errs = append(errs, fmt.Errorf("lowest risk zone %s must start at 0", last.Zone))
		}
	}
	if cfg.AggregateMaxWeight < 0 || cfg.AggregateMaxWeight > 1 {
		errs = append(errs, errors.New("aggregate max weight must be within [0, 1]"))
	}
	if cfg.HistoryRadiusKm <= 0 || cfg.HistoryWindow <= 0 {
		errs = append(errs, errors.New("history radius and window must be positive"))
	}
	if cfg.MaxGridSize < 1 || cfg.GridConcurrency < 1 {
		errs = append(errs, errors.New("grid size and concurrency must be at least 1"))
	}

	return errors.Join(errs...)
}
