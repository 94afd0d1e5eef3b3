package risk

import (
	"math"
	"strings"

	"github.com/shenikar/disaster_alert_system/internal/models"
)

// factorInputs - всё, из чего вычисляются факторы для одной координаты
type factorInputs struct {
	weather models.Weather
	terrain models.Terrain
	// historical - число исторических сообщений, относящихся к опасности
	historical int
}

// computeFactor возвращает значение фактора в диапазоне [0, 100]
func (cfg Config) computeFactor(name string, in factorInputs) float64 {
	w, t := in.weather, in.terrain
	var v float64
	switch name {
	case FactorPrecipitation:
		v = w.Precipitation * 10
	case FactorWind:
		v = w.WindSpeed * 4
	case FactorHeat:
		v = (w.Temperature - 20) * 5
	case FactorDryness:
		v = 100 - w.Humidity
	case FactorLowPressure:
		v = (1013 - w.Pressure) * 2.5
	case FactorLowElevation:
		v = 100 - t.Elevation/5
	case FactorSlope:
		v = t.Slope * 3
	case FactorSoilFlood:
		v = soilRisk(cfg.SoilFloodRisk, t.SoilType, cfg.DefaultSoilRisk)
	case FactorSoilLandslide:
		v = soilRisk(cfg.SoilLandslideRisk, t.SoilType, cfg.DefaultSoilRisk)
	case FactorWaterProximity:
		v = 100 - t.WaterBodyDistanceKm*20
	case FactorVegetation:
		v = t.VegetationPct
	case FactorSparseVegetation:
		v = 100 - t.VegetationPct
	case FactorUrbanDensity:
		v = t.UrbanDensityPct
	case FactorNoPrecipitation:
		v = 100 - w.Precipitation*20
	case FactorHistorical:
		v = float64(in.historical) * cfg.HistoryPerIncident
	}
	return clampScore(v)
}

func soilRisk(table map[string]float64, soil string, fallback float64) float64 {
	if v, ok := table[strings.ToLower(soil)]; ok {
		return v
	}
	return fallback
}

// scoreHazard считает оценку одной опасности: сумма факторов, умноженная на вес
func (cfg Config) scoreHazard(spec HazardSpec, in factorInputs) models.HazardRisk {
	factors := make(map[string]float64, len(spec.Factors))
	var sum float64
	used := 0
	for _, name := range spec.Factors {
		v := cfg.computeFactor(name, in)
		factors[name] = round2(v)
		sum += v
		if v > 0 {
			used++
		}
	}

	score := round2(clampScore(sum * spec.Weight))
	return models.HazardRisk{
		Score:      score,
		Level:      cfg.Level(score),
		Factors:    factors,
		Confidence: math.Min(float64(used)*cfg.ConfidencePerFactor, 100),
	}
}

// Level переводит оценку в дискретный уровень
func (cfg Config) Level(score float64) models.RiskLevel {
	switch {
	case score > cfg.HighThreshold:
		return models.RiskHigh
	case score > cfg.MediumThreshold:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

// Aggregate взвешивает худшую опасность и среднее по всем опасностям
func (cfg Config) Aggregate(scores []float64) int {
	if len(scores) == 0 {
		return 0
	}
	maxScore, sum := scores[0], 0.0
	for _, s := range scores {
		sum += s
		if s > maxScore {
			maxScore = s
		}
	}
	mean := sum / float64(len(scores))
	return int(math.Round(cfg.AggregateMaxWeight*maxScore + (1-cfg.AggregateMaxWeight)*mean))
}

// Zone возвращает зону риска и рекомендацию для агрегированной оценки
func (cfg Config) Zone(aggregate int) (models.RiskZone, string) {
	for _, z := range cfg.Zones {
		if aggregate >= z.MinScore {
			return z.Zone, z.Action
		}
	}
	last := cfg.Zones[len(cfg.Zones)-1]
	return last.Zone, last.Action
}

func clampScore(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(100, math.Max(0, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
