package environment

import (
	"hash/fnv"
	"math"
	"time"

	"github.com/shenikar/disaster_alert_system/internal/models"
)

// terrainProfile - типовой профиль местности для синтетических данных
type terrainProfile struct {
	Name                string
	Elevation           float64
	Slope               float64
	SoilType            string
	WaterBodyDistanceKm float64
	VegetationPct       float64
	UrbanDensityPct     float64
}

var terrainProfiles = []terrainProfile{
	{Name: "urban", Elevation: 235, Slope: 8.5, SoilType: "loam", WaterBodyDistanceKm: 2.3, VegetationPct: 45, UrbanDensityPct: 75},
	{Name: "hill", Elevation: 450, Slope: 25, SoilType: "rocky", WaterBodyDistanceKm: 5.2, VegetationPct: 80, UrbanDensityPct: 20},
	{Name: "riverland", Elevation: 180, Slope: 2, SoilType: "clay", WaterBodyDistanceKm: 0.5, VegetationPct: 30, UrbanDensityPct: 60},
}

var syntheticConditions = []string{"Clear", "Partly Cloudy", "Cloudy", "Light Rain", "Windy"}

// SyntheticWeather возвращает правдоподобную погоду, детерминированную округлённой координатой
func SyntheticWeather(lat, lng float64, observedAt time.Time) models.Weather {
	seed := coordSeed(lat, lng)
	return models.Weather{
		Temperature:   round1(22.5 + 5*jitter(seed, 1)),
		Humidity:      round1(clamp(65+15*jitter(seed, 2), 5, 100)),
		Pressure:      round1(1013.2 + 8*jitter(seed, 3)),
		WindSpeed:     round1(math.Max(0, 8.5+4*jitter(seed, 4))),
		Precipitation: round1(math.Max(0, 0.2+0.2*jitter(seed, 5))),
		Condition:     syntheticConditions[int(seed%uint64(len(syntheticConditions)))],
		Source:        models.SourceSynthetic,
		ObservedAt:    observedAt,
	}
}

// SyntheticTerrain выбирает профиль местности по координате и слегка варьирует его
func SyntheticTerrain(lat, lng float64, observedAt time.Time) models.Terrain {
	seed := coordSeed(lat, lng)
	p := profileFor(seed)
	return models.Terrain{
		Elevation:           round1(math.Max(0, p.Elevation*(1+0.1*jitter(seed, 6)))),
		Slope:               round1(math.Max(0, p.Slope*(1+0.2*jitter(seed, 7)))),
		SoilType:            p.SoilType,
		WaterBodyDistanceKm: round1(math.Max(0.1, p.WaterBodyDistanceKm*(1+0.2*jitter(seed, 8)))),
		VegetationPct:       round1(clamp(p.VegetationPct+5*jitter(seed, 9), 0, 100)),
		UrbanDensityPct:     round1(clamp(p.UrbanDensityPct+5*jitter(seed, 10), 0, 100)),
		Source:              models.SourceSynthetic,
		ObservedAt:          observedAt,
	}
}

func profileFor(seed uint64) terrainProfile {
	return terrainProfiles[int((seed>>8)%uint64(len(terrainProfiles)))]
}

func coordSeed(lat, lng float64) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(CoordKey(lat, lng)))
	return h.Sum64()
}

// jitter возвращает псевдослучайное число в [-1, 1], зависящее только от seed и salt
func jitter(seed uint64, salt uint64) float64 {
	x := seed + salt*0x9E3779B97F4A7C15
	x ^= x >> 30
	x *= 0xBF58476D1CE4E5B9
	x ^= x >> 27
	x *= 0x94D049BB133111EB
	x ^= x >> 31
	return float64(x%20001)/10000 - 1
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
