package geo

import (
	"math"

	"github.com/golang/geo/s2"
	"github.com/shenikar/disaster_alert_system/internal/models"
)

// EarthRadiusKm - средний радиус Земли, используемый во всех расчётах расстояний
const EarthRadiusKm = 6371.0

// kmPerDegreeLat - длина одного градуса широты в километрах
const kmPerDegreeLat = math.Pi * EarthRadiusKm / 180

// DistanceKm возвращает расстояние по большому кругу между двумя точками
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	a := s2.LatLngFromDegrees(lat1, lng1)
	b := s2.LatLngFromDegrees(lat2, lng2)
	return a.Distance(b).Radians() * EarthRadiusKm
}

// WithinRadius проверяет, что точка находится не дальше radiusKm от центра
func WithinRadius(centerLat, centerLng, radiusKm, lat, lng float64) bool {
	return DistanceKm(centerLat, centerLng, lat, lng) <= radiusKm
}

// KmToLatDegrees переводит километры в градусы широты
func KmToLatDegrees(km float64) float64 {
	return km / kmPerDegreeLat
}

// KmToLngDegrees переводит километры в градусы долготы на заданной широте
func KmToLngDegrees(km, lat float64) float64 {
	cos := math.Cos(lat * math.Pi / 180)
	if cos < 1e-6 {
		cos = 1e-6
	}
	return km / (kmPerDegreeLat * cos)
}

// BBoxAround строит прямоугольник, описанный вокруг круга радиуса radiusKm
func BBoxAround(lat, lng, radiusKm float64) models.BBox {
	dLat := KmToLatDegrees(radiusKm)
	dLng := KmToLngDegrees(radiusKm, lat)
	return models.BBox{
		MinLat: math.Max(lat-dLat, -90),
		MinLng: lng - dLng,
		MaxLat: math.Min(lat+dLat, 90),
		MaxLng: lng + dLng,
	}
}

// SplitAntimeridian разбивает прямоугольник, выходящий за ±180 по долготе,
// на части внутри [-180, 180]. Прямоугольник шире 360 градусов становится полосой на всю долготу
func SplitAntimeridian(b models.BBox) []models.BBox {
	switch {
	case b.MaxLng-b.MinLng >= 360:
		return []models.BBox{{MinLat: b.MinLat, MinLng: -180, MaxLat: b.MaxLat, MaxLng: 180}}
	case b.MinLng < -180:
		return []models.BBox{
			{MinLat: b.MinLat, MinLng: b.MinLng + 360, MaxLat: b.MaxLat, MaxLng: 180},
			{MinLat: b.MinLat, MinLng: -180, MaxLat: b.MaxLat, MaxLng: b.MaxLng},
		}
	case b.MaxLng > 180:
		return []models.BBox{
			{MinLat: b.MinLat, MinLng: b.MinLng, MaxLat: b.MaxLat, MaxLng: 180},
			{MinLat: b.MinLat, MinLng: -180, MaxLat: b.MaxLat, MaxLng: b.MaxLng - 360},
		}
	default:
		return []models.BBox{b}
	}
}

// ValidCoordinate проверяет диапазоны широты и долготы
func ValidCoordinate(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
