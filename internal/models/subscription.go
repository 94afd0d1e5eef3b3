package models

// AreaSubscription - интерес соединения к событиям в радиусе от центра
type AreaSubscription struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
	RadiusKm  float64 `json:"radiusKm"`
}
