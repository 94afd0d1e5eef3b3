package risk

import (
	geojson "github.com/paulmach/go.geojson"
	"github.com/shenikar/disaster_alert_system/internal/models"
)

// GridToFeatureCollection представляет сетку риска как набор полигонов GeoJSON
func GridToFeatureCollection(cells []models.GridCell) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, c := range cells {
		b := c.Bounds
		// GeoJSON: [lng, lat], кольцо замкнуто
		ring := [][]float64{
			{b.MinLng, b.MinLat},
			{b.MaxLng, b.MinLat},
			{b.MaxLng, b.MaxLat},
			{b.MinLng, b.MaxLat},
			{b.MinLng, b.MinLat},
		}
		f := geojson.NewPolygonFeature([][][]float64{ring})
		f.SetProperty("row", c.Row)
		f.SetProperty("col", c.Col)
		f.SetProperty("aggregate_score", c.Assessment.AggregateScore)
		f.SetProperty("zone", string(c.Assessment.Zone))
		f.SetProperty("recommended_action", c.Assessment.RecommendedAction)
		f.SetProperty("historical_incident_count", c.Assessment.HistoricalIncidentCount)

		hazards := make(map[string]float64, len(c.Assessment.Hazards))
		for h, r := range c.Assessment.Hazards {
			hazards[string(h)] = r.Score
		}
		f.SetProperty("hazards", hazards)
		fc.AddFeature(f)
	}
	return fc
}
