package risk

import (
	"context"
	"fmt"
	"math"

	"github.com/shenikar/disaster_alert_system/internal/models"
	"github.com/shenikar/disaster_alert_system/pkg/geo"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ScoreGrid делит квадрат со стороной 2*radiusKm на gridSize x gridSize ячеек и оценивает центр каждой.
// Ячейка, которую не удалось оценить, пропускается. Результат упорядочен по строкам с юга на север
func (e *Engine) ScoreGrid(ctx context.Context, centerLat, centerLng, radiusKm float64, gridSize int) ([]models.GridCell, error) {
	log := e.logger.WithFields(logrus.Fields{
		"service":   "risk",
		"method":    "ScoreGrid",
		"lat":       centerLat,
		"lng":       centerLng,
		"radius_km": radiusKm,
		"grid_size": gridSize,
	})

	if err := e.validateGrid(centerLat, centerLng, radiusKm, gridSize); err != nil {
		return nil, err
	}

	bounds := geo.BBoxAround(centerLat, centerLng, radiusKm)
	latStep := (bounds.MaxLat - bounds.MinLat) / float64(gridSize)
	lngStep := (bounds.MaxLng - bounds.MinLng) / float64(gridSize)

	cells := make([]*models.GridCell, gridSize*gridSize)
	errs := make([]error, gridSize*gridSize)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.GridConcurrency)
	for row := 0; row < gridSize; row++ {
		for col := 0; col < gridSize; col++ {
			idx := row*gridSize + col
			cellBounds := models.BBox{
				MinLat: bounds.MinLat + float64(row)*latStep,
				MinLng: bounds.MinLng + float64(col)*lngStep,
				MaxLat: bounds.MinLat + float64(row+1)*latStep,
				MaxLng: bounds.MinLng + float64(col+1)*lngStep,
			}
			g.Go(func() error {
				lat := (cellBounds.MinLat + cellBounds.MaxLat) / 2
				lng := (cellBounds.MinLng + cellBounds.MaxLng) / 2
				assessment, err := e.Score(gctx, lat, lng)
				if err != nil {
					errs[idx] = err
					return nil
				}
				cells[idx] = &models.GridCell{Row: row, Col: col, Bounds: cellBounds, Assessment: *assessment}
				return nil
			})
		}
	}
	_ = g.Wait()

	out := make([]models.GridCell, 0, len(cells))
	var firstErr error
	for i, c := range cells {
		if c != nil {
			out = append(out, *c)
			continue
		}
		e.metrics.RiskCellFailures.Inc()
		log.WithError(errs[i]).WithFields(logrus.Fields{"row": i / gridSize, "col": i % gridSize}).
			Warn("Grid cell scoring failed, omitting cell")
		if firstErr == nil {
			firstErr = errs[i]
		}
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("risk: all %d grid cells failed: %w", len(cells), firstErr)
	}

	e.metrics.RiskAssessments.WithLabelValues("grid").Inc()
	log.WithField("cells", len(out)).Info("Grid scored")
	return out, nil
}

func (e *Engine) validateGrid(lat, lng, radiusKm float64, gridSize int) error {
	if !geo.ValidCoordinate(lat, lng) {
		return fmt.Errorf("risk: %w: coordinate out of range", models.ErrInvalidGrid)
	}
	if gridSize < 1 || gridSize > e.cfg.MaxGridSize {
		return fmt.Errorf("risk: %w: grid size must be within [1, %d]", models.ErrInvalidGrid, e.cfg.MaxGridSize)
	}
	if radiusKm <= 0 || math.IsNaN(radiusKm) || (e.cfg.MaxGridRadiusKm > 0 && radiusKm > e.cfg.MaxGridRadiusKm) {
		return fmt.Errorf("risk: %w: radius must be within (0, %.0f] km", models.ErrInvalidGrid, e.cfg.MaxGridRadiusKm)
	}
	return nil
}
