package service

import (
	"context"

	"github.com/shenikar/disaster_alert_system/internal/models"
)

// RiskService - оценка риска для точки и для сетки; реализуется risk.Engine
type RiskService interface {
	Score(ctx context.Context, lat, lng float64) (*models.RiskAssessment, error)
	ScoreGrid(ctx context.Context, lat, lng, radiusKm float64, gridSize int) ([]models.GridCell, error)
}
