package risk

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/shenikar/disaster_alert_system/internal/environment"
	"github.com/shenikar/disaster_alert_system/internal/metrics"
	"github.com/shenikar/disaster_alert_system/internal/models"
	"github.com/shenikar/disaster_alert_system/pkg/geo"
	"github.com/sirupsen/logrus"
)

// HistorySource определяет контракт чтения исторических сообщений
type HistorySource interface {
	FindReportsNear(ctx context.Context, bbox models.BBox, since time.Time) ([]*models.IncidentReport, error)
}

// ConditionsSource возвращает погоду и рельеф; реализация никогда не падает
type ConditionsSource interface {
	Conditions(ctx context.Context, lat, lng float64) models.Conditions
}

// AssessmentCache - необязательный кеш готовых оценок
type AssessmentCache interface {
	GetRiskAssessment(ctx context.Context, key string) (*models.RiskAssessment, error)
	SetRiskAssessment(ctx context.Context, key string, assessment *models.RiskAssessment, ttl time.Duration) error
}

// hazardOrder фиксирует порядок обхода опасностей, чтобы результат был детерминирован
var hazardOrder = []models.HazardType{
	models.HazardFlood,
	models.HazardLandslide,
	models.HazardWildfire,
	models.HazardEarthquake,
	models.HazardStorm,
	models.HazardDrought,
}

// Engine - движок оценки риска
type Engine struct {
	history  HistorySource
	env      ConditionsSource
	cache    AssessmentCache
	cacheTTL time.Duration
	cfg      Config
	clock    clockwork.Clock
	logger   *logrus.Logger
	metrics  *metrics.Metrics
}

// NewEngine создает движок оценки риска
func NewEngine(history HistorySource, env ConditionsSource, cfg Config, clock clockwork.Clock, logger *logrus.Logger, m *metrics.Metrics) (*Engine, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("risk: invalid config: %w", err)
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Engine{
		history: history,
		env:     env,
		cfg:     cfg,
		clock:   clock,
		logger:  logger,
		metrics: m,
	}, nil
}

// WithCache включает кеш оценок. ttl <= 0 отключает кеш
func (e *Engine) WithCache(cache AssessmentCache, ttl time.Duration) *Engine {
	if ttl > 0 {
		e.cache = cache
		e.cacheTTL = ttl
	}
	return e
}

// Score оценивает риск в точке. Единственная причина ошибки - недоступность исторических данных
func (e *Engine) Score(ctx context.Context, lat, lng float64) (*models.RiskAssessment, error) {
	log := e.logger.WithFields(logrus.Fields{
		"service": "risk",
		"method":  "Score",
		"lat":     lat,
		"lng":     lng,
	})

	key := environment.CoordKey(lat, lng)
	if cached := e.fromCache(ctx, key, log); cached != nil {
		cached.Latitude, cached.Longitude = lat, lng
		return cached, nil
	}

	start := time.Now()
	assessment, err := e.score(ctx, lat, lng)
	if err != nil {
		log.WithError(err).Error("Failed to score location")
		return nil, err
	}
	e.metrics.RiskAssessments.WithLabelValues("point").Inc()
	e.metrics.RiskDuration.Observe(time.Since(start).Seconds())

	if e.cache != nil {
		if err := e.cache.SetRiskAssessment(ctx, key, assessment, e.cacheTTL); err != nil {
			log.WithError(err).Warn("Failed to cache risk assessment")
		}
	}

	log.WithFields(logrus.Fields{
		"aggregate": assessment.AggregateScore,
		"zone":      assessment.Zone,
	}).Debug("Location scored")
	return assessment, nil
}

func (e *Engine) score(ctx context.Context, lat, lng float64) (*models.RiskAssessment, error) {
	reports, err := e.nearbyHistory(ctx, lat, lng)
	if err != nil {
		return nil, err
	}

	conditions := e.env.Conditions(ctx, lat, lng)

	hazards := make(map[models.HazardType]models.HazardRisk, len(e.cfg.Hazards))
	scores := make([]float64, 0, len(e.cfg.Hazards))
	for _, hazard := range e.hazardTypes() {
		spec := e.cfg.Hazards[hazard]
		in := factorInputs{
			weather:    conditions.Weather,
			terrain:    conditions.Terrain,
			historical: countOfTypes(reports, spec.IncidentTypes),
		}
		risk := e.cfg.scoreHazard(spec, in)
		hazards[hazard] = risk
		scores = append(scores, risk.Score)
	}

	aggregate := e.cfg.Aggregate(scores)
	zone, action := e.cfg.Zone(aggregate)

	return &models.RiskAssessment{
		Latitude:                lat,
		Longitude:               lng,
		Hazards:                 hazards,
		AggregateScore:          aggregate,
		Zone:                    zone,
		RecommendedAction:       action,
		HistoricalIncidentCount: len(reports),
		Conditions:              conditions,
	}, nil
}

// nearbyHistory возвращает сообщения за окно истории не дальше HistoryRadiusKm от точки
func (e *Engine) nearbyHistory(ctx context.Context, lat, lng float64) ([]*models.IncidentReport, error) {
	bbox := geo.BBoxAround(lat, lng, e.cfg.HistoryRadiusKm)
	since := e.clock.Now().Add(-e.cfg.HistoryWindow)

	candidates, err := e.history.FindReportsNear(ctx, bbox, since)
	if err != nil {
		return nil, fmt.Errorf("risk: %w: %w", models.ErrHistoryUnavailable, err)
	}

	// прямоугольник шире круга, отсекаем углы
	nearby := make([]*models.IncidentReport, 0, len(candidates))
	for _, r := range candidates {
		if r == nil || r.Location == nil {
			continue
		}
		if geo.WithinRadius(lat, lng, e.cfg.HistoryRadiusKm, r.Location.Latitude, r.Location.Longitude) {
			nearby = append(nearby, r)
		}
	}
	return nearby, nil
}

// hazardTypes возвращает сконфигурированные опасности в стабильном порядке
func (e *Engine) hazardTypes() []models.HazardType {
	out := make([]models.HazardType, 0, len(e.cfg.Hazards))
	for _, h := range hazardOrder {
		if _, ok := e.cfg.Hazards[h]; ok {
			out = append(out, h)
		}
	}
	extra := make([]models.HazardType, 0)
	for h := range e.cfg.Hazards {
		if !slices.Contains(hazardOrder, h) {
			extra = append(extra, h)
		}
	}
	slices.Sort(extra)
	return append(out, extra...)
}

func (e *Engine) fromCache(ctx context.Context, key string, log *logrus.Entry) *models.RiskAssessment {
	if e.cache == nil {
		return nil
	}
	cached, err := e.cache.GetRiskAssessment(ctx, key)
	if err != nil {
		log.WithError(err).Warn("Failed to read risk assessment from cache")
		return nil
	}
	return cached
}

func countOfTypes(reports []*models.IncidentReport, types []models.IncidentType) int {
	if len(types) == 0 {
		return 0
	}
	n := 0
	for _, r := range reports {
		if slices.Contains(types, r.IncidentType) {
			n++
		}
	}
	return n
}
