package verification

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"strings"

	"github.com/shenikar/disaster_alert_system/internal/metrics"
	"github.com/shenikar/disaster_alert_system/internal/models"
	"github.com/shenikar/disaster_alert_system/internal/oracle"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	confidenceImageVerified = 0.9
	confidenceVerified      = 0.7
	confidenceUnverified    = 0.3
)

// Engine сводит ответы классификаторов и данные заявителя в вердикт
type Engine struct {
	text    oracle.TextClassifier
	image   oracle.ImageClassifier
	cfg     Config
	logger  *logrus.Logger
	metrics *metrics.Metrics
}

// NewEngine создает движок верификации
func NewEngine(text oracle.TextClassifier, image oracle.ImageClassifier, cfg Config, logger *logrus.Logger, m *metrics.Metrics) *Engine {
	return &Engine{
		text:    text,
		image:   image,
		cfg:     cfg,
		logger:  logger,
		metrics: m,
	}
}

// Verify возвращает вердикт для сообщения. Никогда не возвращает ошибку:
// при сбое классификаторов используется детерминированный fallback
func (e *Engine) Verify(ctx context.Context, report *models.IncidentReport) (verdict models.Verdict) {
	if report == nil {
		return models.Verdict{
			Category:   string(models.IncidentOther),
			Priority:   models.PriorityLow,
			Confidence: confidenceUnverified,
			Details:    models.VerdictDetails{Fallback: true},
		}
	}

	log := e.logger.WithFields(logrus.Fields{
		"service":       "verification",
		"method":        "Verify",
		"incident_type": report.IncidentType,
	})

	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("Verification panicked, using fallback verdict")
			verdict = e.decide(report, models.ClassificationVerdict{TextFailed: true})
		}
	}()

	cv := e.classify(ctx, report, log)
	verdict = e.decide(report, cv)

	e.metrics.ReportsVerified.WithLabelValues(strconv.FormatBool(verdict.Verified)).Inc()
	log.WithFields(logrus.Fields{
		"verified": verdict.Verified,
		"category": verdict.Category,
		"priority": verdict.Priority,
	}).Info("Report verified")
	return verdict
}

// classify параллельно вызывает текстовый и графический классификаторы с ограничением по времени
func (e *Engine) classify(ctx context.Context, report *models.IncidentReport, log *logrus.Entry) models.ClassificationVerdict {
	cv := models.ClassificationVerdict{TextFailed: true}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if e.text == nil {
			return nil
		}
		defer recoverOracle(log, "text")
		callCtx, cancel := e.withTimeout(gctx)
		defer cancel()

		res, err := e.text.ClassifyText(callCtx, report.Description)
		e.recordOracle("text", err)
		if err != nil {
			logOracleFailure(log.WithField("text_length", len(report.Description)), "text", err,
				"Text classifier failed, using incident type as category")
			return nil
		}
		cv.Text = res
		cv.TextFailed = false
		return nil
	})
	g.Go(func() error {
		if e.image == nil || report.MediaURL == "" {
			return nil
		}
		defer recoverOracle(log, "image")
		callCtx, cancel := e.withTimeout(gctx)
		defer cancel()

		res, err := e.image.ClassifyImage(callCtx, report.MediaURL)
		e.recordOracle("image", err)
		if err != nil {
			logOracleFailure(log.WithField("media_url", report.MediaURL), "image", err,
				"Image classifier failed, treating image as not relevant")
			return nil
		}
		cv.ImageRelevant = res.Relevant
		return nil
	})
	_ = g.Wait()

	return cv
}

// decide применяет правила к результатам классификации
func (e *Engine) decide(report *models.IncidentReport, cv models.ClassificationVerdict) models.Verdict {
	keywordMatch := e.matchesKeyword(report.Description)
	crowd := report.WitnessCount >= e.cfg.MinWitnesses || report.EstimatedAffected >= e.cfg.MinAffected
	missing := report.IncidentType == models.IncidentMissingPerson

	verified := cv.ImageRelevant || keywordMatch || missing || crowd

	priority := models.PriorityLow
	switch {
	case report.Urgency == models.UrgencyImmediate || slices.Contains(e.cfg.HighPriorityTypes, report.IncidentType):
		priority = models.PriorityHigh
	case report.Urgency == models.UrgencyUrgent || slices.Contains(e.cfg.MediumPriorityTypes, report.IncidentType):
		priority = models.PriorityMedium
	}
	// Эти правила только повышают приоритет
	if missing {
		priority = priority.Raise(models.PriorityHigh)
	}
	if crowd {
		priority = priority.Raise(models.PriorityMedium)
	}

	category := string(report.IncidentType)
	if !cv.TextFailed && cv.Text.Label != "" && cv.Text.Label != models.UnverifiedLabel {
		category = cv.Text.Label
	}

	confidence := confidenceUnverified
	if verified {
		confidence = confidenceVerified
		if cv.ImageRelevant {
			confidence = confidenceImageVerified
		}
	}

	textLabel := cv.Text.Label
	if cv.TextFailed {
		textLabel = models.UnverifiedLabel
	}

	return models.Verdict{
		Verified:   verified,
		Category:   category,
		Priority:   priority,
		Confidence: confidence,
		Details: models.VerdictDetails{
			TextLabel:         textLabel,
			TextConfidence:    cv.Text.Confidence,
			ImageVerified:     cv.ImageRelevant,
			KeywordMatch:      keywordMatch,
			CrowdCorroborated: crowd,
			Fallback:          cv.TextFailed,
			WitnessCount:      report.WitnessCount,
			EstimatedAffected: report.EstimatedAffected,
		},
	}
}

func (e *Engine) matchesKeyword(description string) bool {
	text := strings.ToLower(description)
	for _, kw := range e.cfg.Keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func (e *Engine) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.cfg.OracleTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.cfg.OracleTimeout)
}

func (e *Engine) recordOracle(provider string, err error) {
	outcome := "success"
	switch {
	case errors.Is(err, models.ErrProviderDisabled):
		outcome = "disabled"
	case err != nil:
		outcome = "error"
	}
	e.metrics.OracleRequests.WithLabelValues(provider, outcome).Inc()
}

func logOracleFailure(log *logrus.Entry, provider string, err error, msg string) {
	entry := log.WithError(err).WithField("provider", provider)
	if errors.Is(err, models.ErrProviderDisabled) {
		entry.Debug(msg)
		return
	}
	entry.Warn(msg)
}

// recoverOracle не дает панике адаптера выйти за пределы горутины
func recoverOracle(log *logrus.Entry, provider string) {
	if r := recover(); r != nil {
		log.WithFields(logrus.Fields{"provider": provider, "panic": r}).Error("Classifier panicked")
	}
}
