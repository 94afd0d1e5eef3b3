package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/shenikar/disaster_alert_system/internal/hub"
	"github.com/shenikar/disaster_alert_system/internal/metrics"
	"github.com/shenikar/disaster_alert_system/internal/models"
	"github.com/shenikar/disaster_alert_system/internal/webhook"
	"github.com/sirupsen/logrus"
)

// ReportRepository определяет контракт для работы с бд сообщений
type ReportRepository interface {
	Save(ctx context.Context, report *models.IncidentReport) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.IncidentReport, error)
	List(ctx context.Context, page, pageSize int, verifiedOnly bool) ([]*models.IncidentReport, error)
	FindReportsNear(ctx context.Context, bbox models.BBox, since time.Time) ([]*models.IncidentReport, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.ReportStatus, override bool) error
	UpdateVerification(ctx context.Context, id uuid.UUID, verified bool, priority models.Priority) error
	AddNote(ctx context.Context, reportID uuid.UUID, note *models.ReportNote) error
	ListNotes(ctx context.Context, reportID uuid.UUID) ([]models.ReportNote, error)
	Stats(ctx context.Context, now time.Time) (*models.ReportStats, error)
}

// ReportCache - кеш отдельных сообщений
type ReportCache interface {
	GetReport(ctx context.Context, id uuid.UUID) (*models.IncidentReport, error)
	SetReport(ctx context.Context, report *models.IncidentReport) error
	InvalidateReport(ctx context.Context, id uuid.UUID) error
}

// Verifier выносит вердикт по сообщению и никогда не возвращает ошибку
type Verifier interface {
	Verify(ctx context.Context, report *models.IncidentReport) models.Verdict
}

// Broadcaster рассылает события живым подписчикам
type Broadcaster interface {
	Broadcast(event string, report *models.IncidentReport) int
}

// EventStream публикует события сообщений во внешний поток
type EventStream interface {
	PublishReport(ctx context.Context, event string, report *models.IncidentReport) error
}

// ReportService определяет контракт бизнес-логики жизненного цикла сообщений
type ReportService interface {
	CreateReport(ctx context.Context, report *models.IncidentReport) error
	GetReport(ctx context.Context, id uuid.UUID) (*models.IncidentReport, error)
	ListReports(ctx context.Context, page, pageSize int, verifiedOnly bool) ([]*models.IncidentReport, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.ReportStatus, override bool) (*models.IncidentReport, error)
	AddNote(ctx context.Context, id uuid.UUID, author, text string) (*models.IncidentReport, error)
	OverrideVerification(ctx context.Context, id uuid.UUID, verified bool, priority models.Priority) (*models.IncidentReport, error)
	GetStats(ctx context.Context) (*models.ReportStats, error)
}

type reportService struct {
	repo        ReportRepository
	cache       ReportCache
	verifier    Verifier
	broadcaster Broadcaster
	webhook     webhook.WebhookPublisher
	stream      EventStream
	clock       clockwork.Clock
	logger      *logrus.Logger
	metrics     *metrics.Metrics
}

// Deps - зависимости сервиса; Cache, Webhook и Stream необязательны
type Deps struct {
	Repo        ReportRepository
	Cache       ReportCache
	Verifier    Verifier
	Broadcaster Broadcaster
	Webhook     webhook.WebhookPublisher
	Stream      EventStream
	Clock       clockwork.Clock
	Logger      *logrus.Logger
	Metrics     *metrics.Metrics
}

func NewReportService(d Deps) ReportService {
	if d.Clock == nil {
		d.Clock = clockwork.NewRealClock()
	}
	return &reportService{
		repo:        d.Repo,
		cache:       d.Cache,
		verifier:    d.Verifier,
		broadcaster: d.Broadcaster,
		webhook:     d.Webhook,
		stream:      d.Stream,
		clock:       d.Clock,
		logger:      d.Logger,
		metrics:     d.Metrics,
	}
}

// CreateReport проверяет сообщение, сохраняет его и оповещает подписчиков
func (s *reportService) CreateReport(ctx context.Context, report *models.IncidentReport) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":       "report",
		"method":        "CreateReport",
		"incident_type": report.IncidentType,
	})
	log.Info("Attempting to create a new report")

	report.Status = models.StatusPending
	verdict := s.verifier.Verify(ctx, report)
	report.ApplyVerdict(verdict)

	if err := s.repo.Save(ctx, report); err != nil {
		log.WithError(err).Error("Failed to save report in repository")
		return fmt.Errorf("service: could not create report: %w", err)
	}

	log = log.WithFields(logrus.Fields{
		"report_id": report.ID,
		"priority":  report.Priority,
		"verified":  report.Verified,
	})
	s.metrics.ReportsCreated.WithLabelValues(string(report.Priority)).Inc()

	if s.cache != nil {
		if err := s.cache.SetReport(ctx, report); err != nil {
			log.WithError(err).Warn("Failed to cache created report")
		}
	}

	delivered := s.broadcaster.Broadcast(hub.EventNewReport, report)
	log.WithField("delivered", delivered).Info("Report created successfully")

	if report.Priority == models.PriorityHigh {
		s.publishWebhook(ctx, log, hub.EventNewReport, report)
	}
	s.publishStream(ctx, log, hub.EventNewReport, report)
	return nil
}

// GetReport получает сообщение по ID, сначала из кеша
func (s *reportService) GetReport(ctx context.Context, id uuid.UUID) (*models.IncidentReport, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":   "report",
		"method":    "GetReport",
		"report_id": id,
	})

	if s.cache != nil {
		cached, err := s.cache.GetReport(ctx, id)
		if err != nil {
			log.WithError(err).Warn("Failed to get report from cache")
		} else if cached != nil {
			log.Debug("Report served from cache")
			return cached, nil
		}
	}

	report, err := s.repo.FindByID(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Failed to get report in repository")
		return nil, fmt.Errorf("service: could not get report: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetReport(ctx, report); err != nil {
			log.WithError(err).Warn("Failed to cache report")
		}
	}
	return report, nil
}

// ListReports возвращает страницу сообщений
func (s *reportService) ListReports(ctx context.Context, page, pageSize int, verifiedOnly bool) ([]*models.IncidentReport, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	log := s.logger.WithFields(logrus.Fields{
		"service":       "report",
		"method":        "ListReports",
		"page":          page,
		"page_size":     pageSize,
		"verified_only": verifiedOnly,
	})

	reports, err := s.repo.List(ctx, page, pageSize, verifiedOnly)
	if err != nil {
		log.WithError(err).Error("Failed to list reports from repository")
		return nil, fmt.Errorf("service: could not list reports: %w", err)
	}

	log.WithField("count", len(reports)).Debug("Reports listed successfully")
	return reports, nil
}

// UpdateStatus двигает статус только вперед; override разрешает откат
func (s *reportService) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ReportStatus, override bool) (*models.IncidentReport, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":   "report",
		"method":    "UpdateStatus",
		"report_id": id,
		"status":    status,
		"override":  override,
	})

	report, err := s.repo.FindByID(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Attempted to update status of a missing report")
		return nil, fmt.Errorf("service: could not update status: %w", err)
	}

	if status.Rank() < 0 || (!override && status.Rank() < report.Status.Rank()) {
		log.WithField("current_status", report.Status).Warn("Rejected status transition")
		return nil, fmt.Errorf("service: %s -> %s: %w", report.Status, status, models.ErrInvalidStatusTransition)
	}

	// Репозиторий повторяет проверку порядка атомарно на случай параллельных запросов
	if err := s.repo.UpdateStatus(ctx, id, status, override); err != nil {
		if errors.Is(err, models.ErrInvalidStatusTransition) {
			log.WithError(err).Warn("Status changed concurrently, transition rejected")
			return nil, fmt.Errorf("service: could not update status: %w", err)
		}
		log.WithError(err).Error("Failed to update status in repository")
		return nil, fmt.Errorf("service: could not update status: %w", err)
	}
	report.Status = status
	report.UpdatedAt = s.clock.Now()

	s.afterUpdate(ctx, log, report)
	log.Info("Report status updated")
	return report, nil
}

// AddNote добавляет заметку оператора и возвращает сообщение со всеми заметками
func (s *reportService) AddNote(ctx context.Context, id uuid.UUID, author, text string) (*models.IncidentReport, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":   "report",
		"method":    "AddNote",
		"report_id": id,
		"author":    author,
	})

	note := &models.ReportNote{Author: author, Text: text}
	if err := s.repo.AddNote(ctx, id, note); err != nil {
		log.WithError(err).Warn("Failed to add note in repository")
		return nil, fmt.Errorf("service: could not add note: %w", err)
	}

	report, err := s.repo.FindByID(ctx, id)
	if err != nil {
		log.WithError(err).Error("Failed to reload report after note")
		return nil, fmt.Errorf("service: could not reload report: %w", err)
	}

	s.afterUpdate(ctx, log, report)
	log.WithField("note_id", note.ID).Info("Note added")
	return report, nil
}

// OverrideVerification записывает решение оператора поверх вердикта движка
func (s *reportService) OverrideVerification(ctx context.Context, id uuid.UUID, verified bool, priority models.Priority) (*models.IncidentReport, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":   "report",
		"method":    "OverrideVerification",
		"report_id": id,
		"verified":  verified,
		"priority":  priority,
	})

	report, err := s.repo.FindByID(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Attempted to override verification of a missing report")
		return nil, fmt.Errorf("service: could not override verification: %w", err)
	}

	if err := s.repo.UpdateVerification(ctx, id, verified, priority); err != nil {
		log.WithError(err).Error("Failed to update verification in repository")
		return nil, fmt.Errorf("service: could not override verification: %w", err)
	}

	escalated := priority == models.PriorityHigh && report.Priority != models.PriorityHigh
	report.Verified = verified
	report.Priority = priority
	report.UpdatedAt = s.clock.Now()

	s.afterUpdate(ctx, log, report)
	if escalated {
		s.publishWebhook(ctx, log, hub.EventReportUpdated, report)
	}
	log.Info("Verification overridden")
	return report, nil
}

// GetStats возвращает статистику для панели оператора
func (s *reportService) GetStats(ctx context.Context) (*models.ReportStats, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "report",
		"method":  "GetStats",
	})

	stats, err := s.repo.Stats(ctx, s.clock.Now())
	if err != nil {
		log.WithError(err).Error("Failed to get stats from repository")
		return nil, fmt.Errorf("service: could not get stats: %w", err)
	}
	stats.WeeklyTrendPct = weeklyTrend(stats.RecentWeek, stats.PreviousWeek)
	return stats, nil
}

// weeklyTrend - изменение за последние 7 дней относительно предыдущих 7, в процентах
func weeklyTrend(recent, previous int) float64 {
	if previous == 0 {
		if recent == 0 {
			return 0
		}
		return 100
	}
	pct := float64(recent-previous) / float64(previous) * 100
	return math.Round(pct*10) / 10
}

// afterUpdate сбрасывает кеш и рассылает reportUpdated
func (s *reportService) afterUpdate(ctx context.Context, log *logrus.Entry, report *models.IncidentReport) {
	if s.cache != nil {
		if err := s.cache.InvalidateReport(ctx, report.ID); err != nil {
			log.WithError(err).Warn("Failed to invalidate report cache")
		}
	}
	delivered := s.broadcaster.Broadcast(hub.EventReportUpdated, report)
	log.WithField("delivered", delivered).Debug("Report update broadcast")
	s.publishStream(ctx, log, hub.EventReportUpdated, report)
}

func (s *reportService) publishWebhook(ctx context.Context, log *logrus.Entry, event string, report *models.IncidentReport) {
	if s.webhook == nil {
		return
	}
	if err := s.webhook.Publish(ctx, webhook.NewReportEvent(event, report, s.clock.Now())); err != nil {
		log.WithError(err).Warn("Failed to enqueue webhook event")
	}
}

func (s *reportService) publishStream(ctx context.Context, log *logrus.Entry, event string, report *models.IncidentReport) {
	if s.stream == nil {
		return
	}
	if err := s.stream.PublishReport(ctx, event, report); err != nil {
		log.WithError(err).Warn("Failed to publish report event to stream")
	}
}
