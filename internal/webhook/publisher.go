package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/disaster_alert_system/internal/models"
)

const (
	webhookQueueKey = "webhook_events"
)

// ReportEvent - данные вебхука о срочном сообщении
type ReportEvent struct {
	Event        string                 `json:"event"`
	ReportID     uuid.UUID              `json:"report_id"`
	IncidentType models.IncidentType    `json:"incident_type"`
	Priority     models.Priority        `json:"priority"`
	Urgency      models.Urgency         `json:"urgency"`
	Verified     bool                   `json:"verified"`
	Location     *models.Location       `json:"location,omitempty"`
	Timestamp    time.Time              `json:"timestamp"`
	Report       *models.IncidentReport `json:"report"`
}

// NewReportEvent собирает событие вебхука из сообщения
func NewReportEvent(event string, report *models.IncidentReport, at time.Time) ReportEvent {
	return ReportEvent{
		Event:        event,
		ReportID:     report.ID,
		IncidentType: report.IncidentType,
		Priority:     report.Priority,
		Urgency:      report.Urgency,
		Verified:     report.Verified,
		Location:     report.Location,
		Timestamp:    at,
		Report:       report,
	}
}

// WebhookPublisher - интерфейс для публикации вебхуков
type WebhookPublisher interface {
	Publish(ctx context.Context, event ReportEvent) error
}

// RedisWebhookPublisher - реализация WebhookPublisher, использующая Redis
type RedisWebhookPublisher struct {
	redisClient *redis.Client
}

// NewRedisWebhookPublisher создает новый RedisWebhookPublisher
func NewRedisWebhookPublisher(client *redis.Client) *RedisWebhookPublisher {
	return &RedisWebhookPublisher{
		redisClient: client,
	}
}

// Publish кладет событие в очередь Redis; воркер забирает его с другого конца
func (p *RedisWebhookPublisher) Publish(ctx context.Context, event ReportEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook event: %w", err)
	}

	if err := p.redisClient.LPush(ctx, webhookQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish webhook event to Redis: %w", err)
	}
	return nil
}
