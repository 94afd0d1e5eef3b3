package v1

import (
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/disaster_alert_system/internal/hub"
)

// CreateReportRequest DTO для подачи сообщения о происшествии
// @Description DTO для подачи сообщения о происшествии
type CreateReportRequest struct {
	ReporterName      string   `json:"reporter_name" validate:"required,min=2,max=255"`
	ReporterContact   string   `json:"reporter_contact,omitempty" validate:"max=255"`
	Description       string   `json:"description" validate:"required,min=3,max=5000"`
	IncidentType      string   `json:"incident_type" validate:"required,oneof=fire-emergency medical-emergency blocked-road missing-person infrastructure-damage flood earthquake severe-weather other"`
	Urgency           string   `json:"urgency" validate:"required,oneof=immediate urgent moderate low"`
	Latitude          *float64 `json:"latitude" validate:"required,latitude"`
	Longitude         *float64 `json:"longitude" validate:"required,longitude"`
	Address           string   `json:"address,omitempty" validate:"max=500"`
	MediaURL          string   `json:"media_url,omitempty" validate:"omitempty,url"`
	WitnessCount      int      `json:"witness_count" validate:"gte=0"`
	EstimatedAffected int      `json:"estimated_affected" validate:"gte=0"`
}

// LocationResponse DTO координаты сообщения
type LocationResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"`
}

// NoteResponse DTO заметки оператора
type NoteResponse struct {
	ID        int64     `json:"id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// ReportResponse DTO для ответа с информацией о сообщении
// @Description DTO для ответа с информацией о сообщении
type ReportResponse struct {
	ID                uuid.UUID         `json:"id"`
	ReporterName      string            `json:"reporter_name"`
	Description       string            `json:"description"`
	IncidentType      string            `json:"incident_type"`
	Urgency           string            `json:"urgency"`
	Location          *LocationResponse `json:"location,omitempty"`
	MediaURL          string            `json:"media_url,omitempty"`
	WitnessCount      int               `json:"witness_count"`
	EstimatedAffected int               `json:"estimated_affected"`
	Status            string            `json:"status"`
	Verified          bool              `json:"verified"`
	AICategory        string            `json:"ai_category"`
	Priority          string            `json:"priority"`
	Confidence        float64           `json:"confidence"`
	Notes             []NoteResponse    `json:"notes,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// UpdateStatusRequest DTO для смены статуса
// @Description DTO для смены статуса; override разрешает откат назад
type UpdateStatusRequest struct {
	Status   string `json:"status" validate:"required,oneof=pending investigating in-progress resolved"`
	Override bool   `json:"override"`
}

// AddNoteRequest DTO для заметки оператора
type AddNoteRequest struct {
	Author string `json:"author" validate:"required,max=100"`
	Text   string `json:"text" validate:"required,max=2000"`
}

// OverrideVerificationRequest DTO для ручной верификации
type OverrideVerificationRequest struct {
	Verified *bool  `json:"verified" validate:"required"`
	Priority string `json:"priority" validate:"required,oneof=high medium low"`
}

// RiskQuery параметры оценки риска в точке
type RiskQuery struct {
	Latitude  *float64 `form:"lat" validate:"required,latitude"`
	Longitude *float64 `form:"lng" validate:"required,longitude"`
}

// GridQuery параметры сетки риска
type GridQuery struct {
	Latitude  *float64 `form:"lat" validate:"required,latitude"`
	Longitude *float64 `form:"lng" validate:"required,longitude"`
	RadiusKm  float64  `form:"radiusKm" validate:"required,gt=0"`
	GridSize  int      `form:"gridSize" validate:"required,gte=1"`
	Format    string   `form:"format" validate:"omitempty,oneof=json geojson"`
}

// HealthResponse DTO состояния сервиса
type HealthResponse struct {
	Status string    `json:"status"`
	Hub    hub.Stats `json:"hub"`
}
