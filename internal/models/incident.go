package models

import (
	"time"

	"github.com/google/uuid"
)

// IncidentType - тип происшествия из закрытого списка
type IncidentType string

const (
	IncidentFireEmergency        IncidentType = "fire-emergency"
	IncidentMedicalEmergency     IncidentType = "medical-emergency"
	IncidentBlockedRoad          IncidentType = "blocked-road"
	IncidentMissingPerson        IncidentType = "missing-person"
	IncidentInfrastructureDamage IncidentType = "infrastructure-damage"
	IncidentFlood                IncidentType = "flood"
	IncidentEarthquake           IncidentType = "earthquake"
	IncidentSevereWeather        IncidentType = "severe-weather"
	IncidentOther                IncidentType = "other"
)

// IncidentTypes перечисляет все допустимые типы происшествий
var IncidentTypes = []IncidentType{
	IncidentFireEmergency,
	IncidentMedicalEmergency,
	IncidentBlockedRoad,
	IncidentMissingPerson,
	IncidentInfrastructureDamage,
	IncidentFlood,
	IncidentEarthquake,
	IncidentSevereWeather,
	IncidentOther,
}

// Urgency - срочность, указанная заявителем
type Urgency string

const (
	UrgencyImmediate Urgency = "immediate"
	UrgencyUrgent    Urgency = "urgent"
	UrgencyModerate  Urgency = "moderate"
	UrgencyLow       Urgency = "low"
)

// ReportStatus - статус жизненного цикла сообщения
type ReportStatus string

const (
	StatusPending       ReportStatus = "pending"
	StatusInvestigating ReportStatus = "investigating"
	StatusInProgress    ReportStatus = "in-progress"
	StatusResolved      ReportStatus = "resolved"
)

// StatusOrder - статусы в порядке жизненного цикла
var StatusOrder = []ReportStatus{StatusPending, StatusInvestigating, StatusInProgress, StatusResolved}

// Rank возвращает порядковый номер статуса; -1 для неизвестного
func (s ReportStatus) Rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusInvestigating:
		return 1
	case StatusInProgress:
		return 2
	case StatusResolved:
		return 3
	}
	return -1
}

// Priority - приоритет, вычисляемый движком верификации
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank возвращает вес приоритета для сравнения
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	}
	return 0
}

// Raise возвращает больший из двух приоритетов
func (p Priority) Raise(other Priority) Priority {
	if other.Rank() > p.Rank() {
		return other
	}
	return p
}

// Location - координата происшествия
type Location struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
	Address   string  `json:"address,omitempty"`
}

// ReportNote - заметка оператора, не изменяется после добавления
type ReportNote struct {
	ID        int64     `json:"id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// IncidentReport - сообщение о происшествии от гражданина
type IncidentReport struct {
	ID                uuid.UUID    `json:"id"`
	ReporterName      string       `json:"reporter_name"`
	ReporterContact   string       `json:"reporter_contact,omitempty"`
	Description       string       `json:"description"`
	IncidentType      IncidentType `json:"incident_type"`
	Urgency           Urgency      `json:"urgency"`
	Location          *Location    `json:"location,omitempty"`
	MediaURL          string       `json:"media_url,omitempty"`
	WitnessCount      int          `json:"witness_count"`
	EstimatedAffected int          `json:"estimated_affected"`
	Status            ReportStatus `json:"status"`
	Verified          bool         `json:"verified"`
	AICategory        string       `json:"ai_category"`
	Priority          Priority     `json:"priority"`
	Confidence        float64      `json:"confidence"`
	Notes             []ReportNote `json:"notes,omitempty"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

// ApplyVerdict записывает результат верификации в сообщение
func (r *IncidentReport) ApplyVerdict(v Verdict) {
	r.Verified = v.Verified
	r.AICategory = v.Category
	r.Priority = v.Priority
	r.Confidence = v.Confidence
}

// ReportStats - агрегированная статистика для панели оператора
type ReportStats struct {
	Total             int                  `json:"total"`
	Verified          int                  `json:"verified"`
	ByStatus          map[ReportStatus]int `json:"by_status"`
	ByUrgency         map[Urgency]int      `json:"by_urgency"`
	ByIncidentType    map[IncidentType]int `json:"by_incident_type"`
	Last24Hours       int                  `json:"last_24_hours"`
	RecentWeek        int                  `json:"recent_week"`
	PreviousWeek      int                  `json:"previous_week"`
	WeeklyTrendPct    float64              `json:"weekly_trend_pct"`
	ActiveEmergencies int                  `json:"active_emergencies"`
}
