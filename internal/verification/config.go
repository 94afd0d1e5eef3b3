package verification

import (
	"time"

	"github.com/shenikar/disaster_alert_system/internal/models"
)

// Config - правила верификации и приоритизации
type Config struct {
	// Keywords - слова в описании, подтверждающие сообщение
	Keywords []string
	// HighPriorityTypes - типы происшествий с высоким приоритетом
	HighPriorityTypes []models.IncidentType
	// MediumPriorityTypes - типы происшествий со средним приоритетом
	MediumPriorityTypes []models.IncidentType
	// MinWitnesses - число свидетелей, начиная с которого сообщение считается подтвержденным
	MinWitnesses int
	// MinAffected - число пострадавших, начиная с которого сообщение считается подтвержденным
	MinAffected int
	// OracleTimeout ограничивает каждый вызов классификатора
	OracleTimeout time.Duration
}

// DefaultConfig возвращает стандартные правила
func DefaultConfig() Config {
	return Config{
		Keywords: []string{"fire", "flood", "earthquake", "medical", "emergency"},
		HighPriorityTypes: []models.IncidentType{
			models.IncidentFireEmergency,
			models.IncidentMedicalEmergency,
			models.IncidentFlood,
			models.IncidentEarthquake,
			models.IncidentSevereWeather,
		},
		MediumPriorityTypes: []models.IncidentType{
			models.IncidentBlockedRoad,
			models.IncidentInfrastructureDamage,
		},
		MinWitnesses:  2,
		MinAffected:   6,
		OracleTimeout: 8 * time.Second,
	}
}
