package oracle

import (
	"context"

	"github.com/shenikar/disaster_alert_system/internal/models"
)

// TextClassifier определяет контракт текстового классификатора
type TextClassifier interface {
	ClassifyText(ctx context.Context, text string) (models.TextClassification, error)
}

// ImageClassifier определяет контракт классификатора изображений
type ImageClassifier interface {
	ClassifyImage(ctx context.Context, imageURL string) (models.ImageClassification, error)
}

// Config - метки и пороги классификаторов
type Config struct {
	// TextLabels - метки-кандидаты для zero-shot классификации описания
	TextLabels []string
	// RelevantTerms - подстроки меток изображения, указывающие на происшествие
	RelevantTerms []string
	// MinImageScore - минимальная уверенность предсказания изображения
	MinImageScore float64
}

// DefaultConfig возвращает стандартный набор меток
func DefaultConfig() Config {
	return Config{
		TextLabels: []string{"flood", "fire", "earthquake", "blocked road", "injury", "missing person"},
		RelevantTerms: []string{
			"fire", "flame", "burning", "blaze",
			"flood", "water", "flooded", "flooding",
			"rescue", "emergency", "accident", "crash",
			"damage", "destroyed", "debris", "wreckage",
			"disaster", "catastrophe",
			"smoke", "smoking", "fog", "haze",
			"storm", "hurricane", "tornado", "earthquake",
			"ambulance", "fire truck", "police", "siren",
		},
		MinImageScore: 0.1,
	}
}
