package models

// UnverifiedLabel - нейтральная метка, когда текстовый классификатор недоступен
const UnverifiedLabel = "unverified"

// TextClassification - ответ текстового классификатора
type TextClassification struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// ImageClassification - ответ классификатора изображений
type ImageClassification struct {
	Relevant bool     `json:"relevant"`
	Labels   []string `json:"labels,omitempty"`
}

// ClassificationVerdict - эфемерный результат обоих классификаторов для одного сообщения
type ClassificationVerdict struct {
	Text          TextClassification `json:"text"`
	TextFailed    bool               `json:"text_failed"`
	ImageRelevant bool               `json:"image_relevant"`
}

// Verdict - результат движка верификации
type Verdict struct {
	Verified   bool           `json:"verified"`
	Category   string         `json:"category"`
	Priority   Priority       `json:"priority"`
	Confidence float64        `json:"confidence"`
	Details    VerdictDetails `json:"details"`
}

// VerdictDetails объясняет, какие сигналы повлияли на результат
type VerdictDetails struct {
	TextLabel         string  `json:"text_label"`
	TextConfidence    float64 `json:"text_confidence"`
	ImageVerified     bool    `json:"image_verified"`
	KeywordMatch      bool    `json:"keyword_match"`
	CrowdCorroborated bool    `json:"crowd_corroborated"`
	Fallback          bool    `json:"fallback"`
	WitnessCount      int     `json:"witness_count"`
	EstimatedAffected int     `json:"estimated_affected"`
}
