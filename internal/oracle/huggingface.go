package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shenikar/disaster_alert_system/internal/models"
	"golang.org/x/time/rate"
)

// errRetryable помечает ответы, после которых имеет смысл повторить запрос (модель загружается, 429)
var errRetryable = errors.New("retryable")

// Endpoint - адрес модели и ключ доступа
type Endpoint struct {
	URL    string
	APIKey string
}

// HuggingFaceClient реализует TextClassifier и ImageClassifier поверх HuggingFace Inference API
type HuggingFaceClient struct {
	text       Endpoint
	image      Endpoint
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries int
	retryDelay time.Duration
}

// NewHuggingFaceClient создает клиент. Эндпоинт без ключа считается отключенным
func NewHuggingFaceClient(text, image Endpoint, cfg Config, timeout time.Duration, limiter *rate.Limiter) *HuggingFaceClient {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &HuggingFaceClient{
		text:       text,
		image:      image,
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
		maxRetries: 2,
		retryDelay: time.Second,
	}
}

// ClassifyText выбирает наиболее вероятную метку для описания
func (c *HuggingFaceClient) ClassifyText(ctx context.Context, text string) (models.TextClassification, error) {
	if c.text.APIKey == "" {
		return models.TextClassification{}, fmt.Errorf("text classifier: %w", models.ErrProviderDisabled)
	}
	if strings.TrimSpace(text) == "" {
		return models.TextClassification{}, fmt.Errorf("text classifier: empty text")
	}

	body := map[string]any{
		"inputs":     text,
		"parameters": map[string]any{"candidate_labels": c.cfg.TextLabels},
	}
	raw, err := c.post(ctx, c.text, body)
	if err != nil {
		return models.TextClassification{}, fmt.Errorf("text classifier: %w", err)
	}

	zs, err := decodeZeroShot(raw)
	if err != nil {
		return models.TextClassification{}, fmt.Errorf("text classifier: %w", err)
	}

	best := -1
	for i := range zs.Labels {
		if i >= len(zs.Scores) {
			break
		}
		if best < 0 || zs.Scores[i] > zs.Scores[best] {
			best = i
		}
	}
	if best < 0 {
		return models.TextClassification{}, fmt.Errorf("text classifier: malformed response: no labels")
	}
	return models.TextClassification{Label: zs.Labels[best], Confidence: zs.Scores[best]}, nil
}

// ClassifyImage решает, изображено ли на картинке происшествие
func (c *HuggingFaceClient) ClassifyImage(ctx context.Context, imageURL string) (models.ImageClassification, error) {
	if c.image.APIKey == "" {
		return models.ImageClassification{}, fmt.Errorf("image classifier: %w", models.ErrProviderDisabled)
	}
	if !strings.HasPrefix(imageURL, "http://") && !strings.HasPrefix(imageURL, "https://") {
		return models.ImageClassification{}, fmt.Errorf("image classifier: invalid image url %q", imageURL)
	}

	raw, err := c.post(ctx, c.image, map[string]any{"inputs": imageURL})
	if err != nil {
		return models.ImageClassification{}, fmt.Errorf("image classifier: %w", err)
	}

	preds, err := decodePredictions(raw)
	if err != nil {
		return models.ImageClassification{}, fmt.Errorf("image classifier: %w", err)
	}

	out := models.ImageClassification{}
	for _, p := range preds {
		label := strings.ToLower(strings.TrimSpace(p.Label))
		if label == "" {
			continue
		}
		out.Labels = append(out.Labels, label)
		if p.Score >= c.cfg.MinImageScore && c.isRelevant(label) {
			out.Relevant = true
		}
	}
	return out, nil
}

func (c *HuggingFaceClient) isRelevant(label string) bool {
	for _, term := range c.cfg.RelevantTerms {
		if strings.Contains(label, term) {
			return true
		}
	}
	return false
}

// post отправляет запрос с повтором при 503/429 и экспоненциальной задержкой
func (c *HuggingFaceClient) post(ctx context.Context, ep Endpoint, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	delay := c.retryDelay
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		raw, err := c.do(ctx, ep, payload)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if !errors.Is(err, errRetryable) {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *HuggingFaceClient) do(ctx context.Context, ep Endpoint, payload []byte) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ep.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+ep.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusServiceUnavailable || resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: status %d", errRetryable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("API error: status %d: %s", resp.StatusCode, truncate(raw, 256))
	}
	return raw, nil
}

// HuggingFace response types.

type zeroShotResponse struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

type prediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// decodeZeroShot принимает как объект, так и массив из одного объекта
func decodeZeroShot(raw []byte) (zeroShotResponse, error) {
	var obj zeroShotResponse
	if err := json.Unmarshal(raw, &obj); err == nil && len(obj.Labels) > 0 {
		return obj, nil
	}
	var arr []zeroShotResponse
	if err := json.Unmarshal(raw, &arr); err == nil && len(arr) > 0 && len(arr[0].Labels) > 0 {
		return arr[0], nil
	}
	return zeroShotResponse{}, fmt.Errorf("malformed response: %s", truncate(raw, 128))
}

// decodePredictions принимает массив предсказаний, объект {predictions: [...]} или одиночное предсказание
func decodePredictions(raw []byte) ([]prediction, error) {
	var arr []prediction
	if err := json.Unmarshal(raw, &arr); err == nil {
		return arr, nil
	}
	var wrapped struct {
		Predictions []prediction `json:"predictions"`
		Label       string       `json:"label"`
		Score       float64      `json:"score"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil {
		if wrapped.Predictions != nil {
			return wrapped.Predictions, nil
		}
		if wrapped.Label != "" {
			return []prediction{{Label: wrapped.Label, Score: wrapped.Score}}, nil
		}
	}
	return nil, fmt.Errorf("malformed response: %s", truncate(raw, 128))
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
