package environment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/shenikar/disaster_alert_system/internal/models"
)

// WeatherProvider определяет контракт источника текущей погоды
type WeatherProvider interface {
	CurrentWeather(ctx context.Context, lat, lng float64) (models.Weather, error)
}

// OpenWeatherProvider получает погоду из OpenWeatherMap-совместимого API
type OpenWeatherProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	clock      clockwork.Clock
}

// NewOpenWeatherProvider создает провайдера погоды. Пустой apiKey отключает провайдера
func NewOpenWeatherProvider(apiKey, baseURL string, timeout time.Duration, clock clockwork.Clock) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		clock:      clock,
	}
}

// CurrentWeather запрашивает текущую погоду в точке
func (p *OpenWeatherProvider) CurrentWeather(ctx context.Context, lat, lng float64) (models.Weather, error) {
	if p.apiKey == "" {
		return models.Weather{}, fmt.Errorf("weather: %w", models.ErrProviderDisabled)
	}

	params := url.Values{
		"lat":   {strconv.FormatFloat(lat, 'f', 6, 64)},
		"lon":   {strconv.FormatFloat(lng, 'f', 6, 64)},
		"appid": {p.apiKey},
		"units": {"metric"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return models.Weather{}, fmt.Errorf("weather: create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return models.Weather{}, fmt.Errorf("weather: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return models.Weather{}, fmt.Errorf("weather: API error: status %d: %s", resp.StatusCode, body)
	}

	var wr weatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&wr); err != nil {
		return models.Weather{}, fmt.Errorf("weather: decode response: %w", err)
	}
	if wr.Main == nil {
		return models.Weather{}, fmt.Errorf("weather: malformed response: missing main block")
	}

	condition := "Unknown"
	if len(wr.Weather) > 0 {
		condition = wr.Weather[0].Main
	}

	return models.Weather{
		Temperature:   wr.Main.Temp,
		Humidity:      wr.Main.Humidity,
		Pressure:      wr.Main.Pressure,
		WindSpeed:     wr.Wind.Speed,
		Precipitation: wr.Rain.OneHour,
		Condition:     condition,
		Source:        models.SourceLive,
		ObservedAt:    p.clock.Now(),
	}, nil
}

// OpenWeatherMap response types.

type weatherResponse struct {
	Main *struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
		Pressure float64 `json:"pressure"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Rain struct {
		OneHour float64 `json:"1h"`
	} `json:"rain"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
}
