package environment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/shenikar/disaster_alert_system/internal/models"
	"github.com/shenikar/disaster_alert_system/pkg/geo"
)

// slopeSampleKm - расстояние до соседних точек при оценке уклона
const slopeSampleKm = 0.1

// TerrainProvider определяет контракт источника данных о рельефе
type TerrainProvider interface {
	Terrain(ctx context.Context, lat, lng float64) (models.Terrain, error)
}

// ElevationProvider получает высоты из API высот (формат Google Elevation) и оценивает уклон
// по четырём соседним точкам. Почва и покрытие берутся из синтетического профиля местности
type ElevationProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	clock      clockwork.Clock
}

// NewElevationProvider создает провайдера рельефа. Пустой apiKey отключает провайдера
func NewElevationProvider(apiKey, baseURL string, timeout time.Duration, clock clockwork.Clock) *ElevationProvider {
	return &ElevationProvider{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		clock:      clock,
	}
}

// Terrain возвращает высоту, уклон и покрытие местности в точке
func (p *ElevationProvider) Terrain(ctx context.Context, lat, lng float64) (models.Terrain, error) {
	if p.apiKey == "" {
		return models.Terrain{}, fmt.Errorf("elevation: %w", models.ErrProviderDisabled)
	}

	dLat := geo.KmToLatDegrees(slopeSampleKm)
	dLng := geo.KmToLngDegrees(slopeSampleKm, lat)
	// центр, север, юг, восток, запад
	points := [][2]float64{
		{lat, lng},
		{lat + dLat, lng},
		{lat - dLat, lng},
		{lat, lng + dLng},
		{lat, lng - dLng},
	}

	elevations, err := p.fetch(ctx, points)
	if err != nil {
		return models.Terrain{}, err
	}

	now := p.clock.Now()
	t := SyntheticTerrain(lat, lng, now)
	t.Elevation = math.Round(elevations[0]*10) / 10
	t.Slope = slopeDegrees(elevations[1], elevations[2], elevations[3], elevations[4], slopeSampleKm*1000)
	t.Source = models.SourceLive
	return t, nil
}

func (p *ElevationProvider) fetch(ctx context.Context, points [][2]float64) ([]float64, error) {
	locs := make([]string, 0, len(points))
	for _, pt := range points {
		locs = append(locs, fmt.Sprintf("%.6f,%.6f", pt[0], pt[1]))
	}
	params := url.Values{
		"locations": {strings.Join(locs, "|")},
		"key":       {p.apiKey},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("elevation: create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevation: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("elevation: API error: status %d: %s", resp.StatusCode, body)
	}

	var er elevationResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return nil, fmt.Errorf("elevation: decode response: %w", err)
	}
	if er.Status != "" && er.Status != "OK" {
		return nil, fmt.Errorf("elevation: API status %s", er.Status)
	}
	if len(er.Results) != len(points) {
		return nil, fmt.Errorf("elevation: expected %d results, got %d", len(points), len(er.Results))
	}

	out := make([]float64, len(er.Results))
	for i, r := range er.Results {
		out[i] = r.Elevation
	}
	return out, nil
}

// slopeDegrees оценивает уклон в градусах по центральным разностям
func slopeDegrees(north, south, east, west, spacingM float64) float64 {
	dzdy := (north - south) / (2 * spacingM)
	dzdx := (east - west) / (2 * spacingM)
	deg := math.Atan(math.Hypot(dzdx, dzdy)) * 180 / math.Pi
	return math.Round(deg*10) / 10
}

// Elevation API response types.

type elevationResponse struct {
	Results []struct {
		Elevation float64 `json:"elevation"`
	} `json:"results"`
	Status string `json:"status"`
}
