package environment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/shenikar/disaster_alert_system/internal/metrics"
	"github.com/shenikar/disaster_alert_system/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubWeather struct {
	calls atomic.Int32
	w     models.Weather
	err   error
}

func (s *stubWeather) CurrentWeather(_ context.Context, _, _ float64) (models.Weather, error) {
	s.calls.Add(1)
	return s.w, s.err
}

type stubTerrain struct {
	calls atomic.Int32
	t     models.Terrain
	err   error
}

func (s *stubTerrain) Terrain(_ context.Context, _, _ float64) (models.Terrain, error) {
	s.calls.Add(1)
	return s.t, s.err
}

func newTestClient(w WeatherProvider, tr TerrainProvider, clock clockwork.Clock) (*Client, *bytes.Buffer) {
	logger := logrus.New()
	buf := &bytes.Buffer{}
	logger.SetOutput(buf)
	c := NewClient(
		w, tr,
		NewCache[models.Weather](10*time.Minute, 100, clock),
		NewCache[models.Terrain](30*time.Minute, 100, clock),
		NewLimiter(0),
		clock,
		logger,
		metrics.NewMetricsForTesting(),
	)
	return c, buf
}

func TestClient_Conditions_LiveAndCached(t *testing.T) {
	// Подготовка
	clock := clockwork.NewFakeClock()
	w := &stubWeather{w: models.Weather{Temperature: 30, Source: models.SourceLive}}
	tr := &stubTerrain{t: models.Terrain{Elevation: 120, SoilType: "clay", Source: models.SourceLive}}
	c, _ := newTestClient(w, tr, clock)

	// Действие
	first := c.Conditions(context.Background(), 10.001, 20.001)
	second := c.Conditions(context.Background(), 10.002, 20.002)

	// Проверки
	assert.Equal(t, 30.0, first.Weather.Temperature)
	assert.Equal(t, "clay", first.Terrain.SoilType)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), w.calls.Load())
	assert.Equal(t, int32(1), tr.calls.Load())
}

func TestClient_WeatherRefreshedAfterTTL_TerrainNot(t *testing.T) {
	clock := clockwork.NewFakeClock()
	w := &stubWeather{w: models.Weather{Temperature: 10}}
	tr := &stubTerrain{t: models.Terrain{Elevation: 50}}
	c, _ := newTestClient(w, tr, clock)

	c.Conditions(context.Background(), 1, 1)
	clock.Advance(11 * time.Minute)
	c.Conditions(context.Background(), 1, 1)

	assert.Equal(t, int32(2), w.calls.Load())
	assert.Equal(t, int32(1), tr.calls.Load())
}

func TestClient_ProviderFailureFallsBackToSynthetic(t *testing.T) {
	// Подготовка
	clock := clockwork.NewFakeClock()
	w := &stubWeather{err: errors.New("connection refused")}
	tr := &stubTerrain{err: errors.New("timeout")}
	c, logs := newTestClient(w, tr, clock)

	// Действие
	got := c.Conditions(context.Background(), 40.44, -79.99)
	again := c.Conditions(context.Background(), 40.44, -79.99)

	// Проверки
	assert.Equal(t, models.SourceSynthetic, got.Weather.Source)
	assert.Equal(t, models.SourceSynthetic, got.Terrain.Source)
	assert.Equal(t, got, again, "synthetic fallback must be cached")
	assert.Equal(t, int32(1), w.calls.Load())
	assert.Contains(t, logs.String(), "Provider unavailable")
}

func TestClient_CancelledContextFallbackNotCached(t *testing.T) {
	// Подготовка
	clock := clockwork.NewFakeClock()
	w := &stubWeather{w: models.Weather{Temperature: 25, Source: models.SourceLive}}
	tr := &stubTerrain{t: models.Terrain{Elevation: 80, Source: models.SourceLive}}
	c, _ := newTestClient(w, tr, clock)
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	// Действие
	first := c.Conditions(cancelled, 3, 4)
	second := c.Conditions(context.Background(), 3, 4)

	// Проверки
	assert.Equal(t, models.SourceSynthetic, first.Weather.Source)
	assert.Equal(t, models.SourceSynthetic, first.Terrain.Source)
	assert.Equal(t, models.SourceLive, second.Weather.Source)
	assert.Equal(t, models.SourceLive, second.Terrain.Source)
	assert.Equal(t, int32(1), w.calls.Load())
	assert.Equal(t, int32(1), tr.calls.Load())
}

// arrivalLog запоминает время прихода запросов к тестовым серверам
type arrivalLog struct {
	mu    sync.Mutex
	times []time.Time
}

func (a *arrivalLog) record() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.times = append(a.times, time.Now())
}

func (a *arrivalLog) snapshot() []time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]time.Time(nil), a.times...)
}

func TestClient_SharedLimiterSpacesProviderCalls(t *testing.T) {
	// Подготовка: два провайдера за одним ограничителем с интервалом 100 мс
	const interval = 100 * time.Millisecond
	arrivals := &arrivalLog{}
	var weatherHits, terrainHits atomic.Int32

	weatherSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		arrivals.record()
		weatherHits.Add(1)
		_, _ = w.Write([]byte(`{"main": {"temp": 12, "humidity": 60, "pressure": 1012}}`))
	}))
	defer weatherSrv.Close()

	terrainSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		arrivals.record()
		terrainHits.Add(1)
		_, _ = w.Write([]byte(`{"status": "OK", "results": [
			{"elevation": 100}, {"elevation": 100}, {"elevation": 100}, {"elevation": 100}, {"elevation": 100}
		]}`))
	}))
	defer terrainSrv.Close()

	clock := clockwork.NewFakeClock()
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	c := NewClient(
		NewOpenWeatherProvider("key", weatherSrv.URL, time.Second, clock),
		NewElevationProvider("key", terrainSrv.URL, time.Second, clock),
		NewCache[models.Weather](10*time.Minute, 100, clock),
		NewCache[models.Terrain](30*time.Minute, 100, clock),
		NewLimiter(interval),
		clock,
		logger,
		metrics.NewMetricsForTesting(),
	)

	// Действие
	got := c.Conditions(context.Background(), 51.5, -0.12)

	// Проверки: оба провайдера вызваны, но не чаще одного раза за интервал
	assert.Equal(t, models.SourceLive, got.Weather.Source)
	assert.Equal(t, models.SourceLive, got.Terrain.Source)
	assert.Equal(t, int32(1), weatherHits.Load())
	assert.Equal(t, int32(1), terrainHits.Load())

	times := arrivals.snapshot()
	require.Len(t, times, 2)
	gap := times[1].Sub(times[0])
	assert.GreaterOrEqual(t, gap, interval-20*time.Millisecond, "provider calls must be spaced by the limiter")

	// Действие: отмененный контекст в новой точке не доходит до провайдеров
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	fallback := c.Conditions(cancelled, -33.86, 151.2)

	// Проверки
	assert.Equal(t, models.SourceSynthetic, fallback.Weather.Source)
	assert.Equal(t, models.SourceSynthetic, fallback.Terrain.Source)
	assert.Equal(t, int32(1), weatherHits.Load())
	assert.Equal(t, int32(1), terrainHits.Load())
}

func TestClient_DisabledProviderIsNotAWarning(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c, logs := newTestClient(
		NewOpenWeatherProvider("", "http://unused", time.Second, clock),
		NewElevationProvider("", "http://unused", time.Second, clock),
		clock,
	)

	got := c.Conditions(context.Background(), 1, 2)

	assert.Equal(t, models.SourceSynthetic, got.Weather.Source)
	assert.NotContains(t, logs.String(), "warning")
}

func TestSynthetic_Deterministic(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, SyntheticWeather(55.75, 37.61, now), SyntheticWeather(55.751, 37.612, now))
	assert.Equal(t, SyntheticTerrain(55.75, 37.61, now), SyntheticTerrain(55.751, 37.612, now))

	tr := SyntheticTerrain(12.34, 56.78, now)
	assert.Contains(t, []string{"loam", "rocky", "clay"}, tr.SoilType)
	assert.GreaterOrEqual(t, tr.VegetationPct, 0.0)
	assert.LessOrEqual(t, tr.UrbanDensityPct, 100.0)

	w := SyntheticWeather(12.34, 56.78, now)
	assert.InDelta(t, 22.5, w.Temperature, 5.01)
	assert.GreaterOrEqual(t, w.Precipitation, 0.0)
}

func TestOpenWeatherProvider_CurrentWeather(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.URL.Query().Get("appid"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"main": {"temp": 18.4, "humidity": 71, "pressure": 1008},
			"wind": {"speed": 6.2},
			"rain": {"1h": 1.5},
			"weather": [{"main": "Rain", "description": "light rain"}]
		}`))
	}))
	defer srv.Close()

	clock := clockwork.NewFakeClock()
	p := NewOpenWeatherProvider("secret", srv.URL, time.Second, clock)

	got, err := p.CurrentWeather(context.Background(), 55.75, 37.61)

	require.NoError(t, err)
	assert.Equal(t, 18.4, got.Temperature)
	assert.Equal(t, 71.0, got.Humidity)
	assert.Equal(t, 1008.0, got.Pressure)
	assert.Equal(t, 6.2, got.WindSpeed)
	assert.Equal(t, 1.5, got.Precipitation)
	assert.Equal(t, "Rain", got.Condition)
	assert.Equal(t, models.SourceLive, got.Source)
	assert.Equal(t, clock.Now(), got.ObservedAt)
}

func TestOpenWeatherProvider_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.RawQuery, "appid=bad") {
			http.Error(w, "invalid key", http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"cod": 200}`))
	}))
	defer srv.Close()
	clock := clockwork.NewFakeClock()

	_, err := NewOpenWeatherProvider("", srv.URL, time.Second, clock).CurrentWeather(context.Background(), 1, 1)
	assert.ErrorIs(t, err, models.ErrProviderDisabled)

	_, err = NewOpenWeatherProvider("bad", srv.URL, time.Second, clock).CurrentWeather(context.Background(), 1, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")

	_, err = NewOpenWeatherProvider("good", srv.URL, time.Second, clock).CurrentWeather(context.Background(), 1, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed")
}

func TestElevationProvider_Terrain(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locs := strings.Split(r.URL.Query().Get("locations"), "|")
		assert.Len(t, locs, 5)
		// центр, север, юг, восток, запад: подъём 20 м на 200 м по оси север-юг
		resp := map[string]any{
			"status": "OK",
			"results": []map[string]float64{
				{"elevation": 300}, {"elevation": 310}, {"elevation": 290}, {"elevation": 300}, {"elevation": 300},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	p := NewElevationProvider("key", srv.URL, time.Second, clockwork.NewFakeClock())

	got, err := p.Terrain(context.Background(), 45, 7)

	require.NoError(t, err)
	assert.Equal(t, 300.0, got.Elevation)
	assert.InDelta(t, 5.7, got.Slope, 0.05)
	assert.Equal(t, models.SourceLive, got.Source)
	assert.NotEmpty(t, got.SoilType)
}

func TestElevationProvider_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status": "REQUEST_DENIED", "results": []}`))
	}))
	defer srv.Close()

	_, err := NewElevationProvider("key", srv.URL, time.Second, clockwork.NewFakeClock()).Terrain(context.Background(), 1, 1)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "REQUEST_DENIED")
}
