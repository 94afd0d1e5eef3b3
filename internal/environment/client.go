package environment

import (
	"context"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/shenikar/disaster_alert_system/internal/metrics"
	"github.com/shenikar/disaster_alert_system/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Client объединяет провайдеров погоды и рельефа с кешем, общим ограничителем частоты
// и синтетическим fallback. Методы Client никогда не возвращают ошибку провайдера
type Client struct {
	weather      WeatherProvider
	terrain      TerrainProvider
	weatherCache *Cache[models.Weather]
	terrainCache *Cache[models.Terrain]
	limiter      *rate.Limiter
	clock        clockwork.Clock
	logger       *logrus.Logger
	metrics      *metrics.Metrics
}

// NewLimiter создает ограничитель с минимальным интервалом между вызовами провайдеров
func NewLimiter(minInterval time.Duration) *rate.Limiter {
	if minInterval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(minInterval), 1)
}

// NewClient создает клиент данных окружения. Кеши передаются явно,
// чтобы их можно было разделять или подменять
func NewClient(
	weather WeatherProvider,
	terrain TerrainProvider,
	weatherCache *Cache[models.Weather],
	terrainCache *Cache[models.Terrain],
	limiter *rate.Limiter,
	clock clockwork.Clock,
	logger *logrus.Logger,
	m *metrics.Metrics,
) *Client {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if limiter == nil {
		limiter = NewLimiter(0)
	}
	return &Client{
		weather:      weather,
		terrain:      terrain,
		weatherCache: weatherCache,
		terrainCache: terrainCache,
		limiter:      limiter,
		clock:        clock,
		logger:       logger,
		metrics:      m,
	}
}

// Conditions параллельно получает погоду и рельеф для координаты
func (c *Client) Conditions(ctx context.Context, lat, lng float64) models.Conditions {
	var out models.Conditions
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out.Weather = c.Weather(gctx, lat, lng)
		return nil
	})
	g.Go(func() error {
		out.Terrain = c.Terrain(gctx, lat, lng)
		return nil
	})
	_ = g.Wait()
	return out
}

// Weather возвращает погоду из кеша, от провайдера или синтетическую
func (c *Client) Weather(ctx context.Context, lat, lng float64) models.Weather {
	key := CoordKey(lat, lng)
	if w, ok := c.weatherCache.Get(key); ok {
		c.metrics.EnvCache.WithLabelValues("weather", "hit").Inc()
		return w
	}
	c.metrics.EnvCache.WithLabelValues("weather", "miss").Inc()

	w, err := callProvider(ctx, c, "weather", func(ctx context.Context) (models.Weather, error) {
		return c.weather.CurrentWeather(ctx, lat, lng)
	})
	if err != nil {
		c.logFallback("weather", key, err)
		w = SyntheticWeather(lat, lng, c.clock.Now())
	}
	// Синтетика из-за отмены запроса не кешируется, следующий вызов пойдет к провайдеру
	if ctx.Err() == nil {
		c.weatherCache.Set(key, w)
	}
	return w
}

// Terrain возвращает рельеф из кеша, от провайдера или синтетический
func (c *Client) Terrain(ctx context.Context, lat, lng float64) models.Terrain {
	key := CoordKey(lat, lng)
	if t, ok := c.terrainCache.Get(key); ok {
		c.metrics.EnvCache.WithLabelValues("terrain", "hit").Inc()
		return t
	}
	c.metrics.EnvCache.WithLabelValues("terrain", "miss").Inc()

	t, err := callProvider(ctx, c, "terrain", func(ctx context.Context) (models.Terrain, error) {
		return c.terrain.Terrain(ctx, lat, lng)
	})
	if err != nil {
		c.logFallback("terrain", key, err)
		t = SyntheticTerrain(lat, lng, c.clock.Now())
	}
	// Синтетика из-за отмены запроса не кешируется, следующий вызов пойдет к провайдеру
	if ctx.Err() == nil {
		c.terrainCache.Set(key, t)
	}
	return t
}

func callProvider[T any](ctx context.Context, c *Client, provider string, call func(context.Context) (T, error)) (T, error) {
	var zero T
	if err := c.limiter.Wait(ctx); err != nil {
		c.metrics.ProviderRequests.WithLabelValues(provider, "error").Inc()
		return zero, err
	}

	start := time.Now()
	v, err := call(ctx)
	c.metrics.ProviderDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())

	switch {
	case errors.Is(err, models.ErrProviderDisabled):
		c.metrics.ProviderRequests.WithLabelValues(provider, "disabled").Inc()
	case err != nil:
		c.metrics.ProviderRequests.WithLabelValues(provider, "error").Inc()
	default:
		c.metrics.ProviderRequests.WithLabelValues(provider, "success").Inc()
	}
	return v, err
}

func (c *Client) logFallback(provider, key string, err error) {
	log := c.logger.WithFields(logrus.Fields{
		"component":  "environment",
		"provider":   provider,
		"coordinate": key,
	})
	if errors.Is(err, models.ErrProviderDisabled) {
		log.Debug("Provider has no API key, using synthetic data")
		return
	}
	log.WithError(err).Warn("Provider unavailable, using synthetic data")
}
