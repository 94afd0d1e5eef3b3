package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config - структура для хранения конфигурации приложения
type Config struct {
	DatabaseURL string `env:"DATABASE_URL"`
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"json"`
	DBMaxConns  int    `env:"DB_MAX_CONNS" envDefault:"10"`

	// Redis Config
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`
	RedisPool int    `env:"REDIS_POOL_SIZE" envDefault:"10"`

	ReportCacheTTL time.Duration `env:"REPORT_CACHE_TTL" envDefault:"5m"`

	// Webhook Config
	WebhookURL        string        `env:"WEBHOOK_URL"`
	WebhookSecret     string        `env:"WEBHOOK_SECRET"`
	WebhookTimeout    time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"5s"`
	WebhookMaxRetries int           `env:"WEBHOOK_MAX_RETRIES" envDefault:"3"`
	WebhookBaseDelay  time.Duration `env:"WEBHOOK_BASE_DELAY" envDefault:"1s"`

	// Классификаторы (ключи необязательны, без них используется fallback)
	TextClassifierAPIKey  string        `env:"TEXT_CLASSIFIER_API_KEY"`
	TextClassifierURL     string        `env:"TEXT_CLASSIFIER_URL"`
	ImageClassifierAPIKey string        `env:"IMAGE_CLASSIFIER_API_KEY"`
	ImageClassifierURL    string        `env:"IMAGE_CLASSIFIER_URL"`
	ImageMinScore         float64       `env:"IMAGE_MIN_SCORE" envDefault:"0.1"`
	OracleTimeout         time.Duration `env:"ORACLE_TIMEOUT" envDefault:"8s"`

	// Провайдеры погоды и рельефа
	WeatherAPIKey       string        `env:"WEATHER_API_KEY"`
	WeatherURL          string        `env:"WEATHER_URL"`
	ElevationAPIKey     string        `env:"ELEVATION_API_KEY"`
	ElevationURL        string        `env:"ELEVATION_URL"`
	EnvProviderTimeout  time.Duration `env:"ENV_PROVIDER_TIMEOUT" envDefault:"5s"`
	ProviderMinInterval time.Duration `env:"PROVIDER_MIN_INTERVAL" envDefault:"250ms"`
	WeatherCacheTTL     time.Duration `env:"WEATHER_CACHE_TTL" envDefault:"10m"`
	TerrainCacheTTL     time.Duration `env:"TERRAIN_CACHE_TTL" envDefault:"30m"`
	EnvCacheMaxEntries  int           `env:"ENV_CACHE_MAX_ENTRIES" envDefault:"5000"`

	// Risk Config
	RiskCacheTTL        time.Duration `env:"RISK_CACHE_TTL" envDefault:"2m"`
	RiskGridConcurrency int           `env:"RISK_GRID_CONCURRENCY" envDefault:"4"`
	RiskGridMaxSize     int           `env:"RISK_GRID_MAX_SIZE" envDefault:"20"`

	// Hub Config
	HubSendBuffer int `env:"HUB_SEND_BUFFER" envDefault:"64"`

	// Kafka Config (пустой список брокеров отключает поток событий)
	KafkaBrokers []string `env:"KAFKA_BROKERS"`
	KafkaTopic   string   `env:"KAFKA_TOPIC" envDefault:"disaster.reports"`

	// API Keys for authentication
	APIKeys []string `env:"API_KEYS"`
}

// LoadConfig загружает конфигурацию из переменных окружения и .env файла
func LoadConfig() (*Config, error) {
	// Загрузка переменных окружения из .env файла (если есть)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("ошибка загрузки файла .env: %w", err)
	}

	cfg := &Config{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		HTTPPort:          getEnv("HTTP_PORT", "8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "json"),
		DBMaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:         os.Getenv("REDIS_PASSWORD"),
		RedisDB:           getEnvAsInt("REDIS_DB", 0),
		RedisPool:         getEnvAsInt("REDIS_POOL_SIZE", 10),
		ReportCacheTTL:    getEnvAsDuration("REPORT_CACHE_TTL", 5*time.Minute),
		WebhookURL:        os.Getenv("WEBHOOK_URL"),
		WebhookSecret:     os.Getenv("WEBHOOK_SECRET"),
		WebhookTimeout:    getEnvAsDuration("WEBHOOK_TIMEOUT", 5*time.Second),
		WebhookMaxRetries: getEnvAsInt("WEBHOOK_MAX_RETRIES", 3),
		WebhookBaseDelay:  getEnvAsDuration("WEBHOOK_BASE_DELAY", time.Second),

		TextClassifierAPIKey:  os.Getenv("TEXT_CLASSIFIER_API_KEY"),
		TextClassifierURL:     getEnv("TEXT_CLASSIFIER_URL", "https://api-inference.huggingface.co/models/facebook/bart-large-mnli"),
		ImageClassifierAPIKey: os.Getenv("IMAGE_CLASSIFIER_API_KEY"),
		ImageClassifierURL:    getEnv("IMAGE_CLASSIFIER_URL", "https://api-inference.huggingface.co/models/google/vit-base-patch16-224"),
		ImageMinScore:         getEnvAsFloat("IMAGE_MIN_SCORE", 0.1),
		OracleTimeout:         getEnvAsDuration("ORACLE_TIMEOUT", 8*time.Second),

		WeatherAPIKey:       os.Getenv("WEATHER_API_KEY"),
		WeatherURL:          getEnv("WEATHER_URL", "https://api.openweathermap.org/data/2.5/weather"),
		ElevationAPIKey:     os.Getenv("ELEVATION_API_KEY"),
		ElevationURL:        getEnv("ELEVATION_URL", "https://maps.googleapis.com/maps/api/elevation/json"),
		EnvProviderTimeout:  getEnvAsDuration("ENV_PROVIDER_TIMEOUT", 5*time.Second),
		ProviderMinInterval: getEnvAsDuration("PROVIDER_MIN_INTERVAL", 250*time.Millisecond),
		WeatherCacheTTL:     getEnvAsDuration("WEATHER_CACHE_TTL", 10*time.Minute),
		TerrainCacheTTL:     getEnvAsDuration("TERRAIN_CACHE_TTL", 30*time.Minute),
		EnvCacheMaxEntries:  getEnvAsInt("ENV_CACHE_MAX_ENTRIES", 5000),

		RiskCacheTTL:        getEnvAsDuration("RISK_CACHE_TTL", 2*time.Minute),
		RiskGridConcurrency: getEnvAsInt("RISK_GRID_CONCURRENCY", 4),
		RiskGridMaxSize:     getEnvAsInt("RISK_GRID_MAX_SIZE", 20),

		HubSendBuffer: getEnvAsInt("HUB_SEND_BUFFER", 64),

		KafkaBrokers: getEnvAsList("KAFKA_BROKERS"),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "disaster.reports"),

		APIKeys: getEnvAsList("API_KEYS"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if cfg.RiskGridConcurrency < 1 {
		cfg.RiskGridConcurrency = 1
	}
	if cfg.HubSendBuffer < 1 {
		cfg.HubSendBuffer = 1
	}

	return cfg, nil
}

// getEnv возвращает значение переменной окружения или значение по умолчанию
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt возвращает значение переменной окружения как int или значение по умолчанию
func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsFloat возвращает значение переменной окружения как float64 или значение по умолчанию
func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvAsDuration возвращает значение переменной окружения как time.Duration или значение по умолчанию
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if durationValue, err := time.ParseDuration(value); err == nil {
			return durationValue
		}
	}
	return defaultValue
}

// getEnvAsList разбирает список через запятую, пропуская пустые элементы
func getEnvAsList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
