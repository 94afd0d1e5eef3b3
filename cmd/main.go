package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shenikar/disaster_alert_system/internal/config"
	"github.com/shenikar/disaster_alert_system/internal/environment"
	v1 "github.com/shenikar/disaster_alert_system/internal/handler/http/v1"
	"github.com/shenikar/disaster_alert_system/internal/hub"
	"github.com/shenikar/disaster_alert_system/internal/metrics"
	"github.com/shenikar/disaster_alert_system/internal/models"
	"github.com/shenikar/disaster_alert_system/internal/oracle"
	"github.com/shenikar/disaster_alert_system/internal/repository"
	"github.com/shenikar/disaster_alert_system/internal/risk"
	"github.com/shenikar/disaster_alert_system/internal/service"
	"github.com/shenikar/disaster_alert_system/internal/stream"
	"github.com/shenikar/disaster_alert_system/internal/verification"
	"github.com/shenikar/disaster_alert_system/internal/webhook"
	"github.com/shenikar/disaster_alert_system/pkg/logger"
	"github.com/shenikar/disaster_alert_system/pkg/postgres"
	redisclient "github.com/shenikar/disaster_alert_system/pkg/redis"
	"github.com/sirupsen/logrus"

	_ "github.com/shenikar/disaster_alert_system/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Disaster Alert System API
// @version 1.0
// @description Citizen incident reports, automatic verification, live area alerts and disaster risk scoring.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func runMigrations(cfg *config.Config, log *logrus.Logger) error {
	log.Info("Running database migrations...")

	migrationURL := cfg.DatabaseURL
	if !strings.HasPrefix(migrationURL, "pgx5://") {
		migrationURL = strings.Replace(migrationURL, "postgres://", "pgx5://", 1)
	}

	m, err := migrate.New(
		"file://migrations",
		migrationURL,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Database migrations applied successfully")
	return nil
}

func main() {
	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := runMigrations(cfg, log); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	dbpool, err := postgres.NewPostgresDB(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer dbpool.Close()
	log.Info("Successfully connected to PostgreSQL")

	redisClient, err := redisclient.NewRedisClient(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Info("Successfully connected to Redis")

	clock := clockwork.NewRealClock()
	m := metrics.NewMetrics()

	// Хранилище и кэш
	reportRepo := repository.NewReportRepository(dbpool)
	redisCache := repository.NewRedisCache(redisClient, cfg.ReportCacheTTL)

	// Данные окружения: провайдеры без ключа отключены, вместо них синтетика
	envLimiter := environment.NewLimiter(cfg.ProviderMinInterval)
	envClient := environment.NewClient(
		environment.NewOpenWeatherProvider(cfg.WeatherAPIKey, cfg.WeatherURL, cfg.EnvProviderTimeout, clock),
		environment.NewElevationProvider(cfg.ElevationAPIKey, cfg.ElevationURL, cfg.EnvProviderTimeout, clock),
		environment.NewCache[models.Weather](cfg.WeatherCacheTTL, cfg.EnvCacheMaxEntries, clock),
		environment.NewCache[models.Terrain](cfg.TerrainCacheTTL, cfg.EnvCacheMaxEntries, clock),
		envLimiter,
		clock,
		log,
		m,
	)

	// Верификация
	oracleCfg := oracle.DefaultConfig()
	oracleCfg.MinImageScore = cfg.ImageMinScore
	classifier := oracle.NewHuggingFaceClient(
		oracle.Endpoint{URL: cfg.TextClassifierURL, APIKey: cfg.TextClassifierAPIKey},
		oracle.Endpoint{URL: cfg.ImageClassifierURL, APIKey: cfg.ImageClassifierAPIKey},
		oracleCfg,
		cfg.OracleTimeout,
		environment.NewLimiter(cfg.ProviderMinInterval),
	)
	verifyCfg := verification.DefaultConfig()
	verifyCfg.OracleTimeout = cfg.OracleTimeout
	verifier := verification.NewEngine(classifier, classifier, verifyCfg, log, m)

	// Оценка риска
	riskCfg := risk.DefaultConfig()
	riskCfg.GridConcurrency = cfg.RiskGridConcurrency
	riskCfg.MaxGridSize = cfg.RiskGridMaxSize
	riskEngine, err := risk.NewEngine(reportRepo, envClient, riskCfg, clock, log, m)
	if err != nil {
		log.Fatalf("Failed to create risk engine: %v", err)
	}
	riskEngine.WithCache(redisCache, cfg.RiskCacheTTL)

	// Живые подписки
	liveHub := hub.NewHub(cfg.HubSendBuffer, log, m)

	// Вебхуки
	webhookPublisher := webhook.NewRedisWebhookPublisher(redisClient)
	webhookWorker := webhook.NewWebhookWorker(redisClient, log, cfg, clock)
	webhookWorker.Start(ctx)

	deps := service.Deps{
		Repo:        reportRepo,
		Cache:       redisCache,
		Verifier:    verifier,
		Broadcaster: liveHub,
		Webhook:     webhookPublisher,
		Clock:       clock,
		Logger:      log,
		Metrics:     m,
	}

	// Поток событий в Kafka включается списком брокеров
	var kafkaWriter *stream.Writer
	if len(cfg.KafkaBrokers) > 0 {
		kafkaWriter = stream.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		deps.Stream = kafkaWriter
		log.WithField("topic", cfg.KafkaTopic).Info("Kafka event stream enabled")
	}

	reportService := service.NewReportService(deps)

	handler := v1.NewHandler(reportService, riskEngine, liveHub, log, cfg)

	router := gin.Default()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)

	srv := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Error starting HTTP server: %v", err)
		}
	}()
	log.Infof("HTTP server started on port %s", cfg.HTTPPort)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Received shutdown signal, shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	// Shutdown не закрывает захваченные websocket-соединения, закрываем их через хаб
	liveHub.Close()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	cancel()
	if kafkaWriter != nil {
		if err := kafkaWriter.Close(); err != nil {
			log.WithError(err).Error("Failed to close Kafka writer")
		}
	}

	log.Info("Server gracefully stopped")
}
