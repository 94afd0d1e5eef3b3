package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/disaster_alert_system/internal/models"
)

const (
	reportKeyPrefix = "report:"
	riskKeyPrefix   = "risk:"
)

// RedisCache хранит сообщения и оценки риска в Redis
type RedisCache struct {
	client    *redis.Client
	reportTTL time.Duration
}

func NewRedisCache(client *redis.Client, reportTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, reportTTL: reportTTL}
}

// GetReport пытается получить сообщение из Redis; промах возвращает nil, nil
func (c *RedisCache) GetReport(ctx context.Context, id uuid.UUID) (*models.IncidentReport, error) {
	report := &models.IncidentReport{}
	found, err := c.get(ctx, reportKeyPrefix+id.String(), report)
	if err != nil || !found {
		return nil, err
	}
	return report, nil
}

// SetReport сохраняет сообщение в Redis
func (c *RedisCache) SetReport(ctx context.Context, report *models.IncidentReport) error {
	return c.set(ctx, reportKeyPrefix+report.ID.String(), report, c.reportTTL)
}

// InvalidateReport удаляет сообщение из кеша
func (c *RedisCache) InvalidateReport(ctx context.Context, id uuid.UUID) error {
	if err := c.client.Del(ctx, reportKeyPrefix+id.String()).Err(); err != nil {
		return fmt.Errorf("failed to invalidate report cache: %w", err)
	}
	return nil
}

// GetRiskAssessment возвращает закешированную оценку риска по ключу координаты
func (c *RedisCache) GetRiskAssessment(ctx context.Context, key string) (*models.RiskAssessment, error) {
	a := &models.RiskAssessment{}
	found, err := c.get(ctx, riskKeyPrefix+key, a)
	if err != nil || !found {
		return nil, err
	}
	return a, nil
}

// SetRiskAssessment сохраняет оценку риска на ttl
func (c *RedisCache) SetRiskAssessment(ctx context.Context, key string, a *models.RiskAssessment, ttl time.Duration) error {
	return c.set(ctx, riskKeyPrefix+key, a, ttl)
}

func (c *RedisCache) get(ctx context.Context, key string, dst any) (bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get %s from cache: %w", key, err)
	}
	if err := json.Unmarshal(val, dst); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s from cache: %w", key, err)
	}
	return true, nil
}

func (c *RedisCache) set(ctx context.Context, key string, v any, ttl time.Duration) error {
	val, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s for cache: %w", key, err)
	}
	if err := c.client.Set(ctx, key, val, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set %s in cache: %w", key, err)
	}
	return nil
}
