package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/disaster_alert_system/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisCache_UnavailableServer(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	cache := NewRedisCache(client, time.Minute)
	ctx := context.Background()

	_, err := cache.GetReport(ctx, uuid.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get report:")

	err = cache.SetRiskAssessment(ctx, "1.00,2.00", &models.RiskAssessment{}, time.Minute)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "risk:1.00,2.00")
}
