//go:build integration

package integration

import (
	"context"
	"os"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/adeyela/reviewvault/backend/internal/infrastructure/clients/postgres"
	"github.com/adeyela/reviewvault/backend/internal/infrastructure/clients/redis"
	"github.com/adeyela/reviewvault/backend/pkg/config"
)

const createWidgetsTable = `
CREATE TABLE IF NOT EXISTS widgets (
	widget_id          TEXT PRIMARY KEY,
	place_id           TEXT NOT NULL DEFAULT '',
	source_kind        TEXT NOT NULL DEFAULT '',
	reviews            JSONB NOT NULL DEFAULT '[]',
	rating             DOUBLE PRECISION NOT NULL DEFAULT 0,
	user_ratings_total INTEGER NOT NULL DEFAULT 0,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
	last_updated       TIMESTAMPTZ NOT NULL DEFAULT now()
)`

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func newTestPostgresClient(t *testing.T) *postgres.Client {
	t.Helper()

	cfg := &config.DatabaseConfig{
		Host:     getEnv("TEST_DB_HOST", "localhost"),
		Port:     getEnvAsInt("TEST_DB_PORT", 5432),
		User:     getEnv("TEST_DB_USER", "postgres"),
		Password: getEnv("TEST_DB_PASSWORD", "postgres"),
		Database: getEnv("TEST_DB_NAME", "review_vault_test"),
		SSLMode:  getEnv("TEST_DB_SSLMODE", "disable"),
	}

	client, err := postgres.NewClient(cfg)
	require.NoError(t, err, "Failed to create postgres client")

	_, err = client.DB().ExecContext(context.Background(), createWidgetsTable)
	require.NoError(t, err, "Failed to ensure widgets table")

	return client
}

func maybeTestRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	cfg := &config.RedisConfig{
		Host:     getEnv("TEST_REDIS_HOST", "localhost"),
		Port:     getEnvAsInt("TEST_REDIS_PORT", 6379),
		Password: getEnv("TEST_REDIS_PASSWORD", ""),
		DB:       getEnvAsInt("TEST_REDIS_DB", 0),
	}

	client, err := redis.NewClient(cfg)
	if err != nil {
		t.Logf("Redis unavailable: %v", err)
		return nil
	}
	return client
}

func truncateWidgets(t *testing.T, client *postgres.Client) {
	t.Helper()

	_, err := client.DB().ExecContext(context.Background(), "TRUNCATE TABLE widgets")
	require.NoError(t, err, "Failed to truncate widgets table")
}
