package config_test

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticketing/config"
)

func setEnv(t *testing.T, env map[string]string) {
	t.Helper()

	for _, key := range []string{"POSTGRES_URL", "REDIS_ADDR", "HTTP_ADDR", "LOG_LEVEL", "SHUTDOWN_TIMEOUT"} {
		t.Setenv(key, env[key])
	}
}

func TestLoad_defaults(t *testing.T) {
	setEnv(t, map[string]string{"POSTGRES_URL": "postgres://localhost/db"})

	events, err := config.Load(config.Events)
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/db", events.PostgresURL)
	assert.Equal(t, "localhost:6379", events.RedisAddr)
	assert.Equal(t, ":8080", events.HTTPAddr)
	assert.Equal(t, logrus.InfoLevel, events.LogLevel)
	assert.Equal(t, 5*time.Second, events.ShutdownTimeout)

	orders, err := config.Load(config.Orders)
	require.NoError(t, err)
	assert.Equal(t, ":8081", orders.HTTPAddr)
}

func TestLoad_overrides(t *testing.T) {
	setEnv(t, map[string]string{
		"POSTGRES_URL":     "postgres://localhost/db",
		"REDIS_ADDR":       "redis:6379",
		"HTTP_ADDR":        ":9000",
		"LOG_LEVEL":        "debug",
		"SHUTDOWN_TIMEOUT": "30s",
	})

	cfg, err := config.Load(config.Orders)
	require.NoError(t, err)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, logrus.DebugLevel, cfg.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_errors(t *testing.T) {
	testCases := []struct {
		name    string
		service config.Service
		env     map[string]string
	}{
		{name: "unknown service", service: "payments", env: map[string]string{"POSTGRES_URL": "postgres://localhost/db"}},
		{name: "missing postgres url", service: config.Events},
		{name: "bad log level", service: config.Events, env: map[string]string{"POSTGRES_URL": "postgres://localhost/db", "LOG_LEVEL": "loud"}},
		{name: "bad shutdown timeout", service: config.Events, env: map[string]string{"POSTGRES_URL": "postgres://localhost/db", "SHUTDOWN_TIMEOUT": "soon"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			setEnv(t, tc.env)

			_, err := config.Load(tc.service)
			assert.Error(t, err)
		})
	}
}
