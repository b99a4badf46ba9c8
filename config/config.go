package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Service names a deployable.
type Service string

const (
	Events Service = "events"
	Orders Service = "orders"
)

var defaultHTTPAddrs = map[Service]string{
	Events: ":8080",
	Orders: ":8081",
}

type Config struct {
	Service         Service
	PostgresURL     string
	RedisAddr       string
	HTTPAddr        string
	LogLevel        logrus.Level
	ShutdownTimeout time.Duration
}

// Load reads the configuration of service from the environment, after
// loading a .env file from the working directory if there is one.
func Load(service Service) (Config, error) {
	defaultHTTPAddr, ok := defaultHTTPAddrs[service]
	if !ok {
		return Config{}, fmt.Errorf("unknown service %q", service)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}

	cfg := Config{
		Service:     service,
		PostgresURL: os.Getenv("POSTGRES_URL"),
		RedisAddr:   getString("REDIS_ADDR", "localhost:6379"),
		HTTPAddr:    getString("HTTP_ADDR", defaultHTTPAddr),
	}

	if cfg.PostgresURL == "" {
		return Config{}, errors.New("POSTGRES_URL is required")
	}

	var err error
	cfg.LogLevel, err = logrus.ParseLevel(getString("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, fmt.Errorf("parsing LOG_LEVEL: %w", err)
	}

	cfg.ShutdownTimeout, err = time.ParseDuration(getString("SHUTDOWN_TIMEOUT", "5s"))
	if err != nil {
		return Config{}, fmt.Errorf("parsing SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
