package service

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"ticketing/config"
)

// Serve connects to postgres and redis, creates the service's tables and
// runs it until ctx is done.
func Serve(ctx context.Context, cfg config.Config, logger watermill.LoggerAdapter) error {
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	defer func() {
		if err := rdb.Close(); err != nil {
			logger.Error("failed to close redis connection", err, nil)
		}
	}()

	dbConn, err := sqlx.Open("postgres", cfg.PostgresURL)
	if err != nil {
		return fmt.Errorf("connecting to db: %w", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close db connection", err, nil)
		}
	}()

	if err := InitialiseDB(ctx, cfg.Service, dbConn); err != nil {
		return fmt.Errorf("initialising db: %w", err)
	}

	svc, err := New(Deps{
		Config:      cfg,
		DB:          dbConn,
		RedisClient: rdb,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("creating service: %w", err)
	}

	return svc.Run(ctx)
}
