package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/sirupsen/logrus"

	"ticketing/config"
	"ticketing/service"
)

func main() {
	cfg, err := config.Load(config.Orders)
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}

	log.Init(cfg.LogLevel)
	logger := watermill.NewStdLogger(cfg.LogLevel == logrus.DebugLevel, cfg.LogLevel == logrus.TraceLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := service.Serve(ctx, cfg, logger); err != nil {
		logger.Error("failed to run", err, nil)
		os.Exit(1)
	}
}
