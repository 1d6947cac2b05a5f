package main

import (
	"context"
	"fmt"

	"flightalert-service/internal/app"
	"flightalert-service/internal/infrastructure/config"
	"flightalert-service/pkg/logger"
)

// withApp wires the service, runs fn and releases the stores
func withApp(ctx context.Context, fn func(a *app.App) error) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log := logger.NewLogger(cfg.LogLevel)
	defer log.Sync()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	return fn(a)
}
