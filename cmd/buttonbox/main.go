package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"assistive.app/buttons/internal/buttonbox"
	"assistive.app/buttons/internal/config"
	"assistive.app/buttons/internal/logging"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadButtonBox()

	logger, err := logging.New(logging.Options{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: "buttonbox",
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := buttonbox.NewClient(cfg.ServerURL, cfg.DeviceID, cfg.UserID, cfg.Language, logger)
	poller := buttonbox.NewPoller(buttonbox.SysfsButtons(cfg.GPIORoot), client.HandlePress, logger)

	logger.Info("Device ready",
		zap.String("device_id", cfg.DeviceID),
		zap.String("server_url", cfg.ServerURL),
		zap.String("gpio_root", cfg.GPIORoot),
	)

	if err := poller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Poller stopped", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("Device stopped")
}
