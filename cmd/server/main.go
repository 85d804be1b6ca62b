package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"assistive.app/buttons/internal/api"
	"assistive.app/buttons/internal/catalog"
	"assistive.app/buttons/internal/config"
	"assistive.app/buttons/internal/core"
	"assistive.app/buttons/internal/logging"
	"assistive.app/buttons/internal/notify"
	"assistive.app/buttons/internal/speech"
	"assistive.app/buttons/internal/store"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load configuration
	config.LoadConfig()
	cfg := &config.AppConfig

	logger, err := logging.New(logging.Options{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: "assistive-buttons",
		File:        cfg.LogFile,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = randomSecret()
		logger.Warn("JWT_SECRET not set, sessions will not survive a restart")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Storage
	events, err := openEventLog(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize event log", zap.Error(err))
	}
	defer events.Close()

	accounts := store.NewAccountStore(cfg.DataDir, logger)
	devices := store.NewDeviceStore(cfg.DataDir, logger)

	// Catalog
	var cat *catalog.Catalog
	if cfg.CatalogFile != "" {
		cat = catalog.Open(cfg.CatalogFile, logger)
	} else {
		cat = catalog.New(logger)
	}

	// Speech
	var provider speech.Synthesizer = speech.Unavailable{}
	if cfg.GoogleTTSAPIKey != "" {
		cloud, err := speech.NewCloudTTS(ctx, cfg.GoogleTTSAPIKey, logger)
		if err != nil {
			logger.Error("Failed to initialize cloud TTS, continuing without audio", zap.Error(err))
		} else {
			provider = cloud
		}
	}
	var fallback speech.Speaker
	if cfg.LocalTTS {
		fallback = speech.NewLocalSpeaker(logger)
	}
	synth := speech.NewBounded(provider, fallback, cfg.TTSTimeout, logger)

	// Notifications
	var notifier notify.Notifier = notify.Noop{}
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != "" {
		notifier = notify.NewTelegram(cfg.TelegramAPIURL, cfg.TelegramBotToken, cfg.TelegramChatID, logger)
	} else {
		logger.Info("Telegram not configured, notifications disabled")
	}

	triggerService := core.NewTriggerService(cat, synth, core.NewHistory(cfg.HistoryLimit), events, logger)
	accountService := core.NewAccountService(accounts, logger)
	deviceService := core.NewDeviceService(devices, logger)

	// Initialize API Handler and Router
	apiHandler := api.NewAPIHandler(triggerService, accountService, deviceService, cat, notifier, logger)
	router := api.NewRouter(apiHandler)

	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)
	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.TTSTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting server", zap.String("addr", serverAddr), zap.String("event_store", cfg.EventStore))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("could not listen on %s: %w", serverAddr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("Server exiting gracefully")
}

func openEventLog(cfg *config.Config, logger *zap.Logger) (store.EventLog, error) {
	switch cfg.EventStore {
	case "sqlite":
		path := cfg.SQLitePath
		if !filepath.IsAbs(path) {
			path = filepath.Join(cfg.DataDir, path)
		}
		return store.NewSQLiteEventLog(path)
	case "json", "":
		return store.NewJSONEventLog(cfg.DataDir, logger), nil
	default:
		return nil, fmt.Errorf("unknown EVENT_STORE %q", cfg.EventStore)
	}
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
