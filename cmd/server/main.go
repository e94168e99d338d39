package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	clarityroot "github.com/clarity-ai/clarity"
	"github.com/clarity-ai/clarity/internal/alert"
	"github.com/clarity-ai/clarity/internal/config"
	"github.com/clarity-ai/clarity/internal/domain"
	"github.com/clarity-ai/clarity/internal/handler"
	"github.com/clarity-ai/clarity/internal/repository"
	"github.com/clarity-ai/clarity/internal/service"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Pick the history backend: Postgres when configured, in-memory otherwise
	var store domain.ChatStore
	if cfg.DatabaseURL != "" {
		pool, err := repository.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		migrationsFS, err := fs.Sub(clarityroot.MigrationsFS, "migrations")
		if err != nil {
			slog.Error("failed to load embedded migrations", "error", err)
			os.Exit(1)
		}
		if err := repository.RunMigrations(cfg.DatabaseURL, migrationsFS); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}

		pg := repository.NewPostgres(pool)
		go func() {
			if err := pg.Listen(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("chat change listener stopped", "error", err)
			}
		}()
		store = pg
		slog.Info("using postgres history store")
	} else {
		store = repository.NewMemory()
		slog.Info("using in-memory history store")
	}

	// Initialize the model client
	model, err := service.NewGeminiService(ctx, cfg.GeminiAPIKey, cfg.TextModel, cfg.ImageModel, cfg.SpeechModel)
	if err != nil {
		slog.Error("failed to create model client", "error", err)
		os.Exit(1)
	}

	// Initialize services
	historyService := service.NewHistoryService(store)
	settingsService := service.NewSettingsService(store)
	orchestrator := service.NewOrchestrator(model)
	webpageService := service.NewWebpageService()
	capabilityService := service.NewCapabilityService(model, webpageService)

	// Initialize ops alerting (disabled when unconfigured)
	alerts, err := alert.NewNotifier(cfg.AlertBotToken, cfg.AlertChatID)
	if err != nil {
		slog.Error("failed to create alert notifier", "error", err)
		os.Exit(1)
	}

	// Wire the event hub into history changes and view-switch signals
	hub := handler.NewHub()
	historyService.Subscribe(hub.ChatChanged)

	viewDelay := time.Duration(cfg.ViewSwitchDelayMs) * time.Millisecond
	dispatcher := service.NewDispatcher(historyService, model, viewDelay, hub.ViewSwitch)

	h := handler.New(handler.Deps{
		History:      historyService,
		Settings:     settingsService,
		Orchestrator: orchestrator,
		Capabilities: capabilityService,
		Dispatcher:   dispatcher,
		Alerts:       alerts,
		Hub:          hub,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           h.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "error", err)
	}
	slog.Info("server stopped gracefully")
}
