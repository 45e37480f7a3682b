package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mis/api/internal/api/handlers"
	"mis/api/internal/api/middleware"
	"mis/api/internal/api/router"
	"mis/api/internal/config"
	"mis/api/internal/core/services"
	"mis/api/internal/db/postgres"
	"mis/api/internal/infrastructure/crypto"
	"mis/api/internal/telemetry"
)

func main() {
	// --- 1. Core Telemetry & Configuration ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)
	logger.Info("🚀 Booting MIS API...")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("FATAL: invalid configuration", "error", err)
		os.Exit(1)
	}

	// 🛡️ The cipher is built before anything listens. A bad key never serves traffic.
	format, err := crypto.ParseFormat(cfg.FieldCipherFormat)
	if err != nil {
		logger.Error("FATAL: field cipher format", "error", err)
		os.Exit(1)
	}
	fieldCipher, err := crypto.NewFromBase64(cfg.EncryptionKey, crypto.WithFormat(format))
	if err != nil {
		logger.Error("FATAL: field cipher key rejected", "error", err)
		os.Exit(1)
	}
	cfg.EncryptionKey = ""

	// --- 2. Outbound Infrastructure ---
	dbPool, err := postgres.NewPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("FATAL: DB failed", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// --- 3. Dependency Injection ---
	householdRepo := postgres.NewHouseholdRepo(dbPool)
	metrics := telemetry.NewMetrics()
	householdService := services.NewHouseholdService(householdRepo, metrics.InstrumentCipher(fieldCipher), logger)

	authMiddleware := middleware.NewAuthMiddleware(services.NewTokenVerifier(cfg.JWTSecret), logger)
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	defer rateLimiter.Stop()

	// --- 4. HTTP Gateway ---
	mux := router.NewRouter(router.RouterConfig{
		AllowedOrigins:   cfg.AllowedOrigins,
		HouseholdHandler: handlers.NewHouseholdHandler(householdService, logger),
		HealthHandler:    handlers.NewHealthHandler(dbPool),
		AuthMiddleware:   authMiddleware,
		RateLimiter:      rateLimiter,
		Metrics:          metrics,
		Logger:           logger,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      65 * time.Second,
	}

	// --- 5. Graceful Exit ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("🌐 MIS API active", "port", cfg.Port, "env", cfg.Environment, "field_format", fieldCipher.Format())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("CRITICAL: Server crashed", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	logger.Info("🛑 Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("ERROR: Forced shutdown", "error", err)
	}
	logger.Info("✅ MIS API shutdown complete")
}
