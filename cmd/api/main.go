package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/BradenHooton/vigil/internal/auth"
	"github.com/BradenHooton/vigil/internal/background"
	"github.com/BradenHooton/vigil/internal/cache"
	"github.com/BradenHooton/vigil/internal/config"
	"github.com/BradenHooton/vigil/internal/database"
	"github.com/BradenHooton/vigil/internal/handlers"
	middlewareCustom "github.com/BradenHooton/vigil/internal/middleware"
	"github.com/BradenHooton/vigil/internal/repositories"
	"github.com/BradenHooton/vigil/internal/routes"
	"github.com/BradenHooton/vigil/internal/services"
	"github.com/BradenHooton/vigil/pkg/breach"
	"github.com/BradenHooton/vigil/pkg/email"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	attemptRepo := repositories.NewLoginAttemptRepository(db)
	fingerprintRepo := repositories.NewFingerprintRepository(db)
	linkRepo := repositories.NewLinkRepository(db)
	banRepo := repositories.NewBanRepository(db)
	eventRepo := repositories.NewSecurityEventRepository(db)

	// Optional ban-status cache
	var banCache services.BanStatusCache
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		banCache = cache.NewBanStatusCache(redisClient, cfg.Redis.BanStatusTTL, logger)
		logger.Info("ban status cache enabled", slog.String("addr", cfg.Redis.Addr))
	}

	// Optional SES alerting
	var alerter services.AlertService = services.NoopAlertService{}
	if cfg.Alerts.Enabled {
		sesAlerter, err := services.NewAWSSESAlertService(
			cfg.Alerts.AWSRegion,
			cfg.Alerts.FromAddress,
			cfg.Alerts.ToAddresses,
			logger,
		)
		if err != nil {
			logger.Error("failed to initialize alert service", slog.Any("error", err))
			os.Exit(1)
		}
		alerter = sesAlerter
	}

	// Initialize services
	eventService := services.NewSecurityEventService(eventRepo, logger)
	banService := services.NewBanService(banRepo, userRepo, eventService, banCache, alerter, logger)
	correlationService := services.NewCorrelationService(
		attemptRepo, fingerprintRepo, linkRepo, eventService, alerter, logger)

	correlator := background.NewCorrelator(
		correlationService, logger, cfg.Correlation.QueueSize, cfg.Correlation.WorkerCount)

	anonymizer := services.NewAnonymizer(cfg.Security.IPHashSecret)
	recorderService := services.NewRecorderService(
		attemptRepo, fingerprintRepo, correlator, anonymizer, logger)

	// Credential validation dependencies
	breachClient := breach.NewClient(cfg.Validation.BreachBaseURL, cfg.Validation.BreachTimeout, logger)
	emailOpts := email.DefaultOptions()
	emailOpts.MXTimeout = cfg.Validation.MXLookupTimeout

	// Service token manager
	tokenManager := auth.NewTokenManager(cfg.Security.ServiceTokenSecret, cfg.Security.ServiceTokenExpiry)

	// Initialize handlers
	credentialsHandler := handlers.NewCredentialsHandler(breachClient, emailOpts)
	loginsHandler := handlers.NewLoginsHandler(recorderService)
	usersHandler := handlers.NewUsersHandler(banService)
	adminHandler := handlers.NewAdminHandler(banService, correlationService, eventService)

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middlewareCustom.ClientIP(cfg.Server.TrustedProxies))
	router.Use(middlewareCustom.SecurityHeaders(cfg.Server.Env))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// Register routes
	routes.RegisterRoutes(router, tokenManager, credentialsHandler, loginsHandler, usersHandler, adminHandler)

	// Health check with database
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","database":"up"}`))
	})

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start background workers
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	correlator.Start(workerCtx)

	sweeper := background.NewSweeper(
		banRepo, attemptRepo, banCache, logger,
		cfg.Correlation.SweepInterval, cfg.Correlation.LoginRetention)
	go sweeper.Start(workerCtx)

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	sweeper.Stop()
	workerCancel()
	correlator.Wait()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}
