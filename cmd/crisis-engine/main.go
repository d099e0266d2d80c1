package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/echo-project/crisis-engine/internal/config"
	"github.com/echo-project/crisis-engine/internal/database"
	"github.com/echo-project/crisis-engine/internal/detect"
	"github.com/echo-project/crisis-engine/internal/directory"
	"github.com/echo-project/crisis-engine/internal/handlers"
	"github.com/echo-project/crisis-engine/internal/jobs"
	"github.com/echo-project/crisis-engine/internal/middleware"
	"github.com/echo-project/crisis-engine/internal/notify"
	"github.com/echo-project/crisis-engine/internal/runlock"
	"github.com/echo-project/crisis-engine/internal/services"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm/logger"
)

func main() {
	// Load .env file if it exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found or error loading it (this is fine if using environment variables): %v", err)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting crisis engine...")

	// Initialize JWT authentication middleware
	if cfg.AdminPassword == "" {
		log.Fatalf("ADMIN_PASSWORD is not set")
	}

	// Hash the admin password
	passwordHash, err := middleware.HashPassword(cfg.AdminPassword)
	if err != nil {
		log.Fatalf("Failed to hash admin password: %v", err)
	}

	jwtAuthMiddleware := middleware.NewJWTAuthMiddleware(&middleware.JWTAuthConfig{
		Enabled:           true,
		AdminUsername:     cfg.AdminUsername,
		AdminPasswordHash: passwordHash,
		JWTSecret:         cfg.JWTSecret,
		JWTExpiryHours:    cfg.JWTExpiryHours,
		SkipPaths: []string{
			"/health",
			"/metrics",
			"/auth/login",
			"/ws/*",
		},
	})
	log.Printf("JWT authentication enabled for user: %s", cfg.AdminUsername)

	// Initialize database connection
	db, err := database.Connect(cfg.DatabaseURL, logger.Warn)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Printf("Database connection established")

	// Run database migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Load the emergency services directory
	dir := directory.Load(cfg.EmergencyServicesFile)
	log.Printf("Emergency services directory loaded: %d categories", len(dir.Categories()))

	// Outbound collaborators. Each one is optional: an unset URL or
	// token disables that channel.
	notifyTimeout := time.Duration(cfg.NotifyTimeoutSeconds) * time.Second

	var emergencyNotifier services.EmergencyNotifier
	if cfg.NotificationServiceURL != "" {
		emergencyNotifier = notify.NewEmergencyNotifier(cfg.NotificationServiceURL, notifyTimeout)
		log.Printf("Emergency notification service: %s", cfg.NotificationServiceURL)
	} else {
		log.Printf("NOTIFICATION_SERVICE_URL not set, emergency notifications disabled")
	}

	var dashboardPublisher services.DashboardPublisher
	if cfg.DashboardServiceURL != "" {
		dashboardPublisher = notify.NewDashboardPublisher(cfg.DashboardServiceURL, notifyTimeout)
		log.Printf("Dashboard service: %s", cfg.DashboardServiceURL)
	} else {
		log.Printf("DASHBOARD_SERVICE_URL not set, dashboard updates disabled")
	}

	var slackPoster services.SlackPoster
	if sn := notify.NewSlackNotifier(cfg.SlackBotToken, cfg.SlackAlertsChannel); sn != nil {
		slackPoster = sn
		log.Printf("Slack notifications enabled for channel %s", cfg.SlackAlertsChannel)
	} else {
		log.Printf("SLACK_BOT_TOKEN not set, Slack notifications disabled")
	}

	// WebSocket alert feed
	alertFeed := handlers.NewAlertFeedHandler()

	// Core services
	escalationService := services.NewEscalationService(db, dir, emergencyNotifier, dashboardPublisher, slackPoster, alertFeed)

	scorer := detect.NewSeverityScorer()
	incidentService := services.NewIncidentService(db, scorer, escalationService)
	lifecycleService := services.NewLifecycleService(db)

	detector := detect.NewOutlierDetector()
	detector.MinSamples = cfg.MinAnomalySamples

	// Redis run lock keeps concurrent replicas from double-processing
	lockTTL := 15 * time.Minute
	if cfg.ProcessIntervalMinutes > 0 {
		lockTTL = time.Duration(cfg.ProcessIntervalMinutes) * time.Minute
	}
	runLock, err := runlock.New(cfg.RedisAddr, cfg.RedisPassword, lockTTL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis at %s: %v", cfg.RedisAddr, err)
	}
	if runLock != nil {
		log.Printf("Redis run lock enabled (%s)", cfg.RedisAddr)
	} else {
		log.Printf("REDIS_ADDR not set, running without a distributed run lock")
	}

	processor := jobs.NewReportProcessor(
		db,
		detector,
		incidentService,
		runLock,
		cfg.ReportWindowHours,
		cfg.MaxClusterDistanceKm,
		cfg.MinClusterSize,
	)

	// Handlers
	httpHandler := handlers.NewHTTPHandler()
	apiHandler := handlers.NewAPIHandler(incidentService, lifecycleService, processor)
	authHandler := handlers.NewAuthHandler(jwtAuthMiddleware)

	// Set up HTTP server routes
	mux := http.NewServeMux()
	httpHandler.SetupRoutes(mux)
	apiHandler.SetupRoutes(mux)
	authHandler.SetupRoutes(mux)
	alertFeed.SetupRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	// Wrap all routes with CORS middleware first, then JWT authentication
	corsMiddleware := middleware.NewCORSMiddleware() // Allow all origins
	handler := corsMiddleware.Wrap(jwtAuthMiddleware.Wrap(mux))
	handler = middleware.RequestIDMiddleware(handler)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: handler,
	}

	go func() {
		log.Printf("Starting HTTP server on port %d", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	// Start the periodic processing loop
	stop := make(chan struct{})
	if cfg.ProcessIntervalMinutes > 0 {
		interval := time.Duration(cfg.ProcessIntervalMinutes) * time.Minute
		go processor.Start(interval, stop)
		log.Printf("Report processing runs every %d minutes", cfg.ProcessIntervalMinutes)
	} else {
		log.Println("Periodic report processing disabled, use POST /api/process")
	}

	log.Printf("Health check endpoint: http://localhost:%d/health", cfg.HTTPPort)
	log.Printf("API base URL: http://localhost:%d/api", cfg.HTTPPort)
	log.Printf("Alert feed endpoint: ws://localhost:%d/ws/alerts", cfg.HTTPPort)

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Received shutdown signal, cleaning up...")
	close(stop)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	}

	log.Println("Shutdown complete")
}
