package config

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds all configuration for the application
type Config struct {
	// HTTP Server Configuration
	HTTPPort int

	// Database Configuration
	DatabaseURL string

	// Collaborator endpoints
	NotificationServiceURL string
	DashboardServiceURL    string
	NotifyTimeoutSeconds   int

	// Emergency services directory file (JSON or YAML).
	// Empty means use the built-in defaults.
	EmergencyServicesFile string

	// Detection pipeline tuning
	ProcessIntervalMinutes int
	ReportWindowHours      int
	MinAnomalySamples      int
	MaxClusterDistanceKm   float64
	MinClusterSize         int

	// Redis run lock (empty address disables the lock)
	RedisAddr     string
	RedisPassword string

	// Slack notifications (empty token disables them)
	SlackBotToken      string
	SlackAlertsChannel string

	// Authentication Configuration
	AdminUsername  string
	AdminPassword  string
	JWTSecret      string
	JWTExpiryHours int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}

	// HTTP Port for API server
	cfg.HTTPPort = getEnvAsIntOrDefault("HTTP_PORT", 8080)

	// Database: SQLite file by default, postgres:// DSN for production
	cfg.DatabaseURL = getEnvOrDefault("DATABASE_URL", "crisis.db")

	// Collaborator endpoints
	cfg.NotificationServiceURL = os.Getenv("NOTIFICATION_SERVICE_URL")
	cfg.DashboardServiceURL = os.Getenv("DASHBOARD_SERVICE_URL")
	cfg.NotifyTimeoutSeconds = getEnvAsIntOrDefault("NOTIFY_TIMEOUT_SECONDS", 5)

	cfg.EmergencyServicesFile = getEnvOrDefault("EMERGENCY_SERVICES_FILE", "data/emergency_services.json")

	// Detection pipeline tuning
	cfg.ProcessIntervalMinutes = getEnvAsIntOrDefault("PROCESS_INTERVAL_MINUTES", 15)
	cfg.ReportWindowHours = getEnvAsIntOrDefault("REPORT_WINDOW_HOURS", 24)
	cfg.MinAnomalySamples = getEnvAsIntOrDefault("MIN_ANOMALY_SAMPLES", 10)
	cfg.MaxClusterDistanceKm = getEnvAsFloatOrDefault("MAX_CLUSTER_DISTANCE_KM", 1.0)
	cfg.MinClusterSize = getEnvAsIntOrDefault("MIN_CLUSTER_SIZE", 3)

	// Redis run lock
	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")

	// Slack notifications
	cfg.SlackBotToken = os.Getenv("SLACK_BOT_TOKEN")
	cfg.SlackAlertsChannel = getEnvOrDefault("SLACK_ALERTS_CHANNEL", "#crisis-alerts")

	// Authentication configuration
	cfg.AdminUsername = getEnvOrDefault("ADMIN_USERNAME", "admin")
	cfg.AdminPassword = os.Getenv("ADMIN_PASSWORD") // No default - must be set
	cfg.JWTExpiryHours = getEnvAsIntOrDefault("JWT_EXPIRY_HOURS", 24)

	// JWT Secret: auto-generate and persist if not provided via env var
	cfg.JWTSecret = loadOrGenerateJWTSecret(getEnvOrDefault("JWT_SECRET_FILE", "/var/lib/crisis-engine/.jwt_secret"))

	return cfg, nil
}

// loadOrGenerateJWTSecret loads JWT secret from file or generates a new one
func loadOrGenerateJWTSecret(secretPath string) string {
	// First check if JWT_SECRET env var is set (allows override)
	if envSecret := os.Getenv("JWT_SECRET"); envSecret != "" {
		log.Printf("Using JWT secret from environment variable")
		return envSecret
	}

	// Try to load existing secret from file
	if data, err := os.ReadFile(secretPath); err == nil {
		secret := strings.TrimSpace(string(data))
		if secret != "" {
			log.Printf("Loaded JWT secret from %s", secretPath)
			return secret
		}
	}

	// Generate new secret
	secret := generateSecureSecret(32) // 256 bits

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(secretPath), 0755); err != nil {
		log.Printf("Warning: Could not create directory for JWT secret: %v", err)
		return secret
	}

	// Save secret to file
	if err := os.WriteFile(secretPath, []byte(secret), 0600); err != nil {
		log.Printf("Warning: Could not save JWT secret to file: %v", err)
	} else {
		log.Printf("Generated and saved new JWT secret to %s", secretPath)
	}

	return secret
}

// generateSecureSecret generates a cryptographically secure random string
func generateSecureSecret(bytes int) string {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		// Fallback to a less secure but functional default (should never happen)
		log.Printf("Warning: Could not generate secure random bytes: %v", err)
		return "fallback-insecure-secret-please-set-jwt-secret-env"
	}
	return hex.EncodeToString(b)
}

// getEnvOrDefault returns the value of an environment variable or a default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault returns the value of an environment variable as an integer or a default value
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvAsFloatOrDefault returns the value of an environment variable as a float or a default value
func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
