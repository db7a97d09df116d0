package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// CasdoorConfig holds Casdoor identity provider settings
type CasdoorConfig struct {
	Endpoint     string
	ClientID     string
	ClientSecret string
	Cert         string
	Organization string
	Application  string
}

// AdminConfig holds the static admin panel credentials
type AdminConfig struct {
	Email    string
	Password string
}

// SMTPConfig holds outgoing mail settings. An empty Host disables mail
// delivery but the notification sweep still runs.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// KafkaConfig holds event publishing settings. Empty brokers disable the
// Kafka publisher.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// Config holds all application configuration
type Config struct {
	Environment string
	Port        string
	LogLevel    slog.Level

	DatabaseURL string
	RedisURL    string

	Casdoor CasdoorConfig
	Admin   AdminConfig
	SMTP    SMTPConfig
	Kafka   KafkaConfig

	// SweepInterval is how often the notification sweep runs. Zero disables
	// the periodic run.
	SweepInterval time.Duration

	// EducationUnlockDelay time-gates each education stage after its
	// predecessor completes. Zero means immediate availability.
	EducationUnlockDelay time.Duration
}

// LoadConfig reads configuration from environment variables, loading .env
// first when present.
func LoadConfig() (*Config, error) {
	// .env is optional, ignore load errors
	_ = godotenv.Load()

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Port:        getEnv("PORT", "8080"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),

		Casdoor: CasdoorConfig{
			Endpoint:     getEnv("CASDOOR_ENDPOINT", ""),
			ClientID:     getEnv("CASDOOR_CLIENT_ID", ""),
			ClientSecret: getEnv("CASDOOR_CLIENT_SECRET", ""),
			Cert:         getEnv("CASDOOR_CERT", ""),
			Organization: getEnv("CASDOOR_ORGANIZATION", ""),
			Application:  getEnv("CASDOOR_APPLICATION", ""),
		},

		Admin: AdminConfig{
			Email:    getEnv("ADMIN_EMAIL", "admin@eduseat.com"),
			Password: getEnv("ADMIN_PASSWORD", "admin123"),
		},

		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "noreply@eduseat.com"),
		},

		Kafka: KafkaConfig{
			Brokers: splitNonEmpty(getEnv("KAFKA_BROKERS", "")),
			Topic:   getEnv("KAFKA_TOPIC", "edusehat.progress"),
		},

		SweepInterval:        getEnvDuration("NOTIFICATION_SWEEP_INTERVAL", time.Hour),
		EducationUnlockDelay: getEnvDuration("EDUCATION_UNLOCK_DELAY", 0),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func splitNonEmpty(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
