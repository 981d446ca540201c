package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds the runtime configuration loaded from the environment.
type Config struct {
	Port          string
	MongoURI      string
	MongoDB       string
	JWTSecret     string
	TokenExpiry   time.Duration
	ContentDir    string
	ClassifierURL string
	// GenerationSpec is the cron spec driving the epoch scheduler.
	GenerationSpec string
	// ClaimWindow is the per-user claim window measured from assigned_at.
	ClaimWindow time.Duration
}

// LoadConfig reads configuration from .env / environment variables.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Warn("No .env file found, relying on environment variables")
	}

	return &Config{
		Port:           getEnv("PORT", "8080"),
		MongoURI:       getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:        getEnv("MONGO_DB", "unfreeze"),
		JWTSecret:      getEnv("JWT_SECRET", "dev-secret-change-me"),
		TokenExpiry:    getDurationEnv("TOKEN_EXPIRY_HOURS", 24) * time.Hour,
		ContentDir:     getEnv("CONTENT_DIR", "./assets"),
		ClassifierURL:  getEnv("CLASSIFIER_URL", "http://localhost:8001"),
		GenerationSpec: getEnv("GENERATION_SPEC", "@every 15m"),
		ClaimWindow:    getDurationEnv("CLAIM_WINDOW_SECONDS", 300) * time.Second,
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback int64) time.Duration {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil && n > 0 {
			return time.Duration(n)
		}
		logrus.WithField("key", key).Warn("Invalid duration value, using default")
	}
	return time.Duration(fallback)
}
