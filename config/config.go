package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL   string
	JWTSecret     string
	JWTExpiration time.Duration
	ServerPort    string
	UploadDir     string
}

func Load() *Config {
	// Missing .env is fine; the environment wins either way.
	_ = godotenv.Load()

	return &Config{
		DatabaseURL:   getEnv("DATABASE_URL", "postgresql://postgres@localhost:5432/fleetdesk"),
		JWTSecret:     getEnv("JWT_SECRET", "your-super-secret-key-change-in-production"),
		JWTExpiration: 24 * time.Hour,
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		UploadDir:     getEnv("UPLOAD_DIR", "uploads"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
