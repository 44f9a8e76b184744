package config

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"gallery.GO/core/logger"
)

func LoadEnv() {
	// If .env is missing, ignore error (env vars can be set by other means)
	if err := godotenv.Load(); err == nil {
		logger.Default().Debug(context.Background(), "environment loaded from .env")
	}
}

// GetEnv returns the value of key or def when unset.
func GetEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}
