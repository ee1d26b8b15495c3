package config

import (
	"os"

	_ "github.com/joho/godotenv/autoload"
)

// GetEnv reads an environment variable, falling back when unset or empty.
func GetEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
