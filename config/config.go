package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var (
	PORT       string
	DB_URL     string
	JWT_SECRET string

	APP_URL string

	FORM_GATEWAY_URL           string
	FORM_GATEWAY_MERCHANT_CODE string
	FORM_GATEWAY_SECRET        string

	STRIPE_SECRET_KEY     string
	STRIPE_WEBHOOK_SECRET string

	INTENT_TTL_MINUTES     int
	SWEEP_INTERVAL_SECONDS int
)

func LoadEnv() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found. Using system environment variables.")
	}

	PORT = getEnv("PORT", "8080")
	DB_URL = mustEnv("DB_URL")
	JWT_SECRET = mustEnv("JWT_SECRET")

	APP_URL = getEnv("APP_URL", "http://localhost:5173")

	FORM_GATEWAY_URL = mustEnv("FORM_GATEWAY_URL")
	FORM_GATEWAY_MERCHANT_CODE = mustEnv("FORM_GATEWAY_MERCHANT_CODE")
	FORM_GATEWAY_SECRET = mustEnv("FORM_GATEWAY_SECRET")

	STRIPE_SECRET_KEY = mustEnv("STRIPE_SECRET_KEY")
	STRIPE_WEBHOOK_SECRET = mustEnv("STRIPE_WEBHOOK_SECRET")

	INTENT_TTL_MINUTES = getEnvInt("INTENT_TTL_MINUTES", 30)
	SWEEP_INTERVAL_SECONDS = getEnvInt("SWEEP_INTERVAL_SECONDS", 60)
}

func mustEnv(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("Missing required environment variable: %s", key)
	}
	return v
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Fatalf("Environment variable %s must be an integer, got %q", key, value)
	}
	return n
}
