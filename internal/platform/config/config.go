// Package config builds service configuration from environment variables so
// main stays lean. Every knob has a localhost default.
package config

import (
	"os"
	"strings"
)

// Config captures everything cmd/server needs to wire the service.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string
	// DatabaseURL is the PostgreSQL DSN. Empty selects the in-memory
	// stores (local development without a database).
	DatabaseURL string
	// RedisURL enables the school-metadata cache when set.
	RedisURL string
	// KafkaBrokers enables the audit outbox worker when non-empty.
	KafkaBrokers []string
	// PublicBaseURL prefixes rewritten photo/logo paths.
	PublicBaseURL string
	// FrontendBaseURL prefixes QR payload URLs; it is what scanned
	// devices open.
	FrontendBaseURL string
}

// FromEnv reads configuration from CARD_* environment variables.
func FromEnv() Config {
	cfg := Config{
		Addr:            getenv("CARD_ADDR", ":8080"),
		DatabaseURL:     os.Getenv("CARD_DATABASE_URL"),
		RedisURL:        os.Getenv("CARD_REDIS_URL"),
		PublicBaseURL:   getenv("CARD_PUBLIC_BASE_URL", "http://localhost:8080"),
		FrontendBaseURL: getenv("CARD_FRONTEND_BASE_URL", "http://localhost:3000"),
	}
	if brokers := os.Getenv("CARD_KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
