package config

import (
	"errors"
	"os"
	"time"
)

// Config holds process-wide settings. The signing secret and token lifetime
// are loaded once at startup and treated as immutable afterwards.
type Config struct {
	Port          string
	DatabaseURL   string
	RedisAddr     string
	JWTSecret     string
	TokenLifetime time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnvOrDefault("PORT", "8080"),
		DatabaseURL: getEnvOrDefault("DATABASE_URL", ""),
		RedisAddr:   getEnvOrDefault("REDIS_ADDR", ""),
		JWTSecret:   getEnvOrDefault("JWT_SECRET", "dev"),
	}

	lifetime := getEnvOrDefault("TOKEN_LIFETIME", "24h")
	parsed, err := time.ParseDuration(lifetime)
	if err != nil {
		return nil, errors.New("invalid TOKEN_LIFETIME: " + lifetime)
	}
	cfg.TokenLifetime = parsed

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if cfg.TokenLifetime <= 0 {
		return errors.New("TOKEN_LIFETIME must be positive")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
