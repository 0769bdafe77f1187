package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	// DatabaseURL empty means the server runs on the in-memory stores.
	DatabaseURL  string
	Port         string
	IsProduction bool

	JWTSecret      string
	JWTExpiry      time.Duration
	JWTIssuer      string
	KafkaBroker    string
	RateLimitSpec  string
	AllowedOrigins []string
}

// LoadConfig loads configuration from environment variables, with a .env
// file as an optional local override source.
func LoadConfig() (*Config, error) {
	// Missing .env is fine; the environment alone is enough.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("JWT_EXPIRY", "24h")
	v.SetDefault("JWT_ISSUER", "splitledger")
	v.SetDefault("RATE_LIMIT", "60-M")
	v.SetDefault("ALLOWED_ORIGINS", "*")

	cfg := &Config{
		DatabaseURL:    v.GetString("PGSQL_URL"),
		Port:           v.GetString("PORT"),
		IsProduction:   v.GetBool("IS_PRODUCTION"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		JWTIssuer:      v.GetString("JWT_ISSUER"),
		KafkaBroker:    v.GetString("KAFKA_BROKER"),
		RateLimitSpec:  v.GetString("RATE_LIMIT"),
		AllowedOrigins: v.GetStringSlice("ALLOWED_ORIGINS"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}

	expiry, err := time.ParseDuration(v.GetString("JWT_EXPIRY"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRY: %w", err)
	}
	cfg.JWTExpiry = expiry

	return cfg, nil
}
