// Package config loads runtime settings from the environment, with an
// optional .env file for local development.
package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime settings for the account service.
type Config struct {
	ServerPort string `mapstructure:"SERVER_PORT"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`

	DocstoreURL        string `mapstructure:"DOCSTORE_URL"`
	DocstoreAPIKey     string `mapstructure:"DOCSTORE_API_KEY"`
	DocstoreServiceKey string `mapstructure:"DOCSTORE_SERVICE_KEY"`

	CustomerServiceURL  string        `mapstructure:"CUSTOMER_SERVICE_URL"`
	CustomerStrictCheck bool          `mapstructure:"CUSTOMER_STRICT_CHECK"`
	CustomerCacheTTL    time.Duration `mapstructure:"CUSTOMER_CACHE_TTL"`

	HTTPTimeout    time.Duration `mapstructure:"HTTP_TIMEOUT"`
	MaxRetries     int           `mapstructure:"MAX_RETRIES"`
	InitialBackoff time.Duration `mapstructure:"INITIAL_BACKOFF"`
	MaxConcurrency int           `mapstructure:"MAX_CONCURRENCY"`

	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// LoadConfig reads configuration from the environment. A .env file in the
// working directory is honored when present but never required.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AddConfigPath(".")
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CUSTOMER_STRICT_CHECK", false)
	v.SetDefault("CUSTOMER_CACHE_TTL", "0s")
	v.SetDefault("HTTP_TIMEOUT", "10s")
	v.SetDefault("MAX_RETRIES", 3)
	v.SetDefault("INITIAL_BACKOFF", "100ms")
	v.SetDefault("MAX_CONCURRENCY", 10)

	// AutomaticEnv does not cover keys absent from the config file;
	// bind each one explicitly so plain env vars always win.
	keys := []string{
		"SERVER_PORT", "LOG_LEVEL",
		"DOCSTORE_URL", "DOCSTORE_API_KEY", "DOCSTORE_SERVICE_KEY",
		"CUSTOMER_SERVICE_URL", "CUSTOMER_STRICT_CHECK", "CUSTOMER_CACHE_TTL",
		"HTTP_TIMEOUT", "MAX_RETRIES", "INITIAL_BACKOFF", "MAX_CONCURRENCY",
		"OTEL_EXPORTER_OTLP_ENDPOINT",
	}
	for _, key := range keys {
		v.BindEnv(key)
	}

	// The .env file is optional.
	_ = v.ReadInConfig()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
