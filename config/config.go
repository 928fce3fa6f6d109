package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the process-start configuration of the data layer.
type Config struct {
	DatabaseURI    string
	DatabaseName   string
	Environment    string
	LogLevel       string
	ConnectTimeout time.Duration
}

// ConfigurationError reports a missing or malformed configuration value. A
// process that receives one from Load should not start serving requests.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("configuration error: %s is not set", e.Key)
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Key, e.Reason)
}

// Load reads configuration from the environment. Outside production a .env
// file is loaded first if present; system environment variables still win.
func Load() (*Config, error) {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// a missing .env is fine, production relies on the real environment
	if env != "production" {
		_ = godotenv.Load()
	}

	cfg := &Config{
		Environment:    env,
		DatabaseURI:    firstNonEmpty(os.Getenv("DATABASE_URI"), os.Getenv("MONGODB_URI"), os.Getenv("DATABASE_URL")),
		DatabaseName:   os.Getenv("DATABASE_NAME"),
		LogLevel:       os.Getenv("LOG_LEVEL"),
		ConnectTimeout: 10 * time.Second,
	}

	if cfg.DatabaseURI == "" {
		return nil, &ConfigurationError{Key: "DATABASE_URI"}
	}

	if cfg.DatabaseName == "" {
		cfg.DatabaseName = "events"
	}

	if s := os.Getenv("DB_CONNECT_TIMEOUT"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil || d <= 0 {
			return nil, &ConfigurationError{Key: "DB_CONNECT_TIMEOUT", Reason: fmt.Sprintf("invalid duration %q", s)}
		}
		cfg.ConnectTimeout = d
	}

	return cfg, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
