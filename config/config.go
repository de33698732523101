// Package config loads service configuration from environment variables.
// A .env file is honored when present, so local development does not need
// exported variables. The loaded Config is treated as immutable and handed
// to constructors explicitly; nothing reads configuration ambiently.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

type ServiceConfig struct {
	Name    string
	Version string
	Env     string
	Port    string
}

type LoggingConfig struct {
	Level string
}

type DatabaseConfig struct {
	URL string
}

type AuthConfig struct {
	// BcryptCost is the bcrypt work factor used for new password hashes.
	BcryptCost int
	// MinPasswordLen is the registration password policy threshold.
	MinPasswordLen int
}

type SessionConfig struct {
	// TTL bounds how long an issued session stays valid.
	TTL time.Duration
}

type TracingConfig struct {
	Enabled    bool
	Endpoint   string
	SampleRate float64
}

type ProfilingConfig struct {
	Enabled  bool
	Endpoint string
}

type Config struct {
	Service   ServiceConfig
	Logging   LoggingConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Session   SessionConfig
	Tracing   TracingConfig
	Profiling ProfilingConfig

	ShutdownTimeout     time.Duration
	ReadinessDrainDelay time.Duration
}

// Load reads configuration from the environment, falling back to defaults
// for everything except DATABASE_URL (checked later by Validate).
func Load() *Config {
	// Best-effort: a missing .env is the normal case in deployment.
	_ = godotenv.Load()

	return &Config{
		Service: ServiceConfig{
			Name:    getEnv("SERVICE_NAME", "passport"),
			Version: getEnv("SERVICE_VERSION", "dev"),
			Env:     getEnv("SERVICE_ENV", "development"),
			Port:    getEnv("SERVICE_PORT", "8080"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Auth: AuthConfig{
			BcryptCost:     getEnvInt("BCRYPT_COST", bcrypt.DefaultCost),
			MinPasswordLen: getEnvInt("MIN_PASSWORD_LEN", 6),
		},
		Session: SessionConfig{
			TTL: getEnvDuration("SESSION_TTL", 24*time.Hour),
		},
		Tracing: TracingConfig{
			Enabled:    getEnvBool("TRACING_ENABLED", false),
			Endpoint:   getEnv("OTLP_ENDPOINT", "localhost:4318"),
			SampleRate: getEnvFloat("TRACE_SAMPLE_RATE", 1.0),
		},
		Profiling: ProfilingConfig{
			Enabled:  getEnvBool("PROFILING_ENABLED", false),
			Endpoint: getEnv("PYROSCOPE_ENDPOINT", "http://localhost:4040"),
		},
		ShutdownTimeout:     getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		ReadinessDrainDelay: getEnvDuration("READINESS_DRAIN_DELAY", 0),
	}
}

// Validate checks invariants that would otherwise surface as confusing
// runtime failures deep inside pgx or bcrypt.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d",
			bcrypt.MinCost, bcrypt.MaxCost, c.Auth.BcryptCost)
	}
	if c.Auth.MinPasswordLen < 1 {
		return fmt.Errorf("MIN_PASSWORD_LEN must be positive, got %d", c.Auth.MinPasswordLen)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.Session.TTL)
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return fmt.Errorf("TRACE_SAMPLE_RATE must be within [0,1], got %g", c.Tracing.SampleRate)
	}
	return nil
}

func (c *Config) GetShutdownTimeoutDuration() time.Duration { return c.ShutdownTimeout }

func (c *Config) GetReadinessDrainDelayDuration() time.Duration { return c.ReadinessDrainDelay }

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
