package config // package config loads application configuration from environment variables

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values.  Every field has a default,
// so the service starts with no environment at all and listens on
// 0.0.0.0:8000.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Host           string // interface to bind
	Port           string // HTTP port to listen on
	LogLevel       string // zerolog level name
	MetricsEnabled bool   // expose /metrics and record request metrics
	Cache          CacheConfig
	Events         EventsConfig
}

// Load reads an optional .env file and then the process environment.  Values
// already present in the environment win over the file.
func Load() Config {
	_ = godotenv.Load() // a missing .env is the normal case

	return Config{
		Env:            getenv("APP_ENV", "dev"),
		Host:           getenv("APP_HOST", "0.0.0.0"),
		Port:           getenv("APP_PORT", "8000"),
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		MetricsEnabled: envBool("METRICS_ENABLED", true),
		Cache:          LoadCacheConfig(),
		Events:         LoadEventsConfig(),
	}
}

// Addr is the host:port pair the server binds to.
func (c Config) Addr() string {
	return c.Host + ":" + c.Port
}

// IsDev reports whether the human-friendly console logger should be used.
func (c Config) IsDev() bool {
	return c.Env == "dev" || c.Env == "development"
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
