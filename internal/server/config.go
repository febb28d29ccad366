// Package server provides configuration helpers that define runtime defaults,
// environment overrides and rate-limiting parameters for the snake server.
package server

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAddr           = ":14300"
	defaultHTTPAddr       = ":14380"
	defaultMaxConnections = 8
	defaultTickInterval   = 50 * time.Millisecond
	defaultSendBuffer     = 64
	defaultWriteTimeout   = 10 * time.Second
	defaultRateBurst      = 20
	defaultRateInterval   = time.Second

	// maxConnectionID is the largest id a connection can hold; 0xFF is the
	// Info terminator and 0 is never assigned.
	maxConnectionID = 254
)

// RateLimitConfig defines the parameters for per-connection frame rate limiting.
type RateLimitConfig struct {
	Burst          int
	RefillInterval time.Duration
}

// Config holds the server configuration settings.
type Config struct {
	// Addr is the TCP address the game listens on.
	Addr string
	// HTTPAddr serves health, stats and the WebSocket gateway. Empty disables it.
	HTTPAddr       string
	MaxConnections int
	TickInterval   time.Duration
	// Seed seeds the world's random source. Zero seeds from the clock.
	Seed           int64
	SendBuffer     int
	WriteTimeout   time.Duration
	AllowedOrigins []string
	RateLimit      RateLimitConfig
}

func defaultConfig() Config {
	return Config{
		Addr:           defaultAddr,
		HTTPAddr:       defaultHTTPAddr,
		MaxConnections: defaultMaxConnections,
		TickInterval:   defaultTickInterval,
		SendBuffer:     defaultSendBuffer,
		WriteTimeout:   defaultWriteTimeout,
		AllowedOrigins: []string{
			"http://localhost:14380",
		},
		RateLimit: RateLimitConfig{
			Burst:          defaultRateBurst,
			RefillInterval: defaultRateInterval,
		},
	}
}

// sanitizeConfig replaces out-of-range values with defaults and returns a
// copy that shares no slices with cfg.
func sanitizeConfig(cfg Config) Config {
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}

	if cfg.MaxConnections <= 0 || cfg.MaxConnections > maxConnectionID {
		cfg.MaxConnections = defaultMaxConnections
	}

	if cfg.TickInterval <= 0 {
		cfg.TickInterval = defaultTickInterval
	}

	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = defaultSendBuffer
	}

	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}

	if cfg.RateLimit.Burst <= 0 {
		cfg.RateLimit.Burst = defaultRateBurst
	}

	if cfg.RateLimit.RefillInterval <= 0 {
		cfg.RateLimit.RefillInterval = defaultRateInterval
	}

	cfg.AllowedOrigins = append([]string(nil), cfg.AllowedOrigins...)
	return cfg
}

// NewConfig creates a Config instance populated with default values for all settings.
func NewConfig() *Config {
	cfg := defaultConfig()
	return &cfg
}

// NewConfigFromEnv creates a Config instance from environment variables,
// after loading a .env file from the working directory if one exists.
// Falls back to default values for variables that are unset or invalid.
func NewConfigFromEnv() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Could not load .env file: %v", err)
	}

	cfg := defaultConfig()

	if addr := os.Getenv("SNAKE_ADDR"); addr != "" {
		cfg.Addr = addr
	}

	// An explicitly empty SNAKE_HTTP_ADDR disables the HTTP side-car.
	if httpAddr, ok := os.LookupEnv("SNAKE_HTTP_ADDR"); ok {
		cfg.HTTPAddr = strings.TrimSpace(httpAddr)
	}

	if maxConns := os.Getenv("SNAKE_MAX_CONNECTIONS"); maxConns != "" {
		cfg.MaxConnections = parseIntValue(maxConns, cfg.MaxConnections)
	}

	if tick := os.Getenv("SNAKE_TICK_INTERVAL_MS"); tick != "" {
		cfg.TickInterval = parseMillis(tick, cfg.TickInterval)
	}

	if seed := os.Getenv("SNAKE_SEED"); seed != "" {
		cfg.Seed = parseSeed(seed, cfg.Seed)
	}

	if buf := os.Getenv("SNAKE_SEND_BUFFER"); buf != "" {
		cfg.SendBuffer = parseIntValue(buf, cfg.SendBuffer)
	}

	if timeout := os.Getenv("SNAKE_WRITE_TIMEOUT_MS"); timeout != "" {
		cfg.WriteTimeout = parseMillis(timeout, cfg.WriteTimeout)
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = parseOrigins(origins)
	}

	if burst := os.Getenv("RATE_LIMIT_BURST"); burst != "" {
		cfg.RateLimit.Burst = parseIntValue(burst, cfg.RateLimit.Burst)
	}

	if interval := os.Getenv("RATE_LIMIT_REFILL_INTERVAL"); interval != "" {
		cfg.RateLimit.RefillInterval = parseRefillInterval(interval, cfg.RateLimit.RefillInterval)
	}

	return &cfg
}

func parseOrigins(origins string) []string {
	parts := strings.Split(origins, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func parseIntValue(value string, defaultValue int) int {
	if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
		return parsed
	}
	return defaultValue
}

func parseSeed(value string, defaultValue int64) int64 {
	if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
		return parsed
	}
	return defaultValue
}

func parseMillis(value string, defaultValue time.Duration) time.Duration {
	if ms, err := strconv.Atoi(value); err == nil && ms > 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultValue
}

func parseRefillInterval(value string, defaultValue time.Duration) time.Duration {
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return defaultValue
}
