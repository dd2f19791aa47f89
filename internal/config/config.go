// Package config reads binary settings from the environment. A .env file in
// the working directory is loaded first when present; real environment
// variables win over it. Command-line flags use these values as defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the settings shared by the server and the CLI.
type Config struct {
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestSize int
	LogFile        string
	LogJSON        bool
	PatternFile    string
	Stages         string
	Workers        int
	BatchSize      int
	WarmUp         bool
	Encoding       string
}

// Defaults returns the built-in settings.
func Defaults() Config {
	return Config{
		Port:           8080,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxRequestSize: 10 * 1024 * 1024, // 10MB
		LogJSON:        true,
		WarmUp:         true,
		Encoding:       "utf-8",
	}
}

// Load applies TXN_* environment variables on top of Defaults.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from a lookup function, so tests need not touch the
// process environment.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := Defaults()
	r := envReader{lookup: lookup}

	cfg.Port = r.getInt("TXN_PORT", cfg.Port)
	cfg.ReadTimeout = r.getDuration("TXN_READ_TIMEOUT", cfg.ReadTimeout)
	cfg.WriteTimeout = r.getDuration("TXN_WRITE_TIMEOUT", cfg.WriteTimeout)
	cfg.MaxRequestSize = r.getInt("TXN_MAX_REQUEST_SIZE", cfg.MaxRequestSize)
	cfg.LogFile = r.getString("TXN_LOG_FILE", cfg.LogFile)
	cfg.LogJSON = r.getBool("TXN_LOG_JSON", cfg.LogJSON)
	cfg.PatternFile = r.getString("TXN_PATTERN_FILE", cfg.PatternFile)
	cfg.Stages = r.getString("TXN_STAGES", cfg.Stages)
	cfg.Workers = r.getInt("TXN_WORKERS", cfg.Workers)
	cfg.BatchSize = r.getInt("TXN_BATCH_SIZE", cfg.BatchSize)
	cfg.WarmUp = r.getBool("TXN_WARM_UP", cfg.WarmUp)
	cfg.Encoding = r.getString("TXN_ENCODING", cfg.Encoding)

	if r.err != nil {
		return cfg, r.err
	}
	return cfg, cfg.Validate()
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.BatchSize < 0 {
		return fmt.Errorf("batch size must not be negative, got %d", c.BatchSize)
	}
	if c.MaxRequestSize <= 0 {
		return fmt.Errorf("max request size must be positive, got %d", c.MaxRequestSize)
	}
	return nil
}

// envReader keeps the first parse error so callers check once.
type envReader struct {
	lookup func(string) (string, bool)
	err    error
}

func (r *envReader) raw(key string) (string, bool) {
	v, ok := r.lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func (r *envReader) getString(key, fallback string) string {
	if v, ok := r.raw(key); ok {
		return v
	}
	return fallback
}

func (r *envReader) getInt(key string, fallback int) int {
	v, ok := r.raw(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.fail(key, v, err)
		return fallback
	}
	return n
}

func (r *envReader) getBool(key string, fallback bool) bool {
	v, ok := r.raw(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.fail(key, v, err)
		return fallback
	}
	return b
}

func (r *envReader) getDuration(key string, fallback time.Duration) time.Duration {
	v, ok := r.raw(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.fail(key, v, err)
		return fallback
	}
	return d
}

func (r *envReader) fail(key, value string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("invalid %s=%q: %w", key, value, err)
	}
}
