/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Database backend selection.
type DatabaseBackend string

const (
	DatabasePostgres DatabaseBackend = "postgres"
	DatabaseMySQL    DatabaseBackend = "mysql"
	DatabaseSQLite   DatabaseBackend = "sqlite"
)

// Config covers process level configuration read from environment variables.
type Config struct {
	Environment string
	HTTPBind    string
	HTTPPort    int
	DBBackend   DatabaseBackend
	DBDSN       string
	MetricsBind string

	// SiteTimezone is the IANA zone slot times are interpreted in.
	SiteTimezone string
	// PublishInterval is how often due posts are swept.
	PublishInterval time.Duration

	// Tracing configuration
	TracingEnabled    bool
	OTLPEndpoint      string
	TracingSampleRate float64

	// Multi-instance configuration
	LeaderElectionEnabled bool
	RedisAddr             string
	RedisPassword         string
	RedisDB               int
	InstanceID            string

	location *time.Location
}

// Load reads environment variables, applies defaults, and validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		Environment: getEnv("PRESSQ_ENV", "development"),
		HTTPBind:    getEnv("PRESSQ_HTTP_BIND", "0.0.0.0"),
		HTTPPort:    getEnvInt("PRESSQ_HTTP_PORT", 8080),
		DBBackend:   DatabaseBackend(getEnv("PRESSQ_DB_BACKEND", string(DatabasePostgres))),
		DBDSN:       getEnv("PRESSQ_DB_DSN", ""),
		MetricsBind: getEnv("PRESSQ_METRICS_BIND", "127.0.0.1:9000"),

		SiteTimezone:    getEnv("PRESSQ_SITE_TZ", "UTC"),
		PublishInterval: time.Duration(getEnvInt("PRESSQ_PUBLISH_INTERVAL_MINUTES", 60)) * time.Minute,

		// Tracing configuration
		TracingEnabled:    getEnvBool("PRESSQ_TRACING_ENABLED", false),
		OTLPEndpoint:      getEnv("PRESSQ_OTLP_ENDPOINT", "localhost:4317"),
		TracingSampleRate: getEnvFloat("PRESSQ_TRACING_SAMPLE_RATE", 1.0),

		// Multi-instance configuration
		LeaderElectionEnabled: getEnvBool("PRESSQ_LEADER_ELECTION_ENABLED", false),
		RedisAddr:             getEnv("PRESSQ_REDIS_ADDR", "localhost:6379"),
		RedisPassword:         getEnv("PRESSQ_REDIS_PASSWORD", ""),
		RedisDB:               getEnvInt("PRESSQ_REDIS_DB", 0),
		InstanceID:            getEnv("PRESSQ_INSTANCE_ID", ""),
	}

	if cfg.DBBackend != DatabasePostgres && cfg.DBBackend != DatabaseMySQL && cfg.DBBackend != DatabaseSQLite {
		return nil, fmt.Errorf("unsupported database backend %q", cfg.DBBackend)
	}

	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("PRESSQ_DB_DSN must be provided")
	}

	loc, err := time.LoadLocation(cfg.SiteTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid PRESSQ_SITE_TZ %q: %w", cfg.SiteTimezone, err)
	}
	cfg.location = loc

	if cfg.PublishInterval <= 0 {
		return nil, fmt.Errorf("PRESSQ_PUBLISH_INTERVAL_MINUTES must be positive")
	}

	return cfg, nil
}

// Location returns the site timezone as a loaded location.
func (c *Config) Location() *time.Location {
	if c == nil || c.location == nil {
		return time.UTC
	}
	return c.location
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if val := os.Getenv(key); val != "" {
		val = strings.ToLower(strings.TrimSpace(val))
		if val == "true" || val == "1" || val == "yes" {
			return true
		}
		if val == "false" || val == "0" || val == "no" {
			return false
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return def
}
