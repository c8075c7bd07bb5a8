// Package config builds the process configuration from environment
// variables so main stays lean.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the full process configuration.
type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Monitor  MonitorConfig
}

// ServerConfig captures HTTP server level configuration.
type ServerConfig struct {
	Addr     string
	LogLevel string
}

// PostgresConfig points at the console's record store. Empty URL means no
// Postgres; the engine falls back to in-memory stores.
type PostgresConfig struct {
	URL string
}

// RedisConfig points at the shared suppression store. Empty URL means no
// Redis; suppression state stays process-local.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig points at the change-feed topics. No brokers means the engine
// runs on the in-process feed only.
type KafkaConfig struct {
	Brokers     []string
	TopicPrefix string
	Group       string
}

// MonitorConfig carries the alerting thresholds. Defaults match what the
// scheduling console has always used; they are named settings, not a general
// rules mechanism.
type MonitorConfig struct {
	TargetWindowDays int
	NearCapacityMark float64
	ExpiryWindowDays int
	AuditBuffer      int
	SuppressionTTL   time.Duration
}

// FromEnv builds the configuration, applying defaults for anything unset.
func FromEnv() Config {
	return Config{
		Server: ServerConfig{
			Addr:     getEnv("THEATREOPS_ADDR", ":8080"),
			LogLevel: getEnv("THEATREOPS_LOG_LEVEL", "info"),
		},
		Postgres: PostgresConfig{
			URL: os.Getenv("THEATREOPS_POSTGRES_URL"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("THEATREOPS_REDIS_URL"),
			PoolSize:     getEnvInt("THEATREOPS_REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvInt("THEATREOPS_REDIS_MIN_IDLE", 2),
			DialTimeout:  getEnvDuration("THEATREOPS_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getEnvDuration("THEATREOPS_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getEnvDuration("THEATREOPS_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:     splitList(os.Getenv("THEATREOPS_KAFKA_BROKERS")),
			TopicPrefix: getEnv("THEATREOPS_KAFKA_TOPIC_PREFIX", "changes."),
			Group:       getEnv("THEATREOPS_KAFKA_GROUP", "theatreops-monitor"),
		},
		Monitor: MonitorConfig{
			TargetWindowDays: getEnvInt("THEATREOPS_TARGET_WINDOW_DAYS", 7),
			NearCapacityMark: getEnvFloat("THEATREOPS_NEAR_CAPACITY_MARK", 95),
			ExpiryWindowDays: getEnvInt("THEATREOPS_EXPIRY_WINDOW_DAYS", 30),
			AuditBuffer:      getEnvInt("THEATREOPS_AUDIT_BUFFER", 256),
			SuppressionTTL:   getEnvDuration("THEATREOPS_SUPPRESSION_TTL", 0),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
