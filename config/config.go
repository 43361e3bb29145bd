package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/viper"

	"github.com/mifty-dev/seo-audit/audit"
)

// Config holds all configuration for the application.
type Config struct {
	Server    ServerConfig
	Cache     CacheConfig
	Batch     BatchConfig
	RateLimit RateLimitConfig
	Audit     audit.Config
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string
	GinMode         string
	DataDir         string
	ShutdownTimeout time.Duration
}

// CacheConfig tunes the audit report cache.
type CacheConfig struct {
	Size int
	TTL  time.Duration
}

// BatchConfig bounds batch audit requests.
type BatchConfig struct {
	Workers  int
	MaxPages int
}

// RateLimitConfig tunes the per-IP token bucket.
type RateLimitConfig struct {
	Rate       float64
	BucketSize float64
}

// New builds a Config from environment variables plus an optional YAML
// ruleset file named by AUDIT_CONFIG (default audit.yml). A missing
// ruleset file means the built-in defaults apply.
func New() (*Config, error) {
	shutdownTimeout, err := envInt("SHUTDOWN_TIMEOUT", 10)
	if err != nil {
		return nil, err
	}

	cacheSize, err := envInt("CACHE_SIZE", 1000)
	if err != nil {
		return nil, err
	}

	cacheTTL, err := envInt("CACHE_TTL_MINUTES", 30)
	if err != nil {
		return nil, err
	}

	batchWorkers, err := envInt("BATCH_WORKERS", 8)
	if err != nil {
		return nil, err
	}

	maxBatchPages, err := envInt("BATCH_MAX_PAGES", 100)
	if err != nil {
		return nil, err
	}

	rate, err := envFloat("RATE_LIMIT_RPS", 2)
	if err != nil {
		return nil, err
	}

	bucket, err := envFloat("RATE_LIMIT_BURST", 5)
	if err != nil {
		return nil, err
	}

	auditCfg, err := loadAuditConfig(getEnv("AUDIT_CONFIG", "audit.yml"))
	if err != nil {
		return nil, err
	}

	return &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8082"),
			GinMode:         getEnv("GIN_MODE", ""),
			DataDir:         getEnv("DATA_DIR", "data"),
			ShutdownTimeout: time.Duration(shutdownTimeout) * time.Second,
		},
		Cache: CacheConfig{
			Size: cacheSize,
			TTL:  time.Duration(cacheTTL) * time.Minute,
		},
		Batch: BatchConfig{
			Workers:  batchWorkers,
			MaxPages: maxBatchPages,
		},
		RateLimit: RateLimitConfig{
			Rate:       rate,
			BucketSize: bucket,
		},
		Audit: auditCfg,
	}, nil
}

// loadAuditConfig reads ruleset overrides from a YAML file. Only the
// fields the file sets override the defaults.
func loadAuditConfig(path string) (audit.Config, error) {
	cfg := audit.DefaultConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		if _, notFound := err.(viper.ConfigFileNotFoundError); notFound {
			return cfg, nil
		}
		return cfg, fmt.Errorf("could not read audit config %s: %w", path, err)
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("invalid audit config %s: %w", path, err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}
