// Vibescout - Mood-Based Place Discovery Engine
// Copyright 2026 Vibescout Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vibescout/vibescout

// Package config loads and validates engine configuration with layered
// sources: built-in defaults, an optional YAML file, and environment
// variables (highest priority).
package config

import "time"

// Config is the root configuration for the Vibescout engine process.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	Providers ProvidersConfig `koanf:"providers"`
	Gateway   GatewayConfig   `koanf:"gateway"`
	Cache     CacheConfig     `koanf:"cache"`
	Discovery DiscoveryConfig `koanf:"discovery"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitPerMin int           `koanf:"rate_limit_per_min" validate:"min=1"`
}

// LoggingConfig configures the zerolog sink.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// ProviderEndpoint is one external HTTP provider.
type ProviderEndpoint struct {
	BaseURL string        `koanf:"base_url" validate:"required,url"`
	APIKey  string        `koanf:"api_key"`
	Timeout time.Duration `koanf:"timeout" validate:"min=1s"`
}

// ProvidersConfig holds the three consumed external services.
type ProvidersConfig struct {
	Places    ProviderEndpoint `koanf:"places"`
	Sentiment ProviderEndpoint `koanf:"sentiment"`
	Geocoder  ProviderEndpoint `koanf:"geocoder"`
}

// GatewayConfig tunes the resilient API gateway.
type GatewayConfig struct {
	// RetryAttempts is the maximum number of attempts per call.
	RetryAttempts int `koanf:"retry_attempts" validate:"min=1,max=10"`

	// RetryDelay is the base backoff; attempt N waits RetryDelay*N.
	RetryDelay time.Duration `koanf:"retry_delay" validate:"min=1ms"`

	// MaxConcurrent bounds simultaneous outbound calls system-wide.
	MaxConcurrent int `koanf:"max_concurrent" validate:"min=1,max=64"`

	// EntityPaceInterval spaces successive entity-extraction calls
	// within one place's review batch.
	EntityPaceInterval time.Duration `koanf:"entity_pace_interval"`

	// Circuit breaker tuning (per provider).
	BreakerMinRequests  uint32        `koanf:"breaker_min_requests"`
	BreakerFailureRatio float64       `koanf:"breaker_failure_ratio" validate:"min=0,max=1"`
	BreakerTimeout      time.Duration `koanf:"breaker_timeout"`
}

// TierConfig describes one cache tier.
type TierConfig struct {
	Capacity int           `koanf:"capacity" validate:"min=1"`
	TTL      time.Duration `koanf:"ttl" validate:"min=1s"`
}

// CacheConfig configures the three-tier cache.
type CacheConfig struct {
	Hot  TierConfig `koanf:"hot"`
	Warm TierConfig `koanf:"warm"`
	Cold TierConfig `koanf:"cold"`

	// WarmPath is the BadgerDB directory for the warm tier.
	WarmPath string `koanf:"warm_path" validate:"required"`

	// ColdEnabled turns the remote cold tier on. When false the cache
	// runs hot/warm only.
	ColdEnabled bool `koanf:"cold_enabled"`

	// ColdAddr is the Redis address for the cold tier.
	ColdAddr     string `koanf:"cold_addr"`
	ColdPassword string `koanf:"cold_password"`
	ColdDB       int    `koanf:"cold_db"`

	// SweepInterval is how often expired hot/warm entries are purged.
	SweepInterval time.Duration `koanf:"sweep_interval" validate:"min=1s"`
}

// DiscoveryConfig tunes the discovery orchestrator.
type DiscoveryConfig struct {
	// MinResults is the delivery floor a cycle tries to reach.
	MinResults int `koanf:"min_results" validate:"min=1"`

	// MaxExpansions bounds radius expansions per cycle.
	MaxExpansions int `koanf:"max_expansions" validate:"min=0,max=10"`

	// RadiusIncrement is added to the radius on each expansion.
	RadiusIncrement int `koanf:"radius_increment" validate:"min=100"`

	// BatchSize is how many places are mood-annotated concurrently.
	BatchSize int `koanf:"batch_size" validate:"min=1,max=20"`

	// BatchPause is the delay between successive annotation batches.
	BatchPause time.Duration `koanf:"batch_pause"`

	// PageSize is how many places one GetNextBatch page returns.
	PageSize int `koanf:"page_size" validate:"min=1"`
}

// defaultConfig returns a Config with all defaults applied. Defaults are
// loaded first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8480,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimitPerMin: 300,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Providers: ProvidersConfig{
			Places: ProviderEndpoint{
				BaseURL: "https://places.googleapis.com/v1",
				Timeout: 10 * time.Second,
			},
			Sentiment: ProviderEndpoint{
				BaseURL: "https://language.googleapis.com/v2",
				Timeout: 15 * time.Second,
			},
			Geocoder: ProviderEndpoint{
				BaseURL: "https://maps.googleapis.com/maps/api/geocode",
				Timeout: 10 * time.Second,
			},
		},
		Gateway: GatewayConfig{
			RetryAttempts:       3,
			RetryDelay:          500 * time.Millisecond,
			MaxConcurrent:       5,
			EntityPaceInterval:  200 * time.Millisecond,
			BreakerMinRequests:  10,
			BreakerFailureRatio: 0.6,
			BreakerTimeout:      2 * time.Minute,
		},
		Cache: CacheConfig{
			Hot:           TierConfig{Capacity: 50, TTL: 5 * time.Minute},
			Warm:          TierConfig{Capacity: 200, TTL: 30 * time.Minute},
			Cold:          TierConfig{Capacity: 1000, TTL: 24 * time.Hour},
			WarmPath:      "/data/vibescout/warm",
			ColdEnabled:   false,
			ColdAddr:      "127.0.0.1:6379",
			SweepInterval: 5 * time.Minute,
		},
		Discovery: DiscoveryConfig{
			MinResults:      10,
			MaxExpansions:   3,
			RadiusIncrement: 1500,
			BatchSize:       5,
			BatchPause:      300 * time.Millisecond,
			PageSize:        10,
		},
	}
}
