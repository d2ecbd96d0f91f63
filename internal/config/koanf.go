// Vibescout - Mood-Based Place Discovery Engine
// Copyright 2026 Vibescout Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vibescout/vibescout

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, in order.
// The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/vibescout/config.yaml",
	"/etc/vibescout/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "VIBESCOUT_CONFIG"

// envPrefix scopes which environment variables the loader reads.
const envPrefix = "VIBESCOUT_"

// Load loads configuration using koanf v2 with layered sources:
//  1. Defaults: built-in struct defaults
//  2. Config file: optional YAML (VIBESCOUT_CONFIG or DefaultConfigPaths)
//  3. Environment variables: VIBESCOUT_SECTION_KEY overrides any setting
//
// Precedence: env > file > defaults. A validation failure here is fatal
// to startup; there is no degraded mode for a corrupt configuration.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file path, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envTransformFunc maps environment variable names to koanf paths:
//
//	VIBESCOUT_SERVER_PORT          -> server.port
//	VIBESCOUT_CACHE_COLD_ENABLED   -> cache.cold_enabled
//	VIBESCOUT_GATEWAY_RETRY_DELAY  -> gateway.retry_delay
//
// The first underscore after the prefix separates the section; the rest
// of the key keeps its underscores.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
	section, rest, found := strings.Cut(key, "_")
	if !found {
		return key
	}
	// Nested tier keys: CACHE_HOT_CAPACITY -> cache.hot.capacity
	for _, tier := range []string{"hot", "warm", "cold"} {
		if section == "cache" && strings.HasPrefix(rest, tier+"_") {
			leaf := strings.TrimPrefix(rest, tier+"_")
			if leaf == "capacity" || leaf == "ttl" {
				return "cache." + tier + "." + leaf
			}
		}
	}
	for _, p := range []string{"places", "sentiment", "geocoder"} {
		if section == "providers" && strings.HasPrefix(rest, p+"_") {
			return "providers." + p + "." + strings.TrimPrefix(rest, p+"_")
		}
	}
	return section + "." + rest
}

// sliceConfigPaths lists paths parsed as comma-separated slices when
// supplied via env vars.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields converts comma-separated strings to slices for the
// known slice fields. Env vars arrive as plain strings.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}
