// Vibescout - Mood-Based Place Discovery Engine
// Copyright 2026 Vibescout Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vibescout/vibescout

package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// getValidator returns the singleton validator instance.
func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks the configuration for structural errors plus the
// cross-field constraints the struct tags cannot express. Any error here
// aborts startup.
func (c *Config) Validate() error {
	if err := getValidator().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fmt.Errorf("invalid config: %w", verrs)
		}
		return fmt.Errorf("config validation: %w", err)
	}

	// Tier ordering: each slower tier must hold at least as many
	// entries for at least as long as the one above it.
	if c.Cache.Warm.Capacity < c.Cache.Hot.Capacity {
		return fmt.Errorf("cache.warm.capacity (%d) must be >= cache.hot.capacity (%d)",
			c.Cache.Warm.Capacity, c.Cache.Hot.Capacity)
	}
	if c.Cache.Cold.Capacity < c.Cache.Warm.Capacity {
		return fmt.Errorf("cache.cold.capacity (%d) must be >= cache.warm.capacity (%d)",
			c.Cache.Cold.Capacity, c.Cache.Warm.Capacity)
	}
	if c.Cache.Warm.TTL < c.Cache.Hot.TTL {
		return fmt.Errorf("cache.warm.ttl (%s) must be >= cache.hot.ttl (%s)",
			c.Cache.Warm.TTL, c.Cache.Hot.TTL)
	}
	if c.Cache.Cold.TTL < c.Cache.Warm.TTL {
		return fmt.Errorf("cache.cold.ttl (%s) must be >= cache.warm.ttl (%s)",
			c.Cache.Cold.TTL, c.Cache.Warm.TTL)
	}

	if c.Cache.ColdEnabled && c.Cache.ColdAddr == "" {
		return errors.New("cache.cold_addr is required when cache.cold_enabled is true")
	}

	if c.Discovery.BatchSize > c.Gateway.MaxConcurrent*4 {
		return fmt.Errorf("discovery.batch_size (%d) is unreasonably large for gateway.max_concurrent (%d)",
			c.Discovery.BatchSize, c.Gateway.MaxConcurrent)
	}

	return nil
}
