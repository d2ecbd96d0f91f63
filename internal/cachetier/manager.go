// Vibescout - Mood-Based Place Discovery Engine
// Copyright 2026 Vibescout Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vibescout/vibescout

package cachetier

import (
	"context"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/vibescout/vibescout/internal/config"
	"github.com/vibescout/vibescout/internal/logging"
	"github.com/vibescout/vibescout/internal/metrics"
	"github.com/vibescout/vibescout/internal/models"
)

// Tier names used in metrics, stats, and log fields.
const (
	TierHot  = "hot"
	TierWarm = "warm"
	TierCold = "cold"
)

// TTL scaling by filter specificity. Broad queries (few active
// filters) serve many users but churn faster; specific queries are
// cheap to keep around longer.
const (
	broadFilterMax    = 2
	specificFilterMin = 4

	broadTTLFactor    = 0.7
	specificTTLFactor = 1.3
)

// coldWriteTimeout bounds the detached cold-tier writes and deletes.
const coldWriteTimeout = 5 * time.Second

// TierStats is one tier's counters in a stats snapshot.
type TierStats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
	Entries   int   `json:"entries"`
}

// Stats is a point-in-time view of the whole cache.
type Stats struct {
	Hot         TierStats `json:"hot"`
	Warm        TierStats `json:"warm"`
	Cold        TierStats `json:"cold"`
	ColdEnabled bool      `json:"coldEnabled"`
}

// Manager is the tiered cache facade. Tier failures are absorbed: a
// broken tier is skipped and counted, never surfaced to the caller, so
// cache trouble degrades to recomputation rather than request failure.
type Manager struct {
	cfg  config.CacheConfig
	hot  *hotTier
	warm *warmTier
	cold coldStore

	coldMisses int64
	coldHits   int64
	statsMu    sync.Mutex

	coldWrites sync.WaitGroup
	log        zerolog.Logger
}

// New opens the warm tier database and, when enabled, dials the cold
// tier. A cold tier that cannot be reached at startup is an error;
// disable it in config to run hot/warm only.
func New(ctx context.Context, cfg config.CacheConfig) (*Manager, error) {
	warm, err := openWarmTier(cfg.WarmPath, cfg.Warm.Capacity)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		cfg:  cfg,
		hot:  newHotTier(cfg.Hot.Capacity),
		warm: warm,
		log:  logging.Component("cachetier"),
	}

	if cfg.ColdEnabled {
		cold, err := dialColdStore(ctx, cfg.ColdAddr, cfg.ColdPassword, cfg.ColdDB)
		if err != nil {
			warm.Close()
			return nil, err
		}
		m.cold = cold
	}
	return m, nil
}

// Get looks the key up hot first, then warm, then cold. A hit in a
// lower tier is promoted into every faster tier at that tier's base
// TTL before being returned.
func (m *Manager) Get(ctx context.Context, key string) (*models.DiscoveryPayload, bool) {
	if raw, ok := m.hot.Get(key); ok {
		if payload := m.decode(raw, TierHot); payload != nil {
			metrics.CacheHits.WithLabelValues(TierHot).Inc()
			return payload, true
		}
	}

	raw, ok, err := m.warm.Get(key)
	if err != nil {
		metrics.CacheTierErrors.WithLabelValues(TierWarm, "get").Inc()
		m.log.Warn().Err(err).Msg("warm tier read failed, falling through")
	}
	if ok {
		if payload := m.decode(raw, TierWarm); payload != nil {
			metrics.CacheHits.WithLabelValues(TierWarm).Inc()
			metrics.CachePromotions.WithLabelValues(TierWarm).Inc()
			m.hot.Set(key, raw, m.cfg.Hot.TTL)
			m.updateEntryGauges()
			return payload, true
		}
	}

	if m.cold != nil {
		raw, ok, err := m.cold.Get(ctx, key)
		if err != nil {
			metrics.CacheTierErrors.WithLabelValues(TierCold, "get").Inc()
			m.log.Warn().Err(err).Msg("cold tier read failed, treating as miss")
		}
		if ok {
			if payload := m.decode(raw, TierCold); payload != nil {
				m.statsMu.Lock()
				m.coldHits++
				m.statsMu.Unlock()
				metrics.CacheHits.WithLabelValues(TierCold).Inc()
				metrics.CachePromotions.WithLabelValues(TierCold).Inc()
				m.hot.Set(key, raw, m.cfg.Hot.TTL)
				if werr := m.warm.Set(key, raw, m.cfg.Warm.TTL); werr != nil {
					metrics.CacheTierErrors.WithLabelValues(TierWarm, "set").Inc()
					m.log.Warn().Err(werr).Msg("warm promotion failed")
				}
				m.updateEntryGauges()
				return payload, true
			}
		}
		m.statsMu.Lock()
		m.coldMisses++
		m.statsMu.Unlock()
	}

	metrics.CacheMisses.Inc()
	return nil, false
}

// Set fans the payload out to all tiers. Hot and warm are written
// synchronously; the cold write is detached so a slow network never
// sits on the request path. activeFilters scales each tier's TTL.
func (m *Manager) Set(ctx context.Context, key string, payload *models.DiscoveryPayload, activeFilters int) {
	raw, err := json.Marshal(payload)
	if err != nil {
		m.log.Error().Err(err).Msg("payload marshal failed, not caching")
		return
	}
	factor := ttlFactor(activeFilters)

	m.hot.Set(key, raw, scaleTTL(m.cfg.Hot.TTL, factor))

	if err := m.warm.Set(key, raw, scaleTTL(m.cfg.Warm.TTL, factor)); err != nil {
		metrics.CacheTierErrors.WithLabelValues(TierWarm, "set").Inc()
		m.log.Warn().Err(err).Msg("warm tier write failed")
	}

	if m.cold != nil {
		ttl := scaleTTL(m.cfg.Cold.TTL, factor)
		m.coldWrites.Add(1)
		go func() {
			defer m.coldWrites.Done()
			cctx, cancel := context.WithTimeout(context.Background(), coldWriteTimeout)
			defer cancel()
			if err := m.cold.Set(cctx, key, raw, ttl); err != nil {
				metrics.CacheTierErrors.WithLabelValues(TierCold, "set").Inc()
				m.log.Warn().Err(err).Msg("cold tier write failed")
			}
		}()
	}

	m.updateEntryGauges()
}

// Invalidate removes one key from every tier.
func (m *Manager) Invalidate(ctx context.Context, key string) {
	m.hot.Remove(key)
	if err := m.warm.Remove(key); err != nil {
		metrics.CacheTierErrors.WithLabelValues(TierWarm, "remove").Inc()
		m.log.Warn().Err(err).Msg("warm tier remove failed")
	}
	if m.cold != nil {
		if err := m.cold.Remove(ctx, key); err != nil {
			metrics.CacheTierErrors.WithLabelValues(TierCold, "remove").Inc()
			m.log.Warn().Err(err).Msg("cold tier remove failed")
		}
	}
	m.updateEntryGauges()
}

// InvalidateAll empties every tier.
func (m *Manager) InvalidateAll(ctx context.Context) {
	m.hot.Clear()
	if err := m.warm.Clear(); err != nil {
		metrics.CacheTierErrors.WithLabelValues(TierWarm, "clear").Inc()
		m.log.Warn().Err(err).Msg("warm tier clear failed")
	}
	if m.cold != nil {
		if err := m.cold.Clear(ctx); err != nil {
			metrics.CacheTierErrors.WithLabelValues(TierCold, "clear").Inc()
			m.log.Warn().Err(err).Msg("cold tier clear failed")
		}
	}
	m.updateEntryGauges()
}

// Invalidation fields accepted by InvalidateMatching.
const (
	MatchCategory = "category"
	MatchLocation = "location"
	MatchBudget   = "budget"
)

// InvalidateMatching removes every entry whose stored filters match the
// given field value, across all tiers. Returns the number of distinct
// keys removed. An unknown field matches nothing.
func (m *Manager) InvalidateMatching(ctx context.Context, field, value string) int {
	probe := models.Filters{}
	switch field {
	case MatchCategory:
		probe.Category = value
	case MatchLocation:
		probe.Location = value
	case MatchBudget:
		probe.Budget = models.Budget(value)
	default:
		return 0
	}
	probe = probe.Normalized()

	matched := make(map[string]struct{})
	collect := func(entries map[string][]byte) {
		for key, raw := range entries {
			var payload models.DiscoveryPayload
			if err := json.Unmarshal(raw, &payload); err != nil {
				continue
			}
			f := payload.Filters.Normalized()
			switch field {
			case MatchCategory:
				if f.Category == probe.Category {
					matched[key] = struct{}{}
				}
			case MatchLocation:
				if f.Location == probe.Location {
					matched[key] = struct{}{}
				}
			case MatchBudget:
				if f.Budget == probe.Budget {
					matched[key] = struct{}{}
				}
			}
		}
	}

	collect(m.hot.Snapshot())

	if entries, err := m.warm.Entries(); err != nil {
		metrics.CacheTierErrors.WithLabelValues(TierWarm, "scan").Inc()
		m.log.Warn().Err(err).Msg("warm tier scan failed during invalidation")
	} else {
		collect(entries)
	}

	if m.cold != nil {
		if entries, err := m.cold.Entries(ctx); err != nil {
			metrics.CacheTierErrors.WithLabelValues(TierCold, "scan").Inc()
			m.log.Warn().Err(err).Msg("cold tier scan failed during invalidation")
		} else {
			collect(entries)
		}
	}

	for key := range matched {
		m.Invalidate(ctx, key)
	}
	return len(matched)
}

// Stats snapshots every tier's counters.
func (m *Manager) Stats(ctx context.Context) Stats {
	var s Stats
	s.Hot.Hits, s.Hot.Misses, s.Hot.Evictions, s.Hot.Entries = m.hot.Stats()
	s.Warm.Hits, s.Warm.Misses, s.Warm.Evictions, s.Warm.Entries = m.warm.Stats()

	if m.cold != nil {
		s.ColdEnabled = true
		m.statsMu.Lock()
		s.Cold.Hits = m.coldHits
		s.Cold.Misses = m.coldMisses
		m.statsMu.Unlock()
		if n, err := m.cold.Len(ctx); err == nil {
			s.Cold.Entries = n
		}
	}
	return s
}

// Healthy reports whether every configured tier is reachable. Used by
// the readiness probe.
func (m *Manager) Healthy(ctx context.Context) error {
	if m.warm.db.IsClosed() {
		return errWarmClosed
	}
	if m.cold != nil {
		if err := m.cold.Ping(ctx); err != nil {
			return err
		}
	}
	return nil
}

// SweepExpired purges expired hot and warm entries. Cold expiry is
// native to Redis. Called periodically by the sweeper service.
func (m *Manager) SweepExpired() (hot, warm int) {
	hot = m.hot.CleanupExpired()
	warm = m.warm.CleanupExpired()
	m.updateEntryGauges()
	return hot, warm
}

// Close drains outstanding cold writes and releases both stores.
func (m *Manager) Close() error {
	m.coldWrites.Wait()
	err := m.warm.Close()
	if m.cold != nil {
		if cerr := m.cold.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func (m *Manager) decode(raw []byte, tier string) *models.DiscoveryPayload {
	var payload models.DiscoveryPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		metrics.CacheTierErrors.WithLabelValues(tier, "decode").Inc()
		m.log.Warn().Err(err).Str("tier", tier).Msg("cached payload undecodable, dropping")
		return nil
	}
	return &payload
}

func (m *Manager) updateEntryGauges() {
	metrics.CacheEntries.WithLabelValues(TierHot).Set(float64(m.hot.Len()))
	metrics.CacheEntries.WithLabelValues(TierWarm).Set(float64(m.warm.Len()))
}

// ttlFactor maps filter specificity to a TTL multiplier.
func ttlFactor(activeFilters int) float64 {
	switch {
	case activeFilters <= broadFilterMax:
		return broadTTLFactor
	case activeFilters >= specificFilterMin:
		return specificTTLFactor
	default:
		return 1.0
	}
}

func scaleTTL(base time.Duration, factor float64) time.Duration {
	return time.Duration(float64(base) * factor)
}
