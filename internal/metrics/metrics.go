// Vibescout - Mood-Based Place Discovery Engine
// Copyright 2026 Vibescout Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vibescout/vibescout

// Package metrics provides Prometheus instrumentation for the discovery
// engine: cache tier efficiency, gateway call outcomes, mood pipeline
// stage selection, and discovery cycle behavior.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Cache tier metrics. Labels: tier = hot|warm|cold.
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibescout_cache_hits_total",
			Help: "Cache hits by tier",
		},
		[]string{"tier"},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vibescout_cache_misses_total",
			Help: "Full cache misses (all tiers)",
		},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibescout_cache_evictions_total",
			Help: "LRU evictions by tier",
		},
		[]string{"tier"},
	)

	CachePromotions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibescout_cache_promotions_total",
			Help: "Entries promoted into a faster tier, labeled by source tier",
		},
		[]string{"from"},
	)

	CacheTierErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibescout_cache_tier_errors_total",
			Help: "Tier I/O failures (the tier is skipped, not fatal)",
		},
		[]string{"tier", "op"},
	)

	CacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vibescout_cache_entries",
			Help: "Current entry count by tier",
		},
		[]string{"tier"},
	)

	// Gateway metrics. Labels: provider = places|sentiment|geocoder,
	// outcome = success|failure|rejected.
	GatewayRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibescout_gateway_requests_total",
			Help: "Outbound provider calls by outcome",
		},
		[]string{"provider", "outcome"},
	)

	GatewayRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibescout_gateway_retries_total",
			Help: "Retry attempts by provider",
		},
		[]string{"provider"},
	)

	GatewayLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vibescout_gateway_latency_seconds",
			Help:    "Provider call latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	GatewayConcurrencyWaiters = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vibescout_gateway_concurrency_waiters",
			Help: "Calls currently waiting on the bounded-concurrency pool",
		},
	)

	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vibescout_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"provider"},
	)

	// Mood pipeline metrics. Labels: source = entity-analysis|
	// sentiment-analysis|category-mapping|fallback.
	MoodAnalyses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibescout_mood_analyses_total",
			Help: "Mood analyses by resolving pipeline stage",
		},
		[]string{"source"},
	)

	MoodConfidence = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vibescout_mood_confidence",
			Help:    "Confidence of produced mood results",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
	)

	// Discovery metrics.
	DiscoveryCycles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibescout_discovery_cycles_total",
			Help: "Discovery cycles by terminal state",
		},
		[]string{"state"},
	)

	DiscoveryExpansions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vibescout_discovery_expansions_total",
			Help: "Radius expansions performed",
		},
	)

	DiscoveryCycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vibescout_discovery_cycle_duration_seconds",
			Help:    "End-to-end duration of a discovery cycle",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	DiscoveryStaleDrops = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vibescout_discovery_stale_drops_total",
			Help: "In-flight cycle results discarded after a session reset",
		},
	)
)
