// Vibescout - Mood-Based Place Discovery Engine
// Copyright 2026 Vibescout Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vibescout/vibescout

// Package gateway is the resilient wrapper over the external place
// search, geocoding, and sentiment/entity providers. It owns the
// system-wide bounded-concurrency pool, the per-provider circuit
// breakers, retry with linear backoff, and rolling call statistics.
//
// Failure semantics: transport and provider errors never escape as
// panics or unexpected errors; callers always receive a (possibly
// empty) result plus a captured error they may surface once every
// retry is exhausted.
package gateway

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/rs/zerolog"

	"github.com/vibescout/vibescout/internal/config"
	"github.com/vibescout/vibescout/internal/logging"
	"github.com/vibescout/vibescout/internal/metrics"
	"github.com/vibescout/vibescout/internal/models"
	"github.com/vibescout/vibescout/internal/taxonomy"
)

// Provider names used for breakers, stats, and metric labels.
const (
	ProviderPlaces    = "places"
	ProviderSentiment = "sentiment"
	ProviderGeocoder  = "geocoder"
)

// Hard per-attempt timeouts. A timeout is treated exactly like a
// transport failure for retry purposes.
const (
	searchTimeout    = 10 * time.Second
	sentimentTimeout = 15 * time.Second
	geocodeTimeout   = 10 * time.Second
)

// maxSearchResults caps one provider search call.
const maxSearchResults = 20

// Sentiment is a whole-document sentiment verdict from the provider.
type Sentiment struct {
	Score     float64 `json:"score"`     // -1..1
	Magnitude float64 `json:"magnitude"` // >= 0
}

// Entity is one extracted entity with its salience and sentiment.
type Entity struct {
	Name      string  `json:"name"`
	Type      string  `json:"type"`
	Salience  float64 `json:"salience"`  // 0..1
	Sentiment float64 `json:"sentiment"` // -1..1
}

// PlaceSearcher is the consumed place-search provider contract.
type PlaceSearcher interface {
	SearchNearby(ctx context.Context, center models.LatLng, radiusMeters int, includedTypes []string, maxResults int) ([]models.PlaceResult, error)
	SearchText(ctx context.Context, query string, bias *models.LatLng, maxResults int) ([]models.PlaceResult, error)
}

// SentimentAnalyzer is the consumed sentiment/entity provider contract.
type SentimentAnalyzer interface {
	AnalyzeSentiment(ctx context.Context, text string) (Sentiment, error)
	AnalyzeEntities(ctx context.Context, text string) ([]Entity, error)
}

// Geocoder resolves free-text addresses to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (models.LatLng, error)
}

// Gateway coordinates all outbound calls. Safe for concurrent use.
type Gateway struct {
	cfg config.GatewayConfig
	reg *taxonomy.Registry

	places    PlaceSearcher
	sentiment SentimentAnalyzer
	geocoder  Geocoder

	// sem is the one system-wide bounded-concurrency pool. Waiters
	// suspend on the semaphore, never busy-poll.
	sem *semaphore.Weighted

	// pace spaces successive entity-extraction calls.
	pace *rate.Limiter

	breakers map[string]*gobreaker.CircuitBreaker[any]
	stats    map[string]*rollingStats

	log zerolog.Logger
}

// New wires a Gateway around the three providers.
func New(cfg config.GatewayConfig, reg *taxonomy.Registry, places PlaceSearcher, sentiment SentimentAnalyzer, geocoder Geocoder) *Gateway {
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 5
	}
	paceInterval := cfg.EntityPaceInterval
	if paceInterval <= 0 {
		paceInterval = 200 * time.Millisecond
	}

	g := &Gateway{
		cfg:       cfg,
		reg:       reg,
		places:    places,
		sentiment: sentiment,
		geocoder:  geocoder,
		sem:       semaphore.NewWeighted(int64(maxConcurrent)),
		pace:      rate.NewLimiter(rate.Every(paceInterval), 1),
		breakers:  make(map[string]*gobreaker.CircuitBreaker[any], 3),
		stats:     make(map[string]*rollingStats, 3),
		log:       logging.Component("gateway"),
	}
	for _, name := range []string{ProviderPlaces, ProviderSentiment, ProviderGeocoder} {
		g.breakers[name] = g.newBreaker(name)
		g.stats[name] = &rollingStats{}
	}
	return g
}

// newBreaker builds one provider's circuit breaker. Opens at the
// configured failure ratio once enough requests have been seen.
func (g *Gateway) newBreaker(name string) *gobreaker.CircuitBreaker[any] {
	minRequests := g.cfg.BreakerMinRequests
	if minRequests == 0 {
		minRequests = 10
	}
	failureRatio := g.cfg.BreakerFailureRatio
	if failureRatio <= 0 || failureRatio > 1 {
		failureRatio = 0.6
	}
	timeout := g.cfg.BreakerTimeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	metrics.BreakerState.WithLabelValues(name).Set(0)

	return gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= failureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			g.log.Warn().Str("provider", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			metrics.BreakerState.WithLabelValues(name).Set(breakerStateValue(to))
		},
	})
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// ExecuteWithRetry runs one provider call through the bounded pool, the
// provider's breaker, and the retry policy, recording rolling stats.
// This is the single funnel every outbound call passes through.
func (g *Gateway) ExecuteWithRetry(ctx context.Context, provider string, timeout time.Duration, fn func(ctx context.Context) error) error {
	metrics.GatewayConcurrencyWaiters.Inc()
	err := g.sem.Acquire(ctx, 1)
	metrics.GatewayConcurrencyWaiters.Dec()
	if err != nil {
		return err
	}
	defer g.sem.Release(1)

	policy := RetryPolicy{
		MaxAttempts: g.cfg.RetryAttempts,
		Backoff:     LinearBackoff(g.cfg.RetryDelay),
	}

	start := time.Now()
	attempt := 0
	err = policy.Do(ctx, func(ctx context.Context) error {
		attempt++
		if attempt > 1 {
			metrics.GatewayRetries.WithLabelValues(provider).Inc()
		}
		_, berr := g.breakers[provider].Execute(func() (any, error) {
			callCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			return nil, fn(callCtx)
		})
		return berr
	})

	elapsed := time.Since(start)
	g.stats[provider].record(elapsed, err)
	metrics.GatewayLatency.WithLabelValues(provider).Observe(elapsed.Seconds())
	outcome := "success"
	if err != nil {
		outcome = "failure"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			outcome = "rejected"
		}
	}
	metrics.GatewayRequests.WithLabelValues(provider, outcome).Inc()
	return err
}

// SearchPlaces runs one place search for the filter selection at the
// given radius. It derives included types, a text query, and a price
// range from the taxonomy, resolves free-text locations through the
// geocoder, and filters results to the budget's price range.
//
// On exhausted retries it returns an empty slice together with the
// captured error; it never panics and never returns a partial network
// error for the caller to re-classify.
func (g *Gateway) SearchPlaces(ctx context.Context, locationOrQuery string, f models.Filters, radiusMeters int) ([]models.PlaceResult, error) {
	f = f.Normalized()
	includedTypes := g.reg.PreferredPlaceTypes(f)
	minPrice, maxPrice := f.Budget.PriceLevelRange()

	center, haveCenter := ParseLatLng(locationOrQuery)
	if !haveCenter && locationOrQuery != "" {
		center = g.GeocodeAddress(ctx, locationOrQuery)
		haveCenter = !center.IsZero()
	}

	var results []models.PlaceResult
	err := g.ExecuteWithRetry(ctx, ProviderPlaces, searchTimeout, func(ctx context.Context) error {
		var callErr error
		if haveCenter {
			results, callErr = g.places.SearchNearby(ctx, center, radiusMeters, includedTypes, maxSearchResults)
		} else {
			results, callErr = g.places.SearchText(ctx, g.textQuery(f), nil, maxSearchResults)
		}
		return callErr
	})
	if err != nil {
		g.log.Warn().Err(err).Str("location", locationOrQuery).Int("radius_m", radiusMeters).Msg("place search degraded to empty result")
		return nil, err
	}

	return filterByPrice(results, minPrice, maxPrice), nil
}

// textQuery builds the free-text search query from taxonomy keywords
// plus the category label.
func (g *Gateway) textQuery(f models.Filters) string {
	parts := g.reg.QueryKeywords(f)
	if f.Category != "" {
		parts = append(parts, f.Category)
	}
	if len(parts) == 0 {
		parts = []string{"places to go"}
	}
	return strings.Join(parts, " ")
}

// filterByPrice drops places priced outside [minLevel, maxLevel].
// Places with an unknown price level (0 on a provider that starts
// pricing at 1) are kept rather than risk an empty page.
func filterByPrice(places []models.PlaceResult, minLevel, maxLevel int) []models.PlaceResult {
	out := places[:0]
	for _, p := range places {
		if p.PriceLevel == 0 || (p.PriceLevel >= minLevel && p.PriceLevel <= maxLevel) {
			out = append(out, p)
		}
	}
	return out
}

// GeocodeAddress resolves a free-text address. On failure it returns
// the zero-coordinate sentinel and logs; geocoding problems never fail
// a search outright.
func (g *Gateway) GeocodeAddress(ctx context.Context, address string) models.LatLng {
	var coords models.LatLng
	err := g.ExecuteWithRetry(ctx, ProviderGeocoder, geocodeTimeout, func(ctx context.Context) error {
		var callErr error
		coords, callErr = g.geocoder.Geocode(ctx, address)
		return callErr
	})
	if err != nil {
		g.log.Warn().Err(err).Str("address", address).Msg("geocoding failed, using zero-coordinate sentinel")
		return models.LatLng{}
	}
	return coords
}

// AnalyzeSentiment runs whole-text sentiment through the provider.
func (g *Gateway) AnalyzeSentiment(ctx context.Context, text string) (Sentiment, error) {
	var s Sentiment
	err := g.ExecuteWithRetry(ctx, ProviderSentiment, sentimentTimeout, func(ctx context.Context) error {
		var callErr error
		s, callErr = g.sentiment.AnalyzeSentiment(ctx, text)
		return callErr
	})
	return s, err
}

// AnalyzeEntities extracts entities for one review. Calls are paced so
// a burst of reviews does not hammer the provider; the wait suspends on
// the limiter, counting against the caller's context.
func (g *Gateway) AnalyzeEntities(ctx context.Context, text string) ([]Entity, error) {
	if err := g.pace.Wait(ctx); err != nil {
		return nil, err
	}
	var entities []Entity
	err := g.ExecuteWithRetry(ctx, ProviderSentiment, sentimentTimeout, func(ctx context.Context) error {
		var callErr error
		entities, callErr = g.sentiment.AnalyzeEntities(ctx, text)
		return callErr
	})
	return entities, err
}

// Stats returns a snapshot of every provider's rolling statistics.
func (g *Gateway) Stats() []ProviderStats {
	out := make([]ProviderStats, 0, len(g.stats))
	for _, name := range []string{ProviderPlaces, ProviderSentiment, ProviderGeocoder} {
		out = append(out, g.stats[name].snapshot(name))
	}
	return out
}

// ParseLatLng parses a "lat,lng" string. Returns false for anything
// that is not two valid coordinates.
func ParseLatLng(s string) (models.LatLng, bool) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 2 {
		return models.LatLng{}, false
	}
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lng, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return models.LatLng{}, false
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return models.LatLng{}, false
	}
	return models.LatLng{Lat: lat, Lng: lng}, true
}
