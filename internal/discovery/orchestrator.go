// Vibescout - Mood-Based Place Discovery Engine
// Copyright 2026 Vibescout Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vibescout/vibescout

// Package discovery drives the search cycle: cache-first lookup,
// provider search at a filter-derived radius, bounded-batch mood
// annotation, and progressive radius expansion until the delivery
// floor is met or the expansion budget runs out. One Orchestrator owns
// one session; the cache it writes through is shared and outlives any
// session.
package discovery

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vibescout/vibescout/internal/config"
	"github.com/vibescout/vibescout/internal/logging"
	"github.com/vibescout/vibescout/internal/metrics"
	"github.com/vibescout/vibescout/internal/models"
	"github.com/vibescout/vibescout/internal/taxonomy"
)

// Searcher is the slice of the gateway the orchestrator consumes.
type Searcher interface {
	SearchPlaces(ctx context.Context, locationOrQuery string, f models.Filters, radiusMeters int) ([]models.PlaceResult, error)
}

// Annotator produces a mood result for one place's reviews.
type Annotator interface {
	AnalyzeFromReviews(ctx context.Context, reviews []models.Review, category string) models.MoodAnalysisResult
}

// Cache is the slice of the tier manager the orchestrator consumes.
type Cache interface {
	Get(ctx context.Context, key string) (*models.DiscoveryPayload, bool)
	Set(ctx context.Context, key string, payload *models.DiscoveryPayload, activeFilters int)
}

// CacheKeyer derives the cache key for a filter set. Kept as a function
// field so tests can observe key derivation.
type CacheKeyer func(f models.Filters, minResults int) string

// session is one discovery session's mutable state. Guarded by the
// orchestrator mutex; the generation token detects resets that raced
// an in-flight cycle.
type session struct {
	generation     string
	filters        models.Filters
	pool           []models.PlaceResult
	served         int
	radius         int
	expansionCount int
	state          models.LoadingState
}

// Orchestrator runs discovery cycles against the gateway, annotating
// through the mood pipeline and reading/writing the shared cache.
type Orchestrator struct {
	cfg      config.DiscoveryConfig
	searcher Searcher
	moods    Annotator
	cache    Cache
	reg      *taxonomy.Registry
	keyFor   CacheKeyer

	mu      sync.Mutex
	session session

	log zerolog.Logger
}

// New wires an orchestrator. keyFor is typically cachetier.Fingerprint.
func New(cfg config.DiscoveryConfig, searcher Searcher, moods Annotator, cache Cache, reg *taxonomy.Registry, keyFor CacheKeyer) *Orchestrator {
	o := &Orchestrator{
		cfg:      cfg,
		searcher: searcher,
		moods:    moods,
		cache:    cache,
		reg:      reg,
		keyFor:   keyFor,
		log:      logging.Component("discovery"),
	}
	o.session = newSession()
	return o
}

func newSession() session {
	return session{
		generation: uuid.NewString(),
		state:      models.StateInitial,
	}
}

// DiscoverPlaces runs one full cycle for the given filters and returns
// the whole ranked pool. The session then serves further pages through
// GetNextBatch. A cycle that raced a reset is discarded: its places are
// not installed in the session and the caller gets an initial-state
// result, though its cache writes stand.
func (o *Orchestrator) DiscoverPlaces(ctx context.Context, f models.Filters) models.DiscoveryResult {
	start := time.Now()
	f = f.Normalized()

	o.mu.Lock()
	o.session = newSession()
	o.session.filters = f
	o.session.state = models.StateSearching
	generation := o.session.generation
	o.mu.Unlock()

	outcome := o.runCycle(ctx, f, o.reg.StartingRadius(f.DistancePct), 0, nil)

	metrics.DiscoveryCycleDuration.Observe(time.Since(start).Seconds())
	metrics.DiscoveryCycles.WithLabelValues(string(outcome.state)).Inc()

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.session.generation != generation {
		metrics.DiscoveryStaleDrops.Inc()
		o.log.Debug().Msg("cycle finished after session reset, dropping results")
		return models.DiscoveryResult{LoadingState: models.StateInitial}
	}

	o.session.pool = outcome.places
	o.session.served = len(outcome.places)
	o.session.radius = outcome.radius
	o.session.expansionCount = outcome.expansions
	o.session.state = outcome.state

	return models.DiscoveryResult{
		Places:       outcome.places,
		LoadingState: outcome.state,
		Pool:         o.poolInfoLocked(),
		Error:        outcome.errMsg,
	}
}

// GetNextBatch serves the next unserved page of the current pool, or
// refreshes the pool with one more expansion when it is exhausted.
// Returns nil when there is nothing further to serve.
func (o *Orchestrator) GetNextBatch(ctx context.Context, f models.Filters) *models.DiscoveryResult {
	f = f.Normalized()

	o.mu.Lock()
	if o.session.state == models.StateInitial || o.session.filters != f {
		o.mu.Unlock()
		result := o.DiscoverPlaces(ctx, f)
		return &result
	}

	if remaining := len(o.session.pool) - o.session.served; remaining > 0 {
		n := o.cfg.PageSize
		if n > remaining {
			n = remaining
		}
		page := o.session.pool[o.session.served : o.session.served+n]
		o.session.served += n
		result := &models.DiscoveryResult{
			Places:       page,
			LoadingState: o.session.state,
			Pool:         o.poolInfoLocked(),
		}
		o.mu.Unlock()
		return result
	}

	generation := o.session.generation
	radius := o.session.radius + o.cfg.RadiusIncrement
	expansions := o.session.expansionCount
	known := o.session.pool
	o.mu.Unlock()

	if expansions >= o.cfg.MaxExpansions {
		return nil
	}

	outcome := o.runCycle(ctx, f, radius, expansions+1, known)

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.session.generation != generation {
		metrics.DiscoveryStaleDrops.Inc()
		return nil
	}

	fresh := outcome.places[len(known):]
	if len(fresh) == 0 {
		o.session.state = models.StateLimit
		return nil
	}

	o.session.pool = outcome.places
	o.session.radius = outcome.radius
	o.session.expansionCount = outcome.expansions
	o.session.state = outcome.state

	n := o.cfg.PageSize
	if n > len(fresh) {
		n = len(fresh)
	}
	o.session.served += n
	return &models.DiscoveryResult{
		Places:       fresh[:n],
		LoadingState: o.session.state,
		Pool:         o.poolInfoLocked(),
	}
}

// ResetDiscovery clears the session and stamps a new generation token
// so any in-flight cycle's results are discarded on arrival. The shared
// cache is untouched.
func (o *Orchestrator) ResetDiscovery() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.session = newSession()
}

// State snapshots the session for callers.
func (o *Orchestrator) State() models.DiscoveryState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return models.DiscoveryState{
		LoadingState:   o.session.state,
		CurrentRadius:  o.session.radius,
		ExpansionCount: o.session.expansionCount,
		Pool:           o.poolInfoLocked(),
	}
}

func (o *Orchestrator) poolInfoLocked() models.PoolInfo {
	remaining := len(o.session.pool) - o.session.served
	return models.PoolInfo{
		Remaining:     remaining,
		TotalPoolSize: len(o.session.pool),
		NeedsRefresh:  remaining == 0,
	}
}

// cycleOutcome is what one runCycle pass produced.
type cycleOutcome struct {
	places     []models.PlaceResult
	radius     int
	expansions int
	state      models.LoadingState
	errMsg     string
}

// runCycle performs the search loop: cache lookup, provider search,
// mood annotation, and radius expansion until minResults places are
// found or the expansion budget is exhausted. seed carries already
// known places during a pool refresh; they stay ahead of new finds and
// are never re-fetched.
func (o *Orchestrator) runCycle(ctx context.Context, f models.Filters, radius, startExpansions int, seed []models.PlaceResult) cycleOutcome {
	key := o.keyFor(f, o.cfg.MinResults)

	if len(seed) == 0 {
		if cached, ok := o.cache.Get(ctx, key); ok {
			places := o.annotateMissing(ctx, cached.Places, f.Category)
			o.rank(places, f)
			o.log.Debug().Int("places", len(places)).Msg("cycle served from cache")
			return cycleOutcome{
				places:     places,
				radius:     cached.RadiusMeters,
				expansions: cached.ExpansionCount,
				state:      models.StateComplete,
			}
		}
	}

	pool := append([]models.PlaceResult(nil), seed...)
	expansions := startExpansions
	var lastErr error

	for {
		found, err := o.searcher.SearchPlaces(ctx, f.Location, f, radius)
		if err != nil {
			lastErr = err
		}

		fresh := o.annotate(ctx, newPlaces(pool, found), f.Category)
		pool = models.DedupePlaces(pool, fresh)

		if len(pool) >= o.cfg.MinResults || expansions >= o.cfg.MaxExpansions {
			break
		}
		if ctx.Err() != nil {
			lastErr = ctx.Err()
			break
		}

		expansions++
		radius += o.cfg.RadiusIncrement
		metrics.DiscoveryExpansions.Inc()
		o.log.Debug().Int("radius", radius).Int("expansion", expansions).Msg("expanding search radius")
	}

	// Seed places keep their positions during a refresh; only the new
	// tail is ranked.
	o.rank(pool[len(seed):], f)

	state := models.StateComplete
	var errMsg string
	switch {
	case len(pool) == 0 && lastErr != nil:
		state = models.StateError
		errMsg = lastErr.Error()
	case len(pool) < o.cfg.MinResults:
		state = models.StateLimit
	}

	if len(pool) > 0 {
		o.cache.Set(ctx, key, &models.DiscoveryPayload{
			Places:         pool,
			Filters:        f,
			RadiusMeters:   radius,
			ExpansionCount: expansions,
			FetchedAt:      time.Now().UTC(),
		}, f.ActiveCount())
	}

	return cycleOutcome{places: pool, radius: radius, expansions: expansions, state: state, errMsg: errMsg}
}

// newPlaces filters found down to places not already in pool.
func newPlaces(pool, found []models.PlaceResult) []models.PlaceResult {
	known := make(map[string]struct{}, len(pool))
	for _, p := range pool {
		known[p.PlaceID] = struct{}{}
	}
	out := make([]models.PlaceResult, 0, len(found))
	for _, p := range found {
		if _, ok := known[p.PlaceID]; !ok {
			out = append(out, p)
		}
	}
	return out
}

// annotate runs the mood pipeline over places in bounded batches,
// pausing between batches to pace the provider.
func (o *Orchestrator) annotate(ctx context.Context, places []models.PlaceResult, category string) []models.PlaceResult {
	for start := 0; start < len(places); start += o.cfg.BatchSize {
		end := start + o.cfg.BatchSize
		if end > len(places) {
			end = len(places)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(p *models.PlaceResult) {
				defer wg.Done()
				result := o.moods.AnalyzeFromReviews(ctx, p.Reviews, category)
				p.Mood = &result
			}(&places[i])
		}
		wg.Wait()

		if end < len(places) && o.cfg.BatchPause > 0 {
			select {
			case <-ctx.Done():
				return places
			case <-time.After(o.cfg.BatchPause):
			}
		}
	}
	return places
}

// annotateMissing fills in moods a cached payload lacks.
func (o *Orchestrator) annotateMissing(ctx context.Context, places []models.PlaceResult, category string) []models.PlaceResult {
	missing := make([]int, 0)
	for i := range places {
		if places[i].Mood == nil {
			missing = append(missing, i)
		}
	}
	if len(missing) == 0 {
		return places
	}
	for _, i := range missing {
		result := o.moods.AnalyzeFromReviews(ctx, places[i].Reviews, category)
		places[i].Mood = &result
	}
	return places
}

// rank orders places by mood fit (closeness to the requested score),
// breaking ties on rating and then review volume.
func (o *Orchestrator) rank(places []models.PlaceResult, f models.Filters) {
	fit := func(p models.PlaceResult) float64 {
		if p.Mood == nil {
			return 100
		}
		d := p.Mood.Score - f.MoodScore
		if d < 0 {
			d = -d
		}
		return d
	}
	sort.SliceStable(places, func(i, j int) bool {
		fi, fj := fit(places[i]), fit(places[j])
		if fi != fj {
			return fi < fj
		}
		if places[i].Rating != places[j].Rating {
			return places[i].Rating > places[j].Rating
		}
		return places[i].ReviewCount > places[j].ReviewCount
	})
}
