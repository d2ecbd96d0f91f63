// Vibescout - Mood-Based Place Discovery Engine
// Copyright 2026 Vibescout Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vibescout/vibescout

package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/vibescout/vibescout/internal/cachetier"
	"github.com/vibescout/vibescout/internal/gateway"
	"github.com/vibescout/vibescout/internal/logging"
	"github.com/vibescout/vibescout/internal/models"
	"github.com/vibescout/vibescout/internal/mood"
	"github.com/vibescout/vibescout/internal/taxonomy"
)

// Discoverer is the orchestrator surface the handlers consume.
type Discoverer interface {
	DiscoverPlaces(ctx context.Context, f models.Filters) models.DiscoveryResult
	GetNextBatch(ctx context.Context, f models.Filters) *models.DiscoveryResult
	ResetDiscovery()
	State() models.DiscoveryState
}

// CacheAdmin is the tier manager surface the handlers consume.
type CacheAdmin interface {
	Stats(ctx context.Context) cachetier.Stats
	InvalidateAll(ctx context.Context)
	InvalidateMatching(ctx context.Context, field, value string) int
}

// GatewayStats exposes rolling provider statistics.
type GatewayStats interface {
	Stats() []gateway.ProviderStats
}

// Handlers holds every endpoint's dependencies.
type Handlers struct {
	discoverer Discoverer
	cache      CacheAdmin
	gw         GatewayStats
	reg        *taxonomy.Registry
	ready      func() error
	validate   *validator.Validate
	log        zerolog.Logger
}

// NewHandlers wires the handler set. ready is consulted by the
// readiness probe; nil means always ready.
func NewHandlers(d Discoverer, cache CacheAdmin, gw GatewayStats, reg *taxonomy.Registry, ready func() error) *Handlers {
	return &Handlers{
		discoverer: d,
		cache:      cache,
		gw:         gw,
		reg:        reg,
		ready:      ready,
		validate:   validator.New(),
		log:        logging.Component("api"),
	}
}

// discoverRequest is the request body shared by discover and next.
// Enum fields are validated after normalization.
type discoverRequest struct {
	Category      string  `json:"category"`
	MoodScore     float64 `json:"moodScore" validate:"min=0,max=100"`
	Budget        string  `json:"budget" validate:"omitempty,oneof=P PP PPP PPPP"`
	TimeOfDay     string  `json:"timeOfDay" validate:"omitempty,oneof=morning afternoon evening late-night"`
	SocialContext string  `json:"socialContext" validate:"omitempty,oneof=solo couple group family"`
	DistancePct   int     `json:"distancePct" validate:"min=0,max=100"`
	Location      string  `json:"location" validate:"required"`
}

// discoverResponse pairs the discovery result with aggregate mood
// statistics and any advisory filter compatibility issues.
type discoverResponse struct {
	models.DiscoveryResult
	MoodStatistics models.MoodStatistics  `json:"moodStatistics"`
	Compatibility  taxonomy.Compatibility `json:"compatibility"`
}

func (h *Handlers) decodeFilters(w http.ResponseWriter, r *http.Request) (models.Filters, bool) {
	rw := NewResponseWriter(w, r)

	var req discoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rw.BadRequest("invalid JSON body: " + err.Error())
		return models.Filters{}, false
	}

	f := models.Filters{
		Category:      req.Category,
		MoodScore:     req.MoodScore,
		Budget:        models.Budget(req.Budget),
		TimeOfDay:     models.TimeOfDay(req.TimeOfDay),
		SocialContext: models.SocialContext(req.SocialContext),
		DistancePct:   req.DistancePct,
		Location:      req.Location,
	}.Normalized()

	req.Budget = string(f.Budget)
	req.TimeOfDay = string(f.TimeOfDay)
	req.SocialContext = string(f.SocialContext)
	req.Location = f.Location

	if err := h.validate.Struct(req); err != nil {
		details := make(map[string]string)
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				details[strings.ToLower(fe.Field())] = fe.Tag()
			}
		}
		rw.ValidationError("invalid filters", details)
		return models.Filters{}, false
	}
	return f, true
}

// Discover runs a full discovery cycle.
// POST /api/v1/discover
func (h *Handlers) Discover(w http.ResponseWriter, r *http.Request) {
	f, ok := h.decodeFilters(w, r)
	if !ok {
		return
	}

	result := h.discoverer.DiscoverPlaces(r.Context(), f)
	NewResponseWriter(w, r).Success(discoverResponse{
		DiscoveryResult: result,
		MoodStatistics:  mood.Statistics(result.Places),
		Compatibility:   h.reg.CheckCompatibility(f),
	})
}

// DiscoverNext serves the next page of the current pool.
// POST /api/v1/discover/next
func (h *Handlers) DiscoverNext(w http.ResponseWriter, r *http.Request) {
	f, ok := h.decodeFilters(w, r)
	if !ok {
		return
	}

	result := h.discoverer.GetNextBatch(r.Context(), f)
	if result == nil {
		NewResponseWriter(w, r).Success(nil)
		return
	}
	NewResponseWriter(w, r).Success(discoverResponse{
		DiscoveryResult: *result,
		MoodStatistics:  mood.Statistics(result.Places),
		Compatibility:   h.reg.CheckCompatibility(f),
	})
}

// DiscoverReset clears the discovery session. The shared cache is left
// intact.
// POST /api/v1/discover/reset
func (h *Handlers) DiscoverReset(w http.ResponseWriter, r *http.Request) {
	h.discoverer.ResetDiscovery()
	NewResponseWriter(w, r).NoContent()
}

// DiscoverState reports the current session state.
// GET /api/v1/discover/state
func (h *Handlers) DiscoverState(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(h.discoverer.State())
}

// CacheStats reports per-tier cache counters.
// GET /api/v1/cache/stats
func (h *Handlers) CacheStats(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(h.cache.Stats(r.Context()))
}

// invalidateRequest selects what to drop: everything, or entries whose
// stored filters match one field.
type invalidateRequest struct {
	Pattern string `json:"pattern" validate:"required,oneof=all category location budget"`
	Value   string `json:"value"`
}

// CacheInvalidate drops cached entries.
// POST /api/v1/cache/invalidate
func (h *Handlers) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req invalidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rw.BadRequest("invalid JSON body: " + err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		rw.ValidationError("invalid invalidation request", err.Error())
		return
	}

	if req.Pattern == "all" {
		h.cache.InvalidateAll(r.Context())
		h.log.Info().Msg("cache fully invalidated")
		rw.Success(map[string]interface{}{"invalidated": "all"})
		return
	}

	if req.Value == "" {
		rw.BadRequest("value is required for selective invalidation")
		return
	}
	n := h.cache.InvalidateMatching(r.Context(), req.Pattern, req.Value)
	h.log.Info().Str("pattern", req.Pattern).Str("value", req.Value).Int("removed", n).Msg("selective cache invalidation")
	rw.Success(map[string]interface{}{"invalidated": n})
}

// GatewayProviderStats reports rolling per-provider call statistics.
// GET /api/v1/gateway/stats
func (h *Handlers) GatewayProviderStats(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(h.gw.Stats())
}

// TaxonomyList returns every entry of one filter type.
// GET /api/v1/taxonomy/{type}
func (h *Handlers) TaxonomyList(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	t := taxonomy.Type(chi.URLParam(r, "type"))
	entries := h.reg.List(t)
	if len(entries) == 0 {
		rw.NotFound("unknown taxonomy type")
		return
	}
	rw.Success(entries)
}

// FilterCompatibility runs the advisory compatibility check.
// POST /api/v1/filters/compatibility
func (h *Handlers) FilterCompatibility(w http.ResponseWriter, r *http.Request) {
	f, ok := h.decodeFilters(w, r)
	if !ok {
		return
	}
	NewResponseWriter(w, r).Success(h.reg.CheckCompatibility(f))
}

// HealthLive is the liveness probe.
// GET /api/v1/health/live
func (h *Handlers) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]string{"status": "alive"})
}

// HealthReady is the readiness probe; it fails while a dependency is
// unavailable.
// GET /api/v1/health/ready
func (h *Handlers) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.ready != nil {
		if err := h.ready(); err != nil {
			rw.ServiceUnavailable(err.Error())
			return
		}
	}
	rw.Success(map[string]string{"status": "ready"})
}
