// Vibescout - Mood-Based Place Discovery Engine
// Copyright 2026 Vibescout Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vibescout/vibescout

// Package taxonomy is the engine's filter-taxonomy registry: static
// budget/mood/social/time/category/distance tables compiled into O(1)
// lookup structures at startup. The registry is pure and read-only after
// New returns, so it needs no locking.
package taxonomy

import (
	"fmt"
	"math"

	"github.com/vibescout/vibescout/internal/models"
)

// Type discriminates the filter taxonomies.
type Type string

// Taxonomy types.
const (
	TypeBudget   Type = "budget"
	TypeMood     Type = "mood"
	TypeSocial   Type = "social"
	TypeTime     Type = "time"
	TypeCategory Type = "category"
	TypeDistance Type = "distance"
)

// allTypes is the iteration order for validation and listing.
var allTypes = []Type{TypeBudget, TypeMood, TypeSocial, TypeTime, TypeCategory, TypeDistance}

// Entry is one taxonomy row. Exactly one payload pointer is non-nil,
// matching Type: a discriminated union with statically typed payloads.
type Entry struct {
	ID    string
	Label string
	Type  Type

	Budget   *BudgetPayload
	Mood     *MoodPayload
	Social   *SocialPayload
	Time     *TimePayload
	Category *CategoryPayload
	Distance *DistancePayload
}

// BudgetPayload maps a budget bracket to provider price levels and
// query keywords.
type BudgetPayload struct {
	Bracket  models.Budget
	MinPrice int
	MaxPrice int
	Keywords []string
}

// MoodPayload is one band of the 0-100 mood scale.
type MoodPayload struct {
	MinScore   float64
	MaxScore   float64
	Category   models.MoodCategory
	PlaceTypes []string
	Keywords   []string
}

// SocialPayload maps a social context to place types and keywords.
type SocialPayload struct {
	Context    models.SocialContext
	PlaceTypes []string
	Keywords   []string
}

// TimePayload is a daypart's wall-clock window.
type TimePayload struct {
	Daypart   models.TimeOfDay
	StartHour int
	EndHour   int
}

// CategoryPayload maps a category to provider place types and the
// category's baseline mood, which the mood pipeline uses as its
// last-resort score.
type CategoryPayload struct {
	PlaceTypes   []string
	BaselineMood float64
}

// DistancePayload is one band of the 0-100 distance slider.
type DistancePayload struct {
	MinPct       int
	MaxPct       int
	RadiusMeters int
}

// Registry holds the compiled taxonomy tables.
type Registry struct {
	byID    map[Type]map[string]Entry
	ordered map[Type][]Entry

	// Per-integer point-query tables for the two sliders.
	moodByScore   [101]Entry
	distanceByPct [101]Entry
}

// New builds and validates the registry from the built-in tables. An
// error here means the taxonomy itself is malformed and the process must
// not start; there is no degraded mode.
func New() (*Registry, error) {
	r := &Registry{
		byID:    make(map[Type]map[string]Entry, len(allTypes)),
		ordered: make(map[Type][]Entry, len(allTypes)),
	}
	for _, t := range allTypes {
		r.byID[t] = make(map[string]Entry)
	}

	for _, e := range builtinEntries() {
		if err := validateEntry(e); err != nil {
			return nil, fmt.Errorf("taxonomy %s/%s: %w", e.Type, e.ID, err)
		}
		if _, dup := r.byID[e.Type][e.ID]; dup {
			return nil, fmt.Errorf("taxonomy %s: duplicate id %q", e.Type, e.ID)
		}
		r.byID[e.Type][e.ID] = e
		r.ordered[e.Type] = append(r.ordered[e.Type], e)
	}

	if err := r.buildMoodTable(); err != nil {
		return nil, err
	}
	if err := r.buildDistanceTable(); err != nil {
		return nil, err
	}
	return r, nil
}

// validateEntry enforces the minimal shape every row must have and that
// the payload matches the declared type.
func validateEntry(e Entry) error {
	if e.ID == "" {
		return fmt.Errorf("missing id")
	}
	if e.Label == "" {
		return fmt.Errorf("missing label")
	}
	var payloadType Type
	switch {
	case e.Budget != nil:
		payloadType = TypeBudget
	case e.Mood != nil:
		payloadType = TypeMood
	case e.Social != nil:
		payloadType = TypeSocial
	case e.Time != nil:
		payloadType = TypeTime
	case e.Category != nil:
		payloadType = TypeCategory
	case e.Distance != nil:
		payloadType = TypeDistance
	default:
		return fmt.Errorf("missing payload")
	}
	if payloadType != e.Type {
		return fmt.Errorf("payload type %s does not match declared type %s", payloadType, e.Type)
	}
	return nil
}

// buildMoodTable compiles the per-integer mood lookup and checks the
// bands cover 0-100 contiguously with boundaries agreeing with
// models.CategoryForScore. The registry and the pipeline must never
// disagree about where chill ends and hype begins.
func (r *Registry) buildMoodTable() error {
	bands := r.ordered[TypeMood]
	if len(bands) == 0 {
		return fmt.Errorf("taxonomy mood: no bands defined")
	}
	for score := 0; score <= 100; score++ {
		found := false
		for _, b := range bands {
			if float64(score) >= b.Mood.MinScore && float64(score) <= b.Mood.MaxScore {
				r.moodByScore[score] = b
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("taxonomy mood: score %d not covered by any band", score)
		}
		want := models.CategoryForScore(float64(score))
		if got := r.moodByScore[score].Mood.Category; got != want {
			return fmt.Errorf("taxonomy mood: score %d maps to %s, models says %s", score, got, want)
		}
	}
	return nil
}

// buildDistanceTable compiles the per-integer distance lookup and checks
// 0-100 coverage.
func (r *Registry) buildDistanceTable() error {
	bands := r.ordered[TypeDistance]
	if len(bands) == 0 {
		return fmt.Errorf("taxonomy distance: no bands defined")
	}
	for pct := 0; pct <= 100; pct++ {
		found := false
		for _, b := range bands {
			if pct >= b.Distance.MinPct && pct <= b.Distance.MaxPct {
				r.distanceByPct[pct] = b
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("taxonomy distance: percentile %d not covered by any band", pct)
		}
	}
	return nil
}

// Get returns the entry with the given id, if any.
func (r *Registry) Get(t Type, id string) (Entry, bool) {
	e, ok := r.byID[t][id]
	return e, ok
}

// List returns all entries of a type in definition order. The returned
// slice is shared; callers must not mutate it.
func (r *Registry) List(t Type) []Entry {
	return r.ordered[t]
}

// MoodByScore returns the mood band for a 0-100 score. Out-of-range
// scores clamp to the nearest band.
func (r *Registry) MoodByScore(score float64) Entry {
	idx := int(math.Round(score))
	if idx < 0 {
		idx = 0
	}
	if idx > 100 {
		idx = 100
	}
	return r.moodByScore[idx]
}

// DistanceByPercent returns the distance band for a 0-100 percentile.
// Out-of-range values clamp.
func (r *Registry) DistanceByPercent(pct int) Entry {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return r.distanceByPct[pct]
}

// StartingRadius returns the search radius in meters for a distance
// slider position.
func (r *Registry) StartingRadius(pct int) int {
	return r.DistanceByPercent(pct).Distance.RadiusMeters
}

// BaselineMood returns the per-category baseline mood score used by the
// pipeline's category-mapping fallback. Unknown categories get the
// neutral default of 50.
func (r *Registry) BaselineMood(category string) float64 {
	if e, ok := r.byID[TypeCategory][category]; ok {
		return e.Category.BaselineMood
	}
	return 50
}

// PreferredPlaceTypes derives the included-type list for a search from
// the category, social context, and mood band, deduplicated in priority
// order (category first).
func (r *Registry) PreferredPlaceTypes(f models.Filters) []string {
	f = f.Normalized()
	seen := make(map[string]struct{})
	var out []string
	appendTypes := func(types []string) {
		for _, t := range types {
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}

	if e, ok := r.byID[TypeCategory][f.Category]; ok {
		appendTypes(e.Category.PlaceTypes)
	}
	if e, ok := r.byID[TypeSocial][string(f.SocialContext)]; ok {
		appendTypes(e.Social.PlaceTypes)
	}
	if f.MoodScore > 0 {
		appendTypes(r.MoodByScore(f.MoodScore).Mood.PlaceTypes)
	}
	return out
}

// QueryKeywords collects the text-query keywords for a filter selection
// from the mood band, budget bracket, and social context, in that order.
func (r *Registry) QueryKeywords(f models.Filters) []string {
	f = f.Normalized()
	var out []string
	if f.MoodScore > 0 {
		out = append(out, r.MoodByScore(f.MoodScore).Mood.Keywords...)
	}
	if e, ok := r.byID[TypeBudget][string(f.Budget)]; ok {
		out = append(out, e.Budget.Keywords...)
	}
	if e, ok := r.byID[TypeSocial][string(f.SocialContext)]; ok {
		out = append(out, e.Social.Keywords...)
	}
	return out
}
