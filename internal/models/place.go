// Vibescout - Mood-Based Place Discovery Engine
// Copyright 2026 Vibescout Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vibescout/vibescout

package models

import "time"

// MaxReviewsPerPlace bounds how many recent reviews are carried on a
// PlaceResult. Providers can return dozens; the mood pipeline only ever
// weighs the ten best, so carrying more is wasted cache bytes.
const MaxReviewsPerPlace = 10

// Review is one user review attached to a place.
type Review struct {
	Text        string    `json:"text"`
	Rating      float64   `json:"rating"`
	PublishTime time.Time `json:"publishTime"`
}

// DaysOld returns the review age in whole days relative to now.
func (r Review) DaysOld(now time.Time) float64 {
	if r.PublishTime.IsZero() || r.PublishTime.After(now) {
		return 0
	}
	return now.Sub(r.PublishTime).Hours() / 24
}

// PlaceResult is a single discovered place. It mirrors the fields the
// place-search provider supplies plus the engine's mood annotation.
type PlaceResult struct {
	PlaceID        string   `json:"place_id"`
	Name           string   `json:"name"`
	Address        string   `json:"address"`
	Rating         float64  `json:"rating"`
	ReviewCount    int      `json:"reviewCount"`
	PriceLevel     int      `json:"priceLevel"`
	Types          []string `json:"types"`
	Coordinates    LatLng   `json:"coordinates"`
	Reviews        []Review `json:"reviews,omitempty"`
	Website        string   `json:"website,omitempty"`
	Phone          string   `json:"phone,omitempty"`
	OpeningHours   []string `json:"openingHours,omitempty"`
	BusinessStatus string   `json:"businessStatus,omitempty"`
	PhotoRefs      []string `json:"photoRefs,omitempty"`

	// Mood is nil until the mood pipeline has annotated the place.
	Mood *MoodAnalysisResult `json:"mood,omitempty"`
}

// HasType reports whether the place carries the given provider type tag.
func (p *PlaceResult) HasType(t string) bool {
	for _, pt := range p.Types {
		if pt == t {
			return true
		}
	}
	return false
}

// PrimaryType returns the first provider type tag, or "" when untyped.
func (p *PlaceResult) PrimaryType() string {
	if len(p.Types) == 0 {
		return ""
	}
	return p.Types[0]
}

// DedupePlaces merges place slices preserving first-seen order, dropping
// later duplicates by PlaceID. Used when radius expansion re-discovers
// places already found at a smaller radius.
func DedupePlaces(slices ...[]PlaceResult) []PlaceResult {
	seen := make(map[string]struct{})
	var out []PlaceResult
	for _, s := range slices {
		for _, p := range s {
			if p.PlaceID == "" {
				continue
			}
			if _, dup := seen[p.PlaceID]; dup {
				continue
			}
			seen[p.PlaceID] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}
