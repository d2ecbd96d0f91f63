// Vibescout - Mood-Based Place Discovery Engine
// Copyright 2026 Vibescout Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vibescout/vibescout

package models

import "strings"

// Budget is the price-bracket enum, mirroring the one-to-four "P" scale
// shown in the app's filter sheet.
type Budget string

// Budget brackets from cheapest to most expensive.
const (
	BudgetLow      Budget = "P"
	BudgetModerate Budget = "PP"
	BudgetHigh     Budget = "PPP"
	BudgetLuxury   Budget = "PPPP"
)

// PriceLevelRange returns the inclusive provider price-level range
// (0-4 scale) covered by this budget bracket.
func (b Budget) PriceLevelRange() (min, max int) {
	switch b {
	case BudgetLow:
		return 0, 1
	case BudgetModerate:
		return 1, 2
	case BudgetHigh:
		return 2, 3
	case BudgetLuxury:
		return 3, 4
	default:
		return 0, 4
	}
}

// TimeOfDay is the coarse daypart filter.
type TimeOfDay string

// Daypart values.
const (
	TimeMorning   TimeOfDay = "morning"
	TimeAfternoon TimeOfDay = "afternoon"
	TimeEvening   TimeOfDay = "evening"
	TimeLate      TimeOfDay = "late-night"
)

// SocialContext describes who the user is going out with.
type SocialContext string

// Social context values.
const (
	SocialSolo   SocialContext = "solo"
	SocialCouple SocialContext = "couple"
	SocialGroup  SocialContext = "group"
	SocialFamily SocialContext = "family"
)

// LatLng is a WGS84 coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// IsZero reports whether the coordinate is the zero sentinel used when
// geocoding fails.
func (c LatLng) IsZero() bool {
	return c.Lat == 0 && c.Lng == 0
}

// Filters is one immutable user filter selection. A Filters value is
// created per interaction, normalized once, and then treated as read-only
// by every component; the cache fingerprint is derived from the
// normalized form.
type Filters struct {
	// Category is a taxonomy category id such as "food" or "nightlife".
	Category string `json:"category"`

	// MoodScore is the desired mood on the 0-100 chill..hype scale.
	MoodScore float64 `json:"moodScore"`

	Budget        Budget        `json:"budget"`
	TimeOfDay     TimeOfDay     `json:"timeOfDay"`
	SocialContext SocialContext `json:"socialContext"`

	// DistancePct is the distance slider position, 0-100. The taxonomy
	// registry maps it to a concrete starting radius in meters.
	DistancePct int `json:"distancePct"`

	// Location is either free text ("shoreditch, london") or a
	// "lat,lng" pair. Free text is geocoded by the API gateway.
	Location string `json:"location"`
}

// Normalized returns a copy with canonical field forms: trimmed
// lowercase strings and clamped numeric ranges. Fingerprinting and all
// component logic operate on the normalized form so equivalent
// selections collapse to one cache key.
func (f Filters) Normalized() Filters {
	n := f
	n.Category = strings.ToLower(strings.TrimSpace(f.Category))
	n.Location = strings.ToLower(strings.TrimSpace(f.Location))
	n.Budget = Budget(strings.ToUpper(strings.TrimSpace(string(f.Budget))))
	n.TimeOfDay = TimeOfDay(strings.ToLower(strings.TrimSpace(string(f.TimeOfDay))))
	n.SocialContext = SocialContext(strings.ToLower(strings.TrimSpace(string(f.SocialContext))))
	n.MoodScore = clamp(f.MoodScore, 0, 100)
	if n.DistancePct < 0 {
		n.DistancePct = 0
	}
	if n.DistancePct > 100 {
		n.DistancePct = 100
	}
	return n
}

// ActiveCount returns how many filter dimensions are set. The cache tier
// manager scales TTLs by this: narrow selections (few filters) age out
// faster than highly specific ones.
func (f Filters) ActiveCount() int {
	count := 0
	if f.Category != "" {
		count++
	}
	if f.MoodScore > 0 {
		count++
	}
	if f.Budget != "" {
		count++
	}
	if f.TimeOfDay != "" {
		count++
	}
	if f.SocialContext != "" {
		count++
	}
	if f.DistancePct > 0 {
		count++
	}
	return count
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
