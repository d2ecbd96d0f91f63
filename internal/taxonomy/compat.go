// Vibescout - Mood-Based Place Discovery Engine
// Copyright 2026 Vibescout Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vibescout/vibescout

package taxonomy

import (
	"fmt"

	"github.com/vibescout/vibescout/internal/models"
)

// Compatibility is the advisory result of CheckCompatibility. Issues are
// hints for relaxing filters; a search must never hard-fail on them.
type Compatibility struct {
	IsCompatible bool     `json:"isCompatible"`
	Issues       []string `json:"issues,omitempty"`
}

// CheckCompatibility flags filter combinations that tend to produce thin
// or contradictory result sets.
func (r *Registry) CheckCompatibility(f models.Filters) Compatibility {
	f = f.Normalized()
	var issues []string

	// Vibe vs. venue mismatches.
	if f.Category == "nightlife" && f.MoodScore > 0 && f.MoodScore <= models.MoodChillMax {
		issues = append(issues, "nightlife venues rarely match a chill mood; consider cafes or culture")
	}
	if f.Category == "cafe" && f.MoodScore >= models.MoodHypeMin {
		issues = append(issues, "cafes rarely match a hype mood; consider nightlife or entertainment")
	}
	if f.Category == "wellness" && f.MoodScore >= models.MoodHypeMin {
		issues = append(issues, "wellness venues rarely match a hype mood")
	}

	// Daypart vs. venue mismatches.
	if f.Category == "nightlife" && (f.TimeOfDay == models.TimeMorning || f.TimeOfDay == models.TimeAfternoon) {
		issues = append(issues, "most nightlife venues are closed before evening")
	}
	if f.Category == "cafe" && f.TimeOfDay == models.TimeLate {
		issues = append(issues, "most cafes are closed late at night")
	}

	// Social context mismatches.
	if f.SocialContext == models.SocialFamily && f.Category == "nightlife" {
		issues = append(issues, "nightlife venues are usually not family friendly")
	}

	// Budget vs. category tension.
	if f.Budget == models.Budget("P") && f.Category == "nightlife" {
		issues = append(issues, "nightlife at the lowest budget bracket yields few results in most areas")
	}

	if unknown := f.Category != "" && !r.has(TypeCategory, f.Category); unknown {
		issues = append(issues, fmt.Sprintf("unknown category %q; category filter will be ignored", f.Category))
	}

	return Compatibility{IsCompatible: len(issues) == 0, Issues: issues}
}

func (r *Registry) has(t Type, id string) bool {
	_, ok := r.byID[t][id]
	return ok
}
