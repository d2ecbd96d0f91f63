// Vibescout - Mood-Based Place Discovery Engine
// Copyright 2026 Vibescout Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vibescout/vibescout

package taxonomy

import "github.com/vibescout/vibescout/internal/models"

// builtinEntries returns the static taxonomy. The tables are compiled
// into the binary; there is no runtime taxonomy source.
func builtinEntries() []Entry {
	return []Entry{
		// Budget brackets. Price levels use the provider's 0-4 scale.
		{
			ID: "P", Label: "Cheap eats", Type: TypeBudget,
			Budget: &BudgetPayload{Bracket: models.BudgetLow, MinPrice: 0, MaxPrice: 1, Keywords: []string{"cheap", "budget"}},
		},
		{
			ID: "PP", Label: "Casual", Type: TypeBudget,
			Budget: &BudgetPayload{Bracket: models.BudgetModerate, MinPrice: 1, MaxPrice: 2, Keywords: []string{"casual"}},
		},
		{
			ID: "PPP", Label: "Treat yourself", Type: TypeBudget,
			Budget: &BudgetPayload{Bracket: models.BudgetHigh, MinPrice: 2, MaxPrice: 3, Keywords: []string{"upscale"}},
		},
		{
			ID: "PPPP", Label: "Special occasion", Type: TypeBudget,
			Budget: &BudgetPayload{Bracket: models.BudgetLuxury, MinPrice: 3, MaxPrice: 4, Keywords: []string{"fine dining", "luxury"}},
		},

		// Mood bands. Boundaries must agree with models.CategoryForScore;
		// the registry refuses to build if they drift.
		{
			ID: "chill", Label: "Chill", Type: TypeMood,
			Mood: &MoodPayload{
				MinScore: 0, MaxScore: models.MoodChillMax, Category: models.MoodChill,
				PlaceTypes: []string{"cafe", "book_store", "art_gallery", "spa"},
				Keywords:   []string{"quiet", "cozy", "relaxed"},
			},
		},
		{
			ID: "neutral", Label: "Easygoing", Type: TypeMood,
			Mood: &MoodPayload{
				MinScore: 33.34, MaxScore: 66.66, Category: models.MoodNeutral,
				PlaceTypes: []string{"restaurant", "museum", "park"},
				Keywords:   []string{"popular", "friendly"},
			},
		},
		{
			ID: "hype", Label: "Hype", Type: TypeMood,
			Mood: &MoodPayload{
				MinScore: models.MoodHypeMin, MaxScore: 100, Category: models.MoodHype,
				PlaceTypes: []string{"night_club", "bar", "bowling_alley", "amusement_park"},
				Keywords:   []string{"lively", "buzzing", "energetic"},
			},
		},

		// Social contexts.
		{
			ID: "solo", Label: "Just me", Type: TypeSocial,
			Social: &SocialPayload{Context: models.SocialSolo, PlaceTypes: []string{"cafe", "library", "museum"}, Keywords: []string{"solo friendly"}},
		},
		{
			ID: "couple", Label: "Date", Type: TypeSocial,
			Social: &SocialPayload{Context: models.SocialCouple, PlaceTypes: []string{"restaurant", "wine_bar"}, Keywords: []string{"romantic", "intimate"}},
		},
		{
			ID: "group", Label: "With friends", Type: TypeSocial,
			Social: &SocialPayload{Context: models.SocialGroup, PlaceTypes: []string{"bar", "bowling_alley", "karaoke"}, Keywords: []string{"group friendly"}},
		},
		{
			ID: "family", Label: "Family", Type: TypeSocial,
			Social: &SocialPayload{Context: models.SocialFamily, PlaceTypes: []string{"park", "zoo", "aquarium", "family_restaurant"}, Keywords: []string{"family friendly", "kid friendly"}},
		},

		// Dayparts.
		{
			ID: "morning", Label: "Morning", Type: TypeTime,
			Time: &TimePayload{Daypart: models.TimeMorning, StartHour: 6, EndHour: 11},
		},
		{
			ID: "afternoon", Label: "Afternoon", Type: TypeTime,
			Time: &TimePayload{Daypart: models.TimeAfternoon, StartHour: 11, EndHour: 17},
		},
		{
			ID: "evening", Label: "Evening", Type: TypeTime,
			Time: &TimePayload{Daypart: models.TimeEvening, StartHour: 17, EndHour: 22},
		},
		{
			ID: "late-night", Label: "Late night", Type: TypeTime,
			Time: &TimePayload{Daypart: models.TimeLate, StartHour: 22, EndHour: 4},
		},

		// Categories with provider place types and baseline moods for
		// the pipeline's category-mapping fallback.
		{
			ID: "food", Label: "Food", Type: TypeCategory,
			Category: &CategoryPayload{PlaceTypes: []string{"restaurant", "meal_takeaway", "food_court"}, BaselineMood: 55},
		},
		{
			ID: "cafe", Label: "Cafes", Type: TypeCategory,
			Category: &CategoryPayload{PlaceTypes: []string{"cafe", "coffee_shop", "bakery"}, BaselineMood: 35},
		},
		{
			ID: "nightlife", Label: "Nightlife", Type: TypeCategory,
			Category: &CategoryPayload{PlaceTypes: []string{"night_club", "bar", "pub"}, BaselineMood: 90},
		},
		{
			ID: "culture", Label: "Culture", Type: TypeCategory,
			Category: &CategoryPayload{PlaceTypes: []string{"museum", "art_gallery", "performing_arts_theater"}, BaselineMood: 40},
		},
		{
			ID: "outdoors", Label: "Outdoors", Type: TypeCategory,
			Category: &CategoryPayload{PlaceTypes: []string{"park", "hiking_area", "botanical_garden"}, BaselineMood: 45},
		},
		{
			ID: "shopping", Label: "Shopping", Type: TypeCategory,
			Category: &CategoryPayload{PlaceTypes: []string{"shopping_mall", "clothing_store", "market"}, BaselineMood: 50},
		},
		{
			ID: "wellness", Label: "Wellness", Type: TypeCategory,
			Category: &CategoryPayload{PlaceTypes: []string{"spa", "gym", "yoga_studio"}, BaselineMood: 30},
		},
		{
			ID: "entertainment", Label: "Entertainment", Type: TypeCategory,
			Category: &CategoryPayload{PlaceTypes: []string{"movie_theater", "bowling_alley", "amusement_park"}, BaselineMood: 70},
		},

		// Distance bands. Radii are the starting search radius; the
		// orchestrator expands from there.
		{
			ID: "walking", Label: "Walking distance", Type: TypeDistance,
			Distance: &DistancePayload{MinPct: 0, MaxPct: 20, RadiusMeters: 800},
		},
		{
			ID: "nearby", Label: "Nearby", Type: TypeDistance,
			Distance: &DistancePayload{MinPct: 21, MaxPct: 40, RadiusMeters: 2000},
		},
		{
			ID: "short-ride", Label: "Short ride", Type: TypeDistance,
			Distance: &DistancePayload{MinPct: 41, MaxPct: 60, RadiusMeters: 5000},
		},
		{
			ID: "across-town", Label: "Across town", Type: TypeDistance,
			Distance: &DistancePayload{MinPct: 61, MaxPct: 80, RadiusMeters: 10000},
		},
		{
			ID: "day-trip", Label: "Day trip", Type: TypeDistance,
			Distance: &DistancePayload{MinPct: 81, MaxPct: 100, RadiusMeters: 25000},
		},
	}
}
