// Vibescout - Mood-Based Place Discovery Engine
// Copyright 2026 Vibescout Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vibescout/vibescout

package models

// MoodCategory buckets a 0-100 mood score into the three user-facing
// vibes.
type MoodCategory string

// Mood categories from calm to energetic.
const (
	MoodChill   MoodCategory = "chill"
	MoodNeutral MoodCategory = "neutral"
	MoodHype    MoodCategory = "hype"
)

// Mood category boundaries. CategoryForScore and the taxonomy registry's
// mood table must agree on these exact values; the registry validates
// its table against them at init.
const (
	MoodChillMax = 33.33
	MoodHypeMin  = 66.67
)

// CategoryForScore maps a mood score to its category. This is the one
// authoritative definition of the boundary behavior: scores at or below
// MoodChillMax are chill, at or above MoodHypeMin are hype, everything
// between is neutral.
func CategoryForScore(score float64) MoodCategory {
	switch {
	case score <= MoodChillMax:
		return MoodChill
	case score >= MoodHypeMin:
		return MoodHype
	default:
		return MoodNeutral
	}
}

// MoodSource identifies which pipeline stage produced a result, in
// decreasing order of trust.
type MoodSource string

// Mood sources.
const (
	SourceEntityAnalysis    MoodSource = "entity-analysis"
	SourceSentimentAnalysis MoodSource = "sentiment-analysis"
	SourceCategoryMapping   MoodSource = "category-mapping"
	SourceFallback          MoodSource = "fallback"
)

// MaxMoodDescriptors bounds the descriptor list on a result.
const MaxMoodDescriptors = 5

// MoodAnalysisResult is the mood pipeline's verdict for one place.
// Category is always CategoryForScore(Score); constructors enforce this
// so a stored result can never disagree with its own score.
type MoodAnalysisResult struct {
	Score       float64      `json:"score"`
	Category    MoodCategory `json:"category"`
	Confidence  float64      `json:"confidence"`
	Descriptors []string     `json:"descriptors,omitempty"`
	Source      MoodSource   `json:"source"`
}

// NewMoodResult builds a result with the score clamped to [0,100], the
// category derived from the score, and descriptors truncated to the cap.
func NewMoodResult(score, confidence float64, source MoodSource, descriptors ...string) MoodAnalysisResult {
	score = clamp(score, 0, 100)
	if len(descriptors) > MaxMoodDescriptors {
		descriptors = descriptors[:MaxMoodDescriptors]
	}
	return MoodAnalysisResult{
		Score:       score,
		Category:    CategoryForScore(score),
		Confidence:  clamp(confidence, 0, 100),
		Descriptors: descriptors,
		Source:      source,
	}
}

// MoodStatistics aggregates mood annotations over a page of places.
type MoodStatistics struct {
	Total             int     `json:"total"`
	Chill             int     `json:"chill"`
	Neutral           int     `json:"neutral"`
	Hype              int     `json:"hype"`
	AverageScore      float64 `json:"averageScore"`
	AverageConfidence float64 `json:"averageConfidence"`
}
