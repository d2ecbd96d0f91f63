// Vibescout - Mood-Based Place Discovery Engine
// Copyright 2026 Vibescout Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vibescout/vibescout

package models

import "testing"

func TestCategoryForScore(t *testing.T) {
	tests := []struct {
		score float64
		want  MoodCategory
	}{
		{0, MoodChill},
		{33.33, MoodChill},
		{33.34, MoodNeutral},
		{50, MoodNeutral},
		{66.66, MoodNeutral},
		{66.67, MoodHype},
		{100, MoodHype},
	}
	for _, tt := range tests {
		if got := CategoryForScore(tt.score); got != tt.want {
			t.Errorf("CategoryForScore(%v) = %v, want %v", tt.score, got, tt.want)
		}
	}
}

func TestNewMoodResult(t *testing.T) {
	r := NewMoodResult(120, -5, SourceSentimentAnalysis, "a", "b", "c", "d", "e", "f", "g")
	if r.Score != 100 {
		t.Errorf("score = %v, want clamped to 100", r.Score)
	}
	if r.Confidence != 0 {
		t.Errorf("confidence = %v, want clamped to 0", r.Confidence)
	}
	if r.Category != MoodHype {
		t.Errorf("category = %v, want %v", r.Category, MoodHype)
	}
	if len(r.Descriptors) != MaxMoodDescriptors {
		t.Errorf("descriptors = %d, want capped at %d", len(r.Descriptors), MaxMoodDescriptors)
	}

	// Category always derives from the final score.
	if got := NewMoodResult(20, 80, SourceCategoryMapping).Category; got != MoodChill {
		t.Errorf("category = %v, want %v", got, MoodChill)
	}
}
