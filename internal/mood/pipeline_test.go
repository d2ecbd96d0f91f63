// Vibescout - Mood-Based Place Discovery Engine
// Copyright 2026 Vibescout Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vibescout/vibescout

package mood

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/vibescout/vibescout/internal/gateway"
	"github.com/vibescout/vibescout/internal/models"
	"github.com/vibescout/vibescout/internal/taxonomy"
)

type fakeAnalyzer struct {
	entities     []gateway.Entity
	entitiesErr  error
	sentiment    gateway.Sentiment
	sentimentErr error

	entityCalls    int
	sentimentCalls int
}

func (f *fakeAnalyzer) AnalyzeEntities(_ context.Context, _ string) ([]gateway.Entity, error) {
	f.entityCalls++
	if f.entitiesErr != nil {
		return nil, f.entitiesErr
	}
	return f.entities, nil
}

func (f *fakeAnalyzer) AnalyzeSentiment(_ context.Context, _ string) (gateway.Sentiment, error) {
	f.sentimentCalls++
	if f.sentimentErr != nil {
		return gateway.Sentiment{}, f.sentimentErr
	}
	return f.sentiment, nil
}

func testPipeline(t *testing.T, analyzer Analyzer) *Pipeline {
	t.Helper()
	reg, err := taxonomy.New()
	if err != nil {
		t.Fatalf("taxonomy.New: %v", err)
	}
	p := New(analyzer, reg)
	p.now = func() time.Time { return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC) }
	return p
}

func goodReview(text string, rating float64) models.Review {
	return models.Review{
		Text:        text,
		Rating:      rating,
		PublishTime: time.Date(2026, 7, 25, 12, 0, 0, 0, time.UTC),
	}
}

func goodReviews(n int) []models.Review {
	reviews := make([]models.Review, 0, n)
	for i := 0; i < n; i++ {
		reviews = append(reviews, goodReview("the atmosphere here was lively and the drinks kept coming", 4.5))
	}
	return reviews
}

func TestAnalyzeNoReviewsUsesCategoryMapping(t *testing.T) {
	fake := &fakeAnalyzer{}
	p := testPipeline(t, fake)

	got := p.AnalyzeFromReviews(context.Background(), nil, "cafe")

	if got.Source != models.SourceCategoryMapping {
		t.Fatalf("source = %q, want %q", got.Source, models.SourceCategoryMapping)
	}
	if got.Confidence != categoryMappingConfidence {
		t.Errorf("confidence = %v, want %v", got.Confidence, categoryMappingConfidence)
	}
	if got.Score != 35 {
		t.Errorf("score = %v, want cafe baseline 35", got.Score)
	}
	if got.Category != models.MoodNeutral {
		t.Errorf("category = %q, want neutral", got.Category)
	}
	if fake.entityCalls != 0 || fake.sentimentCalls != 0 {
		t.Errorf("provider called on empty input: entities=%d sentiment=%d", fake.entityCalls, fake.sentimentCalls)
	}
}

func TestAnalyzeTooFewValidReviewsUsesCategoryMapping(t *testing.T) {
	fake := &fakeAnalyzer{}
	p := testPipeline(t, fake)

	// Two valid, one too short, one too long.
	reviews := []models.Review{
		goodReview("the atmosphere here was lively and loud all night", 4.5),
		goodReview("relaxed spot with charming staff and good coffee", 4.0),
		goodReview("nice", 5.0),
		goodReview(strings.Repeat("very long review ", 40), 4.0),
	}

	got := p.AnalyzeFromReviews(context.Background(), reviews, "nightlife")

	if got.Source != models.SourceCategoryMapping {
		t.Fatalf("source = %q, want %q", got.Source, models.SourceCategoryMapping)
	}
	if got.Score != 90 {
		t.Errorf("score = %v, want nightlife baseline 90", got.Score)
	}
	if got.Category != models.MoodHype {
		t.Errorf("category = %q, want hype", got.Category)
	}
}

func TestAnalyzeStrongEntitiesWinsAtHighConfidence(t *testing.T) {
	fake := &fakeAnalyzer{
		entities: []gateway.Entity{
			{Name: "dance floor", Salience: 0.5, Sentiment: 0.9},
			{Name: "music", Salience: 0.3, Sentiment: 0.8},
		},
	}
	p := testPipeline(t, fake)

	got := p.AnalyzeFromReviews(context.Background(), goodReviews(5), "nightlife")

	if got.Source != models.SourceEntityAnalysis {
		t.Fatalf("source = %q, want %q", got.Source, models.SourceEntityAnalysis)
	}
	if got.Confidence < entityConfidenceAccept {
		t.Errorf("confidence = %v, want >= %v", got.Confidence, entityConfidenceAccept)
	}
	if got.Category != models.MoodHype {
		t.Errorf("category = %q for score %v, want hype", got.Category, got.Score)
	}
	if len(got.Descriptors) == 0 || got.Descriptors[0] != "dance floor" {
		t.Errorf("descriptors = %v, want top entity first", got.Descriptors)
	}
	if fake.sentimentCalls != 0 {
		t.Errorf("sentiment provider called despite confident entity verdict")
	}
}

func TestAnalyzeUnratedStaleReviewsStillScoreFinite(t *testing.T) {
	fake := &fakeAnalyzer{
		entities: []gateway.Entity{
			{Name: "patio", Salience: 0.5, Sentiment: 0.8},
			{Name: "garden", Salience: 0.4, Sentiment: 0.6},
		},
	}
	p := testPipeline(t, fake)

	// Unrated reviews past the recency window carry zero weight, leaving
	// the entity stage's weighted average with no denominator.
	reviews := make([]models.Review, 0, 3)
	for i := 0; i < 3; i++ {
		reviews = append(reviews, models.Review{
			Text:        "the garden patio stayed calm and quiet well into the evening",
			Rating:      0,
			PublishTime: time.Date(2026, 6, 2, 12, 0, 0, 0, time.UTC),
		})
	}

	got := p.AnalyzeFromReviews(context.Background(), reviews, "outdoors")

	if math.IsNaN(got.Score) || math.IsInf(got.Score, 0) {
		t.Fatalf("score = %v, want finite", got.Score)
	}
	if got.Source != models.SourceEntityAnalysis {
		t.Fatalf("source = %q, want %q", got.Source, models.SourceEntityAnalysis)
	}
	// Plain average of the entity sentiments: (0.8+0.6)/2 = 0.7 -> 85.
	if got.Score != 85 {
		t.Errorf("score = %v, want 85", got.Score)
	}
	if got.Confidence < entityConfidenceAccept {
		t.Errorf("confidence = %v, want >= %v", got.Confidence, entityConfidenceAccept)
	}
	if _, err := json.Marshal(got); err != nil {
		t.Errorf("result not serializable: %v", err)
	}
}

func TestAnalyzeWeakEntitiesFallThroughToSentiment(t *testing.T) {
	// Low salience: nothing passes the entity stage's cutoff.
	fake := &fakeAnalyzer{
		entities:  []gateway.Entity{{Name: "door", Salience: 0.05, Sentiment: 0.4}},
		sentiment: gateway.Sentiment{Score: 0.8, Magnitude: 2.0},
	}
	p := testPipeline(t, fake)

	got := p.AnalyzeFromReviews(context.Background(), goodReviews(4), "food")

	if got.Source != models.SourceSentimentAnalysis {
		t.Fatalf("source = %q, want %q", got.Source, models.SourceSentimentAnalysis)
	}
	if got.Confidence != sentimentConfidenceProvider {
		t.Errorf("confidence = %v, want %v", got.Confidence, sentimentConfidenceProvider)
	}
	// 0.5*55 (food baseline) + 0.5*90 (sentiment 0.8) = 72.5.
	if got.Score < 72 || got.Score > 73 {
		t.Errorf("score = %v, want ~72.5", got.Score)
	}
	if fake.sentimentCalls != 1 {
		t.Errorf("sentiment calls = %d, want 1", fake.sentimentCalls)
	}
}

func TestAnalyzeSentimentProviderDownUsesKeywordLexicon(t *testing.T) {
	fake := &fakeAnalyzer{
		entitiesErr:  errors.New("entity backend down"),
		sentimentErr: errors.New("sentiment backend down"),
	}
	p := testPipeline(t, fake)

	got := p.AnalyzeFromReviews(context.Background(), goodReviews(3), "food")

	if got.Source != models.SourceSentimentAnalysis {
		t.Fatalf("source = %q, want %q", got.Source, models.SourceSentimentAnalysis)
	}
	if got.Confidence != sentimentConfidenceKeyword {
		t.Errorf("confidence = %v, want keyword confidence %v", got.Confidence, sentimentConfidenceKeyword)
	}
	// "lively" is in the lexicon, so the keyword score is positive and
	// the blend lands above the food baseline.
	if got.Score <= 55 {
		t.Errorf("score = %v, want above food baseline 55", got.Score)
	}
}

func TestAnalyzeCanceledContextFallsBackWithLowConfidence(t *testing.T) {
	fake := &fakeAnalyzer{entitiesErr: context.Canceled}
	p := testPipeline(t, fake)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := p.AnalyzeFromReviews(ctx, goodReviews(3), "outdoors")

	if got.Source != models.SourceFallback {
		t.Fatalf("source = %q, want %q", got.Source, models.SourceFallback)
	}
	if got.Confidence != totalFailureConfidence {
		t.Errorf("confidence = %v, want %v", got.Confidence, totalFailureConfidence)
	}
	if got.Score != 45 {
		t.Errorf("score = %v, want outdoors baseline 45", got.Score)
	}
}

func TestFilterAndWeightPrefersHighRatings(t *testing.T) {
	p := testPipeline(t, &fakeAnalyzer{})

	reviews := []models.Review{
		goodReview("wonderful cozy place, the staff remembered my order", 5.0),
		goodReview("great coffee and the pastries were fresh every time", 4.0),
		goodReview("fantastic spot to read on a rainy afternoon here", 4.5),
		goodReview("it was fine I guess, nothing really stood out", 2.0),
	}

	got := p.filterAndWeight(reviews)
	if len(got) != 3 {
		t.Fatalf("kept %d reviews, want 3 high-rated", len(got))
	}
	for _, r := range got {
		if r.Rating < 4 {
			t.Errorf("kept rating %v despite enough high-rated reviews", r.Rating)
		}
	}
}

func TestFilterAndWeightKeepsLowRatingsWhenScarce(t *testing.T) {
	p := testPipeline(t, &fakeAnalyzer{})

	reviews := []models.Review{
		goodReview("wonderful cozy place, the staff remembered my order", 5.0),
		goodReview("it was fine I guess, nothing really stood out", 2.0),
		goodReview("decent enough but the music was way too loud", 3.0),
	}

	got := p.filterAndWeight(reviews)
	if len(got) != 3 {
		t.Fatalf("kept %d reviews, want all 3 when high-rated are scarce", len(got))
	}
}

func TestFilterAndWeightCapsAndOrders(t *testing.T) {
	p := testPipeline(t, &fakeAnalyzer{})

	got := p.filterAndWeight(goodReviews(15))
	if len(got) != maxWeightedReviews {
		t.Fatalf("kept %d reviews, want cap %d", len(got), maxWeightedReviews)
	}
	for i := 1; i < len(got); i++ {
		if got[i].weight > got[i-1].weight {
			t.Fatalf("reviews not sorted by weight at %d", i)
		}
	}
}

func TestFilterAndWeightRecencyDecay(t *testing.T) {
	p := testPipeline(t, &fakeAnalyzer{})
	now := p.now()

	fresh := models.Review{Text: "lively bar with a great crowd on weekends", Rating: 4.0, PublishTime: now.Add(-24 * time.Hour)}
	stale := models.Review{Text: "lively bar with a great crowd on weekends", Rating: 4.0, PublishTime: now.Add(-90 * 24 * time.Hour)}

	got := p.filterAndWeight([]models.Review{stale, fresh, fresh})
	if len(got) != 3 {
		t.Fatalf("kept %d reviews, want 3", len(got))
	}
	if got[len(got)-1].PublishTime != stale.PublishTime {
		t.Errorf("stale review not weighted last")
	}
}

func TestKeywordSentiment(t *testing.T) {
	tests := []struct {
		name string
		text string
		sign int
	}{
		{"positive", "such a lively and vibrant place, amazing energy", 1},
		{"negative", "boring and empty, the staff were rude", -1},
		{"neutral no matches", "we ordered the pasta and sat outside", 0},
		{"empty", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := keywordSentiment(tt.text)
			switch {
			case tt.sign > 0 && got <= 0:
				t.Errorf("keywordSentiment(%q) = %v, want positive", tt.text, got)
			case tt.sign < 0 && got >= 0:
				t.Errorf("keywordSentiment(%q) = %v, want negative", tt.text, got)
			case tt.sign == 0 && got != 0:
				t.Errorf("keywordSentiment(%q) = %v, want 0", tt.text, got)
			}
		})
	}
}

func TestStatistics(t *testing.T) {
	mood := func(score float64) *models.MoodAnalysisResult {
		r := models.NewMoodResult(score, 60, models.SourceSentimentAnalysis)
		return &r
	}
	places := []models.PlaceResult{
		{PlaceID: "a", Mood: mood(20)},
		{PlaceID: "b", Mood: mood(50)},
		{PlaceID: "c", Mood: mood(80)},
		{PlaceID: "d"}, // unanalyzed
	}

	got := Statistics(places)
	if got.Total != 3 {
		t.Fatalf("Total = %d, want 3", got.Total)
	}
	if got.Chill != 1 || got.Neutral != 1 || got.Hype != 1 {
		t.Errorf("buckets = %d/%d/%d, want 1/1/1", got.Chill, got.Neutral, got.Hype)
	}
	if got.AverageScore != 50 {
		t.Errorf("AverageScore = %v, want 50", got.AverageScore)
	}
	if got.AverageConfidence != 60 {
		t.Errorf("AverageConfidence = %v, want 60", got.AverageConfidence)
	}
}

func TestStatisticsEmpty(t *testing.T) {
	got := Statistics(nil)
	if got.Total != 0 || got.AverageScore != 0 {
		t.Errorf("got %+v, want zero value", got)
	}
}
