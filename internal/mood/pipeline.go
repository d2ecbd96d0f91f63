// Vibescout - Mood-Based Place Discovery Engine
// Copyright 2026 Vibescout Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vibescout/vibescout

// Package mood turns a place's reviews and category into a mood score
// via a confidence-weighted fallback chain: entity analysis first,
// whole-text sentiment second, category baseline last. Every path
// produces a result; the pipeline never returns an error to its caller.
package mood

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vibescout/vibescout/internal/gateway"
	"github.com/vibescout/vibescout/internal/logging"
	"github.com/vibescout/vibescout/internal/metrics"
	"github.com/vibescout/vibescout/internal/models"
	"github.com/vibescout/vibescout/internal/taxonomy"
)

// Review filtering and weighting constants.
const (
	minReviewLen = 20
	maxReviewLen = 500

	// minValidReviews is the floor below which analysis drops straight
	// to the category-mapping fallback.
	minValidReviews = 3

	// maxWeightedReviews caps how many reviews feed the entity stage.
	maxWeightedReviews = 10

	// recencyWindowDays is the window over which review recency decays
	// linearly to zero.
	recencyWindowDays = 30

	ratingWeight  = 0.6
	recencyWeight = 0.4
)

// Entity stage constants.
const (
	minSalience = 0.15

	// entityConfidenceAccept is the confidence at or above which the
	// entity stage's verdict is final.
	entityConfidenceAccept = 70

	entityQtyTarget = 3 // high-quality entities for full entity confidence
	reviewQtyTarget = 5 // analyzed reviews for full review confidence
)

// Sentiment stage blend weights and confidence bounds.
const (
	baselineBlend  = 0.30
	entityBlend    = 0.40
	sentimentBlend = 0.30

	sentimentConfidenceProvider = 60
	sentimentConfidenceKeyword  = 50
)

// Fallback confidences.
const (
	categoryMappingConfidence = 40
	totalFailureConfidence    = 20
)

// Analyzer is the slice of the gateway the pipeline consumes.
type Analyzer interface {
	AnalyzeSentiment(ctx context.Context, text string) (gateway.Sentiment, error)
	AnalyzeEntities(ctx context.Context, text string) ([]gateway.Entity, error)
}

// Pipeline is the three-stage mood analyzer. Safe for concurrent use.
type Pipeline struct {
	analyzer Analyzer
	reg      *taxonomy.Registry
	now      func() time.Time
	log      zerolog.Logger
}

// New builds a Pipeline over the gateway's sentiment surface.
func New(analyzer Analyzer, reg *taxonomy.Registry) *Pipeline {
	return &Pipeline{
		analyzer: analyzer,
		reg:      reg,
		now:      time.Now,
		log:      logging.Component("mood"),
	}
}

// weightedReview is a review that survived stage-1 filtering.
type weightedReview struct {
	models.Review
	weight float64
}

// AnalyzeFromReviews runs the fallback chain for one place. The result
// always has a category consistent with its score and a source naming
// the stage that produced it.
func (p *Pipeline) AnalyzeFromReviews(ctx context.Context, reviews []models.Review, category string) models.MoodAnalysisResult {
	result := p.analyze(ctx, reviews, category)
	metrics.MoodAnalyses.WithLabelValues(string(result.Source)).Inc()
	metrics.MoodConfidence.Observe(result.Confidence)
	return result
}

func (p *Pipeline) analyze(ctx context.Context, reviews []models.Review, category string) models.MoodAnalysisResult {
	weighted := p.filterAndWeight(reviews)
	if len(weighted) < minValidReviews {
		return p.categoryFallback(category)
	}

	// Stage 2: entity extraction over the weighted reviews.
	entityScore, entityOK, descriptors, confidence := p.entityStage(ctx, weighted)
	if entityOK && confidence >= entityConfidenceAccept {
		return models.NewMoodResult(entityScore, confidence, models.SourceEntityAnalysis, descriptors...)
	}

	if ctx.Err() != nil {
		// The cycle is being torn down; don't start another provider
		// round on a dead context.
		return models.NewMoodResult(p.reg.BaselineMood(category), totalFailureConfidence, models.SourceFallback)
	}

	// Stage 3: whole-text sentiment blended with the category baseline
	// and whatever the entity stage produced.
	return p.sentimentStage(ctx, weighted, category, entityScore, entityOK, descriptors)
}

// filterAndWeight is stage 1: drop reviews outside the useful text
// length, prefer well-rated ones, and weight the survivors by rating
// and recency.
func (p *Pipeline) filterAndWeight(reviews []models.Review) []weightedReview {
	now := p.now()

	valid := make([]weightedReview, 0, len(reviews))
	highRated := 0
	for _, r := range reviews {
		textLen := len(strings.TrimSpace(r.Text))
		if textLen < minReviewLen || textLen > maxReviewLen {
			continue
		}
		recency := 1 - r.DaysOld(now)/recencyWindowDays
		if recency < 0 {
			recency = 0
		}
		w := ratingWeight*(r.Rating/5) + recencyWeight*recency
		valid = append(valid, weightedReview{Review: r, weight: w})
		if r.Rating >= 4 {
			highRated++
		}
	}

	// Prefer rating >= 4 when that still leaves enough signal.
	if highRated >= minValidReviews {
		filtered := valid[:0]
		for _, r := range valid {
			if r.Rating >= 4 {
				filtered = append(filtered, r)
			}
		}
		valid = filtered
	}

	sort.SliceStable(valid, func(i, j int) bool { return valid[i].weight > valid[j].weight })
	if len(valid) > maxWeightedReviews {
		valid = valid[:maxWeightedReviews]
	}
	return valid
}

// entityStage extracts entities per review, in weight order, and scores
// the positive-sentiment entities. Returns the score, whether any score
// was produced, the top entity names as descriptors, and the stage
// confidence.
func (p *Pipeline) entityStage(ctx context.Context, reviews []weightedReview) (score float64, ok bool, descriptors []string, confidence float64) {
	type scoredEntity struct {
		name      string
		weight    float64
		sentiment float64
	}

	var entities []scoredEntity
	highQuality := 0
	for _, r := range reviews {
		found, err := p.analyzer.AnalyzeEntities(ctx, r.Text)
		if err != nil {
			p.log.Warn().Err(err).Msg("entity extraction failed for review, continuing")
			continue
		}
		for _, e := range found {
			if e.Salience < minSalience {
				continue
			}
			highQuality++
			if e.Sentiment > 0 {
				entities = append(entities, scoredEntity{
					name:      e.Name,
					weight:    e.Salience * r.weight,
					sentiment: e.Sentiment,
				})
			}
		}
	}

	if len(entities) == 0 {
		return 0, false, nil, 0
	}

	var weightSum, sentimentSum float64
	for _, e := range entities {
		weightSum += e.weight
		sentimentSum += e.sentiment * e.weight
	}
	var avg float64
	if weightSum > 0 {
		avg = sentimentSum / weightSum
	} else {
		// Every source review carried zero weight (unrated and past the
		// recency window), so the weighted average has no denominator;
		// fall back to a plain average of the entity sentiments.
		for _, e := range entities {
			avg += e.sentiment
		}
		avg /= float64(len(entities))
	}
	score = 50 + 50*avg

	sort.SliceStable(entities, func(i, j int) bool { return entities[i].weight > entities[j].weight })
	seen := make(map[string]struct{}, models.MaxMoodDescriptors)
	for _, e := range entities {
		key := strings.ToLower(e.name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		descriptors = append(descriptors, key)
		if len(descriptors) == models.MaxMoodDescriptors {
			break
		}
	}

	entityQty := minFloat(100, float64(highQuality)/entityQtyTarget*100)
	reviewQty := minFloat(100, float64(len(reviews))/reviewQtyTarget*100)
	confidence = 0.7*entityQty + 0.3*reviewQty

	return score, true, descriptors, confidence
}

// sentimentStage blends category baseline, entity score, and whole-text
// sentiment. When the provider is unreachable the local keyword lexicon
// stands in, at lower confidence.
func (p *Pipeline) sentimentStage(ctx context.Context, reviews []weightedReview, category string, entityScore float64, haveEntity bool, descriptors []string) models.MoodAnalysisResult {
	text := combinedText(reviews)

	var sentiment gateway.Sentiment
	providerOK := false
	retry := gateway.RetryPolicy{MaxAttempts: 2, Backoff: gateway.LinearBackoff(200 * time.Millisecond)}
	err := retry.Do(ctx, func(ctx context.Context) error {
		var callErr error
		sentiment, callErr = p.analyzer.AnalyzeSentiment(ctx, text)
		return callErr
	})
	if err == nil {
		providerOK = true
	} else {
		p.log.Warn().Err(err).Msg("sentiment provider unavailable, using keyword lexicon")
		sentiment = gateway.Sentiment{Score: keywordSentiment(text)}
	}

	baseline := p.reg.BaselineMood(category)
	sentimentScore := 50 + 50*sentiment.Score

	var score float64
	if haveEntity {
		score = baselineBlend*baseline + entityBlend*entityScore + sentimentBlend*sentimentScore
	} else {
		// No entity signal: split its share between the other two.
		score = 0.5*baseline + 0.5*sentimentScore
	}

	confidence := float64(sentimentConfidenceKeyword)
	if providerOK {
		confidence = sentimentConfidenceProvider
	}

	if len(descriptors) == 0 {
		descriptors = p.bandDescriptors(score)
	}
	return models.NewMoodResult(score, confidence, models.SourceSentimentAnalysis, descriptors...)
}

// categoryFallback is the last resort when there is not enough review
// signal to analyze.
func (p *Pipeline) categoryFallback(category string) models.MoodAnalysisResult {
	score := p.reg.BaselineMood(category)
	return models.NewMoodResult(score, categoryMappingConfidence, models.SourceCategoryMapping, p.bandDescriptors(score)...)
}

// bandDescriptors returns the taxonomy keywords of the mood band the
// score lands in.
func (p *Pipeline) bandDescriptors(score float64) []string {
	kws := p.reg.MoodByScore(score).Mood.Keywords
	if len(kws) > models.MaxMoodDescriptors {
		kws = kws[:models.MaxMoodDescriptors]
	}
	return kws
}

func combinedText(reviews []weightedReview) string {
	parts := make([]string, 0, len(reviews))
	for _, r := range reviews {
		parts = append(parts, strings.TrimSpace(r.Text))
	}
	return strings.Join(parts, "\n")
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
