// Vibescout - Mood-Based Place Discovery Engine
// Copyright 2026 Vibescout Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vibescout/vibescout

package mood

import "github.com/vibescout/vibescout/internal/models"

// Statistics aggregates the analyzed places in a result set. Places
// without a mood result are skipped.
func Statistics(places []models.PlaceResult) models.MoodStatistics {
	var stats models.MoodStatistics
	var scoreSum, confidenceSum float64

	for _, p := range places {
		if p.Mood == nil {
			continue
		}
		stats.Total++
		scoreSum += p.Mood.Score
		confidenceSum += p.Mood.Confidence
		switch p.Mood.Category {
		case models.MoodChill:
			stats.Chill++
		case models.MoodHype:
			stats.Hype++
		default:
			stats.Neutral++
		}
	}

	if stats.Total > 0 {
		stats.AverageScore = scoreSum / float64(stats.Total)
		stats.AverageConfidence = confidenceSum / float64(stats.Total)
	}
	return stats
}
