// Vibescout - Mood-Based Place Discovery Engine
// Copyright 2026 Vibescout Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vibescout/vibescout

package mood

import "strings"

// keywordLexicon maps mood-bearing words to a sentiment contribution in
// [-1, 1]. It is the offline stand-in when the sentiment provider is
// down, so it favors precision over coverage.
var keywordLexicon = map[string]float64{
	// energetic / positive
	"lively":    0.8,
	"buzzing":   0.8,
	"vibrant":   0.7,
	"energetic": 0.7,
	"fun":       0.6,
	"exciting":  0.7,
	"amazing":   0.6,
	"great":     0.5,
	"love":      0.5,
	"loved":     0.5,
	"fantastic": 0.6,
	"wonderful": 0.5,
	"packed":    0.4,
	"loud":      0.3,
	"crowded":   0.2,

	// calm / positive
	"cozy":     0.3,
	"relaxed":  0.2,
	"relaxing": 0.2,
	"peaceful": 0.2,
	"quiet":    0.1,
	"calm":     0.1,
	"charming": 0.4,

	// negative
	"boring":       -0.6,
	"dead":         -0.5,
	"empty":        -0.4,
	"dull":         -0.5,
	"terrible":     -0.8,
	"awful":        -0.8,
	"bad":          -0.5,
	"rude":         -0.6,
	"dirty":        -0.6,
	"disappointed": -0.6,
	"avoid":        -0.7,
	"slow":         -0.3,
	"overpriced":   -0.4,
}

// keywordSentiment scores a text with the lexicon, returning a value in
// [-1, 1]. Unknown words contribute nothing; no matches means neutral.
func keywordSentiment(text string) float64 {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})

	var sum float64
	matched := 0
	for _, w := range words {
		if v, ok := keywordLexicon[w]; ok {
			sum += v
			matched++
		}
	}
	if matched == 0 {
		return 0
	}
	score := sum / float64(matched)
	if score > 1 {
		score = 1
	}
	if score < -1 {
		score = -1
	}
	return score
}
