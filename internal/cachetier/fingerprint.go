// Vibescout - Mood-Based Place Discovery Engine
// Copyright 2026 Vibescout Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vibescout/vibescout

package cachetier

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/vibescout/vibescout/internal/models"
)

// Fingerprint derives the cache key for a filter combination. Filters
// are normalized first, so two requests that differ only in casing,
// whitespace, or field order share a key. The mood score contributes at
// two decimal places; finer differences do not change what a search
// returns.
func Fingerprint(f models.Filters, minResults int) string {
	n := f.Normalized()

	var b strings.Builder
	fmt.Fprintf(&b, "budget=%s\n", n.Budget)
	fmt.Fprintf(&b, "category=%s\n", n.Category)
	fmt.Fprintf(&b, "distance=%d\n", n.DistancePct)
	fmt.Fprintf(&b, "location=%s\n", n.Location)
	fmt.Fprintf(&b, "min=%d\n", minResults)
	fmt.Fprintf(&b, "mood=%.2f\n", n.MoodScore)
	fmt.Fprintf(&b, "social=%s\n", n.SocialContext)
	fmt.Fprintf(&b, "time=%s\n", n.TimeOfDay)

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
