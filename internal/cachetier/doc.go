// Vibescout - Mood-Based Place Discovery Engine
// Copyright 2026 Vibescout Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vibescout/vibescout

// Package cachetier implements the three-tier discovery cache: an
// in-process hot tier, a BadgerDB-backed warm tier, and an optional
// Redis cold tier. Reads fall through hot to warm to cold, promoting
// hits back into the faster tiers; writes fan out to every tier with
// per-tier TTLs scaled by filter specificity.
package cachetier
