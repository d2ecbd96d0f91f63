// Vibescout - Mood-Based Place Discovery Engine
// Copyright 2026 Vibescout Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vibescout/vibescout

/*
Package models defines the data structures shared across the Vibescout
discovery engine.

This package is the single source of truth for the typed contracts that
flow between the taxonomy registry, API gateway, mood pipeline, cache tier
manager, and discovery orchestrator. It has no dependencies on other
internal packages.

Key Components:

  - Filters: Normalized user filter selection (category, mood, budget,
    time of day, social context, distance, location)
  - PlaceResult: A single discovered place with bounded recent reviews
  - MoodAnalysisResult: Mood score/category/confidence for one place
  - DiscoveryPayload: The cached unit - a discovered place pool plus the
    radius state that produced it
  - DiscoveryState: Orchestrator session state exposed to callers
  - MoodStatistics: Aggregate mood breakdown over a result page
*/
package models
