// Vibescout - Mood-Based Place Discovery Engine
// Copyright 2026 Vibescout Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vibescout/vibescout

package models

import "time"

// LoadingState is the discovery orchestrator's externally visible state.
type LoadingState string

// Orchestrator states. Transitions: initial -> searching ->
// {complete | expanding-distance | limit-reach | error}, with
// expanding-distance looping back to searching.
const (
	StateInitial   LoadingState = "initial"
	StateSearching LoadingState = "searching"
	StateExpanding LoadingState = "expanding-distance"
	StateLimit     LoadingState = "limit-reach"
	StateComplete  LoadingState = "complete"
	StateError     LoadingState = "error"
)

// PoolInfo describes how much of the discovered pool is still unserved.
type PoolInfo struct {
	Remaining     int  `json:"remaining"`
	TotalPoolSize int  `json:"totalPoolSize"`
	NeedsRefresh  bool `json:"needsRefresh"`
}

// DiscoveryState is the session state owned by one orchestrator session.
// Resetting a session invalidates its state but never touches the shared
// cache.
type DiscoveryState struct {
	LoadingState   LoadingState `json:"loadingState"`
	CurrentRadius  int          `json:"currentRadius"`
	ExpansionCount int          `json:"expansionCount"`
	Pool           PoolInfo     `json:"poolInfo"`
}

// DiscoveryPayload is the unit stored in the cache tiers: the full
// discovered pool for one filter fingerprint plus the radius state that
// produced it, so a refreshed session can resume expansion where the
// cached cycle stopped.
type DiscoveryPayload struct {
	Places         []PlaceResult `json:"places"`
	Filters        Filters       `json:"filters"`
	RadiusMeters   int           `json:"radiusMeters"`
	ExpansionCount int           `json:"expansionCount"`
	FetchedAt      time.Time     `json:"fetchedAt"`
}

// DiscoveryResult is what DiscoverPlaces and GetNextBatch hand back to
// callers: a page of places plus the session state, and the captured
// error message when the state is StateError.
type DiscoveryResult struct {
	Places       []PlaceResult `json:"places"`
	LoadingState LoadingState  `json:"loadingState"`
	Pool         PoolInfo      `json:"poolInfo"`
	Error        string        `json:"discoveryError,omitempty"`
}
