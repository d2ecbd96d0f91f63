// Vibescout - Mood-Based Place Discovery Engine
// Copyright 2026 Vibescout Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vibescout/vibescout

package gateway

import (
	"sync"
	"time"
)

// emaAlpha is the smoothing factor for the rolling latency and success
// aggregates: new = alpha*sample + (1-alpha)*old.
const emaAlpha = 0.1

// ProviderStats is a snapshot of one provider's rolling call statistics.
type ProviderStats struct {
	Provider    string        `json:"provider"`
	Requests    uint64        `json:"requests"`
	Successes   uint64        `json:"successes"`
	SuccessEMA  float64       `json:"successRateEma"`
	LatencyEMA  time.Duration `json:"latencyEma"`
	LastFailure string        `json:"lastFailure,omitempty"`
}

// rollingStats accumulates EMA latency/success per provider.
type rollingStats struct {
	mu          sync.Mutex
	requests    uint64
	successes   uint64
	successEMA  float64
	latencyEMA  float64 // seconds
	lastFailure string
	primed      bool
}

func (s *rollingStats) record(latency time.Duration, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests++
	sample := 0.0
	if err == nil {
		s.successes++
		sample = 1.0
	} else {
		s.lastFailure = err.Error()
	}

	lat := latency.Seconds()
	if !s.primed {
		s.successEMA = sample
		s.latencyEMA = lat
		s.primed = true
		return
	}
	s.successEMA = emaAlpha*sample + (1-emaAlpha)*s.successEMA
	s.latencyEMA = emaAlpha*lat + (1-emaAlpha)*s.latencyEMA
}

func (s *rollingStats) snapshot(provider string) ProviderStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ProviderStats{
		Provider:    provider,
		Requests:    s.requests,
		Successes:   s.successes,
		SuccessEMA:  s.successEMA,
		LatencyEMA:  time.Duration(s.latencyEMA * float64(time.Second)),
		LastFailure: s.lastFailure,
	}
}
