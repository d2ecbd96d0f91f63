// Vibescout - Mood-Based Place Discovery Engine
// Copyright 2026 Vibescout Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vibescout/vibescout

package gateway

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vibescout/vibescout/internal/config"
	"github.com/vibescout/vibescout/internal/models"
	"github.com/vibescout/vibescout/internal/taxonomy"
)

// fakeSearcher returns canned pages or errors, call by call.
type fakeSearcher struct {
	mu      sync.Mutex
	nearby  [][]models.PlaceResult
	text    []models.PlaceResult
	errs    []error
	calls   int32
	lastRad int
}

func (f *fakeSearcher) SearchNearby(_ context.Context, _ models.LatLng, radius int, _ []string, _ int) ([]models.PlaceResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := int(atomic.AddInt32(&f.calls, 1)) - 1
	f.lastRad = radius
	if call < len(f.errs) && f.errs[call] != nil {
		return nil, f.errs[call]
	}
	if call < len(f.nearby) {
		return f.nearby[call], nil
	}
	return nil, nil
}

func (f *fakeSearcher) SearchText(context.Context, string, *models.LatLng, int) ([]models.PlaceResult, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.text, nil
}

type fakeSentiment struct {
	sentiment Sentiment
	entities  []Entity
	err       error
}

func (f *fakeSentiment) AnalyzeSentiment(context.Context, string) (Sentiment, error) {
	return f.sentiment, f.err
}

func (f *fakeSentiment) AnalyzeEntities(context.Context, string) ([]Entity, error) {
	return f.entities, f.err
}

type fakeGeocoder struct {
	coords models.LatLng
	err    error
	calls  int32
}

func (f *fakeGeocoder) Geocode(context.Context, string) (models.LatLng, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.coords, f.err
}

func testGatewayConfig() config.GatewayConfig {
	return config.GatewayConfig{
		RetryAttempts:       3,
		RetryDelay:          time.Millisecond,
		MaxConcurrent:       5,
		EntityPaceInterval:  time.Microsecond,
		BreakerMinRequests:  100, // keep the breaker out of unit tests
		BreakerFailureRatio: 0.99,
		BreakerTimeout:      time.Minute,
	}
}

func newTestGateway(t *testing.T, s PlaceSearcher, sa SentimentAnalyzer, geo Geocoder) *Gateway {
	t.Helper()
	reg, err := taxonomy.New()
	if err != nil {
		t.Fatalf("taxonomy.New: %v", err)
	}
	return New(testGatewayConfig(), reg, s, sa, geo)
}

func place(id string, price int) models.PlaceResult {
	return models.PlaceResult{PlaceID: id, Name: "Place " + id, PriceLevel: price}
}

func TestSearchPlaces_NearbyWithCoordinates(t *testing.T) {
	searcher := &fakeSearcher{nearby: [][]models.PlaceResult{{place("a", 2), place("b", 1)}}}
	g := newTestGateway(t, searcher, &fakeSentiment{}, &fakeGeocoder{})

	f := models.Filters{Category: "food", Budget: models.BudgetModerate}
	got, err := g.SearchPlaces(context.Background(), "51.5,-0.12", f, 2000)
	if err != nil {
		t.Fatalf("SearchPlaces: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 places, got %d", len(got))
	}
	if searcher.lastRad != 2000 {
		t.Errorf("Expected radius 2000, got %d", searcher.lastRad)
	}
}

func TestSearchPlaces_GeocodesFreeText(t *testing.T) {
	searcher := &fakeSearcher{nearby: [][]models.PlaceResult{{place("a", 0)}}}
	geo := &fakeGeocoder{coords: models.LatLng{Lat: 51.5, Lng: -0.12}}
	g := newTestGateway(t, searcher, &fakeSentiment{}, geo)

	_, err := g.SearchPlaces(context.Background(), "shoreditch, london", models.Filters{Category: "food"}, 1000)
	if err != nil {
		t.Fatalf("SearchPlaces: %v", err)
	}
	if atomic.LoadInt32(&geo.calls) == 0 {
		t.Error("Expected geocoder to be called for free-text location")
	}
}

func TestSearchPlaces_RetriesThenSucceeds(t *testing.T) {
	transient := &TransportError{Provider: ProviderPlaces, Err: errors.New("connection reset")}
	searcher := &fakeSearcher{
		errs:   []error{transient, transient},
		nearby: [][]models.PlaceResult{nil, nil, {place("a", 0)}},
	}
	g := newTestGateway(t, searcher, &fakeSentiment{}, &fakeGeocoder{})

	got, err := g.SearchPlaces(context.Background(), "51.5,-0.12", models.Filters{}, 1000)
	if err != nil {
		t.Fatalf("Expected third attempt to succeed, got %v", err)
	}
	if len(got) != 1 {
		t.Errorf("Expected 1 place, got %d", len(got))
	}
	if n := atomic.LoadInt32(&searcher.calls); n != 3 {
		t.Errorf("Expected 3 attempts, got %d", n)
	}
}

func TestSearchPlaces_ExhaustedRetriesYieldEmpty(t *testing.T) {
	transient := &TransportError{Provider: ProviderPlaces, Err: errors.New("refused")}
	searcher := &fakeSearcher{errs: []error{transient, transient, transient}}
	g := newTestGateway(t, searcher, &fakeSentiment{}, &fakeGeocoder{})

	got, err := g.SearchPlaces(context.Background(), "51.5,-0.12", models.Filters{}, 1000)
	if err == nil {
		t.Fatal("Expected captured error after exhausted retries")
	}
	if !errors.Is(err, ErrRetriesExhausted) {
		t.Errorf("Expected ErrRetriesExhausted, got %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected empty result set, got %d places", len(got))
	}
}

func TestSearchPlaces_PriceFilter(t *testing.T) {
	searcher := &fakeSearcher{nearby: [][]models.PlaceResult{{
		place("cheap", 1), place("mid", 2), place("pricey", 4), place("unknown", 0),
	}}}
	g := newTestGateway(t, searcher, &fakeSentiment{}, &fakeGeocoder{})

	f := models.Filters{Budget: models.BudgetModerate} // price levels 1-2
	got, err := g.SearchPlaces(context.Background(), "51.5,-0.12", f, 1000)
	if err != nil {
		t.Fatalf("SearchPlaces: %v", err)
	}
	ids := make(map[string]bool, len(got))
	for _, p := range got {
		ids[p.PlaceID] = true
	}
	if !ids["cheap"] || !ids["mid"] || !ids["unknown"] {
		t.Errorf("Expected cheap, mid, unknown kept, got %v", ids)
	}
	if ids["pricey"] {
		t.Error("Expected price level 4 dropped for PP budget")
	}
}

func TestGeocodeAddress_FailureReturnsZeroSentinel(t *testing.T) {
	geo := &fakeGeocoder{err: &TransportError{Provider: ProviderGeocoder, Err: errors.New("dns")}}
	g := newTestGateway(t, &fakeSearcher{}, &fakeSentiment{}, geo)

	coords := g.GeocodeAddress(context.Background(), "nowhere")
	if !coords.IsZero() {
		t.Errorf("Expected zero-coordinate sentinel, got %+v", coords)
	}
}

func TestExecuteWithRetry_NonRetryableStopsImmediately(t *testing.T) {
	g := newTestGateway(t, &fakeSearcher{}, &fakeSentiment{}, &fakeGeocoder{})

	calls := 0
	err := g.ExecuteWithRetry(context.Background(), ProviderPlaces, time.Second, func(context.Context) error {
		calls++
		return &DataShapeError{Provider: ProviderPlaces, Field: "place_id", Err: errors.New("missing")}
	})
	if err == nil {
		t.Fatal("Expected error")
	}
	if calls != 1 {
		t.Errorf("Expected exactly 1 attempt for a data-shape error, got %d", calls)
	}
}

func TestExecuteWithRetry_BoundedConcurrency(t *testing.T) {
	cfg := testGatewayConfig()
	cfg.MaxConcurrent = 2
	reg, err := taxonomy.New()
	if err != nil {
		t.Fatalf("taxonomy.New: %v", err)
	}
	g := New(cfg, reg, &fakeSearcher{}, &fakeSentiment{}, &fakeGeocoder{})

	var active, peak int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = g.ExecuteWithRetry(context.Background(), ProviderPlaces, time.Second, func(context.Context) error {
				cur := atomic.AddInt32(&active, 1)
				for {
					p := atomic.LoadInt32(&peak)
					if cur <= p || atomic.CompareAndSwapInt32(&peak, p, cur) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				atomic.AddInt32(&active, -1)
				return nil
			})
		}()
	}
	wg.Wait()

	if p := atomic.LoadInt32(&peak); p > 2 {
		t.Errorf("Concurrency pool leaked: peak %d > limit 2", p)
	}
}

func TestStats_RecordsEMA(t *testing.T) {
	g := newTestGateway(t, &fakeSearcher{nearby: [][]models.PlaceResult{{place("a", 0)}}}, &fakeSentiment{}, &fakeGeocoder{})

	if _, err := g.SearchPlaces(context.Background(), "51.5,-0.12", models.Filters{}, 1000); err != nil {
		t.Fatalf("SearchPlaces: %v", err)
	}

	for _, s := range g.Stats() {
		if s.Provider != ProviderPlaces {
			continue
		}
		if s.Requests != 1 || s.Successes != 1 {
			t.Errorf("Expected 1/1 requests/successes, got %d/%d", s.Requests, s.Successes)
		}
		if s.SuccessEMA != 1.0 {
			t.Errorf("Expected success EMA primed to 1.0, got %v", s.SuccessEMA)
		}
		return
	}
	t.Fatal("places provider missing from stats")
}

func TestParseLatLng(t *testing.T) {
	tests := []struct {
		input string
		ok    bool
	}{
		{"51.5,-0.12", true},
		{" 40.7 , -74.0 ", true},
		{"91,0", false},
		{"0,181", false},
		{"london", false},
		{"1,2,3", false},
		{"", false},
	}
	for _, tt := range tests {
		if _, ok := ParseLatLng(tt.input); ok != tt.ok {
			t.Errorf("ParseLatLng(%q) ok = %v, want %v", tt.input, ok, tt.ok)
		}
	}
}

func TestRetryPolicy_LinearBackoff(t *testing.T) {
	backoff := LinearBackoff(100 * time.Millisecond)
	if d := backoff(1); d != 100*time.Millisecond {
		t.Errorf("backoff(1) = %v, want 100ms", d)
	}
	if d := backoff(3); d != 300*time.Millisecond {
		t.Errorf("backoff(3) = %v, want 300ms", d)
	}
}

func TestRetryPolicy_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := RetryPolicy{MaxAttempts: 3, Backoff: LinearBackoff(time.Hour)}
	calls := 0
	err := p.Do(ctx, func(context.Context) error {
		calls++
		return &TransportError{Provider: "x", Err: errors.New("boom")}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected 1 attempt before cancellation check, got %d", calls)
	}
}
