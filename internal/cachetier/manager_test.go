// Vibescout - Mood-Based Place Discovery Engine
// Copyright 2026 Vibescout Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vibescout/vibescout

package cachetier

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vibescout/vibescout/internal/config"
	"github.com/vibescout/vibescout/internal/metrics"
	"github.com/vibescout/vibescout/internal/models"
)

// fakeColdStore is an in-memory stand-in for Redis.
type fakeColdStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	failAll bool
	sets    int
}

func newFakeColdStore() *fakeColdStore {
	return &fakeColdStore{data: make(map[string][]byte)}
}

func (f *fakeColdStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return nil, false, errors.New("cold store down")
	}
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *fakeColdStore) Set(_ context.Context, key string, payload []byte, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return errors.New("cold store down")
	}
	f.data[key] = payload
	f.sets++
	return nil
}

func (f *fakeColdStore) Ping(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return errors.New("cold store down")
	}
	return nil
}

func (f *fakeColdStore) Remove(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	return nil
}

func (f *fakeColdStore) Clear(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data = make(map[string][]byte)
	return nil
}

func (f *fakeColdStore) Len(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.data), nil
}

func (f *fakeColdStore) Entries(_ context.Context) (map[string][]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string][]byte, len(f.data))
	for k, v := range f.data {
		out[k] = v
	}
	return out, nil
}

func (f *fakeColdStore) Close() error { return nil }

func testCacheConfig(t *testing.T) config.CacheConfig {
	t.Helper()
	return config.CacheConfig{
		Hot:           config.TierConfig{Capacity: 50, TTL: 5 * time.Minute},
		Warm:          config.TierConfig{Capacity: 200, TTL: 30 * time.Minute},
		Cold:          config.TierConfig{Capacity: 1000, TTL: 24 * time.Hour},
		WarmPath:      t.TempDir(),
		SweepInterval: 5 * time.Minute,
	}
}

func testManager(t *testing.T) *Manager {
	t.Helper()
	m, err := New(context.Background(), testCacheConfig(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func testPayload() *models.DiscoveryPayload {
	return &models.DiscoveryPayload{
		Places: []models.PlaceResult{
			{PlaceID: "p1", Name: "Night Owl", Rating: 4.4, ReviewCount: 87, Types: []string{"bar"}},
			{PlaceID: "p2", Name: "Quiet Corner", Rating: 4.8, ReviewCount: 12, Types: []string{"cafe"}},
		},
		RadiusMeters:   2000,
		ExpansionCount: 1,
		FetchedAt:      time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC),
	}
}

func TestManagerRoundTrip(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	want := testPayload()
	m.Set(ctx, "key1", want, 3)

	got, ok := m.Get(ctx, "key1")
	if !ok {
		t.Fatal("miss after set")
	}
	if len(got.Places) != 2 || got.Places[0].PlaceID != "p1" || got.Places[1].Name != "Quiet Corner" {
		t.Errorf("places corrupted: %+v", got.Places)
	}
	if got.RadiusMeters != 2000 || got.ExpansionCount != 1 {
		t.Errorf("metadata corrupted: radius=%d expansions=%d", got.RadiusMeters, got.ExpansionCount)
	}
	if !got.FetchedAt.Equal(want.FetchedAt) {
		t.Errorf("FetchedAt = %v, want %v", got.FetchedAt, want.FetchedAt)
	}
}

func TestManagerMiss(t *testing.T) {
	m := testManager(t)

	if _, ok := m.Get(context.Background(), "absent"); ok {
		t.Error("hit on unknown key")
	}
}

func TestManagerWarmPromotion(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	m.Set(ctx, "key1", testPayload(), 3)

	// Simulate hot expiry; the entry is still warm.
	m.hot.Clear()

	if _, ok := m.Get(ctx, "key1"); !ok {
		t.Fatal("warm tier did not serve the entry")
	}
	if _, ok := m.hot.Get("key1"); !ok {
		t.Error("warm hit not promoted to hot")
	}
}

func TestManagerColdPromotion(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	cold := newFakeColdStore()
	m.cold = cold

	m.Set(ctx, "key1", testPayload(), 3)
	m.coldWrites.Wait()

	if cold.sets != 1 {
		t.Fatalf("cold sets = %d, want 1", cold.sets)
	}

	// Both local tiers lose the entry; only cold still has it.
	m.hot.Clear()
	if err := m.warm.Clear(); err != nil {
		t.Fatalf("warm clear: %v", err)
	}

	got, ok := m.Get(ctx, "key1")
	if !ok {
		t.Fatal("cold tier did not serve the entry")
	}
	if got.Places[0].PlaceID != "p1" {
		t.Errorf("payload corrupted through cold tier")
	}
	if _, ok := m.hot.Get("key1"); !ok {
		t.Error("cold hit not promoted to hot")
	}
	if _, ok, _ := m.warm.Get("key1"); !ok {
		t.Error("cold hit not promoted to warm")
	}
}

func TestManagerColdFailureDegradesToMiss(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	cold := newFakeColdStore()
	cold.failAll = true
	m.cold = cold

	if _, ok := m.Get(ctx, "key1"); ok {
		t.Error("hit despite every tier empty or failing")
	}

	// Writes must not fail the caller either.
	m.Set(ctx, "key1", testPayload(), 3)
	m.coldWrites.Wait()
	if _, ok := m.Get(ctx, "key1"); !ok {
		t.Error("local tiers should still serve despite cold failure")
	}
}

func TestManagerInvalidate(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	cold := newFakeColdStore()
	m.cold = cold

	m.Set(ctx, "key1", testPayload(), 3)
	m.Set(ctx, "key2", testPayload(), 3)
	m.coldWrites.Wait()

	m.Invalidate(ctx, "key1")
	if _, ok := m.Get(ctx, "key1"); ok {
		t.Error("key1 still served after invalidation")
	}
	if _, ok := m.Get(ctx, "key2"); !ok {
		t.Error("key2 lost by single-key invalidation")
	}

	m.InvalidateAll(ctx)
	if _, ok := m.Get(ctx, "key2"); ok {
		t.Error("key2 still served after full invalidation")
	}
	if n, _ := cold.Len(ctx); n != 0 {
		t.Errorf("cold entries = %d after full invalidation", n)
	}
}

func TestManagerInvalidateMatching(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	food := testPayload()
	food.Filters = models.Filters{Category: "Food", Location: "soma"}
	night := testPayload()
	night.Filters = models.Filters{Category: "nightlife", Location: "mission"}

	m.Set(ctx, "food-key", food, 3)
	m.Set(ctx, "night-key", night, 3)

	if n := m.InvalidateMatching(ctx, MatchCategory, "food"); n != 1 {
		t.Fatalf("invalidated %d entries, want 1", n)
	}
	if _, ok := m.Get(ctx, "food-key"); ok {
		t.Error("matching entry still served")
	}
	if _, ok := m.Get(ctx, "night-key"); !ok {
		t.Error("non-matching entry removed")
	}

	if n := m.InvalidateMatching(ctx, "unknown-field", "x"); n != 0 {
		t.Errorf("unknown field invalidated %d entries", n)
	}
}

func TestManagerStats(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	m.Set(ctx, "key1", testPayload(), 3)
	m.Get(ctx, "key1")
	m.Get(ctx, "absent")

	s := m.Stats(ctx)
	if s.Hot.Hits != 1 {
		t.Errorf("hot hits = %d, want 1", s.Hot.Hits)
	}
	if s.Hot.Entries != 1 || s.Warm.Entries != 1 {
		t.Errorf("entries = hot %d / warm %d, want 1/1", s.Hot.Entries, s.Warm.Entries)
	}
	if s.ColdEnabled {
		t.Error("cold reported enabled without a store")
	}
}

func TestHealthy(t *testing.T) {
	ctx := context.Background()
	m := testManager(t)

	if err := m.Healthy(ctx); err != nil {
		t.Errorf("Healthy = %v, want nil", err)
	}

	cold := newFakeColdStore()
	m.cold = cold
	if err := m.Healthy(ctx); err != nil {
		t.Errorf("Healthy with cold tier = %v, want nil", err)
	}

	cold.failAll = true
	if err := m.Healthy(ctx); err == nil {
		t.Error("Healthy should fail when the cold tier is unreachable")
	}
}

func TestHealthyAfterClose(t *testing.T) {
	m, err := New(context.Background(), testCacheConfig(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := m.Healthy(context.Background()); err == nil {
		t.Error("Healthy should fail after close")
	}
}

func TestTTLFactor(t *testing.T) {
	tests := []struct {
		active int
		want   float64
	}{
		{0, broadTTLFactor},
		{1, broadTTLFactor},
		{2, broadTTLFactor},
		{3, 1.0},
		{4, specificTTLFactor},
		{7, specificTTLFactor},
	}
	for _, tt := range tests {
		if got := ttlFactor(tt.active); got != tt.want {
			t.Errorf("ttlFactor(%d) = %v, want %v", tt.active, got, tt.want)
		}
	}
}

func TestWarmTierEvictsAtCapacity(t *testing.T) {
	before := testutil.ToFloat64(metrics.CacheEvictions.WithLabelValues(TierWarm))

	tier, err := openWarmTier(t.TempDir(), 3)
	if err != nil {
		t.Fatalf("openWarmTier: %v", err)
	}
	defer tier.Close()

	for _, k := range []string{"a", "b", "c", "d"} {
		if err := tier.Set(k, []byte(k), time.Minute); err != nil {
			t.Fatalf("set %s: %v", k, err)
		}
	}

	if _, ok, _ := tier.Get("a"); ok {
		t.Error("oldest warm entry survived eviction")
	}
	if tier.Len() != 3 {
		t.Errorf("Len = %d, want 3", tier.Len())
	}

	after := testutil.ToFloat64(metrics.CacheEvictions.WithLabelValues(TierWarm))
	if after-before != 1 {
		t.Errorf("eviction counter delta = %v, want 1", after-before)
	}
}

func TestWarmTierIndexRebuild(t *testing.T) {
	dir := t.TempDir()

	tier, err := openWarmTier(dir, 10)
	if err != nil {
		t.Fatalf("openWarmTier: %v", err)
	}
	if err := tier.Set("persisted", []byte("v"), time.Hour); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := tier.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := openWarmTier(dir, 10)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	if reopened.Len() != 1 {
		t.Errorf("index entries after reopen = %d, want 1", reopened.Len())
	}
	if _, ok, err := reopened.Get("persisted"); err != nil || !ok {
		t.Errorf("persisted entry not served after reopen (ok=%v err=%v)", ok, err)
	}
}
