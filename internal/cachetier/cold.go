// Vibescout - Mood-Based Place Discovery Engine
// Copyright 2026 Vibescout Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vibescout/vibescout

package cachetier

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// coldKeyPrefix namespaces discovery payloads in Redis.
const coldKeyPrefix = "vibescout:disc:"

// coldStore is the remote tier surface. Satisfied by redisStore in
// production and by an in-memory fake in tests.
type coldStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
	Remove(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Len(ctx context.Context) (int, error)
	Entries(ctx context.Context) (map[string][]byte, error)
	Ping(ctx context.Context) error
	Close() error
}

// redisStore backs the cold tier with Redis. Expiry is native, and
// capacity is left to the server's maxmemory policy rather than
// tracked client-side; with allkeys-lru configured the tier behaves as
// a remote LRU.
type redisStore struct {
	client *redis.Client
}

func dialColdStore(ctx context.Context, addr, password string, db int) (*redisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("dial redis at %s: %w", addr, err)
	}
	return &redisStore{client: client}, nil
}

func (s *redisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	payload, err := s.client.Get(ctx, coldKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cold get: %w", err)
	}
	return payload, true, nil
}

func (s *redisStore) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, coldKeyPrefix+key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("cold set: %w", err)
	}
	return nil
}

func (s *redisStore) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, coldKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("cold remove: %w", err)
	}
	return nil
}

// Clear deletes every key under the cold prefix, scanning in pages to
// avoid blocking the server.
func (s *redisStore) Clear(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, coldKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("cold clear: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cold clear scan: %w", err)
	}
	return nil
}

func (s *redisStore) Len(ctx context.Context) (int, error) {
	count := 0
	iter := s.client.Scan(ctx, 0, coldKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("cold len: %w", err)
	}
	return count, nil
}

// Entries reads every payload under the cold prefix. Selective
// invalidation is rare enough that a scan-and-fetch pass is fine.
func (s *redisStore) Entries(ctx context.Context) (map[string][]byte, error) {
	out := make(map[string][]byte)
	iter := s.client.Scan(ctx, 0, coldKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		full := iter.Val()
		val, err := s.client.Get(ctx, full).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("cold entries: %w", err)
		}
		out[strings.TrimPrefix(full, coldKeyPrefix)] = val
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("cold entries scan: %w", err)
	}
	return out, nil
}

func (s *redisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cold ping: %w", err)
	}
	return nil
}

func (s *redisStore) Close() error {
	return s.client.Close()
}
