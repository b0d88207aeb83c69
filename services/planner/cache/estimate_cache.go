// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package cache memoizes heuristic estimates per state.
//
// An estimate depends only on the state, the domain and the cost rule. With
// the last two fixed for an Estimator, the state fingerprint is a complete
// cache key.
package cache

import (
	"container/list"
	"context"
	"errors"
	"math"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/AleutianAI/relaxplan/services/planner/action"
	"github.com/AleutianAI/relaxplan/services/planner/heuristics"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"
)

// DefaultCapacity is the entry limit used when none is configured.
const DefaultCapacity = 4096

// Option configures an EstimateCache.
type Option func(*EstimateCache)

// WithCapacity sets the maximum number of cached estimates. Values < 1 keep
// the default.
func WithCapacity(n int) Option {
	return func(c *EstimateCache) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Entries   int
	Capacity  int
	Hits      int64
	Misses    int64
	Evictions int64
}

// HitRate returns hits / (hits + misses), or 0 before any lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

type entry struct {
	key   uint64
	value float64
}

// EstimateCache is an LRU memo in front of a heuristics.Estimator.
//
// Description:
//
//	Lookups are keyed by Fingerprint(state). Concurrent misses on the same
//	state share one inner estimate. Errors are never cached. A caller only
//	ever fails with its own context's error: if the caller that started a
//	shared estimate is cancelled, the others retry.
//
// Thread Safety: Safe for concurrent use if the inner Estimator is.
type EstimateCache struct {
	inner    heuristics.Estimator
	capacity int

	mu      sync.Mutex
	entries map[uint64]*list.Element
	lru     *list.List
	flight  singleflight.Group

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// New wraps inner with an LRU cache.
func New(inner heuristics.Estimator, opts ...Option) *EstimateCache {
	c := &EstimateCache{
		inner:    inner,
		capacity: DefaultCapacity,
		entries:  make(map[uint64]*list.Element),
		lru:      list.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Estimate returns the cached estimate for state, computing it with the
// inner Estimator on a miss.
func (c *EstimateCache) Estimate(ctx context.Context, state []action.Literal) (float64, error) {
	ctx, span := startCacheSpan(ctx, len(state))
	defer span.End()

	key := Fingerprint(state)
	if v, ok := c.get(key); ok {
		c.hits.Add(1)
		recordHit(ctx)
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return v, nil
	}
	c.misses.Add(1)
	recordMiss(ctx)
	span.SetAttributes(attribute.Bool("cache.hit", false))

	v, err := c.load(ctx, key, state)
	if err != nil {
		span.RecordError(err)
	}
	return v, err
}

// load computes a missed estimate, sharing the work with concurrent callers
// for the same key.
//
// Description:
//
//	Each caller waits on its own context. The shared estimate runs under
//	the context of the caller that started it. When that context ends
//	first, waiters whose own context is still live start a fresh estimate
//	instead of returning an error that is not theirs.
func (c *EstimateCache) load(ctx context.Context, key uint64, state []action.Literal) (float64, error) {
	flightKey := strconv.FormatUint(key, 16)
	for {
		ch := c.flight.DoChan(flightKey, func() (any, error) {
			v, err := c.inner.Estimate(ctx, state)
			if err != nil {
				if ctx.Err() != nil {
					return v, &starterCancelledError{err: err}
				}
				return v, err
			}
			c.put(ctx, key, v)
			return v, nil
		})

		select {
		case <-ctx.Done():
			return math.Inf(1), ctx.Err()
		case res := <-ch:
			if res.Err == nil {
				return res.Val.(float64), nil
			}
			var sc *starterCancelledError
			if !errors.As(res.Err, &sc) {
				return res.Val.(float64), res.Err
			}
			if ctx.Err() != nil {
				return res.Val.(float64), sc.err
			}
			if v, ok := c.get(key); ok {
				return v, nil
			}
		}
	}
}

// starterCancelledError marks a shared estimate that failed because the
// context of the caller that started it ended.
type starterCancelledError struct {
	err error
}

func (e *starterCancelledError) Error() string {
	return e.err.Error()
}

func (e *starterCancelledError) Unwrap() error {
	return e.err
}

// Stats returns current cache statistics.
func (c *EstimateCache) Stats() Stats {
	c.mu.Lock()
	n := len(c.entries)
	c.mu.Unlock()

	return Stats{
		Entries:   n,
		Capacity:  c.capacity,
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}

// Len returns the number of cached estimates.
func (c *EstimateCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear removes every cached estimate. Counters are kept.
func (c *EstimateCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[uint64]*list.Element)
	c.lru.Init()
}

func (c *EstimateCache) get(key uint64) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return 0, false
	}
	c.lru.MoveToFront(el)
	return el.Value.(*entry).value, true
}

func (c *EstimateCache) put(ctx context.Context, key uint64, value float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*entry).value = value
		c.lru.MoveToFront(el)
		return
	}

	for len(c.entries) >= c.capacity {
		oldest := c.lru.Back()
		if oldest == nil {
			break
		}
		c.lru.Remove(oldest)
		delete(c.entries, oldest.Value.(*entry).key)
		c.evictions.Add(1)
		recordEviction(ctx)
	}

	c.entries[key] = c.lru.PushFront(&entry{key: key, value: value})
}
