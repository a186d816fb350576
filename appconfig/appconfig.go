// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package appconfig

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Known configuration keys
const (
	KeyDecisionTTL      = "decision_ttl_seconds"
	KeyDecisionDefaults = "decision_defaults"
)

// ErrMalformed marks a stored value that does not decode into the requested type
var ErrMalformed = errors.New("malformed config value")

// DefaultTTL is how long a cached value is served before reloading
const DefaultTTL = 60 * time.Second

// Source loads raw JSON config values. found is false for missing keys.
type Source interface {
	GetConfig(ctx context.Context, key string) (value json.RawMessage, found bool, err error)
}

// Clock supplies the current time
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

type entry struct {
	value    json.RawMessage
	found    bool
	loadedAt time.Time
}

// Cache is a TTL cache over a config Source. Missing keys are cached as
// absent so repeated lookups do not hit the source.
type Cache struct {
	source Source
	ttl    time.Duration
	clock  Clock

	mu      sync.Mutex
	entries map[string]entry
	// Bumped by Invalidate and InvalidateAll. A load only stores its value
	// if neither moved while it was in flight.
	gens  map[string]uint64
	epoch uint64
}

type Option func(*Cache)

func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.ttl = ttl }
}

func WithClock(clock Clock) Option {
	return func(c *Cache) { c.clock = clock }
}

func New(source Source, opts ...Option) *Cache {
	c := &Cache{
		source:  source,
		ttl:     DefaultTTL,
		clock:   systemClock{},
		entries: make(map[string]entry),
		gens:    make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get decodes the value stored under key into v. It returns false, leaving v
// untouched, when the key is not configured.
func (c *Cache) Get(ctx context.Context, key string, v any) (bool, error) {
	value, found, err := c.raw(ctx, key)
	if err != nil || !found {
		return false, err
	}
	if err := json.Unmarshal(value, v); err != nil {
		return false, fmt.Errorf("config %q: %w: %v", key, ErrMalformed, err)
	}
	return true, nil
}

func (c *Cache) raw(ctx context.Context, key string) (json.RawMessage, bool, error) {
	now := c.clock.Now()

	c.mu.Lock()
	e, ok := c.entries[key]
	gen, epoch := c.gens[key], c.epoch
	c.mu.Unlock()
	if ok && now.Sub(e.loadedAt) < c.ttl {
		return e.value, e.found, nil
	}

	value, found, err := c.source.GetConfig(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("config %q: %w", key, err)
	}

	c.mu.Lock()
	if c.gens[key] == gen && c.epoch == epoch {
		c.entries[key] = entry{value: value, found: found, loadedAt: now}
	}
	c.mu.Unlock()
	return value, found, nil
}

// Invalidate drops a cached key
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.gens[key]++
	c.mu.Unlock()
}

// InvalidateAll drops every cached key
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.epoch++
	c.mu.Unlock()
}

// DecisionTTL is the decision_ttl_seconds value, keyed by decision type
// with a "default" fallback.
type DecisionTTL map[string]int

// For returns the TTL for decisionType, then "default", then fallback
func (t DecisionTTL) For(decisionType string, fallback time.Duration) time.Duration {
	if secs, ok := t[decisionType]; ok && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if secs, ok := t["default"]; ok && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

// DecisionDefaults is the decision_defaults value
type DecisionDefaults struct {
	MaxOptions int `json:"maxOptions"`
}
