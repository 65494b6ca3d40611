/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package countcache

import (
	"context"
	"sync"
	"time"
)

// Cache memoizes expensive item counts.
type Cache interface {
	// Get returns the cached count for key and whether it was present.
	Get(ctx context.Context, key string) (int64, bool, error)
	// Set stores n under key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, n int64, ttl time.Duration) error
}

type entry struct {
	n       int64
	expires time.Time
}

// Memory is a process-local Cache.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemory creates an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) (int64, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return 0, false, nil
	}
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return 0, false, nil
	}
	return e.n, true, nil
}

func (m *Memory) Set(_ context.Context, key string, n int64, ttl time.Duration) error {
	e := entry{n: n}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
