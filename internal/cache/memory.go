// Package cache memoizes computed reports between scrapes. The lifecycle
// model is cheap but the rendered exposition payload is identical for the
// whole process lifetime, so handlers keep it here instead of recomputing
// on every request.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/carbonwise/telco-lca-exporter/internal/must"
)

var ErrNotFound = errors.New("cache entry not found")

// DynamicValueFunc computes an entry value. Entries set with a
// DynamicValueFunc are refreshed on expiry instead of being evicted.
type DynamicValueFunc func(ctx context.Context) (any, error)

type entry struct {
	expiresAt time.Time
	ttl       time.Duration
	value     any
	compute   DynamicValueFunc
}

func (e *entry) expired() bool {
	return time.Since(e.expiresAt) > 0
}

func (e *entry) refresh(ctx context.Context) error {
	value, err := e.compute(ctx)
	if err != nil {
		return err
	}
	e.value = value
	e.expiresAt = time.Now().Add(e.ttl)
	return nil
}

type Memory struct {
	entries    *sync.Map
	defaultTTL time.Duration
}

func NewMemory(ctx context.Context, defaultTTL time.Duration) *Memory {
	memory := &Memory{
		entries:    new(sync.Map),
		defaultTTL: defaultTTL,
	}

	go memory.expirer(ctx)

	return memory
}

func (m *Memory) Set(ctx context.Context, key string, value any, ttl ...time.Duration) error {
	entryTTL := m.defaultTTL
	if len(ttl) > 0 {
		entryTTL = ttl[0]
	}

	if compute, ok := value.(DynamicValueFunc); ok {
		// stored expired so the first Get triggers the computation
		m.entries.Store(key, &entry{
			expiresAt: time.Now(),
			ttl:       entryTTL,
			compute:   compute,
		})
		slog.Debug("new dynamic cache entry", "key", key)
		return nil
	}

	m.entries.Store(key, &entry{
		expiresAt: time.Now().Add(entryTTL),
		ttl:       entryTTL,
		value:     value,
	})
	slog.Debug("new cache entry", "key", key)
	return nil
}

func (m *Memory) Get(ctx context.Context, key string) (any, error) {
	loaded, found := m.entries.Load(key)
	if !found {
		return nil, ErrNotFound
	}

	e, ok := loaded.(*entry)
	must.Assert(ok, "loaded cache value is not an entry")

	if e.expired() && e.compute == nil {
		m.entries.Delete(key)
		return nil, ErrNotFound
	}

	if e.expired() {
		if err := e.refresh(ctx); err != nil {
			return nil, err
		}
		slog.Debug("dynamic cache entry refreshed", "key", key)
	}

	return e.value, nil
}

func (m *Memory) expirer(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		m.entries.Range(func(key, loaded any) bool {
			e, ok := loaded.(*entry)
			must.Assert(ok, "loaded cache value is not an entry")

			if e.expired() && e.compute == nil {
				slog.Debug("cache entry expired", "key", key)
				m.entries.Delete(key)
			}

			return true
		})
	}
}
