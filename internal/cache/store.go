package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ternarybob/pretium/internal/metrics"
)

// Store is a TTL cache for one family of values. Entries past their
// TTL stop counting as fresh but are never evicted: when the source is
// down, a stale quote beats no quote.
type Store[T any] struct {
	name    string
	ttl     time.Duration
	metrics *metrics.Metrics

	mu      sync.RWMutex
	entries map[string]entry[T]
	group   singleflight.Group
}

type entry[T any] struct {
	value    T
	storedAt time.Time
}

// NewStore creates a named store with the given freshness window.
func NewStore[T any](name string, ttl time.Duration, m *metrics.Metrics) *Store[T] {
	return &Store[T]{
		name:    name,
		ttl:     ttl,
		metrics: m,
		entries: make(map[string]entry[T]),
	}
}

// Name returns the store's name as used in metrics and status output.
func (s *Store[T]) Name() string {
	return s.name
}

// Get returns the value for key if it is still fresh.
func (s *Store[T]) Get(key string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok || time.Since(e.storedAt) >= s.ttl {
		var zero T
		return zero, false
	}
	return e.value, true
}

// GetStale returns the value for key regardless of age.
func (s *Store[T]) GetStale(key string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok {
		var zero T
		return zero, false
	}
	return e.value, true
}

// Set stores a value and restarts its freshness window.
func (s *Store[T]) Set(key string, value T) {
	s.mu.Lock()
	s.entries[key] = entry[T]{value: value, storedAt: time.Now()}
	s.mu.Unlock()
}

// Len returns the number of entries, fresh or stale.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Do returns a fresh value for key, fetching it at most once across
// concurrent callers. A fetch failure falls back to a stale entry when
// one exists; only when there is nothing to serve does the fetch error
// surface.
func (s *Store[T]) Do(ctx context.Context, key string, fetch func(context.Context) (T, error)) (T, error) {
	if value, ok := s.Get(key); ok {
		s.metrics.RecordCacheEvent(s.name, "hit")
		return value, nil
	}
	s.metrics.RecordCacheEvent(s.name, "miss")

	result, err, _ := s.group.Do(key, func() (interface{}, error) {
		// A concurrent flight may have landed while we waited.
		if value, ok := s.Get(key); ok {
			return value, nil
		}

		value, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		s.Set(key, value)
		return value, nil
	})

	if err != nil {
		if stale, ok := s.GetStale(key); ok {
			s.metrics.RecordCacheEvent(s.name, "stale_fallback")
			return stale, nil
		}
		var zero T
		return zero, err
	}

	return result.(T), nil
}
