// Package cache provides an in-memory stale-while-revalidate cache for
// the pipeline's fetchers. Each store holds one key's value, deduplicates
// concurrent fetches, refreshes in the background on a fixed interval,
// and keeps the last good value visible through refreshes and failures.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/nathannewyen/contribfeed/internal/constants"
	"github.com/nathannewyen/contribfeed/internal/log"
)

// FetchFunc produces a fresh value for a store.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Profile holds the timing constants for a cache store. The two stock
// profiles differ only in these numbers: aggregated timelines refresh
// less often and retry less because a full pipeline run is expensive.
type Profile struct {
	// TTL is both the freshness window and the dedupe interval:
	// reads inside it never trigger a fetch, and the background
	// revalidation ticker fires at this interval.
	TTL time.Duration
	// RetryCount is the number of extra attempts after a failed fetch.
	RetryCount int
	// RetryDelay is the pause between attempts.
	RetryDelay time.Duration
}

// StandardProfile suits frequently-changing external metadata
// (star counts, Q&A profile).
func StandardProfile() Profile {
	return Profile{
		TTL:        constants.StandardCacheTTL,
		RetryCount: constants.StandardRetryCount,
		RetryDelay: time.Second,
	}
}

// AggregatedProfile suits the multi-source contribution timeline.
func AggregatedProfile() Profile {
	return Profile{
		TTL:        constants.AggregatedCacheTTL,
		RetryCount: constants.AggregatedRetryCount,
		RetryDelay: time.Second,
	}
}

// Result is the synchronous read model a store exposes. Data and IsError
// can both be set at once: a stale value stays visible alongside a fresh
// error.
type Result[T any] struct {
	Data      T
	IsLoading bool
	IsError   bool
}

// Store caches one key's value.
type Store[T any] struct {
	name    string
	fetch   FetchFunc[T]
	profile Profile

	mu        sync.Mutex
	value     T
	hasValue  bool
	fetchedAt time.Time
	lastErr   error
	inflight  bool
}

// New creates a store. The name only appears in logs.
func New[T any](name string, fetch FetchFunc[T], profile Profile) *Store[T] {
	return &Store[T]{
		name:    name,
		fetch:   fetch,
		profile: profile,
	}
}

// Get returns the current read model without blocking. A read with no
// cached value kicks off the first fetch and reports IsLoading; a read
// past the freshness window returns the stale value immediately and
// revalidates in the background. Consumers never see a loading state
// after the first successful fetch.
func (s *Store[T]) Get() Result[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	fresh := s.hasValue && time.Since(s.fetchedAt) < s.profile.TTL
	if !fresh && !s.inflight {
		s.inflight = true
		go s.refresh()
	}

	return Result[T]{
		Data:      s.value,
		IsLoading: !s.hasValue && s.lastErr == nil,
		IsError:   s.lastErr != nil,
	}
}

// Run revalidates the store on the profile's interval until ctx is done.
// There is no revalidate-on-focus equivalent: upstream quotas are shared
// and precious, so the ticker is the only refresh trigger besides Get.
func (s *Store[T]) Run(ctx context.Context) {
	ticker := time.NewTicker(s.profile.TTL)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			if s.inflight {
				s.mu.Unlock()
				continue
			}
			s.inflight = true
			s.mu.Unlock()
			s.refresh()
		}
	}
}

// Refresh fetches synchronously, honoring the retry budget. Used by
// startup warm-up; Get and Run refresh in the background instead.
func (s *Store[T]) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if s.inflight {
		s.mu.Unlock()
		return nil
	}
	s.inflight = true
	s.mu.Unlock()

	return s.doFetch(ctx)
}

// refresh is the background entry point; the caller must have set
// inflight under the lock. All writes to the entry funnel through
// doFetch, which serializes per-key mutation; a stale revalidation
// simply overwrites the entry when it lands (last-writer-wins).
func (s *Store[T]) refresh() {
	if err := s.doFetch(context.Background()); err != nil {
		log.Warn("cache refresh failed", "store", s.name, "error", err)
	}
}

func (s *Store[T]) doFetch(ctx context.Context) error {
	var (
		value T
		err   error
	)

	attempts := s.profile.RetryCount + 1
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			if err = sleep(ctx, s.profile.RetryDelay); err != nil {
				break
			}
		}

		value, err = s.fetch(ctx)
		if err == nil {
			break
		}
		log.Debug("fetch attempt failed", "store", s.name, "attempt", attempt+1, "error", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight = false

	if err != nil {
		// Retry budget exhausted: keep the last known good value and
		// surface the error flag alongside it.
		s.lastErr = err
		return err
	}

	s.value = value
	s.hasValue = true
	s.fetchedAt = time.Now()
	s.lastErr = nil
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
