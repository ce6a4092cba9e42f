package core

// load_limiter.go implements concurrency control for log file loads.
//
// The limiter uses a semaphore pattern to restrict parallel loads to a
// configurable maximum. Every load reads the whole file into memory, so the
// slot count bounds peak memory. When all slots are occupied, new requests
// wait up to maxWait before failing with ErrTooManyLoads.
//
// WaitForDrain supports graceful shutdown by blocking until all active
// loads complete.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyLoads is returned when all load slots are occupied and the
// wait timeout expires. Clients should retry after a short delay.
var ErrTooManyLoads = errors.New("too many loads in progress, please try again later")

// DefaultMaxConcurrentLoads is the default limit for parallel loads.
const DefaultMaxConcurrentLoads = 5

// DefaultMaxWaitTime is how long to wait for a slot before rejecting.
const DefaultMaxWaitTime = 30 * time.Second

// LoadLimiter controls concurrent load processing using a semaphore.
type LoadLimiter struct {
	semaphore chan struct{}
	maxWait   time.Duration

	mu     sync.RWMutex
	active int
}

// NewLoadLimiter creates a limiter that allows at most maxConcurrent simultaneous loads.
// Requests that cannot acquire a slot within maxWait receive ErrTooManyLoads.
func NewLoadLimiter(maxConcurrent int, maxWait time.Duration) *LoadLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentLoads
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}

	return &LoadLimiter{
		semaphore: make(chan struct{}, maxConcurrent),
		maxWait:   maxWait,
	}
}

// Acquire waits for a load slot.
// Returns nil on success, ErrTooManyLoads if the wait expires, or the
// context error if ctx ends first. The caller MUST call Release on success.
func (l *LoadLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil

	case <-timer.C:
		return ErrTooManyLoads

	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryAcquire attempts to acquire a slot without blocking.
func (l *LoadLimiter) TryAcquire() bool {
	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return true
	default:
		return false
	}
}

// Release releases a previously acquired slot.
// Must be called exactly once for each successful Acquire/TryAcquire.
func (l *LoadLimiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()

	<-l.semaphore
}

// ActiveCount returns the number of currently active loads.
func (l *LoadLimiter) ActiveCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

// Available returns the number of free slots.
func (l *LoadLimiter) Available() int {
	return cap(l.semaphore) - len(l.semaphore)
}

// WaitForDrain blocks until all active loads complete or ctx is cancelled.
func (l *LoadLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.ActiveCount() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// LoadLimiterStatus is a snapshot of the limiter's state.
type LoadLimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the current limiter state for health checks.
func (l *LoadLimiter) Status() LoadLimiterStatus {
	l.mu.RLock()
	active := l.active
	l.mu.RUnlock()

	return LoadLimiterStatus{
		Active:        active,
		Available:     cap(l.semaphore) - len(l.semaphore),
		MaxConcurrent: cap(l.semaphore),
	}
}
