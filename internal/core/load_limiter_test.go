package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestLoadLimiter_AcquireRelease(t *testing.T) {
	limiter := NewLoadLimiter(2, time.Second)
	ctx := context.Background()

	if got := limiter.Available(); got != 2 {
		t.Errorf("initial Available = %d, want 2", got)
	}

	if err := limiter.Acquire(ctx); err != nil {
		t.Fatalf("first Acquire failed: %v", err)
	}
	if err := limiter.Acquire(ctx); err != nil {
		t.Fatalf("second Acquire failed: %v", err)
	}
	if got := limiter.ActiveCount(); got != 2 {
		t.Errorf("ActiveCount = %d, want 2", got)
	}
	if got := limiter.Available(); got != 0 {
		t.Errorf("Available = %d, want 0", got)
	}

	limiter.Release()
	limiter.Release()

	if got := limiter.ActiveCount(); got != 0 {
		t.Errorf("after Release, ActiveCount = %d, want 0", got)
	}
}

func TestLoadLimiter_BlocksWhenFull(t *testing.T) {
	limiter := NewLoadLimiter(1, 50*time.Millisecond)
	ctx := context.Background()

	if err := limiter.Acquire(ctx); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer limiter.Release()

	start := time.Now()
	err := limiter.Acquire(ctx)
	if !errors.Is(err, ErrTooManyLoads) {
		t.Errorf("expected ErrTooManyLoads, got %v", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("Acquire returned after %v, expected to wait", elapsed)
	}
}

func TestLoadLimiter_ContextCancelled(t *testing.T) {
	limiter := NewLoadLimiter(1, time.Minute)
	if !limiter.TryAcquire() {
		t.Fatal("TryAcquire on empty limiter failed")
	}
	defer limiter.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := limiter.Acquire(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Acquire with cancelled ctx = %v, want context.Canceled", err)
	}
	if limiter.TryAcquire() {
		t.Error("TryAcquire on full limiter succeeded")
	}
}

func TestLoadLimiter_WaitsForSlot(t *testing.T) {
	limiter := NewLoadLimiter(1, time.Second)
	ctx := context.Background()
	_ = limiter.Acquire(ctx)

	go func() {
		time.Sleep(20 * time.Millisecond)
		limiter.Release()
	}()

	if err := limiter.Acquire(ctx); err != nil {
		t.Fatalf("Acquire after release failed: %v", err)
	}
	limiter.Release()
}

func TestLoadLimiter_Concurrent(t *testing.T) {
	const max = 3
	limiter := NewLoadLimiter(max, time.Second)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		current int
		peak    int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := limiter.Acquire(context.Background()); err != nil {
				t.Errorf("Acquire: %v", err)
				return
			}
			mu.Lock()
			current++
			if current > peak {
				peak = current
			}
			mu.Unlock()

			time.Sleep(5 * time.Millisecond)

			mu.Lock()
			current--
			mu.Unlock()
			limiter.Release()
		}()
	}
	wg.Wait()

	if peak > max {
		t.Errorf("peak concurrency = %d, want <= %d", peak, max)
	}
}

func TestLoadLimiter_WaitForDrain(t *testing.T) {
	limiter := NewLoadLimiter(2, time.Second)
	if err := limiter.WaitForDrain(context.Background()); err != nil {
		t.Fatalf("WaitForDrain on idle limiter: %v", err)
	}

	_ = limiter.Acquire(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		limiter.Release()
	}()
	if err := limiter.WaitForDrain(context.Background()); err != nil {
		t.Fatalf("WaitForDrain: %v", err)
	}

	_ = limiter.Acquire(context.Background())
	defer limiter.Release()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := limiter.WaitForDrain(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("WaitForDrain with busy slot = %v, want deadline exceeded", err)
	}
}

func TestLoadLimiter_Status(t *testing.T) {
	limiter := NewLoadLimiter(0, 0)
	_ = limiter.Acquire(context.Background())
	defer limiter.Release()

	got := limiter.Status()
	want := LoadLimiterStatus{Active: 1, Available: DefaultMaxConcurrentLoads - 1, MaxConcurrent: DefaultMaxConcurrentLoads}
	if got != want {
		t.Errorf("Status() = %+v, want %+v", got, want)
	}
}
