package core

// scheduler.go provides the background maintenance job of the viewer.
//
// Each run:
//  1. Evicts sessions idle for longer than the session TTL
//  2. Purges load history entries older than the history retention
//
// The sweeper is long-running and stops when its context is cancelled. It
// logs failures but never stops the application over a failed run.

import (
	"context"
	"log/slog"
	"time"
)

// SweepConfig holds configuration for the session sweeper.
// Zero values fall back to the defaults noted per field.
type SweepConfig struct {
	SessionTTL       time.Duration // Idle time before eviction (default: 2h)
	Interval         time.Duration // How often to run (default: 5m)
	HistoryRetention time.Duration // Age of purged history entries; 0 disables purging
}

func (c SweepConfig) withDefaults() SweepConfig {
	if c.SessionTTL <= 0 {
		c.SessionTTL = 2 * time.Hour
	}
	if c.Interval <= 0 {
		c.Interval = 5 * time.Minute
	}
	return c
}

// StartSessionSweeper evicts idle sessions and purges old history every
// cfg.Interval until ctx is cancelled. It blocks; run it in a goroutine.
func (s *Service) StartSessionSweeper(ctx context.Context, cfg SweepConfig) {
	cfg = cfg.withDefaults()
	slog.Info("session sweeper started",
		"session_ttl", cfg.SessionTTL,
		"interval", cfg.Interval,
		"history_retention", cfg.HistoryRetention,
	)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session sweeper stopped")
			return
		case <-ticker.C:
			s.runSweep(ctx, cfg)
		}
	}
}

// runSweep performs one eviction + purge cycle.
func (s *Service) runSweep(ctx context.Context, cfg SweepConfig) {
	start := time.Now()

	evicted := s.EvictIdle(cfg.SessionTTL)
	if evicted > 0 {
		slog.Info("evicted idle sessions", "sessions_evicted", evicted, "sessions_live", s.SessionCount())
	}

	if cfg.HistoryRetention > 0 {
		cutoff := s.opts.Now().Add(-cfg.HistoryRetention)
		purged, err := s.history.Purge(ctx, cutoff)
		if err != nil {
			slog.Error("history purge failed", "error", err)
		} else if purged > 0 {
			slog.Info("purged load history", "entries_purged", purged, "cutoff", cutoff)
		}
	}

	slog.Debug("sweep completed", "duration_ms", time.Since(start).Milliseconds())
}

// EvictIdle removes sessions not used for longer than ttl and returns how
// many were removed.
func (s *Service) EvictIdle(ttl time.Duration) int {
	cutoff := s.opts.Now().Add(-ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, sess := range s.sessions {
		if sess.LastAccess.Before(cutoff) {
			delete(s.sessions, id)
			evicted++
		}
	}
	return evicted
}
