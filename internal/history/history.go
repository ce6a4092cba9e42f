// Package history records load events of the viewer: which file was loaded
// into which session, how large it was, how many records and columns came
// out, and whether the load failed. The log content itself is never stored.
//
// Three backends are available behind [Store]:
//
//   - memory:   bounded in-process ring, the default
//   - postgres: jackc/pgx connection pool
//   - sqlite:   modernc.org/sqlite through database/sql
//
// Use [Open] to construct the backend named in [Config].
package history

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Status is the outcome of a load.
type Status string

const (
	StatusLoaded     Status = "loaded"
	StatusFailed     Status = "failed"
	StatusSuperseded Status = "superseded"
)

// Entry is one load event.
type Entry struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	FileName  string    `json:"file_name"`
	SizeBytes int64     `json:"size_bytes"`
	Records   int       `json:"records"`
	Columns   int       `json:"columns"`
	Status    Status    `json:"status"`
	Error     string    `json:"error,omitempty"`
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	LoadedAt  time.Time `json:"loaded_at"`
}

// Store persists load events.
type Store interface {
	// Record appends an entry.
	Record(ctx context.Context, e Entry) error
	// Recent returns up to limit entries, newest first.
	Recent(ctx context.Context, limit int) ([]Entry, error)
	// Purge deletes entries loaded before cutoff and returns how many were removed.
	Purge(ctx context.Context, cutoff time.Time) (int64, error)
	// Close releases backend resources.
	Close()
}

// Driver names accepted by Open.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DefaultMemorySize is the ring capacity used when Config.MemorySize is unset.
const DefaultMemorySize = 1000

// ErrUnknownDriver is returned by Open for an unsupported driver name.
var ErrUnknownDriver = errors.New("unknown history driver")

// Config selects and tunes a backend.
type Config struct {
	Driver     string
	DSN        string
	MaxConns   int
	MinConns   int
	MemorySize int
}

// Open constructs the backend named by cfg.Driver. SQL backends create their
// table on first use.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverMemory:
		return NewMemoryStore(cfg.MemorySize), nil
	case DriverPostgres:
		if cfg.DSN == "" {
			return nil, fmt.Errorf("history: postgres driver requires a DSN")
		}
		return NewPostgresStore(ctx, cfg)
	case DriverSQLite:
		if cfg.DSN == "" {
			return nil, fmt.Errorf("history: sqlite driver requires a DSN")
		}
		return NewSQLiteStore(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

// normalizeLimit clamps a Recent limit to 1..500, defaulting to 50.
func normalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return 50
	case limit > 500:
		return 500
	default:
		return limit
	}
}
