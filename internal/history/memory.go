package history

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps the most recent entries in a fixed-size ring.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
	next    int
	full    bool
}

// NewMemoryStore creates a ring holding at most size entries.
func NewMemoryStore(size int) *MemoryStore {
	if size <= 0 {
		size = DefaultMemorySize
	}
	return &MemoryStore{entries: make([]Entry, size)}
}

func (m *MemoryStore) Record(_ context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[m.next] = e
	m.next = (m.next + 1) % len(m.entries)
	if m.next == 0 {
		m.full = true
	}
	return nil
}

func (m *MemoryStore) Recent(_ context.Context, limit int) ([]Entry, error) {
	limit = normalizeLimit(limit)

	m.mu.RLock()
	defer m.mu.RUnlock()

	n := m.len()
	if limit > n {
		limit = n
	}
	out := make([]Entry, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (m.next - i + len(m.entries)) % len(m.entries)
		out = append(out, m.entries[idx])
	}
	return out, nil
}

func (m *MemoryStore) Purge(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := m.len()
	kept := make([]Entry, 0, n)
	// oldest first
	for i := n; i >= 1; i-- {
		e := m.entries[(m.next-i+len(m.entries))%len(m.entries)]
		if !e.LoadedAt.Before(cutoff) {
			kept = append(kept, e)
		}
	}

	removed := int64(n - len(kept))
	if removed == 0 {
		return 0, nil
	}

	size := len(m.entries)
	m.entries = make([]Entry, size)
	copy(m.entries, kept)
	m.next = len(kept) % size
	m.full = len(kept) == size
	return removed, nil
}

func (m *MemoryStore) Close() {}

func (m *MemoryStore) len() int {
	if m.full {
		return len(m.entries)
	}
	return m.next
}
