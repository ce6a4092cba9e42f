package history

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func entryAt(name string, at time.Time) Entry {
	return Entry{SessionID: "s1", FileName: name, Status: StatusLoaded, LoadedAt: at}
}

func fileNames(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.FileName
	}
	return out
}

func TestMemoryStore_RecentNewestFirst(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore(3)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		if err := m.Record(ctx, entryAt(fmt.Sprintf("f%d", i), base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	got, err := m.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	want := []string{"f4", "f3", "f2"}
	if names := fileNames(got); fmt.Sprint(names) != fmt.Sprint(want) {
		t.Errorf("Recent = %v, want %v", names, want)
	}

	got, _ = m.Recent(ctx, 1)
	if len(got) != 1 || got[0].FileName != "f4" {
		t.Errorf("Recent(1) = %v, want [f4]", fileNames(got))
	}
}

func TestMemoryStore_RecentEmpty(t *testing.T) {
	got, err := NewMemoryStore(0).Recent(context.Background(), 5)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Recent on empty store = %v", got)
	}
}

func TestMemoryStore_RecordAssignsID(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore(4)
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	if err := m.Record(ctx, entryAt("a", at)); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := m.Record(ctx, entryAt("b", at)); err != nil {
		t.Fatalf("Record: %v", err)
	}
	keep := entryAt("c", at)
	keep.ID = "given-id"
	if err := m.Record(ctx, keep); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, err := m.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if got[0].ID != "given-id" {
		t.Errorf("caller ID = %q, want given-id", got[0].ID)
	}
	if got[1].ID == "" || got[2].ID == "" {
		t.Fatalf("generated IDs empty: %q, %q", got[1].ID, got[2].ID)
	}
	if got[1].ID == got[2].ID {
		t.Errorf("generated IDs not distinct: %q", got[1].ID)
	}
}

func TestMemoryStore_Purge(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore(4)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 6; i++ {
		_ = m.Record(ctx, entryAt(fmt.Sprintf("f%d", i), base.Add(time.Duration(i)*time.Hour)))
	}

	// Ring holds f2..f5; f2 and f3 are older than the cutoff.
	removed, err := m.Purge(ctx, base.Add(4*time.Hour))
	if err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if removed != 2 {
		t.Errorf("Purge removed %d, want 2", removed)
	}

	got, _ := m.Recent(ctx, 10)
	if names := fileNames(got); fmt.Sprint(names) != "[f5 f4]" {
		t.Errorf("after Purge Recent = %v, want [f5 f4]", names)
	}

	// New entries continue after the kept ones.
	_ = m.Record(ctx, entryAt("f6", base.Add(6*time.Hour)))
	got, _ = m.Recent(ctx, 10)
	if names := fileNames(got); fmt.Sprint(names) != "[f6 f5 f4]" {
		t.Errorf("after Record Recent = %v, want [f6 f5 f4]", names)
	}

	removed, _ = m.Purge(ctx, base)
	if removed != 0 {
		t.Errorf("Purge with old cutoff removed %d, want 0", removed)
	}
}

func TestNormalizeLimit(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 50},
		{-3, 50},
		{1, 1},
		{120, 120},
		{501, 500},
	}
	for _, tt := range tests {
		if got := normalizeLimit(tt.in); got != tt.want {
			t.Errorf("normalizeLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Config{})
	if err != nil {
		t.Fatalf("Open default: %v", err)
	}
	if _, ok := s.(*MemoryStore); !ok {
		t.Errorf("Open default = %T, want *MemoryStore", s)
	}
	s.Close()

	if _, err := Open(ctx, Config{Driver: "postgres"}); err == nil {
		t.Error("Open postgres without DSN succeeded")
	}
	if _, err := Open(ctx, Config{Driver: "sqlite"}); err == nil {
		t.Error("Open sqlite without DSN succeeded")
	}
	if _, err := Open(ctx, Config{Driver: "mongo"}); err == nil {
		t.Error("Open unknown driver succeeded")
	}
}
