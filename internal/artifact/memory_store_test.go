package artifact

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	if err := s.Put(ctx, "sess-1", "metadata.json", []byte(`{"status":"created"}`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	raw, err := s.Get(ctx, "sess-1", "metadata.json")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	// Mutating the returned slice must not affect the stored copy.
	raw[0] = 'X'
	again, err := s.Get(ctx, "sess-1", "metadata.json")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if again[0] != '{' {
		t.Fatal("stored content was aliased")
	}
	if _, err := s.Get(ctx, "sess-1", "missing.json"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreDeleteAndSessions(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_ = s.Put(ctx, "a", "metadata.json", []byte(`{}`))
	_ = s.Put(ctx, "b", "metadata.json", []byte(`{}`))
	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete twice: %v", err)
	}
	ids, err := s.Sessions(ctx)
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}
	if len(ids) != 1 || ids[0] != "b" {
		t.Fatalf("unexpected ids: %v", ids)
	}
}
