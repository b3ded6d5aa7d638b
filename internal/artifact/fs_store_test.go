package artifact

import (
	"context"
	"errors"
	"testing"
)

func TestFSStorePutGetList(t *testing.T) {
	ctx := context.Background()
	s, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore: %v", err)
	}
	if err := s.Put(ctx, "sess-1", "input/agents_config.json", []byte(`{"agents":[]}`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put(ctx, "sess-1", "metadata.json", []byte(`{}`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	raw, err := s.Get(ctx, "sess-1", "input/agents_config.json")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(raw) != `{"agents":[]}` {
		t.Fatalf("unexpected content: %s", raw)
	}
	paths, err := s.List(ctx, "sess-1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(paths) != 2 || paths[0] != "input/agents_config.json" || paths[1] != "metadata.json" {
		t.Fatalf("unexpected paths: %v", paths)
	}
}

func TestFSStorePutReplacesAtomically(t *testing.T) {
	ctx := context.Background()
	s, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore: %v", err)
	}
	if err := s.Put(ctx, "sess-1", "metadata.json", []byte(`{"v":1}`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put(ctx, "sess-1", "metadata.json", []byte(`{"v":2}`)); err != nil {
		t.Fatalf("Put replace: %v", err)
	}
	raw, err := s.Get(ctx, "sess-1", "metadata.json")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(raw) != `{"v":2}` {
		t.Fatalf("unexpected content: %s", raw)
	}
	// No temp droppings should survive a successful rename.
	paths, err := s.List(ctx, "sess-1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(paths) != 1 {
		t.Fatalf("unexpected paths: %v", paths)
	}
}

func TestFSStoreGetMissing(t *testing.T) {
	ctx := context.Background()
	s, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore: %v", err)
	}
	if _, err := s.Get(ctx, "nope", "metadata.json"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.List(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFSStoreDeleteIdempotent(t *testing.T) {
	ctx := context.Background()
	s, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore: %v", err)
	}
	if err := s.Put(ctx, "sess-1", "metadata.json", []byte(`{}`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Delete(ctx, "sess-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, "sess-1"); err != nil {
		t.Fatalf("Delete twice: %v", err)
	}
	if _, err := s.Get(ctx, "sess-1", "metadata.json"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestFSStoreRejectsTraversalIDs(t *testing.T) {
	ctx := context.Background()
	s, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore: %v", err)
	}
	for _, id := range []string{"..", "a/b", `a\b`, ""} {
		if err := s.Put(ctx, id, "metadata.json", []byte(`{}`)); err == nil {
			t.Fatalf("expected rejection for id %q", id)
		}
	}
}

func TestFSStoreSessions(t *testing.T) {
	ctx := context.Background()
	s, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore: %v", err)
	}
	for _, id := range []string{"b", "a"} {
		if err := s.Put(ctx, id, "metadata.json", []byte(`{}`)); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	ids, err := s.Sessions(ctx)
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Fatalf("unexpected ids: %v", ids)
	}
}
