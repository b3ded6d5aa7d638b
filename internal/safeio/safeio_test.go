package safeio

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSafeFSAllowsAbsoluteUnderRoot(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a.json")
	if err := os.WriteFile(p, []byte(`{}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	fs, err := NewSafeFS(dir)
	if err != nil {
		t.Fatalf("NewSafeFS: %v", err)
	}
	if _, err := fs.SafeReadFile(p); err != nil {
		t.Fatalf("SafeReadFile absolute: %v", err)
	}
	if _, err := fs.SafeReadFile("a.json"); err != nil {
		t.Fatalf("SafeReadFile relative: %v", err)
	}
}

func TestSafeFSRejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewSafeFS(dir)
	if err != nil {
		t.Fatalf("NewSafeFS: %v", err)
	}
	if _, err := fs.SafeReadFile("../outside.json"); err == nil {
		t.Fatal("expected traversal to be rejected")
	}
	if _, err := fs.SafeReadDir(".."); err == nil {
		t.Fatal("expected parent dir listing to be rejected")
	}
}

func TestSafeFSRejectsSymlinkEscape(t *testing.T) {
	outside := t.TempDir()
	secret := filepath.Join(outside, "secret.json")
	if err := os.WriteFile(secret, []byte(`{}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	dir := t.TempDir()
	link := filepath.Join(dir, "link.json")
	if err := os.Symlink(secret, link); err != nil {
		t.Skipf("symlink not supported: %v", err)
	}
	fs, err := NewSafeFS(dir)
	if err != nil {
		t.Fatalf("NewSafeFS: %v", err)
	}
	if _, err := fs.SafeReadFile("link.json"); err == nil {
		t.Fatal("expected symlink escape to be rejected")
	}
}
