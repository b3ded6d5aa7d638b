package artifact

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"ctxoptimizer/internal/safeio"
)

// FSStore keeps one directory per session under a fixed root. Writes go to a
// temp file in the destination directory and are renamed into place, so a
// concurrent reader never observes a half-written artifact.
type FSStore struct {
	root string
	fs   *safeio.SafeFS
}

func NewFSStore(root string) (*FSStore, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("fs store: root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("fs store: create root: %w", err)
	}
	sfs, err := safeio.NewSafeFS(root)
	if err != nil {
		return nil, fmt.Errorf("fs store: %w", err)
	}
	return &FSStore{root: sfs.Root(), fs: sfs}, nil
}

// Root returns the absolute data root.
func (s *FSStore) Root() string { return s.root }

func (s *FSStore) Put(_ context.Context, sessionID, path string, content []byte) error {
	sessionID, path, err := validateKey(sessionID, path)
	if err != nil {
		return err
	}
	dst := filepath.Join(s.root, sessionID, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("fs store: mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".tmp-*")
	if err != nil {
		return fmt.Errorf("fs store: temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("fs store: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("fs store: close: %w", err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("fs store: rename: %w", err)
	}
	return nil
}

func (s *FSStore) Get(_ context.Context, sessionID, path string) ([]byte, error) {
	sessionID, path, err := validateKey(sessionID, path)
	if err != nil {
		return nil, err
	}
	raw, err := s.fs.SafeReadFile(filepath.Join(sessionID, filepath.FromSlash(path)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fs store: read: %w", err)
	}
	return raw, nil
}

func (s *FSStore) List(_ context.Context, sessionID string) ([]string, error) {
	sessionID, err := validateSessionID(sessionID)
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(s.root, sessionID)
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fs store: stat: %w", err)
	}
	paths := make([]string, 0, 8)
	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".tmp-") {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fs store: walk: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}

func (s *FSStore) Delete(_ context.Context, sessionID string) error {
	sessionID, err := validateSessionID(sessionID)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(filepath.Join(s.root, sessionID)); err != nil {
		return fmt.Errorf("fs store: remove: %w", err)
	}
	return nil
}

func (s *FSStore) Sessions(_ context.Context) ([]string, error) {
	entries, err := s.fs.SafeReadDir(".")
	if err != nil {
		return nil, fmt.Errorf("fs store: read root: %w", err)
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			ids = append(ids, e.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}
