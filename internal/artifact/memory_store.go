package artifact

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is an in-memory Store used by tests and APP_ENV=test runs.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Put(_ context.Context, sessionID, path string, content []byte) error {
	sessionID, path, err := validateKey(sessionID, path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sessionID+"/"+path] = append([]byte(nil), content...)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, sessionID, path string) ([]byte, error) {
	sessionID, path, err := validateKey(sessionID, path)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.data[sessionID+"/"+path]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), raw...), nil
}

func (s *MemoryStore) List(_ context.Context, sessionID string) ([]string, error) {
	sessionID, err := validateSessionID(sessionID)
	if err != nil {
		return nil, err
	}
	prefix := sessionID + "/"
	s.mu.RLock()
	defer s.mu.RUnlock()
	paths := make([]string, 0, 8)
	for key := range s.data {
		if strings.HasPrefix(key, prefix) {
			paths = append(paths, strings.TrimPrefix(key, prefix))
		}
	}
	if len(paths) == 0 {
		return nil, ErrNotFound
	}
	sort.Strings(paths)
	return paths, nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	sessionID, err := validateSessionID(sessionID)
	if err != nil {
		return err
	}
	prefix := sessionID + "/"
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.data {
		if strings.HasPrefix(key, prefix) {
			delete(s.data, key)
		}
	}
	return nil
}

func (s *MemoryStore) Sessions(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	for key := range s.data {
		if i := strings.IndexByte(key, '/'); i > 0 {
			seen[key[:i]] = struct{}{}
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
