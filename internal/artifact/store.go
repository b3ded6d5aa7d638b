package artifact

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Store persists the JSON artifacts belonging to a session. A session's
// artifacts form one bundle keyed by session id; no two sessions share paths.
type Store interface {
	// Put writes content at path inside the session bundle, replacing any
	// previous content atomically from a reader's perspective.
	Put(ctx context.Context, sessionID, path string, content []byte) error
	// Get returns the content at path, or ErrNotFound.
	Get(ctx context.Context, sessionID, path string) ([]byte, error)
	// List returns the relative paths present in the bundle, sorted.
	List(ctx context.Context, sessionID string) ([]string, error)
	// Delete removes the whole bundle. Deleting an absent bundle is not an error.
	Delete(ctx context.Context, sessionID string) error
	// Sessions returns the ids of all bundles in the store.
	Sessions(ctx context.Context) ([]string, error)
}

// ErrNotFound is returned when a bundle or artifact does not exist.
var ErrNotFound = errors.New("artifact not found")

func validateKey(sessionID, path string) (string, string, error) {
	sessionID = strings.TrimSpace(sessionID)
	path = strings.TrimSpace(path)
	if sessionID == "" {
		return "", "", fmt.Errorf("session_id is required")
	}
	if strings.ContainsAny(sessionID, "/\\") || sessionID == "." || sessionID == ".." {
		return "", "", fmt.Errorf("invalid session_id %q", sessionID)
	}
	if path == "" {
		return "", "", fmt.Errorf("path is required")
	}
	return sessionID, strings.TrimLeft(path, "/"), nil
}

func validateSessionID(sessionID string) (string, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return "", fmt.Errorf("session_id is required")
	}
	if strings.ContainsAny(sessionID, "/\\") || sessionID == "." || sessionID == ".." {
		return "", fmt.Errorf("invalid session_id %q", sessionID)
	}
	return sessionID, nil
}
