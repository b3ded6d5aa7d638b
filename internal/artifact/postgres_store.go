package artifact

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore keeps session bundles in a single table, one row per artifact.
type PostgresStore struct {
	db         *sql.DB
	schemaOnce sync.Once
	schemaErr  error
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *PostgresStore) ensureSchema() error {
	if s == nil || s.db == nil {
		return fmt.Errorf("db is nil")
	}
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.Exec(`
CREATE TABLE IF NOT EXISTS session_artifacts (
    id SERIAL PRIMARY KEY,
    session_id TEXT NOT NULL,
    path TEXT NOT NULL,
    content BYTEA NOT NULL DEFAULT ''::bytea,
    size BIGINT NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
    UNIQUE(session_id, path)
);
CREATE INDEX IF NOT EXISTS idx_session_artifacts_session_id ON session_artifacts(session_id);
`)
	})
	return s.schemaErr
}

func (s *PostgresStore) Put(ctx context.Context, sessionID, path string, content []byte) error {
	sessionID, path, err := validateKey(sessionID, path)
	if err != nil {
		return err
	}
	if err := s.ensureSchema(); err != nil {
		return err
	}
	if content == nil {
		content = []byte{}
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO session_artifacts (session_id, path, content, size, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (session_id, path)
DO UPDATE SET content=EXCLUDED.content, size=EXCLUDED.size, updated_at=EXCLUDED.updated_at
`, sessionID, path, content, int64(len(content)), time.Now())
	return err
}

func (s *PostgresStore) Get(ctx context.Context, sessionID, path string) ([]byte, error) {
	sessionID, path, err := validateKey(sessionID, path)
	if err != nil {
		return nil, err
	}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	var content []byte
	err = s.db.QueryRowContext(ctx,
		`SELECT content FROM session_artifacts WHERE session_id=$1 AND path=$2`,
		sessionID, path).Scan(&content)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return content, err
}

func (s *PostgresStore) List(ctx context.Context, sessionID string) ([]string, error) {
	sessionID, err := validateSessionID(sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT path FROM session_artifacts WHERE session_id=$1 ORDER BY path`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, ErrNotFound
	}
	return paths, nil
}

func (s *PostgresStore) Delete(ctx context.Context, sessionID string) error {
	sessionID, err := validateSessionID(sessionID)
	if err != nil {
		return err
	}
	if err := s.ensureSchema(); err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `DELETE FROM session_artifacts WHERE session_id=$1`, sessionID)
	return err
}

func (s *PostgresStore) Sessions(ctx context.Context) ([]string, error) {
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT session_id FROM session_artifacts ORDER BY session_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
