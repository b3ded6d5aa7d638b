package session

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"ctxoptimizer/internal/artifact"
	"ctxoptimizer/internal/jsonutil"
)

// Manager owns the session lifecycle on top of an artifact.Store. All status
// mutations go through UpdateStatus; derived flags are recomputed from the
// store on every read.
type Manager struct {
	store artifact.Store
	locks *keyedLocks
}

func NewManager(store artifact.Store) *Manager {
	return &Manager{store: store, locks: newKeyedLocks()}
}

// Lock serializes orchestrator runs on one session. The returned release
// function must be called on every exit path.
func (m *Manager) Lock(sessionID string) func() {
	return m.locks.acquire(sessionID)
}

// Create allocates a fresh session in status created.
func (m *Manager) Create(ctx context.Context) (Info, error) {
	now := time.Now().UTC()
	meta := Metadata{
		SessionID: uuid.NewString(),
		Status:    StatusCreated,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.writeMetadata(ctx, meta); err != nil {
		return Info{}, err
	}
	return m.infoFromMetadata(ctx, meta), nil
}

// SaveInputFiles validates both payloads as JSON with a loosely expected
// top-level shape, persists them, and moves the session to uploaded. On a
// validation failure nothing is written and the session stays created.
func (m *Manager) SaveInputFiles(ctx context.Context, sessionID string, agentsConfig, messagesDataset []byte, originalNames map[string]string) error {
	meta, err := m.readMetadata(ctx, sessionID)
	if err != nil {
		return err
	}
	if !json.Valid(agentsConfig) {
		return &InvalidInputError{File: "agents_config", Reason: "not valid JSON"}
	}
	if !json.Valid(messagesDataset) {
		return &InvalidInputError{File: "messages_dataset", Reason: "not valid JSON"}
	}
	if err := checkTopLevelShape(agentsConfig); err != nil {
		return &InvalidInputError{File: "agents_config", Reason: err.Error()}
	}
	if err := checkTopLevelShape(messagesDataset); err != nil {
		return &InvalidInputError{File: "messages_dataset", Reason: err.Error()}
	}
	if err := m.store.Put(ctx, sessionID, PathAgentsConfig, agentsConfig); err != nil {
		return &StorageError{Op: "save agents_config", Err: err}
	}
	if err := m.store.Put(ctx, sessionID, PathMessagesDataset, messagesDataset); err != nil {
		return &StorageError{Op: "save messages_dataset", Err: err}
	}
	meta.Status = StatusUploaded
	meta.UpdatedAt = time.Now().UTC()
	meta.ErrorMessage = ""
	if originalNames != nil {
		meta.OriginalFilenames = originalNames
	}
	return m.writeMetadata(ctx, meta)
}

// Info returns a snapshot for one session, recomputing derived flags from
// artifact presence rather than trusting cached metadata.
func (m *Manager) Info(ctx context.Context, sessionID string) (Info, error) {
	meta, err := m.readMetadata(ctx, sessionID)
	if err != nil {
		return Info{}, err
	}
	return m.infoFromMetadata(ctx, meta), nil
}

// List returns snapshots ordered most-recently-updated first, skipping the
// first offset entries. limit <= 0 means no limit.
func (m *Manager) List(ctx context.Context, limit, offset int) ([]Info, error) {
	ids, err := m.store.Sessions(ctx)
	if err != nil {
		return nil, &StorageError{Op: "list sessions", Err: err}
	}
	infos := make([]Info, 0, len(ids))
	for _, id := range ids {
		meta, err := m.readMetadata(ctx, id)
		if err != nil {
			// Bundles without readable metadata are skipped, not fatal.
			continue
		}
		infos = append(infos, m.infoFromMetadata(ctx, meta))
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].UpdatedAt.After(infos[j].UpdatedAt)
	})
	if offset > 0 {
		if offset >= len(infos) {
			return []Info{}, nil
		}
		infos = infos[offset:]
	}
	if limit > 0 && len(infos) > limit {
		infos = infos[:limit]
	}
	return infos, nil
}

// Delete removes the session bundle. Deleting an absent session is not an
// error.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	if err := m.store.Delete(ctx, sessionID); err != nil {
		return &StorageError{Op: "delete session", Err: err}
	}
	m.locks.forget(sessionID)
	return nil
}

// UpdateStatus is the single mutation point for the state machine. A
// non-empty errorMessage forces status error.
func (m *Manager) UpdateStatus(ctx context.Context, sessionID string, status Status, errorMessage string) error {
	meta, err := m.readMetadata(ctx, sessionID)
	if err != nil {
		return err
	}
	if !status.Known() {
		return &StorageError{Op: "update status", Err: errors.New("unknown status " + string(status))}
	}
	meta.Status = status
	meta.UpdatedAt = time.Now().UTC()
	meta.ErrorMessage = errorMessage
	if errorMessage != "" {
		meta.Status = StatusError
	}
	return m.writeMetadata(ctx, meta)
}

// LoadInputs returns the two stored input documents.
func (m *Manager) LoadInputs(ctx context.Context, sessionID string) (agentsConfig, messagesDataset []byte, err error) {
	if _, err := m.readMetadata(ctx, sessionID); err != nil {
		return nil, nil, err
	}
	agentsConfig, err = m.store.Get(ctx, sessionID, PathAgentsConfig)
	if err != nil {
		if errors.Is(err, artifact.ErrNotFound) {
			return nil, nil, &InvalidInputError{File: "agents_config", Reason: "not uploaded"}
		}
		return nil, nil, &StorageError{Op: "load agents_config", Err: err}
	}
	messagesDataset, err = m.store.Get(ctx, sessionID, PathMessagesDataset)
	if err != nil {
		if errors.Is(err, artifact.ErrNotFound) {
			return nil, nil, &InvalidInputError{File: "messages_dataset", Reason: "not uploaded"}
		}
		return nil, nil, &StorageError{Op: "load messages_dataset", Err: err}
	}
	return agentsConfig, messagesDataset, nil
}

// SaveEvaluationReport persists the full report in one write.
func (m *Manager) SaveEvaluationReport(ctx context.Context, sessionID string, report any) error {
	return m.saveArtifact(ctx, sessionID, PathEvaluationReport, report)
}

// SaveOptimizationResult persists the full result in one write.
func (m *Manager) SaveOptimizationResult(ctx context.Context, sessionID string, result any) error {
	return m.saveArtifact(ctx, sessionID, PathOptimizationResult, result)
}

// EvaluationReport returns the persisted report, or ErrNotFound.
func (m *Manager) EvaluationReport(ctx context.Context, sessionID string) (json.RawMessage, error) {
	return m.readArtifact(ctx, sessionID, PathEvaluationReport)
}

// OptimizationResult returns the persisted result, or ErrNotFound.
func (m *Manager) OptimizationResult(ctx context.Context, sessionID string) (json.RawMessage, error) {
	return m.readArtifact(ctx, sessionID, PathOptimizationResult)
}

// Stats aggregates counts across all sessions.
func (m *Manager) Stats(ctx context.Context) (Stats, error) {
	infos, err := m.List(ctx, 0, 0)
	if err != nil {
		return Stats{}, err
	}
	st := Stats{
		TotalSessions: len(infos),
		StatusCounts:  make(map[string]int),
	}
	for _, info := range infos {
		st.StatusCounts[string(info.Status)]++
		if info.HasAnalysis {
			st.HasAnalysisCount++
		}
		if info.HasOptimization {
			st.HasOptimizationCount++
		}
	}
	if st.TotalSessions > 0 {
		st.SuccessRate = float64(st.StatusCounts[string(StatusCompleted)]) / float64(st.TotalSessions) * 100
	}
	return st, nil
}

func (m *Manager) saveArtifact(ctx context.Context, sessionID, path string, v any) error {
	if _, err := m.readMetadata(ctx, sessionID); err != nil {
		return err
	}
	raw, err := jsonutil.MarshalIndentNoEscape(v)
	if err != nil {
		return &StorageError{Op: "encode " + path, Err: err}
	}
	if err := m.store.Put(ctx, sessionID, path, raw); err != nil {
		return &StorageError{Op: "save " + path, Err: err}
	}
	return nil
}

func (m *Manager) readArtifact(ctx context.Context, sessionID, path string) (json.RawMessage, error) {
	if _, err := m.readMetadata(ctx, sessionID); err != nil {
		return nil, err
	}
	raw, err := m.store.Get(ctx, sessionID, path)
	if err != nil {
		if errors.Is(err, artifact.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, &StorageError{Op: "load " + path, Err: err}
	}
	return raw, nil
}

func (m *Manager) readMetadata(ctx context.Context, sessionID string) (Metadata, error) {
	raw, err := m.store.Get(ctx, sessionID, PathMetadata)
	if err != nil {
		if errors.Is(err, artifact.ErrNotFound) {
			return Metadata{}, ErrNotFound
		}
		return Metadata{}, &StorageError{Op: "load metadata", Err: err}
	}
	var meta Metadata
	if err := jsonutil.UnmarshalFlex(raw, &meta); err != nil {
		return Metadata{}, &StorageError{Op: "decode metadata", Err: err}
	}
	return meta, nil
}

func (m *Manager) writeMetadata(ctx context.Context, meta Metadata) error {
	raw, err := jsonutil.MarshalIndentNoEscape(meta)
	if err != nil {
		return &StorageError{Op: "encode metadata", Err: err}
	}
	if err := m.store.Put(ctx, meta.SessionID, PathMetadata, raw); err != nil {
		return &StorageError{Op: "save metadata", Err: err}
	}
	return nil
}

func (m *Manager) infoFromMetadata(ctx context.Context, meta Metadata) Info {
	info := Info{
		SessionID:    meta.SessionID,
		Status:       meta.Status,
		CreatedAt:    meta.CreatedAt,
		UpdatedAt:    meta.UpdatedAt,
		ErrorMessage: meta.ErrorMessage,
		Files:        make(map[string]FileInfo),
	}
	agents := m.fileInfo(ctx, meta, "agents_config", PathAgentsConfig)
	messages := m.fileInfo(ctx, meta, "messages_dataset", PathMessagesDataset)
	info.HasFiles = agents != nil && messages != nil
	if agents != nil {
		info.Files["agents_config"] = *agents
	}
	if messages != nil {
		info.Files["messages_dataset"] = *messages
	}
	info.HasAnalysis = m.artifactParses(ctx, meta.SessionID, PathEvaluationReport)
	info.HasOptimization = m.artifactParses(ctx, meta.SessionID, PathOptimizationResult)
	return info
}

func (m *Manager) fileInfo(ctx context.Context, meta Metadata, key, path string) *FileInfo {
	raw, err := m.store.Get(ctx, meta.SessionID, path)
	if err != nil {
		return nil
	}
	name := path
	if orig, ok := meta.OriginalFilenames[key]; ok && orig != "" {
		name = orig
	}
	return &FileInfo{
		Filename:  name,
		SizeBytes: int64(len(raw)),
		SizeHuman: humanSize(int64(len(raw))),
		IsJSON:    json.Valid(raw),
	}
}

func (m *Manager) artifactParses(ctx context.Context, sessionID, path string) bool {
	raw, err := m.store.Get(ctx, sessionID, path)
	if err != nil {
		return false
	}
	return json.Valid(raw)
}

// checkTopLevelShape rejects scalars; documents must be an object or array.
// Deep semantic validation is intentionally not performed here.
func checkTopLevelShape(raw []byte) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	switch v.(type) {
	case map[string]any, []any:
		return nil
	default:
		return errors.New("expected a JSON object or array at the top level")
	}
}
