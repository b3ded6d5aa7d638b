package session

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of a session.
type Status string

const (
	StatusCreated    Status = "created"
	StatusUploaded   Status = "uploaded"
	StatusAnalyzing  Status = "analyzing"
	StatusAnalyzed   Status = "analyzed"
	StatusOptimizing Status = "optimizing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// Known reports whether s is one of the defined statuses.
func (s Status) Known() bool {
	switch s {
	case StatusCreated, StatusUploaded, StatusAnalyzing, StatusAnalyzed,
		StatusOptimizing, StatusCompleted, StatusError:
		return true
	}
	return false
}

// InFlight reports whether s marks a run in progress.
func (s Status) InFlight() bool {
	return s == StatusAnalyzing || s == StatusOptimizing
}

// Terminal reports whether no further automatic transition will occur.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// Artifact paths inside a session bundle.
const (
	PathMetadata           = "metadata.json"
	PathAgentsConfig       = "input/agents_config.json"
	PathMessagesDataset    = "input/messages_dataset.json"
	PathEvaluationReport   = "analysis/evaluation_report.json"
	PathOptimizationResult = "analysis/optimization_result.json"
)

// Metadata is the small persisted record alongside a session's artifacts.
// Derived flags are intentionally absent here; they are recomputed from
// artifact presence on every read.
type Metadata struct {
	SessionID         string            `json:"session_id"`
	Status            Status            `json:"status"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
	OriginalFilenames map[string]string `json:"original_filenames,omitempty"`
	ErrorMessage      string            `json:"error_message,omitempty"`
}

// FileInfo summarizes one stored artifact for status responses.
type FileInfo struct {
	Filename  string `json:"filename"`
	SizeBytes int64  `json:"size_bytes"`
	SizeHuman string `json:"size_human"`
	IsJSON    bool   `json:"is_json"`
}

// Info is the read-only projection served to polling clients.
type Info struct {
	SessionID       string              `json:"session_id"`
	Status          Status              `json:"status"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
	HasFiles        bool                `json:"has_files"`
	HasAnalysis     bool                `json:"has_analysis"`
	HasOptimization bool                `json:"has_optimization"`
	Files           map[string]FileInfo `json:"files,omitempty"`
	ErrorMessage    string              `json:"error_message,omitempty"`
}

// Stats aggregates session counts for the dashboard endpoint.
type Stats struct {
	TotalSessions        int            `json:"total_sessions"`
	StatusCounts         map[string]int `json:"status_counts"`
	SuccessRate          float64        `json:"success_rate"`
	HasAnalysisCount     int            `json:"has_analysis_count"`
	HasOptimizationCount int            `json:"has_optimization_count"`
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
