package core

import "time"

// Store defines the interface for generation run history.
// Composites themselves are never persisted.
type Store interface {
	Open(path string) error
	Close() error
	Migrate() error

	CreateRun(collection, source string) (*Run, error)
	GetRun(id string) (*Run, error)
	CompleteRun(id string, status RunStatus, pageCount int, errMsg string) error
	ListRuns(limit int) ([]*Run, error)
}

// RunStatus represents the status of a generation run.
type RunStatus string

// Run status values.
const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run represents one generation run of a collection.
type Run struct {
	ID          string     `json:"id"`
	Collection  string     `json:"collection"`
	Source      string     `json:"source"`
	Status      RunStatus  `json:"status"`
	PageCount   int        `json:"page_count"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
}
