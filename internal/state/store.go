// Package state records generation run history in SQLite.
//
// Only run metadata is stored (collection, source, status, page count and
// timing). Composite records are never persisted.
package state

import (
	"github.com/leapstack-labs/pagegen/pkg/core"
)

// Type aliases so callers of this package need not import pkg/core for
// the common run types.
type (
	// Store is an alias for core.Store.
	Store = core.Store

	// RunStatus is an alias for core.RunStatus.
	RunStatus = core.RunStatus

	// Run is an alias for core.Run.
	Run = core.Run
)

// Re-export status constants from core.
const (
	RunStatusRunning   = core.RunStatusRunning
	RunStatusCompleted = core.RunStatusCompleted
	RunStatusFailed    = core.RunStatusFailed
)

var _ Store = (*SQLiteStore)(nil)
