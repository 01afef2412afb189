package core

import (
	"errors"
	"fmt"
)

// Contract violations. These indicate a bug in the caller, never a
// transient fault.
var (
	// ErrAncestryAlreadySet is returned when attaching a node whose
	// ancestry slot is already occupied.
	ErrAncestryAlreadySet = errors.New("ancestry already set")

	// ErrNilParent is returned when attaching a node to a nil parent.
	ErrNilParent = errors.New("parent node is nil")

	// ErrAncestryCycle is returned when an attach would make a node its
	// own ancestor.
	ErrAncestryCycle = errors.New("ancestry cycle")

	// ErrCollectionAlreadyRegistered is returned when a collection name
	// is registered twice.
	ErrCollectionAlreadyRegistered = errors.New("collection already registered")

	// ErrCollectionNotFound is returned when a named collection does not exist.
	ErrCollectionNotFound = errors.New("collection not found")
)

// ErrorKind tags a collaborator failure with the stage that produced it.
type ErrorKind string

// Collaborator error kinds.
const (
	KindAPI      ErrorKind = "api"
	KindDecode   ErrorKind = "decode"
	KindTemplate ErrorKind = "template"
	KindIO       ErrorKind = "io"
)

// CollaboratorError wraps a failure from the fetch or render path.
// The cascade engine forwards these unchanged and never retries.
type CollaboratorError struct {
	Kind ErrorKind
	Op   string // what was being attempted, e.g. "GET https://..."
	Err  error
}

// NewCollaboratorError creates a tagged collaborator error.
func NewCollaboratorError(kind ErrorKind, op string, err error) *CollaboratorError {
	return &CollaboratorError{Kind: kind, Op: op, Err: err}
}

func (e *CollaboratorError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

// IsKind reports whether err wraps a CollaboratorError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ce *CollaboratorError
	return errors.As(err, &ce) && ce.Kind == kind
}
