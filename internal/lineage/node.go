package lineage

import (
	"fmt"
	"sync/atomic"

	"github.com/leapstack-labs/pagegen/pkg/core"
)

// Node holds one record and a single-assignment ancestry slot.
//
// The slot starts empty and is filled at most once by Attach. Reads never
// block and are safe concurrently with an Attach on the same node.
type Node struct {
	record core.Record
	parent atomic.Pointer[Node]
}

// NewNode allocates an unattached node for record.
func NewNode(record core.Record) *Node {
	return &Node{record: record}
}

// Record returns the node's record. The record is shared, not copied.
func (n *Node) Record() core.Record {
	return n.record
}

// Parent returns the node's parent, if the ancestry slot has been set.
func (n *Node) Parent() (*Node, bool) {
	p := n.parent.Load()
	return p, p != nil
}

// Attach sets the node's parent. It fails with core.ErrAncestryAlreadySet
// if the slot is occupied, leaving the existing parent in place.
//
// Attaching two unattached nodes to each other from concurrent goroutines
// is a caller bug the cycle check cannot see.
func (n *Node) Attach(parent *Node) error {
	if parent == nil {
		return &AttachError{Err: core.ErrNilParent}
	}
	if n.parent.Load() != nil {
		return &AttachError{Err: core.ErrAncestryAlreadySet}
	}
	for a := parent; a != nil; a, _ = a.Parent() {
		if a == n {
			return &AttachError{Err: core.ErrAncestryCycle}
		}
	}
	if !n.parent.CompareAndSwap(nil, parent) {
		return &AttachError{Err: core.ErrAncestryAlreadySet}
	}
	return nil
}

// AttachError reports a rejected Attach. It always wraps one of the
// contract-violation sentinels from pkg/core.
type AttachError struct {
	Err error
}

func (e *AttachError) Error() string {
	return fmt.Sprintf("lineage: attach: %v", e.Err)
}

func (e *AttachError) Unwrap() error { return e.Err }
