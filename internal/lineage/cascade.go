package lineage

import (
	"errors"
	"iter"
	"slices"

	"github.com/leapstack-labs/pagegen/pkg/core"
)

// ErrEmptyCascade is returned when branching the zero Cascade.
var ErrEmptyCascade = errors.New("lineage: cascade has no leaf")

// Lineage is an ordered chain of records from root to leaf.
type Lineage interface {
	// Path yields records leaf first. The sequence is finite and can be
	// ranged over any number of times.
	Path() iter.Seq[core.Record]
	// Records returns the chain root first, the order merging needs.
	Records() []core.Record
	// Depth is the number of records in the chain.
	Depth() int
}

var (
	_ Lineage = Cascade{}
	_ Lineage = Chain{}
)

// Cascade is a handle on one leaf node. Copies of a Cascade refer to the
// same leaf.
type Cascade struct {
	leaf *Node
}

// New returns a cascade whose only node is a fresh root for record.
func New(record core.Record) Cascade {
	return Cascade{leaf: NewNode(record)}
}

// Leaf returns the cascade's leaf node, nil for the zero Cascade.
func (c Cascade) Leaf() *Node {
	return c.leaf
}

// Branch creates a new leaf for record whose parent is c's leaf.
// c itself is unchanged, so the same cascade can be branched repeatedly
// to produce independent siblings.
func (c Cascade) Branch(record core.Record) (Cascade, error) {
	if c.leaf == nil {
		return Cascade{}, ErrEmptyCascade
	}
	child := NewNode(record)
	if err := child.Attach(c.leaf); err != nil {
		return Cascade{}, err
	}
	return Cascade{leaf: child}, nil
}

// Path walks ancestry links from the leaf to the root.
func (c Cascade) Path() iter.Seq[core.Record] {
	return func(yield func(core.Record) bool) {
		for n := c.leaf; n != nil; n, _ = n.Parent() {
			if !yield(n.record) {
				return
			}
		}
	}
}

// Records returns the chain root first.
func (c Cascade) Records() []core.Record {
	records := slices.Collect(c.Path())
	slices.Reverse(records)
	return records
}

// Depth returns the number of nodes from the leaf to the root.
func (c Cascade) Depth() int {
	depth := 0
	for n := c.leaf; n != nil; n, _ = n.Parent() {
		depth++
	}
	return depth
}
