package lineage

import (
	"iter"
	"slices"

	"github.com/leapstack-labs/pagegen/pkg/core"
)

// Chain is a copy-on-branch lineage: every Branch clones the record slice
// and appends to the copy. Records are still shared by reference.
type Chain struct {
	records []core.Record
}

// NewChain returns a chain holding only root.
func NewChain(root core.Record) Chain {
	return Chain{records: []core.Record{root}}
}

// Branch returns a new chain extended by record. c is unchanged.
func (c Chain) Branch(record core.Record) Chain {
	next := make([]core.Record, len(c.records), len(c.records)+1)
	copy(next, c.records)
	return Chain{records: append(next, record)}
}

// Path yields records leaf first.
func (c Chain) Path() iter.Seq[core.Record] {
	return func(yield func(core.Record) bool) {
		for i := len(c.records) - 1; i >= 0; i-- {
			if !yield(c.records[i]) {
				return
			}
		}
	}
}

// Records returns a copy of the chain, root first.
func (c Chain) Records() []core.Record {
	return slices.Clone(c.records)
}

// Depth returns the number of records in the chain.
func (c Chain) Depth() int {
	return len(c.records)
}
