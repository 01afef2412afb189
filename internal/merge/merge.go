// Package merge folds a root-to-leaf chain of records into one composite.
//
// Merging is shallow: each record overwrites the composite's top-level
// keys, and a nested mapping or sequence is replaced wholesale, never
// merged key by key. An override that sets {"garment": {"color": "red"}}
// drops every other key the base had under "garment".
package merge

import (
	"maps"
	"slices"

	"github.com/leapstack-labs/pagegen/pkg/core"
)

// Fold merges records in order; later records win on key collisions.
// The result is a new map and no input record is modified. Nested values
// are shared with the inputs.
func Fold(records []core.Record) core.Record {
	composite := make(core.Record)
	for _, r := range records {
		maps.Copy(composite, r)
	}
	return composite
}

// Provenance maps each composite key to the position in the chain
// (0 = root) of the record that supplied its value.
type Provenance map[string]int

// Keys returns the tracked keys in sorted order.
func (p Provenance) Keys() []string {
	return slices.Sorted(maps.Keys(p))
}

// Overridden returns the keys whose value came from a record other than
// the root, sorted.
func (p Provenance) Overridden() []string {
	var keys []string
	for _, k := range p.Keys() {
		if p[k] > 0 {
			keys = append(keys, k)
		}
	}
	return keys
}

// FoldWithProvenance merges like Fold and also records which record in
// the chain won each key.
func FoldWithProvenance(records []core.Record) (core.Record, Provenance) {
	composite := make(core.Record)
	prov := make(Provenance)
	for depth, r := range records {
		for k, v := range r {
			composite[k] = v
			prov[k] = depth
		}
	}
	return composite, prov
}
