// Package lineage implements the shared-ancestry chains that pagegen folds
// into composite records.
//
// A Node owns one record and an ancestry slot that can be filled exactly
// once. A Cascade is a handle on a leaf node; branching a cascade creates
// a new leaf whose ancestry is the existing chain, so any number of
// siblings share one prefix without copying it. Nodes never reference
// their children: a node lives as long as some cascade still reaches it.
//
// Walking a cascade goes leaf to root, because only backward links exist:
//
//	root := lineage.New(base)
//	page, _ := root.Branch(override)
//	for rec := range page.Path() {
//		// override first, then base
//	}
//
// Chain is the copy-on-branch alternative: a flat slice cloned on every
// branch. It satisfies the same Lineage interface and is cheaper to reason
// about when every chain is short.
package lineage
