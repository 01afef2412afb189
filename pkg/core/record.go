package core

// Record is a semi-structured value: string keys mapped to scalars,
// sequences ([]any) or nested mappings (map[string]any).
//
// Records are snapshots. Nothing in the cascade engine writes into a
// Record it did not allocate itself; combining records always produces a
// new map.
type Record = map[string]any

// Collection is the document supplied by a data source: one base record
// shared by every page plus one override record per page.
type Collection struct {
	Data  Record   `json:"data" yaml:"data"`
	Pages []Record `json:"pages" yaml:"pages"`
}
