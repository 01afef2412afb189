// Package core defines the shared language of the pagegen system.
//
// This package contains:
//   - Domain values (Record, Collection, Run)
//   - Service interfaces (Source, Renderer, Store)
//   - Error taxonomy (contract violations and collaborator failures)
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
