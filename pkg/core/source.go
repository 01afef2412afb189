package core

import "context"

// Source supplies the base record and the per-page overrides.
// Any network, filesystem or decoding failure is returned as a
// *CollaboratorError.
type Source interface {
	Fetch(ctx context.Context) (*Collection, error)
	// Describe returns a human readable origin, e.g. a URL or file path.
	Describe() string
}

// Page is one composite ready to be rendered.
type Page struct {
	Index int    `json:"index"` // position in the override list
	Name  string `json:"name"`  // output file name, relative to the output directory
	Data  Record `json:"data"`  // the composite record
}

// Renderer turns composites into final artifacts.
type Renderer interface {
	Render(ctx context.Context, pages []Page) error
}
