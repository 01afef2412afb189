package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/leapstack-labs/pagegen/internal/forest"
	"github.com/leapstack-labs/pagegen/internal/source"
)

// Output formats accepted by --output.
var outputFormats = []string{"auto", "text", "json"}

// Collection is a fully resolved collection: inherited values filled in
// and paths made absolute.
type Collection struct {
	Name       string
	Source     source.Config
	Template   string
	OutputDir  string
	OutputName string
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := forest.ParseStrategy(c.Strategy); err != nil {
		return err
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	if c.OutputFormat != "" && !slices.Contains(outputFormats, c.OutputFormat) {
		return fmt.Errorf("unknown output format %q (expected one of %v)", c.OutputFormat, outputFormats)
	}
	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		return fmt.Errorf("serve.port out of range: %d", c.Serve.Port)
	}

	collections, err := c.ResolveCollections()
	if err != nil {
		return err
	}
	for _, coll := range collections {
		if err := coll.Source.Validate(); err != nil {
			return fmt.Errorf("collection %q: %w", coll.Name, err)
		}
	}
	return nil
}

// ValidateServe checks that every collection writes below OutputDir, the
// only directory the preview server exposes.
func (c *Config) ValidateServe() error {
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir is required to serve pages")
	}
	collections, err := c.ResolveCollections()
	if err != nil {
		return err
	}
	root := filepath.Clean(c.OutputDir)
	for _, coll := range collections {
		rel, err := filepath.Rel(root, filepath.Clean(coll.OutputDir))
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return fmt.Errorf("collection %q: output_dir %s is outside the served directory %s", coll.Name, coll.OutputDir, root)
		}
	}
	return nil
}

// ResolveCollections returns the configured collections sorted by name.
// Without a collections map the top-level source forms a single
// collection named DefaultCollection.
func (c *Config) ResolveCollections() ([]Collection, error) {
	if len(c.Collections) == 0 {
		return []Collection{{
			Name:       DefaultCollection,
			Source:     c.sourceConfig(c.Source),
			Template:   c.Template,
			OutputDir:  c.OutputDir,
			OutputName: c.OutputName,
		}}, nil
	}

	names := make([]string, 0, len(c.Collections))
	for name := range c.Collections {
		names = append(names, name)
	}
	slices.Sort(names)

	out := make([]Collection, 0, len(names))
	for _, name := range names {
		if name == "" {
			return nil, fmt.Errorf("collection name must not be empty")
		}
		cc := c.Collections[name]
		coll := Collection{
			Name:       name,
			Source:     c.sourceConfig(cc.Source),
			Template:   cc.Template,
			OutputDir:  cc.OutputDir,
			OutputName: cc.OutputName,
		}
		if coll.Template == "" {
			coll.Template = c.Template
		}
		if coll.OutputDir == "" && c.OutputDir != "" {
			coll.OutputDir = filepath.Join(c.OutputDir, name)
		}
		if coll.OutputName == "" {
			coll.OutputName = c.OutputName
		}
		out = append(out, coll)
	}
	return out, nil
}

func (c *Config) sourceConfig(s SourceConfig) source.Config {
	timeout := s.Timeout
	if timeout == 0 {
		timeout = c.Source.Timeout
	}
	return source.Config{URL: s.URL, File: s.File, Timeout: timeout}
}
