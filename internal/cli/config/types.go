// Package config provides configuration management for the pagegen CLI.
//
// Values are layered with koanf: built-in defaults, then pagegen.yaml,
// then PAGEGEN_* environment variables, then explicitly set flags.
package config

import (
	"time"

	"github.com/leapstack-labs/pagegen/internal/source"
)

// SourceConfig locates the document holding the base record and page
// overrides. Exactly one of URL and File is set.
type SourceConfig struct {
	URL     string        `koanf:"url"`
	File    string        `koanf:"file"`
	Timeout time.Duration `koanf:"timeout"`
}

// CollectionConfig describes one named collection. Empty fields inherit
// the top-level values.
type CollectionConfig struct {
	Source     SourceConfig `koanf:"source"`
	Template   string       `koanf:"template"`
	OutputDir  string       `koanf:"output_dir"`
	OutputName string       `koanf:"output_name"`
}

// ServeConfig holds settings for the preview server.
type ServeConfig struct {
	Port  int  `koanf:"port"`
	Watch bool `koanf:"watch"`
}

// Config holds all CLI configuration options.
type Config struct {
	Source       SourceConfig                `koanf:"source"`
	TemplatesDir string                      `koanf:"templates_dir"`
	Template     string                      `koanf:"template"`
	OutputDir    string                      `koanf:"output_dir"`
	OutputName   string                      `koanf:"output_name"` // Starlark expression
	StatePath    string                      `koanf:"state_path"`
	Strategy     string                      `koanf:"strategy"`
	Workers      int                         `koanf:"workers"`
	Verbose      bool                        `koanf:"verbose"`
	OutputFormat string                      `koanf:"output"`
	Collections  map[string]CollectionConfig `koanf:"collections"`
	Serve        ServeConfig                 `koanf:"serve"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultTemplatesDir = "templates"
	DefaultTemplate     = "page.tmpl"
	DefaultOutputDir    = "public"
	DefaultStateFile    = ".pagegen/state.db"
	DefaultStrategy     = "shared"
	DefaultWorkers      = 1
	DefaultOutput       = "auto" // TTY=text, otherwise json
	DefaultTimeout      = source.DefaultTimeout
	DefaultServePort    = 8080

	// DefaultCollection names the collection built from the top-level
	// source when no collections map is configured.
	DefaultCollection = "default"
)
