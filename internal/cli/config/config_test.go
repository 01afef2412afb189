package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
source:
  url: https://example.com/brothers.json
  timeout: 5s
templates_dir: tmpl
output_dir: site
output_name: 'slug(page["name"]) + ".html"'
strategy: flat
workers: 4
collections:
  brothers:
    source:
      file: data/brothers.yaml
  sisters:
    source:
      url: https://example.com/sisters.json
    template: sister.tmpl
    output_dir: out/sisters
`

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "pagegen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("source-url", "", "")
	fs.String("source-file", "", "")
	fs.Duration("source-timeout", 0, "")
	fs.String("templates-dir", "", "")
	fs.String("output-dir", "", "")
	fs.String("state", "", "")
	fs.String("strategy", "", "")
	fs.Int("workers", 0, "")
	fs.Int("port", 0, "")
	fs.BoolP("verbose", "v", false, "")
	fs.StringP("output", "o", "", "")
	return fs
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	cwd, err := os.Getwd()
	require.NoError(t, err)

	assert.Equal(t, cwd, cfg.ProjectRoot)
	assert.Equal(t, filepath.Join(cwd, DefaultTemplatesDir), cfg.TemplatesDir)
	assert.Equal(t, filepath.Join(cwd, DefaultOutputDir), cfg.OutputDir)
	assert.Equal(t, filepath.Join(cwd, DefaultStateFile), cfg.StatePath)
	assert.Equal(t, DefaultTemplate, cfg.Template)
	assert.Equal(t, DefaultStrategy, cfg.Strategy)
	assert.Equal(t, DefaultWorkers, cfg.Workers)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.Equal(t, DefaultTimeout, cfg.Source.Timeout)
	assert.Equal(t, DefaultServePort, cfg.Serve.Port)
	assert.Empty(t, GetConfigFileUsed())
	assert.Same(t, cfg, GetCurrentConfig())
}

func TestLoadConfig_File(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	path := writeConfig(t, dir, sampleConfig)

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, path, GetConfigFileUsed())
	assert.Equal(t, dir, cfg.ProjectRoot)
	assert.Equal(t, "https://example.com/brothers.json", cfg.Source.URL)
	assert.Equal(t, 5*time.Second, cfg.Source.Timeout)
	assert.Equal(t, filepath.Join(dir, "tmpl"), cfg.TemplatesDir)
	assert.Equal(t, filepath.Join(dir, "site"), cfg.OutputDir)
	assert.Equal(t, "flat", cfg.Strategy)
	assert.Equal(t, 4, cfg.Workers)
	require.Len(t, cfg.Collections, 2)
	assert.Equal(t, filepath.Join(dir, "data", "brothers.yaml"), cfg.Collections["brothers"].Source.File)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_SearchUpward(t *testing.T) {
	ResetConfig()
	root := t.TempDir()
	writeConfig(t, root, "output_dir: dist\n")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o750))
	t.Chdir(nested)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	// t.TempDir may sit behind a symlink; compare resolved paths.
	wantRoot, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	gotRoot, err := filepath.EvalSymlinks(cfg.ProjectRoot)
	require.NoError(t, err)
	assert.Equal(t, wantRoot, gotRoot)
	assert.Equal(t, filepath.Join(cfg.ProjectRoot, "dist"), cfg.OutputDir)
}

func TestLoadConfig_Precedence(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		args        []string
		wantWorkers int
		wantURL     string
		wantTimeout time.Duration
	}{
		{
			name:        "file only",
			wantWorkers: 4,
			wantURL:     "https://example.com/brothers.json",
			wantTimeout: 5 * time.Second,
		},
		{
			name:        "env over file",
			env:         map[string]string{"PAGEGEN_WORKERS": "8", "PAGEGEN_SOURCE__URL": "https://env.example.com", "PAGEGEN_SOURCE__TIMEOUT": "1m"},
			wantWorkers: 8,
			wantURL:     "https://env.example.com",
			wantTimeout: time.Minute,
		},
		{
			name:        "flag over env",
			env:         map[string]string{"PAGEGEN_WORKERS": "8"},
			args:        []string{"--workers", "2", "--source-url", "https://flag.example.com", "--source-timeout", "2s"},
			wantWorkers: 2,
			wantURL:     "https://flag.example.com",
			wantTimeout: 2 * time.Second,
		},
		{
			name:        "unset flag keeps env",
			env:         map[string]string{"PAGEGEN_WORKERS": "8"},
			args:        []string{"--verbose"},
			wantWorkers: 8,
			wantURL:     "https://example.com/brothers.json",
			wantTimeout: 5 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ResetConfig()
			path := writeConfig(t, t.TempDir(), sampleConfig)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			fs := newFlagSet()
			require.NoError(t, fs.Parse(tt.args))

			cfg, err := LoadConfig(path, fs)
			require.NoError(t, err)

			assert.Equal(t, tt.wantWorkers, cfg.Workers)
			assert.Equal(t, tt.wantURL, cfg.Source.URL)
			assert.Equal(t, tt.wantTimeout, cfg.Source.Timeout)
		})
	}
}

func TestLoadConfig_FlagPathsRelativeToCwd(t *testing.T) {
	ResetConfig()
	project := t.TempDir()
	path := writeConfig(t, project, "output_dir: site\n")
	work := t.TempDir()
	t.Chdir(work)

	fs := newFlagSet()
	require.NoError(t, fs.Parse([]string{"--state", "run.db", "--source-file", "data.json"}))

	cfg, err := LoadConfig(path, fs)
	require.NoError(t, err)

	cwd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cwd, "run.db"), cfg.StatePath)
	assert.Equal(t, filepath.Join(cwd, "data.json"), cfg.Source.File)
	assert.Equal(t, filepath.Join(project, "site"), cfg.OutputDir)
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, t.TempDir(), "workers: [1, 2\n")

	_, err := LoadConfig(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestConfig_ValidateServe(t *testing.T) {
	root := filepath.Join(t.TempDir(), "public")

	tests := []struct {
		name        string
		collections map[string]CollectionConfig
		errSubstr   string
	}{
		{name: "single default collection"},
		{
			name: "inherited output dirs",
			collections: map[string]CollectionConfig{
				"brothers": {Source: SourceConfig{File: "b.json"}},
				"sisters":  {Source: SourceConfig{File: "s.json"}},
			},
		},
		{
			name: "explicit dir below root",
			collections: map[string]CollectionConfig{
				"brothers": {Source: SourceConfig{File: "b.json"}, OutputDir: filepath.Join(root, "family", "brothers")},
			},
		},
		{
			name: "explicit dir outside root",
			collections: map[string]CollectionConfig{
				"brothers": {Source: SourceConfig{File: "b.json"}},
				"sisters":  {Source: SourceConfig{File: "s.json"}, OutputDir: filepath.Join(filepath.Dir(root), "elsewhere")},
			},
			errSubstr: `collection "sisters"`,
		},
		{
			name: "sibling with shared prefix",
			collections: map[string]CollectionConfig{
				"brothers": {Source: SourceConfig{File: "b.json"}, OutputDir: root + "-old"},
			},
			errSubstr: "outside the served directory",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Source: SourceConfig{File: "data.json"}, OutputDir: root, Collections: tt.collections}
			err := cfg.ValidateServe()
			if tt.errSubstr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}

	assert.Error(t, (&Config{Source: SourceConfig{File: "data.json"}}).ValidateServe())
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Source:   SourceConfig{URL: "https://example.com"},
			Strategy: "shared",
			Workers:  1,
		}
	}

	tests := []struct {
		name      string
		mutate    func(c *Config)
		errSubstr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "unknown strategy", mutate: func(c *Config) { c.Strategy = "deep" }, errSubstr: "strategy"},
		{name: "negative workers", mutate: func(c *Config) { c.Workers = -1 }, errSubstr: "workers"},
		{name: "bad output", mutate: func(c *Config) { c.OutputFormat = "xml" }, errSubstr: "output format"},
		{name: "bad port", mutate: func(c *Config) { c.Serve.Port = 70000 }, errSubstr: "serve.port"},
		{name: "no source", mutate: func(c *Config) { c.Source = SourceConfig{} }, errSubstr: `collection "default"`},
		{
			name:      "both sources",
			mutate:    func(c *Config) { c.Source.File = "data.json" },
			errSubstr: `collection "default"`,
		},
		{
			name: "collection without source",
			mutate: func(c *Config) {
				c.Collections = map[string]CollectionConfig{"empty": {}}
			},
			errSubstr: `collection "empty"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.errSubstr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestConfig_ResolveCollections(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	cfg, err := LoadConfig(writeConfig(t, dir, sampleConfig), nil)
	require.NoError(t, err)

	collections, err := cfg.ResolveCollections()
	require.NoError(t, err)
	require.Len(t, collections, 2)

	brothers := collections[0]
	assert.Equal(t, "brothers", brothers.Name)
	assert.Equal(t, DefaultTemplate, brothers.Template)
	assert.Equal(t, filepath.Join(dir, "site", "brothers"), brothers.OutputDir)
	assert.Equal(t, `slug(page["name"]) + ".html"`, brothers.OutputName)
	assert.Equal(t, 5*time.Second, brothers.Source.Timeout, "timeout inherited from top level")

	sisters := collections[1]
	assert.Equal(t, "sisters", sisters.Name)
	assert.Equal(t, "sister.tmpl", sisters.Template)
	assert.Equal(t, filepath.Join(dir, "out", "sisters"), sisters.OutputDir)
	assert.Equal(t, "https://example.com/sisters.json", sisters.Source.URL)
}

func TestConfig_ResolveCollectionsDefault(t *testing.T) {
	cfg := &Config{Source: SourceConfig{File: "/data/site.json"}, Template: "page.tmpl", OutputDir: "/out"}

	collections, err := cfg.ResolveCollections()
	require.NoError(t, err)
	require.Len(t, collections, 1)
	assert.Equal(t, DefaultCollection, collections[0].Name)
	assert.Equal(t, "/data/site.json", collections[0].Source.File)
	assert.Equal(t, "/out", collections[0].OutputDir)
}

func TestGetLogger_Fallback(t *testing.T) {
	assert.NotNil(t, GetLogger(t.Context()))
}
