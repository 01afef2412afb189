// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// BrothersJSON is a small collection document: a shared family record and
// one override per brother.
const BrothersJSON = `{
  "data": {"surname": "Karamazov", "father": "Fyodor", "town": "Skotoprigonyevsk"},
  "pages": [
    {"name": "Dmitri", "age": 28},
    {"name": "Ivan", "age": 24},
    {"name": "Alexei", "age": 20, "father": "Fyodor Pavlovich"}
  ]
}`

const projectConfig = `source:
  file: data/brothers.json
templates_dir: templates
output_dir: public
output_name: 'slug(page["name"]) + ".html"'
state_path: .pagegen/state.db
`

const pageTemplate = `<h1>{{.name}} {{.surname}}</h1>
<p>Son of {{.father}}, aged {{.age}}.</p>
`

// SetupTestProject creates a temporary project with a config file, a data
// document and a page template, and returns its root.
func SetupTestProject(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	files := map[string]string{
		"pagegen.yaml":        projectConfig,
		"data/brothers.json":  BrothersJSON,
		"templates/page.tmpl": pageTemplate,
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			t.Fatalf("failed to create directory for %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	return dir
}

// ConfigPath returns the config file of a project created by SetupTestProject.
func ConfigPath(dir string) string {
	return filepath.Join(dir, "pagegen.yaml")
}
