// Package render turns composite records into files using text/template,
// or html/template for HTML entry templates.
package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	htmltemplate "html/template"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/leapstack-labs/pagegen/pkg/core"
)

// DefaultTemplate is the entry template used when none is configured.
const DefaultTemplate = "page.tmpl"

// templateExts are the file extensions loaded from the templates directory.
var templateExts = map[string]bool{".tmpl": true, ".tpl": true, ".html": true, ".htm": true, ".md": true}

// executor is the part of text/template and html/template the renderer uses.
type executor interface {
	ExecuteTemplate(w io.Writer, name string, data any) error
}

// TemplateRenderer renders every page through one entry template and writes
// the result under an output directory.
//
// An entry template ending in .html or .htm is parsed with html/template,
// so record values are escaped for their HTML context. Any other entry uses
// text/template and writes values verbatim.
//
// Templates are parsed again on every Render, so edits made between runs
// take effect without building a new renderer.
type TemplateRenderer struct {
	templatesDir string
	entry        string
	outputDir    string
	logger       *slog.Logger
}

// Config configures a TemplateRenderer.
type Config struct {
	TemplatesDir string
	Template     string // entry template name, defaults to DefaultTemplate
	OutputDir    string
	Logger       *slog.Logger
}

// New checks that cfg.TemplatesDir holds a parseable set of templates
// containing the entry template. Templates can reference each other by
// file name.
func New(cfg Config) (*TemplateRenderer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	entry := cfg.Template
	if entry == "" {
		entry = DefaultTemplate
	}
	if cfg.OutputDir == "" {
		return nil, fmt.Errorf("render: output directory is required")
	}

	r := &TemplateRenderer{
		templatesDir: cfg.TemplatesDir,
		entry:        entry,
		outputDir:    cfg.OutputDir,
		logger:       logger,
	}
	if _, err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

func isHTML(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm":
		return true
	}
	return false
}

// load parses every template in the templates directory.
func (r *TemplateRenderer) load() (executor, error) {
	entries, err := os.ReadDir(r.templatesDir)
	if err != nil {
		return nil, core.NewCollaboratorError(core.KindIO, "read templates "+r.templatesDir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !templateExts[filepath.Ext(e.Name())] {
			continue
		}
		files = append(files, filepath.Join(r.templatesDir, e.Name()))
	}
	if len(files) == 0 {
		return nil, core.NewCollaboratorError(core.KindTemplate, "load templates",
			fmt.Errorf("no templates found in %s", r.templatesDir))
	}

	var (
		exec  executor
		found bool
	)
	if isHTML(r.entry) {
		t, perr := htmltemplate.New(r.entry).Funcs(htmltemplate.FuncMap(Funcs())).ParseFiles(files...)
		exec, err = t, perr
		found = perr == nil && t.Lookup(r.entry) != nil
	} else {
		t, perr := template.New(r.entry).Funcs(Funcs()).ParseFiles(files...)
		exec, err = t, perr
		found = perr == nil && t.Lookup(r.entry) != nil
	}
	if err != nil {
		return nil, core.NewCollaboratorError(core.KindTemplate, "parse templates", err)
	}
	if !found {
		return nil, core.NewCollaboratorError(core.KindTemplate, "load templates",
			fmt.Errorf("template %q not found in %s", r.entry, r.templatesDir))
	}

	r.logger.Debug("loaded templates",
		slog.String("dir", r.templatesDir),
		slog.Int("count", len(files)),
		slog.String("entry", r.entry),
		slog.Bool("html", isHTML(r.entry)))
	return exec, nil
}

// Render writes one file per page. It stops at the first failure; files
// already written are left in place.
func (r *TemplateRenderer) Render(ctx context.Context, pages []core.Page) error {
	tmpl, err := r.load()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(r.outputDir, 0o750); err != nil {
		return core.NewCollaboratorError(core.KindIO, "create "+r.outputDir, err)
	}

	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.renderPage(tmpl, page); err != nil {
			return err
		}
	}

	r.logger.Info("rendered pages", slog.Int("count", len(pages)), slog.String("output_dir", r.outputDir))
	return nil
}

func (r *TemplateRenderer) renderPage(tmpl executor, page core.Page) error {
	path, err := SafeJoin(r.outputDir, page.Name)
	if err != nil {
		return core.NewCollaboratorError(core.KindIO, fmt.Sprintf("page %d", page.Index), err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, r.entry, page.Data); err != nil {
		return core.NewCollaboratorError(core.KindTemplate, fmt.Sprintf("render page %d (%s)", page.Index, page.Name), err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return core.NewCollaboratorError(core.KindIO, "create "+filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil { //nolint:gosec // rendered output is meant to be world readable
		return core.NewCollaboratorError(core.KindIO, "write "+path, err)
	}

	r.logger.Debug("wrote page", slog.Int("index", page.Index), slog.String("path", path))
	return nil
}

// SafeJoin joins name onto dir, rejecting absolute names and names that
// would escape dir.
func SafeJoin(dir, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("empty output name")
	}
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("output name %q must be relative", name)
	}
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("output name %q escapes the output directory", name)
	}
	return filepath.Join(dir, cleaned), nil
}

// Funcs returns the helper functions available to page templates.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"json": func(v any) (string, error) {
			b, err := json.Marshal(v)
			return string(b), err
		},
		"default": func(def, v any) any {
			if v == nil {
				return def
			}
			if s, ok := v.(string); ok && s == "" {
				return def
			}
			return v
		},
		"upper": strings.ToUpper,
		"lower": strings.ToLower,
		"join": func(sep string, items []any) string {
			parts := make([]string, len(items))
			for i, item := range items {
				parts[i] = fmt.Sprint(item)
			}
			return strings.Join(parts, sep)
		},
	}
}
