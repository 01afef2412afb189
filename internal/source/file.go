package source

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/pagegen/pkg/core"
)

// FileSource reads a collection document from a local JSON or YAML file.
type FileSource struct {
	path string
}

// NewFileSource creates a source for path. The format is chosen by
// extension: .json, .yaml or .yml.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Describe returns the file path.
func (s *FileSource) Describe() string { return s.path }

// Path returns the file path.
func (s *FileSource) Path() string { return s.path }

// Fetch reads and decodes the file.
func (s *FileSource) Fetch(ctx context.Context) (*core.Collection, error) {
	op := "read " + s.path

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := os.ReadFile(s.path)
	if err != nil {
		return nil, core.NewCollaboratorError(core.KindIO, op, err)
	}

	var doc map[string]any
	switch ext := strings.ToLower(filepath.Ext(s.path)); ext {
	case ".json":
		doc, err = decodeJSON(bytes.NewReader(content))
	case ".yaml", ".yml":
		err = yaml.Unmarshal(content, &doc)
	default:
		err = fmt.Errorf("unsupported file extension %q", ext)
	}
	if err != nil {
		return nil, core.NewCollaboratorError(core.KindDecode, op, err)
	}

	col, err := fromDocument(doc)
	if err != nil {
		return nil, core.NewCollaboratorError(core.KindDecode, op, err)
	}
	return col, nil
}
