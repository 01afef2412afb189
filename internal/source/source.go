// Package source fetches the base record and per-page overrides that feed
// the cascade engine.
//
// A source document has the shape
//
//	{"data": {...}, "pages": [{...}, {...}]}
//
// Both keys are required. Every failure is returned as a
// *core.CollaboratorError so callers can tell fetch problems (KindAPI,
// KindIO) from malformed documents (KindDecode).
package source

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/leapstack-labs/pagegen/pkg/core"
)

// DefaultTimeout bounds a single HTTP fetch.
const DefaultTimeout = 30 * time.Second

// Config selects and configures a source. Exactly one of URL and File
// must be set.
type Config struct {
	URL     string
	File    string
	Timeout time.Duration
}

// Validate checks that exactly one location is configured.
func (c Config) Validate() error {
	switch {
	case c.URL == "" && c.File == "":
		return errors.New("source: one of url or file is required")
	case c.URL != "" && c.File != "":
		return errors.New("source: url and file are mutually exclusive")
	}
	return nil
}

// FromConfig builds the source described by cfg.
func FromConfig(cfg Config, logger *slog.Logger) (core.Source, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.URL != "" {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		return NewHTTPSource(cfg.URL, WithTimeout(timeout), WithLogger(logger)), nil
	}
	return NewFileSource(cfg.File), nil
}

// decodeJSON reads exactly one JSON document from r. Numbers are kept as
// json.Number so integer ids survive unchanged.
func decodeJSON(r io.Reader) (map[string]any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level document")
	}
	return doc, nil
}

// fromDocument validates a decoded document and converts it into a
// Collection.
func fromDocument(doc map[string]any) (*core.Collection, error) {
	if doc == nil {
		return nil, errors.New("document is empty")
	}

	rawData, ok := doc["data"]
	if !ok {
		return nil, errors.New(`missing "data" object`)
	}
	data, ok := normalize(rawData).(map[string]any)
	if !ok {
		return nil, fmt.Errorf(`"data" must be an object, got %s`, typeName(rawData))
	}

	rawPages, ok := doc["pages"]
	if !ok {
		return nil, errors.New(`missing "pages" array`)
	}
	list, ok := rawPages.([]any)
	if !ok {
		return nil, fmt.Errorf(`"pages" must be an array, got %s`, typeName(rawPages))
	}

	pages := make([]core.Record, len(list))
	for i, item := range list {
		page, ok := normalize(item).(map[string]any)
		if !ok {
			return nil, fmt.Errorf("pages[%d] must be an object, got %s", i, typeName(item))
		}
		pages[i] = page
	}

	return &core.Collection{Data: data, Pages: pages}, nil
}

// normalize converts map[any]any values (which some YAML documents
// produce) into map[string]any, recursively.
func normalize(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, item := range val {
			val[k] = normalize(item)
		}
		return val
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = normalize(item)
		}
		return out
	case []any:
		for i, item := range val {
			val[i] = normalize(item)
		}
		return val
	default:
		return v
	}
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, float64, int, int64, uint64:
		return "number"
	case []any:
		return "array"
	case map[string]any, map[any]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
