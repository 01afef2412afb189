package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/leapstack-labs/pagegen/pkg/core"
)

// HTTPSource fetches a collection document with a single GET request.
type HTTPSource struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

// HTTPOption configures an HTTPSource.
type HTTPOption func(*HTTPSource)

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) HTTPOption {
	return func(s *HTTPSource) { s.client.Timeout = d }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(s *HTTPSource) { s.client = c }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) HTTPOption {
	return func(s *HTTPSource) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewHTTPSource creates a source for url.
func NewHTTPSource(url string, opts ...HTTPOption) *HTTPSource {
	s := &HTTPSource{
		url:    url,
		client: &http.Client{Timeout: DefaultTimeout},
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Describe returns the source URL.
func (s *HTTPSource) Describe() string { return s.url }

// Fetch issues the request and decodes the response body.
// It never retries.
func (s *HTTPSource) Fetch(ctx context.Context) (*core.Collection, error) {
	op := "GET " + s.url

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, core.NewCollaboratorError(core.KindAPI, op, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, core.NewCollaboratorError(core.KindAPI, op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	s.logger.Debug("fetched collection",
		slog.String("url", s.url),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, core.NewCollaboratorError(core.KindAPI, op, fmt.Errorf("unexpected status %s", resp.Status))
	}

	doc, err := decodeJSON(resp.Body)
	if err != nil {
		return nil, core.NewCollaboratorError(core.KindDecode, op, err)
	}

	col, err := fromDocument(doc)
	if err != nil {
		return nil, core.NewCollaboratorError(core.KindDecode, op, err)
	}
	return col, nil
}
