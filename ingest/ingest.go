package ingest

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/hupe1980/membox/core"
	"github.com/hupe1980/membox/transport"
)

// Service is the ingest resource client.
type Service struct {
	tr *transport.Client
}

// New creates an ingest service over the shared transport.
func New(tr *transport.Client) *Service {
	return &Service{tr: tr}
}

type documentRequest struct {
	Title    string         `json:"title,omitempty"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type urlRequest struct {
	URL string `json:"url"`
}

// Document submits raw content for processing. The returned Document starts
// in the queued state; poll Status for progress.
func (s *Service) Document(ctx context.Context, title, content string, metadata map[string]any) (core.Document, error) {
	if content == "" {
		return core.Document{}, &transport.RequestError{Cause: errors.New("document content must not be empty")}
	}
	return transport.Do[core.Document](ctx, s.tr, http.MethodPost, "/v1/ingest/documents", &transport.RequestOptions{
		Body: documentRequest{Title: title, Content: content, Metadata: metadata},
	})
}

// URL submits a web page for fetching and processing.
func (s *Service) URL(ctx context.Context, rawURL string) (core.Document, error) {
	u, err := url.Parse(rawURL)
	if err != nil || !u.IsAbs() {
		return core.Document{}, &transport.RequestError{
			Cause:   errors.New("ingest url must be absolute"),
			Details: rawURL,
		}
	}
	return transport.Do[core.Document](ctx, s.tr, http.MethodPost, "/v1/ingest/urls", &transport.RequestOptions{
		Body: urlRequest{URL: rawURL},
	})
}

// Status fetches the current processing state of a submission.
func (s *Service) Status(ctx context.Context, id string) (core.Document, error) {
	return transport.Do[core.Document](ctx, s.tr, http.MethodGet, "/v1/ingest/"+url.PathEscape(id), nil)
}
