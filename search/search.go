package search

import (
	"context"
	"errors"
	"net/http"

	"github.com/hupe1980/membox/core"
	"github.com/hupe1980/membox/stream"
	"github.com/hupe1980/membox/transport"
)

// Request describes one search. Query is required.
type Request struct {
	Query   string            `json:"query"`
	Limit   int               `json:"limit,omitempty"`
	Filters map[string]string `json:"filters,omitempty"`
}

type response struct {
	Matches []core.SearchMatch `json:"matches"`
}

// Service is the search resource client.
type Service struct {
	tr *transport.Client
}

// New creates a search service over the shared transport.
func New(tr *transport.Client) *Service {
	return &Service{tr: tr}
}

// Query runs a search and returns all matches ranked by relevance.
func (s *Service) Query(ctx context.Context, req Request) ([]core.SearchMatch, error) {
	if req.Query == "" {
		return nil, &transport.RequestError{Cause: errors.New("search query must not be empty")}
	}
	resp, err := transport.Do[response](ctx, s.tr, http.MethodPost, "/v1/search", &transport.RequestOptions{
		Body: req,
	})
	if err != nil {
		return nil, err
	}
	return resp.Matches, nil
}

// QueryStream runs a search returning matches lazily, one NDJSON record per
// match, highest relevance first. The caller owns the decoder and must drain
// it or call Close.
func (s *Service) QueryStream(ctx context.Context, req Request) (*stream.Decoder[core.SearchMatch], error) {
	if req.Query == "" {
		return nil, &transport.RequestError{Cause: errors.New("search query must not be empty")}
	}
	resp, err := s.tr.RequestStream(ctx, http.MethodPost, "/v1/search/stream", &transport.RequestOptions{
		Body: req,
	})
	if err != nil {
		return nil, err
	}
	return stream.NewDecoder[core.SearchMatch](resp.Body), nil
}
