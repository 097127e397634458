package connections

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/hupe1980/membox/core"
	"github.com/hupe1980/membox/transport"
)

// Service is the connections resource client.
type Service struct {
	tr *transport.Client
}

// New creates a connections service over the shared transport.
func New(tr *transport.Client) *Service {
	return &Service{tr: tr}
}

// createRequest is the wire body for Create.
type createRequest struct {
	Provider string         `json:"provider"`
	Config   map[string]any `json:"config,omitempty"`
}

// Create attaches a provider (e.g. "notion", "gdrive") to the namespace.
func (s *Service) Create(ctx context.Context, provider string, config map[string]any) (core.Connection, error) {
	if provider == "" {
		return core.Connection{}, &transport.RequestError{Cause: errors.New("provider must not be empty")}
	}
	return transport.Do[core.Connection](ctx, s.tr, http.MethodPost, "/v1/connections", &transport.RequestOptions{
		Body: createRequest{Provider: provider, Config: config},
	})
}

// List returns all connections in the namespace.
func (s *Service) List(ctx context.Context) ([]core.Connection, error) {
	type response struct {
		Connections []core.Connection `json:"connections"`
	}
	resp, err := transport.Do[response](ctx, s.tr, http.MethodGet, "/v1/connections", nil)
	if err != nil {
		return nil, err
	}
	return resp.Connections, nil
}

// Delete detaches a connection by id.
func (s *Service) Delete(ctx context.Context, id string) error {
	_, err := s.tr.Request(ctx, http.MethodDelete, "/v1/connections/"+url.PathEscape(id), nil)
	return err
}
