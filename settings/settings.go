package settings

import (
	"context"
	"errors"
	"net/http"

	"github.com/tidwall/sjson"

	"github.com/hupe1980/membox/core"
	"github.com/hupe1980/membox/transport"
)

// Service is the settings resource client.
type Service struct {
	tr *transport.Client
}

// New creates a settings service over the shared transport.
func New(tr *transport.Client) *Service {
	return &Service{tr: tr}
}

// Get fetches the namespace settings document.
func (s *Service) Get(ctx context.Context) (core.Settings, error) {
	return transport.Do[core.Settings](ctx, s.tr, http.MethodGet, "/v1/settings", nil)
}

// Update is a partial settings change; nil fields are left untouched on the
// server.
type Update struct {
	SearchLimit      *int
	EmbeddingModel   *string
	AutoSummarize    *bool
	ExcludedKeywords *[]string
}

// Apply sends a PATCH carrying only the fields set on u and returns the
// resulting settings document.
func (s *Service) Apply(ctx context.Context, u Update) (core.Settings, error) {
	patch, err := u.marshal()
	if err != nil {
		return core.Settings{}, &transport.RequestError{Cause: err, Details: "building settings patch"}
	}
	if string(patch) == "{}" {
		return core.Settings{}, &transport.RequestError{Cause: errors.New("settings update is empty")}
	}
	return transport.Do[core.Settings](ctx, s.tr, http.MethodPatch, "/v1/settings", &transport.RequestOptions{
		Body:    string(patch),
		Headers: http.Header{"Content-Type": {"application/json"}},
	})
}

// marshal builds the patch document field by field so unset fields never
// appear, not even as JSON null.
func (u Update) marshal() ([]byte, error) {
	patch := []byte("{}")
	var err error
	if u.SearchLimit != nil {
		if patch, err = sjson.SetBytes(patch, "searchLimit", *u.SearchLimit); err != nil {
			return nil, err
		}
	}
	if u.EmbeddingModel != nil {
		if patch, err = sjson.SetBytes(patch, "embeddingModel", *u.EmbeddingModel); err != nil {
			return nil, err
		}
	}
	if u.AutoSummarize != nil {
		if patch, err = sjson.SetBytes(patch, "autoSummarize", *u.AutoSummarize); err != nil {
			return nil, err
		}
	}
	if u.ExcludedKeywords != nil {
		if patch, err = sjson.SetBytes(patch, "excludedKeywords", *u.ExcludedKeywords); err != nil {
			return nil, err
		}
	}
	return patch, nil
}
