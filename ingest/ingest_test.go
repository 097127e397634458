package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/membox/core"
	"github.com/hupe1980/membox/internal/testutil"
	"github.com/hupe1980/membox/transport"
)

func newService(t *testing.T, script *testutil.ScriptedTransport) *Service {
	t.Helper()
	base, err := core.NewBaseURL("https://api.test.invalid")
	require.NoError(t, err)
	key, err := core.NewAPIKey("mk-test-key-1234")
	require.NoError(t, err)

	tr, err := transport.NewClient(func(o *transport.Options) {
		o.BaseURL = base
		o.APIKey = key
		o.Transport = script.Do
		o.Retry = transport.RetryPolicy{Attempts: 1}
	})
	require.NoError(t, err)
	return New(tr)
}

func TestDocument(t *testing.T) {
	script := testutil.NewScript(testutil.Respond(testutil.JSONResponse(202,
		`{"id":"doc-1","title":"notes","status":"queued"}`)))
	s := newService(t, script)

	doc, err := s.Document(context.Background(), "notes", "meeting summary", map[string]any{"tag": "work"})
	require.NoError(t, err)
	assert.Equal(t, "doc-1", doc.ID)
	assert.Equal(t, core.DocumentStatusQueued, doc.Status)

	assert.Equal(t, "/v1/ingest/documents", script.Requests[0].URL.Path)
	assert.JSONEq(t, `{"title":"notes","content":"meeting summary","metadata":{"tag":"work"}}`,
		string(script.Bodies[0]))
}

func TestDocument_EmptyContent(t *testing.T) {
	script := testutil.NewScript()
	s := newService(t, script)

	_, err := s.Document(context.Background(), "t", "", nil)
	var re *transport.RequestError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, 0, script.Calls())
}

func TestURL(t *testing.T) {
	script := testutil.NewScript(testutil.Respond(testutil.JSONResponse(202,
		`{"id":"doc-2","sourceUrl":"https://example.test/page","status":"queued"}`)))
	s := newService(t, script)

	doc, err := s.URL(context.Background(), "https://example.test/page")
	require.NoError(t, err)
	assert.Equal(t, "doc-2", doc.ID)
	assert.JSONEq(t, `{"url":"https://example.test/page"}`, string(script.Bodies[0]))
}

func TestURL_RejectsRelative(t *testing.T) {
	script := testutil.NewScript()
	s := newService(t, script)

	for _, raw := range []string{"", "/page", "example.test/page", "://bad"} {
		_, err := s.URL(context.Background(), raw)
		var re *transport.RequestError
		require.ErrorAs(t, err, &re, "url %q", raw)
	}
	assert.Equal(t, 0, script.Calls())
}

func TestStatus(t *testing.T) {
	script := testutil.NewScript(testutil.Respond(testutil.JSONResponse(200,
		`{"id":"doc-1","status":"done"}`)))
	s := newService(t, script)

	doc, err := s.Status(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, core.DocumentStatusDone, doc.Status)
	assert.Equal(t, "/v1/ingest/doc-1", script.Requests[0].URL.Path)
}
