package transport

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/membox/internal/testutil"
)

func TestCachedTransport_ServesRepeatGETsFromCache(t *testing.T) {
	script := testutil.NewScript(
		testutil.Respond(testutil.JSONResponse(200, `{"key":"a","content":"v1"}`)),
	)
	c := newTestClient(t, func(o *Options) {
		o.Transport = script.Do
		o.CacheTTL = time.Minute
	})

	first, err := c.Request(context.Background(), http.MethodGet, "/v1/memories/a", nil)
	require.NoError(t, err)
	second, err := c.Request(context.Background(), http.MethodGet, "/v1/memories/a", nil)
	require.NoError(t, err)

	assert.Equal(t, 1, script.Calls())
	assert.Equal(t, first.Body, second.Body)
}

func TestCachedTransport_DistinctURLsAreDistinctEntries(t *testing.T) {
	script := testutil.NewScript(
		testutil.Respond(testutil.JSONResponse(200, `{"key":"a"}`)),
		testutil.Respond(testutil.JSONResponse(200, `{"key":"b"}`)),
	)
	c := newTestClient(t, func(o *Options) {
		o.Transport = script.Do
		o.CacheTTL = time.Minute
	})

	_, err := c.Request(context.Background(), http.MethodGet, "/v1/memories/a", nil)
	require.NoError(t, err)
	_, err = c.Request(context.Background(), http.MethodGet, "/v1/memories/b", nil)
	require.NoError(t, err)

	assert.Equal(t, 2, script.Calls())
}

func TestCachedTransport_NonGETBypassesCache(t *testing.T) {
	script := testutil.NewScript(
		testutil.Respond(testutil.JSONResponse(200, `{"ok":true}`)),
		testutil.Respond(testutil.JSONResponse(200, `{"ok":true}`)),
	)
	c := newTestClient(t, func(o *Options) {
		o.Transport = script.Do
		o.CacheTTL = time.Minute
	})

	for i := 0; i < 2; i++ {
		_, err := c.Request(context.Background(), http.MethodPost, "/v1/search", &RequestOptions{
			Body: map[string]any{"query": "x"},
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, script.Calls())
}

func TestCachedTransport_NDJSONIsNeverCached(t *testing.T) {
	resp1, _ := testutil.NDJSONResponse(200, "{\"key\":\"a\"}\n")
	resp2, _ := testutil.NDJSONResponse(200, "{\"key\":\"a\"}\n")
	script := testutil.NewScript(testutil.Respond(resp1), testutil.Respond(resp2))
	c := newTestClient(t, func(o *Options) {
		o.Transport = script.Do
		o.CacheTTL = time.Minute
	})

	for i := 0; i < 2; i++ {
		out, err := c.RequestStream(context.Background(), http.MethodGet, "/v1/memories/keys", nil)
		require.NoError(t, err)
		require.NoError(t, out.Body.Close())
	}
	assert.Equal(t, 2, script.Calls())
}

func TestCachedTransport_ErrorStatusIsNotCached(t *testing.T) {
	script := testutil.NewScript(
		testutil.Respond(testutil.JSONResponse(500, `{"error":"flaky"}`)),
		testutil.Respond(testutil.JSONResponse(200, `{"key":"a"}`)),
	)
	c := newTestClient(t, func(o *Options) {
		o.Transport = script.Do
		o.CacheTTL = time.Minute
		o.Retry = RetryPolicy{Attempts: 1}
	})

	_, err := c.Request(context.Background(), http.MethodGet, "/v1/memories/a", nil)
	assert.Error(t, err)

	resp, err := c.Request(context.Background(), http.MethodGet, "/v1/memories/a", nil)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, 2, script.Calls())
}

func TestCacheableContentType(t *testing.T) {
	assert.True(t, cacheableContentType("application/json"))
	assert.True(t, cacheableContentType("application/json; charset=utf-8"))
	assert.True(t, cacheableContentType("application/problem+json"))
	assert.False(t, cacheableContentType("application/x-ndjson"))
	assert.False(t, cacheableContentType("text/plain"))
	assert.False(t, cacheableContentType(""))
}
