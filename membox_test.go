package membox

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/membox/config"
	"github.com/hupe1980/membox/internal/testutil"
	"github.com/hupe1980/membox/transport"
)

func TestNew_ValidatesEagerly(t *testing.T) {
	t.Run("missing api key", func(t *testing.T) {
		_, err := New()
		assert.Error(t, err)
	})

	t.Run("malformed base url", func(t *testing.T) {
		_, err := New(func(o *Options) {
			o.APIKey = "mk-test-key-1234"
			o.BaseURL = "ftp://files.test"
		})
		assert.Error(t, err)
	})

	t.Run("invalid namespace", func(t *testing.T) {
		_, err := New(func(o *Options) {
			o.APIKey = "mk-test-key-1234"
			o.Namespace = "Has Spaces"
		})
		assert.Error(t, err)
	})
}

func TestNew_WiresAllServices(t *testing.T) {
	c, err := New(func(o *Options) {
		o.APIKey = "mk-test-key-1234"
	})
	require.NoError(t, err)

	assert.NotNil(t, c.Memories())
	assert.NotNil(t, c.Search())
	assert.NotNil(t, c.Connections())
	assert.NotNil(t, c.Settings())
	assert.NotNil(t, c.Ingest())
	assert.NotNil(t, c.Tools())
	assert.NotNil(t, c.Transport())
}

func TestClient_SendsNamespaceHeader(t *testing.T) {
	script := testutil.NewScript(testutil.Respond(testutil.JSONResponse(200,
		`{"key":"a","content":"hello"}`)))

	c, err := New(func(o *Options) {
		o.APIKey = "mk-test-key-1234"
		o.Namespace = "team-42"
		o.Transport = script.Do
	})
	require.NoError(t, err)

	mem, err := c.Memories().Get(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "hello", mem.Content)

	req := script.Requests[0]
	assert.Equal(t, "team-42", req.Header.Get("X-Membox-Namespace"))
	assert.Equal(t, "Bearer mk-test-key-1234", req.Header.Get("Authorization"))
	assert.NotEmpty(t, req.Header.Get("X-Request-ID"))
}

func TestWithConfig(t *testing.T) {
	cfg := config.Config{
		APIKey:        "mk-cfg-key-9999",
		BaseURL:       "https://membox.internal.test",
		Namespace:     "staging",
		Timeout:       5 * time.Second,
		RetryAttempts: 2,
		RetryDelay:    time.Second,
	}

	var opts Options
	WithConfig(cfg)(&opts)

	assert.Equal(t, "mk-cfg-key-9999", opts.APIKey)
	assert.Equal(t, "https://membox.internal.test", opts.BaseURL)
	assert.Equal(t, "staging", opts.Namespace)
	assert.Equal(t, transport.RetryPolicy{Attempts: 2, Delay: time.Second}, opts.Retry)
}

func TestClient_TypedErrorsSurfaceAtTheFacade(t *testing.T) {
	script := testutil.NewScript(testutil.Respond(testutil.JSONResponse(401, `{"error":"key revoked"}`)))

	c, err := New(func(o *Options) {
		o.APIKey = "mk-test-key-1234"
		o.Transport = script.Do
		o.Retry = transport.RetryPolicy{Attempts: 1}
	})
	require.NoError(t, err)

	_, err = c.Memories().Get(context.Background(), "a")
	var ae *transport.AuthorizationError
	require.ErrorAs(t, err, &ae)
	assert.NotContains(t, err.Error(), "mk-test-key-1234")
}
