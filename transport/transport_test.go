package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/membox/internal/testutil"
)

func TestRequest_Success(t *testing.T) {
	script := testutil.NewScript(
		testutil.Respond(testutil.JSONResponse(200, `{"key":"a","content":"hello"}`)),
	)
	c := newTestClient(t, func(o *Options) { o.Transport = script.Do })

	resp, err := c.Request(context.Background(), http.MethodGet, "/v1/memories/a", nil)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.JSONEq(t, `{"key":"a","content":"hello"}`, string(resp.Body))

	require.Equal(t, 1, script.Calls())
	assert.Equal(t, "Bearer mk-test-key-1234", script.Requests[0].Header.Get("Authorization"))
}

func TestRequest_UnrecognizedContentTypeHasNoBody(t *testing.T) {
	resp := &http.Response{
		StatusCode: 200,
		Header:     http.Header{"Content-Type": {"application/octet-stream"}},
		Body:       io.NopCloser(strings.NewReader("binary-blob")),
	}
	c := newTestClient(t, func(o *Options) { o.Transport = testutil.NewScript(testutil.Respond(resp)).Do })

	out, err := c.Request(context.Background(), http.MethodGet, "/v1/export", nil)
	require.NoError(t, err)
	assert.Nil(t, out.Body)
}

func TestRequest_TimeoutBecomesNetworkError(t *testing.T) {
	blocking := func(req *http.Request) (*http.Response, error) {
		<-req.Context().Done()
		return nil, req.Context().Err()
	}
	c := newTestClient(t, func(o *Options) {
		o.Transport = blocking
		o.Timeout = 10 * time.Millisecond
		o.Retry = RetryPolicy{Attempts: 1}
	})

	_, err := c.Request(context.Background(), http.MethodGet, "/v1/memories/a", nil)
	var ne *NetworkError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, "timed out or aborted", ne.Cause.Error())
	assert.Contains(t, ne.URL, "/v1/memories/a")
}

func TestRequest_TransportFailureIsRetriedThenSurfaced(t *testing.T) {
	refused := errors.New("dial tcp: connection refused")
	script := testutil.NewScript(testutil.Fail(refused), testutil.Fail(refused), testutil.Fail(refused))
	c := newTestClient(t, func(o *Options) {
		o.Transport = script.Do
		o.Retry = RetryPolicy{Attempts: 3, Delay: time.Millisecond}
	})

	_, err := c.Request(context.Background(), http.MethodGet, "/v1/memories/a", nil)
	var ne *NetworkError
	require.ErrorAs(t, err, &ne)
	assert.ErrorIs(t, ne, refused)
	assert.Equal(t, 3, script.Calls())
}

func TestRequest_AuthorizationFailureIsNotRetried(t *testing.T) {
	script := testutil.NewScript(testutil.Respond(testutil.JSONResponse(401, `{"error":"bad key"}`)))
	c := newTestClient(t, func(o *Options) {
		o.Transport = script.Do
		o.Retry = RetryPolicy{Attempts: 5, Delay: time.Millisecond}
	})

	_, err := c.Request(context.Background(), http.MethodGet, "/v1/memories/a", nil)
	var ae *AuthorizationError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, 1, script.Calls())
	// The API key never leaks into the error value.
	assert.NotContains(t, err.Error(), "mk-test-key-1234")
}

func TestRequest_RateLimitHintDrivesNextAttempt(t *testing.T) {
	script := testutil.NewScript(
		testutil.Respond(testutil.JSONResponse(429, `{}`, "Retry-After", "0")),
		testutil.Respond(testutil.JSONResponse(200, `{}`)),
	)
	c := newTestClient(t, func(o *Options) {
		o.Transport = script.Do
		o.Retry = RetryPolicy{Attempts: 2, Delay: time.Minute} // hint (0s) must override this
	})

	start := time.Now()
	_, err := c.Request(context.Background(), http.MethodGet, "/v1/memories/a", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, script.Calls())
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestRequestStream_ErrorStatusIsTranslated(t *testing.T) {
	script := testutil.NewScript(testutil.Respond(testutil.JSONResponse(500, `{"error":"boom"}`)))
	c := newTestClient(t, func(o *Options) {
		o.Transport = script.Do
		o.Retry = RetryPolicy{Attempts: 1}
	})

	_, err := c.RequestStream(context.Background(), http.MethodGet, "/v1/memories/keys", nil)
	var he *HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, "boom", he.Message)
}

func TestRequestStream_CloseReleasesBodyExactlyOnce(t *testing.T) {
	resp, counter := testutil.NDJSONResponse(200, "{\"key\":\"a\"}\n")
	c := newTestClient(t, func(o *Options) { o.Transport = testutil.NewScript(testutil.Respond(resp)).Do })

	out, err := c.RequestStream(context.Background(), http.MethodGet, "/v1/memories/keys", nil)
	require.NoError(t, err)

	require.NoError(t, out.Body.Close())
	require.NoError(t, out.Body.Close()) // idempotent
	assert.Equal(t, 1, counter.Closes())
}

func TestDo_DecodesAndClassifiesDecodeFailure(t *testing.T) {
	c := newTestClient(t, func(o *Options) {
		o.Transport = testutil.NewScript(testutil.Respond(testutil.JSONResponse(200, `{"key":"a"}`))).Do
	})
	type rec struct {
		Key string `json:"key"`
	}
	v, err := Do[rec](context.Background(), c, http.MethodGet, "/v1/memories/a", nil)
	require.NoError(t, err)
	assert.Equal(t, "a", v.Key)

	c2 := newTestClient(t, func(o *Options) {
		o.Transport = testutil.NewScript(testutil.Respond(testutil.JSONResponse(200, `not json`))).Do
		o.Retry = RetryPolicy{Attempts: 1}
	})
	_, err = Do[rec](context.Background(), c2, http.MethodGet, "/v1/memories/a", nil)
	var re *RequestError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "decoding response body", re.Details)
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := NewClient()
	assert.Error(t, err)
}
