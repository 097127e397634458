package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/membox/core"
	"github.com/hupe1980/membox/logging"
)

const requestIDHeader = "X-Request-ID"

// maxErrorBodyBytes bounds how much of a failure body is read for
// diagnostics.
const maxErrorBodyBytes = 1 << 20

// TransportFunc performs one HTTP round trip. It is injectable so tests can
// substitute scripted responses without a network; the default delegates to
// http.DefaultTransport.
type TransportFunc func(*http.Request) (*http.Response, error)

// DefaultTransport returns the production transport function.
func DefaultTransport() TransportFunc {
	return http.DefaultTransport.RoundTrip
}

// Options configures a Client.
type Options struct {
	// BaseURL is the validated API endpoint.
	BaseURL core.BaseURL

	// APIKey is sent as a bearer token on every request.
	APIKey core.APIKey

	// DefaultHeaders are attached to every request; per-call headers win on
	// collision.
	DefaultHeaders http.Header

	// Timeout bounds each individual attempt (not the whole retry loop).
	// Zero disables the client-level timeout.
	Timeout time.Duration

	// Retry configures the retry scheduler.
	Retry RetryPolicy

	// Transport is the injectable round-trip function.
	Transport TransportFunc

	// Logger receives debug-level request/retry/stream events.
	Logger logging.Logger

	// VerbatimErrorMessages keeps an empty extracted error message verbatim
	// instead of falling back to the HTTP status text.
	VerbatimErrorMessages bool

	// CacheTTL, when > 0, caches successful GET responses in memory for the
	// given duration.
	CacheTTL time.Duration
}

// Client is the shared typed HTTP substrate. It holds only read-only
// configuration; one instance is safe for concurrent use and is shared by all
// resource services of a membox client.
type Client struct {
	baseURL          *url.URL
	apiKey           core.APIKey
	defaultHeaders   http.Header
	timeout          time.Duration
	retry            RetryPolicy
	transport        TransportFunc
	logger           logging.Logger
	verbatimMessages bool
}

// NewClient builds a Client from options. The base URL is required; all other
// fields have working defaults.
func NewClient(optFns ...func(o *Options)) (*Client, error) {
	opts := Options{
		Transport: DefaultTransport(),
		Logger:    logging.NoOpLogger{},
		Retry:     DefaultRetryPolicy(),
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.BaseURL == "" {
		return nil, fmt.Errorf("membox: base url is required")
	}
	bu, err := url.Parse(opts.BaseURL.String())
	if err != nil {
		return nil, fmt.Errorf("membox: invalid base url: %w", err)
	}
	// Normalize so relative paths resolve as expected (base path is a prefix).
	if bu.Path != "" && !strings.HasSuffix(bu.Path, "/") {
		bu.Path += "/"
	}

	hdr := make(http.Header, len(opts.DefaultHeaders))
	for k, vv := range opts.DefaultHeaders {
		for _, v := range vv {
			hdr.Add(k, v)
		}
	}

	transport := opts.Transport
	if transport == nil {
		transport = DefaultTransport()
	}
	if opts.CacheTTL > 0 {
		transport, err = newCachedTransport(transport, opts.CacheTTL)
		if err != nil {
			return nil, err
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.NoOpLogger{}
	}

	return &Client{
		baseURL:          bu,
		apiKey:           opts.APIKey,
		defaultHeaders:   hdr,
		timeout:          opts.Timeout,
		retry:            opts.Retry,
		transport:        transport,
		logger:           logger,
		verbatimMessages: opts.VerbatimErrorMessages,
	}, nil
}

// Response is one completed round trip. Body is nil when the declared
// content type is neither JSON, NDJSON nor text.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Request performs one logical call: build, execute, classify, retry. The
// returned error is always exactly one of the variants in this package.
func (c *Client) Request(ctx context.Context, method, path string, opts *RequestOptions) (*Response, error) {
	return scheduleRetry(ctx, c.retry, c.logger, func() (*Response, error) {
		return c.attempt(ctx, method, path, opts)
	})
}

// attempt executes a single try. The timeout timer is armed before the call
// and disarmed on every exit path via defer.
func (c *Client) attempt(ctx context.Context, method, path string, opts *RequestOptions) (*Response, error) {
	req, err := c.buildRequest(ctx, method, path, opts)
	if err != nil {
		return nil, err
	}

	rctx, cancel := c.armTimeout(ctx, opts)
	defer cancel()
	req = req.WithContext(rctx)

	c.logger.Debug("membox request", "method", method, "url", req.URL.String(),
		"request_id", req.Header.Get(requestIDHeader))

	resp, err := c.transport(req)
	if err != nil {
		return nil, asNetworkError(req.URL.String(), err)
	}
	defer resp.Body.Close()

	body, err := materializeBody(resp)
	if err != nil {
		// A read failure mid-body is a transport failure, not an HTTP one.
		return nil, asNetworkError(req.URL.String(), err)
	}

	if resp.StatusCode >= 400 {
		return nil, c.translate(resp.StatusCode, resp.Header, body, req.URL.String())
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

// StreamResponse is a streaming round trip. Body must be closed by the
// consumer; closing releases the underlying connection and disarms the
// request context.
type StreamResponse struct {
	StatusCode int
	Header     http.Header
	Body       io.ReadCloser
}

// RequestStream performs a streaming call. Establishing the stream goes
// through the same retry scheduler as Request; once headers have been
// received the body is handed to the caller untouched for NDJSON decoding.
func (c *Client) RequestStream(ctx context.Context, method, path string, opts *RequestOptions) (*StreamResponse, error) {
	return scheduleRetry(ctx, c.retry, c.logger, func() (*StreamResponse, error) {
		return c.attemptStream(ctx, method, path, opts)
	})
}

func (c *Client) attemptStream(ctx context.Context, method, path string, opts *RequestOptions) (*StreamResponse, error) {
	req, err := c.buildRequest(ctx, method, path, opts)
	if err != nil {
		return nil, err
	}

	// The cancel func must outlive this call: it travels with the body and
	// fires when the consumer closes the stream.
	rctx, cancel := c.armTimeout(ctx, opts)
	req = req.WithContext(rctx)

	c.logger.Debug("membox stream request", "method", method, "url", req.URL.String(),
		"request_id", req.Header.Get(requestIDHeader))

	resp, err := c.transport(req)
	if err != nil {
		cancel()
		return nil, asNetworkError(req.URL.String(), err)
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		resp.Body.Close()
		cancel()
		return nil, c.translate(resp.StatusCode, resp.Header, body, req.URL.String())
	}

	return &StreamResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       &cancelReadCloser{rc: resp.Body, cancel: cancel},
	}, nil
}

// armTimeout derives the per-attempt context. The returned cancel is never
// nil and must be called on every exit path.
func (c *Client) armTimeout(ctx context.Context, opts *RequestOptions) (context.Context, context.CancelFunc) {
	timeout := c.timeout
	if opts != nil && opts.Timeout > 0 {
		timeout = opts.Timeout
	}
	if timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return context.WithCancel(ctx)
}

// materializeBody reads the body when the declared content type is JSON,
// NDJSON or text; anything else is drained and reported as absent (nil).
func materializeBody(resp *http.Response) ([]byte, error) {
	if resp.Body == nil {
		return nil, nil
	}
	if !decodableContentType(resp.Header.Get("Content-Type")) {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, nil
	}
	limit := int64(-1)
	if resp.StatusCode >= 400 {
		limit = maxErrorBodyBytes
	}
	var r io.Reader = resp.Body
	if limit > 0 {
		r = io.LimitReader(resp.Body, limit)
	}
	return io.ReadAll(r)
}

func decodableContentType(ct string) bool {
	if ct == "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return false
	}
	switch {
	case mt == "application/json":
		return true
	case mt == "application/x-ndjson":
		return true
	case strings.HasSuffix(mt, "+json"):
		return true
	case strings.HasPrefix(mt, "text/"):
		return true
	}
	return false
}

// cancelReadCloser ties the request context to the body lifetime. Close is
// idempotent; the underlying body is closed and the context released exactly
// once, even under concurrent Close calls.
type cancelReadCloser struct {
	rc     io.ReadCloser
	cancel context.CancelFunc
	once   sync.Once
	err    error
}

func (c *cancelReadCloser) Read(p []byte) (int, error) { return c.rc.Read(p) }

func (c *cancelReadCloser) Close() error {
	c.once.Do(func() {
		c.err = c.rc.Close()
		c.cancel()
	})
	return c.err
}

// Do performs a JSON round trip and decodes the response body into T. An
// empty or absent body yields the zero value. Decode failures surface as
// *RequestError so the caller still gets a typed variant.
func Do[T any](ctx context.Context, c *Client, method, path string, opts *RequestOptions) (T, error) {
	var out T
	resp, err := c.Request(ctx, method, path, opts)
	if err != nil {
		return out, err
	}
	if len(resp.Body) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return out, &RequestError{Cause: err, Details: "decoding response body"}
	}
	return out, nil
}
