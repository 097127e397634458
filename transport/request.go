package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// QueryParam is one query string pair. Parameters are encoded in the order
// the caller supplied them; repeated keys are appended, never overwritten.
// (url.Values cannot express either property: it sorts keys on Encode.)
type QueryParam struct {
	Key   string
	Value string
}

// RequestOptions carries the per-call inputs of a round trip. All fields are
// optional.
type RequestOptions struct {
	// Body is the request payload. A string (or []byte) passes through
	// unchanged; any other non-nil value is serialized to UTF-8 JSON.
	Body any

	// Headers are merged over the client's default headers; per-call values
	// win on key collision.
	Headers http.Header

	// Query is appended to the resolved URL in the given order.
	Query []QueryParam

	// Timeout overrides the client-level timeout for this call when > 0.
	Timeout time.Duration
}

// buildRequest assembles the outgoing *http.Request: URL resolution against
// the base, ordered query encoding, default/per-call header merge, body
// serialization and the standing Authorization and X-Request-ID headers.
// Failures are reported as *RequestError.
func (c *Client) buildRequest(ctx context.Context, method, path string, opts *RequestOptions) (*http.Request, error) {
	u, err := c.resolveURL(path)
	if err != nil {
		return nil, &RequestError{Cause: err, Details: "resolving url"}
	}
	if opts != nil && len(opts.Query) > 0 {
		q := encodeQuery(opts.Query)
		if u.RawQuery != "" {
			u.RawQuery += "&" + q
		} else {
			u.RawQuery = q
		}
	}

	var (
		body        []byte
		contentType string
	)
	if opts != nil && opts.Body != nil {
		switch b := opts.Body.(type) {
		case string:
			body = []byte(b)
		case []byte:
			body = b
		case json.RawMessage:
			body = b
		default:
			body, err = json.Marshal(b)
			if err != nil {
				return nil, &RequestError{Cause: err, Details: "serializing request body"}
			}
			contentType = "application/json"
		}
	}

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return nil, &RequestError{Cause: err, Details: "building request"}
	}

	// Defaults first, per-call overrides second.
	for k, vv := range c.defaultHeaders {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	if opts != nil {
		for k, vv := range opts.Headers {
			req.Header.Del(k)
			for _, v := range vv {
				req.Header.Add(k, v)
			}
		}
	}
	if body != nil && req.Header.Get("Content-Type") == "" {
		if contentType == "" {
			contentType = "application/json"
		}
		req.Header.Set("Content-Type", contentType)
	}
	if !c.apiKey.IsZero() {
		req.Header.Set("Authorization", "Bearer "+c.apiKey.Value())
	}
	if req.Header.Get(requestIDHeader) == "" {
		req.Header.Set(requestIDHeader, uuid.NewString())
	}

	return req, nil
}

// resolveURL resolves path against the client base URL, treating the base
// path as a prefix (so a base of https://host/api works with "/memories").
func (c *Client) resolveURL(path string) (*url.URL, error) {
	p := strings.TrimSpace(path)
	if p == "" {
		return nil, errors.New("empty path")
	}
	u, err := url.Parse(p)
	if err != nil {
		return nil, err
	}
	if u.IsAbs() {
		return u, nil
	}
	if strings.HasPrefix(u.Path, "/") {
		u2 := *u
		u2.Path = strings.TrimPrefix(u2.Path, "/")
		u = &u2
	}
	return c.baseURL.ResolveReference(u), nil
}

func encodeQuery(params []QueryParam) string {
	var b strings.Builder
	for i, p := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}
