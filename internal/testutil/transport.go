package testutil

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
)

// Step is one scripted round-trip result: a response or an error.
type Step struct {
	Resp *http.Response
	Err  error
}

// ScriptedTransport replays canned steps in order and records every request
// it sees (including a copy of the body, which outlives the request). The
// last step repeats once the script is exhausted. The zero value is unusable;
// build with NewScript.
type ScriptedTransport struct {
	mu       sync.Mutex
	steps    []Step
	pos      int
	Requests []*http.Request
	Bodies   [][]byte
}

// NewScript builds a transport that replays the given steps.
func NewScript(steps ...Step) *ScriptedTransport {
	return &ScriptedTransport{steps: steps}
}

// Do is the transport function; assign it wherever a
// func(*http.Request) (*http.Response, error) is expected.
func (s *ScriptedTransport) Do(req *http.Request) (*http.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
		req.Body.Close()
	}
	s.Requests = append(s.Requests, req)
	s.Bodies = append(s.Bodies, body)

	if len(s.steps) == 0 {
		return nil, fmt.Errorf("testutil: no scripted steps")
	}
	step := s.steps[s.pos]
	if s.pos < len(s.steps)-1 {
		s.pos++
	}
	if step.Err != nil {
		return nil, step.Err
	}
	// Honor cancellation the way a real transport would.
	if err := req.Context().Err(); err != nil {
		return nil, err
	}
	return step.Resp, nil
}

// Calls returns how many round trips were attempted.
func (s *ScriptedTransport) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Requests)
}

// Respond builds a response step.
func Respond(resp *http.Response) Step { return Step{Resp: resp} }

// Fail builds an error step.
func Fail(err error) Step { return Step{Err: err} }

// JSONResponse builds an application/json response. Extra headers are
// optional key/value pairs.
func JSONResponse(status int, body string, kv ...string) *http.Response {
	h := http.Header{"Content-Type": {"application/json"}}
	for i := 0; i+1 < len(kv); i += 2 {
		h.Set(kv[i], kv[i+1])
	}
	return &http.Response{
		StatusCode: status,
		Header:     h,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

// NDJSONResponse builds an application/x-ndjson response from raw lines. The
// returned CountingReadCloser is shared with the response body so tests can
// assert on close counts.
func NDJSONResponse(status int, raw string) (*http.Response, *CountingReadCloser) {
	body := &CountingReadCloser{Reader: strings.NewReader(raw)}
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": {"application/x-ndjson"}},
		Body:       body,
	}, body
}

// EmptyResponse builds a bodiless response with no content type.
func EmptyResponse(status int) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{},
		Body:       io.NopCloser(bytes.NewReader(nil)),
	}
}

// CountingReadCloser counts Close calls; reads delegate to Reader.
type CountingReadCloser struct {
	Reader io.Reader
	closes atomic.Int32
}

// Read implements io.Reader.
func (c *CountingReadCloser) Read(p []byte) (int, error) { return c.Reader.Read(p) }

// Close implements io.Closer.
func (c *CountingReadCloser) Close() error {
	c.closes.Add(1)
	return nil
}

// Closes reports how many times Close was called.
func (c *CountingReadCloser) Closes() int { return int(c.closes.Load()) }

// FailingReader yields some bytes then a read error, for mid-stream failure
// tests.
type FailingReader struct {
	Data []byte
	Err  error
	pos  int
}

// Read implements io.Reader.
func (f *FailingReader) Read(p []byte) (int, error) {
	if f.pos >= len(f.Data) {
		return 0, f.Err
	}
	n := copy(p, f.Data[f.pos:])
	f.pos += n
	return n, nil
}
