package transport

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto"
)

// cachedEntry is a materialized successful GET response.
type cachedEntry struct {
	status int
	header http.Header
	body   []byte
}

// cachedTransport wraps a TransportFunc with a TTL-bounded in-memory cache
// for successful GET responses. Only plain JSON bodies are cached; NDJSON
// and text responses pass through untouched so streams are never
// materialized behind the consumer's back.
type cachedTransport struct {
	next  TransportFunc
	cache *ristretto.Cache
	ttl   time.Duration
}

func newCachedTransport(next TransportFunc, ttl time.Duration) (TransportFunc, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10_000,
		MaxCost:     32 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("membox: creating response cache: %w", err)
	}
	ct := &cachedTransport{next: next, cache: cache, ttl: ttl}
	return ct.roundTrip, nil
}

func (ct *cachedTransport) roundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return ct.next(req)
	}
	key := req.URL.String()

	if v, ok := ct.cache.Get(key); ok {
		entry := v.(*cachedEntry)
		return &http.Response{
			StatusCode: entry.status,
			Header:     entry.header.Clone(),
			Body:       io.NopCloser(bytes.NewReader(entry.body)),
			Request:    req,
		}, nil
	}

	resp, err := ct.next(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !cacheableContentType(resp.Header.Get("Content-Type")) {
		return resp, nil
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}
	entry := &cachedEntry{status: resp.StatusCode, header: resp.Header.Clone(), body: body}
	ct.cache.SetWithTTL(key, entry, int64(len(body))+1, ct.ttl)
	// Sets are buffered; flush so a follow-up request observes the entry.
	ct.cache.Wait()

	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp, nil
}

func cacheableContentType(ct string) bool {
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return false
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}
