// Package membox is a Go client for the MemBox memory-storage API. It is
// organized as thin per-resource services (memories, search, connections,
// settings, ingest, tools) over one shared typed transport that owns request
// construction, timeout and cancellation, error classification, retry
// scheduling and NDJSON streaming. Most applications interact with this
// package by:
//  1. Creating a Client via New() (or from config.FromEnv())
//  2. Calling the resource accessors (Memories, Search, ...)
//  3. Branching on the typed transport errors with errors.As
package membox

import (
	"net/http"
	"time"

	"github.com/hupe1980/membox/config"
	"github.com/hupe1980/membox/connections"
	"github.com/hupe1980/membox/core"
	"github.com/hupe1980/membox/ingest"
	"github.com/hupe1980/membox/logging"
	"github.com/hupe1980/membox/memories"
	"github.com/hupe1980/membox/search"
	"github.com/hupe1980/membox/settings"
	"github.com/hupe1980/membox/tools"
	"github.com/hupe1980/membox/transport"
)

// namespaceHeader carries the namespace on every request.
const namespaceHeader = "X-Membox-Namespace"

// Options configures the membox client.
type Options struct {
	// APIKey authenticates every request (required).
	APIKey string

	// BaseURL is the API endpoint. Defaults to the hosted service.
	BaseURL string

	// Namespace partitions keys server-side. Defaults to "default".
	Namespace string

	// Timeout bounds each request attempt. Zero disables it.
	Timeout time.Duration

	// Retry configures the transport retry scheduler.
	Retry transport.RetryPolicy

	// Transport substitutes the round-trip function (tests, middleware).
	Transport transport.TransportFunc

	// DefaultHeaders are attached to every request.
	DefaultHeaders http.Header

	// Logger receives debug-level transport events. Defaults to NoOp.
	Logger logging.Logger

	// CacheTTL, when > 0, caches successful GET responses in memory.
	CacheTTL time.Duration

	// VerbatimErrorMessages keeps empty server error messages verbatim
	// instead of falling back to HTTP status text.
	VerbatimErrorMessages bool
}

// WithConfig applies a loaded config.Config onto the options.
func WithConfig(cfg config.Config) func(o *Options) {
	return func(o *Options) {
		o.APIKey = cfg.APIKey
		if cfg.BaseURL != "" {
			o.BaseURL = cfg.BaseURL
		}
		if cfg.Namespace != "" {
			o.Namespace = cfg.Namespace
		}
		o.Timeout = cfg.Timeout
		if cfg.RetryAttempts > 0 {
			o.Retry = transport.RetryPolicy{Attempts: cfg.RetryAttempts, Delay: cfg.RetryDelay}
		}
	}
}

// Client is the high-level façade aggregating the per-resource services over
// one shared transport. It holds no mutable state and is safe for concurrent
// use.
type Client struct {
	transport   *transport.Client
	memories    *memories.Service
	search      *search.Service
	connections *connections.Service
	settings    *settings.Service
	ingest      *ingest.Service
	tools       *tools.Service
}

// New creates a membox client. Configuration values are validated eagerly so
// a bad key, URL or namespace fails here rather than on first use.
func New(optFns ...func(o *Options)) (*Client, error) {
	opts := Options{
		BaseURL:   config.DefaultBaseURL,
		Namespace: core.DefaultNamespace.String(),
		Timeout:   30 * time.Second,
		Retry:     transport.DefaultRetryPolicy(),
		Logger:    logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	apiKey, err := core.NewAPIKey(opts.APIKey)
	if err != nil {
		return nil, err
	}
	baseURL, err := core.NewBaseURL(opts.BaseURL)
	if err != nil {
		return nil, err
	}
	namespace, err := core.NewNamespace(opts.Namespace)
	if err != nil {
		return nil, err
	}

	headers := make(http.Header, len(opts.DefaultHeaders)+1)
	for k, vv := range opts.DefaultHeaders {
		for _, v := range vv {
			headers.Add(k, v)
		}
	}
	headers.Set(namespaceHeader, namespace.String())

	tr, err := transport.NewClient(func(o *transport.Options) {
		o.BaseURL = baseURL
		o.APIKey = apiKey
		o.DefaultHeaders = headers
		o.Timeout = opts.Timeout
		o.Retry = opts.Retry
		o.Transport = opts.Transport
		o.Logger = opts.Logger
		o.CacheTTL = opts.CacheTTL
		o.VerbatimErrorMessages = opts.VerbatimErrorMessages
	})
	if err != nil {
		return nil, err
	}

	mem := memories.New(tr, opts.Logger)
	srch := search.New(tr)

	return &Client{
		transport:   tr,
		memories:    mem,
		search:      srch,
		connections: connections.New(tr),
		settings:    settings.New(tr),
		ingest:      ingest.New(tr),
		tools:       tools.New(mem, srch),
	}, nil
}

// Memories returns the memories resource service.
func (c *Client) Memories() *memories.Service { return c.memories }

// Search returns the search resource service.
func (c *Client) Search() *search.Service { return c.search }

// Connections returns the connections resource service.
func (c *Client) Connections() *connections.Service { return c.connections }

// Settings returns the settings resource service.
func (c *Client) Settings() *settings.Service { return c.settings }

// Ingest returns the ingest resource service.
func (c *Client) Ingest() *ingest.Service { return c.ingest }

// Tools returns the LLM tools service.
func (c *Client) Tools() *tools.Service { return c.tools }

// Transport exposes the underlying typed transport for callers that need raw
// access to endpoints this client does not wrap.
func (c *Client) Transport() *transport.Client { return c.transport }
