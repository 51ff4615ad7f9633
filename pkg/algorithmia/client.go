package algorithmia

import (
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/algorithmia/pkg/cache"
	"github.com/matzehuels/algorithmia/pkg/requester"
)

// EnvAPIAddress overrides the default API address when no WithAPIAddress
// option is given.
const EnvAPIAddress = "ALGORITHMIA_API"

// DefaultCacheTTL is used by WithCache when ttl is 0.
const DefaultCacheTTL = 7 * 24 * time.Hour

// Client is the entry point to the service. It is safe for concurrent use.
type Client struct {
	req    *requester.Requester
	logger *log.Logger

	cache    cache.Cache
	cacheTTL time.Duration
	keyer    cache.Keyer
}

// Option configures a Client.
type Option func(*options)

type options struct {
	address    string
	httpClient *http.Client
	timeout    time.Duration
	maxRetries int
	logger     *log.Logger
	cache      cache.Cache
	cacheTTL   time.Duration
}

// WithAPIAddress sets the service base URL.
func WithAPIAddress(addr string) Option { return func(o *options) { o.address = addr } }

// WithHTTPClient sets the http.Client used for every call.
func WithHTTPClient(c *http.Client) Option { return func(o *options) { o.httpClient = c } }

// WithTimeout bounds a single call. Ignored when WithHTTPClient is used.
func WithTimeout(d time.Duration) Option { return func(o *options) { o.timeout = d } }

// WithMaxRetries sets how many times a call is retried after a transport
// failure. Service errors are never retried.
func WithMaxRetries(n int) Option { return func(o *options) { o.maxRetries = n } }

// WithLogger sets the logger for request and cache debug output.
func WithLogger(l *log.Logger) Option { return func(o *options) { o.logger = l } }

// WithCache enables the result cache for algorithms pinned to an exact
// version. A ttl of 0 uses DefaultCacheTTL.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(o *options) {
		o.cache = c
		o.cacheTTL = ttl
	}
}

// NewClient creates a client authenticating with apiKey. An empty key is
// allowed; calls are then sent without an Authorization header.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	o := options{address: os.Getenv(EnvAPIAddress)}
	for _, opt := range opts {
		opt(&o)
	}

	req, err := requester.New(requester.Config{
		APIAddress: o.address,
		APIKey:     apiKey,
		HTTPClient: o.httpClient,
		Timeout:    o.timeout,
		MaxRetries: o.maxRetries,
		Logger:     o.logger,
	})
	if err != nil {
		return nil, err
	}

	logger := o.logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	c := &Client{req: req, logger: logger}
	if o.cache != nil {
		c.cache = o.cache
		c.cacheTTL = o.cacheTTL
		if c.cacheTTL <= 0 {
			c.cacheTTL = DefaultCacheTTL
		}
		c.keyer = cache.NewScopedKeyer(cache.NewDefaultKeyer(), "acct:"+cache.Hash([]byte(apiKey))[:16]+":")
	}
	return c, nil
}

// Requester returns the underlying requester for calls not covered by the
// client API.
func (c *Client) Requester() *requester.Requester { return c.req }

// Algo returns a handle on the algorithm ref ("owner/name[/version]", with
// an optional "algo://" prefix). The reference is validated when the
// algorithm is called.
func (c *Client) Algo(ref string) *Algorithm { return newAlgorithm(c, ref) }

// Dir returns a handle on the data directory at uri.
func (c *Client) Dir(uri string) *DataDirectory {
	return &DataDirectory{DataObject: NewDataObject(c, uri)}
}

// File returns a handle on the data file at uri.
func (c *Client) File(uri string) *DataFile {
	return &DataFile{DataObject: NewDataObject(c, uri)}
}
