package requester

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"maps"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/algorithmia/pkg/errors"
	"github.com/matzehuels/algorithmia/pkg/observability"
)

const (
	// DefaultAPIAddress is the public Algorithmia API.
	DefaultAPIAddress = "https://api.algorithmia.com"

	// UserAgent identifies this client to the service.
	UserAgent = "Algorithmia Go Client"

	// DefaultTimeout bounds a single call when no http.Client is supplied.
	// Algorithm calls can legitimately run for minutes.
	DefaultTimeout = 5 * time.Minute
)

// Content types understood by the service.
const (
	ContentTypeJSON   = "application/json"
	ContentTypeText   = "text/plain"
	ContentTypeBinary = "application/octet-stream"
)

const (
	headerContentType   = "Content-Type"
	headerUserAgent     = "User-Agent"
	headerAuthorization = "Authorization"
)

// Config holds the fixed settings of a Requester.
type Config struct {
	// APIAddress is the service base URL. Defaults to DefaultAPIAddress.
	APIAddress string

	// APIKey is sent as the Authorization header when non-empty.
	APIKey string

	// HTTPClient performs the calls. Defaults to a client with Timeout.
	HTTPClient *http.Client

	// Timeout applies to the default client only.
	Timeout time.Duration

	// MaxRetries is the number of extra attempts after a transport failure.
	// Responses from the service are never retried.
	MaxRetries int

	// Logger receives one debug line per call. Defaults to a discarding logger.
	Logger *log.Logger
}

// Requester performs HTTP calls against the service and classifies responses.
type Requester struct {
	base       *url.URL
	http       *http.Client
	headers    map[string]string
	maxRetries int
	logger     *log.Logger
}

// New creates a Requester from cfg. The configuration is copied; later
// changes to cfg have no effect.
func New(cfg Config) (*Requester, error) {
	addr := cfg.APIAddress
	if addr == "" {
		addr = DefaultAPIAddress
	}
	if err := errors.ValidateURL(addr); err != nil {
		return nil, err
	}
	base, err := url.Parse(strings.TrimRight(addr, "/"))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse api address %q", addr)
	}

	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	headers := map[string]string{
		headerContentType: ContentTypeJSON,
		headerUserAgent:   UserAgent,
	}
	if cfg.APIKey != "" {
		headers[headerAuthorization] = cfg.APIKey
	}

	return &Requester{
		base:       base,
		http:       client,
		headers:    headers,
		maxRetries: max(cfg.MaxRetries, 0),
		logger:     logger,
	}, nil
}

// BaseURL returns the service base address.
func (r *Requester) BaseURL() string { return r.base.String() }

// DefaultHeaders returns a copy of the headers sent with every call.
func (r *Requester) DefaultHeaders() map[string]string { return maps.Clone(r.headers) }

// Get performs a GET request. Content-Type is never sent.
func (r *Requester) Get(ctx context.Context, endpoint string, query url.Values, headers map[string]string) (*Response, error) {
	h := r.mergeHeaders(headers)
	delete(h, headerContentType)
	return r.do(ctx, http.MethodGet, endpoint, query, h, nil)
}

// Post performs a POST request with body encoded according to the merged
// Content-Type.
func (r *Requester) Post(ctx context.Context, endpoint string, body any, query url.Values, headers map[string]string) (*Response, error) {
	return r.send(ctx, http.MethodPost, endpoint, body, query, headers)
}

// Put performs a PUT request with body encoded according to the merged
// Content-Type.
func (r *Requester) Put(ctx context.Context, endpoint string, body any, query url.Values, headers map[string]string) (*Response, error) {
	return r.send(ctx, http.MethodPut, endpoint, body, query, headers)
}

// Head performs a HEAD request with the default headers minus Content-Type.
func (r *Requester) Head(ctx context.Context, endpoint string) (*Response, error) {
	h := r.mergeHeaders(nil)
	delete(h, headerContentType)
	return r.do(ctx, http.MethodHead, endpoint, nil, h, nil)
}

// Delete performs a DELETE request with the default headers.
func (r *Requester) Delete(ctx context.Context, endpoint string, query url.Values) (*Response, error) {
	return r.do(ctx, http.MethodDelete, endpoint, query, r.mergeHeaders(nil), nil)
}

func (r *Requester) send(ctx context.Context, method, endpoint string, body any, query url.Values, headers map[string]string) (*Response, error) {
	h := r.mergeHeaders(headers)
	p, err := encodeBody(body, h[headerContentType])
	if err != nil {
		return nil, err
	}
	return r.do(ctx, method, endpoint, query, h, p)
}

// mergeHeaders returns the defaults overridden by headers. Keys are
// canonicalised so that overrides match regardless of case.
func (r *Requester) mergeHeaders(headers map[string]string) map[string]string {
	merged := maps.Clone(r.headers)
	for k, v := range headers {
		merged[http.CanonicalHeaderKey(k)] = v
	}
	return merged
}

// payload is an encoded request body. A reader-backed payload can only be
// sent once.
type payload struct {
	data   []byte
	reader io.Reader
}

func (p *payload) replayable() bool { return p == nil || p.reader == nil }

func (p *payload) open() io.Reader {
	switch {
	case p == nil:
		return nil
	case p.reader != nil:
		return p.reader
	default:
		return bytes.NewReader(p.data)
	}
}

func encodeBody(body any, contentType string) (*payload, error) {
	if contentType == ContentTypeJSON {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "encode json body")
		}
		return &payload{data: data}, nil
	}

	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return &payload{data: b}, nil
	case string:
		return &payload{data: []byte(b)}, nil
	case io.Reader:
		return &payload{reader: b}, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "cannot send %T as %s", body, contentType)
	}
}

func (r *Requester) url(endpoint string, query url.Values) string {
	u := *r.base
	u.Path = r.base.Path + "/" + strings.TrimLeft(endpoint, "/")
	u.RawQuery = query.Encode()
	return u.String()
}

func (r *Requester) do(ctx context.Context, method, endpoint string, query url.Values, headers map[string]string, body *payload) (*Response, error) {
	target := r.url(endpoint, query)
	hooks := observability.HTTP()
	id := uuid.NewString()

	var resp *Response
	attempt := func() error {
		req, err := http.NewRequestWithContext(ctx, method, target, body.open())
		if err != nil {
			return backoff.Permanent(errors.Wrap(errors.ErrCodeInvalidInput, err, "build %s %s", method, endpoint))
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		hooks.OnRequest(ctx, method, r.base.Host, endpoint)
		start := time.Now()
		res, err := r.http.Do(req)
		if err != nil {
			hooks.OnError(ctx, method, r.base.Host, endpoint, err)
			r.logger.Debug("request failed", "id", id, "method", method, "path", endpoint, "err", err)
			return r.transportError(method, endpoint, err, body)
		}
		defer res.Body.Close()

		data, err := io.ReadAll(res.Body)
		if err != nil {
			hooks.OnError(ctx, method, r.base.Host, endpoint, err)
			return r.transportError(method, endpoint, err, body)
		}

		elapsed := time.Since(start)
		hooks.OnResponse(ctx, method, r.base.Host, endpoint, res.StatusCode, elapsed)
		r.logger.Debug("request", "id", id, "method", method, "path", endpoint,
			"status", res.StatusCode, "bytes", len(data), "duration", elapsed.Round(time.Millisecond))

		resp = &Response{StatusCode: res.StatusCode, Header: res.Header, Body: data}
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(r.maxRetries)), ctx)
	if err := backoff.Retry(attempt, policy); err != nil {
		if _, ok := err.(*errors.Error); !ok {
			err = errors.Wrap(errors.ErrCodeNetwork, err, "%s %s", method, endpoint)
		}
		return nil, err
	}

	if err := classify(resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// transportError wraps a transport failure. Calls whose body cannot be
// replayed are not retried.
func (r *Requester) transportError(method, endpoint string, err error, body *payload) error {
	wrapped := errors.Wrap(errors.ErrCodeNetwork, err, "%s %s", method, endpoint)
	if !body.replayable() {
		return backoff.Permanent(wrapped)
	}
	return wrapped
}
