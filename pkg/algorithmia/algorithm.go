package algorithmia

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/matzehuels/algorithmia/pkg/errors"
	"github.com/matzehuels/algorithmia/pkg/observability"
	"github.com/matzehuels/algorithmia/pkg/requester"
)

// OutputMode selects how the service returns an algorithm result.
type OutputMode string

const (
	// OutputDefault wraps the result in a JSON envelope with metadata.
	OutputDefault OutputMode = ""
	// OutputRaw returns the result body without the envelope.
	OutputRaw OutputMode = "raw"
	// OutputVoid starts the call and returns immediately.
	OutputVoid OutputMode = "void"
)

// PipeOption sets a query parameter on an algorithm call.
type PipeOption func(url.Values)

// WithAlgoTimeout asks the service to stop the algorithm after seconds.
func WithAlgoTimeout(seconds int) PipeOption {
	return func(q url.Values) { q.Set("timeout", strconv.Itoa(seconds)) }
}

// WithStdout asks the service to include the algorithm's stdout in the
// response metadata. Only honoured for algorithms owned by the caller.
func WithStdout(enabled bool) PipeOption {
	return func(q url.Values) { q.Set("stdout", strconv.FormatBool(enabled)) }
}

// WithOutput selects the output mode.
func WithOutput(mode OutputMode) PipeOption {
	return func(q url.Values) {
		if mode == OutputDefault {
			q.Del("output")
			return
		}
		q.Set("output", string(mode))
	}
}

var exactVersion = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// Algorithm is a handle on one algorithm of the service.
type Algorithm struct {
	client *Client
	ref    string
}

func newAlgorithm(c *Client, ref string) *Algorithm {
	return &Algorithm{client: c, ref: strings.TrimPrefix(ref, "algo://")}
}

// Ref returns the reference without the "algo://" prefix.
func (a *Algorithm) Ref() string { return a.ref }

// Path returns the REST path of the algorithm.
func (a *Algorithm) Path() string { return "/v1/algo/" + a.ref }

// Pinned reports whether the reference names an exact published version.
func (a *Algorithm) Pinned() bool {
	parts := strings.Split(a.ref, "/")
	return len(parts) == 3 && exactVersion.MatchString(parts[2])
}

// Pipe calls the algorithm with input. Strings are sent as text, []byte and
// io.Reader values as binary and everything else as JSON. Use
// json.RawMessage or PipeJSON to send JSON that is already encoded.
//
// With OutputVoid only the Async field of the response is set.
func (a *Algorithm) Pipe(ctx context.Context, input any, opts ...PipeOption) (*AlgoResponse, error) {
	body, contentType, err := encodeInput(input)
	if err != nil {
		return nil, err
	}
	return a.pipe(ctx, body, contentType, opts)
}

// PipeJSON calls the algorithm with an encoded JSON document.
func (a *Algorithm) PipeJSON(ctx context.Context, jsonText string, opts ...PipeOption) (*AlgoResponse, error) {
	if !gjson.Valid(jsonText) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "input is not valid json")
	}
	return a.pipe(ctx, json.RawMessage(jsonText), requester.ContentTypeJSON, opts)
}

// PipeAsync starts the algorithm without waiting for its result.
func (a *Algorithm) PipeAsync(ctx context.Context, input any, opts ...PipeOption) (*AsyncResponse, error) {
	if err := errors.ValidateAlgorithmRef(a.ref); err != nil {
		return nil, err
	}
	body, contentType, err := encodeInput(input)
	if err != nil {
		return nil, err
	}
	return a.async(ctx, body, contentType, buildQuery(append(opts, WithOutput(OutputVoid))))
}

func (a *Algorithm) async(ctx context.Context, body any, contentType string, query url.Values) (*AsyncResponse, error) {
	resp, err := a.client.req.Post(ctx, a.Path(), body, query, map[string]string{"Content-Type": contentType})
	if err != nil {
		return nil, err
	}
	var ack AsyncResponse
	if err := resp.Decode(&ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

func (a *Algorithm) pipe(ctx context.Context, body any, contentType string, opts []PipeOption) (*AlgoResponse, error) {
	if err := errors.ValidateAlgorithmRef(a.ref); err != nil {
		return nil, err
	}
	query := buildQuery(opts)
	if query.Get("output") == string(OutputVoid) {
		ack, err := a.async(ctx, body, contentType, query)
		if err != nil {
			return nil, err
		}
		return &AlgoResponse{Async: ack}, nil
	}

	hooks := observability.Algorithm()
	hooks.OnPipeStart(ctx, a.ref, inputKind(contentType))
	start := time.Now()

	resp, err := a.call(ctx, body, contentType, query)

	resultType := ""
	if resp != nil {
		resultType = string(resp.Metadata.ContentType)
	}
	hooks.OnPipeComplete(ctx, a.ref, resultType, time.Since(start), err)
	return resp, err
}

func (a *Algorithm) call(ctx context.Context, body any, contentType string, query url.Values) (*AlgoResponse, error) {
	raw := query.Get("output") == string(OutputRaw)

	var key string
	if a.cacheable(raw) {
		if input, ok := inputBytes(body); ok {
			key = a.client.keyer.AlgoKey(a.ref+"?"+query.Encode(), contentType, input)
			if resp, ok := a.cached(ctx, key); ok {
				return resp, nil
			}
		}
	}

	res, err := a.client.req.Post(ctx, a.Path(), body, query, map[string]string{"Content-Type": contentType})
	if err != nil {
		return nil, err
	}

	if raw {
		return rawResponse(res), nil
	}
	resp, err := decodeAlgoResponse(res.Body)
	if err != nil {
		return nil, err
	}

	if key != "" {
		if err := a.client.cache.Set(ctx, key, res.Body, a.client.cacheTTL); err != nil {
			a.client.logger.Warn("cache write failed", "algorithm", a.ref, "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "algo", len(res.Body))
		}
	}
	return resp, nil
}

func (a *Algorithm) cacheable(raw bool) bool {
	return a.client.cache != nil && !raw && a.Pinned()
}

func (a *Algorithm) cached(ctx context.Context, key string) (*AlgoResponse, bool) {
	data, hit, err := a.client.cache.Get(ctx, key)
	if err != nil {
		a.client.logger.Warn("cache read failed", "algorithm", a.ref, "err", err)
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, "algo")
		return nil, false
	}
	resp, err := decodeAlgoResponse(data)
	if err != nil {
		_ = a.client.cache.Delete(ctx, key)
		observability.Cache().OnCacheMiss(ctx, "algo")
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, "algo")
	a.client.logger.Debug("cache hit", "algorithm", a.ref)
	resp.Cached = true
	return resp, true
}

func buildQuery(opts []PipeOption) url.Values {
	q := url.Values{}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// encodeInput picks the content type for input and, except for readers,
// encodes it to bytes so that the call can be cached and retried.
func encodeInput(input any) (any, string, error) {
	switch v := input.(type) {
	case string:
		return []byte(v), requester.ContentTypeText, nil
	case []byte:
		return v, requester.ContentTypeBinary, nil
	case json.RawMessage:
		if !json.Valid(v) {
			return nil, "", errors.New(errors.ErrCodeInvalidInput, "input is not valid json")
		}
		return v, requester.ContentTypeJSON, nil
	case io.Reader:
		return v, requester.ContentTypeBinary, nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, "", errors.Wrap(errors.ErrCodeInvalidInput, err, "encode input")
		}
		return json.RawMessage(data), requester.ContentTypeJSON, nil
	}
}

// inputBytes returns the encoded input. Readers have no stable bytes and
// are never cached.
func inputBytes(body any) ([]byte, bool) {
	switch v := body.(type) {
	case []byte:
		return v, true
	case json.RawMessage:
		return v, true
	default:
		return nil, false
	}
}

func inputKind(contentType string) string {
	switch contentType {
	case requester.ContentTypeText:
		return string(ResultText)
	case requester.ContentTypeBinary:
		return string(ResultBinary)
	default:
		return string(ResultJSON)
	}
}

// rawResponse wraps an unenveloped body. Text and JSON media types become
// text results; anything else is kept as bytes.
func rawResponse(res *requester.Response) *AlgoResponse {
	mt, _, _ := mime.ParseMediaType(res.ContentType())
	var r Result
	switch {
	case strings.HasPrefix(mt, "text/"), mt == requester.ContentTypeJSON:
		r = TextResult(res.Text())
	default:
		r = BinaryResult(res.Body)
	}
	return &AlgoResponse{Result: r, Metadata: Metadata{ContentType: r.Kind()}}
}
