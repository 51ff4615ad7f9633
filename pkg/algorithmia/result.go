package algorithmia

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/tidwall/gjson"

	"github.com/matzehuels/algorithmia/pkg/errors"
)

// ResultKind is the content type of an algorithm result as reported in the
// response metadata.
type ResultKind string

const (
	ResultJSON   ResultKind = "json"
	ResultText   ResultKind = "text"
	ResultBinary ResultKind = "binary"
)

// Result holds the output of an algorithm call. Exactly one representation
// is populated, selected by Kind.
type Result struct {
	kind ResultKind
	raw  json.RawMessage
	text string
	data []byte
}

// JSONResult wraps an encoded JSON value.
func JSONResult(raw json.RawMessage) Result { return Result{kind: ResultJSON, raw: raw} }

// TextResult wraps a text value.
func TextResult(s string) Result { return Result{kind: ResultText, text: s} }

// BinaryResult wraps raw bytes.
func BinaryResult(b []byte) Result { return Result{kind: ResultBinary, data: b} }

// Kind returns the result content type.
func (r Result) Kind() ResultKind { return r.kind }

// Raw returns the encoded JSON value, or nil for text and binary results.
func (r Result) Raw() json.RawMessage { return r.raw }

// String returns a text result as is, a JSON result in its encoded form and
// a binary result as a byte string.
func (r Result) String() string {
	switch r.kind {
	case ResultText:
		return r.text
	case ResultBinary:
		return string(r.data)
	default:
		return string(r.raw)
	}
}

// Bytes returns the exact bytes of a binary result. Text and JSON results are
// returned in their string form.
func (r Result) Bytes() []byte {
	if r.kind == ResultBinary {
		return r.data
	}
	return []byte(r.String())
}

// Int returns a JSON number result as an integer.
func (r Result) Int() (int64, error) {
	if err := r.number(); err != nil {
		return 0, err
	}
	var n int64
	if err := json.Unmarshal(r.raw, &n); err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "result %s is not an integer", r.raw)
	}
	return n, nil
}

// Float returns a JSON number result as a float.
func (r Result) Float() (float64, error) {
	if err := r.number(); err != nil {
		return 0, err
	}
	return gjson.ParseBytes(r.raw).Float(), nil
}

// Decode unmarshals a JSON result into v.
func (r Result) Decode(v any) error {
	if r.kind != ResultJSON {
		return errors.New(errors.ErrCodeInvalidInput, "cannot decode %s result as json", r.kind)
	}
	if err := json.Unmarshal(r.raw, v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode result")
	}
	return nil
}

func (r Result) number() error {
	if r.kind != ResultJSON || gjson.ParseBytes(r.raw).Type != gjson.Number {
		return errors.New(errors.ErrCodeInvalidInput, "result is not a number")
	}
	return nil
}

// Metadata describes an algorithm call as reported by the service.
type Metadata struct {
	ContentType ResultKind
	Duration    time.Duration
	Stdout      string
}

// AlgoResponse is the decoded response of a synchronous algorithm call.
type AlgoResponse struct {
	Result   Result
	Metadata Metadata

	// Async is set instead of Result for calls made with OutputVoid.
	Async *AsyncResponse

	// Cached is true when the response was served from the result cache.
	Cached bool
}

// AsyncResponse acknowledges a call made with OutputVoid.
type AsyncResponse struct {
	AsyncProtocol string `json:"async"`
	RequestID     string `json:"request_id"`
}

type envelope struct {
	Result   json.RawMessage `json:"result"`
	Metadata struct {
		ContentType string  `json:"content_type"`
		Duration    float64 `json:"duration"`
		Stdout      string  `json:"stdout"`
	} `json:"metadata"`
}

// decodeAlgoResponse turns a response body into an AlgoResponse.
func decodeAlgoResponse(body []byte) (*AlgoResponse, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnknown, err, "decode algorithm response")
	}

	kind, ok := resultKind(env.Metadata.ContentType)
	if !ok {
		return nil, errors.New(errors.ErrCodeUnknown, "unknown result content type %q", env.Metadata.ContentType)
	}
	resp := &AlgoResponse{
		Metadata: Metadata{
			ContentType: kind,
			Duration:    time.Duration(env.Metadata.Duration * float64(time.Second)),
			Stdout:      env.Metadata.Stdout,
		},
	}

	switch kind {
	case ResultJSON:
		resp.Result = JSONResult(env.Result)
	case ResultText:
		var s string
		if err := json.Unmarshal(env.Result, &s); err != nil {
			return nil, errors.Wrap(errors.ErrCodeUnknown, err, "decode text result")
		}
		resp.Result = TextResult(s)
	case ResultBinary:
		var s string
		if err := json.Unmarshal(env.Result, &s); err != nil {
			return nil, errors.Wrap(errors.ErrCodeUnknown, err, "decode binary result")
		}
		data, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeUnknown, err, "decode binary result")
		}
		resp.Result = BinaryResult(data)
	}
	return resp, nil
}

// resultKind maps a reported content type to a ResultKind. Algorithms
// returning numbers or structures may report the JSON type of the value
// instead of "json"; those are all JSON results.
func resultKind(contentType string) (ResultKind, bool) {
	switch contentType {
	case "json", "integer", "int", "long", "number", "float", "double",
		"boolean", "bool", "object", "array", "map", "list", "null":
		return ResultJSON, true
	case "text", "string":
		return ResultText, true
	case "binary":
		return ResultBinary, true
	default:
		return "", false
	}
}
