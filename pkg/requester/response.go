package requester

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/matzehuels/algorithmia/pkg/errors"
)

// Response is a successfully classified service response. The body is read
// in full before classification.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// IsEmpty reports whether the response carried no body.
func (r *Response) IsEmpty() bool {
	return len(bytes.TrimSpace(r.Body)) == 0
}

// ContentType returns the Content-Type header of the response.
func (r *Response) ContentType() string {
	return r.Header.Get(headerContentType)
}

// Text returns the body as a string.
func (r *Response) Text() string {
	return string(r.Body)
}

// JSON returns the body as a JSON object. ok is false when the body is not
// a JSON object.
func (r *Response) JSON() (obj map[string]any, ok bool) {
	if !r.isObject() {
		return nil, false
	}
	if err := json.Unmarshal(r.Body, &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return errors.FromResponse(errors.ErrCodeUnknown, "decode response: "+err.Error(), r.StatusCode, r.Header, r.Body)
	}
	return nil
}

func (r *Response) isObject() bool {
	return gjson.ValidBytes(r.Body) && gjson.ParseBytes(r.Body).IsObject()
}
