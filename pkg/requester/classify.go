package requester

import (
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/matzehuels/algorithmia/pkg/errors"
)

// classify turns a response into nil (success) or an *errors.Error.
func classify(resp *Response) error {
	status := resp.StatusCode
	if status >= 200 && status < 300 {
		if resp.isObject() && isSet(gjson.GetBytes(resp.Body, "error")) {
			return classifyMessage(resp)
		}
		return nil
	}

	if resp.IsEmpty() {
		return emptyBodyError(resp)
	}

	switch status {
	case http.StatusUnauthorized:
		return statusError(errors.ErrCodeUnauthorized, resp)
	case http.StatusBadRequest:
		return classifyMessage(resp)
	case http.StatusNotFound:
		return statusError(errors.ErrCodeNotFound, resp)
	case http.StatusInternalServerError:
		// A stack trace means the algorithm itself failed, not the service.
		if _, _, hasTrace, ok := errorFields(resp.Body); ok && hasTrace {
			return classifyMessage(resp)
		}
		return statusError(errors.ErrCodeInternalServer, resp)
	default:
		return classifyMessage(resp)
	}
}

// classifyMessage classifies by the service's error message text.
func classifyMessage(resp *Response) error {
	msg, trace, hasTrace, ok := errorFields(resp.Body)
	if !ok {
		return malformed(resp)
	}
	if code, userMsg, known := errors.CodeForMessage(msg); known {
		return fromResponse(code, userMsg, resp)
	}
	if hasTrace {
		msg = fmt.Sprintf("message: %s stacktrace: %s", msg, trace)
	}
	return fromResponse(errors.ErrCodeUnknown, msg, resp)
}

// statusError reports code with the service's message.
func statusError(code errors.Code, resp *Response) error {
	msg, _, _, ok := errorFields(resp.Body)
	if !ok {
		return malformed(resp)
	}
	return fromResponse(code, msg, resp)
}

func emptyBodyError(resp *Response) error {
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fromResponse(errors.ErrCodeUnauthorized, errors.MsgUnauthorized, resp)
	case http.StatusBadRequest:
		return fromResponse(errors.ErrCodeNotFound, errors.MsgInvalidRequest, resp)
	case http.StatusNotFound:
		return fromResponse(errors.ErrCodeNotFound, errors.MsgNotFound, resp)
	case http.StatusInternalServerError:
		return fromResponse(errors.ErrCodeInternalServer, errors.MsgInternalServer, resp)
	default:
		return fromResponse(errors.ErrCodeUnknown, errors.MsgUnknown, resp)
	}
}

func malformed(resp *Response) error {
	return fromResponse(errors.ErrCodeUnknown,
		fmt.Sprintf("malformed error response (HTTP %d)", resp.StatusCode), resp)
}

func fromResponse(code errors.Code, msg string, resp *Response) error {
	return errors.FromResponse(code, msg, resp.StatusCode, resp.Header, resp.Body)
}

// errorFields extracts error.message and error.stacktrace from a JSON body.
// ok is false when the body is not JSON or has no message.
func errorFields(body []byte) (msg, trace string, hasTrace, ok bool) {
	if !gjson.ValidBytes(body) {
		return "", "", false, false
	}
	m := gjson.GetBytes(body, "error.message")
	if !isSet(m) {
		return "", "", false, false
	}
	t := gjson.GetBytes(body, "error.stacktrace")
	return m.String(), t.String(), isSet(t), true
}

// isSet reports whether a JSON value is present and neither null nor false.
func isSet(v gjson.Result) bool {
	return v.Exists() && v.Type != gjson.Null && v.Type != gjson.False
}
