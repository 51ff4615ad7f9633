package algorithmia

import (
	"testing"
	"time"

	"github.com/matzehuels/algorithmia/pkg/errors"
)

func TestDecodeAlgoResponse(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		kind   ResultKind
		result string
	}{
		{"json number", `{"result":6,"metadata":{"content_type":"json","duration":0.5}}`, ResultJSON, "6"},
		{"json object", `{"result":{"a":[1,2]},"metadata":{"content_type":"json"}}`, ResultJSON, `{"a":[1,2]}`},
		{"text", `{"result":"Hello foo","metadata":{"content_type":"text"}}`, ResultText, "Hello foo"},
		{"binary", `{"result":"AAEC/w==","metadata":{"content_type":"binary"}}`, ResultBinary, "\x00\x01\x02\xff"},
		{"integer", `{"result":6,"metadata":{"content_type":"integer"}}`, ResultJSON, "6"},
		{"float", `{"result":2.5,"metadata":{"content_type":"number"}}`, ResultJSON, "2.5"},
		{"boolean", `{"result":true,"metadata":{"content_type":"boolean"}}`, ResultJSON, "true"},
		{"object", `{"result":{"k":"v"},"metadata":{"content_type":"object"}}`, ResultJSON, `{"k":"v"}`},
		{"array", `{"result":[1,2],"metadata":{"content_type":"array"}}`, ResultJSON, "[1,2]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := decodeAlgoResponse([]byte(tt.body))
			if err != nil {
				t.Fatalf("decodeAlgoResponse() error: %v", err)
			}
			if resp.Result.Kind() != tt.kind || resp.Metadata.ContentType != tt.kind {
				t.Errorf("kind = %s, want %s", resp.Result.Kind(), tt.kind)
			}
			if got := resp.Result.String(); got != tt.result {
				t.Errorf("Result = %q, want %q", got, tt.result)
			}
		})
	}
}

func TestDecodeAlgoResponseIntegerKind(t *testing.T) {
	resp, err := decodeAlgoResponse([]byte(`{"result":6,"metadata":{"content_type":"integer"}}`))
	if err != nil {
		t.Fatalf("decodeAlgoResponse() error: %v", err)
	}
	if resp.Metadata.ContentType != ResultJSON {
		t.Errorf("ContentType = %s, want json", resp.Metadata.ContentType)
	}
	n, err := resp.Result.Int()
	if err != nil || n != 6 {
		t.Errorf("Int() = %d, %v; want 6", n, err)
	}
}

func TestDecodeAlgoResponseMetadata(t *testing.T) {
	resp, err := decodeAlgoResponse([]byte(`{"result":1,"metadata":{"content_type":"json","duration":1.25,"stdout":"hi\n"}}`))
	if err != nil {
		t.Fatal(err)
	}
	if resp.Metadata.Duration != 1250*time.Millisecond {
		t.Errorf("Duration = %v", resp.Metadata.Duration)
	}
	if resp.Metadata.Stdout != "hi\n" {
		t.Errorf("Stdout = %q", resp.Metadata.Stdout)
	}
}

func TestDecodeAlgoResponseErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `Hello`},
		{"unknown content type", `{"result":1,"metadata":{"content_type":"yaml"}}`},
		{"missing metadata", `{"result":1}`},
		{"text not a string", `{"result":1,"metadata":{"content_type":"text"}}`},
		{"bad base64", `{"result":"***","metadata":{"content_type":"binary"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeAlgoResponse([]byte(tt.body))
			if !errors.Is(err, errors.ErrCodeUnknown) {
				t.Errorf("error = %v, want UNKNOWN", err)
			}
		})
	}
}

func TestResultAccessors(t *testing.T) {
	r := JSONResult([]byte("6"))
	if n, err := r.Int(); err != nil || n != 6 {
		t.Errorf("Int() = %d, %v", n, err)
	}
	if f, err := r.Float(); err != nil || f != 6 {
		t.Errorf("Float() = %v, %v", f, err)
	}

	f := JSONResult([]byte("2.5"))
	if _, err := f.Int(); err == nil {
		t.Error("Int() of 2.5 should fail")
	}
	if v, err := f.Float(); err != nil || v != 2.5 {
		t.Errorf("Float() = %v, %v", v, err)
	}

	for _, r := range []Result{JSONResult([]byte(`"6"`)), TextResult("6"), BinaryResult([]byte("6"))} {
		if _, err := r.Int(); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("%s Int() error = %v, want INVALID_INPUT", r.Kind(), err)
		}
	}

	var v any
	if err := TextResult("x").Decode(&v); err == nil {
		t.Error("Decode() of text result should fail")
	}

	b := BinaryResult([]byte{0, 1})
	if string(b.Bytes()) != "\x00\x01" || b.Raw() != nil {
		t.Errorf("binary accessors: %v %v", b.Bytes(), b.Raw())
	}
	if string(TextResult("abc").Bytes()) != "abc" {
		t.Error("TextResult.Bytes() mismatch")
	}
}
