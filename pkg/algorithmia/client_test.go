package algorithmia

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/matzehuels/algorithmia/internal/fakeapi"
	"github.com/matzehuels/algorithmia/pkg/errors"
	"github.com/matzehuels/algorithmia/pkg/requester"
)

const testKey = "simXXXXXXXXXXXXXXXXXXXXXXXXXX"

// newTestClient starts a fake API and returns a client pointed at it.
func newTestClient(t *testing.T, opts ...Option) (*Client, *fakeapi.Server) {
	t.Helper()
	srv := fakeapi.New(testKey)
	t.Cleanup(srv.Close)

	c, err := NewClient(testKey, append([]Option{WithAPIAddress(srv.URL)}, opts...)...)
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	return c, srv
}

func TestNewClient(t *testing.T) {
	t.Setenv(EnvAPIAddress, "")

	c, err := NewClient(testKey)
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	if got := c.Requester().BaseURL(); got != requester.DefaultAPIAddress {
		t.Errorf("BaseURL() = %q, want %q", got, requester.DefaultAPIAddress)
	}
	if got := c.Requester().DefaultHeaders()["Authorization"]; got != testKey {
		t.Errorf("Authorization = %q, want %q", got, testKey)
	}
}

func TestNewClientEnvAddress(t *testing.T) {
	t.Setenv(EnvAPIAddress, "https://api.test.algorithmia.com/")

	c, err := NewClient(testKey)
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	if got := c.Requester().BaseURL(); got != "https://api.test.algorithmia.com" {
		t.Errorf("BaseURL() = %q", got)
	}

	// An explicit option wins over the environment.
	c, err = NewClient(testKey, WithAPIAddress("http://localhost:8080"))
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	if got := c.Requester().BaseURL(); got != "http://localhost:8080" {
		t.Errorf("BaseURL() = %q", got)
	}
}

func TestNewClientInvalidAddress(t *testing.T) {
	_, err := NewClient(testKey, WithAPIAddress("ftp://example.com"))
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("NewClient() error = %v, want INVALID_INPUT", err)
	}
}

func TestNewClientWithoutKey(t *testing.T) {
	srv := fakeapi.New(testKey)
	defer srv.Close()

	c, err := NewClient("", WithAPIAddress(srv.URL))
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	if _, ok := c.Requester().DefaultHeaders()["Authorization"]; ok {
		t.Error("Authorization header set without an API key")
	}

	_, err = c.Algo(fakeapi.AlgoHello).Pipe(context.Background(), "foo")
	if !errors.Is(err, errors.ErrCodeUnauthorized) {
		t.Fatalf("Pipe() error = %v, want UNAUTHORIZED", err)
	}
	if msg := errors.UserMessage(err); msg != errors.MsgUnauthorized {
		t.Errorf("UserMessage() = %q", msg)
	}
}

func TestClientHTTPClientOption(t *testing.T) {
	srv := fakeapi.New(testKey)
	defer srv.Close()

	rt := &countingTransport{next: http.DefaultTransport}
	c, err := NewClient(testKey,
		WithAPIAddress(srv.URL),
		WithHTTPClient(&http.Client{Transport: rt, Timeout: 10 * time.Second}))
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	if _, err := c.Algo(fakeapi.AlgoHello).Pipe(context.Background(), "foo"); err != nil {
		t.Fatalf("Pipe() error: %v", err)
	}
	if rt.n != 1 {
		t.Errorf("transport used %d times, want 1", rt.n)
	}
}

type countingTransport struct {
	next http.RoundTripper
	n    int
}

func (c *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c.n++
	return c.next.RoundTrip(req)
}
