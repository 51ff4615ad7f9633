package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/algorithmia/internal/fakeapi"
	"github.com/matzehuels/algorithmia/pkg/cache"
	"github.com/matzehuels/algorithmia/pkg/errors"
)

const testKey = "simCLITESTKEY0000"

type harness struct {
	t      *testing.T
	srv    *fakeapi.Server
	config string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	srv := fakeapi.New(testKey)
	t.Cleanup(srv.Close)
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	return &harness{
		t:      t,
		srv:    srv,
		config: filepath.Join(t.TempDir(), "config.toml"),
	}
}

// run executes the CLI with the fake API and returns stdout and stderr.
func (h *harness) run(stdin io.Reader, args ...string) (string, string, error) {
	h.t.Helper()
	var stdout, stderr bytes.Buffer

	c := New(&stderr, LogInfo)
	c.getenv = func(string) string { return "" }
	root := c.RootCommand()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	if stdin != nil {
		root.SetIn(stdin)
	}
	root.SetArgs(append([]string{
		"--api-key", testKey,
		"--api-address", h.srv.URL,
		"--config", h.config,
	}, args...))

	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestRootCommand(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()

	want := []string{"run", "data", "cache", "config", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	for _, flag := range []string{"api-key", "api-address", "profile", "config", "no-cache", "redis", "retries"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("global flag --%s not registered", flag)
		}
	}
}

func TestRunCommand(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{"json", "", []string{"run", fakeapi.AlgoAddOne, "5"}, "6\n"},
		{"text", "", []string{"run", fakeapi.AlgoHello, "foo"}, "Hello foo\n"},
		{"forced text", "", []string{"run", "--text", fakeapi.AlgoHello, "5"}, "Hello 5\n"},
		{"stdin", "HAL", []string{"run", fakeapi.AlgoHello, "-"}, "Hello HAL\n"},
		{"algo prefix", "", []string{"run", "algo://" + fakeapi.AlgoAddOne, "41"}, "42\n"},
		{"raw", "", []string{"run", "--raw", fakeapi.AlgoHello, "raw"}, "Hello raw\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdin io.Reader
			if tt.stdin != "" {
				stdin = strings.NewReader(tt.stdin)
			}
			out, _, err := h.run(stdin, tt.args...)
			if err != nil {
				t.Fatalf("run error: %v", err)
			}
			if out != tt.want {
				t.Errorf("stdout = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestRunCommandBinaryFile(t *testing.T) {
	h := newHarness(t)
	dir := t.TempDir()

	in := filepath.Join(dir, "in.bin")
	content := []byte{0x00, 0x01, 0xfe, 0xff, '\n'}
	if err := os.WriteFile(in, content, 0644); err != nil {
		t.Fatal(err)
	}
	outPath := filepath.Join(dir, "out.bin")

	_, stderr, err := h.run(nil, "run", fakeapi.AlgoEcho, "--file", in, "-o", outPath)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	got, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("output file = %v, want %v", got, content)
	}
	if !strings.Contains(stderr, "binary") {
		t.Errorf("stderr should report the result type: %q", stderr)
	}
	if !strings.Contains(stderr, cache.Hash(content)) {
		t.Errorf("stderr should report the sha256 of the result: %q", stderr)
	}
}

func TestRunCommandErrors(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"invalid reference", []string{"run", "nope", "1"}, errors.ErrCodeInvalidInput},
		{"no input", []string{"run", fakeapi.AlgoHello}, errors.ErrCodeInvalidInput},
		{"invalid json", []string{"run", "--json", fakeapi.AlgoAddOne, "{"}, errors.ErrCodeInvalidInput},
		{"unknown algorithm", []string{"run", "nobody/Nothing", "1"}, errors.ErrCodeNotFound},
		{"unparseable input", []string{"run", fakeapi.AlgoAddOne, "five"}, errors.ErrCodeJSONParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := h.run(nil, tt.args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestRunCommandAsync(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.run(nil, "run", "--async", fakeapi.AlgoHello, "foo")
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if !strings.Contains(out, "request id") {
		t.Errorf("stdout = %q, want a request id", out)
	}
}

func TestRunCommandCache(t *testing.T) {
	h := newHarness(t)
	if _, _, err := h.run(nil, "config", "set", "cache.enabled", "true"); err != nil {
		t.Fatalf("config set error: %v", err)
	}

	ref := fakeapi.AlgoAddOne + "/1.0.0"
	for i := 0; i < 2; i++ {
		out, _, err := h.run(nil, "run", ref, "1")
		if err != nil {
			t.Fatalf("run error: %v", err)
		}
		if out != "2\n" {
			t.Errorf("stdout = %q", out)
		}
	}
	if n := h.srv.Calls(ref); n != 1 {
		t.Errorf("algorithm executed %d times, want 1", n)
	}

	if _, _, err := h.run(nil, "--no-cache", "run", ref, "1"); err != nil {
		t.Fatal(err)
	}
	if n := h.srv.Calls(ref); n != 2 {
		t.Errorf("--no-cache: algorithm executed %d times, want 2", n)
	}

	out, _, err := h.run(nil, "cache", "clear")
	if err != nil {
		t.Fatalf("cache clear error: %v", err)
	}
	if !strings.Contains(out, "Cleared 1 cached entries") {
		t.Errorf("cache clear output = %q", out)
	}
}

func TestDataCommands(t *testing.T) {
	h := newHarness(t)
	h.srv.AddDir(".my")

	local := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(local, []byte("remember the milk"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := h.run(nil, "data", "mkdir", "data://.my/docs"); err != nil {
		t.Fatalf("mkdir error: %v", err)
	}
	if !h.srv.HasDir(".my/docs") {
		t.Fatal("directory not created")
	}

	if _, _, err := h.run(nil, "data", "put", local, "data://.my/docs/"); err != nil {
		t.Fatalf("put error: %v", err)
	}
	if got, _ := h.srv.File(".my/docs/notes.txt"); string(got) != "remember the milk" {
		t.Errorf("stored = %q", got)
	}

	out, _, err := h.run(nil, "data", "ls", ".my/docs")
	if err != nil {
		t.Fatalf("ls error: %v", err)
	}
	if !strings.Contains(out, "notes.txt") || !strings.Contains(out, "17 B") {
		t.Errorf("ls output = %q", out)
	}

	out, _, err = h.run(nil, "data", "cat", "data://.my/docs/notes.txt")
	if err != nil {
		t.Fatalf("cat error: %v", err)
	}
	if out != "remember the milk" {
		t.Errorf("cat output = %q", out)
	}

	out, _, _ = h.run(nil, "data", "exists", "data://.my/docs/notes.txt")
	if strings.TrimSpace(out) != "true" {
		t.Errorf("exists output = %q, want true", out)
	}

	if _, _, err := h.run(nil, "data", "rm", "--dir", "data://.my/docs"); err == nil {
		t.Error("rm of non-empty directory without --force succeeded")
	}
	if _, _, err := h.run(nil, "data", "rm", "data://.my/docs/notes.txt"); err != nil {
		t.Fatalf("rm error: %v", err)
	}

	out, _, _ = h.run(nil, "data", "exists", "data://.my/docs/notes.txt")
	if strings.TrimSpace(out) != "false" {
		t.Errorf("exists output = %q, want false", out)
	}

	if _, _, err := h.run(nil, "data", "rm", "--dir", "data://.my/docs"); err != nil {
		t.Fatalf("rm --dir error: %v", err)
	}
	if h.srv.HasDir(".my/docs") {
		t.Error("directory still exists")
	}
}

func TestConfigCommands(t *testing.T) {
	h := newHarness(t)

	out, _, err := h.run(nil, "config", "path")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != h.config {
		t.Errorf("config path = %q, want %q", out, h.config)
	}

	for _, kv := range [][2]string{{"max_retries", "3"}, {"timeout", "45s"}} {
		if _, _, err := h.run(nil, "config", "set", kv[0], kv[1]); err != nil {
			t.Fatalf("config set %s error: %v", kv[0], err)
		}
	}

	out, _, err = h.run(nil, "config", "show")
	if err != nil {
		t.Fatalf("config show error: %v", err)
	}
	for _, want := range []string{"Profile default", "****0000", "45s", "3"} {
		if !strings.Contains(out, want) {
			t.Errorf("config show output missing %q:\n%s", want, out)
		}
	}

	tests := []struct {
		key, value string
	}{
		{"colour", "blue"},
		{"max_retries", "many"},
		{"api_address", "ftp://example.com"},
	}
	for _, tt := range tests {
		if _, _, err := h.run(nil, "config", "set", tt.key, tt.value); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("config set %s %s error = %v, want INVALID_INPUT", tt.key, tt.value, err)
		}
	}
}

func TestConfigProfileMissing(t *testing.T) {
	h := newHarness(t)
	if _, _, err := h.run(nil, "--profile", "prod", "run", fakeapi.AlgoHello, "x"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestDataURI(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"data://.my/x", "data://.my/x"},
		{".my/x", "data://.my/x"},
		{"/.my/x", "data://.my/x"},
		{"dropbox://Apps/x", "dropbox://Apps/x"},
	}
	for _, tt := range tests {
		if got := dataURI(tt.in); got != tt.want {
			t.Errorf("dataURI(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 * 1024 * 1024, "5.0 MiB"},
	}
	for _, tt := range tests {
		if got := formatSize(tt.n); got != tt.want {
			t.Errorf("formatSize(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
