package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"call summary at info", LogInfo, func(l *log.Logger) { l.Info("Called demo/hello") }, true},
		{"request trace hidden at info", LogInfo, func(l *log.Logger) { l.Debug("request", "path", "/v1/algo/demo/hello") }, false},
		{"request trace at debug", LogDebug, func(l *log.Logger) { l.Debug("request", "path", "/v1/algo/demo/hello") }, true},
		{"missing key warning at info", LogInfo, func(l *log.Logger) { l.Warn("no API key configured") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))

			if gotLog := buf.Len() > 0; gotLog != tt.wantLog {
				t.Errorf("got log output = %v, want %v (%q)", gotLog, tt.wantLog, buf.String())
			}
		})
	}
}

func TestSetLogLevel(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)

	c.Logger.Debug("request")
	if buf.Len() != 0 {
		t.Fatalf("debug output at info level: %q", buf.String())
	}

	c.SetLogLevel(LogDebug)
	c.Logger.Debug("request", "status", 200)
	if !strings.Contains(buf.String(), "status=200") {
		t.Errorf("debug output after SetLogLevel = %q", buf.String())
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, LogInfo))

	prog.done("Called demo/hello", "type", "text", "cached", false)

	out := buf.String()
	for _, want := range []string{"Called demo/hello (", "type=text", "cached=false"} {
		if !strings.Contains(out, want) {
			t.Errorf("progress output %q missing %q", out, want)
		}
	}
}

func TestLoggerContext(t *testing.T) {
	if loggerFromContext(context.Background()) == nil {
		t.Fatal("loggerFromContext() without a logger returned nil")
	}

	var buf bytes.Buffer
	logger := newLogger(&buf, LogInfo)
	ctx := withLogger(context.Background(), logger)
	if got := loggerFromContext(ctx); got != logger {
		t.Error("loggerFromContext() did not return the attached logger")
	}
}
