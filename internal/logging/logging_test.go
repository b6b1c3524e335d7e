package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestInitText(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	Init(&buf, "info", "text")
	For("store.fs").Info("wrote record", "key", "users/1.json")

	out := buf.String()
	if !strings.Contains(out, "component=store.fs") {
		t.Errorf("missing component attr: %q", out)
	}
	if !strings.Contains(out, "key=users/1.json") {
		t.Errorf("missing key attr: %q", out)
	}
}

func TestInitJSON(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	Init(&buf, "debug", "JSON")
	For("cache").Debug("cache miss")

	if !strings.Contains(buf.String(), `"component":"cache"`) {
		t.Errorf("expected JSON output with component, got %q", buf.String())
	}
	SetLevel(slog.LevelInfo)
}

func TestInitRespectsLevel(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	Init(&buf, "warn", "text")
	defer SetLevel(slog.LevelInfo)

	For("ops").Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"  Error  ", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q): got %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestDynamicHandlerEnabled(t *testing.T) {
	SetLevel(slog.LevelWarn)
	defer SetLevel(slog.LevelInfo)

	prev := slog.Default()
	defer slog.SetDefault(prev)
	slog.SetDefault(slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: level})))

	h := &dynamicHandler{}
	if h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug should not be enabled at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("error should be enabled at warn level")
	}
}

func TestCaptureForTest(t *testing.T) {
	c := CaptureForTest()
	defer c.Restore()

	slog.Info("hello")
	slog.Warn("warning message")
	slog.Debug("debug detail")

	if n := len(c.Records()); n != 3 {
		t.Fatalf("expected 3 records, got %d", n)
	}
	if !c.Has(slog.LevelInfo, "hello") {
		t.Error("should have info 'hello'")
	}
	if c.Has(slog.LevelError, "hello") {
		t.Error("should not match error level")
	}
	if c.Count(slog.LevelDebug, "") != 1 {
		t.Errorf("expected 1 debug, got %d", c.Count(slog.LevelDebug, ""))
	}
	if c.Count(slog.LevelError, "") != 0 {
		t.Errorf("expected 0 error, got %d", c.Count(slog.LevelError, ""))
	}
}

func TestCaptureRestore(t *testing.T) {
	prev := slog.Default()
	c := CaptureForTest()
	c.Restore()

	if slog.Default() != prev {
		t.Error("default logger not restored")
	}
}

func TestForCarriesAttrsIntoCapture(t *testing.T) {
	c := CaptureForTest()
	defer c.Restore()

	For("cache").With("collection", "users").Debug("cache hit", "id", "1")

	if !c.HasAttr("cache hit", "component", "cache") {
		t.Error("expected component attr")
	}
	if !c.HasAttr("cache hit", "collection", "users") {
		t.Error("expected With attr to survive")
	}
	if !c.HasAttr("cache hit", "id", "1") {
		t.Error("expected call-site attr")
	}
	if c.HasAttr("cache hit", "id", "2") {
		t.Error("should not match wrong value")
	}
}
