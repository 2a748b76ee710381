package logging_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/raysh454/stereocheck/internal/logging"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid JSON line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestLogger_WritesJSONLines(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	l := logging.NewLogger(&buf, "runner", logging.LevelDebug)

	l.Info("fetched page", logging.Field{Key: "status", Value: 200})
	l.Warn("asset missing", logging.Field{Key: "error", Value: errors.New("boom")})

	lines := decodeLines(t, &buf)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0]["level"] != "info" || lines[0]["msg"] != "fetched page" || lines[0]["component"] != "runner" {
		t.Errorf("unexpected first line: %v", lines[0])
	}
	fields := lines[1]["fields"].(map[string]any)
	if fields["error"] != "boom" {
		t.Errorf("expected error rendered as string, got %v", fields["error"])
	}
}

func TestLogger_LevelFilter(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	l := logging.NewLogger(&buf, "", logging.LevelWarn)

	l.Debug("d")
	l.Info("i")
	l.Warn("w")
	l.Error("e")

	lines := decodeLines(t, &buf)
	if len(lines) != 2 {
		t.Fatalf("expected warn and error only, got %d lines", len(lines))
	}
}

func TestLogger_WithKeepsFieldsAndComponent(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	l := logging.NewLogger(&buf, "app", logging.LevelInfo).
		With(logging.Field{Key: "component", Value: "webclient"}, logging.Field{Key: "backend", Value: "nethttp"})

	l.Info("created")

	lines := decodeLines(t, &buf)
	if lines[0]["component"] != "webclient" {
		t.Errorf("expected component webclient, got %v", lines[0]["component"])
	}
	if lines[0]["fields"].(map[string]any)["backend"] != "nethttp" {
		t.Errorf("expected persistent backend field, got %v", lines[0]["fields"])
	}
}

func TestLogger_WithRendersErrors(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	l := logging.NewLogger(&buf, "tracker", logging.LevelDebug).
		With(logging.Field{Key: "cause", Value: errors.New("disk full")})

	l.Warn("recording run")

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	fields, _ := lines[0]["fields"].(map[string]any)
	if fields["cause"] != "disk full" {
		t.Errorf("cause = %#v, want %q", fields["cause"], "disk full")
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()
	cases := map[string]logging.Level{
		"debug": logging.LevelDebug,
		"INFO":  logging.LevelInfo,
		"":      logging.LevelInfo,
		"Warn":  logging.LevelWarn,
		"error": logging.LevelError,
	}
	for in, want := range cases {
		got, err := logging.ParseLevel(in)
		if err != nil {
			t.Errorf("ParseLevel(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := logging.ParseLevel("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}
