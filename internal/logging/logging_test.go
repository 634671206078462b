package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestNew_JSONFormatIncludesFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "debug", Format: "json", Output: &buf})

	log.WithField("component", "survey").Info("built points")

	out := buf.String()
	if !strings.Contains(out, `"component":"survey"`) {
		t.Fatalf("expected component field in output, got: %s", out)
	}
	if !strings.Contains(out, "built points") {
		t.Fatalf("expected message in output, got: %s", out)
	}
}

func TestNew_LevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Output: &buf})

	log.Debug("hidden")
	log.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug message should have been filtered, got: %s", out)
	}
	if !strings.Contains(out, "shown") {
		t.Fatalf("warn message missing, got: %s", out)
	}
}

func TestWithContext_AttachesRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Format: "json", Output: &buf})

	ctx := ContextWithRequestID(context.Background(), "req-42")
	log.WithContext(ctx).Info("calling service")

	if !strings.Contains(buf.String(), `"request_id":"req-42"`) {
		t.Fatalf("expected request_id field, got: %s", buf.String())
	}
}

func TestRequestID_MissingIsEmpty(t *testing.T) {
	if id := RequestID(context.Background()); id != "" {
		t.Fatalf("expected empty request ID, got %q", id)
	}
}
