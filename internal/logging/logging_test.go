package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestFromContextCarriesRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := New("development", &buf)

	ctx := WithRequest(context.Background(), logger, "req-123")
	FromContext(ctx).Info("code sent", "email", "a@x.com")

	out := buf.String()
	for _, want := range []string{"level=INFO", "msg=\"code sent\"", "request_id=req-123", "email=a@x.com"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got:\n%s", want, out)
		}
	}
	if got := RequestID(ctx); got != "req-123" {
		t.Fatalf("expected request id req-123, got %q", got)
	}
}

func TestNewProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New("production", &buf)

	logger.Debug("hidden")
	logger.Info("visible", "k", "v")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected only the info line, got %d lines:\n%s", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("expected JSON log line: %v", err)
	}
	if entry["msg"] != "visible" || entry["k"] != "v" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("expected default logger")
	}
	if RequestID(context.Background()) != "" {
		t.Fatal("expected empty request id")
	}
}
