package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestWithLogFields_Merges(t *testing.T) {
	ctx := WithLogFields(context.Background(), LogFields{RequestID: "req-1"})
	ctx = WithLogFields(ctx, LogFields{SessionID: "sess-1"})

	fields := GetLogFields(ctx)
	if fields.RequestID != "req-1" || fields.SessionID != "sess-1" {
		t.Fatalf("expected both fields to survive the merge, got %+v", fields)
	}
}

func TestContextHandler_AddsFields(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewContextHandler(slog.NewTextHandler(&buf, nil)))

	ctx := WithLogFields(context.Background(), LogFields{SessionID: "sess-42", Component: "assistant"})
	log.InfoContext(ctx, "hello")

	out := buf.String()
	if !strings.Contains(out, "session_id=sess-42") || !strings.Contains(out, "component=assistant") {
		t.Fatalf("expected context fields in output, got %q", out)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("abcdef", 3); got != "abc..." {
		t.Errorf("Expected %q, got %q", "abc...", got)
	}
	if got := Truncate("abc", 3); got != "abc" {
		t.Errorf("Expected %q, got %q", "abc", got)
	}

	got := Truncate("ééééé", 3)
	if got != "é..." {
		t.Errorf("Expected %q, got %q", "é...", got)
	}
	if !utf8.ValidString(got) {
		t.Errorf("Expected valid UTF-8, got %q", got)
	}
}
