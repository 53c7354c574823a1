package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"sales-dashboard/internal/config"
)

func TestStartSpan_Nested(t *testing.T) {
	ctx, parent := StartSpan(context.Background(), "GET /")
	_, child := StartSpan(ctx, "source.fetch")

	if child.TraceID != parent.TraceID {
		t.Errorf("child trace id = %q, want %q", child.TraceID, parent.TraceID)
	}
	if child.ParentID != parent.SpanID {
		t.Errorf("child parent id = %q, want %q", child.ParentID, parent.SpanID)
	}
	if len(parent.SpanID) != 16 {
		t.Errorf("span id length = %d, want 16", len(parent.SpanID))
	}
}

func TestSpan_LogValue(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, config.LoggerConfig{Level: "debug", Format: "json"})

	_, span := StartSpan(context.Background(), "source.fetch")
	span.SetTag("query", "sul_2021")
	span.SetError(errors.New("timeout"))
	span.Finish(context.Background(), logger)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	group, ok := entry["span"].(map[string]any)
	if !ok {
		t.Fatalf("span group missing in %v", entry)
	}
	if group["operation"] != "source.fetch" || group["status"] != "ERROR" || group["query"] != "sul_2021" {
		t.Errorf("unexpected span attrs %v", group)
	}
}

func TestRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "abc")
	if got := GetRequestID(ctx); got != "abc" {
		t.Errorf("GetRequestID() = %q, want abc", got)
	}
	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("GetRequestID() = %q, want empty", got)
	}
}

func TestLogger_ContextAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, config.LoggerConfig{Level: "info", Format: "json"})

	ctx, span := StartSpan(WithRequestID(context.Background(), "req-9"), "GET /")
	logger.InfoContext(ctx, "request completed")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["request_id"] != "req-9" {
		t.Errorf("request_id = %v, want req-9", entry["request_id"])
	}
	if entry["trace_id"] != span.TraceID {
		t.Errorf("trace_id = %v, want %s", entry["trace_id"], span.TraceID)
	}
}

func TestLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, config.LoggerConfig{Level: "warn", Format: "text"})

	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("info record written at warn level: %s", buf.String())
	}
	logger.Warn("shown")
	if buf.Len() == 0 {
		t.Error("warn record not written")
	}
}
