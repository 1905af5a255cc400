package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func TestLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, LevelInfo, "ordersvc", func(ctx context.Context) string { return "abc123" })

	log.Info(context.Background(), "listening", "addr", ":8000")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("record is not JSON: %v", err)
	}
	if rec["msg"] != "listening" {
		t.Fatalf("unexpected msg: %v", rec["msg"])
	}
	if rec["service"] != "ordersvc" {
		t.Fatalf("unexpected service: %v", rec["service"])
	}
	if rec["addr"] != ":8000" {
		t.Fatalf("unexpected addr: %v", rec["addr"])
	}
	if rec["trace_id"] != "abc123" {
		t.Fatalf("trace id missing: %v", rec["trace_id"])
	}
}

func TestLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, LevelWarn, "ordersvc", nil)

	log.Info(context.Background(), "dropped")
	if buf.Len() != 0 {
		t.Fatalf("info record should be filtered below warn: %s", buf.String())
	}
	log.Warn(context.Background(), "kept")
	if buf.Len() == 0 {
		t.Fatal("warn record missing")
	}
}
