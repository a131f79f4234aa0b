package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestConsoleHandlerHoistsComponent(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, levelVar, false))

	NewComponentLogger(logger, "nrlindex").Info("indexed sensors", Int("count", 3))

	line := strings.TrimSpace(buf.String())
	if !strings.Contains(line, "INFO nrlindex: indexed sensors") {
		t.Fatalf("unexpected console line: %q", line)
	}
	if !strings.Contains(line, "count=3") {
		t.Errorf("missing attribute in console line: %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Errorf("component should be hoisted out of attrs: %q", line)
	}
}

func TestConsoleHandlerQuotesValues(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, levelVar, false))

	logger.Warn("scan failure", String("path", "sensor/acme/model one.xml"))

	if !strings.Contains(buf.String(), `path="sensor/acme/model one.xml"`) {
		t.Fatalf("expected quoted path, got %q", buf.String())
	}
}

func TestJSONHandlerFieldNames(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	logger := slog.New(newJSONHandler(&buf, levelVar, false))

	logger.Info("hello")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("parse JSON record: %v", err)
	}
	if record["msg"] != "hello" {
		t.Errorf("msg field: got %v", record["msg"])
	}
	if record["level"] != "info" {
		t.Errorf("level field: got %v", record["level"])
	}
	if _, ok := record["ts"]; !ok {
		t.Error("missing ts field")
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewNopDiscards(t *testing.T) {
	logger := NewNop()
	logger.Error("should not panic", Error(nil))
}
