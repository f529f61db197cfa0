package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestJSONFormatCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{Level: LevelDebug, Format: "json", Output: &buf})

	logger.Info("workload done", "iops", 1000.0, "failed", 0)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not json: %v (%q)", err, buf.String())
	}
	if entry["message"] != "workload done" {
		t.Errorf("message = %v", entry["message"])
	}
	if entry["iops"] != 1000.0 {
		t.Errorf("iops = %v, want 1000", entry["iops"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{Level: LevelWarn, Format: "json", Output: &buf})

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("visible")

	if strings.Contains(buf.String(), "hidden") {
		t.Errorf("suppressed levels leaked: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("warn level missing: %q", buf.String())
	}
}

func TestWithWorkloadContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{Level: LevelDebug, Format: "json", Output: &buf})

	logger.WithWorkload("read", "rand", 4096).Info("starting")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not json: %v", err)
	}
	if entry["op"] != "read" || entry["pattern"] != "rand" {
		t.Errorf("workload context missing: %v", entry)
	}
	if entry["block_size"] != 4096.0 {
		t.Errorf("block_size = %v, want 4096", entry["block_size"])
	}
}

func TestOddKeyValuePairsDoNotPanic(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{Level: LevelDebug, Format: "json", Output: &buf})
	logger.Info("dangling", "key")
	if !strings.Contains(buf.String(), "dangling") {
		t.Errorf("message lost: %q", buf.String())
	}
}

func TestDefaultIsSingleton(t *testing.T) {
	a := Default()
	b := Default()
	if a != b {
		t.Error("Default returned distinct loggers")
	}
}
