package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"totalmixctl/internal/config"
)

func TestNewLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := newLogger(config.LogConf{Level: "warn"}, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if log.GetLevel() != "warning" {
		t.Errorf("GetLevel() = %q", log.GetLevel())
	}
	log.Module("osc").Info("hidden")
	log.Module("osc").Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("output = %q", buf.String())
	}
	if !strings.Contains(buf.String(), "module=osc") {
		t.Errorf("module field missing: %q", buf.String())
	}
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := newLogger(config.LogConf{Level: "info", Format: "json"}, &buf)
	if err != nil {
		t.Fatal(err)
	}
	log.With(Fields{"channel": "rear"}).Info("muted")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("not json: %v (%q)", err, buf.String())
	}
	if entry["channel"] != "rear" || entry["msg"] != "muted" {
		t.Errorf("entry = %v", entry)
	}
}

func TestNewLoggerBadSettings(t *testing.T) {
	if _, err := NewLogger(config.LogConf{Level: "loud"}); err == nil {
		t.Error("expected error for unknown level")
	}
	if _, err := NewLogger(config.LogConf{Level: "info", Format: "xml"}); err == nil {
		t.Error("expected error for unknown format")
	}
}
