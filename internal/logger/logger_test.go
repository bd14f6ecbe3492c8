package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/alright-hq/alright-client/internal/config"
)

func TestInitWriterEmitsStructuredObjects(t *testing.T) {
	var buf bytes.Buffer
	if _, err := InitWriter(&config.Config{AppName: "test", Env: "ci", LogLevel: "debug"}, &buf); err != nil {
		t.Fatalf("InitWriter: %v", err)
	}
	defer func() { S = nil }()

	Std().DebugObj("menu fetched", "menu_meta", map[string]any{"dishes": 7})

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if entry["msg"] != "menu fetched" || entry["app"] != "test" {
		t.Fatalf("unexpected entry %v", entry)
	}
	meta, ok := entry["menu_meta"].(map[string]any)
	if !ok || meta["dishes"] != float64(7) {
		t.Fatalf("menu_meta missing: %v", entry)
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("ts key missing: %v", entry)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	if _, err := InitWriter(&config.Config{LogLevel: "warn"}, &buf); err != nil {
		t.Fatalf("InitWriter: %v", err)
	}
	defer func() { S = nil }()

	InfoObj("hidden", "k", 1)
	WarnObj("shown", "k", 2)
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestHelpersAreSafeBeforeInit(t *testing.T) {
	S = nil
	InfoObj("x", "k", 1)
	ErrorObj("x", "k", 1)
	if err := Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	NopLogger{}.WarnObj("x", "k", 1)
}
