package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerFiltersBelowMinLevel(t *testing.T) {
	history := NewHistory(10)
	output := &bytes.Buffer{}
	logger := NewLoggerWithOutput(history, LevelWarning, output)

	logger.Debug("ignored", nil)
	logger.Info("ignored too", nil)
	logger.Warn("kept", nil)

	entries := history.List()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Message != "kept" {
		t.Fatalf("unexpected message %q", entries[0].Message)
	}
	if !strings.Contains(output.String(), `msg="kept"`) {
		t.Fatalf("unexpected output: %s", output.String())
	}
}

func TestLoggerSetMinLevelTakesEffect(t *testing.T) {
	history := NewHistory(10)
	logger := NewLoggerWithOutput(history, LevelInfo, nil)

	logger.Debug("dropped", nil)
	logger.SetMinLevel(LevelDebug)
	logger.Debug("kept", nil)

	entries := history.List()
	if len(entries) != 1 || entries[0].Message != "kept" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestLoggerWithMergesFields(t *testing.T) {
	history := NewHistory(10)
	logger := NewLoggerWithOutput(history, LevelInfo, nil)
	derived := logger.With(map[string]string{"component": "engine"})

	derived.Info("hello", map[string]string{"target": "/tmp/a"})

	entries := history.List()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	context := entries[0].Context
	if context["component"] != "engine" || context["target"] != "/tmp/a" {
		t.Fatalf("unexpected context: %v", context)
	}
}

func TestParseLevel(t *testing.T) {
	cases := []struct {
		input string
		want  Level
		ok    bool
	}{
		{"debug", LevelDebug, true},
		{" INFO ", LevelInfo, true},
		{"warn", LevelWarning, true},
		{"warning", LevelWarning, true},
		{"error", LevelError, true},
		{"fatal", "", false},
		{"", "", false},
	}
	for _, testCase := range cases {
		got, ok := ParseLevel(testCase.input)
		if got != testCase.want || ok != testCase.ok {
			t.Fatalf("ParseLevel(%q) = %q, %v", testCase.input, got, ok)
		}
	}
}

func TestFormatEntrySortsContextKeys(t *testing.T) {
	entry := Entry{
		Level:   LevelInfo,
		Message: "m",
		Context: map[string]string{"b": "2", "a": "1"},
	}
	formatted := formatEntry(entry)
	if formatted != `level=info msg="m" a="1" b="2"` {
		t.Fatalf("unexpected format: %s", formatted)
	}
}
