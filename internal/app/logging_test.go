package app

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestLogger(level LogLevel) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := NewLogger(LoggerConfig{Level: level, Output: &buf, Prefix: "test"})
	l.now = func() time.Time { return time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC) }
	return l, &buf
}

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LogLevelDebug, "DEBUG"},
		{LogLevelInfo, "INFO"},
		{LogLevelWarn, "WARN"},
		{LogLevelError, "ERROR"},
		{LogLevel(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		result := tt.level.String()
		if result != tt.expected {
			t.Errorf("LogLevel(%d).String() = '%s', expected '%s'", tt.level, result, tt.expected)
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
	}{
		{"debug", LogLevelDebug},
		{"DEBUG", LogLevelDebug},
		{"Info", LogLevelInfo},
		{"warn", LogLevelWarn},
		{"warning", LogLevelWarn},
		{"WARNING", LogLevelWarn},
		{"error", LogLevelError},
		{"unknown", LogLevelInfo}, // Default
		{"", LogLevelInfo},        // Default
	}

	for _, tt := range tests {
		result := ParseLogLevel(tt.input)
		if result != tt.expected {
			t.Errorf("ParseLogLevel('%s') = %d, expected %d", tt.input, result, tt.expected)
		}
	}
}

func TestNewLogger_DefaultOutput(t *testing.T) {
	logger := NewLogger(LoggerConfig{})
	if *logger.output != io.Discard {
		t.Error("expected default output to discard")
	}
}

func TestLogger_LineFormat(t *testing.T) {
	logger, buf := newTestLogger(LogLevelInfo)

	logger.Info("formatted %s %d", "test", 42)

	expected := "2024-05-01T12:30:00.000 [INFO] test: formatted test 42\n"
	if buf.String() != expected {
		t.Errorf("output = %q, expected %q", buf.String(), expected)
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	logger, buf := newTestLogger(LogLevelWarn)

	logger.Debug("debug")
	logger.Info("info")
	logger.Warn("warn")
	logger.Error("error")

	output := buf.String()
	if strings.Contains(output, "[DEBUG]") || strings.Contains(output, "[INFO]") {
		t.Errorf("expected debug and info to be filtered out, got: %s", output)
	}
	if !strings.Contains(output, "[WARN]") || !strings.Contains(output, "[ERROR]") {
		t.Errorf("expected warn and error in output, got: %s", output)
	}

	logger.SetLevel(LogLevelDebug)
	if logger.Level() != LogLevelDebug {
		t.Errorf("Level() = %v, expected DEBUG", logger.Level())
	}
	logger.Debug("now visible")
	if !strings.Contains(buf.String(), "now visible") {
		t.Error("expected debug output after SetLevel")
	}
}

func TestLogger_FieldsSorted(t *testing.T) {
	logger, buf := newTestLogger(LogLevelInfo)

	logger.WithFields(map[string]any{"b": 2, "a": "x"}).WithComponent("loop").Info("tick")

	if !strings.HasSuffix(buf.String(), "tick {a=x, b=2, component=loop}\n") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestLogger_DerivedSharesLevelAndOutput(t *testing.T) {
	logger, buf := newTestLogger(LogLevelInfo)
	child := logger.WithComponent("config")

	logger.SetLevel(LogLevelError)
	child.Warn("hidden")
	if buf.Len() != 0 {
		t.Errorf("child ignored parent level change: %q", buf.String())
	}

	var other bytes.Buffer
	logger.SetOutput(&other)
	child.Error("moved")
	if !strings.Contains(other.String(), "moved") {
		t.Error("child ignored parent output change")
	}

	// The parent has no fields of its own.
	logger.Error("plain")
	if strings.Contains(other.String(), "plain {") {
		t.Error("parent picked up child fields")
	}
}

func TestNullLogger(t *testing.T) {
	if NullLogger.Level() <= LogLevelError {
		t.Errorf("NullLogger level = %v, expected above ERROR", NullLogger.Level())
	}
	if *NullLogger.output != io.Discard {
		t.Error("NullLogger should discard output")
	}
}

func TestOpenLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ted.log")

	f, err := OpenLogFile(path)
	if err != nil {
		t.Fatalf("OpenLogFile() error = %v", err)
	}
	logger := NewLogger(LoggerConfig{Level: LogLevelInfo, Output: f})
	logger.Info("first")
	_ = f.Close()

	f, err = OpenLogFile(path)
	if err != nil {
		t.Fatalf("OpenLogFile() reopen error = %v", err)
	}
	NewLogger(LoggerConfig{Level: LogLevelInfo, Output: f}).Info("second")
	_ = f.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "first") || !strings.Contains(string(data), "second") {
		t.Errorf("log file = %q, expected both lines appended", data)
	}
}
