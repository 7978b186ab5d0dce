package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

// bufferAppender captures formatted entries in memory for assertions.
type bufferAppender struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (a *bufferAppender) Write(buf []byte) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.buf.Write(buf)
}

func (a *bufferAppender) Refresh() error { return nil }

func (a *bufferAppender) Close() error { return nil }

func (a *bufferAppender) lines() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := strings.TrimSuffix(a.buf.String(), "\n")
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}

func newTestLogger(level Level) (*EventLogger, *bufferAppender) {
	l := NewLogger(&LogCfg{LogLevel: level})
	a := &bufferAppender{}
	l.AddAppender(a)
	return l, a
}

func TestLoggerEmitsJSON(t *testing.T) {
	l, a := newTestLogger(DebugLevel)

	l.Info().
		Str("service", "gate").
		Int("shard", 7).
		Int64("bytes", 1<<33).
		Uint64("seq", 42).
		Float64("load", 0.75).
		Bool("ready", true).
		Dur("elapsed", 1500*time.Microsecond).
		Msg("started")

	lines := a.lines()
	if len(lines) != 1 {
		t.Fatalf("Expected 1 log line, got %d", len(lines))
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("Log line is not valid JSON: %v\n%s", err, lines[0])
	}
	if entry["level"] != "INFO" {
		t.Errorf("Expected level INFO, got %v", entry["level"])
	}
	if entry["msg"] != "started" {
		t.Errorf("Expected msg 'started', got %v", entry["msg"])
	}
	if entry["service"] != "gate" {
		t.Errorf("Expected service 'gate', got %v", entry["service"])
	}
	if entry["shard"] != float64(7) {
		t.Errorf("Expected shard 7, got %v", entry["shard"])
	}
	if entry["ready"] != true {
		t.Errorf("Expected ready true, got %v", entry["ready"])
	}
	if entry["elapsed"] != 1.5 {
		t.Errorf("Expected elapsed 1.5ms, got %v", entry["elapsed"])
	}
}

func TestLoggerLevelFilter(t *testing.T) {
	l, a := newTestLogger(WarnLevel)

	l.Debug().Str("k", "v").Msg("dropped")
	l.Info().Msg("dropped")
	l.Warn().Msg("kept")
	l.Error().Msg("kept")

	lines := a.lines()
	if len(lines) != 2 {
		t.Fatalf("Expected 2 log lines, got %d: %v", len(lines), lines)
	}
	for _, line := range lines {
		if !strings.Contains(line, "kept") {
			t.Errorf("Expected only kept entries, got %s", line)
		}
	}
}

func TestLoggerErrField(t *testing.T) {
	l, a := newTestLogger(DebugLevel)

	l.Error().Err(errors.New("boom")).Msg("failed")
	l.Error().Err(nil).Msg("no error")

	lines := a.lines()
	if len(lines) != 2 {
		t.Fatalf("Expected 2 log lines, got %d", len(lines))
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("Log line is not valid JSON: %v", err)
	}
	if entry["error"] != "boom" {
		t.Errorf("Expected error 'boom', got %v", entry["error"])
	}

	if err := json.Unmarshal([]byte(lines[1]), &entry); err != nil {
		t.Fatalf("Log line is not valid JSON: %v", err)
	}
	if v, ok := entry["error"]; !ok || v != nil {
		t.Errorf("Expected nil error to render as null, got %v", v)
	}
}

func TestLoggerStringEscaping(t *testing.T) {
	l, a := newTestLogger(DebugLevel)

	l.Info().Str("path", `a"b\c`).Msg("line\nbreak")

	lines := a.lines()
	if len(lines) != 1 {
		t.Fatalf("Expected 1 log line, got %d", len(lines))
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("Log line is not valid JSON: %v\n%s", err, lines[0])
	}
	if entry["path"] != `a"b\c` {
		t.Errorf("Expected escaped path to round-trip, got %v", entry["path"])
	}
	if entry["msg"] != "line\nbreak" {
		t.Errorf("Expected newline to round-trip, got %q", entry["msg"])
	}
}

func TestLoggerNilEventSafety(t *testing.T) {
	l, _ := newTestLogger(ErrorLevel)

	// Filtered-out events are nil; the fluent chain must tolerate that.
	l.Debug().Str("k", "v").Int("n", 1).Err(errors.New("x")).Msg("dropped")
	l.Info().End()
}

func TestLoggerConcurrent(t *testing.T) {
	l, a := newTestLogger(DebugLevel)

	var wg sync.WaitGroup
	concurrency := 8
	iterations := 25
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				l.Info().Int("worker", id).Int("iter", j).Msg("tick")
			}
		}(i)
	}
	wg.Wait()

	lines := a.lines()
	if len(lines) != concurrency*iterations {
		t.Fatalf("Expected %d log lines, got %d", concurrency*iterations, len(lines))
	}
	for _, line := range lines {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("Log line is not valid JSON: %v\n%s", err, line)
		}
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"trace": TraceLevel,
		"DEBUG": DebugLevel,
		"Info":  InfoLevel,
		"warn":  WarnLevel,
		"ERROR": ErrorLevel,
		"fatal": FatalLevel,
		"bogus": InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLevelString(t *testing.T) {
	if TraceLevel.String() != "TRACE" || FatalLevel.String() != "FATAL" {
		t.Error("Expected level names to round-trip")
	}
	if Level(99).String() != "UNKNOWN" {
		t.Errorf("Expected unknown level name, got %s", Level(99).String())
	}
}

func TestCfgValidate(t *testing.T) {
	if err := getDefaultCfg().Validate(); err != nil {
		t.Errorf("Default configuration must validate, got %v", err)
	}
	if err := (&LogCfg{LogLevel: 0}).Validate(); err == nil {
		t.Error("Expected out-of-range level to fail validation")
	}
	if err := (&LogCfg{LogLevel: InfoLevel, CallerSkip: -1}).Validate(); err == nil {
		t.Error("Expected negative caller skip to fail validation")
	}
}
