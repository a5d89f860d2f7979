package archivist

import (
	"fmt"
	"strings"
	"testing"
)

type captureLogger struct {
	lines []string
}

func (c *captureLogger) Println(v ...interface{}) {
	c.lines = append(c.lines, fmt.Sprint(v...))
}

func TestLogLevel_FiltersBelowThreshold(t *testing.T) {
	sink := &captureLogger{}
	logger := New(&Config{Logger: sink, LogLevel: LEVEL_WARNING})
	logger.Info("hidden")
	logger.Warning("shown")
	logger.Error("shown too")
	if len(sink.lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %v", len(sink.lines), sink.lines)
	}
	if !strings.Contains(sink.lines[0], "|warning|archivist_test.go#") {
		t.Fatalf("expected caller prefix in %q", sink.lines[0])
	}
}

func TestDebugLevel_OnlyWhenLogLevelDebug(t *testing.T) {
	sink := &captureLogger{}
	logger := New(&Config{Logger: sink, LogLevel: LEVEL_DEBUG, DebugLevel: DEBUG_LEVEL_INFO})
	logger.Debug(DEBUG_LEVEL_TRACE, "trace")
	logger.Debug(DEBUG_LEVEL_DUMP, "dump")
	if len(sink.lines) != 1 {
		t.Fatalf("expected only the trace line, got %v", sink.lines)
	}
}

func TestScoped_PrefixesScope(t *testing.T) {
	sink := &captureLogger{}
	logger := New(&Config{Logger: sink, LogLevel: LEVEL_INFO}).Scoped("split").Scoped("pop_1")
	logger.InfoF("slices=%d", 3)
	if len(sink.lines) != 1 || !strings.Contains(sink.lines[0], "|split/pop_1|slices=3") {
		t.Fatalf("unexpected line %v", sink.lines)
	}
}

func TestUnknownLogLevel_DefaultsToWarning(t *testing.T) {
	sink := &captureLogger{}
	logger := New(&Config{Logger: sink, LogLevel: 42})
	sink.lines = nil
	logger.Info("hidden")
	logger.Warning("shown")
	if len(sink.lines) != 1 {
		t.Fatalf("expected warning level after unknown level, got %v", sink.lines)
	}
}

func TestProgress_CountsSteps(t *testing.T) {
	sink := &captureLogger{}
	logger := New(&Config{Logger: sink, LogLevel: LEVEL_INFO})
	p := logger.NewProgress("Filtering edges", 3)
	p.Step()
	p.Step()
	p.End()
	if p.Done() != 2 {
		t.Fatalf("expected 2 steps, got %d", p.Done())
	}
	if !strings.Contains(sink.lines[len(sink.lines)-1], "Filtering edges finished 2/3") {
		t.Fatalf("unexpected summary %v", sink.lines)
	}
}
