package hnsw

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerFiltersBelowMinLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, LevelWarn)
	l.Info("should not appear")
	l.Warn("should appear", "k", "v")

	out := buf.String()
	if strings.Contains(out, "should not appear") {
		t.Fatalf("Info below min level was logged: %q", out)
	}
	if !strings.Contains(out, "should appear") || !strings.Contains(out, "k=v") {
		t.Fatalf("Warn line missing or malformed: %q", out)
	}
}

func TestLoggerWithMergesKeyvals(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, LevelDebug).With("component", "index")
	l.Debug("hello", "id", 7)

	out := buf.String()
	if !strings.Contains(out, "component=index") || !strings.Contains(out, "id=7") {
		t.Fatalf("With-bound and call-site keyvals both expected: %q", out)
	}
}

func TestNopLoggerDiscardsEverything(t *testing.T) {
	l := NopLogger()
	l.Info("anything")
	l.With("k", "v").Error("still nothing")
}
