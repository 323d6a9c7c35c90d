package log

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

// A bytes.Buffer is not a terminal, so the pretty handler emits no color
// sequences and the output can be compared as plain text.
func TestPrettyHandler_PlainLayout(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf, WithTimeLayout("none"))

	logger.Warn("record unresolved",
		slog.String("id", "bob"),
		slog.String("path", "a b.non"),
		slog.Int("line", 3),
		slog.Bool("flat", true))

	want := `WARN  record unresolved id=bob path="a b.non" line=3 flat=true` + "\n"
	if got := buf.String(); got != want {
		t.Errorf("got  %q\nwant %q", got, want)
	}
}

func TestPrettyHandler_GroupsAndWith(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf, WithTimeLayout("none")).With(slog.String("cmd", "compile"))

	logger.Info("done", slog.Group("stats", slog.Int("records", 2), slog.Int("failed", 0)))

	want := "INFO  done cmd=compile stats.records=2 stats.failed=0\n"
	if got := buf.String(); got != want {
		t.Errorf("got  %q\nwant %q", got, want)
	}
}

type logValuer struct{}

func (logValuer) LogValue() slog.Value {
	return slog.GroupValue(slog.String("error", "undefined record"), slog.String("id", "x"))
}

func TestPrettyHandler_ResolvesLogValuer(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf, WithTimeLayout("none"))

	logger.Error("failed", slog.Any("err", logValuer{}), slog.Any("cause", errors.New("eof")))

	want := "ERROR failed err.error=\"undefined record\" err.id=x cause=eof\n"
	if got := buf.String(); got != want {
		t.Errorf("got  %q\nwant %q", got, want)
	}
}

func TestPrettyHandler_TraceAndTimestamp(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf, WithLevel(LevelTrace), WithTimeLayout("2006"))

	logger.Trace("step")

	fields := strings.Fields(buf.String())
	if len(fields) != 3 || len(fields[0]) != 4 || fields[1] != "TRACE" || fields[2] != "step" {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestPrettyHandler_Caller(t *testing.T) {
	var buf bytes.Buffer
	logger := Make(&buf, WithTimeLayout("none"), WithCaller(true))

	logger.Info("here")

	if !strings.Contains(buf.String(), "pretty_test.go:") {
		t.Errorf("expected caller, got %q", buf.String())
	}
}
