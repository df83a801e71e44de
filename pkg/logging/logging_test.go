package logging

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"
)

func TestCompactHandlerPrintsHandlerAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := NewCompactHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	l := slog.New(h).With("component", "store", "nodes", 3)

	l.Info("saved", "path", "diagram.json")

	line := buf.String()
	for _, want := range []string{"[INFO]", "saved |", "[store]", "nodes=3", "path=diagram.json"} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q missing %q", line, want)
		}
	}
}

func TestNewFollowsLevelChanges(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, slog.LevelInfo)
	t.Cleanup(func() { SetOutput(os.Stdout, slog.LevelInfo) })

	l := New("expander")
	l.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug line written at info level: %q", buf.String())
	}

	SetLevel(slog.LevelDebug)
	l.Debug("visible")
	if !strings.Contains(buf.String(), "[expander]") {
		t.Errorf("component tag missing: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("debug line missing after SetLevel: %q", buf.String())
	}
}

func TestNewAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, slog.LevelInfo)
	t.Cleanup(func() { SetOutput(os.Stdout, slog.LevelInfo) })

	ctx := WithRequestID(context.Background(), "0123456789abcdef")
	New("web").InfoContext(ctx, "handled")

	if !strings.Contains(buf.String(), "req=01234567") {
		t.Errorf("request id missing: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"trace":   LevelTrace,
		"DEBUG":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"loud":    slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestCompactHandlerGroupsAndQuoting(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewCompactHandler(&buf, nil)).WithGroup("ai")

	l.Info("expanded", "model", "gpt 4", "error", "boom")

	line := buf.String()
	for _, want := range []string{`ai.model="gpt 4"`, `ai.error="boom"`} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q missing %q", line, want)
		}
	}
	if strings.Contains(line, "\x1b[") {
		t.Errorf("buffer output must not be colored: %q", line)
	}
}

func TestNewNestsGroupsInOrder(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, slog.LevelInfo)
	t.Cleanup(func() { SetOutput(os.Stdout, slog.LevelInfo) })

	l := New("expander").With("node", "root").WithGroup("ai").With("model", "gpt").WithGroup("usage")
	l.Info("completed", "tokens", 12)

	line := buf.String()
	for _, want := range []string{"[expander]", " node=root", "ai.model=gpt", "ai.usage.tokens=12"} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q missing %q", line, want)
		}
	}
	for _, unwanted := range []string{"ai.component", "ai.node", "usage.model"} {
		if strings.Contains(line, unwanted) {
			t.Errorf("line %q contains %q", line, unwanted)
		}
	}
}
