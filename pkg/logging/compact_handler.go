package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// CompactHandler writes one readable line per record:
//
//	[LEVEL] HH:MM:SS [component] message | key=value key=value
//
// Level tags are colored when writing to a terminal.
type CompactHandler struct {
	level    slog.Leveler
	mu       *sync.Mutex
	out      io.Writer
	colored  bool
	prefix   string      // dotted group path for attribute keys
	attrs    []slog.Attr // accumulated by WithAttrs, keys already prefixed
	compName string
}

type levelStyle struct {
	tag   string
	color *color.Color
}

var levelStyles = map[slog.Level]levelStyle{
	LevelTrace:      {"[TRACE]", color.New(color.FgHiBlack)},
	slog.LevelDebug: {"[DEBUG]", color.New(color.FgCyan)},
	slog.LevelInfo:  {"[INFO] ", color.New(color.FgGreen)},
	slog.LevelWarn:  {"[WARN] ", color.New(color.FgYellow)},
	slog.LevelError: {"[ERROR]", color.New(color.FgRed, color.Bold)},
}

// NewCompactHandler creates a compact console handler. Output is colored only
// when w is a terminal.
func NewCompactHandler(w io.Writer, opts *slog.HandlerOptions) *CompactHandler {
	h := &CompactHandler{
		level: slog.LevelInfo,
		mu:    &sync.Mutex{},
		out:   w,
	}
	if opts != nil && opts.Level != nil {
		h.level = opts.Level
	}
	if f, ok := w.(*os.File); ok && (f == os.Stdout || f == os.Stderr) {
		h.colored = !color.NoColor
	}
	return h
}

func (h *CompactHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *CompactHandler) Handle(_ context.Context, r slog.Record) error {
	var sb strings.Builder

	style, ok := levelStyles[r.Level]
	if !ok {
		style = levelStyle{tag: fmt.Sprintf("[%-5s]", r.Level.String())}
	}
	if h.colored && style.color != nil {
		sb.WriteString(style.color.Sprint(style.tag))
	} else {
		sb.WriteString(style.tag)
	}
	sb.WriteByte(' ')
	sb.WriteString(r.Time.Format("15:04:05"))
	sb.WriteByte(' ')

	component := h.compName
	var pairs []string
	collect := func(key string, v slog.Value) {
		if key == "component" {
			component = v.String()
			return
		}
		pairs = append(pairs, formatAttr(key, v))
	}
	for _, a := range h.attrs {
		collect(a.Key, a.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		if a.Equal(slog.Attr{}) {
			return true
		}
		collect(h.prefix+a.Key, a.Value.Resolve())
		return true
	})

	if component != "" {
		sb.WriteString("[" + component + "] ")
	}
	sb.WriteString(r.Message)
	if len(pairs) > 0 {
		sb.WriteString(" | ")
		sb.WriteString(strings.Join(pairs, " "))
	}
	sb.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, sb.String())
	return err
}

// formatAttr renders one key=value pair. Special keys are recognised by their
// last segment so they keep their format inside groups.
func formatAttr(key string, v slog.Value) string {
	name := key[strings.LastIndexByte(key, '.')+1:]
	group := key[:len(key)-len(name)]
	switch name {
	case "requestID":
		s := v.String()
		if len(s) > 8 {
			s = s[:8]
		}
		return group + "req=" + s
	case "durationMs":
		return group + "duration=" + v.String() + "ms"
	case "error":
		return key + "=" + strconv.Quote(v.String())
	}

	switch v.Kind() {
	case slog.KindString:
		s := v.String()
		if strings.ContainsAny(s, " \t\n\"=") {
			s = strconv.Quote(s)
		}
		return key + "=" + s
	case slog.KindTime:
		return key + "=" + v.Time().Format(time.RFC3339)
	case slog.KindGroup:
		parts := make([]string, 0, len(v.Group()))
		for _, a := range v.Group() {
			parts = append(parts, formatAttr(key+"."+a.Key, a.Value.Resolve()))
		}
		return strings.Join(parts, " ")
	default:
		// Int64, Uint64, Float64, Bool and Duration print naturally.
		return key + "=" + v.String()
	}
}

func (h *CompactHandler) clone() *CompactHandler {
	c := *h
	c.attrs = append([]slog.Attr(nil), h.attrs...)
	return &c
}

func (h *CompactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := h.clone()
	for _, a := range attrs {
		if a.Key == "component" {
			c.compName = a.Value.String()
			continue
		}
		c.attrs = append(c.attrs, slog.Attr{Key: h.prefix + a.Key, Value: a.Value.Resolve()})
	}
	return c
}

func (h *CompactHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := h.clone()
	c.prefix = h.prefix + name + "."
	return c
}
