package log

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles used by prettyHandler. Styles are bound to the
// renderer of the output writer, so colors are dropped automatically when
// the writer is not a terminal.
type palette struct {
	time, key, source, message lipgloss.Style
	str, num, boolean, other   lipgloss.Style
	levels                     map[Level]lipgloss.Style
}

func newPalette(w io.Writer) *palette {
	r := lipgloss.NewRenderer(w)
	color := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}

	return &palette{
		time:    color("8"),
		key:     color("8"),
		source:  color("8").Italic(true),
		message: r.NewStyle().Bold(true),
		str:     color("6"),
		num:     color("3"),
		boolean: color("5"),
		other:   color("4"),
		levels: map[Level]lipgloss.Style{
			LevelTrace: color("8").Bold(true),
			LevelDebug: color("4").Bold(true),
			LevelInfo:  color("2").Bold(true),
			LevelWarn:  color("3").Bold(true),
			LevelError: color("1").Bold(true),
		},
	}
}

func (p *palette) level(l Level) lipgloss.Style {
	switch {
	case l >= LevelError:
		return p.levels[LevelError]
	case l >= LevelWarn:
		return p.levels[LevelWarn]
	case l >= LevelInfo:
		return p.levels[LevelInfo]
	case l >= LevelDebug:
		return p.levels[LevelDebug]
	default:
		return p.levels[LevelTrace]
	}
}

// prettyHandler writes one human-oriented line per record:
//
//	TIME LEVEL source message key=value group.key=value ...
//
// Values are unquoted unless they contain spaces or are empty.
type prettyHandler struct {
	opts       slog.HandlerOptions
	formatTime FormatTime
	style      *palette
	mu         *sync.Mutex
	w          io.Writer
	prefix     string // dotted group path for subsequent attrs
	preformat  []byte // attrs added with WithAttrs, already rendered
}

func newPrettyHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
	formatTime FormatTime,
) *prettyHandler {
	return &prettyHandler{
		opts:       *opts,
		formatTime: formatTime,
		style:      newPalette(w),
		mu:         &sync.Mutex{},
		w:          w,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	if !r.Time.IsZero() {
		if ts := h.formatTime(r.Time); ts != "" {
			buf.WriteString(h.style.time.Render(ts))
			buf.WriteByte(' ')
		}
	}

	level := Level(r.Level)
	name := strings.ToUpper(level.String())
	buf.WriteString(h.style.level(level).Render(padRight(name, 5)))

	if h.opts.AddSource {
		if src := r.Source(); src != nil && src.File != "" {
			buf.WriteByte(' ')
			buf.WriteString(h.style.source.Render(
				filepath.Base(src.File) + ":" + strconv.Itoa(src.Line)))
		}
	}

	buf.WriteByte(' ')
	buf.WriteString(h.style.message.Render(r.Message))
	buf.Write(h.preformat)

	r.Attrs(func(a slog.Attr) bool {
		h.appendAttr(&buf, h.prefix, a)

		return true
	})

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	clone := *h

	var buf bytes.Buffer

	buf.Write(h.preformat)

	for _, a := range attrs {
		h.appendAttr(&buf, h.prefix, a)
	}

	clone.preformat = buf.Bytes()

	return &clone
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	clone := *h
	clone.prefix = h.prefix + name + "."

	return &clone
}

// appendAttr renders a as " key=value", flattening groups into dotted keys.
func (h *prettyHandler) appendAttr(buf *bytes.Buffer, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()

	if h.opts.ReplaceAttr != nil && a.Value.Kind() != slog.KindGroup {
		a = h.opts.ReplaceAttr(nil, a)
		a.Value = a.Value.Resolve()
	}

	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		if len(group) == 0 {
			return
		}

		sub := prefix
		if a.Key != "" {
			sub += a.Key + "."
		}

		for _, g := range group {
			h.appendAttr(buf, sub, g)
		}

		return
	}

	buf.WriteByte(' ')
	buf.WriteString(h.style.key.Render(prefix + a.Key + "="))
	h.appendValue(buf, a.Value)
}

func (h *prettyHandler) appendValue(buf *bytes.Buffer, v slog.Value) {
	switch v.Kind() {
	case slog.KindString:
		buf.WriteString(h.style.str.Render(quoteIfNeeded(v.String())))

	case slog.KindInt64, slog.KindUint64, slog.KindFloat64, slog.KindDuration:
		buf.WriteString(h.style.num.Render(v.String()))

	case slog.KindBool:
		buf.WriteString(h.style.boolean.Render(v.String()))

	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			buf.WriteString(h.style.str.Render(quoteIfNeeded(err.Error())))

			return
		}

		buf.WriteString(h.style.other.Render(quoteIfNeeded(v.String())))

	default:
		buf.WriteString(h.style.other.Render(quoteIfNeeded(v.String())))
	}
}

func quoteIfNeeded(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}

	return s
}

func padRight(s string, n int) string {
	if len(s) >= n {
		return s
	}

	return s + strings.Repeat(" ", n-len(s))
}

// indentWriter re-indents each JSON document written to it. slog's JSON
// handler writes exactly one object per call.
type indentWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (iw *indentWriter) Write(p []byte) (int, error) {
	var buf bytes.Buffer

	if err := json.Indent(&buf, bytes.TrimRight(p, "\n"), "", "  "); err != nil {
		buf.Reset()
		buf.Write(p)
	} else {
		buf.WriteByte('\n')
	}

	iw.mu.Lock()
	defer iw.mu.Unlock()

	if _, err := iw.w.Write(buf.Bytes()); err != nil {
		return 0, err
	}

	return len(p), nil
}
