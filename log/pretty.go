package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles of a pretty handler. Styles come from a renderer
// bound to the output, so colors are dropped when it is not a terminal.
type palette struct {
	key, str, num, yes, no, dur, ts, null lipgloss.Style
	level                                  map[Level]lipgloss.Style
}

func newPalette(w io.Writer) *palette {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style { return r.NewStyle().Foreground(lipgloss.Color(c)) }

	return &palette{
		key:  fg("8"),
		str:  fg("6"),
		num:  fg("3"),
		yes:  fg("2"),
		no:   fg("1"),
		dur:  fg("5"),
		ts:   fg("4"),
		null: fg("8"),
		level: map[Level]lipgloss.Style{
			LevelTrace: fg("4"),
			LevelDebug: fg("4"),
			LevelInfo:  fg("2"),
			LevelWarn:  fg("3").Bold(true),
			LevelError: fg("1").Bold(true),
		},
	}
}

// levelStyle returns the style of the nearest named level at or below l.
func (p *palette) levelStyle(l slog.Level) lipgloss.Style {
	style := p.level[LevelTrace]

	for _, named := range levels {
		if slog.Level(named) <= l {
			style = p.level[named]
		}
	}

	return style
}

// prettyHandler writes colorized records, either as key=value pairs on one
// line or, in multiline mode, as an indented block with one field per line.
type prettyHandler struct {
	opts      slog.HandlerOptions
	mu        *sync.Mutex
	w         io.Writer
	colors    *palette
	layout    string
	multiline bool
	attrs     []slog.Attr // pre-bound attributes, keys already qualified
	prefix    string      // group prefix for attributes added later
}

func newPrettyHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
	layout string,
	multiline bool,
) *prettyHandler {
	return &prettyHandler{
		opts:      *opts,
		mu:        &sync.Mutex{},
		w:         w,
		colors:    newPalette(w),
		layout:    layout,
		multiline: multiline,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append(h.attrs[:len(h.attrs):len(h.attrs)], h.qualify(attrs)...)

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.prefix = h.prefix + name + "."

	return &c
}

// qualify prefixes the keys of attrs with the current group.
func (h *prettyHandler) qualify(attrs []slog.Attr) []slog.Attr {
	if h.prefix == "" {
		return attrs
	}

	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = slog.Attr{Key: h.prefix + a.Key, Value: a.Value}
	}

	return out
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	first := true
	field := func(key, value string) {
		switch {
		case h.multiline && first:
			buf.WriteString("{\n  ")
		case h.multiline:
			buf.WriteString(",\n  ")
		case !first:
			buf.WriteByte(' ')
		}

		first = false

		buf.WriteString(h.colors.key.Render(key))

		if h.multiline {
			buf.WriteString(": ")
		} else {
			buf.WriteByte('=')
		}

		buf.WriteString(value)
	}

	if !r.Time.IsZero() && h.layout != "" {
		field(slog.TimeKey, h.colors.ts.Render(r.Time.Format(h.layout)))
	}

	field(slog.LevelKey, h.colors.levelStyle(r.Level).Render(levelName(r.Level)))

	if h.opts.AddSource {
		if src := r.Source(); src != nil && src.File != "" {
			field(slog.SourceKey, h.colors.str.Render(src.File+":"+strconv.Itoa(src.Line)))
		}
	}

	field(slog.MessageKey, h.colors.str.Render(r.Message))

	emit := func(a slog.Attr) {
		h.walk(field, "", a)
	}

	for _, a := range h.attrs {
		emit(a)
	}

	r.Attrs(func(a slog.Attr) bool {
		emit(slog.Attr{Key: h.prefix + a.Key, Value: a.Value})

		return true
	})

	if h.multiline {
		buf.WriteString("\n}")
	}

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

// walk writes a, flattening groups into dotted keys.
func (h *prettyHandler) walk(field func(key, value string), prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}

		for _, g := range a.Value.Group() {
			h.walk(field, prefix, g)
		}

		return
	}

	field(prefix+a.Key, h.value(a.Value))
}

// value renders v in the color of its kind.
func (h *prettyHandler) value(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return h.colors.str.Render(v.String())

	case slog.KindInt64:
		return h.colors.num.Render(strconv.FormatInt(v.Int64(), 10))

	case slog.KindUint64:
		return h.colors.num.Render(strconv.FormatUint(v.Uint64(), 10))

	case slog.KindFloat64:
		return h.colors.num.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64))

	case slog.KindBool:
		if v.Bool() {
			return h.colors.yes.Render("true")
		}

		return h.colors.no.Render("false")

	case slog.KindDuration:
		return h.colors.dur.Render(v.Duration().String())

	case slog.KindTime:
		layout := h.layout
		if layout == "" {
			layout = time.RFC3339
		}

		return h.colors.ts.Render(v.Time().Format(layout))

	default:
		switch a := v.Any().(type) {
		case nil:
			return h.colors.null.Render("null")

		case slog.Level:
			return h.colors.levelStyle(a).Render(levelName(a))

		case error:
			return h.colors.no.Render(a.Error())

		default:
			return h.colors.str.Render(strings.TrimSpace(fmt.Sprint(a)))
		}
	}
}
