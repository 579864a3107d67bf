package log

//go:generate go tool stringer --linecomment --type Level,Format --output config_string.go

import (
	"io"
	"iter"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// Level represents the severity of a log message.
type Level slog.Level

const levelTraceMask = -8

const (
	LevelTrace Level = Level(levelTraceMask)  // trace
	LevelDebug Level = Level(slog.LevelDebug) // debug
	LevelInfo  Level = Level(slog.LevelInfo)  // info
	LevelWarn  Level = Level(slog.LevelWarn)  // warn
	LevelError Level = Level(slog.LevelError) // error
)

// DefaultLevel is the default log level. Converted output goes to stdout, so
// only problems are reported unless asked otherwise.
const DefaultLevel = LevelWarn

var levels = []Level{LevelTrace, LevelDebug, LevelInfo, LevelWarn, LevelError}

// Levels returns an iterator over the names of all log levels, lowest first.
func Levels() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, level := range levels {
			if !yield(level.String()) {
				return
			}
		}
	}
}

// ParseLevel parses the name of a log level, case-insensitively.
// Besides "trace", any text accepted by [slog.Level.UnmarshalText] is valid,
// such as "warn" or "info+2". Unrecognized text yields [DefaultLevel].
func ParseLevel(s string) Level {
	if strings.EqualFold(strings.TrimSpace(s), LevelTrace.String()) {
		return LevelTrace
	}

	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return DefaultLevel
	}

	return Level(l)
}

// Format represents the output format for log messages.
type Format int

const (
	FormatText Format = iota // text
	FormatJSON               // json
)

// DefaultFormat is the default log message format.
const DefaultFormat = FormatText

// Formats returns an iterator over the names of all log formats.
func Formats() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, format := range []Format{FormatText, FormatJSON} {
			if !yield(format.String()) {
				return
			}
		}
	}
}

// ParseFormat parses the name of a log format. Unrecognized text yields
// [DefaultFormat].
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case FormatJSON.String():
		return FormatJSON

	case FormatText.String():
		return FormatText

	default:
		return DefaultFormat
	}
}

// DefaultTimeLayout is the default timestamp layout.
const DefaultTimeLayout = time.RFC3339

// DefaultCaller is the default setting for including caller information.
const DefaultCaller = false

// DefaultPretty is the default setting for colorized output.
const DefaultPretty = true

// settings is the configuration of a [Logger]. It is never modified once a
// Logger holds it, so Loggers are safe to share.
type settings struct {
	output io.Writer
	layout string // resolved time layout; empty disables timestamps
	level  Level
	format Format
	caller bool
	pretty bool
}

func defaults(w io.Writer) settings {
	if w == nil {
		w = io.Discard
	}

	return settings{
		output: w,
		layout: DefaultTimeLayout,
		level:  DefaultLevel,
		format: DefaultFormat,
		caller: DefaultCaller,
		pretty: DefaultPretty,
	}
}

// with returns a copy of s with opts applied.
func (s settings) with(opts ...Option) settings {
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}

	return s
}

// handler returns a slog.Handler writing records as configured by s.
func (s settings) handler() slog.Handler {
	opts := &slog.HandlerOptions{
		AddSource:   s.caller,
		Level:       slog.Level(s.level),
		ReplaceAttr: s.replaceAttr,
	}

	switch {
	case s.pretty:
		return newPrettyHandler(s.output, opts, s.layout, s.format == FormatJSON)

	case s.format == FormatJSON:
		return slog.NewJSONHandler(s.output, opts)

	default:
		return slog.NewTextHandler(s.output, opts)
	}
}

// replaceAttr formats the time with the configured layout, dropping it if
// the layout is empty, and names levels by [Level.String] so that trace is
// not written as "DEBUG-4".
func (s settings) replaceAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}

	switch a.Key {
	case slog.TimeKey:
		if s.layout == "" {
			return slog.Attr{}
		}

		if t, ok := a.Value.Any().(time.Time); ok {
			a.Value = slog.StringValue(t.Format(s.layout))
		}

	case slog.LevelKey:
		if l, ok := a.Value.Any().(slog.Level); ok {
			a.Value = slog.StringValue(levelName(l))
		}
	}

	return a
}

// levelName returns the upper-case name of l, with an offset from the
// nearest named level below it if l is not a named level.
func levelName(l slog.Level) string {
	base := LevelTrace

	for _, named := range levels {
		if slog.Level(named) <= l {
			base = named
		}
	}

	name := strings.ToUpper(base.String())
	if d := int(l) - int(base); d > 0 {
		name += "+" + strconv.Itoa(d)
	} else if d < 0 {
		name += strconv.Itoa(d)
	}

	return name
}

// timeLayouts maps layout names to layouts, keyed by lower-case letters and
// digits only so that "RFC3339Nano", "rfc-3339-nano" and "rfc3339nano" agree.
var timeLayouts = map[string]string{
	"rfc3339":     time.RFC3339,
	"rfc3339nano": time.RFC3339Nano,
	"datetime":    time.DateTime,
	"dateonly":    time.DateOnly,
	"timeonly":    time.TimeOnly,
	"ansic":       time.ANSIC,
	"unixdate":    time.UnixDate,
	"rubydate":    time.RubyDate,
	"rfc822":      time.RFC822,
	"rfc822z":     time.RFC822Z,
	"rfc850":      time.RFC850,
	"kitchen":     time.Kitchen,
	"stamp":       time.Stamp,
	"stampmilli":  time.StampMilli,
	"stampmicro":  time.StampMicro,
	"stampnano":   time.StampNano,
	"ms":          time.StampMilli,
	"us":          time.StampMicro,
	"ns":          time.StampNano,
	"none":        "",
}

// resolveLayout returns the layout named by name, or name itself if it is
// not a known name. A blank name disables timestamps.
func resolveLayout(name string) string {
	key := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}

		return -1
	}, strings.ToLower(name))

	if strings.TrimSpace(name) == "" {
		return ""
	}

	if layout, ok := timeLayouts[key]; ok {
		return layout
	}

	return name
}
