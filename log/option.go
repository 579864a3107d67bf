package log

import "io"

// Option configures a [Logger] created by [Make] or [Logger.Wrap].
type Option func(*settings)

// WithOutput sets the writer for log records. A nil writer discards them.
func WithOutput(w io.Writer) Option {
	return func(s *settings) {
		if w == nil {
			w = io.Discard
		}

		s.output = w
	}
}

// WithLevel sets the minimum level of records that are written.
func WithLevel(level Level) Option {
	return func(s *settings) { s.level = level }
}

// WithFormat sets the output format.
func WithFormat(format Format) Option {
	return func(s *settings) { s.format = format }
}

// WithTimeLayout sets the timestamp layout.
//
// The layout may name a layout from the [time] package, such as "RFC3339",
// "RFC3339Nano" or "DateTime", matched case-insensitively. Any other text is
// passed verbatim to [time.Time.Format]. A blank layout or "none" disables
// timestamps.
func WithTimeLayout(layout string) Option {
	resolved := resolveLayout(layout)

	return func(s *settings) { s.layout = resolved }
}

// WithCaller sets whether records include the source location of the call.
func WithCaller(enable bool) Option {
	return func(s *settings) { s.caller = enable }
}

// WithPretty sets whether records are colorized. Colors are only written
// when the output is a terminal that supports them.
func WithPretty(enable bool) Option {
	return func(s *settings) { s.pretty = enable }
}
