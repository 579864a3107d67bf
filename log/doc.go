// Package log is a small leveled logger built on [log/slog].
//
// A [Logger] is an immutable value configured once by functional options.
// Reconfiguring with [Logger.Wrap] or adding attributes with [Logger.With]
// returns a new Logger, so a Logger may be shared between goroutines freely.
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithTimeLayout("kitchen"),
//		log.WithCaller(true))
//
//	logger.Debug("parsed", slog.Int("dictionaries", 3))
//
// # Levels
//
// Five levels are named: [LevelTrace], [LevelDebug], [LevelInfo],
// [LevelWarn] and [LevelError]. Records below the configured level are
// dropped before any formatting happens. The default is [LevelWarn] because
// converted documents are written to standard output and the log should stay
// quiet unless something is wrong.
//
// # Formats
//
// [FormatText] writes key=value pairs and [FormatJSON] writes one JSON object
// per record. With [WithPretty], both are colorized using lipgloss; the JSON
// format then becomes an indented block that is easier to read in a terminal
// but is no longer valid JSON. Colors are dropped automatically when the
// output is not a terminal.
//
// # Timestamps
//
// [WithTimeLayout] accepts any layout understood by [time.Time.Format] or
// the name of a layout constant from package [time], matched loosely
// ("RFC3339Nano", "rfc-3339-nano"). The name "none", or an empty string,
// omits timestamps.
//
// # Package-level logger
//
// The functions [Trace], [Debug], [Info], [Warn] and [Error], and their
// Context variants, write through [Default], which logs to standard error.
// [Config] replaces it atomically.
package log
