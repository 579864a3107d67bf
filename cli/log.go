package cli

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/cfgconv/log"
)

// logLevel applies the log level as soon as kong decodes the flag, so that
// errors reported while parsing the rest of the command line already honor it.
type logLevel string

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *logLevel) UnmarshalText(text []byte) error {
	*l = logLevel(text)
	log.Config(log.WithLevel(log.ParseLevel(string(text))))

	return nil
}

// logFormat is the format counterpart of [logLevel].
type logFormat string

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *logFormat) UnmarshalText(text []byte) error {
	*f = logFormat(text)
	log.Config(log.WithFormat(log.ParseFormat(string(text))))

	return nil
}

type logConfig struct {
	Level      logLevel  `default:"${logLevelDefault}"  enum:"${logLevelEnum}"  help:"Minimum level of log records (${enum})."`
	Format     logFormat `default:"${logFormatDefault}" enum:"${logFormatEnum}" help:"Log record format (${enum})."`
	TimeLayout string    `default:"RFC3339"             help:"Timestamp layout or layout name; 'none' omits timestamps." name:"time"`
	Caller     bool      `default:"false"               help:"Include the source location of each record."             negatable:""`
	Pretty     bool      `default:"true"                help:"Colorize records written to a terminal."                 negatable:""`
}

func (logConfig) vars() kong.Vars {
	return kong.Vars{
		"logLevelDefault":  log.DefaultLevel.String(),
		"logLevelEnum":     strings.Join(slices.Collect(log.Levels()), ","),
		"logFormatDefault": log.DefaultFormat.String(),
		"logFormatEnum":    strings.Join(slices.Collect(log.Formats()), ","),
	}
}

func (logConfig) group() kong.Group {
	return kong.Group{Key: "log", Title: "Logging options"}
}

// start applies every parsed logging flag and returns a function that logs
// the end of the run.
func (f *logConfig) start(ctx context.Context) (stop func()) {
	log.Config(
		log.WithLevel(log.ParseLevel(string(f.Level))),
		log.WithFormat(log.ParseFormat(string(f.Format))),
		log.WithTimeLayout(f.TimeLayout),
		log.WithCaller(f.Caller),
		log.WithPretty(f.Pretty),
	)

	log.DebugContext(ctx, "logger configured",
		slog.String("level", string(f.Level)),
		slog.String("format", string(f.Format)),
		slog.String("time", f.TimeLayout),
		slog.Bool("caller", f.Caller),
		slog.Bool("pretty", f.Pretty),
	)

	return func() { log.TraceContext(ctx, "done") }
}

// logFlags maps each boolean logging flag, and its negation, to the option
// it applies.
var logFlags = map[string]func(*logConfig, bool) log.Option{ //nolint:gochecknoglobals
	"pretty": func(f *logConfig, v bool) log.Option {
		f.Pretty = v

		return log.WithPretty(v)
	},
	"caller": func(f *logConfig, v bool) log.Option {
		f.Caller = v

		return log.WithCaller(v)
	},
}

// scan applies logging flags found anywhere in args before kong parses them.
// The level and format are applied again by their UnmarshalText methods, but
// boolean flags have no such hook, and a flag placed after a subcommand would
// otherwise be applied too late for errors reported during parsing.
func (f *logConfig) scan(args []string) {
	for i := 0; i < len(args); i++ {
		arg := args[i]

		negate := false

		name, ok := strings.CutPrefix(arg, "--log-")
		if !ok {
			if name, ok = strings.CutPrefix(arg, "--no-log-"); !ok {
				continue
			}

			negate = true
		}

		name, value, assigned := strings.Cut(name, "=")

		switch name {
		case "level", "format":
			if negate {
				continue
			}

			if !assigned && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				i++
				value = args[i]
			}

			if name == "level" {
				_ = f.Level.UnmarshalText([]byte(value))
			} else {
				_ = f.Format.UnmarshalText([]byte(value))
			}

		default:
			apply, known := logFlags[name]
			if !known {
				continue
			}

			v := true

			if assigned {
				b, err := strconv.ParseBool(value)
				if err != nil {
					continue
				}

				v = b
			}

			log.Config(apply(f, v != negate))
		}
	}
}
