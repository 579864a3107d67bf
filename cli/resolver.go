package cli

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/cfgconv/lang"
	"github.com/ardnew/cfgconv/log"
)

// resolve returns a [kong.ConfigurationLoader] reading flag values from the
// dictionary called name in a configuration-language file:
//
//	begin config
//	  log_level := "debug";
//	  max_depth := 50;
//	  begin pprof
//	    mode := "cpu";
//	  end;
//	end;
//
// Keys match flag names with hyphens written as hyphens or underscores, and
// nested dictionaries prefix their keys, so pprof.mode sets --pprof-mode.
// Integers and floats are passed to kong in decimal, arrays as comma-separated
// lists. Flags given on the command line take precedence.
//
// A file that does not parse, or has no such dictionary, resolves nothing:
// a broken configuration file must not prevent running the command that
// would fix it.
func resolve(name string) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		doc, err := lang.ParseReader(context.Background(), r)
		if err != nil {
			log.Warn("ignoring configuration file", slog.Any("error", err))

			return config{}, nil
		}

		dict, ok := doc.Get(name)
		if !ok {
			return config{}, nil
		}

		values := make(config, dict.Len())
		values.flatten("", dict)

		return values, nil
	}
}

// config implements [kong.Resolver] over flattened configuration values.
type config map[string]string

// flatten adds every entry of dict to c, keyed by prefix and the entry key.
func (c config) flatten(prefix string, dict *lang.Dictionary) {
	for key, value := range dict.All() {
		key = prefix + strings.ReplaceAll(key, "_", "-")

		if value.Kind == lang.KindDictionary {
			c.flatten(key+"-", value.Dict)

			continue
		}

		c[key] = flagString(value)
	}
}

// flagString returns v in the form kong parses flag values.
func flagString(v lang.Value) string {
	switch v.Kind {
	case lang.KindInteger:
		return strconv.FormatInt(v.Int, 10)

	case lang.KindFloat:
		return strconv.FormatFloat(v.Float, 'f', -1, 64)

	case lang.KindArray:
		elems := make([]string, len(v.Array))
		for i, e := range v.Array {
			elems[i] = flagString(e)
		}

		return strings.Join(elems, ",")

	default:
		return v.Str
	}
}

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	if value, ok := c[strings.ReplaceAll(flag.Name, "_", "-")]; ok {
		return value, nil
	}

	return nil, nil //nolint:nilnil
}
