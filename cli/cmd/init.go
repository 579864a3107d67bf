package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"slices"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/cfgconv/lang"
	"github.com/ardnew/cfgconv/log"
	"github.com/ardnew/cfgconv/profile"
)

// defaultConfigIndent is the indent width of the generated configuration file.
const defaultConfigIndent = 2

// Init writes the current flag values as a configuration file in the
// configuration language.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)
	if ktx == nil {
		panic("internal error: kong context undefined")
	}

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config path undefined")
	}

	if _, err := os.Stat(confPath); err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath), slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	file, err := os.Create(confPath)
	if err != nil {
		return ErrWriteConfig.With(slog.String("file", confPath)).Wrap(err)
	}
	defer file.Close()

	if err := i.buildDocument(ktx).Format(ctx, file, defaultConfigIndent); err != nil {
		return ErrWriteConfig.With(slog.String("file", confPath)).Wrap(err)
	}

	log.DebugContext(ctx, "initialized configuration file",
		slog.String("path", confPath))

	return nil
}

// buildDocument returns a document with a single dictionary named
// [ConfigIdentifier] holding every visible flag that has a value. Hyphens in
// flag names become underscores.
func (i *Init) buildDocument(ktx *kong.Context) *lang.Document {
	b := lang.NewBuilder()

	ignore := []string{"help", "version", profile.Tag}

	var entries []lang.Entry

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(ignore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		if v, ok := flagValue(b, ktx.FlagValue(flag)); ok {
			key := strings.ReplaceAll(flag.Name, "-", "_")
			entries = append(entries, b.Entry(key, v))
		}
	}

	return b.Document(b.Entry(ConfigIdentifier, b.Dictionary(entries...)))
}

// flagValue converts a flag value to a language value. Booleans become the
// strings "true" and "false". Empty strings and empty slices report false.
func flagValue(b *lang.Builder, val any) (lang.Value, bool) {
	if val == nil {
		return lang.Value{}, false
	}

	rv := reflect.ValueOf(val)

	switch rv.Kind() {
	case reflect.Bool:
		return b.String(fmt.Sprint(rv.Bool())), true

	case reflect.String:
		if rv.Len() == 0 {
			return lang.Value{}, false
		}

		return b.String(rv.String()), true

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return b.Integer(rv.Int()), true

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return b.Integer(int64(rv.Uint())), true //nolint:gosec

	case reflect.Float32, reflect.Float64:
		return b.Float(rv.Float()), true

	case reflect.Slice, reflect.Array:
		if rv.Len() == 0 {
			return lang.Value{}, false
		}

		elems := make([]lang.Value, 0, rv.Len())

		for j := range rv.Len() {
			if e, ok := flagValue(b, rv.Index(j).Interface()); ok {
				elems = append(elems, e)
			}
		}

		return b.Array(elems...), true

	default:
		return b.String(fmt.Sprint(val)), true
	}
}
