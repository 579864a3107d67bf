package cmd

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ardnew/cfgconv/lang"
	"github.com/ardnew/cfgconv/log"
)

// Output formats.
const (
	FormatYAML   = "yaml"
	FormatJSON   = "json"
	FormatTOML   = "toml"
	FormatNative = "native"
)

// Formats lists every output format.
var Formats = []string{FormatYAML, FormatJSON, FormatTOML, FormatNative}

// formatFor returns the output format named by format or, if it is empty, by
// the extension of path. YAML is the fallback.
func formatFor(format, path string) (string, error) {
	if format != "" {
		format = strings.ToLower(format)
		if !slices.Contains(Formats, format) {
			return "", ErrInvalidFormat.With(
				slog.String("format", format),
				slog.String("valid", strings.Join(Formats, ",")),
			)
		}

		return format, nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil

	case ".toml":
		return FormatTOML, nil

	case ".cfg", ".conf":
		return FormatNative, nil

	default:
		return FormatYAML, nil
	}
}

// writeDocument writes doc to w in the given format.
func writeDocument(
	ctx context.Context,
	w io.Writer,
	doc *lang.Document,
	format string,
	indent int,
) error {
	switch format {
	case FormatYAML:
		return doc.FormatYAML(ctx, w, indent)

	case FormatJSON:
		return doc.FormatJSON(ctx, w, indent)

	case FormatTOML:
		return doc.FormatTOML(ctx, w, indent)

	case FormatNative:
		return doc.Format(ctx, w, indent)

	default:
		return ErrInvalidFormat.With(slog.String("format", format))
	}
}

// Convert reads a document in the configuration language and writes it in
// another format, YAML by default.
type Convert struct {
	Input  string `help:"Input file in the configuration language, or '-' for stdin." placeholder:"FILE" required:"" short:"i"`
	Output string `default:"-" help:"Output file, or '-' for stdout."                 placeholder:"FILE"               short:"o"`
	Format string `default:""  enum:",yaml,json,toml,native" help:"Output format (default: from output file extension, else yaml)." short:"t"`
	Indent int    `default:"2" help:"Indent width for formatted output."`
}

// Run executes the convert command.
func (c *Convert) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	format, err := formatFor(c.Format, c.Output)
	if err != nil {
		return err
	}

	doc, err := loadDocument(ctx, []string{c.Input})
	if err != nil {
		return err
	}

	out, err := openOutput(ctx, c.Output)
	if err != nil {
		return err
	}

	err = writeDocument(ctx, out, doc, format, c.Indent)
	if cerr := out.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		return ErrWriteOutput.
			With(slog.String("output", c.Output), slog.String("format", format)).
			Wrap(err)
	}

	log.InfoContext(ctx, "converted",
		slog.String("input", c.Input),
		slog.String("output", c.Output),
		slog.String("format", format),
		slog.Int("dictionaries", doc.Len()),
	)

	return nil
}
