package cmd

import (
	"context"
	"log/slog"
)

// Fmt parses a source and writes it to stdout in the chosen format.
type Fmt struct {
	Native Native `cmd:"" default:"withargs" help:"Format in the configuration language (default)."`
	YAML   YAML   `cmd:""                    help:"Format as YAML."`
	JSON   JSON   `cmd:""                    help:"Format as JSON."`
	TOML   TOML   `cmd:""                    help:"Format as TOML."`
}

// FmtOptions holds the arguments shared by every fmt subcommand.
type FmtOptions struct {
	Indent int    `default:"2" help:"Indent width for formatted output." short:"n"`
	Source string `arg:""      default:"-" help:"Source input file or '-' for stdin." name:"source"`
}

func (f FmtOptions) run(ctx context.Context, format string) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	doc, err := loadDocument(ctx, []string{f.Source})
	if err != nil {
		return err
	}

	if err := writeDocument(ctx, outputFrom(ctx), doc, format, f.Indent); err != nil {
		return ErrWriteOutput.With(slog.String("format", format)).Wrap(err)
	}

	return nil
}

// Native formats a source in the configuration language.
type Native struct {
	Options FmtOptions `embed:""`
}

// Run executes the fmt native command.
func (n *Native) Run(ctx context.Context) error { return n.Options.run(ctx, FormatNative) }

// YAML formats a source as YAML.
type YAML struct {
	Options FmtOptions `embed:""`
}

// Run executes the fmt yaml command.
func (y *YAML) Run(ctx context.Context) error { return y.Options.run(ctx, FormatYAML) }

// JSON formats a source as JSON.
type JSON struct {
	Options FmtOptions `embed:""`
}

// Run executes the fmt json command.
func (j *JSON) Run(ctx context.Context) error { return j.Options.run(ctx, FormatJSON) }

// TOML formats a source as TOML.
type TOML struct {
	Options FmtOptions `embed:""`
}

// Run executes the fmt toml command.
func (t *TOML) Run(ctx context.Context) error { return t.Options.run(ctx, FormatTOML) }
