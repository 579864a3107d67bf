package cmd

import (
	"context"
	"io"
	"log/slog"

	"github.com/ardnew/cfgconv/cli/cmd/repl"
	"github.com/ardnew/cfgconv/log"
)

// Repl starts an interactive session, optionally preloaded with sources.
type Repl struct {
	Sources []string `help:"Source files to preload" name:"source" placeholder:"FILE" short:"f"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	var source string

	if len(r.Sources) > 0 {
		if source, err = readSources(r.Sources); err != nil {
			return err
		}
	}

	var cacheDir string
	if ktx := kongContextFrom(ctx); ktx != nil {
		cacheDir = ktx.Model.Vars()[CacheIdentifier]
	}

	log.DebugContext(ctx, "starting repl",
		slog.Any("sources", r.Sources),
		slog.String("cache", cacheDir),
	)

	return repl.Run(ctx, source, cacheDir, log.Default(), parseOptionsFrom(ctx)...)
}

// readSources returns the concatenation of the given sources.
func readSources(sources []string) (string, error) {
	srcs, err := openSources(sources)
	if err != nil {
		return "", err
	}
	defer srcs.Close()

	data, err := io.ReadAll(srcs)
	if err != nil {
		return "", ErrReadSource.Wrap(err)
	}

	return string(data), nil
}
