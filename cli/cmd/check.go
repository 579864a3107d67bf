package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/cfgconv/log"
)

// Check parses each source and reports the first error.
type Check struct {
	Sources []string `arg:"" default:"-" help:"Source files to check, or '-' for stdin." name:"source"`
}

// Run executes the check command.
func (c *Check) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	out := outputFrom(ctx)

	for _, src := range c.Sources {
		doc, err := loadDocument(ctx, []string{src})
		if err != nil {
			return err
		}

		log.DebugContext(ctx, "checked",
			slog.String("source", src),
			slog.Int("dictionaries", doc.Len()),
			slog.Int("constants", len(doc.ConstantNames())),
		)

		fmt.Fprintf(out, "%s: ok (%d dictionaries, %d constants)\n",
			src, doc.Len(), len(doc.ConstantNames()))
	}

	return nil
}
