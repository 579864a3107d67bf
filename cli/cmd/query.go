package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/cfgconv/lang"
)

// Query runs an expression over the dictionaries and constants of a source.
type Query struct {
	Expr   string   `arg:"" help:"Expression, e.g. 'server.port + 1' or 'env(\"HOME\")'." name:"expr"`
	Source []string `       help:"Source file(s) to query, or '-' for stdin."           short:"f"`
}

// Run executes the query command.
func (q *Query) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	doc, err := loadOrEmpty(ctx, q.Source)
	if err != nil {
		return err
	}

	result, err := doc.Query(ctx, q.Expr)
	if err != nil {
		return lang.WrapError(err).With(slog.String("command", "query"))
	}

	fmt.Fprintln(outputFrom(ctx), lang.FormatResult(result))

	return nil
}
