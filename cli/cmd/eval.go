package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/cfgconv/lang"
)

// Eval evaluates a value expression against the constants of a source.
type Eval struct {
	Value  string   `arg:"" help:"Value to evaluate, e.g. '@[a b +]' or '{1.2.3}'." name:"value"`
	Source []string `       help:"Source file(s) declaring constants, or '-' for stdin." short:"f"`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	doc, err := loadOrEmpty(ctx, e.Source)
	if err != nil {
		return err
	}

	v, err := doc.EvaluateValue(ctx, e.Value)
	if err != nil {
		return lang.WrapError(err).With(slog.String("command", "eval"))
	}

	fmt.Fprintln(outputFrom(ctx), v)

	return nil
}
