package lang

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ardnew/cfgconv/log"
)

// DefaultMaxDepth is the default maximum nesting depth of dictionaries.
// Users may modify this before parsing to change the default.
var DefaultMaxDepth = 100

// optionsKey holds parse configuration options.
// This type is gob-encodable for cache key hashing.
type optionsKey struct {
	maxDepth   int
	processEnv []string
}

// Option configures parsing or query behavior.
type Option func(*Document)

// WithMaxDepth sets the maximum nesting depth of dictionaries.
func WithMaxDepth(depth int) Option {
	return func(doc *Document) {
		doc.opts.maxDepth = depth
	}
}

// WithProcessEnv sets the environment variables visible to queries through
// the env() builtin. The format is []string{"KEY=VALUE", ...}.
// If nil, os.Environ() is used.
func WithProcessEnv(env []string) Option {
	return func(doc *Document) {
		doc.opts.processEnv = env
	}
}

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(doc *Document) {
		doc.logger = logger
	}
}

// applyDefaults sets default option values on a Document.
func applyDefaults(doc *Document) {
	doc.opts.maxDepth = DefaultMaxDepth
}

// applyOptions applies functional options to a Document.
func applyOptions(doc *Document, opts ...Option) {
	for _, opt := range opts {
		opt(doc)
	}
}

// Parse parses a sequence of source lines into a Document.
//
// Parsing stops at the first malformed line. The returned error is a
// [*Error] carrying the 1-based line number, and it matches exactly one of
// the package's sentinel errors with [errors.Is].
func Parse(ctx context.Context, lines []string, opts ...Option) (*Document, error) {
	doc := newDocument()

	applyDefaults(doc)
	applyOptions(doc, opts...)

	doc.logger.TraceContext(ctx, "parse start", slog.Int("line_count", len(lines)))

	p := &parser{
		lines:     lines,
		constants: doc.constants,
		maxDepth:  doc.opts.maxDepth,
		logger:    doc.logger,
	}

	if err := p.parseDocument(ctx, doc.root); err != nil {
		doc.logger.TraceContext(ctx, "parse failed", slog.Any("error", err))

		return nil, err
	}

	doc.logger.TraceContext(ctx, "parse complete",
		slog.Int("dictionary_count", doc.Len()),
		slog.Int("constant_count", doc.constants.Len()))

	return doc, nil
}

// ParseString parses source text into a Document.
// Lines are split on '\n' and a trailing '\r' is removed from each line.
func ParseString(ctx context.Context, s string, opts ...Option) (*Document, error) {
	return Parse(ctx, splitLines(s), opts...)
}

// splitLines splits s into lines, accepting both LF and CRLF terminators.
// A terminator at the very end of s does not produce a trailing empty line.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}

	lines := strings.Split(strings.TrimSuffix(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}

	return lines
}
