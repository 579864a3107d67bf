package lang

import (
	"context"
	"log/slog"
	"slices"
	"strings"
)

// ResultKind indicates what a line fed to a [Session] produced.
type ResultKind int

const (
	// ResultNone is produced by blank and comment lines.
	ResultNone ResultKind = iota

	// ResultPending is produced while a dictionary block is still open.
	ResultPending

	// ResultConstant is produced by a constant declaration.
	ResultConstant

	// ResultDictionary is produced by the line that closes a top-level
	// dictionary.
	ResultDictionary

	// ResultValue is produced by a bare value expression.
	ResultValue
)

// String returns a string representation of the result kind.
func (k ResultKind) String() string {
	switch k {
	case ResultNone:
		return "None"

	case ResultPending:
		return "Pending"

	case ResultConstant:
		return "Constant"

	case ResultDictionary:
		return "Dictionary"

	case ResultValue:
		return "Value"

	default:
		return "Unknown"
	}
}

// Result describes the effect of one line fed to a [Session].
type Result struct {
	Kind  ResultKind
	Name  string // constant or dictionary name
	Value Value
}

// Session accumulates source one line at a time.
//
// Declarations and dictionaries are appended to the session source only
// when the source including them still parses. Bare value expressions are
// evaluated against the current document and are not recorded.
// A Session is not safe for concurrent use.
type Session struct {
	opts    []Option
	lines   []string
	pending []string
	depth   int
	doc     *Document
}

// NewSession returns an empty session. The options are applied to every
// parse of the session source.
func NewSession(opts ...Option) *Session {
	return &Session{
		opts: opts,
		doc:  NewDocument(opts...),
	}
}

// NewSessionFrom returns a session whose source starts as the given document
// source. It fails if source does not parse.
func NewSessionFrom(ctx context.Context, source string, opts ...Option) (*Session, error) {
	s := NewSession(opts...)

	lines := splitLines(source)

	doc, err := Parse(ctx, lines, opts...)
	if err != nil {
		return nil, err
	}

	s.lines, s.doc = lines, doc

	return s, nil
}

// Feed processes one line of input.
//
// Errors leave the session as it was before the line (or, inside a
// dictionary block, before the block was opened).
func (s *Session) Feed(ctx context.Context, line string) (Result, error) {
	text := strings.TrimSpace(line)

	if s.depth > 0 {
		return s.feedBlock(ctx, line, text)
	}

	switch {
	case isSkippable(text):
		s.lines = append(s.lines, line)

		return Result{Kind: ResultNone}, nil

	case isDictionaryStart(text):
		if _, ok := headerRule.match(text); !ok {
			return Result{}, ErrInvalidDictionaryDeclaration.
				AtLine(len(s.lines) + 1).
				With(slog.String("text", text))
		}

		s.pending = []string{line}
		s.depth = 1

		return Result{Kind: ResultPending}, nil

	case isConstantLine(text):
		m, ok := constantRule.match(text)
		if !ok {
			return Result{}, ErrInvalidConstantDeclaration.
				AtLine(len(s.lines) + 1).
				With(slog.String("text", text))
		}

		if err := s.commit(ctx, line); err != nil {
			return Result{}, err
		}

		v, _ := s.doc.Constant(m["name"])

		return Result{Kind: ResultConstant, Name: m["name"], Value: v}, nil
	}

	v, err := s.doc.EvaluateValue(ctx, text)
	if err != nil {
		return Result{}, err
	}

	return Result{Kind: ResultValue, Value: v}, nil
}

// feedBlock buffers a line of an open dictionary block and commits the
// block once its outermost end line arrives.
func (s *Session) feedBlock(ctx context.Context, line, text string) (Result, error) {
	s.pending = append(s.pending, line)

	switch {
	case isDictionaryEnd(text):
		s.depth--

	case isDictionaryStart(text):
		s.depth++
	}

	if s.depth > 0 {
		return Result{Kind: ResultPending}, nil
	}

	block := s.pending
	s.pending = nil

	m, _ := headerRule.match(strings.TrimSpace(block[0]))

	if err := s.commit(ctx, block...); err != nil {
		return Result{}, err
	}

	v := Value{Kind: KindDictionary}
	v.Dict, _ = s.doc.Get(m["name"])

	return Result{Kind: ResultDictionary, Name: m["name"], Value: v}, nil
}

// commit reparses the session source with lines appended and keeps the
// result only if it parses.
func (s *Session) commit(ctx context.Context, lines ...string) error {
	candidate := slices.Concat(s.lines, lines)

	doc, err := Parse(ctx, candidate, s.opts...)
	if err != nil {
		return err
	}

	s.lines, s.doc = candidate, doc

	return nil
}

// Pending reports whether a dictionary block is open.
func (s *Session) Pending() bool {
	return s.depth > 0
}

// Depth returns the number of open dictionary blocks.
func (s *Session) Depth() int {
	return s.depth
}

// Source returns the accepted session source.
func (s *Session) Source() string {
	if len(s.lines) == 0 {
		return ""
	}

	return strings.Join(s.lines, "\n") + "\n"
}

// Document returns the document parsed from the accepted session source.
func (s *Session) Document() *Document {
	return s.doc
}

// Reset discards all accepted source and any open block.
func (s *Session) Reset() {
	s.lines = nil
	s.pending = nil
	s.depth = 0
	s.doc = NewDocument(s.opts...)
}
