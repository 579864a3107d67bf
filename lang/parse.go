package lang

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ardnew/cfgconv/log"
)

// parser holds the state of a single parse: the source lines, a cursor into
// them, and the constant table. A parser is never shared between parses.
type parser struct {
	lines     []string
	pos       int
	constants *Dictionary
	maxDepth  int
	logger    log.Logger
}

// line returns the 1-based line number at the cursor. Once the lines are
// exhausted this is one past the last line.
func (p *parser) line() int {
	return p.pos + 1
}

// current returns the trimmed text of the line at the cursor.
func (p *parser) current() string {
	return strings.TrimSpace(p.lines[p.pos])
}

// fail returns a copy of the sentinel kind located at the cursor line.
func (p *parser) fail(kind *Error, attrs ...slog.Attr) *Error {
	return kind.AtLine(p.line()).With(attrs...)
}

// parseDocument is the line driver. It classifies each top-level line and
// stores every completed dictionary in root.
func (p *parser) parseDocument(ctx context.Context, root *Dictionary) error {
	for p.pos < len(p.lines) {
		line := p.current()

		p.logger.TraceContext(ctx, "line",
			slog.Int("line", p.line()),
			slog.String("text", line))

		switch {
		case isSkippable(line):
			p.pos++

		case isConstantLine(line):
			if err := p.parseConstant(ctx, line); err != nil {
				return err
			}

		case isDictionaryStart(line):
			name, dict, err := p.parseDictionary(ctx, 1)
			if err != nil {
				return err
			}

			if root.Has(name) {
				return p.fail(ErrDuplicateKey, slog.String("key", name))
			}

			root.Set(name, Value{Kind: KindDictionary, Dict: dict})

		default:
			return p.fail(ErrUnknownConstruct, slog.String("text", line))
		}
	}

	return nil
}

// parseConstant parses a `<value> -> <name>;` declaration and stores the
// evaluated value in the constant table, replacing any previous value.
func (p *parser) parseConstant(ctx context.Context, line string) error {
	m, ok := constantRule.match(line)
	if !ok {
		return p.fail(ErrInvalidConstantDeclaration, slog.String("text", line))
	}

	value, err := p.evaluateValue(strings.TrimSpace(m["value"]))
	if err != nil {
		return err
	}

	p.constants.Set(m["name"], value)

	p.logger.TraceContext(ctx, "constant",
		slog.String("name", m["name"]),
		slog.String("kind", value.Kind.String()))

	p.pos++

	return nil
}

// parseDictionary parses a dictionary block starting at the `begin` line
// under the cursor and leaves the cursor on the line after its `end`.
func (p *parser) parseDictionary(
	ctx context.Context,
	depth int,
) (string, *Dictionary, error) {
	if p.maxDepth > 0 && depth > p.maxDepth {
		return "", nil, p.fail(ErrMaxDepthExceeded,
			slog.Int("depth", depth),
			slog.Int("max_depth", p.maxDepth))
	}

	header := p.current()

	m, ok := headerRule.match(header)
	if !ok {
		return "", nil, p.fail(ErrInvalidDictionaryDeclaration,
			slog.String("text", header))
	}

	name := m["name"]
	dict := new(Dictionary)

	p.logger.TraceContext(ctx, "dictionary begin",
		slog.String("name", name),
		slog.Int("depth", depth))

	p.pos++

	for p.pos < len(p.lines) {
		line := p.current()

		switch {
		case isDictionaryEnd(line):
			p.pos++

			p.logger.TraceContext(ctx, "dictionary end",
				slog.String("name", name),
				slog.Int("entries", dict.Len()))

			return name, dict, nil

		case isDictionaryStart(line):
			nested, sub, err := p.parseDictionary(ctx, depth+1)
			if err != nil {
				return "", nil, err
			}

			if dict.Has(nested) {
				return "", nil, p.fail(ErrDuplicateKey,
					slog.String("key", nested),
					slog.String("dictionary", name))
			}

			dict.Set(nested, Value{Kind: KindDictionary, Dict: sub})

		case !strings.HasSuffix(line, ";"):
			return "", nil, p.fail(ErrMissingSemicolon, slog.String("text", line))

		default:
			if err := p.parseAssignment(line, name, dict); err != nil {
				return "", nil, err
			}

			p.pos++
		}
	}

	return "", nil, p.fail(ErrUnterminatedDictionary,
		slog.String("dictionary", name))
}

// parseAssignment parses a `<key> := <value>;` line into dict.
func (p *parser) parseAssignment(line, name string, dict *Dictionary) error {
	m, ok := assignmentRule.match(line)
	if !ok {
		return p.fail(ErrInvalidAssignment, slog.String("text", line))
	}

	key := m["key"]
	if dict.Has(key) {
		return p.fail(ErrDuplicateKey,
			slog.String("key", key),
			slog.String("dictionary", name))
	}

	value, err := p.evaluateValue(strings.TrimSpace(m["value"]))
	if err != nil {
		return err
	}

	dict.Set(key, value)

	return nil
}
