package lang

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

// evaluateValue converts trimmed value text into a Value. The shapes are
// tried in order: string literal, number, array, expression, constant name.
func (p *parser) evaluateValue(text string) (Value, error) {
	switch {
	case isStringLiteral(text):
		return Value{Kind: KindString, Str: text[1 : len(text)-1]}, nil

	case numberRule.matches(text):
		return p.parseNumber(text)

	case isArrayLiteral(text):
		return p.parseArray(text[1 : len(text)-1])

	case isExpression(text):
		return p.evaluateExpression(text[2 : len(text)-1])
	}

	if v, ok := p.constants.Get(text); ok {
		return v.Clone(), nil
	}

	return Value{}, p.fail(ErrUnknownValue, slog.String("value", text))
}

// parseNumber converts text matched by numberRule into a Float when it holds
// a decimal point and an Integer otherwise.
func (p *parser) parseNumber(text string) (Value, error) {
	if strings.Contains(text, ".") {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Value{}, p.fail(ErrUnknownValue, slog.String("value", text)).Wrap(err)
		}

		return Value{Kind: KindFloat, Float: f}, nil
	}

	i, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return Value{}, p.fail(ErrUnknownValue, slog.String("value", text)).Wrap(err)
	}

	return Value{Kind: KindInteger, Int: i}, nil
}

// parseArray evaluates the interior of an array literal. An empty interior
// is an empty array.
func (p *parser) parseArray(interior string) (Value, error) {
	interior = strings.TrimSpace(interior)
	if interior == "" {
		return Value{Kind: KindArray, Array: []Value{}}, nil
	}

	tokens, err := p.scanArray(interior)
	if err != nil {
		return Value{}, err
	}

	if len(tokens) == 0 {
		return Value{}, p.fail(ErrInvalidArraySyntax, slog.String("array", interior))
	}

	elems := make([]Value, 0, len(tokens))

	for _, tok := range tokens {
		v, err := p.evaluateValue(tok)
		if err != nil {
			return Value{}, err
		}

		elems = append(elems, v)
	}

	return Value{Kind: KindArray, Array: elems}, nil
}

// numericRun matches an optionally signed run of digit groups joined by
// dots, such as "7", "-1.5", or "1.2.3.4".
var numericRun = regexp.MustCompile(`^-?\d+(\.\d+)*`)

// scanArray extracts the string and number tokens of an array interior from
// left to right, ignoring any other characters between them.
//
// A run with exactly one dot is a single Float token. A run with more dots
// is split into one Integer token per group. Nested arrays and expressions
// are rejected.
func (p *parser) scanArray(s string) ([]string, error) {
	var tokens []string

	for i := 0; i < len(s); {
		switch {
		case s[i] == '"':
			end := strings.IndexByte(s[i+1:], '"')
			if end < 0 {
				return nil, p.fail(ErrInvalidArraySyntax,
					slog.String("array", s),
					slog.String("unterminated", s[i:]))
			}

			tokens = append(tokens, s[i:i+end+2])
			i += end + 2

		case s[i] == '{':
			return nil, p.fail(ErrUnknownValue,
				slog.String("value", enclosed(s[i:], '{', '}')))

		case strings.HasPrefix(s[i:], "@["):
			return nil, p.fail(ErrUnknownValue,
				slog.String("value", enclosed(s[i:], '[', ']')))

		default:
			run := numericRun.FindString(s[i:])
			if run == "" {
				i++

				continue
			}

			if strings.Count(run, ".") > 1 {
				tokens = append(tokens, strings.Split(run, ".")...)
			} else {
				tokens = append(tokens, run)
			}

			i += len(run)
		}
	}

	return tokens, nil
}

// enclosed returns the prefix of s up to and including the delimiter that
// balances the first lhs delimiter, or all of s if it is never balanced.
func enclosed(s string, lhs, rhs byte) string {
	depth := 0

	for i := range len(s) {
		switch s[i] {
		case lhs:
			depth++

		case rhs:
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}

	return s
}
