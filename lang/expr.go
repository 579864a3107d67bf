package lang

import (
	"log/slog"
	"math"
	"strings"
)

// Postfix operators.
const (
	opAdd = "+"
	opSub = "-"
	opMul = "*"
	opDiv = "/"
	opMod = "mod()"
)

func isOperator(tok string) bool {
	switch tok {
	case opAdd, opSub, opMul, opDiv, opMod:
		return true
	default:
		return false
	}
}

// evaluateExpression evaluates a whitespace-separated postfix expression
// over an explicit value stack.
func (p *parser) evaluateExpression(text string) (Value, error) {
	tokens := strings.Fields(text)
	stack := make([]Value, 0, len(tokens))

	for _, tok := range tokens {
		switch {
		case numberRule.matches(tok):
			v, err := p.parseNumber(tok)
			if err != nil {
				return Value{}, err
			}

			stack = append(stack, v)

		case isOperator(tok):
			n := len(stack)
			if n < 2 {
				return Value{}, p.fail(ErrInsufficientOperands,
					slog.String("operator", tok),
					slog.Int("operands", n))
			}

			a, b := stack[n-2], stack[n-1]

			v, err := p.apply(tok, a, b)
			if err != nil {
				return Value{}, err
			}

			stack = append(stack[:n-2], v)

		default:
			v, ok := p.constants.Get(tok)
			if !ok {
				return Value{}, p.fail(ErrUnknownToken, slog.String("token", tok))
			}

			if !v.IsNumeric() {
				return Value{}, p.fail(ErrNonNumericOperand,
					slog.String("token", tok),
					slog.String("kind", v.Kind.String()))
			}

			stack = append(stack, v)
		}
	}

	if len(stack) != 1 {
		return Value{}, p.fail(ErrInvalidExpression,
			slog.String("expression", text),
			slog.Int("stack_size", len(stack)))
	}

	return stack[0], nil
}

// apply computes a op b. Integer operands yield an Integer except for
// division, which always yields a Float. Mixed operands promote to Float.
func (p *parser) apply(op string, a, b Value) (Value, error) {
	switch op {
	case opMod:
		if a.Kind != KindInteger || b.Kind != KindInteger {
			return Value{}, p.fail(ErrModRequiresIntegers,
				slog.String("lhs", a.Kind.String()),
				slog.String("rhs", b.Kind.String()))
		}

		if b.Int == 0 {
			return Value{}, p.fail(ErrDivisionByZero, slog.String("operator", op))
		}

		return Value{Kind: KindInteger, Int: floorMod(a.Int, b.Int)}, nil

	case opDiv:
		if b.float() == 0 {
			return Value{}, p.fail(ErrDivisionByZero, slog.String("operator", op))
		}

		return p.finite(op, a.float()/b.float())
	}

	if a.Kind == KindInteger && b.Kind == KindInteger {
		r, ok := checkedInt(op, a.Int, b.Int)
		if !ok {
			return Value{}, p.fail(ErrIntegerOverflow,
				slog.String("operator", op),
				slog.Int64("lhs", a.Int),
				slog.Int64("rhs", b.Int))
		}

		return Value{Kind: KindInteger, Int: r}, nil
	}

	x, y := a.float(), b.float()

	switch op {
	case opAdd:
		return p.finite(op, x+y)
	case opSub:
		return p.finite(op, x-y)
	default:
		return p.finite(op, x*y)
	}
}

// finite wraps f as a Float, rejecting infinities and NaN, which have no
// literal form and cannot be written as JSON.
func (p *parser) finite(op string, f float64) (Value, error) {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return Value{}, p.fail(ErrNonFiniteResult,
			slog.String("operator", op),
			slog.Float64("result", f))
	}

	return Value{Kind: KindFloat, Float: f}, nil
}

// checkedInt computes a op b for op in + - *, reporting false if the result
// does not fit in an int64.
func checkedInt(op string, a, b int64) (int64, bool) {
	switch op {
	case opAdd:
		r := a + b

		return r, (r > a) == (b > 0)
	case opSub:
		r := a - b

		return r, (r < a) == (b > 0)
	default:
		if a == 0 || b == 0 {
			return 0, true
		}

		r := a * b
		if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
			return r, false
		}

		return r, r/b == a
	}
}

// floorMod returns a modulo b with the sign of b.
func floorMod(a, b int64) int64 {
	r := a % b
	if r != 0 && (r < 0) != (b < 0) {
		r += b
	}

	return r
}
