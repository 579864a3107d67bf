package lang

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"testing"
)

func TestEvaluateExpression(t *testing.T) {
	b := NewBuilder()

	consts := []Entry{
		b.Entry("a", b.Integer(15)),
		b.Entry("b", b.Integer(4)),
		b.Entry("half", b.Float(0.5)),
	}

	tests := []struct {
		name  string
		input string
		want  Value
	}{
		{name: "addition", input: "10 5 +", want: b.Integer(15)},
		{name: "subtraction", input: "10 15 -", want: b.Integer(-5)},
		{name: "multiplication", input: "6 7 *", want: b.Integer(42)},
		{name: "division is float", input: "60 30 /", want: b.Float(2)},
		{name: "inexact division", input: "1 4 /", want: b.Float(0.25)},
		{name: "mod", input: "15 4 mod()", want: b.Integer(3)},
		{name: "mod negative dividend", input: "-7 3 mod()", want: b.Integer(2)},
		{name: "mod negative divisor", input: "7 -3 mod()", want: b.Integer(-2)},
		{name: "mod both negative", input: "-7 -3 mod()", want: b.Integer(-1)},
		{name: "mod exact", input: "9 3 mod()", want: b.Integer(0)},
		{name: "constants", input: "a b mod()", want: b.Integer(3)},
		{name: "promotion", input: "1 half +", want: b.Float(1.5)},
		{name: "float product", input: "half 4 *", want: b.Float(2)},
		{name: "operand order", input: "2 10 -", want: b.Integer(-8)},
		{name: "chained", input: "1 2 + 3 *", want: b.Integer(9)},
		{name: "nested", input: "5 1 2 + 4 * + 3 -", want: b.Integer(14)},
		{name: "single number", input: "42", want: b.Integer(42)},
		{name: "single constant", input: "half", want: b.Float(0.5)},
		{name: "extra whitespace", input: "  1 \t 2   + ", want: b.Integer(3)},
		{name: "sum at max int", input: "9223372036854775806 1 +", want: b.Integer(math.MaxInt64)},
		{name: "difference at min int", input: "-9223372036854775807 1 -", want: b.Integer(math.MinInt64)},
		{name: "product at min int", input: "-4611686018427387904 2 *", want: b.Integer(math.MinInt64)},
		{name: "product by zero", input: "9223372036854775807 0 *", want: b.Integer(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newTestParser(consts...).evaluateExpression(tt.input)
			if err != nil {
				t.Fatalf("evaluateExpression(%q): %v", tt.input, err)
			}

			if !got.Equal(tt.want) {
				t.Errorf("evaluateExpression(%q) = %v (%v), want %v (%v)",
					tt.input, got, got.Kind, tt.want, tt.want.Kind)
			}
		})
	}
}

// Decimal literals for 1e200, 1e-200 and the largest float64.
var (
	huge     = "1" + strings.Repeat("0", 200) + ".0"
	tiny     = "0." + strings.Repeat("0", 199) + "1"
	maxFloat = strconv.FormatFloat(math.MaxFloat64, 'f', -1, 64) + ".0"
)

func TestEvaluateExpression_Errors(t *testing.T) {
	b := NewBuilder()

	consts := []Entry{
		b.Entry("s", b.String("text")),
		b.Entry("list", b.Array(b.Integer(1))),
	}

	tests := []struct {
		name  string
		input string
		want  *Error
	}{
		{name: "empty", input: "", want: ErrInvalidExpression},
		{name: "too many values", input: "1 2", want: ErrInvalidExpression},
		{name: "missing operand", input: "10 +", want: ErrInsufficientOperands},
		{name: "operator only", input: "*", want: ErrInsufficientOperands},
		{name: "unknown token", input: "1 2 %", want: ErrUnknownToken},
		{name: "undeclared constant", input: "x 1 +", want: ErrUnknownToken},
		{name: "mod without parens", input: "5 2 mod", want: ErrUnknownToken},
		{name: "division by zero", input: "1 0 /", want: ErrDivisionByZero},
		{name: "float division by zero", input: "1.5 0.0 /", want: ErrDivisionByZero},
		{name: "mod by zero", input: "5 0 mod()", want: ErrDivisionByZero},
		{name: "mod float lhs", input: "15.5 4 mod()", want: ErrModRequiresIntegers},
		{name: "mod float rhs", input: "15 4.0 mod()", want: ErrModRequiresIntegers},
		{name: "string constant", input: "s", want: ErrNonNumericOperand},
		{name: "array constant", input: "list 1 +", want: ErrNonNumericOperand},
		{name: "sum overflow", input: "9223372036854775807 1 +", want: ErrIntegerOverflow},
		{name: "sum underflow", input: "-9223372036854775808 -1 +", want: ErrIntegerOverflow},
		{name: "difference overflow", input: "9223372036854775807 -1 -", want: ErrIntegerOverflow},
		{name: "difference underflow", input: "-9223372036854775808 1 -", want: ErrIntegerOverflow},
		{name: "product overflow", input: "9223372036854775807 2 *", want: ErrIntegerOverflow},
		{name: "product sign overflow", input: "-9223372036854775808 -1 *", want: ErrIntegerOverflow},
		{name: "float product overflow", input: huge + " " + huge + " *", want: ErrNonFiniteResult},
		{name: "float sum overflow", input: maxFloat + " " + maxFloat + " +", want: ErrNonFiniteResult},
		{name: "float quotient overflow", input: huge + " " + tiny + " /", want: ErrNonFiniteResult},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestParser(consts...).evaluateExpression(tt.input)
			if !errors.Is(err, tt.want) {
				t.Errorf("evaluateExpression(%q) error = %v, want %v", tt.input, err, tt.want)
			}
		})
	}
}

func TestFloorMod(t *testing.T) {
	tests := []struct {
		a, b, want int64
	}{
		{a: 15, b: 4, want: 3},
		{a: -15, b: 4, want: 1},
		{a: 15, b: -4, want: -1},
		{a: -15, b: -4, want: -3},
		{a: 0, b: 5, want: 0},
		{a: math.MinInt64, b: -1, want: 0},
	}

	for _, tt := range tests {
		if got := floorMod(tt.a, tt.b); got != tt.want {
			t.Errorf("floorMod(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
