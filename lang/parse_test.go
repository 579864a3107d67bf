package lang

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func mustParse(t *testing.T, lines ...string) *Document {
	t.Helper()

	doc, err := Parse(context.Background(), lines)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	return doc
}

func mustGet(t *testing.T, d *Dictionary, key string) Value {
	t.Helper()

	v, ok := d.Get(key)
	if !ok {
		t.Fatalf("key %q not found", key)
	}

	return v
}

func TestParse_EndToEnd(t *testing.T) {
	doc := mustParse(t,
		"15 -> a;",
		"4 -> b;",
		"@[a b mod()] -> result;",
		"begin math",
		"value := result;",
		"end;",
	)

	if got := doc.Names(); len(got) != 1 || got[0] != "math" {
		t.Fatalf("Names() = %v, want [math]", got)
	}

	math, _ := doc.Get("math")

	want := Value{Kind: KindInteger, Int: 3}
	if got := mustGet(t, math, "value"); !got.Equal(want) {
		t.Errorf("math.value = %v, want %v", got, want)
	}
}

func TestParse_Simple(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int // number of dictionaries
	}{
		{
			name:  "empty input",
			input: "",
			want:  0,
		},
		{
			name:  "comments and blank lines only",
			input: "# comment\n\n   \n  # indented comment\n",
			want:  0,
		},
		{
			name:  "constants only",
			input: "1 -> a;\n2 -> b; # comment ending in a semicolon;\n",
			want:  0,
		},
		{
			name:  "empty dictionary",
			input: "begin empty\nend;",
			want:  1,
		},
		{
			name:  "two dictionaries",
			input: "begin a\nx := 1;\nend;\nbegin b\ny := 2;\nend;",
			want:  2,
		},
		{
			name:  "crlf line endings",
			input: "begin a\r\nx := 1;\r\nend;\r\n",
			want:  1,
		},
		{
			name:  "indented body",
			input: "begin a\n    x := 1;\n    begin b\n        y := 2;\n    end;\nend;",
			want:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseString(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			if doc.Len() != tt.want {
				t.Errorf("expected %d dictionaries, got %d", tt.want, doc.Len())
			}
		})
	}
}

func TestParse_DictionaryOrder(t *testing.T) {
	doc := mustParse(t,
		"begin config",
		"zeta := 1;",
		"alpha := \"two\";",
		"mid := 3.5;",
		"end;",
	)

	config, ok := doc.Get("config")
	if !ok {
		t.Fatal("dictionary config not found")
	}

	want := []string{"zeta", "alpha", "mid"}
	if got := config.Keys(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Keys() = %v, want %v", got, want)
	}

	if v := mustGet(t, config, "alpha"); v.Kind != KindString || v.Str != "two" {
		t.Errorf("alpha = %v, want \"two\"", v)
	}

	if v := mustGet(t, config, "mid"); v.Kind != KindFloat || v.Float != 3.5 {
		t.Errorf("mid = %v, want 3.5", v)
	}
}

func TestParse_Nested(t *testing.T) {
	doc := mustParse(t,
		"begin outer",
		"a := 1;",
		"begin inner",
		"b := 2;",
		"begin deepest",
		"c := 3;",
		"end;",
		"end;",
		"d := 4;",
		"end;",
	)

	outer, _ := doc.Get("outer")
	if got := strings.Join(outer.Keys(), ","); got != "a,inner,d" {
		t.Errorf("outer keys = %s, want a,inner,d", got)
	}

	inner := mustGet(t, outer, "inner")
	if inner.Kind != KindDictionary {
		t.Fatalf("inner kind = %v, want Dictionary", inner.Kind)
	}

	deepest := mustGet(t, inner.Dict, "deepest")
	if v := mustGet(t, deepest.Dict, "c"); v.Int != 3 {
		t.Errorf("deepest.c = %v, want 3", v)
	}
}

func TestParse_Constants(t *testing.T) {
	doc := mustParse(t,
		"\"localhost\" -> host;",
		"{1.2.3.4} -> octets;",
		"10 -> n;",
		"20 -> n;",
		"n -> copy;",
		"begin server",
		"host := host;",
		"n := n;",
		"copy := copy;",
		"end;",
	)

	server, _ := doc.Get("server")

	if v := mustGet(t, server, "host"); v.Str != "localhost" {
		t.Errorf("host = %v, want \"localhost\"", v)
	}

	// Redeclaration overwrites silently
	if v := mustGet(t, server, "n"); v.Int != 20 {
		t.Errorf("n = %v, want 20", v)
	}

	if v := mustGet(t, server, "copy"); v.Int != 20 {
		t.Errorf("copy = %v, want 20", v)
	}

	c, ok := doc.Constant("octets")
	if !ok || len(c.Array) != 4 {
		t.Fatalf("octets = %v, want four elements", c)
	}

	// Returned constants are copies
	c.Array[0] = Value{Kind: KindString, Str: "changed"}

	c2, _ := doc.Constant("octets")
	if c2.Array[0].Kind != KindInteger {
		t.Errorf("constant mutated through copy: %v", c2)
	}

	if got := strings.Join(doc.ConstantNames(), ","); got != "host,octets,n,copy" {
		t.Errorf("ConstantNames() = %s", got)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  *Error
		line  int
	}{
		{
			name:  "unknown construct",
			lines: []string{"x := 1;"},
			want:  ErrUnknownConstruct,
			line:  1,
		},
		{
			name:  "constant without semicolon is unknown construct",
			lines: []string{"# ok", "5 -> x"},
			want:  ErrUnknownConstruct,
			line:  2,
		},
		{
			name:  "constant with trailing comment",
			lines: []string{"5 -> x; # note"},
			want:  ErrUnknownConstruct,
			line:  1,
		},
		{
			name:  "invalid constant name",
			lines: []string{"5 -> 1abc;"},
			want:  ErrInvalidConstantDeclaration,
			line:  1,
		},
		{
			name:  "invalid dictionary header",
			lines: []string{"begin my dict", "end;"},
			want:  ErrInvalidDictionaryDeclaration,
			line:  1,
		},
		{
			name:  "missing semicolon",
			lines: []string{"begin a", "x := 1", "end;"},
			want:  ErrMissingSemicolon,
			line:  2,
		},
		{
			name:  "blank line in body",
			lines: []string{"begin a", "", "end;"},
			want:  ErrMissingSemicolon,
			line:  2,
		},
		{
			name:  "invalid assignment",
			lines: []string{"begin a", "1x := 1;", "end;"},
			want:  ErrInvalidAssignment,
			line:  2,
		},
		{
			name:  "duplicate key",
			lines: []string{"begin a", "x := 1;", "x := 2;", "end;"},
			want:  ErrDuplicateKey,
			line:  3,
		},
		{
			name:  "duplicate top-level dictionary",
			lines: []string{"begin a", "end;", "begin a", "end;"},
			want:  ErrDuplicateKey,
			line:  5,
		},
		{
			name: "duplicate nested dictionary",
			lines: []string{
				"begin a", "begin b", "end;", "begin b", "end;", "end;",
			},
			want: ErrDuplicateKey,
			line: 6,
		},
		{
			name:  "nested dictionary shadows key",
			lines: []string{"begin a", "b := 1;", "begin b", "end;", "end;"},
			want:  ErrDuplicateKey,
			line:  5,
		},
		{
			name:  "unterminated dictionary",
			lines: []string{"begin a", "x := 1;"},
			want:  ErrUnterminatedDictionary,
			line:  3,
		},
		{
			name:  "unknown value",
			lines: []string{"begin a", "x := foo;", "end;"},
			want:  ErrUnknownValue,
			line:  2,
		},
		{
			name:  "forward reference",
			lines: []string{"later -> x;", "1 -> later;"},
			want:  ErrUnknownValue,
			line:  1,
		},
		{
			name:  "insufficient operands",
			lines: []string{"1 -> a;", "@[10 +] -> x;"},
			want:  ErrInsufficientOperands,
			line:  2,
		},
		{
			name:  "unknown token",
			lines: []string{"@[1 2 ^] -> x;"},
			want:  ErrUnknownToken,
			line:  1,
		},
		{
			name:  "invalid expression",
			lines: []string{"@[1 2] -> x;"},
			want:  ErrInvalidExpression,
			line:  1,
		},
		{
			name:  "empty expression",
			lines: []string{"@[] -> x;"},
			want:  ErrInvalidExpression,
			line:  1,
		},
		{
			name:  "division by zero",
			lines: []string{"@[1 0 /] -> x;"},
			want:  ErrDivisionByZero,
			line:  1,
		},
		{
			name:  "float division by zero",
			lines: []string{"@[1 0.0 /] -> x;"},
			want:  ErrDivisionByZero,
			line:  1,
		},
		{
			name:  "mod with float",
			lines: []string{"@[15.5 4 mod()] -> x;"},
			want:  ErrModRequiresIntegers,
			line:  1,
		},
		{
			name:  "mod by zero",
			lines: []string{"@[5 0 mod()] -> x;"},
			want:  ErrDivisionByZero,
			line:  1,
		},
		{
			name:  "array without tokens",
			lines: []string{"{abc} -> x;"},
			want:  ErrInvalidArraySyntax,
			line:  1,
		},
		{
			name:  "array with unterminated string",
			lines: []string{"begin a", "x := {\"abc};", "end;"},
			want:  ErrInvalidArraySyntax,
			line:  2,
		},
		{
			name:  "nested array",
			lines: []string{"{1.2.{3.4}} -> x;"},
			want:  ErrUnknownValue,
			line:  1,
		},
		{
			name:  "expression inside array",
			lines: []string{"{1.@[1 2 +]} -> x;"},
			want:  ErrUnknownValue,
			line:  1,
		},
		{
			name:  "string constant in expression",
			lines: []string{"\"a\" -> s;", "@[s 1 +] -> x;"},
			want:  ErrNonNumericOperand,
			line:  2,
		},
		{
			name:  "integer overflow",
			lines: []string{"99999999999999999999 -> x;"},
			want:  ErrUnknownValue,
			line:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse(context.Background(), tt.lines)
			if err == nil {
				t.Fatalf("expected error, got document with %d dictionaries", doc.Len())
			}

			if doc != nil {
				t.Errorf("expected nil document on error")
			}

			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}

			var e *Error
			if !errors.As(err, &e) {
				t.Fatalf("error %T is not *Error", err)
			}

			if e.Line() != tt.line {
				t.Errorf("line = %d, want %d (%v)", e.Line(), tt.line, err)
			}
		})
	}
}

func TestParse_ErrorsMatchOneSentinel(t *testing.T) {
	_, err := Parse(context.Background(), []string{"begin a", "x := 1;", "x := 2;", "end;"})
	if err == nil {
		t.Fatal("expected error")
	}

	if errors.Is(err, ErrUnknownValue) {
		t.Errorf("duplicate key error should not match %v", ErrUnknownValue)
	}

	if !strings.HasPrefix(err.Error(), "line 3: duplicate key") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestParse_ArithmeticLimits(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want *Error
		line int
	}{
		{
			name: "integer constant",
			src:  "9223372036854775807 -> max;\n@[max 1 +] -> x;\n",
			want: ErrIntegerOverflow,
			line: 2,
		},
		{
			name: "integer assignment",
			src:  "9223372036854775807 -> max;\nbegin d\n  k := @[max 2 *];\nend;\n",
			want: ErrIntegerOverflow,
			line: 3,
		},
		{
			name: "float constant",
			src:  huge + " -> big;\n@[big big *] -> inf;\n",
			want: ErrNonFiniteResult,
			line: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseString(context.Background(), tt.src)
			if !errors.Is(err, tt.want) {
				t.Fatalf("ParseString() error = %v, want %v", err, tt.want)
			}

			if doc != nil {
				t.Errorf("ParseString() returned a partial document")
			}

			var e *Error
			if !errors.As(err, &e) || e.Line() != tt.line {
				t.Errorf("ParseString() error = %v, want line %d", err, tt.line)
			}
		})
	}
}

func TestParse_NestedArrayMessage(t *testing.T) {
	_, err := ParseString(context.Background(), "{1.2.{3.4}} -> x;")
	if err == nil {
		t.Fatal("expected error")
	}

	if !strings.Contains(err.Error(), `"{3.4}"`) {
		t.Errorf("error %q does not name the nested array", err.Error())
	}
}

func TestParse_MaxDepth(t *testing.T) {
	var sb strings.Builder

	const depth = 5

	for i := range depth {
		sb.WriteString("begin d" + string(rune('a'+i)) + "\n")
	}

	for range depth {
		sb.WriteString("end;\n")
	}

	src := sb.String()

	if _, err := ParseString(context.Background(), src, WithMaxDepth(depth)); err != nil {
		t.Fatalf("depth %d within limit: %v", depth, err)
	}

	_, err := ParseString(context.Background(), src, WithMaxDepth(depth-1))
	if !errors.Is(err, ErrMaxDepthExceeded) {
		t.Fatalf("error = %v, want %v", err, ErrMaxDepthExceeded)
	}

	var e *Error
	if errors.As(err, &e) && e.Line() != depth {
		t.Errorf("line = %d, want %d", e.Line(), depth)
	}
}

func TestParse_Concurrent(t *testing.T) {
	src := "15 -> a;\nbegin math\nvalue := @[a 4 mod()];\nend;\n"

	errs := make(chan error, 16)

	for range cap(errs) {
		go func() {
			doc, err := ParseString(context.Background(), src)
			if err == nil {
				m, _ := doc.Get("math")
				if v, _ := m.Get("value"); v.Int != 3 {
					err = errors.New("wrong value " + v.String())
				}
			}
			errs <- err
		}()
	}

	for range cap(errs) {
		if err := <-errs; err != nil {
			t.Error(err)
		}
	}
}
