package lang

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"unicode/utf8"
)

// FuzzParse checks that parsing never panics, that every failure is a
// located *Error, and that every success survives a native round trip.
func FuzzParse(f *testing.F) {
	f.Add("15 -> a;\n4 -> b;\n@[a b mod()] -> result;\nbegin math\nvalue := result;\nend;\n")
	f.Add("begin a\nx := {1.2.3.4};\nend;\n")
	f.Add(`{"host1.example.com"."host2.example.com"} -> hosts;`)
	f.Add("@[60 30 /] -> x;")
	f.Add("@[10 +] -> x;")
	f.Add("begin a\nbegin b\nend;\nend;\n")
	f.Add("{1.2.{3.4}} -> x;")
	f.Add("# comment\n\n")
	f.Add("begin a\nx := 1")

	f.Fuzz(func(t *testing.T, input string) {
		if !utf8.ValidString(input) {
			t.Skip("invalid UTF-8")
		}

		ctx := context.Background()

		doc, err := ParseString(ctx, input)
		if err != nil {
			var e *Error
			if !errors.As(err, &e) {
				t.Fatalf("error %T is not *Error: %v", err, err)
			}

			if e.Line() < 1 {
				t.Fatalf("error without line: %v", err)
			}

			return
		}

		var buf bytes.Buffer
		if err := doc.Format(ctx, &buf, 2); err != nil {
			t.Fatal(err)
		}

		again, err := ParseString(ctx, buf.String())
		if err != nil {
			t.Fatalf("reparse of formatted output failed: %v\n%s", err, buf.String())
		}

		if !again.Equal(doc) {
			t.Fatalf("round trip mismatch for %q\n%s", input, buf.String())
		}
	})
}

// FuzzEvaluateExpression checks that the expression evaluator never panics.
func FuzzEvaluateExpression(f *testing.F) {
	f.Add("1 2 +")
	f.Add("1 0 /")
	f.Add("-9223372036854775808 -1 mod()")
	f.Add("1.5 2 * 3 -")

	f.Fuzz(func(t *testing.T, input string) {
		v, err := newTestParser().evaluateExpression(input)
		if err == nil && !v.IsNumeric() {
			t.Fatalf("expression %q produced %v", input, v.Kind)
		}
	})
}
