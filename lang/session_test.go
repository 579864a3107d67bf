package lang

import (
	"context"
	"errors"
	"testing"
)

func TestSession_Feed(t *testing.T) {
	ctx := context.Background()
	s := NewSession()

	steps := []struct {
		line    string
		kind    ResultKind
		name    string
		pending bool
	}{
		{line: "# comment", kind: ResultNone},
		{line: "15 -> a;", kind: ResultConstant, name: "a"},
		{line: "4 -> b;", kind: ResultConstant, name: "b"},
		{line: "begin math", kind: ResultPending, pending: true},
		{line: "  value := @[a b mod()];", kind: ResultPending, pending: true},
		{line: "  begin nested", kind: ResultPending, pending: true},
		{line: "  end;", kind: ResultPending, pending: true},
		{line: "end;", kind: ResultDictionary, name: "math"},
		{line: "@[a 1 +]", kind: ResultValue},
	}

	for _, step := range steps {
		r, err := s.Feed(ctx, step.line)
		if err != nil {
			t.Fatalf("Feed(%q): %v", step.line, err)
		}

		if r.Kind != step.kind || r.Name != step.name {
			t.Errorf("Feed(%q) = %v %q, want %v %q",
				step.line, r.Kind, r.Name, step.kind, step.name)
		}

		if s.Pending() != step.pending {
			t.Errorf("after %q: Pending() = %v, want %v", step.line, s.Pending(), step.pending)
		}
	}

	math, ok := s.Document().Get("math")
	if !ok {
		t.Fatal("math dictionary not committed")
	}

	if v, _ := math.Get("value"); v.Int != 3 {
		t.Errorf("math.value = %v, want 3", v)
	}

	want := "# comment\n15 -> a;\n4 -> b;\nbegin math\n  value := @[a b mod()];\n" +
		"  begin nested\n  end;\nend;\n"
	if got := s.Source(); got != want {
		t.Errorf("Source() = %q, want %q", got, want)
	}
}

func TestSession_ValueResult(t *testing.T) {
	ctx := context.Background()
	s := NewSession()

	if _, err := s.Feed(ctx, "60 -> sixty;"); err != nil {
		t.Fatal(err)
	}

	r, err := s.Feed(ctx, "@[sixty 30 /]")
	if err != nil {
		t.Fatal(err)
	}

	if want := (Value{Kind: KindFloat, Float: 2}); !r.Value.Equal(want) {
		t.Errorf("value = %v, want %v", r.Value, want)
	}

	// Bare values are not recorded
	if got := s.Source(); got != "60 -> sixty;\n" {
		t.Errorf("Source() = %q", got)
	}
}

func TestSession_ErrorsRollBack(t *testing.T) {
	ctx := context.Background()
	s := NewSession()

	if _, err := s.Feed(ctx, "begin a"); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Feed(ctx, "x := 1;"); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Feed(ctx, "end;"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		lines []string
		want  *Error
	}{
		{name: "duplicate dictionary", lines: []string{"begin a", "end;"}, want: ErrDuplicateKey},
		{name: "bad header", lines: []string{"begin 1a"}, want: ErrInvalidDictionaryDeclaration},
		{name: "bad body", lines: []string{"begin b", "y := 1", "end;"}, want: ErrMissingSemicolon},
		{name: "bad constant", lines: []string{"5 -> 1x;"}, want: ErrInvalidConstantDeclaration},
		{name: "unknown value", lines: []string{"nothing"}, want: ErrUnknownValue},
	}

	before := s.Source()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error

			for _, line := range tt.lines {
				if _, err = s.Feed(ctx, line); err != nil {
					break
				}
			}

			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}

			if s.Pending() {
				t.Error("session left pending after error")
			}

			if got := s.Source(); got != before {
				t.Errorf("Source() changed to %q", got)
			}
		})
	}
}

func TestSession_Reset(t *testing.T) {
	ctx := context.Background()

	s, err := NewSessionFrom(ctx, "1 -> one;\nbegin a\nend;\n")
	if err != nil {
		t.Fatal(err)
	}

	if s.Document().Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Document().Len())
	}

	if _, err := s.Feed(ctx, "begin b"); err != nil {
		t.Fatal(err)
	}

	s.Reset()

	if s.Pending() || s.Source() != "" || s.Document().Len() != 0 {
		t.Error("Reset did not clear the session")
	}

	if _, ok := s.Document().Constant("one"); ok {
		t.Error("Reset kept constants")
	}
}
