package lang

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"
)

func TestQuery(t *testing.T) {
	doc, err := ParseString(context.Background(), sampleSource,
		WithProcessEnv([]string{"HOME=/home/tester", "EMPTY="}))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{name: "member", query: "server.host", want: "localhost"},
		{name: "arithmetic", query: "server.port + 1", want: "8081"},
		{name: "nested", query: "server.inner.k * 10", want: "10"},
		{name: "constant", query: "port", want: "8080"},
		{name: "array length", query: "len(server.tags)", want: "2"},
		{name: "comparison", query: `server.host == host`, want: "true"},
		{name: "env", query: `env("HOME")`, want: "/home/tester"},
		{name: "env missing", query: `env("MISSING")`, want: ""},
		{name: "string concat", query: `host + ":" + string(port)`, want: "localhost:8080"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := doc.Query(context.Background(), tt.query)
			if err != nil {
				t.Fatalf("Query(%q): %v", tt.query, err)
			}

			if s := fmt.Sprint(got); s != tt.want {
				t.Errorf("Query(%q) = %s, want %s", tt.query, s, tt.want)
			}
		})
	}
}

func TestQuery_Mung(t *testing.T) {
	doc := NewDocument()

	got, err := doc.Query(context.Background(), `mung.prefix("/usr/bin", "/opt/bin")`)
	if err != nil {
		t.Fatal(err)
	}

	s, ok := got.(string)
	if !ok || !strings.HasPrefix(s, "/opt/bin") {
		t.Errorf("mung.prefix = %#v, want a list starting with /opt/bin", got)
	}
}

func TestQuery_Shadowing(t *testing.T) {
	b := NewBuilder()
	doc := b.Document(
		b.Entry("hostname", b.String("from constant")),
		b.Entry("cwd", b.Dictionary(b.Entry("k", b.Integer(1)))),
	)

	got, err := doc.Query(context.Background(), "hostname")
	if err != nil {
		t.Fatal(err)
	}

	if got != "from constant" {
		t.Errorf("hostname = %v, want constant to shadow builtin", got)
	}

	got, err = doc.Query(context.Background(), "cwd.k")
	if err != nil {
		t.Fatal(err)
	}

	if got != int64(1) {
		t.Errorf("cwd.k = %#v, want dictionary to shadow builtin", got)
	}
}

func TestQuery_Errors(t *testing.T) {
	doc := sampleDocument(t)

	tests := []struct {
		name  string
		query string
		want  *Error
	}{
		{name: "syntax", query: "server.port +", want: ErrQueryCompile},
		{name: "unknown name", query: "nothing.here", want: ErrQueryCompile},
		{name: "runtime", query: "server.tags[5]", want: ErrQueryEvaluate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := doc.Query(context.Background(), tt.query)
			if !errors.Is(err, tt.want) {
				t.Errorf("Query(%q) error = %v, want %v", tt.query, err, tt.want)
			}
		})
	}
}

func TestQueryNames(t *testing.T) {
	names := sampleDocument(t).QueryNames()

	for _, want := range []string{"server", "empty", "port", "host", "env", "mung"} {
		if !slices.Contains(names, want) {
			t.Errorf("QueryNames() missing %q", want)
		}
	}

	if !slices.IsSorted(names) {
		t.Errorf("QueryNames() not sorted: %v", names)
	}
}

func TestBuiltinEnvLookup(t *testing.T) {
	if got := BuiltinEnvLookup("mung"); !slices.Equal(got, []string{"prefix", "prefixif"}) {
		t.Errorf("BuiltinEnvLookup(mung) = %v", got)
	}

	if got := BuiltinEnvLookup("mung.prefix"); got != nil {
		t.Errorf("BuiltinEnvLookup(mung.prefix) = %v, want nil", got)
	}

	if got := BuiltinEnvLookup("missing"); got != nil {
		t.Errorf("BuiltinEnvLookup(missing) = %v, want nil", got)
	}

	if got := BuiltinEnvLookup(""); !slices.Contains(got, "env") {
		t.Errorf("BuiltinEnvLookup(\"\") = %v, want env included", got)
	}
}

func TestBuiltinEnvValue(t *testing.T) {
	tests := []struct {
		path     string
		wantOK   bool
		wantType string
	}{
		{"path.cat", true, "func(...string) string"},
		{"file.exists", true, "func(string) bool"},
		{"env", true, "func(string) string"},
		{"hostname", true, "string"},
		{"mung", true, "map[string]interface {}"},
		{"path.nope", false, ""},
		{"hostname.x", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			v, ok := BuiltinEnvValue(tt.path)
			if ok != tt.wantOK {
				t.Fatalf("BuiltinEnvValue(%q) ok = %v, want %v", tt.path, ok, tt.wantOK)
			}

			if got := fmt.Sprintf("%T", v); ok && got != tt.wantType {
				t.Errorf("BuiltinEnvValue(%q) = %s, want %s", tt.path, got, tt.wantType)
			}
		})
	}
}

func TestFormatResult(t *testing.T) {
	b := NewBuilder()

	tests := []struct {
		name   string
		result any
		want   string
	}{
		{name: "nil", result: nil, want: "nil"},
		{name: "bool", result: true, want: "true"},
		{name: "int", result: 42, want: "42"},
		{name: "float", result: 2.0, want: "2.0"},
		{name: "string", result: "x", want: `"x"`},
		{name: "slice", result: []any{int64(1), "a"}, want: `{1. "a"}`},
		{name: "map", result: map[string]any{"b": 2, "a": 1}, want: "begin a := 1; b := 2; end;"},
		{name: "value", result: b.Array(b.Integer(1), b.Integer(2)), want: "{1. 2}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatResult(tt.result); got != tt.want {
				t.Errorf("FormatResult() = %q, want %q", got, tt.want)
			}
		})
	}
}
