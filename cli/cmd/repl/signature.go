package repl

import (
	"maps"
	"reflect"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/cfgconv/lang"
)

// exprBuiltins maps the expr-lang builtin functions offered in query mode to
// their parameter names.
var exprBuiltins = map[string][]string{
	"len":       {"v"},
	"all":       {"array", "predicate"},
	"any":       {"array", "predicate"},
	"one":       {"array", "predicate"},
	"none":      {"array", "predicate"},
	"map":       {"array", "mapper"},
	"filter":    {"array", "predicate"},
	"find":      {"array", "predicate"},
	"findIndex": {"array", "predicate"},
	"groupBy":   {"array", "mapper"},
	"sortBy":    {"array", "mapper"},
	"count":     {"array", "predicate"},
	"sum":       {"array"},
	"mean":      {"array"},
	"min":       {"array"},
	"max":       {"array"},
	"keys":      {"map"},
	"values":    {"map"},
	"join":      {"array", "separator"},
	"split":     {"string", "separator"},
	"replace":   {"string", "old", "new"},
	"trim":      {"string"},
	"upper":     {"string"},
	"lower":     {"string"},
	"int":       {"v"},
	"float":     {"v"},
	"string":    {"v"},
	"type":      {"v"},
}

// exprBuiltinNames returns the sorted names of the expr-lang builtins.
func exprBuiltinNames() []string {
	return slices.Sorted(maps.Keys(exprBuiltins))
}

var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
)

// functionCall describes the call whose parameter list holds the cursor.
type functionCall struct {
	name     string // dot-qualified function name, e.g. "path.cat"
	argIndex int    // 0-based index of the argument under the cursor
	inCall   bool
}

func isNameRune(r rune) bool {
	return r == '.' || r == '_' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// detectFunctionCall finds the innermost unclosed '(' before cursor and
// reports the name before it and the argument index at cursor.
func detectFunctionCall(input string, cursor int) functionCall {
	cursor = min(cursor, len(input))

	open, depth := -1, 0

	for i := cursor - 1; i >= 0 && open < 0; i-- {
		switch input[i] {
		case ')':
			depth++

		case '(':
			if depth == 0 {
				open = i
			} else {
				depth--
			}
		}
	}

	if open < 0 {
		return functionCall{}
	}

	start := open
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if !isNameRune(r) {
			break
		}

		start -= size
	}

	name := input[start:open]
	if name == "" {
		return functionCall{}
	}

	arg := 0
	depth = 0

	for _, r := range input[open+1 : cursor] {
		switch r {
		case '(', '[', '{':
			depth++

		case ')', ']', '}':
			depth--

		case ',':
			if depth == 0 {
				arg++
			}
		}
	}

	return functionCall{name: name, argIndex: arg, inCall: true}
}

// signatureOf returns the parameter names of the named expr-lang or query
// builtin function.
func signatureOf(name string) (params []string, ok bool) {
	if params, ok := exprBuiltins[name]; ok {
		return params, true
	}

	v, ok := lang.BuiltinEnvValue(name)
	if !ok {
		return nil, false
	}

	t := reflect.TypeOf(v)
	if t == nil || t.Kind() != reflect.Func {
		return nil, false
	}

	params = make([]string, t.NumIn())

	for i := range t.NumIn() {
		if t.IsVariadic() && i == t.NumIn()-1 {
			params[i] = "..." + typeName(t.In(i).Elem())
		} else {
			params[i] = typeName(t.In(i))
		}
	}

	return params, true
}

// typeName returns a short readable name for a parameter type.
func typeName(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Func:
		return "func"

	case reflect.String:
		return "string"

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "int"

	case reflect.Float32, reflect.Float64:
		return "float"

	case reflect.Bool:
		return "bool"

	case reflect.Slice:
		return "[]" + typeName(t.Elem())

	case reflect.Map:
		return "map"

	default:
		if t.Name() != "" {
			return t.Name()
		}

		return "arg"
	}
}

// renderSignatureHint renders name(params...) with the parameter at argIndex
// highlighted. A variadic final parameter stays highlighted for every
// argument at or past its position.
func renderSignatureHint(name string, params []string, argIndex int) string {
	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(name))
	b.WriteString(signatureStyle.Render("("))

	for i, p := range params {
		if i > 0 {
			b.WriteString(signatureStyle.Render(", "))
		}

		current := i == argIndex ||
			(strings.HasPrefix(p, "...") && argIndex >= i)

		if current {
			b.WriteString(currentParamStyle.Render(p))
		} else {
			b.WriteString(signatureStyle.Render(p))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	return b.String()
}
