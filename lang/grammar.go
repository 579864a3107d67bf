package lang

import (
	"regexp"
	"strings"
)

// identifier is the pattern shared by constant names, dictionary names, and
// dictionary keys.
const identifier = `[A-Za-z][_A-Za-z0-9]*`

// rule is one line-level grammar production. Each rule owns a pattern whose
// named groups become the fields of a [match].
type rule struct {
	name    string
	pattern *regexp.Regexp
}

func makeRule(name, pattern string) rule {
	return rule{name: name, pattern: regexp.MustCompile(pattern)}
}

// match holds the named groups captured by a successful rule match.
type match map[string]string

// match applies r to text, returning the captured groups.
func (r rule) match(text string) (match, bool) {
	sub := r.pattern.FindStringSubmatch(text)
	if sub == nil {
		return nil, false
	}

	m := make(match, len(sub))

	for i, group := range r.pattern.SubexpNames() {
		if group != "" {
			m[group] = sub[i]
		}
	}

	return m, true
}

// matches reports whether r matches text without capturing.
func (r rule) matches(text string) bool {
	return r.pattern.MatchString(text)
}

var (
	// <value> -> <name> ; [# comment]
	constantRule = makeRule("constant",
		`^\s*(?P<value>.+?)\s*->\s*(?P<name>`+identifier+`)\s*;\s*(?P<comment>#.*)?$`)

	// begin <name>
	headerRule = makeRule("header",
		`^begin\s+(?P<name>`+identifier+`)\s*$`)

	// <key> := <value> ;
	assignmentRule = makeRule("assignment",
		`^(?P<key>`+identifier+`)\s*:=\s*(?P<value>.+);$`)

	// -?digits[.digits]
	numberRule = makeRule("number", `^-?\d+(\.\d+)?$`)
)

// Line classification used by the line driver and the dictionary reader.

func isSkippable(line string) bool {
	return line == "" || strings.HasPrefix(line, "#")
}

func isConstantLine(line string) bool {
	return strings.Contains(line, "->") && strings.HasSuffix(line, ";")
}

func isDictionaryStart(line string) bool {
	return strings.HasPrefix(line, "begin")
}

func isDictionaryEnd(line string) bool {
	return strings.HasPrefix(line, "end")
}

// Value-expression shapes, tested in priority order by the value evaluator.

func isStringLiteral(text string) bool {
	return len(text) >= 2 && text[0] == '"' && text[len(text)-1] == '"'
}

func isArrayLiteral(text string) bool {
	return strings.HasPrefix(text, "{") && strings.HasSuffix(text, "}")
}

func isExpression(text string) bool {
	return len(text) >= 3 &&
		strings.HasPrefix(text, "@[") && strings.HasSuffix(text, "]")
}
