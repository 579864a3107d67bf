package repl

import (
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/cfgconv/lang"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "list", "doc", "edit", "reset", "clear", "quit"}

// languageKeywords complete at the start of a line in eval mode.
var languageKeywords = []string{"begin", "end;"}

// isWordBoundary reports whether r delimits words for completion: whitespace,
// the member-access dot, and the punctuation of both the configuration
// language and query expressions.
func isWordBoundary(r rune) bool {
	switch r {
	case '.', ' ', '\t',
		'(', ')', '[', ']', '{', '}',
		'+', '-', '*', '/', '%', '@',
		'<', '>', '=', '!', '?',
		'&', '|', ',', ':', ';', '"':
		return true
	}

	return false
}

// wordBounds returns the word at cursor and its byte boundaries in input.
// The word is empty when the cursor sits on a boundary.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(cursor, len(input))

	start = cursor
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor
	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// parentPath returns the member-access chain leading up to the word starting
// at wordStart. For "x + server.inner.k" and the word "k", it is
// "server.inner". It is empty for words that are not member accesses.
func parentPath(input string, wordStart int) string {
	if wordStart == 0 || input[wordStart-1] != '.' {
		return ""
	}

	prefix := strings.TrimRight(input[:wordStart], ".")

	pos := len(prefix)
	for pos > 0 {
		r, size := utf8.DecodeLastRuneInString(prefix[:pos])
		if r != '.' && isWordBoundary(r) {
			break
		}

		pos -= size
	}

	return strings.TrimSpace(prefix[pos:])
}

// childCandidates returns the completions for members of parent. An empty
// parent yields every top-level name: dictionaries, constants and builtins,
// plus the expr-lang builtins in query mode.
func childCandidates(doc *lang.Document, parent string, query bool) []string {
	if parent == "" {
		names := doc.QueryNames()
		if query {
			names = append(names, exprBuiltinNames()...)
		}

		return names
	}

	segments := strings.Split(parent, ".")

	if dict, ok := doc.Get(segments[0]); ok {
		for _, seg := range segments[1:] {
			v, ok := dict.Get(seg)
			if !ok || v.Kind != lang.KindDictionary {
				return nil
			}

			dict = v.Dict
		}

		return dict.Keys()
	}

	return lang.BuiltinEnvLookup(parent)
}

// computeMatches returns the fuzzy matches for the word at the cursor, best
// first, with the candidates and word boundaries they were computed from.
//
// An empty word completes nothing at the top level, so the hint line stays
// visible, but lists every member after a dot.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	candidates []string,
	wordStart, wordEnd int,
) {
	input := m.input.Value()

	word, wordStart, wordEnd := wordBounds(input, m.input.Position())

	switch {
	case m.mode == modeCtrl:
		if word == "" {
			return nil, nil, wordStart, wordEnd
		}

		candidates = ctrlCommands

	default:
		query := strings.HasPrefix(strings.TrimSpace(input), queryPrefix)
		parent := parentPath(input, wordStart)
		candidates = childCandidates(m.session.Document(), parent, query)

		if !query && parent == "" && strings.TrimSpace(input[:wordStart]) == "" {
			candidates = append(slices.Clone(languageKeywords), candidates...)
		}

		if word == "" {
			if parent == "" || len(candidates) == 0 {
				return nil, nil, wordStart, wordEnd
			}

			matches = make(fuzzy.Matches, len(candidates))
			for i, c := range candidates {
				matches[i] = fuzzy.Match{Str: c, Index: i}
			}

			return matches, candidates, wordStart, wordEnd
		}
	}

	if len(candidates) == 0 {
		return nil, nil, wordStart, wordEnd
	}

	return fuzzy.Find(word, candidates), candidates, wordStart, wordEnd
}

// renderCandidateBar builds the one-line completion bar, cut with an ellipsis
// to fit width. The selected candidate uses the selected style while
// tab-cycling.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	ellipsis := hintStyle.Render("...")

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx)

		w := lipgloss.Width(rendered)
		if i > 0 {
			w += lipgloss.Width(sep)
		}

		if i > 0 && used+w+lipgloss.Width(ellipsis) > width {
			b.WriteString(sep + ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += w
	}

	return b.String()
}

// renderCandidate renders one candidate with its matched characters
// highlighted. Functions get a "()" suffix that is not inserted on completion.
func renderCandidate(match fuzzy.Match, selected bool) string {
	base := suggestionStyle
	highlight := lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true)

	if selected {
		base = selectedStyle
		highlight = highlight.Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
	}

	var b strings.Builder

	for i, r := range match.Str {
		if slices.Contains(match.MatchedIndexes, i) {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	if isFunction(match.Str) {
		b.WriteString(base.Render("()"))
	}

	return b.String()
}

// isFunction reports whether name is a top-level callable builtin.
func isFunction(name string) bool {
	_, ok := signatureOf(name)

	return ok
}

// preview returns a short summary of a value for the list command.
func preview(v lang.Value) string {
	switch v.Kind {
	case lang.KindDictionary:
		return "{ " + itemCount(v.Dict.Len()) + " }"

	case lang.KindArray:
		return "[ " + itemCount(len(v.Array)) + " ]"

	default:
		s := v.String()
		if utf8.RuneCountInString(s) > 40 {
			return string([]rune(s)[:37]) + "..."
		}

		return s
	}
}

func itemCount(n int) string {
	if n == 1 {
		return "1 item"
	}

	return strconv.Itoa(n) + " items"
}
