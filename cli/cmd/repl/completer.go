package repl

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/expr-lang/expr/builtin"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/twine/lang"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "data", "set", "edit", "templates", "show", "clear", "quit"}

// completion identifies what the text at the cursor is completing.
type completion int

const (
	completeNone     completion = iota
	completePath                // data path in a variable or loop tag
	completeTemplate            // quoted template name in include or extends
	completeCommand             // control-mode command name
	completeExpr                // expression of a set command
)

// isWordBoundary returns true if the rune delimits a data path segment.
func isWordBoundary(r rune) bool {
	switch r {
	case '.', ' ', '\t',
		'{', '}', '%', '"', '\'',
		'(', ')', '[', ']',
		'+', '-', '*', '/',
		'<', '>', '=', '!',
		'&', '|', ',', '?', ':':
		return true
	}

	return false
}

// wordBounds returns the current word at the cursor position and its byte
// boundaries within input.
// Returns an empty word when the cursor sits on a boundary.
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

// quoteBounds returns the partial template name between the opening quote
// preceding the cursor and the cursor's closing quote or end of input.
func quoteBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(cursor, len(input))

	start = strings.LastIndexAny(input[:cursor], `"'`) + 1
	end = cursor

	if i := strings.IndexAny(input[cursor:], `"'`); i >= 0 {
		end = cursor + i
	} else {
		end = len(input)
	}

	return input[start:end], start, end
}

// parentPath returns the dotted path leading up to the current word. For
// input "{{ site.owner.na" with the word "na", the parent path is
// "site.owner". Returns "" for top-level words.
func parentPath(input string, wordStart int) string {
	prefix := input[:wordStart]
	if !strings.HasSuffix(prefix, ".") {
		return ""
	}

	prefix = strings.TrimRight(prefix, ".")
	pos := len(prefix)

	for pos > 0 {
		r, size := utf8.DecodeLastRuneInString(prefix[:pos])
		if r != '.' && isWordBoundary(r) {
			break
		}

		pos -= size
	}

	return prefix[pos:]
}

// renderContext classifies the template text preceding the cursor.
func renderContext(before string) completion {
	if i := strings.LastIndex(before, "{%"); i >= 0 && !strings.Contains(before[i:], "%}") {
		keyword, rest, _ := strings.Cut(strings.TrimLeft(before[i+2:], " \t"), " ")

		switch keyword {
		case "include", "extends":
			if q := strings.IndexAny(rest, `"'`); q >= 0 &&
				strings.Count(rest, rest[q:q+1]) == 1 {
				return completeTemplate
			}

		case "for":
			if strings.Contains(rest, " in ") {
				return completePath
			}
		}

		return completeNone
	}

	if i := strings.LastIndex(before, "{{"); i >= 0 && !strings.Contains(before[i:], "}}") {
		return completePath
	}

	return completeNone
}

// ctrlContext classifies the control-mode text preceding the cursor.
func ctrlContext(before string) completion {
	command, rest, spaced := strings.Cut(strings.TrimLeft(before, " "), " ")
	if !spaced {
		return completeCommand
	}

	switch command {
	case "show":
		return completeTemplate
	case "data":
		return completePath
	case "set":
		if strings.Contains(rest, "=") {
			return completeExpr
		}

		return completePath
	}

	return completeNone
}

// loopItems returns the names bound by the loop tags in text.
func loopItems(text string) []string {
	var names []string

	for _, tag := range strings.Split(text, "{%")[1:] {
		fields := strings.Fields(tag)
		if len(fields) >= 3 && fields[0] == "for" && fields[2] == "in" {
			names = append(names, fields[1])
		}
	}

	return names
}

// pathCandidates returns the keys of the data value at parent. At the top
// level extra names, such as loop items, are included.
func pathCandidates(data lang.Value, parent string, extra ...string) []string {
	v, ok := data.Lookup(parent)
	if !ok {
		return nil
	}

	if parent != "" {
		return v.Keys()
	}

	return append(v.Keys(), extra...)
}

// computeMatches calculates the fuzzy match results for the word at the cursor.
// It returns the matches (ranked best-first), the candidate list, and the word
// boundaries. An empty word lists every candidate after a dot or an opening
// quote and nothing elsewhere, leaving the hint line visible.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	candidates []string,
	wordStart, wordEnd int,
) {
	input := m.input.Value()
	cursor := min(m.input.Position(), len(input))
	before := input[:cursor]

	kind := renderContext(before)
	if m.mode == modeCtrl {
		kind = ctrlContext(before)
	}

	var (
		word    string
		browse  bool
		session = m.session
	)

	switch kind {
	case completeNone:
		return nil, nil, cursor, cursor

	case completeTemplate:
		word, wordStart, wordEnd = quoteBounds(input, cursor)
		if m.mode == modeCtrl {
			word, wordStart, wordEnd = wordBounds(input, cursor)
		}

		candidates = m.templates
		browse = true

	case completeCommand:
		word, wordStart, wordEnd = wordBounds(input, cursor)
		candidates = ctrlCommands

	case completePath, completeExpr:
		word, wordStart, wordEnd = wordBounds(input, cursor)
		parent := parentPath(input, wordStart)
		browse = parent != ""

		var extra []string
		if kind == completeExpr {
			extra = builtin.Names
		} else if m.mode == modeEval {
			extra = loopItems(before)
		}

		candidates = pathCandidates(session.Data, parent, extra...)
	}

	if len(candidates) == 0 {
		return nil, nil, wordStart, wordEnd
	}

	if word == "" {
		if !browse {
			return nil, nil, wordStart, wordEnd
		}

		matches = make(fuzzy.Matches, len(candidates))
		for i, c := range candidates {
			matches[i] = fuzzy.Match{Str: c, Index: i}
		}

		return matches, candidates, wordStart, wordEnd
	}

	return fuzzy.Find(word, candidates), candidates, wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within the given terminal width. Each candidate is rendered with its matched
// characters highlighted. The selected candidate (when tabbing) uses the
// selected style.
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

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx)

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		if used+entryWidth+ellipsisWidth > width && i > 0 {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a single candidate with matched characters
// highlighted. Expression builtins are displayed with a "()" suffix.
func renderCandidate(match fuzzy.Match, selected bool) string {
	baseStyle := suggestionStyle
	highlightStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("4")).
		Bold(true)

	if selected {
		baseStyle = selectedStyle
		highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4")).
			Bold(true)
	}

	matchSet := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matchSet[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matchSet[i] {
			b.WriteString(highlightStyle.Render(string(r)))
		} else {
			b.WriteString(baseStyle.Render(string(r)))
		}
	}

	if _, ok := builtin.Index[match.Str]; ok {
		b.WriteString(baseStyle.Render("()"))
	}

	return b.String()
}
