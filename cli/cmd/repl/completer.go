package repl

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
)

// commands are the names accepted after the ':' prefix.
var commands = []string{"help", "list", "where", "reload", "edit", "clear", "quit"}

// isWordBoundary reports whether r separates words for completion.
func isWordBoundary(r rune) bool {
	switch r {
	case '.', ' ', '\t', ':':
		return true
	}

	return false
}

// wordBounds returns the word around the cursor and its byte boundaries
// within input. The word is empty when the cursor sits on a boundary.
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

// candidates returns the names that may complete the word starting at
// wordStart: command names directly after ':', the flattened field names of
// a record after "id.", and record ids at the start of the line.
func (m model) candidates(input string, wordStart int) []string {
	prefix := input[:wordStart]

	switch {
	case prefix == ctrlPrefix:
		return commands

	case strings.HasPrefix(prefix, ctrlPrefix):
		return nil

	case prefix == "":
		return m.table.IDs()

	case strings.HasSuffix(prefix, ".") && !strings.ContainsAny(prefix, " \t"):
		flat, err := m.table.Flatten(strings.TrimSuffix(prefix, "."))
		if err != nil {
			return nil
		}

		return flat.Names()
	}

	return nil
}

// computeMatches returns the fuzzy matches for the word at the cursor,
// ranked best first, and the word boundaries. An empty word lists every
// field after "id." and every command after ':', and nothing at the start
// of the line so the hint stays visible.
func (m model) computeMatches() (matches fuzzy.Matches, wordStart, wordEnd int) {
	input := m.input.Value()

	word, wordStart, wordEnd := wordBounds(input, m.input.Position())
	candidates := m.candidates(input, wordStart)

	if len(candidates) == 0 {
		return nil, wordStart, wordEnd
	}

	if word == "" {
		if wordStart == 0 {
			return nil, wordStart, wordEnd
		}

		matches = make(fuzzy.Matches, len(candidates))
		for i, c := range candidates {
			matches[i] = fuzzy.Match{Str: c, Index: i}
		}

		return matches, wordStart, wordEnd
	}

	return fuzzy.Find(word, candidates), wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within width. The selected candidate (when tabbing) uses the selected
// style.
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

		if i > 0 && used+entryWidth+ellipsisWidth > width {
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
// highlighted.
func renderCandidate(match fuzzy.Match, selected bool) string {
	base := suggestionStyle
	highlight := suggestionStyle.Bold(true)

	if selected {
		base = selectedStyle
		highlight = selectedStyle.Bold(true)
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matched[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matched[i] {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	return b.String()
}
