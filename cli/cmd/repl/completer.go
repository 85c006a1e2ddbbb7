package repl

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/lrx/decl"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "list", "show", "check", "edit", "clear", "quit"}

// isWordBoundary returns true if the rune is a word delimiter for completion
// purposes: whitespace and the punctuation of tags and entities. Hyphens,
// dots and underscores are part of names.
func isWordBoundary(r rune) bool {
	switch r {
	case ' ', '\t',
		'<', '>', '/', '=', '!', '?',
		'"', '\'', ':', '&', ';', ',',
		'(', ')', '[', ']', '{', '}':
		return true
	}

	return false
}

// wordBounds returns the current word at the cursor position and its byte
// boundaries within input.
// Returns an empty word when the cursor sits on a boundary.
func wordBounds(input string, cursor int) (word string, start, end int) {
	if cursor > len(input) {
		cursor = len(input)
	}

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

	word = input[start:end]

	return word, start, end
}

// lastRune returns the last rune of s, or utf8.RuneError if s is empty.
func lastRune(s string) rune {
	r, _ := utf8.DecodeLastRuneInString(s)

	return r
}

// completion is the kind of name expected at the cursor.
type completion int

const (
	completeNone      completion = iota
	completeNamespace            // after "<" or "&"
	completeWidget               // after "<ns:"
	completeArg                  // attribute name inside an element call
)

// completionContext classifies the word starting at wordStart in eval mode.
func completionContext(
	input string,
	wordStart int,
	isNS func(string) bool,
) (completion, elementCall) {
	prefix := input[:wordStart]

	switch lastRune(prefix) {
	case '<', '&':
		return completeNamespace, elementCall{}

	case ':':
		lt := strings.LastIndexByte(prefix, '<')
		if lt < 0 {
			return completeNone, elementCall{}
		}

		// Only the first segment after "<ns:" names a local widget.
		if ns := prefix[lt+1 : len(prefix)-1]; isNS(ns) {
			return completeWidget, elementCall{}
		}

	default:
		if !unicode.IsSpace(lastRune(prefix)) {
			return completeNone, elementCall{}
		}

		if call := detectElementCall(input, wordStart, isNS); call.inTag {
			return completeArg, call
		}
	}

	return completeNone, elementCall{}
}

// evalCandidates returns the completions for the word at wordStart.
func (m model) evalCandidates(input string, wordStart int) (completion, []string) {
	parser := m.builder.Parser()
	ctx, call := completionContext(input, wordStart, parser.IsNamespace)

	switch ctx {
	case completeNamespace:
		return ctx, parser.Config().Namespaces

	case completeWidget:
		return ctx, m.decl.WidgetNames()

	case completeArg:
		_, params := getSignature(m.decl, call.name)

		return ctx, slices.DeleteFunc(params, func(p string) bool {
			return slices.Contains(call.given, p)
		})
	}

	return completeNone, nil
}

// partNames returns the display names of all parts of d.
func partNames(d *decl.Declaration) []string {
	var names []string

	for p := range d.Parts() {
		names = append(names, p.DisplayName())
	}

	return names
}

// computeMatches calculates the fuzzy match results for the word at the
// cursor. It returns the matches (ranked best-first), the candidate list,
// and the word boundaries. An empty word only lists candidates right after
// "<ns:", where the widget names are the only thing that can follow.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	candidates []string,
	wordStart, wordEnd int,
) {
	input := m.input.Value()
	cursor := m.input.Position()

	word, ws, we := wordBounds(input, cursor)
	wordStart, wordEnd = ws, we

	if m.mode == modeCtrl {
		fields := strings.Fields(input[:wordStart])

		switch {
		case len(fields) == 0:
			candidates = ctrlCommands

		case len(fields) == 1 && (fields[0] == "show" || fields[0] == "s"):
			candidates = partNames(m.decl)
		}

		if word == "" {
			return nil, nil, wordStart, wordEnd
		}
	} else {
		var ctx completion

		ctx, candidates = m.evalCandidates(input, wordStart)

		if word == "" {
			if ctx != completeWidget || len(candidates) == 0 {
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

	matches = fuzzy.Find(word, candidates)

	return matches, candidates, wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within the given terminal width. The selected candidate (when tabbing)
// uses the selected style.
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
		selected := tabActive && i == suggIdx
		rendered := renderCandidate(match, selected)
		candidateWidth := lipgloss.Width(rendered)

		entryWidth := candidateWidth
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

		if i == len(matches)-1 {
			break
		}
	}

	return b.String()
}

// renderCandidate renders a single candidate with matched characters
// highlighted.
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
		ch := string(r)
		if matchSet[i] {
			b.WriteString(highlightStyle.Render(ch))
		} else {
			b.WriteString(baseStyle.Render(ch))
		}
	}

	return b.String()
}

// formatPreview generates a one-line summary of a part: its argument list
// and its route, if any.
func formatPreview(p *decl.Part) string {
	var sb strings.Builder

	args := make([]string, 0, p.Args.Len())
	for name, v := range p.Args.All() {
		args = append(args, name+":"+v.Spec())
	}

	sb.WriteString("(" + strings.Join(args, ", ") + ")")

	if p.Route != nil {
		sb.WriteString(" " + p.Route.String())
	}

	return sb.String()
}
