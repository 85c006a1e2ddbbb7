package repl

import (
	"slices"
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/lrx/decl"
)

// signatureHintStyle styles for argument hints.
var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
	signatureSeparatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// elementCall is an element open tag enclosing the cursor.
type elementCall struct {
	ns      string   // namespace word, e.g. "yatt"
	name    string   // widget path after the namespace, e.g. "btn" or "lib:btn"
	given   []string // names of completed labeled attributes
	unnamed int      // number of completed unlabeled attributes
	current string   // attribute name under the cursor, if any
	inTag   bool     // true if the cursor is inside the attribute list
}

// detectElementCall reports whether the cursor sits in the attribute list of
// an element call such as `<yatt:btn label="ok" |`. isNS tells which words
// are namespaces.
func detectElementCall(input string, cursor int, isNS func(string) bool) elementCall {
	if cursor > len(input) {
		cursor = len(input)
	}

	open := tagOpener(input[:cursor])
	if open < 0 {
		return elementCall{}
	}

	head := input[open+1 : cursor]

	nameEnd := strings.IndexFunc(head, func(r rune) bool {
		return unicode.IsSpace(r) || r == '/' || r == '>'
	})
	if nameEnd < 0 {
		// Still typing the element name.
		return elementCall{}
	}

	ns, name, ok := strings.Cut(head[:nameEnd], ":")
	if !ok || name == "" || !isNS(ns) {
		return elementCall{}
	}

	call := elementCall{ns: ns, name: name, inTag: true}
	call.scanAttrs(head[nameEnd:])

	return call
}

// tagOpener returns the offset of the '<' opening the tag that is still
// open at the end of s, or -1. Quoted attribute values are skipped.
func tagOpener(s string) int {
	open := -1

	var quote rune

	for i, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}

		case r == '<':
			open = i

		case r == '>':
			open = -1

		case open >= 0 && (r == '"' || r == '\''):
			quote = r
		}
	}

	return open
}

// scanAttrs records the attributes in s, the text between the element name
// and the cursor.
func (c *elementCall) scanAttrs(s string) {
	var (
		term  strings.Builder
		quote rune
	)

	flush := func() {
		t := term.String()
		term.Reset()

		if t == "" || t == "/" {
			return
		}

		if name, _, ok := strings.Cut(t, "="); ok {
			c.given = append(c.given, name)
		} else {
			c.unnamed++
		}
	}

	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}

			term.WriteRune(r)

		case r == '"' || r == '\'':
			quote = r
			term.WriteRune(r)

		case unicode.IsSpace(r):
			flush()

		default:
			term.WriteRune(r)
		}
	}

	// The unfinished term names the current attribute.
	if t := term.String(); t != "" {
		name, _, _ := strings.Cut(t, "=")
		c.current = name
	}
}

// argIndex returns the index in params of the argument being written, or -1.
// A named attribute selects its argument by name or unique prefix; otherwise
// the next argument not yet given is selected.
func (c elementCall) argIndex(params []string) int {
	if c.current != "" {
		if i := slices.Index(params, c.current); i >= 0 {
			return i
		}

		match := -1

		for i, p := range params {
			if strings.HasPrefix(p, c.current) {
				if match >= 0 {
					return -1
				}

				match = i
			}
		}

		if match >= 0 {
			return match
		}
	}

	skip := c.unnamed

	for i, p := range params {
		if slices.Contains(c.given, p) {
			continue
		}

		if skip == 0 {
			return i
		}

		skip--
	}

	return -1
}

// getSignature returns the call signature of the widget named name in d and
// its argument names. It returns an empty signature if there is no such
// widget.
func getSignature(d *decl.Declaration, name string) (signature string, params []string) {
	if d == nil {
		return "", nil
	}

	w, ok := d.Widget(name)
	if !ok {
		return "", nil
	}

	params = w.Args.Names()

	return formatSignature(name, params), params
}

// formatSignature formats a widget signature with argument names.
func formatSignature(name string, params []string) string {
	return name + "(" + strings.Join(params, ", ") + ")"
}

// renderSignatureHint renders the widget signature with the current
// argument highlighted.
func renderSignatureHint(
	signature string,
	params []string,
	currentArgIdx int,
) string {
	if signature == "" {
		return ""
	}

	openParen := strings.Index(signature, "(")
	if openParen == -1 {
		return signatureStyle.Render(signature)
	}

	funcName := signature[:openParen]

	if !strings.HasSuffix(signature, ")") {
		return signatureStyle.Render(signature)
	}

	if len(params) == 0 {
		return signatureNameStyle.Render(funcName) +
			signatureStyle.Render("()")
	}

	var b strings.Builder
	b.WriteString(signatureNameStyle.Render(funcName))
	b.WriteString(signatureStyle.Render("("))

	for i, param := range params {
		if i > 0 {
			b.WriteString(signatureSeparatorStyle.Render(", "))
		}

		if i == currentArgIdx {
			b.WriteString(currentParamStyle.Render(param))
		} else {
			b.WriteString(signatureStyle.Render(param))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	return b.String()
}
