package lang

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// TermKind classifies an attribute term by its lexical form.
type TermKind int

const (
	TermBare   TermKind = iota // bare
	TermIdent                  // ident
	TermSingle                 // single-quoted
	TermDouble                 // double-quoted
	TermNested                 // nested
	TermEntity                 // entity
)

// String returns the term kind name.
func (k TermKind) String() string {
	switch k {
	case TermIdent:
		return "ident"

	case TermSingle:
		return "single-quoted"

	case TermDouble:
		return "double-quoted"

	case TermNested:
		return "nested"

	case TermEntity:
		return "entity"

	default:
		return "bare"
	}
}

// Quoted reports whether k is a quoted form.
func (k TermKind) Quoted() bool { return k == TermSingle || k == TermDouble }

// AttTerm is one attribute: an optional label plus a value that is either
// text, a nested bracketed list or an entity reference.
type AttTerm struct {
	Kind TermKind `json:"kind" yaml:"kind"`

	// Range covers the value including quotes or brackets. Value excludes
	// them.
	Range Range `json:"range" yaml:"range"`
	Value Range `json:"value" yaml:"value"`

	Label  *AttTerm   `json:"label,omitempty"  yaml:"label,omitempty"`
	Nested []*AttTerm `json:"nested,omitempty" yaml:"nested,omitempty"`

	// Entity is the path of an "&ns:...;" value.
	Entity *Entity `json:"entity,omitempty" yaml:"entity,omitempty"`

	// Comments are "-- ... --" comment ranges attached to this term.
	Comments []Range `json:"comments,omitempty" yaml:"comments,omitempty"`

	src *Source
}

// Text returns the value text without quotes or brackets.
func (t *AttTerm) Text() string { return t.src.Slice(t.Value) }

// Raw returns the value text as written.
func (t *AttTerm) Raw() string { return t.src.Slice(t.Range) }

// Name returns the label text, or "" for an unlabeled term.
func (t *AttTerm) Name() string {
	if t.Label == nil {
		return ""
	}

	return t.Label.Text()
}

// Span returns the range from the label, if any, to the end of the value.
func (t *AttTerm) Span() Range {
	if t.Label == nil {
		return t.Range
	}

	return Range{Start: t.Label.Range.Start, End: t.Range.End}
}

// Source returns "label=value" as written, or only the value when the term
// has no label.
func (t *AttTerm) Source() string {
	if t.Label == nil {
		return t.Raw()
	}

	return t.Label.Raw() + "=" + t.Raw()
}

// IsIdent reports whether the term is an unlabeled identifier.
func (t *AttTerm) IsIdent() bool { return t.Label == nil && t.Kind == TermIdent }

// IsNested reports whether the term value is a bracketed list.
func (t *AttTerm) IsNested() bool { return t.Kind == TermNested }

// SourceText returns the source buffer the term refers to.
func (t *AttTerm) SourceText() *Source { return t.src }

// AttList is a parsed attribute list of a declaration or tag.
type AttList struct {
	// Range covers the attribute text between the opener and the terminator.
	Range Range      `json:"range" yaml:"range"`
	Terms []*AttTerm `json:"terms" yaml:"terms"`

	// SelfClosing is set when a tag ends with "/>".
	SelfClosing bool `json:"self_closing,omitempty" yaml:"self_closing,omitempty"`

	// Comments holds comments that could not be attached to any term.
	Comments []Range `json:"comments,omitempty" yaml:"comments,omitempty"`
}

// Len returns the number of top-level terms.
func (a *AttList) Len() int {
	if a == nil {
		return 0
	}

	return len(a.Terms)
}

// attMode selects the dialect of an attribute list.
type attMode int

const (
	// attDecl accepts "-- comments --" and ends at ">".
	attDecl attMode = iota
	// attTag ends at ">" or "/>" and has no comments.
	attTag
)

var identRx = regexp.MustCompile(`^[A-Za-z_][\w\-.:]*$`)

func (p *Parser) attTokenPattern(mode attMode) *Pattern {
	key := "att-token:" + p.nsKey()
	if mode == attDecl {
		key = "att-token-decl:" + p.nsKey()
	}

	return p.patterns.Anchored(key, func() string {
		alts := []string{`(?P<ws>\s+)`}

		if mode == attDecl {
			alts = append(alts,
				`(?P<comment>--(?s:.*?)--)`,
				`(?P<end>>)`,
			)
		} else {
			alts = append(alts, `(?P<end>/?>)`)
		}

		alts = append(alts,
			`(?P<open>\[)`,
			`(?P<close>\])`,
			`(?P<eq>=)`,
			`'(?P<sq>[^']*)'`,
			`"(?P<dq>[^"]*)"`,
			`(?P<ent>&`+p.nsAlt()+`)[:\[{]`,
			`(?P<word>[^\s'"<>\[\]=&]+)`,
		)

		return strings.Join(alts, "|")
	})
}

// attState is the shift-reduce state of one bracket level.
type attState struct {
	terms    []*AttTerm
	pending  *AttTerm
	eqAt     int
	sawEq    bool
	buffered []Range
	orphans  []Range
}

func (st *attState) shift(t *AttTerm) {
	if st.pending != nil && st.sawEq {
		t.Label = st.pending
		t.Comments = append(st.pending.Comments, t.Comments...)
		st.pending.Comments = nil
		st.pending = nil
		st.sawEq = false
		st.terms = append(st.terms, t)

		return
	}

	if st.pending != nil {
		st.terms = append(st.terms, st.pending)
	}

	if len(st.buffered) > 0 {
		t.Comments = append(st.buffered, t.Comments...)
		st.buffered = nil
	}

	st.pending = t
}

func (st *attState) comment(r Range) {
	switch {
	case st.pending != nil:
		st.pending.Comments = append(st.pending.Comments, r)

	case len(st.terms) > 0:
		last := st.terms[len(st.terms)-1]
		last.Comments = append(last.Comments, r)

	default:
		st.buffered = append(st.buffered, r)
	}
}

func (st *attState) flush(sc *Scanner) ([]*AttTerm, error) {
	if st.sawEq {
		return nil, sc.Error(ErrMissingValue, st.eqAt)
	}

	if st.pending != nil {
		st.terms = append(st.terms, st.pending)
		st.pending = nil
	}

	st.orphans = append(st.orphans, st.buffered...)
	st.buffered = nil

	return st.terms, nil
}

// parseAttList parses attribute terms at the cursor up to and including the
// terminator. opener is the offset of the construct that began the list,
// used to locate unterminated-list errors.
func (p *Parser) parseAttList(sc *Scanner, mode attMode, opener int) (*AttList, error) {
	start := sc.Pos()

	terms, orphans, end, err := p.parseAttTerms(sc, mode, false, opener)
	if err != nil {
		return nil, err
	}

	return &AttList{
		Range:       Range{Start: start, End: end.Start},
		Terms:       terms,
		SelfClosing: strings.HasPrefix(sc.Source().Slice(end), "/"),
		Comments:    orphans,
	}, nil
}

// parseAttTerms is the shift-reduce loop for one bracket level. It returns
// the range of the terminator it consumed: ">" or "/>" at top level, "]"
// when nested.
func (p *Parser) parseAttTerms(
	sc *Scanner,
	mode attMode,
	nested bool,
	opener int,
) ([]*AttTerm, []Range, Range, error) {
	var st attState

	src := sc.Source()
	tok := p.attTokenPattern(mode)

	for {
		if sc.EOF() {
			if nested {
				return nil, nil, Range{}, sc.Error(ErrUnbalancedBracket, opener)
			}

			return nil, nil, Range{}, sc.Error(ErrUnterminatedAttList, opener)
		}

		m, ok := sc.MatchAnchored(tok)
		if !ok {
			if mode == attTag {
				return nil, nil, Range{}, sc.Error(ErrGarbageInTag, sc.Pos())
			}

			r, _ := utf8.DecodeRuneInString(src.Text[sc.Pos():])

			return nil, nil, Range{}, sc.Error(ErrUnexpectedToken, sc.Pos()).
				Withf(strconv.QuoteRune(r))
		}

		switch {
		case m.Has("ws"):
			sc.Tab(m)

		case m.Has("comment"):
			sc.Tab(m)
			st.comment(m.Range)

		case m.Has("end"):
			if nested {
				return nil, nil, Range{}, sc.Error(ErrUnbalancedBracket, opener)
			}

			terms, err := st.flush(sc)
			if err != nil {
				return nil, nil, Range{}, err
			}

			sc.Tab(m)

			return terms, st.orphans, m.Range, nil

		case m.Has("close"):
			if !nested {
				return nil, nil, Range{}, sc.Error(ErrUnbalancedBracket, m.Start)
			}

			terms, err := st.flush(sc)
			if err != nil {
				return nil, nil, Range{}, err
			}

			sc.Tab(m)

			return terms, st.orphans, m.Range, nil

		case m.Has("open"):
			sc.Tab(m)

			child, err := sc.Nested(sc.Rest())
			if err != nil {
				return nil, nil, Range{}, err
			}

			inner, orphans, closer, err := p.parseAttTerms(child, mode, true, m.Start)
			if err != nil {
				return nil, nil, Range{}, err
			}

			sc.TabTo(child.Pos())

			t := &AttTerm{
				Kind:     TermNested,
				Range:    Range{Start: m.Start, End: closer.End},
				Value:    Range{Start: m.End, End: closer.Start},
				Nested:   inner,
				Comments: orphans,
				src:      src,
			}
			st.shift(t)

		case m.Has("eq"):
			if st.pending == nil {
				return nil, nil, Range{}, sc.Error(ErrUnexpectedToken, m.Start).
					Withf("'=' without a name")
			}

			if st.sawEq {
				return nil, nil, Range{}, sc.Error(ErrUnexpectedToken, m.Start).
					Withf("'=' after '='")
			}

			if st.pending.Kind != TermIdent && st.pending.Kind != TermBare {
				return nil, nil, Range{}, sc.Error(ErrUnexpectedToken, st.pending.Range.Start).
					Withf("attribute name must be a word")
			}

			st.sawEq = true
			st.eqAt = m.Start
			sc.Tab(m)

		case m.Has("sq"), m.Has("dq"):
			kind, group := TermSingle, "sq"
			if m.Has("dq") {
				kind, group = TermDouble, "dq"
			}

			value, _ := m.Group(group)
			sc.Tab(m)

			st.shift(&AttTerm{
				Kind:  kind,
				Range: m.Range,
				Value: value,
				src:   src,
			})

		case m.Has("ent"):
			ns, _ := m.Group("ent")
			sc.TabTo(ns.End)

			ent, err := p.parseEntityAt(sc, m.Start, src.Slice(ns)[1:])
			if err != nil {
				return nil, nil, Range{}, err
			}

			st.shift(&AttTerm{
				Kind:   TermEntity,
				Range:  ent.Range,
				Value:  ent.Range,
				Entity: ent,
				src:    src,
			})

		case m.Has("word"):
			r, _ := m.Group("word")

			// In tags, a trailing "/" immediately before ">" belongs to the
			// self-closing terminator.
			if mode == attTag && strings.HasSuffix(src.Slice(r), "/") &&
				r.End < sc.Window().End && src.Text[r.End] == '>' {
				r.End--
			}

			sc.TabTo(r.End)

			kind := TermBare
			if identRx.MatchString(src.Slice(r)) {
				kind = TermIdent
			}

			st.shift(&AttTerm{
				Kind:  kind,
				Range: r,
				Value: r,
				src:   src,
			})
		}
	}
}
