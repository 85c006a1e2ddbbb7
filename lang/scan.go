package lang

import (
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"
)

// Range is a half-open [Start, End) byte offset pair into one source buffer.
type Range struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end"   yaml:"end"`
}

// Len returns the number of bytes covered by r.
func (r Range) Len() int { return r.End - r.Start }

// Empty reports whether r covers no bytes.
func (r Range) Empty() bool { return r.End <= r.Start }

// Contains reports whether o lies within r.
func (r Range) Contains(o Range) bool {
	return r.Start <= o.Start && o.End <= r.End
}

// Position is a resolved source location. Line and Column are 1-based;
// Column counts runes.
type Position struct {
	Offset int `json:"offset" yaml:"offset"`
	Line   int `json:"line"   yaml:"line"`
	Column int `json:"column" yaml:"column"`
}

// Source is a read-only source buffer shared by every Scanner derived from
// it, together with the pattern cache of the session that created it.
type Source struct {
	Filename string
	Text     string

	patterns *Patterns
}

// NewSource returns a Source over text. A nil patterns cache gets a private
// one.
func NewSource(filename, text string, patterns *Patterns) *Source {
	if patterns == nil {
		patterns = NewPatterns()
	}

	return &Source{Filename: filename, Text: text, patterns: patterns}
}

// Slice returns the text covered by r.
func (s *Source) Slice(r Range) string {
	return s.Text[r.Start:r.End]
}

// Position computes the line and column of offset.
func (s *Source) Position(offset int) Position {
	offset = min(max(offset, 0), len(s.Text))

	prefix := s.Text[:offset]
	line := strings.Count(prefix, "\n") + 1
	bol := strings.LastIndexByte(prefix, '\n') + 1

	return Position{
		Offset: offset,
		Line:   line,
		Column: utf8.RuneCountInString(prefix[bol:]) + 1,
	}
}

// Patterns returns the pattern cache shared by scanners of this source.
func (s *Source) Patterns() *Patterns { return s.patterns }

// Pattern is a compiled regular expression tagged with the matching mode
// it was compiled for.
type Pattern struct {
	re       *regexp.Regexp
	anchored bool
}

// Anchored reports whether p is meant for [Scanner.MatchAnchored].
func (p *Pattern) Anchored() bool { return p.anchored }

// String returns the source of the regular expression.
func (p *Pattern) String() string { return p.re.String() }

// Patterns memoizes compiled patterns by key. It is safe for concurrent use
// and is owned by one parser session rather than by the process.
type Patterns struct {
	mu sync.RWMutex
	m  map[string]*Pattern
}

// NewPatterns returns an empty pattern cache.
func NewPatterns() *Patterns {
	return &Patterns{m: make(map[string]*Pattern)}
}

// Anchored returns the pattern cached under key, compiling build() for
// anchored matching on first use.
func (p *Patterns) Anchored(key string, build func() string) *Pattern {
	return p.get("A:"+key, true, build)
}

// Global returns the pattern cached under key, compiling build() for
// forward searching on first use.
func (p *Patterns) Global(key string, build func() string) *Pattern {
	return p.get("G:"+key, false, build)
}

// Len returns the number of cached patterns.
func (p *Patterns) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return len(p.m)
}

func (p *Patterns) get(key string, anchored bool, build func() string) *Pattern {
	p.mu.RLock()
	pat, ok := p.m[key]
	p.mu.RUnlock()

	if ok {
		return pat
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if pat, ok := p.m[key]; ok {
		return pat
	}

	expr := build()
	if anchored {
		expr = `\A(?:` + expr + `)`
	}

	// Patterns are assembled from quoted configuration words; a compile
	// failure is a programming error.
	pat = &Pattern{re: regexp.MustCompile(expr), anchored: anchored}
	p.m[key] = pat

	return pat
}

// Match is the result of a successful pattern match. Its Range covers the
// whole match; Next is the cursor position after consuming it.
type Match struct {
	Range

	Next int

	groups []int
	pat    *Pattern
	src    *Source
}

// Group returns the range of the named capture group.
func (m Match) Group(name string) (Range, bool) {
	i := m.pat.re.SubexpIndex(name)
	if i < 0 || m.groups[2*i] < 0 {
		return Range{}, false
	}

	return Range{Start: m.groups[2*i], End: m.groups[2*i+1]}, true
}

// Has reports whether the named capture group participated in the match.
func (m Match) Has(name string) bool {
	_, ok := m.Group(name)

	return ok
}

// Text returns the text of the named capture group, or "" when it did not
// participate.
func (m Match) Text(name string) string {
	r, ok := m.Group(name)
	if !ok {
		return ""
	}

	return m.src.Slice(r)
}

// Scanner is a movable cursor over a window of a shared Source. Narrowed
// children share the buffer and pattern cache but own their cursor.
type Scanner struct {
	src      *Source
	pos      int
	window   Range
	depth    int
	maxDepth int
}

// NewScanner returns a Scanner over the whole of src.
func NewScanner(src *Source, maxDepth int) *Scanner {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	return &Scanner{
		src:      src,
		window:   Range{Start: 0, End: len(src.Text)},
		maxDepth: maxDepth,
	}
}

// Source returns the shared source buffer.
func (s *Scanner) Source() *Source { return s.src }

// Pos returns the cursor offset.
func (s *Scanner) Pos() int { return s.pos }

// Window returns the range the scanner is confined to.
func (s *Scanner) Window() Range { return s.window }

// Rest returns the unconsumed part of the window.
func (s *Scanner) Rest() Range { return Range{Start: s.pos, End: s.window.End} }

// EOF reports whether the cursor reached the end of the window.
func (s *Scanner) EOF() bool { return s.pos >= s.window.End }

// Depth returns the nesting depth of the scanner.
func (s *Scanner) Depth() int { return s.depth }

// Narrowed returns a child scanner confined to r with its cursor at r.Start.
func (s *Scanner) Narrowed(r Range) *Scanner {
	r.Start = max(r.Start, s.window.Start)
	r.End = min(r.End, s.window.End)

	return &Scanner{
		src:      s.src,
		pos:      r.Start,
		window:   r,
		depth:    s.depth,
		maxDepth: s.maxDepth,
	}
}

// Nested returns a narrowed child one nesting level deeper, failing when
// the configured depth limit is exceeded.
func (s *Scanner) Nested(r Range) (*Scanner, error) {
	if s.depth+1 > s.maxDepth {
		return nil, s.Error(ErrMaxDepthExceeded, r.Start)
	}

	child := s.Narrowed(r)
	child.depth++

	return child, nil
}

// MatchAnchored matches p exactly at the cursor. It never searches forward
// and never moves the cursor.
func (s *Scanner) MatchAnchored(p *Pattern) (Match, bool) {
	if !p.anchored {
		panic("lang: MatchAnchored called with unanchored pattern " + p.String())
	}

	return s.match(p)
}

// MatchGlobal searches forward from the cursor for the next occurrence of p
// within the window. The cursor is not moved; use [Scanner.Tab] to consume
// the match after handling the text before it.
func (s *Scanner) MatchGlobal(p *Pattern) (Match, bool) {
	if p.anchored {
		panic("lang: MatchGlobal called with anchored pattern " + p.String())
	}

	return s.match(p)
}

func (s *Scanner) match(p *Pattern) (Match, bool) {
	if s.pos > s.window.End {
		return Match{}, false
	}

	loc := p.re.FindStringSubmatchIndex(s.src.Text[s.pos:s.window.End])
	if loc == nil {
		return Match{}, false
	}

	for i := range loc {
		if loc[i] >= 0 {
			loc[i] += s.pos
		}
	}

	return Match{
		Range:  Range{Start: loc[0], End: loc[1]},
		Next:   loc[1],
		groups: loc,
		pat:    p,
		src:    s.src,
	}, true
}

// Tab advances the cursor past m.
func (s *Scanner) Tab(m Match) { s.TabTo(m.Next) }

// TabTo moves the cursor to offset, clamped to the window. The cursor never
// moves backwards.
func (s *Scanner) TabTo(offset int) {
	s.pos = min(max(offset, s.pos), s.window.End)
}

// Peek returns the byte at the cursor, or 0 at the end of the window.
func (s *Scanner) Peek() byte {
	if s.EOF() {
		return 0
	}

	return s.src.Text[s.pos]
}

// Error returns sentinel located at offset.
func (s *Scanner) Error(sentinel *Error, offset int) *Error {
	return sentinel.WithPosition(s.src.Filename, s.src.Position(offset))
}
