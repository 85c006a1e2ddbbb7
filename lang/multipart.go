package lang

import (
	"strings"
	"sync"
)

// ChunkType classifies the top-level chunks of a source file.
type ChunkType int

const (
	ChunkText    ChunkType = iota // text
	ChunkComment                  // comment
	ChunkDecl                     // declaration
)

// String returns the chunk type name.
func (t ChunkType) String() string {
	switch t {
	case ChunkComment:
		return "comment"

	case ChunkDecl:
		return "declaration"

	default:
		return "text"
	}
}

// Chunk is one top-level slice of a source file. Concatenating the text of
// every chunk of a file reproduces the file exactly.
type Chunk struct {
	Type  ChunkType `json:"type"  yaml:"type"`
	Range Range     `json:"range" yaml:"range"`

	// Inner is the comment body or the attribute list body of a declaration.
	Inner Range `json:"inner" yaml:"inner"`

	// Namespace is the namespace word of a comment or declaration.
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`

	// Kind and Subkinds split the colon-separated kind of a declaration,
	// e.g. "widget" for "<!yatt:widget ...>".
	Kind     string   `json:"kind,omitempty"     yaml:"kind,omitempty"`
	Subkinds []string `json:"subkinds,omitempty" yaml:"subkinds,omitempty"`

	// Attributes is the parsed attribute list of a declaration.
	Attributes *AttList `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// RawPart is one declaration together with the payload chunks that follow
// it up to the next declaration or end of input.
type RawPart struct {
	// Range spans from the declaration to the start of the next one.
	Range Range `json:"range" yaml:"range"`

	Namespace string   `json:"namespace"          yaml:"namespace"`
	Kind      string   `json:"kind"               yaml:"kind"`
	Subkinds  []string `json:"subkinds,omitempty" yaml:"subkinds,omitempty"`

	// Decl is the declaration chunk; it is nil for the implicit leading part.
	Decl *Chunk `json:"decl,omitempty" yaml:"decl,omitempty"`

	// Attributes is the declaration's attribute list, empty for the implicit
	// part.
	Attributes *AttList `json:"attributes" yaml:"attributes"`

	// Payload holds the text and comment chunks owned by the part.
	Payload []Chunk `json:"payload" yaml:"payload"`

	// Implicit is set for the part synthesized from leading text.
	Implicit bool `json:"implicit,omitempty" yaml:"implicit,omitempty"`

	file *File
	once sync.Once
	tree *Tree
	err  error
}

// Body returns the range covered by the part's payload.
func (p *RawPart) Body() Range {
	if len(p.Payload) == 0 {
		end := p.Range.End
		if p.Decl != nil {
			end = p.Decl.Range.End
		}

		return Range{Start: end, End: end}
	}

	return Range{
		Start: p.Payload[0].Range.Start,
		End:   p.Payload[len(p.Payload)-1].Range.End,
	}
}

// File returns the file the part belongs to.
func (p *RawPart) File() *File { return p.file }

// Tree parses the part's payload into a template tree on first call and
// returns the cached result afterwards.
func (p *RawPart) Tree() (*Tree, error) {
	p.once.Do(func() {
		p.tree, p.err = p.file.parser.parseTree(p.file.Source, p.Payload)
	})

	return p.tree, p.err
}

// File is the result of splitting one source into declaration parts.
type File struct {
	Source *Source    `json:"-"      yaml:"-"`
	Chunks []Chunk    `json:"chunks" yaml:"chunks"`
	Parts  []*RawPart `json:"parts"  yaml:"parts"`

	parser *Parser
}

// Parser returns the session that parsed the file.
func (f *File) Parser() *Parser { return f.parser }

// Text returns the source text covered by c.
func (f *File) Text(c Chunk) string { return f.Source.Slice(c.Range) }

func (p *Parser) declOpenerPattern() *Pattern {
	return p.patterns.Global("decl-opener:"+p.nsKey(), func() string {
		ns := p.nsAlt()

		return `<!(?:(?P<ns>` + ns + `)(?P<kind>(?::[\w\-.]+)+)` +
			`|--#(?P<cns>` + ns + `)\b)`
	})
}

func (p *Parser) commentCloserPattern() *Pattern {
	if p.cfg.LegacyComment {
		return p.patterns.Global("comment-closer:legacy", func() string {
			return `#?-->`
		})
	}

	return p.patterns.Global("comment-closer", func() string {
		return `#-->`
	})
}

// parseMultipart splits src into chunks and groups them into parts.
func (p *Parser) parseMultipart(src *Source) (*File, error) {
	sc := p.scanner(src)
	f := &File{Source: src, parser: p}

	text := func(end int) {
		if end > sc.Pos() {
			f.Chunks = append(f.Chunks, Chunk{
				Type:  ChunkText,
				Range: Range{Start: sc.Pos(), End: end},
				Inner: Range{Start: sc.Pos(), End: end},
			})
		}
	}

	for !sc.EOF() {
		m, ok := sc.MatchGlobal(p.declOpenerPattern())
		if !ok {
			text(sc.Window().End)
			sc.TabTo(sc.Window().End)

			break
		}

		text(m.Start)
		sc.Tab(m)

		if m.Has("cns") {
			c, ok := sc.MatchGlobal(p.commentCloserPattern())
			if !ok {
				return nil, sc.Error(ErrUnterminatedComment, m.Start)
			}

			f.Chunks = append(f.Chunks, Chunk{
				Type:      ChunkComment,
				Range:     Range{Start: m.Start, End: c.End},
				Inner:     Range{Start: m.End, End: c.Start},
				Namespace: m.Text("cns"),
			})
			sc.Tab(c)

			continue
		}

		atts, err := p.parseAttList(sc, attDecl, m.Start)
		if err != nil {
			return nil, err
		}

		kinds := strings.Split(strings.TrimPrefix(m.Text("kind"), ":"), ":")

		f.Chunks = append(f.Chunks, Chunk{
			Type:       ChunkDecl,
			Range:      Range{Start: m.Start, End: sc.Pos()},
			Inner:      atts.Range,
			Namespace:  m.Text("ns"),
			Kind:       kinds[0],
			Subkinds:   kinds[1:],
			Attributes: atts,
		})
	}

	f.Parts = p.groupParts(f)

	return f, nil
}

// groupParts pairs each declaration with the payload that follows it.
// Leading payload becomes an implicit part only when it contains
// non-whitespace text or when the file has no declarations at all.
func (p *Parser) groupParts(f *File) []*RawPart {
	var (
		parts   []*RawPart
		leading []Chunk
		current *RawPart
	)

	for i := range f.Chunks {
		c := f.Chunks[i]

		if c.Type == ChunkDecl {
			if current != nil {
				current.Range.End = c.Range.Start
			}

			current = &RawPart{
				Range:      Range{Start: c.Range.Start, End: len(f.Source.Text)},
				Namespace:  c.Namespace,
				Kind:       c.Kind,
				Subkinds:   c.Subkinds,
				Decl:       &f.Chunks[i],
				Attributes: c.Attributes,
				file:       f,
			}
			parts = append(parts, current)

			continue
		}

		if current == nil {
			leading = append(leading, c)
		} else {
			current.Payload = append(current.Payload, c)
		}
	}

	if len(parts) == 0 || hasContent(f.Source, leading) {
		end := len(f.Source.Text)
		if len(parts) > 0 {
			end = parts[0].Range.Start
		}

		implicit := &RawPart{
			Range:      Range{Start: 0, End: end},
			Kind:       p.cfg.DefaultKind,
			Attributes: &AttList{Range: Range{Start: 0, End: 0}},
			Payload:    leading,
			Implicit:   true,
			file:       f,
		}
		parts = append([]*RawPart{implicit}, parts...)
	}

	return parts
}

func hasContent(src *Source, chunks []Chunk) bool {
	for _, c := range chunks {
		if c.Type == ChunkText && strings.TrimSpace(src.Slice(c.Range)) != "" {
			return true
		}
	}

	return false
}
