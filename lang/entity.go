package lang

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
)

// ItemKind classifies one step of an entity path.
type ItemKind int

const (
	ItemVar    ItemKind = iota // var
	ItemCall                   // call
	ItemArray                  // array
	ItemHash                   // hash
	ItemProp                   // prop
	ItemInvoke                 // invoke
	ItemAref                   // aref
	ItemHref                   // href
)

// String returns the item kind name.
func (k ItemKind) String() string {
	switch k {
	case ItemCall:
		return "call"

	case ItemArray:
		return "array"

	case ItemHash:
		return "hash"

	case ItemProp:
		return "prop"

	case ItemInvoke:
		return "invoke"

	case ItemAref:
		return "aref"

	case ItemHref:
		return "href"

	default:
		return "var"
	}
}

// PathItem is one step of an entity pipeline. Name is empty for bracket
// steps; Elements is nil for var and prop.
type PathItem struct {
	Kind     ItemKind   `json:"kind"               yaml:"kind"`
	Name     string     `json:"name,omitempty"     yaml:"name,omitempty"`
	Range    Range      `json:"range"              yaml:"range"`
	Elements []*EntTerm `json:"elements,omitempty" yaml:"elements,omitempty"`
}

// EntTermKind classifies an element of a call or bracket step.
type EntTermKind int

const (
	EntText     EntTermKind = iota // text
	EntExpr                        // expr
	EntPipeline                    // pipeline
)

// String returns the element kind name.
func (k EntTermKind) String() string {
	switch k {
	case EntExpr:
		return "expr"

	case EntPipeline:
		return "pipeline"

	default:
		return "text"
	}
}

// EntTerm is an element of a call or bracket step: literal text, an
// expression or a nested pipeline.
type EntTerm struct {
	Kind     EntTermKind `json:"kind"               yaml:"kind"`
	Range    Range       `json:"range"              yaml:"range"`
	Text     string      `json:"text,omitempty"     yaml:"text,omitempty"`
	Pipeline []*PathItem `json:"pipeline,omitempty" yaml:"pipeline,omitempty"`
}

// Entity is an "&ns:...;" reference. Range covers the leading "&" through
// the terminating ";".
type Entity struct {
	Range     Range       `json:"range"     yaml:"range"`
	Namespace string      `json:"namespace" yaml:"namespace"`
	Path      []*PathItem `json:"path"      yaml:"path"`
}

// Kind implements Node.
func (e *Entity) Kind() NodeKind { return NodeEntity }

// Span implements Node.
func (e *Entity) Span() Range { return e.Range }

// Head returns the first path item.
func (e *Entity) Head() *PathItem {
	if len(e.Path) == 0 {
		return nil
	}

	return e.Path[0]
}

var plainTextRx = regexp.MustCompile(`^[\w\s\-.]*$`)

func (p *Parser) entitySegmentPattern() *Pattern {
	return p.patterns.Anchored("entity-segment", func() string {
		return `:(?P<name>[A-Za-z_]\w*)(?P<call>\()?|:?(?P<bracket>\[)|:?(?P<brace>\{)`
	})
}

// ParseEntity parses a standalone entity path such as
// ":param(foo,:param(bar){hoe});". The terminating ";" is required.
func (p *Parser) ParseEntity(ctx context.Context, text string) (*Entity, error) {
	src := NewSource("", text, p.patterns)
	sc := p.scanner(src)

	ent, err := p.parseEntityAt(sc, 0, "")
	if err != nil {
		return nil, err
	}

	if !sc.EOF() {
		return nil, sc.Error(ErrUnexpectedToken, sc.Pos()).
			Withf("after entity")
	}

	p.logger.TraceContext(ctx, "entity parsed",
		slog.Int("path_length", len(ent.Path)),
	)

	return ent, nil
}

// ParseEntityRef parses an entity reference as a user would type it. A
// leading "&ns" is accepted when ns is a configured namespace and the
// closing ";" may be omitted.
func (p *Parser) ParseEntityRef(ctx context.Context, text string) (*Entity, error) {
	text = strings.TrimSpace(text)

	var ns string

	if rest, ok := strings.CutPrefix(text, "&"); ok {
		word, _, _ := strings.Cut(rest, ":")
		if p.IsNamespace(word) {
			ns = word
			text = strings.TrimPrefix(rest, word)
		}
	}

	if !strings.HasSuffix(text, ";") {
		text += ";"
	}

	ent, err := p.ParseEntity(ctx, text)
	if err != nil {
		return nil, err
	}

	ent.Namespace = ns

	return ent, nil
}

// parseEntityAt parses a pipeline at the cursor followed by ";". start is
// the offset of the leading "&" (or of the pipeline itself).
func (p *Parser) parseEntityAt(sc *Scanner, start int, ns string) (*Entity, error) {
	path, err := p.parsePipeline(sc, true)
	if err != nil {
		return nil, err
	}

	if sc.Peek() != ';' {
		return nil, sc.Error(ErrUnterminatedEntity, start)
	}

	sc.TabTo(sc.Pos() + 1)

	return &Entity{
		Range:     Range{Start: start, End: sc.Pos()},
		Namespace: ns,
		Path:      path,
	}, nil
}

// parsePipeline parses a sequence of path items. The first item of a
// pipeline is a var, call, array or hash; later items are prop, invoke,
// aref or href.
func (p *Parser) parsePipeline(sc *Scanner, first bool) ([]*PathItem, error) {
	var items []*PathItem

	seg := p.entitySegmentPattern()

	for {
		m, ok := sc.MatchAnchored(seg)
		if !ok {
			break
		}

		sc.Tab(m)

		item := &PathItem{Name: m.Text("name")}

		var closer byte

		switch {
		case m.Has("call"):
			item.Kind, closer = pick(first, ItemCall, ItemInvoke), ')'

		case m.Has("bracket"):
			item.Kind, closer = pick(first, ItemArray, ItemAref), ']'

		case m.Has("brace"):
			item.Kind, closer = pick(first, ItemHash, ItemHref), '}'

		default:
			item.Kind = pick(first, ItemVar, ItemProp)
		}

		if closer != 0 {
			elems, err := p.parseElements(sc, closer, m.Start)
			if err != nil {
				return nil, err
			}

			item.Elements = elems
		}

		item.Range = Range{Start: m.Start, End: sc.Pos()}
		items = append(items, item)
		first = false
	}

	if len(items) == 0 {
		return nil, sc.Error(ErrUnexpectedToken, sc.Pos()).
			Withf("in entity path")
	}

	return items, nil
}

func pick(first bool, head, tail ItemKind) ItemKind {
	if first {
		return head
	}

	return tail
}

// parseElements parses comma- or colon-separated elements up to closer.
// The cursor is just past the opening bracket at opener.
func (p *Parser) parseElements(sc *Scanner, closer byte, opener int) ([]*EntTerm, error) {
	var elems []*EntTerm

	expectTerm := true

	for {
		if sc.EOF() {
			return nil, sc.Error(ErrUnterminatedEntity, opener)
		}

		c := sc.Peek()

		switch {
		case c == closer:
			sc.TabTo(sc.Pos() + 1)

			return elems, nil

		case c == ';', strings.IndexByte(")]}", c) >= 0:
			return nil, sc.Error(ErrUnbalancedBracket, opener)

		case !expectTerm && (c == ',' || c == ':'):
			sc.TabTo(sc.Pos() + 1)

			expectTerm = true

		case expectTerm && (c == ' ' || c == '\t' || c == '\n' || c == '\r'):
			sc.TabTo(sc.Pos() + 1)

		case expectTerm && c == ',':
			elems = append(elems, &EntTerm{
				Kind:  EntText,
				Range: Range{Start: sc.Pos(), End: sc.Pos()},
			})
			sc.TabTo(sc.Pos() + 1)

		case expectTerm && strings.IndexByte(":[{", c) >= 0:
			child, err := sc.Nested(sc.Rest())
			if err != nil {
				return nil, err
			}

			start := child.Pos()

			path, err := p.parsePipeline(child, true)
			if err != nil {
				return nil, err
			}

			sc.TabTo(child.Pos())

			elems = append(elems, &EntTerm{
				Kind:     EntPipeline,
				Range:    Range{Start: start, End: sc.Pos()},
				Pipeline: path,
			})
			expectTerm = false

		case expectTerm:
			term, err := p.parseLiteral(sc)
			if err != nil {
				return nil, err
			}

			elems = append(elems, term)
			expectTerm = false

		default:
			return nil, sc.Error(ErrUnexpectedToken, sc.Pos()).
				Withf("in entity arguments")
		}
	}
}

// parseLiteral scans literal element text, keeping balanced parentheses.
// It stops before a separator, a bracket or ";".
func (p *Parser) parseLiteral(sc *Scanner) (*EntTerm, error) {
	src := sc.Source()
	start := sc.Pos()
	pos := start
	end := sc.Window().End

	for pos < end {
		c := src.Text[pos]

		if c == '(' {
			next, err := balancedParen(sc, pos)
			if err != nil {
				return nil, err
			}

			pos = next

			continue
		}

		if strings.IndexByte(",:;)]}[{", c) >= 0 {
			break
		}

		pos++
	}

	sc.TabTo(pos)

	text := src.Text[start:pos]

	kind := EntText
	if !plainTextRx.MatchString(text) {
		kind = EntExpr
	}

	return &EntTerm{
		Kind:  kind,
		Range: Range{Start: start, End: pos},
		Text:  text,
	}, nil
}

// balancedParen returns the offset just past the ")" matching the "(" at
// open.
func balancedParen(sc *Scanner, open int) (int, error) {
	text := sc.Source().Text
	depth := 0

	for pos := open; pos < sc.Window().End; pos++ {
		switch text[pos] {
		case '(':
			depth++

		case ')':
			depth--
			if depth == 0 {
				return pos + 1, nil
			}

		case ';':
			return 0, sc.Error(ErrUnbalancedBracket, open)
		}
	}

	return 0, sc.Error(ErrUnterminatedEntity, open)
}
