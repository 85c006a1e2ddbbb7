package lang

import (
	"context"
	"log/slog"
	"strings"
)

type tokenKind int

const (
	tokText tokenKind = iota
	tokComment
	tokPI
	tokEntity
	tokMsgOpen
	tokMsgSep
	tokMsgClose
	tokTagOpen
	tokTagClose
)

// token is one lexical unit of a payload. Text, comment, PI and entity
// tokens carry their finished node; tag tokens carry an element shell.
type token struct {
	kind tokenKind
	rng  Range
	node Node
	elem *Element
	ns   string
	disc string
}

func (p *Parser) templatePattern() *Pattern {
	return p.patterns.Global("template:"+p.nsKey(), func() string {
		ns := p.nsAlt()

		return strings.Join([]string{
			`(?P<msgopen>&(?P<mns>` + ns + `)(?:#(?P<disc>\w+))?\[{2,};)`,
			`(?P<msgsep>&(?P<sns>` + ns + `)\|{2,};)`,
			`(?P<msgclose>&(?P<cns>` + ns + `)\]{2,};)`,
			`(?P<ent>&(?P<ens>` + ns + `))[:\[{]`,
			`(?P<tag><(?P<clo>/)?(?P<opt>:)?(?P<tns>` + ns + `)(?P<path>(?::[\w\-.]+)+))`,
			`(?P<pi><\?(?P<pns>` + ns + `)\b)`,
		}, "|")
	})
}

func (p *Parser) closeTagEndPattern() *Pattern {
	return p.patterns.Anchored("close-tag-end", func() string {
		return `\s*>`
	})
}

func (p *Parser) piCloserPattern() *Pattern {
	return p.patterns.Global("pi-closer", func() string {
		return `\?>`
	})
}

// ParseTree parses the payload of part into a template tree. It is the
// uncached form of [RawPart.Tree].
func (p *Parser) ParseTree(ctx context.Context, part *RawPart) (*Tree, error) {
	tree, err := p.parseTree(part.file.Source, part.Payload)
	if err != nil {
		return nil, err
	}

	p.logger.TraceContext(ctx, "tree parsed",
		slog.String("kind", part.Kind),
		slog.Int("node_count", len(tree.Nodes)),
	)

	return tree, nil
}

func (p *Parser) parseTree(src *Source, payload []Chunk) (*Tree, error) {
	toks, err := p.tokenize(src, payload)
	if err != nil {
		return nil, err
	}

	tp := &treeParser{sc: p.scanner(src), toks: toks}

	nodes, err := tp.parseNodes(nil)
	if err != nil {
		return nil, err
	}

	return &Tree{Source: src, Nodes: nodes}, nil
}

// tokenize turns payload chunks into a flat token stream.
func (p *Parser) tokenize(src *Source, payload []Chunk) ([]token, error) {
	var toks []token

	root := p.scanner(src)

	for _, c := range payload {
		if c.Type == ChunkComment {
			toks = append(toks, token{
				kind: tokComment,
				rng:  c.Range,
				node: &Comment{
					Range:     c.Range,
					Namespace: c.Namespace,
					Value:     src.Slice(c.Inner),
				},
			})

			continue
		}

		more, err := p.tokenizeText(root.Narrowed(c.Range))
		if err != nil {
			return nil, err
		}

		toks = append(toks, more...)
	}

	return toks, nil
}

func (p *Parser) tokenizeText(sc *Scanner) ([]token, error) {
	var toks []token

	src := sc.Source()

	text := func(end int) {
		if end > sc.Pos() {
			r := Range{Start: sc.Pos(), End: end}
			toks = append(toks, token{
				kind: tokText,
				rng:  r,
				node: &Text{Range: r, Value: src.Slice(r)},
			})
		}
	}

	for !sc.EOF() {
		m, ok := sc.MatchGlobal(p.templatePattern())
		if !ok {
			text(sc.Window().End)

			break
		}

		text(m.Start)

		// The entity alternative also matched the character that opens its
		// path; leave it for the pipeline parser.
		if ns, ok := m.Group("ens"); ok {
			sc.TabTo(ns.End)
		} else {
			sc.Tab(m)
		}

		switch {
		case m.Has("msgopen"):
			toks = append(toks, token{
				kind: tokMsgOpen,
				rng:  m.Range,
				ns:   m.Text("mns"),
				disc: m.Text("disc"),
			})

		case m.Has("msgsep"):
			toks = append(toks, token{kind: tokMsgSep, rng: m.Range, ns: m.Text("sns")})

		case m.Has("msgclose"):
			toks = append(toks, token{kind: tokMsgClose, rng: m.Range, ns: m.Text("cns")})

		case m.Has("ent"):
			ent, err := p.parseEntityAt(sc, m.Start, m.Text("ens"))
			if err != nil {
				return nil, err
			}

			toks = append(toks, token{kind: tokEntity, rng: ent.Range, node: ent})

		case m.Has("pi"):
			end, ok := sc.MatchGlobal(p.piCloserPattern())
			if !ok {
				return nil, sc.Error(ErrUnterminatedPI, m.Start)
			}

			sc.Tab(end)

			r := Range{Start: m.Start, End: end.End}
			toks = append(toks, token{
				kind: tokPI,
				rng:  r,
				node: &PI{
					Range:     r,
					Namespace: m.Text("pns"),
					Value:     src.Text[m.End:end.Start],
				},
			})

		case m.Has("tag"):
			tok, err := p.tagToken(sc, m)
			if err != nil {
				return nil, err
			}

			toks = append(toks, tok)
		}
	}

	return toks, nil
}

// tagToken finishes a tag whose "<ns:path" (or "</ns:path") prefix is m.
func (p *Parser) tagToken(sc *Scanner, m Match) (token, error) {
	path := strings.Split(strings.TrimPrefix(m.Text("path"), ":"), ":")
	el := &Element{
		Namespace: m.Text("tns"),
		Path:      path,
		Option:    m.Has("opt"),
	}

	if m.Has("clo") {
		end, ok := sc.MatchAnchored(p.closeTagEndPattern())
		if !ok {
			return token{}, sc.Error(ErrGarbageInTag, sc.Pos()).Withf("</" + el.Tag() + ">")
		}

		sc.Tab(end)

		return token{kind: tokTagClose, rng: Range{Start: m.Start, End: end.End}, elem: el}, nil
	}

	atts, err := p.parseAttList(sc, attTag, m.Start)
	if err != nil {
		return token{}, err
	}

	el.Attributes = atts
	el.SelfClosing = atts.SelfClosing
	el.Range = Range{Start: m.Start, End: sc.Pos()}
	el.Body = Range{Start: sc.Pos(), End: sc.Pos()}

	return token{kind: tokTagOpen, rng: el.Range, elem: el}, nil
}

// treeParser builds a tree from a token stream by recursive descent.
type treeParser struct {
	sc   *Scanner
	toks []token
	i    int
}

func (tp *treeParser) errorAt(sentinel *Error, offset int) *Error {
	return tp.sc.Error(sentinel, offset)
}

// parseNodes consumes tokens until the close tag of parent, or until the end
// of the stream when parent is nil.
func (tp *treeParser) parseNodes(parent *Element) ([]Node, error) {
	var nodes []Node

	target := &nodes

	for tp.i < len(tp.toks) {
		t := tp.toks[tp.i]

		switch t.kind {
		case tokText, tokComment, tokPI, tokEntity:
			*target = append(*target, t.node)
			tp.i++

		case tokMsgOpen:
			msg, err := tp.parseMessage()
			if err != nil {
				return nil, err
			}

			*target = append(*target, msg)

		case tokMsgSep, tokMsgClose:
			return nil, tp.errorAt(ErrUnexpectedToken, t.rng.Start).
				Withf("outside of localized message")

		case tokTagOpen:
			tp.i++

			el := t.elem

			if el.Option && parent == nil {
				return nil, tp.errorAt(ErrMisplacedOption, t.rng.Start).Withf(el.Tag())
			}

			if !el.SelfClosing {
				if err := tp.enter(el); err != nil {
					return nil, err
				}
			}

			switch {
			case el.Option && el.SelfClosing:
				clause := &Clause{Option: el}
				parent.Footer = append(parent.Footer, clause)
				target = &clause.Children

			case el.Option:
				parent.Options = append(parent.Options, el)

			default:
				*target = append(*target, el)
			}

		case tokTagClose:
			if parent == nil {
				return nil, tp.errorAt(ErrUnexpectedClose, t.rng.Start).
					Withf("</" + t.elem.Tag() + ">")
			}

			if t.elem.Option != parent.Option || t.elem.Name() != parent.Name() {
				return nil, tp.errorAt(ErrTagMismatch, t.rng.Start).
					Withf("</" + t.elem.Tag() + "> for <" + parent.Tag() + ">")
			}

			tp.i++
			parent.Body.End = t.rng.Start
			parent.Range.End = t.rng.End

			return nodes, nil
		}
	}

	if parent != nil {
		return nil, tp.errorAt(ErrMissingCloseTag, parent.Range.Start).
			Withf("</" + parent.Tag() + ">")
	}

	return nodes, nil
}

// enter parses the content of el one nesting level deeper.
func (tp *treeParser) enter(el *Element) error {
	saved := tp.sc

	child, err := tp.sc.Nested(Range{Start: el.Range.Start, End: tp.sc.Window().End})
	if err != nil {
		return err
	}

	tp.sc = child
	defer func() { tp.sc = saved }()

	children, err := tp.parseNodes(el)
	if err != nil {
		return err
	}

	el.Children = children

	return nil
}

// parseMessage consumes a localized message starting at the current token.
// Arms may contain only text and entities.
func (tp *treeParser) parseMessage() (*Message, error) {
	open := tp.toks[tp.i]
	tp.i++

	msg := &Message{
		Range:         open.rng,
		Namespace:     open.ns,
		Discriminator: open.disc,
	}

	src := tp.sc.Source()
	arm := &Arm{Range: Range{Start: open.rng.End}}

	closeArm := func(end int) {
		arm.Range.End = end
		arm.Text = src.Slice(arm.Range)
		msg.Arms = append(msg.Arms, arm)
	}

	for tp.i < len(tp.toks) {
		t := tp.toks[tp.i]
		tp.i++

		switch t.kind {
		case tokText:
			arm.Nodes = append(arm.Nodes, t.node)

		case tokEntity:
			arm.Nodes = append(arm.Nodes, t.node)
			msg.Bindings = append(msg.Bindings, &Binding{
				Arm:    len(msg.Arms),
				Entity: t.node.(*Entity),
			})

		case tokMsgSep:
			closeArm(t.rng.Start)
			arm = &Arm{Range: Range{Start: t.rng.End}}

		case tokMsgClose:
			closeArm(t.rng.Start)
			msg.Range.End = t.rng.End

			return msg, nil

		default:
			return nil, tp.errorAt(ErrMisplacedElement, t.rng.Start).
				Withf("inside localized message")
		}
	}

	return nil, tp.errorAt(ErrUnterminatedMessage, open.rng.Start)
}
