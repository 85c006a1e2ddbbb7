package decl

import (
	"github.com/ardnew/lrx/lang"
)

// Kind is the closed set of declaration kinds.
type Kind int

const (
	KindArgs   Kind = iota // args
	KindWidget             // widget
	KindPage               // page
	KindAction             // action
	KindEntity             // entity
	KindBase               // base
)

var kindNames = map[string]Kind{
	"args":   KindArgs,
	"widget": KindWidget,
	"page":   KindPage,
	"action": KindAction,
	"entity": KindEntity,
	"base":   KindBase,
}

// ParseKind returns the kind named name.
func ParseKind(name string) (Kind, bool) {
	k, ok := kindNames[name]

	return k, ok
}

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindWidget:
		return "widget"

	case KindPage:
		return "page"

	case KindAction:
		return "action"

	case KindEntity:
		return "entity"

	case KindBase:
		return "base"

	default:
		return "args"
	}
}

// Category returns the namespace a part of kind k is registered under.
func (k Kind) Category() Category {
	switch k {
	case KindAction:
		return CategoryAction

	case KindEntity:
		return CategoryEntity

	default:
		return CategoryWidget
	}
}

// Public reports whether parts of kind k are reachable from outside the file.
func (k Kind) Public() bool { return k == KindArgs || k == KindPage || k == KindAction }

// Routable reports whether parts of kind k may carry a route.
func (k Kind) Routable() bool { return k == KindArgs || k == KindPage || k == KindAction }

// kindBuilder consumes the leading terms of a declaration that name the part
// and returns the index of the first argument term.
type kindBuilder func(b *build, p *Part, terms []*lang.AttTerm) (int, error)

var kindBuilders = map[Kind]kindBuilder{
	KindArgs:   buildUnnamed,
	KindWidget: buildNamed,
	KindPage:   buildNamed,
	KindAction: buildNamed,
	KindEntity: buildNamed,
}

// buildUnnamed handles the file's default widget, which may begin with an
// unlabeled route.
func buildUnnamed(b *build, p *Part, terms []*lang.AttTerm) (int, error) {
	if len(terms) == 0 || terms[0].Label != nil || !isRoute(terms[0]) {
		return 0, nil
	}

	if err := b.addRoute(p, terms[0]); err != nil {
		return 0, err
	}

	return 1, nil
}

// buildNamed extracts the part name, and for routable kinds an optional
// route, from the first term.
func buildNamed(b *build, p *Part, terms []*lang.AttTerm) (int, error) {
	if len(terms) == 0 {
		return 0, b.errAt(lang.ErrMissingPartName, p.Raw.Range.Start).
			Withf("in " + p.Kind.String() + " declaration")
	}

	first := terms[0]

	switch {
	case first.IsIdent():
		p.Name = first.Text()

	case first.Label != nil && p.Kind.Routable() && isRoute(first):
		p.Name = first.Name()
		if err := b.addRoute(p, first); err != nil {
			return 0, err
		}

	default:
		return 0, b.errAt(lang.ErrMissingPartName, first.Span().Start).
			Withf("in " + p.Kind.String() + " declaration, got " + first.Source())
	}

	return 1, nil
}
