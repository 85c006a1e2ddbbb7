package decl

import (
	"maps"
	"slices"

	"github.com/ardnew/lrx/lang"
)

// Part is a built declaration: a widget, action or entity with its resolved
// argument list. Nested code signatures are anonymous parts with no Raw.
type Part struct {
	Kind   Kind
	Name   string
	Public bool
	Route  *Route
	Args   *ArgMap

	// Vars holds names bound by the declaration that are not arguments, such
	// as delegate aliases.
	Vars map[string]*Variable

	// Raw is the parsed declaration and payload.
	Raw *lang.RawPart

	pending bool
}

func newPart(kind Kind, raw *lang.RawPart) *Part {
	return &Part{
		Kind:   kind,
		Public: kind.Public(),
		Args:   NewArgMap(),
		Vars:   make(map[string]*Variable),
		Raw:    raw,
	}
}

// Category returns the namespace the part is registered under.
func (p *Part) Category() Category { return p.Kind.Category() }

// Key returns the part's lookup key.
func (p *Part) Key() PartKey { return PartKey{Category: p.Category(), Name: p.Name} }

// IsWidget reports whether the part can be called as an element.
func (p *Part) IsWidget() bool { return p.Category() == CategoryWidget }

// Pending reports whether argument construction is waiting on a delegate.
func (p *Part) Pending() bool { return p.pending }

// Lookup returns the argument or bound variable named name.
func (p *Part) Lookup(name string) (*Variable, bool) {
	if v, ok := p.Args.Get(name); ok {
		return v, true
	}

	v, ok := p.Vars[name]

	return v, ok
}

// VarNames returns the names of all non-argument variables, sorted.
func (p *Part) VarNames() []string {
	return slices.Sorted(maps.Keys(p.Vars))
}

// Tree returns the parsed payload, parsing it on first use.
func (p *Part) Tree() (*lang.Tree, error) {
	if p.Raw == nil {
		return &lang.Tree{}, nil
	}

	return p.Raw.Tree()
}

// Body returns the source text of the payload.
func (p *Part) Body() string {
	if p.Raw == nil {
		return ""
	}

	return p.Raw.File().Source.Slice(p.Raw.Body())
}

// DisplayName returns the part name, or "(default)" for the unnamed widget.
func (p *Part) DisplayName() string {
	if p.Name == "" {
		return "(default)"
	}

	return p.Name
}
