package decl

import (
	"iter"

	"github.com/ardnew/lrx/lang"
)

// Category separates the name spaces of parts: widgets, actions and
// entities may share names.
type Category int

const (
	CategoryWidget Category = iota // widget
	CategoryAction                 // action
	CategoryEntity                 // entity
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryAction:
		return "action"

	case CategoryEntity:
		return "entity"

	default:
		return "widget"
	}
}

// PartKey identifies a part within a declaration.
type PartKey struct {
	Category Category
	Name     string
}

// Declaration is the fully resolved declaration of one source file.
type Declaration struct {
	// Path is the file name the declaration was built from.
	Path string

	// Order lists the parts in declaration order.
	Order []PartKey

	// Bases lists the directories named by base declarations.
	Bases []string

	Routes *RouteMap

	parts   map[PartKey]*Part
	file    *lang.File
	builder *Builder
}

func newDeclaration(b *Builder, f *lang.File) *Declaration {
	return &Declaration{
		Path:    f.Source.Filename,
		Routes:  NewRouteMap(),
		parts:   make(map[PartKey]*Part),
		file:    f,
		builder: b,
	}
}

// File returns the parsed source file.
func (d *Declaration) File() *lang.File { return d.file }

// Part returns the part of category c named name.
func (d *Declaration) Part(c Category, name string) (*Part, bool) {
	p, ok := d.parts[PartKey{Category: c, Name: name}]

	return p, ok
}

// Widget returns the widget named name. The default widget has name "".
func (d *Declaration) Widget(name string) (*Part, bool) {
	return d.Part(CategoryWidget, name)
}

// Len returns the number of parts.
func (d *Declaration) Len() int { return len(d.Order) }

// Parts iterates over the parts in declaration order.
func (d *Declaration) Parts() iter.Seq[*Part] {
	return func(yield func(*Part) bool) {
		for _, key := range d.Order {
			if !yield(d.parts[key]) {
				return
			}
		}
	}
}

// WidgetNames returns the names of all widgets in declaration order.
func (d *Declaration) WidgetNames() []string {
	var names []string

	for _, key := range d.Order {
		if key.Category == CategoryWidget && key.Name != "" {
			names = append(names, key.Name)
		}
	}

	return names
}
