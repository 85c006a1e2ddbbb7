package decl

import (
	"context"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ardnew/lrx/lang"
)

// builtins are element names handled by the code generator itself.
var builtins = map[string]bool{
	"if":      true,
	"unless":  true,
	"foreach": true,
	"my":      true,
	"block":   true,
}

// Check verifies every element call in the widget bodies of d: the callee
// must exist, each attribute must name one of its arguments, and each bare
// pass-through must name a compatible variable of the caller. Bodies are
// parsed on demand.
func (d *Declaration) Check(ctx context.Context) error {
	return d.CheckParts(ctx, slices.Collect(d.Parts()))
}

// CheckParts is [Declaration.Check] restricted to parts. Parts that are not
// widgets are skipped.
func (d *Declaration) CheckParts(ctx context.Context, parts []*Part) error {
	for _, p := range parts {
		if !p.IsWidget() {
			continue
		}

		tree, err := p.Tree()
		if err != nil {
			return err
		}

		c := &checker{
			ctx:    ctx,
			decl:   d,
			src:    d.file.Source,
			caller: p,
			scopes: []map[string]*Variable{{}},
		}

		if err := c.nodes(tree.Nodes); err != nil {
			return err
		}

		d.builder.logger.TraceContext(ctx, "part checked",
			slog.String("name", p.DisplayName()),
		)
	}

	return nil
}

// BaseDirs returns the directories searched for widgets of other files:
// base declarations relative to the file, then the file's own directory.
func (d *Declaration) BaseDirs() []string {
	dir := filepath.Dir(d.Path)

	dirs := make([]string, 0, len(d.Bases)+1)
	for _, base := range d.Bases {
		if !filepath.IsAbs(base) {
			base = filepath.Join(dir, base)
		}

		dirs = append(dirs, base)
	}

	return append(dirs, dir)
}

type checker struct {
	ctx    context.Context
	decl   *Declaration
	src    *lang.Source
	caller *Part
	scopes []map[string]*Variable
}

func (c *checker) errAt(sentinel *lang.Error, offset int) *lang.Error {
	return sentinel.WithPosition(c.src.Filename, c.src.Position(offset))
}

func (c *checker) variable(name string) (*Variable, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if v, ok := c.scopes[i][name]; ok {
			return v, true
		}
	}

	return c.caller.Lookup(name)
}

func (c *checker) variableNames() []string {
	names := c.caller.Args.Names()
	names = append(names, c.caller.VarNames()...)

	for _, scope := range c.scopes {
		for name := range scope {
			names = append(names, name)
		}
	}

	return names
}

func (c *checker) push() { c.scopes = append(c.scopes, map[string]*Variable{}) }
func (c *checker) pop()  { c.scopes = c.scopes[:len(c.scopes)-1] }

func (c *checker) declare(name string, v *Variable) {
	c.scopes[len(c.scopes)-1][name] = v
}

func (c *checker) nodes(nodes []lang.Node) error {
	for _, n := range nodes {
		el, ok := n.(*lang.Element)
		if !ok {
			continue
		}

		if err := c.element(el); err != nil {
			return err
		}
	}

	return nil
}

// contents checks the children, attribute elements and footer clauses of el.
func (c *checker) contents(el *lang.Element) error {
	if err := c.nodes(el.Children); err != nil {
		return err
	}

	for _, opt := range el.Options {
		if err := c.nodes(opt.Children); err != nil {
			return err
		}
	}

	for _, clause := range el.Footer {
		if err := c.nodes(clause.Children); err != nil {
			return err
		}
	}

	return nil
}

func (c *checker) element(el *lang.Element) error {
	if len(el.Path) == 1 && builtins[el.Path[0]] {
		return c.builtin(el)
	}

	callee, err := c.callee(el)
	if err != nil {
		return err
	}

	if err := c.attributes(el, callee); err != nil {
		return err
	}

	return c.contents(el)
}

func (c *checker) builtin(el *lang.Element) error {
	if el.Path[0] == "my" {
		for _, t := range el.Attributes.Terms {
			c.local(t)
		}

		return c.contents(el)
	}

	c.push()
	defer c.pop()

	if el.Path[0] == "foreach" {
		for _, t := range el.Attributes.Terms {
			if t.Name() == "my" && t.Kind == lang.TermIdent {
				c.declare(t.Text(), &Variable{
					Name:     t.Text(),
					Type:     TypeValue,
					TypeName: TypeValue.String(),
					ArgNo:    -1,
					Range:    t.Span(),
				})
			}
		}
	}

	return c.contents(el)
}

// local declares a variable introduced by <ns:my>: "name", "name=value" or
// "name:type=value".
func (c *checker) local(t *lang.AttTerm) {
	name := t.Name()
	if t.Label == nil {
		if !t.IsIdent() {
			return
		}

		name = t.Text()
	}

	v := &Variable{Name: name, Type: TypeText, TypeName: TypeText.String(), ArgNo: -1, Range: t.Span()}

	if n, typ, ok := strings.Cut(name, ":"); ok {
		v.Name = n
		if vt, known := LookupType(typ); known {
			v.Type, v.TypeName = vt, typ
		}
	}

	c.declare(v.Name, v)
}

// callee finds the widget called by el: a code argument of the caller, a
// widget of this file, or a widget found through the resolver.
func (c *checker) callee(el *lang.Element) (*Part, error) {
	if len(el.Path) == 1 {
		if v, ok := c.variable(el.Path[0]); ok && v.Type == TypeCode {
			if v.Widget == nil {
				// "x=code" declares a callable without arguments.
				return newPart(KindWidget, nil), nil
			}

			return v.Widget, nil
		}

		if w, ok := c.decl.Widget(el.Path[0]); ok {
			return w, nil
		}
	}

	if r := c.decl.builder.resolver; r != nil {
		w, err := r.Resolve(c.ctx, c.decl.BaseDirs(), el.Path)
		if err != nil {
			return nil, err
		}

		if w != nil {
			return w, nil
		}
	}

	err := c.errAt(lang.ErrUnknownWidget, el.Range.Start).Withf("'" + el.Name() + "'")

	candidates := c.decl.WidgetNames()
	for _, name := range c.variableNames() {
		if v, _ := c.variable(name); v.Type == TypeCode {
			candidates = append(candidates, name)
		}
	}

	if s := suggest(el.Name(), candidates); s != "" {
		err = err.Withf(s)
	}

	return nil, err
}

func (c *checker) attributes(el *lang.Element, callee *Part) error {
	for _, t := range el.Attributes.Terms {
		switch {
		case t.Label != nil:
			if err := c.formal(callee, t.Name(), t.Span().Start); err != nil {
				return err
			}

		case t.IsIdent():
			if err := c.passThrough(callee, t); err != nil {
				return err
			}

		default:
			return c.errAt(lang.ErrInvalidArgument, t.Range.Start).
				Withf("unnamed value " + t.Source() + " in call to '" + el.Name() + "'")
		}
	}

	for _, opt := range el.Options {
		if err := c.formal(callee, opt.Name(), opt.Range.Start); err != nil {
			return err
		}
	}

	return nil
}

func (c *checker) formal(callee *Part, name string, offset int) error {
	if _, ok := callee.Args.Get(name); ok {
		return nil
	}

	err := c.errAt(lang.ErrUnknownArgument, offset).
		Withf("'" + name + "' for widget '" + callee.DisplayName() + "'")
	if s := suggest(name, callee.Args.Names()); s != "" {
		err = err.Withf(s)
	}

	return err
}

// passThrough checks a bare "x", which passes the caller's x as the
// callee's x.
func (c *checker) passThrough(callee *Part, t *lang.AttTerm) error {
	name := t.Text()

	if err := c.formal(callee, name, t.Range.Start); err != nil {
		return err
	}

	actual, ok := c.variable(name)
	if !ok {
		err := c.errAt(lang.ErrUnknownArgument, t.Range.Start).
			Withf("'" + name + "' is not defined in widget '" + c.caller.DisplayName() + "'")
		if s := suggest(name, c.variableNames()); s != "" {
			err = err.Withf(s)
		}

		return err
	}

	formal, _ := callee.Args.Get(name)
	if !compatible(formal, actual) {
		return c.errAt(lang.ErrTypeMismatch, t.Range.Start).
			Withf("'" + name + "' is " + actual.Type.String() + ", widget '" +
				callee.DisplayName() + "' expects " + formal.Type.String())
	}

	return nil
}

func compatible(formal, actual *Variable) bool {
	code := func(v *Variable) bool { return v.Type == TypeCode || v.Type == TypeDelegate }

	if code(formal) != code(actual) {
		return false
	}

	return !(actual.Type == TypeHTML && formal.Type == TypeText)
}
