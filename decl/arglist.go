package decl

import (
	"log/slog"
	"strings"

	"github.com/ardnew/lrx/lang"
)

// construct builds arguments of p from terms[i:]. It reports deferred when
// a delegate names a widget that is not yet resolved; a task resuming at the
// following term has then been queued. Nested signatures (sig) may not
// delegate.
func (b *build) construct(p *Part, terms []*lang.AttTerm, i int, sig bool) (bool, error) {
	for ; i < len(terms); i++ {
		t := terms[i]

		if t.Label == nil {
			if err := b.unlabeled(p, t); err != nil {
				return false, err
			}

			continue
		}

		switch t.Kind {
		case lang.TermNested:
			deferred, err := b.typed(p, terms, i, sig)
			if err != nil || deferred {
				return deferred, err
			}

		case lang.TermEntity:
			return false, b.errAt(lang.ErrInvalidArgument, t.Range.Start).
				Withf("'" + t.Name() + "' cannot take an entity value")

		default:
			v, err := ParseVarSpec(t.Text())
			if err != nil {
				return false, b.locate(err, t.Range.Start)
			}

			v.Name = t.Name()
			v.Range = t.Span()

			if err := b.addArg(p, v); err != nil {
				return false, err
			}
		}
	}

	return false, nil
}

// unlabeled handles a term without "name=".
func (b *build) unlabeled(p *Part, t *lang.AttTerm) error {
	switch {
	case t.IsNested():
		b.logger.InfoContext(b.ctx, "argument macro is not supported, ignored",
			slog.String("part", p.DisplayName()),
			slog.String("term", t.Source()),
			slog.Any("position", b.src.Position(t.Range.Start)),
		)

		return nil

	case t.IsIdent():
		return b.addArg(p, &Variable{
			Name:     t.Text(),
			Type:     TypeText,
			TypeName: TypeText.String(),
			Range:    t.Range,
		})

	default:
		return b.errAt(lang.ErrInvalidArgument, t.Range.Start).
			Withf("expected a name, got " + t.Source())
	}
}

// typed handles "name=[typeword ...]".
func (b *build) typed(p *Part, terms []*lang.AttTerm, i int, sig bool) (bool, error) {
	t := terms[i]
	name := t.Name()

	if len(t.Nested) == 0 || !t.Nested[0].IsIdent() {
		return false, b.errAt(lang.ErrInvalidArgument, t.Range.Start).
			Withf("'" + name + "' needs a type word in brackets")
	}

	head := t.Nested[0]
	word, suffix, qualified := strings.Cut(head.Text(), ":")

	typ, ok := LookupType(word)
	if !ok {
		return false, b.locate(unknownType(word), head.Range.Start)
	}

	switch typ {
	case TypeCode:
		if qualified {
			return false, b.locate(unknownType(head.Text()), head.Range.Start)
		}

		w := newPart(KindWidget, nil)
		w.Name = name

		if _, err := b.construct(w, t.Nested[1:], 0, true); err != nil {
			return false, err
		}

		return false, b.addArg(p, &Variable{
			Name:     name,
			Type:     TypeCode,
			TypeName: word,
			Widget:   w,
			Range:    t.Span(),
		})

	case TypeDelegate:
		if sig {
			return false, b.errAt(lang.ErrInvalidArgument, head.Range.Start).
				Withf("nested widget '" + p.Name + "' cannot delegate")
		}

		return b.delegate(p, terms, i, suffix)

	default:
		return false, b.errAt(lang.ErrInvalidArgument, head.Range.Start).
			Withf("type '" + word + "' takes no bracketed list")
	}
}

// delegate binds "name=[delegate(:target) names...]". The alias is recorded
// immediately; arguments are imported now when the target is resolved, or
// later by the task graph.
func (b *build) delegate(p *Part, terms []*lang.AttTerm, i int, target string) (bool, error) {
	t := terms[i]
	name := t.Name()
	head := t.Nested[0]

	if target == "" {
		target = name
	}

	if strings.Contains(target, ":") {
		return false, b.errAt(lang.ErrNotImplemented, head.Range.Start).
			Withf("(delegate to qualified name '" + target + "')")
	}

	var names []string

	for _, n := range t.Nested[1:] {
		if !n.IsIdent() {
			return false, b.errAt(lang.ErrInvalidArgument, n.Span().Start).
				Withf("delegate '" + name + "' expects argument names, got " + n.Source())
		}

		names = append(names, n.Text())
	}

	if _, dup := p.Lookup(name); dup {
		return false, b.errAt(lang.ErrDuplicateArgument, t.Span().Start).
			Withf("'" + name + "'")
	}

	alias := &Variable{
		Name:     name,
		Type:     TypeDelegate,
		TypeName: TypeDelegate.String(),
		ArgNo:    -1,
		Delegate: &Delegate{Target: target, Names: names},
		Range:    t.Span(),
	}
	p.Vars[name] = alias

	if w, ok := b.resolved(target); ok {
		return false, b.importDelegate(p, alias, w)
	}

	b.graph.add(&task{
		part:  p,
		terms: terms,
		next:  i + 1,
		alias: alias,
		dep:   target,
	})
	p.pending = true

	b.logger.TraceContext(b.ctx, "delegate deferred",
		slog.String("part", p.DisplayName()),
		slog.String("alias", name),
		slog.String("target", target),
	)

	return true, nil
}

// importDelegate copies arguments of w into p. Without an explicit name
// list every argument p does not already declare is imported, except the
// body. An argument named like one of p's delegate aliases is a duplicate.
func (b *build) importDelegate(p *Part, alias *Variable, w *Part) error {
	d := alias.Delegate
	alias.Widget = w

	if len(d.Names) == 0 {
		for name, v := range w.Args.All() {
			if p.Args.Has(name) || v.Body {
				continue
			}

			if _, dup := p.Vars[name]; dup {
				return b.errAt(lang.ErrDuplicateArgument, alias.Range.Start).
					Withf("'" + name + "' of widget '" + w.DisplayName() +
						"' collides with delegate '" + name + "'")
			}

			p.Args.Add(v.clone())
			d.Imported = append(d.Imported, name)
		}

		return nil
	}

	for _, name := range d.Names {
		v, ok := w.Args.Get(name)
		if !ok {
			err := b.errAt(lang.ErrUnknownArgument, alias.Range.Start).
				Withf("'" + name + "' in widget '" + w.DisplayName() + "'")
			if s := suggest(name, w.Args.Names()); s != "" {
				err = err.Withf(s)
			}

			return err
		}

		if _, dup := p.Lookup(name); dup {
			return b.errAt(lang.ErrDuplicateArgument, alias.Range.Start).
				Withf("'" + name + "' imported by delegate '" + alias.Name + "'")
		}

		p.Args.Add(v.clone())
		d.Imported = append(d.Imported, name)
	}

	return nil
}

func (b *build) addArg(p *Part, v *Variable) error {
	if _, dup := p.Lookup(v.Name); dup {
		return b.errAt(lang.ErrDuplicateArgument, v.Range.Start).
			Withf("'" + v.Name + "'")
	}

	if v.Name == b.body && v.Type == TypeCode {
		v.Body = true
	}

	p.Args.Add(v)

	return nil
}

// locate attaches a position to an error produced without one.
func (b *build) locate(err error, offset int) error {
	return lang.WrapError(err).WithPosition(b.src.Filename, b.src.Position(offset))
}
