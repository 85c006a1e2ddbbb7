package decl

import (
	"context"
	"io"
	"log/slog"
	"maps"
	"slices"

	"github.com/ardnew/lrx/lang"
	"github.com/ardnew/lrx/log"
)

// Builder turns parsed files into declarations.
type Builder struct {
	parser   *lang.Parser
	logger   log.Logger
	resolver Resolver
}

// Option configures a Builder.
type Option func(*Builder)

// WithParser sets the parser used by [Builder.BuildString] and
// [Builder.BuildReader].
func WithParser(p *lang.Parser) Option {
	return func(b *Builder) {
		b.parser = p
	}
}

// WithLogger sets the structured logger. The zero Logger discards output.
func WithLogger(logger log.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// WithResolver sets the hook used by [Declaration.Check] to find widgets
// defined in other files.
func WithResolver(r Resolver) Option {
	return func(b *Builder) {
		b.resolver = r
	}
}

// New returns a Builder configured by opts.
func New(opts ...Option) *Builder {
	b := &Builder{}

	for _, opt := range opts {
		opt(b)
	}

	if b.parser == nil {
		b.parser = lang.New(lang.WithLogger(b.logger))
	}

	return b
}

// Parser returns the builder's parser.
func (b *Builder) Parser() *lang.Parser { return b.parser }

// Logger returns the builder's logger.
func (b *Builder) Logger() log.Logger { return b.logger }

// Resolver returns the cross-file resolver, which may be nil.
func (b *Builder) Resolver() Resolver { return b.resolver }

// BuildString parses text and builds its declaration.
func (b *Builder) BuildString(ctx context.Context, filename, text string) (*Declaration, error) {
	f, err := b.parser.ParseString(ctx, filename, text)
	if err != nil {
		return nil, err
	}

	return b.Build(ctx, f)
}

// BuildReader reads r through the parser's cache and builds its declaration.
func (b *Builder) BuildReader(ctx context.Context, filename string, r io.Reader) (*Declaration, error) {
	f, err := b.parser.ParseReader(ctx, filename, r)
	if err != nil {
		return nil, err
	}

	return b.Build(ctx, f)
}

// Build constructs the declaration of f. Parts are built in file order;
// delegates that name widgets declared later are resolved once every part
// has been seen.
func (b *Builder) Build(ctx context.Context, f *lang.File) (*Declaration, error) {
	parser := f.Parser()
	if parser == nil {
		parser = b.parser
	}

	st := &build{
		Builder: b,
		ctx:     ctx,
		decl:    newDeclaration(b, f),
		src:     f.Source,
		body:    parser.Config().BodyArgument,
		graph:   newTaskGraph(),
	}

	b.logger.TraceContext(ctx, "build start",
		slog.String("file", f.Source.Filename),
		slog.Int("part_count", len(f.Parts)),
	)

	for _, raw := range f.Parts {
		if err := st.part(raw); err != nil {
			return nil, err
		}
	}

	b.logger.TraceContext(ctx, "delegate resolution",
		slog.Int("pending_tasks", st.graph.Len()),
	)

	if err := st.graph.drain(st); err != nil {
		return nil, err
	}

	b.logger.TraceContext(ctx, "build complete",
		slog.String("file", f.Source.Filename),
		slog.Int("part_count", st.decl.Len()),
		slog.Int("route_count", st.decl.Routes.Len()),
	)

	return st.decl, nil
}

// build is the state of one Build call.
type build struct {
	*Builder

	ctx   context.Context
	decl  *Declaration
	src   *lang.Source
	body  string
	graph *taskGraph
}

func (b *build) errAt(sentinel *lang.Error, offset int) *lang.Error {
	return sentinel.WithPosition(b.src.Filename, b.src.Position(offset))
}

func (b *build) part(raw *lang.RawPart) error {
	kind, ok := ParseKind(raw.Kind)
	if !ok || len(raw.Subkinds) > 0 {
		name := raw.Kind
		for _, s := range raw.Subkinds {
			name += ":" + s
		}

		err := b.errAt(lang.ErrUnknownKind, raw.Range.Start).Withf("'" + name + "'")
		if s := suggest(raw.Kind, kindList()); s != "" && !ok {
			err = err.Withf(s)
		}

		return err
	}

	terms := raw.Attributes.Terms

	if kind == KindBase {
		return b.bases(terms)
	}

	p := newPart(kind, raw)

	namer := kindBuilders[kind]
	if raw.Implicit {
		// Leading text has no declaration to name it.
		namer = buildUnnamed
	}

	start, err := namer(b, p, terms)
	if err != nil {
		return err
	}

	if _, dup := b.decl.parts[p.Key()]; dup {
		return b.errAt(lang.ErrDuplicatePart, raw.Range.Start).
			Withf(p.Category().String() + " '" + p.DisplayName() + "'")
	}

	// A part under construction is not a valid delegate target, itself
	// included.
	p.pending = true
	b.decl.parts[p.Key()] = p
	b.decl.Order = append(b.decl.Order, p.Key())

	b.logger.TraceContext(b.ctx, "part declared",
		slog.String("kind", kind.String()),
		slog.String("name", p.DisplayName()),
		lang.RangeAttr("range", raw.Range),
	)

	deferred, err := b.construct(p, terms, start, false)
	if err != nil {
		return err
	}

	if !deferred {
		b.finalize(p)
	}

	return nil
}

func (b *build) bases(terms []*lang.AttTerm) error {
	for _, t := range terms {
		if t.Label != nil || t.IsNested() || t.Kind == lang.TermEntity {
			return b.errAt(lang.ErrInvalidArgument, t.Span().Start).
				Withf("base declaration takes paths, got " + t.Source())
		}

		b.decl.Bases = append(b.decl.Bases, t.Text())
	}

	return nil
}

func (b *build) addRoute(p *Part, t *lang.AttTerm) error {
	r := parseRoute(t)
	r.Part = p

	if !b.decl.Routes.Add(r) {
		return b.errAt(lang.ErrDuplicateRoute, t.Range.Start).Withf("'" + r.String() + "'")
	}

	p.Route = r

	return nil
}

// resolved returns the widget named name when it exists and is no longer
// waiting on a delegate of its own.
func (b *build) resolved(name string) (*Part, bool) {
	w, ok := b.decl.Widget(name)
	if !ok || w.pending {
		return nil, false
	}

	return w, true
}

// finalize adds route placeholders and the body argument to a part whose
// terms have all been consumed.
func (b *build) finalize(p *Part) {
	if p.Route != nil {
		for _, name := range p.Route.Params {
			if _, ok := p.Lookup(name); ok {
				continue
			}

			p.Args.Add(&Variable{
				Name:     name,
				Type:     TypeText,
				TypeName: TypeText.String(),
				Range:    p.Route.Range,
			})
		}
	}

	if _, ok := p.Lookup(b.body); !ok {
		p.Args.Add(&Variable{
			Name:     b.body,
			Type:     TypeCode,
			TypeName: TypeCode.String(),
			Body:     true,
			Widget:   newPart(KindWidget, nil),
		})
	}

	p.pending = false

	b.logger.TraceContext(b.ctx, "part built",
		slog.String("kind", p.Kind.String()),
		slog.String("name", p.DisplayName()),
		slog.Any("args", p.Args.Names()),
	)
}

func kindList() []string {
	return slices.Sorted(maps.Keys(kindNames))
}
