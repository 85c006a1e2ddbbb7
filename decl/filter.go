package decl

import (
	"log/slog"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/ardnew/lrx/lang"
)

// PartEnv is the environment a filter expression is evaluated against.
type PartEnv struct {
	Kind     string   `expr:"kind"`
	Category string   `expr:"category"`
	Name     string   `expr:"name"`
	Public   bool     `expr:"public"`
	Method   string   `expr:"method"`
	Route    string   `expr:"route"`
	Args     []string `expr:"args"`
	Vars     []string `expr:"vars"`
	File     string   `expr:"file"`
}

// NewPartEnv summarizes p for filter evaluation.
func NewPartEnv(p *Part) PartEnv {
	env := PartEnv{
		Kind:     p.Kind.String(),
		Category: p.Category().String(),
		Name:     p.Name,
		Public:   p.Public,
		Args:     p.Args.Names(),
		Vars:     p.VarNames(),
	}

	if p.Route != nil {
		env.Method = p.Route.Method
		env.Route = p.Route.Path
	}

	if p.Raw != nil && p.Raw.File() != nil {
		env.File = p.Raw.File().Source.Filename
	}

	return env
}

// Filter is a compiled boolean expression over [PartEnv], e.g.
// `kind == "page" && "id" in args`.
type Filter struct {
	source  string
	program *vm.Program
}

// CompileFilter compiles source. The expression must yield a bool.
func CompileFilter(source string) (*Filter, error) {
	program, err := expr.Compile(source, expr.Env(PartEnv{}), expr.AsBool())
	if err != nil {
		return nil, lang.ErrExprCompile.Wrap(err).
			With(slog.String("source", source))
	}

	return &Filter{source: source, program: program}, nil
}

// String returns the expression source.
func (f *Filter) String() string { return f.source }

// Match reports whether p satisfies the filter. A nil Filter matches every
// part.
func (f *Filter) Match(p *Part) (bool, error) {
	if f == nil {
		return true, nil
	}

	out, err := expr.Run(f.program, NewPartEnv(p))
	if err != nil {
		return false, lang.ErrExprEval.Wrap(err).
			With(slog.String("source", f.source), slog.String("part", p.DisplayName()))
	}

	ok, _ := out.(bool)

	return ok, nil
}

// Select returns the parts of d matching f, in declaration order.
func (d *Declaration) Select(f *Filter) ([]*Part, error) {
	var parts []*Part

	for p := range d.Parts() {
		ok, err := f.Match(p)
		if err != nil {
			return nil, err
		}

		if ok {
			parts = append(parts, p)
		}
	}

	return parts, nil
}
