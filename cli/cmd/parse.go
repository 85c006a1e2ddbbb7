package cmd

import (
	"context"
	"io"
	"log/slog"

	"github.com/ardnew/lrx/decl"
	"github.com/ardnew/lrx/lang"
)

// Parse builds the declarations of a template file and prints them.
type Parse struct {
	Format string `default:"text" enum:"text,json,yaml" help:"Output format." short:"o"`
	Indent int    `default:"2"                          help:"Indent width."  short:"i"`
	Where  string `                                     help:"Print only parts matching this expression (e.g. 'kind == \"page\"')." short:"w"`

	Source string `arg:"" default:"-" help:"Template file or '-' for stdin." name:"source"`
}

// Run executes the parse command.
func (p *Parse) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	s := setupFrom(ctx)

	d, err := load(ctx, s.Builder(), p.Source)
	if err != nil {
		return lang.WrapError(err).With(slog.String("command", "parse"))
	}

	if p.Where == "" {
		return write(ctx, s.Stdout, d, p.Format, p.Indent)
	}

	parts, err := selectParts(d, p.Where)
	if err != nil {
		return err
	}

	return write(ctx, s.Stdout, nativeValue{
		text:   func(w io.Writer) error { return d.FormatParts(w, parts, p.Indent) },
		native: func() map[string]any { return d.ToMapParts(parts) },
	}, p.Format, p.Indent)
}

// selectParts returns the parts of d matching the filter expression.
func selectParts(d *decl.Declaration, where string) ([]*decl.Part, error) {
	f, err := decl.CompileFilter(where)
	if err != nil {
		return nil, err
	}

	return d.Select(f)
}
