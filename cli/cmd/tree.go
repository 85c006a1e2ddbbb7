package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/lrx/decl"
	"github.com/ardnew/lrx/lang"
)

// Tree prints the template trees of the widgets of a file.
type Tree struct {
	Format string `default:"text" enum:"text,json,yaml" help:"Output format." short:"o"`
	Indent int    `default:"2"                          help:"Indent width."  short:"i"`

	Source string `arg:"" help:"Template file or '-' for stdin."             name:"source"`
	Widget string `arg:"" help:"Print only this widget ('' for the default)." name:"widget" optional:""`

	widgetSet bool
}

// AfterApply records whether the optional widget argument was given, since
// the default widget is named by the empty string.
func (t *Tree) AfterApply(ktx *kong.Context) error {
	for _, p := range ktx.Path {
		if p.Positional != nil && p.Positional.Name == "widget" {
			t.widgetSet = p.Positional.Set
		}
	}

	return nil
}

// Run executes the tree command.
func (t *Tree) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	s := setupFrom(ctx)

	d, err := load(ctx, s.Builder(), t.Source)
	if err != nil {
		return lang.WrapError(err).With(slog.String("command", "tree"))
	}

	var widgets []*decl.Part

	if t.widgetSet {
		w, ok := d.Widget(t.Widget)
		if !ok {
			return unknownWidget(t.Widget, d.WidgetNames())
		}

		widgets = []*decl.Part{w}
	} else {
		for p := range d.Parts() {
			if p.IsWidget() {
				widgets = append(widgets, p)
			}
		}
	}

	trees := make([]*lang.Tree, len(widgets))

	for i, w := range widgets {
		if trees[i], err = w.Tree(); err != nil {
			return err
		}
	}

	return write(ctx, s.Stdout, nativeValue{
		text: func(out io.Writer) error {
			for i, w := range widgets {
				if len(widgets) > 1 {
					if _, err := fmt.Fprintf(out, "%s %s\n", w.Kind, w.DisplayName()); err != nil {
						return err
					}
				}

				if err := trees[i].Format(ctx, out, t.Indent); err != nil {
					return err
				}
			}

			return nil
		},
		native: func() map[string]any {
			m := make(map[string]any, len(widgets))
			for i, w := range widgets {
				m[w.Name] = trees[i].ToMap()
			}

			return map[string]any{"path": d.Path, "widgets": m}
		},
	}, t.Format, t.Indent)
}

// unknownWidget reports name as missing, suggesting close matches.
func unknownWidget(name string, names []string) error {
	err := ErrUnknownPart.With(slog.String("widget", name))

	if close := decl.Suggestions(name, names); len(close) > 0 {
		err = err.With(slog.String("did_you_mean", strings.Join(close, ", ")))
	}

	return err.Wrap(fmt.Errorf("%q", name))
}
