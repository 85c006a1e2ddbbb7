package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/ardnew/lrx/lang"
)

// Entity parses one entity path and prints its pipeline.
type Entity struct {
	Format string `default:"text" enum:"text,json,yaml" help:"Output format." short:"o"`
	Indent int    `default:"2"                          help:"Indent width."  short:"i"`

	Path string `arg:"" help:"Entity such as '&yatt:user:name;' or ':user:name'." name:"path"`
}

// Run executes the entity command.
func (e *Entity) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	s := setupFrom(ctx)

	ent, err := s.Builder().Parser().ParseEntityRef(ctx, e.Path)
	if err != nil {
		return lang.WrapError(err).With(
			slog.String("command", "entity"),
			slog.String("input", e.Path),
		)
	}

	return write(ctx, s.Stdout, nativeValue{
		text: func(w io.Writer) error {
			_, err := fmt.Fprintln(w, lang.FormatPath(ent.Path))

			return err
		},
		native: ent.ToNative,
	}, e.Format, e.Indent)
}
