package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/lrx/cli/cmd/repl"
	"github.com/ardnew/lrx/lang"
)

// Repl browses a template file interactively.
type Repl struct {
	Source string `arg:"" help:"Template file to load." name:"source" type:"existingfile"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	s := setupFrom(ctx)
	b := s.Builder()

	d, err := load(ctx, b, r.Source)
	if err != nil {
		return lang.WrapError(err).With(slog.String("command", "repl"))
	}

	var cacheDir string

	if ktx := kongContextFrom(ctx); ktx != nil {
		cacheDir = ktx.Model.Vars()[CacheIdentifier]
	}

	return repl.Run(ctx, b, d, cacheDir, s.Logger)
}
