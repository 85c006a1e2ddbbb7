package cmd

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/ardnew/lrx/lang"
)

// Output formats accepted by the --format flags.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// formatter is implemented by everything the commands print.
type formatter interface {
	Format(ctx context.Context, w io.Writer, indent int) error
	FormatJSON(ctx context.Context, w io.Writer, indent int) error
	FormatYAML(ctx context.Context, w io.Writer, indent int) error
}

// write prints v to w in the named format.
func write(ctx context.Context, w io.Writer, v formatter, format string, indent int) error {
	switch strings.ToLower(format) {
	case FormatText, "":
		return v.Format(ctx, w, indent)
	case FormatJSON:
		return v.FormatJSON(ctx, w, indent)
	case FormatYAML:
		return v.FormatYAML(ctx, w, indent)
	default:
		return ErrInvalidFlag.With(slog.String("format", format))
	}
}

// nativeValue adapts a map-producing value to formatter.
type nativeValue struct {
	text   func(w io.Writer) error
	native func() map[string]any
}

func (n nativeValue) Format(_ context.Context, w io.Writer, _ int) error {
	return n.text(w)
}

func (n nativeValue) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	return lang.WriteJSON(w, n.native(), indent)
}

func (n nativeValue) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	return lang.WriteYAML(ctx, w, n.native(), indent)
}
