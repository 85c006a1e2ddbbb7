package cli

import (
	"log/slog"
	"strconv"
	"strings"
	"unicode"

	"github.com/alecthomas/kong"

	"github.com/ardnew/lrx/cli/cmd"
	"github.com/ardnew/lrx/decl"
	"github.com/ardnew/lrx/lang"
)

type langConfig struct {
	Namespace     []string `default:"${langNamespace}"    help:"Namespace words recognized in templates."   placeholder:"NS"   sep:","`
	DefaultKind   string   `default:"${langDefaultKind}"  help:"Kind of the implicit leading part."         placeholder:"KIND"`
	LegacyComment bool     `default:"false"               help:"Accept \"-->\" as a comment closer."        negatable:""`
	BodyArgument  string   `default:"${langBodyArgument}" help:"Name of the synthesized body argument."     placeholder:"NAME"`
	MaxDepth      int      `default:"${langMaxDepth}"     help:"Nesting limit of brackets and elements."    placeholder:"N"`
	Include       []string `help:"Directories searched for widgets of other files." placeholder:"DIR" short:"I" type:"path"`
}

func (langConfig) vars() kong.Vars {
	return kong.Vars{
		"langNamespace":    lang.DefaultNamespace,
		"langDefaultKind":  lang.DefaultKind,
		"langBodyArgument": lang.DefaultBodyArgument,
		"langMaxDepth":     strconv.Itoa(lang.DefaultMaxDepth),
	}
}

func (langConfig) group() kong.Group {
	var group kong.Group

	group.Key = "lang"
	group.Title = "Template options"

	return group
}

// options validates the parsed flags and returns the parser options they
// select.
func (f langConfig) options() ([]lang.Option, error) {
	if _, ok := decl.ParseKind(f.DefaultKind); !ok {
		return nil, cmd.ErrInvalidFlag.With(slog.String("default-kind", f.DefaultKind))
	}

	if f.MaxDepth <= 0 {
		return nil, cmd.ErrInvalidFlag.With(slog.Int("max-depth", f.MaxDepth))
	}

	for _, ns := range f.Namespace {
		if !isWord(ns) {
			return nil, cmd.ErrInvalidFlag.With(slog.String("namespace", ns))
		}
	}

	return []lang.Option{
		lang.WithNamespaces(f.Namespace...),
		lang.WithDefaultKind(f.DefaultKind),
		lang.WithLegacyComment(f.LegacyComment),
		lang.WithBodyArgument(f.BodyArgument),
		lang.WithMaxDepth(f.MaxDepth),
	}, nil
}

// isWord reports whether s is a non-empty run of letters, digits and
// underscores.
func isWord(s string) bool {
	return s != "" && !strings.ContainsFunc(s, func(r rune) bool {
		return r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
