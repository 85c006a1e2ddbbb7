package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/alecthomas/kong"

	"github.com/ardnew/lrx/cli/cmd"
	"github.com/ardnew/lrx/lang"
	"github.com/ardnew/lrx/log"
)

// parseFlags parses args into a CLI without reading any configuration file.
func parseFlags(t *testing.T, args ...string) *CLI {
	t.Helper()

	var cli CLI

	vars := kong.Vars{
		cmd.ConfigIdentifier: "",
		cmd.CacheIdentifier:  t.TempDir(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars()).
		CloneWith(cli.Lang.vars())

	parser, err := kong.New(&cli, vars, kong.Exit(func(int) { t.Fatal("unexpected exit") }))
	if err != nil {
		t.Fatalf("kong.New: %v", err)
	}

	if _, err := parser.Parse(args); err != nil {
		t.Fatalf("Parse(%q): %v", args, err)
	}

	return &cli
}

func TestLangConfig_Defaults(t *testing.T) {
	cli := parseFlags(t, "entity", "&yatt:x;")

	opts, err := cli.Lang.options()
	if err != nil {
		t.Fatalf("options: %v", err)
	}

	got := lang.New(opts...).Config()
	want := lang.DefaultConfig()

	if strings.Join(got.Namespaces, ",") != strings.Join(want.Namespaces, ",") ||
		got.DefaultKind != want.DefaultKind ||
		got.BodyArgument != want.BodyArgument ||
		got.MaxDepth != want.MaxDepth ||
		got.LegacyComment {
		t.Errorf("config = %+v, want %+v", got, want)
	}
}

func TestLangConfig_Flags(t *testing.T) {
	cli := parseFlags(t,
		"--namespace=yatt,perl",
		"--default-kind=widget",
		"--legacy-comment",
		"--body-argument=content",
		"--max-depth=8",
		"-I", t.TempDir(),
		"entity", "&yatt:x;",
	)

	opts, err := cli.Lang.options()
	if err != nil {
		t.Fatalf("options: %v", err)
	}

	cfg := lang.New(opts...).Config()

	if strings.Join(cfg.Namespaces, ",") != "yatt,perl" {
		t.Errorf("namespaces = %v", cfg.Namespaces)
	}

	if cfg.DefaultKind != "widget" || cfg.BodyArgument != "content" || cfg.MaxDepth != 8 {
		t.Errorf("config = %+v", cfg)
	}

	if !cfg.LegacyComment {
		t.Error("legacy comment not enabled")
	}

	if len(cli.Lang.Include) != 1 {
		t.Errorf("include = %v", cli.Lang.Include)
	}
}

func TestLangConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		cfg  langConfig
	}{
		{"unknown kind", langConfig{Namespace: []string{"yatt"}, DefaultKind: "page:sub", MaxDepth: 1}},
		{"zero depth", langConfig{Namespace: []string{"yatt"}, DefaultKind: "args"}},
		{"bad namespace", langConfig{Namespace: []string{"ya:tt"}, DefaultKind: "args", MaxDepth: 1}},
		{"empty namespace", langConfig{Namespace: []string{""}, DefaultKind: "args", MaxDepth: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.cfg.options(); !errors.Is(err, cmd.ErrInvalidFlag) {
				t.Errorf("error = %v, want ErrInvalidFlag", err)
			}
		})
	}
}

func TestLogConfig_Scan(t *testing.T) {
	defer log.Config(
		log.WithLevel(log.DefaultLevel),
		log.WithFormat(log.DefaultFormat),
		log.WithCaller(log.DefaultCaller),
		log.WithPretty(log.DefaultPretty),
	)

	var f logConfig

	f.scan([]string{
		"parse", "--log-level", "debug",
		"--log-format=text",
		"--no-log-pretty",
		"--log-caller=true",
		"file.yatt",
	})

	if f.Level != "debug" || f.Format != "text" {
		t.Errorf("level = %q, format = %q", f.Level, f.Format)
	}

	if f.Pretty || !f.Caller {
		t.Errorf("pretty = %v, caller = %v", f.Pretty, f.Caller)
	}
}
