package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

const pageSource = "<!yatt:widget btn label>\n" +
	"<button>&yatt:label;</button>\n" +
	"<!yatt:page home=\"/home\" id=value>\n" +
	"<yatt:btn label=ok/>\n"

func TestParse_Run(t *testing.T) {
	path := writeFile(t, t.TempDir(), "page.yatt", pageSource)

	tests := []struct {
		name  string
		cmd   Parse
		want  []string
		avoid []string
	}{
		{
			name: "text",
			cmd:  Parse{Format: FormatText, Indent: 2, Source: path},
			want: []string{"widget btn", "page home /home", "id: value"},
		},
		{
			name:  "filtered",
			cmd:   Parse{Format: FormatText, Indent: 2, Source: path, Where: `kind == "page"`},
			want:  []string{"page home"},
			avoid: []string{"widget btn"},
		},
		{
			name: "yaml",
			cmd:  Parse{Format: FormatYAML, Indent: 2, Source: path},
			want: []string{"name: btn", "kind: page"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer

			if err := tt.cmd.Run(testContext(t, &out)); err != nil {
				t.Fatalf("run error: %v", err)
			}

			for _, want := range tt.want {
				if !strings.Contains(out.String(), want) {
					t.Errorf("output missing %q:\n%s", want, out.String())
				}
			}

			for _, avoid := range tt.avoid {
				if strings.Contains(out.String(), avoid) {
					t.Errorf("output should not contain %q:\n%s", avoid, out.String())
				}
			}
		})
	}
}

func TestParse_RunErrors(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "page.yatt", pageSource)
	bad := writeFile(t, dir, "bad.yatt", "<!yatt:widget>")

	var out bytes.Buffer

	ctx := testContext(t, &out)

	if err := (&Parse{Format: "xml", Source: path}).Run(ctx); !errors.Is(err, ErrInvalidFlag) {
		t.Errorf("format error = %v, want ErrInvalidFlag", err)
	}

	if err := (&Parse{Format: FormatText, Source: path, Where: "kind +"}).Run(ctx); err == nil {
		t.Error("invalid filter should fail")
	}

	if err := (&Parse{Format: FormatText, Source: bad}).Run(ctx); err == nil {
		t.Error("invalid source should fail")
	}
}

func TestTree_Run(t *testing.T) {
	path := writeFile(t, t.TempDir(), "page.yatt", pageSource)

	t.Run("all widgets", func(t *testing.T) {
		var out bytes.Buffer

		cmd := Tree{Format: FormatText, Indent: 2, Source: path}
		if err := cmd.Run(testContext(t, &out)); err != nil {
			t.Fatalf("run error: %v", err)
		}

		for _, want := range []string{"widget btn", "page home", "<yatt:btn>"} {
			if !strings.Contains(out.String(), want) {
				t.Errorf("output missing %q:\n%s", want, out.String())
			}
		}
	})

	t.Run("one widget as json", func(t *testing.T) {
		var out bytes.Buffer

		cmd := Tree{Format: FormatJSON, Source: path, Widget: "btn", widgetSet: true}
		if err := cmd.Run(testContext(t, &out)); err != nil {
			t.Fatalf("run error: %v", err)
		}

		var v struct {
			Path    string         `json:"path"`
			Widgets map[string]any `json:"widgets"`
		}

		if err := json.Unmarshal(out.Bytes(), &v); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, out.String())
		}

		if _, ok := v.Widgets["btn"]; !ok || len(v.Widgets) != 1 {
			t.Errorf("widgets = %v", v.Widgets)
		}
	})

	t.Run("unknown widget", func(t *testing.T) {
		var out bytes.Buffer

		cmd := Tree{Format: FormatText, Source: path, Widget: "btm", widgetSet: true}

		err := cmd.Run(testContext(t, &out))
		if !errors.Is(err, ErrUnknownPart) {
			t.Fatalf("error = %v, want ErrUnknownPart", err)
		}
	})
}

func TestUnknownWidget_Suggests(t *testing.T) {
	var e *Error
	if !errors.As(unknownWidget("btm", []string{"btn", "box"}), &e) {
		t.Fatal("expected *Error")
	}

	found := false

	for _, a := range e.attrs {
		if a.Key == "did_you_mean" && strings.Contains(a.Value.String(), "btn") {
			found = true
		}
	}

	if !found {
		t.Errorf("attrs = %v, want a did_you_mean suggestion", e.attrs)
	}
}

func TestEntity_Run(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		format string
		want   string
	}{
		{"text", "&yatt:user:name;", FormatText, "var user, prop name\n"},
		{"lenient", ":x", FormatText, "var x\n"},
		{"json", "&yatt:x;", FormatJSON, `"namespace"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer

			cmd := Entity{Format: tt.format, Indent: 2, Path: tt.path}
			if err := cmd.Run(testContext(t, &out)); err != nil {
				t.Fatalf("run error: %v", err)
			}

			if !strings.Contains(out.String(), tt.want) {
				t.Errorf("output = %q, want %q", out.String(), tt.want)
			}
		})
	}

	var out bytes.Buffer
	if err := (&Entity{Format: FormatText, Path: ":f(a"}).Run(testContext(t, &out)); err == nil {
		t.Error("unterminated call should fail")
	}
}

func TestCheck_Run(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.yatt", pageSource)
	bad := writeFile(t, dir, "sub/bad.yatt", "<!yatt:args>\nhello <yatt:nope/>\n")

	t.Run("pass", func(t *testing.T) {
		var out bytes.Buffer

		cmd := Check{Jobs: 2, Sources: []string{good}}
		if err := cmd.Run(testContext(t, &out)); err != nil {
			t.Fatalf("run error: %v", err)
		}

		if !strings.Contains(out.String(), "ok "+good) {
			t.Errorf("output = %q", out.String())
		}
	})

	t.Run("fail with snippet", func(t *testing.T) {
		var out bytes.Buffer

		cmd := Check{Sources: []string{dir}}

		err := cmd.Run(testContext(t, &out))
		if !errors.Is(err, ErrCheckFailed) {
			t.Fatalf("error = %v, want ErrCheckFailed", err)
		}

		for _, want := range []string{bad + ":2:", "hello <yatt:nope/>", "^", "ok " + good} {
			if !strings.Contains(out.String(), want) {
				t.Errorf("output missing %q:\n%s", want, out.String())
			}
		}
	})

	t.Run("where skips failing widget", func(t *testing.T) {
		var out bytes.Buffer

		cmd := Check{Quiet: true, Where: `kind == "widget"`, Sources: []string{bad}}
		if err := cmd.Run(testContext(t, &out)); err != nil {
			t.Fatalf("run error: %v", err)
		}

		if out.Len() != 0 {
			t.Errorf("quiet output = %q", out.String())
		}
	})

	t.Run("no sources", func(t *testing.T) {
		var out bytes.Buffer

		cmd := Check{Sources: []string{t.TempDir()}}
		if err := cmd.Run(testContext(t, &out)); !errors.Is(err, ErrNoSourceFile) {
			t.Errorf("error = %v, want ErrNoSourceFile", err)
		}
	})
}

func TestInit_Run(t *testing.T) {
	tests := []struct {
		name    string
		force   bool
		exists  bool
		wantErr error
	}{
		{name: "create", force: false, exists: false},
		{name: "overwrite with force", force: true, exists: true},
		{name: "refuse without force", force: false, exists: true, wantErr: ErrWriteConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			confPath := filepath.Join(t.TempDir(), "lrx", "config.yaml")

			if tt.exists {
				writeFile(t, filepath.Dir(confPath), "config.yaml", "old: true\n")
			}

			var cli struct {
				Namespace []string `default:"yatt"`
				MaxDepth  int      `default:"100"`
				Legacy    bool
				Label     string
				Init      Init `cmd:""`
			}

			parser, err := kong.New(&cli, kong.Vars{ConfigIdentifier: confPath})
			if err != nil {
				t.Fatal(err)
			}

			ktx, err := parser.Parse([]string{"init", "--legacy"})
			if err != nil {
				t.Fatal(err)
			}

			cmd := &Init{Force: tt.force}

			err = cmd.Run(WithContext(t.Context(), ktx))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("run error: %v", err)
			}

			data, err := os.ReadFile(confPath)
			if err != nil {
				t.Fatal(err)
			}

			var got map[string]any
			if err := yaml.Unmarshal(data, &got); err != nil {
				t.Fatalf("invalid YAML: %v\n%s", err, data)
			}

			if got["legacy"] != true || fmt.Sprint(got["max-depth"]) != "100" {
				t.Errorf("config = %v", got)
			}

			if _, ok := got["label"]; ok {
				t.Error("empty values should be omitted")
			}

			if _, ok := got["old"]; ok {
				t.Error("existing file should be replaced")
			}
		})
	}
}
