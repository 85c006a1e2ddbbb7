package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/ardnew/lrx/lang"
)

func writeFile(t *testing.T, dir, name, text string) string {
	t.Helper()

	path := filepath.Join(dir, name)

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte(text), 0o600); err != nil {
		t.Fatal(err)
	}

	return path
}

// testContext returns a context carrying a Setup that writes to out.
func testContext(t *testing.T, out *bytes.Buffer, opts ...lang.Option) context.Context {
	t.Helper()

	return WithSetup(t.Context(), Setup{Options: opts, Stdout: out, Stderr: out})
}

func TestSetupFrom_Defaults(t *testing.T) {
	s := setupFrom(context.Background())

	if s.Stdout != os.Stdout || s.Stderr != os.Stderr {
		t.Error("empty setup should default to the process streams")
	}

	if s.Builder() == nil {
		t.Error("Builder() returned nil")
	}
}

func TestSetup_BuilderOptions(t *testing.T) {
	s := Setup{Options: []lang.Option{lang.WithNamespaces("yatt", "perl")}}

	p := s.Builder().Parser()
	if !p.IsNamespace("perl") {
		t.Error("parser should recognize configured namespace")
	}
}

func TestSetup_BuilderRoots(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "lib.yatt", "<!yatt:widget btn label>")

	dir := t.TempDir()
	main := writeFile(t, dir, "index.yatt", "<!yatt:args>\n<yatt:lib:btn label=ok/>")

	b := Setup{Roots: []string{root}}.Builder()

	d, err := load(t.Context(), b, main)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}

	if err := d.Check(t.Context()); err != nil {
		t.Errorf("check error: %v", err)
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := load(t.Context(), Setup{}.Builder(), filepath.Join(t.TempDir(), "none.yatt"))
	if !errors.Is(err, lang.ErrReadInput) {
		t.Errorf("error = %v, want ErrReadInput", err)
	}
}

func TestExpandSources(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.yatt", "")
	b := writeFile(t, dir, "sub/b.YATT", "")
	writeFile(t, dir, "sub/c.txt", "")

	got, err := expandSources([]string{dir, a}, ".yatt")
	if err != nil {
		t.Fatal(err)
	}

	want := []string{a, b}
	if !slices.Equal(got, want) {
		t.Errorf("expandSources = %v, want %v", got, want)
	}

	// A file named directly is kept regardless of extension.
	txt := filepath.Join(dir, "sub/c.txt")

	got, err = expandSources([]string{txt}, ".yatt")
	if err != nil || !slices.Equal(got, []string{txt}) {
		t.Errorf("expandSources(file) = %v, %v", got, err)
	}

	if _, err := expandSources([]string{filepath.Join(dir, "missing")}, ".yatt"); !errors.Is(err, lang.ErrReadInput) {
		t.Errorf("error = %v, want ErrReadInput", err)
	}
}

func TestError_Is(t *testing.T) {
	err := ErrCheckFailed.Wrap(errors.New("cause"))

	if !errors.Is(err, ErrCheckFailed) {
		t.Error("wrapped error should match its sentinel")
	}

	if errors.Is(err, ErrUnknownPart) {
		t.Error("wrapped error should not match another sentinel")
	}

	if got := ErrWriteConfig.Wrap(ErrFileExists).Error(); got != "write configuration file: file exists (use --force to overwrite)" {
		t.Errorf("Error() = %q", got)
	}

	if !errors.Is(ErrWriteConfig.Wrap(ErrFileExists), ErrFileExists) {
		t.Error("cause should be reachable through Unwrap")
	}
}
