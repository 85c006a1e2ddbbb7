package decl

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ardnew/lrx/lang"
)

func writeFile(t *testing.T, dir, name, text string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(text), 0o600); err != nil {
		t.Fatal(err)
	}

	return path
}

func TestCache_Load(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.yatt", "<!yatt:widget a x>")

	c := NewCache(New())

	d1, err := c.Load(t.Context(), path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}

	d2, err := c.Load(t.Context(), path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}

	if d1 != d2 {
		t.Error("unchanged file should return the cached declaration")
	}

	writeFile(t, dir, "a.yatt", "<!yatt:widget a x y>")

	d3, err := c.Load(t.Context(), path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}

	if d3 == d1 || !widget(t, d3, "a").Args.Has("y") {
		t.Error("edited file should be rebuilt")
	}

	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}

	c.Clear()

	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d", c.Len())
	}
}

func TestCache_LoadErrors(t *testing.T) {
	c := NewCache(New())

	_, err := c.Load(t.Context(), filepath.Join(t.TempDir(), "missing.yatt"))
	if !errors.Is(err, lang.ErrReadInput) {
		t.Errorf("error = %v, want ErrReadInput", err)
	}

	path := writeFile(t, t.TempDir(), "bad.yatt", "<!yatt:widget>")

	for range 2 {
		if _, err := c.Load(t.Context(), path); !errors.Is(err, lang.ErrMissingPartName) {
			t.Errorf("error = %v, want ErrMissingPartName", err)
		}
	}
}

func TestFileResolver_Check(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "lib.yatt", "<!yatt:args title>\n<!yatt:widget btn label>")

	if err := os.Mkdir(filepath.Join(root, "pages"), 0o700); err != nil {
		t.Fatal(err)
	}

	main := writeFile(t, root, "pages/index.yatt",
		"<!yatt:base \"..\">\n<!yatt:args>\n<yatt:lib title=t/><yatt:lib:btn label=ok/>")

	cache := NewCache(New())
	b := New(WithResolver(NewFileResolver(cache)))

	text, err := os.ReadFile(main)
	if err != nil {
		t.Fatal(err)
	}

	d, err := b.BuildString(t.Context(), main, string(text))
	if err != nil {
		t.Fatalf("build error: %v", err)
	}

	if err := d.Check(t.Context()); err != nil {
		t.Fatalf("check error: %v", err)
	}

	if cache.Len() != 1 {
		t.Errorf("cache Len() = %d, want 1", cache.Len())
	}
}

func TestFileResolver_NotFound(t *testing.T) {
	r := NewFileResolver(NewCache(New()), t.TempDir())

	w, err := r.Resolve(t.Context(), nil, []string{"nothing"})
	if w != nil || err != nil {
		t.Errorf("Resolve = %v, %v, want nil, nil", w, err)
	}

	w, err = r.Resolve(t.Context(), nil, []string{"a", "b", "c"})
	if w != nil || err != nil {
		t.Errorf("Resolve = %v, %v, want nil, nil", w, err)
	}
}
