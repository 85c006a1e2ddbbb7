package repl

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestHistory_WriteAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)

	h := NewHistory(path)

	for _, e := range []HistoryEntry{
		{Line: "<yatt:btn/>", Mode: modeEval},
		{Line: "list", Mode: modeCtrl},
		{Line: "&yatt:x;", Mode: modeEval},
		{Line: "<yatt:btn/>", Mode: modeEval}, // moves to the end
		{Line: "  ", Mode: modeEval},          // ignored
	} {
		if _, err := h.WriteWithMode(e.Line, e.Mode); err != nil {
			t.Fatal(err)
		}
	}

	want := []HistoryEntry{
		{Line: "list", Mode: modeCtrl},
		{Line: "&yatt:x;", Mode: modeEval},
		{Line: "<yatt:btn/>", Mode: modeEval},
	}

	if got := h.Entries(); !slices.Equal(got, want) {
		t.Fatalf("entries = %v, want %v", got, want)
	}

	loaded := NewHistory(path)
	if err := loaded.Load(); err != nil {
		t.Fatal(err)
	}

	if got := loaded.Entries(); !slices.Equal(got, want) {
		t.Errorf("loaded entries = %v, want %v", got, want)
	}
}

func TestHistory_Lookup(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), baseHistory))

	if _, err := h.Write("<yatt:box/>"); err != nil {
		t.Fatal(err)
	}

	line, err := h.GetLine(0)
	if err != nil || line != "<yatt:box/>" {
		t.Errorf("GetLine(0) = %q, %v", line, err)
	}

	if _, err := h.GetEntry(1); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("GetEntry(1) error = %v, want ErrOutOfBounds", err)
	}

	if dump, ok := h.Dump().([]string); !ok || len(dump) != 1 {
		t.Errorf("Dump() = %v", h.Dump())
	}
}

func TestHistory_LoadLegacyAndMissing(t *testing.T) {
	dir := t.TempDir()

	if err := NewHistory(filepath.Join(dir, "none")).Load(); err != nil {
		t.Errorf("missing file: %v", err)
	}

	path := filepath.Join(dir, baseHistory)
	if err := os.WriteFile(path, []byte("plain\nC:quit\n\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatal(err)
	}

	want := []HistoryEntry{{Line: "plain", Mode: modeEval}, {Line: "quit", Mode: modeCtrl}}
	if got := h.Entries(); !slices.Equal(got, want) {
		t.Errorf("entries = %v, want %v", got, want)
	}
}

func TestHistory_Bounded(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)
	h := NewHistory(path)

	for i := range maxHistory + 5 {
		if _, err := h.Write(fmt.Sprintf("<yatt:w n=%d/>", i)); err != nil {
			t.Fatal(err)
		}
	}

	if h.Len() != maxHistory {
		t.Fatalf("len = %d, want %d", h.Len(), maxHistory)
	}

	if line, _ := h.GetLine(0); line != "<yatt:w n=5/>" {
		t.Errorf("oldest = %q", line)
	}

	loaded := NewHistory(path)
	if err := loaded.Load(); err != nil {
		t.Fatal(err)
	}

	if loaded.Len() != maxHistory {
		t.Errorf("loaded len = %d, want %d", loaded.Len(), maxHistory)
	}
}
