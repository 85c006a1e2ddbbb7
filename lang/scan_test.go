package lang

import (
	"errors"
	"testing"
)

func TestScanner_MatchAnchored(t *testing.T) {
	pats := NewPatterns()
	word := pats.Anchored("word", func() string { return `(?P<w>[a-z]+)` })

	sc := NewScanner(NewSource("", "  abc def", pats), 0)

	if _, ok := sc.MatchAnchored(word); ok {
		t.Fatal("anchored match must not skip leading whitespace")
	}

	sc.TabTo(2)

	m, ok := sc.MatchAnchored(word)
	if !ok {
		t.Fatal("expected anchored match at cursor")
	}

	if got := m.Text("w"); got != "abc" {
		t.Errorf("Text(w) = %q, want %q", got, "abc")
	}

	if sc.Pos() != 2 {
		t.Errorf("MatchAnchored moved the cursor to %d", sc.Pos())
	}

	sc.Tab(m)

	if sc.Pos() != 5 {
		t.Errorf("Pos() after Tab = %d, want 5", sc.Pos())
	}
}

func TestScanner_MatchGlobal(t *testing.T) {
	pats := NewPatterns()
	digits := pats.Global("digits", func() string { return `\d+` })

	sc := NewScanner(NewSource("", "ab 12 cd 34", pats), 0)

	m, ok := sc.MatchGlobal(digits)
	if !ok {
		t.Fatal("expected global match")
	}

	if m.Start != 3 || m.End != 5 {
		t.Errorf("match range = %v, want [3,5)", m.Range)
	}

	sc.Tab(m)

	m, ok = sc.MatchGlobal(digits)
	if !ok || m.Start != 9 {
		t.Errorf("second match = %v (ok=%v), want start 9", m.Range, ok)
	}
}

func TestScanner_ModeMisusePanics(t *testing.T) {
	pats := NewPatterns()
	anchored := pats.Anchored("x", func() string { return `x` })
	global := pats.Global("x", func() string { return `x` })

	sc := NewScanner(NewSource("", "x", pats), 0)

	for name, fn := range map[string]func(){
		"global with anchored": func() { sc.MatchGlobal(anchored) },
		"anchored with global": func() { sc.MatchAnchored(global) },
	} {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()

			fn()
		})
	}
}

func TestScanner_Narrowed(t *testing.T) {
	pats := NewPatterns()
	digits := pats.Global("digits", func() string { return `\d+` })

	sc := NewScanner(NewSource("", "ab 12 cd 34", pats), 0)
	child := sc.Narrowed(Range{Start: 6, End: 8})

	if _, ok := child.MatchGlobal(digits); ok {
		t.Error("narrowed scanner matched outside its window")
	}

	if child.Source() != sc.Source() {
		t.Error("narrowed scanner must share the source buffer")
	}

	child.TabTo(100)

	if child.Pos() != 8 {
		t.Errorf("TabTo past window = %d, want clamp to 8", child.Pos())
	}

	if sc.Pos() != 0 {
		t.Error("moving the child cursor moved the parent")
	}
}

func TestScanner_TabToNeverMovesBackwards(t *testing.T) {
	sc := NewScanner(NewSource("", "abcdef", nil), 0)
	sc.TabTo(4)
	sc.TabTo(1)

	if sc.Pos() != 4 {
		t.Errorf("Pos() = %d, want 4", sc.Pos())
	}
}

func TestScanner_NestedDepthLimit(t *testing.T) {
	sc := NewScanner(NewSource("f", "abc", nil), 2)

	a, err := sc.Nested(sc.Rest())
	if err != nil {
		t.Fatalf("depth 1: %v", err)
	}

	b, err := a.Nested(a.Rest())
	if err != nil {
		t.Fatalf("depth 2: %v", err)
	}

	_, err = b.Nested(b.Rest())
	if !errors.Is(err, ErrMaxDepthExceeded) {
		t.Errorf("depth 3 error = %v, want ErrMaxDepthExceeded", err)
	}
}

func TestPatterns_Memoized(t *testing.T) {
	pats := NewPatterns()
	calls := 0
	build := func() string {
		calls++

		return `a+`
	}

	p1 := pats.Global("a", build)
	p2 := pats.Global("a", build)

	if p1 != p2 {
		t.Error("expected the same compiled pattern for the same key")
	}

	if calls != 1 {
		t.Errorf("build called %d times, want 1", calls)
	}

	// The anchored form is cached separately.
	if pats.Anchored("a", build) == p1 {
		t.Error("anchored and global patterns must not share a cache slot")
	}

	if pats.Len() != 2 {
		t.Errorf("Len() = %d, want 2", pats.Len())
	}
}

func TestSource_Position(t *testing.T) {
	src := NewSource("f", "ab\ncdé\nx", nil)

	tests := []struct {
		offset    int
		line, col int
	}{
		{0, 1, 1},
		{2, 1, 3},
		{3, 2, 1},
		{7, 2, 4}, // after the two-byte rune
		{8, 3, 1},
	}

	for _, tt := range tests {
		pos := src.Position(tt.offset)
		if pos.Line != tt.line || pos.Column != tt.col {
			t.Errorf("Position(%d) = %d:%d, want %d:%d",
				tt.offset, pos.Line, pos.Column, tt.line, tt.col)
		}
	}
}
