package repl

import (
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/ardnew/lrx/decl"
	"github.com/ardnew/lrx/lang"
	"github.com/ardnew/lrx/log"
)

const testSource = "<!yatt:widget btn label title>\n" +
	"<!yatt:widget box>\n" +
	"<!yatt:page home=\"/home\" id=value>\n"

func testModel(t *testing.T, source string) model {
	t.Helper()

	b := decl.New()

	d, err := b.BuildString(t.Context(), "test.yatt", source)
	if err != nil {
		t.Fatalf("build error: %v", err)
	}

	h := NewHistory(filepath.Join(t.TempDir(), baseHistory))

	return newModel(t.Context(), b, d, h, log.Logger{})
}

func isYatt(ns string) bool { return ns == lang.DefaultNamespace }

func TestWordBounds(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"simple", "foo", 3, "foo", 0, 3},
		{"after_namespace", "<yatt:bt", 8, "bt", 6, 8},
		{"after_lt", "<ya", 3, "ya", 1, 3},
		{"after_amp", "&yatt:x", 7, "x", 6, 7},
		{"attribute_name", "<yatt:btn la", 12, "la", 10, 12},
		{"attribute_value", `<yatt:btn label="o`, 18, "o", 17, 18},
		{"empty_at_boundary", "<yatt:", 6, "", 6, 6},
		{"mid_word", "foobar", 3, "foobar", 0, 6},
		{"at_start", "foo", 0, "foo", 0, 3},
		// Hyphens, dots and underscores are part of names.
		{"hyphenated", "<yatt:my-btn", 12, "my-btn", 6, 12},
		{"dotted", "&yatt:a.b", 9, "a.b", 6, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end := wordBounds(tt.input, tt.cursor)
			if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("wordBounds(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
					tt.input, tt.cursor, word, start, end,
					tt.wantWord, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestCompletionContext(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wordStart int
		want      completion
	}{
		{"namespace_after_lt", "<", 1, completeNamespace},
		{"namespace_after_amp", "text &", 6, completeNamespace},
		{"widget_after_ns", "<yatt:", 6, completeWidget},
		{"widget_partial", "<yatt:bt", 6, completeWidget},
		{"unknown_ns", "<perl:", 6, completeNone},
		{"nested_path", "<yatt:lib:", 10, completeNone},
		{"argument", "<yatt:btn la", 10, completeArg},
		{"plain_text", "hello wor", 6, completeNone},
		{"closed_tag", "<yatt:btn/> x", 12, completeNone},
		{"start", "abc", 0, completeNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := completionContext(tt.input, tt.wordStart, isYatt)
			if got != tt.want {
				t.Errorf("completionContext(%q, %d) = %d, want %d",
					tt.input, tt.wordStart, got, tt.want)
			}
		})
	}
}

func TestComputeMatches(t *testing.T) {
	tests := []struct {
		name  string
		mode  inputMode
		input string
		want  []string
	}{
		{"widgets_after_ns", modeEval, "<yatt:", []string{"btn", "box", "home"}},
		{"widget_prefix", modeEval, "<yatt:bt", []string{"btn"}},
		{"namespace", modeEval, "<ya", []string{"yatt"}},
		{"argument", modeEval, "<yatt:btn ti", []string{"title"}},
		{"given_argument_excluded", modeEval, "<yatt:btn title=x ti", nil},
		{"plain_text", modeEval, "hello", nil},
		{"empty", modeEval, "", nil},
		{"ctrl_command", modeCtrl, "sh", []string{"show"}},
		{"ctrl_part_name", modeCtrl, "show ho", []string{"home"}},
		{"ctrl_second_word_other", modeCtrl, "list ho", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testModel(t, testSource)
			m.mode = tt.mode
			m.input.SetValue(tt.input)
			m.input.SetCursor(len(tt.input))

			matches, _, _, _ := m.computeMatches()

			var got []string
			for _, match := range matches {
				got = append(got, match.Str)
			}

			slices.Sort(got)

			want := slices.Clone(tt.want)
			slices.Sort(want)

			if !slices.Equal(got, want) {
				t.Errorf("matches for %q = %v, want %v", tt.input, got, want)
			}
		})
	}
}

func TestFormatPreview(t *testing.T) {
	m := testModel(t, testSource)

	home, ok := m.decl.Part(decl.CategoryWidget, "home")
	if !ok {
		t.Fatal("page home not found")
	}

	got := formatPreview(home)

	for _, want := range []string{"id:value", "/home"} {
		if !strings.Contains(got, want) {
			t.Errorf("formatPreview = %q, missing %q", got, want)
		}
	}
}

func TestRenderCandidateBar_Ellipsis(t *testing.T) {
	m := testModel(t, testSource)
	m.input.SetValue("<yatt:")
	m.input.SetCursor(6)

	matches, _, _, _ := m.computeMatches()

	if bar := renderCandidateBar(matches, -1, false, 6); !strings.Contains(bar, "...") {
		t.Errorf("narrow bar %q should be ellipsized", bar)
	}

	if bar := renderCandidateBar(matches, -1, false, 80); strings.Contains(bar, "...") {
		t.Errorf("wide bar %q should not be ellipsized", bar)
	}
}
