package repl

import (
	"errors"
	"strings"
	"testing"
)

func TestModel_Eval(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "entity",
			input: "&yatt:user:name;",
			want:  []string{"var user, prop name"},
		},
		{
			name:  "entity without terminator",
			input: "&yatt:x",
			want:  []string{"var x"},
		},
		{
			name:  "element call",
			input: `<yatt:btn label="ok"/>`,
			want:  []string{"<yatt:btn>", "label"},
		},
		{
			name:  "text",
			input: "hello",
			want:  []string{`"hello"`},
		},
		{
			name:  "declaration",
			input: "<!yatt:widget foo x>",
			want:  []string{"widget foo", "x: text"},
		},
	}

	m := testModel(t, testSource)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.eval(tt.input)
			if err != nil {
				t.Fatalf("eval error: %v", err)
			}

			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("eval(%q) = %q, missing %q", tt.input, got, want)
				}
			}
		})
	}
}

func TestModel_EvalErrors(t *testing.T) {
	m := testModel(t, testSource)

	for _, input := range []string{"&yatt:f(a", "<!yatt:widget>"} {
		if _, err := m.eval(input); err == nil {
			t.Errorf("eval(%q) succeeded, want error", input)
		}
	}
}

func TestModel_ShowPart(t *testing.T) {
	m := testModel(t, testSource)

	got, err := m.showPart("btn")
	if err != nil {
		t.Fatalf("show error: %v", err)
	}

	for _, want := range []string{"widget btn", "label: text"} {
		if !strings.Contains(got, want) {
			t.Errorf("show btn = %q, missing %q", got, want)
		}
	}

	if _, err := m.showPart("nothing"); !errors.Is(err, ErrUnknownPart) {
		t.Errorf("error = %v, want ErrUnknownPart", err)
	}
}

func TestModel_ListParts(t *testing.T) {
	m := testModel(t, testSource)

	got := m.listParts()

	for _, want := range []string{"btn", "box", "home", "page"} {
		if !strings.Contains(got, want) {
			t.Errorf("list = %q, missing %q", got, want)
		}
	}
}

func TestModel_ToggleMode(t *testing.T) {
	m := testModel(t, testSource)
	m.input.SetValue("<yatt:btn")

	m, _ = m.toggleMode()
	if m.mode != modeCtrl || m.input.Value() != "" {
		t.Fatalf("after toggle: mode=%d value=%q", m.mode, m.input.Value())
	}

	m.input.SetValue("list")

	m, _ = m.toggleMode()
	if m.mode != modeEval || m.input.Value() != "<yatt:btn" {
		t.Errorf("after second toggle: mode=%d value=%q", m.mode, m.input.Value())
	}

	if m.ctrlText != "list" {
		t.Errorf("ctrlText = %q, want list", m.ctrlText)
	}
}

func TestModel_CheckDecl(t *testing.T) {
	if got := testModel(t, testSource).checkDecl(); !strings.Contains(got, "test.yatt") {
		t.Errorf("passing check = %q", got)
	}

	got := testModel(t, "<!yatt:widget w>\n<yatt:nope/>\n").checkDecl()

	for _, want := range []string{"test.yatt:2:", "<yatt:nope/>", "^"} {
		if !strings.Contains(got, want) {
			t.Errorf("failing check = %q, missing %q", got, want)
		}
	}
}

func TestModel_Recall(t *testing.T) {
	m := testModel(t, testSource)

	for _, e := range []HistoryEntry{
		{Line: "<yatt:btn/>", Mode: modeEval},
		{Line: "list", Mode: modeCtrl},
		{Line: "&yatt:x;", Mode: modeEval},
	} {
		if _, err := m.history.WriteWithMode(e.Line, e.Mode); err != nil {
			t.Fatal(err)
		}
	}

	m.historyIdx = m.history.Len()

	m = m.recall(-1, nil)
	if m.input.Value() != "&yatt:x;" || m.mode != modeEval {
		t.Fatalf("first recall: %q mode=%d", m.input.Value(), m.mode)
	}

	m = m.recall(-1, nil)
	if m.input.Value() != "list" || m.mode != modeCtrl {
		t.Fatalf("second recall: %q mode=%d", m.input.Value(), m.mode)
	}

	m = m.recall(-1, m.inMode(modeCtrl))
	if m.input.Value() != "list" || m.historyIdx != 1 {
		t.Errorf("no older command: %q idx=%d", m.input.Value(), m.historyIdx)
	}

	m = m.recall(1, nil)
	m = m.recall(1, nil)

	if m.input.Value() != "" || m.historyIdx != m.history.Len() {
		t.Errorf("past newest: %q idx=%d", m.input.Value(), m.historyIdx)
	}
}

func TestModel_Cycle(t *testing.T) {
	m := testModel(t, testSource)
	m.input.SetValue("<yatt:")
	m.input.SetCursor(6)
	refreshMatches(&m, false)

	n := len(m.matches)
	if n < 2 {
		t.Fatalf("matches = %v", m.matches)
	}

	m = m.cycle(-1)
	if !m.tabActive || m.suggIdx != n-1 {
		t.Fatalf("after shift-tab: active=%v idx=%d", m.tabActive, m.suggIdx)
	}

	m = m.cycle(1)
	if m.suggIdx != 0 {
		t.Errorf("wrapped idx = %d", m.suggIdx)
	}

	if got := m.input.Value(); got != "<yatt:"+m.matches[0].Str {
		t.Errorf("input = %q", got)
	}
}

func TestHelpMessage(t *testing.T) {
	// tea.Println appends its own newline.
	if strings.HasSuffix(helpMessage, "\n") {
		t.Error("help message ends with a newline")
	}

	for _, cmd := range ctrlCommands {
		if !strings.Contains(helpMessage, "  "+cmd) {
			t.Errorf("help message does not describe %q", cmd)
		}
	}
}
