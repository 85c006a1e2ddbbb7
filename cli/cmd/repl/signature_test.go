package repl

import (
	"slices"
	"strings"
	"testing"
)

func TestDetectElementCall(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantName    string
		wantGiven   []string
		wantUnnamed int
		wantCurrent string
		wantInTag   bool
	}{
		{
			name:  "plain text",
			input: "hello world",
		},
		{
			name:  "typing element name",
			input: "<yatt:bt",
		},
		{
			name:      "after element name",
			input:     "<yatt:btn ",
			wantName:  "btn",
			wantInTag: true,
		},
		{
			name:        "typing attribute",
			input:       "<yatt:btn la",
			wantName:    "btn",
			wantCurrent: "la",
			wantInTag:   true,
		},
		{
			name:        "typing attribute value",
			input:       `<yatt:btn label="o`,
			wantName:    "btn",
			wantCurrent: "label",
			wantInTag:   true,
		},
		{
			name:      "completed attribute with quoted space",
			input:     `<yatt:btn label="a b" `,
			wantName:  "btn",
			wantGiven: []string{"label"},
			wantInTag: true,
		},
		{
			name:        "unlabeled attribute",
			input:       "<yatt:btn ok ",
			wantName:    "btn",
			wantUnnamed: 1,
			wantInTag:   true,
		},
		{
			name:      "quoted closer",
			input:     `<yatt:btn label="a>b" `,
			wantName:  "btn",
			wantGiven: []string{"label"},
			wantInTag: true,
		},
		{
			name:      "path name",
			input:     "<yatt:lib:btn x=1 ",
			wantName:  "lib:btn",
			wantGiven: []string{"x"},
			wantInTag: true,
		},
		{
			name:  "closed tag",
			input: "<yatt:btn/> ",
		},
		{
			name:  "unknown namespace",
			input: "<perl:btn ",
		},
		{
			name:  "html element",
			input: "<div ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectElementCall(tt.input, len(tt.input), isYatt)

			if got.inTag != tt.wantInTag {
				t.Fatalf("inTag = %v, want %v", got.inTag, tt.wantInTag)
			}

			if got.name != tt.wantName {
				t.Errorf("name = %q, want %q", got.name, tt.wantName)
			}

			if !slices.Equal(got.given, tt.wantGiven) {
				t.Errorf("given = %v, want %v", got.given, tt.wantGiven)
			}

			if got.unnamed != tt.wantUnnamed {
				t.Errorf("unnamed = %d, want %d", got.unnamed, tt.wantUnnamed)
			}

			if got.current != tt.wantCurrent {
				t.Errorf("current = %q, want %q", got.current, tt.wantCurrent)
			}
		})
	}
}

func TestElementCall_ArgIndex(t *testing.T) {
	params := []string{"label", "title", "body"}

	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"first argument", "<yatt:btn ", 0},
		{"named by prefix", "<yatt:btn ti", 1},
		{"named exactly", "<yatt:btn body=", 2},
		{"next after given", "<yatt:btn label=x ", 1},
		{"unlabeled fills in order", "<yatt:btn x y ", 2},
		{"skips given when unlabeled", "<yatt:btn title=t x ", 2},
		{"all given", "<yatt:btn label=a title=b body=c ", -1},
		{"unknown name falls back", "<yatt:btn x", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			call := detectElementCall(tt.input, len(tt.input), isYatt)
			if got := call.argIndex(params); got != tt.want {
				t.Errorf("argIndex = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGetSignature(t *testing.T) {
	m := testModel(t, testSource)

	sig, params := getSignature(m.decl, "btn")
	if sig != "btn(label, title, body)" {
		t.Errorf("signature = %q", sig)
	}

	if !slices.Equal(params, []string{"label", "title", "body"}) {
		t.Errorf("params = %v", params)
	}

	if sig, params := getSignature(m.decl, "missing"); sig != "" || params != nil {
		t.Errorf("missing widget = %q, %v", sig, params)
	}

	if sig, _ := getSignature(nil, "btn"); sig != "" {
		t.Errorf("nil declaration = %q", sig)
	}
}

func TestRenderSignatureHint(t *testing.T) {
	params := []string{"label", "title"}

	got := renderSignatureHint("btn(label, title)", params, 1)
	for _, want := range []string{"btn", "label", "title"} {
		if !strings.Contains(got, want) {
			t.Errorf("hint %q missing %q", got, want)
		}
	}

	if got := renderSignatureHint("", params, 0); got != "" {
		t.Errorf("empty signature rendered %q", got)
	}

	if got := renderSignatureHint("box()", nil, 0); !strings.Contains(got, "box") {
		t.Errorf("no-arg hint = %q", got)
	}
}

func BenchmarkDetectElementCall(b *testing.B) {
	input := `<yatt:btn label="a b" title='x' ` + strings.Repeat("k=v ", 32) + "bo"

	for b.Loop() {
		detectElementCall(input, len(input), isYatt)
	}
}
