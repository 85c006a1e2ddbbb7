package lang

import (
	"errors"
	"strings"
	"testing"
)

func TestParseString_Parts(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantKinds []string
		implicit  bool
	}{
		{
			name:      "declarations only",
			input:     "<!yatt:args x y>\nhello &yatt:x;\n<!yatt:widget foo a=text>\n<b>&yatt:a;</b>\n",
			wantKinds: []string{"args", "widget"},
		},
		{
			name:      "leading text becomes implicit part",
			input:     "hello\n<!yatt:widget foo>\nbar",
			wantKinds: []string{"args", "widget"},
			implicit:  true,
		},
		{
			name:      "leading whitespace is not a part",
			input:     "  \n<!yatt:widget foo>",
			wantKinds: []string{"widget"},
		},
		{
			name:      "leading comment is not a part",
			input:     "<!--#yatt note #-->\n<!yatt:widget foo>",
			wantKinds: []string{"widget"},
		},
		{
			name:      "no declarations",
			input:     "plain text",
			wantKinds: []string{"args"},
			implicit:  true,
		},
		{
			name:      "empty input",
			input:     "",
			wantKinds: []string{"args"},
			implicit:  true,
		},
		{
			name:      "subkinds",
			input:     "<!yatt:widget:inline foo>",
			wantKinds: []string{"widget"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := ParseString(t.Context(), "test.yatt", tt.input)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			if len(f.Parts) != len(tt.wantKinds) {
				t.Fatalf("got %d parts, want %d", len(f.Parts), len(tt.wantKinds))
			}

			for i, kind := range tt.wantKinds {
				if f.Parts[i].Kind != kind {
					t.Errorf("part %d kind = %q, want %q", i, f.Parts[i].Kind, kind)
				}
			}

			if f.Parts[0].Implicit != tt.implicit {
				t.Errorf("part 0 implicit = %v, want %v", f.Parts[0].Implicit, tt.implicit)
			}

			if tt.implicit && f.Parts[0].Namespace != "" {
				t.Errorf("implicit part namespace = %q, want empty", f.Parts[0].Namespace)
			}
		})
	}
}

func TestParseString_ChunksRoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"plain",
		"head\n<!yatt:widget foo x=text -- the x -- y>\n<yatt:foo/>\n<!--#yatt c #-->tail",
		"<!yatt:args>\n<!yatt:page bar '/bar'>\n&yatt:x;\n<!yatt:action baz>\nprint 1;\n",
	}

	for _, input := range inputs {
		f, err := ParseString(t.Context(), "", input)
		if err != nil {
			t.Fatalf("parse %q: %v", input, err)
		}

		var buf strings.Builder
		for _, c := range f.Chunks {
			buf.WriteString(f.Text(c))
		}

		if buf.String() != input {
			t.Errorf("round trip mismatch:\nwant: %q\ngot:  %q", input, buf.String())
		}
	}
}

func TestParseString_PartRanges(t *testing.T) {
	input := "<!yatt:widget a>AAA<!yatt:widget b>BBB"

	f, err := ParseString(t.Context(), "", input)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if len(f.Parts) != 2 {
		t.Fatalf("got %d parts, want 2", len(f.Parts))
	}

	a, b := f.Parts[0], f.Parts[1]

	if got := f.Source.Slice(a.Range); got != "<!yatt:widget a>AAA" {
		t.Errorf("part a = %q", got)
	}

	if got := f.Source.Slice(b.Range); got != "<!yatt:widget b>BBB" {
		t.Errorf("part b = %q", got)
	}

	if got := f.Source.Slice(a.Body()); got != "AAA" {
		t.Errorf("part a body = %q", got)
	}
}

func TestParseString_Comments(t *testing.T) {
	input := "<!yatt:widget foo>x<!--#yatt hidden #-->y"

	f, err := ParseString(t.Context(), "", input)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	payload := f.Parts[0].Payload
	if len(payload) != 3 {
		t.Fatalf("got %d payload chunks, want 3", len(payload))
	}

	c := payload[1]
	if c.Type != ChunkComment {
		t.Fatalf("chunk 1 type = %v, want comment", c.Type)
	}

	if got := f.Source.Slice(c.Inner); got != " hidden " {
		t.Errorf("comment inner = %q", got)
	}
}

func TestParseString_LegacyComment(t *testing.T) {
	input := "<!--#yatt old style -->\n<!yatt:widget foo>"

	if _, err := ParseString(t.Context(), "", input); !errors.Is(err, ErrUnterminatedComment) {
		t.Errorf("without legacy closer: error = %v, want ErrUnterminatedComment", err)
	}

	f, err := ParseString(t.Context(), "", input, WithLegacyComment(true))
	if err != nil {
		t.Fatalf("with legacy closer: %v", err)
	}

	if len(f.Parts) != 1 || f.Parts[0].Kind != "widget" {
		t.Errorf("unexpected parts: %+v", f.Parts)
	}
}

func TestParseString_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *Error
		line  int
		col   int
	}{
		{
			name:  "unterminated comment",
			input: "abc\n<!--#yatt oops",
			want:  ErrUnterminatedComment,
			line:  2,
			col:   1,
		},
		{
			name:  "unterminated declaration",
			input: "<!yatt:widget foo",
			want:  ErrUnterminatedAttList,
			line:  1,
			col:   1,
		},
		{
			name:  "garbage in declaration",
			input: "<!yatt:widget foo <bar>",
			want:  ErrUnexpectedToken,
			line:  1,
			col:   19,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(t.Context(), "bad.yatt", tt.input)
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}

			d, ok := AsDiagnostic(err)
			if !ok {
				t.Fatalf("error has no position: %v", err)
			}

			if d.Filename != "bad.yatt" || d.Line != tt.line || d.Column != tt.col {
				t.Errorf("diagnostic = %s:%d:%d, want bad.yatt:%d:%d",
					d.Filename, d.Line, d.Column, tt.line, tt.col)
			}
		})
	}
}

func TestParseString_CustomNamespace(t *testing.T) {
	input := "<!yatt:widget a>\n<!my:widget b>\n"

	f, err := ParseString(t.Context(), "", input, WithNamespaces("my"))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	// "<!yatt:..." is plain text when only "my" is recognized.
	if len(f.Parts) != 2 || !f.Parts[0].Implicit || f.Parts[1].Namespace != "my" {
		t.Errorf("unexpected parts: %d", len(f.Parts))
	}
}
