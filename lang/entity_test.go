package lang

import (
	"errors"
	"testing"
)

func TestParseEntity(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "variable",
			input: ":x;",
			want:  "var x",
		},
		{
			name:  "property chain",
			input: ":user:name;",
			want:  "var user, prop name",
		},
		{
			name:  "nested call pipeline",
			input: ":param(foo,:param(bar){hoe});",
			want:  `call param("foo", [call param("bar"), href("hoe")])`,
		},
		{
			name:  "array literal",
			input: ":[a,b];",
			want:  `array("a", "b")`,
		},
		{
			name:  "bare array head",
			input: "[a,b];",
			want:  `array("a", "b")`,
		},
		{
			name:  "hash literal",
			input: ":{k,v}:x;",
			want:  `hash("k", "v"), prop x`,
		},
		{
			name:  "hash and array subscripts",
			input: ":x{k}[0];",
			want:  `var x, href("k"), aref("0")`,
		},
		{
			name:  "method invocation",
			input: ":obj:method(1):field;",
			want:  `var obj, invoke method("1"), prop field`,
		},
		{
			name:  "balanced parentheses in literal",
			input: ":f(g(1,2));",
			want:  `call f("g(1,2)")`,
		},
		{
			name:  "empty call",
			input: ":f();",
			want:  "call f",
		},
	}

	p := New()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ent, err := p.ParseEntity(t.Context(), tt.input)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			if got := FormatPath(ent.Path); got != tt.want {
				t.Errorf("path mismatch:\nwant: %s\ngot:  %s", tt.want, got)
			}
		})
	}
}

func TestParseEntity_ElementKinds(t *testing.T) {
	ent, err := New().ParseEntity(t.Context(), ":f(plain text, a + b, :x);")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	elems := ent.Head().Elements
	want := []EntTermKind{EntText, EntExpr, EntPipeline}

	if len(elems) != len(want) {
		t.Fatalf("got %d elements, want %d", len(elems), len(want))
	}

	for i, k := range want {
		if elems[i].Kind != k {
			t.Errorf("element %d kind = %v, want %v", i, elems[i].Kind, k)
		}
	}
}

func TestParseEntity_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *Error
	}{
		{"missing semicolon", ":x", ErrUnterminatedEntity},
		{"unclosed call", ":f(a", ErrUnterminatedEntity},
		{"semicolon inside call", ":f(a;", ErrUnbalancedBracket},
		{"wrong closer", ":f(a];", ErrUnbalancedBracket},
		{"no path", "foo;", ErrUnexpectedToken},
		{"trailing garbage", ":x;y", ErrUnexpectedToken},
	}

	p := New()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.ParseEntity(t.Context(), tt.input)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParseEntity_DepthLimit(t *testing.T) {
	p := New(WithMaxDepth(3))

	_, err := p.ParseEntity(t.Context(), ":a(:b(:c(:d(:e(x)))));")
	if !errors.Is(err, ErrMaxDepthExceeded) {
		t.Errorf("error = %v, want ErrMaxDepthExceeded", err)
	}
}

func TestParseEntityRef(t *testing.T) {
	tests := []struct {
		input string
		ns    string
		path  string
	}{
		{"&yatt:user:name;", "yatt", "var user, prop name"},
		{"&yatt:user:name", "yatt", "var user, prop name"},
		{":x", "", "var x"},
		{"  :f(a);  ", "", `call f("a")`},
	}

	p := New()

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			ent, err := p.ParseEntityRef(t.Context(), tt.input)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			if ent.Namespace != tt.ns {
				t.Errorf("Namespace = %q, want %q", ent.Namespace, tt.ns)
			}

			if got := FormatPath(ent.Path); got != tt.path {
				t.Errorf("path = %q, want %q", got, tt.path)
			}
		})
	}
}

func TestParseEntityRef_UnknownNamespace(t *testing.T) {
	if _, err := New().ParseEntityRef(t.Context(), "&perl:x"); err == nil {
		t.Error("expected error for unknown namespace")
	}
}

func TestTemplate_EntityRange(t *testing.T) {
	input := "a &yatt:x:y; b"

	f, err := ParseString(t.Context(), "", input)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	tree, err := f.Parts[0].Tree()
	if err != nil {
		t.Fatalf("tree error: %v", err)
	}

	if len(tree.Nodes) != 3 {
		t.Fatalf("got %d nodes, want 3", len(tree.Nodes))
	}

	ent, ok := tree.Nodes[1].(*Entity)
	if !ok {
		t.Fatalf("node 1 is %T, want *Entity", tree.Nodes[1])
	}

	if got := f.Source.Slice(ent.Range); got != "&yatt:x:y;" {
		t.Errorf("entity source = %q", got)
	}

	if ent.Namespace != "yatt" {
		t.Errorf("namespace = %q", ent.Namespace)
	}
}

func TestTemplate_EntityLiteralHead(t *testing.T) {
	for _, input := range []string{"&yatt:[a,b];", "&yatt[a,b];", "&yatt:{k,v};"} {
		f, err := ParseString(t.Context(), "", input)
		if err != nil {
			t.Fatalf("parse %q: %v", input, err)
		}

		tree, err := f.Parts[0].Tree()
		if err != nil {
			t.Fatalf("tree %q: %v", input, err)
		}

		ent, ok := tree.Nodes[0].(*Entity)
		if !ok {
			t.Fatalf("%q: node 0 is %T, want *Entity", input, tree.Nodes[0])
		}

		if k := ent.Head().Kind; k != ItemArray && k != ItemHash {
			t.Errorf("%q: head kind = %v", input, k)
		}

		if got := f.Source.Slice(ent.Range); got != input {
			t.Errorf("entity source = %q, want %q", got, input)
		}
	}
}
