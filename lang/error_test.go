package lang

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

func TestError_IsMatchesDerivedCopies(t *testing.T) {
	derived := ErrUnknownType.
		Withf("'blob'").
		With(slog.String("arg", "x")).
		WithPosition("a.yatt", Position{Line: 3, Column: 7})

	if !errors.Is(derived, ErrUnknownType) {
		t.Error("derived error should match its sentinel")
	}

	if errors.Is(derived, ErrUnknownArgument) {
		t.Error("derived error should not match another sentinel")
	}

	wrapped := fmt.Errorf("building: %w", derived)
	if !errors.Is(wrapped, ErrUnknownType) {
		t.Error("wrapped error should match through fmt.Errorf")
	}
}

func TestError_Format(t *testing.T) {
	err := ErrTagMismatch.
		Withf("</yatt:b> for <yatt:a>").
		WithPosition("page.yatt", Position{Line: 2, Column: 5})

	want := "page.yatt:2:5: closing tag does not match </yatt:b> for <yatt:a>"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	if err.Class() != ClassStructural {
		t.Errorf("Class() = %v, want structural", err.Class())
	}
}

func TestAsDiagnostic(t *testing.T) {
	_, err := ParseString(t.Context(), "x.yatt", "ok\n  <!yatt:widget [a>")

	d, ok := AsDiagnostic(err)
	if !ok {
		t.Fatalf("no diagnostic for %v", err)
	}

	if d.Class != "lexical" || d.Line != 2 || d.Column != 17 {
		t.Errorf("diagnostic = %+v", d)
	}

	snippet := Snippet("ok\n  <!yatt:widget [a>", d)
	if !strings.HasPrefix(snippet, "  2 |   <!yatt:widget [a>\n") {
		t.Errorf("unexpected snippet:\n%s", snippet)
	}

	if !strings.HasSuffix(snippet, strings.Repeat(" ", 6+16)+"^\n") {
		t.Errorf("caret misplaced:\n%s", snippet)
	}
}

func TestAsDiagnostic_NoPosition(t *testing.T) {
	d, ok := AsDiagnostic(errors.New("plain"))
	if ok {
		t.Error("plain errors carry no position")
	}

	if d.Message != "plain" {
		t.Errorf("message = %q", d.Message)
	}
}
