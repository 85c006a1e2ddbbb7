package lang

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// Class groups errors by the stage of processing that detected them.
type Class int

const (
	// ClassNone is used for errors that do not originate in source text,
	// such as I/O failures.
	ClassNone Class = iota

	// ClassLexical covers malformed tokens: unterminated comments, entities,
	// brackets and attribute lists, and garbage inside tags.
	ClassLexical

	// ClassStructural covers malformed nesting and declarations: mismatched
	// or missing close tags, duplicate parts and unknown part kinds.
	ClassStructural

	// ClassSemantic covers well-formed input with invalid meaning: unknown
	// types and arguments, duplicate arguments, type mismatches and
	// unresolvable delegates.
	ClassSemantic
)

// String returns a string representation of the error class.
func (c Class) String() string {
	switch c {
	case ClassLexical:
		return "lexical"

	case ClassStructural:
		return "structural"

	case ClassSemantic:
		return "semantic"

	default:
		return "none"
	}
}

// Predefined errors (sentinel values).
var (
	ErrReadInput        = NewError("failed to read input")
	ErrMaxDepthExceeded = newClassError(ClassLexical, "maximum nesting depth exceeded")
	ErrNotImplemented   = newClassError(ClassSemantic, "not yet implemented")
	ErrExprCompile      = NewError("failed to compile expression")
	ErrExprEval         = NewError("failed to evaluate expression")

	// Lexical.
	ErrUnterminatedComment = newClassError(ClassLexical, "comment is not terminated")
	ErrUnterminatedEntity  = newClassError(ClassLexical, "entity is not terminated")
	ErrUnterminatedAttList = newClassError(ClassLexical, "attribute list is not terminated")
	ErrUnterminatedPI      = newClassError(ClassLexical, "processing instruction is not terminated")
	ErrUnterminatedMessage = newClassError(ClassLexical, "localized message is not terminated")
	ErrUnbalancedBracket   = newClassError(ClassLexical, "unbalanced bracket")
	ErrGarbageInTag        = newClassError(ClassLexical, "garbage before end of tag")
	ErrUnexpectedToken     = newClassError(ClassLexical, "unexpected token")
	ErrMissingValue        = newClassError(ClassLexical, "missing value after '='")

	// Structural.
	ErrTagMismatch      = newClassError(ClassStructural, "closing tag does not match")
	ErrMissingCloseTag  = newClassError(ClassStructural, "missing closing tag")
	ErrUnexpectedClose  = newClassError(ClassStructural, "unexpected closing tag")
	ErrMisplacedOption  = newClassError(ClassStructural, "option tag outside of element")
	ErrDuplicatePart    = newClassError(ClassStructural, "duplicate part declaration")
	ErrDuplicateRoute   = newClassError(ClassStructural, "duplicate route")
	ErrUnknownKind      = newClassError(ClassStructural, "unknown declaration kind")
	ErrMissingPartName  = newClassError(ClassStructural, "missing part name")
	ErrMisplacedElement = newClassError(ClassStructural, "element is not allowed here")
	ErrInvalidRoute     = newClassError(ClassStructural, "invalid route")

	// Semantic.
	ErrUnknownType        = newClassError(ClassSemantic, "unknown variable type")
	ErrInvalidArgument    = newClassError(ClassSemantic, "invalid argument declaration")
	ErrUnknownArgument    = newClassError(ClassSemantic, "unknown argument")
	ErrUnknownWidget      = newClassError(ClassSemantic, "unknown widget")
	ErrDuplicateArgument  = newClassError(ClassSemantic, "duplicate argument")
	ErrTypeMismatch       = newClassError(ClassSemantic, "type mismatch")
	ErrUnresolvedDelegate = newClassError(ClassSemantic, "can't resolve delegates")
)

// Error represents an error with optional structured logging attributes and
// an optional source location.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
	class Class
	file  string
	pos   *Position

	// base is the sentinel this error was derived from, so that errors.Is
	// matches derived copies against their sentinel.
	base *Error
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

func newClassError(class Class, msg string) *Error {
	return &Error{msg: msg, class: class}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<file>:<line>:<col>: <msg>: <err>"
	//   2. "<msg>: <err>"
	//   3. "<msg>"
	//   4. "<err>"
	part := make([]string, 0, 3)

	if loc := e.location(); loc != "" {
		part = append(part, loc)
	}

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

func (e *Error) location() string {
	if e.pos == nil {
		return e.file
	}

	loc := strconv.Itoa(e.pos.Line) + ":" + strconv.Itoa(e.pos.Column)
	if e.file != "" {
		loc = e.file + ":" + loc
	}

	return loc
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return e == t || (e.base != nil && e.base == t.root())
}

func (e *Error) root() *Error {
	if e.base != nil {
		return e.base
	}

	return e
}

// Class returns the taxonomy class of the error.
func (e *Error) Class() Class { return e.class }

// Message returns the error message without location or cause.
func (e *Error) Message() string { return e.msg }

// Position returns the source position of the error, if known.
func (e *Error) Position() (Position, bool) {
	if e.pos == nil {
		return Position{}, false
	}

	return *e.pos, true
}

// Filename returns the name of the source file the error refers to.
func (e *Error) Filename() string { return e.file }

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+5)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	if e.file != "" {
		attrs = append(attrs, slog.String("file", e.file))
	}

	if e.pos != nil {
		attrs = append(attrs,
			slog.Int("line", e.pos.Line),
			slog.Int("column", e.pos.Column),
		)
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

func (e *Error) derive() *Error {
	c := *e
	c.base = e.root()

	return &c
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	c := e.derive()
	c.err = err

	return c
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	c := e.derive()
	c.attrs = newAttrs

	return c
}

// Withf appends a detail string to the message, e.g. the offending name.
func (e *Error) Withf(detail string) *Error {
	c := e.derive()
	if c.msg == "" {
		c.msg = detail
	} else {
		c.msg += " " + detail
	}

	return c
}

// WithPosition attaches a source location to the error.
func (e *Error) WithPosition(file string, pos Position) *Error {
	c := e.derive()
	c.file = file
	c.pos = &pos

	return c
}

// Diagnostic is the structured form of a fatal error handed to consumers
// for human or IDE formatting.
type Diagnostic struct {
	Message  string `json:"message"            yaml:"message"`
	Class    string `json:"class,omitempty"    yaml:"class,omitempty"`
	Filename string `json:"filename,omitempty" yaml:"filename,omitempty"`
	Line     int    `json:"line"               yaml:"line"`
	Column   int    `json:"column"             yaml:"column"`
}

// AsDiagnostic extracts a Diagnostic from err. It reports false when err
// carries no source location.
func AsDiagnostic(err error) (Diagnostic, bool) {
	var ee *Error
	if !errors.As(err, &ee) || ee.pos == nil {
		return Diagnostic{Message: errorMessage(err)}, false
	}

	msg := ee.msg
	if ee.err != nil {
		msg += ": " + ee.err.Error()
	}

	return Diagnostic{
		Message:  msg,
		Class:    ee.class.String(),
		Filename: ee.file,
		Line:     ee.pos.Line,
		Column:   ee.pos.Column,
	}, true
}

func errorMessage(err error) string {
	if err == nil {
		return ""
	}

	return err.Error()
}

// Snippet renders the source line referenced by d with a caret under its
// column. It returns an empty string if the line is out of range.
func Snippet(source string, d Diagnostic) string {
	lines := strings.Split(source, "\n")
	if d.Line <= 0 || d.Line > len(lines) {
		return ""
	}

	var buf strings.Builder

	num := strconv.Itoa(d.Line)

	buf.WriteString("  " + num + " | " + lines[d.Line-1] + "\n")

	// +5 accounts for: 2 leading spaces + " | " (3 chars)
	padding := strings.Repeat(" ", len(num)+5)
	if d.Column > 0 {
		padding += strings.Repeat(" ", d.Column-1)
	}

	buf.WriteString(padding + "^\n")

	return buf.String()
}
