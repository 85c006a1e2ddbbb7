package decl

import (
	"iter"
	"slices"
	"strings"

	"github.com/ardnew/lrx/lang"
)

// VarType is the closed set of variable types.
type VarType int

const (
	TypeText     VarType = iota // text
	TypeHTML                    // html
	TypeValue                   // value
	TypeList                    // list
	TypeBool                    // bool
	TypeExpr                    // expr
	TypeAttr                    // attr
	TypeCode                    // code
	TypeDelegate                // delegate
)

var typeNames = map[string]VarType{
	"text":     TypeText,
	"html":     TypeHTML,
	"value":    TypeValue,
	"scalar":   TypeValue,
	"list":     TypeList,
	"bool":     TypeBool,
	"boolean":  TypeBool,
	"flag":     TypeBool,
	"expr":     TypeExpr,
	"attr":     TypeAttr,
	"code":     TypeCode,
	"widget":   TypeCode,
	"delegate": TypeDelegate,
}

// TypeNames returns every accepted type name, aliases included, sorted.
func TypeNames() []string {
	names := make([]string, 0, len(typeNames))
	for name := range typeNames {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// LookupType returns the type named name.
func LookupType(name string) (VarType, bool) {
	t, ok := typeNames[name]

	return t, ok
}

// String returns the canonical type name.
func (t VarType) String() string {
	switch t {
	case TypeHTML:
		return "html"

	case TypeValue:
		return "value"

	case TypeList:
		return "list"

	case TypeBool:
		return "bool"

	case TypeExpr:
		return "expr"

	case TypeAttr:
		return "attr"

	case TypeCode:
		return "code"

	case TypeDelegate:
		return "delegate"

	default:
		return "text"
	}
}

// DefaultFlag selects when a variable's default value applies.
type DefaultFlag byte

const (
	FlagNone         DefaultFlag = 0
	FlagUndefOrEmpty DefaultFlag = '?'
	FlagFalse        DefaultFlag = '|'
	FlagUndef        DefaultFlag = '/'
	FlagMandatory    DefaultFlag = '!'
)

// String returns the flag character, or "" for FlagNone.
func (f DefaultFlag) String() string {
	if f == FlagNone {
		return ""
	}

	return string(rune(f))
}

// Variable describes one argument or locally bound name of a part.
type Variable struct {
	Name string
	Type VarType

	// TypeName is the type as written, which may be an alias.
	TypeName string

	// ArgNo is the position in the owning argument map, or -1 for names that
	// are not arguments.
	ArgNo int

	Flag    DefaultFlag
	Default string

	// Body marks the reserved body argument.
	Body bool

	// Widget describes the callable signature of a code variable.
	Widget *Part

	// Delegate is set for delegate aliases.
	Delegate *Delegate

	// Range locates the declaring attribute term.
	Range lang.Range
}

// Delegate records the widget a delegate alias refers to.
type Delegate struct {
	Target string
	// Names is the explicit subset of imported names, empty to import all.
	Names []string
	// Imported lists the argument names actually added to the part.
	Imported []string
}

// Escaped reports whether values of v are HTML-escaped on output.
func (v *Variable) Escaped() bool { return v.Type == TypeText || v.Type == TypeAttr }

// Callable reports whether v holds code to be invoked.
func (v *Variable) Callable() bool { return v.Type == TypeCode || v.Type == TypeExpr }

// Mandatory reports whether a caller must pass v.
func (v *Variable) Mandatory() bool { return v.Flag == FlagMandatory }

// Spec returns the variable's type literal, e.g. "text?none".
func (v *Variable) Spec() string {
	name := v.TypeName
	if name == "" {
		name = v.Type.String()
	}

	return name + v.Flag.String() + v.Default
}

func (v *Variable) clone() *Variable {
	c := *v

	return &c
}

// ParseVarSpec parses a type literal of the form "type", "type?default",
// "type|default", "type/default" or "type!". An empty type means text.
func ParseVarSpec(spec string) (*Variable, error) {
	v := &Variable{ArgNo: -1}

	name := spec
	if i := strings.IndexAny(spec, "?|/!"); i >= 0 {
		name = spec[:i]
		v.Flag = DefaultFlag(spec[i])
		v.Default = spec[i+1:]
	}

	if name == "" {
		name = TypeText.String()
	}

	t, ok := LookupType(name)
	if !ok || t == TypeDelegate {
		return nil, unknownType(name)
	}

	v.Type = t
	v.TypeName = name

	return v, nil
}

func unknownType(name string) *lang.Error {
	err := lang.ErrUnknownType.Withf("'" + name + "'")
	if s := suggest(name, TypeNames()); s != "" {
		err = err.Withf(s)
	}

	return err
}

// ArgMap is an insertion-ordered map of arguments. Each added variable
// receives the next argument number.
type ArgMap struct {
	names []string
	vars  map[string]*Variable
}

// NewArgMap returns an empty ArgMap.
func NewArgMap() *ArgMap {
	return &ArgMap{vars: make(map[string]*Variable)}
}

// Add appends v, assigning its ArgNo. It reports false when the name is
// already present.
func (m *ArgMap) Add(v *Variable) bool {
	if _, ok := m.vars[v.Name]; ok {
		return false
	}

	v.ArgNo = len(m.names)
	m.names = append(m.names, v.Name)
	m.vars[v.Name] = v

	return true
}

// Get returns the variable named name.
func (m *ArgMap) Get(name string) (*Variable, bool) {
	v, ok := m.vars[name]

	return v, ok
}

// Has reports whether name is present.
func (m *ArgMap) Has(name string) bool {
	_, ok := m.vars[name]

	return ok
}

// Len returns the number of arguments.
func (m *ArgMap) Len() int { return len(m.names) }

// Names returns the argument names in declaration order.
func (m *ArgMap) Names() []string { return slices.Clone(m.names) }

// All iterates over the arguments in declaration order.
func (m *ArgMap) All() iter.Seq2[string, *Variable] {
	return func(yield func(string, *Variable) bool) {
		for _, name := range m.names {
			if !yield(name, m.vars[name]) {
				return
			}
		}
	}
}
