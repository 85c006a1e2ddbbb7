package lang

import "strings"

// NodeKind classifies template tree nodes.
type NodeKind int

const (
	NodeText    NodeKind = iota // text
	NodeComment                 // comment
	NodePI                      // pi
	NodeEntity                  // entity
	NodeMessage                 // message
	NodeElement                 // element
)

// String returns the node kind name.
func (k NodeKind) String() string {
	switch k {
	case NodeComment:
		return "comment"

	case NodePI:
		return "pi"

	case NodeEntity:
		return "entity"

	case NodeMessage:
		return "message"

	case NodeElement:
		return "element"

	default:
		return "text"
	}
}

// Node is an element of a template tree. Every node knows its byte range in
// the source.
type Node interface {
	Kind() NodeKind
	Span() Range
}

// Tree is the parsed payload of one part.
type Tree struct {
	Source *Source `json:"-"     yaml:"-"`
	Nodes  []Node  `json:"nodes" yaml:"nodes"`
}

// Text is literal template text.
type Text struct {
	Range Range  `json:"range" yaml:"range"`
	Value string `json:"value" yaml:"value"`
}

func (t *Text) Kind() NodeKind { return NodeText }
func (t *Text) Span() Range    { return t.Range }

// Comment is a "<!--#ns ... #-->" comment inside a payload.
type Comment struct {
	Range     Range  `json:"range"     yaml:"range"`
	Namespace string `json:"namespace" yaml:"namespace"`
	Value     string `json:"value"     yaml:"value"`
}

func (c *Comment) Kind() NodeKind { return NodeComment }
func (c *Comment) Span() Range    { return c.Range }

// PI is a "<?ns ... ?>" processing instruction.
type PI struct {
	Range     Range  `json:"range"     yaml:"range"`
	Namespace string `json:"namespace" yaml:"namespace"`
	Value     string `json:"value"     yaml:"value"`
}

func (p *PI) Kind() NodeKind { return NodePI }
func (p *PI) Span() Range    { return p.Range }

// Message is a localized message
// "&ns[[; arm &ns||; arm ... &ns]];" with an optional "#discriminator"
// after the namespace of the opener.
type Message struct {
	Range         Range      `json:"range"                   yaml:"range"`
	Namespace     string     `json:"namespace"               yaml:"namespace"`
	Discriminator string     `json:"discriminator,omitempty" yaml:"discriminator,omitempty"`
	Arms          []*Arm     `json:"arms"                    yaml:"arms"`
	Bindings      []*Binding `json:"bindings,omitempty"      yaml:"bindings,omitempty"`
}

func (m *Message) Kind() NodeKind { return NodeMessage }
func (m *Message) Span() Range    { return m.Range }

// Arm is one alternative of a localized message.
type Arm struct {
	Range Range  `json:"range" yaml:"range"`
	Text  string `json:"text"  yaml:"text"`
	Nodes []Node `json:"nodes" yaml:"nodes"`
}

// Binding records an entity referenced from the arm at index Arm.
type Binding struct {
	Arm    int     `json:"arm"    yaml:"arm"`
	Entity *Entity `json:"entity" yaml:"entity"`
}

// Element is a namespaced tag "<ns:a:b ...>...</ns:a:b>" or an option tag
// "<:ns:name ...>". Self-closing option tags inside an element become
// footer clauses that own the nodes following them.
type Element struct {
	Range       Range    `json:"range"                  yaml:"range"`
	Body        Range    `json:"body"                   yaml:"body"`
	Namespace   string   `json:"namespace"              yaml:"namespace"`
	Path        []string `json:"path"                   yaml:"path"`
	Option      bool     `json:"option,omitempty"       yaml:"option,omitempty"`
	SelfClosing bool     `json:"self_closing,omitempty" yaml:"self_closing,omitempty"`

	Attributes *AttList   `json:"attributes"        yaml:"attributes"`
	Children   []Node     `json:"children"          yaml:"children"`
	Options    []*Element `json:"options,omitempty" yaml:"options,omitempty"`
	Footer     []*Clause  `json:"footer,omitempty"  yaml:"footer,omitempty"`
}

func (e *Element) Kind() NodeKind { return NodeElement }
func (e *Element) Span() Range    { return e.Range }

// Name returns the colon-joined element path, e.g. "foo:bar".
func (e *Element) Name() string { return strings.Join(e.Path, ":") }

// Tag returns the tag name as written, e.g. "yatt:foo" or ":yatt:else".
func (e *Element) Tag() string {
	tag := e.Namespace + ":" + e.Name()
	if e.Option {
		tag = ":" + tag
	}

	return tag
}

// Clause is a self-closing option tag and the nodes that follow it up to the
// next clause or the end of the enclosing element.
type Clause struct {
	Option   *Element `json:"option"   yaml:"option"`
	Children []Node   `json:"children" yaml:"children"`
}

// Walk calls fn for every node in nodes in document order, descending into
// element children, options, footer clauses and message arms. Returning
// false from fn skips the node's descendants.
func Walk(nodes []Node, fn func(Node) bool) {
	for _, n := range nodes {
		if !fn(n) {
			continue
		}

		switch n := n.(type) {
		case *Element:
			Walk(n.Children, fn)

			for _, opt := range n.Options {
				Walk([]Node{opt}, fn)
			}

			for _, c := range n.Footer {
				Walk([]Node{c.Option}, fn)
				Walk(c.Children, fn)
			}

		case *Message:
			for _, arm := range n.Arms {
				Walk(arm.Nodes, fn)
			}
		}
	}
}
