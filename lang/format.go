package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// Format writes an indented outline of the tree to w, one node per line.
func (t *Tree) Format(_ context.Context, w io.Writer, indent int) error {
	return formatNodes(w, t.Nodes, indent, 0)
}

// FormatJSON writes the tree as JSON to the writer.
func (t *Tree) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	return WriteJSON(w, t.ToMap(), indent)
}

// FormatYAML writes the tree as YAML to the writer.
func (t *Tree) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	return WriteYAML(ctx, w, t.ToMap(), indent)
}

// Format writes a summary of every part of the file to w.
func (f *File) Format(_ context.Context, w io.Writer, indent int) error {
	for _, p := range f.Parts {
		head := p.Kind
		if p.Namespace != "" {
			head = p.Namespace + ":" + head
		}
		for _, sub := range p.Subkinds {
			head += ":" + sub
		}

		if p.Implicit {
			head += " (implicit)"
		}

		if _, err := fmt.Fprintf(w, "%s %s\n", head, formatRange(p.Range)); err != nil {
			return err
		}

		if p.Attributes != nil {
			if err := formatTerms(w, p.Attributes.Terms, indent, 1); err != nil {
				return err
			}
		}
	}

	return nil
}

// FormatJSON writes the file as JSON to the writer.
func (f *File) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	return WriteJSON(w, f.ToMap(), indent)
}

// FormatYAML writes the file as YAML to the writer.
func (f *File) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	return WriteYAML(ctx, w, f.ToMap(), indent)
}

// WriteJSON encodes v as JSON followed by a newline. An indent of zero
// writes compact output.
func WriteJSON(w io.Writer, v any, indent int) error {
	var (
		jsonData []byte
		err      error
	)

	if indent > 0 {
		jsonData, err = json.MarshalIndent(v, "", strings.Repeat(" ", indent))
	} else {
		jsonData, err = json.Marshal(v)
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(jsonData))

	return err
}

// WriteYAML encodes v as YAML. An indent of zero writes flow style.
func WriteYAML(ctx context.Context, w io.Writer, v any, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	yamlData, err := yaml.MarshalContext(ctx, v, opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(yamlData))

	return err
}

func formatRange(r Range) string {
	return "[" + strconv.Itoa(r.Start) + "," + strconv.Itoa(r.End) + ")"
}

func pad(indent, depth int) string {
	if indent <= 0 {
		indent = 2
	}

	return strings.Repeat(" ", indent*depth)
}

func formatNodes(w io.Writer, nodes []Node, indent, depth int) error {
	for _, n := range nodes {
		if err := formatNode(w, n, indent, depth); err != nil {
			return err
		}
	}

	return nil
}

func formatNode(w io.Writer, n Node, indent, depth int) error {
	line := pad(indent, depth) + n.Kind().String()

	switch n := n.(type) {
	case *Text:
		line += " " + strconv.Quote(n.Value)

	case *Comment:
		line += " " + strconv.Quote(n.Value)

	case *PI:
		line += " " + strconv.Quote(n.Value)

	case *Entity:
		line += " " + FormatPath(n.Path)

	case *Message:
		arms := make([]string, len(n.Arms))
		for i, arm := range n.Arms {
			arms[i] = strconv.Quote(arm.Text)
		}

		if n.Discriminator != "" {
			line += " #" + n.Discriminator
		}

		line += " [" + strings.Join(arms, " | ") + "]"

	case *Element:
		line += " <" + n.Tag() + ">"
	}

	if _, err := fmt.Fprintln(w, line+" "+formatRange(n.Span())); err != nil {
		return err
	}

	el, ok := n.(*Element)
	if !ok {
		return nil
	}

	if el.Attributes != nil {
		if err := formatTerms(w, el.Attributes.Terms, indent, depth+1); err != nil {
			return err
		}
	}

	if err := formatNodes(w, el.Children, indent, depth+1); err != nil {
		return err
	}

	for _, opt := range el.Options {
		if err := formatNode(w, opt, indent, depth+1); err != nil {
			return err
		}
	}

	for _, c := range el.Footer {
		if err := formatNode(w, c.Option, indent, depth+1); err != nil {
			return err
		}

		if err := formatNodes(w, c.Children, indent, depth+2); err != nil {
			return err
		}
	}

	return nil
}

func formatTerms(w io.Writer, terms []*AttTerm, indent, depth int) error {
	for _, t := range terms {
		line := pad(indent, depth) + "@"
		if t.Label != nil {
			line += t.Name() + "="
		}

		switch t.Kind {
		case TermNested:
			line += "[...]"

		case TermEntity:
			line += FormatPath(t.Entity.Path)

		default:
			line += t.Raw()
		}

		if _, err := fmt.Fprintln(w, line+" ("+t.Kind.String()+")"); err != nil {
			return err
		}

		if t.Kind == TermNested {
			if err := formatTerms(w, t.Nested, indent, depth+1); err != nil {
				return err
			}
		}
	}

	return nil
}

// FormatPath renders an entity path in a compact canonical form, e.g.
// `call param("foo", [call param("bar"), href("hoe")])`.
func FormatPath(path []*PathItem) string {
	parts := make([]string, len(path))

	for i, item := range path {
		s := item.Kind.String()
		if item.Name != "" {
			s += " " + item.Name
		}

		if item.Elements != nil {
			elems := make([]string, len(item.Elements))

			for j, e := range item.Elements {
				if e.Kind == EntPipeline {
					elems[j] = "[" + FormatPath(e.Pipeline) + "]"
				} else {
					elems[j] = strconv.Quote(e.Text)
				}
			}

			s += "(" + strings.Join(elems, ", ") + ")"
		}

		parts[i] = s
	}

	return strings.Join(parts, ", ")
}
