package lang

import (
	"encoding/json"
)

// MarshalJSON implements json.Marshaler for File.
func (f *File) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.ToMap())
}

// MarshalJSON implements json.Marshaler for Tree.
func (t *Tree) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.ToMap())
}

// ToMap converts the file to native Go maps and slices, one entry per part.
func (f *File) ToMap() map[string]any {
	parts := make([]any, 0, len(f.Parts))

	for _, p := range f.Parts {
		parts = append(parts, p.ToMap())
	}

	return map[string]any{
		"filename": f.Source.Filename,
		"parts":    parts,
	}
}

// ToMap converts the part header to native Go types. The payload is not
// parsed.
func (p *RawPart) ToMap() map[string]any {
	m := map[string]any{
		"namespace":  p.Namespace,
		"kind":       p.Kind,
		"range":      rangeToNative(p.Range),
		"attributes": attListToNative(p.Attributes),
	}

	if len(p.Subkinds) > 0 {
		m["subkinds"] = p.Subkinds
	}

	if p.Implicit {
		m["implicit"] = true
	}

	return m
}

// ToMap converts the tree to native Go types.
func (t *Tree) ToMap() map[string]any {
	return map[string]any{"nodes": nodesToNative(t.Nodes)}
}

// ToNative converts the entity to native Go types.
func (e *Entity) ToNative() map[string]any {
	return map[string]any{
		"namespace": e.Namespace,
		"path":      pathToNative(e.Path),
	}
}

func rangeToNative(r Range) []int { return []int{r.Start, r.End} }

func nodesToNative(nodes []Node) []any {
	result := make([]any, 0, len(nodes))

	for _, n := range nodes {
		result = append(result, nodeToNative(n))
	}

	return result
}

func nodeToNative(n Node) map[string]any {
	m := map[string]any{
		"kind":  n.Kind().String(),
		"range": rangeToNative(n.Span()),
	}

	switch n := n.(type) {
	case *Text:
		m["value"] = n.Value

	case *Comment:
		m["value"] = n.Value

	case *PI:
		m["value"] = n.Value

	case *Entity:
		m["path"] = pathToNative(n.Path)

	case *Message:
		arms := make([]any, 0, len(n.Arms))
		for _, arm := range n.Arms {
			arms = append(arms, arm.Text)
		}

		m["arms"] = arms

		if n.Discriminator != "" {
			m["discriminator"] = n.Discriminator
		}

	case *Element:
		m["tag"] = n.Tag()
		m["attributes"] = attListToNative(n.Attributes)

		if len(n.Children) > 0 {
			m["children"] = nodesToNative(n.Children)
		}

		if len(n.Options) > 0 {
			opts := make([]any, 0, len(n.Options))
			for _, opt := range n.Options {
				opts = append(opts, nodeToNative(opt))
			}

			m["options"] = opts
		}

		if len(n.Footer) > 0 {
			footer := make([]any, 0, len(n.Footer))
			for _, c := range n.Footer {
				clause := nodeToNative(c.Option)
				clause["children"] = nodesToNative(c.Children)
				footer = append(footer, clause)
			}

			m["footer"] = footer
		}
	}

	return m
}

func attListToNative(a *AttList) []any {
	if a == nil {
		return []any{}
	}

	return termsToNative(a.Terms)
}

func termsToNative(terms []*AttTerm) []any {
	result := make([]any, 0, len(terms))

	for _, t := range terms {
		m := map[string]any{"kind": t.Kind.String()}

		if t.Label != nil {
			m["name"] = t.Name()
		}

		switch t.Kind {
		case TermNested:
			m["nested"] = termsToNative(t.Nested)

		case TermEntity:
			m["path"] = pathToNative(t.Entity.Path)

		default:
			m["value"] = t.Text()
		}

		result = append(result, m)
	}

	return result
}

func pathToNative(path []*PathItem) []any {
	result := make([]any, 0, len(path))

	for _, item := range path {
		m := map[string]any{"kind": item.Kind.String()}

		if item.Name != "" {
			m["name"] = item.Name
		}

		if item.Elements != nil {
			elems := make([]any, 0, len(item.Elements))

			for _, e := range item.Elements {
				if e.Kind == EntPipeline {
					elems = append(elems, map[string]any{
						"pipeline": pathToNative(e.Pipeline),
					})

					continue
				}

				elems = append(elems, map[string]any{
					e.Kind.String(): e.Text,
				})
			}

			m["elements"] = elems
		}

		result = append(result, m)
	}

	return result
}
