package decl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/ardnew/lrx/lang"
)

// MarshalJSON implements json.Marshaler for Declaration.
func (d *Declaration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.ToMap())
}

// ToMap converts the declaration to native Go maps and slices.
func (d *Declaration) ToMap() map[string]any {
	return d.toMap(d.Order)
}

// ToMapParts converts only the given parts of the declaration.
func (d *Declaration) ToMapParts(parts []*Part) map[string]any {
	keys := make([]PartKey, len(parts))
	for i, p := range parts {
		keys[i] = p.Key()
	}

	return d.toMap(keys)
}

func (d *Declaration) toMap(keys []PartKey) map[string]any {
	parts := make([]any, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, d.parts[key].ToMap())
	}

	m := map[string]any{
		"path":  d.Path,
		"parts": parts,
	}

	if len(d.Bases) > 0 {
		m["bases"] = d.Bases
	}

	if d.Routes.Len() > 0 {
		routes := make([]any, 0, d.Routes.Len())
		for r := range d.Routes.All() {
			routes = append(routes, map[string]any{
				"route": r.String(),
				"part":  r.Part.DisplayName(),
			})
		}

		m["routes"] = routes
	}

	return m
}

// ToMap converts the part to native Go types.
func (p *Part) ToMap() map[string]any {
	args := make([]any, 0, p.Args.Len())
	for _, v := range p.Args.All() {
		args = append(args, v.ToMap())
	}

	m := map[string]any{
		"kind":   p.Kind.String(),
		"name":   p.Name,
		"public": p.Public,
		"args":   args,
	}

	if p.Route != nil {
		m["route"] = p.Route.String()
	}

	if len(p.Vars) > 0 {
		vars := make([]any, 0, len(p.Vars))
		for _, name := range p.VarNames() {
			vars = append(vars, p.Vars[name].ToMap())
		}

		m["vars"] = vars
	}

	return m
}

// ToMap converts the variable to native Go types.
func (v *Variable) ToMap() map[string]any {
	m := map[string]any{
		"name": v.Name,
		"type": v.Type.String(),
	}

	if v.ArgNo >= 0 {
		m["argno"] = v.ArgNo
	}

	if v.Flag != FlagNone {
		m["flag"] = v.Flag.String()
		m["default"] = v.Default
	}

	if v.Body {
		m["body"] = true
	}

	if v.Delegate != nil {
		m["target"] = v.Delegate.Target
		m["imported"] = v.Delegate.Imported
	} else if v.Widget != nil && v.Widget.Args.Len() > 0 {
		m["widget"] = v.Widget.ToMap()["args"]
	}

	return m
}

// Format writes a readable outline of the declaration to w.
func (d *Declaration) Format(_ context.Context, w io.Writer, indent int) error {
	return d.FormatParts(w, slices.Collect(d.Parts()), indent)
}

// FormatParts writes the outline of the given parts to w.
func (d *Declaration) FormatParts(w io.Writer, parts []*Part, indent int) error {
	if indent <= 0 {
		indent = 2
	}

	pad := strings.Repeat(" ", indent)

	for _, p := range parts {
		head := p.Kind.String() + " " + p.DisplayName()
		if p.Route != nil {
			head += " " + p.Route.String()
		}

		if _, err := fmt.Fprintln(w, head); err != nil {
			return err
		}

		for _, v := range p.Args.All() {
			if _, err := fmt.Fprintln(w, pad+formatVar(v)); err != nil {
				return err
			}
		}

		for _, name := range p.VarNames() {
			if _, err := fmt.Fprintln(w, pad+formatVar(p.Vars[name])); err != nil {
				return err
			}
		}
	}

	return nil
}

// FormatJSON writes the declaration as JSON to w.
func (d *Declaration) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	return lang.WriteJSON(w, d.ToMap(), indent)
}

// FormatYAML writes the declaration as YAML to w.
func (d *Declaration) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	return lang.WriteYAML(ctx, w, d.ToMap(), indent)
}

func formatVar(v *Variable) string {
	s := v.Name + ": "

	switch {
	case v.Delegate != nil:
		s += "delegate:" + v.Delegate.Target
		if len(v.Delegate.Imported) > 0 {
			s += " (" + strings.Join(v.Delegate.Imported, ", ") + ")"
		}

	case v.Widget != nil && v.Widget.Args.Len() > 0:
		names := v.Widget.Args.Names()
		s += v.Spec() + " [" + strings.Join(names, " ") + "]"

	default:
		s += v.Spec()
	}

	if v.Body {
		s += " (body)"
	}

	return s
}
