package decl

import (
	"iter"
	"regexp"
	"slices"
	"strings"

	"github.com/ardnew/lrx/lang"
)

// Route associates a part with a literal request path and optional method.
type Route struct {
	Method string
	Path   string

	// Params lists the path placeholders in order of appearance.
	Params []string

	Part  *Part
	Range lang.Range
}

// String returns "METHOD /path" or only the path.
func (r *Route) String() string {
	if r.Method == "" {
		return r.Path
	}

	return r.Method + " " + r.Path
}

var routeParamRx = regexp.MustCompile(`:(\w+)|\{(\w+)(?::[^}]*)?\}`)

// RouteParams returns the ":name" and "{name}" placeholders of path.
func RouteParams(path string) []string {
	var params []string

	for _, m := range routeParamRx.FindAllStringSubmatch(path, -1) {
		name := m[1]
		if name == "" {
			name = m[2]
		}

		if !slices.Contains(params, name) {
			params = append(params, name)
		}
	}

	return params
}

// isRoute reports whether t is a route literal: a quoted path beginning
// with "/" or a nested [METHOD "/path"] pair.
func isRoute(t *lang.AttTerm) bool {
	switch {
	case t.Kind.Quoted():
		return strings.HasPrefix(t.Text(), "/")

	case t.IsNested():
		return len(t.Nested) == 2 &&
			t.Nested[0].IsIdent() &&
			t.Nested[1].Label == nil &&
			t.Nested[1].Kind.Quoted() &&
			strings.HasPrefix(t.Nested[1].Text(), "/")

	default:
		return false
	}
}

// parseRoute converts a route literal term.
func parseRoute(t *lang.AttTerm) *Route {
	r := &Route{Range: t.Range}

	if t.IsNested() {
		r.Method = strings.ToUpper(t.Nested[0].Text())
		r.Path = t.Nested[1].Text()
	} else {
		r.Path = t.Text()
	}

	r.Params = RouteParams(r.Path)

	return r
}

// RouteMap indexes routes by literal path. Several methods may share a path.
type RouteMap struct {
	paths  []string
	routes map[string][]*Route
}

// NewRouteMap returns an empty RouteMap.
func NewRouteMap() *RouteMap {
	return &RouteMap{routes: make(map[string][]*Route)}
}

// Add registers r. It reports false when the same method and path are
// already present.
func (m *RouteMap) Add(r *Route) bool {
	existing, ok := m.routes[r.Path]
	if !ok {
		m.paths = append(m.paths, r.Path)
	}

	for _, e := range existing {
		if e.Method == r.Method {
			return false
		}
	}

	m.routes[r.Path] = append(existing, r)

	return true
}

// Lookup returns the routes registered for path.
func (m *RouteMap) Lookup(path string) []*Route { return m.routes[path] }

// Len returns the number of distinct paths.
func (m *RouteMap) Len() int { return len(m.paths) }

// Paths returns the registered paths in declaration order.
func (m *RouteMap) Paths() []string { return slices.Clone(m.paths) }

// All iterates over every route in declaration order.
func (m *RouteMap) All() iter.Seq[*Route] {
	return func(yield func(*Route) bool) {
		for _, path := range m.paths {
			for _, r := range m.routes[path] {
				if !yield(r) {
					return
				}
			}
		}
	}
}
