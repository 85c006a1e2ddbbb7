package decl

import (
	"slices"
	"strings"

	fuzzysearch "github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/sahilm/fuzzy"
)

const maxSuggestions = 3

// Suggestions returns up to three candidates close to name. Subsequence
// matches (abbreviations) rank first; when there are none, candidates within
// a small edit distance of name (typos) are returned, nearest first.
func Suggestions(name string, candidates []string) []string {
	if name == "" || len(candidates) == 0 {
		return nil
	}

	names := make([]string, 0, maxSuggestions)

	for _, m := range fuzzy.Find(name, candidates) {
		if m.Str == name {
			continue
		}

		names = append(names, m.Str)
		if len(names) == maxSuggestions {
			return names
		}
	}

	if len(names) > 0 {
		return names
	}

	return nearest(name, candidates)
}

type ranked struct {
	name string
	dist int
}

// nearest ranks candidates by case-insensitive Levenshtein distance, keeping
// those within half the length of name.
func nearest(name string, candidates []string) []string {
	limit := max(1, len(name)/2)
	lower := strings.ToLower(name)

	var found []ranked

	for _, c := range candidates {
		if c == name {
			continue
		}

		if d := fuzzysearch.LevenshteinDistance(lower, strings.ToLower(c)); d <= limit {
			found = append(found, ranked{name: c, dist: d})
		}
	}

	slices.SortStableFunc(found, func(a, b ranked) int {
		if a.dist != b.dist {
			return a.dist - b.dist
		}

		return strings.Compare(a.name, b.name)
	})

	names := make([]string, 0, min(len(found), maxSuggestions))
	for _, r := range found[:min(len(found), maxSuggestions)] {
		names = append(names, r.name)
	}

	return names
}

// suggest returns a "(did you mean ...?)" hint, or "" when nothing is close.
func suggest(name string, candidates []string) string {
	names := Suggestions(name, candidates)
	if len(names) == 0 {
		return ""
	}

	return "(did you mean " + strings.Join(names, ", ") + "?)"
}
