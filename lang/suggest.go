package lang

import (
	"cmp"
	"maps"
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"
)

// maxSuggestions bounds the suggestions attached to undefined-name errors.
const maxSuggestions = 3

// Suggest returns up to limit record ids that fuzzily match name, best match
// first. A non-positive limit returns every match.
func (t *Table) Suggest(name string, limit int) []string {
	return suggest(name, t.order, limit)
}

// suggest ranks candidates against name in both directions: candidates
// containing name as a subsequence catch omitted characters, and candidates
// that are a subsequence of name catch extra ones. A candidate matched both
// ways keeps its better score.
func suggest(name string, candidates []string, limit int) []string {
	if name == "" || len(candidates) == 0 {
		return nil
	}

	best := make(map[int]fuzzy.Match, len(candidates))

	for _, m := range fuzzy.Find(name, candidates) {
		best[m.Index] = m
	}

	for i, c := range candidates {
		for _, m := range fuzzy.Find(c, []string{name}) {
			if prev, ok := best[i]; !ok || m.Score > prev.Score {
				best[i] = fuzzy.Match{Str: c, Index: i, Score: m.Score}
			}
		}
	}

	matches := slices.Collect(maps.Values(best))
	slices.SortFunc(matches, func(a, b fuzzy.Match) int {
		if a.Score != b.Score {
			return cmp.Compare(b.Score, a.Score)
		}

		return cmp.Compare(a.Index, b.Index)
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Str
	}

	return out
}

func joinSuggestions(s []string) string {
	return strings.Join(s, ",")
}
