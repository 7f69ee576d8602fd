package errors

import (
	"sort"
	"strings"
)

const (
	// MaxSuggestionDistance is the largest edit distance still suggested.
	MaxSuggestionDistance = 3

	// MaxSuggestions caps the number of names returned by SuggestSimilar.
	MaxSuggestions = 3
)

// SuggestSimilar returns the names from candidates that are close to target,
// closest first. Short names tolerate fewer edits.
func SuggestSimilar(target string, candidates []string) []string {
	if target == "" || len(candidates) == 0 {
		return nil
	}
	threshold := MaxSuggestionDistance
	switch {
	case len(target) <= 3:
		threshold = 1
	case len(target) <= 5:
		threshold = 2
	}
	type scored struct {
		name string
		dist int
	}
	lower := strings.ToLower(target)
	var found []scored
	for _, candidate := range candidates {
		c := strings.ToLower(candidate)
		if candidate == "" || c == lower {
			continue
		}
		if d := editDistance(lower, c); d <= threshold {
			found = append(found, scored{candidate, d})
		}
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].dist != found[j].dist {
			return found[i].dist < found[j].dist
		}
		return found[i].name < found[j].name
	})
	if len(found) > MaxSuggestions {
		found = found[:MaxSuggestions]
	}
	names := make([]string, len(found))
	for i, s := range found {
		names[i] = s.name
	}
	return names
}

// FormatSuggestions renders suggestions as a hint, or "" if there are none.
func FormatSuggestions(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return "did you mean '" + names[0] + "'?"
	}
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "'" + n + "'"
	}
	return "did you mean one of " + strings.Join(quoted, ", ") + "?"
}

// editDistance is the Levenshtein distance computed with two rows.
func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}
	prev := make([]int, len(ra)+1)
	curr := make([]int, len(ra)+1)
	for i := range prev {
		prev[i] = i
	}
	for j := 1; j <= len(rb); j++ {
		curr[0] = j
		for i := 1; i <= len(ra); i++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[i] = min(prev[i]+1, curr[i-1]+1, prev[i-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(ra)]
}
