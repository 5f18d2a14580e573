// Package fuzzy suggests indexed terms that are close to a possibly
// misspelled query by Levenshtein edit distance.
package fuzzy

import (
	"sort"

	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/index"
)

// Suggestion is a candidate term and its edit distance from the query.
type Suggestion struct {
	Term     string `json:"term"`
	Distance int    `json:"distance"`
}

// Distance returns the Levenshtein distance between a and b with unit cost
// for insertion, deletion and substitution. It keeps two DP rows.
func Distance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1]
				continue
			}
			curr[j] = 1 + min(prev[j], curr[j-1], prev[j-1])
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// Suggest enumerates up to limit vocabulary terms from the trie root, keeps
// those within maxDistance of word and orders them by ascending distance.
// Ties keep enumeration order. Terms beyond the enumeration limit are never
// considered.
func Suggest(t *index.Trie, word string, limit int, maxDistance int) []Suggestion {
	vocabulary, _ := t.CollectTerminals(t.Root(), limit)
	kept := make([]Suggestion, 0)
	for _, term := range vocabulary {
		d := Distance(word, term)
		if d <= maxDistance {
			kept = append(kept, Suggestion{Term: term, Distance: d})
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Distance < kept[j].Distance
	})
	return kept
}

// Terms returns just the suggested terms, in rank order.
func Terms(suggestions []Suggestion) []string {
	out := make([]string, len(suggestions))
	for i, s := range suggestions {
		out[i] = s.Term
	}
	return out
}
