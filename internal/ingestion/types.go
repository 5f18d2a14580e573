// Package ingestion reads source documents from disk and feeds them into the
// index. Files are read concurrently but indexed one at a time, in the order
// the paths were given, so document ids follow argument order.
package ingestion

import (
	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/index"
)

// Document is the raw content of one source file split on whitespace.
type Document struct {
	Path      string
	Tokens    []string
	SizeBytes int
}

// Result reports the outcome of loading one path. Err is non-nil when the
// file could not be read or was rejected; the rest of the batch still runs.
type Result struct {
	Path  string
	Stats index.DocStats
	Err   error
}

// Summary aggregates a batch of results.
type Summary struct {
	Requested int `json:"requested"`
	Indexed   int `json:"indexed"`
	Failed    int `json:"failed"`
	Tokens    int `json:"tokens"`
}

// Summarize counts indexed and failed documents in results.
func Summarize(results []Result) Summary {
	s := Summary{Requested: len(results)}
	for _, r := range results {
		if r.Err != nil {
			s.Failed++
			continue
		}
		s.Indexed++
		s.Tokens += r.Stats.TokenCount
	}
	return s
}
