// Package index holds the in-memory term trie, its postings and the document
// registry. An Index is filled by a single writer during a batch load and is
// read-only once querying starts.
package index

import (
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/index/tokenizer"
)

// Index owns the trie and the document registry.
type Index struct {
	trie     *Trie
	registry *Registry
	indexed  map[int]struct{}
	tokens   int
	logger   *slog.Logger
}

func New() *Index {
	return &Index{
		trie:     NewTrie(),
		registry: NewRegistry(),
		indexed:  make(map[int]struct{}),
		logger:   slog.Default().With("component", "index"),
	}
}

// AddDocument registers path and inserts its raw whitespace-delimited tokens.
// Each token is cleaned, stop-word filtered and stemmed; positions count the
// surviving tokens from 1. A path that was already indexed is registered once
// and not indexed again.
func (x *Index) AddDocument(path string, raw []string) DocStats {
	docID := x.registry.Add(path)
	stats := DocStats{DocID: docID, Path: path}
	if _, done := x.indexed[docID]; done {
		x.logger.Debug("document already indexed, skipping", "path", path, "doc_id", docID)
		return stats
	}
	x.indexed[docID] = struct{}{}

	tokens := tokenizer.Tokenize(raw)
	distinct := make(map[string]struct{})
	for _, tok := range tokens {
		x.trie.InsertAt(tok.Term, docID, tok.Position)
		distinct[tok.Term] = struct{}{}
	}
	x.tokens += len(tokens)
	stats.TokenCount = len(tokens)
	stats.TermCount = len(distinct)

	x.logger.Debug("document indexed",
		"path", path,
		"doc_id", docID,
		"token_count", stats.TokenCount,
		"term_count", stats.TermCount,
	)
	return stats
}

// Insert records a single pre-normalised term occurrence without a position.
func (x *Index) Insert(term string, docID int) {
	x.trie.Insert(term, docID)
}

// Lookup walks the trie for term without any normalisation.
func (x *Index) Lookup(term string) *Node {
	return x.trie.Lookup(term)
}

// CollectTerminals enumerates terms below node, truncated at limit.
func (x *Index) CollectTerminals(node *Node, limit int) ([]string, bool) {
	return x.trie.CollectTerminals(node, limit)
}

func (x *Index) Trie() *Trie {
	return x.trie
}

func (x *Index) Registry() *Registry {
	return x.registry
}

// Path resolves a document id to its path.
func (x *Index) Path(docID int) string {
	return x.registry.Path(docID)
}

// Stats is a point-in-time summary of the index.
type Stats struct {
	Documents int `json:"documents"`
	Terms     int `json:"terms"`
	Nodes     int `json:"nodes"`
	Tokens    int `json:"tokens"`
}

func (x *Index) Stats() Stats {
	return Stats{
		Documents: x.registry.Len(),
		Terms:     x.trie.TermCount(),
		Nodes:     x.trie.NodeCount(),
		Tokens:    x.tokens,
	}
}
