// Package query implements the read-only search operations over a built
// index: exact lookup, prefix enumeration, conjunctive search and proximity
// search. Spell checking lives in the fuzzy package and is exposed here so
// callers have a single entry point.
package query

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/index"
	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/index/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/searcher/fuzzy"
	"github.com/Adithya-Monish-Kumar-K/trie-search/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/trie-search/pkg/errors"
)

// Kind names a query operation in logs, metrics, cache keys and events.
type Kind string

const (
	KindExact        Kind = "exact"
	KindDetails      Kind = "details"
	KindAutocomplete Kind = "autocomplete"
	KindPartial      Kind = "partial"
	KindAdvanced     Kind = "advanced"
	KindSpell        Kind = "spell"
	KindProximity    Kind = "proximity"
)

// DocFrequency is the number of occurrences of a term in one document.
type DocFrequency struct {
	DocID     int    `json:"doc_id"`
	Path      string `json:"path"`
	Frequency int    `json:"frequency"`
}

// WordMatch is the result of an exact search.
type WordMatch struct {
	Query     string         `json:"query"`
	Term      string         `json:"term"`
	Total     int            `json:"total"`
	Documents []DocFrequency `json:"documents"`
}

// Completion is the result of a prefix enumeration.
type Completion struct {
	Prefix    string   `json:"prefix"`
	Terms     []string `json:"terms"`
	Truncated bool     `json:"truncated"`
}

// DocumentSet is the result of a conjunctive search.
type DocumentSet struct {
	Query     string   `json:"query"`
	Terms     []string `json:"terms"`
	Paths     []string `json:"paths"`
	Truncated bool     `json:"truncated"`
}

// ProximityMatch reports the first qualifying pair of positions found in a
// document.
type ProximityMatch struct {
	DocID    int    `json:"doc_id"`
	Path     string `json:"path"`
	Distance int    `json:"distance"`
}

func (m ProximityMatch) String() string {
	return fmt.Sprintf("%s (distance: %d)", m.Path, m.Distance)
}

// Engine answers queries against an index that is no longer being written.
type Engine struct {
	idx    *index.Index
	cfg    config.IndexConfig
	logger *slog.Logger
}

func New(idx *index.Index, cfg config.IndexConfig) *Engine {
	return &Engine{
		idx:    idx,
		cfg:    cfg,
		logger: slog.Default().With("component", "query-engine"),
	}
}

// ExactSearch stems word and looks it up. It returns ErrEmptyQuery for a blank
// word and ErrNotFound when no terminal node is reached.
func (e *Engine) ExactSearch(word string) (*WordMatch, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return nil, apperrors.ErrEmptyQuery
	}
	node := e.idx.Lookup(tokenizer.Stem(word))
	if !node.Terminal() {
		e.logger.Debug("exact search miss", "query", word)
		return nil, apperrors.ErrNotFound
	}
	match := &WordMatch{
		Query:     word,
		Term:      node.Term(),
		Documents: make([]DocFrequency, 0, node.DocCount()),
	}
	for _, p := range node.Postings() {
		match.Total += p.Frequency
		match.Documents = append(match.Documents, DocFrequency{
			DocID:     p.DocID,
			Path:      e.idx.Path(p.DocID),
			Frequency: p.Frequency,
		})
	}
	return match, nil
}

// Lines formats the match as report lines: the word and its stem, the total
// count, then one line per document.
func (m *WordMatch) Lines() []string {
	lines := make([]string, 0, 3+len(m.Documents))
	lines = append(lines,
		fmt.Sprintf("Word: %s [stemmed: %s]", m.Query, m.Term),
		fmt.Sprintf("Total occurrences: %d", m.Total),
		"Occurrences by file:",
	)
	for _, d := range m.Documents {
		lines = append(lines, fmt.Sprintf("  - %s: %d times", d.Path, d.Frequency))
	}
	return lines
}

// WordDetails formats an exact search as report lines. It returns no lines
// when the word is absent.
func (e *Engine) WordDetails(word string) ([]string, error) {
	match, err := e.ExactSearch(word)
	if err != nil {
		return []string{}, err
	}
	return match.Lines(), nil
}

// Autocomplete lists indexed terms starting with prefix, capped at
// MaxSuggestions. The prefix is not stemmed.
func (e *Engine) Autocomplete(prefix string) (*Completion, error) {
	return e.prefixWalk(prefix, e.cfg.MaxSuggestions)
}

// PartialSearch lists indexed terms starting with fragment, capped at
// MaxResults. It is a left-anchored prefix walk, not a substring search.
func (e *Engine) PartialSearch(fragment string) (*Completion, error) {
	return e.prefixWalk(fragment, e.cfg.MaxResults)
}

func (e *Engine) prefixWalk(prefix string, limit int) (*Completion, error) {
	prefix = strings.TrimSpace(prefix)
	result := &Completion{Prefix: prefix, Terms: []string{}}
	if prefix == "" {
		return result, apperrors.ErrEmptyQuery
	}
	node := e.idx.Lookup(prefix)
	if node == nil {
		return result, apperrors.ErrNotFound
	}
	result.Terms, result.Truncated = e.idx.CollectTerminals(node, limit)
	if len(result.Terms) == 0 {
		return result, apperrors.ErrNotFound
	}
	if result.Truncated {
		e.logger.Debug("prefix enumeration truncated", "prefix", prefix, "limit", limit)
	}
	return result, nil
}

// AdvancedSearch returns the documents containing every whitespace-separated
// term of phrase. Each term is stemmed; if any term is absent the result is
// empty. Paths are ordered by ascending document id.
func (e *Engine) AdvancedSearch(phrase string) (*DocumentSet, error) {
	words := strings.Fields(phrase)
	result := &DocumentSet{Query: phrase, Terms: make([]string, 0, len(words)), Paths: []string{}}
	if len(words) == 0 {
		return result, apperrors.ErrEmptyQuery
	}

	matches := make([]int, e.idx.Registry().Len())
	for w, word := range words {
		term := tokenizer.Stem(word)
		result.Terms = append(result.Terms, term)
		node := e.idx.Lookup(term)
		if !node.Terminal() {
			e.logger.Debug("advanced search term absent", "term", term)
			return &DocumentSet{Query: phrase, Terms: result.Terms, Paths: []string{}}, apperrors.ErrNotFound
		}
		// A document advances only while it has matched every earlier term.
		for _, p := range node.Postings() {
			if p.DocID < 0 || p.DocID >= len(matches) {
				continue
			}
			if w == 0 || matches[p.DocID] == w {
				matches[p.DocID]++
			}
		}
	}

	for docID, count := range matches {
		if count != len(words) {
			continue
		}
		if e.cfg.MaxResults > 0 && len(result.Paths) >= e.cfg.MaxResults {
			result.Truncated = true
			break
		}
		result.Paths = append(result.Paths, e.idx.Path(docID))
	}
	if len(result.Paths) == 0 {
		return result, apperrors.ErrNotFound
	}
	return result, nil
}

// SpellCheck ranks indexed terms within MaxEditDistance of word.
func (e *Engine) SpellCheck(word string) ([]fuzzy.Suggestion, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return []fuzzy.Suggestion{}, apperrors.ErrEmptyQuery
	}
	suggestions := fuzzy.Suggest(e.idx.Trie(), word, e.cfg.MaxSuggestions, e.cfg.MaxEditDistance)
	if len(suggestions) == 0 {
		return suggestions, apperrors.ErrNotFound
	}
	return suggestions, nil
}

// ProximitySearch reports the documents in which stemmed word1 and word2
// occur within maxDistance normalised positions of each other. Only the
// first qualifying pair, in enumeration order, is reported per document.
func (e *Engine) ProximitySearch(word1, word2 string, maxDistance int) ([]ProximityMatch, error) {
	word1, word2 = strings.TrimSpace(word1), strings.TrimSpace(word2)
	if word1 == "" || word2 == "" {
		return []ProximityMatch{}, apperrors.ErrEmptyQuery
	}
	first := e.idx.Lookup(tokenizer.Stem(word1))
	second := e.idx.Lookup(tokenizer.Stem(word2))

	candidates := roaring.New()
	for _, n := range []*index.Node{first, second} {
		if !n.Terminal() {
			continue
		}
		for _, p := range n.Postings() {
			candidates.Add(uint32(p.DocID))
		}
	}

	results := make([]ProximityMatch, 0)
	it := candidates.Iterator()
	for it.HasNext() {
		docID := int(it.Next())
		positions1 := positionsOf(first, docID)
		positions2 := positionsOf(second, docID)
		if d, ok := firstWithin(positions1, positions2, maxDistance); ok {
			results = append(results, ProximityMatch{
				DocID:    docID,
				Path:     e.idx.Path(docID),
				Distance: d,
			})
		}
	}
	if len(results) == 0 {
		return results, apperrors.ErrNotFound
	}
	return results, nil
}

func positionsOf(n *index.Node, docID int) []int {
	if !n.Terminal() {
		return nil
	}
	p, ok := n.Posting(docID)
	if !ok {
		return nil
	}
	return p.Positions
}

func firstWithin(positions1, positions2 []int, maxDistance int) (int, bool) {
	for _, p1 := range positions1 {
		for _, p2 := range positions2 {
			d := p1 - p2
			if d < 0 {
				d = -d
			}
			if d <= maxDistance {
				return d, true
			}
		}
	}
	return 0, false
}

// Strings renders proximity matches as report lines.
func Strings(matches []ProximityMatch) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.String()
	}
	return out
}
