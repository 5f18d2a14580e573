// Package tokenizer normalises raw document tokens into index terms. It keeps
// ASCII letters only, lower-cases them, removes stop-words, and applies a
// single-pass suffix-stripping stemmer.
package tokenizer

import "strings"

// MaxTokenLength is the number of bytes of a raw token that are considered.
// Longer tokens are truncated before cleaning.
const MaxTokenLength = 99

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "is": {}, "of": {}, "and": {},
	"in": {}, "to": {}, "it": {}, "that": {}, "for": {},
}

// Token represents a single normalised term and its 1-based position in the
// normalised token stream of a document.
type Token struct {
	Term     string
	Position int
}

// IsStopWord reports whether term is one of the fixed function words. The
// check is exact and case-sensitive; callers pass lower-cased input.
func IsStopWord(term string) bool {
	_, ok := stopWords[term]
	return ok
}

// Clean truncates raw to MaxTokenLength bytes and keeps only its ASCII
// letters, lower-cased.
func Clean(raw string) string {
	if len(raw) > MaxTokenLength {
		raw = raw[:MaxTokenLength]
	}
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c >= 'a' && c <= 'z':
			b.WriteByte(c)
		case c >= 'A' && c <= 'Z':
			b.WriteByte(c + ('a' - 'A'))
		}
	}
	return b.String()
}

// Normalize turns one raw token into an index term. ok is false when the
// token is a stop-word or has no letters.
func Normalize(raw string) (term string, ok bool) {
	cleaned := Clean(raw)
	if cleaned == "" || IsStopWord(cleaned) {
		return "", false
	}
	term = Stem(cleaned)
	if term == "" {
		return "", false
	}
	return term, true
}

// Tokenize normalises a stream of raw whitespace-delimited tokens. Positions
// count only the tokens that survive normalisation, starting at 1.
func Tokenize(raw []string) []Token {
	tokens := make([]Token, 0, len(raw))
	pos := 1
	for _, word := range raw {
		term, ok := Normalize(word)
		if !ok {
			continue
		}
		tokens = append(tokens, Token{
			Term:     term,
			Position: pos,
		})
		pos++
	}
	return tokens
}

// TokenizeText splits text on whitespace and normalises the result.
func TokenizeText(text string) []Token {
	return Tokenize(strings.Fields(text))
}

// Stem applies the first matching suffix rule and returns the result. Rules
// are tried in order: -ing, -ed, -ies, -es, -s. Stem is not idempotent:
// stemming an already stemmed word may strip another suffix.
func Stem(word string) string {
	n := len(word)
	switch {
	case n > 3 && strings.HasSuffix(word, "ing"):
		return undouble(word[:n-3])
	case n > 2 && strings.HasSuffix(word, "ed"):
		return undouble(word[:n-2])
	case n > 3 && strings.HasSuffix(word, "ies"):
		return word[:n-3] + "y"
	case n > 2 && strings.HasSuffix(word, "es"):
		return word[:n-2]
	case n > 1 && word[n-1] == 's' && word[n-2] != 's' && word[n-2] != 'i':
		return word[:n-1]
	}
	return word
}

// undouble drops the final character when the last two are identical.
func undouble(word string) string {
	n := len(word)
	if n >= 2 && word[n-1] == word[n-2] {
		return word[:n-1]
	}
	return word
}
