package index

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/index/tokenizer"
)

func TestAddDocumentNormalizesAndTracksPositions(t *testing.T) {
	x := New()
	stats := x.AddDocument("doc.txt", strings.Fields("The cats chased the other cats"))

	assert.Equal(t, 0, stats.DocID)
	assert.Equal(t, 4, stats.TokenCount)
	assert.Equal(t, 3, stats.TermCount)

	node := x.Lookup("cat")
	require.NotNil(t, node)
	require.True(t, node.Terminal())
	p, ok := node.Posting(0)
	require.True(t, ok)
	assert.Equal(t, 2, p.Frequency)
	assert.Equal(t, []int{1, 4}, p.Positions)

	assert.Nil(t, x.Lookup("the"))
}

func TestAddDocumentTwiceIndexesOnce(t *testing.T) {
	x := New()
	x.AddDocument("a.txt", []string{"alpha"})
	again := x.AddDocument("a.txt", []string{"alpha"})

	assert.Equal(t, 0, again.DocID)
	assert.Equal(t, 1, x.Registry().Len())
	p, _ := x.Lookup("alpha").Posting(0)
	assert.Equal(t, 1, p.Frequency)
}

func TestInsertedTermsAreFoundAfterStemming(t *testing.T) {
	words := []string{"running", "flies", "boxes", "cats", "searched", "index"}
	x := New()
	x.AddDocument("d.txt", words)

	for _, w := range words {
		node := x.Lookup(tokenizer.Stem(tokenizer.Clean(w)))
		require.NotNil(t, node, w)
		assert.True(t, node.Terminal(), w)
		p, ok := node.Posting(0)
		require.True(t, ok, w)
		assert.GreaterOrEqual(t, p.Frequency, 1)
	}
}

func TestStats(t *testing.T) {
	x := New()
	x.AddDocument("a.txt", []string{"alpha", "beta"})
	x.AddDocument("b.txt", []string{"alpha"})

	s := x.Stats()
	assert.Equal(t, 2, s.Documents)
	assert.Equal(t, 2, s.Terms)
	assert.Equal(t, 3, s.Tokens)
}
