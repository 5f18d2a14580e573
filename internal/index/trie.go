package index

// Node is one letter transition in the trie. A terminal node carries the
// canonical spelling of the term ending at it and the postings of that term.
type Node struct {
	children map[byte]*Node
	terminal bool
	term     string
	postings map[int]*Posting
	docOrder []int
}

func newNode() *Node {
	return &Node{}
}

// Terminal reports whether a term ends at this node.
func (n *Node) Terminal() bool {
	return n != nil && n.terminal
}

// Term returns the canonical term: the first spelling inserted at this node.
func (n *Node) Term() string {
	if n == nil {
		return ""
	}
	return n.term
}

// Child returns the child reached by letter c, or nil.
func (n *Node) Child(c byte) *Node {
	if n == nil || n.children == nil {
		return nil
	}
	return n.children[c]
}

// Posting returns a copy of the posting for docID.
func (n *Node) Posting(docID int) (Posting, bool) {
	if n == nil || n.postings == nil {
		return Posting{}, false
	}
	p, ok := n.postings[docID]
	if !ok {
		return Posting{}, false
	}
	return copyPosting(p), true
}

// Postings returns copies of all postings in first-insertion document order.
func (n *Node) Postings() PostingList {
	if n == nil {
		return nil
	}
	out := make(PostingList, 0, len(n.docOrder))
	for _, id := range n.docOrder {
		out = append(out, copyPosting(n.postings[id]))
	}
	return out
}

// DocCount returns the number of documents with a posting at this node.
func (n *Node) DocCount() int {
	if n == nil {
		return 0
	}
	return len(n.docOrder)
}

func (n *Node) child(c byte) *Node {
	if n.children == nil {
		n.children = make(map[byte]*Node, 1)
	}
	next, ok := n.children[c]
	if !ok {
		next = newNode()
		n.children[c] = next
	}
	return next
}

func (n *Node) posting(docID int) *Posting {
	if n.postings == nil {
		n.postings = make(map[int]*Posting, 1)
	}
	p, ok := n.postings[docID]
	if !ok {
		p = &Posting{DocID: docID}
		n.postings[docID] = p
		n.docOrder = append(n.docOrder, docID)
	}
	return p
}

func copyPosting(p *Posting) Posting {
	out := Posting{DocID: p.DocID, Frequency: p.Frequency}
	if len(p.Positions) > 0 {
		out.Positions = make([]int, len(p.Positions))
		copy(out.Positions, p.Positions)
	}
	return out
}

// Trie is a 26-way prefix tree over lower-case ASCII letters. It is built by
// a single writer and read-only afterwards.
type Trie struct {
	root  *Node
	nodes int
	terms int
}

func NewTrie() *Trie {
	return &Trie{root: newNode(), nodes: 1}
}

// Root returns the root node.
func (t *Trie) Root() *Node {
	return t.root
}

// Insert records one occurrence of raw in docID without a position.
func (t *Trie) Insert(raw string, docID int) *Node {
	node := t.walkCreate(raw)
	p := node.posting(docID)
	p.Frequency++
	return node
}

// InsertAt records one occurrence of raw in docID at the given position.
func (t *Trie) InsertAt(raw string, docID int, position int) *Node {
	node := t.walkCreate(raw)
	p := node.posting(docID)
	p.Frequency++
	p.Positions = append(p.Positions, position)
	return node
}

// walkCreate follows raw through the trie, creating missing nodes. Characters
// that are not ASCII letters are skipped, so the whole raw token maps onto a
// single path.
func (t *Trie) walkCreate(raw string) *Node {
	current := t.root
	for i := 0; i < len(raw); i++ {
		c, ok := letter(raw[i])
		if !ok {
			continue
		}
		if current.Child(c) == nil {
			t.nodes++
		}
		current = current.child(c)
	}
	if !current.terminal {
		current.terminal = true
		t.terms++
	}
	if current.term == "" {
		current.term = raw
	}
	return current
}

// Lookup walks term letter by letter. Any non-letter character or missing
// edge aborts the walk and Lookup returns nil. The returned node need not be
// terminal.
func (t *Trie) Lookup(term string) *Node {
	current := t.root
	for i := 0; i < len(term); i++ {
		c, ok := letter(term[i])
		if !ok {
			return nil
		}
		current = current.Child(c)
		if current == nil {
			return nil
		}
	}
	return current
}

// CollectTerminals returns the canonical terms at or below node in
// depth-first, ascending-letter order. Collection stops once limit terms have
// been found; truncated reports whether terms beyond the limit exist. A limit
// of zero or less collects everything.
func (t *Trie) CollectTerminals(node *Node, limit int) (terms []string, truncated bool) {
	terms = make([]string, 0)
	if node == nil {
		return terms, false
	}
	truncated = collect(node, limit, &terms)
	return terms, truncated
}

func collect(node *Node, limit int, out *[]string) bool {
	if node.terminal {
		if limit > 0 && len(*out) >= limit {
			return true
		}
		*out = append(*out, node.term)
	}
	if node.children == nil {
		return false
	}
	for c := byte('a'); c <= 'z'; c++ {
		next, ok := node.children[c]
		if !ok {
			continue
		}
		if collect(next, limit, out) {
			return true
		}
	}
	return false
}

// NodeCount returns the number of nodes including the root.
func (t *Trie) NodeCount() int {
	return t.nodes
}

// TermCount returns the number of terminal nodes.
func (t *Trie) TermCount() int {
	return t.terms
}

func letter(c byte) (byte, bool) {
	switch {
	case c >= 'a' && c <= 'z':
		return c, true
	case c >= 'A' && c <= 'Z':
		return c + ('a' - 'A'), true
	}
	return 0, false
}
