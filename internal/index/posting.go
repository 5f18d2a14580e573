package index

// Posting records how often a term occurs in one document and the normalised
// token positions of those occurrences, in insertion order.
type Posting struct {
	DocID     int   `json:"doc_id"`
	Frequency int   `json:"frequency"`
	Positions []int `json:"positions,omitempty"`
}

// PostingList is a node's postings in first-insertion document order.
type PostingList []Posting

// TotalFrequency sums the frequencies of every posting in the list.
func (pl PostingList) TotalFrequency() int {
	total := 0
	for _, p := range pl {
		total += p.Frequency
	}
	return total
}

// Find returns the posting for docID, if present.
func (pl PostingList) Find(docID int) (Posting, bool) {
	for _, p := range pl {
		if p.DocID == docID {
			return p, true
		}
	}
	return Posting{}, false
}

// DocStats summarises what AddDocument did with one document.
type DocStats struct {
	DocID      int
	Path       string
	TokenCount int
	TermCount  int
}
