package cli

import (
	"bufio"
	"io"
	"strings"
)

// prompter reads whitespace-separated words and whole lines from an input
// stream. Words left over on a line are consumed by the next read.
type prompter struct {
	scanner *bufio.Scanner
	pending []string
}

func newPrompter(r io.Reader) *prompter {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 4096), 1<<20)
	return &prompter{scanner: s}
}

// word returns the next whitespace-delimited word, reading further lines as
// needed. It returns io.EOF once the input is exhausted.
func (p *prompter) word() (string, error) {
	for len(p.pending) == 0 {
		line, err := p.readLine()
		if err != nil {
			return "", err
		}
		p.pending = strings.Fields(line)
	}
	w := p.pending[0]
	p.pending = p.pending[1:]
	return w, nil
}

// line returns the rest of the current line if words remain on it, otherwise
// the next line.
func (p *prompter) line() (string, error) {
	if len(p.pending) > 0 {
		rest := strings.Join(p.pending, " ")
		p.pending = nil
		return rest, nil
	}
	line, err := p.readLine()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// discard drops the rest of the current line.
func (p *prompter) discard() {
	p.pending = nil
}

func (p *prompter) readLine() (string, error) {
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return p.scanner.Text(), nil
}
