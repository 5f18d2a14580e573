package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/report"
	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/searcher/fuzzy"
	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/searcher/query"
	apperrors "github.com/Adithya-Monish-Kumar-K/trie-search/pkg/errors"
)

const notFoundHint = "Try using autocomplete to find similar words."

// session prints query results for one user. Every query goes through the
// executor so it is recorded in history; exports read the engine directly.
type session struct {
	exec       *executor.Executor
	engine     *query.Engine
	exporter   *report.Exporter
	sink       report.Sink
	out        io.Writer
	printLimit int
	logger     *slog.Logger
}

func newSession(s *services, out io.Writer) *session {
	limit := s.cfg.Search.PrintLimit
	if limit <= 0 {
		limit = 10
	}
	return &session{
		exec:       s.exec,
		engine:     query.New(s.index, s.cfg.Index),
		exporter:   report.NewExporter(),
		sink:       s.sink,
		out:        out,
		printLimit: limit,
		logger:     slog.Default().With("component", "session"),
	}
}

// The printers below write their answer to s.out. A no-match is an answer;
// any other error, including an empty query, is returned unprinted.

func notFound(err error) bool {
	return errors.Is(err, apperrors.ErrNotFound)
}

func (s *session) searchWord(ctx context.Context, word string) error {
	match, err := s.exec.Exact(ctx, word)
	if notFound(err) {
		fmt.Fprintln(s.out, "Word not found.")
		fmt.Fprintln(s.out, notFoundHint)
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Word found!")
	for _, line := range match.Lines()[:2] {
		fmt.Fprintln(s.out, line)
	}
	return nil
}

func (s *session) partial(ctx context.Context, fragment string) error {
	c, err := s.exec.Partial(ctx, fragment)
	if notFound(err) {
		fmt.Fprintln(s.out, "No partial matches found.")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Found %d partial matches:\n", len(c.Terms))
	s.printCapped(c.Terms, "matches")
	return nil
}

func (s *session) autocomplete(ctx context.Context, prefix string) error {
	c, err := s.exec.Autocomplete(ctx, prefix)
	if notFound(err) {
		fmt.Fprintln(s.out, "No autocomplete suggestions found.")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Autocomplete suggestions:")
	s.printCapped(c.Terms, "suggestions")
	return nil
}

func (s *session) printCapped(items []string, noun string) {
	for i, item := range items {
		if i == s.printLimit {
			fmt.Fprintf(s.out, "... and %d more %s\n", len(items)-s.printLimit, noun)
			return
		}
		fmt.Fprintf(s.out, "%d. %s\n", i+1, item)
	}
}

func (s *session) details(ctx context.Context, word string) error {
	lines, err := s.exec.Details(ctx, word)
	if notFound(err) {
		fmt.Fprintln(s.out, "Word not found. "+notFoundHint)
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, "=== Word Details ===")
	for _, line := range lines {
		fmt.Fprintln(s.out, line)
	}
	fmt.Fprintln(s.out, "==================")
	return nil
}

func (s *session) advanced(ctx context.Context, phrase string) error {
	set, err := s.exec.Advanced(ctx, phrase)
	switch {
	case notFound(err):
		fmt.Fprintln(s.out, "No files found containing all words in the phrase.")
		fmt.Fprintln(s.out, "Try a simpler search with fewer terms.")
	case errors.Is(err, apperrors.ErrEmptyQuery):
		return apperrors.New(apperrors.ErrEmptyQuery, "Empty search phrase. Please try again.")
	case err != nil:
		return err
	default:
		fmt.Fprintf(s.out, "Found %d files containing all words in: \"%s\"\n", len(set.Paths), phrase)
		printNumbered(s.out, set.Paths)
	}
	return nil
}

func (s *session) spell(ctx context.Context, word string) error {
	suggestions, err := s.exec.Spell(ctx, word)
	if notFound(err) {
		fmt.Fprintln(s.out, "No suggestions found for the word.")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Did you mean:")
	printNumbered(s.out, fuzzy.Terms(suggestions))
	return nil
}

func (s *session) proximity(ctx context.Context, word1, word2 string, maxDistance int) error {
	matches, err := s.exec.Proximity(ctx, word1, word2, maxDistance)
	if notFound(err) {
		fmt.Fprintln(s.out, "No proximity matches found.")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Found %d results:\n", len(matches))
	printNumbered(s.out, query.Strings(matches))
	return nil
}

func (s *session) showHistory(ctx context.Context) error {
	entries, err := s.exec.History(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(s.out, "No search history.")
		return nil
	}
	fmt.Fprintln(s.out, "Search History:")
	printNumbered(s.out, entries)
	return nil
}

// settle prints an error a printer returned, so an interactive session can
// carry on.
func (s *session) settle(err error) {
	if err == nil {
		return
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		fmt.Fprintln(s.out, appErr.Message)
		return
	}
	fmt.Fprintf(s.out, "Error: %v\n", err)
}

// resultLines rebuilds the export lines for a recorded query: its word
// details, or its prefix matches when it is not an indexed word.
func (s *session) resultLines(q string) []string {
	if lines, err := s.engine.WordDetails(q); err == nil {
		return lines
	}
	if c, err := s.engine.PartialSearch(q); err == nil {
		return c.Terms
	}
	return []string{}
}

// archive stores an export in the database sink when one is configured.
func (s *session) archive(ctx context.Context, label string, lines []string) {
	if s.sink == nil {
		return
	}
	id, err := s.sink.Save(ctx, label, lines)
	if err != nil {
		s.logger.Warn("archiving export failed", "label", label, "error", err)
		return
	}
	fmt.Fprintf(s.out, "Archived as export #%d.\n", id)
}

func printNumbered(w io.Writer, items []string) {
	for i, item := range items {
		fmt.Fprintf(w, "%d. %s\n", i+1, item)
	}
}
