package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/trie-search/internal/report"
)

const menu = `
Trie Search
1. Search Word
2. Partial Search
3. Autocomplete
4. Show Word Details
5. Advanced Search
6. Spell Check
7. Proximity Search
8. Search History
9. Export Results
10. Exit
Choice: `

const choiceExit = 10

// repl drives the numbered menu over an input and output stream.
type repl struct {
	*session
	in *prompter
}

func newREPL(sess *session, in io.Reader) *repl {
	return &repl{session: sess, in: newPrompter(in)}
}

// askFiles prompts for the files to index when none were given.
func (r *repl) askFiles() ([]string, error) {
	fmt.Fprint(r.out, "Enter files to index (space separated): ")
	line, err := r.in.line()
	if err != nil {
		return nil, err
	}
	return strings.Fields(line), nil
}

// reportLoad prints the outcome of indexing in argument order.
func reportLoad(out io.Writer, results []ingestion.Result) {
	fmt.Fprintln(out, "Indexing files...")
	indexed := 0
	for _, res := range results {
		fmt.Fprintf(out, "Processing: %s...\n", res.Path)
		if res.Err != nil {
			fmt.Fprintf(out, "Error opening file: %s\n", res.Path)
			continue
		}
		indexed++
	}
	fmt.Fprintf(out, "Indexing complete! %d files processed.\n", indexed)
}

// run shows the menu until the user exits or the input ends.
func (r *repl) run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(r.out, menu)
		token, err := r.in.word()
		if err != nil {
			return r.finish(err)
		}
		choice, convErr := strconv.Atoi(token)
		if convErr != nil {
			fmt.Fprintln(r.out, "Invalid input. Please enter a number.")
			r.in.discard()
			continue
		}
		if choice == choiceExit {
			fmt.Fprintln(r.out, "Thank you for using Trie Search!")
			return nil
		}
		if err := r.dispatch(ctx, choice); err != nil {
			return r.finish(err)
		}
	}
}

func (r *repl) finish(err error) error {
	if errors.Is(err, io.EOF) {
		fmt.Fprintln(r.out)
		return nil
	}
	return err
}

func (r *repl) dispatch(ctx context.Context, choice int) error {
	switch choice {
	case 1:
		word, err := r.ask("Enter word to search: ")
		if err != nil {
			return err
		}
		r.settle(r.searchWord(ctx, word))
	case 2:
		word, err := r.ask("Enter partial word to search: ")
		if err != nil {
			return err
		}
		r.settle(r.partial(ctx, word))
	case 3:
		word, err := r.ask("Enter prefix for autocomplete: ")
		if err != nil {
			return err
		}
		r.settle(r.autocomplete(ctx, word))
	case 4:
		word, err := r.ask("Enter word to show details: ")
		if err != nil {
			return err
		}
		r.settle(r.details(ctx, word))
	case 5:
		fmt.Fprint(r.out, "Enter phrase for advanced search (multiple words): ")
		phrase, err := r.in.line()
		if err != nil {
			return err
		}
		r.settle(r.advanced(ctx, phrase))
	case 6:
		word, err := r.ask("Enter word to check spelling: ")
		if err != nil {
			return err
		}
		r.settle(r.spell(ctx, word))
	case 7:
		return r.proximityPrompt(ctx)
	case 8:
		r.settle(r.showHistory(ctx))
	case 9:
		return r.exportPrompt(ctx)
	default:
		fmt.Fprintln(r.out, "Invalid choice. Please select an option from 1-10.")
	}
	return nil
}

func (r *repl) ask(prompt string) (string, error) {
	fmt.Fprint(r.out, prompt)
	return r.in.word()
}

func (r *repl) proximityPrompt(ctx context.Context) error {
	word1, err := r.ask("Enter two words for proximity search: ")
	if err != nil {
		return err
	}
	word2, err := r.in.word()
	if err != nil {
		return err
	}
	raw, err := r.ask("Enter maximum distance between words: ")
	if err != nil {
		return err
	}
	distance, convErr := strconv.Atoi(raw)
	if convErr != nil || distance < 0 {
		fmt.Fprintln(r.out, "Invalid distance. Please enter a non-negative number.")
		return nil
	}
	r.settle(r.proximity(ctx, word1, word2, distance))
	return nil
}

func (r *repl) exportPrompt(ctx context.Context) error {
	kind, err := r.ask("What would you like to export (last/history/word)? ")
	if err != nil {
		return err
	}
	switch kind {
	case "last":
		last, ok, err := r.exec.LastQuery(ctx)
		if err != nil {
			fmt.Fprintf(r.out, "Error: %v\n", err)
			return nil
		}
		if !ok {
			break
		}
		fmt.Fprintf(r.out, "Exporting results for: %s\n", last)
		lines := r.resultLines(last)
		path, format, err := r.askTarget("Enter filename to export results (without extension): ")
		if err != nil {
			return err
		}
		written, exportErr := r.exporter.Export(format, path, lines)
		if exportErr != nil {
			r.logger.Error("export failed", "path", path, "error", exportErr)
			fmt.Fprintln(r.out, "Failed to export results. Please check file permissions or disk space.")
			return nil
		}
		fmt.Fprintf(r.out, "Results exported successfully to: %s\n", written)
		r.readyIn(format)
		r.archive(ctx, "last: "+last, lines)
		return nil
	case "history":
		path, format, err := r.askTarget("Enter filename to export history (without extension): ")
		if err != nil {
			return err
		}
		entries, histErr := r.exec.History(ctx)
		if histErr != nil {
			fmt.Fprintf(r.out, "Error: %v\n", histErr)
			return nil
		}
		written, exportErr := r.exporter.ExportHistory(format, path, entries)
		if exportErr != nil {
			r.logger.Error("history export failed", "path", path, "error", exportErr)
			fmt.Fprintln(r.out, "Failed to export history. Please check file permissions or disk space.")
			return nil
		}
		fmt.Fprintf(r.out, "History exported successfully to: %s\n", written)
		r.readyIn(format)
		r.archive(ctx, "history", report.HistoryLines(entries))
		return nil
	case "word":
		word, err := r.ask("Enter word to export details: ")
		if err != nil {
			return err
		}
		lines, _ := r.engine.WordDetails(word)
		if len(lines) == 0 {
			fmt.Fprintf(r.out, "No details found for the word '%s'. Nothing to export.\n", word)
			return nil
		}
		path, format, err := r.askTarget("Enter filename for export (without extension): ")
		if err != nil {
			return err
		}
		written, exportErr := r.exporter.Export(format, path, lines)
		if exportErr != nil {
			r.logger.Error("word export failed", "path", path, "error", exportErr)
			fmt.Fprintln(r.out, "Failed to export word details. Please check file permissions or disk space.")
			return nil
		}
		fmt.Fprintf(r.out, "Word details for '%s' exported successfully to: %s\n", word, written)
		r.readyIn(format)
		r.archive(ctx, "word: "+word, lines)
		return nil
	}
	fmt.Fprintln(r.out, "Invalid export type or no search history available.")
	return nil
}

func (r *repl) askTarget(prompt string) (path string, format string, err error) {
	if path, err = r.ask(prompt); err != nil {
		return "", "", err
	}
	if format, err = r.ask("Export format (txt/csv/pdf): "); err != nil {
		return "", "", err
	}
	return path, format, nil
}

func (r *repl) readyIn(format string) {
	fmt.Fprintf(r.out, "File is ready to be downloaded in %s format.\n", report.ParseFormat(format))
}
