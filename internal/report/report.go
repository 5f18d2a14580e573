// Package report renders result lines to text, CSV or single-page PDF files
// and can archive them in Postgres.
package report

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Format selects an output renderer.
type Format string

const (
	FormatText Format = "txt"
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
)

const (
	timestampLayout = "2006-01-02 15:04:05"
	rule            = "--------------------------------"
)

// ParseFormat maps a user-supplied name to a Format. Anything other than csv
// or pdf falls back to plain text.
func ParseFormat(name string) Format {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case FormatCSV:
		return FormatCSV
	case FormatPDF:
		return FormatPDF
	default:
		return FormatText
	}
}

// WithExtension appends ".<format>" to path unless it already ends with it.
func WithExtension(path string, f Format) string {
	ext := "." + string(f)
	if strings.HasSuffix(path, ext) {
		return path
	}
	return path + ext
}

// HistoryLines formats history entries, given newest first, as
// "Query <n>: <q>" with the newest entry numbered 1.
func HistoryLines(entries []string) []string {
	out := make([]string, len(entries))
	for i, q := range entries {
		out[i] = fmt.Sprintf("Query %d: %s", i+1, q)
	}
	return out
}

// Exporter writes report files.
type Exporter struct {
	now    func() time.Time
	logger *slog.Logger
}

func NewExporter() *Exporter {
	return &Exporter{
		now:    time.Now,
		logger: slog.Default().With("component", "report"),
	}
}

// Render writes lines to w in format f.
func (e *Exporter) Render(w io.Writer, f Format, lines []string) error {
	ts := e.now().Format(timestampLayout)
	switch f {
	case FormatCSV:
		return writeCSV(w, lines, ts)
	case FormatPDF:
		return writePDF(w, lines, ts)
	default:
		return writeText(w, lines, ts)
	}
}

// Export renders lines to path, adding the format's extension when missing,
// and returns the path written.
func (e *Exporter) Export(format string, path string, lines []string) (string, error) {
	f := ParseFormat(format)
	return e.writeFile(WithExtension(path, f), func(w io.Writer) error {
		return e.Render(w, f, lines)
	}, len(lines))
}

// ExportHistory writes history entries, newest first. The text format uses a
// numbered history listing; csv and pdf render HistoryLines.
func (e *Exporter) ExportHistory(format string, path string, entries []string) (string, error) {
	f := ParseFormat(format)
	if f != FormatText {
		return e.Export(format, path, HistoryLines(entries))
	}
	return e.writeFile(WithExtension(path, f), func(w io.Writer) error {
		return writeHistoryText(w, entries)
	}, len(entries))
}

func (e *Exporter) writeFile(path string, render func(io.Writer) error, count int) (string, error) {
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	bw := bufio.NewWriter(file)
	if err := render(bw); err != nil {
		file.Close()
		return "", fmt.Errorf("rendering %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		file.Close()
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", path, err)
	}
	e.logger.Info("report exported", "path", path, "lines", count)
	return path, nil
}

func writeText(w io.Writer, lines []string, ts string) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "Search Results - %s\n", ts)
	fmt.Fprintln(bw, rule)
	for i, line := range lines {
		fmt.Fprintf(bw, "%d. %s\n", i+1, line)
	}
	fmt.Fprintln(bw, rule)
	fmt.Fprintf(bw, "Total Results: %d\n", len(lines))
	return bw.Flush()
}

func writeHistoryText(w io.Writer, entries []string) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "Search History")
	fmt.Fprintln(bw, rule)
	for i, q := range entries {
		fmt.Fprintf(bw, "%d. %s\n", i+1, q)
	}
	return bw.Flush()
}
