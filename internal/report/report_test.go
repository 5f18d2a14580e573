package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedExporter() *Exporter {
	e := NewExporter()
	e.now = func() time.Time { return time.Date(2024, 3, 9, 14, 5, 6, 0, time.Local) }
	return e
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatCSV, ParseFormat("CSV"))
	assert.Equal(t, FormatPDF, ParseFormat(" pdf "))
	assert.Equal(t, FormatText, ParseFormat("txt"))
	assert.Equal(t, FormatText, ParseFormat("docx"))
}

func TestWithExtension(t *testing.T) {
	assert.Equal(t, "out.txt", WithExtension("out", FormatText))
	assert.Equal(t, "out.csv", WithExtension("out.csv", FormatCSV))
	assert.Equal(t, "out.txt.pdf", WithExtension("out.txt", FormatPDF))
	assert.Equal(t, "a.pdf", WithExtension("a", FormatPDF))
}

func TestHistoryLines(t *testing.T) {
	assert.Equal(t, []string{"Query 1: dog", "Query 2: cat"}, HistoryLines([]string{"dog", "cat"}))
	assert.Empty(t, HistoryLines(nil))
}

func TestRenderText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, fixedExporter().Render(&buf, FormatText, []string{"a.txt: 2 times", "b.txt: 1 times"}))
	want := "Search Results - 2024-03-09 14:05:06\n" +
		"--------------------------------\n" +
		"1. a.txt: 2 times\n" +
		"2. b.txt: 1 times\n" +
		"--------------------------------\n" +
		"Total Results: 2\n"
	assert.Equal(t, want, buf.String())
}

func TestRenderCSVQuotesCommas(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, fixedExporter().Render(&buf, FormatCSV, []string{"plain", "with, comma"}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Index", "Result", "Timestamp"},
		{"1", "plain", "2024-03-09 14:05:06"},
		{"2", "with, comma", "2024-03-09 14:05:06"},
	}, records)
}

func TestRenderPDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, fixedExporter().Render(&buf, FormatPDF, []string{`f(x) \ y`}))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "%PDF-1.4\n"))
	assert.True(t, strings.HasSuffix(out, "%%EOF\n"))
	assert.Contains(t, out, "/BaseFont /Helvetica")
	assert.Contains(t, out, `(1. f\(x\) \\ y) Tj`)
	assert.Contains(t, out, "(Total Results: 1) Tj")
	assert.Contains(t, out, "xref\n0 6\n")

	idx := strings.Index(out, "startxref\n")
	require.Positive(t, idx)
	var xref int
	_, err := fmt.Sscanf(out[idx+len("startxref\n"):], "%d", &xref)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out[xref:], "xref\n"), "startxref points at the xref table")

	objAt := strings.Index(out, "3 0 obj")
	assert.Contains(t, out, fmt.Sprintf("%010d 00000 n \n", objAt))
}

func TestRenderPDFDropsOverflowLines(t *testing.T) {
	lines := make([]string, 40)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d", i+1)
	}
	var buf bytes.Buffer
	require.NoError(t, fixedExporter().Render(&buf, FormatPDF, lines))
	out := buf.String()

	assert.Contains(t, out, "(30. line 30) Tj")
	assert.NotContains(t, out, "(31. line 31) Tj")
	assert.Contains(t, out, "(Total Results: 40) Tj")
}

func TestExportAppendsExtension(t *testing.T) {
	dir := t.TempDir()
	e := fixedExporter()

	path, err := e.Export("csv", filepath.Join(dir, "results"), []string{"x"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "results.csv"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Index,Result,Timestamp\n"))

	path, err = e.Export("weird", filepath.Join(dir, "fallback"), []string{"x"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "fallback.txt"), path)
}

func TestExportHistory(t *testing.T) {
	dir := t.TempDir()
	e := fixedExporter()
	entries := []string{"newest", "older"}

	path, err := e.ExportHistory("txt", filepath.Join(dir, "hist"), entries)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Search History\n--------------------------------\n1. newest\n2. older\n", string(data))

	path, err = e.ExportHistory("csv", filepath.Join(dir, "hist"), entries)
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "1,Query 1: newest,")
}

func TestExportUnwritablePath(t *testing.T) {
	_, err := fixedExporter().Export("txt", filepath.Join(t.TempDir(), "missing", "dir", "out"), nil)
	assert.Error(t, err)
}
