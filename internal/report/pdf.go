package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// Page layout in PDF points on a US Letter media box.
const (
	pdfFirstLineY = 680
	pdfLineStep   = 20
	pdfBottomY    = 100
)

var pdfEscaper = strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)

// writePDF emits a single-page PDF 1.4 document with a Helvetica text
// stream. Lines that do not fit on the page are dropped; the total still
// counts them.
func writePDF(w io.Writer, lines []string, ts string) error {
	var buf bytes.Buffer
	var offsets []int
	object := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")
	object("<<\n/Type /Catalog\n/Pages 2 0 R\n>>")
	object("<<\n/Type /Pages\n/Kids [3 0 R]\n/Count 1\n>>")
	object("<<\n/Type /Page\n/Parent 2 0 R\n" +
		"/Resources <<\n  /Font <<\n    /F1 4 0 R\n  >>\n>>\n" +
		"/MediaBox [0 0 612 792]\n/Contents 5 0 R\n>>")
	object("<<\n/Type /Font\n/Subtype /Type1\n/BaseFont /Helvetica\n/Encoding /WinAnsiEncoding\n>>")
	content := pdfContent(lines, ts)
	object(fmt.Sprintf("<<\n/Length %d\n>>\nstream\n%s\nendstream", len(content), content))

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<<\n/Size %d\n/Root 1 0 R\n>>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)

	_, err := w.Write(buf.Bytes())
	return err
}

func pdfContent(lines []string, ts string) string {
	var b strings.Builder
	b.WriteString("BT\n/F1 14 Tf\n1 0 0 1 50 750 Tm\n(trie-search - Export Results) Tj\n")
	fmt.Fprintf(&b, "/F1 10 Tf\n1 0 0 1 50 725 Tm\n(Generated on: %s) Tj\n", pdfEscaper.Replace(ts))
	y := pdfFirstLineY
	for i, line := range lines {
		if y < pdfBottomY {
			break
		}
		fmt.Fprintf(&b, "1 0 0 1 50 %d Tm\n(%d. %s) Tj\n", y, i+1, pdfEscaper.Replace(line))
		y -= pdfLineStep
	}
	fmt.Fprintf(&b, "1 0 0 1 50 50 Tm\n(Total Results: %d) Tj\nET", len(lines))
	return b.String()
}
