// Package pdftest writes minimal, valid PDF files for tests.
package pdftest

import (
	"fmt"
	"strings"
)

// Page describes one page of a generated document.
type Page struct {
	Width, Height float64
	// Text is drawn in Helvetica near the top left corner.
	Text string
}

// A4 returns a single A4 page showing text.
func A4(text string) []byte {
	return Document(Page{Width: 595.2756, Height: 841.8898, Text: text})
}

// Document returns a PDF holding pages, with a correct cross-reference
// table.
func Document(pages ...Page) []byte {
	var b strings.Builder
	b.WriteString("%PDF-1.4\n")

	// Objects: 1 catalog, 2 pages, 3 font, then page and content per page.
	nObjs := 3 + 2*len(pages)
	offsets := make([]int, nObjs+1)

	offsets[1] = b.Len()
	b.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	offsets[2] = b.Len()
	fmt.Fprintf(&b, "2 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n", strings.Join(kids, " "), len(pages))

	offsets[3] = b.Len()
	b.WriteString("3 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>\nendobj\n")

	for i, p := range pages {
		pageObj, contentObj := 4+2*i, 5+2*i

		offsets[pageObj] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %.4f %.4f] /Contents %d 0 R /Resources << /Font << /F1 3 0 R >> >> >>\nendobj\n",
			pageObj, p.Width, p.Height, contentObj)

		stream := fmt.Sprintf("BT\n/F1 12 Tf\n40 %.4f Td\n(%s) Tj\nET", p.Height-40, escape(p.Text))
		offsets[contentObj] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n", contentObj, len(stream), stream)
	}

	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n", nObjs+1)
	b.WriteString("0000000000 65535 f \n")
	for i := 1; i <= nObjs; i++ {
		fmt.Fprintf(&b, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", nObjs+1, xref)

	return []byte(b.String())
}

func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "(", `\(`)
	return strings.ReplaceAll(s, ")", `\)`)
}
