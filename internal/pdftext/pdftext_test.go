package pdftext

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
)

// buildPDF writes a minimal single-font PDF with one text line per page.
func buildPDF(pages ...string) []byte {
	var objs []string
	n := len(pages)
	// 1 catalog, 2 pages, 3 font, then page/content pairs
	kids := make([]string, n)
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	objs = append(objs,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), n),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	)
	for i, text := range pages {
		stream := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		objs = append(objs,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
		)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, body := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objs)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return buf.Bytes()
}

func TestOpen_ReadsPages(t *testing.T) {
	doc, err := Open(buildPDF("Invoice 1001", "Total 12.50"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if doc.NumPages() != 2 {
		t.Fatalf("expected 2 pages, got %d", doc.NumPages())
	}

	first, err := doc.PageText(1)
	if err != nil {
		t.Fatalf("PageText(1): %v", err)
	}
	if !strings.Contains(first, "Invoice 1001") {
		t.Errorf("page 1 text = %q", first)
	}
	second, err := doc.PageText(2)
	if err != nil {
		t.Fatalf("PageText(2): %v", err)
	}
	if !strings.Contains(second, "Total 12.50") {
		t.Errorf("page 2 text = %q", second)
	}
}

func TestOpen_Garbage(t *testing.T) {
	if _, err := Open([]byte("definitely not a pdf")); err == nil {
		t.Error("expected error for non-PDF input")
	}
	if _, err := (Opener{}).Open(nil); err == nil {
		t.Error("expected error for empty input")
	}
}
