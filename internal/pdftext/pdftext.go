// Package pdftext reads the text layer of PDF documents.
package pdftext

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/kailas-cloud/ocrchat/internal/domain"
)

// Document is an opened PDF.
type Document struct {
	r *pdf.Reader
}

// Open parses the PDF structure. The parser panics on some malformed inputs;
// those are reported as errors.
func Open(data []byte) (doc *Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("parse pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse pdf: %w", err)
	}
	return &Document{r: r}, nil
}

// NumPages implements domain.PageSource.
func (d *Document) NumPages() int { return d.r.NumPage() }

// PageText implements domain.PageSource.
func (d *Document) PageText(page int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("page %d: %v", page, r)
		}
	}()

	p := d.r.Page(page)
	if p.V.IsNull() {
		return "", fmt.Errorf("page %d: not found", page)
	}
	text, err = p.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("page %d: %w", page, err)
	}
	return text, nil
}

// Opener adapts Open to the ingestion pipeline.
type Opener struct{}

// Open implements the ingest PDF opener contract.
func (Opener) Open(data []byte) (domain.PageSource, error) {
	doc, err := Open(data)
	if err != nil {
		return nil, err
	}
	return doc, nil
}
