// Package pdf adapts github.com/ledongthuc/pdf to the page-by-page extraction
// contract the ingestion service consumes.
package pdf

import (
	"fmt"
	"os"
	"strings"

	ltpdf "github.com/ledongthuc/pdf"

	"onboarding-agent/internal/usecase"
)

// Extractor opens PDF files for text extraction.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Open parses the PDF at path. The underlying library panics on some
// malformed inputs; those surface as ordinary errors here so a corrupt upload
// never takes down the request.
func (e *Extractor) Open(path string) (doc usecase.PageDocument, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("pdf: open %s: %v", path, r)
		}
	}()

	f, reader, openErr := ltpdf.Open(path)
	if openErr != nil {
		return nil, fmt.Errorf("pdf: open %s: %w", path, openErr)
	}
	return &document{file: f, reader: reader}, nil
}

type document struct {
	file   *os.File
	reader *ltpdf.Reader
}

func (d *document) NumPages() int {
	return d.reader.NumPage()
}

// PageText extracts the text layer of page n (1-based). Per-page library
// panics are converted to errors; the caller decides whether to continue.
func (d *document) PageText(n int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("pdf: page %d: %v", n, r)
		}
	}()

	page := d.reader.Page(n)
	if page.V.IsNull() {
		return "", fmt.Errorf("pdf: page %d has no content", n)
	}
	raw, err := page.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("pdf: page %d: %w", n, err)
	}
	return strings.TrimSpace(raw), nil
}

func (d *document) Close() error {
	return d.file.Close()
}
