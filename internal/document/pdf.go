package document

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/abhirajadhikary06/voiceurresume/internal/errkind"
)

// pageSource exposes per-page text of a parsed PDF, pages numbered from 1
type pageSource interface {
	NumPage() int
	PageText(i int) (string, error)
}

type ledongthucSource struct {
	r *pdf.Reader
}

func openPDF(data []byte) (src pageSource, err error) {
	// The parser panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			src, err = nil, fmt.Errorf("parse pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse pdf: %w", err)
	}
	return &ledongthucSource{r: r}, nil
}

func (s *ledongthucSource) NumPage() int {
	return s.r.NumPage()
}

func (s *ledongthucSource) PageText(i int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("page %d: %v", i, r)
		}
	}()

	page := s.r.Page(i)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}

// extractPDF concatenates page texts in order; pages that yield no text
// contribute an empty string.
func (e *implExtractor) extractPDF(data []byte) (string, error) {
	src, err := e.openPDF(data)
	if err != nil {
		return "", errkind.Wrap(errkind.ErrIO, "extract", "pdf", "", err)
	}

	var b strings.Builder
	for i := 1; i <= src.NumPage(); i++ {
		text, err := src.PageText(i)
		if err != nil {
			continue
		}
		b.WriteString(text)
	}
	return b.String(), nil
}
