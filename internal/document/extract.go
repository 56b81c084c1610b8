package document

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/abhirajadhikary06/voiceurresume/internal/errkind"
	"github.com/abhirajadhikary06/voiceurresume/internal/models"
)

var (
	pdfMagic = []byte("%PDF-")
	zipMagic = []byte("PK\x03\x04")
)

// Extract dispatches on the document's format tag
func (e *implExtractor) Extract(doc models.SourceDocument) (string, error) {
	switch doc.Format {
	case models.FormatPDF:
		return e.extractPDF(doc.Data)
	case models.FormatDOCX:
		return extractDOCX(doc.Data)
	default:
		return "", errkind.Wrap(errkind.ErrUnsupportedFormat, "extract", "", string(doc.Format), nil)
	}
}

// DetectFormat decides the format tag from the file name and checks that the
// content starts with the matching signature.
func DetectFormat(name string, data []byte) (models.Format, error) {
	ext := strings.ToLower(filepath.Ext(name))
	switch {
	case ext == ".pdf" && bytes.HasPrefix(data, pdfMagic):
		return models.FormatPDF, nil
	case ext == ".docx" && bytes.HasPrefix(data, zipMagic):
		return models.FormatDOCX, nil
	case ext == ".pdf" || ext == ".docx":
		return "", errkind.Wrap(errkind.ErrUnsupportedFormat, "extract", "detect", name+": content does not match extension", nil)
	default:
		return "", errkind.Wrap(errkind.ErrUnsupportedFormat, "extract", "detect", name+": only PDF and DOCX are accepted", nil)
	}
}
