package document

type implExtractor struct {
	openPDF func(data []byte) (pageSource, error)
}

// New creates an Extractor for PDF and DOCX documents
func New() Extractor {
	return &implExtractor{openPDF: openPDF}
}
