package document

import "github.com/abhirajadhikary06/voiceurresume/internal/models"

// Extractor turns an uploaded document into plain text
type Extractor interface {
	Extract(doc models.SourceDocument) (string, error)
}
