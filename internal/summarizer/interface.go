package summarizer

import "context"

// Summarizer condenses document text into a narration of minWords..maxWords
// words. Implementations are deterministic: equal inputs give equal output.
type Summarizer interface {
	Summarize(ctx context.Context, text string, minWords, maxWords int) (string, error)
	Close() error
}
