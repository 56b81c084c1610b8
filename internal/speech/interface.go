package speech

import (
	"context"

	"github.com/abhirajadhikary06/voiceurresume/internal/models"
)

// Synthesizer turns narration text into an audio file at destination.
// The file belongs to the caller, who deletes it.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, language, destination string) (*models.AudioClip, error)
}
