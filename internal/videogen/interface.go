package videogen

import (
	"context"

	"github.com/abhirajadhikary06/voiceurresume/internal/models"
)

// Input is what a backend animates. Audio may be nil for backends that do
// not embed it. WorkDir is owned by the caller and removed after the run.
type Input struct {
	Photo   *models.PhotoImage
	Audio   *models.AudioClip
	WorkDir string
}

// Backend produces a talking-head video from a photo and speech
type Backend interface {
	Name() string
	// EmbedsAudio reports whether generated videos already carry the speech track
	EmbedsAudio() bool
	Generate(ctx context.Context, in Input) (*models.GeneratedVideo, error)
	// Close releases any loaded model
	Close() error
}
