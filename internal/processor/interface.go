package processor

import (
	"context"
	"errors"

	"github.com/abhirajadhikary06/voiceurresume/internal/models"
)

// ErrGenerationFailed is the only error Process returns. The originating
// cause is logged with its kind and stage.
var ErrGenerationFailed = errors.New("video generation failed")

// Processor runs one request through the whole pipeline
type Processor interface {
	Process(ctx context.Context, req models.Request) (*Result, error)
}
