package recordstore

import (
	"context"

	"github.com/abhirajadhikary06/voiceurresume/internal/models"
)

// Store persists one VideoRecord per finished request
type Store interface {
	Save(ctx context.Context, rec models.VideoRecord) error
	// List returns the newest records first; limit <= 0 means all
	List(ctx context.Context, limit int) ([]models.VideoRecord, error)
	Close() error
}
