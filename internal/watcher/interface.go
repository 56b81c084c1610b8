package watcher

import (
	"context"

	"github.com/abhirajadhikary06/voiceurresume/internal/models"
)

// Watcher defines the interface for inbox monitoring
type Watcher interface {
	Start(ctx context.Context) error
	Stop() error
}

// RequestHandler runs one request taken from a manifest
type RequestHandler func(ctx context.Context, req models.Request) error
