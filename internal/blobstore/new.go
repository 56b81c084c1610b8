package blobstore

import (
	"context"
	"fmt"

	"github.com/abhirajadhikary06/voiceurresume/internal/config"
)

// New opens the blob store selected by cfg.Blob
func New(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Blob {
	case "local", "":
		return NewLocal(cfg.Local.Root)
	case "minio":
		return NewMinIO(ctx, cfg.MinIO)
	case "s3":
		return NewS3(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown blob store %q", cfg.Blob)
	}
}
