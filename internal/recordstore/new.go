package recordstore

import (
	"context"
	"fmt"

	"github.com/abhirajadhikary06/voiceurresume/internal/config"
)

// New opens the record store selected by cfg.Records
func New(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Records {
	case "sqlite", "":
		return OpenSQLite(ctx, cfg.SQLite.Path)
	case "dynamodb":
		return NewDynamo(ctx, cfg.Dynamo)
	default:
		return nil, fmt.Errorf("unknown record store %q", cfg.Records)
	}
}
