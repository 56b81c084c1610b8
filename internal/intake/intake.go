// Package intake turns local files into blob-backed pipeline requests.
package intake

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/abhirajadhikary06/voiceurresume/internal/blobstore"
)

// UploadKey is where a submitted file for request id is stored
func UploadKey(id, localPath string) string {
	return path.Join("uploads", id, filepath.Base(localPath))
}

// Upload copies a local file into the blob store and returns its key
func Upload(ctx context.Context, blobs blobstore.Store, id, localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", localPath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", localPath, err)
	}

	key := UploadKey(id, localPath)
	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(localPath)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := blobs.Put(ctx, key, f, info.Size(), contentType); err != nil {
		return "", fmt.Errorf("upload %s: %w", localPath, err)
	}
	return key, nil
}
