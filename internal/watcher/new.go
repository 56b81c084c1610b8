package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gofrs/flock"

	"github.com/abhirajadhikary06/voiceurresume/internal/blobstore"
	"github.com/abhirajadhikary06/voiceurresume/internal/logger"
)

// LockFile is created inside the inbox while a watcher drains it
const LockFile = ".pipeline.lock"

// New creates a new Watcher instance with concurrency control
func New(inboxDir, archivedDir string, blobs blobstore.Store, handler RequestHandler, log logger.Logger, maxConcurrent int) (Watcher, error) {
	for _, dir := range []string{inboxDir, filepath.Join(archivedDir, "done"), filepath.Join(archivedDir, "failed")} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := watcher.Add(inboxDir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	// Default to 2 concurrent if not specified
	if maxConcurrent <= 0 {
		maxConcurrent = 2
	}

	return &implWatcher{
		inboxDir:      inboxDir,
		archivedDir:   archivedDir,
		blobs:         blobs,
		handler:       handler,
		logger:        log,
		watcher:       watcher,
		lock:          flock.New(filepath.Join(inboxDir, LockFile)),
		maxConcurrent: maxConcurrent,
		semaphore:     make(chan struct{}, maxConcurrent),
		settleDelay:   500 * time.Millisecond,
		seen:          make(map[string]bool),
	}, nil
}
