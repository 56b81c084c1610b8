package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"

	"github.com/abhirajadhikary06/voiceurresume/internal/blobstore"
	"github.com/abhirajadhikary06/voiceurresume/internal/intake"
	"github.com/abhirajadhikary06/voiceurresume/internal/logger"
	"github.com/abhirajadhikary06/voiceurresume/internal/models"
)

const manifestSuffix = ".job.yaml"

type implWatcher struct {
	inboxDir      string
	archivedDir   string
	blobs         blobstore.Store
	handler       RequestHandler
	logger        logger.Logger
	watcher       *fsnotify.Watcher
	lock          *flock.Flock
	maxConcurrent int
	semaphore     chan struct{}
	settleDelay   time.Duration
	wg            sync.WaitGroup

	mu   sync.Mutex
	seen map[string]bool
}

// Start takes the inbox lock, drains manifests already present, then
// handles new ones as they appear.
func (w *implWatcher) Start(ctx context.Context) error {
	locked, err := w.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire inbox lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("inbox %s is already being watched by another pipeline", w.inboxDir)
	}
	defer w.lock.Unlock()

	w.logger.Info(ctx, "Inbox watcher started (max concurrent: %d). Monitoring: %s", w.maxConcurrent, w.inboxDir)

	existing, err := filepath.Glob(filepath.Join(w.inboxDir, "*"+manifestSuffix))
	if err != nil {
		return fmt.Errorf("scan inbox: %w", err)
	}
	sort.Strings(existing)
	for _, path := range existing {
		if err := w.dispatch(ctx, path); err != nil {
			return w.drain(ctx, err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return w.drain(ctx, ctx.Err())

		case event, ok := <-w.watcher.Events:
			if !ok {
				return w.drain(ctx, fmt.Errorf("watcher events channel closed"))
			}

			if event.Op&fsnotify.Create != fsnotify.Create {
				continue
			}
			if !isManifest(event.Name) {
				w.logger.Debug(ctx, "Ignoring non-manifest file: %s", event.Name)
				continue
			}

			w.logger.Info(ctx, "New manifest detected: %s", event.Name)

			// Small delay to ensure file is fully written
			time.Sleep(w.settleDelay)

			if err := w.dispatch(ctx, event.Name); err != nil {
				return w.drain(ctx, err)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return w.drain(ctx, fmt.Errorf("watcher errors channel closed"))
			}
			w.logger.Error(ctx, "Watcher error: %v", err)
		}
	}
}

func (w *implWatcher) drain(ctx context.Context, err error) error {
	w.logger.Info(ctx, "Waiting for ongoing processing to complete...")
	w.wg.Wait()
	w.logger.Info(ctx, "Inbox watcher stopped")
	return err
}

// dispatch hands a manifest to a worker goroutine once a slot is free.
// A manifest path is only ever dispatched once.
func (w *implWatcher) dispatch(ctx context.Context, path string) error {
	w.mu.Lock()
	if w.seen[path] {
		w.mu.Unlock()
		return nil
	}
	w.seen[path] = true
	w.mu.Unlock()

	// Acquire semaphore slot (blocks if max concurrent reached)
	select {
	case w.semaphore <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer func() { <-w.semaphore }()

		w.handleManifest(ctx, path)
	}()
	return nil
}

// handleManifest runs one manifest and archives it under done/ or failed/
func (w *implWatcher) handleManifest(ctx context.Context, path string) {
	req, locals, err := w.readManifest(ctx, path)
	if err == nil {
		err = w.handler(ctx, req)
	}

	outcome := "done"
	if err != nil {
		outcome = "failed"
		w.logger.Error(ctx, "Failed to process %s: %v", path, err)
	}

	for _, p := range append([]string{path}, locals...) {
		if err := w.archive(p, outcome); err != nil {
			w.logger.Warn(ctx, "Failed to move to archived folder: %v", err)
		}
	}
}

// readManifest parses the manifest. Document and photo entries that name a
// file next to the manifest are uploaded; anything else is taken as a blob key.
func (w *implWatcher) readManifest(ctx context.Context, path string) (models.Request, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Request{}, nil, fmt.Errorf("read manifest: %w", err)
	}

	var req models.Request
	if err := yaml.Unmarshal(data, &req); err != nil {
		return models.Request{}, nil, fmt.Errorf("parse manifest: %w", err)
	}
	if req.ID == "" {
		req.ID = strings.TrimSuffix(filepath.Base(path), manifestSuffix)
	}
	if req.DocumentKey == "" || req.PhotoKey == "" {
		return models.Request{}, nil, fmt.Errorf("manifest %s needs both document and photo", path)
	}

	var locals []string
	for _, field := range []*string{&req.DocumentKey, &req.PhotoKey} {
		local, err := w.inboxPath(*field)
		if err != nil {
			return models.Request{}, locals, err
		}
		if info, statErr := os.Stat(local); statErr != nil || info.IsDir() {
			continue
		}
		key, err := intake.Upload(ctx, w.blobs, req.ID, local)
		if err != nil {
			return models.Request{}, locals, err
		}
		*field = key
		locals = append(locals, local)
	}
	return req, locals, nil
}

// inboxPath resolves a manifest entry inside the inbox. Absolute entries and
// entries that climb out of the inbox are rejected.
func (w *implWatcher) inboxPath(entry string) (string, error) {
	if filepath.IsAbs(entry) || strings.HasPrefix(entry, "/") {
		return "", fmt.Errorf("manifest entry %q is an absolute path", entry)
	}
	local := filepath.Join(w.inboxDir, filepath.FromSlash(entry))
	rel, err := filepath.Rel(w.inboxDir, local)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("manifest entry %q points outside the inbox", entry)
	}
	return local, nil
}

func (w *implWatcher) archive(path, outcome string) error {
	dest := filepath.Join(w.archivedDir, outcome, filepath.Base(path))
	if err := os.Rename(path, dest); err != nil {
		return fmt.Errorf("archive %s: %w", path, err)
	}
	return nil
}

// Stop closes the file watcher
func (w *implWatcher) Stop() error {
	return w.watcher.Close()
}

func isManifest(path string) bool {
	return strings.HasSuffix(strings.ToLower(filepath.Base(path)), manifestSuffix)
}
