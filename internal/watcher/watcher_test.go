package watcher

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/abhirajadhikary06/voiceurresume/internal/blobstore"
	"github.com/abhirajadhikary06/voiceurresume/internal/logger"
	"github.com/abhirajadhikary06/voiceurresume/internal/models"
)

type recorder struct {
	mu   sync.Mutex
	reqs []models.Request
	got  chan models.Request
	err  error
}

func newRecorder() *recorder {
	return &recorder{got: make(chan models.Request, 10)}
}

func (r *recorder) handle(ctx context.Context, req models.Request) error {
	r.mu.Lock()
	r.reqs = append(r.reqs, req)
	r.mu.Unlock()
	r.got <- req
	return r.err
}

func newTestWatcher(t *testing.T, handler RequestHandler) (*implWatcher, string, string) {
	t.Helper()
	root := t.TempDir()
	inbox := filepath.Join(root, "inbox")
	archived := filepath.Join(root, "archived")
	blobs, err := blobstore.NewLocal(filepath.Join(root, "media"))
	if err != nil {
		t.Fatal(err)
	}

	w, err := New(inbox, archived, blobs, handler, logger.NewWriter("error", "json", io.Discard), 2)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { w.Stop() })
	impl := w.(*implWatcher)
	impl.settleDelay = 10 * time.Millisecond
	return impl, inbox, archived
}

func waitFor(t *testing.T, ch chan models.Request) models.Request {
	t.Helper()
	select {
	case req := <-ch:
		return req
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for handler")
		return models.Request{}
	}
}

func waitForFile(t *testing.T, path string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(path); err == nil {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("%s never appeared", path)
}

func TestHandleManifestUploadsLocalFiles(t *testing.T) {
	rec := newRecorder()
	w, inbox, archived := newTestWatcher(t, rec.handle)

	os.WriteFile(filepath.Join(inbox, "resume.pdf"), []byte("%PDF-1.4"), 0644)
	os.WriteFile(filepath.Join(inbox, "me.jpg"), []byte("jpeg"), 0644)
	manifest := filepath.Join(inbox, "alice.job.yaml")
	os.WriteFile(manifest, []byte("document: resume.pdf\nphoto: me.jpg\nlanguage: en-GB\n"), 0644)

	w.handleManifest(context.Background(), manifest)

	req := waitFor(t, rec.got)
	want := models.Request{ID: "alice", DocumentKey: "uploads/alice/resume.pdf", PhotoKey: "uploads/alice/me.jpg", Language: "en-GB"}
	if req != want {
		t.Errorf("request = %+v, want %+v", req, want)
	}
	for _, name := range []string{"alice.job.yaml", "resume.pdf", "me.jpg"} {
		if _, err := os.Stat(filepath.Join(archived, "done", name)); err != nil {
			t.Errorf("%s not archived: %v", name, err)
		}
	}
}

func TestHandleManifestBlobKeysAndFailure(t *testing.T) {
	rec := newRecorder()
	rec.err = errors.New("generation failed")
	w, inbox, archived := newTestWatcher(t, rec.handle)

	manifest := filepath.Join(inbox, "bob.job.yaml")
	os.WriteFile(manifest, []byte("id: req-9\ndocument: uploads/x/cv.docx\nphoto: uploads/x/face.png\n"), 0644)

	w.handleManifest(context.Background(), manifest)

	req := waitFor(t, rec.got)
	if req.ID != "req-9" || req.DocumentKey != "uploads/x/cv.docx" {
		t.Errorf("request = %+v", req)
	}
	if _, err := os.Stat(filepath.Join(archived, "failed", "bob.job.yaml")); err != nil {
		t.Errorf("failed manifest not archived: %v", err)
	}
}

func TestHandleManifestInvalid(t *testing.T) {
	rec := newRecorder()
	w, inbox, archived := newTestWatcher(t, rec.handle)

	manifest := filepath.Join(inbox, "broken.job.yaml")
	os.WriteFile(manifest, []byte("document: only-this.pdf\n"), 0644)

	w.handleManifest(context.Background(), manifest)

	if len(rec.reqs) != 0 {
		t.Error("handler called for an invalid manifest")
	}
	if _, err := os.Stat(filepath.Join(archived, "failed", "broken.job.yaml")); err != nil {
		t.Errorf("invalid manifest not archived: %v", err)
	}
}

func TestHandleManifestRejectsPathsOutsideInbox(t *testing.T) {
	tests := []struct {
		name     string
		document string
	}{
		{"parent directory", "../private.pdf"},
		{"nested climb", "uploads/../../private.pdf"},
		{"absolute", "/etc/private.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := newRecorder()
			w, inbox, archived := newTestWatcher(t, rec.handle)

			outside := filepath.Join(filepath.Dir(inbox), "private.pdf")
			os.WriteFile(outside, []byte("%PDF-1.4"), 0644)
			manifest := filepath.Join(inbox, "eve.job.yaml")
			os.WriteFile(manifest, []byte("document: "+tt.document+"\nphoto: uploads/x/face.png\n"), 0644)

			w.handleManifest(context.Background(), manifest)

			if len(rec.reqs) != 0 {
				t.Errorf("handler called with %+v", rec.reqs)
			}
			if _, err := os.Stat(outside); err != nil {
				t.Errorf("file outside the inbox was moved: %v", err)
			}
			for _, outcome := range []string{"done", "failed"} {
				if _, err := os.Stat(filepath.Join(archived, outcome, "private.pdf")); err == nil {
					t.Errorf("file outside the inbox archived under %s", outcome)
				}
			}
			if _, err := os.Stat(filepath.Join(archived, "failed", "eve.job.yaml")); err != nil {
				t.Errorf("rejected manifest not archived: %v", err)
			}
		})
	}
}

func TestStartDrainsExistingAndNewManifests(t *testing.T) {
	rec := newRecorder()
	w, inbox, archived := newTestWatcher(t, rec.handle)

	os.WriteFile(filepath.Join(inbox, "first.job.yaml"), []byte("document: a/doc.pdf\nphoto: a/p.png\n"), 0644)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	if req := waitFor(t, rec.got); req.ID != "first" {
		t.Errorf("first request = %+v", req)
	}

	os.WriteFile(filepath.Join(inbox, "notes.txt"), []byte("ignore me"), 0644)
	os.WriteFile(filepath.Join(inbox, "second.job.yaml"), []byte("document: b/doc.pdf\nphoto: b/p.png\n"), 0644)
	if req := waitFor(t, rec.got); req.ID != "second" {
		t.Errorf("second request = %+v", req)
	}
	waitForFile(t, filepath.Join(archived, "done", "second.job.yaml"))

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Start() = %v, want context.Canceled", err)
	}
	if len(rec.reqs) != 2 {
		t.Errorf("handled %d requests, want 2", len(rec.reqs))
	}
}

func TestStartRefusesLockedInbox(t *testing.T) {
	rec := newRecorder()
	w, inbox, _ := newTestWatcher(t, rec.handle)

	other, err := New(inbox, filepath.Join(t.TempDir(), "archived"), w.blobs, rec.handle, w.logger, 1)
	if err != nil {
		t.Fatal(err)
	}
	defer other.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()
	waitForFile(t, filepath.Join(inbox, LockFile))
	time.Sleep(50 * time.Millisecond)

	if err := other.Start(context.Background()); err == nil {
		t.Error("second watcher started on a locked inbox")
	}
	cancel()
	<-done
}
