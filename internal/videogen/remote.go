package videogen

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/abhirajadhikary06/voiceurresume/internal/config"
	"github.com/abhirajadhikary06/voiceurresume/internal/errkind"
	"github.com/abhirajadhikary06/voiceurresume/internal/logger"
	"github.com/abhirajadhikary06/voiceurresume/internal/models"
)

// PollObserver is told the raw status of every poll; the metrics package implements it
type PollObserver interface {
	ObservePoll(status string)
}

type remoteBackend struct {
	client       *remoteClient
	pollInterval time.Duration
	maxAttempts  int
	observer     PollObserver
	logger       logger.Logger
}

// NewRemote creates a backend that submits jobs to a hosted synthesis API and
// polls until the job settles or the attempt budget runs out.
func NewRemote(cfg config.RemoteConfig, httpClient *http.Client, log logger.Logger) Backend {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 30
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &remoteBackend{
		client:       newRemoteClient(httpClient, cfg.Endpoint, cfg.APIKey, cfg.RetryAttempts),
		pollInterval: cfg.PollInterval,
		maxAttempts:  maxAttempts,
		logger:       log,
	}
}

// WithPollObserver attaches obs to a remote backend; other backends are returned unchanged
func WithPollObserver(b Backend, obs PollObserver) Backend {
	if r, ok := b.(*remoteBackend); ok {
		r.observer = obs
	}
	return b
}

func (b *remoteBackend) Name() string      { return "remote" }
func (b *remoteBackend) EmbedsAudio() bool { return true }

func (b *remoteBackend) Close() error {
	b.client.httpClient.CloseIdleConnections()
	return nil
}

func (b *remoteBackend) Generate(ctx context.Context, in Input) (*models.GeneratedVideo, error) {
	if in.Photo == nil || in.Audio == nil {
		return nil, errkind.Wrap(errkind.ErrBackendFailure, "generate", b.Name(), "photo and audio are required", nil)
	}

	photoPath, err := writePhoto(in.WorkDir, in.Photo)
	if err != nil {
		return nil, err
	}
	defer cleanupTempFile(ctx, b.logger, photoPath)
	photo, err := os.ReadFile(photoPath)
	if err != nil {
		return nil, errkind.Wrap(errkind.ErrIO, "generate", "photo", "", err)
	}

	id, err := b.client.submit(ctx, "photo"+in.Photo.Ext(), photo, in.Audio.Path)
	if err != nil {
		return nil, errkind.Wrap(errkind.ErrRemoteSubmission, "generate", "submit", "", err)
	}
	job := models.NewVideoJob(id)
	b.logger.Info(ctx, "Remote job %s submitted", id)

	if err := b.poll(ctx, job); err != nil {
		return nil, err
	}

	f, err := os.CreateTemp(in.WorkDir, "remote-*.mp4")
	if err != nil {
		return nil, errkind.Wrap(errkind.ErrIO, "generate", "download", "", err)
	}
	outPath := f.Name()
	f.Close()

	if err := b.client.download(ctx, job.ResultReference, outPath); err != nil {
		os.Remove(outPath)
		return nil, errkind.Wrap(errkind.ErrIO, "generate", "download", job.ResultReference, err)
	}

	return &models.GeneratedVideo{Path: outPath, HasAudio: true}, nil
}

// poll waits pollInterval before each status query and makes at most maxAttempts queries
func (b *remoteBackend) poll(ctx context.Context, job *models.VideoJob) error {
	for job.Attempts < b.maxAttempts {
		if err := b.client.sleep(ctx, b.pollInterval); err != nil {
			return errkind.Wrap(errkind.ErrBackendFailure, "generate", "poll", "cancelled", err)
		}

		st, err := b.client.status(ctx, job.ID)
		job.Attempts++
		if err != nil {
			if advErr := advance(job, models.JobFailed); advErr != nil {
				return advErr
			}
			return errkind.Wrap(errkind.ErrRemoteJobFailed, "generate", "poll", fmt.Sprintf("job %s", job.ID), err)
		}
		if b.observer != nil {
			b.observer.ObservePoll(st.Status)
		}
		if err := advance(job, models.JobPolling); err != nil {
			return err
		}

		switch mapStatus(st.Status) {
		case models.JobDone:
			ref := st.reference()
			if ref == "" {
				if err := advance(job, models.JobFailed); err != nil {
					return err
				}
				return errkind.Wrap(errkind.ErrRemoteJobFailed, "generate", "poll", fmt.Sprintf("job %s finished without a result", job.ID), nil)
			}
			job.ResultReference = ref
			if err := advance(job, models.JobDone); err != nil {
				return err
			}
			b.logger.Info(ctx, "Remote job %s done after %d polls", job.ID, job.Attempts)
			return nil
		case models.JobFailed:
			job.Message = st.Message
			if err := advance(job, models.JobFailed); err != nil {
				return err
			}
			return errkind.Wrap(errkind.ErrRemoteJobFailed, "generate", "poll", fmt.Sprintf("job %s: %s %s", job.ID, st.Status, st.Message), nil)
		default:
			b.logger.Debug(ctx, "Remote job %s is %s (%d/%d)", job.ID, st.Status, job.Attempts, b.maxAttempts)
		}
	}

	if err := advance(job, models.JobTimedOut); err != nil {
		return err
	}
	return errkind.Wrap(errkind.ErrRemoteJobTimeout, "generate", "poll", fmt.Sprintf("job %s not done after %d polls", job.ID, job.Attempts), nil)
}

// advance moves job forward; an illegal transition is a backend bug
func advance(job *models.VideoJob, to models.JobStatus) error {
	if err := job.Advance(to); err != nil {
		return errkind.Wrap(errkind.ErrBackendFailure, "generate", "poll", "", err)
	}
	return nil
}

func mapStatus(s string) models.JobStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "done", "completed", "succeeded":
		return models.JobDone
	case "error", "failed", "rejected":
		return models.JobFailed
	default:
		return models.JobPolling
	}
}
