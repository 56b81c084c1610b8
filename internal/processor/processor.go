package processor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/abhirajadhikary06/voiceurresume/internal/document"
	"github.com/abhirajadhikary06/voiceurresume/internal/errkind"
	"github.com/abhirajadhikary06/voiceurresume/internal/logger"
	"github.com/abhirajadhikary06/voiceurresume/internal/models"
	"github.com/abhirajadhikary06/voiceurresume/internal/videogen"
)

// run is the mutable state of one Process call
type run struct {
	req     models.Request
	state   State
	workDir string
	summary string
}

// Process orchestrates the entire resume-to-video pipeline
func (p *implProcessor) Process(ctx context.Context, req models.Request) (*Result, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	ctx = logger.WithRequestID(ctx, req.ID)
	startTime := time.Now()
	backend := p.deps.Backend.Name()

	if err := p.sem.acquire(ctx); err != nil {
		p.logger.Error(ctx, "Request %s abandoned while waiting for a slot: %v", req.ID, err)
		p.deps.Metrics.RunFinished(backend, "failed")
		return &Result{RequestID: req.ID, State: StateFailed}, ErrGenerationFailed
	}
	defer p.sem.release()

	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Starting request %s (backend: %s)", req.ID, backend)
	p.logger.Info(ctx, "========================================")

	r := &run{req: req, state: StateReceived}
	videoKey, err := p.execute(ctx, r)
	duration := time.Since(startTime)

	if err != nil {
		p.logger.Error(ctx, "Pipeline failed at %s (%s): %v", r.state, errkind.KindOf(err), err)
		p.deps.Metrics.RunFinished(backend, "failed")
		return &Result{RequestID: req.ID, State: StateFailed}, ErrGenerationFailed
	}

	p.deps.Metrics.RunFinished(backend, "done")
	p.logger.Info(ctx, "========================================")
	p.logger.Info(ctx, "Processing completed successfully!")
	p.logger.Info(ctx, "Video: %s", videoKey)
	p.logger.Info(ctx, "Processing time: %s", duration)
	p.logger.Info(ctx, "========================================")

	return &Result{RequestID: req.ID, VideoKey: videoKey, State: StateDone, Summary: r.summary, Duration: duration}, nil
}

// execute runs the stages in order; r.state names the stage that failed.
// A panic in any stage becomes a BackendFailure.
func (p *implProcessor) execute(ctx context.Context, r *run) (videoKey string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = errkind.Wrap(errkind.ErrBackendFailure, string(r.state), "panic", fmt.Sprint(rec), nil)
		}
	}()

	r.workDir, err = p.newWorkspace(r.req.ID)
	if err != nil {
		return "", errkind.Wrap(errkind.ErrIO, string(r.state), "workspace", "", err)
	}
	defer p.cleanupWorkspace(ctx, r.workDir)

	doc, photo, err := p.loadInputs(ctx, r.req)
	if err != nil {
		return "", err
	}

	var text string
	if err := p.stage(ctx, r, StateExtractingText, func() (stageErr error) {
		text, stageErr = p.deps.Extractor.Extract(doc)
		return stageErr
	}); err != nil {
		return "", err
	}

	var summary string
	if err := p.stage(ctx, r, StateSummarizing, func() (stageErr error) {
		s := p.cfg.Summarizer
		summary, stageErr = p.deps.Summarizer.Summarize(ctx, text, s.MinWords, s.MaxWords)
		return stageErr
	}); err != nil {
		return "", err
	}
	r.summary = summary

	var audio *models.AudioClip
	if err := p.stage(ctx, r, StateSynthesizing, func() (stageErr error) {
		lang := r.req.Language
		if lang == "" {
			lang = p.cfg.Speech.Language
		}
		audio, stageErr = p.deps.Speech.Synthesize(ctx, summary, lang, filepath.Join(r.workDir, "speech.mp3"))
		return stageErr
	}); err != nil {
		return "", err
	}

	var video *models.GeneratedVideo
	if err := p.stage(ctx, r, StateGeneratingVideo, func() (stageErr error) {
		vctx := ctx
		if p.cfg.Video.Timeout > 0 {
			var cancel context.CancelFunc
			vctx, cancel = context.WithTimeout(ctx, p.cfg.Video.Timeout)
			defer cancel()
		}
		input := videogen.Input{Photo: photo, WorkDir: r.workDir}
		if p.deps.Backend.EmbedsAudio() {
			input.Audio = audio
		}
		video, stageErr = p.deps.Backend.Generate(vctx, input)
		return stageErr
	}); err != nil {
		return "", err
	}

	if !p.deps.Backend.EmbedsAudio() {
		if err := p.stage(ctx, r, StateMuxing, func() error {
			out := filepath.Join(r.workDir, "muxed-"+uuid.NewString()+".mp4")
			if err := p.deps.Muxer.Mux(ctx, video.Path, audio.Path, out); err != nil {
				return errkind.Wrap(errkind.ErrExternalProcess, string(StateMuxing), "ffmpeg", "", err)
			}
			video = &models.GeneratedVideo{Path: out, HasAudio: true}
			return nil
		}); err != nil {
			return "", err
		}
	}

	videoKey = VideoKey(r.req.ID)
	if err := p.stage(ctx, r, StatePersisting, func() error {
		return p.persist(ctx, r.req, video.Path, videoKey)
	}); err != nil {
		return "", err
	}

	r.state = StateDone
	return videoKey, nil
}

// stage runs fn as state, recording how long it took. Untagged errors
// become BackendFailure.
func (p *implProcessor) stage(ctx context.Context, r *run, state State, fn func() error) error {
	r.state = state
	p.logger.Info(ctx, "Stage: %s", state)
	start := time.Now()
	err := fn()
	p.deps.Metrics.StageDuration(string(state), time.Since(start))
	if err != nil && !errkind.Tagged(err) {
		err = errkind.Wrap(errkind.ErrBackendFailure, string(state), "", "", err)
	}
	return err
}

func (p *implProcessor) loadInputs(ctx context.Context, req models.Request) (models.SourceDocument, *models.PhotoImage, error) {
	docData, err := p.deps.Blobs.Get(ctx, req.DocumentKey)
	if err != nil {
		return models.SourceDocument{}, nil, errkind.Wrap(errkind.ErrIO, "load", "document", req.DocumentKey, err)
	}
	format, err := document.DetectFormat(req.DocumentKey, docData)
	if err != nil {
		return models.SourceDocument{}, nil, err
	}

	photoData, err := p.deps.Blobs.Get(ctx, req.PhotoKey)
	if err != nil {
		return models.SourceDocument{}, nil, errkind.Wrap(errkind.ErrIO, "load", "photo", req.PhotoKey, err)
	}
	photo, err := decodePhoto(photoData)
	if err != nil {
		return models.SourceDocument{}, nil, err
	}

	doc := models.SourceDocument{Name: filepath.Base(req.DocumentKey), Format: format, Data: docData}
	return doc, photo, nil
}

// persist uploads the video, then writes the record. A failed record write
// takes the uploaded blob back out.
func (p *implProcessor) persist(ctx context.Context, req models.Request, videoPath, videoKey string) error {
	f, err := os.Open(videoPath)
	if err != nil {
		return errkind.Wrap(errkind.ErrIO, string(StatePersisting), "open video", "", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return errkind.Wrap(errkind.ErrIO, string(StatePersisting), "stat video", "", err)
	}

	if err := p.deps.Blobs.Put(ctx, videoKey, f, info.Size(), "video/mp4"); err != nil {
		return errkind.Wrap(errkind.ErrIO, string(StatePersisting), "upload", videoKey, err)
	}

	rec := models.VideoRecord{
		RequestID:   req.ID,
		DocumentKey: req.DocumentKey,
		PhotoKey:    req.PhotoKey,
		VideoKey:    videoKey,
		Backend:     p.deps.Backend.Name(),
		CreatedAt:   time.Now().UTC(),
	}
	if err := p.deps.Records.Save(ctx, rec); err != nil {
		if delErr := p.deps.Blobs.Delete(ctx, videoKey); delErr != nil {
			p.logger.Error(ctx, "Failed to remove orphaned video %s: %v", videoKey, delErr)
			err = errors.Join(err, delErr)
		}
		return errkind.Wrap(errkind.ErrIO, string(StatePersisting), "save record", "", err)
	}
	return nil
}
