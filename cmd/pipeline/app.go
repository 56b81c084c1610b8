package main

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/abhirajadhikary06/voiceurresume/internal/blobstore"
	"github.com/abhirajadhikary06/voiceurresume/internal/config"
	"github.com/abhirajadhikary06/voiceurresume/internal/document"
	"github.com/abhirajadhikary06/voiceurresume/internal/logger"
	"github.com/abhirajadhikary06/voiceurresume/internal/media"
	"github.com/abhirajadhikary06/voiceurresume/internal/metrics"
	"github.com/abhirajadhikary06/voiceurresume/internal/models"
	"github.com/abhirajadhikary06/voiceurresume/internal/processor"
	"github.com/abhirajadhikary06/voiceurresume/internal/recordstore"
	"github.com/abhirajadhikary06/voiceurresume/internal/speech"
	"github.com/abhirajadhikary06/voiceurresume/internal/summarizer"
	"github.com/abhirajadhikary06/voiceurresume/internal/videogen"
	"github.com/abhirajadhikary06/voiceurresume/pkg/executor"
)

// app is a fully wired pipeline
type app struct {
	cfg     *config.Config
	log     logger.Logger
	blobs   blobstore.Store
	records recordstore.Store
	metrics *metrics.Metrics
	sum     summarizer.Summarizer
	backend videogen.Backend
	proc    processor.Processor
}

func newApp(ctx context.Context, cfg *config.Config, log logger.Logger) (*app, error) {
	exec := executor.New()
	toolkit := media.New(exec, cfg.FFmpeg)
	m := metrics.New()

	blobs, err := blobstore.New(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("blob store: %w", err)
	}
	records, err := recordstore.New(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("record store: %w", err)
	}

	var sum summarizer.Summarizer
	switch cfg.Summarizer.Provider {
	case "extractive":
		sum = summarizer.NewExtractive(cfg.Summarizer.MinInputWords)
	default:
		sum = summarizer.New(cfg.Summarizer.APIKeys, cfg.Summarizer.Model, cfg.Summarizer.MinInputWords, log)
	}

	synth, err := speech.New(cfg.Speech, exec, toolkit, log)
	if err != nil {
		records.Close()
		return nil, fmt.Errorf("speech: %w", err)
	}

	backend, err := videogen.New(cfg, exec, toolkit, log)
	if err != nil {
		records.Close()
		return nil, fmt.Errorf("video backend: %w", err)
	}
	backend = videogen.WithPollObserver(backend, m)

	proc := processor.New(cfg, processor.Dependencies{
		Blobs:      blobs,
		Records:    records,
		Extractor:  document.New(),
		Summarizer: sum,
		Speech:     synth,
		Backend:    backend,
		Muxer:      toolkit,
		Metrics:    m,
	}, log)

	return &app{
		cfg:     cfg,
		log:     log,
		blobs:   blobs,
		records: records,
		metrics: m,
		sum:     sum,
		backend: backend,
		proc:    proc,
	}, nil
}

// serveMetrics starts the /metrics endpoint when an address is configured
func (a *app) serveMetrics(ctx context.Context) {
	if a.cfg.Metrics.Addr == "" {
		return
	}
	go func() {
		if err := a.metrics.Serve(ctx, a.cfg.Metrics.Addr, a.log); err != nil {
			a.log.Error(ctx, "Metrics server error: %v", err)
		}
	}()
}

// handle runs one request, for intakes that only care whether it worked
func (a *app) handle(ctx context.Context, req models.Request) error {
	_, err := a.proc.Process(ctx, req)
	return err
}

func (a *app) banner(ctx context.Context, mode string) {
	a.log.Info(ctx, "========================================")
	a.log.Info(ctx, "Resume Video Pipeline (%s)", mode)
	a.log.Info(ctx, "========================================")
	a.log.Info(ctx, "System: %s/%s", runtime.GOOS, runtime.GOARCH)
	a.log.Info(ctx, "CPU Cores: %d", runtime.NumCPU())
	a.log.Info(ctx, "Max Concurrent Processing: %d", a.cfg.Performance.MaxConcurrent)
	a.log.Info(ctx, "Summarizer: %s", a.cfg.Summarizer.Provider)
	a.log.Info(ctx, "Speech: %s (%s)", a.cfg.Speech.Provider, a.cfg.Speech.Language)
	a.log.Info(ctx, "Video backend: %s", a.backend.Name())
	a.log.Info(ctx, "Storage: %s blobs, %s records", a.cfg.Storage.Blob, a.cfg.Storage.Records)
}

// Close tears down the loaded models and the record store
func (a *app) Close() error {
	return errors.Join(a.backend.Close(), a.sum.Close(), a.records.Close())
}
