package processor

import (
	"github.com/abhirajadhikary06/voiceurresume/internal/blobstore"
	"github.com/abhirajadhikary06/voiceurresume/internal/config"
	"github.com/abhirajadhikary06/voiceurresume/internal/document"
	"github.com/abhirajadhikary06/voiceurresume/internal/logger"
	"github.com/abhirajadhikary06/voiceurresume/internal/media"
	"github.com/abhirajadhikary06/voiceurresume/internal/metrics"
	"github.com/abhirajadhikary06/voiceurresume/internal/recordstore"
	"github.com/abhirajadhikary06/voiceurresume/internal/speech"
	"github.com/abhirajadhikary06/voiceurresume/internal/summarizer"
	"github.com/abhirajadhikary06/voiceurresume/internal/videogen"
)

// Dependencies are the stage implementations a Processor drives
type Dependencies struct {
	Blobs      blobstore.Store
	Records    recordstore.Store
	Extractor  document.Extractor
	Summarizer summarizer.Summarizer
	Speech     speech.Synthesizer
	Backend    videogen.Backend
	Muxer      media.Muxer
	Metrics    metrics.Recorder
}

type implProcessor struct {
	cfg    *config.Config
	deps   Dependencies
	sem    *semaphore
	logger logger.Logger
}

// New creates a new Processor instance. At most cfg.Performance.MaxConcurrent
// runs execute at once; further calls to Process wait for a slot.
func New(cfg *config.Config, deps Dependencies, log logger.Logger) Processor {
	if deps.Metrics == nil {
		deps.Metrics = metrics.Nop{}
	}
	capacity := cfg.Performance.MaxConcurrent
	if capacity <= 0 {
		capacity = 1
	}
	return &implProcessor{
		cfg:    cfg,
		deps:   deps,
		sem:    newSemaphore(capacity),
		logger: log,
	}
}
