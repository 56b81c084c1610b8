package media

import (
	"github.com/abhirajadhikary06/voiceurresume/internal/config"
	"github.com/abhirajadhikary06/voiceurresume/pkg/executor"
)

type implToolkit struct {
	executor executor.Executor
	cfg      config.FFmpegConfig
}

// New creates a Toolkit that drives the configured ffmpeg and ffprobe binaries
func New(exec executor.Executor, cfg config.FFmpegConfig) Toolkit {
	return &implToolkit{
		executor: exec,
		cfg:      cfg,
	}
}
