package videogen

import (
	"fmt"
	"net/http"
	"time"

	"github.com/abhirajadhikary06/voiceurresume/internal/config"
	"github.com/abhirajadhikary06/voiceurresume/internal/facedetect"
	"github.com/abhirajadhikary06/voiceurresume/internal/logger"
	"github.com/abhirajadhikary06/voiceurresume/internal/media"
	"github.com/abhirajadhikary06/voiceurresume/pkg/executor"
)

// New returns the single backend selected by cfg.Video.Backend
func New(cfg *config.Config, exec executor.Executor, tk media.Toolkit, log logger.Logger) (Backend, error) {
	v := cfg.Video
	switch v.Backend {
	case "subprocess":
		return NewSubprocess(exec, v.Subprocess, log), nil
	case "faceswap":
		detector := facedetect.New(v.FaceSwap.CascadePath, v.FaceSwap.MinFaceSize, log)
		return NewFaceSwap(detector, tk, tk, v.FaceSwap.BaseVideo, v.FaceSwap.MaxFrames, log), nil
	case "remote":
		return NewRemote(v.Remote, &http.Client{Timeout: 5 * time.Minute}, log), nil
	default:
		return nil, fmt.Errorf("unknown video backend %q", v.Backend)
	}
}
