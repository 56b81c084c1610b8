package videogen

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/abhirajadhikary06/voiceurresume/internal/config"
	"github.com/abhirajadhikary06/voiceurresume/internal/errkind"
	"github.com/abhirajadhikary06/voiceurresume/internal/logger"
	"github.com/abhirajadhikary06/voiceurresume/internal/models"
	"github.com/abhirajadhikary06/voiceurresume/pkg/executor"
)

type subprocessBackend struct {
	executor executor.Executor
	command  string
	args     []string
	dir      string
	logger   logger.Logger
}

// NewSubprocess creates a backend that runs an external animation program:
// {command} {args...} --input_image P --audio A --output O
// When cfg.Dir is set the program runs there and receives absolute paths.
func NewSubprocess(exec executor.Executor, cfg config.SubprocessConfig, log logger.Logger) Backend {
	return &subprocessBackend{
		executor: exec,
		command:  cfg.Command,
		args:     cfg.Args,
		dir:      cfg.Dir,
		logger:   log,
	}
}

func (b *subprocessBackend) Name() string      { return "subprocess" }
func (b *subprocessBackend) EmbedsAudio() bool { return true }
func (b *subprocessBackend) Close() error      { return nil }

func (b *subprocessBackend) Generate(ctx context.Context, in Input) (*models.GeneratedVideo, error) {
	if in.Audio == nil {
		return nil, errkind.Wrap(errkind.ErrBackendFailure, "generate", b.Name(), "audio is required", nil)
	}

	photoPath, err := writePhoto(in.WorkDir, in.Photo)
	if err != nil {
		return nil, err
	}
	defer cleanupTempFile(ctx, b.logger, photoPath)

	outPath := filepath.Join(in.WorkDir, "output-"+uuid.NewString()+".mp4")
	paths := []string{photoPath, in.Audio.Path, outPath}
	if b.dir != "" {
		for i, p := range paths {
			if paths[i], err = filepath.Abs(p); err != nil {
				return nil, errkind.Wrap(errkind.ErrIO, "generate", "resolve path", p, err)
			}
		}
		outPath = paths[2]
	}

	args := make([]string, 0, len(b.args)+6)
	args = append(args, b.args...)
	args = append(args, "--input_image", paths[0], "--audio", paths[1], "--output", paths[2])

	b.logger.Info(ctx, "Running %s for video synthesis", b.command)
	if _, err := b.executor.ExecuteInDir(ctx, b.dir, b.command, args...); err != nil {
		os.Remove(outPath)
		return nil, errkind.Wrap(errkind.ErrExternalProcess, "generate", b.command, "", err)
	}

	info, err := os.Stat(outPath)
	if err != nil || info.Size() == 0 {
		return nil, errkind.Wrap(errkind.ErrExternalProcess, "generate", b.command, "program did not produce a video", err)
	}

	return &models.GeneratedVideo{Path: outPath, HasAudio: true}, nil
}

// writePhoto stores the photo bytes under dir; a photo with no original
// bytes is re-encoded as PNG.
func writePhoto(dir string, photo *models.PhotoImage) (string, error) {
	if photo == nil {
		return "", errkind.Wrap(errkind.ErrBackendFailure, "generate", "photo", "photo is required", nil)
	}

	ext := photo.Ext()
	if len(photo.Data) == 0 {
		ext = ".png"
	}
	f, err := os.CreateTemp(dir, "photo-*"+ext)
	if err != nil {
		return "", errkind.Wrap(errkind.ErrIO, "generate", "photo", "", err)
	}

	if len(photo.Data) > 0 {
		_, err = f.Write(photo.Data)
	} else {
		err = png.Encode(f, photo.Image)
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(f.Name())
		return "", errkind.Wrap(errkind.ErrIO, "generate", "photo", fmt.Sprintf("write %s", f.Name()), err)
	}
	return f.Name(), nil
}

func cleanupTempFile(ctx context.Context, log logger.Logger, path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Warn(ctx, "Failed to remove temp file %s: %v", path, err)
	}
}
