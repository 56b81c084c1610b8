package videogen

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/abhirajadhikary06/voiceurresume/internal/errkind"
	"github.com/abhirajadhikary06/voiceurresume/internal/facedetect"
	"github.com/abhirajadhikary06/voiceurresume/internal/logger"
	"github.com/abhirajadhikary06/voiceurresume/internal/media"
	"github.com/abhirajadhikary06/voiceurresume/internal/models"
)

// sourceMargin widens the detected photo face so hairline and chin survive the swap
const sourceMargin = 0.15

type faceswapBackend struct {
	detector  facedetect.Detector
	codec     media.FrameCodec
	prober    media.Prober
	baseVideo string
	maxFrames int
	logger    logger.Logger
}

// NewFaceSwap creates a backend that pastes the photo's face over every face
// of a prerecorded base video. Output has no audio track.
func NewFaceSwap(detector facedetect.Detector, codec media.FrameCodec, prober media.Prober, baseVideo string, maxFrames int, log logger.Logger) Backend {
	return &faceswapBackend{
		detector:  detector,
		codec:     codec,
		prober:    prober,
		baseVideo: baseVideo,
		maxFrames: maxFrames,
		logger:    log,
	}
}

func (b *faceswapBackend) Name() string      { return "faceswap" }
func (b *faceswapBackend) EmbedsAudio() bool { return false }

// Close drops the face detector's cascade
func (b *faceswapBackend) Close() error {
	return b.detector.Close()
}

func (b *faceswapBackend) Generate(ctx context.Context, in Input) (*models.GeneratedVideo, error) {
	if in.Photo == nil || in.Photo.Image == nil {
		return nil, errkind.Wrap(errkind.ErrBackendFailure, "generate", b.Name(), "photo is required", nil)
	}

	faces, err := b.detector.Detect(ctx, in.Photo.Image)
	if err != nil {
		return nil, errkind.Wrap(errkind.ErrBackendFailure, "generate", "detect", "photo", err)
	}
	face, ok := facedetect.Largest(faces)
	if !ok {
		return nil, errkind.Wrap(errkind.ErrNoFaceDetected, "generate", b.Name(), "no face in photo", nil)
	}
	bounds := in.Photo.Image.Bounds()
	source := cropRGBA(in.Photo.Image, facedetect.Expand(face.Rect, sourceMargin, bounds))
	b.logger.Debug(ctx, "Source face %v (%d found)", face.Rect, len(faces))

	basePath, err := copyToTemp(b.baseVideo, in.WorkDir, "base-*.mp4")
	if err != nil {
		return nil, errkind.Wrap(errkind.ErrIO, "generate", "base video", "", err)
	}
	defer cleanupTempFile(ctx, b.logger, basePath)

	info, err := b.prober.Probe(ctx, basePath)
	if err != nil {
		return nil, errkind.Wrap(errkind.ErrFrameDecode, "generate", "probe", "", err)
	}
	if !info.HasVideo || info.Width <= 0 || info.Height <= 0 {
		return nil, errkind.Wrap(errkind.ErrFrameDecode, "generate", "probe", "base video has no video stream", nil)
	}
	fps := info.FPS
	if fps <= 0 {
		fps = 25
	}

	outPath := filepath.Join(in.WorkDir, "faceswap-"+uuid.NewString()+".mp4")
	frames, err := b.swapFrames(ctx, basePath, outPath, info.Width, info.Height, fps, source)
	if err != nil {
		os.Remove(outPath)
		return nil, err
	}

	b.logger.Info(ctx, "Face swap wrote %d frames at %.2f fps", frames, fps)
	return &models.GeneratedVideo{Path: outPath, HasAudio: false}, nil
}

func (b *faceswapBackend) swapFrames(ctx context.Context, basePath, outPath string, width, height int, fps float64, source *image.RGBA) (int, error) {
	reader, err := b.codec.OpenReader(ctx, basePath, width, height)
	if err != nil {
		return 0, errkind.Wrap(errkind.ErrFrameDecode, "generate", "open reader", "", err)
	}
	defer reader.Close()

	writer, err := b.codec.OpenWriter(ctx, outPath, width, height, fps)
	if err != nil {
		return 0, errkind.Wrap(errkind.ErrFrameDecode, "generate", "open writer", "", err)
	}
	writerOpen := true
	defer func() {
		if writerOpen {
			writer.Close()
		}
	}()

	count := 0
	for b.maxFrames <= 0 || count < b.maxFrames {
		if err := ctx.Err(); err != nil {
			return count, errkind.Wrap(errkind.ErrBackendFailure, "generate", b.Name(), "cancelled", err)
		}

		frame, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return count, errkind.Wrap(errkind.ErrFrameDecode, "generate", "read frame", fmt.Sprintf("frame %d", count), err)
		}

		targets, err := b.detector.Detect(ctx, frame)
		if err != nil {
			return count, errkind.Wrap(errkind.ErrBackendFailure, "generate", "detect", fmt.Sprintf("frame %d", count), err)
		}
		for _, t := range targets {
			blendFace(frame, source, t.Rect)
		}

		if err := writer.Write(frame); err != nil {
			return count, errkind.Wrap(errkind.ErrFrameDecode, "generate", "write frame", fmt.Sprintf("frame %d", count), err)
		}
		count++
	}

	if count == 0 {
		return 0, errkind.Wrap(errkind.ErrFrameDecode, "generate", "read frame", "base video has no frames", nil)
	}

	writerOpen = false
	if err := writer.Close(); err != nil {
		return count, errkind.Wrap(errkind.ErrFrameDecode, "generate", "encode", "", err)
	}
	return count, nil
}

func copyToTemp(src, dir, pattern string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	out, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(out.Name())
		return "", err
	}
	if err := out.Close(); err != nil {
		os.Remove(out.Name())
		return "", err
	}
	return out.Name(), nil
}
