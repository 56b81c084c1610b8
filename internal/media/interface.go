package media

import (
	"context"
	"image"
	"time"
)

// Info is what ffprobe reports about a media file
type Info struct {
	Duration time.Duration
	Width    int
	Height   int
	FPS      float64
	HasVideo bool
	HasAudio bool
}

// Prober reads media metadata
type Prober interface {
	Probe(ctx context.Context, path string) (*Info, error)
}

// Muxer combines a video stream and an audio stream into one container
type Muxer interface {
	Mux(ctx context.Context, videoPath, audioPath, outPath string) error
}

// FrameReader yields decoded frames in order. Next returns io.EOF after the last frame.
type FrameReader interface {
	Next() (*image.RGBA, error)
	Close() error
}

// FrameWriter encodes frames in the order written. Close flushes and finalizes the file.
type FrameWriter interface {
	Write(frame *image.RGBA) error
	Close() error
}

// FrameCodec opens raw frame streams over a video file
type FrameCodec interface {
	OpenReader(ctx context.Context, path string, width, height int) (FrameReader, error)
	OpenWriter(ctx context.Context, path string, width, height int, fps float64) (FrameWriter, error)
}

// Toolkit is the full ffmpeg-backed media surface
type Toolkit interface {
	Prober
	Muxer
	FrameCodec
}
