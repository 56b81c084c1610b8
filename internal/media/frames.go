package media

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"strconv"
)

type pipeReader struct {
	pr     *io.PipeReader
	cancel context.CancelFunc
	done   chan error
	width  int
	height int
	buf    []byte
	closed bool
}

// OpenReader starts ffmpeg decoding path to raw RGBA frames of the given size
func (t *implToolkit) OpenReader(ctx context.Context, path string, width, height int) (FrameReader, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", width, height)
	}

	ctx, cancel := context.WithCancel(ctx)
	pr, pw := io.Pipe()
	done := make(chan error, 1)

	args := []string{
		"-v", "error",
		"-i", path,
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", width, height),
		"-",
	}

	go func() {
		err := t.executor.Stream(ctx, t.cfg.Binary, nil, pw, args...)
		pw.CloseWithError(err)
		done <- err
	}()

	return &pipeReader{
		pr:     pr,
		cancel: cancel,
		done:   done,
		width:  width,
		height: height,
		buf:    make([]byte, width*height*4),
	}, nil
}

func (r *pipeReader) Next() (*image.RGBA, error) {
	n, err := io.ReadFull(r.pr, r.buf)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("truncated frame: got %d of %d bytes", n, len(r.buf))
		}
		return nil, fmt.Errorf("decode frame: %w", err)
	}

	frame := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	copy(frame.Pix, r.buf)
	return frame, nil
}

// Close stops the decoder; frames not yet read are discarded
func (r *pipeReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.cancel()
	r.pr.Close()
	<-r.done
	return nil
}

type pipeWriter struct {
	pw     *io.PipeWriter
	done   chan error
	width  int
	height int
	closed bool
}

// OpenWriter starts ffmpeg encoding raw RGBA frames into an H.264 yuv420p MP4 without audio
func (t *implToolkit) OpenWriter(ctx context.Context, path string, width, height int, fps float64) (FrameWriter, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", width, height)
	}
	if fps <= 0 {
		return nil, fmt.Errorf("invalid frame rate %v", fps)
	}

	pr, pw := io.Pipe()
	done := make(chan error, 1)

	args := []string{
		"-y",
		"-v", "error",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", width, height),
		"-r", strconv.FormatFloat(fps, 'f', -1, 64),
		"-i", "-",
	}
	// yuv420p needs even dimensions; odd frames gain one black row or column
	if width%2 != 0 || height%2 != 0 {
		args = append(args, "-vf", "pad=ceil(iw/2)*2:ceil(ih/2)*2")
	}
	args = append(args,
		"-an",
		"-c:v", t.cfg.Encoder,
		"-preset", t.cfg.Preset,
		"-crf", strconv.Itoa(t.cfg.CRF),
		"-pix_fmt", "yuv420p",
		path,
	)

	go func() {
		err := t.executor.Stream(ctx, t.cfg.Binary, pr, io.Discard, args...)
		if err != nil {
			pr.CloseWithError(err)
		} else {
			pr.CloseWithError(io.ErrClosedPipe)
		}
		done <- err
	}()

	return &pipeWriter{pw: pw, done: done, width: width, height: height}, nil
}

func (w *pipeWriter) Write(frame *image.RGBA) error {
	b := frame.Bounds()
	if b.Dx() != w.width || b.Dy() != w.height {
		return fmt.Errorf("frame is %dx%d, encoder expects %dx%d", b.Dx(), b.Dy(), w.width, w.height)
	}

	rowLen := w.width * 4
	if frame.Stride == rowLen {
		start := frame.PixOffset(b.Min.X, b.Min.Y)
		_, err := w.pw.Write(frame.Pix[start : start+rowLen*w.height])
		return err
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		start := frame.PixOffset(b.Min.X, y)
		if _, err := w.pw.Write(frame.Pix[start : start+rowLen]); err != nil {
			return err
		}
	}
	return nil
}

// Close ends the input stream and waits for the encoder to finish
func (w *pipeWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	w.pw.Close()
	if err := <-w.done; err != nil {
		return fmt.Errorf("ffmpeg encode: %w", err)
	}
	return nil
}
