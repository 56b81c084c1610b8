package media

import (
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/abhirajadhikary06/voiceurresume/internal/config"
)

type call struct {
	name string
	args []string
}

type fakeExecutor struct {
	output  string
	err     error
	calls   []call
	stream  func(stdin io.Reader, stdout io.Writer) error
	written int
}

func (f *fakeExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	f.calls = append(f.calls, call{name, args})
	return f.output, f.err
}

func (f *fakeExecutor) ExecuteInDir(ctx context.Context, dir string, name string, args ...string) (string, error) {
	return f.Execute(ctx, name, args...)
}

func (f *fakeExecutor) Stream(ctx context.Context, name string, stdin io.Reader, stdout io.Writer, args ...string) error {
	f.calls = append(f.calls, call{name, args})
	return f.stream(stdin, stdout)
}

func testConfig() config.FFmpegConfig {
	return config.FFmpegConfig{
		Binary:       "ffmpeg",
		Probe:        "ffprobe",
		Encoder:      "libx264",
		Preset:       "medium",
		CRF:          23,
		AudioBitrate: "128k",
	}
}

func TestProbe(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   Info
	}{
		{
			name: "video with audio",
			output: `{"format":{"duration":"12.500"},"streams":[
				{"codec_type":"video","width":640,"height":480,"avg_frame_rate":"30000/1001","r_frame_rate":"30/1"},
				{"codec_type":"audio","duration":"12.4"}]}`,
			want: Info{Duration: 12500 * time.Millisecond, Width: 640, Height: 480, FPS: 30000.0 / 1001.0, HasVideo: true, HasAudio: true},
		},
		{
			name:   "audio only",
			output: `{"format":{"duration":"3"},"streams":[{"codec_type":"audio"}]}`,
			want:   Info{Duration: 3 * time.Second, HasAudio: true},
		},
		{
			name:   "frame rate fallback",
			output: `{"format":{},"streams":[{"codec_type":"video","width":2,"height":2,"avg_frame_rate":"0/0","r_frame_rate":"25/1","duration":"1.0"}]}`,
			want:   Info{Duration: time.Second, Width: 2, Height: 2, FPS: 25, HasVideo: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &fakeExecutor{output: tt.output}
			info, err := New(exec, testConfig()).Probe(context.Background(), "in.mp4")
			if err != nil {
				t.Fatalf("Probe() error = %v", err)
			}
			if *info != tt.want {
				t.Errorf("Probe() = %+v, want %+v", *info, tt.want)
			}
			if exec.calls[0].name != "ffprobe" {
				t.Errorf("ran %s, want ffprobe", exec.calls[0].name)
			}
		})
	}
}

func TestProbeErrors(t *testing.T) {
	exec := &fakeExecutor{err: errors.New("exit status 1")}
	if _, err := New(exec, testConfig()).Probe(context.Background(), "x"); err == nil {
		t.Error("expected error when ffprobe fails")
	}

	exec = &fakeExecutor{output: "not json"}
	if _, err := New(exec, testConfig()).Probe(context.Background(), "x"); err == nil {
		t.Error("expected error for unparsable output")
	}
}

func TestMuxArguments(t *testing.T) {
	exec := &fakeExecutor{}
	if err := New(exec, testConfig()).Mux(context.Background(), "v.mp4", "a.mp3", "out.mp4"); err != nil {
		t.Fatalf("Mux() error = %v", err)
	}

	got := strings.Join(exec.calls[0].args, " ")
	want := "-y -v error -i v.mp4 -i a.mp3 -map 0:v:0 -map 1:a:0 -c:v copy -c:a aac -b:a 128k -shortest out.mp4"
	if got != want {
		t.Errorf("Mux args = %q, want %q", got, want)
	}
}

func TestFrameReader(t *testing.T) {
	const w, h, frames = 2, 3, 4
	exec := &fakeExecutor{stream: func(stdin io.Reader, stdout io.Writer) error {
		for i := range frames {
			buf := make([]byte, w*h*4)
			for j := range buf {
				buf[j] = byte(i)
			}
			if _, err := stdout.Write(buf); err != nil {
				return err
			}
		}
		return nil
	}}

	r, err := New(exec, testConfig()).OpenReader(context.Background(), "in.mp4", w, h)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer r.Close()

	count := 0
	for {
		frame, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		if frame.Pix[0] != byte(count) {
			t.Errorf("frame %d starts with %d", count, frame.Pix[0])
		}
		count++
	}
	if count != frames {
		t.Errorf("read %d frames, want %d", count, frames)
	}
}

func TestFrameReaderTruncated(t *testing.T) {
	exec := &fakeExecutor{stream: func(stdin io.Reader, stdout io.Writer) error {
		_, err := stdout.Write(make([]byte, 5))
		return err
	}}

	r, _ := New(exec, testConfig()).OpenReader(context.Background(), "in.mp4", 2, 2)
	defer r.Close()

	if _, err := r.Next(); err == nil || errors.Is(err, io.EOF) {
		t.Errorf("expected truncation error, got %v", err)
	}
}

func TestFrameReaderDecoderFailure(t *testing.T) {
	exec := &fakeExecutor{stream: func(stdin io.Reader, stdout io.Writer) error {
		return errors.New("invalid data found when processing input")
	}}

	r, _ := New(exec, testConfig()).OpenReader(context.Background(), "in.mp4", 2, 2)
	defer r.Close()

	if _, err := r.Next(); err == nil || errors.Is(err, io.EOF) {
		t.Errorf("expected decode error, got %v", err)
	}
}

func TestFrameWriter(t *testing.T) {
	const w, h = 4, 2
	var received int
	exec := &fakeExecutor{stream: func(stdin io.Reader, stdout io.Writer) error {
		n, err := io.Copy(io.Discard, stdin)
		received = int(n)
		return err
	}}

	fw, err := New(exec, testConfig()).OpenWriter(context.Background(), "out.mp4", w, h, 25)
	if err != nil {
		t.Fatalf("OpenWriter() error = %v", err)
	}

	frame := image.NewRGBA(image.Rect(0, 0, w, h))
	frame.Set(0, 0, color.RGBA{R: 255, A: 255})
	for range 3 {
		if err := fw.Write(frame); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	if err := fw.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if received != 3*w*h*4 {
		t.Errorf("encoder received %d bytes, want %d", received, 3*w*h*4)
	}

	args := strings.Join(exec.calls[0].args, " ")
	for _, want := range []string{"-s 4x2", "-r 25", "-an", "-c:v libx264", "-pix_fmt yuv420p", "out.mp4"} {
		if !strings.Contains(args, want) {
			t.Errorf("encoder args %q missing %q", args, want)
		}
	}
	if strings.Contains(args, "pad=") {
		t.Errorf("even frames padded: %q", args)
	}
}

func TestFrameWriterPadsOddDimensions(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
	}{
		{"odd width", 5, 4},
		{"odd height", 4, 3},
		{"both odd", 5, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &fakeExecutor{stream: func(stdin io.Reader, stdout io.Writer) error {
				_, err := io.Copy(io.Discard, stdin)
				return err
			}}

			fw, err := New(exec, testConfig()).OpenWriter(context.Background(), "out.mp4", tt.width, tt.height, 25)
			if err != nil {
				t.Fatalf("OpenWriter() error = %v", err)
			}
			if err := fw.Write(image.NewRGBA(image.Rect(0, 0, tt.width, tt.height))); err != nil {
				t.Fatalf("Write() error = %v", err)
			}
			if err := fw.Close(); err != nil {
				t.Fatalf("Close() error = %v", err)
			}

			args := strings.Join(exec.calls[0].args, " ")
			if !strings.Contains(args, "-vf pad=ceil(iw/2)*2:ceil(ih/2)*2 -an") {
				t.Errorf("encoder args %q do not pad to even size", args)
			}
		})
	}
}

func TestFrameWriterRejectsWrongSize(t *testing.T) {
	exec := &fakeExecutor{stream: func(stdin io.Reader, stdout io.Writer) error {
		_, err := io.Copy(io.Discard, stdin)
		return err
	}}

	fw, _ := New(exec, testConfig()).OpenWriter(context.Background(), "out.mp4", 4, 4, 25)
	defer fw.Close()

	if err := fw.Write(image.NewRGBA(image.Rect(0, 0, 2, 2))); err == nil {
		t.Error("expected error for mismatched frame size")
	}
}

func TestFrameWriterEncoderFailure(t *testing.T) {
	exec := &fakeExecutor{stream: func(stdin io.Reader, stdout io.Writer) error {
		return errors.New("unknown encoder")
	}}

	fw, _ := New(exec, testConfig()).OpenWriter(context.Background(), "out.mp4", 2, 2, 25)
	frame := image.NewRGBA(image.Rect(0, 0, 2, 2))

	var writeErr error
	for range 10 {
		if writeErr = fw.Write(frame); writeErr != nil {
			break
		}
	}
	closeErr := fw.Close()
	if writeErr == nil && closeErr == nil {
		t.Error("expected encoder failure to surface")
	}
}
