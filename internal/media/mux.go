package media

import (
	"context"
	"fmt"
)

// Mux copies the first video stream of videoPath and encodes the first audio
// stream of audioPath to AAC. Output stops at the shorter of the two.
func (t *implToolkit) Mux(ctx context.Context, videoPath, audioPath, outPath string) error {
	args := []string{
		"-y",
		"-v", "error",
		"-i", videoPath,
		"-i", audioPath,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", "copy",
		"-c:a", "aac",
		"-b:a", t.cfg.AudioBitrate,
		"-shortest",
		outPath,
	}

	if _, err := t.executor.Execute(ctx, t.cfg.Binary, args...); err != nil {
		return fmt.Errorf("ffmpeg mux: %w", err)
	}
	return nil
}
