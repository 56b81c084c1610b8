package media

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ffprobeOutput represents the JSON structure from ffprobe
type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
}

type ffprobeStream struct {
	CodecType    string `json:"codec_type"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	RFrameRate   string `json:"r_frame_rate"`
	AvgFrameRate string `json:"avg_frame_rate"`
	Duration     string `json:"duration"`
}

// Probe runs ffprobe with JSON output and reads duration, geometry and stream presence
func (t *implToolkit) Probe(ctx context.Context, path string) (*Info, error) {
	output, err := t.executor.Execute(ctx, t.cfg.Probe,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	var probe ffprobeOutput
	if err := json.Unmarshal([]byte(output), &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	info := &Info{Duration: parseSeconds(probe.Format.Duration)}
	for _, s := range probe.Streams {
		switch s.CodecType {
		case "video":
			if info.HasVideo {
				continue
			}
			info.HasVideo = true
			info.Width = s.Width
			info.Height = s.Height
			info.FPS = parseFrameRate(s.AvgFrameRate)
			if info.FPS == 0 {
				info.FPS = parseFrameRate(s.RFrameRate)
			}
			if info.Duration == 0 {
				info.Duration = parseSeconds(s.Duration)
			}
		case "audio":
			info.HasAudio = true
			if info.Duration == 0 {
				info.Duration = parseSeconds(s.Duration)
			}
		}
	}

	return info, nil
}

// parseFrameRate parses frame rate from ffprobe format (e.g., "30000/1001" -> 29.97)
func parseFrameRate(value string) float64 {
	parts := strings.Split(value, "/")
	if len(parts) == 2 {
		num, _ := strconv.ParseFloat(parts[0], 64)
		den, _ := strconv.ParseFloat(parts[1], 64)
		if den != 0 {
			return num / den
		}
		return 0
	}
	rate, _ := strconv.ParseFloat(value, 64)
	return rate
}

func parseSeconds(value string) time.Duration {
	secs, err := strconv.ParseFloat(value, 64)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}
