// Package video wraps the ffmpeg and ffprobe binaries for video metadata
// probing and thumbnail extraction.
package video

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"github.com/pictorapp/pictor-server/internal/errors"
)

// Tool invokes ffprobe and ffmpeg with a bounded execution time.
type Tool struct {
	ffprobePath string
	ffmpegPath  string
	timeout     time.Duration
}

// NewTool creates a video tool. Paths may be bare binary names, in which
// case they resolve through PATH at invocation time.
func NewTool(ffprobePath, ffmpegPath string, timeout time.Duration) *Tool {
	return &Tool{
		ffprobePath: ffprobePath,
		ffmpegPath:  ffmpegPath,
		timeout:     timeout,
	}
}

// ProbeResult holds the metadata extracted from a video file.
type ProbeResult struct {
	Width    int
	Height   int
	Duration float64 // seconds
}

// Probe extracts dimensions and duration from a video file using ffprobe.
func (t *Tool) Probe(ctx context.Context, path string) (*ProbeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, t.ffprobePath, //nolint:gosec // binary path comes from config
		"-v", "error",
		"-select_streams", "v:0",
		"-print_format", "json",
		"-show_streams",
		"-show_format",
		path,
	)

	output, err := cmd.Output()
	if err != nil {
		return nil, errors.MediaProcessing(fmt.Sprintf("ffprobe failed: %v", err))
	}

	return parseProbeOutput(output)
}

// ExtractThumbnail writes a single representative frame of the video to
// outputPath, scaled to fit within maxDimension while keeping aspect ratio.
// The output format follows the outputPath extension.
func (t *Tool) ExtractThumbnail(ctx context.Context, inputPath, outputPath string, maxDimension int) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, t.ffmpegPath, //nolint:gosec // binary path comes from config
		"-i", inputPath,
		"-vf", fmt.Sprintf("thumbnail,scale=%d:%d:force_original_aspect_ratio=decrease", maxDimension, maxDimension),
		"-frames:v", "1",
		"-q:v", "2",
		"-y",
		outputPath,
	)

	if err := cmd.Run(); err != nil {
		return errors.MediaProcessing(fmt.Sprintf("ffmpeg thumbnail failed: %v", err))
	}
	return nil
}

// ffprobeOutput mirrors the JSON structure emitted by ffprobe.
type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
	Format  ffprobeFormat   `json:"format"`
}

type ffprobeStream struct {
	CodecType string `json:"codec_type"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
}

// parseProbeOutput extracts dimensions and duration from ffprobe JSON.
func parseProbeOutput(data []byte) (*ProbeResult, error) {
	var probe ffprobeOutput
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, errors.MediaProcessing(fmt.Sprintf("parse ffprobe output: %v", err))
	}

	result := &ProbeResult{}
	for _, stream := range probe.Streams {
		if stream.CodecType == "video" && stream.Width > 0 && stream.Height > 0 {
			result.Width = stream.Width
			result.Height = stream.Height
			break
		}
	}
	if result.Width == 0 || result.Height == 0 {
		return nil, errors.MediaProcessing("no video stream with dimensions found")
	}

	if probe.Format.Duration != "" {
		dur, err := strconv.ParseFloat(probe.Format.Duration, 64)
		if err != nil {
			return nil, errors.MediaProcessing(fmt.Sprintf("parse video duration: %v", err))
		}
		result.Duration = dur
	}

	return result, nil
}
