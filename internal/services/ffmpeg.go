package services

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// Output / rendering constants — portrait 1080x1920
const (
	outputWidth  = 1080
	outputHeight = 1920
)

// FFmpegService shells out to ffmpeg/ffprobe. It implements the encoder
// interface the assembly engine drives.
type FFmpegService struct{}

func NewFFmpegService() *FFmpegService {
	return &FFmpegService{}
}

// AudioDurationMs returns the duration of an audio file in milliseconds.
func (s *FFmpegService) AudioDurationMs(ctx context.Context, audioPath string) (int, error) {
	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		audioPath,
	}

	cmd := exec.CommandContext(ctx, "ffprobe", args...)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}

	var durationSec float64
	if _, err := fmt.Sscanf(string(output), "%f", &durationSec); err != nil {
		return 0, fmt.Errorf("failed to parse duration: %w", err)
	}

	return int(durationSec * 1000), nil
}

// EncodeScene renders one scene video. The clip is looped so it always covers
// the narration, center-cropped to portrait, and its own audio track is
// dropped in favor of the narration. -t makes the narration duration the
// single timing authority: whatever the loop produced past it is cut.
func (s *FFmpegService) EncodeScene(ctx context.Context, clipPath, audioPath, outPath string, durationMs int) error {
	durationSec := float64(durationMs) / 1000.0

	vf := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d,setsar=1",
		outputWidth, outputHeight, outputWidth, outputHeight,
	)

	args := []string{
		"-stream_loop", "-1",
		"-i", clipPath,
		"-i", audioPath,
		"-vf", vf,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", "libx264",
		"-preset", "fast",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", "192k",
		"-t", fmt.Sprintf("%.3f", durationSec),
		"-y",
		outPath,
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg scene encode failed: %w", err)
	}

	return nil
}

// Concatenate joins scene videos in order into outPath. Scenes are encoded
// with identical codec settings, so a stream copy is enough.
func (s *FFmpegService) Concatenate(ctx context.Context, scenePaths []string, outPath string) error {
	if len(scenePaths) == 0 {
		return fmt.Errorf("no scenes to concatenate")
	}

	listPath := filepath.Join(filepath.Dir(outPath), "concat_list.txt")
	f, err := os.Create(listPath)
	if err != nil {
		return fmt.Errorf("failed to create concat list: %w", err)
	}

	for _, path := range scenePaths {
		fmt.Fprintf(f, "file '%s'\n", path)
	}
	f.Close()
	defer os.Remove(listPath)

	args := []string{
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		"-y",
		outPath,
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg concatenate failed: %w", err)
	}

	return nil
}
