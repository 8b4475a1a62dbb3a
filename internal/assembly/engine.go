// Package assembly turns per-scene (clip, narration) pairs into one
// duration-synced vertical video. The engine stages everything inside an
// exclusively-owned job workspace, encodes scene by scene with the narration
// duration as the timing authority, and concatenates stream-copies at the
// end. Any step failing fails the whole job: a ragged final video is worse
// than none.
package assembly

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
)

// ErrInputContract marks a client-input error: mismatched or empty clip and
// audio lists. It is checked before any download or encode work begins.
var ErrInputContract = errors.New("clips and audios must be non-empty and of equal length")

// Encoder is the media-tool boundary the engine drives. The production
// implementation shells out to ffmpeg/ffprobe.
type Encoder interface {
	// AudioDurationMs probes the decoded duration of an audio file.
	AudioDurationMs(ctx context.Context, audioPath string) (int, error)

	// EncodeScene produces one scene video at outPath: the clip looped to
	// cover durationMs, scaled/cropped to the vertical target, native clip
	// audio discarded, narration attached, truncated to exactly durationMs.
	EncodeScene(ctx context.Context, clipPath, audioPath, outPath string, durationMs int) error

	// Concatenate joins scene videos in order into outPath without
	// re-encoding.
	Concatenate(ctx context.Context, scenePaths []string, outPath string) error
}

type Engine struct {
	encoder    Encoder
	downloader *Downloader
	workspaces *WorkspaceManager
}

func NewEngine(encoder Encoder, downloader *Downloader, workspaces *WorkspaceManager) *Engine {
	return &Engine{
		encoder:    encoder,
		downloader: downloader,
		workspaces: workspaces,
	}
}

// Result addresses a finished assembly job.
type Result struct {
	JobID      uuid.UUID
	OutputPath string
	DurationMs int
}

// Assemble produces one final artifact from ordered clip and audio sources.
// audios[i] may be a remote reference, an inline data: payload, or a local
// path. All-or-nothing: the first failing scene aborts the job and no
// artifact is published.
func (e *Engine) Assemble(ctx context.Context, clips, audios []string) (*Result, error) {
	if len(clips) == 0 || len(clips) != len(audios) {
		return nil, fmt.Errorf("%w: got %d clips, %d audios", ErrInputContract, len(clips), len(audios))
	}

	ws, err := e.workspaces.Allocate()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate workspace: %w", err)
	}
	log.Printf("[Assembly] job %s: assembling %d scenes in %s", ws.JobID, len(clips), ws.Dir)

	scenePaths := make([]string, 0, len(clips))
	totalDurationMs := 0

	for i := range clips {
		clipPath := ws.Path(fmt.Sprintf("scene_%d_clip.mp4", i))
		audioPath := ws.Path(fmt.Sprintf("scene_%d_audio.mp3", i))
		scenePath := ws.Path(fmt.Sprintf("scene_%d.mp4", i))

		if err := e.downloader.Fetch(ctx, clips[i], clipPath); err != nil {
			return nil, fmt.Errorf("scene %d: clip download failed: %w", i, err)
		}
		if err := e.downloader.Fetch(ctx, audios[i], audioPath); err != nil {
			return nil, fmt.Errorf("scene %d: audio download failed: %w", i, err)
		}

		durationMs, err := e.encoder.AudioDurationMs(ctx, audioPath)
		if err != nil {
			return nil, fmt.Errorf("scene %d: audio probe failed: %w", i, err)
		}
		if durationMs <= 0 {
			return nil, fmt.Errorf("scene %d: audio has no duration", i)
		}

		if err := e.encoder.EncodeScene(ctx, clipPath, audioPath, scenePath, durationMs); err != nil {
			return nil, fmt.Errorf("scene %d: encode failed: %w", i, err)
		}

		scenePaths = append(scenePaths, scenePath)
		totalDurationMs += durationMs
		log.Printf("[Assembly] job %s: scene %d encoded (%dms)", ws.JobID, i, durationMs)
	}

	outputPath := ws.OutputPath()
	if err := e.encoder.Concatenate(ctx, scenePaths, outputPath); err != nil {
		return nil, fmt.Errorf("concatenation failed: %w", err)
	}

	log.Printf("[Assembly] job %s: final artifact ready (%dms total)", ws.JobID, totalDurationMs)
	return &Result{
		JobID:      ws.JobID,
		OutputPath: outputPath,
		DurationMs: totalDurationMs,
	}, nil
}
