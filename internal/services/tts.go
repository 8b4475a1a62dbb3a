package services

import (
	"context"
	"strings"
)

// TTSResponse is the common response type from any narration provider.
type TTSResponse struct {
	AudioData  []byte
	DurationMs int
	Format     string // "mp3", "wav", etc.
}

// TTSService converts narration text into audio. The worker stages the
// returned bytes into the media directory; the assembly engine later probes
// the real duration, so DurationMs here is only an estimate for progress
// reporting.
type TTSService interface {
	GenerateSpeech(ctx context.Context, text string) (*TTSResponse, error)
}

// estimateAudioDuration approximates spoken duration from word count.
// ~150 words per minute at normal delivery, scaled by the speed factor.
func estimateAudioDuration(text string, speed float64) int {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	if speed <= 0 {
		speed = 1.0
	}
	msPerWord := 60000.0 / (150.0 * speed)
	return int(float64(words) * msPerWord)
}
