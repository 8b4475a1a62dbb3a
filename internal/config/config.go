package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// defaultDenylistMarkers are substrings that mark a candidate clip URL (or its
// detail page) as coming from a watermarked stock vendor. Overridable via
// CLIP_DENYLIST_MARKERS so the list is configuration, not a baked-in constant.
var defaultDenylistMarkers = []string{
	"shutterstock",
	"istockphoto",
	"gettyimages",
	"pond5",
	"storyblocks",
	"videoblocks",
	"stock.adobe",
}

// defaultFallbackClips are known-good, watermark-free clips used when every
// provider comes up empty for every query variation. Relevance is not
// guaranteed; resolution totality is.
var defaultFallbackClips = []string{
	"https://videos.pexels.com/video-files/3129671/3129671-uhd_2560_1440_30fps.mp4",
	"https://videos.pexels.com/video-files/2499611/2499611-uhd_2560_1440_30fps.mp4",
	"https://videos.pexels.com/video-files/1851190/1851190-uhd_2560_1440_24fps.mp4",
	"https://videos.pexels.com/video-files/857195/857195-hd_1280_720_25fps.mp4",
}

type Config struct {
	// Server
	APIPort            string
	WorkerEnabled      bool
	BackendAPIKey      string // API key for authenticating requests (empty = no auth, dev mode)
	CorsAllowedOrigins string // Comma-separated allowed origins (empty = *, dev mode)

	// Database (project/scene history)
	DatabaseURL string

	// Redis (generate/export job queue)
	RedisURL string

	// Storyboard generation
	StoryboardProvider string // "openai" (default) or "gemini"
	OpenAIKey          string
	GeminiKey          string

	// ElevenLabs narration synthesis
	ElevenLabsKey     string
	ElevenLabsVoiceID string

	// Clip resolution
	DenylistMarkers []string // Watermarked-vendor markers rejected by all providers
	FallbackClips   []string // Known-good clip pool used when every provider fails
	SceneCount      int      // Scenes per storyboard

	// Filesystem
	MediaDir      string // Narration audio staging area, served at /v1/media
	WorkspaceRoot string // Per-export-job workspaces live under here

	// Worker
	MaxConcurrentJobs int
	InterSceneDelayMs int // Mandatory pause between scenes during generation
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	_ = godotenv.Load()

	cfg := &Config{
		APIPort:            getEnv("API_PORT", "8080"),
		WorkerEnabled:      getEnvBool("WORKER_ENABLED", true),
		BackendAPIKey:      getEnv("BACKEND_API_KEY", ""),
		CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", ""),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		StoryboardProvider: getEnv("STORYBOARD_PROVIDER", "openai"),
		OpenAIKey:          getEnv("OPENAI_API_KEY", ""),
		GeminiKey:          getEnv("GEMINI_API_KEY", ""),
		ElevenLabsKey:      getEnv("ELEVENLABS_API_KEY", ""),
		ElevenLabsVoiceID:  getEnv("ELEVENLABS_VOICE_ID", ""),
		DenylistMarkers:    getEnvList("CLIP_DENYLIST_MARKERS", defaultDenylistMarkers),
		FallbackClips:      getEnvList("FALLBACK_CLIP_POOL", defaultFallbackClips),
		SceneCount:         getEnvInt("SCENE_COUNT", 5),
		MediaDir:           getEnv("MEDIA_DIR", "/tmp/shortscraft/media"),
		WorkspaceRoot:      getEnv("WORKSPACE_ROOT", "/tmp/shortscraft/jobs"),
		MaxConcurrentJobs:  getEnvInt("MAX_CONCURRENT_JOBS", 3),
		InterSceneDelayMs:  getEnvInt("INTER_SCENE_DELAY_MS", 1500),
	}

	// Validate required fields
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	switch cfg.StoryboardProvider {
	case "openai":
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when STORYBOARD_PROVIDER=openai")
		}
	case "gemini":
		if cfg.GeminiKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required when STORYBOARD_PROVIDER=gemini")
		}
	default:
		return nil, fmt.Errorf("unknown STORYBOARD_PROVIDER %q (expected openai or gemini)", cfg.StoryboardProvider)
	}

	if cfg.ElevenLabsKey == "" {
		return nil, fmt.Errorf("ELEVENLABS_API_KEY is required for narration synthesis")
	}

	if len(cfg.FallbackClips) == 0 {
		return nil, fmt.Errorf("FALLBACK_CLIP_POOL must contain at least one clip")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		b, err := strconv.ParseBool(value)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		i, err := strconv.Atoi(value)
		if err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
