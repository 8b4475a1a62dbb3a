package services

import (
	"context"
	"fmt"
	"strings"
)

// StoryboardScene is one planned scene: a search query for footage, the
// narration to speak over it, and a short on-screen overlay.
type StoryboardScene struct {
	SceneIndex  int    `json:"scene_index"`
	Query       string `json:"query"`
	Narration   string `json:"narration"`
	OverlayText string `json:"overlay_text"`
}

// Storyboard is the complete plan for one short video.
type Storyboard struct {
	Title  string            `json:"title"`
	Scenes []StoryboardScene `json:"scenes"`
}

// StoryboardService plans a video from a topic. OpenAI and Gemini both
// implement it; the worker uses whichever is configured.
type StoryboardService interface {
	GenerateStoryboard(ctx context.Context, topic string, sceneCount int) (*Storyboard, error)
}

func buildStoryboardSystemPrompt(sceneCount int) string {
	return fmt.Sprintf(`You are a short-form video scriptwriter. Plan a vertical short video as a JSON object with this exact shape:

{
  "title": "catchy video title",
  "scenes": [
    {
      "scene_index": 0,
      "query": "2-4 word stock footage search term",
      "narration": "one or two spoken sentences for this scene",
      "overlay_text": "3-6 word on-screen caption"
    }
  ]
}

Rules:
- Produce exactly %d scenes.
- "query" must describe concrete, filmable footage (e.g. "ocean waves aerial"), never abstract concepts.
- Narration flows as one continuous story across scenes.
- Respond with the JSON object only.`, sceneCount)
}

// validateStoryboard rejects plans a downstream stage could not use.
func validateStoryboard(sb *Storyboard, sceneCount int) error {
	if len(sb.Scenes) == 0 {
		return fmt.Errorf("storyboard has no scenes")
	}
	if len(sb.Scenes) != sceneCount {
		return fmt.Errorf("storyboard has %d scenes, expected %d", len(sb.Scenes), sceneCount)
	}
	for i, scene := range sb.Scenes {
		var missing []string
		if strings.TrimSpace(scene.Query) == "" {
			missing = append(missing, "query")
		}
		if strings.TrimSpace(scene.Narration) == "" {
			missing = append(missing, "narration")
		}
		if len(missing) > 0 {
			return fmt.Errorf("scene %d missing required fields: %v", i, missing)
		}
		sb.Scenes[i].SceneIndex = i
	}
	return nil
}
