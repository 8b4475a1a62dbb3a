package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"google.golang.org/genai"
)

const geminiStoryboardModel = "gemini-2.0-flash"

// GeminiService plans videos via the Gemini API. A fresh client is created
// per request; the SDK client is cheap and this keeps the service stateless.
type GeminiService struct {
	apiKey string
	model  string
}

var _ StoryboardService = (*GeminiService)(nil)

func NewGeminiService(apiKey string) *GeminiService {
	return &GeminiService{
		apiKey: apiKey,
		model:  geminiStoryboardModel,
	}
}

// GenerateStoryboard plans a video using Gemini with a JSON response type.
func (s *GeminiService) GenerateStoryboard(ctx context.Context, topic string, sceneCount int) (*Storyboard, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  s.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(buildStoryboardSystemPrompt(sceneCount), genai.RoleUser),
		ResponseMIMEType:  "application/json",
	}

	resp, err := client.Models.GenerateContent(ctx, s.model,
		genai.Text(fmt.Sprintf("Topic: %s", topic)), config)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	rawContent := resp.Text()
	if rawContent == "" {
		return nil, fmt.Errorf("no response from gemini")
	}

	var sb Storyboard
	if err := json.Unmarshal([]byte(rawContent), &sb); err != nil {
		log.Printf("[Gemini storyboard] parse failed: %v", err)
		log.Printf("[Gemini storyboard] raw response: %s", truncateForLog(rawContent))
		return nil, fmt.Errorf("failed to parse storyboard: %w", err)
	}

	if err := validateStoryboard(&sb, sceneCount); err != nil {
		log.Printf("[Gemini storyboard] raw response: %s", truncateForLog(rawContent))
		return nil, fmt.Errorf("invalid storyboard: %w", err)
	}

	log.Printf("[Gemini storyboard] Generated %q with %d scenes", sb.Title, len(sb.Scenes))
	return &sb, nil
}
