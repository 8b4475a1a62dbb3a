package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	openai "github.com/sashabaranov/go-openai"
)

type OpenAIService struct {
	client *openai.Client
	model  string
}

var _ StoryboardService = (*OpenAIService)(nil)

func NewOpenAIService(apiKey string) *OpenAIService {
	return &OpenAIService{
		client: openai.NewClient(apiKey),
		model:  "gpt-4o-mini",
	}
}

// GenerateStoryboard plans a video using OpenAI JSON mode.
func (s *OpenAIService) GenerateStoryboard(ctx context.Context, topic string, sceneCount int) (*Storyboard, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: buildStoryboardSystemPrompt(sceneCount),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf("Topic: %s", topic),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 1.0,
	})
	if err != nil {
		return nil, fmt.Errorf("openai request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from openai")
	}

	rawContent := resp.Choices[0].Message.Content

	var sb Storyboard
	if err := json.Unmarshal([]byte(rawContent), &sb); err != nil {
		log.Printf("[OpenAI storyboard] parse failed: %v", err)
		log.Printf("[OpenAI storyboard] raw response: %s", truncateForLog(rawContent))
		return nil, fmt.Errorf("failed to parse storyboard: %w", err)
	}

	if err := validateStoryboard(&sb, sceneCount); err != nil {
		log.Printf("[OpenAI storyboard] raw response: %s", truncateForLog(rawContent))
		return nil, fmt.Errorf("invalid storyboard: %w", err)
	}

	log.Printf("[OpenAI storyboard] Generated %q with %d scenes", sb.Title, len(sb.Scenes))
	return &sb, nil
}

const maxLogLen = 2000

func truncateForLog(s string) string {
	if len(s) > maxLogLen {
		return s[:maxLogLen] + "..."
	}
	return s
}
